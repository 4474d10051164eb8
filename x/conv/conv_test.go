// x/conv/conv_test.go
package conv

import "testing"

func TestUtoa(t *testing.T) {
	var buf [10]byte
	cases := []struct {
		in   uint32
		want string
	}{
		{0, "0"},
		{7, "7"},
		{1234, "1234"},
		{4294967295, "4294967295"},
	}
	for _, c := range cases {
		if got := string(Utoa(buf[:], c.in)); got != c.want {
			t.Errorf("Utoa(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestItoa(t *testing.T) {
	var buf [11]byte
	cases := []struct {
		in   int32
		want string
	}{
		{0, "0"},
		{42, "42"},
		{-1, "-1"},
		{-2147483648, "-2147483648"},
	}
	for _, c := range cases {
		if got := string(Itoa(buf[:], c.in)); got != c.want {
			t.Errorf("Itoa(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestHex(t *testing.T) {
	var buf [8]byte
	if got := string(HexByte(buf[:], 0x5A)); got != "5A" {
		t.Errorf("HexByte = %q", got)
	}
	if got := string(U32Hex(buf[:], 0xDEADBEEF)); got != "DEADBEEF" {
		t.Errorf("U32Hex = %q", got)
	}
}
