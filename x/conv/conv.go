// x/conv/conv.go
// Package conv holds allocation-free numeric-to-text helpers for MCU-side
// logging; no fmt/strconv dependency.
package conv

// Utoa writes the base-10 representation of n into buf and returns the
// used slice. buf should be length >= 10 for uint32.
func Utoa(buf []byte, n uint32) []byte {
	if len(buf) == 0 {
		return buf[:0]
	}
	i := len(buf)
	if n == 0 {
		i--
		buf[i] = '0'
	} else {
		for n > 0 && i > 0 {
			i--
			buf[i] = byte('0' + (n % 10))
			n /= 10
		}
	}
	return buf[i:]
}

// Itoa writes the base-10 representation of n into buf and returns the
// used slice. buf should be length >= 11 for int32.
func Itoa(buf []byte, n int32) []byte {
	if len(buf) == 0 {
		return buf[:0]
	}
	if n >= 0 {
		return Utoa(buf, uint32(n))
	}
	s := Utoa(buf[1:], uint32(-int64(n)))
	// Utoa fills from the tail; the sign slots in just before it.
	i := len(buf) - len(s) - 1
	buf[i] = '-'
	return buf[i:]
}

const hexd = "0123456789ABCDEF"

// HexByte writes two uppercase hex digits.
func HexByte(buf []byte, b byte) []byte {
	if len(buf) < 2 {
		return buf[:0]
	}
	buf[0] = hexd[b>>4]
	buf[1] = hexd[b&0xF]
	return buf[:2]
}

// U32Hex writes 8 zero-padded uppercase hex digits, no 0x prefix.
func U32Hex(buf []byte, n uint32) []byte {
	if len(buf) < 8 {
		return buf[:0]
	}
	i := len(buf)
	for j := 0; j < 8; j++ {
		i--
		buf[i] = hexd[n&0xF]
		n >>= 4
	}
	return buf[i:]
}
