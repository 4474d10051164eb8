// errcode/errcode.go
package errcode

// Code is a stable error identifier for driver-facing failures.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable). The I2C channel reports these through
// its status taxonomy; module boundaries surface them as errors.
const (
	OK Code = "ok"

	Timeout  Code = "timeout"
	NACK     Code = "nack"
	BusError Code = "bus_error"
	Disabled Code = "disabled"

	Busy          Code = "busy"
	InvalidParams Code = "invalid_params"
	OutOfRange    Code = "out_of_range"

	Error Code = "error" // generic fallback
)

// E is an optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
