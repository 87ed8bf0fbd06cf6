package fft

import "errors"

// Errors returned by the FFT engines.
var (
	// ErrInvalidInputSize is returned when a list's length is unsupported
	// for the requested transform (e.g. a non-power-of-two size passed to
	// the static engine, or zero for operations requiring nonzero length).
	ErrInvalidInputSize = errors.New("fft: invalid input size")

	// ErrOverflow is returned when computing a Bluestein convolution size
	// would overflow the platform's int.
	ErrOverflow = errors.New("fft: size overflow")

	// ErrOutOfBounds is returned by bin-indexed accessors given an index
	// outside the valid range.
	ErrOutOfBounds = errors.New("fft: index out of bounds")

	// ErrBufferLength is returned by the Plan/PlanReal façade when a
	// caller-supplied buffer doesn't match the plan's fixed size.
	ErrBufferLength = errors.New("fft: buffer length mismatch")
)

// isPowerOfTwo reports whether n is a positive power of two.
func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
