package encoding

import "github.com/cockroachdb/errors"

var (
	// ErrMalformedEncoding is returned when bytes violate the binary format.
	ErrMalformedEncoding = errors.New("malformed encoding")

	// ErrEncodingTooLarge is returned when a decoded magnitude does not fit in 64 bits.
	ErrEncodingTooLarge = errors.New("encoding too large")

	// ErrInvalidArgument is returned when a value cannot be represented by the requested codec,
	// such as a negative number written through an unsigned entry point.
	ErrInvalidArgument = errors.New("invalid argument")
)

func malformedf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformedEncoding, format, args...)
}
