package ion

import (
	"github.com/chaisql/ion/internal/encoding"
	"github.com/chaisql/ion/internal/symtab"
	"github.com/chaisql/ion/internal/tree"
	"github.com/cockroachdb/errors"
)

var (
	// ErrMalformedEncoding is returned when bytes do not follow the binary format.
	ErrMalformedEncoding = encoding.ErrMalformedEncoding

	// ErrEncodingTooLarge is returned when a number does not fit in 64 bits.
	ErrEncodingTooLarge = encoding.ErrEncodingTooLarge

	// ErrInvalidArgument is returned when a value cannot be encoded.
	ErrInvalidArgument = encoding.ErrInvalidArgument

	// ErrNullValue is returned by typed accessors called on a null value.
	ErrNullValue = tree.ErrNullValue

	// ErrTypeMismatch is returned when an accessor does not match the type of a value.
	ErrTypeMismatch = tree.ErrTypeMismatch

	// ErrUnsupportedType is returned for types that have no native representation.
	ErrUnsupportedType = tree.ErrUnsupportedType

	// ErrNotContainer is returned by container operations on scalars.
	ErrNotContainer = tree.ErrNotContainer

	// ErrAttached is returned when appending a value that already belongs to a container.
	ErrAttached = tree.ErrAttached

	// ErrIndexOutOfRange is returned when an index is invalid.
	ErrIndexOutOfRange = tree.ErrIndexOutOfRange

	// ErrUnknownSymbol is returned when a symbol id has no text.
	ErrUnknownSymbol = symtab.ErrUnknownSymbol

	// ErrNoSuchTable is returned when a shared symbol table cannot be found.
	ErrNoSuchTable = symtab.ErrNoSuchTable

	// ErrNotInDatagram is returned when removing a value that is not a user
	// value of the datagram.
	ErrNotInDatagram = errors.New("value is not in the datagram")
)
