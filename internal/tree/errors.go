package tree

import (
	"github.com/chaisql/ion/internal/encoding"
	"github.com/cockroachdb/errors"
)

var (
	// ErrNullValue is returned by typed accessors called on a null value.
	ErrNullValue = errors.New("value is null")

	// ErrTypeMismatch is returned when an accessor or setter does not
	// match the type of the value.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrUnsupportedType is returned when a value of a type the engine only
	// carries as opaque bytes is asked for a native representation.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNotContainer is returned by container operations on scalars.
	ErrNotContainer = errors.New("value is not a container")

	// ErrAttached is returned when attaching a value that already has a container.
	ErrAttached = errors.New("value is already attached to a container")

	// ErrIndexOutOfRange is returned when a child index is invalid.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrUnbound is returned when encoding a name that has no id in the
	// symbol table of its document.
	ErrUnbound = errors.New("name is not bound to a symbol id")

	// ErrCycle is returned when a container would become its own descendant.
	ErrCycle = errors.New("value cannot contain itself")
)

func mismatchf(got encoding.Type, want string) error {
	return errors.Wrapf(ErrTypeMismatch, "value is %s, not %s", got, want)
}
