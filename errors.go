package smallmap

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrKeyNotFound is the panic value of MustGet and MustGetMut for absent keys.
	ErrKeyNotFound = errors.New("smallmap: key not found in map")

	// ErrStaleEntry is the panic value when an entry handle is used after the
	// map changed underneath it or after the handle was consumed.
	ErrStaleEntry = errors.New("smallmap: entry used after the map was modified")

	// ErrStaleIterator is the panic value when an iterator is advanced after
	// the map it walks changed structurally.
	ErrStaleIterator = errors.New("smallmap: iterator used after the map was modified")

	// ErrCountOverflow is the panic value when a Counter count would exceed
	// the range of uint.
	ErrCountOverflow = errors.New("smallmap: count overflows uint")
)

// UnsupportedKeyError is returned when a key type cannot be represented
// as an object key by a text-keyed format such as JSON.
type UnsupportedKeyError struct {
	Type reflect.Type
}

func (e *UnsupportedKeyError) Error() string {
	return fmt.Sprintf("smallmap: unsupported key type %v", e.Type)
}
