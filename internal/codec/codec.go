// Package codec names the wire formats the smallmap containers can be
// written in, so tools can pick one from a flag.
package codec

import (
	"fmt"
	"slices"
	"strings"
)

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

var builtin = []Codec{JSON{}, YAML{}, CBOR{}, Msgpack{}}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	for _, c := range builtin {
		if strings.EqualFold(c.Name(), name) {
			return c, true
		}
	}

	return nil, false
}

// Names lists the built-in codec names.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for _, c := range builtin {
		names = append(names, c.Name())
	}

	return slices.Clip(names)
}

// MustMarshal is a helper for tests.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}

// Default is the codec used when none is chosen.
var Default Codec = JSON{}
