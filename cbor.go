package smallmap

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

const (
	cborMajorMap   = 5
	cborBreak      = 0xff
	cborNull       = 0xf6
	cborUndefined  = 0xf7
	cborIndefinite = 31
)

// MarshalCBOR writes the map as a definite-length CBOR map in ascending key
// order.
func (m *Map[K, V]) MarshalCBOR() ([]byte, error) {
	buf := appendCBORHead(make([]byte, 0, 1+m.Len()*4), cborMajorMap, uint64(m.Len()))

	for _, p := range m.AsSlice() {
		kb, err := cbor.Marshal(p.Key)
		if err != nil {
			return nil, err
		}

		vb, err := cbor.Marshal(p.Value)
		if err != nil {
			return nil, err
		}

		buf = append(buf, kb...)
		buf = append(buf, vb...)
	}

	return buf, nil
}

// UnmarshalCBOR replaces the contents of the map with the entries of a CBOR
// map, definite or indefinite length. Duplicate keys resolve to the last
// one. null and undefined are no-ops.
func (m *Map[K, V]) UnmarshalCBOR(data []byte) error {
	if len(data) == 1 && (data[0] == cborNull || data[0] == cborUndefined) {
		return nil
	}

	n, rest, indefinite, err := readCBORMapHead(data)
	if err != nil {
		return err
	}

	return m.replaceWith(func(dst *Map[K, V]) error {
		for i := uint64(0); indefinite || i < n; i++ {
			if indefinite {
				if len(rest) == 0 {
					return io.ErrUnexpectedEOF
				}

				if rest[0] == cborBreak {
					rest = rest[1:]
					break
				}
			}

			var (
				key K
				val V
			)

			if rest, err = cbor.UnmarshalFirst(rest, &key); err != nil {
				return err
			}

			if rest, err = cbor.UnmarshalFirst(rest, &val); err != nil {
				return err
			}

			dst.Insert(key, val)
		}

		if len(rest) != 0 {
			return fmt.Errorf("smallmap: %d bytes of trailing CBOR data", len(rest))
		}

		return nil
	})
}

func (c *Counter[K]) MarshalCBOR() ([]byte, error) {
	return c.m.MarshalCBOR()
}

func (c *Counter[K]) UnmarshalCBOR(data []byte) error {
	return c.m.UnmarshalCBOR(data)
}

// appendCBORHead appends the initial bytes of a data item: major type and
// argument in its shortest form.
func appendCBORHead(buf []byte, major byte, n uint64) []byte {
	major <<= 5

	switch {
	case n < 24:
		return append(buf, major|byte(n))
	case n <= 0xff:
		return append(buf, major|24, byte(n))
	case n <= 0xffff:
		return binary.BigEndian.AppendUint16(append(buf, major|25), uint16(n))
	case n <= 0xffffffff:
		return binary.BigEndian.AppendUint32(append(buf, major|26), uint32(n))
	default:
		return binary.BigEndian.AppendUint64(append(buf, major|27), n)
	}
}

func readCBORMapHead(data []byte) (n uint64, rest []byte, indefinite bool, err error) {
	if len(data) == 0 {
		return 0, nil, false, io.ErrUnexpectedEOF
	}

	major, info := data[0]>>5, data[0]&0x1f
	if major != cborMajorMap {
		return 0, nil, false, fmt.Errorf("smallmap: cannot decode CBOR major type %d into a map", major)
	}

	data = data[1:]

	switch {
	case info < 24:
		return uint64(info), data, false, nil
	case info == cborIndefinite:
		return 0, data, true, nil
	case info > 27:
		return 0, nil, false, fmt.Errorf("smallmap: malformed CBOR map head 0x%02x", info)
	}

	size := 1 << (info - 24)
	if len(data) < size {
		return 0, nil, false, io.ErrUnexpectedEOF
	}

	for _, b := range data[:size] {
		n = n<<8 | uint64(b)
	}

	return n, data[size:], false, nil
}
