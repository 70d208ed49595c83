package smallmap

import "github.com/vmihailenco/msgpack/v5"

// EncodeMsgpack writes the map as a msgpack map in ascending key order.
func (m *Map[K, V]) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(m.Len()); err != nil {
		return err
	}

	for _, p := range m.AsSlice() {
		if err := enc.Encode(p.Key); err != nil {
			return err
		}

		if err := enc.Encode(p.Value); err != nil {
			return err
		}
	}

	return nil
}

// DecodeMsgpack replaces the contents of the map with the entries of a
// msgpack map. Duplicate keys resolve to the last one. nil is a no-op.
func (m *Map[K, V]) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return err
	}

	if n == -1 {
		return nil
	}

	return m.replaceWith(func(dst *Map[K, V]) error {
		for range n {
			var (
				key K
				val V
			)

			if err := dec.Decode(&key); err != nil {
				return err
			}

			if err := dec.Decode(&val); err != nil {
				return err
			}

			dst.Insert(key, val)
		}

		return nil
	})
}

func (c *Counter[K]) EncodeMsgpack(enc *msgpack.Encoder) error {
	return c.m.EncodeMsgpack(enc)
}

func (c *Counter[K]) DecodeMsgpack(dec *msgpack.Decoder) error {
	return c.m.DecodeMsgpack(dec)
}
