package smallmap

import (
	"bytes"
	"encoding"
	"fmt"
	"reflect"
	"strconv"

	"github.com/goccy/go-json"
)

// MarshalJSON writes the map as a JSON object with members in ascending key
// order. Keys follow encoding/json's map key rules: string kinds, types
// implementing encoding.TextMarshaler, and integer kinds.
func (m *Map[K, V]) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, p := range m.AsSlice() {
		if i > 0 {
			buf.WriteByte(',')
		}

		name, err := marshalTextKey(p.Key)
		if err != nil {
			return nil, err
		}

		kb, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}

		vb, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}

		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON replaces the contents of the map with the members of a JSON
// object, inserted in document order: when several member names resolve to
// the same key, the last one wins. null is a no-op.
func (m *Map[K, V]) UnmarshalJSON(data []byte) error {
	// Validates the whole document up front; the token stream below is
	// lenient about separators.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw == nil {
		return nil
	}

	return m.replaceWith(func(dst *Map[K, V]) error {
		dec := json.NewDecoder(bytes.NewReader(data))

		if _, err := dec.Token(); err != nil {
			return err
		}

		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return err
			}

			name, ok := tok.(string)
			if !ok {
				return fmt.Errorf("smallmap: unexpected JSON token %v in object key position", tok)
			}

			key, err := unmarshalTextKey[K](name)
			if err != nil {
				return err
			}

			var value V
			if err := dec.Decode(&value); err != nil {
				return err
			}

			dst.Insert(key, value)
		}

		return nil
	})
}

func (c *Counter[K]) MarshalJSON() ([]byte, error) {
	return c.m.MarshalJSON()
}

func (c *Counter[K]) UnmarshalJSON(data []byte) error {
	return c.m.UnmarshalJSON(data)
}

func marshalTextKey[K any](key K) (string, error) {
	rv := reflect.ValueOf(&key).Elem()
	if rv.Kind() == reflect.String {
		return rv.String(), nil
	}

	if tm, ok := any(key).(encoding.TextMarshaler); ok {
		b, err := tm.MarshalText()
		return string(b), err
	}

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	}

	return "", &UnsupportedKeyError{Type: rv.Type()}
}

func unmarshalTextKey[K any](name string) (K, error) {
	var key K

	if tu, ok := any(&key).(encoding.TextUnmarshaler); ok {
		err := tu.UnmarshalText([]byte(name))
		return key, err
	}

	rv := reflect.ValueOf(&key).Elem()

	switch rv.Kind() {
	case reflect.String:
		rv.SetString(name)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(name, 10, rv.Type().Bits())
		if err != nil {
			return key, err
		}
		rv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(name, 10, rv.Type().Bits())
		if err != nil {
			return key, err
		}
		rv.SetUint(n)
	default:
		return key, &UnsupportedKeyError{Type: rv.Type()}
	}

	return key, nil
}
