package smallmap

import (
	"bytes"
	"errors"
	"math/rand"
	"net/netip"
	"slices"
	"strconv"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/homier/smallmap/internal/codec"
)

func scenarioMap() *Map[int, int] {
	m := New[int, int]()
	m.Insert(20, 20)
	m.Insert(5, 5)
	m.Insert(10, 10)

	return m
}

func TestMap_JSON(t *testing.T) {
	t.Run("marshal in key order", func(t *testing.T) {
		b, err := json.Marshal(scenarioMap())
		require.NoError(t, err)
		require.JSONEq(t, `{"5":5,"10":10,"20":20}`, string(b))
		require.Equal(t, `{"5":5,"10":10,"20":20}`, string(b))
	})

	t.Run("empty", func(t *testing.T) {
		b, err := New[string, int]().MarshalJSON()
		require.NoError(t, err)
		require.Equal(t, `{}`, string(b))
	})

	t.Run("unmarshal sorts", func(t *testing.T) {
		m := New[int, int]()
		require.NoError(t, json.Unmarshal([]byte(`{"20": 20, "10": 10}`), m))

		assert.Equal(t, 10, m.MustGet(10))
		assert.Equal(t, 20, m.MustGet(20))
		assert.False(t, m.Contains(30))
		assert.Equal(t, []Pair[int, int]{{10, 10}, {20, 20}}, m.AsSlice())
	})

	t.Run("duplicates keep the last", func(t *testing.T) {
		m := New[string, int]()
		require.NoError(t, json.Unmarshal([]byte(`{"a": 1, "b": 2, "a": 3}`), m))

		assert.Equal(t, []Pair[string, int]{{"a", 3}, {"b", 2}}, m.AsSlice())
	})

	t.Run("equivalent names keep the last", func(t *testing.T) {
		for range 100 {
			m := New[int, int]()
			require.NoError(t, json.Unmarshal([]byte(`{"1": 1, "01": 2, "+1": 3}`), m))
			require.Equal(t, []Pair[int, int]{{1, 3}}, m.AsSlice())
		}
	})

	t.Run("nested values", func(t *testing.T) {
		m := New[string, []map[string]int]()
		require.NoError(t, m.UnmarshalJSON([]byte(`{"b": [{"x": 1}], "a": [], "c": [{"y": 2}, {"z": 3}]}`)))

		assert.Equal(t, []string{"a", "b", "c"}, slices.Collect(m.Keys()))
		assert.Equal(t, []map[string]int{{"y": 2}, {"z": 3}}, m.MustGet("c"))
	})

	t.Run("escaped names", func(t *testing.T) {
		m := New[string, int]()
		require.NoError(t, m.UnmarshalJSON([]byte(`{"a\"b": 1, "\u00e9": 2}`)))

		assert.Equal(t, []Pair[string, int]{{"a\"b", 1}, {"é", 2}}, m.AsSlice())
	})

	t.Run("replaces contents", func(t *testing.T) {
		m := scenarioMap()
		require.NoError(t, json.Unmarshal([]byte(`{"1": 1}`), m))

		assert.Equal(t, []Pair[int, int]{{1, 1}}, m.AsSlice())
	})

	t.Run("null is a no-op", func(t *testing.T) {
		m := scenarioMap()
		require.NoError(t, m.UnmarshalJSON([]byte(`null`)))

		assert.Equal(t, 3, m.Len())
	})

	t.Run("errors propagate", func(t *testing.T) {
		m := New[int, int]()

		require.Error(t, json.Unmarshal([]byte(`{"1": `), m))
		require.ErrorIs(t, m.UnmarshalJSON([]byte(`{"x": 1}`)), strconv.ErrSyntax)
		require.NoError(t, m.UnmarshalJSON([]byte(`{"300": 1}`)), "in range for int")

		small := New[int8, int]()
		require.ErrorIs(t, small.UnmarshalJSON([]byte(`{"300": 1}`)), strconv.ErrRange)
	})

	t.Run("unsupported key", func(t *testing.T) {
		m := New[float64, int]()
		m.Insert(1.5, 1)

		_, err := m.MarshalJSON()

		var keyErr *UnsupportedKeyError
		require.True(t, errors.As(err, &keyErr))
		assert.Equal(t, "float64", keyErr.Type.String())
	})

	t.Run("text keys", func(t *testing.T) {
		m := NewFunc[netip.Addr, string](netip.Addr.Compare)
		m.Insert(netip.MustParseAddr("10.0.0.2"), "b")
		m.Insert(netip.MustParseAddr("10.0.0.1"), "a")

		b, err := m.MarshalJSON()
		require.NoError(t, err)
		require.Equal(t, `{"10.0.0.1":"a","10.0.0.2":"b"}`, string(b))

		out := NewFunc[netip.Addr, string](netip.Addr.Compare)
		require.NoError(t, out.UnmarshalJSON(b))
		assert.Equal(t, m.AsSlice(), out.AsSlice())
	})
}

func TestMap_YAML(t *testing.T) {
	t.Run("marshal in key order", func(t *testing.T) {
		b, err := yaml.Marshal(scenarioMap())
		require.NoError(t, err)
		require.Equal(t, "5: 5\n10: 10\n20: 20\n", string(b))
	})

	t.Run("unmarshal sorts and keeps the last duplicate", func(t *testing.T) {
		m := New[string, int]()
		require.NoError(t, yaml.Unmarshal([]byte("c: 3\na: 1\nc: 30\n"), m))

		assert.Equal(t, []Pair[string, int]{{"a", 1}, {"c", 30}}, m.AsSlice())
	})

	t.Run("struct field", func(t *testing.T) {
		var doc struct {
			Counts Counter[string] `yaml:"counts"`
		}

		require.NoError(t, yaml.Unmarshal([]byte("counts:\n  b: 2\n  a: 1\n"), &doc))
		assert.Equal(t, []Pair[string, uint]{{"a", 1}, {"b", 2}}, doc.Counts.AsSlice())
	})

	t.Run("not a mapping", func(t *testing.T) {
		m := New[string, int]()
		err := yaml.Unmarshal([]byte("- a\n- b\n"), m)
		require.ErrorContains(t, err, "cannot decode YAML !!seq into a map")
	})

	t.Run("value errors propagate", func(t *testing.T) {
		m := New[string, int]()
		require.Error(t, yaml.Unmarshal([]byte("a: not-a-number\n"), m))
	})
}

func TestMap_CBOR(t *testing.T) {
	t.Run("marshal in key order", func(t *testing.T) {
		b, err := cbor.Marshal(scenarioMap())
		require.NoError(t, err)
		require.Equal(t, []byte{0xa3, 0x05, 0x05, 0x0a, 0x0a, 0x14, 0x14}, b)
	})

	t.Run("duplicates keep the last", func(t *testing.T) {
		m := New[int, int]()
		require.NoError(t, cbor.Unmarshal([]byte{0xa3, 0x03, 0x03, 0x01, 0x02, 0x01, 0x05}, m))

		assert.Equal(t, []Pair[int, int]{{1, 5}, {3, 3}}, m.AsSlice())
	})

	t.Run("indefinite length", func(t *testing.T) {
		m := New[int, int]()
		require.NoError(t, m.UnmarshalCBOR([]byte{0xbf, 0x02, 0x04, 0x01, 0x02, 0xff}))

		assert.Equal(t, []Pair[int, int]{{1, 2}, {2, 4}}, m.AsSlice())
	})

	t.Run("null is a no-op", func(t *testing.T) {
		m := scenarioMap()
		require.NoError(t, m.UnmarshalCBOR([]byte{0xf6}))
		assert.Equal(t, 3, m.Len())
	})

	t.Run("not a map", func(t *testing.T) {
		m := New[int, int]()
		require.ErrorContains(t, m.UnmarshalCBOR([]byte{0x80}), "major type 4")
	})

	t.Run("truncated", func(t *testing.T) {
		m := New[int, int]()
		require.Error(t, m.UnmarshalCBOR([]byte{0xa2, 0x01, 0x01}))
		require.Error(t, m.UnmarshalCBOR([]byte{0xbf, 0x01, 0x01}))
		require.Error(t, m.UnmarshalCBOR([]byte{0xb8}))
	})

	t.Run("long heads", func(t *testing.T) {
		for _, n := range []uint64{0, 23, 24, 255, 256, 65535, 65536, 1 << 32} {
			head := appendCBORHead(nil, cborMajorMap, n)

			got, rest, indefinite, err := readCBORMapHead(head)
			require.NoError(t, err)
			require.False(t, indefinite)
			require.Empty(t, rest)
			require.Equal(t, n, got)
		}
	})
}

func TestMap_Msgpack(t *testing.T) {
	t.Run("marshal in key order", func(t *testing.T) {
		b, err := msgpack.Marshal(scenarioMap())
		require.NoError(t, err)

		dec := msgpack.NewDecoder(bytes.NewReader(b))

		n, err := dec.DecodeMapLen()
		require.NoError(t, err)
		require.Equal(t, 3, n)

		for _, want := range []int{5, 10, 20} {
			k, err := dec.DecodeInt()
			require.NoError(t, err)
			require.Equal(t, want, k)

			v, err := dec.DecodeInt()
			require.NoError(t, err)
			require.Equal(t, want, v)
		}
	})

	t.Run("duplicates keep the last", func(t *testing.T) {
		m := New[int, int]()
		require.NoError(t, msgpack.Unmarshal([]byte{0x83, 0x03, 0x03, 0x01, 0x02, 0x01, 0x05}, m))

		assert.Equal(t, []Pair[int, int]{{1, 5}, {3, 3}}, m.AsSlice())
	})

	t.Run("nil is a no-op", func(t *testing.T) {
		m := scenarioMap()
		require.NoError(t, m.DecodeMsgpack(msgpack.NewDecoder(bytes.NewReader([]byte{0xc0}))))
		assert.Equal(t, 3, m.Len())
	})

	t.Run("not a map", func(t *testing.T) {
		m := New[int, int]()
		require.Error(t, msgpack.Unmarshal([]byte{0xa1, 'x'}, m))
	})
}

func TestMap_FailedDecodeKeepsContents(t *testing.T) {
	// Each input holds one valid pair before a value of the wrong type.
	inputs := map[string][]byte{
		"json":    []byte(`{"1": 1, "2": "two"}`),
		"yaml":    []byte("1: 1\n2: two\n"),
		"cbor":    {0xa2, 0x01, 0x01, 0x02, 0x63, 't', 'w', 'o'},
		"msgpack": {0x82, 0x01, 0x01, 0x02, 0xa3, 't', 'w', 'o'},
	}

	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			cd, ok := codec.ByName(name)
			require.True(t, ok)

			m := scenarioMap()
			require.Error(t, cd.Unmarshal(data, m))
			require.True(t, m.Equal(scenarioMap(), func(a, b int) bool { return a == b }))
		})
	}
}

func TestCounter_Encoding(t *testing.T) {
	c := CountAll(slices.Values([]string{"b", "a", "b"}))

	b, err := json.Marshal(c)
	require.NoError(t, err)
	require.Equal(t, `{"a":1,"b":2}`, string(b))

	b, err = c.Map().MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `{"a":1,"b":2}`, string(b), "counter has no wire form of its own")

	for _, name := range codec.Names() {
		t.Run(name, func(t *testing.T) {
			cd, ok := codec.ByName(name)
			require.True(t, ok)

			data, err := cd.Marshal(c)
			require.NoError(t, err)

			out := NewCounter[string]()
			require.NoError(t, cd.Unmarshal(data, out))
			assert.Equal(t, c.AsSlice(), out.AsSlice())
		})
	}
}

func TestMap_RoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))

	for _, name := range codec.Names() {
		t.Run(name, func(t *testing.T) {
			cd, _ := codec.ByName(name)

			for size := range 40 {
				m := New[string, int64]()
				for range size {
					m.Insert(strconv.Itoa(rnd.Intn(1000)), rnd.Int63n(1<<40)-(1<<39))
				}

				data := codec.MustMarshal(cd, m)

				out := New[string, int64]()
				require.NoError(t, cd.Unmarshal(data, out))
				require.True(t, m.Equal(out, func(a, b int64) bool { return a == b }), "%s != %s", m, out)
			}
		})
	}
}
