package codec

import (
	"bytes"

	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// JSON is backed by github.com/goccy/go-json.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return append(b, '\n'), nil
}

func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (JSON) Name() string { return "json" }

// YAML is backed by gopkg.in/yaml.v3.
type YAML struct{}

func (YAML) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	if err := enc.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (YAML) Unmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }

func (YAML) Name() string { return "yaml" }

// CBOR is backed by github.com/fxamacker/cbor/v2.
type CBOR struct{}

func (CBOR) Marshal(v any) ([]byte, error) { return cbor.Marshal(v) }

func (CBOR) Unmarshal(data []byte, v any) error { return cbor.Unmarshal(data, v) }

func (CBOR) Name() string { return "cbor" }

// Msgpack is backed by github.com/vmihailenco/msgpack/v5.
type Msgpack struct{}

func (Msgpack) Marshal(v any) ([]byte, error) { return msgpack.Marshal(v) }

func (Msgpack) Unmarshal(data []byte, v any) error { return msgpack.Unmarshal(data, v) }

func (Msgpack) Name() string { return "msgpack" }
