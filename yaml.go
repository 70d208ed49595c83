package smallmap

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// MarshalYAML emits the map as a YAML mapping in ascending key order.
func (m *Map[K, V]) MarshalYAML() (any, error) {
	node := &yaml.Node{
		Kind:    yaml.MappingNode,
		Tag:     "!!map",
		Content: make([]*yaml.Node, 0, 2*m.Len()),
	}

	for _, p := range m.AsSlice() {
		var k, v yaml.Node

		if err := k.Encode(p.Key); err != nil {
			return nil, err
		}

		if err := v.Encode(p.Value); err != nil {
			return nil, err
		}

		node.Content = append(node.Content, &k, &v)
	}

	return node, nil
}

// UnmarshalYAML replaces the contents of the map with the entries of a YAML
// mapping. Duplicate keys resolve to the last one. null is a no-op.
func (m *Map[K, V]) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.AliasNode {
		value = value.Alias
	}

	if value.Kind == yaml.ScalarNode && value.ShortTag() == "!!null" {
		return nil
	}

	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("smallmap: line %d: cannot decode YAML %s into a map", value.Line, value.ShortTag())
	}

	return m.replaceWith(func(dst *Map[K, V]) error {
		for i := 0; i+1 < len(value.Content); i += 2 {
			var (
				key K
				val V
			)

			if err := value.Content[i].Decode(&key); err != nil {
				return err
			}

			if err := value.Content[i+1].Decode(&val); err != nil {
				return err
			}

			dst.Insert(key, val)
		}

		return nil
	})
}

func (c *Counter[K]) MarshalYAML() (any, error) {
	return c.m.MarshalYAML()
}

func (c *Counter[K]) UnmarshalYAML(value *yaml.Node) error {
	return c.m.UnmarshalYAML(value)
}
