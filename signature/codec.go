package signature

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// MarshalText encodes the signature as its canonical string.
func (s *Signature) MarshalText() ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("signature: marshal of nil signature")
	}
	return []byte(s.String()), nil
}

// UnmarshalText parses a canonical string into s.
func (s *Signature) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

// MarshalJSON encodes the signature as a JSON string.
func (s *Signature) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a JSON string holding a signature.
func (s *Signature) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("signature: expected a JSON string: %w", err)
	}
	return s.UnmarshalText([]byte(text))
}

// MarshalYAML encodes the signature as a YAML scalar.
func (s *Signature) MarshalYAML() (interface{}, error) {
	if s == nil {
		return nil, nil
	}
	return s.String(), nil
}

// UnmarshalYAML decodes a YAML scalar holding a signature.
func (s *Signature) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("signature: expected a scalar at line %d", node.Line)
	}
	return s.UnmarshalText([]byte(node.Value))
}
