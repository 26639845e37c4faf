package schema

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON serializes the schema as a map of field names to type strings.
// Custom and object types serialize by name and do not round-trip.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}

	raw := make(map[string]string, len(s))
	for key, typ := range s {
		if typ == nil {
			return nil, fmt.Errorf("field %s: type is nil", key)
		}
		raw[key] = typ.Name()
	}

	return json.Marshal(raw)
}

// UnmarshalJSON deserializes the schema from a map of field names to type strings.
func (s *Schema) UnmarshalJSON(data []byte) error {
	if s == nil {
		return fmt.Errorf("schema: UnmarshalJSON on nil pointer")
	}

	if string(data) == "null" {
		*s = nil
		return nil
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	names := make(map[string]string, len(raw))
	for key, value := range raw {
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %s: expected string type, got %T", key, value)
		}
		names[key] = str
	}

	parsed, err := ParseTypeMap(names)
	if err != nil {
		return err
	}

	*s = parsed
	return nil
}

// Describe returns the type name of every field, keyed by field.
func (s Schema) Describe() map[string]string {
	out := make(map[string]string, len(s))
	for key, typ := range s {
		out[key] = typ.Name()
	}
	return out
}
