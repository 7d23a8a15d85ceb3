package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// JSON represents a JSON Schema definition.
// It is advertised to clients as a tool's input schema and used to validate
// their arguments before a handler runs.
type JSON struct {
	Type        string          `json:"type,omitempty"`
	Description string          `json:"description,omitempty"`
	Properties  map[string]JSON `json:"properties,omitempty"`
	Required    []string        `json:"required,omitempty"`
	Enum        []any           `json:"enum,omitempty"`
}

// String creates a JSON schema for a string type.
func String() JSON {
	return JSON{Type: "string"}
}

// Bool creates a JSON schema for a boolean type.
func Bool() JSON {
	return JSON{Type: "boolean"}
}

// Object creates a JSON schema for an object type with the specified properties and required fields.
func Object(properties map[string]JSON, required ...string) JSON {
	return JSON{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// Validate validates the given value against this JSON schema.
// It returns an error if the value does not conform to the schema.
//
// Optional object properties that are present with a null value are treated
// as absent, so clients may send {"slot_name": null}.
func (s JSON) Validate(value any) error {
	if value == nil {
		if s.Type != "" {
			return fmt.Errorf("expected type %s, got nil", s.Type)
		}
		return nil
	}

	if err := s.validateType(value); err != nil {
		return err
	}
	if len(s.Enum) > 0 {
		return s.validateEnum(value)
	}
	if s.Type == "object" {
		return s.validateObject(value)
	}
	return nil
}

// validateType checks if the value matches the expected type.
func (s JSON) validateType(value any) error {
	v := reflect.ValueOf(value)

	switch s.Type {
	case "string":
		if v.Kind() != reflect.String {
			return fmt.Errorf("expected string, got %T", value)
		}
	case "boolean":
		if v.Kind() != reflect.Bool {
			return fmt.Errorf("expected boolean, got %T", value)
		}
	case "object":
		if v.Kind() != reflect.Map && v.Kind() != reflect.Struct {
			return fmt.Errorf("expected object, got %T", value)
		}
	}

	return nil
}

// validateObject checks required fields and the declared properties.
func (s JSON) validateObject(value any) error {
	var objMap map[string]any

	switch v := value.(type) {
	case map[string]any:
		objMap = v
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal object: %w", err)
		}
		if err := json.Unmarshal(data, &objMap); err != nil {
			return fmt.Errorf("failed to unmarshal object: %w", err)
		}
	}

	required := make(map[string]bool, len(s.Required))
	for _, req := range s.Required {
		required[req] = true
		if _, exists := objMap[req]; !exists {
			return fmt.Errorf("required field %s is missing", req)
		}
	}

	// Sorted so the first reported error is deterministic.
	keys := make([]string, 0, len(objMap))
	for key := range objMap {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		propSchema, exists := s.Properties[key]
		if !exists {
			continue
		}
		val := objMap[key]
		if val == nil && !required[key] {
			continue
		}
		if err := propSchema.Validate(val); err != nil {
			return fmt.Errorf("property %s: %w", key, err)
		}
	}

	return nil
}

// validateEnum validates that the value is one of the allowed enum values.
func (s JSON) validateEnum(value any) error {
	for _, enumVal := range s.Enum {
		if reflect.DeepEqual(value, enumVal) {
			return nil
		}
	}
	return fmt.Errorf("value %v is not one of the allowed values: %v", value, s.Enum)
}
