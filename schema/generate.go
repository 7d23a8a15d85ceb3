package schema

import (
	"reflect"
	"strings"
)

// FromType derives the input schema of a tool from its request struct, so
// the advertised schema and the decoded request cannot drift apart.
//
// Field kinds map as follows: string to "string", bool to "boolean", a
// nested struct to "object", and a pointer to its element's schema. Any
// other kind is left untyped and accepts every value.
//
// Struct tags:
//   - `json:"name"`: property name; `json:"-"` skips the field
//   - `json:"name,omitempty"`: optional property (not in required)
//   - `description:"..."`: property description
//   - `enum:"a,b,c"`: allowed string values
func FromType(t any) JSON {
	if t == nil {
		return JSON{}
	}
	return fromReflectType(reflect.TypeOf(t))
}

func fromReflectType(t reflect.Type) JSON {
	switch t.Kind() {
	case reflect.Ptr:
		return fromReflectType(t.Elem())
	case reflect.Struct:
		return fromStruct(t)
	case reflect.String:
		return String()
	case reflect.Bool:
		return Bool()
	default:
		return JSON{}
	}
}

func fromStruct(t reflect.Type) JSON {
	properties := make(map[string]JSON)
	var required []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, opts, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
		}

		prop := fromReflectType(field.Type)
		prop.Description = field.Tag.Get("description")
		if enum := field.Tag.Get("enum"); enum != "" {
			for _, v := range strings.Split(enum, ",") {
				prop.Enum = append(prop.Enum, v)
			}
		}
		properties[name] = prop

		if !hasOption(opts, "omitempty") {
			required = append(required, name)
		}
	}

	return Object(properties, required...)
}

func hasOption(opts, want string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == want {
			return true
		}
	}
	return false
}
