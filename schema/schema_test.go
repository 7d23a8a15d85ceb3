package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitiveSchemas(t *testing.T) {
	tests := []struct {
		name    string
		schema  JSON
		valid   []any
		invalid []any
	}{
		{
			name:    "string",
			schema:  String(),
			valid:   []any{"hello", ""},
			invalid: []any{123, true, []any{"a"}},
		},
		{
			name:    "boolean",
			schema:  Bool(),
			valid:   []any{true, false},
			invalid: []any{"true", 0},
		},
		{
			name:    "enum",
			schema:  JSON{Type: "string", Enum: []any{"zip", "war"}},
			valid:   []any{"zip", "war"},
			invalid: []any{"tar", 1},
		},
		{
			name:   "untyped",
			schema: JSON{},
			valid:  []any{nil, 1, "x", map[string]any{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, v := range tt.valid {
				assert.NoError(t, tt.schema.Validate(v), "value %#v", v)
			}
			for _, v := range tt.invalid {
				assert.Error(t, tt.schema.Validate(v), "value %#v", v)
			}
		})
	}
}

func TestObject(t *testing.T) {
	s := Object(map[string]JSON{
		"project_name": String(),
		"commit_title": String(),
		"slot_name":    String(),
	}, "project_name", "commit_title")

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, s.Validate(map[string]any{
			"project_name": "MyApp",
			"commit_title": "Fix login bug",
		}))
	})

	t.Run("missing required", func(t *testing.T) {
		err := s.Validate(map[string]any{"project_name": "MyApp"})
		assert.ErrorContains(t, err, "required field commit_title is missing")
	})

	t.Run("mistyped property", func(t *testing.T) {
		err := s.Validate(map[string]any{"project_name": 1, "commit_title": "x"})
		assert.ErrorContains(t, err, "property project_name")
	})

	t.Run("null optional is absent", func(t *testing.T) {
		assert.NoError(t, s.Validate(map[string]any{
			"project_name": "MyApp",
			"commit_title": "x",
			"slot_name":    nil,
		}))
	})

	t.Run("null required is rejected", func(t *testing.T) {
		err := s.Validate(map[string]any{"project_name": nil, "commit_title": "x"})
		assert.ErrorContains(t, err, "expected type string, got nil")
	})

	t.Run("unknown properties are allowed", func(t *testing.T) {
		assert.NoError(t, s.Validate(map[string]any{
			"project_name": "a", "commit_title": "b", "repo_path": "/tmp",
		}))
	})

	t.Run("not an object", func(t *testing.T) {
		assert.Error(t, s.Validate("nope"))
	})
}

type deployArgs struct {
	ResourceGroup string  `json:"resource_group" description:"Resource group"`
	Type          string  `json:"type" enum:"zip,war"`
	SlotName      *string `json:"slot_name,omitempty"`
	Restart       *bool   `json:"restart,omitempty"`
	Ignored       string  `json:"-"`
	Count         int     `json:"count,omitempty"`
	hidden        string
}

func TestFromType(t *testing.T) {
	s := FromType(deployArgs{})

	assert.Equal(t, "object", s.Type)
	assert.ElementsMatch(t, []string{"resource_group", "type"}, s.Required)
	require.Contains(t, s.Properties, "slot_name")
	assert.Equal(t, "string", s.Properties["slot_name"].Type)
	assert.Equal(t, "boolean", s.Properties["restart"].Type)
	assert.Equal(t, "Resource group", s.Properties["resource_group"].Description)
	assert.Equal(t, []any{"zip", "war"}, s.Properties["type"].Enum)
	assert.NotContains(t, s.Properties, "Ignored")
	assert.NotContains(t, s.Properties, "hidden")
	assert.Equal(t, "", s.Properties["count"].Type, "unmapped kinds stay untyped")

	assert.Equal(t, JSON{}, FromType(nil))
}

func TestFromType_MarshalsAsJSONSchema(t *testing.T) {
	data, err := json.Marshal(FromType(struct {
		Version string `json:"version"`
	}{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object","properties":{"version":{"type":"string"}},"required":["version"]}`, string(data))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		args  map[string]any
		check func(t *testing.T, got deployArgs)
	}{
		{
			name: "all fields",
			args: map[string]any{
				"resource_group": "rg",
				"type":           "zip",
				"slot_name":      "staging",
				"restart":        true,
				"extra":          "ignored",
			},
			check: func(t *testing.T, got deployArgs) {
				assert.Equal(t, "rg", got.ResourceGroup)
				require.NotNil(t, got.SlotName)
				assert.Equal(t, "staging", *got.SlotName)
				require.NotNil(t, got.Restart)
				assert.True(t, *got.Restart)
			},
		},
		{
			name: "null optional stays nil",
			args: map[string]any{"resource_group": "rg", "type": "war", "slot_name": nil},
			check: func(t *testing.T, got deployArgs) {
				assert.Nil(t, got.SlotName)
				assert.Nil(t, got.Restart)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got deployArgs
			require.NoError(t, Decode(tt.args, &got))
			tt.check(t, got)
		})
	}
}

func TestDecode_MistypedField(t *testing.T) {
	var got deployArgs
	assert.ErrorContains(t, Decode(map[string]any{"restart": "yes"}, &got), "decode arguments")
}
