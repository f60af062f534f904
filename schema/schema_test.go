package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/rickchristie/reagent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	type expected struct {
		isNil  bool
		hasErr bool
	}

	tests := []struct {
		name     string
		raw      map[string]any
		expected expected
	}{
		{
			name:     "nil schema",
			raw:      nil,
			expected: expected{isNil: true},
		},
		{
			name: "object schema",
			raw: Object(map[string]*Property{
				"title": String("Title"),
			}, "title"),
			expected: expected{},
		},
		{
			name:     "invalid type keyword",
			raw:      map[string]any{"type": 12},
			expected: expected{isNil: true, hasErr: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Compile(tt.raw)

			if tt.expected.hasErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected.isNil, s == nil)
		})
	}
}

func TestMustCompile_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustCompile(map[string]any{"type": 12})
	})
}

func TestSchema_Validate(t *testing.T) {
	contract := MustCompile(Object(map[string]*Property{
		"title":    String("Title").MinLength(1),
		"priority": Integer("Priority").Min(1).Max(3),
		"tags":     Array("Tags", String("").Map()),
	}, "title"))

	tests := []struct {
		name    string
		data    map[string]any
		wantErr bool
	}{
		{
			name: "valid with extra response field",
			data: map[string]any{"response": "done", "title": "Report"},
		},
		{
			name: "go int",
			data: map[string]any{"title": "x", "priority": 2},
		},
		{
			name: "json number",
			data: map[string]any{"title": "x", "priority": json.Number("3")},
		},
		{
			name: "float64 whole number counts as integer",
			data: map[string]any{"title": "x", "priority": float64(1)},
		},
		{
			name:    "wrong type",
			data:    map[string]any{"response": "done", "title": 5},
			wantErr: true,
		},
		{
			name:    "missing required",
			data:    map[string]any{"priority": 1},
			wantErr: true,
		},
		{
			name:    "out of range",
			data:    map[string]any{"title": "x", "priority": 9},
			wantErr: true,
		},
		{
			name:    "bad array element",
			data:    map[string]any{"title": "x", "tags": []any{"a", 1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := contract.Validate(tt.data)

			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var vErr *ValidationError
			assert.True(t, errors.As(err, &vErr))
			assert.Contains(t, err.Error(), "schema validation failed")
		})
	}
}

func TestSchema_Validate_NilSchema(t *testing.T) {
	var s *Schema
	assert.NoError(t, s.Validate(map[string]any{"anything": 1}))
	assert.Nil(t, s.Raw())
	assert.Nil(t, s.Params())
}

func TestSchema_Params(t *testing.T) {
	s := MustCompile(Object(map[string]*Property{
		"title":    String("Title"),
		"priority": Integer("Priority"),
		"done":     Boolean(""),
	}, "title"))

	assert.Equal(t, []reagent.Param{
		{Name: "done", Type: reagent.TypeBoolean},
		{Name: "priority", Type: reagent.TypeInteger, Description: "Priority"},
		{Name: "title", Type: reagent.TypeString, Description: "Title", Required: true},
	}, s.Params())
}

func TestSchema_Params_KeepsConstraints(t *testing.T) {
	raw := Object(map[string]*Property{
		"priority": Integer("Priority").Min(1).Max(3),
		"status":   String("").Enum("open", "closed"),
		"tags":     Array("Tags", String("").Map()),
	}, "priority")
	raw["properties"].(map[string]any)["nullable"] = map[string]any{"type": []any{"string", "null"}}
	s := MustCompile(raw)

	params := s.Params()
	require.Len(t, params, 4)

	byName := make(map[string]reagent.Param, len(params))
	for _, p := range params {
		byName[p.Name] = p
	}
	assert.Equal(t, map[string]any{"minimum": 1.0, "maximum": 3.0}, byName["priority"].Schema)
	assert.Equal(t, map[string]any{"enum": []any{"open", "closed"}}, byName["status"].Schema)
	assert.Equal(t, map[string]any{"items": map[string]any{"type": "string"}}, byName["tags"].Schema)
	assert.Equal(t, reagent.TypeAny, byName["nullable"].Type)
	assert.Equal(t, map[string]any{"type": []any{"string", "null"}}, byName["nullable"].Schema)

	rendered := reagent.ToolDescriptor{Name: "t", Params: params}.JSONSchema()
	props := rendered["properties"].(map[string]any)
	assert.Equal(t, map[string]any{
		"type":        "integer",
		"description": "Priority",
		"minimum":     1.0,
		"maximum":     3.0,
	}, props["priority"])
}

func TestForTool(t *testing.T) {
	d := reagent.ToolDescriptor{
		Name: "get_weather",
		Params: []reagent.Param{
			{Name: "city", Type: reagent.TypeString, Required: true},
			{Name: "days", Type: reagent.TypeInteger},
			{Name: "extra"},
		},
	}

	s, err := ForTool(d)
	require.NoError(t, err)

	assert.NoError(t, s.Validate(map[string]any{"city": "Paris"}))
	assert.NoError(t, s.Validate(map[string]any{"city": "Paris", "days": 3, "extra": []any{1}}))
	assert.Error(t, s.Validate(map[string]any{"city": "Paris", "days": "three"}))
	assert.Error(t, s.Validate(map[string]any{"days": 3}))
}

func TestBuilders(t *testing.T) {
	tests := []struct {
		name     string
		prop     *Property
		expected map[string]any
	}{
		{
			name: "string constraints",
			prop: String("Code").MinLength(2).MaxLength(4).Pattern(`^[A-Z]+$`),
			expected: map[string]any{
				"type":        "string",
				"description": "Code",
				"minLength":   2,
				"maxLength":   4,
				"pattern":     `^[A-Z]+$`,
			},
		},
		{
			name: "number range",
			prop: Number("").Min(0).Max(1),
			expected: map[string]any{
				"type":    "number",
				"minimum": float64(0),
				"maximum": float64(1),
			},
		},
		{
			name: "enum with default",
			prop: String("Units").Enum("metric", "imperial").Default("metric"),
			expected: map[string]any{
				"type":        "string",
				"description": "Units",
				"enum":        []any{"metric", "imperial"},
				"default":     "metric",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.prop.Map())
		})
	}
}

func TestValidationError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := &ValidationError{Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "schema validation failed: inner", err.Error())
}
