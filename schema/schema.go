// Package schema compiles JSON Schemas and validates action arguments against
// them.
//
// It serves two callers. The toolkit validates every tool invocation against
// the schema derived from the tool's [reagent.ToolDescriptor]. The ReAct agent
// validates the arguments of the completion action against a structured
// output contract supplied by the user:
//
//	contract := schema.MustCompile(schema.Object(map[string]*schema.Property{
//	    "title":    schema.String("Short title of the answer"),
//	    "priority": schema.Integer("1 (low) to 3 (high)").Min(1).Max(3),
//	}, "title"))
//
//	agent := react.NewAgent("assistant", model).WithStructuredOutput(contract)
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/rickchristie/reagent"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a compiled JSON Schema together with its raw form. The raw form
// is what models see; the compiled form is what arguments are checked
// against.
type Schema struct {
	raw      map[string]any
	compiled *jsonschema.Schema
}

// Raw returns the schema as a map.
func (s *Schema) Raw() map[string]any {
	if s == nil {
		return nil
	}
	return s.raw
}

// Validate checks data against the schema. A nil schema accepts everything.
//
// Data is normalized through JSON first, so Go ints, float64s and
// json.Number values validate the same way.
func (s *Schema) Validate(data map[string]any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	doc, err := normalize(data)
	if err != nil {
		return &ValidationError{Err: err}
	}
	if err := s.compiled.Validate(doc); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// Params lists the top-level properties of an object schema as tool
// parameters, sorted by name. Required properties are flagged. Keywords other
// than type and description (enum, bounds, nested properties) are carried in
// Param.Schema so that a tool built from the params shows the whole contract.
func (s *Schema) Params() []reagent.Param {
	if s == nil {
		return nil
	}
	props, _ := s.raw["properties"].(map[string]any)
	required := requiredSet(s.raw["required"])

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]reagent.Param, 0, len(names))
	for _, name := range names {
		prop, _ := props[name].(map[string]any)
		typ, _ := prop["type"].(string)
		desc, _ := prop["description"].(string)
		out = append(out, reagent.Param{
			Name:        name,
			Type:        reagent.ParamType(typ),
			Description: desc,
			Required:    required[name],
			Schema:      extraKeywords(prop),
		})
	}
	return out
}

// extraKeywords returns prop without the string type and description, or nil
// when nothing else is set.
func extraKeywords(prop map[string]any) map[string]any {
	var out map[string]any
	for k, v := range prop {
		if _, isString := v.(string); isString && (k == "type" || k == "description") {
			continue
		}
		if out == nil {
			out = map[string]any{}
		}
		out[k] = v
	}
	return out
}

func requiredSet(v any) map[string]bool {
	out := map[string]bool{}
	switch req := v.(type) {
	case []string:
		for _, r := range req {
			out[r] = true
		}
	case []any:
		for _, r := range req {
			if name, ok := r.(string); ok {
				out[name] = true
			}
		}
	}
	return out
}

// ValidationError reports data that does not satisfy a schema.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Compile compiles a raw schema. A nil map yields a nil schema, which accepts
// everything.
func Compile(raw map[string]any) (*Schema, error) {
	if raw == nil {
		return nil, nil
	}

	doc, err := normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Schema{raw: raw, compiled: compiled}, nil
}

// MustCompile is like [Compile] but panics on error. Use it for schemas
// declared at package level.
func MustCompile(raw map[string]any) *Schema {
	s, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// ForTool compiles the argument schema of a tool descriptor.
func ForTool(d reagent.ToolDescriptor) (*Schema, error) {
	s, err := Compile(d.JSONSchema())
	if err != nil {
		return nil, fmt.Errorf("tool %q: %w", d.Name, err)
	}
	return s, nil
}

// normalize round-trips v through JSON into the representation the
// validator expects.
func normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(b))
}
