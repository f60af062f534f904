package reagent

import (
	"context"
	"iter"
	"maps"
)

// ParamType is the JSON Schema type of a tool parameter. The empty type
// accepts any value.
type ParamType string

const (
	TypeAny     ParamType = ""
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
	TypeArray   ParamType = "array"
	TypeObject  ParamType = "object"
)

// Param describes one parameter of a tool. The position of a Param in
// [ToolDescriptor.Params] is the position of the argument passed to
// [Tool.Call].
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool

	// Schema holds further JSON Schema keywords of the property, such as
	// enum, minimum, items or nested properties. Type and Description take
	// precedence over the same keys here.
	Schema map[string]any
}

// ToolDescriptor describes a tool to the model and to the toolkit.
type ToolDescriptor struct {
	Name        string
	Description string
	Params      []Param
}

// Required returns the names of the required parameters, in order.
func (d ToolDescriptor) Required() []string {
	var out []string
	for _, p := range d.Params {
		if p.Required {
			out = append(out, p.Name)
		}
	}
	return out
}

// JSONSchema renders the parameter list as a JSON Schema object, suitable for
// model tool definitions and argument validation.
func (d ToolDescriptor) JSONSchema() map[string]any {
	props := make(map[string]any, len(d.Params))
	for _, p := range d.Params {
		prop := make(map[string]any, len(p.Schema)+2)
		maps.Copy(prop, p.Schema)
		if p.Type != TypeAny {
			prop["type"] = string(p.Type)
		}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		props[p.Name] = prop
	}
	s := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if req := d.Required(); len(req) > 0 {
		s["required"] = req
	}
	return s
}

// AbsentArg is the type of [Absent].
type AbsentArg struct{}

// Absent is passed positionally to [Tool.Call] for an optional parameter the
// caller did not supply. It is distinct from an explicit nil.
var Absent = AbsentArg{}

// IsAbsent reports whether v is the [Absent] placeholder.
func IsAbsent(v any) bool {
	_, ok := v.(AbsentArg)
	return ok
}

// MetaSuccess is the [ToolChunk.Metadata] key reporting whether the action
// succeeded. A missing key means success.
const MetaSuccess = "success"

// ToolChunk is one incremental result of a tool invocation.
type ToolChunk struct {
	// Content is the payload of this step. Text units are accumulated into
	// the action result.
	Content []ContentUnit

	// Metadata carries structured side information, e.g. [MetaSuccess] or
	// the final reply of a completion action.
	Metadata map[string]any

	// IsFinal marks the last chunk of an invocation.
	IsFinal bool
}

// TextChunk returns a chunk with a single text unit.
func TextChunk(text string) *ToolChunk {
	return &ToolChunk{Content: []ContentUnit{TextUnit{Text: text}}}
}

// ErrorChunk returns a terminal, failed chunk carrying err as text.
func ErrorChunk(err error) *ToolChunk {
	return &ToolChunk{
		Content:  []ContentUnit{TextUnit{Text: "Error: " + err.Error()}},
		Metadata: map[string]any{MetaSuccess: false},
		IsFinal:  true,
	}
}

// Success reports whether the chunk reports a successful action.
func (c *ToolChunk) Success() bool {
	if c == nil || c.Metadata == nil {
		return true
	}
	ok, has := c.Metadata[MetaSuccess].(bool)
	return !has || ok
}

// Text returns the text units of the chunk joined together.
func (c *ToolChunk) Text() string {
	if c == nil {
		return ""
	}
	return Structured(c.Content...).Text()
}

// ToolResponse is what a [Tool] produces: either one immediate chunk or a
// lazily produced sequence of chunks.
type ToolResponse struct {
	immediate *ToolChunk
	stream    iter.Seq2[*ToolChunk, error]
}

// Immediate wraps a single, complete result.
func Immediate(chunk *ToolChunk) *ToolResponse {
	return &ToolResponse{immediate: chunk}
}

// Streaming wraps a lazy sequence of results. A non-nil error ends the sequence.
func Streaming(seq iter.Seq2[*ToolChunk, error]) *ToolResponse {
	return &ToolResponse{stream: seq}
}

// Chunks returns the response as a sequence regardless of its shape.
func (r *ToolResponse) Chunks() iter.Seq2[*ToolChunk, error] {
	if r == nil {
		return func(func(*ToolChunk, error) bool) {}
	}
	if r.stream != nil {
		return r.stream
	}
	return func(yield func(*ToolChunk, error) bool) {
		if r.immediate != nil {
			yield(r.immediate, nil)
		}
	}
}

// IsStreaming reports whether the response is a lazy sequence.
func (r *ToolResponse) IsStreaming() bool {
	return r != nil && r.stream != nil
}

// Tool is a callable action exposed to the model.
//
// Call receives arguments positionally, ordered as the descriptor's Params.
// Optional parameters the model did not supply are passed as [Absent].
type Tool interface {
	Descriptor() ToolDescriptor
	Call(ctx context.Context, args []any) (*ToolResponse, error)
}

// ToolFunc adapts a function to the [Tool] interface.
type ToolFunc struct {
	descriptor ToolDescriptor
	fn         func(ctx context.Context, args []any) (*ToolResponse, error)
}

// NewToolFunc creates a tool from a descriptor and a function.
func NewToolFunc(
	descriptor ToolDescriptor,
	fn func(ctx context.Context, args []any) (*ToolResponse, error),
) *ToolFunc {
	return &ToolFunc{descriptor: descriptor, fn: fn}
}

// NewTextToolFunc creates a tool whose function returns plain text immediately.
func NewTextToolFunc(
	descriptor ToolDescriptor,
	fn func(ctx context.Context, args []any) (string, error),
) *ToolFunc {
	return NewToolFunc(descriptor, func(ctx context.Context, args []any) (*ToolResponse, error) {
		text, err := fn(ctx, args)
		if err != nil {
			return nil, err
		}
		chunk := TextChunk(text)
		chunk.IsFinal = true
		return Immediate(chunk), nil
	})
}

// Descriptor returns the tool descriptor.
func (t *ToolFunc) Descriptor() ToolDescriptor {
	return t.descriptor
}

// Call executes the wrapped function.
func (t *ToolFunc) Call(ctx context.Context, args []any) (*ToolResponse, error) {
	return t.fn(ctx, args)
}

// Compile-time check that ToolFunc implements Tool.
var _ Tool = (*ToolFunc)(nil)
