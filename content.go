package reagent

import (
	"strings"
)

// UnitKind identifies the variant of a [ContentUnit].
type UnitKind string

const (
	UnitText          UnitKind = "text"
	UnitThinking      UnitKind = "thinking"
	UnitActionRequest UnitKind = "action_request"
	UnitActionResult  UnitKind = "action_result"
)

// ContentUnit is one element of a structured message body. The set of
// implementations is closed: [TextUnit], [ThinkingUnit], [ActionRequest] and
// [ActionResult].
type ContentUnit interface {
	Kind() UnitKind
	clone() ContentUnit
}

// TextUnit is plain text produced by a user, the model, or a tool.
type TextUnit struct {
	Text string
}

func (TextUnit) Kind() UnitKind { return UnitText }

func (u TextUnit) clone() ContentUnit { return u }

// ThinkingUnit carries model reasoning that is shown but never sent back as an answer.
type ThinkingUnit struct {
	Thinking string
}

func (ThinkingUnit) Kind() UnitKind { return UnitThinking }

func (u ThinkingUnit) clone() ContentUnit { return u }

// ActionRequest is a request, emitted by the model, to invoke the named action.
type ActionRequest struct {
	ID   string
	Name string
	Args map[string]any
}

func (*ActionRequest) Kind() UnitKind { return UnitActionRequest }

func (r *ActionRequest) clone() ContentUnit {
	return &ActionRequest{ID: r.ID, Name: r.Name, Args: cloneArgs(r.Args)}
}

// ActionResult is the outcome of one [ActionRequest]. ID always matches the
// request it answers.
type ActionResult struct {
	ID     string
	Name   string
	Output string
}

func (*ActionResult) Kind() UnitKind { return UnitActionResult }

func (r *ActionResult) clone() ContentUnit {
	c := *r
	return &c
}

// Content is the body of a [Message]. It is either plain text or an ordered
// list of content units, never both. Use [PlainText] or [Structured] to build
// one; the zero value is empty plain text.
type Content struct {
	text       string
	units      []ContentUnit
	structured bool
}

// PlainText returns text content.
func PlainText(text string) Content {
	return Content{text: text}
}

// Structured returns content made of the given units, in order.
func Structured(units ...ContentUnit) Content {
	out := make([]ContentUnit, len(units))
	copy(out, units)
	return Content{units: out, structured: true}
}

// IsStructured reports whether the content holds content units.
func (c Content) IsStructured() bool {
	return c.structured
}

// Text returns the textual view of the content. For plain text this is the
// text itself; for structured content it is every [TextUnit] joined with a
// newline. Thinking, requests and results are not part of the text.
func (c Content) Text() string {
	if !c.structured {
		return c.text
	}
	var parts []string
	for _, u := range c.units {
		if t, ok := u.(TextUnit); ok {
			parts = append(parts, t.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// Units returns the content as units. Plain text converts to a single
// [TextUnit], or no units if the text is empty. The returned slice is a copy.
func (c Content) Units() []ContentUnit {
	if !c.structured {
		if c.text == "" {
			return nil
		}
		return []ContentUnit{TextUnit{Text: c.text}}
	}
	out := make([]ContentUnit, len(c.units))
	copy(out, c.units)
	return out
}

// AsStructured converts the content to its structured form.
func (c Content) AsStructured() Content {
	if c.structured {
		return c
	}
	return Structured(c.Units()...)
}

// Append returns structured content with units appended.
func (c Content) Append(units ...ContentUnit) Content {
	base := c.Units()
	return Content{units: append(base, units...), structured: true}
}

// ActionRequests returns the action requests in order of appearance.
func (c Content) ActionRequests() []*ActionRequest {
	var out []*ActionRequest
	for _, u := range c.units {
		if r, ok := u.(*ActionRequest); ok {
			out = append(out, r)
		}
	}
	return out
}

// ActionResults returns the action results in order of appearance.
func (c Content) ActionResults() []*ActionResult {
	var out []*ActionResult
	for _, u := range c.units {
		if r, ok := u.(*ActionResult); ok {
			out = append(out, r)
		}
	}
	return out
}

// IsEmpty reports whether the content has no text and no units.
func (c Content) IsEmpty() bool {
	if c.structured {
		return len(c.units) == 0
	}
	return c.text == ""
}

func (c Content) clone() Content {
	if !c.structured {
		return c
	}
	out := make([]ContentUnit, len(c.units))
	for i, u := range c.units {
		out[i] = u.clone()
	}
	return Content{units: out, structured: true}
}

func cloneArgs(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
