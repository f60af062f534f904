package reagent

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// unitDoc is the serialized form of a ContentUnit.
type unitDoc struct {
	Type     UnitKind       `json:"type" yaml:"type"`
	Text     string         `json:"text,omitempty" yaml:"text,omitempty"`
	Thinking string         `json:"thinking,omitempty" yaml:"thinking,omitempty"`
	ID       string         `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string         `json:"name,omitempty" yaml:"name,omitempty"`
	Args     map[string]any `json:"args,omitempty" yaml:"args,omitempty"`
	Output   string         `json:"output,omitempty" yaml:"output,omitempty"`
}

// contentDoc is the serialized form of Content. Exactly one of Text and
// Units is set.
type contentDoc struct {
	Text  *string    `json:"text,omitempty" yaml:"text,omitempty"`
	Units *[]unitDoc `json:"units,omitempty" yaml:"units,omitempty"`
}

func (c Content) doc() contentDoc {
	if !c.structured {
		text := c.text
		return contentDoc{Text: &text}
	}
	units := make([]unitDoc, 0, len(c.units))
	for _, u := range c.units {
		switch v := u.(type) {
		case TextUnit:
			units = append(units, unitDoc{Type: UnitText, Text: v.Text})
		case ThinkingUnit:
			units = append(units, unitDoc{Type: UnitThinking, Thinking: v.Thinking})
		case *ActionRequest:
			units = append(units, unitDoc{Type: UnitActionRequest, ID: v.ID, Name: v.Name, Args: v.Args})
		case *ActionResult:
			units = append(units, unitDoc{Type: UnitActionResult, ID: v.ID, Name: v.Name, Output: v.Output})
		}
	}
	return contentDoc{Units: &units}
}

func (d contentDoc) content() (Content, error) {
	if d.Units == nil {
		if d.Text == nil {
			return Content{}, nil
		}
		return PlainText(*d.Text), nil
	}
	units := make([]ContentUnit, 0, len(*d.Units))
	for _, u := range *d.Units {
		switch u.Type {
		case UnitText:
			units = append(units, TextUnit{Text: u.Text})
		case UnitThinking:
			units = append(units, ThinkingUnit{Thinking: u.Thinking})
		case UnitActionRequest:
			units = append(units, &ActionRequest{ID: u.ID, Name: u.Name, Args: u.Args})
		case UnitActionResult:
			units = append(units, &ActionResult{ID: u.ID, Name: u.Name, Output: u.Output})
		default:
			return Content{}, fmt.Errorf("unknown content unit type %q", u.Type)
		}
	}
	return Structured(units...), nil
}

// MarshalJSON encodes plain text as {"text": ...} and structured content as
// {"units": [...]}, each unit tagged with its "type".
func (c Content) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.doc())
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (c *Content) UnmarshalJSON(data []byte) error {
	var d contentDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	out, err := d.content()
	if err != nil {
		return err
	}
	*c = out
	return nil
}

// MarshalYAML uses the same layout as MarshalJSON.
func (c Content) MarshalYAML() (any, error) {
	return c.doc(), nil
}

// UnmarshalYAML decodes the form written by MarshalYAML.
func (c *Content) UnmarshalYAML(node *yaml.Node) error {
	var d contentDoc
	if err := node.Decode(&d); err != nil {
		return err
	}
	out, err := d.content()
	if err != nil {
		return err
	}
	*c = out
	return nil
}
