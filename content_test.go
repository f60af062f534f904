package reagent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContent_Text(t *testing.T) {
	tests := []struct {
		name     string
		input    Content
		expected string
	}{
		{name: "zero value", input: Content{}, expected: ""},
		{name: "plain", input: PlainText("hello"), expected: "hello"},
		{
			name: "structured joins text units only",
			input: Structured(
				ThinkingUnit{Thinking: "hidden"},
				TextUnit{Text: "a"},
				&ActionRequest{ID: "1", Name: "t"},
				TextUnit{Text: "b"},
			),
			expected: "a\nb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.input.Text())
		})
	}
}

func TestContent_Units(t *testing.T) {
	assert.Nil(t, PlainText("").Units())
	assert.Equal(t, []ContentUnit{TextUnit{Text: "x"}}, PlainText("x").Units())

	c := Structured(TextUnit{Text: "a"})
	units := c.Units()
	units[0] = TextUnit{Text: "changed"}
	assert.Equal(t, "a", c.Text(), "Units must return a copy")
}

func TestContent_AppendAndSelectors(t *testing.T) {
	req := &ActionRequest{ID: "r1", Name: "search"}
	res := &ActionResult{ID: "r1", Name: "search", Output: "found"}

	c := PlainText("thinking aloud").Append(req, res)

	assert.True(t, c.IsStructured())
	assert.Equal(t, "thinking aloud", c.Text())
	assert.Equal(t, []*ActionRequest{req}, c.ActionRequests())
	assert.Equal(t, []*ActionResult{res}, c.ActionResults())
	assert.Equal(t, c, c.AsStructured())
	assert.True(t, PlainText("x").AsStructured().IsStructured())
}

func TestContent_IsEmpty(t *testing.T) {
	assert.True(t, Content{}.IsEmpty())
	assert.True(t, Structured().IsEmpty())
	assert.False(t, PlainText(" ").IsEmpty())
	assert.False(t, Structured(ThinkingUnit{}).IsEmpty())
}

func TestUnitKinds(t *testing.T) {
	assert.Equal(t, UnitText, TextUnit{}.Kind())
	assert.Equal(t, UnitThinking, ThinkingUnit{}.Kind())
	assert.Equal(t, UnitActionRequest, (&ActionRequest{}).Kind())
	assert.Equal(t, UnitActionResult, (&ActionResult{}).Kind())
}
