package printer

import (
	"bytes"
	"context"
	"testing"

	"github.com/rickchristie/reagent"
	"github.com/stretchr/testify/assert"
)

func newPlainConsole() (*Console, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewConsole(&buf).WithColor(false), &buf
}

func TestConsole_StreamsSuffixes(t *testing.T) {
	c, buf := newPlainConsole()
	ctx := context.Background()
	msg := reagent.NewTextMessage("assistant", reagent.RoleAssistant, "Hel")

	c.Print(ctx, msg, false)
	msg.Content = reagent.PlainText("Hello")
	c.Print(ctx, msg, false)
	c.Print(ctx, msg, true)

	assert.Equal(t, "assistant: Hello\n", buf.String())
}

func TestConsole_FinalOnly(t *testing.T) {
	c, buf := newPlainConsole()

	c.Print(context.Background(), reagent.NewTextMessage("user", reagent.RoleUser, "hi"), true)

	assert.Equal(t, "user: hi\n", buf.String())
}

func TestConsole_RewriteShowsDiff(t *testing.T) {
	c, buf := newPlainConsole()
	ctx := context.Background()
	msg := reagent.NewTextMessage("assistant", reagent.RoleAssistant, "line one\nline two")

	c.Print(ctx, msg, false)
	msg.Content = reagent.PlainText("line one\nline 2")
	c.Print(ctx, msg, true)

	out := buf.String()
	assert.Contains(t, out, "--- shown")
	assert.Contains(t, out, "+++ current")
	assert.Contains(t, out, "-line two")
	assert.Contains(t, out, "+line 2")
}

func TestConsole_RendersUnits(t *testing.T) {
	c, buf := newPlainConsole()

	c.Print(context.Background(), reagent.NewMessage("assistant", reagent.RoleAssistant, reagent.Structured(
		reagent.ThinkingUnit{Thinking: "need data"},
		reagent.TextUnit{Text: "Looking."},
		&reagent.ActionRequest{ID: "1", Name: "search", Args: map[string]any{"q": "go"}},
		&reagent.ActionResult{ID: "1", Name: "search", Output: "Error: offline"},
	)), true)

	assert.Equal(t,
		"assistant: need data\nLooking.\n-> search({\"q\":\"go\"})\n<- search: Error: offline\n",
		buf.String())
}

func TestConsole_SeparateMessagesTrackedIndependently(t *testing.T) {
	c, buf := newPlainConsole()
	ctx := context.Background()
	a := reagent.NewTextMessage("a", reagent.RoleAssistant, "x")
	b := reagent.NewTextMessage("b", reagent.RoleAssistant, "y")

	c.Print(ctx, a, false)
	c.Print(ctx, b, true)
	a.Content = reagent.PlainText("xz")
	c.Print(ctx, a, true)

	assert.Equal(t, "a: xb: y\nz\n", buf.String())
}

func TestConsole_Color(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf).WithColor(true)

	c.Print(context.Background(), reagent.NewTextMessage("assistant", reagent.RoleAssistant, "hi"), true)

	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "hi")
}

func TestConsole_NilMessage(t *testing.T) {
	c, buf := newPlainConsole()

	c.Print(context.Background(), nil, true)

	assert.Empty(t, buf.String())
}
