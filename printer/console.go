// Package printer renders agent messages for humans.
//
// [Console] writes messages to a terminal as they grow. [YAML] writes every
// final message as a YAML document, and [WriteTranscript] dumps a whole
// conversation log.
package printer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/rickchristie/reagent"
)

// Console prints messages incrementally.
//
// The agent sends the full message on every step. Console remembers what it
// already wrote per message ID and writes only the new suffix. When a step
// rewrites text that was already shown, it writes a unified diff of the
// change instead.
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	shown   map[string]string
	palette palette
}

type palette struct {
	name     func(a ...any) string
	thinking func(a ...any) string
	action   func(a ...any) string
	failure  func(a ...any) string
}

// NewConsole creates a console printer writing to w. Colors follow
// color.NoColor, which is set when w is not a terminal.
func NewConsole(w io.Writer) *Console {
	c := &Console{w: w, shown: make(map[string]string)}
	return c.WithColor(!color.NoColor)
}

// WithColor switches ANSI colors on or off.
func (c *Console) WithColor(enabled bool) *Console {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !enabled {
		plain := func(a ...any) string { return fmt.Sprint(a...) }
		c.palette = palette{name: plain, thinking: plain, action: plain, failure: plain}
		return c
	}
	attr := func(attrs ...color.Attribute) func(a ...any) string {
		col := color.New(attrs...)
		col.EnableColor()
		return col.SprintFunc()
	}
	c.palette = palette{
		name:     attr(color.FgCyan, color.Bold),
		thinking: attr(color.FgHiBlack),
		action:   attr(color.FgYellow),
		failure:  attr(color.FgRed),
	}
	return c
}

// Print implements reagent.Printer.
func (c *Console) Print(_ context.Context, msg *reagent.Message, isFinal bool) {
	if msg == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.render(msg)
	prev, seen := c.shown[msg.ID]

	var out string
	switch {
	case !seen:
		out = current
	case strings.HasPrefix(current, prev):
		out = current[len(prev):]
	default:
		out = "\n" + diff(prev, current)
	}

	if isFinal {
		delete(c.shown, msg.ID)
		out += "\n"
	} else {
		c.shown[msg.ID] = current
	}
	_, _ = io.WriteString(c.w, out)
}

func (c *Console) render(msg *reagent.Message) string {
	var sb strings.Builder
	sb.WriteString(c.palette.name(msg.Name))
	sb.WriteString(": ")

	if !msg.Content.IsStructured() {
		sb.WriteString(msg.Content.Text())
		return sb.String()
	}

	for i, u := range msg.Content.Units() {
		if i > 0 {
			sb.WriteString("\n")
		}
		switch v := u.(type) {
		case reagent.TextUnit:
			sb.WriteString(v.Text)
		case reagent.ThinkingUnit:
			sb.WriteString(c.palette.thinking(v.Thinking))
		case *reagent.ActionRequest:
			sb.WriteString(c.palette.action(fmt.Sprintf("-> %s(%s)", v.Name, compactJSON(v.Args))))
		case *reagent.ActionResult:
			if strings.HasPrefix(v.Output, "Error: ") {
				sb.WriteString(c.palette.failure(fmt.Sprintf("<- %s: %s", v.Name, v.Output)))
			} else {
				sb.WriteString(fmt.Sprintf("<- %s: %s", v.Name, v.Output))
			}
		}
	}
	return sb.String()
}

func compactJSON(args map[string]any) string {
	if len(args) == 0 {
		return ""
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprint(args)
	}
	return string(data)
}

func diff(prev, current string) string {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(prev),
		B:        difflib.SplitLines(current),
		FromFile: "shown",
		ToFile:   "current",
		Context:  1,
	})
	if err != nil {
		return current
	}
	return text
}

var _ reagent.Printer = (*Console)(nil)
