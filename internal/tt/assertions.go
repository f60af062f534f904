package tt

import (
	"context"
	"iter"
	"testing"

	"github.com/rickchristie/reagent"
	"github.com/stretchr/testify/require"
)

// Collect drains a chunk sequence.
func Collect(seq iter.Seq[*reagent.ToolChunk]) []*reagent.ToolChunk {
	var out []*reagent.ToolChunk
	for c := range seq {
		out = append(out, c)
	}
	return out
}

// ListMemory returns the messages in mem, failing the test on error.
func ListMemory(t *testing.T, mem reagent.Memory) []*reagent.Message {
	t.Helper()
	msgs, err := mem.List(context.Background())
	require.NoError(t, err)
	return msgs
}

// ActionResults returns every action result in msgs, in log order.
func ActionResults(msgs []*reagent.Message) []*reagent.ActionResult {
	var out []*reagent.ActionResult
	for _, m := range msgs {
		out = append(out, m.Content.ActionResults()...)
	}
	return out
}

// Roles returns the role of every message.
func Roles(msgs []*reagent.Message) []reagent.Role {
	out := make([]reagent.Role, len(msgs))
	for i, m := range msgs {
		out[i] = m.Role
	}
	return out
}
