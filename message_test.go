package reagent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	a := NewTextMessage("user", RoleUser, "hi")
	b := NewTextMessage("user", RoleUser, "hi")

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Timestamp.IsZero())
	assert.Equal(t, "hi", a.Text())
}

func TestMessage_Clone(t *testing.T) {
	orig := NewMessage("assistant", RoleAssistant, Structured(
		TextUnit{Text: "calling"},
		&ActionRequest{ID: "c1", Name: "calc", Args: map[string]any{"expr": "1+1"}},
	))
	orig.Metadata = map[string]any{"k": "v"}

	cp := orig.Clone()
	cp.ActionRequests()[0].Args["expr"] = "2+2"
	cp.ActionRequests()[0].Name = "other"
	cp.Metadata["k"] = "changed"

	req := orig.ActionRequests()[0]
	assert.Equal(t, "1+1", req.Args["expr"])
	assert.Equal(t, "calc", req.Name)
	assert.Equal(t, "v", orig.Metadata["k"])
	assert.Equal(t, orig.ID, cp.ID)
}

func TestMessage_NilSafe(t *testing.T) {
	var m *Message

	assert.Equal(t, "", m.Text())
	assert.Nil(t, m.ActionRequests())
	assert.Nil(t, m.Clone())
}

func TestCloneMessages(t *testing.T) {
	in := []*Message{NewTextMessage("a", RoleUser, "x"), nil}

	out := CloneMessages(in)

	require.Len(t, out, 2)
	assert.NotSame(t, in[0], out[0])
	assert.Nil(t, out[1])
}

func TestNewRequestID(t *testing.T) {
	id := NewRequestID()

	assert.True(t, strings.HasPrefix(id, "call_"))
	assert.NotEqual(t, id, NewRequestID())
}
