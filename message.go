package reagent

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message in the conversation log.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in the conversation log.
//
// Messages are created at emission points (user input, model output, tool
// result). A message may be mutated while it is being accumulated, e.g. while
// streamed model output is merged into it, but once it has been added to a
// [Memory] it must be treated as immutable. Memory implementations store
// clones to enforce this.
type Message struct {
	// ID is a unique identifier (UUIDv4) assigned at creation.
	ID string `json:"id" yaml:"id"`

	// Name is the display name of the author (agent name, "user", tool name).
	Name string `json:"name" yaml:"name"`

	// Role is the conversational role of the author.
	Role Role `json:"role" yaml:"role"`

	// Content is the message body.
	Content Content `json:"content" yaml:"content"`

	// Metadata holds auxiliary data, e.g. the validated structured output of
	// a final reply. It is never sent to the model.
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// Timestamp is the creation time.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// NewMessage creates a message with a fresh ID.
func NewMessage(name string, role Role, content Content) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Name:      name,
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewTextMessage creates a plain text message with a fresh ID.
func NewTextMessage(name string, role Role, text string) *Message {
	return NewMessage(name, role, PlainText(text))
}

// Text returns the textual view of the content. See [Content.Text].
func (m *Message) Text() string {
	if m == nil {
		return ""
	}
	return m.Content.Text()
}

// ActionRequests returns the action requests carried by the message.
func (m *Message) ActionRequests() []*ActionRequest {
	if m == nil {
		return nil
	}
	return m.Content.ActionRequests()
}

// Clone returns a deep copy of the message. Metadata values are copied
// shallowly.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	out := *m
	out.Content = m.Content.clone()
	if m.Metadata != nil {
		out.Metadata = make(map[string]any, len(m.Metadata))
		for k, v := range m.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}

// CloneMessages returns deep copies of all messages.
func CloneMessages(in []*Message) []*Message {
	out := make([]*Message, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// NewRequestID returns a fresh identifier for an [ActionRequest].
func NewRequestID() string {
	return "call_" + uuid.NewString()
}
