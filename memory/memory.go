// Package memory provides conversation log stores for agents.
//
// [InMemory] keeps the log in process and is the default. [Redis] keeps it in
// a Redis list so several processes can share one conversation.
package memory

import (
	"context"
	"sync"

	"github.com/rickchristie/reagent"
)

// InMemory is a process-local, append-only log.
type InMemory struct {
	mu   sync.RWMutex
	msgs []*reagent.Message
}

// NewInMemory creates an empty log.
func NewInMemory() *InMemory {
	return &InMemory{}
}

// Add stores clones of msgs. Nil messages are skipped.
func (m *InMemory) Add(_ context.Context, msgs ...*reagent.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, msg := range msgs {
		if msg != nil {
			m.msgs = append(m.msgs, msg.Clone())
		}
	}
	return nil
}

// List returns clones of the stored messages in insertion order.
func (m *InMemory) List(_ context.Context) ([]*reagent.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return reagent.CloneMessages(m.msgs), nil
}

// Size returns the number of stored messages.
func (m *InMemory) Size(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.msgs), nil
}

// Clear drops every message.
func (m *InMemory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = nil
	return nil
}

var _ reagent.Memory = (*InMemory)(nil)
