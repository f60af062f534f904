package hooks

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rickchristie/reagent"
)

// PreFunc runs before an operation. It receives the current argument bag and
// returns a full replacement, or nil to leave the bag unchanged. A returned
// error is logged and the chain continues with the bag it received.
type PreFunc[A any] func(ctx context.Context, agent A, args reagent.Args) (reagent.Args, error)

// PostFunc runs after an operation. It receives the argument bag the
// operation ran with and the current result, and returns a replacement
// result, or nil to leave it unchanged.
//
// The result may be shared with the caller and with later hooks: never
// mutate it in place, return a modified copy instead.
type PostFunc[A any] func(ctx context.Context, agent A, args reagent.Args, result any) (any, error)

// Entry is a named hook registered on one lifecycle point. Exactly one of Pre
// and Post is set, matching the kind of the point.
type Entry[A any] struct {
	Name string
	Pre  PreFunc[A]
	Post PostFunc[A]
}

// chain keeps entries of one point in registration order with lookup by name.
type chain[A any] struct {
	order  []string
	byName map[string]Entry[A]
}

// Table stores hooks per lifecycle point for one scope.
//
// # Overview
//
// An agent dispatches through two tables: a type table shared by every agent
// of the same kind, and an instance table owned by a single agent. The
// [Dispatcher] always walks the type table first.
//
//	// Shared by all ReAct agents
//	react.TypeHooks().RegisterPre(reagent.PreReasoning, "trace", traceFn)
//
//	// Only this agent
//	agent.InstanceHooks().RegisterPost(reagent.PostActing, "audit", auditFn)
//
// # Ordering
//
// Hooks run in registration order. Registering a name that already exists on
// the point replaces the function and keeps its position.
//
// # Thread Safety
//
// Table is safe for concurrent use. Dispatch works on a snapshot, so hooks
// may register or remove other hooks without deadlocking.
type Table[A any] struct {
	mu        sync.RWMutex
	supported map[reagent.LifecyclePoint]bool
	chains    map[reagent.LifecyclePoint]*chain[A]
}

// NewTable creates an empty table that accepts hooks on the given points.
func NewTable[A any](points ...reagent.LifecyclePoint) *Table[A] {
	t := &Table[A]{
		supported: make(map[reagent.LifecyclePoint]bool, len(points)),
		chains:    make(map[reagent.LifecyclePoint]*chain[A], len(points)),
	}
	for _, p := range points {
		t.supported[p] = true
	}
	return t
}

// Supports reports whether hooks can be registered on point.
func (t *Table[A]) Supports(point reagent.LifecyclePoint) bool {
	return t.supported[point]
}

// RegisterPre adds or replaces a pre hook.
func (t *Table[A]) RegisterPre(point reagent.LifecyclePoint, name string, fn PreFunc[A]) error {
	if !point.IsPre() {
		return fmt.Errorf("%w: %s is not a pre point", reagent.ErrUnsupportedHookPoint, point)
	}
	return t.register(point, Entry[A]{Name: name, Pre: fn})
}

// RegisterPost adds or replaces a post hook.
func (t *Table[A]) RegisterPost(point reagent.LifecyclePoint, name string, fn PostFunc[A]) error {
	if point.IsPre() {
		return fmt.Errorf("%w: %s is not a post point", reagent.ErrUnsupportedHookPoint, point)
	}
	return t.register(point, Entry[A]{Name: name, Post: fn})
}

func (t *Table[A]) register(point reagent.LifecyclePoint, e Entry[A]) error {
	if !t.supported[point] {
		return fmt.Errorf("%w: %s", reagent.ErrUnsupportedHookPoint, point)
	}
	if e.Pre == nil && e.Post == nil {
		return fmt.Errorf("hook %q on %s: nil function", e.Name, point)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.chains[point]
	if !ok {
		c = &chain[A]{byName: make(map[string]Entry[A])}
		t.chains[point] = c
	}
	if _, exists := c.byName[e.Name]; !exists {
		c.order = append(c.order, e.Name)
	}
	c.byName[e.Name] = e
	return nil
}

// Remove deletes the named hook from point. It reports whether a hook was removed.
func (t *Table[A]) Remove(point reagent.LifecyclePoint, name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.chains[point]
	if !ok {
		return false
	}
	if _, exists := c.byName[name]; !exists {
		return false
	}
	delete(c.byName, name)
	c.order = slices.DeleteFunc(c.order, func(n string) bool { return n == name })
	return true
}

// Clear removes every hook on point.
func (t *Table[A]) Clear(point reagent.LifecyclePoint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.chains, point)
}

// ClearAll removes every hook on every point.
func (t *Table[A]) ClearAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.chains = make(map[reagent.LifecyclePoint]*chain[A])
}

// Entries returns a snapshot of the hooks on point in execution order.
func (t *Table[A]) Entries(point reagent.LifecyclePoint) []Entry[A] {
	t.mu.RLock()
	defer t.mu.RUnlock()

	c, ok := t.chains[point]
	if !ok {
		return nil
	}
	out := make([]Entry[A], 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.byName[name])
	}
	return out
}

// Len returns the number of hooks on point.
func (t *Table[A]) Len(point reagent.LifecyclePoint) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if c, ok := t.chains[point]; ok {
		return len(c.order)
	}
	return 0
}
