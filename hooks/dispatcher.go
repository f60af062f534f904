package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/rickchristie/reagent"
)

// Scope names the table a hook was registered in.
type Scope string

const (
	ScopeType     Scope = "type"
	ScopeInstance Scope = "instance"
)

// Dispatcher runs the hook chains of one agent.
//
// For every point it walks the type table in registration order, then the
// instance table in registration order. Each hook receives the value produced
// by the previous one.
//
// Hooks fail soft: an error or a panic is logged at Warn level and the chain
// continues with the last good value. A hook can never abort the operation it
// wraps.
type Dispatcher[A any] struct {
	typeTable     *Table[A]
	instanceTable *Table[A]
	logger        *slog.Logger
}

// NewDispatcher creates a dispatcher over the two tables. Either table may be nil.
func NewDispatcher[A any](typeTable, instanceTable *Table[A]) *Dispatcher[A] {
	return &Dispatcher[A]{
		typeTable:     typeTable,
		instanceTable: instanceTable,
		logger:        slog.Default(),
	}
}

// WithLogger sets the logger hook failures are reported to.
func (d *Dispatcher[A]) WithLogger(logger *slog.Logger) *Dispatcher[A] {
	if logger != nil {
		d.logger = logger
	}
	return d
}

type scoped[A any] struct {
	scope Scope
	entry Entry[A]
}

func (d *Dispatcher[A]) entries(point reagent.LifecyclePoint) []scoped[A] {
	var out []scoped[A]
	if d.typeTable != nil {
		for _, e := range d.typeTable.Entries(point) {
			out = append(out, scoped[A]{scope: ScopeType, entry: e})
		}
	}
	if d.instanceTable != nil {
		for _, e := range d.instanceTable.Entries(point) {
			out = append(out, scoped[A]{scope: ScopeInstance, entry: e})
		}
	}
	return out
}

// Pre runs the pre hooks of point over args and returns the resulting bag.
func (d *Dispatcher[A]) Pre(
	ctx context.Context,
	agent A,
	point reagent.LifecyclePoint,
	args reagent.Args,
) reagent.Args {
	current := args
	for _, s := range d.entries(point) {
		if s.entry.Pre == nil {
			continue
		}
		// Each hook gets its own copy, so a hook that edits the bag and then
		// fails leaves current untouched.
		out, err := callPre(ctx, s.entry.Pre, agent, current.Clone())
		if err != nil {
			d.logFailure(ctx, point, s, err)
			continue
		}
		if out != nil {
			current = out
		}
	}
	return current
}

// Post runs the post hooks of point over result and returns the resulting value.
// A hook returning nil, including a typed nil pointer, leaves the result
// unchanged.
func (d *Dispatcher[A]) Post(
	ctx context.Context,
	agent A,
	point reagent.LifecyclePoint,
	args reagent.Args,
	result any,
) any {
	return d.post(ctx, agent, point, args, result, nil)
}

// post runs the chain; accept, when set, rejects replacements of the wrong shape.
func (d *Dispatcher[A]) post(
	ctx context.Context,
	agent A,
	point reagent.LifecyclePoint,
	args reagent.Args,
	result any,
	accept func(any) bool,
) any {
	current := result
	for _, s := range d.entries(point) {
		if s.entry.Post == nil {
			continue
		}
		out, err := callPost(ctx, s.entry.Post, agent, args, current)
		if err == nil && out != nil && accept != nil && !accept(out) {
			err = fmt.Errorf("returned %T, result type unchanged", out)
		}
		if err != nil {
			d.logFailure(ctx, point, s, err)
			continue
		}
		if out != nil && !isNilPointer(out) {
			current = out
		}
	}
	return current
}

func (d *Dispatcher[A]) logFailure(ctx context.Context, point reagent.LifecyclePoint, s scoped[A], err error) {
	d.logger.WarnContext(ctx, "hook failed, continuing with previous value",
		"point", point.String(),
		"hook", s.entry.Name,
		"scope", string(s.scope),
		"error", err,
	)
}

func callPre[A any](
	ctx context.Context,
	fn PreFunc[A],
	agent A,
	args reagent.Args,
) (out reagent.Args, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("hook panicked: %v", r)
		}
	}()
	return fn(ctx, agent, args)
}

func callPost[A any](
	ctx context.Context,
	fn PostFunc[A],
	agent A,
	args reagent.Args,
	result any,
) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("hook panicked: %v", r)
		}
	}()
	return fn(ctx, agent, args, result)
}

// Wrap runs op between the pre and post hooks of a lifecycle pair.
//
// The pre chain may rewrite args before op sees them. If op fails, its error
// is returned and post hooks are skipped. A post hook returning a value that
// is not an R counts as a failed hook.
func Wrap[A, R any](
	ctx context.Context,
	d *Dispatcher[A],
	agent A,
	pre, post reagent.LifecyclePoint,
	args reagent.Args,
	op func(ctx context.Context, args reagent.Args) (R, error),
) (R, error) {
	args = d.Pre(ctx, agent, pre, args)

	result, err := op(ctx, args)
	if err != nil {
		return result, err
	}

	out := d.post(ctx, agent, post, args, result, func(v any) bool {
		_, ok := v.(R)
		return ok
	})
	if typed, ok := out.(R); ok {
		return typed, nil
	}
	return result, nil
}

// isNilPointer reports whether v holds a typed nil pointer.
func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
