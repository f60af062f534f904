package toolkit

import (
	"context"
	"fmt"
	"iter"

	"github.com/rickchristie/reagent"
)

// Invoke runs the action described by req and returns its incremental
// results.
//
// The returned sequence is lazy: the tool runs while the sequence is
// consumed. It never yields nil and always ends with a chunk marked
// IsFinal. Every failure is reported in-band as a [reagent.ErrorChunk].
func (t *Toolkit) Invoke(ctx context.Context, req *reagent.ActionRequest) iter.Seq[*reagent.ToolChunk] {
	return func(yield func(*reagent.ToolChunk) bool) {
		r, args, err := t.prepare(req)
		if err != nil {
			t.logger.DebugContext(ctx, "action rejected",
				"tool", req.Name,
				"id", req.ID,
				"error", err,
			)
			yield(reagent.ErrorChunk(err))
			return
		}
		if err := ctx.Err(); err != nil {
			yield(reagent.ErrorChunk(err))
			return
		}

		var key string
		if r.cacheable && t.cache != nil {
			key = cacheKey(req.Name, req.Args)
			if chunk, ok := t.cache.get(key); ok {
				t.logger.DebugContext(ctx, "tool result served from cache", "tool", req.Name)
				yield(chunk)
				return
			}
		}

		var record *recorder
		if key != "" {
			record = &recorder{}
		}
		t.run(ctx, r.tool, args, record, yield)

		if record != nil && record.ok() {
			t.cache.add(key, record.chunk())
		}
	}
}

// prepare resolves the tool and maps named arguments onto its positional
// parameters.
func (t *Toolkit) prepare(req *reagent.ActionRequest) (*registered, []any, error) {
	if req == nil {
		return nil, nil, fmt.Errorf("%w: nil request", reagent.ErrUnknownAction)
	}
	r, ok := t.lookup(req.Name)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", reagent.ErrUnknownAction, req.Name)
	}

	params := r.tool.Descriptor().Params
	args := make([]any, len(params))
	for i, p := range params {
		v, present := req.Args[p.Name]
		switch {
		case present:
			args[i] = v
		case p.Required:
			return nil, nil, fmt.Errorf("%w: %s requires %q", reagent.ErrMissingArgument, req.Name, p.Name)
		default:
			args[i] = reagent.Absent
		}
	}

	supplied := req.Args
	if supplied == nil {
		supplied = map[string]any{}
	}
	if err := r.schema.Validate(supplied); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", reagent.ErrSchemaMismatch, req.Name, err)
	}
	return r, args, nil
}

// run calls the tool and forwards its chunks, converting errors and panics
// into a terminal error chunk.
func (t *Toolkit) run(
	ctx context.Context,
	tool reagent.Tool,
	args []any,
	record *recorder,
	yield func(*reagent.ToolChunk) bool,
) {
	// inYield separates panics raised by the consumer from panics raised by
	// the tool. Only the latter are recovered.
	inYield := false
	emit := func(c *reagent.ToolChunk) bool {
		if record != nil {
			record.add(c)
		}
		inYield = true
		more := yield(c)
		inYield = false
		return more
	}

	defer func() {
		if p := recover(); p != nil {
			if inYield {
				panic(p)
			}
			name := tool.Descriptor().Name
			t.logger.WarnContext(ctx, "tool panicked", "tool", name, "panic", p)
			emit(reagent.ErrorChunk(fmt.Errorf("tool %s panicked: %v", name, p)))
		}
	}()

	resp, err := tool.Call(ctx, args)
	if err != nil {
		emit(reagent.ErrorChunk(err))
		return
	}

	final := false
	for chunk, err := range resp.Chunks() {
		if err != nil {
			emit(reagent.ErrorChunk(err))
			return
		}
		if chunk == nil || final {
			continue
		}
		final = chunk.IsFinal
		if !emit(chunk) {
			if record != nil {
				record.failed = true
			}
			return
		}
	}
	if !final {
		emit(&reagent.ToolChunk{IsFinal: true})
	}
}
