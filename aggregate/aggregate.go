// Package aggregate folds model output into a single growing message.
//
// A model answers either with one complete response or with a stream of
// responses, each carrying everything produced so far. The [Aggregator]
// keeps one [reagent.Message] per model call and overwrites its content with
// every step, so the final message is the same whichever way the model
// answered.
//
// Usage:
//
//	msg, agg, err := aggregate.Aggregate(ctx, "assistant", output, sink)
//	if err != nil {
//	    return err // *reagent.BackendError
//	}
//	log.Printf("%d steps, usage %+v", agg.Steps(), agg.Usage())
package aggregate

import (
	"context"
	"sync"

	"github.com/rickchristie/reagent"
)

// Sink receives the message after every step. isFinal is set exactly once,
// on the last call.
type Sink func(ctx context.Context, msg *reagent.Message, isFinal bool)

// Aggregator accumulates model responses into one assistant message.
type Aggregator struct {
	mu           sync.Mutex
	msg          *reagent.Message
	requestIDs   []string
	usage        *reagent.Usage
	finishReason string
	steps        int
}

// New creates an aggregator for a message authored by name.
func New(name string) *Aggregator {
	return &Aggregator{
		msg: reagent.NewMessage(name, reagent.RoleAssistant, reagent.Structured()),
	}
}

// Add records one step. resp holds the accumulated content, so it replaces
// whatever was recorded before.
func (a *Aggregator) Add(resp *reagent.ChatResponse) {
	if resp == nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	units := make([]reagent.ContentUnit, 0, len(resp.Content))
	reqIndex := 0
	for _, u := range resp.Content {
		if r, ok := u.(*reagent.ActionRequest); ok {
			u = a.request(reqIndex, r)
			reqIndex++
		}
		units = append(units, u)
	}
	a.msg.Content = reagent.Structured(units...)

	if resp.Usage != nil {
		usage := *resp.Usage
		a.usage = &usage
	}
	if resp.FinishReason != "" {
		a.finishReason = resp.FinishReason
	}
	a.steps++
}

// request copies r, keeping the ID of the i-th request stable across steps
// when the backend leaves it empty.
func (a *Aggregator) request(i int, r *reagent.ActionRequest) *reagent.ActionRequest {
	for len(a.requestIDs) <= i {
		a.requestIDs = append(a.requestIDs, "")
	}
	id := r.ID
	switch {
	case id != "":
		a.requestIDs[i] = id
	case a.requestIDs[i] != "":
		id = a.requestIDs[i]
	default:
		id = reagent.NewRequestID()
		a.requestIDs[i] = id
	}

	args := make(map[string]any, len(r.Args))
	for k, v := range r.Args {
		args[k] = v
	}
	return &reagent.ActionRequest{ID: id, Name: r.Name, Args: args}
}

// Message returns a copy of the accumulated message.
func (a *Aggregator) Message() *reagent.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.msg.Clone()
}

// Usage returns the last reported token usage, or nil.
func (a *Aggregator) Usage() *reagent.Usage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.usage
}

// FinishReason returns the last reported finish reason.
func (a *Aggregator) FinishReason() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.finishReason
}

// Steps returns the number of steps recorded.
func (a *Aggregator) Steps() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.steps
}

// Aggregate drains output into a new message authored by name.
//
// For a streaming output, sink sees the message after every step with
// isFinal false, then once more with isFinal true. For a complete output it
// sees the message once, with isFinal true. A failure of the stream is
// returned as a [reagent.BackendError]; the sink is not told the message is
// final in that case.
func Aggregate(
	ctx context.Context,
	name string,
	output *reagent.ModelOutput,
	sink Sink,
) (*reagent.Message, *Aggregator, error) {
	agg := New(name)
	streaming := output.IsStreaming()

	for resp, err := range output.Responses() {
		if err != nil {
			return nil, agg, &reagent.BackendError{Op: "model stream", Err: err}
		}
		if err := ctx.Err(); err != nil {
			return nil, agg, &reagent.BackendError{Op: "model stream", Err: err}
		}
		agg.Add(resp)
		if streaming && sink != nil {
			sink(ctx, agg.Message(), false)
		}
	}

	msg := agg.Message()
	if sink != nil {
		sink(ctx, msg.Clone(), true)
	}
	return msg, agg, nil
}
