package react

import (
	"context"
	"fmt"

	"github.com/rickchristie/reagent"
	"github.com/rickchristie/reagent/hooks"
	"github.com/rickchristie/reagent/schema"
	"github.com/rickchristie/reagent/toolkit"
)

const (
	// InterruptReply is returned by the first Reply after Interrupt.
	InterruptReply = "I noticed that you have interrupted me. What can I do for you?"

	// SummarizeHint is sent to the model once the iteration budget is spent.
	SummarizeHint = "You have failed to generate response within the maximum iterations. " +
		"Now respond directly by summarizing the current situation."
)

// run holds the per-reply settings.
type run struct {
	contract   *schema.Schema
	completion *toolkit.Toolkit
}

// Reply appends msgs to memory and runs the loop until a final reply is
// produced. The reply is appended to memory and returned.
//
// Only a [*reagent.BackendError] is returned as error. Action failures and
// contract violations are fed back to the model instead.
//
// Hooks: pre_reply receives Args{msgs, structured_model}; a pre hook may
// replace the inputs or the structured-output contract for this reply.
// post_reply receives the reply message and may replace it.
func (a *Agent) Reply(ctx context.Context, msgs ...*reagent.Message) (*reagent.Message, error) {
	if a.model == nil {
		return nil, &reagent.BackendError{Op: "model call", Err: reagent.ErrNilModel}
	}

	a.replyMu.Lock()
	defer a.replyMu.Unlock()

	args := reagent.Args{
		reagent.ArgMessages:   msgs,
		reagent.ArgStructured: a.contract,
	}
	return hooks.Wrap(ctx, a.dispatcher(), a, reagent.PreReply, reagent.PostReply, args, a.reply)
}

func (a *Agent) reply(ctx context.Context, args reagent.Args) (*reagent.Message, error) {
	inputs := messagesArg(args)
	contract, _ := args[reagent.ArgStructured].(*schema.Schema)

	if a.interrupted.CompareAndSwap(true, false) {
		return a.interruptReply(ctx, inputs)
	}

	start, err := a.memory.Size(ctx)
	if err != nil {
		return nil, memoryError(err)
	}
	if len(inputs) > 0 {
		if err := a.memory.Add(ctx, inputs...); err != nil {
			return nil, memoryError(err)
		}
	}
	if err := a.retrieveLongTerm(ctx, inputs); err != nil {
		return nil, err
	}

	completion, err := a.newCompletionKit(contract)
	if err != nil {
		return nil, &reagent.BackendError{Op: "structured output contract", Err: err}
	}

	reply, err := a.loop(ctx, &run{contract: contract, completion: completion})
	if err != nil {
		return nil, err
	}

	if err := a.memory.Add(ctx, reply); err != nil {
		return nil, memoryError(err)
	}
	a.setState(func(s *LoopState) { s.Reply = reply })
	a.recordLongTerm(ctx, start)
	return reply, nil
}

// loop runs reasoning and acting until a completion signal or the budget
// runs out.
func (a *Agent) loop(ctx context.Context, r *run) (*reagent.Message, error) {
	maxIters := a.maxIters
	a.setState(func(s *LoopState) { *s = LoopState{MaxIters: maxIters} })

	for i := 1; i <= maxIters; i++ {
		a.setState(func(s *LoopState) { s.Iteration = i })

		msg, synthetic, err := a.reasoning(ctx, r, i)
		if err != nil {
			return nil, err
		}

		reply, adopted, err := a.acting(ctx, r, msg.ActionRequests(), i)
		if err != nil {
			return nil, err
		}
		if reply != nil {
			a.logger.InfoContext(ctx, "reply completed",
				"agent", a.name,
				"reason", "completion",
				"iteration", i,
			)
			if adopted != synthetic {
				a.Print(ctx, reply, true)
			}
			return reply, nil
		}
	}

	a.logger.InfoContext(ctx, "reply completed",
		"agent", a.name,
		"reason", "max_iterations",
		"iteration", maxIters,
	)
	return a.summarize(ctx)
}

// summarize makes one extra model call asking for a summary. The hint is part
// of the prompt only; it is not logged. No action is dispatched.
func (a *Agent) summarize(ctx context.Context) (*reagent.Message, error) {
	hint := reagent.NewTextMessage("user", reagent.RoleUser, SummarizeHint)
	msg, err := a.callModel(ctx, nil, hint)
	if err != nil {
		return nil, err
	}
	msg.Content = reagent.PlainText(msg.Text())
	return msg, nil
}

func (a *Agent) interruptReply(ctx context.Context, inputs []*reagent.Message) (*reagent.Message, error) {
	reply := reagent.NewTextMessage(a.name, reagent.RoleAssistant, InterruptReply)
	log := append(append([]*reagent.Message{}, inputs...), reply)
	if err := a.memory.Add(ctx, log...); err != nil {
		return nil, memoryError(err)
	}
	a.logger.InfoContext(ctx, "reply completed", "agent", a.name, "reason", "interrupted")
	a.Print(ctx, reply, true)
	return reply, nil
}

// ----------------------------------------------------------------------------
// Long-term memory
// ----------------------------------------------------------------------------

// retrieveLongTerm appends the retrieved hint as a user message. Retrieval
// failures are logged and ignored.
func (a *Agent) retrieveLongTerm(ctx context.Context, inputs []*reagent.Message) error {
	if a.longTerm == nil {
		return nil
	}
	hint, err := a.longTerm.Retrieve(ctx, inputs)
	if err != nil {
		a.logger.WarnContext(ctx, "long-term memory retrieval failed", "agent", a.name, "error", err)
		return nil
	}
	if hint == "" {
		return nil
	}
	msg := reagent.NewTextMessage("long_term_memory", reagent.RoleUser,
		"<long_term_memory>"+hint+"</long_term_memory>")
	if err := a.memory.Add(ctx, msg); err != nil {
		return memoryError(err)
	}
	return nil
}

// recordLongTerm records everything logged since start. Failures are logged
// and ignored.
func (a *Agent) recordLongTerm(ctx context.Context, start int) {
	if a.longTerm == nil {
		return
	}
	log, err := a.memory.List(ctx)
	if err != nil {
		a.logger.WarnContext(ctx, "long-term memory record skipped", "agent", a.name, "error", err)
		return
	}
	if start > len(log) {
		start = 0
	}
	if err := a.longTerm.Record(ctx, log[start:]); err != nil {
		a.logger.WarnContext(ctx, "long-term memory record failed", "agent", a.name, "error", err)
	}
}

// ----------------------------------------------------------------------------
// Observe and Print
// ----------------------------------------------------------------------------

// Observe appends msgs to memory without replying.
//
// Hooks: pre_observe receives Args{msgs}; post_observe receives the appended
// messages.
func (a *Agent) Observe(ctx context.Context, msgs ...*reagent.Message) error {
	args := reagent.Args{reagent.ArgMessages: msgs}
	_, err := hooks.Wrap(ctx, a.dispatcher(), a, reagent.PreObserve, reagent.PostObserve, args,
		func(ctx context.Context, args reagent.Args) ([]*reagent.Message, error) {
			in := messagesArg(args)
			if len(in) == 0 {
				return in, nil
			}
			if err := a.memory.Add(ctx, in...); err != nil {
				return nil, memoryError(err)
			}
			return in, nil
		})
	return err
}

// Print sends msg to the printer, if any. The loop prints every partial model
// output and tool progress through it.
//
// Hooks: pre_print receives Args{msg, is_final} and may replace either;
// post_print receives the printed message.
func (a *Agent) Print(ctx context.Context, msg *reagent.Message, isFinal bool) {
	args := reagent.Args{
		reagent.ArgMessage: msg,
		reagent.ArgIsFinal: isFinal,
	}
	_, _ = hooks.Wrap(ctx, a.dispatcher(), a, reagent.PrePrint, reagent.PostPrint, args,
		func(ctx context.Context, args reagent.Args) (*reagent.Message, error) {
			m, _ := args[reagent.ArgMessage].(*reagent.Message)
			final, _ := args[reagent.ArgIsFinal].(bool)
			if a.printer != nil && m != nil {
				a.printer.Print(ctx, m, final)
			}
			return m, nil
		})
}

// messagesArg reads the msgs argument, accepting a single message or a slice.
func messagesArg(args reagent.Args) []*reagent.Message {
	var in []*reagent.Message
	switch v := args[reagent.ArgMessages].(type) {
	case []*reagent.Message:
		in = v
	case *reagent.Message:
		in = []*reagent.Message{v}
	}
	out := make([]*reagent.Message, 0, len(in))
	for _, m := range in {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

func memoryError(err error) error {
	return &reagent.BackendError{Op: "memory", Err: fmt.Errorf("conversation log: %w", err)}
}
