package react

import (
	"context"

	"github.com/rickchristie/reagent"
	"github.com/rickchristie/reagent/aggregate"
	"github.com/rickchristie/reagent/hooks"
)

// reasoning runs one model call wrapped by the reasoning hooks and logs the
// resulting assistant message. A message without action requests gets a
// synthesized completion request carrying its text; the ID of that request
// is returned as synthetic.
//
// Hooks: pre_reasoning receives Args{iteration}; post_reasoning receives the
// aggregated message and may replace it.
func (a *Agent) reasoning(ctx context.Context, r *run, iteration int) (*reagent.Message, string, error) {
	args := reagent.Args{reagent.ArgIteration: iteration}
	msg, err := hooks.Wrap(ctx, a.dispatcher(), a, reagent.PreReasoning, reagent.PostReasoning, args,
		func(ctx context.Context, _ reagent.Args) (*reagent.Message, error) {
			return a.callModel(ctx, a.tools(r))
		})
	if err != nil {
		return nil, "", err
	}
	if msg == nil {
		msg = reagent.NewMessage(a.name, reagent.RoleAssistant, reagent.Structured())
	}

	var synthetic string
	if len(msg.ActionRequests()) == 0 {
		synthetic = synthesizeCompletion(msg).ID
	}

	if err := a.memory.Add(ctx, msg); err != nil {
		return nil, "", memoryError(err)
	}
	return msg, synthetic, nil
}

// tools returns what the model may call: the equipped tools followed by the
// completion action. A toolkit tool registered under the completion name
// before the name was reserved is never offered.
func (a *Agent) tools(r *run) []reagent.ToolDescriptor {
	var out []reagent.ToolDescriptor
	for _, d := range a.toolkit.Descriptors() {
		if d.Name != CompletionAction {
			out = append(out, d)
		}
	}
	return append(out, r.completion.Descriptors()...)
}

// callModel formats the system prompt and the log, appends extra, calls the
// model and aggregates its output, printing every step.
func (a *Agent) callModel(
	ctx context.Context,
	tools []reagent.ToolDescriptor,
	extra ...*reagent.Message,
) (*reagent.Message, error) {
	log, err := a.memory.List(ctx)
	if err != nil {
		return nil, memoryError(err)
	}
	if a.compactor != nil {
		log = a.compactor.Compact(log)
	}

	var msgs []*reagent.Message
	system, err := a.systemPrompt()
	if err != nil {
		return nil, &reagent.BackendError{Op: "system prompt", Err: err}
	}
	if system != "" {
		msgs = append(msgs, reagent.NewTextMessage("system", reagent.RoleSystem, system))
	}
	msgs = append(msgs, log...)
	msgs = append(msgs, extra...)

	prompt, err := a.formatter.Format(msgs)
	if err != nil {
		return nil, &reagent.BackendError{Op: "format prompt", Err: err}
	}

	output, err := a.model.Call(ctx, prompt, tools)
	if err != nil {
		return nil, &reagent.BackendError{Op: "model call", Err: err}
	}

	msg, _, err := aggregate.Aggregate(ctx, a.name, output, a.Print)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (a *Agent) systemPrompt() (string, error) {
	if a.systemTemplate == nil {
		return "", nil
	}
	return ExecuteTemplate(a.systemTemplate, SystemPromptData{
		Name:             a.name,
		Instructions:     a.instructions,
		Tools:            a.toolkit.Descriptors(),
		CompletionAction: CompletionAction,
		Time:             a.clock,
	})
}
