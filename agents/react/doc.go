// Package react implements the ReAct (Reasoning and Acting) control loop.
//
// # Overview
//
// An [Agent] answers a [Agent.Reply] call by alternating between reasoning
// (one model call) and acting (running the actions the model requested)
// until the model calls the completion action, generate_response.
//
//	agent := react.NewAgent("assistant", models.NewLCG(llm)).
//	    WithInstructions("Answer briefly.").
//	    WithParallel(true)
//	agent.Toolkit().MustRegister(weatherTool)
//	_ = agent.Toolkit().Equip("get_weather")
//
//	reply, err := agent.Reply(ctx, reagent.NewTextMessage("user", reagent.RoleUser, "Weather in Oslo?"))
//
// # Agent Loop Behavior
//
// ## 1. Text Without Actions Completes
//
// When the model answers with text and requests no action, the loop
// synthesizes one generate_response request carrying that text. The reply is
// the model's text.
//
// ## 2. First Completion Wins
//
// The model may request several actions in one step. All of them run; the
// reply comes from the first successful generate_response by request
// position, regardless of which finished first. Later completion signals in
// the same step are discarded.
//
// ## 3. Failures Are Fed Back
//
// Unknown actions, missing or mistyped arguments, tool errors and tool panics
// become failed action results in the log. The model sees them in the next
// iteration. Only backend failures, such as a failing model call, end Reply
// with an error ([reagent.BackendError]).
//
// ## 4. Bounded Iterations
//
// After MaxIters reasoning steps without a completion, the agent makes one
// more model call with [SummarizeHint] and returns its text.
//
// # Structured Output
//
// With [Agent.WithStructuredOutput], generate_response requires the
// contract's fields next to response. Arguments that fail the contract fail
// the action and the loop continues. The validated fields are attached to
// the reply as Metadata[MetaStructuredOutput].
//
// # Compaction
//
// [Agent.WithCompactor] bounds what the model sees of a long log. The log is
// never trimmed; see package compaction.
//
// # Hooks
//
// Every operation is wrapped by a pair of lifecycle points: reply, observe,
// print, reasoning and acting. Hooks registered on [TypeHooks] run for all
// agents, before the hooks on [Agent.InstanceHooks]. See package hooks for
// chaining and failure semantics.
//
// # Templates
//
// The system prompt is a Go text/template with access to:
//   - Agent name: {{.Name}}
//   - Instructions: {{.Instructions}}
//   - Equipped tools: {{.Tools}}
//   - Completion action name: {{.CompletionAction}}
//   - Clock functions: {{.Time.Today}}, {{.Time.Weekday}}, {{.Time.Format "layout"}}
package react
