package react

import (
	"context"
	"fmt"

	"github.com/rickchristie/reagent"
	"github.com/rickchristie/reagent/schema"
	"github.com/rickchristie/reagent/toolkit"
)

const (
	// CompletionAction is the action the model calls to end the loop.
	CompletionAction = "generate_response"

	// ResponseArg is the completion argument holding the reply text.
	ResponseArg = "response"

	// MetaStructuredOutput is the reply metadata key holding the validated
	// structured output.
	MetaStructuredOutput = "structured_output"

	// metaReply carries the reply message in the completion chunk metadata.
	metaReply = "reply"
)

// completionTool ends the loop. Without a contract it only needs a response;
// with one it also requires the contract's fields and validates them.
type completionTool struct {
	agentName string
	contract  *schema.Schema
}

func (t *completionTool) Descriptor() reagent.ToolDescriptor {
	params := []reagent.Param{{
		Name:        ResponseArg,
		Type:        reagent.TypeString,
		Description: "Your response to the user.",
		Required:    true,
	}}
	if t.contract != nil {
		for _, p := range t.contract.Params() {
			if p.Name != ResponseArg {
				params = append(params, p)
			}
		}
	}
	return reagent.ToolDescriptor{
		Name:        CompletionAction,
		Description: "Generate the final response to the user. Call this once you are done.",
		Params:      params,
	}
}

func (t *completionTool) Call(_ context.Context, args []any) (*reagent.ToolResponse, error) {
	params := t.Descriptor().Params
	fields := make(map[string]any, len(params))
	for i, p := range params {
		if i < len(args) && !reagent.IsAbsent(args[i]) {
			fields[p.Name] = args[i]
		}
	}

	text, ok := fields[ResponseArg].(string)
	if !ok {
		text = fmt.Sprint(fields[ResponseArg])
	}
	delete(fields, ResponseArg)

	reply := reagent.NewTextMessage(t.agentName, reagent.RoleAssistant, text)
	if t.contract != nil {
		if err := t.contract.Validate(fields); err != nil {
			return nil, fmt.Errorf("%w: %v", reagent.ErrStructuredOutput, err)
		}
		reply.Metadata = map[string]any{MetaStructuredOutput: fields}
	}

	return reagent.Immediate(&reagent.ToolChunk{
		Content:  []reagent.ContentUnit{reagent.TextUnit{Text: "Successfully generated response."}},
		Metadata: map[string]any{metaReply: reply},
		IsFinal:  true,
	}), nil
}

var _ reagent.Tool = (*completionTool)(nil)

// newCompletionKit builds the private toolkit holding the completion action
// for one reply.
func (a *Agent) newCompletionKit(contract *schema.Schema) (*toolkit.Toolkit, error) {
	kit := toolkit.New(toolkit.WithAutoEquip(), toolkit.WithLogger(a.logger))
	if err := kit.Register(&completionTool{agentName: a.name, contract: contract}); err != nil {
		return nil, err
	}
	return kit, nil
}

// synthesizeCompletion appends a completion request carrying the message text
// when the model requested no action.
func synthesizeCompletion(msg *reagent.Message) *reagent.ActionRequest {
	req := &reagent.ActionRequest{
		ID:   reagent.NewRequestID(),
		Name: CompletionAction,
		Args: map[string]any{ResponseArg: msg.Text()},
	}
	msg.Content = msg.Content.Append(req)
	return req
}
