// Package models connects reagent to language model backends through
// langchaingo.
//
//	llm, _ := openai.New(openai.WithModel("gpt-4o"))
//	model := models.NewLCG(llm).WithModelName("gpt-4o").WithStreaming(true)
//	agent := react.NewAgent("assistant", model)
package models

import (
	"encoding/json"
	"fmt"

	"github.com/rickchristie/reagent"
	"github.com/tmc/langchaingo/llms"
)

// Formatter converts conversation messages into langchaingo chat messages.
//
// Mapping:
//   - system, user and assistant text become messages of the matching type
//   - action requests become tool calls on an AI message
//   - every action result becomes its own tool message
//   - thinking is dropped unless [Formatter.WithThinking] is set, in which
//     case it is sent as text wrapped in <thinking> tags
type Formatter struct {
	thinking bool
}

// NewFormatter creates a formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{}
}

// WithThinking sends thinking units back to the model.
func (f *Formatter) WithThinking(enabled bool) *Formatter {
	f.thinking = enabled
	return f
}

// Format implements reagent.Formatter.
func (f *Formatter) Format(msgs []*reagent.Message) ([]llms.MessageContent, error) {
	out := make([]llms.MessageContent, 0, len(msgs))
	for _, msg := range msgs {
		if msg == nil {
			continue
		}
		role, err := chatType(msg.Role)
		if err != nil {
			return nil, fmt.Errorf("message %s: %w", msg.ID, err)
		}

		var parts []llms.ContentPart
		var results []llms.MessageContent
		for _, u := range msg.Content.Units() {
			switch v := u.(type) {
			case reagent.TextUnit:
				if v.Text != "" {
					parts = append(parts, llms.TextContent{Text: v.Text})
				}
			case reagent.ThinkingUnit:
				if f.thinking && v.Thinking != "" {
					parts = append(parts, llms.TextContent{Text: "<thinking>" + v.Thinking + "</thinking>"})
				}
			case *reagent.ActionRequest:
				call, err := toolCall(v)
				if err != nil {
					return nil, fmt.Errorf("message %s: %w", msg.ID, err)
				}
				role = llms.ChatMessageTypeAI
				parts = append(parts, call)
			case *reagent.ActionResult:
				results = append(results, llms.MessageContent{
					Role: llms.ChatMessageTypeTool,
					Parts: []llms.ContentPart{llms.ToolCallResponse{
						ToolCallID: v.ID,
						Name:       v.Name,
						Content:    v.Output,
					}},
				})
			}
		}

		if len(parts) > 0 {
			out = append(out, llms.MessageContent{Role: role, Parts: parts})
		}
		out = append(out, results...)
	}
	return out, nil
}

func chatType(role reagent.Role) (llms.ChatMessageType, error) {
	switch role {
	case reagent.RoleSystem:
		return llms.ChatMessageTypeSystem, nil
	case reagent.RoleUser:
		return llms.ChatMessageTypeHuman, nil
	case reagent.RoleAssistant:
		return llms.ChatMessageTypeAI, nil
	default:
		return "", fmt.Errorf("unknown role %q", role)
	}
}

func toolCall(r *reagent.ActionRequest) (llms.ToolCall, error) {
	args := r.Args
	if args == nil {
		args = map[string]any{}
	}
	data, err := json.Marshal(args)
	if err != nil {
		return llms.ToolCall{}, fmt.Errorf("encode arguments of %s: %w", r.Name, err)
	}
	return llms.ToolCall{
		ID:   r.ID,
		Type: "function",
		FunctionCall: &llms.FunctionCall{
			Name:      r.Name,
			Arguments: string(data),
		},
	}, nil
}

// Tools converts tool descriptors into langchaingo tool definitions.
func Tools(descriptors []reagent.ToolDescriptor) []llms.Tool {
	out := make([]llms.Tool, len(descriptors))
	for i, d := range descriptors {
		out[i] = llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.JSONSchema(),
			},
		}
	}
	return out
}

var _ reagent.Formatter = (*Formatter)(nil)
