package models

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/rickchristie/reagent"
	"github.com/rickchristie/reagent/internal/buffer"
	"github.com/tmc/langchaingo/llms"
)

// LCG adapts a langchaingo llms.Model to [reagent.Model].
//
// Token usage is normalized across providers. With streaming enabled, Call
// returns a lazy sequence of accumulated responses fed by langchaingo's
// streaming callback.
type LCG struct {
	model     llms.Model
	name      string
	streaming bool
	options   []llms.CallOption
	logger    *slog.Logger
}

// NewLCG wraps model.
func NewLCG(model llms.Model) *LCG {
	return &LCG{model: model, name: "langchaingo", logger: slog.Default()}
}

// WithModelName sets the name reported by [LCG.Name].
func (m *LCG) WithModelName(name string) *LCG {
	m.name = name
	return m
}

// WithStreaming switches between complete and streamed output.
func (m *LCG) WithStreaming(enabled bool) *LCG {
	m.streaming = enabled
	return m
}

// WithCallOptions adds options passed on every call, e.g. llms.WithTemperature.
func (m *LCG) WithCallOptions(opts ...llms.CallOption) *LCG {
	m.options = append(m.options, opts...)
	return m
}

// WithLogger sets the logger used for malformed tool call arguments.
func (m *LCG) WithLogger(logger *slog.Logger) *LCG {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// Unwrap returns the wrapped model.
func (m *LCG) Unwrap() llms.Model {
	return m.model
}

// Name implements reagent.Model.
func (m *LCG) Name() string {
	return m.name
}

// Call implements reagent.Model.
func (m *LCG) Call(
	ctx context.Context,
	prompt []llms.MessageContent,
	tools []reagent.ToolDescriptor,
) (*reagent.ModelOutput, error) {
	opts := append([]llms.CallOption(nil), m.options...)
	if len(tools) > 0 {
		opts = append(opts, llms.WithTools(Tools(tools)))
	}

	if !m.streaming {
		resp, err := m.model.GenerateContent(ctx, prompt, opts...)
		if err != nil {
			return nil, err
		}
		return reagent.CompleteOutput(m.convert(ctx, resp, "", "")), nil
	}
	return reagent.StreamOutput(m.stream(ctx, prompt, opts)), nil
}

// delta is one streaming callback invocation, or the end of the call.
type delta struct {
	reasoning string
	content   string
	done      bool
	resp      *llms.ContentResponse
	err       error
}

// stream starts the call when the sequence is first iterated. Stopping the
// iteration early cancels the call.
func (m *LCG) stream(
	ctx context.Context,
	prompt []llms.MessageContent,
	opts []llms.CallOption,
) func(yield func(*reagent.ChatResponse, error) bool) {
	return func(yield func(*reagent.ChatResponse, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		q := buffer.NewQueue[delta]()
		callback := llms.WithStreamingReasoningFunc(
			func(_ context.Context, reasoning, content []byte) error {
				if len(reasoning) > 0 || len(content) > 0 {
					q.Push(delta{reasoning: string(reasoning), content: string(content)})
				}
				return nil
			},
		)
		// Thinking goes before user options so they can turn it off. The
		// callback goes last so it cannot be replaced.
		all := make([]llms.CallOption, 0, len(opts)+2)
		all = append(all, llms.WithStreamThinking(true))
		all = append(all, opts...)
		all = append(all, callback)

		go func() {
			defer q.Close()
			resp, err := m.model.GenerateContent(ctx, prompt, all...)
			q.Push(delta{done: true, resp: resp, err: err})
		}()

		var reasoning, content strings.Builder
		for d := range q.Drain(ctx) {
			if d.done {
				if d.err != nil {
					yield(nil, d.err)
					return
				}
				yield(m.convert(ctx, d.resp, reasoning.String(), content.String()), nil)
				return
			}
			reasoning.WriteString(d.reasoning)
			content.WriteString(d.content)
			if !yield(partial(reasoning.String(), content.String()), nil) {
				return
			}
		}
		if err := ctx.Err(); err != nil {
			yield(nil, err)
		}
	}
}

func partial(reasoning, content string) *reagent.ChatResponse {
	var units []reagent.ContentUnit
	if reasoning != "" {
		units = append(units, reagent.ThinkingUnit{Thinking: reasoning})
	}
	if content != "" {
		units = append(units, reagent.TextUnit{Text: content})
	}
	return &reagent.ChatResponse{Content: units}
}

// convert builds the final response. Streamed text is used when the backend
// returns no choices or an empty one.
func (m *LCG) convert(
	ctx context.Context,
	resp *llms.ContentResponse,
	streamedReasoning, streamedContent string,
) *reagent.ChatResponse {
	reasoning, content := streamedReasoning, streamedContent
	var choice *llms.ContentChoice
	if resp != nil && len(resp.Choices) > 0 {
		choice = resp.Choices[0]
		if choice.ReasoningContent != "" {
			reasoning = choice.ReasoningContent
		}
		if choice.Content != "" {
			content = choice.Content
		}
	}

	out := partial(reasoning, content)
	if choice == nil {
		return out
	}

	out.FinishReason = choice.StopReason
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}
		out.Content = append(out.Content, &reagent.ActionRequest{
			ID:   tc.ID,
			Name: tc.FunctionCall.Name,
			Args: m.decodeArgs(ctx, tc),
		})
	}
	if choice.GenerationInfo != nil {
		out.Usage = usageFrom(choice.GenerationInfo)
	}
	return out
}

// decodeArgs parses tool call arguments. Malformed JSON yields an empty map so
// the toolkit reports the missing arguments back to the model.
func (m *LCG) decodeArgs(ctx context.Context, tc llms.ToolCall) map[string]any {
	args := map[string]any{}
	raw := strings.TrimSpace(tc.FunctionCall.Arguments)
	if raw == "" {
		return args
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		m.logger.WarnContext(ctx, "malformed tool call arguments",
			"tool", tc.FunctionCall.Name,
			"id", tc.ID,
			"error", err,
		)
		return map[string]any{}
	}
	return args
}

var _ reagent.Model = (*LCG)(nil)
