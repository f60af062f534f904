package reagent

import (
	"context"
	"iter"

	"github.com/tmc/langchaingo/llms"
)

// Model is the gateway to a language model backend.
//
// Call receives the prompt already converted by a [Formatter] and the
// descriptors of the currently equipped tools. Backend errors (transport,
// timeout, authentication) are returned as-is; the caller wraps them in a
// [BackendError] and never retries. Retrying, if wanted, belongs in the Model
// implementation.
type Model interface {
	// Name returns the model identifier, used for logging and metrics.
	Name() string

	// Call sends the prompt and returns either a complete response or a lazy
	// sequence of partial responses.
	Call(ctx context.Context, prompt []llms.MessageContent, tools []ToolDescriptor) (*ModelOutput, error)
}

// Usage reports token counts of one model call when the backend provides them.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// ChatResponse is a model response. When produced as part of a stream, each
// response must carry the fully accumulated content so far, not a delta.
type ChatResponse struct {
	// Content holds text, thinking and action request units in model order.
	Content []ContentUnit

	// FinishReason is the backend's stop reason, empty while streaming.
	FinishReason string

	// Usage is optional.
	Usage *Usage
}

// ModelOutput is either one complete [ChatResponse] or a lazily produced
// sequence of accumulated partial responses.
type ModelOutput struct {
	complete *ChatResponse
	stream   iter.Seq2[*ChatResponse, error]
}

// CompleteOutput wraps a single complete response.
func CompleteOutput(resp *ChatResponse) *ModelOutput {
	return &ModelOutput{complete: resp}
}

// StreamOutput wraps a lazy sequence of accumulated partial responses.
func StreamOutput(seq iter.Seq2[*ChatResponse, error]) *ModelOutput {
	return &ModelOutput{stream: seq}
}

// IsStreaming reports whether the output is a lazy sequence.
func (o *ModelOutput) IsStreaming() bool {
	return o != nil && o.stream != nil
}

// Responses returns the output as a sequence regardless of its shape.
func (o *ModelOutput) Responses() iter.Seq2[*ChatResponse, error] {
	if o == nil {
		return func(func(*ChatResponse, error) bool) {}
	}
	if o.stream != nil {
		return o.stream
	}
	return func(yield func(*ChatResponse, error) bool) {
		if o.complete != nil {
			yield(o.complete, nil)
		}
	}
}

// Formatter converts conversation messages into the backend representation.
// Implementations must be pure.
type Formatter interface {
	Format(msgs []*Message) ([]llms.MessageContent, error)
}
