package tt

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/rickchristie/reagent"
	"github.com/tmc/langchaingo/llms"
)

// -----------------------------------------------------------------------------
// MockModel - implements reagent.Model
// -----------------------------------------------------------------------------

// ErrNoMoreResponses is returned when a MockModel runs out of queued responses.
var ErrNoMoreResponses = errors.New("mock model: no more responses")

type mockCall struct {
	complete *reagent.ChatResponse
	stream   []*reagent.ChatResponse
	err      error
	// streamErr is yielded after the stream responses.
	streamErr error
}

// MockModel is a scripted reagent.Model. Each call consumes the next queued
// response in order.
type MockModel struct {
	mu    sync.Mutex
	name  string
	calls []mockCall
	next  int

	// CapturedPrompts stores the prompt of every call.
	CapturedPrompts [][]llms.MessageContent

	// CapturedTools stores the tool descriptors of every call.
	CapturedTools [][]reagent.ToolDescriptor
}

// NewMockModel creates a MockModel named "test-model".
func NewMockModel() *MockModel {
	return &MockModel{name: "test-model"}
}

// WithName sets the model name.
func (m *MockModel) WithName(name string) *MockModel {
	m.name = name
	return m
}

// AddText queues a complete response with one text unit.
func (m *MockModel) AddText(text string) *MockModel {
	return m.AddUnits(reagent.TextUnit{Text: text})
}

// AddUnits queues a complete response made of units.
func (m *MockModel) AddUnits(units ...reagent.ContentUnit) *MockModel {
	m.calls = append(m.calls, mockCall{complete: &reagent.ChatResponse{Content: units}})
	return m
}

// AddActions queues a complete response requesting the given actions. IDs are
// generated when empty.
func (m *MockModel) AddActions(reqs ...*reagent.ActionRequest) *MockModel {
	units := make([]reagent.ContentUnit, len(reqs))
	for i, r := range reqs {
		if r.ID == "" {
			r.ID = fmt.Sprintf("call_%d_%d", len(m.calls), i)
		}
		units[i] = r
	}
	return m.AddUnits(units...)
}

// AddStream queues a streaming response. Each element is the accumulated
// content at that step.
func (m *MockModel) AddStream(steps ...[]reagent.ContentUnit) *MockModel {
	responses := make([]*reagent.ChatResponse, len(steps))
	for i, s := range steps {
		responses[i] = &reagent.ChatResponse{Content: s}
	}
	m.calls = append(m.calls, mockCall{stream: responses})
	return m
}

// AddTextStream queues a streaming response that grows through the given
// accumulated texts.
func (m *MockModel) AddTextStream(texts ...string) *MockModel {
	steps := make([][]reagent.ContentUnit, len(texts))
	for i, t := range texts {
		steps[i] = []reagent.ContentUnit{reagent.TextUnit{Text: t}}
	}
	return m.AddStream(steps...)
}

// AddStreamError queues a streaming response that fails after the given
// accumulated texts.
func (m *MockModel) AddStreamError(err error, texts ...string) *MockModel {
	m.AddTextStream(texts...)
	m.calls[len(m.calls)-1].streamErr = err
	return m
}

// AddError queues a call failure.
func (m *MockModel) AddError(err error) *MockModel {
	m.calls = append(m.calls, mockCall{err: err})
	return m
}

// CallCount returns the number of calls made so far.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.next
}

// Name implements reagent.Model.
func (m *MockModel) Name() string {
	return m.name
}

// Call implements reagent.Model.
func (m *MockModel) Call(
	_ context.Context,
	prompt []llms.MessageContent,
	tools []reagent.ToolDescriptor,
) (*reagent.ModelOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CapturedPrompts = append(m.CapturedPrompts, prompt)
	m.CapturedTools = append(m.CapturedTools, tools)

	if m.next >= len(m.calls) {
		m.next++
		return nil, ErrNoMoreResponses
	}
	call := m.calls[m.next]
	m.next++

	switch {
	case call.err != nil:
		return nil, call.err
	case call.complete != nil:
		return reagent.CompleteOutput(call.complete), nil
	default:
		return reagent.StreamOutput(func(yield func(*reagent.ChatResponse, error) bool) {
			for _, r := range call.stream {
				if !yield(r, nil) {
					return
				}
			}
			if call.streamErr != nil {
				yield(nil, call.streamErr)
			}
		}), nil
	}
}

// LastPrompt returns the prompt of the most recent call.
func (m *MockModel) LastPrompt() []llms.MessageContent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.CapturedPrompts) == 0 {
		return nil
	}
	return m.CapturedPrompts[len(m.CapturedPrompts)-1]
}

var _ reagent.Model = (*MockModel)(nil)

// -----------------------------------------------------------------------------
// Tools
// -----------------------------------------------------------------------------

// Descriptor builds a tool descriptor. Params written as "name" are
// optional and untyped; use reagent.Param directly for more control.
func Descriptor(name string, params ...reagent.Param) reagent.ToolDescriptor {
	return reagent.ToolDescriptor{
		Name:        name,
		Description: "test tool " + name,
		Params:      params,
	}
}

// Required returns a required parameter of the given type.
func Required(name string, typ reagent.ParamType) reagent.Param {
	return reagent.Param{Name: name, Type: typ, Required: true}
}

// Optional returns an optional parameter of the given type.
func Optional(name string, typ reagent.ParamType) reagent.Param {
	return reagent.Param{Name: name, Type: typ}
}

// NewTextTool returns a tool that answers with fn's text immediately.
func NewTextTool(
	d reagent.ToolDescriptor,
	fn func(args []any) (string, error),
) *reagent.ToolFunc {
	return reagent.NewTextToolFunc(d, func(_ context.Context, args []any) (string, error) {
		return fn(args)
	})
}

// NewStaticTool returns a parameterless tool that always answers text.
func NewStaticTool(name, text string) *reagent.ToolFunc {
	return NewTextTool(Descriptor(name), func([]any) (string, error) { return text, nil })
}

// NewStreamingTool returns a tool that streams the given deltas, the last one
// marked final.
func NewStreamingTool(name string, deltas ...string) *reagent.ToolFunc {
	return reagent.NewToolFunc(Descriptor(name), func(context.Context, []any) (*reagent.ToolResponse, error) {
		return reagent.Streaming(Chunks(deltas...)), nil
	})
}

// Chunks yields one text chunk per delta, the last one marked final.
func Chunks(deltas ...string) iter.Seq2[*reagent.ToolChunk, error] {
	return func(yield func(*reagent.ToolChunk, error) bool) {
		for i, d := range deltas {
			c := reagent.TextChunk(d)
			c.IsFinal = i == len(deltas)-1
			if !yield(c, nil) {
				return
			}
		}
	}
}

// NewFailingTool returns a tool whose call fails with err.
func NewFailingTool(name string, err error) *reagent.ToolFunc {
	return NewTextTool(Descriptor(name), func([]any) (string, error) { return "", err })
}

// NewPanicTool returns a tool that panics with v.
func NewPanicTool(name string, v any) *reagent.ToolFunc {
	return NewTextTool(Descriptor(name), func([]any) (string, error) { panic(v) })
}

// CountingTool counts its calls and answers with a fixed text.
type CountingTool struct {
	mu    sync.Mutex
	calls int
	*reagent.ToolFunc
}

// NewCountingTool creates a CountingTool.
func NewCountingTool(d reagent.ToolDescriptor, text string) *CountingTool {
	t := &CountingTool{}
	t.ToolFunc = NewTextTool(d, func([]any) (string, error) {
		t.mu.Lock()
		t.calls++
		t.mu.Unlock()
		return text, nil
	})
	return t
}

// Calls returns the number of calls made.
func (t *CountingTool) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// -----------------------------------------------------------------------------
// RecordingPrinter - implements reagent.Printer
// -----------------------------------------------------------------------------

// PrintCall is one recorded print.
type PrintCall struct {
	Message *reagent.Message
	IsFinal bool
}

// RecordingPrinter records every print, cloning the message.
type RecordingPrinter struct {
	mu    sync.Mutex
	calls []PrintCall
}

// Print implements reagent.Printer.
func (p *RecordingPrinter) Print(_ context.Context, msg *reagent.Message, isFinal bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, PrintCall{Message: msg.Clone(), IsFinal: isFinal})
}

// Calls returns the recorded prints.
func (p *RecordingPrinter) Calls() []PrintCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PrintCall(nil), p.calls...)
}

// Texts returns the text of every recorded print.
func (p *RecordingPrinter) Texts() []string {
	var out []string
	for _, c := range p.Calls() {
		out = append(out, c.Message.Text())
	}
	return out
}

var _ reagent.Printer = (*RecordingPrinter)(nil)

// -----------------------------------------------------------------------------
// MockLongTermMemory - implements reagent.LongTermMemory
// -----------------------------------------------------------------------------

// MockLongTermMemory returns a fixed hint and records what it is given.
type MockLongTermMemory struct {
	mu          sync.Mutex
	Hint        string
	RetrieveErr error
	RecordErr   error

	Retrieved [][]*reagent.Message
	Recorded  [][]*reagent.Message
}

// Retrieve implements reagent.LongTermMemory.
func (m *MockLongTermMemory) Retrieve(_ context.Context, msgs []*reagent.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Retrieved = append(m.Retrieved, msgs)
	return m.Hint, m.RetrieveErr
}

// Record implements reagent.LongTermMemory.
func (m *MockLongTermMemory) Record(_ context.Context, msgs []*reagent.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Recorded = append(m.Recorded, msgs)
	return m.RecordErr
}

var _ reagent.LongTermMemory = (*MockLongTermMemory)(nil)
