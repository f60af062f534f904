package aggregate

import (
	"context"
	"errors"
	"testing"

	"github.com/rickchristie/reagent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sinkCall struct {
	text    string
	isFinal bool
	id      string
}

func recordSink(calls *[]sinkCall) Sink {
	return func(_ context.Context, msg *reagent.Message, isFinal bool) {
		*calls = append(*calls, sinkCall{text: msg.Text(), isFinal: isFinal, id: msg.ID})
	}
}

func streamOf(responses ...*reagent.ChatResponse) *reagent.ModelOutput {
	return reagent.StreamOutput(func(yield func(*reagent.ChatResponse, error) bool) {
		for _, r := range responses {
			if !yield(r, nil) {
				return
			}
		}
	})
}

func text(s string) *reagent.ChatResponse {
	return &reagent.ChatResponse{Content: []reagent.ContentUnit{reagent.TextUnit{Text: s}}}
}

func TestAggregate_Complete(t *testing.T) {
	var calls []sinkCall
	out := reagent.CompleteOutput(&reagent.ChatResponse{
		Content:      []reagent.ContentUnit{reagent.ThinkingUnit{Thinking: "hmm"}, reagent.TextUnit{Text: "4"}},
		FinishReason: "stop",
		Usage:        &reagent.Usage{InputTokens: 10, OutputTokens: 1},
	})

	msg, agg, err := Aggregate(context.Background(), "assistant", out, recordSink(&calls))

	require.NoError(t, err)
	assert.Equal(t, "4", msg.Text())
	assert.Equal(t, reagent.RoleAssistant, msg.Role)
	assert.Equal(t, "assistant", msg.Name)
	assert.Len(t, msg.Content.Units(), 2)
	assert.Equal(t, []sinkCall{{text: "4", isFinal: true, id: msg.ID}}, calls)
	assert.Equal(t, "stop", agg.FinishReason())
	assert.Equal(t, &reagent.Usage{InputTokens: 10, OutputTokens: 1}, agg.Usage())
	assert.Equal(t, 1, agg.Steps())
}

func TestAggregate_StreamEqualsComplete(t *testing.T) {
	final := &reagent.ChatResponse{Content: []reagent.ContentUnit{
		reagent.ThinkingUnit{Thinking: "add"},
		reagent.TextUnit{Text: "Let me check"},
		&reagent.ActionRequest{ID: "c1", Name: "calc", Args: map[string]any{"expr": "2+2"}},
	}}
	steps := []*reagent.ChatResponse{
		{Content: []reagent.ContentUnit{reagent.ThinkingUnit{Thinking: "ad"}}},
		{Content: []reagent.ContentUnit{reagent.ThinkingUnit{Thinking: "add"}, reagent.TextUnit{Text: "Let"}}},
		final,
	}

	var calls []sinkCall
	streamed, _, err := Aggregate(context.Background(), "a", streamOf(steps...), recordSink(&calls))
	require.NoError(t, err)
	single, _, err := Aggregate(context.Background(), "a", reagent.CompleteOutput(final), nil)
	require.NoError(t, err)

	assert.Equal(t, single.Content.Units(), streamed.Content.Units())

	require.Len(t, calls, 4)
	assert.Equal(t, []string{"", "Let", "Let me check", "Let me check"},
		[]string{calls[0].text, calls[1].text, calls[2].text, calls[3].text})
	for i, c := range calls {
		assert.Equal(t, i == 3, c.isFinal)
		assert.Equal(t, streamed.ID, c.id, "message identity is stable across steps")
	}
}

func TestAggregate_StreamError(t *testing.T) {
	boom := errors.New("connection reset")
	out := reagent.StreamOutput(func(yield func(*reagent.ChatResponse, error) bool) {
		if !yield(text("par"), nil) {
			return
		}
		yield(nil, boom)
	})

	var calls []sinkCall
	msg, agg, err := Aggregate(context.Background(), "a", out, recordSink(&calls))

	assert.Nil(t, msg)
	var backend *reagent.BackendError
	require.ErrorAs(t, err, &backend)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "par", agg.Message().Text())
	require.Len(t, calls, 1)
	assert.False(t, calls[0].isFinal)
}

func TestAggregator_RequestIDsStable(t *testing.T) {
	agg := New("a")

	agg.Add(&reagent.ChatResponse{Content: []reagent.ContentUnit{
		&reagent.ActionRequest{Name: "search", Args: map[string]any{"q": "g"}},
	}})
	first := agg.Message().ActionRequests()
	agg.Add(&reagent.ChatResponse{Content: []reagent.ContentUnit{
		&reagent.ActionRequest{Name: "search", Args: map[string]any{"q": "go"}},
		&reagent.ActionRequest{ID: "given", Name: "time"},
	}})
	second := agg.Message().ActionRequests()

	require.Len(t, first, 1)
	require.Len(t, second, 2)
	assert.NotEmpty(t, first[0].ID)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, "go", second[0].Args["q"])
	assert.Equal(t, "given", second[1].ID)
	assert.NotNil(t, second[1].Args)
}

func TestAggregator_AddCopiesRequests(t *testing.T) {
	agg := New("a")
	req := &reagent.ActionRequest{ID: "1", Name: "n", Args: map[string]any{"k": "v"}}

	agg.Add(&reagent.ChatResponse{Content: []reagent.ContentUnit{req}})
	req.Args["k"] = "mutated"

	assert.Equal(t, "v", agg.Message().ActionRequests()[0].Args["k"])
}

func TestAggregate_EmptyStream(t *testing.T) {
	var calls []sinkCall

	msg, _, err := Aggregate(context.Background(), "a", streamOf(), recordSink(&calls))

	require.NoError(t, err)
	assert.True(t, msg.Content.IsEmpty())
	assert.Equal(t, []sinkCall{{text: "", isFinal: true, id: msg.ID}}, calls)
}
