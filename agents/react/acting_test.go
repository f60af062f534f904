package react

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rickchristie/reagent"
	"github.com/rickchristie/reagent/internal/tt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// barrierTool blocks every call until n calls are in flight, so it only
// succeeds when the calls run concurrently.
func barrierTool(n int32) *reagent.ToolFunc {
	var started atomic.Int32
	release := make(chan struct{})
	var once sync.Once

	return tt.NewTextTool(tt.Descriptor("barrier"), func([]any) (string, error) {
		if started.Add(1) == n {
			once.Do(func() { close(release) })
		}
		select {
		case <-release:
			return "released", nil
		case <-time.After(2 * time.Second):
			return "", errors.New("calls did not overlap")
		}
	})
}

func TestAgent_Acting_ParallelRunsAllConcurrently(t *testing.T) {
	model := tt.NewMockModel().
		AddActions(
			&reagent.ActionRequest{Name: "barrier"},
			&reagent.ActionRequest{Name: "barrier"},
			&reagent.ActionRequest{Name: "barrier"},
		).
		AddText("all done")
	a := newTestAgent(model).WithParallel(true)
	a.Toolkit().MustRegister(barrierTool(3))

	reply, err := a.Reply(context.Background(), userMsg("go"))
	require.NoError(t, err)
	assert.Equal(t, "all done", reply.Text())

	log := tt.ListMemory(t, a.Memory())
	requests := log[1].ActionRequests()
	results := tt.ActionResults(log)[:3]

	resultIDs := make(map[string]string, len(results))
	for _, r := range results {
		resultIDs[r.ID] = r.Output
	}
	require.Len(t, resultIDs, 3)
	for _, req := range requests {
		assert.Equal(t, "released", resultIDs[req.ID], "every request has exactly one result")
	}
}

func TestAgent_Acting_FirstCompletionByIndexWins(t *testing.T) {
	model := tt.NewMockModel().AddActions(
		&reagent.ActionRequest{Name: CompletionAction, Args: map[string]any{ResponseArg: "first"}},
		&reagent.ActionRequest{Name: CompletionAction, Args: map[string]any{ResponseArg: "second"}},
	)
	a := newTestAgent(model).WithParallel(true)

	// Hold the first completion back so the second one finishes first.
	require.NoError(t, a.InstanceHooks().RegisterPre(reagent.PreActing, "delay-first",
		func(_ context.Context, _ *Agent, args reagent.Args) (reagent.Args, error) {
			req := args[reagent.ArgRequest].(*reagent.ActionRequest)
			if req.Args[ResponseArg] == "first" {
				time.Sleep(50 * time.Millisecond)
			}
			return nil, nil
		}))

	reply, err := a.Reply(context.Background(), userMsg("answer twice"))
	require.NoError(t, err)

	assert.Equal(t, "first", reply.Text())
	assert.Equal(t, 1, model.CallCount())

	results := tt.ActionResults(tt.ListMemory(t, a.Memory()))
	require.Len(t, results, 2, "both completion actions are logged")
}

func TestAgent_Acting_FailedCompletionDoesNotWin(t *testing.T) {
	model := tt.NewMockModel().AddActions(
		&reagent.ActionRequest{Name: CompletionAction, Args: map[string]any{}},
		&reagent.ActionRequest{Name: CompletionAction, Args: map[string]any{ResponseArg: "valid"}},
	)
	a := newTestAgent(model)

	reply, err := a.Reply(context.Background(), userMsg("answer"))
	require.NoError(t, err)

	assert.Equal(t, "valid", reply.Text())
}

func TestAgent_Acting_SequentialKeepsRequestOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(name string) *reagent.ToolFunc {
		return tt.NewTextTool(tt.Descriptor(name), func([]any) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return name, nil
		})
	}

	model := tt.NewMockModel().
		AddActions(
			&reagent.ActionRequest{Name: "a"},
			&reagent.ActionRequest{Name: "b"},
			&reagent.ActionRequest{Name: "c"},
		).
		AddText("ok")
	agent := newTestAgent(model)
	agent.Toolkit().MustRegister(record("a"))
	agent.Toolkit().MustRegister(record("b"))
	agent.Toolkit().MustRegister(record("c"))

	_, err := agent.Reply(context.Background(), userMsg("go"))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, order)
	results := tt.ActionResults(tt.ListMemory(t, agent.Memory()))
	assert.Equal(t, "a", results[0].Output)
	assert.Equal(t, "b", results[1].Output)
	assert.Equal(t, "c", results[2].Output)
}

func TestAgent_Acting_ActionsAndCompletionInOneStep(t *testing.T) {
	counter := tt.NewCountingTool(tt.Descriptor("notify"), "sent")
	model := tt.NewMockModel().AddActions(
		&reagent.ActionRequest{Name: "notify"},
		&reagent.ActionRequest{Name: CompletionAction, Args: map[string]any{ResponseArg: "Notified."}},
	)
	a := newTestAgent(model).WithParallel(true)
	a.Toolkit().MustRegister(counter)

	reply, err := a.Reply(context.Background(), userMsg("notify and finish"))
	require.NoError(t, err)

	assert.Equal(t, "Notified.", reply.Text())
	assert.Equal(t, 1, counter.Calls(), "sibling actions still run")
	assert.Equal(t, 1, model.CallCount())
}

func TestAgent_Acting_PostActingHookReplacesOutcome(t *testing.T) {
	model := tt.NewMockModel().
		AddActions(&reagent.ActionRequest{Name: "lookup"}).
		AddText("unreachable")
	a := newTestAgent(model)
	a.Toolkit().MustRegister(tt.NewStaticTool("lookup", "found it"))

	require.NoError(t, a.InstanceHooks().RegisterPost(reagent.PostActing, "finish-early",
		func(_ context.Context, agent *Agent, _ reagent.Args, result any) (any, error) {
			out := *result.(*ActionOutcome)
			out.Reply = reagent.NewTextMessage(agent.Name(), reagent.RoleAssistant, "short-circuit: "+out.Result.Output)
			return &out, nil
		}))

	reply, err := a.Reply(context.Background(), userMsg("look"))
	require.NoError(t, err)

	assert.Equal(t, "short-circuit: found it", reply.Text())
	assert.Equal(t, 1, model.CallCount())
}
