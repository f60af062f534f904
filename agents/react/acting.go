package react

import (
	"context"

	"github.com/rickchristie/reagent"
	"github.com/rickchristie/reagent/hooks"
	"github.com/rickchristie/reagent/toolkit"
	"golang.org/x/sync/errgroup"
)

// ActionOutcome is the result of one action. It is what post_acting hooks
// receive and may replace.
type ActionOutcome struct {
	// Request is the request as executed, after pre_acting hooks.
	Request *reagent.ActionRequest

	// Result is the logged action result.
	Result *reagent.ActionResult

	// Success is false if the action failed or violated its contract.
	Success bool

	// Reply is set when a completion action succeeded.
	Reply *reagent.Message
}

// acting runs reqs and returns the reply adopted from the first successful
// completion action by request position, together with that request's ID.
//
// Results land in a slot per request, so adoption does not depend on which
// goroutine finishes first. Log appends follow completion order.
func (a *Agent) acting(
	ctx context.Context,
	r *run,
	reqs []*reagent.ActionRequest,
	iteration int,
) (*reagent.Message, string, error) {
	slots := make([]*ActionOutcome, len(reqs))

	if a.parallel && len(reqs) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		for i, req := range reqs {
			g.Go(func() error {
				out, err := a.act(gctx, r, req)
				slots[i] = out
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, "", err
		}
	} else {
		for i, req := range reqs {
			out, err := a.act(ctx, r, req)
			if err != nil {
				return nil, "", err
			}
			slots[i] = out
		}
	}

	var reply *reagent.Message
	var adopted string
	for i, out := range slots {
		if out == nil || out.Reply == nil {
			continue
		}
		if reply == nil {
			reply, adopted = out.Reply, reqs[i].ID
			continue
		}
		a.logger.DebugContext(ctx, "discarding extra completion signal",
			"agent", a.name,
			"iteration", iteration,
			"index", i,
			"id", reqs[i].ID,
		)
	}
	return reply, adopted, nil
}

// act runs one request wrapped by the acting hooks. The folded result is
// logged once, after the tool's chunk sequence has drained, under the ID of
// the original request.
//
// Hooks: pre_acting receives Args{tool_call} and may replace the request;
// post_acting receives the *ActionOutcome and may replace it.
func (a *Agent) act(ctx context.Context, r *run, original *reagent.ActionRequest) (*ActionOutcome, error) {
	args := reagent.Args{reagent.ArgRequest: original}
	return hooks.Wrap(ctx, a.dispatcher(), a, reagent.PreActing, reagent.PostActing, args,
		func(ctx context.Context, args reagent.Args) (*ActionOutcome, error) {
			req, ok := args[reagent.ArgRequest].(*reagent.ActionRequest)
			if !ok || req == nil {
				req = original
			}

			kit := a.toolkit
			if req.Name == CompletionAction {
				kit = r.completion
			}

			msg := reagent.NewMessage(req.Name, reagent.RoleSystem, reagent.Structured())
			folded := toolkit.Fold(req, kit.Invoke(ctx, req),
				func(partial *reagent.ActionResult, chunk *reagent.ToolChunk) {
					partial.ID = original.ID
					msg.Content = reagent.Structured(partial)
					a.Print(ctx, msg, false)
				})
			folded.Result.ID = original.ID

			msg.Content = reagent.Structured(folded.Result)
			a.Print(ctx, msg, true)
			if err := a.memory.Add(ctx, msg); err != nil {
				return nil, memoryError(err)
			}

			out := &ActionOutcome{
				Request: req,
				Result:  folded.Result,
				Success: folded.Success,
			}
			if req.Name == CompletionAction && folded.Success {
				out.Reply, _ = folded.Metadata[metaReply].(*reagent.Message)
			}
			return out, nil
		})
}
