// Package hooks provides named, ordered hook chains around agent operations.
//
// Every agent operation (reply, observe, print, and for ReAct agents
// reasoning and acting) has a pre point and a post point. Pre hooks see the
// argument bag before the operation runs and may return a replacement. Post
// hooks see the result and may return a replacement.
//
// # Scopes
//
// Hooks live in two [Table] values:
//
//   - the type table, shared by every agent of one kind
//   - the instance table, owned by one agent
//
// The [Dispatcher] always runs the type chain first, then the instance chain.
// Within a chain hooks run in registration order.
//
// # Writing a Hook
//
//	redact := func(
//	    ctx context.Context,
//	    agent *react.Agent,
//	    args reagent.Args,
//	) (reagent.Args, error) {
//	    msg, _ := args[reagent.ArgMessage].(*reagent.Message)
//	    if msg == nil {
//	        return nil, nil // leave unchanged
//	    }
//	    out := args.Clone()
//	    out[reagent.ArgMessage] = scrub(msg)
//	    return out, nil
//	}
//
//	agent.InstanceHooks().RegisterPre(reagent.PrePrint, "redact", redact)
//
// Returning nil leaves the value unchanged. A returned bag replaces the
// previous one entirely, so copy the keys you do not touch.
//
// # Failures
//
// Hooks fail soft. An error or panic is logged and the chain continues with
// the last good value. Hooks cannot cancel the operation they wrap.
package hooks
