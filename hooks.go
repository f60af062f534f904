package reagent

// LifecyclePoint identifies an extension point around an agent operation.
//
// The set is closed. Reasoning and acting points exist only on agents that
// run a reason/act loop; see [BasePoints] and [ReActPoints].
type LifecyclePoint int

const (
	PreReply LifecyclePoint = iota
	PostReply
	PreObserve
	PostObserve
	PrePrint
	PostPrint
	PreReasoning
	PostReasoning
	PreActing
	PostActing
)

var lifecyclePointNames = [...]string{
	PreReply:      "pre_reply",
	PostReply:     "post_reply",
	PreObserve:    "pre_observe",
	PostObserve:   "post_observe",
	PrePrint:      "pre_print",
	PostPrint:     "post_print",
	PreReasoning:  "pre_reasoning",
	PostReasoning: "post_reasoning",
	PreActing:     "pre_acting",
	PostActing:    "post_acting",
}

// String returns the snake_case name of the point, e.g. "pre_reasoning".
func (p LifecyclePoint) String() string {
	if p < 0 || int(p) >= len(lifecyclePointNames) {
		return "unknown"
	}
	return lifecyclePointNames[p]
}

// IsPre reports whether hooks on this point run before the operation and
// receive only the argument bag.
func (p LifecyclePoint) IsPre() bool {
	return p%2 == 0
}

// ParseLifecyclePoint returns the point with the given name.
func ParseLifecyclePoint(name string) (LifecyclePoint, bool) {
	for i, n := range lifecyclePointNames {
		if n == name {
			return LifecyclePoint(i), true
		}
	}
	return 0, false
}

// BasePoints are supported by every agent.
var BasePoints = []LifecyclePoint{
	PreReply, PostReply,
	PreObserve, PostObserve,
	PrePrint, PostPrint,
}

// ReActPoints are supported by reason/act agents.
var ReActPoints = append(append([]LifecyclePoint{}, BasePoints...),
	PreReasoning, PostReasoning,
	PreActing, PostActing,
)

// Args is the argument bag passed through pre hooks. A hook that wants to
// change the arguments returns a full replacement bag; keys it omits are gone.
type Args map[string]any

// Clone returns a shallow copy of the bag.
func (a Args) Clone() Args {
	if a == nil {
		return nil
	}
	out := make(Args, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Argument bag keys used by the built-in lifecycle points.
const (
	ArgMessages   = "msgs"
	ArgMessage    = "msg"
	ArgIsFinal    = "is_final"
	ArgRequest    = "tool_call"
	ArgStructured = "structured_model"
	ArgIteration  = "iteration"
)
