package compaction

import "github.com/rickchristie/reagent"

// SlidingWindow keeps the last N unpinned messages of the log. Pinned
// messages are always preserved regardless of the window size; they are
// "bonus slots" that do not count toward the window.
//
// A window never starts with action results whose requests fell outside of
// it, since models reject a tool result without its call.
//
// Example:
//
//	// Keep the last 20 messages (plus any pinned)
//	agent.WithCompactor(compaction.NewSlidingWindow(20))
type SlidingWindow struct {
	size int
}

// NewSlidingWindow creates a SlidingWindow that keeps the last size
// messages. Panics if size < 1.
func NewSlidingWindow(size int) *SlidingWindow {
	if size < 1 {
		panic("reagent: SlidingWindow size must be >= 1")
	}
	return &SlidingWindow{size: size}
}

// Compact implements reagent.Compactor.
func (s *SlidingWindow) Compact(log []*reagent.Message) []*reagent.Message {
	var unpinned []int
	for i, msg := range log {
		if !isPinned(msg) {
			unpinned = append(unpinned, i)
		}
	}
	if len(unpinned) <= s.size {
		return log
	}

	kept := unpinned[len(unpinned)-s.size:]
	for len(kept) > 0 && isOrphanResult(log[kept[0]]) {
		kept = kept[1:]
	}
	keptSet := make(map[int]bool, len(kept))
	for _, i := range kept {
		keptSet[i] = true
	}

	// Rebuild preserving original relative order
	out := make([]*reagent.Message, 0, len(log)-len(unpinned)+len(kept))
	for i, msg := range log {
		if keptSet[i] || isPinned(msg) {
			out = append(out, msg)
		}
	}
	return out
}

func isPinned(msg *reagent.Message) bool {
	pinned, _ := msg.Metadata[reagent.MetaPinned].(bool)
	return pinned
}

// isOrphanResult reports whether msg only answers earlier requests.
func isOrphanResult(msg *reagent.Message) bool {
	return len(msg.Content.ActionResults()) > 0 && len(msg.ActionRequests()) == 0
}

// Compile-time check.
var _ reagent.Compactor = (*SlidingWindow)(nil)
