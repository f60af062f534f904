package reagent

import "context"

// Memory is the conversation log of an agent. The core only ever appends to
// it; retention is the implementation's concern.
//
// Implementations must store clones of added messages so that a logged
// message cannot be changed by its producer afterwards.
type Memory interface {
	Add(ctx context.Context, msgs ...*Message) error
	List(ctx context.Context) ([]*Message, error)
	Size(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// LongTermMemory is a store that outlives a single conversation. In static
// mode the agent retrieves from it once before the loop and records to it
// once after.
type LongTermMemory interface {
	// Retrieve returns a textual hint relevant to msgs, possibly empty.
	Retrieve(ctx context.Context, msgs []*Message) (string, error)

	// Record stores the transcript of one reply.
	Record(ctx context.Context, msgs []*Message) error
}

// Printer is the presentation sink. It receives a message each time the
// message grows, with isFinal set on the last call. Printers diff against what
// they already showed; the core always sends the full message.
type Printer interface {
	Print(ctx context.Context, msg *Message, isFinal bool)
}

// PrinterFunc adapts a function to [Printer].
type PrinterFunc func(ctx context.Context, msg *Message, isFinal bool)

// Print calls f.
func (f PrinterFunc) Print(ctx context.Context, msg *Message, isFinal bool) {
	f(ctx, msg, isFinal)
}

// MetaPinned marks a logged message that a [Compactor] must always keep.
const MetaPinned = "pinned"

// Compactor selects the part of the log that is sent to the model. The log
// itself is never changed; Compact returns a view of it.
type Compactor interface {
	Compact(log []*Message) []*Message
}
