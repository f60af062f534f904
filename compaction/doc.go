// Package compaction provides [reagent.Compactor] implementations that bound
// the prompt of a long conversation.
//
// Compactors never modify the log. The agent applies them to the listed log
// right before formatting the prompt, so the full history stays available to
// memory backends, transcripts and long-term memory.
//
// Messages with Metadata[reagent.MetaPinned] set to true are always kept and
// do not count toward any limit:
//
//	msg.Metadata = map[string]any{reagent.MetaPinned: true}
package compaction
