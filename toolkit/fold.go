package toolkit

import (
	"iter"
	"maps"
	"strings"

	"github.com/rickchristie/reagent"
)

// Outcome is the folded result of one invocation.
type Outcome struct {
	// Result is the action result to append to the log. Its ID matches the
	// request.
	Result *reagent.ActionResult

	// Success is false if any chunk reported a failure.
	Success bool

	// Metadata merges the metadata of every chunk; later chunks win.
	Metadata map[string]any

	// Chunks counts the chunks consumed.
	Chunks int
}

// Fold drains chunks and concatenates their text into a single result for
// req. Each chunk's text is treated as a delta.
//
// onChunk, when non-nil, is called after each chunk with the result
// accumulated so far, e.g. to print progress.
func Fold(
	req *reagent.ActionRequest,
	chunks iter.Seq[*reagent.ToolChunk],
	onChunk func(partial *reagent.ActionResult, chunk *reagent.ToolChunk),
) *Outcome {
	out := &Outcome{
		Result:   &reagent.ActionResult{ID: req.ID, Name: req.Name},
		Success:  true,
		Metadata: map[string]any{},
	}

	var sb strings.Builder
	for chunk := range chunks {
		out.Chunks++
		sb.WriteString(chunk.Text())
		maps.Copy(out.Metadata, chunk.Metadata)
		if !chunk.Success() {
			out.Success = false
		}
		out.Result.Output = sb.String()
		if onChunk != nil {
			partial := *out.Result
			onChunk(&partial, chunk)
		}
	}
	out.Metadata[reagent.MetaSuccess] = out.Success
	return out
}
