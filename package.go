// Package reagent provides the building blocks of a hook-augmented ReAct agent
// in Go.
//
// The root package holds the shared vocabulary: messages and their content,
// tools and action results, the model and memory interfaces, and the
// lifecycle points hooks attach to. The loop itself lives in agents/react.
//
// # Quick Start: Weather Agent
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//
//	    "github.com/rickchristie/reagent"
//	    "github.com/rickchristie/reagent/agents/react"
//	    "github.com/rickchristie/reagent/models"
//	    "github.com/rickchristie/reagent/printer"
//	)
//
//	func main() {
//	    // 1. Wrap any langchaingo model
//	    model := models.NewLCG(llm).WithStreaming(true)
//
//	    // 2. Create a tool
//	    weather := reagent.NewTextToolFunc(
//	        reagent.ToolDescriptor{
//	            Name:        "get_weather",
//	            Description: "Current weather for a city",
//	            Params: []reagent.Param{
//	                {Name: "city", Type: reagent.TypeString, Required: true},
//	            },
//	        },
//	        func(ctx context.Context, args []any) (string, error) {
//	            return lookupWeather(args[0].(string))
//	        },
//	    )
//
//	    // 3. Create the agent and equip the tool
//	    agent := react.NewAgent("assistant", model).
//	        WithInstructions("Answer briefly.").
//	        WithPrinter(printer.NewConsole(os.Stdout))
//	    agent.Toolkit().MustRegister(weather)
//	    _ = agent.Toolkit().Equip("get_weather")
//
//	    // 4. Ask
//	    reply, err := agent.Reply(ctx, reagent.NewTextMessage("user", reagent.RoleUser, "Weather in Oslo?"))
//	    if err != nil {
//	        panic(err)
//	    }
//	    fmt.Println(reply.Text())
//	}
//
// # Message & Content
//
// A [Message] is one entry of the conversation log. Its [Content] is either
// plain text or an ordered list of content units:
//
//   - [TextUnit]: visible text
//   - [ThinkingUnit]: model reasoning, shown only when the formatter allows it
//   - [ActionRequest]: a call the model wants made
//   - [ActionResult]: the outcome of one request, with the same ID
//
// Messages are mutable while they are being produced (streamed model output,
// tool progress) and immutable once logged. [Memory] implementations store
// clones.
//
// # Tool & Toolkit
//
// A [Tool] has a [ToolDescriptor] and a Call that receives arguments
// positionally, in descriptor order. Optional arguments the model left out
// arrive as [Absent]. A call returns a [ToolResponse], either one immediate
// [ToolChunk] or a lazy sequence of them for tools that report progress.
//
// Tools are registered on a toolkit.Toolkit, which validates arguments,
// recovers panics and turns every failure into an "Error: ..." result the
// model can read.
//
// # Model & Formatter
//
// A [Model] returns a [ModelOutput]: one complete [ChatResponse], or a lazy
// sequence of responses where each one carries everything produced so far. A
// [Formatter] turns the log into the provider prompt. The models package
// adapts langchaingo to both.
//
// # Memory
//
// [Memory] is the append-only conversation log (memory.InMemory,
// memory.Redis). [LongTermMemory] outlives a conversation: it is consulted
// once before a reply and recorded once after. A [Compactor] bounds what the
// model sees of a long log without changing the log.
//
// # Hooks
//
// Every agent operation runs between a pre and a post [LifecyclePoint].
// Hooks may rewrite the arguments or the result; a failing hook is logged
// and skipped, never fatal. See package hooks.
//
// # Errors
//
// Only backend failures end a reply with an error, wrapped in
// [BackendError]. Everything a tool or the model does wrong is fed back to
// the model as a failed action result.
//
// # Clock
//
// System prompt templates read the time through a [Clock]. Use [SystemClock]
// in production and [FixedClock] in tests.
package reagent
