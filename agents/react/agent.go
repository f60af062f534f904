package react

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"text/template"

	"github.com/rickchristie/reagent"
	"github.com/rickchristie/reagent/hooks"
	"github.com/rickchristie/reagent/memory"
	"github.com/rickchristie/reagent/models"
	"github.com/rickchristie/reagent/schema"
	"github.com/rickchristie/reagent/toolkit"
)

// DefaultMaxIters is the number of reasoning iterations before the agent
// gives up and summarizes.
const DefaultMaxIters = 10

// typeHooks is shared by every Agent.
var typeHooks = hooks.NewTable[*Agent](reagent.ReActPoints...)

// TypeHooks returns the hook table shared by all ReAct agents. Type hooks run
// before the instance hooks of each agent.
//
// Example:
//
//	react.TypeHooks().RegisterPre(reagent.PreReasoning, "trace",
//	    func(ctx context.Context, a *react.Agent, args reagent.Args) (reagent.Args, error) {
//	        slog.InfoContext(ctx, "reasoning", "agent", a.Name(), "iteration", args[reagent.ArgIteration])
//	        return nil, nil
//	    })
func TypeHooks() *hooks.Table[*Agent] {
	return typeHooks
}

// LoopState is a snapshot of the current or last reply loop.
type LoopState struct {
	// Iteration is the current reasoning iteration, starting at 1.
	Iteration int

	// MaxIters is the iteration budget of the loop.
	MaxIters int

	// Reply is the final reply once the loop has returned.
	Reply *reagent.Message
}

// ----------------------------------------------------------------------------
// Agent - ReAct controller
// ----------------------------------------------------------------------------

// Agent runs the ReAct loop: reason, act on the requested actions, and repeat
// until the model calls the completion action or the iteration budget runs
// out.
//
// Every public operation is wrapped by the hook chains of its lifecycle
// point, see [reagent.LifecyclePoint]. Replies are serialized per agent.
type Agent struct {
	name           string
	instructions   string
	systemTemplate *template.Template
	model          reagent.Model
	formatter      reagent.Formatter
	memory         reagent.Memory
	compactor      reagent.Compactor
	longTerm       reagent.LongTermMemory
	toolkit        *toolkit.Toolkit
	printer        reagent.Printer
	contract       *schema.Schema
	maxIters       int
	parallel       bool
	logger         *slog.Logger
	clock          reagent.Clock
	hooks          *hooks.Table[*Agent]

	interrupted atomic.Bool
	replyMu     sync.Mutex

	stateMu sync.Mutex
	state   LoopState
}

// NewAgent creates an agent named name backed by model.
// Defaults:
//   - Formatter: models.NewFormatter()
//   - Memory: memory.NewInMemory()
//   - Toolkit: empty toolkit.New()
//   - MaxIters: DefaultMaxIters
//   - SystemTemplate: DefaultSystemTemplate
//   - Clock: reagent.SystemClock{}
//   - Sequential acting, no printer, no compactor, no long-term memory
func NewAgent(name string, model reagent.Model) *Agent {
	return &Agent{
		name:           name,
		systemTemplate: DefaultSystemTemplate,
		model:          model,
		formatter:      models.NewFormatter(),
		memory:         memory.NewInMemory(),
		toolkit:        reservedToolkit(),
		maxIters:       DefaultMaxIters,
		logger:         slog.Default(),
		clock:          reagent.SystemClock{},
		hooks:          hooks.NewTable[*Agent](reagent.ReActPoints...),
	}
}

func reservedToolkit() *toolkit.Toolkit {
	tk := toolkit.New()
	tk.Reserve(CompletionAction)
	return tk
}

// WithInstructions sets behavior instructions included in the system prompt.
func (a *Agent) WithInstructions(instructions string) *Agent {
	a.instructions = instructions
	return a
}

// WithSystemTemplate sets a custom system prompt template.
// See DefaultSystemTemplate for the expected template structure.
func (a *Agent) WithSystemTemplate(tmpl *template.Template) *Agent {
	a.systemTemplate = tmpl
	return a
}

// WithSystemTemplateString sets a custom system prompt template from a string.
// The string is parsed as a Go text/template with access to SystemPromptData
// fields:
//   - {{.Name}} - the agent name
//   - {{.Instructions}} - instructions from WithInstructions()
//   - {{.Tools}} - equipped tool descriptors
//   - {{.CompletionAction}} - name of the completion action
//
// Example:
//
//	agent.WithSystemTemplateString(`You are {{.Name}}. Be terse.
//	Call {{.CompletionAction}} when done.`)
//
// An empty rendered prompt sends no system message.
func (a *Agent) WithSystemTemplateString(tmplStr string) (*Agent, error) {
	tmpl, err := template.New("react_system").Parse(tmplStr)
	if err != nil {
		return a, fmt.Errorf("failed to parse template: %w", err)
	}
	a.systemTemplate = tmpl
	return a, nil
}

// WithFormatter sets the formatter that builds model prompts.
func (a *Agent) WithFormatter(f reagent.Formatter) *Agent {
	a.formatter = f
	return a
}

// WithMemory sets the conversation log.
func (a *Agent) WithMemory(m reagent.Memory) *Agent {
	a.memory = m
	return a
}

// WithCompactor limits what the model sees of the log. The log is kept whole.
//
// Example:
//
//	agent.WithCompactor(compaction.NewSlidingWindow(20))
func (a *Agent) WithCompactor(c reagent.Compactor) *Agent {
	a.compactor = c
	return a
}

// WithLongTermMemory enables static long-term memory: one retrieval before
// the loop and one record after it.
func (a *Agent) WithLongTermMemory(m reagent.LongTermMemory) *Agent {
	a.longTerm = m
	return a
}

// WithToolkit sets the toolkit actions are resolved in. The completion action
// name is reserved on tk.
func (a *Agent) WithToolkit(tk *toolkit.Toolkit) *Agent {
	tk.Reserve(CompletionAction)
	a.toolkit = tk
	return a
}

// WithPrinter sets the presentation sink.
func (a *Agent) WithPrinter(p reagent.Printer) *Agent {
	a.printer = p
	return a
}

// WithStructuredOutput requires the completion action to carry fields that
// validate against contract. The validated fields are attached to the reply
// as Metadata[MetaStructuredOutput]. Pass nil to remove the contract.
func (a *Agent) WithStructuredOutput(contract *schema.Schema) *Agent {
	a.contract = contract
	return a
}

// WithMaxIters sets the reasoning budget. Values below 1 are ignored.
func (a *Agent) WithMaxIters(n int) *Agent {
	if n > 0 {
		a.maxIters = n
	}
	return a
}

// WithParallel runs the actions of one reasoning step concurrently.
//
// Default: false (actions run in request order)
func (a *Agent) WithParallel(enabled bool) *Agent {
	a.parallel = enabled
	return a
}

// WithLogger sets the logger.
func (a *Agent) WithLogger(logger *slog.Logger) *Agent {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// WithClock sets the clock exposed to the system prompt template.
// Use this to inject a fixed clock for testing.
func (a *Agent) WithClock(c reagent.Clock) *Agent {
	a.clock = c
	return a
}

// Name returns the agent name.
func (a *Agent) Name() string {
	return a.name
}

// Model returns the model.
func (a *Agent) Model() reagent.Model {
	return a.model
}

// Memory returns the conversation log.
func (a *Agent) Memory() reagent.Memory {
	return a.memory
}

// Toolkit returns the toolkit.
func (a *Agent) Toolkit() *toolkit.Toolkit {
	return a.toolkit
}

// Logger returns the logger.
func (a *Agent) Logger() *slog.Logger {
	return a.logger
}

// InstanceHooks returns the hook table owned by this agent. Instance hooks run
// after type hooks.
func (a *Agent) InstanceHooks() *hooks.Table[*Agent] {
	return a.hooks
}

// State returns a snapshot of the loop state.
func (a *Agent) State() LoopState {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	return a.state
}

func (a *Agent) setState(fn func(s *LoopState)) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	fn(&a.state)
}

// Interrupt makes the next Reply return a canned acknowledgement without
// calling the model.
func (a *Agent) Interrupt() {
	a.interrupted.Store(true)
}

func (a *Agent) dispatcher() *hooks.Dispatcher[*Agent] {
	return hooks.NewDispatcher(typeHooks, a.hooks).WithLogger(a.logger)
}
