package react

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rickchristie/reagent"
	"github.com/rickchristie/reagent/compaction"
	"github.com/rickchristie/reagent/config"
	"github.com/rickchristie/reagent/internal/tt"
	"github.com/rickchristie/reagent/memory"
	"github.com/rickchristie/reagent/schema"
	"github.com/rickchristie/reagent/toolkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

var testTime = time.Date(2025, 2, 15, 14, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAgent(model reagent.Model) *Agent {
	return NewAgent("assistant", model).
		WithLogger(discardLogger()).
		WithClock(reagent.NewFixedClock(testTime)).
		WithToolkit(toolkit.New(toolkit.WithAutoEquip(), toolkit.WithLogger(discardLogger())))
}

func userMsg(text string) *reagent.Message {
	return reagent.NewTextMessage("user", reagent.RoleUser, text)
}

// promptText flattens a prompt into one string for substring checks.
func promptText(prompt []llms.MessageContent) string {
	var sb strings.Builder
	for _, m := range prompt {
		for _, p := range m.Parts {
			switch v := p.(type) {
			case llms.TextContent:
				sb.WriteString(v.Text)
			case llms.ToolCallResponse:
				sb.WriteString(v.Content)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func TestNewAgent_Defaults(t *testing.T) {
	model := tt.NewMockModel()
	a := NewAgent("assistant", model)

	assert.Equal(t, "assistant", a.Name())
	assert.Same(t, model, a.Model())
	assert.IsType(t, &memory.InMemory{}, a.Memory())
	assert.NotNil(t, a.Toolkit())
	assert.NotNil(t, a.Logger())
	assert.Equal(t, LoopState{}, a.State())
	assert.True(t, a.InstanceHooks().Supports(reagent.PreActing))
	assert.True(t, TypeHooks().Supports(reagent.PostReasoning))
}

func TestAgent_WithMaxIters_IgnoresNonPositive(t *testing.T) {
	a := NewAgent("a", tt.NewMockModel()).WithMaxIters(0).WithMaxIters(-3)

	assert.Equal(t, DefaultMaxIters, a.maxIters)
}

func TestAgent_SystemPrompt(t *testing.T) {
	model := tt.NewMockModel().AddText("hi")
	a := newTestAgent(model).WithInstructions("Answer in French.")
	a.Toolkit().MustRegister(tt.NewStaticTool("get_time", "noon"))

	_, err := a.Reply(context.Background(), userMsg("hello"))
	require.NoError(t, err)

	prompt := model.CapturedPrompts[0]
	require.NotEmpty(t, prompt)
	assert.Equal(t, llms.ChatMessageTypeSystem, prompt[0].Role)

	system := promptText(prompt[:1])
	assert.Contains(t, system, "You are assistant")
	assert.Contains(t, system, "Answer in French.")
	assert.Contains(t, system, "- get_time: test tool get_time")
	assert.Contains(t, system, "`generate_response`")
	assert.Contains(t, system, "Today is Saturday, 2025-02-15.")
}

func TestAgent_SystemTemplateString(t *testing.T) {
	model := tt.NewMockModel().AddText("ok")
	a, err := newTestAgent(model).WithSystemTemplateString(`{{.Name}} at {{.Time.Format "15:04"}}`)
	require.NoError(t, err)

	_, err = a.Reply(context.Background(), userMsg("hello"))
	require.NoError(t, err)

	assert.Equal(t, "assistant at 14:30\n", promptText(model.CapturedPrompts[0][:1]))
}

func TestAgent_SystemTemplateString_Invalid(t *testing.T) {
	_, err := newTestAgent(tt.NewMockModel()).WithSystemTemplateString("{{.Name")

	assert.ErrorContains(t, err, "failed to parse template")
}

func TestAgent_EmptySystemPromptIsOmitted(t *testing.T) {
	model := tt.NewMockModel().AddText("ok")
	a, err := newTestAgent(model).WithSystemTemplateString(`{{if false}}x{{end}}`)
	require.NoError(t, err)

	_, err = a.Reply(context.Background(), userMsg("hello"))
	require.NoError(t, err)

	assert.Equal(t, llms.ChatMessageTypeHuman, model.CapturedPrompts[0][0].Role)
}

func TestAgent_ToolsSentToModel(t *testing.T) {
	model := tt.NewMockModel().AddText("ok")
	a := newTestAgent(model)
	a.Toolkit().MustRegister(tt.NewStaticTool("get_time", "noon"))

	_, err := a.Reply(context.Background(), userMsg("hello"))
	require.NoError(t, err)

	var names []string
	for _, d := range model.CapturedTools[0] {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"get_time", CompletionAction}, names)
}

func TestAgent_CompletionDescriptorShowsContract(t *testing.T) {
	contract := schema.MustCompile(schema.Object(map[string]*schema.Property{
		"status": schema.String("Ticket status").Enum("open", "closed"),
	}, "status"))
	model := tt.NewMockModel().AddActions(&reagent.ActionRequest{
		Name: CompletionAction,
		Args: map[string]any{ResponseArg: "Closed it.", "status": "closed"},
	})
	a := newTestAgent(model).WithStructuredOutput(contract)

	_, err := a.Reply(context.Background(), userMsg("close the ticket"))
	require.NoError(t, err)

	tools := model.CapturedTools[0]
	completion := tools[len(tools)-1]
	require.Equal(t, CompletionAction, completion.Name)
	props := completion.JSONSchema()["properties"].(map[string]any)
	assert.Equal(t, map[string]any{
		"type":        "string",
		"description": "Ticket status",
		"enum":        []any{"open", "closed"},
	}, props["status"])
	assert.Equal(t, []string{ResponseArg, "status"}, completion.Required())
}

func TestAgent_CompactorLimitsPrompt(t *testing.T) {
	model := tt.NewMockModel().AddText("first answer").AddText("second answer")
	a := newTestAgent(model).WithCompactor(compaction.NewSlidingWindow(1))

	_, err := a.Reply(context.Background(), userMsg("one"))
	require.NoError(t, err)
	_, err = a.Reply(context.Background(), userMsg("two"))
	require.NoError(t, err)

	prompt := model.CapturedPrompts[1]
	require.Len(t, prompt, 2, "system prompt and the newest message")
	assert.Equal(t, "two\n", promptText(prompt[1:]))
	assert.Len(t, tt.ListMemory(t, a.Memory()), 8, "the log itself is kept whole")
}

func TestAgent_CompletionNameIsReserved(t *testing.T) {
	a := newTestAgent(tt.NewMockModel())

	err := a.Toolkit().Register(tt.NewStaticTool(CompletionAction, "hijacked"))

	assert.ErrorIs(t, err, reagent.ErrReservedName)
	assert.ErrorIs(t, NewAgent("b", tt.NewMockModel()).Toolkit().Register(
		tt.NewStaticTool(CompletionAction, "hijacked")), reagent.ErrReservedName)
}

func TestAgent_PreregisteredCompletionNameIsNotOffered(t *testing.T) {
	tk := toolkit.New(toolkit.WithAutoEquip(), toolkit.WithLogger(discardLogger()))
	tk.MustRegister(tt.NewStaticTool(CompletionAction, "hijacked"))
	tk.MustRegister(tt.NewStaticTool("get_time", "noon"))

	model := tt.NewMockModel().AddText("ok")
	a := newTestAgent(model).WithToolkit(tk)

	reply, err := a.Reply(context.Background(), userMsg("hello"))
	require.NoError(t, err)
	assert.Equal(t, "ok", reply.Text())

	var names []string
	for _, d := range model.CapturedTools[0] {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"get_time", CompletionAction}, names)
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Agent.Name = "planner"
	cfg.Agent.MaxIters = 3
	cfg.Agent.Parallel = true
	cfg.Agent.StructuredOutput = `{"type":"object","properties":{"title":{"type":"string"}}}`
	cfg.Toolkit.CacheSize = 8
	cfg.Agent.Window = 4

	a, err := FromConfig(context.Background(), cfg, tt.NewMockModel())
	require.NoError(t, err)

	assert.Equal(t, "planner", a.Name())
	assert.Equal(t, 3, a.maxIters)
	assert.True(t, a.parallel)
	require.NotNil(t, a.contract)
	assert.IsType(t, &memory.InMemory{}, a.Memory())
	assert.IsType(t, &compaction.SlidingWindow{}, a.compactor)

	a.Toolkit().MustRegister(tt.NewStaticTool("t", "x"))
	assert.True(t, a.Toolkit().IsEquipped("t"), "config toolkits auto-equip")
}

func TestFromConfig_Invalid(t *testing.T) {
	cfg := config.Default()
	cfg.Agent.MaxIters = 0

	_, err := FromConfig(context.Background(), cfg, tt.NewMockModel())

	assert.ErrorContains(t, err, "invalid config")
}

func TestFromConfig_RedisUnreachable(t *testing.T) {
	cfg := config.Default()
	cfg.Memory.Backend = config.BackendRedis
	cfg.Memory.Redis.URL = "redis://127.0.0.1:1/0"

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := FromConfig(ctx, cfg, tt.NewMockModel())

	var be *reagent.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "memory", be.Op)
}
