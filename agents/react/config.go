package react

import (
	"context"
	"fmt"

	"github.com/rickchristie/reagent"
	"github.com/rickchristie/reagent/compaction"
	"github.com/rickchristie/reagent/config"
	"github.com/rickchristie/reagent/memory"
	"github.com/rickchristie/reagent/toolkit"
)

// FromConfig builds an agent from cfg. The Redis backend is dialed with ctx.
// Tools are registered on the returned agent's Toolkit afterwards.
//
// Example:
//
//	cfg, err := config.Load("reagent.yaml")
//	if err != nil {
//	    return err
//	}
//	agent, err := react.FromConfig(ctx, cfg, models.NewLCG(llm))
func FromConfig(ctx context.Context, cfg *config.Config, model reagent.Model) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	contract, err := cfg.Contract()
	if err != nil {
		return nil, err
	}

	logger := cfg.NewLogger(nil)

	opts := []toolkit.Option{toolkit.WithAutoEquip(), toolkit.WithLogger(logger)}
	if cfg.Toolkit.CacheSize > 0 {
		opts = append(opts, toolkit.WithCache(cfg.Toolkit.CacheSize, cfg.Toolkit.CacheTTL))
	}

	a := NewAgent(cfg.Agent.Name, model).
		WithInstructions(cfg.Agent.Instructions).
		WithMaxIters(cfg.Agent.MaxIters).
		WithParallel(cfg.Agent.Parallel).
		WithStructuredOutput(contract).
		WithLogger(logger).
		WithToolkit(toolkit.New(opts...))

	if cfg.Agent.Window > 0 {
		a.WithCompactor(compaction.NewSlidingWindow(cfg.Agent.Window))
	}

	if cfg.Memory.Backend == config.BackendRedis {
		mem, err := memory.DialRedis(ctx, cfg.Memory.Redis.URL, memory.RedisOptions{
			Key: cfg.Memory.Redis.Key,
			TTL: cfg.Memory.Redis.TTL,
		})
		if err != nil {
			return nil, &reagent.BackendError{Op: "memory", Err: err}
		}
		a.WithMemory(mem)
	}
	return a, nil
}
