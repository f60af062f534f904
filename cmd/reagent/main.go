// Command reagent is an interactive chat with a ReAct agent.
//
// It reads the agent setup from a YAML file (see package config) and talks
// to any OpenAI-compatible endpoint:
//
//	export REAGENT_LLM_API_KEY=...
//	export REAGENT_LLM_BASE_URL=https://api.x.ai/v1
//	export REAGENT_LLM_MODEL=grok-4-1-fast
//	reagent -config reagent.yaml -metrics :9090
//
// Ctrl-C while the agent is working cancels the reply and interrupts the
// agent. Type /help for the chat commands.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rickchristie/reagent"
	"github.com/rickchristie/reagent/agents/react"
	"github.com/rickchristie/reagent/config"
	"github.com/rickchristie/reagent/metrics"
	"github.com/rickchristie/reagent/models"
	"github.com/rickchristie/reagent/printer"
	"github.com/tmc/langchaingo/llms/openai"
)

var (
	warn    = color.New(color.FgYellow).SprintFunc()
	failure = color.New(color.FgRed).SprintFunc()
	dim     = color.New(color.Faint).SprintFunc()
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, failure("Error: ", err))
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML config file")
	metricsAddr := flag.String("metrics", "", "serve Prometheus metrics on this address")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	llm, err := newLLM()
	if err != nil {
		return err
	}

	ctx := context.Background()
	agent, err := react.FromConfig(ctx, cfg, models.NewLCG(llm).WithStreaming(true))
	if err != nil {
		return err
	}
	agent.WithPrinter(printer.NewConsole(os.Stdout))
	registerBuiltins(agent)

	if *metricsAddr != "" {
		m, err := metrics.New("reagent", prometheus.DefaultRegisterer)
		if err != nil {
			return err
		}
		if err := m.Instrument(agent); err != nil {
			return err
		}
		go serveMetrics(*metricsAddr, agent)
	}

	rl, err := readline.New(color.CyanString("> "))
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	fmt.Printf("Chatting with %s. Type /help for commands.\n", agent.Name())
	return chat(ctx, rl, agent)
}

func newLLM() (*openai.LLM, error) {
	apiKey := os.Getenv("REAGENT_LLM_API_KEY")
	if apiKey == "" {
		return nil, errors.New("REAGENT_LLM_API_KEY environment variable not set")
	}
	opts := []openai.Option{openai.WithToken(apiKey)}
	if baseURL := os.Getenv("REAGENT_LLM_BASE_URL"); baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	if model := os.Getenv("REAGENT_LLM_MODEL"); model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	return openai.New(opts...)
}

func serveMetrics(addr string, agent *react.Agent) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		agent.Logger().Error("metrics server stopped", "error", err)
	}
}

func chat(ctx context.Context, rl *readline.Instance, agent *react.Agent) error {
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			fmt.Println("Goodbye!")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			quit, err := command(ctx, agent, line)
			if err != nil {
				fmt.Println(failure("Error: ", err))
			}
			if quit {
				return nil
			}
			continue
		}

		if err := reply(ctx, agent, line); err != nil {
			fmt.Println(failure("Error: ", err))
		}
		fmt.Println(dim(strings.Repeat("-", 60)))
	}
}

// reply runs one agent reply. SIGINT cancels it and interrupts the agent, so
// the next message is answered with the interrupt reply.
func reply(ctx context.Context, agent *react.Agent, text string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Println(warn("\nReceived interrupt, cancelling..."))
			agent.Interrupt()
			cancel()
		case <-ctx.Done():
		}
	}()

	_, err := agent.Reply(ctx, reagent.NewTextMessage("user", reagent.RoleUser, text))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
