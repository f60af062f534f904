package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rickchristie/reagent/agents/react"
	"github.com/rickchristie/reagent/printer"
)

const helpText = `Commands:
  /help          show this help
  /tools         list equipped tools
  /clear         forget the conversation
  /save <file>   write the conversation as a YAML transcript
  /quit          exit`

// command runs a slash command and reports whether the chat should end.
func command(ctx context.Context, agent *react.Agent, line string) (bool, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		fmt.Println(helpText)
	case "/tools":
		for _, d := range agent.Toolkit().Descriptors() {
			fmt.Printf("  %s - %s\n", d.Name, d.Description)
		}
	case "/clear":
		return false, agent.Memory().Clear(ctx)
	case "/save":
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: /save <file>")
		}
		return false, saveTranscript(ctx, agent, fields[1])
	default:
		return false, fmt.Errorf("unknown command %q, try /help", fields[0])
	}
	return false, nil
}

func saveTranscript(ctx context.Context, agent *react.Agent, path string) error {
	msgs, err := agent.Memory().List(ctx)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create transcript: %w", err)
	}
	defer f.Close()
	if err := printer.WriteTranscript(f, msgs); err != nil {
		return err
	}
	fmt.Printf("Saved %d messages to %s\n", len(msgs), path)
	return nil
}
