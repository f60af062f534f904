package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rickchristie/reagent"
	"github.com/rickchristie/reagent/agents/react"
)

// registerBuiltins gives the chat agent a few tools that need no setup.
func registerBuiltins(agent *react.Agent) {
	agent.Toolkit().MustRegister(currentTimeTool(reagent.SystemClock{}))
}

func currentTimeTool(clock reagent.Clock) *reagent.ToolFunc {
	return reagent.NewTextToolFunc(
		reagent.ToolDescriptor{
			Name:        "current_time",
			Description: "Returns the current date and time, optionally in an IANA time zone.",
			Params: []reagent.Param{
				{Name: "timezone", Type: reagent.TypeString, Description: "IANA zone such as Europe/Oslo"},
			},
		},
		func(_ context.Context, args []any) (string, error) {
			now := clock.Now()
			if zone, ok := args[0].(string); ok && zone != "" {
				loc, err := time.LoadLocation(zone)
				if err != nil {
					return "", fmt.Errorf("unknown time zone %q", zone)
				}
				now = now.In(loc)
			}
			return now.Format(time.RFC1123), nil
		},
	)
}
