// Package metrics exports ReAct agent activity to Prometheus.
//
// Metrics are collected by instance hooks, so the loop itself carries no
// instrumentation:
//
//	m, err := metrics.New("reagent", prometheus.DefaultRegisterer)
//	if err != nil {
//	    return err
//	}
//	if err := m.Instrument(agent); err != nil {
//	    return err
//	}
package metrics

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rickchristie/reagent"
	"github.com/rickchristie/reagent/agents/react"
)

// argStart carries the action start time from pre_acting to post_acting.
const argStart = "metrics_start"

// hookName is the name the hooks are registered under.
const hookName = "prometheus"

// Metrics holds the collectors.
type Metrics struct {
	replies        *prometheus.CounterVec
	iterations     *prometheus.CounterVec
	actions        *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg. Collectors already
// registered under the same name are reused, so several agents can share
// one registry. A nil reg uses prometheus.DefaultRegisterer.
func New(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	if namespace == "" {
		namespace = "reagent"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		replies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_total",
			Help:      "Replies produced by the agent.",
		}, []string{"agent"}),
		iterations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reasoning_iterations_total",
			Help:      "Reasoning steps, one model call each.",
		}, []string{"agent"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Actions executed, by action name and success.",
		}, []string{"agent", "action", "success"}),
		actionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_duration_seconds",
			Help:      "Latency of actions including hook time.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"agent", "action"}),
	}

	var err error
	if m.replies, err = register(reg, m.replies); err != nil {
		return nil, err
	}
	if m.iterations, err = register(reg, m.iterations); err != nil {
		return nil, err
	}
	if m.actions, err = register(reg, m.actions); err != nil {
		return nil, err
	}
	if m.actionDuration, err = register(reg, m.actionDuration); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, fmt.Errorf("register collector: %w", err)
}

// Instrument registers the metric hooks on a's instance table.
func (m *Metrics) Instrument(a *react.Agent) error {
	t := a.InstanceHooks()
	return errors.Join(
		t.RegisterPost(reagent.PostReply, hookName, m.onReply),
		t.RegisterPost(reagent.PostReasoning, hookName, m.onReasoning),
		t.RegisterPre(reagent.PreActing, hookName, m.beforeAction),
		t.RegisterPost(reagent.PostActing, hookName, m.afterAction),
	)
}

// Uninstrument removes the metric hooks from a.
func (m *Metrics) Uninstrument(a *react.Agent) {
	t := a.InstanceHooks()
	t.Remove(reagent.PostReply, hookName)
	t.Remove(reagent.PostReasoning, hookName)
	t.Remove(reagent.PreActing, hookName)
	t.Remove(reagent.PostActing, hookName)
}

func (m *Metrics) onReply(_ context.Context, a *react.Agent, _ reagent.Args, _ any) (any, error) {
	m.replies.WithLabelValues(a.Name()).Inc()
	return nil, nil
}

func (m *Metrics) onReasoning(_ context.Context, a *react.Agent, _ reagent.Args, _ any) (any, error) {
	m.iterations.WithLabelValues(a.Name()).Inc()
	return nil, nil
}

func (m *Metrics) beforeAction(_ context.Context, _ *react.Agent, args reagent.Args) (reagent.Args, error) {
	out := args.Clone()
	out[argStart] = time.Now()
	return out, nil
}

func (m *Metrics) afterAction(_ context.Context, a *react.Agent, args reagent.Args, result any) (any, error) {
	out, ok := result.(*react.ActionOutcome)
	if !ok || out == nil || out.Request == nil {
		return nil, nil
	}
	m.actions.WithLabelValues(a.Name(), out.Request.Name, strconv.FormatBool(out.Success)).Inc()
	if start, ok := args[argStart].(time.Time); ok {
		m.actionDuration.WithLabelValues(a.Name(), out.Request.Name).Observe(time.Since(start).Seconds())
	}
	return nil, nil
}
