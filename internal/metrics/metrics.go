// Package metrics defines the Prometheus collectors shared across the
// classification engine, tool dispatcher, and validation gates.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "quay"

var (
	// ProviderCalls counts inference calls per provider and outcome.
	ProviderCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "provider",
		Name:      "calls_total",
		Help:      "Inference calls by provider and outcome.",
	}, []string{"provider", "outcome"})

	// ProviderLatency observes per-call inference latency.
	ProviderLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "provider",
		Name:      "call_duration_seconds",
		Help:      "Inference call latency by provider.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
	}, []string{"provider"})

	// ProviderTokens counts prompt and completion tokens per provider.
	ProviderTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "provider",
		Name:      "tokens_total",
		Help:      "Token usage by provider and kind (prompt, completion).",
	}, []string{"provider", "kind"})

	// ToolInvocations counts dispatcher executions per tool and outcome.
	ToolInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tools",
		Name:      "invocations_total",
		Help:      "Tool dispatcher executions by tool and outcome.",
	}, []string{"tool", "outcome"})

	// GateResults counts validation gate outcomes.
	GateResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gates",
		Name:      "results_total",
		Help:      "Validation gate outcomes (passed, corrected, failed, skipped).",
	}, []string{"gate", "outcome"})

	// EngineRounds observes tool-calling rounds used per classification.
	EngineRounds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "rounds",
		Help:      "Tool-calling rounds consumed per classification request.",
		Buckets:   prometheus.LinearBuckets(0, 1, 12),
	})
)
