// internal/perf/perf.go
// Package perf aggregates latency, cost, and token statistics over a set
// of inferences.
package perf

import "github.com/jsandlin/vigil/internal/eventlog"

// Range is a min/max pair.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Metrics is the derived performance view of an inference set.
type Metrics struct {
	AvgLatencyMillis float64 `json:"avg_latency_ms"`
	LatencyRange     Range   `json:"latency_range"`
	AvgCostUSD       float64 `json:"avg_cost_usd"`
	TotalCostUSD     float64 `json:"total_cost_usd"`
	TotalTokens      int     `json:"total_tokens"`
}

// Aggregate computes performance metrics over events. Missing latency or
// cost values read as zero and averages divide by the total record
// count, so partially populated logs stay comparable. An empty input
// yields all-zero metrics rather than an error.
func Aggregate(events []eventlog.InferenceEvent) Metrics {
	var m Metrics
	if len(events) == 0 {
		return m
	}

	var totalLatency float64
	for i := range events {
		ev := &events[i]

		latency := ev.Latency()
		totalLatency += latency
		if i == 0 {
			m.LatencyRange.Min = latency
			m.LatencyRange.Max = latency
		} else {
			if latency < m.LatencyRange.Min {
				m.LatencyRange.Min = latency
			}
			if latency > m.LatencyRange.Max {
				m.LatencyRange.Max = latency
			}
		}

		m.TotalCostUSD += ev.Cost()
		m.TotalTokens += ev.TotalTokens()
	}

	count := float64(len(events))
	m.AvgLatencyMillis = totalLatency / count
	m.AvgCostUSD = m.TotalCostUSD / count
	return m
}
