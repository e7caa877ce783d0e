// internal/eventlog/merge.go
package eventlog

import "math"

// Merge combines per-category runs into one. The inference sequence is
// the concatenation of the inputs' sequences in input order; the summary
// is recomputed from the concatenated set rather than summed from the
// sub-summaries, so partial or stale sub-summaries can never double
// count. Merging a single run reproduces its data with an identical
// freshly computed summary.
func Merge(runs []*TestRunData) *TestRunData {
	total := 0
	skipped := 0
	for _, run := range runs {
		if run == nil {
			continue
		}
		total += len(run.Inferences)
		skipped += run.Summary.SkippedLines
	}

	merged := &TestRunData{
		Inferences: make([]InferenceEvent, 0, total),
	}
	for _, run := range runs {
		if run == nil {
			continue
		}
		merged.Inferences = append(merged.Inferences, run.Inferences...)
		if merged.Session == nil {
			merged.Session = run.Session
		}
	}

	merged.Summary = ComputeSummary(merged.Inferences, skipped)
	return merged
}

// ComputeSummary derives a session summary from an inference set. Pass
// and fail counts come from each event's recorded verdict; events without
// any verdict count as failed. Missing latency/cost/token values read as
// zero and the averages divide by the total record count.
func ComputeSummary(events []InferenceEvent, skippedLines int) SessionSummary {
	summary := SessionSummary{
		TotalTests:   len(events),
		SkippedLines: skippedLines,
	}
	if len(events) > 0 {
		summary.ByCategory = make(map[string]CategoryTally)
	}

	var totalLatency float64
	for i := range events {
		ev := &events[i]

		passed := false
		if res, ok := ev.Result(); ok {
			passed = res.Passed
		}
		if passed {
			summary.Passed++
		} else {
			summary.Failed++
		}

		summary.TotalPromptTokens += ev.PromptTokens()
		summary.TotalCompletionTokens += ev.CompletionTokens()
		summary.TotalTokens += ev.TotalTokens()
		summary.TotalCostUSD += ev.Cost()
		totalLatency += ev.Latency()

		category := NormalizeTestType(ev.Category)
		if category == "" {
			category = NormalizeTestType(ev.TestType)
		}
		if category != "" {
			tally := summary.ByCategory[category]
			tally.Total++
			if passed {
				tally.Passed++
			} else {
				tally.Failed++
			}
			summary.ByCategory[category] = tally
		}
	}

	if summary.TotalTests > 0 {
		summary.PassRatePercent = roundRate(float64(summary.Passed) / float64(summary.TotalTests) * 100)
		summary.AvgLatencyMillis = totalLatency / float64(summary.TotalTests)
	}
	return summary
}

func roundRate(v float64) float64 {
	return math.Round(v*100) / 100
}
