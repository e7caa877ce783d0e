// internal/report/analysis.go
// Package report condenses a merged test run into an analysis document
// and renders it as a standalone HTML dashboard.
package report

import (
	"sort"
	"time"

	"github.com/jsandlin/vigil/internal/classify"
	"github.com/jsandlin/vigil/internal/eventlog"
	"github.com/jsandlin/vigil/internal/perf"
	"github.com/jsandlin/vigil/internal/policy"
)

// Analysis is the condensed view of a test run used by the analyze
// command and the HTML report.
type Analysis struct {
	GeneratedAt time.Time               `json:"generated_at"`
	Strict      bool                    `json:"strict"`
	Session     *eventlog.SessionInfo   `json:"session,omitempty"`
	Summary     eventlog.SessionSummary `json:"summary"`
	Performance perf.Metrics            `json:"performance"`
	Categories  []CategoryStat          `json:"categories"`
	Failures    []FailureDetail         `json:"failures"`
}

// CategoryStat is the per-category breakdown, sorted by category name.
type CategoryStat struct {
	Category        string  `json:"category"`
	PolicyArea      string  `json:"policy_area"`
	Total           int     `json:"total"`
	Passed          int     `json:"passed"`
	Failed          int     `json:"failed"`
	PassRatePercent float64 `json:"pass_rate_percent"`
}

// FailureDetail carries enough context to locate a failed test without
// re-reading the log.
type FailureDetail struct {
	TestNumber int                  `json:"test_number,omitempty"`
	TestID     string               `json:"test_id,omitempty"`
	TestName   string               `json:"test_name"`
	Category   string               `json:"category,omitempty"`
	Expected   string               `json:"expected,omitempty"`
	Actual     string               `json:"actual,omitempty"`
	Kind       classify.FailureKind `json:"kind"`
	Reason     string               `json:"reason"`
}

// Build computes the full analysis for a run. The strict flag controls
// whether reasoning citations count toward pass/fail.
func Build(run *eventlog.TestRunData, strict bool, table policy.Table) Analysis {
	a := Analysis{
		GeneratedAt: time.Now(),
		Strict:      strict,
		Session:     run.Session,
		Summary:     run.Summary,
		Performance: perf.Aggregate(run.Inferences),
	}

	for i := range run.Inferences {
		ev := &run.Inferences[i]
		analysis := classify.Classify(ev, strict)
		if analysis == nil {
			continue
		}
		detail := FailureDetail{
			TestNumber: ev.TestNumber,
			TestID:     ev.TestID,
			TestName:   ev.TestName,
			Category:   eventlog.NormalizeTestType(ev.Category),
			Kind:       analysis.Kind,
			Reason:     analysis.Reason,
		}
		if res, ok := ev.Result(); ok {
			detail.Expected = res.Expected
			detail.Actual = res.Actual
		}
		a.Failures = append(a.Failures, detail)
	}

	names := make([]string, 0, len(run.Summary.ByCategory))
	for name := range run.Summary.ByCategory {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		tally := run.Summary.ByCategory[name]
		stat := CategoryStat{
			Category:   name,
			PolicyArea: policyArea(name, table, run.Inferences),
			Total:      tally.Total,
			Passed:     tally.Passed,
			Failed:     tally.Total - tally.Passed,
		}
		if stat.Total > 0 {
			stat.PassRatePercent = float64(stat.Passed) / float64(stat.Total) * 100
		}
		a.Categories = append(a.Categories, stat)
	}
	return a
}

// policyArea maps a test category to a policy area by inspecting the
// codes cited by that category's inferences.
func policyArea(category string, table policy.Table, events []eventlog.InferenceEvent) string {
	for i := range events {
		ev := &events[i]
		if eventlog.NormalizeTestType(ev.Category) != category && eventlog.NormalizeTestType(ev.TestType) != category {
			continue
		}
		var code string
		if ev.ReasoningValidation != nil && ev.ReasoningValidation.PolicyCitation != nil {
			code = ev.ReasoningValidation.PolicyCitation.ExpectedCode
		}
		if code == "" {
			if codes := policy.ExtractCodes(ev.Reasoning); len(codes) > 0 {
				code = codes[0]
			}
		}
		if code != "" {
			if area := table.Category(code); area != policy.Uncategorized {
				return area
			}
		}
	}
	return policy.Uncategorized
}
