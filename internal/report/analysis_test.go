// internal/report/analysis_test.go
package report

import (
	"strings"
	"testing"

	"github.com/jsandlin/vigil/internal/classify"
	"github.com/jsandlin/vigil/internal/eventlog"
	"github.com/jsandlin/vigil/internal/policy"
)

func testRun() *eventlog.TestRunData {
	events := []eventlog.InferenceEvent{
		{
			EventType:  eventlog.EventInference,
			TestName:   "spam_pass",
			Category:   "single_turn",
			TestResult: &eventlog.TestResult{Expected: "VIOLATION", Actual: "VIOLATION", Passed: true},
			Reasoning:  "Matches SP2 of the policy.",
		},
		{
			EventType:  eventlog.EventInference,
			TestName:   "spam_fail",
			Category:   "single-turn",
			TestResult: &eventlog.TestResult{Expected: "SAFE", Actual: "VIOLATION", Passed: false},
		},
	}
	return &eventlog.TestRunData{
		Inferences: events,
		Summary:    eventlog.ComputeSummary(events, 0),
	}
}

// TestBuild verifies the condensed analysis: category stats merged
// across spellings, failures with expected/actual context, and a policy
// area resolved from the cited codes.
func TestBuild(t *testing.T) {
	t.Parallel()

	a := Build(testRun(), false, policy.DefaultTable())

	if a.Summary.TotalTests != 2 || a.Summary.Passed != 1 {
		t.Fatalf("unexpected summary: %+v", a.Summary)
	}
	if len(a.Categories) != 1 {
		t.Fatalf("expected one merged category, got %+v", a.Categories)
	}
	cat := a.Categories[0]
	if cat.Category != "single-turn" || cat.Total != 2 || cat.PassRatePercent != 50 {
		t.Fatalf("unexpected category stat: %+v", cat)
	}
	if cat.PolicyArea != "Spam" {
		t.Fatalf("expected policy area Spam from the cited SP2, got %q", cat.PolicyArea)
	}

	if len(a.Failures) != 1 {
		t.Fatalf("expected one failure, got %+v", a.Failures)
	}
	f := a.Failures[0]
	if f.Kind != classify.FailureClassificationMismatch {
		t.Fatalf("unexpected failure kind: %s", f.Kind)
	}
	if f.Expected != "SAFE" || f.Actual != "VIOLATION" {
		t.Fatalf("expected verdict context on the failure, got %+v", f)
	}
}

// TestBuildStrict confirms the strict flag flows through to the
// classifier and onto the analysis.
func TestBuildStrict(t *testing.T) {
	t.Parallel()

	run := testRun()
	// Drop the reasoning so strict mode flags the passing test too.
	run.Inferences[0].Reasoning = "no codes here"

	a := Build(run, true, policy.DefaultTable())
	if !a.Strict {
		t.Fatal("expected strict flag recorded")
	}
	if len(a.Failures) != 2 {
		t.Fatalf("expected both tests to fail strictly, got %+v", a.Failures)
	}
}

// TestRenderHTML sanity-checks the standalone report: the analysis JSON
// is embedded and the document is self-contained HTML.
func TestRenderHTML(t *testing.T) {
	t.Parallel()

	html, err := RenderHTML(Build(testRun(), false, policy.DefaultTable()))
	if err != nil {
		t.Fatalf("RenderHTML() failed: %v", err)
	}
	if !strings.Contains(html, "<!DOCTYPE html>") {
		t.Fatal("expected a full HTML document")
	}
	if !strings.Contains(html, "spam_fail") {
		t.Fatal("expected the failure data embedded in the page")
	}
	if !strings.Contains(html, "Safety Test Results") {
		t.Fatal("expected the report title")
	}
}
