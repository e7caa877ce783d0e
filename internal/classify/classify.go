// internal/classify/classify.go
// Package classify decides pass/fail for a single inference. The result
// is a pure function of the event and the strict flag, so a client can
// toggle strict mode and recompute without refetching anything.
package classify

import (
	"fmt"
	"strings"

	"github.com/jsandlin/vigil/internal/eventlog"
	"github.com/jsandlin/vigil/internal/policy"
)

// FailureKind tags the reason an inference failed.
type FailureKind string

// Failure kinds, most specific first. When several causes apply the
// earlier kind wins: no-result > classification-mismatch > missing-citation.
const (
	FailureNoResult               FailureKind = "no-result"
	FailureClassificationMismatch FailureKind = "classification-mismatch"
	FailureMissingCitation        FailureKind = "missing-citation"
)

// FailureAnalysis describes why an inference failed. A nil
// *FailureAnalysis means the inference passed.
type FailureAnalysis struct {
	Kind   FailureKind `json:"kind"`
	Reason string      `json:"reason"`
}

// Classify evaluates one inference. Lenient mode passes whenever the
// actual classification matches the expected one; strict mode
// additionally requires the model's reasoning to cite the expected
// policy code. Events without any recorded verdict fail with no-result
// under both modes.
func Classify(ev *eventlog.InferenceEvent, strict bool) *FailureAnalysis {
	if ev == nil {
		return &FailureAnalysis{Kind: FailureNoResult, Reason: "inference carries no test result"}
	}

	res, ok := ev.Result()
	if !ok {
		return &FailureAnalysis{Kind: FailureNoResult, Reason: "inference carries no test result"}
	}

	expected := strings.ToUpper(strings.TrimSpace(res.Expected))
	actual := strings.ToUpper(strings.TrimSpace(res.Actual))
	if expected != actual {
		return &FailureAnalysis{
			Kind:   FailureClassificationMismatch,
			Reason: fmt.Sprintf("expected %s, got %s", emptyAs(expected, "(none)"), emptyAs(actual, "(none)")),
		}
	}

	if !strict {
		return nil
	}
	return validateCitation(ev)
}

// validateCitation enforces strict policy validation: the expected
// policy code must appear among the cited codes. When the harness did
// not record a reasoning validation block, a deterministic text scan of
// the reasoning stands in for it.
func validateCitation(ev *eventlog.InferenceEvent) *FailureAnalysis {
	rv := ev.ReasoningValidation
	if rv != nil && rv.PolicyCitation != nil {
		citation := rv.PolicyCitation
		if citation.ExpectedCode == "" {
			// Nothing to validate against; citation cannot be judged.
			return nil
		}
		if citation.CitedExpected || citesCode(citation.CitedCodes, citation.ExpectedCode) {
			return nil
		}
		return &FailureAnalysis{
			Kind:   FailureMissingCitation,
			Reason: fmt.Sprintf("reasoning did not cite expected policy code %s", citation.ExpectedCode),
		}
	}

	// Fallback scan: without a validation block the best available
	// signal is whether the reasoning cites any policy code at all.
	if len(policy.ExtractCodes(reasoningText(ev))) > 0 {
		return nil
	}
	return &FailureAnalysis{
		Kind:   FailureMissingCitation,
		Reason: "reasoning cites no policy code",
	}
}

// citesCode reports whether codes contains the expected code exactly or
// as a subcode (SP2.a cites SP2).
func citesCode(codes []string, expected string) bool {
	for _, code := range codes {
		if code == expected || strings.HasPrefix(code, expected+".") {
			return true
		}
	}
	return false
}

func reasoningText(ev *eventlog.InferenceEvent) string {
	if strings.TrimSpace(ev.Reasoning) != "" {
		return ev.Reasoning
	}
	if ev.Response != nil {
		return ev.Response.Reasoning
	}
	return ""
}

func emptyAs(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
