// internal/eventlog/types.go
// Package eventlog reads, merges, and summarizes safeguard test logs:
// newline-delimited JSON files where each line is one event emitted by a
// test run (session_start, inference, session_end, error).
package eventlog

import (
	"strings"
	"time"
)

// Event types recognized in a log file. Anything else is ignored.
const (
	EventInference      = "inference"
	EventSessionStart   = "session_start"
	EventSessionEnd     = "session_end"
	EventSessionSummary = "session_summary"
	EventError          = "error"
)

// InferenceEvent is one executed test case against a model. The harness
// has written these fields at slightly different positions over time
// (metrics top-level vs. nested), so several fields are pointers and all
// reads go through the accessor methods below.
type InferenceEvent struct {
	EventType  string `json:"event_type"`
	Timestamp  string `json:"timestamp,omitempty"`
	TestType   string `json:"test_type,omitempty"`
	Category   string `json:"category,omitempty"`
	TestID     string `json:"test_id,omitempty"`
	TestNumber int    `json:"test_number,omitempty"`
	TestName   string `json:"test_name,omitempty"`

	Request  *Request  `json:"request,omitempty"`
	Response *Response `json:"response,omitempty"`

	Content string `json:"content,omitempty"`

	// Older harness versions wrote the verdict at the top level instead
	// of under test_result.
	Expected    string `json:"expected,omitempty"`
	ModelOutput string `json:"model_output,omitempty"`
	Passed      *bool  `json:"passed,omitempty"`

	TestResult *TestResult `json:"test_result,omitempty"`

	Usage   *Usage      `json:"usage,omitempty"`
	Tokens  *TokenCount `json:"tokens,omitempty"`
	Metrics *Metrics    `json:"metrics,omitempty"`

	LatencyMillis *float64 `json:"latency_ms,omitempty"`
	CostDollars   *float64 `json:"cost_usd,omitempty"`

	Reasoning           string               `json:"reasoning,omitempty"`
	ReasoningValidation *ReasoningValidation `json:"reasoning_validation,omitempty"`

	// Some runs attach the policy text directly instead of embedding it
	// in the request messages.
	Policy string `json:"policy,omitempty"`

	Error string `json:"error,omitempty"`
}

// Request is the payload sent to the model for one inference.
type Request struct {
	Model    string    `json:"model,omitempty"`
	Messages []Message `json:"messages,omitempty"`
}

// Message is a single chat message within a request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response captures what the model returned.
type Response struct {
	ID           string `json:"id,omitempty"`
	Model        string `json:"model,omitempty"`
	Content      string `json:"content,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`
	Reasoning    string `json:"reasoning,omitempty"`
}

// TestResult is the expected vs. actual classification for one inference.
type TestResult struct {
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Passed   bool   `json:"passed"`
}

// Usage holds token counts in the OpenAI-style field names.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// TokenCount holds token counts in the harness's short field names.
type TokenCount struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Total      int `json:"total"`
	Reasoning  int `json:"reasoning,omitempty"`
}

// Metrics holds the nested latency/cost block.
type Metrics struct {
	LatencyMillis *float64 `json:"latency_ms,omitempty"`
	CostDollars   *float64 `json:"cost_usd,omitempty"`
}

// ReasoningValidation is the harness's analysis of the model's reasoning.
type ReasoningValidation struct {
	HasReasoning     bool            `json:"has_reasoning"`
	ReasoningLength  int             `json:"reasoning_length"`
	MentionsPolicy   bool            `json:"mentions_policy"`
	MentionsSeverity bool            `json:"mentions_severity"`
	MentionsCategory bool            `json:"mentions_category"`
	QualityScore     float64         `json:"quality_score"`
	PolicyCitation   *PolicyCitation `json:"policy_citation,omitempty"`
}

// PolicyCitation records which policy codes the model cited in its reasoning.
type PolicyCitation struct {
	CitedCodes          []string `json:"cited_codes"`
	ExpectedCode        string   `json:"expected_code,omitempty"`
	CitedExpected       bool     `json:"cited_expected"`
	CitedCategory       bool     `json:"cited_category"`
	CitedLevel          bool     `json:"cited_level"`
	CitationSpecificity float64  `json:"citation_specificity"`
	HallucinatedCodes   []string `json:"hallucinated_codes,omitempty"`
}

// SessionInfo is metadata from a session_start record.
type SessionInfo struct {
	EventType string `json:"event_type"`
	Timestamp string `json:"timestamp,omitempty"`
	Model     string `json:"model,omitempty"`
	TestType  string `json:"test_type,omitempty"`
	Category  string `json:"category,omitempty"`
	LogFile   string `json:"log_file,omitempty"`
}

// SessionSummary is recomputed from the inference set every time a run is
// built or merged; it is never read back from the log file.
type SessionSummary struct {
	TotalTests            int                      `json:"total_tests"`
	Passed                int                      `json:"passed"`
	Failed                int                      `json:"failed"`
	PassRatePercent       float64                  `json:"pass_rate_percent"`
	TotalPromptTokens     int                      `json:"total_prompt_tokens"`
	TotalCompletionTokens int                      `json:"total_completion_tokens"`
	TotalTokens           int                      `json:"total_tokens"`
	TotalCostUSD          float64                  `json:"total_cost_usd"`
	AvgLatencyMillis      float64                  `json:"average_latency_ms"`
	ByCategory            map[string]CategoryTally `json:"by_category,omitempty"`
	SkippedLines          int                      `json:"skipped_lines,omitempty"`
}

// CategoryTally is the per-category slice of a session summary.
type CategoryTally struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// TestRunData is one or more parsed log files viewed as a single run.
type TestRunData struct {
	Session    *SessionInfo     `json:"session,omitempty"`
	Inferences []InferenceEvent `json:"inferences"`
	Summary    SessionSummary   `json:"summary"`
}

// LogFileInfo describes one physical log file in the logs directory.
type LogFileInfo struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
}

// Result returns the test verdict for the event, synthesizing one from
// the legacy top-level fields when the nested test_result block is
// missing. The second return is false when the event carries no verdict
// at all.
func (e *InferenceEvent) Result() (TestResult, bool) {
	if e.TestResult != nil {
		return *e.TestResult, true
	}
	if e.Expected == "" && e.ModelOutput == "" && e.Passed == nil {
		return TestResult{}, false
	}
	res := TestResult{Expected: e.Expected, Actual: e.ModelOutput}
	if e.Passed != nil {
		res.Passed = *e.Passed
	} else {
		res.Passed = strings.EqualFold(strings.TrimSpace(res.Expected), strings.TrimSpace(res.Actual))
	}
	return res, true
}

// Latency returns the latency in milliseconds via the single fallback
// chain: top-level latency_ms, else metrics.latency_ms, else 0.
func (e *InferenceEvent) Latency() float64 {
	if e.LatencyMillis != nil {
		return *e.LatencyMillis
	}
	if e.Metrics != nil && e.Metrics.LatencyMillis != nil {
		return *e.Metrics.LatencyMillis
	}
	return 0
}

// Cost returns the cost in USD via the fallback chain: top-level
// cost_usd, else metrics.cost_usd, else 0.
func (e *InferenceEvent) Cost() float64 {
	if e.CostDollars != nil {
		return *e.CostDollars
	}
	if e.Metrics != nil && e.Metrics.CostDollars != nil {
		return *e.Metrics.CostDollars
	}
	return 0
}

// TotalTokens returns the total token count via the fallback chain:
// usage.total_tokens, else tokens.total, else 0.
func (e *InferenceEvent) TotalTokens() int {
	if e.Usage != nil && e.Usage.TotalTokens > 0 {
		return e.Usage.TotalTokens
	}
	if e.Tokens != nil {
		return e.Tokens.Total
	}
	return 0
}

// PromptTokens returns the prompt token count via the fallback chain.
func (e *InferenceEvent) PromptTokens() int {
	if e.Usage != nil && e.Usage.PromptTokens > 0 {
		return e.Usage.PromptTokens
	}
	if e.Tokens != nil {
		return e.Tokens.Prompt
	}
	return 0
}

// CompletionTokens returns the completion token count via the fallback chain.
func (e *InferenceEvent) CompletionTokens() int {
	if e.Usage != nil && e.Usage.CompletionTokens > 0 {
		return e.Usage.CompletionTokens
	}
	if e.Tokens != nil {
		return e.Tokens.Completion
	}
	return 0
}

// NormalizeTestType canonicalizes a test_type or category value so that
// underscore and hyphen spellings compare equal ("multi_turn" and
// "multi-turn" are the same group). Every grouping, filtering, and
// routing site must compare through this function.
func NormalizeTestType(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "_", "-")
}
