// internal/eventlog/read_test.go
package eventlog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeLog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestParseFile verifies that a well-formed log yields a run with the
// session captured, every inference decoded, and a summary recomputed
// from the inference set. Malformed and blank lines are skipped and
// counted rather than failing the parse.
func TestParseFile(t *testing.T) {
	t.Parallel()

	content := `{"event_type": "session_start", "timestamp": "2025-01-15T10:00:00Z", "model": "gpt-oss-safeguard-20b", "test_type": "single_turn"}
{"event_type": "inference", "test_number": 1, "test_name": "spam_link_farm", "test_type": "single_turn", "test_result": {"expected": "VIOLATION", "actual": "VIOLATION", "passed": true}, "latency_ms": 1200, "cost_usd": 0.002, "usage": {"prompt_tokens": 900, "completion_tokens": 100, "total_tokens": 1000}}

this line is not JSON
{"event_type": "inference", "test_number": 2, "test_name": "benign_newsletter", "test_type": "single_turn", "test_result": {"expected": "SAFE", "actual": "VIOLATION", "passed": false}, "metrics": {"latency_ms": 800, "cost_usd": 0.001}}
{"event_type": "session_end", "timestamp": "2025-01-15T10:05:00Z"}
`
	path := writeLog(t, t.TempDir(), "safeguard_test_single_turn_20250115_100000.jsonl", content)

	run, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() failed: %v", err)
	}

	if run.Session == nil || run.Session.Model != "gpt-oss-safeguard-20b" {
		t.Fatalf("expected session_start to be captured, got %+v", run.Session)
	}
	if len(run.Inferences) != 2 {
		t.Fatalf("expected 2 inferences, got %d", len(run.Inferences))
	}
	if run.Summary.SkippedLines != 1 {
		t.Fatalf("expected 1 skipped line, got %d", run.Summary.SkippedLines)
	}
	if run.Summary.Passed != 1 || run.Summary.Failed != 1 {
		t.Fatalf("expected 1 passed / 1 failed, got %d/%d", run.Summary.Passed, run.Summary.Failed)
	}
	if run.Summary.PassRatePercent != 50 {
		t.Fatalf("expected 50%% pass rate, got %v", run.Summary.PassRatePercent)
	}
	if run.Summary.TotalTokens != 1000 {
		t.Fatalf("expected 1000 total tokens, got %d", run.Summary.TotalTokens)
	}
	// Second event stores latency under the nested metrics block.
	if got := run.Inferences[1].Latency(); got != 800 {
		t.Fatalf("expected nested latency 800, got %v", got)
	}
	if run.Summary.AvgLatencyMillis != 1000 {
		t.Fatalf("expected avg latency 1000, got %v", run.Summary.AvgLatencyMillis)
	}
}

// TestParseFileLegacyVerdict exercises logs written by older harness
// versions that record the verdict at the top level.
func TestParseFileLegacyVerdict(t *testing.T) {
	t.Parallel()

	content := `{"event_type": "inference", "test_name": "legacy_case", "expected": "VIOLATION", "model_output": "violation"}
`
	path := writeLog(t, t.TempDir(), "legacy.jsonl", content)

	run, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() failed: %v", err)
	}

	res, ok := run.Inferences[0].Result()
	if !ok {
		t.Fatal("expected a synthesized verdict from legacy fields")
	}
	if !res.Passed {
		t.Fatalf("expected case-insensitive legacy comparison to pass, got %+v", res)
	}
	if run.Summary.Passed != 1 {
		t.Fatalf("expected summary to count the legacy pass, got %+v", run.Summary)
	}
}

// TestParseFileNoData confirms that files with zero parseable inference
// records report ErrNoData so callers can render an empty state.
func TestParseFileNoData(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cases := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"only session events", `{"event_type": "session_start"}` + "\n" + `{"event_type": "session_end"}` + "\n"},
		{"only garbage", "not json\nalso not json\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeLog(t, dir, "case_"+filepath.Base(t.Name())+".jsonl", tc.content)
			if _, err := ParseFile(path); !errors.Is(err, ErrNoData) {
				t.Fatalf("expected ErrNoData, got %v", err)
			}
		})
	}
}

// TestParseFileMissingFile verifies that a nonexistent path yields a
// plain error, not ErrNoData.
func TestParseFileMissingFile(t *testing.T) {
	t.Parallel()

	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.jsonl"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if errors.Is(err, ErrNoData) {
		t.Fatalf("missing file must not read as ErrNoData: %v", err)
	}
}

// TestParseFileSchemaValidation checks that ValidateSchema skips records
// the schema rejects and counts them like malformed lines.
func TestParseFileSchemaValidation(t *testing.T) {
	t.Parallel()

	content := `{"event_type": "inference", "test_name": "ok", "test_result": {"expected": "SAFE", "actual": "SAFE", "passed": true}}
{"event_type": "inference", "test_name": 42}
`
	path := writeLog(t, t.TempDir(), "schema.jsonl", content)

	run, err := ParseFileWith(path, ParseOptions{ValidateSchema: true})
	if err != nil {
		t.Fatalf("ParseFileWith() failed: %v", err)
	}
	if len(run.Inferences) != 1 {
		t.Fatalf("expected the invalid record to be skipped, got %d inferences", len(run.Inferences))
	}
	if run.Summary.SkippedLines != 1 {
		t.Fatalf("expected 1 skipped line, got %d", run.Summary.SkippedLines)
	}
}
