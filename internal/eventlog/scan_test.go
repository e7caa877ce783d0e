// internal/eventlog/scan_test.go
package eventlog

import (
	"errors"
	"testing"
)

const minimalPass = `{"event_type": "inference", "test_name": "case", "test_result": {"expected": "SAFE", "actual": "SAFE", "passed": true}}
`

// TestListLogFiles verifies discovery, category/timestamp extraction
// from the file name convention, and newest-first ordering.
func TestListLogFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLog(t, dir, "safeguard_test_single_turn_20250110_090000.jsonl", minimalPass)
	writeLog(t, dir, "safeguard_test_single_turn_20250115_090000.jsonl", minimalPass)
	writeLog(t, dir, "safeguard_test_edge_cases_20250112_090000.jsonl", minimalPass)
	writeLog(t, dir, "notes.txt", "ignore me")

	files, err := ListLogFiles(dir)
	if err != nil {
		t.Fatalf("ListLogFiles() failed: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 log files, got %d", len(files))
	}
	if files[0].Name != "safeguard_test_single_turn_20250115_090000.jsonl" {
		t.Fatalf("expected newest file first, got %s", files[0].Name)
	}
	if files[0].Category != "single-turn" {
		t.Fatalf("expected normalized category single-turn, got %q", files[0].Category)
	}
	if files[1].Category != "edge-cases" {
		t.Fatalf("expected edge-cases second, got %q", files[1].Category)
	}
}

// TestListLogFilesEmpty confirms the empty directory reads as ErrNoData.
func TestListLogFilesEmpty(t *testing.T) {
	t.Parallel()

	if _, err := ListLogFiles(t.TempDir()); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

// TestLatestPerCategory verifies that each category reduces to its most
// recent file and the result comes back in sorted category order.
func TestLatestPerCategory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLog(t, dir, "safeguard_test_single_turn_20250110_090000.jsonl", minimalPass)
	writeLog(t, dir, "safeguard_test_single_turn_20250115_090000.jsonl", minimalPass)
	writeLog(t, dir, "safeguard_test_adversarial_20250112_090000.jsonl", minimalPass)

	files, err := ListLogFiles(dir)
	if err != nil {
		t.Fatal(err)
	}

	latest := LatestPerCategory(files)
	if len(latest) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(latest))
	}
	if latest[0].Category != "adversarial" || latest[1].Category != "single-turn" {
		t.Fatalf("expected sorted category order, got %s then %s", latest[0].Category, latest[1].Category)
	}
	if latest[1].Name != "safeguard_test_single_turn_20250115_090000.jsonl" {
		t.Fatalf("expected the newest single-turn file, got %s", latest[1].Name)
	}
}

// TestLoadLatest verifies the full pipeline: latest file per category,
// parsed concurrently, merged into one run. A file that fails to parse
// entirely is dropped rather than failing the load.
func TestLoadLatest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLog(t, dir, "safeguard_test_single_turn_20250115_090000.jsonl", minimalPass)
	writeLog(t, dir, "safeguard_test_adversarial_20250112_090000.jsonl",
		`{"event_type": "inference", "test_name": "adv", "test_result": {"expected": "VIOLATION", "actual": "SAFE", "passed": false}}
`)
	// Latest edge-cases file is unparseable end to end.
	writeLog(t, dir, "safeguard_test_edge_cases_20250113_090000.jsonl", "garbage\n")

	run, err := LoadLatest(dir, ParseOptions{})
	if err != nil {
		t.Fatalf("LoadLatest() failed: %v", err)
	}
	if run.Summary.TotalTests != 2 {
		t.Fatalf("expected 2 merged tests, got %d", run.Summary.TotalTests)
	}
	if run.Summary.Passed != 1 || run.Summary.Failed != 1 {
		t.Fatalf("expected 1 passed / 1 failed, got %d/%d", run.Summary.Passed, run.Summary.Failed)
	}
}

// TestFindLogFile checks bare-name resolution and rejection of anything
// that could escape the logs directory.
func TestFindLogFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLog(t, dir, "safeguard_test_single_turn_20250115_090000.jsonl", minimalPass)

	info, err := FindLogFile(dir, "safeguard_test_single_turn_20250115_090000.jsonl")
	if err != nil {
		t.Fatalf("FindLogFile() failed: %v", err)
	}
	if info.Category != "single-turn" {
		t.Fatalf("expected category single-turn, got %q", info.Category)
	}

	for _, bad := range []string{
		"",
		"../etc/passwd",
		"sub/dir.jsonl",
		".hidden.jsonl",
		"not_a_log.txt",
	} {
		if _, err := FindLogFile(dir, bad); err == nil {
			t.Fatalf("expected rejection of %q", bad)
		}
	}
}
