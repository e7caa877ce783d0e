// internal/eventlog/read.go
package eventlog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jsandlin/vigil/internal/logging"
)

// ErrNoData reports that a directory or file contained no parseable
// inference records. Callers check it with errors.Is to render an empty
// state instead of an error banner.
var ErrNoData = errors.New("no test data found")

// ParseOptions tunes how a log file is parsed.
type ParseOptions struct {
	// ValidateSchema checks every inference record against the embedded
	// JSON schema before accepting it. Records that fail validation are
	// skipped and counted like malformed lines.
	ValidateSchema bool
}

// ParseFile reads one JSONL log file into a TestRunData with default options.
func ParseFile(path string) (*TestRunData, error) {
	return ParseFileWith(path, ParseOptions{})
}

// ParseFileWith reads one JSONL log file into a TestRunData. Each
// non-blank line is one JSON event; malformed lines are skipped, counted,
// and logged, never fatal. Returns an error wrapping ErrNoData when the
// file holds zero parseable inference records.
func ParseFileWith(path string, opts ParseOptions) (*TestRunData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open log file %s: %w", path, err)
	}
	defer file.Close()

	var (
		session    *SessionInfo
		inferences []InferenceEvent
		skipped    int
	)

	scanner := bufio.NewScanner(file)
	// Policy text is embedded verbatim in request messages, so single
	// lines run long.
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var probe struct {
			EventType string `json:"event_type"`
		}
		if err := json.Unmarshal([]byte(line), &probe); err != nil {
			skipped++
			logging.LogEvent("[INGEST] skipping malformed line %s:%d: %v", path, lineNo, err)
			continue
		}

		switch probe.EventType {
		case EventInference:
			if opts.ValidateSchema {
				if err := ValidateInferenceRecord([]byte(line)); err != nil {
					skipped++
					logging.LogEvent("[INGEST] skipping invalid record %s:%d: %v", path, lineNo, err)
					continue
				}
			}
			var ev InferenceEvent
			if err := json.Unmarshal([]byte(line), &ev); err != nil {
				skipped++
				logging.LogEvent("[INGEST] skipping malformed inference %s:%d: %v", path, lineNo, err)
				continue
			}
			inferences = append(inferences, ev)
		case EventSessionStart:
			var info SessionInfo
			if err := json.Unmarshal([]byte(line), &info); err == nil && session == nil {
				session = &info
			}
		default:
			// session_end, error, and unknown events carry nothing the
			// run needs.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("unable to read log file %s: %w", path, err)
	}

	if len(inferences) == 0 {
		return nil, fmt.Errorf("log file %s: %w", path, ErrNoData)
	}

	return &TestRunData{
		Session:    session,
		Inferences: inferences,
		Summary:    ComputeSummary(inferences, skipped),
	}, nil
}
