// internal/eventlog/scan.go
package eventlog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jsandlin/vigil/internal/logging"
)

const logFilePrefix = "safeguard_test_"

// Log file names carry a trailing _YYYYMMDD_HHMMSS stamp.
var logStampPattern = regexp.MustCompile(`_(\d{8}_\d{6})$`)

const logStampLayout = "20060102_150405"

// ListLogFiles enumerates the *.jsonl log files in dir, newest first.
// Returns an error wrapping ErrNoData when the directory holds no log
// files, and the underlying os error when it cannot be read.
func ListLogFiles(dir string) ([]LogFileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to read logs directory %s: %w", dir, err)
	}

	var files []LogFileInfo
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".jsonl" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		name := entry.Name()
		category, stamp := splitLogName(name)
		ts := info.ModTime()
		if stamp != "" {
			if parsed, err := time.ParseInLocation(logStampLayout, stamp, time.Local); err == nil {
				ts = parsed
			}
		}

		files = append(files, LogFileInfo{
			Name:      name,
			Path:      filepath.Join(dir, name),
			Category:  category,
			Timestamp: ts,
			SizeBytes: info.Size(),
		})
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("logs directory %s: %w", dir, ErrNoData)
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].Timestamp.Equal(files[j].Timestamp) {
			return files[i].Name > files[j].Name
		}
		return files[i].Timestamp.After(files[j].Timestamp)
	})

	return files, nil
}

// splitLogName derives (category, timestamp) from a log file name of the
// form safeguard_test_<category>_<YYYYMMDD>_<HHMMSS>.jsonl. Files that do
// not follow the convention keep their whole base name as the category.
func splitLogName(name string) (category, stamp string) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	trimmed := strings.TrimPrefix(base, logFilePrefix)
	if m := logStampPattern.FindStringSubmatch(trimmed); m != nil {
		return NormalizeTestType(strings.TrimSuffix(trimmed, m[0])), m[1]
	}
	return NormalizeTestType(trimmed), ""
}

// LatestPerCategory reduces a file listing to the most recent file for
// each category, returned in sorted category order for deterministic
// merging.
func LatestPerCategory(files []LogFileInfo) []LogFileInfo {
	latest := make(map[string]LogFileInfo)
	for _, f := range files {
		key := NormalizeTestType(f.Category)
		cur, ok := latest[key]
		if !ok || f.Timestamp.After(cur.Timestamp) {
			latest[key] = f
		}
	}

	categories := make([]string, 0, len(latest))
	for c := range latest {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	out := make([]LogFileInfo, 0, len(categories))
	for _, c := range categories {
		out = append(out, latest[c])
	}
	return out
}

// LoadLatest parses the most recent log file of every category found in
// dir and merges them into one run. Files are parsed concurrently and
// joined before the merge; a file whose parse fails entirely is dropped
// from the merge and logged, matching the per-line skip policy one level
// up. Returns an error wrapping ErrNoData when nothing parseable exists.
func LoadLatest(dir string, opts ParseOptions) (*TestRunData, error) {
	files, err := ListLogFiles(dir)
	if err != nil {
		return nil, err
	}

	targets := LatestPerCategory(files)
	runs := make([]*TestRunData, len(targets))

	var wg sync.WaitGroup
	for i, f := range targets {
		wg.Add(1)
		go func(i int, f LogFileInfo) {
			defer wg.Done()
			run, err := ParseFileWith(f.Path, opts)
			if err != nil {
				logging.LogEvent("[INGEST] dropping log file %s from merge: %v", f.Path, err)
				return
			}
			runs[i] = run
		}(i, f)
	}
	wg.Wait()

	merged := make([]*TestRunData, 0, len(runs))
	for _, run := range runs {
		if run != nil {
			merged = append(merged, run)
		}
	}
	if len(merged) == 0 {
		return nil, fmt.Errorf("logs directory %s: %w", dir, ErrNoData)
	}

	return Merge(merged), nil
}

// FindLogFile resolves a bare file name within dir, rejecting anything
// that could escape the directory.
func FindLogFile(dir, name string) (LogFileInfo, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return LogFileInfo{}, fmt.Errorf("invalid log file name %q", name)
	}
	if filepath.Ext(name) != ".jsonl" {
		return LogFileInfo{}, fmt.Errorf("invalid log file name %q", name)
	}

	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return LogFileInfo{}, fmt.Errorf("unable to stat log file %s: %w", path, err)
	}

	category, stamp := splitLogName(name)
	ts := info.ModTime()
	if stamp != "" {
		if parsed, err := time.ParseInLocation(logStampLayout, stamp, time.Local); err == nil {
			ts = parsed
		}
	}

	return LogFileInfo{
		Name:      name,
		Path:      path,
		Category:  category,
		Timestamp: ts,
		SizeBytes: info.Size(),
	}, nil
}
