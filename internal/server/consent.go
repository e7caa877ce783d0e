// internal/server/consent.go
package server

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jsandlin/vigil/internal/logging"
)

// consentHeader is the fixed 5-column header of the consent record file.
var consentHeader = []string{"timestamp", "name", "email", "agreed", "user_agent"}

// ConsentRecord is one accepted consent form submission.
type ConsentRecord struct {
	Timestamp time.Time
	Name      string
	Email     string
	Agreed    bool
	UserAgent string
}

// AppendConsent appends one record to the CSV at path, writing the
// header when the file is new. The file is append-only; rows are never
// rewritten.
func AppendConsent(path string, rec ConsentRecord) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("unable to create consent directory: %w", err)
		}
	}

	info, statErr := os.Stat(path)
	writeHeader := statErr != nil || info.Size() == 0

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("unable to open consent file %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if writeHeader {
		if err := w.Write(consentHeader); err != nil {
			return fmt.Errorf("unable to write consent header: %w", err)
		}
	}
	row := []string{
		rec.Timestamp.UTC().Format(time.RFC3339),
		rec.Name,
		rec.Email,
		fmt.Sprintf("%t", rec.Agreed),
		rec.UserAgent,
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("unable to write consent record: %w", err)
	}
	w.Flush()
	return w.Error()
}

// recordConsent persists the record and logs a failure instead of
// propagating it: a full disk must not block the session grant.
func recordConsent(path string, rec ConsentRecord) {
	if err := AppendConsent(path, rec); err != nil {
		logging.LogEvent("[CONSENT] unable to persist consent record: %v", err)
	}
}
