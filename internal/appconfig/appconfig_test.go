// internal/appconfig/appconfig_test.go
package appconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoad verifies that a valid config file loads and that defaults
// fill every unset field through the accessor methods.
func TestLoad(t *testing.T) {
	t.Parallel()

	content := `{
        "logsDir": "/var/log/safeguard",
        "strictValidation": true,
        "cacheTTL": 120,
        "host": "0.0.0.0",
        "port": 9000,
        "sessionSecret": "s3cret"
    }`
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.LogsDirPath() != "/var/log/safeguard" {
		t.Fatalf("unexpected logs dir: %q", cfg.LogsDirPath())
	}
	if !cfg.StrictValidation {
		t.Fatal("expected strictValidation true")
	}
	if cfg.CacheTTL() != 2*time.Minute {
		t.Fatalf("unexpected cache TTL: %v", cfg.CacheTTL())
	}
	if cfg.Addr() != "0.0.0.0:9000" {
		t.Fatalf("unexpected addr: %q", cfg.Addr())
	}
}

// TestLoadMissingFile confirms a missing config file yields defaults.
func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("expected defaults for a missing file, got %v", err)
	}
	if cfg.LogsDirPath() != "logs" {
		t.Fatalf("unexpected default logs dir: %q", cfg.LogsDirPath())
	}
	if cfg.CacheTTL() != time.Minute {
		t.Fatalf("unexpected default cache TTL: %v", cfg.CacheTTL())
	}
	if cfg.Addr() != "127.0.0.1:8090" {
		t.Fatalf("unexpected default addr: %q", cfg.Addr())
	}
	if cfg.ConsentCSVPath() != "data/consent.csv" {
		t.Fatalf("unexpected default consent path: %q", cfg.ConsentCSVPath())
	}
	if cfg.LogFilePath() != "vigil.log" {
		t.Fatalf("unexpected default log file: %q", cfg.LogFilePath())
	}
}

// TestLoadInvalidJSON confirms unparseable config files error out.
func TestLoadInvalidJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for invalid JSON")
	}
}
