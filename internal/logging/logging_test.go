package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitAndLoggingToFile(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "nested", "vigil.log")

	if err := Init(logPath); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	t.Cleanup(func() {
		_ = Close()
	})

	LogEvent("hello %s", "world")
	LogHTTP("get", "/api/results", 200, "127.0.0.1")
	_ = Close()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "hello world") {
		t.Fatalf("expected LogEvent content, got: %s", content)
	}
	if !strings.Contains(content, "[HTTP] GET /api/results status=200") {
		t.Fatalf("expected LogHTTP content, got: %s", content)
	}
}

func TestBuildHTTPMessageDefaults(t *testing.T) {
	msg := buildHTTPMessage(" ", "", 404, "")
	if !strings.Contains(msg, "GET /") {
		t.Fatalf("expected defaulted method and path, got: %s", msg)
	}
	if !strings.Contains(msg, "status=404") {
		t.Fatalf("expected status, got: %s", msg)
	}
	if !strings.Contains(msg, "remote=unknown") {
		t.Fatalf("expected default remote, got: %s", msg)
	}
}

func TestCloseWithoutInit(t *testing.T) {
	if err := Close(); err != nil {
		t.Fatalf("Close without open file returned error: %v", err)
	}
}
