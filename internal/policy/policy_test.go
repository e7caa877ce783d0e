// internal/policy/policy_test.go
package policy

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/jsandlin/vigil/internal/eventlog"
)

// TestExtractCodes verifies code extraction: the 2+ letter prefix, level
// digit, and optional subcode, deduplicated and sorted.
func TestExtractCodes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single code",
			text: "This violates SP2 of the spam policy.",
			want: []string{"SP2"},
		},
		{
			name: "subcode",
			text: "Matches VL2.a exactly.",
			want: []string{"VL2.a"},
		},
		{
			name: "deduplicated and sorted",
			text: "HS1 applies, and SP2, and HS1 again.",
			want: []string{"HS1", "SP2"},
		},
		{
			name: "single letter prefix is not a code",
			text: "Section A1 does not count.",
			want: nil,
		},
		{
			name: "lowercase is not a code",
			text: "sp2 is prose, not a code",
			want: nil,
		},
		{
			name: "no codes",
			text: "Nothing structured here.",
			want: nil,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ExtractCodes(tc.text); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ExtractCodes(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

// TestParse checks title and code extraction from a policy document.
func TestParse(t *testing.T) {
	t.Parallel()

	text := `# Spam Policy

Content that qualifies as SP2 must be flagged.
SP3 covers bulk messaging.`

	info := Parse(text)
	if info.Title != "Spam Policy" {
		t.Fatalf("expected title 'Spam Policy', got %q", info.Title)
	}
	if info.Code != "SP2" {
		t.Fatalf("expected first code SP2, got %q", info.Code)
	}
	if info.Category != "Spam" {
		t.Fatalf("expected category Spam, got %q", info.Category)
	}
}

// TestCategory maps prefixes through the default table, with unknown
// or empty codes reading as Uncategorized.
func TestCategory(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code string
		want string
	}{
		{"SP2", "Spam"},
		{"HS1.a", "Hate Speech"},
		{"UC4", "Unicode Obfuscation"},
		{"XX9", Uncategorized},
		{"", Uncategorized},
	}
	for _, tc := range cases {
		if got := Category(tc.code); got != tc.want {
			t.Fatalf("Category(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

// TestLoadTable verifies that YAML overrides merge over the defaults and
// that an empty path returns the default table untouched.
func TestLoadTable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "table.yaml")
	overrides := "xx: Experimental\nsp: Unsolicited Content\n"
	if err := os.WriteFile(path, []byte(overrides), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable() failed: %v", err)
	}
	if got := table.Category("XX1"); got != "Experimental" {
		t.Fatalf("expected override to apply, got %q", got)
	}
	if got := table.Category("SP2"); got != "Unsolicited Content" {
		t.Fatalf("expected override to shadow the default, got %q", got)
	}
	if got := table.Category("HS1"); got != "Hate Speech" {
		t.Fatalf("expected untouched default to survive, got %q", got)
	}

	defaults, err := LoadTable("")
	if err != nil {
		t.Fatalf("LoadTable(\"\") failed: %v", err)
	}
	if got := defaults.Category("SP2"); got != "Spam" {
		t.Fatalf("expected default table for empty path, got %q", got)
	}
}

// TestExtractPolicy prefers the dedicated policy field, then the system
// message of the request.
func TestExtractPolicy(t *testing.T) {
	t.Parallel()

	t.Run("policy field wins", func(t *testing.T) {
		t.Parallel()
		ev := &eventlog.InferenceEvent{
			Policy: "# Direct Policy",
			Request: &eventlog.Request{Messages: []eventlog.Message{
				{Role: "system", Content: "# System Policy"},
			}},
		}
		text, ok := ExtractPolicy(ev)
		if !ok || text != "# Direct Policy" {
			t.Fatalf("expected the policy field, got %q (%v)", text, ok)
		}
	})

	t.Run("system message fallback", func(t *testing.T) {
		t.Parallel()
		ev := &eventlog.InferenceEvent{
			Request: &eventlog.Request{Messages: []eventlog.Message{
				{Role: "user", Content: "classify this"},
				{Role: "System", Content: "# System Policy"},
			}},
		}
		text, ok := ExtractPolicy(ev)
		if !ok || text != "# System Policy" {
			t.Fatalf("expected the system message, got %q (%v)", text, ok)
		}
	})

	t.Run("no policy anywhere", func(t *testing.T) {
		t.Parallel()
		if _, ok := ExtractPolicy(&eventlog.InferenceEvent{}); ok {
			t.Fatal("expected no policy")
		}
		if _, ok := ExtractPolicy(nil); ok {
			t.Fatal("expected no policy for nil event")
		}
	})
}
