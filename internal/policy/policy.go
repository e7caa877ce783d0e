// internal/policy/policy.go
// Package policy extracts and parses the policy text attached to an
// inference: the structured policy code, the title, and the human
// category the code's prefix maps to.
package policy

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/jsandlin/vigil/internal/eventlog"
)

// Policy codes are 2+ uppercase letters, a level digit, and an optional
// lowercase subcode: SP0, VL2.a, HS3.b.
var codePattern = regexp.MustCompile(`\b([A-Z]{2,}\d+(?:\.[a-z])?)\b`)

// Info is the structured result of parsing a policy document.
type Info struct {
	Code     string `json:"code"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

// Table maps policy code prefixes (the leading letters) to human
// category names.
type Table map[string]string

// Uncategorized is returned for code prefixes absent from the table.
const Uncategorized = "Uncategorized"

// DefaultTable covers the policy domains the safeguard harness ships.
func DefaultTable() Table {
	return Table{
		"SP": "Spam",
		"HS": "Hate Speech",
		"VL": "Violence",
		"SC": "Sexual Content",
		"SH": "Self-Harm",
		"FR": "Fraud",
		"IL": "Illegal Activity",
		"UC": "Unicode Obfuscation",
	}
}

// LoadTable reads prefix→category overrides from a YAML file and merges
// them over the defaults.
func LoadTable(path string) (Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read policy table %s: %w", path, err)
	}

	overrides := make(map[string]string)
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("unable to parse policy table %s: %w", path, err)
	}

	table := DefaultTable()
	for prefix, category := range overrides {
		table[strings.ToUpper(strings.TrimSpace(prefix))] = category
	}
	return table, nil
}

// Category maps a policy code to its human category via the table.
// Unknown or empty prefixes map to Uncategorized.
func (t Table) Category(code string) string {
	prefix := codePrefix(code)
	if prefix == "" {
		return Uncategorized
	}
	if category, ok := t[prefix]; ok {
		return category
	}
	return Uncategorized
}

// Category maps a policy code using the default table.
func Category(code string) string {
	return DefaultTable().Category(code)
}

func codePrefix(code string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(code) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
			continue
		}
		break
	}
	return b.String()
}

// ExtractCodes returns the unique policy codes found in text, sorted.
func ExtractCodes(text string) []string {
	matches := codePattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	var codes []string
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			codes = append(codes, m)
		}
	}
	sort.Strings(codes)
	return codes
}

// ExtractPolicy locates the policy text attached to an inference: the
// dedicated policy field when present, else the system message of the
// request. The second return is false when the event carries no policy.
func ExtractPolicy(ev *eventlog.InferenceEvent) (string, bool) {
	if ev == nil {
		return "", false
	}
	if strings.TrimSpace(ev.Policy) != "" {
		return ev.Policy, true
	}
	if ev.Request != nil {
		for _, msg := range ev.Request.Messages {
			if strings.EqualFold(msg.Role, "system") && strings.TrimSpace(msg.Content) != "" {
				return msg.Content, true
			}
		}
	}
	return "", false
}

// Parse extracts the leading policy code and title from a policy
// document. The title is the first non-empty line stripped of markdown
// heading markers; the code is the first code-pattern match in the text.
func Parse(text string) Info {
	var info Info

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		info.Title = strings.TrimSpace(strings.TrimLeft(line, "# "))
		break
	}

	if m := codePattern.FindString(text); m != "" {
		info.Code = m
	}
	info.Category = Category(info.Code)
	return info
}
