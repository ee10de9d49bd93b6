package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	var content strings.Builder
	var all []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("line %d", i)
		content.WriteString(line + "\n")
		all = append(all, line)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"zero max lines", 0, nil},
		{"negative max lines", -1, nil},
		{"last five", 5, all[5:]},
		{"exactly all", 10, all},
		{"more than exists", 20, all},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 50)
	if err != nil {
		t.Fatalf("Read() error = %v, want nil for missing file", err)
	}
	if got != nil {
		t.Errorf("Read() = %v, want nil", got)
	}
}

func TestFormatLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string // substrings that must appear
	}{
		{
			name:  "info record",
			input: `{"time":"2026-08-28T21:01:05.123Z","level":"INFO","msg":"event poll resumed"}`,
			want:  []string{"21:01:05", "[#5FD75F::b]INFO", "event poll resumed"},
		},
		{
			name:  "warn record with attrs",
			input: `{"time":"2026-08-28T09:00:00Z","level":"WARN","msg":"staff refresh failed","component":"realtime"}`,
			want:  []string{"[#FFD75F::b]WARN", "staff refresh failed", "component", "realtime"},
		},
		{
			name:  "error level",
			input: `{"time":"2026-08-28T09:00:00Z","level":"ERROR","msg":"boom"}`,
			want:  []string{"[#FF5F5F::b]ERROR", "boom"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatLine(tt.input)
			for _, sub := range tt.want {
				if !strings.Contains(got, sub) {
					t.Errorf("FormatLine() = %q, missing %q", got, sub)
				}
			}
		})
	}
}

func TestFormatLine_PassThrough(t *testing.T) {
	for _, input := range []string{"", "   ", "plain text line", "{not json"} {
		if got := FormatLine(input); got != input {
			t.Errorf("FormatLine(%q) = %q, want unchanged", input, got)
		}
	}
}

func TestFormatLines(t *testing.T) {
	lines := []string{
		`{"time":"2026-08-28T09:00:00Z","level":"INFO","msg":"a"}`,
		"plain",
	}
	got := FormatLines(lines)
	if len(got) != 2 {
		t.Fatalf("FormatLines returned %d lines, want 2", len(got))
	}
	if !strings.Contains(got[0], "INFO") || got[1] != "plain" {
		t.Errorf("FormatLines = %v", got)
	}
}
