package telegram

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ehlvg/tg-agent/internal/providers/agent"
)

func TestStripMention(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		username string
		want     string
		wantOk   bool
	}{
		{
			name:     "mention at start",
			text:     "@helper_bot what's the weather?",
			username: "helper_bot",
			want:     "what's the weather?",
			wantOk:   true,
		},
		{
			name:     "mention at end",
			text:     "what's the weather? @helper_bot",
			username: "helper_bot",
			want:     "what's the weather?",
			wantOk:   true,
		},
		{
			name:     "no mention",
			text:     "just chatting",
			username: "helper_bot",
			wantOk:   false,
		},
		{
			name:     "mention only",
			text:     "@helper_bot",
			username: "helper_bot",
			want:     "",
			wantOk:   true,
		},
		{
			name:     "unknown username",
			text:     "@helper_bot hi",
			username: "",
			wantOk:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := stripMention(tt.text, tt.username)
			if ok != tt.wantOk {
				t.Fatalf("stripMention ok = %v, want %v", ok, tt.wantOk)
			}
			if got != tt.want {
				t.Errorf("stripMention = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitHTML(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		maxLen     int
		wantChunks int
	}{
		{name: "short text", text: "hello", maxLen: 10, wantChunks: 1},
		{name: "exact limit", text: strings.Repeat("a", 10), maxLen: 10, wantChunks: 1},
		{name: "over limit", text: strings.Repeat("a", 25), maxLen: 10, wantChunks: 3},
		{name: "splits at newline", text: strings.Repeat("line\n", 5), maxLen: 12, wantChunks: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := splitHTML(tt.text, tt.maxLen)
			if len(chunks) != tt.wantChunks {
				t.Errorf("got %d chunks %q, want %d", len(chunks), chunks, tt.wantChunks)
			}
			for i, chunk := range chunks {
				if len(chunk) > tt.maxLen {
					t.Errorf("chunk %d length %d exceeds %d", i, len(chunk), tt.maxLen)
				}
			}
		})
	}
}

func TestFailureMessage(t *testing.T) {
	timeoutErr := fmt.Errorf("agent call: %w", agent.ErrTimeout)
	if got := failureMessage(timeoutErr); !strings.Contains(got, "took too long") {
		t.Errorf("timeout message = %q, want the dedicated wording", got)
	}

	genericErr := fmt.Errorf("agent call: %w", agent.ErrRequestFailed)
	if got := failureMessage(genericErr); !strings.Contains(got, "Sorry, an error occurred") {
		t.Errorf("generic message = %q", got)
	}
}
