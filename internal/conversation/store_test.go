package conversation

import (
	"fmt"
	"sync"
	"testing"

	"github.com/ehlvg/tg-agent/internal/core"
)

const chatID = int64(42)

func contents(turns []core.Turn) []string {
	out := make([]string, len(turns))
	for i, turn := range turns {
		out[i] = turn.Content
	}
	return out
}

func TestStore_WindowBound(t *testing.T) {
	tests := []struct {
		name    string
		maxSize int
		appends int
		want    int
	}{
		{name: "under capacity", maxSize: 10, appends: 3, want: 3},
		{name: "exactly capacity", maxSize: 10, appends: 10, want: 10},
		{name: "over capacity", maxSize: 10, appends: 25, want: 10},
		{name: "small window", maxSize: 2, appends: 7, want: 2},
		{name: "invalid size falls back to default", maxSize: 0, appends: 15, want: DefaultMaxSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(tt.maxSize)
			for i := 0; i < tt.appends; i++ {
				s.Append(chatID, core.RoleUser, fmt.Sprintf("msg %d", i), "")
			}
			if got := len(s.History(chatID)); got != tt.want {
				t.Errorf("history length = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStore_FIFOEviction(t *testing.T) {
	s := NewStore(3)
	for i := 1; i <= 4; i++ {
		s.Append(chatID, core.RoleUser, fmt.Sprintf("T%d", i), "")
	}

	got := contents(s.History(chatID))
	want := []string{"T2", "T3", "T4"}
	if len(got) != len(want) {
		t.Fatalf("history = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("history[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStore_ParentID(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(s *Store)
		want   string
		wantOk bool
	}{
		{
			name:   "unknown chat",
			setup:  func(s *Store) {},
			wantOk: false,
		},
		{
			name: "user turns never set it",
			setup: func(s *Store) {
				s.Append(chatID, core.RoleUser, "hi", "")
			},
			wantOk: false,
		},
		{
			name: "assistant turn with id",
			setup: func(s *Store) {
				s.Append(chatID, core.RoleAssistant, "yo", "abc123")
			},
			want:   "abc123",
			wantOk: true,
		},
		{
			name: "assistant turn without id leaves it unchanged",
			setup: func(s *Store) {
				s.Append(chatID, core.RoleAssistant, "yo", "abc123")
				s.Append(chatID, core.RoleAssistant, "again", "")
			},
			want:   "abc123",
			wantOk: true,
		},
		{
			name: "latest assistant id wins",
			setup: func(s *Store) {
				s.Append(chatID, core.RoleAssistant, "first", "id-1")
				s.Append(chatID, core.RoleAssistant, "second", "id-2")
			},
			want:   "id-2",
			wantOk: true,
		},
		{
			name: "user turn after assistant keeps it",
			setup: func(s *Store) {
				s.Append(chatID, core.RoleAssistant, "yo", "abc123")
				s.Append(chatID, core.RoleUser, "and?", "")
			},
			want:   "abc123",
			wantOk: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(10)
			tt.setup(s)
			got, ok := s.ParentID(chatID)
			if ok != tt.wantOk {
				t.Fatalf("ParentID ok = %v, want %v", ok, tt.wantOk)
			}
			if got != tt.want {
				t.Errorf("ParentID = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStore_ParentIDSurvivesEviction(t *testing.T) {
	s := NewStore(2)
	s.Append(chatID, core.RoleAssistant, "yo", "abc123")
	s.Append(chatID, core.RoleUser, "one", "")
	s.Append(chatID, core.RoleUser, "two", "")

	// The assistant turn has scrolled out, the pointer stays.
	if got := contents(s.History(chatID)); got[0] != "one" || got[1] != "two" {
		t.Fatalf("unexpected window: %v", got)
	}
	got, ok := s.ParentID(chatID)
	if !ok || got != "abc123" {
		t.Errorf("ParentID = %q, %v; want %q, true", got, ok, "abc123")
	}
}

func TestStore_Reset(t *testing.T) {
	s := NewStore(10)
	s.Append(chatID, core.RoleUser, "hi", "")
	s.Append(chatID, core.RoleAssistant, "yo", "abc123")

	s.Reset(chatID)

	if got := s.History(chatID); len(got) != 0 {
		t.Errorf("history after reset = %v, want empty", got)
	}
	if _, ok := s.ParentID(chatID); ok {
		t.Error("ParentID present after reset")
	}

	// Second reset is a no-op, not a panic or error.
	s.Reset(chatID)
	s.Reset(int64(9999))
}

func TestStore_HistorySnapshotDoesNotAlias(t *testing.T) {
	s := NewStore(10)
	s.Append(chatID, core.RoleUser, "original", "")

	snap := s.History(chatID)
	snap[0].Content = "tampered"

	if got := s.History(chatID)[0].Content; got != "original" {
		t.Errorf("internal state mutated through snapshot: %q", got)
	}
}

func TestStore_RenderPrompt(t *testing.T) {
	t.Run("empty history returns message unchanged", func(t *testing.T) {
		s := NewStore(10)
		if got := s.RenderPrompt(chatID, "hello"); got != "hello" {
			t.Errorf("RenderPrompt = %q, want %q", got, "hello")
		}
	})

	t.Run("transcript then current message", func(t *testing.T) {
		s := NewStore(10)
		s.Append(chatID, core.RoleUser, "hi", "")
		s.Append(chatID, core.RoleAssistant, "yo", "abc123")

		got := s.RenderPrompt(chatID, "hello")
		want := "Previous conversation:\nUser: hi\nAssistant: yo\n\nCurrent message: hello"
		if got != want {
			t.Errorf("RenderPrompt = %q, want %q", got, want)
		}
	})

	t.Run("does not mutate the store", func(t *testing.T) {
		s := NewStore(10)
		s.Append(chatID, core.RoleUser, "hi", "")
		_ = s.RenderPrompt(chatID, "hello")
		if got := len(s.History(chatID)); got != 1 {
			t.Errorf("history length after render = %d, want 1", got)
		}
	})
}

func TestStore_ConcurrentAppendsSameChat(t *testing.T) {
	const writers = 8
	const perWriter = 5
	const total = writers * perWriter

	s := NewStore(total)
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				s.Append(chatID, core.RoleUser, fmt.Sprintf("w%d-%d", w, i), "")
			}
		}(w)
	}
	wg.Wait()

	if got := len(s.History(chatID)); got != total {
		t.Errorf("recorded %d turns, want %d", got, total)
	}
}

func TestStore_ConcurrentChatsStayIsolated(t *testing.T) {
	const chats = 16
	const perChat = 20

	s := NewStore(perChat)
	var wg sync.WaitGroup
	for c := 0; c < chats; c++ {
		wg.Add(1)
		go func(c int64) {
			defer wg.Done()
			for i := 0; i < perChat; i++ {
				s.Append(c, core.RoleUser, fmt.Sprintf("chat %d msg %d", c, i), "")
			}
		}(int64(c))
	}
	wg.Wait()

	for c := int64(0); c < chats; c++ {
		turns := s.History(c)
		if len(turns) != perChat {
			t.Fatalf("chat %d recorded %d turns, want %d", c, len(turns), perChat)
		}
		for _, turn := range turns {
			wantPrefix := fmt.Sprintf("chat %d ", c)
			if len(turn.Content) < len(wantPrefix) || turn.Content[:len(wantPrefix)] != wantPrefix {
				t.Fatalf("chat %d holds foreign turn %q", c, turn.Content)
			}
		}
	}
}
