// Package conversation keeps a bounded rolling history per chat.
//
// Every chat gets an independent fixed-capacity window of turns. When the
// window is full, the oldest turn is evicted on insert. The trade-off is
// deliberate: the window bounds both memory per chat and the size of the
// prompt sent upstream, at the cost of losing older context.
package conversation

import (
	"sync"
	"time"

	"github.com/ehlvg/tg-agent/internal/core"
)

const DefaultMaxSize = 10

// Store maps chat ids to their conversation state. Operations on the same
// chat are mutually exclusive; different chats never contend beyond the
// short-lived lookup lock.
type Store struct {
	maxSize int

	mu    sync.Mutex // guards chats, not the states themselves
	chats map[int64]*state
}

// state holds one chat's window as a ring buffer plus the parent pointer.
// parentID is provider-assigned external state and is never derived from
// the window; it survives the turn that set it scrolling out.
type state struct {
	mu       sync.Mutex
	turns    []core.Turn
	head     int
	count    int
	parentID string
}

func NewStore(maxSize int) *Store {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Store{
		maxSize: maxSize,
		chats:   make(map[int64]*state),
	}
}

func (s *Store) get(chatID int64) (*state, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.chats[chatID]
	return st, ok
}

func (s *Store) getOrCreate(chatID int64) *state {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.chats[chatID]
	if !ok {
		st = &state{turns: make([]core.Turn, s.maxSize)}
		s.chats[chatID] = st
	}
	return st
}

// Append records a turn with the current timestamp, evicting the oldest
// turn when the window is full. An assistant turn with a non-empty
// externalID overwrites the chat's parent pointer.
func (s *Store) Append(chatID int64, role, content, externalID string) {
	st := s.getOrCreate(chatID)

	st.mu.Lock()
	defer st.mu.Unlock()

	turn := core.Turn{Role: role, Content: content, CreatedAt: time.Now()}
	if st.count < len(st.turns) {
		st.turns[(st.head+st.count)%len(st.turns)] = turn
		st.count++
	} else {
		st.turns[st.head] = turn
		st.head = (st.head + 1) % len(st.turns)
	}

	if role == core.RoleAssistant && externalID != "" {
		st.parentID = externalID
	}
}

// History returns a chronological snapshot of the chat's window. The
// returned slice never aliases internal state.
func (s *Store) History(chatID int64) []core.Turn {
	st, ok := s.get(chatID)
	if !ok {
		return nil
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]core.Turn, 0, st.count)
	for i := 0; i < st.count; i++ {
		out = append(out, st.turns[(st.head+i)%len(st.turns)])
	}
	return out
}

// ParentID returns the external id of the last assistant reply, if any.
func (s *Store) ParentID(chatID int64) (string, bool) {
	st, ok := s.get(chatID)
	if !ok {
		return "", false
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.parentID == "" {
		return "", false
	}
	return st.parentID, true
}

// Reset removes all state for the chat. Resetting an unknown chat is a no-op.
func (s *Store) Reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chats, chatID)
}
