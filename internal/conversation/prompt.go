package conversation

import (
	"strings"
	"unicode"
)

const (
	promptHeader  = "Previous conversation:\n"
	currentPrefix = "\nCurrent message: "
)

// RenderPrompt formats the chat's window as a transcript followed by the
// current message. With no history it returns current unchanged. Pure read;
// call it before appending the current user turn so the transcript does not
// repeat the message being asked.
func (s *Store) RenderPrompt(chatID int64, current string) string {
	turns := s.History(chatID)
	if len(turns) == 0 {
		return current
	}

	var b strings.Builder
	b.WriteString(promptHeader)
	for _, turn := range turns {
		b.WriteString(capitalize(turn.Role))
		b.WriteString(": ")
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	b.WriteString(currentPrefix)
	b.WriteString(current)
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
