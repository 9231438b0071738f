// Package relay orchestrates one round trip: user text in, agent reply out,
// with the conversation store updated on both sides of the call.
package relay

import (
	"context"
	"fmt"

	"github.com/ehlvg/tg-agent/internal/core"
	"github.com/ehlvg/tg-agent/pkg/log"
	"github.com/google/uuid"
)

type ConversationStore interface {
	Append(chatID int64, role, content, externalID string)
	RenderPrompt(chatID int64, current string) string
	ParentID(chatID int64) (string, bool)
	Reset(chatID int64)
}

type AgentCaller interface {
	Call(ctx context.Context, message, parentID string) (reply, replyID string, err error)
}

type Relay struct {
	store ConversationStore
	agent AgentCaller
}

func NewRelay(store ConversationStore, agent AgentCaller) *Relay {
	return &Relay{
		store: store,
		agent: agent,
	}
}

// Process runs one exchange for the chat. The prompt is rendered before the
// user turn is appended so the transcript does not repeat the message being
// asked. The user turn is appended before the call, so context survives a
// failed reply; no assistant turn is recorded on failure.
func (r *Relay) Process(ctx context.Context, chatID int64, text string) (string, error) {
	logger := log.FromCtx(ctx).With().
		Str("request_id", uuid.NewString()).
		Int64("chat_id", chatID).
		Logger()

	prompt := r.store.RenderPrompt(chatID, text)
	parentID, _ := r.store.ParentID(chatID)
	r.store.Append(chatID, core.RoleUser, text, "")

	logger.Debug().
		Int("prompt_len", len(prompt)).
		Bool("threaded", parentID != "").
		Msg("calling agent")

	reply, replyID, err := r.agent.Call(ctx, prompt, parentID)
	if err != nil {
		logger.Error().Err(err).Msg("agent call failed")
		return "", fmt.Errorf("agent call: %w", err)
	}

	r.store.Append(chatID, core.RoleAssistant, reply, replyID)

	logger.Debug().Str("reply_id", replyID).Msg("agent replied")
	return reply, nil
}

// Reset drops the chat's history and parent pointer.
func (r *Relay) Reset(ctx context.Context, chatID int64) {
	r.store.Reset(chatID)
	log.FromCtx(ctx).Info().Int64("chat_id", chatID).Msg("context cleared")
}
