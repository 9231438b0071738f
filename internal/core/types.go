package core

import "time"

const (
	AppName    = "tg-agent"
	AppVersion = "0.1.0"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one recorded message of a conversation. Immutable once created.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
