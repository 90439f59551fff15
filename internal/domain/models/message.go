package models

import (
	"time"
)

// MessageRole identifies the author of a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Valid reports whether the role is one of the known values.
func (r MessageRole) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ChatMessage is a single message in a repository's chat history.
// Messages are immutable after creation and are removed only by a
// bulk clear of the repository's history.
type ChatMessage struct {
	ID           string         `json:"id" db:"id"`
	RepositoryID string         `json:"repository_id" db:"repository_id"`
	Role         MessageRole    `json:"type" db:"role"`
	Content      string         `json:"content" db:"content"`
	Timestamp    time.Time      `json:"timestamp" db:"timestamp"`
	Metadata     map[string]any `json:"metadata,omitempty" db:"metadata"`
}
