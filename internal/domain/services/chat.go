package services

import (
	"context"

	"codescrybe/internal/domain/models"
	"codescrybe/internal/markdown"
)

// ChatService handles the question-and-answer loop against an analyzed
// repository.
type ChatService interface {
	// Send stores the user's message, generates an answer, stores it,
	// and returns the rendered assistant message.
	Send(ctx context.Context, req *SendMessageRequest) (*ChatResponse, error)

	// History returns up to limit recent messages in chronological
	// order, with assistant messages carrying render nodes.
	History(ctx context.Context, repositoryID string, limit int) ([]RenderedMessage, error)

	// Clear deletes the repository's chat history and reports how many
	// messages were removed.
	Clear(ctx context.Context, repositoryID string) (int64, error)
}

// SendMessageRequest represents an incoming chat message.
type SendMessageRequest struct {
	RepositoryID string `json:"repository_id"`
	Message      string `json:"message"`
}

// ChatResponse carries the stored assistant message plus its formatted
// representations.
type ChatResponse struct {
	Message models.ChatMessage `json:"message"`
	Nodes   markdown.NodeList  `json:"nodes"`
	HTML    string             `json:"html"`
}

// RenderedMessage is a history entry; Nodes and HTML are set for
// assistant messages only.
type RenderedMessage struct {
	models.ChatMessage
	Nodes markdown.NodeList `json:"nodes,omitempty"`
	HTML  string            `json:"html,omitempty"`
}
