package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"codescrybe/internal/config"
	"codescrybe/internal/domain"
	"codescrybe/internal/domain/models"
	"codescrybe/internal/domain/repositories"
	"codescrybe/internal/domain/services"
	"codescrybe/internal/markdown"
	"codescrybe/internal/service/rag"
)

// chatService implements the ChatService interface
type chatService struct {
	repos     repositories.RepositoryStore
	messages  repositories.MessageStore
	txManager repositories.TransactionManager
	rag       *rag.Service
	formatter *markdown.Formatter
	renderer  *markdown.Renderer
	logger    *slog.Logger
}

// NewChatService creates a new chat service
func NewChatService(
	repos repositories.RepositoryStore,
	messages repositories.MessageStore,
	txManager repositories.TransactionManager,
	ragService *rag.Service,
	formatter *markdown.Formatter,
	renderer *markdown.Renderer,
	logger *slog.Logger,
) services.ChatService {
	return &chatService{
		repos:     repos,
		messages:  messages,
		txManager: txManager,
		rag:       ragService,
		formatter: formatter,
		renderer:  renderer,
		logger:    logger,
	}
}

// Send handles one chat turn. The user message is committed before the
// answer is generated so a failed generation never loses the question.
func (s *chatService) Send(ctx context.Context, req *services.SendMessageRequest) (*services.ChatResponse, error) {
	if err := s.validateSendRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	repo, err := s.repos.GetByID(ctx, req.RepositoryID)
	if err != nil {
		return nil, err
	}
	if repo.Status != models.StatusAnalyzed {
		return nil, &domain.NotReadyError{
			Message: fmt.Sprintf("repository %s is not ready for chat (status: %s)", repo.Name, repo.Status),
		}
	}

	userMsg := &models.ChatMessage{
		RepositoryID: repo.ID,
		Role:         models.RoleUser,
		Content:      strings.TrimSpace(req.Message),
	}
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.messages.Create(txCtx, userMsg); err != nil {
			return err
		}
		return s.repos.IncrementMessageCount(txCtx, repo.ID, 1)
	})
	if err != nil {
		return nil, fmt.Errorf("store user message: %w", err)
	}

	answer, err := s.rag.Answer(ctx, repo, userMsg.Content)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	assistantMsg := &models.ChatMessage{
		RepositoryID: repo.ID,
		Role:         models.RoleAssistant,
		Content:      answer.Text,
		Metadata:     answer.Metadata,
	}
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.messages.Create(txCtx, assistantMsg); err != nil {
			return err
		}
		return s.repos.IncrementMessageCount(txCtx, repo.ID, 1)
	})
	if err != nil {
		return nil, fmt.Errorf("store assistant message: %w", err)
	}

	nodes := s.formatter.Format(answer.Text)

	s.logger.Info("chat turn completed",
		"repository_id", repo.ID,
		"message_id", assistantMsg.ID,
		"nodes", len(nodes),
	)

	return &services.ChatResponse{
		Message: *assistantMsg,
		Nodes:   nodes,
		HTML:    s.renderer.Render(nodes),
	}, nil
}

// History returns recent messages in chronological order. Assistant
// messages are re-rendered on read so formatter improvements apply to
// old history.
func (s *chatService) History(ctx context.Context, repositoryID string, limit int) ([]services.RenderedMessage, error) {
	if limit <= 0 {
		limit = config.DefaultHistoryLimit
	}
	if limit > config.MaxHistoryLimit {
		limit = config.MaxHistoryLimit
	}

	if _, err := s.repos.GetByID(ctx, repositoryID); err != nil {
		return nil, err
	}

	msgs, err := s.messages.ListByRepository(ctx, repositoryID, limit)
	if err != nil {
		return nil, err
	}

	rendered := make([]services.RenderedMessage, 0, len(msgs))
	for _, msg := range msgs {
		entry := services.RenderedMessage{ChatMessage: msg}
		if msg.Role == models.RoleAssistant {
			entry.Nodes = s.formatter.Format(msg.Content)
			entry.HTML = s.renderer.Render(entry.Nodes)
		}
		rendered = append(rendered, entry)
	}
	return rendered, nil
}

// Clear deletes the repository's chat history and resets the counter.
func (s *chatService) Clear(ctx context.Context, repositoryID string) (int64, error) {
	if _, err := s.repos.GetByID(ctx, repositoryID); err != nil {
		return 0, err
	}

	var deleted int64
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		n, err := s.messages.DeleteAllByRepository(txCtx, repositoryID)
		if err != nil {
			return err
		}
		deleted = n
		return s.repos.IncrementMessageCount(txCtx, repositoryID, -int(n))
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("chat history cleared", "repository_id", repositoryID, "deleted", deleted)
	return deleted, nil
}

func (s *chatService) validateSendRequest(req *services.SendMessageRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.RepositoryID, validation.Required),
		validation.Field(&req.Message,
			validation.Required,
			validation.Length(1, config.MaxMessageLength),
		),
	)
}
