package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/intermeet/backend/internal/domain"
	"github.com/intermeet/backend/internal/repository"
)

const (
	maxMessageLength = 1000
	historyLimit     = 200
)

type ChatService struct {
	rooms    repository.RoomRepository
	messages repository.MessageRepository
	users    repository.UserRepository
	log      *slog.Logger
}

func NewChatService(
	rooms repository.RoomRepository,
	messages repository.MessageRepository,
	users repository.UserRepository,
	log *slog.Logger,
) *ChatService {
	if log == nil {
		log = slog.Default()
	}
	return &ChatService{rooms: rooms, messages: messages, users: users, log: log}
}

func (s *ChatService) Send(ctx context.Context, userID uuid.UUID, code, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if runes := []rune(content); len(runes) > maxMessageLength {
		content = string(runes[:maxMessageLength])
	}
	if content == "" {
		return nil, ErrEmptyMessage
	}

	room, err := s.rooms.GetActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	senderName := "Anonymous"
	if user, err := s.users.GetByID(ctx, userID); err == nil {
		if user.Name != "" {
			senderName = user.Name
		} else if user.Email != "" {
			senderName = user.Email
		}
	}

	msg := domain.NewMessage(room.ID, userID, senderName, content)
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// History returns the most recent messages in chronological order, capped to
// the delivery limit.
func (s *ChatService) History(ctx context.Context, userID uuid.UUID, code string) ([]*domain.Message, error) {
	room, err := s.rooms.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return s.messages.ListRecent(ctx, room.ID, historyLimit)
}
