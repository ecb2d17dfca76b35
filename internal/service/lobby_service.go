package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/intermeet/backend/internal/domain"
	"github.com/intermeet/backend/internal/notify"
	"github.com/intermeet/backend/internal/repository"
)

type LobbyService struct {
	rooms repository.RoomRepository
	lobby repository.LobbyRepository
	users repository.UserRepository
	hub   *notify.Hub
	log   *slog.Logger
}

func NewLobbyService(
	rooms repository.RoomRepository,
	lobby repository.LobbyRepository,
	users repository.UserRepository,
	hub *notify.Hub,
	log *slog.Logger,
) *LobbyService {
	if log == nil {
		log = slog.Default()
	}
	return &LobbyService{rooms: rooms, lobby: lobby, users: users, hub: hub, log: log}
}

// RequestEntry asks to join a gated room. Owners and rooms without a waiting
// room are admitted immediately and leave no entry behind. A re-request while
// already waiting is idempotent; a re-request after rejection starts a fresh
// wait.
func (s *LobbyService) RequestEntry(ctx context.Context, userID uuid.UUID, code string) (domain.LobbyStatus, error) {
	room, err := s.activeRoom(ctx, code)
	if err != nil {
		return domain.LobbyStatusUnknown, err
	}

	if room.IsOwner(userID) || !room.WaitingRoomEnabled {
		return domain.LobbyStatusAdmitted, nil
	}

	existing, err := s.lobby.Get(ctx, room.ID, userID)
	if err == nil && existing.Status == domain.LobbyStatusWaiting {
		return domain.LobbyStatusWaiting, nil
	}
	if err != nil && !errors.Is(err, repository.ErrLobbyEntryNotFound) {
		return domain.LobbyStatusUnknown, err
	}

	displayName := s.displayNameOf(ctx, userID)
	entry := domain.NewLobbyEntry(room.ID, userID, displayName)
	if err := s.lobby.Upsert(ctx, entry); err != nil {
		return domain.LobbyStatusUnknown, err
	}

	if s.hub != nil {
		s.hub.Publish(notify.Event{
			Type:        notify.EventEntryRequested,
			RoomID:      room.ID,
			UserID:      userID,
			DisplayName: displayName,
			Status:      domain.LobbyStatusWaiting,
		})
	}

	s.log.Info("lobby entry requested",
		slog.String("room_id", room.ID.String()),
		slog.String("user_id", userID.String()),
	)
	return domain.LobbyStatusWaiting, nil
}

func (s *LobbyService) ListWaiting(ctx context.Context, requester uuid.UUID, code string) ([]*domain.LobbyEntry, error) {
	room, err := s.roomByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !room.IsOwner(requester) {
		return nil, ErrNotOwner
	}
	return s.lobby.ListWaiting(ctx, room.ID)
}

func (s *LobbyService) Decide(ctx context.Context, requester uuid.UUID, code string, target uuid.UUID, admit bool) error {
	room, err := s.roomByCode(ctx, code)
	if err != nil {
		return err
	}
	if !room.IsOwner(requester) {
		return ErrNotOwner
	}

	status := domain.LobbyStatusRejected
	if admit {
		status = domain.LobbyStatusAdmitted
	}

	if err := s.lobby.SetStatus(ctx, room.ID, target, status); err != nil {
		if errors.Is(err, repository.ErrLobbyEntryNotFound) {
			return ErrLobbyEntryGone
		}
		return err
	}

	if s.hub != nil {
		s.hub.Publish(notify.Event{
			Type:   notify.EventDecision,
			RoomID: room.ID,
			UserID: target,
			Status: status,
		})
	}

	s.log.Info("lobby decision",
		slog.String("room_id", room.ID.String()),
		slog.String("target", target.String()),
		slog.String("status", string(status)),
	)
	return nil
}

func (s *LobbyService) CheckStatus(ctx context.Context, userID uuid.UUID, code string) (domain.LobbyStatus, error) {
	room, err := s.roomByCode(ctx, code)
	if err != nil {
		return domain.LobbyStatusUnknown, err
	}

	entry, err := s.lobby.Get(ctx, room.ID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrLobbyEntryNotFound) {
			return domain.LobbyStatusUnknown, nil
		}
		return domain.LobbyStatusUnknown, err
	}
	return entry.Status, nil
}

func (s *LobbyService) roomByCode(ctx context.Context, code string) (*domain.Room, error) {
	room, err := s.rooms.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

func (s *LobbyService) activeRoom(ctx context.Context, code string) (*domain.Room, error) {
	room, err := s.rooms.GetActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

func (s *LobbyService) displayNameOf(ctx context.Context, userID uuid.UUID) string {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "Anonymous"
	}
	if user.Name != "" {
		return user.Name
	}
	if user.Email != "" {
		return user.Email
	}
	return "Anonymous"
}
