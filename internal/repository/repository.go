package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/intermeet/backend/internal/domain"
)

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomCodeExists     = errors.New("room code already exists")
	ErrRoomFull           = errors.New("room is full")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserEmailExists    = errors.New("user with email already exists")
	ErrLobbyEntryNotFound = errors.New("lobby entry not found")
)

type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Room, error)
	GetByCode(ctx context.Context, code string) (*domain.Room, error)
	GetActiveByCode(ctx context.Context, code string) (*domain.Room, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	ListByOwner(ctx context.Context, owner uuid.UUID) ([]*domain.Room, error)
	// ListRecentByOwner returns the owner's newest rooms first, ended rooms
	// included, capped at limit.
	ListRecentByOwner(ctx context.Context, owner uuid.UUID, limit int) ([]*domain.Room, error)
	ListBreakouts(ctx context.Context, parentID uuid.UUID) ([]*domain.Room, error)
	ListExpired(ctx context.Context, createdBefore time.Time) ([]*domain.Room, error)
}

type ParticipantRepository interface {
	// Join closes any prior open record for (room, user), then inserts a new
	// one, but only while the open count stays below max. The count check and
	// the insert happen atomically; ErrRoomFull otherwise. Returns the open
	// count including the new record.
	Join(ctx context.Context, roomID, userID uuid.UUID, max int) (int, error)
	Leave(ctx context.Context, roomID, userID uuid.UUID) error
	CloseAll(ctx context.Context, roomID uuid.UUID) error
	CountOpen(ctx context.Context, roomID uuid.UUID) (int, error)
	// CountAll counts every join record for the room, closed ones included.
	CountAll(ctx context.Context, roomID uuid.UUID) (int, error)
}

type LobbyRepository interface {
	// Upsert writes the entry keyed by (room, user), replacing any prior one.
	Upsert(ctx context.Context, entry *domain.LobbyEntry) error
	Get(ctx context.Context, roomID, userID uuid.UUID) (*domain.LobbyEntry, error)
	ListWaiting(ctx context.Context, roomID uuid.UUID) ([]*domain.LobbyEntry, error)
	SetStatus(ctx context.Context, roomID, userID uuid.UUID, status domain.LobbyStatus) error
	Delete(ctx context.Context, roomID, userID uuid.UUID) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	// ListRecent returns the most recent limit messages in chronological order.
	ListRecent(ctx context.Context, roomID uuid.UUID, limit int) ([]*domain.Message, error)
	CountByRoom(ctx context.Context, roomID uuid.UUID) (int, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}
