package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/intermeet/backend/internal/domain"
)

// CreateRoomParams carries the policy flags a room is created with.
type CreateRoomParams struct {
	Name               string
	Password           string
	WaitingRoomEnabled bool
	MaxParticipants    int
	IsPersistent       bool
}

// RoomInfo pairs a room with its current open participant count.
type RoomInfo struct {
	Room             *domain.Room
	ParticipantCount int
}

// RoomStats pairs a room with its lifetime join and message counts.
type RoomStats struct {
	Room              *domain.Room
	TotalParticipants int
	TotalMessages     int
}

// OwnerStats aggregates an owner's recent rooms for the analytics view.
type OwnerStats struct {
	Rooms             []*RoomStats
	TotalRooms        int
	TotalParticipants int
	TotalMessages     int
}

type RoomInteractor interface {
	CreateRoom(ctx context.Context, owner uuid.UUID, params CreateRoomParams) (*domain.Room, error)
	GetRoomInfo(ctx context.Context, code string) (*RoomInfo, error)
	ListOwned(ctx context.Context, owner uuid.UUID) ([]*RoomInfo, error)
	Stats(ctx context.Context, owner uuid.UUID) (*OwnerStats, error)
	EndRoom(ctx context.Context, requester uuid.UUID, code string) error
	Leave(ctx context.Context, requester uuid.UUID, code string) error
	CreateBreakout(ctx context.Context, requester uuid.UUID, parentCode, name string) (*domain.Room, error)
	ListBreakouts(ctx context.Context, parentCode string) ([]*RoomInfo, error)
	ExpireStale(ctx context.Context) (int, error)
}

type AdmissionInteractor interface {
	Join(ctx context.Context, userID uuid.UUID, code, password string) (*domain.SessionGrant, error)
}

type LobbyInteractor interface {
	RequestEntry(ctx context.Context, userID uuid.UUID, code string) (domain.LobbyStatus, error)
	ListWaiting(ctx context.Context, requester uuid.UUID, code string) ([]*domain.LobbyEntry, error)
	Decide(ctx context.Context, requester uuid.UUID, code string, target uuid.UUID, admit bool) error
	CheckStatus(ctx context.Context, userID uuid.UUID, code string) (domain.LobbyStatus, error)
}

type ChatInteractor interface {
	Send(ctx context.Context, userID uuid.UUID, code, content string) (*domain.Message, error)
	History(ctx context.Context, userID uuid.UUID, code string) ([]*domain.Message, error)
}

type UserInteractor interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	RegisterGuest(ctx context.Context, name string) (string, *domain.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, avatarURL string) (*domain.User, error)
}
