package domain

import (
	"time"

	"github.com/google/uuid"
)

type LobbyStatus string

const (
	LobbyStatusWaiting  LobbyStatus = "waiting"
	LobbyStatusAdmitted LobbyStatus = "admitted"
	LobbyStatusRejected LobbyStatus = "rejected"
	LobbyStatusUnknown  LobbyStatus = "unknown"
)

// LobbyEntry is a pending join request waiting on the room owner's decision.
// There is at most one entry per (room, user); re-requests overwrite it.
type LobbyEntry struct {
	ID          uuid.UUID
	RoomID      uuid.UUID
	UserID      uuid.UUID
	DisplayName string
	Status      LobbyStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewLobbyEntry(roomID, userID uuid.UUID, displayName string) *LobbyEntry {
	now := time.Now().UTC()
	return &LobbyEntry{
		ID:          uuid.New(),
		RoomID:      roomID,
		UserID:      userID,
		DisplayName: displayName,
		Status:      LobbyStatusWaiting,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
