package domain

import (
	"time"

	"github.com/google/uuid"
)

// Participant is one identity's attendance interval in a room. The record is
// open while LeftAt is nil; capacity checks count open records only.
type Participant struct {
	ID       uuid.UUID
	RoomID   uuid.UUID
	UserID   uuid.UUID
	JoinedAt time.Time
	LeftAt   *time.Time
}

func NewParticipant(roomID, userID uuid.UUID) *Participant {
	return &Participant{
		ID:       uuid.New(),
		RoomID:   roomID,
		UserID:   userID,
		JoinedAt: time.Now().UTC(),
	}
}

func (p *Participant) IsOpen() bool {
	return p != nil && p.LeftAt == nil
}

func (p *Participant) Close(at time.Time) {
	if p == nil || p.LeftAt != nil {
		return
	}
	at = at.UTC()
	p.LeftAt = &at
}
