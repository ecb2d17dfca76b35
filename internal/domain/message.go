package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is an in-call chat message. The sender name is denormalized at send
// time so history stays stable when a profile is renamed later.
type Message struct {
	ID         uuid.UUID
	RoomID     uuid.UUID
	UserID     uuid.UUID
	SenderName string
	Content    string
	CreatedAt  time.Time
}

func NewMessage(roomID, userID uuid.UUID, senderName, content string) *Message {
	return &Message{
		ID:         uuid.New(),
		RoomID:     roomID,
		UserID:     userID,
		SenderName: senderName,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}
}
