package model

import (
	"time"

	"github.com/google/uuid"
)

type Room struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Code               string     `gorm:"size:6;not null;uniqueIndex:idx_rooms_code_active,where:is_active"`
	Name               string     `gorm:"size:255;not null"`
	OwnerID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	IsActive           bool       `gorm:"not null;default:true"`
	IsPersistent       bool       `gorm:"not null;default:false"`
	PasswordHash       string     `gorm:"size:255"`
	WaitingRoomEnabled bool       `gorm:"not null;default:false"`
	MaxParticipants    int        `gorm:"not null"`
	ParentRoomID       *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt          time.Time  `gorm:"not null;index"`
	UpdatedAt          time.Time
}

type Participant struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RoomID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_participants_room_open"`
	UserID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	JoinedAt time.Time  `gorm:"not null"`
	LeftAt   *time.Time `gorm:"index:idx_participants_room_open"`
}

type LobbyEntry struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoomID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_lobby_room_user"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_lobby_room_user"`
	DisplayName string    `gorm:"size:255;not null"`
	Status      string    `gorm:"size:16;not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

type Message struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoomID     uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_room_created"`
	UserID     uuid.UUID `gorm:"type:uuid;not null"`
	SenderName string    `gorm:"size:255;not null"`
	Content    string    `gorm:"size:1000;not null"`
	CreatedAt  time.Time `gorm:"not null;index:idx_messages_room_created"`
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"size:255;not null"`
	Email        *string   `gorm:"size:255;uniqueIndex:idx_users_email,where:email IS NOT NULL"`
	PasswordHash string    `gorm:"size:255"`
	AvatarURL    string    `gorm:"size:512"`
	IsGuest      bool      `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}
