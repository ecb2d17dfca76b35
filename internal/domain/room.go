package domain

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

const CodeLength = 6

// codeAlphabet excludes glyphs that are easy to misread (I, O, 0, 1).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const DefaultMaxParticipants = 10

// Room represents a meeting that participants join by its short code.
// Policy flags (password, waiting room, capacity, persistence) gate admission.
type Room struct {
	ID                 uuid.UUID
	Code               string
	Name               string
	OwnerID            uuid.UUID
	IsActive           bool
	IsPersistent       bool
	PasswordHash       string
	WaitingRoomEnabled bool
	MaxParticipants    int
	ParentRoomID       *uuid.UUID
	CreatedAt          time.Time
}

// RoomOptions carries the optional policy flags for NewRoom.
type RoomOptions struct {
	PasswordHash       string
	WaitingRoomEnabled bool
	MaxParticipants    int
	IsPersistent       bool
	ParentRoomID       *uuid.UUID
}

// NewRoom constructs an active room with a freshly generated code.
func NewRoom(name string, owner uuid.UUID, opts RoomOptions) *Room {
	maxParticipants := opts.MaxParticipants
	if maxParticipants <= 0 {
		maxParticipants = DefaultMaxParticipants
	}

	return &Room{
		ID:                 uuid.New(),
		Code:               GenerateCode(),
		Name:               name,
		OwnerID:            owner,
		IsActive:           true,
		IsPersistent:       opts.IsPersistent,
		PasswordHash:       opts.PasswordHash,
		WaitingRoomEnabled: opts.WaitingRoomEnabled,
		MaxParticipants:    maxParticipants,
		ParentRoomID:       opts.ParentRoomID,
		CreatedAt:          time.Now().UTC(),
	}
}

// IsExpired reports whether the room has outlived the given TTL.
// Persistent rooms never expire.
func (r *Room) IsExpired(ttl time.Duration) bool {
	if r == nil {
		return true
	}
	if r.IsPersistent || ttl <= 0 {
		return false
	}
	return time.Now().UTC().Sub(r.CreatedAt) > ttl
}

// IsOwner reports whether the given identity created the room. The owner is
// exempt from the password and waiting-room gates.
func (r *Room) IsOwner(userID uuid.UUID) bool {
	return r != nil && r.OwnerID == userID
}

// IsBreakout reports whether the room is a child of another room.
func (r *Room) IsBreakout() bool {
	return r != nil && r.ParentRoomID != nil
}

// GenerateCode returns a six-character room code over the restricted alphabet.
func GenerateCode() string {
	code := make([]byte, CodeLength)
	for i := range code {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code)
}

// ValidCode reports whether s is a well-formed room code.
func ValidCode(s string) bool {
	if len(s) != CodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(codeAlphabet, rune(s[i])) {
			return false
		}
	}
	return true
}
