package converter

import (
	"time"

	"github.com/google/uuid"
	"github.com/intermeet/backend/internal/domain"
	"github.com/intermeet/backend/internal/service"
)

type RoomResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Code               string     `json:"code"`
	Name               string     `json:"name"`
	OwnerID            uuid.UUID  `json:"owner_id"`
	IsActive           bool       `json:"is_active"`
	IsPersistent       bool       `json:"is_persistent"`
	HasPassword        bool       `json:"has_password"`
	WaitingRoomEnabled bool       `json:"waiting_room_enabled"`
	MaxParticipants    int        `json:"max_participants"`
	ParticipantCount   int        `json:"participant_count"`
	ParentRoomID       *uuid.UUID `json:"parent_room_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

type RoomStatsResponse struct {
	ID                uuid.UUID `json:"id"`
	Code              string    `json:"code"`
	Name              string    `json:"name"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	TotalParticipants int       `json:"total_participants"`
	TotalMessages     int       `json:"total_messages"`
}

type OwnerStatsResponse struct {
	Rooms             []*RoomStatsResponse `json:"rooms"`
	TotalRooms        int                  `json:"total_rooms"`
	TotalParticipants int                  `json:"total_participants"`
	TotalMessages     int                  `json:"total_messages"`
}

type LobbyEntryResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type MessageResponse struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	SenderName string    `json:"sender_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

func RoomToApi(r *domain.Room, participantCount int) *RoomResponse {
	return &RoomResponse{
		ID:                 r.ID,
		Code:               r.Code,
		Name:               r.Name,
		OwnerID:            r.OwnerID,
		IsActive:           r.IsActive,
		IsPersistent:       r.IsPersistent,
		HasPassword:        r.PasswordHash != "",
		WaitingRoomEnabled: r.WaitingRoomEnabled,
		MaxParticipants:    r.MaxParticipants,
		ParticipantCount:   participantCount,
		ParentRoomID:       r.ParentRoomID,
		CreatedAt:          r.CreatedAt,
	}
}

func RoomInfoToApi(info *service.RoomInfo) *RoomResponse {
	return RoomToApi(info.Room, info.ParticipantCount)
}

func RoomInfosToApi(infos []*service.RoomInfo) []*RoomResponse {
	result := make([]*RoomResponse, 0, len(infos))
	for _, info := range infos {
		result = append(result, RoomInfoToApi(info))
	}
	return result
}

func OwnerStatsToApi(stats *service.OwnerStats) *OwnerStatsResponse {
	rooms := make([]*RoomStatsResponse, 0, len(stats.Rooms))
	for _, rs := range stats.Rooms {
		rooms = append(rooms, &RoomStatsResponse{
			ID:                rs.Room.ID,
			Code:              rs.Room.Code,
			Name:              rs.Room.Name,
			IsActive:          rs.Room.IsActive,
			CreatedAt:         rs.Room.CreatedAt,
			TotalParticipants: rs.TotalParticipants,
			TotalMessages:     rs.TotalMessages,
		})
	}
	return &OwnerStatsResponse{
		Rooms:             rooms,
		TotalRooms:        stats.TotalRooms,
		TotalParticipants: stats.TotalParticipants,
		TotalMessages:     stats.TotalMessages,
	}
}

func LobbyEntryToApi(e *domain.LobbyEntry) *LobbyEntryResponse {
	return &LobbyEntryResponse{
		UserID:      e.UserID,
		DisplayName: e.DisplayName,
		Status:      string(e.Status),
		CreatedAt:   e.CreatedAt,
	}
}

func LobbyEntriesToApi(entries []*domain.LobbyEntry) []*LobbyEntryResponse {
	result := make([]*LobbyEntryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, LobbyEntryToApi(e))
	}
	return result
}

func MessageToApi(m *domain.Message) *MessageResponse {
	return &MessageResponse{
		ID:         m.ID,
		UserID:     m.UserID,
		SenderName: m.SenderName,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
	}
}

func MessagesToApi(messages []*domain.Message) []*MessageResponse {
	result := make([]*MessageResponse, 0, len(messages))
	for _, m := range messages {
		result = append(result, MessageToApi(m))
	}
	return result
}
