package domain

// SessionGrant is the credential bundle handed back on successful admission.
// Token is the signed media-server access token; the rest is room context the
// client renders while it connects.
type SessionGrant struct {
	Token              string `json:"token"`
	RoomName           string `json:"room_name"`
	RoomCode           string `json:"room_code"`
	IsOwner            bool   `json:"is_owner"`
	ParticipantCount   int    `json:"participant_count"`
	MaxParticipants    int    `json:"max_participants"`
	WaitingRoomEnabled bool   `json:"waiting_room_enabled"`
}
