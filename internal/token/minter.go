package token

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/livekit/protocol/auth"
)

const defaultTTL = 6 * time.Hour

// Minter signs media-server access tokens. The media transport itself is an
// external collaborator; the only thing minted here is the credential that
// authorizes publishing and subscribing in one named room.
type Minter struct {
	apiKey    string
	apiSecret string
	ttl       time.Duration
}

// GrantParams identifies the participant and the room the token is scoped to.
type GrantParams struct {
	Identity    string
	DisplayName string
	AvatarURL   string
	RoomCode    string
}

func NewMinter(apiKey, apiSecret string, ttl time.Duration) (*Minter, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, errors.New("media api key and secret are required")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Minter{apiKey: apiKey, apiSecret: apiSecret, ttl: ttl}, nil
}

// Mint returns a signed token granting join, publish (audio/video/data) and
// subscribe capabilities for the given room.
func (m *Minter) Mint(params GrantParams) (string, error) {
	if params.Identity == "" {
		return "", errors.New("identity is required")
	}
	if params.RoomCode == "" {
		return "", errors.New("room code is required")
	}

	grant := &auth.VideoGrant{
		RoomJoin: true,
		Room:     params.RoomCode,
	}
	grant.SetCanPublish(true)
	grant.SetCanSubscribe(true)
	grant.SetCanPublishData(true)

	metadata, err := json.Marshal(map[string]string{"avatar_url": params.AvatarURL})
	if err != nil {
		return "", err
	}

	at := auth.NewAccessToken(m.apiKey, m.apiSecret).
		SetVideoGrant(grant).
		SetIdentity(params.Identity).
		SetName(params.DisplayName).
		SetMetadata(string(metadata)).
		SetValidFor(m.ttl)

	return at.ToJWT()
}
