package token_test

import (
	"testing"
	"time"

	"github.com/intermeet/backend/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMinter_RequiresCredentials(t *testing.T) {
	_, err := token.NewMinter("", "secret", time.Hour)
	assert.Error(t, err)

	_, err = token.NewMinter("key", "", time.Hour)
	assert.Error(t, err)

	_, err = token.NewMinter("key", "secret", 0)
	assert.NoError(t, err, "zero ttl falls back to the default")
}

func TestMinter_Mint(t *testing.T) {
	minter, err := token.NewMinter("devkey", "devsecret", time.Hour)
	require.NoError(t, err)

	signed, err := minter.Mint(token.GrantParams{
		Identity:    "user-1",
		DisplayName: "Alice",
		RoomCode:    "ABCDEF",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, signed)

	_, err = minter.Mint(token.GrantParams{RoomCode: "ABCDEF"})
	assert.Error(t, err, "identity is mandatory")

	_, err = minter.Mint(token.GrantParams{Identity: "user-1"})
	assert.Error(t, err, "room code is mandatory")
}
