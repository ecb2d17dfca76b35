package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/intermeet/backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestGenerateCode_Format(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 200; i++ {
		code := domain.GenerateCode()

		assert.Len(t, code, domain.CodeLength)
		assert.True(t, domain.ValidCode(code), "generated code %q should validate", code)
		for _, r := range code {
			assert.NotContains(t, "01OI", string(r), "ambiguous character in code %q", code)
		}
		seen[code] = true
	}

	assert.Greater(t, len(seen), 190, "codes should be close to unique across 200 draws")
}

func TestValidCode(t *testing.T) {
	valid := domain.GenerateCode()

	assert.True(t, domain.ValidCode(valid))
	assert.False(t, domain.ValidCode(""))
	assert.False(t, domain.ValidCode("ABC"))
	assert.False(t, domain.ValidCode(strings.ToLower(valid)))
	assert.False(t, domain.ValidCode("ABC10D"), "0 and 1 are not in the alphabet")
	assert.False(t, domain.ValidCode("ABCDEFG"), "too long")
}

func TestRoom_IsExpired(t *testing.T) {
	room := domain.NewRoom("Standup", uuid.New(), domain.RoomOptions{})

	room.CreatedAt = time.Now().Add(-1 * time.Hour)
	assert.False(t, room.IsExpired(24*time.Hour))

	room.CreatedAt = time.Now().Add(-25 * time.Hour)
	assert.True(t, room.IsExpired(24*time.Hour))

	room.IsPersistent = true
	assert.False(t, room.IsExpired(24*time.Hour), "persistent rooms never expire")
}

func TestNewRoom_Defaults(t *testing.T) {
	owner := uuid.New()
	room := domain.NewRoom("Standup", owner, domain.RoomOptions{})

	assert.True(t, room.IsActive)
	assert.True(t, room.IsOwner(owner))
	assert.False(t, room.IsOwner(uuid.New()))
	assert.False(t, room.IsBreakout())
	assert.Equal(t, domain.DefaultMaxParticipants, room.MaxParticipants)
}
