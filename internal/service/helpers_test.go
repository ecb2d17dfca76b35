package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/intermeet/backend/internal/domain"
	"github.com/intermeet/backend/internal/notify"
	"github.com/intermeet/backend/internal/repository"
	"github.com/intermeet/backend/internal/service"
	"github.com/intermeet/backend/internal/token"
	"github.com/stretchr/testify/require"
)

// stubMinter signs nothing; it just makes the identity visible in the token.
type stubMinter struct{}

func (stubMinter) Mint(params token.GrantParams) (string, error) {
	return "token-" + params.Identity, nil
}

type fixture struct {
	rooms        *repository.InMemoryRoomRepository
	participants *repository.InMemoryParticipantRepository
	lobby        *repository.InMemoryLobbyRepository
	messages     *repository.InMemoryMessageRepository
	users        *repository.InMemoryUserRepository
	hub          *notify.Hub

	roomSvc      *service.RoomService
	admissionSvc *service.AdmissionService
	lobbySvc     *service.LobbyService
	chatSvc      *service.ChatService
}

func newFixture(t *testing.T, roomTTL time.Duration) *fixture {
	t.Helper()

	f := &fixture{
		rooms:        repository.NewInMemoryRoomRepository(),
		participants: repository.NewInMemoryParticipantRepository(),
		lobby:        repository.NewInMemoryLobbyRepository(),
		messages:     repository.NewInMemoryMessageRepository(),
		users:        repository.NewInMemoryUserRepository(),
		hub:          notify.NewHub(),
	}

	f.roomSvc = service.NewRoomService(f.rooms, f.participants, f.messages, f.hub, nil, roomTTL)
	f.admissionSvc = service.NewAdmissionService(
		f.rooms, f.participants, f.lobby, f.users, stubMinter{}, f.hub, nil, roomTTL)
	f.lobbySvc = service.NewLobbyService(f.rooms, f.lobby, f.users, f.hub, nil)
	f.chatSvc = service.NewChatService(f.rooms, f.messages, f.users, nil)
	return f
}

func (f *fixture) addUser(t *testing.T, name string) uuid.UUID {
	t.Helper()

	user := domain.NewUser(name, name+"@example.com", "x")
	require.NoError(t, f.users.Create(context.Background(), user))
	return user.ID
}

func (f *fixture) createRoom(t *testing.T, owner uuid.UUID, params service.CreateRoomParams) *domain.Room {
	t.Helper()

	room, err := f.roomSvc.CreateRoom(context.Background(), owner, params)
	require.NoError(t, err)
	return room
}
