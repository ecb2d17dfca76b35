package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	httpapi "github.com/intermeet/backend/internal/api/http"
	"github.com/intermeet/backend/internal/domain"
	"github.com/intermeet/backend/internal/notify"
	"github.com/intermeet/backend/internal/repository"
	"github.com/intermeet/backend/internal/service"
	"github.com/intermeet/backend/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

type stubMinter struct{}

func (stubMinter) Mint(params token.GrantParams) (string, error) {
	return "token-" + params.Identity, nil
}

type testEnv struct {
	router *gin.Engine
	rooms  *repository.InMemoryRoomRepository
	users  *repository.InMemoryUserRepository
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rooms := repository.NewInMemoryRoomRepository()
	participants := repository.NewInMemoryParticipantRepository()
	lobby := repository.NewInMemoryLobbyRepository()
	messages := repository.NewInMemoryMessageRepository()
	users := repository.NewInMemoryUserRepository()
	hub := notify.NewHub()

	roomSvc := service.NewRoomService(rooms, participants, messages, hub, nil, 24*time.Hour)
	admissionSvc := service.NewAdmissionService(rooms, participants, lobby, users, stubMinter{}, hub, nil, 24*time.Hour)
	lobbySvc := service.NewLobbyService(rooms, lobby, users, hub, nil)
	chatSvc := service.NewChatService(rooms, messages, users, nil)
	userSvc, err := service.NewUserService(users, nil, testJWTSecret, time.Hour)
	require.NoError(t, err)

	router := httpapi.SetupRouter(httpapi.RouterDeps{
		Rooms:          httpapi.NewRoomController(roomSvc, admissionSvc, nil),
		Lobby:          httpapi.NewLobbyController(lobbySvc, roomSvc, hub, nil),
		Chat:           httpapi.NewChatController(chatSvc, nil),
		Users:          httpapi.NewUserController(userSvc, nil),
		JWTSecret:      testJWTSecret,
		AllowedOrigins: []string{"http://localhost:3000"},
	})
	return &testEnv{router: router, rooms: rooms, users: users}
}

func (e *testEnv) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// signUp registers a user through the API and returns their bearer token.
func (e *testEnv) signUp(t *testing.T, name string) string {
	t.Helper()

	email := fmt.Sprintf("%s@example.com", name)
	rec := e.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": name, "email": email, "password": "longenough",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": email, "password": "longenough",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var payload struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.NotEmpty(t, payload.Token)
	return payload.Token
}

func (e *testEnv) newRoom(t *testing.T, bearer string, body gin.H) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/rooms/create", bearer, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var payload struct {
		Room struct {
			Code string `json:"code"`
		} `json:"room"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.True(t, domain.ValidCode(payload.Room.Code))
	return payload.Room.Code
}

func TestRouter_GuestCanJoin(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.signUp(t, "alice")
	code := env.newRoom(t, owner, gin.H{})

	rec := env.do(t, http.MethodPost, "/api/auth/guest", "", gin.H{"name": "Drop-in Dave"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var payload struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.NotEmpty(t, payload.Token)

	rec = env.do(t, http.MethodPost, "/api/rooms/join", payload.Token, gin.H{"code": code})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRouter_OwnerStats(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.signUp(t, "alice")
	guest := env.signUp(t, "bob")

	code := env.newRoom(t, owner, gin.H{"name": "Standup"})
	env.newRoom(t, guest, gin.H{"name": "Theirs"})

	rec := env.do(t, http.MethodPost, "/api/rooms/join", guest, gin.H{"code": code})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/chat", guest, gin.H{"code": code, "content": "hello"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/rooms/stats", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var payload struct {
		Stats struct {
			Rooms []struct {
				Code              string `json:"code"`
				TotalParticipants int    `json:"total_participants"`
				TotalMessages     int    `json:"total_messages"`
			} `json:"rooms"`
			TotalRooms        int `json:"total_rooms"`
			TotalParticipants int `json:"total_participants"`
			TotalMessages     int `json:"total_messages"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))

	require.Len(t, payload.Stats.Rooms, 1, "only the requester's rooms are reported")
	assert.Equal(t, code, payload.Stats.Rooms[0].Code)
	assert.Equal(t, 1, payload.Stats.Rooms[0].TotalParticipants)
	assert.Equal(t, 1, payload.Stats.Rooms[0].TotalMessages)
	assert.Equal(t, 1, payload.Stats.TotalRooms)
	assert.Equal(t, 1, payload.Stats.TotalParticipants)
	assert.Equal(t, 1, payload.Stats.TotalMessages)
}

func TestRouter_AuthRequired(t *testing.T) {
	env := setupTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/rooms/create", "", gin.H{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/rooms/join", "not-a-jwt", gin.H{"code": "ABCDEF"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_JoinStatusMapping(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.signUp(t, "alice")
	guest := env.signUp(t, "bob")

	code := env.newRoom(t, owner, gin.H{"name": "Standup"})

	rec := env.do(t, http.MethodPost, "/api/rooms/join", guest, gin.H{"code": "bad!"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/rooms/join", guest, gin.H{"code": "ZZZZZZ"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/rooms/join", guest, gin.H{"code": code})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var grant domain.SessionGrant
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grant))
	assert.NotEmpty(t, grant.Token)
	assert.Equal(t, code, grant.RoomCode)
	assert.Equal(t, 1, grant.ParticipantCount)
}

func TestRouter_JoinLowercasesCode(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.signUp(t, "alice")

	code := env.newRoom(t, owner, gin.H{})

	rec := env.do(t, http.MethodPost, "/api/rooms/join", owner, gin.H{"code": "  " + lower(code) + "  "})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRouter_PasswordFlags(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.signUp(t, "alice")
	guest := env.signUp(t, "bob")

	code := env.newRoom(t, owner, gin.H{"password": "hunter22"})

	rec := env.do(t, http.MethodPost, "/api/rooms/join", guest, gin.H{"code": code})
	require.Equal(t, http.StatusForbidden, rec.Code)

	var denial struct {
		RequiresPassword bool `json:"requiresPassword"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &denial))
	assert.True(t, denial.RequiresPassword)

	rec = env.do(t, http.MethodPost, "/api/rooms/join", guest, gin.H{"code": code, "password": "hunter22"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRouter_LobbyFlow(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.signUp(t, "alice")
	guest := env.signUp(t, "bob")

	code := env.newRoom(t, owner, gin.H{"waiting_room": true})

	rec := env.do(t, http.MethodPost, "/api/rooms/join", guest, gin.H{"code": code})
	require.Equal(t, http.StatusForbidden, rec.Code)

	var denial struct {
		RequiresLobby bool `json:"requiresLobby"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &denial))
	assert.True(t, denial.RequiresLobby)

	// The owner sees the guest waiting.
	rec = env.do(t, http.MethodGet, "/api/lobby/"+code+"/waiting", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var waiting struct {
		Entries []struct {
			UserID      string `json:"user_id"`
			DisplayName string `json:"display_name"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &waiting))
	require.Len(t, waiting.Entries, 1)
	assert.Equal(t, "bob", waiting.Entries[0].DisplayName)

	rec = env.do(t, http.MethodPatch, "/api/lobby/decide", owner, gin.H{
		"code": code, "user_id": waiting.Entries[0].UserID, "action": "admit",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/lobby/"+code+"/status", guest, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "admitted")

	rec = env.do(t, http.MethodPost, "/api/rooms/join", guest, gin.H{"code": code})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRouter_ExpiredRoomIsGone(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.signUp(t, "alice")

	room := domain.NewRoom("Old", uuid.New(), domain.RoomOptions{})
	room.CreatedAt = time.Now().UTC().Add(-25 * time.Hour)
	require.NoError(t, env.rooms.Create(t.Context(), room))

	rec := env.do(t, http.MethodPost, "/api/rooms/join", owner, gin.H{"code": room.Code})
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestRouter_ChatRoundTrip(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.signUp(t, "alice")

	code := env.newRoom(t, owner, gin.H{})

	rec := env.do(t, http.MethodPost, "/api/chat", owner, gin.H{"code": code, "content": "hello"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/chat/"+code, owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Messages []struct {
			Content    string `json:"content"`
			SenderName string `json:"sender_name"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Messages, 1)
	assert.Equal(t, "hello", payload.Messages[0].Content)
	assert.Equal(t, "alice", payload.Messages[0].SenderName)
}

func TestRouter_EndRoomOwnership(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.signUp(t, "alice")
	guest := env.signUp(t, "bob")

	code := env.newRoom(t, owner, gin.H{})

	rec := env.do(t, http.MethodPost, "/api/rooms/"+code+"/end", guest, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/rooms/"+code+"/end", owner, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/rooms/"+code, owner, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func lower(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r >= 'A' && r <= 'Z' {
			out[i] = r + ('a' - 'A')
		}
	}
	return string(out)
}
