package flow_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/intermeet/backend/internal/domain"
	"github.com/intermeet/backend/internal/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCode = "ABCDEF"

// meetingStub scripts the server side of a join: a password check, a lobby
// decision that flips after a few polls, and a grant on success.
type meetingStub struct {
	password      string
	waitingRoom   bool
	decision      atomic.Value // domain.LobbyStatus
	pollsUntil    int32        // polls remaining before decision applies
	entryRequests atomic.Int32
	joinAttempts  atomic.Int32
}

func newMeetingStub(password string, waitingRoom bool) *meetingStub {
	s := &meetingStub{password: password, waitingRoom: waitingRoom}
	s.decision.Store(domain.LobbyStatusWaiting)
	return s
}

func (s *meetingStub) server() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/rooms/join", s.handleJoin)
	mux.HandleFunc("POST /api/lobby/request", func(w http.ResponseWriter, _ *http.Request) {
		s.entryRequests.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"status": domain.LobbyStatusWaiting})
	})
	mux.HandleFunc("GET /api/lobby/"+testCode+"/status", func(w http.ResponseWriter, _ *http.Request) {
		status := domain.LobbyStatusWaiting
		if atomic.AddInt32(&s.pollsUntil, -1) < 0 {
			status = s.decision.Load().(domain.LobbyStatus)
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": status})
	})
	mux.HandleFunc("POST /api/rooms/"+testCode+"/leave", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	return httptest.NewServer(mux)
}

func (s *meetingStub) handleJoin(w http.ResponseWriter, r *http.Request) {
	s.joinAttempts.Add(1)

	var body struct {
		Code     string `json:"code"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	if s.password != "" {
		if body.Password == "" {
			writeJSON(w, http.StatusForbidden, map[string]any{
				"error": "this room requires a password", "requiresPassword": true})
			return
		}
		if body.Password != s.password {
			writeJSON(w, http.StatusForbidden, map[string]any{
				"error": "incorrect room password", "requiresPassword": true})
			return
		}
	}

	if s.waitingRoom {
		status := domain.LobbyStatusWaiting
		if atomic.LoadInt32(&s.pollsUntil) <= 0 {
			status = s.decision.Load().(domain.LobbyStatus)
		}
		switch status {
		case domain.LobbyStatusAdmitted:
		case domain.LobbyStatusRejected:
			writeJSON(w, http.StatusForbidden, map[string]any{
				"error": "the host declined your request to join"})
			return
		default:
			writeJSON(w, http.StatusForbidden, map[string]any{
				"error": "waiting for the host to let you in", "requiresLobby": true})
			return
		}
	}

	writeJSON(w, http.StatusOK, domain.SessionGrant{
		Token:            "session-token",
		RoomName:         "Standup",
		RoomCode:         testCode,
		ParticipantCount: 1,
		MaxParticipants:  10,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newTestFlow(t *testing.T, srv *httptest.Server, opts ...flow.Option) *flow.Flow {
	t.Helper()

	t.Cleanup(srv.Close)
	client := flow.NewClient(srv.URL, "bearer-token")
	return flow.New(client, testCode, nil, opts...)
}

func TestFlow_OpenRoom(t *testing.T) {
	stub := newMeetingStub("", false)

	var released atomic.Int32
	f := newTestFlow(t, stub.server(), flow.WithReleasePreview(func() { released.Add(1) }))

	assert.Equal(t, flow.StagePrejoin, f.Stage())
	require.NoError(t, f.Start(context.Background()))

	assert.Equal(t, flow.StageConnected, f.Stage())
	assert.Equal(t, int32(1), released.Load(), "preview is released exactly once")
	require.NotNil(t, f.Grant())
	assert.Equal(t, "session-token", f.Grant().Token)
	assert.Equal(t, "Standup", f.Grant().RoomName)
}

func TestFlow_PasswordStage(t *testing.T) {
	stub := newMeetingStub("hunter22", false)
	f := newTestFlow(t, stub.server())
	ctx := context.Background()

	require.NoError(t, f.Start(ctx))
	assert.Equal(t, flow.StagePassword, f.Stage())
	assert.Empty(t, f.Err(), "the first prompt is not an error")

	require.NoError(t, f.SubmitPassword(ctx, "wrong"))
	assert.Equal(t, flow.StagePassword, f.Stage())
	assert.NotEmpty(t, f.Err())

	require.NoError(t, f.SubmitPassword(ctx, "hunter22"))
	assert.Equal(t, flow.StageConnected, f.Stage())
}

func TestFlow_LobbyAdmitted(t *testing.T) {
	stub := newMeetingStub("", true)
	stub.pollsUntil = 2
	stub.decision.Store(domain.LobbyStatusAdmitted)

	f := newTestFlow(t, stub.server(), flow.WithPollInterval(10*time.Millisecond))
	ctx := context.Background()

	require.NoError(t, f.Start(ctx))
	assert.Equal(t, flow.StageLobby, f.Stage())
	assert.Equal(t, int32(1), stub.entryRequests.Load())

	require.NoError(t, f.AwaitAdmission(ctx))
	assert.Equal(t, flow.StageConnected, f.Stage())
	require.NotNil(t, f.Grant())
	assert.GreaterOrEqual(t, stub.joinAttempts.Load(), int32(2), "admission is re-attempted after the decision")
}

func TestFlow_LobbyRejected(t *testing.T) {
	stub := newMeetingStub("", true)
	stub.pollsUntil = 1
	stub.decision.Store(domain.LobbyStatusRejected)

	f := newTestFlow(t, stub.server(), flow.WithPollInterval(10*time.Millisecond))
	ctx := context.Background()

	require.NoError(t, f.Start(ctx))
	require.NoError(t, f.AwaitAdmission(ctx))

	assert.Equal(t, flow.StageError, f.Stage())
	assert.NotEmpty(t, f.Err())
	assert.Nil(t, f.Grant())
}

func TestFlow_LobbyWaitCancelled(t *testing.T) {
	stub := newMeetingStub("", true)
	stub.pollsUntil = 1 << 30

	f := newTestFlow(t, stub.server(), flow.WithPollInterval(10*time.Millisecond))

	require.NoError(t, f.Start(context.Background()))
	assert.Equal(t, flow.StageLobby, f.Stage())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := f.AwaitAdmission(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, flow.StageLobby, f.Stage(), "cancellation leaves the stage untouched")
}

func TestFlow_ServerDenial(t *testing.T) {
	stub := newMeetingStub("", true)
	stub.decision.Store(domain.LobbyStatusRejected)

	f := newTestFlow(t, stub.server())

	require.NoError(t, f.Start(context.Background()))
	assert.Equal(t, flow.StageError, f.Stage())
	assert.NotEmpty(t, f.Err())
}

func TestFlow_StartIsSingleUse(t *testing.T) {
	stub := newMeetingStub("", false)
	f := newTestFlow(t, stub.server())
	ctx := context.Background()

	require.NoError(t, f.Start(ctx))
	require.NoError(t, f.Start(ctx), "a second confirm is a no-op")
	assert.Equal(t, int32(1), stub.joinAttempts.Load())
}
