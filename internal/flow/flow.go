// Package flow drives the client side of joining a meeting: it walks the
// prejoin, password, lobby and connecting stages and settles in a terminal
// connected or error stage.
package flow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/intermeet/backend/internal/domain"
	"github.com/intermeet/backend/lib/logger/sl"
)

type Stage string

const (
	StagePrejoin    Stage = "prejoin"
	StagePassword   Stage = "password"
	StageLobby      Stage = "lobby"
	StageConnecting Stage = "connecting"
	StageConnected  Stage = "connected"
	StageError      Stage = "error"
)

const defaultPollInterval = 3 * time.Second

// Flow is a single join attempt for one room code. It is not reusable:
// once it reaches connected or error a new Flow must be created.
type Flow struct {
	api  *Client
	log  *slog.Logger
	code string

	pollInterval   time.Duration
	releasePreview func()

	mu      sync.Mutex
	stage   Stage
	grant   *domain.SessionGrant
	lastErr string
}

type Option func(*Flow)

// WithPollInterval overrides how often the lobby stage asks for a decision.
func WithPollInterval(d time.Duration) Option {
	return func(f *Flow) { f.pollInterval = d }
}

// WithReleasePreview registers a hook invoked once when the flow leaves the
// local preview behind and starts connecting.
func WithReleasePreview(fn func()) Option {
	return func(f *Flow) { f.releasePreview = fn }
}

func New(api *Client, code string, log *slog.Logger, opts ...Option) *Flow {
	if log == nil {
		log = slog.Default()
	}
	f := &Flow{
		api:          api,
		log:          log,
		code:         code,
		pollInterval: defaultPollInterval,
		stage:        StagePrejoin,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flow) Stage() Stage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stage
}

// Grant returns the session grant once the flow is connected, nil otherwise.
func (f *Flow) Grant() *domain.SessionGrant {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.grant
}

// Err returns the failure message when the flow is in the error stage.
func (f *Flow) Err() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Start confirms the prejoin screen and attempts admission. Afterwards the
// flow is in connected, password, lobby or error.
func (f *Flow) Start(ctx context.Context) error {
	if !f.transition(StagePrejoin, StageConnecting) {
		return nil
	}
	f.released()
	return f.attempt(ctx, "")
}

// SubmitPassword retries admission with the given password. Only valid in
// the password stage.
func (f *Flow) SubmitPassword(ctx context.Context, password string) error {
	if !f.transition(StagePassword, StageConnecting) {
		return nil
	}
	return f.attempt(ctx, password)
}

// AwaitAdmission polls the lobby until the owner decides or ctx is done.
// On admission it re-attempts the join; on rejection it moves to error.
func (f *Flow) AwaitAdmission(ctx context.Context) error {
	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if f.Stage() != StageLobby {
			return nil
		}

		status, err := f.api.CheckStatus(ctx, f.code)
		if err != nil {
			f.log.Warn("lobby status check failed", sl.Err(err))
			continue
		}

		// A slow response racing a concurrent stage change must not be
		// applied to a flow that already moved on.
		if f.Stage() != StageLobby {
			return nil
		}

		switch status {
		case domain.LobbyStatusAdmitted:
			if !f.transition(StageLobby, StageConnecting) {
				return nil
			}
			return f.attempt(ctx, "")
		case domain.LobbyStatusRejected:
			f.fail("the host declined your request to join")
			return nil
		}
	}
}

// Leave tells the server the participant left. The flow stays terminal.
func (f *Flow) Leave(ctx context.Context) error {
	if f.Stage() != StageConnected {
		return nil
	}
	return f.api.Leave(ctx, f.code)
}

func (f *Flow) attempt(ctx context.Context, password string) error {
	outcome, err := f.api.Join(ctx, f.code, password)
	if err != nil {
		f.fail("could not reach the server")
		return err
	}

	f.mu.Lock()
	if f.stage != StageConnecting {
		f.mu.Unlock()
		return nil
	}

	enqueue := false
	switch {
	case outcome.Grant != nil:
		f.grant = outcome.Grant
		f.stage = StageConnected
	case outcome.RequiresPassword:
		f.stage = StagePassword
		if password != "" {
			f.lastErr = outcome.Message
		}
	case outcome.RequiresLobby:
		f.stage = StageLobby
		enqueue = true
	default:
		f.stage = StageError
		f.lastErr = outcome.Message
	}
	f.mu.Unlock()

	if enqueue {
		if _, err := f.api.RequestEntry(ctx, f.code); err != nil {
			f.log.Warn("lobby entry request failed", sl.Err(err))
		}
	}
	return nil
}

func (f *Flow) transition(from, to Stage) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stage != from {
		return false
	}
	f.stage = to
	return true
}

func (f *Flow) fail(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stage = StageError
	f.lastErr = msg
}

func (f *Flow) released() {
	if f.releasePreview != nil {
		f.releasePreview()
	}
}
