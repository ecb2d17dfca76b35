package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/intermeet/backend/internal/domain"
	"github.com/intermeet/backend/internal/notify"
	"github.com/intermeet/backend/internal/repository"
	"github.com/intermeet/backend/internal/token"
	"github.com/intermeet/backend/lib/logger/sl"
	"golang.org/x/crypto/bcrypt"
)

// TokenMinter signs the session credential handed to the media transport.
type TokenMinter interface {
	Mint(params token.GrantParams) (string, error)
}

// AdmissionService decides whether an identity may enter a room. Every gate
// is applied in strict order and the first applicable outcome wins: lookup,
// expiry, password, waiting room, capacity. Denials come back as sentinel
// errors, never as panics.
type AdmissionService struct {
	rooms        repository.RoomRepository
	participants repository.ParticipantRepository
	lobby        repository.LobbyRepository
	users        repository.UserRepository
	minter       TokenMinter
	hub          *notify.Hub
	log          *slog.Logger
	roomTTL      time.Duration
}

func NewAdmissionService(
	rooms repository.RoomRepository,
	participants repository.ParticipantRepository,
	lobby repository.LobbyRepository,
	users repository.UserRepository,
	minter TokenMinter,
	hub *notify.Hub,
	log *slog.Logger,
	roomTTL time.Duration,
) *AdmissionService {
	if log == nil {
		log = slog.Default()
	}
	return &AdmissionService{
		rooms:        rooms,
		participants: participants,
		lobby:        lobby,
		users:        users,
		minter:       minter,
		hub:          hub,
		log:          log,
		roomTTL:      roomTTL,
	}
}

func (s *AdmissionService) Join(ctx context.Context, userID uuid.UUID, code, password string) (*domain.SessionGrant, error) {
	const op = "service.admission.join"
	log := s.log.With(
		slog.String("op", op),
		slog.String("user_id", userID.String()),
		slog.String("code", code),
	)

	if !domain.ValidCode(code) {
		return nil, ErrInvalidRoomCode
	}

	room, err := s.rooms.GetActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	if room.IsExpired(s.roomTTL) {
		// Lazy sweep on access: the periodic worker handles rooms nobody
		// visits, this keeps expiry exact for the rooms somebody does.
		if err := s.rooms.Deactivate(ctx, room.ID); err != nil {
			log.Error("failed to deactivate expired room", sl.Err(err))
		}
		if err := s.participants.CloseAll(ctx, room.ID); err != nil {
			log.Error("failed to close presence for expired room", sl.Err(err))
		}
		return nil, ErrRoomExpired
	}

	isOwner := room.IsOwner(userID)

	if room.PasswordHash != "" && !isOwner {
		if password == "" {
			return nil, ErrPasswordRequired
		}
		if bcrypt.CompareHashAndPassword([]byte(room.PasswordHash), []byte(password)) != nil {
			return nil, ErrWrongPassword
		}
	}

	if room.WaitingRoomEnabled && !isOwner {
		entry, err := s.lobby.Get(ctx, room.ID, userID)
		switch {
		case errors.Is(err, repository.ErrLobbyEntryNotFound):
			if err := s.enqueue(ctx, room, userID); err != nil {
				return nil, err
			}
			return nil, ErrLobbyRequired
		case err != nil:
			return nil, err
		case entry.Status == domain.LobbyStatusRejected:
			return nil, ErrLobbyRejected
		case entry.Status != domain.LobbyStatusAdmitted:
			return nil, ErrLobbyRequired
		}
	}

	count, err := s.participants.Join(ctx, room.ID, userID, room.MaxParticipants)
	if err != nil {
		if errors.Is(err, repository.ErrRoomFull) {
			return nil, ErrRoomFull
		}
		return nil, err
	}

	displayName, avatarURL := s.profileOf(ctx, userID)
	signed, err := s.minter.Mint(token.GrantParams{
		Identity:    userID.String(),
		DisplayName: displayName,
		AvatarURL:   avatarURL,
		RoomCode:    room.Code,
	})
	if err != nil {
		log.Error("failed to mint session token", sl.Err(err))
		return nil, err
	}

	// Admitted lobby entries are single-use: a later rejoin goes through the
	// waiting room again.
	if room.WaitingRoomEnabled && !isOwner {
		if err := s.lobby.Delete(ctx, room.ID, userID); err != nil {
			log.Warn("failed to clear spent lobby entry", sl.Err(err))
		}
	}

	log.Info("admission granted",
		slog.String("room_id", room.ID.String()),
		slog.Int("participant_count", count),
		slog.Bool("is_owner", isOwner),
	)

	return &domain.SessionGrant{
		Token:              signed,
		RoomName:           room.Name,
		RoomCode:           room.Code,
		IsOwner:            isOwner,
		ParticipantCount:   count,
		MaxParticipants:    room.MaxParticipants,
		WaitingRoomEnabled: room.WaitingRoomEnabled,
	}, nil
}

func (s *AdmissionService) enqueue(ctx context.Context, room *domain.Room, userID uuid.UUID) error {
	displayName, _ := s.profileOf(ctx, userID)
	entry := domain.NewLobbyEntry(room.ID, userID, displayName)
	if err := s.lobby.Upsert(ctx, entry); err != nil {
		return err
	}
	if s.hub != nil {
		s.hub.Publish(notify.Event{
			Type:        notify.EventEntryRequested,
			RoomID:      room.ID,
			UserID:      userID,
			DisplayName: displayName,
			Status:      domain.LobbyStatusWaiting,
		})
	}
	return nil
}

func (s *AdmissionService) profileOf(ctx context.Context, userID uuid.UUID) (displayName, avatarURL string) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "Anonymous", ""
	}
	name := user.Name
	if name == "" {
		name = user.Email
	}
	if name == "" {
		name = "Anonymous"
	}
	return name, user.AvatarURL
}
