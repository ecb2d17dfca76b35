package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/intermeet/backend/internal/domain"
	"github.com/intermeet/backend/internal/notify"
	"github.com/intermeet/backend/internal/repository"
	"github.com/intermeet/backend/lib/logger/sl"
	"golang.org/x/crypto/bcrypt"
)

const maxRoomNameLength = 100

type RoomService struct {
	rooms        repository.RoomRepository
	participants repository.ParticipantRepository
	messages     repository.MessageRepository
	hub          *notify.Hub
	log          *slog.Logger
	roomTTL      time.Duration
}

func NewRoomService(
	rooms repository.RoomRepository,
	participants repository.ParticipantRepository,
	messages repository.MessageRepository,
	hub *notify.Hub,
	log *slog.Logger,
	roomTTL time.Duration,
) *RoomService {
	if log == nil {
		log = slog.Default()
	}
	return &RoomService{
		rooms:        rooms,
		participants: participants,
		messages:     messages,
		hub:          hub,
		log:          log,
		roomTTL:      roomTTL,
	}
}

func (s *RoomService) CreateRoom(ctx context.Context, owner uuid.UUID, params CreateRoomParams) (*domain.Room, error) {
	if owner == uuid.Nil {
		return nil, errors.New("owner is required")
	}

	name := sanitizeRoomName(params.Name)
	if name == "" {
		name = "My Meeting"
	}

	passwordHash := ""
	if params.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		passwordHash = string(hashed)
	}

	// Regenerate on code collision; the active-code unique index is the
	// arbiter.
	for {
		room := domain.NewRoom(name, owner, domain.RoomOptions{
			PasswordHash:       passwordHash,
			WaitingRoomEnabled: params.WaitingRoomEnabled,
			MaxParticipants:    params.MaxParticipants,
			IsPersistent:       params.IsPersistent,
		})
		if err := s.rooms.Create(ctx, room); err != nil {
			if errors.Is(err, repository.ErrRoomCodeExists) {
				continue
			}
			return nil, err
		}

		s.log.Info("room created",
			slog.String("room_id", room.ID.String()),
			slog.String("code", room.Code),
			slog.String("owner", owner.String()),
		)
		return room, nil
	}
}

func (s *RoomService) GetRoomInfo(ctx context.Context, code string) (*RoomInfo, error) {
	room, err := s.activeRoomByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	count, err := s.participants.CountOpen(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	return &RoomInfo{Room: room, ParticipantCount: count}, nil
}

func (s *RoomService) ListOwned(ctx context.Context, owner uuid.UUID) ([]*RoomInfo, error) {
	rooms, err := s.rooms.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.withCounts(ctx, rooms)
}

const statsRoomLimit = 50

// Stats reports lifetime engagement for the owner's most recent rooms, ended
// rooms included. Counts cover every join and message ever recorded, not just
// the currently open ones.
func (s *RoomService) Stats(ctx context.Context, owner uuid.UUID) (*OwnerStats, error) {
	rooms, err := s.rooms.ListRecentByOwner(ctx, owner, statsRoomLimit)
	if err != nil {
		return nil, err
	}

	stats := &OwnerStats{Rooms: make([]*RoomStats, 0, len(rooms))}
	for _, room := range rooms {
		joins, err := s.participants.CountAll(ctx, room.ID)
		if err != nil {
			return nil, err
		}
		msgs, err := s.messages.CountByRoom(ctx, room.ID)
		if err != nil {
			return nil, err
		}
		stats.Rooms = append(stats.Rooms, &RoomStats{
			Room:              room,
			TotalParticipants: joins,
			TotalMessages:     msgs,
		})
		stats.TotalParticipants += joins
		stats.TotalMessages += msgs
	}
	stats.TotalRooms = len(stats.Rooms)
	return stats, nil
}

func (s *RoomService) EndRoom(ctx context.Context, requester uuid.UUID, code string) error {
	const op = "service.room.end"

	room, err := s.rooms.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return ErrRoomNotFound
		}
		return err
	}
	if !room.IsOwner(requester) {
		return ErrNotOwner
	}

	if err := s.deactivate(ctx, room); err != nil {
		s.log.Error("failed to end room", slog.String("op", op), sl.Err(err))
		return err
	}

	s.log.Info("room ended",
		slog.String("op", op),
		slog.String("room_id", room.ID.String()),
		slog.String("code", room.Code),
	)
	return nil
}

func (s *RoomService) Leave(ctx context.Context, requester uuid.UUID, code string) error {
	room, err := s.rooms.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return ErrRoomNotFound
		}
		return err
	}
	return s.participants.Leave(ctx, room.ID, requester)
}

func (s *RoomService) CreateBreakout(ctx context.Context, requester uuid.UUID, parentCode, name string) (*domain.Room, error) {
	parent, err := s.activeRoomByCode(ctx, parentCode)
	if err != nil {
		return nil, err
	}
	if !parent.IsOwner(requester) {
		return nil, ErrNotOwner
	}

	breakoutName := sanitizeRoomName(name)
	if breakoutName == "" {
		breakoutName = "Breakout Room"
	}

	parentID := parent.ID
	for {
		room := domain.NewRoom(breakoutName, requester, domain.RoomOptions{
			MaxParticipants: parent.MaxParticipants,
			ParentRoomID:    &parentID,
		})
		if err := s.rooms.Create(ctx, room); err != nil {
			if errors.Is(err, repository.ErrRoomCodeExists) {
				continue
			}
			return nil, err
		}

		s.log.Info("breakout room created",
			slog.String("room_id", room.ID.String()),
			slog.String("parent_id", parentID.String()),
			slog.String("code", room.Code),
		)
		return room, nil
	}
}

func (s *RoomService) ListBreakouts(ctx context.Context, parentCode string) ([]*RoomInfo, error) {
	parent, err := s.rooms.GetByCode(ctx, parentCode)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	rooms, err := s.rooms.ListBreakouts(ctx, parent.ID)
	if err != nil {
		return nil, err
	}
	return s.withCounts(ctx, rooms)
}

// ExpireStale deactivates non-persistent rooms older than the TTL and closes
// their presence records. Called by the periodic sweep worker; the admission
// path additionally checks expiry lazily so a stale room is never joinable
// between sweeps.
func (s *RoomService) ExpireStale(ctx context.Context) (int, error) {
	const op = "service.room.expireStale"

	if s.roomTTL <= 0 {
		return 0, nil
	}

	cutoff := time.Now().UTC().Add(-s.roomTTL)
	rooms, err := s.rooms.ListExpired(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, room := range rooms {
		if err := s.deactivate(ctx, room); err != nil {
			s.log.Error("failed to sweep room",
				slog.String("op", op),
				slog.String("room_id", room.ID.String()),
				sl.Err(err),
			)
			continue
		}
		swept++
	}

	if swept > 0 {
		s.log.Info("expired rooms swept", slog.String("op", op), slog.Int("count", swept))
	}
	return swept, nil
}

func (s *RoomService) deactivate(ctx context.Context, room *domain.Room) error {
	if err := s.rooms.Deactivate(ctx, room.ID); err != nil {
		return err
	}
	if err := s.participants.CloseAll(ctx, room.ID); err != nil {
		return err
	}
	if s.hub != nil {
		s.hub.Publish(notify.Event{Type: notify.EventRoomEnded, RoomID: room.ID})
	}
	return nil
}

func (s *RoomService) activeRoomByCode(ctx context.Context, code string) (*domain.Room, error) {
	room, err := s.rooms.GetActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

func (s *RoomService) withCounts(ctx context.Context, rooms []*domain.Room) ([]*RoomInfo, error) {
	result := make([]*RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		count, err := s.participants.CountOpen(ctx, room.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, &RoomInfo{Room: room, ParticipantCount: count})
	}
	return result, nil
}

func sanitizeRoomName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '"', '\'', '&':
			return -1
		}
		return r
	}, name)

	cleaned = strings.TrimSpace(cleaned)
	runes := []rune(cleaned)
	if len(runes) > maxRoomNameLength {
		cleaned = string(runes[:maxRoomNameLength])
	}
	return cleaned
}
