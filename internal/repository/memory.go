package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/intermeet/backend/internal/domain"
)

type InMemoryRoomRepository struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]*domain.Room
}

func NewInMemoryRoomRepository() *InMemoryRoomRepository {
	return &InMemoryRoomRepository{rooms: make(map[uuid.UUID]*domain.Room)}
}

func (r *InMemoryRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.rooms {
		if existing.IsActive && room.IsActive && existing.Code == room.Code {
			return ErrRoomCodeExists
		}
	}

	clone := *room
	r.rooms[room.ID] = &clone
	return nil
}

func (r *InMemoryRoomRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	clone := *room
	return &clone, nil
}

func (r *InMemoryRoomRepository) GetByCode(ctx context.Context, code string) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *domain.Room
	for _, room := range r.rooms {
		if room.Code != code {
			continue
		}
		// Prefer the active room when an old inactive one shares the code.
		if found == nil || (room.IsActive && !found.IsActive) {
			found = room
		}
	}
	if found == nil {
		return nil, ErrRoomNotFound
	}
	clone := *found
	return &clone, nil
}

func (r *InMemoryRoomRepository) GetActiveByCode(ctx context.Context, code string) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, room := range r.rooms {
		if room.Code == code && room.IsActive {
			clone := *room
			return &clone, nil
		}
	}
	return nil, ErrRoomNotFound
}

func (r *InMemoryRoomRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return ErrRoomNotFound
	}
	room.IsActive = false
	return nil
}

func (r *InMemoryRoomRepository) ListByOwner(ctx context.Context, owner uuid.UUID) ([]*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Room
	for _, room := range r.rooms {
		if room.OwnerID == owner && room.IsActive {
			clone := *room
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *InMemoryRoomRepository) ListRecentByOwner(ctx context.Context, owner uuid.UUID, limit int) ([]*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Room
	for _, room := range r.rooms {
		if room.OwnerID == owner {
			clone := *room
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *InMemoryRoomRepository) ListBreakouts(ctx context.Context, parentID uuid.UUID) ([]*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Room
	for _, room := range r.rooms {
		if room.ParentRoomID != nil && *room.ParentRoomID == parentID && room.IsActive {
			clone := *room
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *InMemoryRoomRepository) ListExpired(ctx context.Context, createdBefore time.Time) ([]*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Room
	for _, room := range r.rooms {
		if room.IsActive && !room.IsPersistent && room.CreatedAt.Before(createdBefore) {
			clone := *room
			result = append(result, &clone)
		}
	}
	return result, nil
}

type InMemoryParticipantRepository struct {
	mu      sync.Mutex
	records []*domain.Participant
}

func NewInMemoryParticipantRepository() *InMemoryParticipantRepository {
	return &InMemoryParticipantRepository{}
}

func (r *InMemoryParticipantRepository) Join(ctx context.Context, roomID, userID uuid.UUID, max int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	count := 0
	for _, rec := range r.records {
		if rec.RoomID != roomID || !rec.IsOpen() {
			continue
		}
		if rec.UserID == userID {
			rec.Close(now)
			continue
		}
		count++
	}
	if count >= max {
		return 0, ErrRoomFull
	}

	r.records = append(r.records, domain.NewParticipant(roomID, userID))
	return count + 1, nil
}

func (r *InMemoryParticipantRepository) Leave(ctx context.Context, roomID, userID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, rec := range r.records {
		if rec.RoomID == roomID && rec.UserID == userID && rec.IsOpen() {
			rec.Close(now)
		}
	}
	return nil
}

func (r *InMemoryParticipantRepository) CloseAll(ctx context.Context, roomID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, rec := range r.records {
		if rec.RoomID == roomID && rec.IsOpen() {
			rec.Close(now)
		}
	}
	return nil
}

func (r *InMemoryParticipantRepository) CountOpen(ctx context.Context, roomID uuid.UUID) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, rec := range r.records {
		if rec.RoomID == roomID && rec.IsOpen() {
			count++
		}
	}
	return count, nil
}

func (r *InMemoryParticipantRepository) CountAll(ctx context.Context, roomID uuid.UUID) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, rec := range r.records {
		if rec.RoomID == roomID {
			count++
		}
	}
	return count, nil
}

type lobbyKey struct {
	roomID uuid.UUID
	userID uuid.UUID
}

type InMemoryLobbyRepository struct {
	mu      sync.RWMutex
	entries map[lobbyKey]*domain.LobbyEntry
}

func NewInMemoryLobbyRepository() *InMemoryLobbyRepository {
	return &InMemoryLobbyRepository{entries: make(map[lobbyKey]*domain.LobbyEntry)}
}

func (r *InMemoryLobbyRepository) Upsert(ctx context.Context, entry *domain.LobbyEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := lobbyKey{roomID: entry.RoomID, userID: entry.UserID}
	if existing, ok := r.entries[key]; ok {
		existing.DisplayName = entry.DisplayName
		existing.Status = entry.Status
		existing.UpdatedAt = time.Now().UTC()
		return nil
	}
	clone := *entry
	r.entries[key] = &clone
	return nil
}

func (r *InMemoryLobbyRepository) Get(ctx context.Context, roomID, userID uuid.UUID) (*domain.LobbyEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[lobbyKey{roomID: roomID, userID: userID}]
	if !ok {
		return nil, ErrLobbyEntryNotFound
	}
	clone := *entry
	return &clone, nil
}

func (r *InMemoryLobbyRepository) ListWaiting(ctx context.Context, roomID uuid.UUID) ([]*domain.LobbyEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.LobbyEntry
	for _, entry := range r.entries {
		if entry.RoomID == roomID && entry.Status == domain.LobbyStatusWaiting {
			clone := *entry
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *InMemoryLobbyRepository) SetStatus(ctx context.Context, roomID, userID uuid.UUID, status domain.LobbyStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[lobbyKey{roomID: roomID, userID: userID}]
	if !ok {
		return ErrLobbyEntryNotFound
	}
	entry.Status = status
	entry.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryLobbyRepository) Delete(ctx context.Context, roomID, userID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, lobbyKey{roomID: roomID, userID: userID})
	return nil
}

type InMemoryMessageRepository struct {
	mu       sync.RWMutex
	messages []*domain.Message
}

func NewInMemoryMessageRepository() *InMemoryMessageRepository {
	return &InMemoryMessageRepository{}
}

func (r *InMemoryMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *msg
	r.messages = append(r.messages, &clone)
	return nil
}

func (r *InMemoryMessageRepository) ListRecent(ctx context.Context, roomID uuid.UUID, limit int) ([]*domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*domain.Message
	for _, msg := range r.messages {
		if msg.RoomID == roomID {
			clone := *msg
			all = append(all, &clone)
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

func (r *InMemoryMessageRepository) CountByRoom(ctx context.Context, roomID uuid.UUID) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, msg := range r.messages {
		if msg.RoomID == roomID {
			count++
		}
	}
	return count, nil
}

type InMemoryUserRepository struct {
	mu     sync.RWMutex
	users  map[uuid.UUID]*domain.User
	emails map[string]uuid.UUID
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users:  make(map[uuid.UUID]*domain.User),
		emails: make(map[string]uuid.UUID),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if user.Email != "" {
		if _, ok := r.emails[user.Email]; ok {
			return ErrUserEmailExists
		}
		r.emails[user.Email] = user.ID
	}

	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.emails[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *InMemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return ErrUserNotFound
	}
	clone := *user
	r.users[user.ID] = &clone
	if user.Email != "" {
		r.emails[user.Email] = user.ID
	}
	return nil
}
