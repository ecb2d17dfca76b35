package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/intermeet/backend/internal/domain"
	"github.com/intermeet/backend/internal/repository/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRoomRepository struct {
	db *gorm.DB
}

func NewPostgresRoomRepository(db *gorm.DB) *PostgresRoomRepository {
	return &PostgresRoomRepository{db: db}
}

func (r *PostgresRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if room == nil {
		return errors.New("room is nil")
	}

	if err := r.db.WithContext(ctx).Create(toModelRoom(room)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrRoomCodeExists
		}
		return err
	}
	return nil
}

func (r *PostgresRoomRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var room model.Room
	err := r.db.WithContext(ctx).First(&room, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return toDomainRoom(&room), nil
}

func (r *PostgresRoomRepository) GetByCode(ctx context.Context, code string) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var room model.Room
	err := r.db.WithContext(ctx).
		Order("is_active DESC, created_at DESC").
		First(&room, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return toDomainRoom(&room), nil
}

func (r *PostgresRoomRepository) GetActiveByCode(ctx context.Context, code string) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var room model.Room
	err := r.db.WithContext(ctx).First(&room, "code = ? AND is_active", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return toDomainRoom(&room), nil
}

func (r *PostgresRoomRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res := r.db.WithContext(ctx).
		Model(&model.Room{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func (r *PostgresRoomRepository) ListByOwner(ctx context.Context, owner uuid.UUID) ([]*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rooms []model.Room
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND is_active", owner).
		Order("created_at DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return toDomainRooms(rooms), nil
}

func (r *PostgresRoomRepository) ListRecentByOwner(ctx context.Context, owner uuid.UUID, limit int) ([]*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rooms []model.Room
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", owner).
		Order("created_at DESC").
		Limit(limit).
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return toDomainRooms(rooms), nil
}

func (r *PostgresRoomRepository) ListBreakouts(ctx context.Context, parentID uuid.UUID) ([]*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rooms []model.Room
	err := r.db.WithContext(ctx).
		Where("parent_room_id = ? AND is_active", parentID).
		Order("created_at ASC").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return toDomainRooms(rooms), nil
}

func (r *PostgresRoomRepository) ListExpired(ctx context.Context, createdBefore time.Time) ([]*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rooms []model.Room
	err := r.db.WithContext(ctx).
		Where("is_active AND NOT is_persistent AND created_at < ?", createdBefore).
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return toDomainRooms(rooms), nil
}

type PostgresParticipantRepository struct {
	db *gorm.DB
}

func NewPostgresParticipantRepository(db *gorm.DB) *PostgresParticipantRepository {
	return &PostgresParticipantRepository{db: db}
}

func (r *PostgresParticipantRepository) Join(ctx context.Context, roomID, userID uuid.UUID, max int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the room row so concurrent joiners serialize on the count check.
		var room model.Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&room, "id = ?", roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return err
		}

		now := time.Now().UTC()
		// A reconnect closes the prior open record instead of double counting.
		if err := tx.Model(&model.Participant{}).
			Where("room_id = ? AND user_id = ? AND left_at IS NULL", roomID, userID).
			Update("left_at", now).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Participant{}).
			Where("room_id = ? AND left_at IS NULL", roomID).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(max) {
			return ErrRoomFull
		}

		record := model.Participant{
			ID:       uuid.New(),
			RoomID:   roomID,
			UserID:   userID,
			JoinedAt: now,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *PostgresParticipantRepository) Leave(ctx context.Context, roomID, userID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Model(&model.Participant{}).
		Where("room_id = ? AND user_id = ? AND left_at IS NULL", roomID, userID).
		Update("left_at", time.Now().UTC()).Error
}

func (r *PostgresParticipantRepository) CloseAll(ctx context.Context, roomID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Model(&model.Participant{}).
		Where("room_id = ? AND left_at IS NULL", roomID).
		Update("left_at", time.Now().UTC()).Error
}

func (r *PostgresParticipantRepository) CountOpen(ctx context.Context, roomID uuid.UUID) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Participant{}).
		Where("room_id = ? AND left_at IS NULL", roomID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *PostgresParticipantRepository) CountAll(ctx context.Context, roomID uuid.UUID) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Participant{}).
		Where("room_id = ?", roomID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

type PostgresLobbyRepository struct {
	db *gorm.DB
}

func NewPostgresLobbyRepository(db *gorm.DB) *PostgresLobbyRepository {
	return &PostgresLobbyRepository{db: db}
}

func (r *PostgresLobbyRepository) Upsert(ctx context.Context, entry *domain.LobbyEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if entry == nil {
		return errors.New("lobby entry is nil")
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "room_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name", "status", "updated_at"}),
		}).
		Create(toModelLobbyEntry(entry)).Error
}

func (r *PostgresLobbyRepository) Get(ctx context.Context, roomID, userID uuid.UUID) (*domain.LobbyEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entry model.LobbyEntry
	err := r.db.WithContext(ctx).
		First(&entry, "room_id = ? AND user_id = ?", roomID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLobbyEntryNotFound
		}
		return nil, err
	}
	return toDomainLobbyEntry(&entry), nil
}

func (r *PostgresLobbyRepository) ListWaiting(ctx context.Context, roomID uuid.UUID) ([]*domain.LobbyEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []model.LobbyEntry
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND status = ?", roomID, string(domain.LobbyStatusWaiting)).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	result := make([]*domain.LobbyEntry, 0, len(entries))
	for i := range entries {
		result = append(result, toDomainLobbyEntry(&entries[i]))
	}
	return result, nil
}

func (r *PostgresLobbyRepository) SetStatus(ctx context.Context, roomID, userID uuid.UUID, status domain.LobbyStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res := r.db.WithContext(ctx).
		Model(&model.LobbyEntry{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLobbyEntryNotFound
	}
	return nil
}

func (r *PostgresLobbyRepository) Delete(ctx context.Context, roomID, userID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Delete(&model.LobbyEntry{}).Error
}

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewPostgresMessageRepository(db *gorm.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg == nil {
		return errors.New("message is nil")
	}

	return r.db.WithContext(ctx).Create(toModelMessage(msg)).Error
}

func (r *PostgresMessageRepository) ListRecent(ctx context.Context, roomID uuid.UUID, limit int) ([]*domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var messages []model.Message
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Reverse into chronological order for delivery.
	result := make([]*domain.Message, len(messages))
	for i := range messages {
		result[len(messages)-1-i] = toDomainMessage(&messages[i])
	}
	return result, nil
}

func (r *PostgresMessageRepository) CountByRoom(ctx context.Context, roomID uuid.UUID) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("room_id = ?", roomID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

type PostgresUserRepository struct {
	db *gorm.DB
}

func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if user == nil {
		return errors.New("user is nil")
	}

	if err := r.db.WithContext(ctx).Create(toModelUser(user)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserEmailExists
		}
		return err
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user model.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toDomainUser(&user), nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user model.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toDomainUser(&user), nil
}

func (r *PostgresUserRepository) Update(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if user == nil {
		return errors.New("user is nil")
	}

	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"name":          user.Name,
			"avatar_url":    user.AvatarURL,
			"password_hash": user.PasswordHash,
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func toModelRoom(r *domain.Room) *model.Room {
	return &model.Room{
		ID:                 r.ID,
		Code:               r.Code,
		Name:               r.Name,
		OwnerID:            r.OwnerID,
		IsActive:           r.IsActive,
		IsPersistent:       r.IsPersistent,
		PasswordHash:       r.PasswordHash,
		WaitingRoomEnabled: r.WaitingRoomEnabled,
		MaxParticipants:    r.MaxParticipants,
		ParentRoomID:       r.ParentRoomID,
		CreatedAt:          r.CreatedAt,
	}
}

func toDomainRoom(r *model.Room) *domain.Room {
	return &domain.Room{
		ID:                 r.ID,
		Code:               r.Code,
		Name:               r.Name,
		OwnerID:            r.OwnerID,
		IsActive:           r.IsActive,
		IsPersistent:       r.IsPersistent,
		PasswordHash:       r.PasswordHash,
		WaitingRoomEnabled: r.WaitingRoomEnabled,
		MaxParticipants:    r.MaxParticipants,
		ParentRoomID:       r.ParentRoomID,
		CreatedAt:          r.CreatedAt,
	}
}

func toDomainRooms(rooms []model.Room) []*domain.Room {
	result := make([]*domain.Room, 0, len(rooms))
	for i := range rooms {
		result = append(result, toDomainRoom(&rooms[i]))
	}
	return result
}

func toModelLobbyEntry(e *domain.LobbyEntry) *model.LobbyEntry {
	return &model.LobbyEntry{
		ID:          e.ID,
		RoomID:      e.RoomID,
		UserID:      e.UserID,
		DisplayName: e.DisplayName,
		Status:      string(e.Status),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toDomainLobbyEntry(e *model.LobbyEntry) *domain.LobbyEntry {
	return &domain.LobbyEntry{
		ID:          e.ID,
		RoomID:      e.RoomID,
		UserID:      e.UserID,
		DisplayName: e.DisplayName,
		Status:      domain.LobbyStatus(e.Status),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toModelMessage(m *domain.Message) *model.Message {
	return &model.Message{
		ID:         m.ID,
		RoomID:     m.RoomID,
		UserID:     m.UserID,
		SenderName: m.SenderName,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
	}
}

func toDomainMessage(m *model.Message) *domain.Message {
	return &domain.Message{
		ID:         m.ID,
		RoomID:     m.RoomID,
		UserID:     m.UserID,
		SenderName: m.SenderName,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
	}
}

func toModelUser(u *domain.User) *model.User {
	var email *string
	if u.Email != "" {
		e := u.Email
		email = &e
	}
	return &model.User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        email,
		PasswordHash: u.PasswordHash,
		AvatarURL:    u.AvatarURL,
		IsGuest:      u.IsGuest,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func toDomainUser(u *model.User) *domain.User {
	email := ""
	if u.Email != nil {
		email = *u.Email
	}
	return &domain.User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        email,
		PasswordHash: u.PasswordHash,
		AvatarURL:    u.AvatarURL,
		IsGuest:      u.IsGuest,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
