package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/intermeet/backend/internal/domain"
	"github.com/intermeet/backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type UserService struct {
	users     repository.UserRepository
	log       *slog.Logger
	jwtSecret string
	tokenTTL  time.Duration
}

func NewUserService(users repository.UserRepository, log *slog.Logger, jwtSecret string, tokenTTL time.Duration) (*UserService, error) {
	if jwtSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if log == nil {
		log = slog.Default()
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &UserService{users: users, log: log, jwtSecret: jwtSecret, tokenTTL: tokenTTL}, nil
}

func (s *UserService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	const op = "service.user.register"

	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, errors.New("name is required")
	}
	if email == "" {
		return nil, errors.New("email is required")
	}
	if len(password) < minPasswordLength {
		return nil, errors.New("password must be at least 8 characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := domain.NewUser(name, email, string(hashed))
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user registered", slog.String("op", op), slog.String("user_id", user.ID.String()))
	return user, nil
}

// Login verifies the credentials and issues a signed session token carrying
// the user id.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	signed, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}
	return signed, user, nil
}

// RegisterGuest creates a throwaway identity so people can join meetings
// without an account, and issues its session token right away.
func (s *UserService) RegisterGuest(ctx context.Context, name string) (string, *domain.User, error) {
	const op = "service.user.registerGuest"

	name = strings.TrimSpace(name)
	if name == "" {
		name = "Guest"
	}

	user := domain.NewGuestUser(name)
	if err := s.users.Create(ctx, user); err != nil {
		return "", nil, err
	}

	signed, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}

	s.log.Info("guest registered", slog.String("op", op), slog.String("user_id", user.ID.String()))
	return signed, user, nil
}

func (s *UserService) issueToken(user *domain.User) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"iat":     now.Unix(),
		"exp":     now.Add(s.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, name, avatarURL string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		user.Name = name
	}
	if avatarURL != "" {
		user.AvatarURL = avatarURL
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
