package main

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	httpapi "github.com/intermeet/backend/internal/api/http"
	"github.com/intermeet/backend/internal/config"
	"github.com/intermeet/backend/internal/notify"
	"github.com/intermeet/backend/internal/repository"
	"github.com/intermeet/backend/internal/repository/model"
	"github.com/intermeet/backend/internal/service"
	"github.com/intermeet/backend/internal/token"
	"github.com/intermeet/backend/internal/worker"
	"github.com/intermeet/backend/lib/logger/slogpretty"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	db, err := connectDatabase(cfg.Database)
	if err != nil {
		log.Error("failed to connect database", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	roomRepo := repository.NewPostgresRoomRepository(db)
	participantRepo := repository.NewPostgresParticipantRepository(db)
	lobbyRepo := repository.NewPostgresLobbyRepository(db)
	messageRepo := repository.NewPostgresMessageRepository(db)
	userRepo := repository.NewPostgresUserRepository(db)

	hub := notify.NewHub()

	minter, err := token.NewMinter(cfg.Media.APIKey, cfg.Media.APISecret, cfg.Media.TokenTTL)
	if err != nil {
		log.Error("failed to build token minter", slog.Any("error", err))
		os.Exit(1)
	}

	roomService := service.NewRoomService(roomRepo, participantRepo, messageRepo, hub, log, cfg.Rooms.TTL)
	admissionService := service.NewAdmissionService(roomRepo, participantRepo, lobbyRepo, userRepo, minter, hub, log, cfg.Rooms.TTL)
	lobbyService := service.NewLobbyService(roomRepo, lobbyRepo, userRepo, hub, log)
	chatService := service.NewChatService(roomRepo, messageRepo, userRepo, log)
	userService, err := service.NewUserService(userRepo, log, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Error("failed to build user service", slog.Any("error", err))
		os.Exit(1)
	}

	roomController := httpapi.NewRoomController(roomService, admissionService, log)
	lobbyController := httpapi.NewLobbyController(lobbyService, roomService, hub, log)
	chatController := httpapi.NewChatController(chatService, log)
	userController := httpapi.NewUserController(userService, log)

	sweeper := worker.NewServer(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, roomService, cfg.Rooms.SweepInterval, log)
	go func() {
		if err := sweeper.Start(); err != nil {
			log.Error("room sweeper stopped", slog.Any("error", err))
		}
	}()
	defer sweeper.Shutdown()

	router := httpapi.SetupRouter(httpapi.RouterDeps{
		Rooms:          roomController,
		Lobby:          lobbyController,
		Chat:           chatController,
		Users:          userController,
		JWTSecret:      cfg.Auth.JWTSecret,
		Redis:          redisClient,
		JoinRateLimit:  cfg.Rooms.JoinRateLimit,
		JoinRateWindow: cfg.Rooms.JoinRateWindow,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Log:            log,
	})

	log.Info("starting application", slog.String("addr", cfg.HTTP.Address))
	if err := router.Run(cfg.HTTP.Address); err != nil {
		log.Error("http server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}

func connectDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database dsn is empty")
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	db.AutoMigrate(&model.Room{}, &model.Participant{}, &model.LobbyEntry{}, &model.Message{}, &model.User{})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
