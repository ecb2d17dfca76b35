package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/intermeet/backend/internal/api/http/middleware"
)

// RouterDeps bundles everything the router wires together.
type RouterDeps struct {
	Rooms     *RoomController
	Lobby     *LobbyController
	Chat      *ChatController
	Users     *UserController
	JWTSecret string

	// Rate limiting of admission attempts; optional when Redis is absent.
	Redis          *redis.Client
	JoinRateLimit  int
	JoinRateWindow time.Duration

	AllowedOrigins []string
	Log            *slog.Logger
}

func SetupRouter(deps RouterDeps) *gin.Engine {
	router := gin.Default()

	config := cors.DefaultConfig()
	config.AllowOrigins = deps.AllowedOrigins
	config.AllowCredentials = true
	config.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"Origin",
		"Accept",
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	router.Use(cors.New(config))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", deps.Users.Register)
	auth.POST("/login", deps.Users.Login)
	auth.POST("/guest", deps.Users.Guest)

	authed := api.Group("")
	authed.Use(middleware.Auth(deps.JWTSecret))

	users := authed.Group("/users")
	users.GET("/me", deps.Users.Me)
	users.PATCH("/me", deps.Users.UpdateProfile)

	rooms := authed.Group("/rooms")
	rooms.POST("/create", deps.Rooms.CreateRoom)
	rooms.GET("/mine", deps.Rooms.ListMyRooms)
	rooms.GET("/stats", deps.Rooms.Stats)
	rooms.GET("/:code", deps.Rooms.GetRoom)
	rooms.POST("/:code/end", deps.Rooms.EndRoom)
	rooms.POST("/:code/leave", deps.Rooms.LeaveRoom)
	rooms.POST("/:code/breakouts", deps.Rooms.CreateBreakout)
	rooms.GET("/:code/breakouts", deps.Rooms.ListBreakouts)

	join := authed.Group("/rooms")
	if deps.Redis != nil {
		join.Use(middleware.RateLimit(deps.Redis, deps.JoinRateLimit, deps.JoinRateWindow, deps.Log))
	}
	join.POST("/join", deps.Rooms.JoinRoom)

	lobby := authed.Group("/lobby")
	lobby.POST("/request", deps.Lobby.RequestEntry)
	lobby.GET("/:code/status", deps.Lobby.CheckStatus)
	lobby.GET("/:code/waiting", deps.Lobby.ListWaiting)
	lobby.PATCH("/decide", deps.Lobby.Decide)
	lobby.GET("/:code/ws", deps.Lobby.Subscribe)

	chat := authed.Group("/chat")
	chat.POST("", deps.Chat.Send)
	chat.GET("/:code", deps.Chat.History)

	return router
}
