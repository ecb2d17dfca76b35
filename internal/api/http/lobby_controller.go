package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/intermeet/backend/internal/api/http/converter"
	"github.com/intermeet/backend/internal/api/http/middleware"
	"github.com/intermeet/backend/internal/notify"
	"github.com/intermeet/backend/internal/service"
	"github.com/intermeet/backend/lib/logger/sl"
)

type LobbyController struct {
	lobby    service.LobbyInteractor
	rooms    service.RoomInteractor
	hub      *notify.Hub
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewLobbyController(lobby service.LobbyInteractor, rooms service.RoomInteractor, hub *notify.Hub, log *slog.Logger) *LobbyController {
	if log == nil {
		log = slog.Default()
	}
	return &LobbyController{
		lobby: lobby,
		rooms: rooms,
		hub:   hub,
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (c *LobbyController) RequestEntry(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	type request struct {
		Code string `json:"code" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	status, err := c.lobby.RequestEntry(ctx.Request.Context(), userID, normalizeCode(req.Code))
	if err != nil {
		handleServiceError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": status})
}

func (c *LobbyController) CheckStatus(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	status, err := c.lobby.CheckStatus(ctx.Request.Context(), userID, normalizeCode(ctx.Param("code")))
	if err != nil {
		handleServiceError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": status})
}

func (c *LobbyController) ListWaiting(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	entries, err := c.lobby.ListWaiting(ctx.Request.Context(), userID, normalizeCode(ctx.Param("code")))
	if err != nil {
		handleServiceError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"entries": converter.LobbyEntriesToApi(entries)})
}

func (c *LobbyController) Decide(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	type request struct {
		Code   string `json:"code" binding:"required"`
		UserID string `json:"user_id" binding:"required"`
		Action string `json:"action" binding:"required,oneof=admit reject"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	target, err := uuid.Parse(req.UserID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	err = c.lobby.Decide(ctx.Request.Context(), userID, normalizeCode(req.Code), target, req.Action == "admit")
	if err != nil {
		handleServiceError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// Subscribe streams lobby change events over a websocket. The payload is
// advisory: owner views re-fetch the waiting list on each event, waiting
// users re-check their status, and the poll loop remains the fallback when
// the socket drops.
func (c *LobbyController) Subscribe(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	code := normalizeCode(ctx.Param("code"))
	info, err := c.rooms.GetRoomInfo(ctx.Request.Context(), code)
	if err != nil {
		handleServiceError(ctx, c.log, err)
		return
	}
	room := info.Room

	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		ctx.String(http.StatusInternalServerError, "failed to upgrade connection")
		return
	}

	sub := c.hub.Subscribe(room.ID)
	defer c.hub.Unsubscribe(room.ID, sub)
	defer conn.Close()

	isOwner := room.IsOwner(userID)

	// Drain client frames so pings and closes are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case event, ok := <-sub.Events:
			if !ok {
				return
			}
			// Waiting users only see their own status changes; the owner
			// sees everything.
			if !isOwner && event.Type == notify.EventDecision && event.UserID != userID {
				continue
			}
			if !isOwner && event.Type == notify.EventEntryRequested && event.UserID != userID {
				continue
			}
			if err := conn.WriteJSON(event); err != nil {
				c.log.Debug("lobby subscriber write failed", sl.Err(err))
				return
			}
		}
	}
}
