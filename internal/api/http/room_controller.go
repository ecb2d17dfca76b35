package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/intermeet/backend/internal/api/http/converter"
	"github.com/intermeet/backend/internal/api/http/middleware"
	"github.com/intermeet/backend/internal/service"
)

type RoomController struct {
	rooms     service.RoomInteractor
	admission service.AdmissionInteractor
	log       *slog.Logger
}

func NewRoomController(rooms service.RoomInteractor, admission service.AdmissionInteractor, log *slog.Logger) *RoomController {
	if log == nil {
		log = slog.Default()
	}
	return &RoomController{rooms: rooms, admission: admission, log: log}
}

func (c *RoomController) CreateRoom(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	type request struct {
		Name            string `json:"name"`
		Password        string `json:"password"`
		WaitingRoom     bool   `json:"waiting_room"`
		MaxParticipants int    `json:"max_participants"`
		Persistent      bool   `json:"persistent"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	room, err := c.rooms.CreateRoom(ctx.Request.Context(), userID, service.CreateRoomParams{
		Name:               req.Name,
		Password:           req.Password,
		WaitingRoomEnabled: req.WaitingRoom,
		MaxParticipants:    req.MaxParticipants,
		IsPersistent:       req.Persistent,
	})
	if err != nil {
		handleServiceError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"room": converter.RoomToApi(room, 0)})
}

// JoinRoom runs the admission policy and, on success, returns the session
// grant for the media transport.
func (c *RoomController) JoinRoom(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	type request struct {
		Code     string `json:"code" binding:"required"`
		Password string `json:"password"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	grant, err := c.admission.Join(ctx.Request.Context(), userID, normalizeCode(req.Code), req.Password)
	if err != nil {
		handleServiceError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, grant)
}

func (c *RoomController) GetRoom(ctx *gin.Context) {
	info, err := c.rooms.GetRoomInfo(ctx.Request.Context(), normalizeCode(ctx.Param("code")))
	if err != nil {
		handleServiceError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"room": converter.RoomInfoToApi(info)})
}

func (c *RoomController) ListMyRooms(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	infos, err := c.rooms.ListOwned(ctx.Request.Context(), userID)
	if err != nil {
		handleServiceError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"rooms": converter.RoomInfosToApi(infos)})
}

// Stats backs the owner's analytics view with lifetime per-room totals.
func (c *RoomController) Stats(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	stats, err := c.rooms.Stats(ctx.Request.Context(), userID)
	if err != nil {
		handleServiceError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"stats": converter.OwnerStatsToApi(stats)})
}

func (c *RoomController) EndRoom(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	if err := c.rooms.EndRoom(ctx.Request.Context(), userID, normalizeCode(ctx.Param("code"))); err != nil {
		handleServiceError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (c *RoomController) LeaveRoom(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	if err := c.rooms.Leave(ctx.Request.Context(), userID, normalizeCode(ctx.Param("code"))); err != nil {
		handleServiceError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (c *RoomController) CreateBreakout(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	type request struct {
		Name string `json:"name"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	room, err := c.rooms.CreateBreakout(ctx.Request.Context(), userID, normalizeCode(ctx.Param("code")), req.Name)
	if err != nil {
		handleServiceError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"breakout_room": converter.RoomToApi(room, 0)})
}

func (c *RoomController) ListBreakouts(ctx *gin.Context) {
	infos, err := c.rooms.ListBreakouts(ctx.Request.Context(), normalizeCode(ctx.Param("code")))
	if err != nil {
		handleServiceError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"breakout_rooms": converter.RoomInfosToApi(infos)})
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
