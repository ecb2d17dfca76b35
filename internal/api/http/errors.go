package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/intermeet/backend/internal/service"
	"github.com/intermeet/backend/lib/logger/sl"
)

// handleServiceError maps a service denial to its HTTP shape. The password
// and lobby gates carry flags so the client state machine can branch without
// string matching.
func handleServiceError(ctx *gin.Context, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRoomCode):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrRoomNotFound), errors.Is(err, service.ErrLobbyEntryGone):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrRoomExpired):
		ctx.JSON(http.StatusGone, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPasswordRequired), errors.Is(err, service.ErrWrongPassword):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "requiresPassword": true})
	case errors.Is(err, service.ErrLobbyRequired):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "requiresLobby": true})
	case errors.Is(err, service.ErrLobbyRejected), errors.Is(err, service.ErrRoomFull), errors.Is(err, service.ErrNotOwner):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrEmptyMessage):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		log.Error("unhandled service error", sl.Err(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "an unexpected error occurred"})
	}
}
