package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/intermeet/backend/internal/api/http/converter"
	"github.com/intermeet/backend/internal/api/http/middleware"
	"github.com/intermeet/backend/internal/service"
)

type ChatController struct {
	chat service.ChatInteractor
	log  *slog.Logger
}

func NewChatController(chat service.ChatInteractor, log *slog.Logger) *ChatController {
	if log == nil {
		log = slog.Default()
	}
	return &ChatController{chat: chat, log: log}
}

func (c *ChatController) Send(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	type request struct {
		Code    string `json:"code" binding:"required"`
		Content string `json:"content" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	msg, err := c.chat.Send(ctx.Request.Context(), userID, normalizeCode(req.Code), req.Content)
	if err != nil {
		handleServiceError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": converter.MessageToApi(msg)})
}

func (c *ChatController) History(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	messages, err := c.chat.History(ctx.Request.Context(), userID, normalizeCode(ctx.Param("code")))
	if err != nil {
		handleServiceError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"messages": converter.MessagesToApi(messages)})
}
