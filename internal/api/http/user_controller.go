package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/intermeet/backend/internal/api/http/middleware"
	"github.com/intermeet/backend/internal/service"
)

type UserController struct {
	users service.UserInteractor
	log   *slog.Logger
}

func NewUserController(users service.UserInteractor, log *slog.Logger) *UserController {
	if log == nil {
		log = slog.Default()
	}
	return &UserController{users: users, log: log}
}

func (c *UserController) Register(ctx *gin.Context) {
	type request struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := c.users.Register(ctx.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"user": user})
}

func (c *UserController) Login(ctx *gin.Context) {
	type request struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	token, user, err := c.users.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Guest issues a session token for a named identity without credentials.
func (c *UserController) Guest(ctx *gin.Context) {
	type request struct {
		Name string `json:"name"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	token, user, err := c.users.RegisterGuest(ctx.Request.Context(), req.Name)
	if err != nil {
		handleServiceError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

func (c *UserController) Me(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	user, err := c.users.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": user})
}

func (c *UserController) UpdateProfile(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	type request struct {
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := c.users.UpdateProfile(ctx.Request.Context(), userID, req.Name, req.AvatarURL)
	if err != nil {
		handleServiceError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": user})
}
