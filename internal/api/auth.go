package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kitchenkin/recipes/backend/internal/middleware"
	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/service"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

// AuthHandler serves account registration and sessions
type AuthHandler struct {
	auth service.IAuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth service.IAuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRoutes registers the auth routes
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", middleware.RequireIdentity(), h.Logout)
		auth.GET("/me", middleware.RequireIdentity(), h.Me)
	}
}

// Register creates an account and signs it in
func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(models.NewValidationError("Invalid request body", err))
		return
	}

	resp, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login exchanges credentials for a bearer token
func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(models.NewValidationError("Invalid request body", err))
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout ends the session named by the bearer token
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), c.GetString(middleware.TokenKey)); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the signed-in user
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}
