package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// HTTPHandler serves the login and current-user endpoints.
type HTTPHandler struct {
	Service *AuthService
}

func NewHTTPHandler(service *AuthService) *HTTPHandler {
	return &HTTPHandler{Service: service}
}

// RegisterRoutes mounts POST /auth/login (public) and GET /me (authenticated) on rg.
func (h *HTTPHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/login", h.Login)
	rg.GET("/me", RequireAuth(), h.Me)
}

func (h *HTTPHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	res, err := h.Service.Login(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, ErrUnknownUser) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "unknown user"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *HTTPHandler) Me(c *gin.Context) {
	ac := FromGin(c)
	c.JSON(http.StatusOK, gin.H{"user": ac.User, "expires_at": ac.ExpiresAt})
}
