package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aurevo/aurevo-server/internal/requestdata"
	"github.com/aurevo/aurevo-server/internal/services"
	"github.com/aurevo/aurevo-server/internal/store"
	"github.com/aurevo/aurevo-server/internal/types"
)

type AuthHandler struct {
	authService services.AuthService
	registry    *store.Registry
}

func NewAuthHandler(authService services.AuthService, registry *store.Registry) *AuthHandler {
	return &AuthHandler{authService: authService, registry: registry}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
		Password    string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	user := types.User{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
	}
	if err := ah.authService.RegisterUser(c.Request.Context(), &user); err != nil {
		RespondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Login issues the access token and hydrates the user's store set so the
// first authenticated request paints from warm state. First sign-in
// creates the profile document as part of hydration.
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	accessToken, user, err := ah.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	// ForUser hydrates on first use; failures degrade per domain and
	// login itself still succeeds.
	ah.registry.ForUser(c.Request.Context(), user.ID)

	expiresIn := int(ah.authService.GetAccessTTL().Seconds())
	c.JSON(http.StatusOK, gin.H{
		"access_token": accessToken,
		"expires_in":   expiresIn,
		"user":         user,
	})
}

// Logout flushes pending syncs and evicts the user's store set.
func (ah *AuthHandler) Logout(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no request data in context"})
		return
	}
	// Eviction flushes with a background context so a cancelled request
	// cannot drop the final sync.
	ah.registry.Evict(context.WithoutCancel(c.Request.Context()), rd.UserID)
	c.JSON(http.StatusOK, gin.H{"message": "logged out successfully"})
}
