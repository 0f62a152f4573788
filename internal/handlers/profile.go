package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aurevo/aurevo-server/internal/store"
)

type ProfileHandler struct {
	registry *store.Registry
}

func NewProfileHandler(registry *store.Registry) *ProfileHandler {
	return &ProfileHandler{registry: registry}
}

func (ph *ProfileHandler) GetProfile(c *gin.Context) {
	set, ok := userStores(c, ph.registry)
	if !ok {
		return
	}
	RespondOK(c, set.Profile.Profile())
}

func (ph *ProfileHandler) UpdateSettings(c *gin.Context) {
	set, ok := userStores(c, ph.registry)
	if !ok {
		return
	}
	var req struct {
		Language             *string `json:"language"`
		DarkMode             *bool   `json:"dark_mode"`
		NotificationsEnabled *bool   `json:"notifications_enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	ctx := c.Request.Context()
	if req.Language != nil {
		set.Profile.SetLanguage(ctx, *req.Language)
	}
	if req.DarkMode != nil {
		set.Profile.SetDarkMode(ctx, *req.DarkMode)
	}
	if req.NotificationsEnabled != nil {
		set.Profile.SetNotificationsEnabled(ctx, *req.NotificationsEnabled)
	}
	RespondOK(c, set.Profile.Profile())
}

func (ph *ProfileHandler) SetAvatar(c *gin.Context) {
	set, ok := userStores(c, ph.registry)
	if !ok {
		return
	}
	var req struct {
		Avatar string `json:"avatar"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := set.Profile.SetCurrentAvatar(c.Request.Context(), req.Avatar); err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, set.Profile.Profile())
}

func (ph *ProfileHandler) SetWellnessGoals(c *gin.Context) {
	set, ok := userStores(c, ph.registry)
	if !ok {
		return
	}
	var req struct {
		WaterGoalML  int     `json:"water_goal_ml"`
		CalorieGoal  int     `json:"calorie_goal"`
		StepGoal     int     `json:"step_goal"`
		SleepGoalHrs float64 `json:"sleep_goal_hrs"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	set.Profile.SetWellnessGoals(c.Request.Context(), req.WaterGoalML, req.CalorieGoal, req.StepGoal, req.SleepGoalHrs)
	RespondOK(c, set.Profile.Profile())
}
