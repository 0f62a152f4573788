package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aurevo/aurevo-server/internal/store"
	"github.com/aurevo/aurevo-server/internal/types"
)

type HabitHandler struct {
	registry *store.Registry
}

func NewHabitHandler(registry *store.Registry) *HabitHandler {
	return &HabitHandler{registry: registry}
}

func (hh *HabitHandler) Create(c *gin.Context) {
	set, ok := userStores(c, hh.registry)
	if !ok {
		return
	}
	var req struct {
		Title    string              `json:"title"`
		Schedule types.HabitSchedule `json:"schedule"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	habit, err := set.Habits.Create(c.Request.Context(), req.Title, req.Schedule)
	if err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, habit)
}

func (hh *HabitHandler) LogCompletion(c *gin.Context) {
	set, ok := userStores(c, hh.registry)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit id"})
		return
	}
	var req struct {
		Value float64 `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	habit, result, err := set.Habits.LogCompletion(c.Request.Context(), id, req.Value)
	if err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, gin.H{"habit": habit, "sync": result.Status})
}

func (hh *HabitHandler) SetActive(c *gin.Context) {
	set, ok := userStores(c, hh.registry)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit id"})
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	habit, result, err := set.Habits.SetActive(c.Request.Context(), id, req.Active)
	if err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, gin.H{"habit": habit, "sync": result.Status})
}

func (hh *HabitHandler) Delete(c *gin.Context) {
	set, ok := userStores(c, hh.registry)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit id"})
		return
	}
	result, err := set.Habits.Delete(c.Request.Context(), id)
	if err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, gin.H{"sync": result.Status})
}

func (hh *HabitHandler) Heatmap(c *gin.Context) {
	set, ok := userStores(c, hh.registry)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit id"})
		return
	}
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	RespondOK(c, gin.H{"heatmap": set.Habits.Heatmap(id, days)})
}

func (hh *HabitHandler) List(c *gin.Context) {
	set, ok := userStores(c, hh.registry)
	if !ok {
		return
	}
	RespondOK(c, gin.H{"habits": set.Habits.Habits()})
}
