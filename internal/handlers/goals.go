package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aurevo/aurevo-server/internal/store"
	"github.com/aurevo/aurevo-server/internal/types"
)

type GoalHandler struct {
	registry *store.Registry
}

func NewGoalHandler(registry *store.Registry) *GoalHandler {
	return &GoalHandler{registry: registry}
}

func (gh *GoalHandler) Create(c *gin.Context) {
	set, ok := userStores(c, gh.registry)
	if !ok {
		return
	}
	var req store.GoalInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	goal, err := set.Goals.Create(c.Request.Context(), req)
	if err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, goal)
}

func (gh *GoalHandler) UpdateProgress(c *gin.Context) {
	set, ok := userStores(c, gh.registry)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid goal id"})
		return
	}
	var req struct {
		Progress int `json:"progress"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	goal, result, err := set.Goals.UpdateProgress(c.Request.Context(), id, req.Progress)
	if err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, gin.H{"goal": goal, "sync": result.Status})
}

func (gh *GoalHandler) SetStatus(c *gin.Context) {
	set, ok := userStores(c, gh.registry)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid goal id"})
		return
	}
	var req struct {
		Status types.GoalStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	goal, result, err := set.Goals.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, gin.H{"goal": goal, "sync": result.Status})
}

func (gh *GoalHandler) SetArchived(c *gin.Context) {
	set, ok := userStores(c, gh.registry)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid goal id"})
		return
	}
	var req struct {
		Archived bool `json:"archived"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	goal, result, err := set.Goals.SetArchived(c.Request.Context(), id, req.Archived)
	if err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, gin.H{"goal": goal, "sync": result.Status})
}

func (gh *GoalHandler) AddDependency(c *gin.Context) {
	gh.mutateDependency(c, true)
}

func (gh *GoalHandler) RemoveDependency(c *gin.Context) {
	gh.mutateDependency(c, false)
}

func (gh *GoalHandler) mutateDependency(c *gin.Context, add bool) {
	set, ok := userStores(c, gh.registry)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid goal id"})
		return
	}
	var req struct {
		DependsOn uuid.UUID `json:"depends_on"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	var result store.SyncResult
	if add {
		result, err = set.Goals.AddDependency(c.Request.Context(), id, req.DependsOn)
	} else {
		result, err = set.Goals.RemoveDependency(c.Request.Context(), id, req.DependsOn)
	}
	if err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, gin.H{"sync": result.Status})
}

func (gh *GoalHandler) Delete(c *gin.Context) {
	set, ok := userStores(c, gh.registry)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid goal id"})
		return
	}
	result, err := set.Goals.Delete(c.Request.Context(), id)
	if err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, gin.H{"sync": result.Status})
}

func (gh *GoalHandler) List(c *gin.Context) {
	set, ok := userStores(c, gh.registry)
	if !ok {
		return
	}
	RespondOK(c, gin.H{"goals": set.Goals.Goals()})
}
