package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aurevo/aurevo-server/internal/store"
)

type TaskHandler struct {
	registry *store.Registry
}

func NewTaskHandler(registry *store.Registry) *TaskHandler {
	return &TaskHandler{registry: registry}
}

func (th *TaskHandler) Create(c *gin.Context) {
	set, ok := userStores(c, th.registry)
	if !ok {
		return
	}
	var req store.TaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	task, err := set.Tasks.Create(c.Request.Context(), req)
	if err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, task)
}

func (th *TaskHandler) Update(c *gin.Context) {
	set, ok := userStores(c, th.registry)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}
	var patch store.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	task, result, err := set.Tasks.Update(c.Request.Context(), id, patch)
	if err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, gin.H{"task": task, "sync": result.Status})
}

func (th *TaskHandler) ToggleComplete(c *gin.Context) {
	set, ok := userStores(c, th.registry)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}
	task, result, err := set.Tasks.ToggleComplete(c.Request.Context(), id)
	if err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, gin.H{"task": task, "sync": result.Status})
}

func (th *TaskHandler) Delete(c *gin.Context) {
	set, ok := userStores(c, th.registry)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}
	result, err := set.Tasks.Delete(c.Request.Context(), id)
	if err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, gin.H{"sync": result.Status})
}

func (th *TaskHandler) List(c *gin.Context) {
	set, ok := userStores(c, th.registry)
	if !ok {
		return
	}
	RespondOK(c, gin.H{"tasks": set.Tasks.Tasks()})
}
