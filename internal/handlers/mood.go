package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aurevo/aurevo-server/internal/store"
)

type MoodHandler struct {
	registry *store.Registry
}

func NewMoodHandler(registry *store.Registry) *MoodHandler {
	return &MoodHandler{registry: registry}
}

func (mh *MoodHandler) LogMood(c *gin.Context) {
	set, ok := userStores(c, mh.registry)
	if !ok {
		return
	}
	var req store.MoodInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	entry, err := set.Mood.Log(c.Request.Context(), req)
	if err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, entry)
}

func (mh *MoodHandler) ListMoods(c *gin.Context) {
	set, ok := userStores(c, mh.registry)
	if !ok {
		return
	}
	RespondOK(c, gin.H{"moods": set.Mood.Logs()})
}

func (mh *MoodHandler) AddJournal(c *gin.Context) {
	set, ok := userStores(c, mh.registry)
	if !ok {
		return
	}
	var req struct {
		Title   string   `json:"title"`
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	entry, err := set.Mood.AddJournal(c.Request.Context(), req.Title, req.Content, req.Tags)
	if err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, entry)
}

func (mh *MoodHandler) ListJournal(c *gin.Context) {
	set, ok := userStores(c, mh.registry)
	if !ok {
		return
	}
	RespondOK(c, gin.H{"entries": set.Mood.Journal()})
}
