package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aurevo/aurevo-server/internal/store"
)

type SessionHandler struct {
	registry *store.Registry
}

func NewSessionHandler(registry *store.Registry) *SessionHandler {
	return &SessionHandler{registry: registry}
}

func (sh *SessionHandler) Record(c *gin.Context) {
	set, ok := userStores(c, sh.registry)
	if !ok {
		return
	}
	var req struct {
		Subject     string     `json:"subject"`
		GoalID      *uuid.UUID `json:"goal_id"`
		DurationMin int        `json:"duration_min"`
		StartedAt   time.Time  `json:"started_at"`
		EndedAt     time.Time  `json:"ended_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	session, err := set.Sessions.Record(c.Request.Context(), req.Subject, req.GoalID, req.DurationMin, req.StartedAt, req.EndedAt)
	if err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, session)
}

func (sh *SessionHandler) List(c *gin.Context) {
	set, ok := userStores(c, sh.registry)
	if !ok {
		return
	}
	RespondOK(c, gin.H{"sessions": set.Sessions.Sessions()})
}

func (sh *SessionHandler) StartFocus(c *gin.Context) {
	set, ok := userStores(c, sh.registry)
	if !ok {
		return
	}
	var req struct {
		Subject string     `json:"subject"`
		GoalID  *uuid.UUID `json:"goal_id"`
		Seconds int        `json:"seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := set.Sessions.StartFocus(req.Subject, req.GoalID, req.Seconds); err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, set.Sessions.FocusState())
}

func (sh *SessionHandler) PauseFocus(c *gin.Context) {
	set, ok := userStores(c, sh.registry)
	if !ok {
		return
	}
	if err := set.Sessions.PauseFocus(); err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, set.Sessions.FocusState())
}

func (sh *SessionHandler) ResumeFocus(c *gin.Context) {
	set, ok := userStores(c, sh.registry)
	if !ok {
		return
	}
	if err := set.Sessions.ResumeFocus(); err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, set.Sessions.FocusState())
}

func (sh *SessionHandler) StopFocus(c *gin.Context) {
	set, ok := userStores(c, sh.registry)
	if !ok {
		return
	}
	if err := set.Sessions.StopFocus(); err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "focus session discarded"})
}

func (sh *SessionHandler) FocusState(c *gin.Context) {
	set, ok := userStores(c, sh.registry)
	if !ok {
		return
	}
	RespondOK(c, set.Sessions.FocusState())
}
