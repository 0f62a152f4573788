package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aurevo/aurevo-server/internal/store"
)

type SocialHandler struct {
	registry *store.Registry
}

func NewSocialHandler(registry *store.Registry) *SocialHandler {
	return &SocialHandler{registry: registry}
}

func (sh *SocialHandler) CreatePost(c *gin.Context) {
	set, ok := userStores(c, sh.registry)
	if !ok {
		return
	}
	var req struct {
		Content   string   `json:"content"`
		MediaURLs []string `json:"media_urls"`
		Tags      []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	post, err := set.Social.CreatePost(c.Request.Context(), req.Content, req.MediaURLs, req.Tags)
	if err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, post)
}

func (sh *SocialHandler) ToggleLike(c *gin.Context) {
	set, ok := userStores(c, sh.registry)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}
	post, liked, result, err := set.Social.ToggleLike(c.Request.Context(), id)
	if err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, gin.H{"post": post, "liked": liked, "sync": result.Status})
}

func (sh *SocialHandler) SetPinned(c *gin.Context) {
	set, ok := userStores(c, sh.registry)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}
	var req struct {
		Pinned bool `json:"pinned"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	post, result, err := set.Social.SetPinned(c.Request.Context(), id, req.Pinned)
	if err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, gin.H{"post": post, "sync": result.Status})
}

func (sh *SocialHandler) DeletePost(c *gin.Context) {
	set, ok := userStores(c, sh.registry)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}
	result, err := set.Social.DeletePost(c.Request.Context(), id)
	if err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, gin.H{"sync": result.Status})
}

func (sh *SocialHandler) AddComment(c *gin.Context) {
	set, ok := userStores(c, sh.registry)
	if !ok {
		return
	}
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}
	var req struct {
		ParentID *uuid.UUID `json:"parent_id"`
		Content  string     `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	comment, err := set.Social.AddComment(c.Request.Context(), postID, req.ParentID, req.Content)
	if err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, comment)
}

func (sh *SocialHandler) ToggleReaction(c *gin.Context) {
	set, ok := userStores(c, sh.registry)
	if !ok {
		return
	}
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}
	commentID, err := uuid.Parse(c.Param("commentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return
	}
	var req struct {
		Reaction string `json:"reaction"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	comment, added, result, err := set.Social.ToggleReaction(c.Request.Context(), postID, commentID, req.Reaction)
	if err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, gin.H{"comment": comment, "added": added, "sync": result.Status})
}

func (sh *SocialHandler) Feed(c *gin.Context) {
	set, ok := userStores(c, sh.registry)
	if !ok {
		return
	}
	RespondOK(c, gin.H{"posts": set.Social.Feed()})
}

func (sh *SocialHandler) Comments(c *gin.Context) {
	set, ok := userStores(c, sh.registry)
	if !ok {
		return
	}
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}
	RespondOK(c, gin.H{"comments": set.Social.Comments(postID)})
}
