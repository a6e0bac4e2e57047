package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"threadtalk/backend/internal/models"
	"threadtalk/backend/internal/storage"
)

type createThreadRequest struct {
	Username string `json:"username" binding:"required"`
}

type threadView struct {
	ID             uint              `json:"id"`
	CreatedAt      time.Time         `json:"created_at"`
	LastActivityAt time.Time         `json:"last_activity_at"`
	Participants   []models.Identity `json:"participants"`
}

func (h *Handler) threadView(t models.Thread) (threadView, error) {
	users, err := h.Storage.ListParticipants(t.ID)
	if err != nil {
		return threadView{}, err
	}
	view := threadView{
		ID:             t.ID,
		CreatedAt:      t.CreatedAt,
		LastActivityAt: t.LastActivityAt,
		Participants:   make([]models.Identity, 0, len(users)),
	}
	for _, u := range users {
		view.Participants = append(view.Participants, u.Identity())
	}
	return view, nil
}

// CreateThread opens a conversation with the named user. Idempotent: if a
// thread between the two identities already exists it is returned as-is,
// with no duplicate thread or participation rows.
func (h *Handler) CreateThread(c *gin.Context) {
	identity := currentIdentity(c)

	var req createThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	target, err := h.Storage.GetUserByUsername(req.Username)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to load user %s: %v", req.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create thread"})
		return
	}

	thread, err := h.Storage.GetOrCreateThread(identity.ID, target.ID)
	if errors.Is(err, storage.ErrSelfThread) {
		c.JSON(http.StatusConflict, gin.H{"error": "cannot start a thread with yourself"})
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to create thread for %s and %s: %v", identity.ID, target.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create thread"})
		return
	}

	view, err := h.threadView(*thread)
	if err != nil {
		log.Printf("ERROR: Failed to load participants for thread %d: %v", thread.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create thread"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListThreads returns the caller's threads, most recently active first.
func (h *Handler) ListThreads(c *gin.Context) {
	identity := currentIdentity(c)

	threads, err := h.Storage.ListThreadsForUser(identity.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list threads"})
		return
	}

	views := make([]threadView, 0, len(threads))
	for _, t := range threads {
		view, err := h.threadView(t)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list threads"})
			return
		}
		views = append(views, view)
	}
	c.JSON(http.StatusOK, gin.H{"threads": views})
}

// threadIDParam parses the :id path segment as a positive integer.
func threadIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
