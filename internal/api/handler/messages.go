package handler

import (
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"threadtalk/backend/internal/metrics"
	"threadtalk/backend/internal/models"
)

// maxContentRunes caps message content length, counted in code points.
const maxContentRunes = 2000

type submitMessageRequest struct {
	Content string `json:"content"`
}

// SubmitMessage runs the submit path: validate, authorize, persist
// atomically, then fan out. Delivery only ever starts after the commit,
// and a delivery miss never fails the request — the caller gets its own
// copy back either way.
func (h *Handler) SubmitMessage(c *gin.Context) {
	identity := currentIdentity(c)

	threadID, ok := threadIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread id"})
		return
	}

	var req submitMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message content must not be empty"})
		return
	}
	if utf8.RuneCountInString(content) > maxContentRunes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message content too long"})
		return
	}

	// A missing thread and a thread the caller does not belong to get the
	// same answer, so thread existence cannot be probed.
	participant, err := h.Storage.IsParticipant(threadID, identity.ID)
	if err != nil {
		log.Printf("ERROR: Participation check failed for thread %d: %v", threadID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}
	if !participant {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	msg := &models.Message{
		ThreadID: threadID,
		SenderID: identity.ID,
		Content:  content,
	}
	if err := h.Storage.CreateMessage(msg); err != nil {
		log.Printf("ERROR: Failed to save message for thread %d: %v", threadID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}
	metrics.MessagesPosted.Inc()

	ev := models.NewMessageEvent(msg, identity)
	h.Publisher.Publish(ev, identity.ID)

	ack := ev
	ack.IsFromCurrentUser = true
	c.JSON(http.StatusCreated, ack)
}

// ListMessages returns a thread's history, oldest first. The same durable
// rows back both this endpoint and delivery, so a reconnecting client's
// fetch always includes anything it missed while offline.
func (h *Handler) ListMessages(c *gin.Context) {
	identity := currentIdentity(c)

	threadID, ok := threadIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread id"})
		return
	}

	participant, err := h.Storage.IsParticipant(threadID, identity.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list messages"})
		return
	}
	if !participant {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	messages, err := h.Storage.ListThreadMessages(threadID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list messages"})
		return
	}

	users, err := h.Storage.ListParticipants(threadID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list messages"})
		return
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.DisplayName
	}

	payloads := make([]models.MessagePayload, 0, len(messages))
	for _, m := range messages {
		payloads = append(payloads, models.MessagePayload{
			ID:        m.ID,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
			Sender:    models.SenderInfo{ID: m.SenderID, DisplayName: names[m.SenderID]},
		})
	}
	c.JSON(http.StatusOK, gin.H{"thread_id": threadID, "messages": payloads})
}
