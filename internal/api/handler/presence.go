package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Presence lists the IDs of users with at least one live connection.
func (h *Handler) Presence(c *gin.Context) {
	online, err := h.Storage.OnlineUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load presence"})
		return
	}
	if online == nil {
		online = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"online": online})
}
