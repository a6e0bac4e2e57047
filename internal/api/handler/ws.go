package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"threadtalk/backend/internal/chathub"
	"threadtalk/backend/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten for production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket authenticates the handshake and upgrades the connection.
// The token is verified and the identity bound to the client before it is
// registered with the hub; a connection without a valid token is refused
// and never reaches the connection table.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	raw := extractToken(c)
	if raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	identity, err := h.Tokens.Verify(raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written its own error response.
		return
	}

	client := &chathub.WebSocketClient{
		ConnID:      uuid.New().String(),
		UserID:      identity.ID,
		DisplayName: identity.DisplayName,
		Conn:        conn,
		Hub:         h.Hub,
		Send:        make(chan models.ServerEvent, 256),
	}

	h.Hub.RegisterCh <- client
	client.Run()
}
