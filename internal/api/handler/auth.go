package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"threadtalk/backend/internal/storage"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies the credentials and issues a token. The token is returned
// in the body and also set as a cookie so browser clients get it attached
// to the websocket handshake for free. Unknown user and wrong password
// produce the same response.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	user, err := h.Storage.GetUserByUsername(req.Username)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to load user %s: %v", req.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	raw, err := h.Tokens.Issue(user)
	if err != nil {
		log.Printf("ERROR: Failed to issue token for user %s: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.SetCookie(authCookieName, raw, int(h.TokenTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"token": raw, "user": user.Identity()})
}

// Logout clears the auth cookie. Tokens are stateless, so there is nothing
// to revoke server-side; the token simply ages out.
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(authCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Session reports the identity bound to the presented token, or null when
// there is no usable token. Never an error: an expired token and a missing
// one both mean "not signed in".
func (h *Handler) Session(c *gin.Context) {
	raw := extractToken(c)
	if raw == "" {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	identity, err := h.Tokens.Verify(raw)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": identity})
}
