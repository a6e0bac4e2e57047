package handler

import (
	"time"

	"threadtalk/backend/internal/chathub"
	"threadtalk/backend/internal/storage"
	"threadtalk/backend/internal/token"
)

// Handler wires the HTTP API to the hub, the durable store and the token
// service. Publisher is the hub in production and a no-op or recording
// double in tests.
type Handler struct {
	Hub       *chathub.Hub
	Storage   storage.Storage
	Tokens    *token.Service
	Publisher chathub.Publisher
	TokenTTL  time.Duration
}

func NewHandler(hub *chathub.Hub, s storage.Storage, tokens *token.Service, tokenTTL time.Duration) *Handler {
	return &Handler{
		Hub:       hub,
		Storage:   s,
		Tokens:    tokens,
		Publisher: hub,
		TokenTTL:  tokenTTL,
	}
}
