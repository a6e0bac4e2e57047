package chathub

import "threadtalk/backend/internal/models"

// Client is the interface for one live, authenticated connection. It
// abstracts the underlying transport so the hub and the room registry can
// manage websocket clients and test doubles uniformly.
type Client interface {
	// GetConnID returns the unique identifier of this connection. A user
	// with several open clients has several ConnIDs.
	GetConnID() string
	// GetUserID returns the verified identity bound to the connection at
	// handshake time.
	GetUserID() string
	// GetDisplayName returns the display name from the verified identity.
	GetDisplayName() string

	// GetSendChannel returns the channel the hub pushes server events to.
	GetSendChannel() chan<- models.ServerEvent

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts the client down. Safe to call more than once.
	Close()
}
