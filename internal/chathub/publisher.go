package chathub

import "threadtalk/backend/internal/models"

// Publisher is the delivery capability injected into the message
// submission path. The handler always calls it after a successful commit;
// whether anything is listening is the publisher's problem.
type Publisher interface {
	Publish(ev models.ServerEvent, senderID string)
}

// NoopPublisher satisfies Publisher in contexts without live connections,
// such as tests and offline tooling.
type NoopPublisher struct{}

func (NoopPublisher) Publish(models.ServerEvent, string) {}
