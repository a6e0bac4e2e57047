package models

import "time"

// Client→server event types.
const (
	ClientEventSubscribe = "subscribe"
)

// Server→client event types.
const (
	EventNewMessage            = "new_message"
	EventParticipantSubscribed = "participant_subscribed"
)

// ClientEvent is what a live connection may send over the socket.
type ClientEvent struct {
	Type     string `json:"type"`
	ThreadID uint   `json:"thread_id"`
}

// SenderInfo identifies the originator of a broadcast payload.
type SenderInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// MessagePayload is the broadcast shape of a persisted message.
type MessagePayload struct {
	ID        uint       `json:"id"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	Sender    SenderInfo `json:"sender"`
}

// ServerEvent is the delivery envelope pushed to subscribers of a thread.
// IsFromCurrentUser is stamped per recipient just before the write: the
// author's own subscribed connections see true, everyone else false.
type ServerEvent struct {
	Type              string          `json:"type"`
	ThreadID          uint            `json:"thread_id"`
	Message           *MessagePayload `json:"message,omitempty"`
	User              *SenderInfo     `json:"user,omitempty"`
	IsFromCurrentUser bool            `json:"is_from_current_user"`
}

// NewMessageEvent shapes a persisted message and its sender into the
// envelope template handed to the room registry for publish.
func NewMessageEvent(msg *Message, sender Identity) ServerEvent {
	return ServerEvent{
		Type:     EventNewMessage,
		ThreadID: msg.ThreadID,
		Message: &MessagePayload{
			ID:        msg.ID,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
			Sender:    SenderInfo{ID: sender.ID, DisplayName: sender.DisplayName},
		},
	}
}

// NewParticipantSubscribedEvent announces that a participant's connection
// joined a thread's room. Informational only.
func NewParticipantSubscribedEvent(threadID uint, who Identity) ServerEvent {
	return ServerEvent{
		Type:     EventParticipantSubscribed,
		ThreadID: threadID,
		User:     &SenderInfo{ID: who.ID, DisplayName: who.DisplayName},
	}
}
