package models

import "gorm.io/gorm"

// Message is a single immutable chat message. The embedded gorm.Model
// provides the monotonic ID and CreatedAt used as the ordering key
// (created_at asc, id asc — the id breaks clock-resolution ties).
type Message struct {
	gorm.Model

	// ThreadID is the thread the message belongs to.
	ThreadID uint `gorm:"not null;index:idx_thread_msg" json:"thread_id"`
	// SenderID must be a participant of ThreadID at submission time;
	// enforced by the submission handler, not by the schema.
	SenderID string `gorm:"type:text;not null;index:idx_thread_msg" json:"sender_id"`
	// Content is the message text.
	Content string `gorm:"type:text;not null" json:"content"`
}
