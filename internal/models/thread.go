package models

import "time"

// Thread is a conversation container with a fixed participant set.
// LastActivityAt is advanced inside the same transaction that inserts a
// message, so thread ordering always matches message history.
type Thread struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `gorm:"index;not null" json:"last_activity_at"`

	Participations []ThreadParticipation `json:"-"`
}

// ThreadParticipation grants one user access to one thread. The composite
// primary key rules out duplicate (thread, user) pairs.
type ThreadParticipation struct {
	ThreadID uint      `gorm:"primaryKey;autoIncrement:false" json:"thread_id"`
	UserID   string    `gorm:"primaryKey" json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}
