package storage

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"threadtalk/backend/internal/models"
)

// Sentinel errors returned by the storage layer. Handlers map them to
// response statuses.
var (
	// ErrNotFound means the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSelfThread means a thread was requested between a user and themselves.
	ErrSelfThread = errors.New("cannot create a thread with yourself")
)

// Storage is the durable-store collaborator boundary. Everything the core
// needs from PostgreSQL and Redis goes through this interface so the hub
// and the handlers can be tested against mocks.
type Storage interface {
	CreateUser(user *models.User) error
	GetUserByID(id string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)

	GetOrCreateThread(userID, otherUserID string) (*models.Thread, error)
	ListThreadsForUser(userID string) ([]models.Thread, error)
	ListParticipants(threadID uint) ([]models.User, error)
	IsParticipant(threadID uint, userID string) (bool, error)

	CreateMessage(msg *models.Message) error
	ListThreadMessages(threadID uint) ([]models.Message, error)

	MarkOnline(userID string) error
	MarkOffline(userID string) error
	OnlineUsers() ([]string, error)
}

// Service implements Storage on top of GORM/PostgreSQL and Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService constructs the storage service. rdb may be nil in
// contexts that never touch presence (cmd/admin).
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// CreateUser inserts a new user row. The BeforeCreate hook assigns the ID.
func (s *Service) CreateUser(user *models.User) error {
	return s.DB.Create(user).Error
}

// GetUserByID loads a user by primary key.
func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername loads a user by unique login name.
func (s *Service) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetOrCreateThread returns the existing two-party thread between the two
// users, or creates the thread together with both participation rows in one
// transaction. Idempotent: calling it twice yields the same thread.
func (s *Service) GetOrCreateThread(userID, otherUserID string) (*models.Thread, error) {
	if userID == otherUserID {
		return nil, ErrSelfThread
	}

	var thread models.Thread
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// Serialize concurrent creates for the same pair across sessions;
		// the advisory lock is released when the transaction ends. Without
		// it two racing calls can both miss the find and both create.
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", pairKey(userID, otherUserID)).Error; err != nil {
			return err
		}

		err := tx.
			Joins("JOIN thread_participations p1 ON p1.thread_id = threads.id AND p1.user_id = ?", userID).
			Joins("JOIN thread_participations p2 ON p2.thread_id = threads.id AND p2.user_id = ?", otherUserID).
			First(&thread).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now()
		thread = models.Thread{LastActivityAt: now}
		if err := tx.Create(&thread).Error; err != nil {
			return err
		}
		participations := []models.ThreadParticipation{
			{ThreadID: thread.ID, UserID: userID, JoinedAt: now},
			{ThreadID: thread.ID, UserID: otherUserID, JoinedAt: now},
		}
		return tx.Create(&participations).Error
	})
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// pairKey is the order-independent advisory-lock key for a user pair:
// both argument orders must contend on the same lock.
func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}

// ListThreadsForUser returns the user's threads, most recently active first.
func (s *Service) ListThreadsForUser(userID string) ([]models.Thread, error) {
	var threads []models.Thread
	err := s.DB.
		Joins("JOIN thread_participations p ON p.thread_id = threads.id AND p.user_id = ?", userID).
		Order("threads.last_activity_at DESC").
		Find(&threads).Error
	if err != nil {
		log.Printf("ERROR: Failed to list threads for user %s: %v", userID, err)
		return nil, err
	}
	return threads, nil
}

// ListParticipants returns the users participating in a thread.
func (s *Service) ListParticipants(threadID uint) ([]models.User, error) {
	var users []models.User
	err := s.DB.
		Joins("JOIN thread_participations p ON p.user_id = users.id AND p.thread_id = ?", threadID).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// IsParticipant reports whether the user belongs to the thread. A missing
// thread and a missing participation are indistinguishable here, which is
// what the authorization path wants.
func (s *Service) IsParticipant(threadID uint, userID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.ThreadParticipation{}).
		Where("thread_id = ? AND user_id = ?", threadID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateMessage inserts the message row and advances the thread's
// last_activity_at as a single transaction. Either both land or neither
// does; delivery must only ever run after this returns nil.
func (s *Service) CreateMessage(msg *models.Message) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Thread{}).
			Where("id = ?", msg.ThreadID).
			Update("last_activity_at", msg.CreatedAt).Error
	})
}

// ListThreadMessages returns the full history of a thread, oldest first.
// The insertion id breaks created_at ties.
func (s *Service) ListThreadMessages(threadID uint) ([]models.Message, error) {
	var messages []models.Message
	err := s.DB.
		Where("thread_id = ?", threadID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		log.Printf("ERROR: Failed to get messages for thread %d: %v", threadID, err)
		return nil, err
	}
	return messages, nil
}
