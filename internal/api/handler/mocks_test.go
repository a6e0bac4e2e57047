package handler_test

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"threadtalk/backend/internal/api/handler"
	"threadtalk/backend/internal/models"
	"threadtalk/backend/internal/token"
)

// MockStorage is a testify mock of the storage.Storage interface.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) GetUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetOrCreateThread(userID, otherUserID string) (*models.Thread, error) {
	args := m.Called(userID, otherUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Thread), args.Error(1)
}

func (m *MockStorage) ListThreadsForUser(userID string) ([]models.Thread, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Thread), args.Error(1)
}

func (m *MockStorage) ListParticipants(threadID uint) ([]models.User, error) {
	args := m.Called(threadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStorage) IsParticipant(threadID uint, userID string) (bool, error) {
	args := m.Called(threadID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) CreateMessage(msg *models.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) ListThreadMessages(threadID uint) ([]models.Message, error) {
	args := m.Called(threadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStorage) MarkOnline(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) MarkOffline(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) OnlineUsers() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// recordingPublisher captures everything the submit path hands to delivery.
type recordingPublisher struct {
	Events  []models.ServerEvent
	Senders []string
}

func (p *recordingPublisher) Publish(ev models.ServerEvent, senderID string) {
	p.Events = append(p.Events, ev)
	p.Senders = append(p.Senders, senderID)
}

const testSecret = "test-secret"

// newTestRouter builds a gin engine with the same route layout as main,
// backed by the given mocks.
func newTestRouter(storageMock *MockStorage, pub *recordingPublisher) (*gin.Engine, *token.Service) {
	gin.SetMode(gin.TestMode)

	tokens := token.NewService([]byte(testSecret), time.Hour)
	h := &handler.Handler{
		Storage:   storageMock,
		Tokens:    tokens,
		Publisher: pub,
		TokenTTL:  time.Hour,
	}

	r := gin.New()
	r.POST("/api/login", h.Login)
	r.POST("/api/logout", h.Logout)
	r.GET("/api/session", h.Session)

	authed := r.Group("/api", h.AuthRequired())
	authed.POST("/threads", h.CreateThread)
	authed.GET("/threads", h.ListThreads)
	authed.GET("/threads/:id/messages", h.ListMessages)
	authed.POST("/threads/:id/messages", h.SubmitMessage)
	authed.GET("/presence", h.Presence)

	return r, tokens
}

func issueFor(tokens *token.Service, id, name string) string {
	raw, err := tokens.Issue(&models.User{ID: id, DisplayName: name})
	if err != nil {
		panic(err)
	}
	return raw
}

// expiredTokenFor signs a token that was already expired at issue time.
func expiredTokenFor(id, name string) string {
	expired := token.NewService([]byte(testSecret), -time.Minute)
	raw, err := expired.Issue(&models.User{ID: id, DisplayName: name})
	if err != nil {
		panic(err)
	}
	return raw
}
