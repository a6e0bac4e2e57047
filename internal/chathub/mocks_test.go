package chathub_test

import (
	"github.com/stretchr/testify/mock"

	"threadtalk/backend/internal/models"
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

// MockClient is a test double for the chathub.Client interface. Events
// pushed by the hub land in RecvChannel.
type MockClient struct {
	connID      string
	userID      string
	displayName string
	RecvChannel chan models.ServerEvent
	Closed      bool
}

func newMockClient(connID, userID string) *MockClient {
	return &MockClient{
		connID:      connID,
		userID:      userID,
		displayName: "User " + userID,
		RecvChannel: make(chan models.ServerEvent, 10), // Buffered to prevent blocking in tests
	}
}

func (c *MockClient) GetConnID() string      { return c.connID }
func (c *MockClient) GetUserID() string      { return c.userID }
func (c *MockClient) GetDisplayName() string { return c.displayName }

func (c *MockClient) GetSendChannel() chan<- models.ServerEvent { return c.RecvChannel }

func (c *MockClient) Run() {}

func (c *MockClient) Close() {
	c.Closed = true
}

// DrainEvents empties the receive channel and returns everything in it.
func (c *MockClient) DrainEvents() []models.ServerEvent {
	var events []models.ServerEvent
	for {
		select {
		case ev := <-c.RecvChannel:
			events = append(events, ev)
		default:
			return events
		}
	}
}
