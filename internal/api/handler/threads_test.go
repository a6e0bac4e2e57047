package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"threadtalk/backend/internal/models"
	"threadtalk/backend/internal/storage"
)

func TestCreateThreadIdempotent(t *testing.T) {
	storageMock := new(MockStorage)
	bob := &models.User{ID: "user-bob", Username: "bob", DisplayName: "Bob"}
	thread := &models.Thread{ID: 1, LastActivityAt: time.Now()}
	participants := []models.User{
		{ID: "user-alice", DisplayName: "Alice"},
		{ID: "user-bob", DisplayName: "Bob"},
	}
	storageMock.On("GetUserByUsername", "bob").Return(bob, nil)
	storageMock.On("GetOrCreateThread", "user-alice", "user-bob").Return(thread, nil)
	storageMock.On("ListParticipants", uint(1)).Return(participants, nil)

	r, tokens := newTestRouter(storageMock, &recordingPublisher{})
	auth := "Bearer " + issueFor(tokens, "user-alice", "Alice")

	var firstID, secondID uint
	for i, out := range []*uint{&firstID, &secondID} {
		req := httptest.NewRequest(http.MethodPost, "/api/threads",
			strings.NewReader(`{"username":"bob"}`))
		req.Header.Set("Authorization", auth)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "call %d", i+1)
		var body struct {
			ID           uint              `json:"id"`
			Participants []models.Identity `json:"participants"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Len(t, body.Participants, 2)
		*out = body.ID
	}

	assert.Equal(t, firstID, secondID, "both calls must return the same thread")
	storageMock.AssertNumberOfCalls(t, "GetOrCreateThread", 2)
}

func TestCreateThreadUnknownTarget(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("GetUserByUsername", "ghost").Return(nil, storage.ErrNotFound)

	r, tokens := newTestRouter(storageMock, &recordingPublisher{})

	req := httptest.NewRequest(http.MethodPost, "/api/threads",
		strings.NewReader(`{"username":"ghost"}`))
	req.Header.Set("Authorization", "Bearer "+issueFor(tokens, "user-alice", "Alice"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	storageMock.AssertNotCalled(t, "GetOrCreateThread")
}

func TestCreateThreadWithSelfConflicts(t *testing.T) {
	storageMock := new(MockStorage)
	alice := &models.User{ID: "user-alice", Username: "alice", DisplayName: "Alice"}
	storageMock.On("GetUserByUsername", "alice").Return(alice, nil)
	storageMock.On("GetOrCreateThread", "user-alice", "user-alice").Return(nil, storage.ErrSelfThread)

	r, tokens := newTestRouter(storageMock, &recordingPublisher{})

	req := httptest.NewRequest(http.MethodPost, "/api/threads",
		strings.NewReader(`{"username":"alice"}`))
	req.Header.Set("Authorization", "Bearer "+issueFor(tokens, "user-alice", "Alice"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateThreadRequiresAuth(t *testing.T) {
	storageMock := new(MockStorage)
	r, _ := newTestRouter(storageMock, &recordingPublisher{})

	req := httptest.NewRequest(http.MethodPost, "/api/threads",
		strings.NewReader(`{"username":"bob"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	storageMock.AssertNotCalled(t, "GetUserByUsername")
}

func TestListThreadsPreservesActivityOrder(t *testing.T) {
	storageMock := new(MockStorage)
	now := time.Now()
	threads := []models.Thread{
		{ID: 3, LastActivityAt: now},
		{ID: 1, LastActivityAt: now.Add(-time.Hour)},
		{ID: 2, LastActivityAt: now.Add(-2 * time.Hour)},
	}
	storageMock.On("ListThreadsForUser", "user-alice").Return(threads, nil)
	for _, th := range threads {
		storageMock.On("ListParticipants", th.ID).Return([]models.User{
			{ID: "user-alice", DisplayName: "Alice"},
			{ID: "user-bob", DisplayName: "Bob"},
		}, nil)
	}

	r, tokens := newTestRouter(storageMock, &recordingPublisher{})

	req := httptest.NewRequest(http.MethodGet, "/api/threads", nil)
	req.Header.Set("Authorization", "Bearer "+issueFor(tokens, "user-alice", "Alice"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Threads []struct {
			ID uint `json:"id"`
		} `json:"threads"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	ids := make([]uint, 0, len(body.Threads))
	for _, th := range body.Threads {
		ids = append(ids, th.ID)
	}
	assert.Equal(t, []uint{3, 1, 2}, ids)
}

func TestPresenceEndpoint(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("OnlineUsers").Return([]string{"user-alice", "user-bob"}, nil)

	r, tokens := newTestRouter(storageMock, &recordingPublisher{})

	req := httptest.NewRequest(http.MethodGet, "/api/presence", nil)
	req.Header.Set("Authorization", "Bearer "+issueFor(tokens, "user-alice", "Alice"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"online":["user-alice","user-bob"]}`, w.Body.String())
}
