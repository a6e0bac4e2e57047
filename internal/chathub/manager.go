package chathub

import (
	"log"

	"threadtalk/backend/internal/metrics"
	"threadtalk/backend/internal/models"
	"threadtalk/backend/internal/storage"
)

// Hub owns the table of live connections and the room registry. All
// registration and teardown flows through its channels and is applied by
// the single Run goroutine, so no closed connection can linger in a room:
// unregistering a client always removes it from every thread set first.
type Hub struct {
	// Clients maps connection ID to client. Mutated only by Run.
	Clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client

	Rooms   *RoomRegistry
	Storage storage.Storage

	// userConns counts live connections per user so presence flips only on
	// the first connect and the last disconnect.
	userConns map[string]int
}

// NewHub creates a hub backed by the given storage.
func NewHub(s storage.Storage) *Hub {
	return &Hub{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		Rooms:        NewRoomRegistry(),
		Storage:      s,
		userConns:    make(map[string]int),
	}
}

// Run is the hub dispatcher goroutine. Started once from main.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.RegisterCh:
			h.register(client)
		case client := <-h.UnregisterCh:
			h.unregister(client)
		}
	}
}

func (h *Hub) register(c Client) {
	h.Clients[c.GetConnID()] = c
	h.userConns[c.GetUserID()]++
	metrics.ConnectionsActive.Inc()

	if h.userConns[c.GetUserID()] == 1 {
		if err := h.Storage.MarkOnline(c.GetUserID()); err != nil {
			log.Printf("WARN: Failed to mark user %s online: %v", c.GetUserID(), err)
		}
	}
	log.Printf("Client %s registered for user %s", c.GetConnID(), c.GetUserID())
}

func (h *Hub) unregister(c Client) {
	connID := c.GetConnID()
	if _, ok := h.Clients[connID]; !ok {
		return
	}
	delete(h.Clients, connID)
	h.Rooms.UnsubscribeAll(connID)
	c.Close()
	metrics.ConnectionsActive.Dec()

	h.userConns[c.GetUserID()]--
	if h.userConns[c.GetUserID()] <= 0 {
		delete(h.userConns, c.GetUserID())
		if err := h.Storage.MarkOffline(c.GetUserID()); err != nil {
			log.Printf("WARN: Failed to mark user %s offline: %v", c.GetUserID(), err)
		}
	}
	log.Printf("Client %s unregistered", connID)
}

// Subscribe adds a connection to a thread's room after re-checking that
// the bound identity is a participant. Subscription can happen long after
// the handshake, so the check is never trusted from connection state.
// Unauthorized subscribes are ignored silently: no event is delivered and
// nothing is surfaced to other participants.
func (h *Hub) Subscribe(c Client, threadID uint) {
	ok, err := h.Storage.IsParticipant(threadID, c.GetUserID())
	if err != nil {
		log.Printf("ERROR: Participation check failed for user %s thread %d: %v", c.GetUserID(), threadID, err)
		return
	}
	if !ok {
		log.Printf("WARN: Ignoring subscribe to thread %d from non-participant %s", threadID, c.GetUserID())
		return
	}

	if !h.Rooms.Subscribe(threadID, c) {
		// Duplicate subscribe from the same connection: membership is
		// unchanged, so don't re-announce or re-count it.
		return
	}
	metrics.SubscriptionsTotal.Inc()

	who := models.Identity{ID: c.GetUserID(), DisplayName: c.GetDisplayName()}
	h.Rooms.Publish(threadID, models.NewParticipantSubscribedEvent(threadID, who), c.GetUserID())
}

// Publish fans the envelope out to the thread's live subscribers. A publish
// that finds no subscribers is a no-op, not an error: the message is
// already durable and a later history fetch returns it.
func (h *Hub) Publish(ev models.ServerEvent, senderID string) {
	delivered := h.Rooms.Publish(ev.ThreadID, ev, senderID)
	if delivered == 0 {
		log.Printf("No live subscribers for thread %d", ev.ThreadID)
		return
	}
	metrics.EventsDelivered.Add(float64(delivered))
}
