package chathub

import (
	"sync"

	"threadtalk/backend/internal/models"
)

// room is the set of live connections subscribed to one thread. Each room
// has its own lock so publishes to disjoint threads never block each other,
// while operations on the same thread are serialized and can never observe
// a half-updated member set.
type room struct {
	mu      sync.Mutex
	members map[string]Client // connID → client
}

// RoomRegistry maps thread IDs to subscriber sets, with a reverse index
// from connection ID to thread set for efficient teardown. It holds only
// non-owning references; connection lifetime belongs to the Hub.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[uint]*room
	conns map[string]map[uint]struct{} // connID → subscribed threads
}

// NewRoomRegistry creates an empty registry.
func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms: make(map[uint]*room),
		conns: make(map[string]map[uint]struct{}),
	}
}

// Subscribe adds the connection to the thread's room and reports whether
// the membership is new. The caller is responsible for the participation
// check; the registry only tracks sets. The registry lock is held across
// the member insertion: releasing it first would let a concurrent
// UnsubscribeAll delete the room between lookup and insert, leaving the
// subscriber in an orphaned room no publish can reach.
func (r *RoomRegistry) Subscribe(threadID uint, c Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[threadID]
	if !ok {
		rm = &room{members: make(map[string]Client)}
		r.rooms[threadID] = rm
	}
	threads, ok := r.conns[c.GetConnID()]
	if !ok {
		threads = make(map[uint]struct{})
		r.conns[c.GetConnID()] = threads
	}
	threads[threadID] = struct{}{}

	rm.mu.Lock()
	_, existed := rm.members[c.GetConnID()]
	rm.members[c.GetConnID()] = c
	rm.mu.Unlock()
	return !existed
}

// UnsubscribeAll removes the connection from every room it joined.
// Invoked exactly once per connection teardown; after it returns no
// publish will attempt delivery to that connection.
func (r *RoomRegistry) UnsubscribeAll(connID string) {
	r.mu.Lock()
	threads := r.conns[connID]
	delete(r.conns, connID)

	for threadID := range threads {
		rm := r.rooms[threadID]
		if rm == nil {
			continue
		}
		rm.mu.Lock()
		delete(rm.members, connID)
		empty := len(rm.members) == 0
		rm.mu.Unlock()
		if empty {
			delete(r.rooms, threadID)
		}
	}
	r.mu.Unlock()
}

// Publish delivers a per-recipient copy of the envelope to every
// connection subscribed to the thread. The author flag is stamped per
// recipient: true only for the sender's own connections. Slow or stale
// clients are skipped — delivery is best-effort and the message is already
// durable; a reconnect refetches it from history. Returns the number of
// connections the event was handed to.
func (r *RoomRegistry) Publish(threadID uint, template models.ServerEvent, senderID string) int {
	r.mu.RLock()
	rm := r.rooms[threadID]
	r.mu.RUnlock()
	if rm == nil {
		return 0
	}

	delivered := 0
	rm.mu.Lock()
	for _, c := range rm.members {
		ev := template
		ev.IsFromCurrentUser = c.GetUserID() == senderID
		select {
		case c.GetSendChannel() <- ev:
			delivered++
		default:
			// Send buffer full: the client is too slow or already going
			// away. Drop the event rather than block the whole room.
		}
	}
	rm.mu.Unlock()
	return delivered
}

// Subscribers returns how many connections are currently in the thread's room.
func (r *RoomRegistry) Subscribers(threadID uint) int {
	r.mu.RLock()
	rm := r.rooms[threadID]
	r.mu.RUnlock()
	if rm == nil {
		return 0
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.members)
}
