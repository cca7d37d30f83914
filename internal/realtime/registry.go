// Package realtime carries the websocket adapter: a session registry with an
// explicit lifecycle, per-post rooms, and event handlers calling the same
// engine as the HTTP handlers.
package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Registry tracks live sessions per user and room membership per post.
// Sessions are added on connect and purged on disconnect; a user may hold
// several at once (multiple tabs/devices).
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]map[*Client]struct{}
	rooms    map[uuid.UUID]map[*Client]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]map[*Client]struct{}),
		rooms:    make(map[uuid.UUID]map[*Client]struct{}),
	}
}

// Register adds a freshly connected client.
func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessions[c.UserID] == nil {
		r.sessions[c.UserID] = make(map[*Client]struct{})
	}
	r.sessions[c.UserID][c] = struct{}{}
}

// Unregister purges a client from its sessions and every room it joined.
func (r *Registry) Unregister(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if set, ok := r.sessions[c.UserID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(r.sessions, c.UserID)
		}
	}
	for postID, members := range r.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(r.rooms, postID)
		}
	}
}

// Join subscribes a client to a post's room.
func (r *Registry) Join(c *Client, postID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rooms[postID] == nil {
		r.rooms[postID] = make(map[*Client]struct{})
	}
	r.rooms[postID][c] = struct{}{}
}

// Leave unsubscribes a client from a post's room.
func (r *Registry) Leave(c *Client, postID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if members, ok := r.rooms[postID]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(r.rooms, postID)
		}
	}
}

// Broadcast sends an event to every room member except the acting client,
// which gets its result through the acknowledgement instead.
func (r *Registry) Broadcast(postID uuid.UUID, event string, payload interface{}, except *Client) {
	r.mu.RLock()
	members := make([]*Client, 0, len(r.rooms[postID]))
	for c := range r.rooms[postID] {
		if c != except {
			members = append(members, c)
		}
	}
	r.mu.RUnlock()

	for _, c := range members {
		c.Send(Frame{Event: event, Data: payload})
	}
}

// SessionCount returns the number of live sessions for a user.
func (r *Registry) SessionCount(userID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[userID])
}

// RoomSize returns how many clients subscribed to a post's room.
func (r *Registry) RoomSize(postID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[postID])
}
