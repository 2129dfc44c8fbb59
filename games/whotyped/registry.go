/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package whotyped

import (
	"sync"

	"github.com/google/uuid"
)

type registration struct {
	conn Conn
	room string
}

// Registry maps live connections to ephemeral client ids and remembers which
// room each client last entered.
type Registry struct {
	mu           sync.RWMutex
	clients      map[string]*registration
	newID        func() string
	onDisconnect func(clientID string)
}

// NewRegistry returns an empty Registry. onDisconnect runs once for every
// client that is unregistered.
func NewRegistry(onDisconnect func(clientID string)) *Registry {
	return &Registry{
		clients:      make(map[string]*registration),
		newID:        uuid.NewString,
		onDisconnect: onDisconnect,
	}
}

// Register assigns conn a fresh id and tells the client about it.
func (r *Registry) Register(conn Conn) string {
	r.mu.Lock()
	id := r.newID()
	for r.clients[id] != nil {
		id = r.newID()
	}
	r.clients[id] = &registration{conn: conn}
	r.mu.Unlock()

	conn.Send(Message{Type: TypeYourClientID, Payload: ClientIDPayload{ClientID: id}})

	return id
}

func (r *Registry) Conn(clientID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.clients[clientID]
	if !ok {
		return nil, false
	}
	return reg.conn, true
}

// Bind records that clientID is now seated in room.
func (r *Registry) Bind(clientID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reg, ok := r.clients[clientID]; ok {
		reg.room = room
	}
}

func (r *Registry) RoomOf(clientID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if reg, ok := r.clients[clientID]; ok {
		return reg.room
	}
	return ""
}

// Unregister forgets clientID and fires the disconnect callback. Unknown ids
// are ignored.
func (r *Registry) Unregister(clientID string) {
	r.mu.Lock()
	reg, ok := r.clients[clientID]
	delete(r.clients, clientID)
	r.mu.Unlock()

	if !ok {
		return
	}
	reg.conn.Close()

	if r.onDisconnect != nil {
		r.onDisconnect(clientID)
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.clients)
}
