/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package whotyped

import "github.com/rs/zerolog"

// Conn is the outbound side of a client connection.
type Conn interface {
	// Send queues msg without blocking. It reports false once the
	// connection is closed.
	Send(msg Message) bool
	Close()
}

// Broadcaster fans messages out to the members of a room.
type Broadcaster struct {
	store Store
	log   zerolog.Logger
}

func NewBroadcaster(store Store, logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{store: store, log: logger}
}

// Broadcast sends msg to every player in the room except exclude, which may
// be empty. Closed connections are skipped. It returns the number of
// deliveries.
func (b *Broadcaster) Broadcast(code string, msg Message, exclude string) int {
	room, ok := b.store.Get(code)
	if !ok {
		return 0
	}

	sent := 0
	for _, p := range room.Players {
		if p.ID == exclude || p.conn == nil {
			continue
		}
		if p.conn.Send(msg) {
			sent++
		}
	}

	b.log.Debug().
		Str("room", code).
		Str("type", msg.Type).
		Msgf("broadcast to %d/%d players", sent, len(room.Players))

	return sent
}

// SendTo delivers msg to a single member of room.
func (b *Broadcaster) SendTo(room *Room, clientID string, msg Message) bool {
	p := room.player(clientID)
	if p == nil || p.conn == nil {
		return false
	}
	return p.conn.Send(msg)
}
