/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package whotyped

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Hub owns all game state. Every connection event, deferred transition and
// reaper sweep is posted onto a single loop, so handlers never interleave.
type Hub struct {
	store      *MemoryStore
	game       *Game
	registry   *Registry
	dispatcher *Dispatcher

	events      chan func()
	done        chan struct{}
	idleTimeout time.Duration
	log         zerolog.Logger
}

// NewHub wires a Hub. idleTimeout of zero disables room reaping.
func NewHub(settings Settings, idleTimeout time.Duration, logger zerolog.Logger) *Hub {
	h := &Hub{
		store:       NewMemoryStore(),
		events:      make(chan func(), 256),
		done:        make(chan struct{}),
		idleTimeout: idleTimeout,
		log:         logger,
	}

	h.game = NewGame(h.store, h, WithSettings(settings), WithLogger(logger))
	h.registry = NewRegistry(h.game.RemoveClient)
	h.dispatcher = NewDispatcher(h.game, h.registry, logger)

	return h
}

// Run processes events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	var reap <-chan time.Time
	if h.idleTimeout > 0 {
		ticker := time.NewTicker(h.idleTimeout / 2)
		defer ticker.Stop()
		reap = ticker.C
	}

	for {
		select {
		case fn := <-h.events:
			fn()
		case now := <-reap:
			if n := h.game.ReapIdle(now.Add(-h.idleTimeout)); n > 0 {
				h.log.Info().Msgf("GAMES: reaped %d idle room(s)", n)
			}
		case <-ctx.Done():
			return
		}
	}
}

// post queues fn on the loop. It reports false once the hub has stopped.
func (h *Hub) post(fn func()) bool {
	select {
	case <-h.done:
		return false
	default:
	}

	select {
	case h.events <- fn:
		return true
	case <-h.done:
		return false
	}
}

// call runs fn on the loop and waits for it to finish.
func (h *Hub) call(fn func()) bool {
	finished := make(chan struct{})
	if !h.post(func() {
		defer close(finished)
		fn()
	}) {
		return false
	}

	select {
	case <-finished:
		return true
	case <-h.done:
		return false
	}
}

type hubTimer struct {
	t *time.Timer
}

func (t hubTimer) Stop() bool {
	return t.t.Stop()
}

// AfterFunc schedules fn to run on the loop after d.
func (h *Hub) AfterFunc(d time.Duration, fn func()) Timer {
	return hubTimer{t: time.AfterFunc(d, func() {
		h.post(fn)
	})}
}

// Connect registers conn and returns its client id, or "" if the hub has
// stopped.
func (h *Hub) Connect(conn Conn) string {
	var id string
	h.call(func() {
		id = h.registry.Register(conn)
	})
	return id
}

func (h *Hub) Receive(clientID string, data []byte) {
	h.post(func() {
		h.dispatcher.Dispatch(clientID, data)
	})
}

func (h *Hub) Disconnect(clientID string) {
	h.post(func() {
		h.registry.Unregister(clientID)
	})
}

// Stats reports live connection and room counts.
func (h *Hub) Stats() (clients, rooms int) {
	return h.registry.Len(), h.store.Len()
}
