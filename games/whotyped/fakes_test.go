/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package whotyped

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	msgs   []Message
	closed bool
}

func (c *fakeConn) Send(msg Message) bool {
	if c.closed {
		return false
	}
	c.msgs = append(c.msgs, msg)
	return true
}

func (c *fakeConn) Close() {
	c.closed = true
}

func (c *fakeConn) types() []string {
	out := make([]string, 0, len(c.msgs))
	for _, m := range c.msgs {
		out = append(out, m.Type)
	}
	return out
}

func (c *fakeConn) last() Message {
	if len(c.msgs) == 0 {
		return Message{}
	}
	return c.msgs[len(c.msgs)-1]
}

func (c *fakeConn) reset() {
	c.msgs = nil
}

type fakeTask struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTask) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

type fakeScheduler struct {
	tasks []*fakeTask
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	t := &fakeTask{delay: d, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// fire runs every pending task.
func (s *fakeScheduler) fire() {
	for _, t := range s.tasks {
		if t.stopped || t.fired {
			continue
		}
		t.fired = true
		t.fn()
	}
}

type testGame struct {
	*Game
	store *MemoryStore
	sched *fakeScheduler
	pick  int
}

func newTestGame(t *testing.T, opts ...Option) *testGame {
	t.Helper()

	tg := &testGame{
		store: NewMemoryStore(),
		sched: &fakeScheduler{},
	}
	created := 0
	tg.store.codes = func() string {
		created++
		if created == 1 {
			return "ABC123"
		}
		return fmt.Sprintf("ROOM%02d", created)
	}

	opts = append([]Option{WithPicker(func(n int) int {
		if tg.pick >= n {
			return n - 1
		}
		return tg.pick
	})}, opts...)

	tg.Game = NewGame(tg.store, tg.sched, opts...)

	return tg
}

// seat creates a room hosted by p1 and joins p2..pn.
func (tg *testGame) seat(t *testing.T, n int) (*Room, map[string]*fakeConn) {
	t.Helper()

	conns := make(map[string]*fakeConn, n)

	conns["p1"] = &fakeConn{}
	room := tg.CreateRoom("p1", conns["p1"], "Player 1")

	for i := 2; i <= n; i++ {
		id := fmt.Sprintf("p%d", i)
		conns[id] = &fakeConn{}
		_, err := tg.JoinRoom(room.Code, id, conns[id], fmt.Sprintf("Player %d", i))
		require.NoError(t, err)
	}

	for _, c := range conns {
		c.reset()
	}

	return room, conns
}

// toVoting starts a round with the typer at pool index pick and runs it up
// to VOTING.
func (tg *testGame) toVoting(t *testing.T, room *Room, pick int) string {
	t.Helper()

	tg.pick = pick
	require.NoError(t, tg.StartGame(room.Code, room.HostID))
	typer := room.Round.TyperID

	tg.SubmitText(room.Code, typer, "hello")
	require.Equal(t, PhaseReading, room.Phase)

	tg.sched.fire()
	require.Equal(t, PhaseVoting, room.Phase)

	return typer
}
