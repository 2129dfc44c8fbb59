/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package whotyped

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
	id   string
}

func startHub(t *testing.T, settings Settings) (*Hub, string) {
	t.Helper()

	hub := NewHub(settings, 0, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn)
	}))
	t.Cleanup(srv.Close)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *testClient {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	c := &testClient{t: t, conn: conn}

	var id ClientIDPayload
	c.expect(TypeYourClientID, &id)
	require.NotEmpty(t, id.ClientID)
	c.id = id.ClientID

	return c
}

func (c *testClient) send(kind string, payload any) {
	c.t.Helper()

	require.NoError(c.t, c.conn.WriteJSON(map[string]any{"type": kind, "payload": payload}))
}

// expect reads until a message of the given type arrives and decodes its
// payload into out.
func (c *testClient) expect(kind string, out any) {
	c.t.Helper()

	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg inbound
		require.NoError(c.t, c.conn.ReadJSON(&msg), "waiting for %s", kind)
		if msg.Type != kind {
			continue
		}
		if out != nil {
			require.NoError(c.t, json.Unmarshal(msg.Payload, out))
		}
		return
	}
}

func TestHubEndToEnd(t *testing.T) {
	settings := DefaultSettings()
	settings.ReadingTime = 20 * time.Millisecond
	hub, url := startHub(t, settings)

	clients := []*testClient{dial(t, url), dial(t, url), dial(t, url)}

	var snap Snapshot
	clients[0].send(TypeCreateRoom, map[string]string{"playerName": "Ann"})
	clients[0].expect(TypeRoomCreated, &snap)
	require.Regexp(t, codePattern, snap.RoomCode)
	code := snap.RoomCode

	for i, name := range []string{"Bo", "Cy"} {
		clients[i+1].send(TypeJoinRoom, map[string]string{"roomCode": code, "playerName": name})
		clients[i+1].expect(TypeJoinedRoom, &snap)
	}
	assert.Len(t, snap.Players, 3)

	clients[1].send(TypeStartGame, nil)
	var failure ErrorPayload
	clients[1].expect(TypeError, &failure)
	assert.Contains(t, failure.Message, ErrNotHost.Error())

	clients[0].send(TypeStartGame, nil)
	for _, c := range clients {
		c.expect(TypeNewRound, &snap)
	}
	require.NotNil(t, snap.Rounds.CurrentTyperID)
	typerID := *snap.Rounds.CurrentTyperID

	var typer *testClient
	var voters []*testClient
	for _, c := range clients {
		if c.id == typerID {
			typer = c
		} else {
			voters = append(voters, c)
		}
	}
	require.NotNil(t, typer)
	require.Len(t, voters, 2)

	typer.send(TypeSubmitText, map[string]string{"text": "guess me"})
	for _, c := range clients {
		c.expect(TypeTextSubmitted, nil)
	}
	for _, c := range clients {
		c.expect(TypeVotingStarted, &snap)
	}
	assert.Equal(t, PhaseVoting, snap.GameState)

	for _, v := range voters {
		v.send(TypeVote, map[string]string{"votedPlayerId": typerID})
	}
	typer.expect(TypeRoundOver, &snap)
	assert.Equal(t, PhaseScore, snap.GameState)
	for _, p := range snap.Players {
		if p.ClientID == typerID {
			assert.Equal(t, 0, p.Score)
		} else {
			assert.Equal(t, 1, p.Score)
		}
	}

	_ = voters[1].conn.Close()
	typer.expect(TypeUpdateGameState, &snap)
	assert.Len(t, snap.Players, 2)

	assert.Eventually(t, func() bool {
		var connected, rooms int
		hub.call(func() { connected, rooms = hub.Stats() })
		return connected == 2 && rooms == 1
	}, time.Second, 10*time.Millisecond)
}

func TestHubAfterFunc(t *testing.T) {
	hub := NewHub(DefaultSettings(), 0, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	fired := make(chan struct{})
	hub.AfterFunc(time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("scheduled task never ran")
	}

	stopped := hub.AfterFunc(time.Hour, func() { t.Error("stopped task ran") })
	assert.True(t, stopped.Stop())
}

func TestHubStopped(t *testing.T) {
	hub := NewHub(DefaultSettings(), 0, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	assert.Empty(t, hub.Connect(&fakeConn{}))
	assert.False(t, hub.post(func() {}))
}
