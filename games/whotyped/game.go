/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package whotyped

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Settings are the game rules.
type Settings struct {
	MaxPlayers  int
	MinPlayers  int
	WinScore    int
	ReadingTime time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		MaxPlayers:  8,
		MinPlayers:  3,
		WinScore:    10,
		ReadingTime: 40 * time.Second,
	}
}

// Timer is a pending deferred task.
type Timer interface {
	Stop() bool
}

// Scheduler runs fn after d on the same goroutine that drives the Game.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Game is the room lifecycle and round state machine. It is not safe for
// concurrent use: every method must be called from one goroutine (see Hub).
type Game struct {
	settings Settings
	store    Store
	out      *Broadcaster
	sched    Scheduler
	pick     func(n int) int
	now      func() time.Time
	log      zerolog.Logger
}

type Option func(*Game)

func WithSettings(s Settings) Option {
	return func(g *Game) { g.settings = s }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(g *Game) { g.log = logger }
}

// WithPicker replaces the uniform random typer choice. pick must return a
// value in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(g *Game) { g.pick = pick }
}

func WithClock(now func() time.Time) Option {
	return func(g *Game) { g.now = now }
}

func NewGame(store Store, sched Scheduler, opts ...Option) *Game {
	g := &Game{
		settings: DefaultSettings(),
		store:    store,
		sched:    sched,
		pick:     rand.IntN,
		now:      time.Now,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.out = NewBroadcaster(store, g.log)
	return g
}

// lookup returns a room the client is seated in and marks it active.
func (g *Game) lookup(code, clientID string) (*Room, bool) {
	room, ok := g.store.Get(code)
	if !ok || !room.has(clientID) {
		return nil, false
	}
	room.lastActive = g.now()
	return room, true
}

func (g *Game) roomOf(clientID string) *Room {
	for _, room := range g.store.List() {
		if room.has(clientID) {
			return room
		}
	}
	return nil
}

// CreateRoom opens a lobby hosted by the caller.
func (g *Game) CreateRoom(clientID string, conn Conn, name string) *Room {
	g.RemoveClient(clientID)

	room := g.store.Create(&Client{ID: clientID, Name: name, conn: conn})
	room.lastActive = g.now()

	g.out.SendTo(room, clientID, stateMessage(TypeRoomCreated, room))

	g.log.Info().Str("room", room.Code).Msgf("GAMES: %q created room", name)

	return room
}

// JoinRoom seats the caller in an existing room.
func (g *Game) JoinRoom(code, clientID string, conn Conn, name string) (*Room, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	room, ok := g.store.Get(code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, code)
	}

	if room.has(clientID) {
		g.out.SendTo(room, clientID, stateMessage(TypeJoinedRoom, room))
		return room, nil
	}

	if len(room.Players) >= g.settings.MaxPlayers {
		return nil, fmt.Errorf("%w: %s already has %d players", ErrRoomFull, code, len(room.Players))
	}

	g.RemoveClient(clientID)

	room.Players = append(room.Players, &Client{ID: clientID, Name: name, conn: conn})
	room.lastActive = g.now()

	g.out.SendTo(room, clientID, stateMessage(TypeJoinedRoom, room))
	g.out.Broadcast(room.Code, stateMessage(TypeUpdateGameState, room), clientID)

	g.log.Info().Str("room", room.Code).Msgf("GAMES: %q joined room", name)

	return room, nil
}

// RemoveClient takes the client out of whichever room holds it. A room left
// empty is deleted on the spot. Clients not in any room are ignored.
func (g *Game) RemoveClient(clientID string) {
	room := g.roomOf(clientID)
	if room == nil {
		return
	}

	i := room.index(clientID)
	name := room.Players[i].Name
	room.Players = slices.Delete(room.Players, i, i+1)
	delete(room.Round.Votes, clientID)
	if j := slices.Index(room.Round.Typed, clientID); j >= 0 {
		room.Round.Typed = slices.Delete(room.Round.Typed, j, j+1)
	}

	g.log.Info().Str("room", room.Code).Msgf("GAMES: %q left room", name)

	if len(room.Players) == 0 {
		g.closeRoom(room)
		return
	}

	if room.HostID == clientID {
		room.HostID = room.Players[0].ID
	}

	if room.Round.TyperID == clientID {
		switch room.Phase {
		case PhaseTyping, PhaseReading, PhaseVoting:
			g.abandonRound(room)
			return
		default:
			room.Round.TyperID = ""
		}
	}

	g.out.Broadcast(room.Code, stateMessage(TypeUpdateGameState, room), "")

	if room.Phase == PhaseVoting {
		g.tally(room)
	}
}

func (g *Game) closeRoom(room *Room) {
	room.stopReading()
	g.store.Delete(room.Code)

	g.log.Info().Str("room", room.Code).Msg("GAMES: room closed")
}

// abandonRound handles the typer walking out mid-round.
func (g *Game) abandonRound(room *Room) {
	room.stopReading()

	if len(room.Players) >= g.settings.MinPlayers {
		g.startNewRound(room)
		return
	}

	room.Phase = PhaseLobby
	room.Round = RoundState{Votes: make(map[string]string)}
	room.generation++

	g.out.Broadcast(room.Code, stateMessage(TypeUpdateGameState, room), "")
}

func (g *Game) requireHost(room *Room, requesterID string) error {
	if requesterID != room.HostID {
		return ErrNotHost
	}
	if len(room.Players) < g.settings.MinPlayers {
		return fmt.Errorf("%w: need %d, have %d", ErrInsufficientPlayers, g.settings.MinPlayers, len(room.Players))
	}
	return nil
}

// StartGame leaves the lobby. Only the host may start, and only with enough
// players.
func (g *Game) StartGame(code, requesterID string) error {
	room, ok := g.lookup(code, requesterID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, code)
	}
	if room.Phase != PhaseLobby {
		return nil
	}
	if err := g.requireHost(room, requesterID); err != nil {
		return err
	}

	g.log.Info().Str("room", room.Code).Msgf("GAMES: game started with %d players", len(room.Players))

	g.startNewRound(room)

	return nil
}

// NextRound moves from the score screen into a new round.
func (g *Game) NextRound(code, requesterID string) error {
	room, ok := g.lookup(code, requesterID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, code)
	}
	if room.Phase != PhaseScore {
		return nil
	}
	if err := g.requireHost(room, requesterID); err != nil {
		return err
	}

	g.startNewRound(room)

	return nil
}

// startNewRound picks a typer nobody has seen this cycle, starting a fresh
// cycle when everyone present has typed.
func (g *Game) startNewRound(room *Room) {
	room.stopReading()
	room.Round.Text = ""
	room.Round.Votes = make(map[string]string)

	pool := make([]string, 0, len(room.Players))
	for _, p := range room.Players {
		if !room.hasTyped(p.ID) {
			pool = append(pool, p.ID)
		}
	}
	if len(pool) == 0 {
		room.Round.Typed = nil
		for _, p := range room.Players {
			pool = append(pool, p.ID)
		}
	}

	typer := pool[g.pick(len(pool))]
	room.Round.TyperID = typer
	room.Round.Typed = append(room.Round.Typed, typer)
	room.Phase = PhaseTyping
	room.generation++

	g.log.Info().Str("room", room.Code).Str("typer", typer).Msg("GAMES: new round")

	g.out.Broadcast(room.Code, stateMessage(TypeNewRound, room), "")
}

// SubmitText records the typer's phrase and starts the reading timer.
// Submissions from anyone else, or outside TYPING, are dropped.
func (g *Game) SubmitText(code, clientID, text string) {
	room, ok := g.lookup(code, clientID)
	if !ok || room.Phase != PhaseTyping || clientID != room.Round.TyperID {
		return
	}

	room.Round.Text = text
	room.Phase = PhaseReading

	g.out.Broadcast(room.Code, stateMessage(TypeTextSubmitted, room), "")

	generation := room.generation
	room.reading = g.sched.AfterFunc(g.settings.ReadingTime, func() {
		g.beginVoting(room, generation)
	})
}

// beginVoting fires when reading time runs out. It does nothing if the room
// has since been deleted or moved on to another round.
func (g *Game) beginVoting(room *Room, generation uint64) {
	live, ok := g.store.Get(room.Code)
	if !ok || live != room {
		return
	}
	if room.generation != generation || room.Phase != PhaseReading {
		return
	}

	room.reading = nil
	room.Phase = PhaseVoting

	g.out.Broadcast(room.Code, stateMessage(TypeVotingStarted, room), "")

	// With every voter gone there is nothing to wait for.
	g.tally(room)
}

// CastVote records who the voter thinks typed. A second vote from the same
// voter replaces the first.
func (g *Game) CastVote(code, voterID, votedID string) {
	room, ok := g.lookup(code, voterID)
	if !ok || room.Phase != PhaseVoting {
		return
	}
	if voterID == room.Round.TyperID || !room.has(votedID) {
		return
	}

	room.Round.Votes[voterID] = votedID

	if !g.tally(room) {
		g.out.Broadcast(room.Code, stateMessage(TypeUpdateGameState, room), "")
	}
}

// tally scores the round once every eligible voter has voted.
func (g *Game) tally(room *Room) bool {
	if room.votesCast() < room.voters() {
		return false
	}
	g.calculateScores(room)
	return true
}

// calculateScores gives a point to every voter who picked the typer.
func (g *Game) calculateScores(room *Room) {
	typer := room.Round.TyperID
	finished := false

	for _, p := range room.Players {
		if voted, ok := room.Round.Votes[p.ID]; ok && voted == typer {
			p.Score++
		}
		if p.Score >= g.settings.WinScore {
			finished = true
		}
	}

	if finished {
		room.Phase = PhaseEnd
		winner := room.Ranking()[0]
		g.log.Info().Str("room", room.Code).Msgf("GAMES: %q won with %d points", winner.Name, winner.Score)
	} else {
		room.Phase = PhaseScore
	}

	g.out.Broadcast(room.Code, stateMessage(TypeRoundOver, room), "")
}

// PlaySound relays a sound cue to the rest of the room.
func (g *Game) PlaySound(code, clientID, sound string) {
	room, ok := g.lookup(code, clientID)
	if !ok {
		return
	}

	g.out.Broadcast(room.Code, Message{Type: TypeSoundPlayed, Payload: SoundPayload{Sound: sound}}, clientID)
}

// ReapIdle closes every room with no activity since cutoff, along with the
// connections of its players. It returns the number of rooms closed.
func (g *Game) ReapIdle(cutoff time.Time) int {
	reaped := 0
	for _, room := range g.store.List() {
		if !room.lastActive.Before(cutoff) {
			continue
		}
		for _, p := range room.Players {
			if p.conn != nil {
				p.conn.Close()
			}
		}
		g.closeRoom(room)
		reaped++
	}
	return reaped
}
