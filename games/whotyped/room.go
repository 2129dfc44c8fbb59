/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package whotyped

import (
	"maps"
	"slices"
	"time"
)

type Phase string

const (
	PhaseLobby   Phase = "LOBBY"
	PhaseTyping  Phase = "TYPING"
	PhaseReading Phase = "READING"
	PhaseVoting  Phase = "VOTING"
	PhaseScore   Phase = "SCORE"
	PhaseEnd     Phase = "END"
)

// Client is a player seated in a room. The connection is borrowed from the
// Registry and is never serialized.
type Client struct {
	ID    string
	Name  string
	Score int

	conn Conn
}

// RoundState is reset at the start of every round, except Typed, which
// carries over until every live player has typed once.
type RoundState struct {
	TyperID string
	Typed   []string
	Text    string
	Votes   map[string]string
}

type Room struct {
	Code    string
	HostID  string
	Players []*Client
	Phase   Phase
	Round   RoundState

	// generation is bumped on each new round so a deferred transition
	// scheduled for an earlier round can tell it is stale.
	generation uint64
	reading    Timer
	lastActive time.Time
}

func newRoom(code string, host *Client) *Room {
	return &Room{
		Code:    code,
		HostID:  host.ID,
		Players: []*Client{host},
		Phase:   PhaseLobby,
		Round:   RoundState{Votes: make(map[string]string)},
	}
}

func (r *Room) index(clientID string) int {
	return slices.IndexFunc(r.Players, func(c *Client) bool {
		return c.ID == clientID
	})
}

func (r *Room) player(clientID string) *Client {
	if i := r.index(clientID); i >= 0 {
		return r.Players[i]
	}
	return nil
}

func (r *Room) has(clientID string) bool {
	return r.index(clientID) >= 0
}

func (r *Room) hasTyped(clientID string) bool {
	return slices.Contains(r.Round.Typed, clientID)
}

// voters counts the players expected to vote this round.
func (r *Room) voters() int {
	n := 0
	for _, p := range r.Players {
		if p.ID != r.Round.TyperID {
			n++
		}
	}
	return n
}

// votesCast counts votes from players still present.
func (r *Room) votesCast() int {
	n := 0
	for voter := range r.Round.Votes {
		if voter != r.Round.TyperID && r.has(voter) {
			n++
		}
	}
	return n
}

func (r *Room) stopReading() {
	if r.reading != nil {
		r.reading.Stop()
		r.reading = nil
	}
}

// Ranking orders players by score, highest first. Equal scores keep join
// order.
func (r *Room) Ranking() []*Client {
	ranked := slices.Clone(r.Players)
	slices.SortStableFunc(ranked, func(a, b *Client) int {
		return b.Score - a.Score
	})
	return ranked
}

func views(players []*Client) []PlayerView {
	out := make([]PlayerView, 0, len(players))
	for _, p := range players {
		out = append(out, PlayerView{
			ClientID:   p.ID,
			PlayerName: p.Name,
			Score:      p.Score,
		})
	}
	return out
}

// Snapshot copies the room into its wire form.
func (r *Room) Snapshot() Snapshot {
	s := Snapshot{
		RoomCode:  r.Code,
		HostID:    r.HostID,
		Players:   views(r.Players),
		GameState: r.Phase,
		Rounds: RoundView{
			SubmittedText: r.Round.Text,
			Votes:         maps.Clone(r.Round.Votes),
		},
	}
	if s.Rounds.Votes == nil {
		s.Rounds.Votes = map[string]string{}
	}
	if r.Round.TyperID != "" {
		typer := r.Round.TyperID
		s.Rounds.CurrentTyperID = &typer
	}
	if r.Phase == PhaseEnd {
		s.Ranking = views(r.Ranking())
	}
	return s
}
