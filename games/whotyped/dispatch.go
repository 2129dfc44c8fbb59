/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package whotyped

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

const (
	maxNameLength  = 24
	maxTextLength  = 280
	maxSoundLength = 32
)

// Envelope is the inbound wire frame.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Command is one decoded, validated client request.
type Command interface {
	validate() error
}

type CreateRoom struct {
	PlayerName string `json:"playerName"`
}

type JoinRoom struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type StartGame struct{}

type SubmitText struct {
	Text string `json:"text"`
}

type Vote struct {
	VotedPlayerID string `json:"votedPlayerId"`
}

type NextRound struct{}

type PlaySound struct {
	Sound string `json:"sound"`
}

func checkLength(field, value string, max int) error {
	n := utf8.RuneCountInString(value)
	if n == 0 {
		return fmt.Errorf("%w: %s is required", ErrInvalidMessage, field)
	}
	if n > max {
		return fmt.Errorf("%w: %s is longer than %d characters", ErrInvalidMessage, field, max)
	}
	return nil
}

func (c *CreateRoom) validate() error {
	c.PlayerName = strings.TrimSpace(c.PlayerName)
	return checkLength("playerName", c.PlayerName, maxNameLength)
}

func (c *JoinRoom) validate() error {
	c.PlayerName = strings.TrimSpace(c.PlayerName)
	c.RoomCode = strings.ToUpper(strings.TrimSpace(c.RoomCode))
	if c.RoomCode == "" {
		return fmt.Errorf("%w: roomCode is required", ErrInvalidMessage)
	}
	return checkLength("playerName", c.PlayerName, maxNameLength)
}

func (*StartGame) validate() error { return nil }

func (c *SubmitText) validate() error {
	return checkLength("text", c.Text, maxTextLength)
}

func (c *Vote) validate() error {
	if c.VotedPlayerID == "" {
		return fmt.Errorf("%w: votedPlayerId is required", ErrInvalidMessage)
	}
	return nil
}

func (*NextRound) validate() error { return nil }

func (c *PlaySound) validate() error {
	c.Sound = strings.TrimSpace(c.Sound)
	return checkLength("sound", c.Sound, maxSoundLength)
}

var commands = map[string]func() Command{
	TypeCreateRoom: func() Command { return &CreateRoom{} },
	TypeJoinRoom:   func() Command { return &JoinRoom{} },
	TypeStartGame:  func() Command { return &StartGame{} },
	TypeSubmitText: func() Command { return &SubmitText{} },
	TypeVote:       func() Command { return &Vote{} },
	TypeNextRound:  func() Command { return &NextRound{} },
	TypePlaySound:  func() Command { return &PlaySound{} },
}

// Decode parses and validates one inbound frame.
func Decode(data []byte) (Command, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: malformed envelope", ErrInvalidMessage)
	}

	newCommand, ok := commands[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, env.Type)
	}

	cmd := newCommand()
	payload := bytes.TrimSpace(env.Payload)
	if len(payload) > 0 && !bytes.Equal(payload, []byte("null")) {
		if err := json.Unmarshal(payload, cmd); err != nil {
			return nil, fmt.Errorf("%w: bad %s payload", ErrInvalidMessage, env.Type)
		}
	}

	if err := cmd.validate(); err != nil {
		return nil, err
	}

	return cmd, nil
}

// Dispatcher routes decoded commands to the Game. It holds no game rules of
// its own.
type Dispatcher struct {
	game     *Game
	registry *Registry
	log      zerolog.Logger
}

func NewDispatcher(game *Game, registry *Registry, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{game: game, registry: registry, log: logger}
}

// Dispatch handles one frame from clientID, answering the sender with an
// ERROR message if it is rejected.
func (d *Dispatcher) Dispatch(clientID string, data []byte) {
	conn, ok := d.registry.Conn(clientID)
	if !ok {
		return
	}

	err := d.route(clientID, conn, data)
	if err == nil {
		return
	}

	d.log.Debug().Str("client", clientID).Err(err).Msg("GAMES: rejected message")

	conn.Send(errorMessage(err))
}

func (d *Dispatcher) route(clientID string, conn Conn, data []byte) error {
	cmd, err := Decode(data)
	if err != nil {
		return err
	}

	code := d.registry.RoomOf(clientID)

	switch c := cmd.(type) {
	case *CreateRoom:
		room := d.game.CreateRoom(clientID, conn, c.PlayerName)
		d.registry.Bind(clientID, room.Code)
	case *JoinRoom:
		room, err := d.game.JoinRoom(c.RoomCode, clientID, conn, c.PlayerName)
		if err != nil {
			return err
		}
		d.registry.Bind(clientID, room.Code)
	case *StartGame:
		return d.game.StartGame(code, clientID)
	case *SubmitText:
		d.game.SubmitText(code, clientID, c.Text)
	case *Vote:
		d.game.CastVote(code, clientID, c.VotedPlayerID)
	case *NextRound:
		return d.game.NextRound(code, clientID)
	case *PlaySound:
		d.game.PlaySound(code, clientID, c.Sound)
	}

	return nil
}
