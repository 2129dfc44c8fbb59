/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package whotyped

import "errors"

// Errors reported back to the client that caused them. None of them end the
// connection.
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room is full")
	ErrNotHost             = errors.New("only the host can do that")
	ErrInsufficientPlayers = errors.New("not enough players to start")
	ErrUnknownMessageType  = errors.New("unknown message type")
	ErrInvalidMessage      = errors.New("invalid message")
)
