/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package whotyped

import (
	"crypto/rand"
	"strings"
	"sync"
)

const (
	codeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength  = 6
)

// Store owns the live rooms, keyed by code.
type Store interface {
	// Create seats host in a new lobby under a code no live room uses.
	Create(host *Client) *Room
	Get(code string) (*Room, bool)
	Delete(code string)
	List() []*Room
}

// MemoryStore is a Store backed by a map.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	codes func() string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string]*Room),
		codes: newRoomCode,
	}
}

// ValidRoomCode reports whether code has the shape of a room code.
func ValidRoomCode(code string) bool {
	if len(code) != codeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(codeLetters, code[i]) < 0 {
			return false
		}
	}
	return true
}

// newRoomCode draws a crypto-random code. Bytes past the largest multiple of
// the alphabet size are rejected to keep the draw uniform.
func newRoomCode() string {
	const limit = 256 - 256%len(codeLetters)

	out := make([]byte, 0, codeLength)
	buf := make([]byte, codeLength*2)
	for len(out) < codeLength {
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, codeLetters[int(b)%len(codeLetters)])
			if len(out) == codeLength {
				break
			}
		}
	}
	return string(out)
}

func (s *MemoryStore) Create(host *Client) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		code := s.codes()
		if _, exists := s.rooms[code]; exists {
			continue
		}
		room := newRoom(code, host)
		s.rooms[code] = room
		return room
	}
}

func (s *MemoryStore) Get(code string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[code]
	return room, ok
}

func (s *MemoryStore) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rooms, code)
}

func (s *MemoryStore) List() []*Room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]*Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.rooms)
}
