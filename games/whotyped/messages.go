/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package whotyped

// Server to client message types
const (
	TypeError           = "ERROR"
	TypeYourClientID    = "YOUR_CLIENT_ID"
	TypeRoomCreated     = "ROOM_CREATED"
	TypeJoinedRoom      = "JOINED_ROOM"
	TypeUpdateGameState = "UPDATE_GAME_STATE"
	TypeNewRound        = "NEW_ROUND"
	TypeTextSubmitted   = "TEXT_SUBMITTED"
	TypeVotingStarted   = "VOTING_STARTED"
	TypeRoundOver       = "ROUND_OVER"
	TypeSoundPlayed     = "SOUND_PLAYED"
)

// Client to server message types
const (
	TypeCreateRoom = "CREATE_ROOM"
	TypeJoinRoom   = "JOIN_ROOM"
	TypeStartGame  = "START_GAME"
	TypeSubmitText = "SUBMIT_TEXT"
	TypeVote       = "VOTE"
	TypeNextRound  = "NEXT_ROUND"
	TypePlaySound  = "PLAY_SOUND"
)

// Message is an outbound envelope. Payload must not be mutated after the
// message has been handed to a Conn, since it may be encoded concurrently by
// several write pumps.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type ClientIDPayload struct {
	ClientID string `json:"clientId"`
}

type SoundPayload struct {
	Sound string `json:"sound"`
}

// PlayerView is the public part of a Client.
type PlayerView struct {
	ClientID   string `json:"clientId"`
	PlayerName string `json:"playerName"`
	Score      int    `json:"score"`
}

type RoundView struct {
	CurrentTyperID *string           `json:"currentTyperId"`
	SubmittedText  string            `json:"submittedText"`
	Votes          map[string]string `json:"votes"`
}

// Snapshot is the room state pushed to clients. Ranking is only set once the
// game has ended.
type Snapshot struct {
	RoomCode  string       `json:"roomCode"`
	HostID    string       `json:"hostId"`
	Players   []PlayerView `json:"players"`
	GameState Phase        `json:"gameState"`
	Rounds    RoundView    `json:"rounds"`
	Ranking   []PlayerView `json:"ranking,omitempty"`
}

func errorMessage(err error) Message {
	return Message{Type: TypeError, Payload: ErrorPayload{Message: err.Error()}}
}

func stateMessage(kind string, room *Room) Message {
	return Message{Type: kind, Payload: room.Snapshot()}
}
