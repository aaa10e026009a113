package core

import (
	"time"

	"github.com/jatinupadhyay27/my-meet/internal/domain"
)

// Event kinds emitted to clients. Inbound kinds live in the signal adapter;
// these are the outbound halves the adapter marshals onto the wire.
const (
	KindJoinedRoom       = "joined-room"
	KindPeerJoined       = "peer-joined"
	KindPeerLeft         = "peer-left"
	KindMessageReceived  = "message-received"
	KindReactionReceived = "reaction-received"
	KindHandRaiseUpdated = "hand-raise-updated"
	KindValidationError  = "validation-error"
)

// Event is an outbound signaling payload. Every variant carries its kind in
// the Type field so clients can dispatch on a single tag.
type Event interface {
	Kind() string
}

// JoinedRoom acknowledges a successful join to the joining connection only.
type JoinedRoom struct {
	Type        string        `json:"type"`
	Room        domain.RoomID `json:"roomId"`
	DisplayName string        `json:"displayName"`
	Members     []MemberDTO   `json:"members"`
	Count       int           `json:"count"`
	Timestamp   time.Time     `json:"timestamp"`
}

func (e JoinedRoom) Kind() string { return e.Type }

// PeerJoined notifies existing members about a new arrival.
type PeerJoined struct {
	Type         string        `json:"type"`
	Room         domain.RoomID `json:"roomId"`
	DisplayName  string        `json:"displayName"`
	ConnectionID ConnID        `json:"connectionId"`
	Timestamp    time.Time     `json:"timestamp"`
}

func (e PeerJoined) Kind() string { return e.Type }

type PeerLeft struct {
	Type         string        `json:"type"`
	Room         domain.RoomID `json:"roomId"`
	DisplayName  string        `json:"displayName,omitempty"`
	ConnectionID ConnID        `json:"connectionId"`
	Timestamp    time.Time     `json:"timestamp"`
}

func (e PeerLeft) Kind() string { return e.Type }

type MessageReceived struct {
	Type      string        `json:"type"`
	Room      domain.RoomID `json:"roomId"`
	Message   string        `json:"message"`
	Sender    string        `json:"sender"`
	Timestamp time.Time     `json:"timestamp"`
}

func (e MessageReceived) Kind() string { return e.Type }

type ReactionReceived struct {
	Type      string        `json:"type"`
	Room      domain.RoomID `json:"roomId"`
	Reaction  string        `json:"reaction"`
	Sender    string        `json:"sender"`
	Timestamp time.Time     `json:"timestamp"`
}

func (e ReactionReceived) Kind() string { return e.Type }

type HandRaiseUpdated struct {
	Type      string        `json:"type"`
	Room      domain.RoomID `json:"roomId"`
	Sender    string        `json:"sender"`
	IsRaised  bool          `json:"isRaised"`
	Timestamp time.Time     `json:"timestamp"`
}

func (e HandRaiseUpdated) Kind() string { return e.Type }

// ValidationError is delivered to the offending connection only, never
// broadcast.
type ValidationError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e ValidationError) Kind() string { return e.Type }

func NewValidationError(msg string) ValidationError {
	return ValidationError{Type: KindValidationError, Message: msg}
}
