package orch

import (
	"context"
	"errors"
	"time"

	"github.com/jatinupadhyay27/my-meet/internal/app"
	"github.com/jatinupadhyay27/my-meet/internal/core"
	"github.com/jatinupadhyay27/my-meet/internal/domain"
)

var (
	ErrEmptyRoomID      = errors.New("room id is empty")
	ErrEmptyDisplayName = errors.New("display name is empty")
	ErrEmptySender      = errors.New("sender is empty")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrEmptyReaction    = errors.New("reaction is empty")
	ErrUnknownRoom      = errors.New("room does not exist")
	ErrNoSession        = errors.New("no session for connection")
	ErrUnknownTarget    = errors.New("target connection is not in the room")
)

// RoomMetadata is the answer the meeting directory gives before a join is
// allowed.
type RoomMetadata struct {
	Exists           bool
	RequiresPassword bool
}

// Directory is the meeting metadata collaborator (the CRUD layer). Nil
// means every code is joinable, which is what tests and dev mode use.
type Directory interface {
	Lookup(ctx context.Context, room domain.RoomID) (RoomMetadata, error)
}

// Orchestrator ties the connection registry, the membership table and the
// fanout path together. All join/leave/publish traffic flows through it.
type Orchestrator struct {
	Registry  *app.Registry
	Rooms     core.RoomManager
	Directory Directory
	Policy    app.Policy

	// Now is swappable for tests; zero value means time.Now.
	Now func() time.Time
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now().UTC()
	}
	return time.Now().UTC()
}
