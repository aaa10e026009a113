package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jatinupadhyay27/my-meet/internal/core"
	"github.com/jatinupadhyay27/my-meet/internal/domain"
)

type connEntry struct {
	Rooms   map[domain.RoomID]struct{}
	Session core.MemberSession
	Cancel  context.CancelFunc
}

// Registry tracks live connections and the set of rooms each one belongs
// to. It is the only owner of that association; disconnect cleanup is
// driven off Unregister's return value.
type Registry struct {
	mu    sync.RWMutex
	conns map[core.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[core.ConnID]*connEntry)}
}

// Register binds a freshly connected session. Registering an id twice is a
// warn-logged no-op keeping the first binding.
func (r *Registry) Register(id core.ConnID, sess core.MemberSession, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[id]; ok {
		log.Warn().Str("module", "app.registry").Str("conn", string(id)).Msg("duplicate register ignored")
		return
	}
	r.conns[id] = &connEntry{
		Rooms:   make(map[domain.RoomID]struct{}),
		Session: sess,
		Cancel:  cancel,
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("registered connection")
}

// Unregister removes the connection and returns every room it was part of,
// so the caller can unwind membership without tracking it separately.
// Unknown ids are a warn-logged no-op.
func (r *Registry) Unregister(id core.ConnID) []domain.RoomID {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		log.Warn().Str("module", "app.registry").Str("conn", string(id)).Msg("unregister for unknown connection")
		return nil
	}
	delete(r.conns, id)
	rooms := make([]domain.RoomID, 0, len(e.Rooms))
	for room := range e.Rooms {
		rooms = append(rooms, room)
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Int("rooms", len(rooms)).Msg("unregistered connection")
	return rooms
}

func (r *Registry) Session(id core.ConnID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[id]; ok {
		return e.Session, true
	}
	return nil, false
}

func (r *Registry) AddRoom(id core.ConnID, room domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return false
	}
	e.Rooms[room] = struct{}{}
	return true
}

func (r *Registry) RemoveRoom(id core.ConnID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[id]; ok {
		delete(e.Rooms, room)
	}
}

// RoomsOf returns a snapshot of the rooms the connection currently belongs
// to. The reference flow keeps this at most one, the model allows more.
func (r *Registry) RoomsOf(id core.ConnID) []domain.RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok {
		return nil
	}
	out := make([]domain.RoomID, 0, len(e.Rooms))
	for room := range e.Rooms {
		out = append(out, room)
	}
	return out
}

func (r *Registry) Cancel(id core.ConnID) bool {
	r.mu.RLock()
	e, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	return true
}
