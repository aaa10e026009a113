package app

import (
	"sync"

	"github.com/jatinupadhyay27/my-meet/internal/core"
	"github.com/jatinupadhyay27/my-meet/internal/domain"
)

type RoomManagerImpl struct {
	onOccupancy core.OccupancyFunc

	mu    sync.RWMutex
	rooms map[domain.RoomID]core.RoomService
}

// NewRoomManager builds the membership table. onOccupancy is attached to
// every room it creates.
func NewRoomManager(onOccupancy core.OccupancyFunc) core.RoomManager {
	return &RoomManagerImpl{
		onOccupancy: onOccupancy,
		rooms:       make(map[domain.RoomID]core.RoomService),
	}
}

func (f *RoomManagerImpl) GetOrCreate(id domain.RoomID) core.RoomService {
	f.mu.RLock()
	room, ok := f.rooms[id]
	f.mu.RUnlock()
	if ok {
		return room
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if room, ok = f.rooms[id]; ok {
		return room
	}
	room = core.NewRoomService(&domain.Room{ID: id}, f.onOccupancy)
	f.rooms[id] = room
	return room
}

func (f *RoomManagerImpl) Lookup(id domain.RoomID) (core.RoomService, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	room, ok := f.rooms[id]
	return room, ok
}

func (f *RoomManagerImpl) List() []core.RoomInfo {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(f.rooms))
	for id, r := range f.rooms {
		out = append(out, core.RoomInfo{ID: id, MemberCount: r.MemberCount()})
	}
	return out
}

// StopRoom drops the table entry if the room is still empty, so abandoned
// codes don't accumulate. A member that raced in keeps the room alive.
func (f *RoomManagerImpl) StopRoom(id domain.RoomID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if room, ok := f.rooms[id]; ok && room.MemberCount() == 0 {
		delete(f.rooms, id)
	}
}
