package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jatinupadhyay27/my-meet/internal/domain"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	room        *domain.Room
	onOccupancy OccupancyFunc

	mu      sync.RWMutex
	members map[ConnID]MemberSession
}

// NewRoomService builds a room. onOccupancy may be nil; when set it is
// called under the room lock on every empty<->non-empty edge.
func NewRoomService(room *domain.Room, onOccupancy OccupancyFunc) RoomService {
	return &roomImpl{
		room:        room,
		onOccupancy: onOccupancy,
		members:     make(map[ConnID]MemberSession),
	}
}

func (r *roomImpl) Room() *domain.Room { return r.room }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *roomImpl) Member(id ConnID) (MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ms, ok := r.members[id]
	return ms, ok
}

func (r *roomImpl) Join(id ConnID, ms MemberSession) JoinResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[id]; ok {
		// Duplicate join never re-reports the empty edge.
		log.Warn().Str("module", "core.room").Str("room", string(r.room.ID)).Str("conn", string(id)).Msg("duplicate join ignored")
		return JoinResult{}
	}
	wasEmpty := len(r.members) == 0
	r.members[id] = ms
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("conn", string(id)).Int("size", len(r.members)).Msg("member added")
	if wasEmpty && r.onOccupancy != nil {
		r.onOccupancy(r.room.ID, RoomOccupied)
	}
	return JoinResult{Added: true, WasEmpty: wasEmpty}
}

func (r *roomImpl) Leave(id ConnID) LeaveResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[id]; !ok {
		log.Debug().Str("module", "core.room").Str("room", string(r.room.ID)).Str("conn", string(id)).Msg("leave for non-member ignored")
		return LeaveResult{}
	}
	delete(r.members, id)
	empty := len(r.members) == 0
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("conn", string(id)).Int("size", len(r.members)).Msg("member removed")
	if empty && r.onOccupancy != nil {
		r.onOccupancy(r.room.ID, RoomEmptied)
	}
	return LeaveResult{Removed: true, EmptyAfter: empty}
}

// Broadcast delivers data to every member except exclude. Delivery is
// best-effort per recipient: a slow or closed connection is reported in
// the result, never allowed to abort delivery to siblings.
func (r *roomImpl) Broadcast(data Frame, exclude ConnID) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for id, m := range r.members {
		if id == exclude {
			continue
		}
		if err := m.Signal().TrySend(data); err != nil {
			log.Debug().Err(err).Str("module", "core.room").Str("room", string(r.room.ID)).Str("conn", string(id)).Msg("fanout send failed")
			res.Dropped = append(res.Dropped, id)
			continue
		}
		res.SentTo++
	}
	return res
}

func (r *roomImpl) MembersSnapshot() []MemberDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MemberDTO, 0, len(r.members))
	for id, ms := range r.members {
		out = append(out, MemberDTO{ConnectionID: id, DisplayName: ms.Meta().Name})
	}
	return out
}
