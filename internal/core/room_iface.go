package core

import "github.com/jatinupadhyay27/my-meet/internal/domain"

// Occupancy marks an edge of a room's membership count.
type Occupancy int

const (
	// RoomOccupied fires on the 0 -> 1 transition.
	RoomOccupied Occupancy = iota
	// RoomEmptied fires on the 1 -> 0 transition.
	RoomEmptied
)

func (o Occupancy) String() string {
	if o == RoomOccupied {
		return "occupied"
	}
	return "emptied"
}

// OccupancyFunc observes membership edges of a room. It is invoked inside
// the room's critical section so observers see transitions in the exact
// order they were applied; it must be fast and must not call back into the
// room.
type OccupancyFunc func(room domain.RoomID, transition Occupancy)

// JoinResult reports what a membership add actually changed.
type JoinResult struct {
	// Added is false when the connection was already a member.
	Added bool
	// WasEmpty is reported at most once per empty->non-empty edge.
	WasEmpty bool
}

// LeaveResult reports what a membership remove actually changed.
type LeaveResult struct {
	Removed    bool
	EmptyAfter bool
}

// PublishResult reports delivery stats/backpressure to the orchestrator.
type PublishResult struct {
	SentTo  int
	Dropped []ConnID
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ConnectionID ConnID `json:"connectionId"`
	DisplayName  string `json:"displayName"`
}

// RoomService is the core-facing API of a room. It owns the membership set
// but never touches transport resources. Its internal lock is the per-room
// serialization token required by the join/leave/recording pipeline.
type RoomService interface {
	Room() *domain.Room
	MemberCount() int
	MembersSnapshot() []MemberDTO
	Member(id ConnID) (MemberSession, bool)

	Join(id ConnID, ms MemberSession) JoinResult
	Leave(id ConnID) LeaveResult
	Broadcast(data Frame, exclude ConnID) PublishResult
}

type RoomInfo struct {
	ID          domain.RoomID `json:"roomId"`
	MemberCount int           `json:"memberCount"`
}

// RoomManager hands out rooms keyed by meeting code. Rooms for different
// codes never contend on each other.
type RoomManager interface {
	GetOrCreate(id domain.RoomID) RoomService
	Lookup(id domain.RoomID) (RoomService, bool)
	List() []RoomInfo
	StopRoom(id domain.RoomID)
}
