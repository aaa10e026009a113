package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jatinupadhyay27/my-meet/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []Frame
	fail   bool
}

func (c *fakeConn) TrySend(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return assert.AnError
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func newSession(name string) (MemberSession, *fakeConn) {
	conn := &fakeConn{}
	return NewMemberSession(&domain.Participant{Name: name}, conn), conn
}

func TestJoinIsIdempotent(t *testing.T) {
	room := NewRoomService(&domain.Room{ID: "ABC123"}, nil)
	sess, _ := newSession("alice")

	res := room.Join("c1", sess)
	require.True(t, res.Added)
	require.True(t, res.WasEmpty)

	res = room.Join("c1", sess)
	assert.False(t, res.Added)
	assert.False(t, res.WasEmpty, "duplicate join must not re-report the empty edge")
	assert.Equal(t, 1, room.MemberCount())
}

func TestWasEmptyReportedOncePerEdge(t *testing.T) {
	room := NewRoomService(&domain.Room{ID: "ABC123"}, nil)
	s1, _ := newSession("alice")
	s2, _ := newSession("bob")

	require.True(t, room.Join("c1", s1).WasEmpty)
	require.False(t, room.Join("c2", s2).WasEmpty)

	require.False(t, room.Leave("c1").EmptyAfter)
	require.True(t, room.Leave("c2").EmptyAfter)

	// Fresh edge after the room refills.
	require.True(t, room.Join("c1", s1).WasEmpty)
}

func TestLeaveUnknownMemberIsNoop(t *testing.T) {
	room := NewRoomService(&domain.Room{ID: "ABC123"}, nil)
	res := room.Leave("ghost")
	assert.False(t, res.Removed)
	assert.False(t, res.EmptyAfter)
}

func TestBroadcastExcludesOnlyTheExcluded(t *testing.T) {
	room := NewRoomService(&domain.Room{ID: "ABC123"}, nil)
	s1, c1 := newSession("alice")
	s2, c2 := newSession("bob")
	s3, c3 := newSession("carol")
	room.Join("c1", s1)
	room.Join("c2", s2)
	room.Join("c3", s3)

	res := room.Broadcast(Frame(`{"type":"peer-joined"}`), "c1")
	assert.Equal(t, 2, res.SentTo)
	assert.Zero(t, c1.count())
	assert.Equal(t, 1, c2.count())
	assert.Equal(t, 1, c3.count())

	res = room.Broadcast(Frame(`{"type":"message-received"}`), NoExclusion)
	assert.Equal(t, 3, res.SentTo)
	assert.Equal(t, 1, c1.count())
}

func TestBroadcastSurvivesFailedRecipient(t *testing.T) {
	room := NewRoomService(&domain.Room{ID: "ABC123"}, nil)
	s1, c1 := newSession("alice")
	s2, c2 := newSession("bob")
	c1.fail = true
	room.Join("c1", s1)
	room.Join("c2", s2)

	res := room.Broadcast(Frame(`{}`), NoExclusion)
	assert.Equal(t, 1, res.SentTo)
	assert.Equal(t, []ConnID{"c1"}, res.Dropped)
	assert.Equal(t, 1, c2.count(), "one failure must not abort delivery to siblings")
}

func TestOccupancyCallbackSeesOrderedEdges(t *testing.T) {
	var edges []Occupancy
	room := NewRoomService(&domain.Room{ID: "ABC123"}, func(_ domain.RoomID, tr Occupancy) {
		edges = append(edges, tr)
	})
	s1, _ := newSession("alice")
	s2, _ := newSession("bob")

	room.Join("c1", s1)
	room.Join("c2", s2)
	room.Leave("c1")
	room.Leave("c2")
	room.Join("c1", s1)
	room.Leave("c1")

	assert.Equal(t, []Occupancy{RoomOccupied, RoomEmptied, RoomOccupied, RoomEmptied}, edges)
}

func TestConcurrentJoinsReportOneEmptyEdge(t *testing.T) {
	room := NewRoomService(&domain.Room{ID: "ABC123"}, nil)

	const n = 32
	var wg sync.WaitGroup
	results := make([]JoinResult, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess, _ := newSession("p")
			results[i] = room.Join(ConnID(rune('a'+i)), sess)
		}(i)
	}
	wg.Wait()

	edges := 0
	for _, res := range results {
		if res.WasEmpty {
			edges++
		}
	}
	assert.Equal(t, 1, edges, "exactly one join may observe the empty room")
	assert.Equal(t, n, room.MemberCount())
}
