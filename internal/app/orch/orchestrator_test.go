package orch

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jatinupadhyay27/my-meet/internal/app"
	"github.com/jatinupadhyay27/my-meet/internal/core"
	"github.com/jatinupadhyay27/my-meet/internal/domain"
)

type capturingConn struct {
	mu     sync.Mutex
	frames []core.Frame
}

func (c *capturingConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
	return nil
}

func (c *capturingConn) Close() {}

// kinds decodes the type tag of every frame the connection received.
func (c *capturingConn) kinds(t *testing.T) []string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.frames))
	for _, f := range c.frames {
		var env struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal(f, &env))
		out = append(out, env.Type)
	}
	return out
}

type countingStore struct {
	mu     sync.Mutex
	starts map[domain.RoomID]int
	stops  map[domain.RoomID]int
}

func newCountingStore() *countingStore {
	return &countingStore{starts: make(map[domain.RoomID]int), stops: make(map[domain.RoomID]int)}
}

func (s *countingStore) StartRecording(room domain.RoomID) (*domain.RecordingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts[room]++
	return &domain.RecordingSession{ID: "r", Room: room, StartedAt: time.Now()}, nil
}

func (s *countingStore) StopRecording(room domain.RoomID) (*domain.RecordingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops[room]++
	return &domain.RecordingSession{ID: "r", Room: room, Duration: time.Second}, nil
}

func (s *countingStore) LatestRecording(domain.RoomID) (*domain.RecordingSession, error) {
	return nil, nil
}

func (s *countingStore) counts(room domain.RoomID) (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts[room], s.stops[room]
}

type staticDirectory struct {
	known map[domain.RoomID]RoomMetadata
}

func (d staticDirectory) Lookup(_ context.Context, room domain.RoomID) (RoomMetadata, error) {
	return d.known[room], nil
}

type fixture struct {
	orch  *Orchestrator
	store *countingStore
}

func newFixture() *fixture {
	store := newCountingStore()
	rec := app.NewRecorder(store)
	return &fixture{
		orch: &Orchestrator{
			Registry: app.NewRegistry(),
			Rooms:    app.NewRoomManager(rec.OnOccupancy),
			Policy:   app.SimplePolicy{},
		},
		store: store,
	}
}

func (f *fixture) connect(t *testing.T, id core.ConnID) *capturingConn {
	t.Helper()
	conn := &capturingConn{}
	f.orch.Registry.Register(id, core.NewMemberSession(&domain.Participant{}, conn), nil)
	return conn
}

func (f *fixture) waitForCounts(t *testing.T, room domain.RoomID, starts, stops int) {
	t.Helper()
	require.Eventually(t, func() bool {
		gotStarts, gotStops := f.store.counts(room)
		return gotStarts == starts && gotStops == stops
	}, time.Second, 5*time.Millisecond)
}

func roomSize(o *Orchestrator, room domain.RoomID) int {
	if r, ok := o.Rooms.Lookup(room); ok {
		return r.MemberCount()
	}
	return 0
}

func TestMeetingLifecycleScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	c1 := f.connect(t, "C1")
	c2 := f.connect(t, "C2")

	// C1 joins: recording starts, ack goes back, nobody else to notify.
	ack, err := f.orch.Join(ctx, "C1", "abc123", "alice")
	require.NoError(t, err)
	assert.Equal(t, core.KindJoinedRoom, ack.Type)
	assert.Equal(t, domain.RoomID("ABC123"), ack.Room)
	assert.Equal(t, 1, ack.Count)
	assert.Equal(t, 1, roomSize(f.orch, "ABC123"))
	f.waitForCounts(t, "ABC123", 1, 0)

	// C2 joins: no second start, peer-joined reaches C1 only.
	ack, err = f.orch.Join(ctx, "C2", "ABC123", "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, ack.Count)
	assert.Equal(t, []string{core.KindPeerJoined}, c1.kinds(t))
	assert.Empty(t, c2.kinds(t))
	f.waitForCounts(t, "ABC123", 1, 0)

	// C1 leaves: room still occupied, no stop.
	f.orch.Leave("C1", "ABC123")
	assert.Equal(t, 1, roomSize(f.orch, "ABC123"))
	assert.Equal(t, []string{core.KindPeerLeft}, c2.kinds(t))
	f.waitForCounts(t, "ABC123", 1, 0)

	// C2 leaves: exactly one stop, room entry pruned.
	f.orch.Leave("C2", "ABC123")
	f.waitForCounts(t, "ABC123", 1, 1)
	_, ok := f.orch.Rooms.Lookup("ABC123")
	assert.False(t, ok, "empty room entry should be pruned")
}

func TestJoinIsIdempotentAcrossCalls(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.connect(t, "C1")

	_, err := f.orch.Join(ctx, "C1", "ABC123", "alice")
	require.NoError(t, err)
	_, err = f.orch.Join(ctx, "C1", "ABC123", "alice")
	require.NoError(t, err)

	assert.Equal(t, 1, roomSize(f.orch, "ABC123"))
	f.waitForCounts(t, "ABC123", 1, 0)
}

func TestJoinValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.connect(t, "C1")

	_, err := f.orch.Join(ctx, "C1", "", "alice")
	assert.ErrorIs(t, err, ErrEmptyRoomID)

	_, err = f.orch.Join(ctx, "C1", "ABC123", "")
	assert.ErrorIs(t, err, ErrEmptyDisplayName)

	_, err = f.orch.Join(ctx, "ghost", "ABC123", "alice")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestJoinConsultsDirectory(t *testing.T) {
	f := newFixture()
	f.orch.Directory = staticDirectory{known: map[domain.RoomID]RoomMetadata{
		"ABC123": {Exists: true},
	}}
	ctx := context.Background()
	f.connect(t, "C1")

	_, err := f.orch.Join(ctx, "C1", "NOPE99", "alice")
	assert.ErrorIs(t, err, ErrUnknownRoom)

	_, err = f.orch.Join(ctx, "C1", "abc123", "alice")
	assert.NoError(t, err)
}

func TestDisconnectCleansEveryRoom(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.connect(t, "C1")

	_, err := f.orch.Join(ctx, "C1", "AAA111", "alice")
	require.NoError(t, err)
	_, err = f.orch.Join(ctx, "C1", "BBB222", "alice")
	require.NoError(t, err)
	f.waitForCounts(t, "AAA111", 1, 0)
	f.waitForCounts(t, "BBB222", 1, 0)

	f.orch.Disconnect("C1")

	assert.Zero(t, roomSize(f.orch, "AAA111"))
	assert.Zero(t, roomSize(f.orch, "BBB222"))
	f.waitForCounts(t, "AAA111", 1, 1)
	f.waitForCounts(t, "BBB222", 1, 1)
}

func TestSendMessageReachesWholeRoom(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	c1 := f.connect(t, "C1")
	c2 := f.connect(t, "C2")
	_, err := f.orch.Join(ctx, "C1", "ABC123", "alice")
	require.NoError(t, err)
	_, err = f.orch.Join(ctx, "C2", "ABC123", "bob")
	require.NoError(t, err)

	require.NoError(t, f.orch.SendMessage("C1", "ABC123", "alice", "hello"))

	assert.Contains(t, c1.kinds(t), core.KindMessageReceived, "sender receives their own message")
	assert.Contains(t, c2.kinds(t), core.KindMessageReceived)
}

func TestEmptyMessageIsRejectedWithoutBroadcast(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	c1 := f.connect(t, "C1")
	c2 := f.connect(t, "C2")
	_, err := f.orch.Join(ctx, "C1", "ABC123", "alice")
	require.NoError(t, err)
	_, err = f.orch.Join(ctx, "C2", "ABC123", "bob")
	require.NoError(t, err)

	err = f.orch.SendMessage("C1", "ABC123", "alice", "")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	assert.NotContains(t, c1.kinds(t), core.KindMessageReceived)
	assert.NotContains(t, c2.kinds(t), core.KindMessageReceived)
}

func TestReactionAndHandRaiseFanout(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	c1 := f.connect(t, "C1")
	c2 := f.connect(t, "C2")
	_, err := f.orch.Join(ctx, "C1", "ABC123", "alice")
	require.NoError(t, err)
	_, err = f.orch.Join(ctx, "C2", "ABC123", "bob")
	require.NoError(t, err)

	require.NoError(t, f.orch.SendReaction("C1", "ABC123", "alice", "👏"))
	require.NoError(t, f.orch.RaiseHand("C2", "ABC123", "bob", true))

	assert.Subset(t, c1.kinds(t), []string{core.KindReactionReceived, core.KindHandRaiseUpdated})
	assert.Subset(t, c2.kinds(t), []string{core.KindReactionReceived, core.KindHandRaiseUpdated})

	err = f.orch.SendReaction("C1", "ABC123", "", "👏")
	assert.ErrorIs(t, err, ErrEmptySender)
}

func TestRelayIsDirected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	c1 := f.connect(t, "C1")
	c2 := f.connect(t, "C2")
	c3 := f.connect(t, "C3")
	for id, name := range map[core.ConnID]string{"C1": "alice", "C2": "bob", "C3": "carol"} {
		_, err := f.orch.Join(ctx, id, "ABC123", name)
		require.NoError(t, err)
	}
	before1, before3 := len(c1.kinds(t)), len(c3.kinds(t))

	require.NoError(t, f.orch.Relay("C1", "ABC123", "C2", core.Frame(`{"type":"offer"}`)))

	assert.Contains(t, c2.kinds(t), "offer")
	assert.Len(t, c1.kinds(t), before1, "relay must not echo to the sender")
	assert.Len(t, c3.kinds(t), before3, "relay must not reach third parties")

	err := f.orch.Relay("C1", "ABC123", "ghost", core.Frame(`{}`))
	assert.ErrorIs(t, err, ErrUnknownTarget)
}
