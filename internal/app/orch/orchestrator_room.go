package orch

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/jatinupadhyay27/my-meet/internal/core"
	"github.com/jatinupadhyay27/my-meet/internal/domain"
)

// Join adds the connection to the room, notifies the other members and
// returns the ack the adapter sends back to the joining connection.
// The membership mutation and the recording edge decision happen inside
// the room's critical section; only the fanout runs after it.
func (o *Orchestrator) Join(ctx context.Context, id core.ConnID, rawRoom, displayName string) (core.JoinedRoom, error) {
	roomID := domain.NormalizeRoomID(rawRoom)
	if roomID == "" {
		return core.JoinedRoom{}, ErrEmptyRoomID
	}
	if displayName == "" {
		return core.JoinedRoom{}, ErrEmptyDisplayName
	}

	if o.Directory != nil {
		meta, err := o.Directory.Lookup(ctx, roomID)
		if err != nil {
			// Directory being down should not take meetings down with it.
			log.Error().Err(err).Str("module", "orch").Str("room", string(roomID)).Msg("directory lookup failed, allowing join")
		} else if !meta.Exists {
			return core.JoinedRoom{}, ErrUnknownRoom
		}
	}

	sess, ok := o.Registry.Session(id)
	if !ok {
		return core.JoinedRoom{}, ErrNoSession
	}
	if err := sess.Meta().SetName(displayName); err != nil {
		return core.JoinedRoom{}, err
	}

	room := o.Rooms.GetOrCreate(roomID)
	res := room.Join(id, sess)
	o.Registry.AddRoom(id, roomID)
	log.Info().Str("module", "orch").Str("conn", string(id)).Str("room", string(roomID)).Bool("was_empty", res.WasEmpty).Msg("join")

	now := o.now()
	if res.Added {
		o.fanout(room, core.PeerJoined{
			Type:         core.KindPeerJoined,
			Room:         roomID,
			DisplayName:  displayName,
			ConnectionID: id,
			Timestamp:    now,
		}, id)
	}

	return core.JoinedRoom{
		Type:        core.KindJoinedRoom,
		Room:        roomID,
		DisplayName: displayName,
		Members:     room.MembersSnapshot(),
		Count:       room.MemberCount(),
		Timestamp:   now,
	}, nil
}

// Leave removes the connection from one room. Unknown rooms and
// non-members are silent no-ops.
func (o *Orchestrator) Leave(id core.ConnID, rawRoom string) {
	roomID := domain.NormalizeRoomID(rawRoom)
	if roomID == "" {
		return
	}
	o.leaveRoom(id, roomID, "")
}

// Disconnect unwinds membership from every room the connection belonged
// to. Cleanup of one room never prevents cleanup of the rest.
func (o *Orchestrator) Disconnect(id core.ConnID) {
	var name string
	if sess, ok := o.Registry.Session(id); ok {
		name = sess.Meta().Name
	}
	for _, roomID := range o.Registry.Unregister(id) {
		o.leaveRoom(id, roomID, name)
	}
}

func (o *Orchestrator) leaveRoom(id core.ConnID, roomID domain.RoomID, displayName string) {
	room, ok := o.Rooms.Lookup(roomID)
	if !ok {
		log.Debug().Str("module", "orch").Str("conn", string(id)).Str("room", string(roomID)).Msg("leave for unknown room")
		return
	}
	res := room.Leave(id)
	o.Registry.RemoveRoom(id, roomID)
	if !res.Removed {
		return
	}
	log.Info().Str("module", "orch").Str("conn", string(id)).Str("room", string(roomID)).Bool("empty_after", res.EmptyAfter).Msg("leave")

	o.fanout(room, core.PeerLeft{
		Type:         core.KindPeerLeft,
		Room:         roomID,
		DisplayName:  displayName,
		ConnectionID: id,
		Timestamp:    o.now(),
	}, id)

	if res.EmptyAfter {
		o.Rooms.StopRoom(roomID)
	}
}
