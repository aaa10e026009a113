package orch

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/jatinupadhyay27/my-meet/internal/app"
	"github.com/jatinupadhyay27/my-meet/internal/core"
	"github.com/jatinupadhyay27/my-meet/internal/domain"
)

// SendMessage fans a chat message out to the whole room, sender included.
func (o *Orchestrator) SendMessage(id core.ConnID, rawRoom, sender, message string) error {
	roomID, err := o.validatePublish(rawRoom, sender)
	if err != nil {
		return err
	}
	if message == "" {
		return ErrEmptyMessage
	}
	o.publish(roomID, core.MessageReceived{
		Type:      core.KindMessageReceived,
		Room:      roomID,
		Message:   message,
		Sender:    sender,
		Timestamp: o.now(),
	})
	return nil
}

func (o *Orchestrator) SendReaction(id core.ConnID, rawRoom, sender, reaction string) error {
	roomID, err := o.validatePublish(rawRoom, sender)
	if err != nil {
		return err
	}
	if reaction == "" {
		return ErrEmptyReaction
	}
	o.publish(roomID, core.ReactionReceived{
		Type:      core.KindReactionReceived,
		Room:      roomID,
		Reaction:  reaction,
		Sender:    sender,
		Timestamp: o.now(),
	})
	return nil
}

func (o *Orchestrator) RaiseHand(id core.ConnID, rawRoom, sender string, isRaised bool) error {
	roomID, err := o.validatePublish(rawRoom, sender)
	if err != nil {
		return err
	}
	o.publish(roomID, core.HandRaiseUpdated{
		Type:      core.KindHandRaiseUpdated,
		Room:      roomID,
		Sender:    sender,
		IsRaised:  isRaised,
		Timestamp: o.now(),
	})
	return nil
}

// Relay forwards a WebRTC signaling frame to a single member of the room.
// Both ends must currently be members; the payload is opaque to the core.
func (o *Orchestrator) Relay(from core.ConnID, rawRoom string, target core.ConnID, data core.Frame) error {
	roomID := domain.NormalizeRoomID(rawRoom)
	if roomID == "" {
		return ErrEmptyRoomID
	}
	room, ok := o.Rooms.Lookup(roomID)
	if !ok {
		return ErrUnknownRoom
	}
	if _, ok := room.Member(from); !ok {
		return ErrUnknownTarget
	}
	ms, ok := room.Member(target)
	if !ok {
		return ErrUnknownTarget
	}
	if err := ms.Signal().TrySend(data); err != nil {
		// Target going away mid-relay is normal churn, not a caller error.
		log.Debug().Err(err).Str("module", "orch").Str("target", string(target)).Msg("relay send failed")
	}
	return nil
}

func (o *Orchestrator) validatePublish(rawRoom, sender string) (domain.RoomID, error) {
	roomID := domain.NormalizeRoomID(rawRoom)
	if roomID == "" {
		return "", ErrEmptyRoomID
	}
	if sender == "" {
		return "", ErrEmptySender
	}
	return roomID, nil
}

func (o *Orchestrator) publish(roomID domain.RoomID, ev core.Event) {
	room, ok := o.Rooms.Lookup(roomID)
	if !ok {
		log.Debug().Str("module", "orch").Str("room", string(roomID)).Str("kind", ev.Kind()).Msg("publish to unknown room dropped")
		return
	}
	o.fanout(room, ev, core.NoExclusion)
}

// fanout marshals once and delivers best-effort. Slow connections are
// handled per the backpressure policy, never reported to the caller.
func (o *Orchestrator) fanout(room core.RoomService, ev core.Event, exclude core.ConnID) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("kind", ev.Kind()).Msg("event marshal failed")
		return
	}
	res := room.Broadcast(data, exclude)
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(room, slow) {
		case app.KickMember:
			o.Registry.Cancel(slow)
		case app.DropFrame, app.NoAction:
		}
	}
}
