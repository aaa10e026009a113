package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/jatinupadhyay27/my-meet/internal/core"
)

func (ctl *Controller) handleSendMessage(
	id core.ConnID,
	conn *wsSignalConn,
	data []byte,
) {
	type messagePayload struct {
		Type    string `json:"type"`
		Room    string `json:"roomId"`
		Message string `json:"message"`
		Sender  string `json:"sender"`
	}
	var p messagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad message payload")
		ctl.reject(conn, "bad payload")
		return
	}
	if !ctl.limiter.Allow(id) {
		ctl.reject(conn, "too many messages")
		return
	}

	if err := ctl.Orch.SendMessage(id, p.Room, p.Sender, p.Message); err != nil {
		ctl.reject(conn, err.Error())
	}
}

func (ctl *Controller) handleSendReaction(
	id core.ConnID,
	conn *wsSignalConn,
	data []byte,
) {
	type reactionPayload struct {
		Type     string `json:"type"`
		Room     string `json:"roomId"`
		Reaction string `json:"reaction"`
		Sender   string `json:"sender"`
	}
	var p reactionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad reaction payload")
		ctl.reject(conn, "bad payload")
		return
	}
	if !ctl.limiter.Allow(id) {
		ctl.reject(conn, "too many messages")
		return
	}

	if err := ctl.Orch.SendReaction(id, p.Room, p.Sender, p.Reaction); err != nil {
		ctl.reject(conn, err.Error())
	}
}

func (ctl *Controller) handleRaiseHand(
	id core.ConnID,
	conn *wsSignalConn,
	data []byte,
) {
	type handPayload struct {
		Type     string `json:"type"`
		Room     string `json:"roomId"`
		Sender   string `json:"sender"`
		IsRaised bool   `json:"isRaised"`
	}
	var p handPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad hand-raise payload")
		ctl.reject(conn, "bad payload")
		return
	}

	if err := ctl.Orch.RaiseHand(id, p.Room, p.Sender, p.IsRaised); err != nil {
		ctl.reject(conn, err.Error())
	}
}
