package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/jatinupadhyay27/my-meet/internal/core"
)

func (ctl *Controller) handleJoinRoom(
	ctx context.Context,
	id core.ConnID,
	conn *wsSignalConn,
	data []byte,
) {
	type joinPayload struct {
		Type        string `json:"type"`
		Room        string `json:"roomId"`
		DisplayName string `json:"displayName"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.reject(conn, "bad payload")
		return
	}

	ack, err := ctl.Orch.Join(ctx, id, p.Room, p.DisplayName)
	if err != nil {
		log.Info().Err(err).Str("module", "signal").Str("conn", string(id)).Str("room", p.Room).Msg("join rejected")
		ctl.reject(conn, err.Error())
		return
	}
	ctl.sendJSON(conn, ack)
}

func (ctl *Controller) handleLeaveRoom(
	id core.ConnID,
	conn *wsSignalConn,
	data []byte,
) {
	type leavePayload struct {
		Type string `json:"type"`
		Room string `json:"roomId"`
	}
	var p leavePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad leave payload")
		ctl.reject(conn, "bad payload")
		return
	}
	if p.Room == "" {
		ctl.reject(conn, "roomId is required")
		return
	}

	ctl.Orch.Leave(id, p.Room)
	ctl.sendJSON(conn, map[string]any{"type": "left-room", "roomId": p.Room})
}
