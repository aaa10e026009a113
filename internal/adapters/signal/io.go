package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/jatinupadhyay27/my-meet/internal/core"
)

func (ctl *Controller) writePump(ctx context.Context, c *wsSignalConn) {
	ticker := time.NewTicker(ctl.pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump owns the connection lifecycle: when it returns, for whatever
// reason, membership is unwound from every room the connection was in.
func (ctl *Controller) readPump(ctx context.Context, id core.ConnID, c *wsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(id)).Msg("readPump closing")
		ctl.Orch.Disconnect(id)
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("readPump read error")
				return
			}
			ctl.dispatch(ctx, id, c, data)
		}
	}
}

func (ctl *Controller) dispatch(ctx context.Context, id core.ConnID, c *wsSignalConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		ctl.reject(c, "bad payload")
		return
	}

	switch env.Type {
	case "join-room":
		ctl.handleJoinRoom(ctx, id, c, data)
	case "leave-room":
		ctl.handleLeaveRoom(id, c, data)
	case "send-message":
		ctl.handleSendMessage(id, c, data)
	case "send-reaction":
		ctl.handleSendReaction(id, c, data)
	case "raise-hand":
		ctl.handleRaiseHand(id, c, data)
	case "offer", "answer":
		ctl.handleDescription(id, c, env.Type, data)
	case "candidate":
		ctl.handleCandidate(id, c, data)
	case "ping":
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

func (ctl *Controller) sendJSON(c *wsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

// reject reports a validation failure to the offending connection only.
func (ctl *Controller) reject(c *wsSignalConn, msg string) {
	ctl.sendJSON(c, core.NewValidationError(msg))
}
