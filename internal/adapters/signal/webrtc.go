package signal

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/jatinupadhyay27/my-meet/internal/core"
)

// handleDescription relays an SDP offer or answer to one target member.
// The coordinator never inspects media: the payload goes through as a
// typed webrtc.SessionDescription so malformed kinds die here, not at the
// peer.
func (ctl *Controller) handleDescription(
	id core.ConnID,
	conn *wsSignalConn,
	kind string,
	data []byte,
) {
	type descriptionPayload struct {
		Type   string `json:"type"`
		Room   string `json:"roomId"`
		Target string `json:"targetId"`
		SDP    string `json:"sdp"`
	}
	var p descriptionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad description payload")
		ctl.reject(conn, "bad payload")
		return
	}
	if p.Target == "" || p.SDP == "" {
		ctl.reject(conn, "targetId and sdp are required")
		return
	}

	forward := struct {
		Type        string                    `json:"type"`
		Room        string                    `json:"roomId"`
		From        core.ConnID               `json:"from"`
		Description webrtc.SessionDescription `json:"description"`
	}{
		Type: kind,
		Room: p.Room,
		From: id,
		Description: webrtc.SessionDescription{
			Type: webrtc.NewSDPType(kind),
			SDP:  p.SDP,
		},
	}
	frame, err := json.Marshal(forward)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal description relay")
		return
	}

	if err := ctl.Orch.Relay(id, p.Room, core.ConnID(p.Target), frame); err != nil {
		ctl.reject(conn, err.Error())
	}
}

func (ctl *Controller) handleCandidate(
	id core.ConnID,
	conn *wsSignalConn,
	data []byte,
) {
	type candidatePayload struct {
		Type          string `json:"type"`
		Room          string `json:"roomId"`
		Target        string `json:"targetId"`
		Candidate     string `json:"candidate"`
		SDPMid        string `json:"sdpMid"`
		SDPMLineIndex uint16 `json:"sdpMLineIndex"`
	}
	var p candidatePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad candidate payload")
		ctl.reject(conn, "bad payload")
		return
	}
	if p.Target == "" {
		ctl.reject(conn, "targetId is required")
		return
	}

	cand := webrtc.ICECandidateInit{Candidate: p.Candidate}
	if p.SDPMid != "" {
		cand.SDPMid = &p.SDPMid
	}
	cand.SDPMLineIndex = &p.SDPMLineIndex

	forward := struct {
		Type      string                  `json:"type"`
		Room      string                  `json:"roomId"`
		From      core.ConnID             `json:"from"`
		Candidate webrtc.ICECandidateInit `json:"candidate"`
	}{
		Type:      "candidate",
		Room:      p.Room,
		From:      id,
		Candidate: cand,
	}
	frame, err := json.Marshal(forward)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal candidate relay")
		return
	}

	if err := ctl.Orch.Relay(id, p.Room, core.ConnID(p.Target), frame); err != nil {
		ctl.reject(conn, err.Error())
	}
}
