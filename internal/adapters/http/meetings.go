package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jatinupadhyay27/my-meet/internal/core"
	"github.com/jatinupadhyay27/my-meet/internal/domain"
	"github.com/jatinupadhyay27/my-meet/internal/meetings"
)

type MeetingsHandler struct {
	Service    *meetings.Service
	Recordings core.RecordingStore
	Rooms      core.RoomManager
}

type createMeetingRequest struct {
	Title    string `json:"title" binding:"required"`
	HostName string `json:"hostName" binding:"required"`
	Password string `json:"password"`
}

func (h *MeetingsHandler) CreateMeeting(c *gin.Context) {
	var req createMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and hostName are required"})
		return
	}

	m, err := h.Service.Create(c.Request.Context(), req.Title, req.HostName, req.Password)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("create meeting")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create meeting"})
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *MeetingsHandler) GetMeeting(c *gin.Context) {
	m, err := h.Service.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, meetings.ErrMeetingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "meeting not found"})
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Msg("get meeting")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":             m.Code,
		"title":            m.Title,
		"hostName":         m.HostName,
		"requiresPassword": m.RequiresPassword(),
		"createdAt":        m.CreatedAt,
	})
}

type joinMeetingRequest struct {
	DisplayName string `json:"displayName" binding:"required"`
	Password    string `json:"password"`
}

func (h *MeetingsHandler) JoinMeeting(c *gin.Context) {
	var req joinMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "displayName is required"})
		return
	}

	token, err := h.Service.Join(c.Request.Context(), c.Param("code"), req.Password, req.DisplayName)
	switch {
	case errors.Is(err, meetings.ErrMeetingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "meeting not found"})
	case errors.Is(err, meetings.ErrWrongPassword):
		c.JSON(http.StatusForbidden, gin.H{"error": "wrong password"})
	case err != nil:
		log.Error().Err(err).Str("module", "adapters.http").Msg("join meeting")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "join failed"})
	default:
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

// LatestRecording exposes the newest finalized recording for a meeting,
// consumed by the transcription pipeline.
func (h *MeetingsHandler) LatestRecording(c *gin.Context) {
	room := domain.NormalizeRoomID(c.Param("code"))
	sess, err := h.Recordings.LatestRecording(room)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("room", string(room)).Msg("latest recording lookup")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no recording for this meeting"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *MeetingsHandler) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.Rooms.List())
}
