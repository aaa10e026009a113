package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jatinupadhyay27/my-meet/internal/adapters/signal"
	"github.com/jatinupadhyay27/my-meet/internal/app/orch"
	"github.com/jatinupadhyay27/my-meet/internal/config"
	"github.com/jatinupadhyay27/my-meet/internal/core"
	"github.com/jatinupadhyay27/my-meet/internal/meetings"
)

// ClientTokenMiddleware gives every browser a stable opaque token. Live
// connection identity is separate (one id per websocket).
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	o *orch.Orchestrator,
	svc *meetings.Service,
	recordings core.RecordingStore,
) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	h := &MeetingsHandler{Service: svc, Recordings: recordings, Rooms: o.Rooms}

	api := r.Group("/api")
	api.POST("/meetings", h.CreateMeeting)
	api.GET("/meetings/:code", h.GetMeeting)
	api.POST("/meetings/:code/join", h.JoinMeeting)
	api.GET("/meetings/:code/recording", h.LatestRecording)
	api.GET("/rooms", h.ListRooms)

	ctl := signal.NewController(o, cfg.ReadLimit, cfg.PingPeriod)
	api.GET("/ws/signal", func(c *gin.Context) {
		ctl.HandleSignal(ctx, c)
	})

	return r
}
