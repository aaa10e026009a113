package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/jatinupadhyay27/my-meet/internal/app/orch"
	"github.com/jatinupadhyay27/my-meet/internal/core"
	"github.com/jatinupadhyay27/my-meet/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

const (
	chatRateLimit    = 20
	chatRateInterval = 10 * time.Second
)

type Controller struct {
	Orch *orch.Orchestrator

	readLimit  int64
	pingPeriod time.Duration
	limiter    *chatRateLimiter
}

func NewController(o *orch.Orchestrator, readLimit int64, pingPeriod time.Duration) *Controller {
	return &Controller{
		Orch:       o,
		readLimit:  readLimit,
		pingPeriod: pingPeriod,
		limiter:    newChatRateLimiter(chatRateLimit, chatRateInterval),
	}
}

type wsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and runs the connection's pump pair.
// Every websocket gets a fresh connection id: the client-token cookie is
// per browser and two tabs must not share a membership identity.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	connID := core.ConnID(uuid.NewString())
	log.Info().Str("module", "signal").Str("conn", string(connID)).Str("client_token", c.GetString("client_token")).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.readLimit > 0 {
		ws.SetReadLimit(ctl.readLimit)
	}

	conn := &wsSignalConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	sess := core.NewMemberSession(&domain.Participant{}, conn)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Registry.Register(connID, sess, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, connID, conn)
}
