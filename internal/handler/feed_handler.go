package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/class-subjects/internal/metrics"
	"github.com/stemsi/class-subjects/internal/service"
	ws "github.com/stemsi/class-subjects/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// FeedHandler streams newly stored subjects records over WebSocket.
type FeedHandler struct {
	subjectService *service.SubjectService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

func NewFeedHandler(subjectService *service.SubjectService, log zerolog.Logger, allowedOrigins []string) *FeedHandler {
	return &FeedHandler{
		subjectService: subjectService,
		log:            log.With().Str("component", "feed_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// Stream godoc
// WS /api/subjects/stream
// Pushes {"event":"record","record":{...}} for every stored submission.
// Clients may send {"action":"ping"} and receive {"event":"pong"}. Any other
// frame is answered with {"event":"error","error":"..."} and the feed stays open.
func (h *FeedHandler) Stream(c *gin.Context) {
	// Subscribe before the handshake completes so no record stored after
	// the client sees the upgrade is missed.
	records, cancel := h.subjectService.Subscribe()
	defer cancel()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	metrics.FeedSubscribers.Inc()
	defer metrics.FeedSubscribers.Dec()

	connLog := h.log.With().Str("remote", c.ClientIP()).Logger()
	connLog.Info().Msg("Feed subscriber connected")

	// Reader: turns client frames into replies for the writer and notices
	// the client going away. Replies that do not fit the buffers are dropped.
	pings := make(chan struct{}, 1)
	errs := make(chan string, 8)
	closed := make(chan struct{})
	reply := func(msg string) {
		select {
		case errs <- msg:
		default:
		}
	}
	go func() {
		defer close(closed)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if errors.Is(err, ws.ErrMalformedMessage) {
					connLog.Debug().Err(err).Msg("Malformed message")
					reply("invalid message: expected JSON")
					continue
				}
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					connLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}

			switch msg.Action {
			case ws.ActionPing:
				select {
				case pings <- struct{}{}:
				default:
				}
			default:
				connLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
				reply("unknown action: " + string(msg.Action))
			}
		}
	}()

	// Writer: the only goroutine writing to conn.
	for {
		select {
		case <-closed:
			connLog.Debug().Msg("Feed subscriber disconnected")
			return
		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		case msg := <-errs:
			if err := ws.WriteError(conn, msg); err != nil {
				return
			}
		case rec, ok := <-records:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := ws.WriteTyped(conn, ws.RecordEvent{Event: ws.EventRecord, Record: rec}); err != nil {
				connLog.Warn().Err(err).Msg("Feed write failed")
				return
			}
		}
	}
}
