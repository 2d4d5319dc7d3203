package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/geethika608/youtube-short-creator/internal/session"
)

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsRequest is one client frame: the human message for the next turn.
type wsRequest struct {
	Message string `json:"message"`
}

type wsError struct {
	Error string `json:"error"`
}

// stream runs one turn per received frame and answers each with the
// turn response. Turns on one connection are sequential.
func (s *Server) stream(c *gin.Context) {
	id := c.Param("id")
	if err := session.ValidateID(id); err != nil {
		s.fail(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "session_id", id, "error", err)
		return
	}
	defer conn.Close()

	logger := s.logger.With("session_id", id)
	logger.Info("websocket connected")
	ctx := c.Request.Context()

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		conv, messages, err := s.runner.RunTurn(ctx, id, req.Message)
		var out any = newTurnResponse(conv, messages)
		if err != nil {
			logger.Error("turn failed", "error", err)
			out = wsError{Error: err.Error()}
		}

		if err := writeFrame(conn, out, logger); err != nil {
			return
		}
	}
}

// frameWriter is the write half of a websocket connection.
type frameWriter interface {
	SetWriteDeadline(t time.Time) error
	WriteJSON(v any) error
}

// writeFrame sends v within wsWriteTimeout. Any error ends the connection.
func writeFrame(w frameWriter, v any, logger *slog.Logger) error {
	if err := w.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		logger.Debug("websocket write deadline failed", "error", err)
		return err
	}
	if err := w.WriteJSON(v); err != nil {
		logger.Warn("websocket write failed", "error", err)
		return err
	}
	return nil
}
