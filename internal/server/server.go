// Package server exposes the workflow over HTTP for hosting runtimes: one
// POST per turn, plus a WebSocket that runs turns over a single connection.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geethika608/youtube-short-creator/internal/eventlog"
	"github.com/geethika608/youtube-short-creator/internal/session"
	"github.com/geethika608/youtube-short-creator/internal/snapshot"
	"github.com/geethika608/youtube-short-creator/internal/workflow"
)

// Transcripts reads the stored turn log of a session.
type Transcripts interface {
	Entries(sessionID string) ([]eventlog.Entry, error)
}

// Options wires a Server.
type Options struct {
	Runner      *workflow.Runner
	Transcripts Transcripts
	Logger      *slog.Logger
	// NewID generates session IDs; defaults to session.NewID.
	NewID func() string
}

// Server routes HTTP requests to a workflow Runner.
type Server struct {
	runner      *workflow.Runner
	transcripts Transcripts
	logger      *slog.Logger
	newID       func() string
	engine      *gin.Engine
}

// New builds the server and its routes.
func New(opts Options) *Server {
	s := &Server{
		runner:      opts.Runner,
		transcripts: opts.Transcripts,
		logger:      opts.Logger,
		newID:       opts.NewID,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.newID == nil {
		s.newID = func() string { return session.NewID(time.Now()) }
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.health)
	r.POST("/sessions", s.createSession)
	r.GET("/sessions/:id", s.getSession)
	r.GET("/sessions/:id/transcript", s.getTranscript)
	r.GET("/sessions/:id/assets", s.getAssets)
	r.POST("/run", s.run)
	r.GET("/ws/:id", s.stream)

	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// turnResponse is the body returned for every turn.
type turnResponse struct {
	SessionID string             `json:"session_id"`
	Stage     string             `json:"stage"`
	Messages  []workflow.Message `json:"messages"`
	State     workflow.State     `json:"state"`
}

func newTurnResponse(conv workflow.Conversation, messages []workflow.Message) turnResponse {
	if messages == nil {
		messages = []workflow.Message{}
	}
	return turnResponse{
		SessionID: conv.ID,
		Stage:     conv.State.Stage.String(),
		Messages:  messages,
		State:     conv.State,
	}
}

// runRequest accepts both the flat {session_id, message} body and the chat
// frontend's {session_id, new_message: {parts: [{text}]}} shape.
type runRequest struct {
	SessionID  string      `json:"session_id"`
	Message    string      `json:"message"`
	NewMessage *newMessage `json:"new_message,omitempty"`
}

type newMessage struct {
	Role  string `json:"role"`
	Parts []struct {
		Text string `json:"text"`
	} `json:"parts"`
}

func (r runRequest) text() string {
	if r.Message != "" || r.NewMessage == nil {
		return r.Message
	}
	parts := make([]string, 0, len(r.NewMessage.Parts))
	for _, p := range r.NewMessage.Parts {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n")
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) createSession(c *gin.Context) {
	conv, err := s.runner.Create(s.newID())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session_id": conv.ID, "stage": conv.State.Stage.String()})
}

func (s *Server) getSession(c *gin.Context) {
	conv, err := s.runner.Get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

func (s *Server) getTranscript(c *gin.Context) {
	id := c.Param("id")
	if err := session.ValidateID(id); err != nil {
		s.fail(c, err)
		return
	}
	if s.transcripts == nil {
		c.JSON(http.StatusOK, gin.H{"session_id": id, "entries": []eventlog.Entry{}})
		return
	}

	entries, err := s.transcripts.Entries(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	if entries == nil {
		entries = []eventlog.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"session_id": id, "entries": entries})
}

// getAssets lists the files in the session's project folder.
func (s *Server) getAssets(c *gin.Context) {
	conv, err := s.runner.Get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if conv.State.WorkspacePath == "" {
		c.JSON(http.StatusOK, gin.H{"session_id": conv.ID, "files": []snapshot.FileInfo{}})
		return
	}

	manifest, err := snapshot.Capture(conv.State.WorkspacePath)
	if err != nil {
		s.fail(c, err)
		return
	}
	files := manifest.Files
	if files == nil {
		files = []snapshot.FileInfo{}
	}
	c.JSON(http.StatusOK, gin.H{"session_id": conv.ID, "snapshot_id": manifest.SnapshotID, "files": files})
}

func (s *Server) run(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.SessionID == "" {
		req.SessionID = s.newID()
	}

	conv, messages, err := s.runner.RunTurn(c.Request.Context(), req.SessionID, req.text())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newTurnResponse(conv, messages))
}

// fail maps an error to a status code and writes it.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrInvalidID):
		status = http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
