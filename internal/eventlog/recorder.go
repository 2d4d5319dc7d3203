package eventlog

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/geethika608/youtube-short-creator/internal/workflow"
)

// Recorder writes finished turns to <Dir>/<session id>.ndjson.
type Recorder struct {
	Dir    string
	logger *slog.Logger
	now    func() time.Time
}

// NewRecorder returns a recorder writing under dir, typically
// <state_dir>/transcripts.
func NewRecorder(dir string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		Dir:    dir,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Path returns the transcript file for a session.
func (r *Recorder) Path(sessionID string) string {
	return filepath.Join(r.Dir, sessionID+".ndjson")
}

// Record appends the human message followed by every reply of the turn.
func (r *Recorder) Record(conv workflow.Conversation, human string, messages []workflow.Message) error {
	log, err := NewEventLog(r.Path(conv.ID), r.logger)
	if err != nil {
		return err
	}

	now := r.now()
	base := Entry{Time: now, SessionID: conv.ID, Turn: conv.Turns, Stage: conv.State.Stage.String()}

	entry := base
	entry.Role = RoleHuman
	entry.Text = human
	writeErr := log.Write(entry)

	for _, m := range messages {
		if writeErr != nil {
			break
		}
		entry := base
		entry.Role = RoleAssistant
		entry.Kind = m.Kind
		entry.Text = m.Text
		writeErr = log.Write(entry)
	}

	if err := errors.Join(writeErr, log.Close()); err != nil {
		return fmt.Errorf("failed to record turn %d: %w", conv.Turns, err)
	}
	return nil
}

// Entries reads the transcript of a session.
func (r *Recorder) Entries(sessionID string) ([]Entry, error) {
	return ReadEntries(r.Path(sessionID), r.logger)
}
