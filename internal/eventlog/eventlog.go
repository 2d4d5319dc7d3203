// Package eventlog keeps an append-only NDJSON transcript per conversation:
// one line for the human message and one per reply of every turn.
package eventlog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/geethika608/youtube-short-creator/internal/ndjson"
	"github.com/geethika608/youtube-short-creator/internal/workflow"
)

// Roles of transcript entries.
const (
	RoleHuman     = "human"
	RoleAssistant = "assistant"
)

// Entry is one transcript line.
type Entry struct {
	Time      time.Time            `json:"time"`
	SessionID string               `json:"session_id"`
	Turn      int                  `json:"turn"`
	Stage     string               `json:"stage"`
	Role      string               `json:"role"`
	Kind      workflow.MessageKind `json:"kind,omitempty"`
	Text      string               `json:"text"`
}

// EventLog appends entries to one NDJSON file.
type EventLog struct {
	file    *os.File
	encoder *ndjson.Encoder
	logger  *slog.Logger
	mu      sync.Mutex
}

// NewEventLog opens logPath for appending, creating it and its directory.
func NewEventLog(logPath string, logger *slog.Logger) (*EventLog, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dir := filepath.Dir(logPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &EventLog{
		file:    file,
		encoder: ndjson.NewEncoder(file, logger),
		logger:  logger,
	}, nil
}

// Write appends one entry.
func (l *EventLog) Write(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.encoder.Encode(entry)
}

// Close closes the log file.
func (l *EventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// ReadEntries returns every entry in the transcript at path. A missing file
// is an empty transcript.
func ReadEntries(path string, logger *slog.Logger) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}
	defer file.Close()

	decoder := ndjson.NewDecoder(file, logger)
	var entries []Entry
	for {
		var e Entry
		if err := decoder.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				return entries, nil
			}
			return entries, err
		}
		entries = append(entries, e)
	}
}
