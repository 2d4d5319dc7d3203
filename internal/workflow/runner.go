package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrNotFound is returned by a Store that has no conversation for an ID.
var ErrNotFound = errors.New("conversation not found")

// Store persists conversations between turns.
type Store interface {
	Load(id string) (Conversation, error)
	Save(conv Conversation) error
}

// Recorder appends a finished turn to a transcript.
type Recorder interface {
	Record(conv Conversation, human string, messages []Message) error
}

// Locker serializes turns of one conversation. Lock returns the unlock func.
type Locker interface {
	Lock(id string) func()
}

// Runner executes turns against persisted conversations: it reloads the
// conversation, hands the message to the Controller, and writes the result
// back before returning.
type Runner struct {
	controller *Controller
	store      Store
	recorder   Recorder
	locks      Locker
	logger     *slog.Logger
	now        func() time.Time
}

// NewRunner wires a Runner. recorder and locks may be nil.
func NewRunner(controller *Controller, store Store, recorder Recorder, locks Locker, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		controller: controller,
		store:      store,
		recorder:   recorder,
		locks:      locks,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// RunTurn processes message for conversation id, creating the conversation
// on its first turn. The returned error covers loading, saving and recording;
// workflow failures are reported as messages.
func (r *Runner) RunTurn(ctx context.Context, id, message string) (Conversation, []Message, error) {
	if r.locks != nil {
		unlock := r.locks.Lock(id)
		defer unlock()
	}

	conv, err := r.store.Load(id)
	switch {
	case errors.Is(err, ErrNotFound):
		conv = NewConversation(id, r.now())
		r.logger.Info("starting conversation", "session_id", id)
	case err != nil:
		return Conversation{}, nil, fmt.Errorf("load conversation %s: %w", id, err)
	}

	next, messages := r.controller.HandleTurn(ctx, conv, message)
	if err := ctx.Err(); err != nil {
		return conv, messages, fmt.Errorf("turn interrupted: %w", err)
	}

	next.Turns = conv.Turns + 1
	next.UpdatedAt = r.now()
	if err := r.store.Save(next); err != nil {
		return conv, messages, fmt.Errorf("save conversation %s: %w", id, err)
	}

	if r.recorder != nil {
		if err := r.recorder.Record(next, message, messages); err != nil {
			return next, messages, fmt.Errorf("record turn for %s: %w", id, err)
		}
	}
	return next, messages, nil
}

// Get loads a conversation without running a turn.
func (r *Runner) Get(id string) (Conversation, error) {
	return r.store.Load(id)
}

// Create stores a fresh conversation under id. An existing conversation is
// returned as is.
func (r *Runner) Create(id string) (Conversation, error) {
	if r.locks != nil {
		unlock := r.locks.Lock(id)
		defer unlock()
	}

	conv, err := r.store.Load(id)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Conversation{}, fmt.Errorf("load conversation %s: %w", id, err)
	}

	conv = NewConversation(id, r.now())
	if err := r.store.Save(conv); err != nil {
		return Conversation{}, fmt.Errorf("save conversation %s: %w", id, err)
	}
	r.logger.Info("created conversation", "session_id", id)
	return conv, nil
}
