// Package step defines the production steps of a short and the invoker that
// runs them against a conversation's shared state.
package step

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
)

// Shared state keys. Each production step writes exactly one of them.
const (
	KeyUserRequest    = "user_request"
	KeyThemeIntent    = "theme_intent"
	KeyRejectedTheme  = "rejected_theme"
	KeyThemeFeedback  = "theme_feedback"
	KeyResearchReport = "research_report"
	KeyScript         = "script"
	KeyRejectedScript = "rejected_script"
	KeyScriptFeedback = "script_feedback"
	KeyImagePrompts   = "image_prompts"
	KeyImagesPath     = "images_path"
	KeyAssetsPath     = "assets_path"
)

// ErrMissingOutput means a step finished without writing its output key.
var ErrMissingOutput = errors.New("step produced no output")

// MissingOutputError names the step that produced no output. It matches
// ErrMissingOutput with errors.Is.
type MissingOutputError struct {
	Step  string
	Cause error
}

func (e *MissingOutputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v: %v", e.Step, ErrMissingOutput, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Step, ErrMissingOutput)
}

// Is reports target == ErrMissingOutput.
func (e *MissingOutputError) Is(target error) bool { return target == ErrMissingOutput }

// Unwrap returns the step's own error, if any.
func (e *MissingOutputError) Unwrap() error { return e.Cause }

// SharedState is the key/value record steps read from and write to. After a
// reload from disk, structured values come back as generic JSON values.
type SharedState map[string]any

// String returns the trimmed text stored under key, or "".
func (s SharedState) String(key string) string {
	v, _ := s[key].(string)
	return strings.TrimSpace(v)
}

// Clone returns a shallow copy.
func (s SharedState) Clone() SharedState {
	out := make(SharedState, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Step runs to completion and returns the value for its output key. A nil or
// empty value counts as no output.
type Step interface {
	Name() string
	OutputKey() string
	Run(ctx context.Context, state SharedState) (any, error)
}

// Func adapts a function to Step.
type Func struct {
	StepName string
	Key      string
	Fn       func(ctx context.Context, state SharedState) (any, error)
}

// Name implements Step.
func (f Func) Name() string { return f.StepName }

// OutputKey implements Step.
func (f Func) OutputKey() string { return f.Key }

// Run implements Step.
func (f Func) Run(ctx context.Context, state SharedState) (any, error) {
	return f.Fn(ctx, state)
}

// Archiver records a snapshot of shared state into a directory.
type Archiver interface {
	Archive(dir string, shared map[string]any) error
}

// Invoker runs steps and records their outputs.
type Invoker struct {
	archiver Archiver
	logger   *slog.Logger
}

// NewInvoker returns an Invoker. archiver may be nil.
func NewInvoker(archiver Archiver, logger *slog.Logger) *Invoker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Invoker{archiver: archiver, logger: logger}
}

// Invoke runs s against state. On success the output is stored under the
// step's key and state is archived into archiveDir. Any failure, including a
// step error, is reported as ErrMissingOutput and leaves the key absent.
func (inv *Invoker) Invoke(ctx context.Context, s Step, state SharedState, archiveDir string) (any, error) {
	key := s.OutputKey()
	logger := inv.logger.With("step", s.Name(), "key", key)
	logger.Debug("running step")

	out, err := s.Run(ctx, state)
	if err != nil {
		delete(state, key)
		logger.Warn("step failed", "error", err)
		return nil, &MissingOutputError{Step: s.Name(), Cause: err}
	}
	if IsEmpty(out) {
		delete(state, key)
		logger.Warn("step returned no output")
		return nil, &MissingOutputError{Step: s.Name()}
	}

	state[key] = out
	logger.Info("step completed")

	if inv.archiver != nil && archiveDir != "" {
		if err := inv.archiver.Archive(archiveDir, state); err != nil {
			logger.Warn("failed to archive outputs", "dir", archiveDir, "error", err)
		}
	}
	return out, nil
}

// IsEmpty reports whether v carries no usable output: nil, blank text, or an
// empty map, slice or array.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
