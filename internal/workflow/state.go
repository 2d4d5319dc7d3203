// Package workflow drives a conversation from a free-text request through
// two human checkpoints to a finished set of assets. Each human turn is
// handled in isolation: state is reloaded before the turn and saved after it.
package workflow

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geethika608/youtube-short-creator/internal/step"
)

// Stage is a phase of the production pipeline. Stages only move forward.
type Stage int

const (
	StageTheme Stage = iota + 1
	StageResearch
	StageScript
	StageAssets
)

var stageNames = map[Stage]string{
	StageTheme:    "THEME",
	StageResearch: "RESEARCH",
	StageScript:   "SCRIPT",
	StageAssets:   "ASSETS",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Valid reports whether s is one of the four stages.
func (s Stage) Valid() bool {
	_, ok := stageNames[s]
	return ok
}

// MarshalText implements encoding.TextMarshaler.
func (s Stage) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid stage %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Stage) UnmarshalText(text []byte) error {
	name := strings.ToUpper(strings.TrimSpace(string(text)))
	for stage, n := range stageNames {
		if n == name {
			*s = stage
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", string(text))
}

// Theme is a proposed or approved theme.
type Theme struct {
	Label  string `json:"label"`
	Intent string `json:"intent"`
}

// State is the single record deciding what the next turn does.
type State struct {
	Stage          Stage  `json:"stage"`
	ThemeApproved  bool   `json:"theme_approved"`
	ScriptApproved bool   `json:"script_approved"`
	Theme          *Theme `json:"theme,omitempty"`
	Script         string `json:"script,omitempty"`
	WorkspacePath  string `json:"workspace_path,omitempty"`
}

// NewState returns the state of a fresh conversation.
func NewState() State {
	return State{Stage: StageTheme}
}

// Validate checks the cross-field invariants of s.
func (s State) Validate() error {
	var errs []error
	if !s.Stage.Valid() {
		errs = append(errs, fmt.Errorf("invalid stage %d", int(s.Stage)))
	}
	if s.ThemeApproved && s.Theme == nil {
		errs = append(errs, errors.New("theme approved without a theme"))
	}
	if s.ThemeApproved && s.WorkspacePath == "" {
		errs = append(errs, errors.New("theme approved without a workspace"))
	}
	if s.ScriptApproved && !s.ThemeApproved {
		errs = append(errs, errors.New("script approved before theme"))
	}
	if s.ScriptApproved && s.Script == "" {
		errs = append(errs, errors.New("script approved without a script"))
	}
	if s.Stage > StageTheme && !s.ThemeApproved {
		errs = append(errs, fmt.Errorf("stage %s reached without theme approval", s.Stage))
	}
	if s.Stage == StageAssets && !s.ScriptApproved {
		errs = append(errs, errors.New("assets stage reached without script approval"))
	}
	return errors.Join(errs...)
}

// Conversation is everything persisted for one session.
type Conversation struct {
	ID        string           `json:"id"`
	State     State            `json:"state"`
	Shared    step.SharedState `json:"shared"`
	Turns     int              `json:"turns"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewConversation starts a conversation at the theme stage.
func NewConversation(id string, now time.Time) Conversation {
	return Conversation{
		ID:        id,
		State:     NewState(),
		Shared:    step.SharedState{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a copy that can be modified without touching c.
func (c Conversation) Clone() Conversation {
	out := c
	if c.State.Theme != nil {
		theme := *c.State.Theme
		out.State.Theme = &theme
	}
	if c.Shared != nil {
		out.Shared = c.Shared.Clone()
	} else {
		out.Shared = step.SharedState{}
	}
	return out
}

// MessageKind classifies an outgoing message.
type MessageKind string

const (
	KindStatus     MessageKind = "status"
	KindCheckpoint MessageKind = "checkpoint"
	KindWarning    MessageKind = "warning"
	KindError      MessageKind = "error"
	KindComplete   MessageKind = "complete"
)

// Message is one piece of narration sent back to the human.
type Message struct {
	Kind MessageKind `json:"kind"`
	Text string      `json:"text"`
}
