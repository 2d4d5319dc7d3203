package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/geethika608/youtube-short-creator/internal/step"
)

// ErrMissingOutput is returned by a step run that wrote nothing.
var ErrMissingOutput = step.ErrMissingOutput

// ErrProvisioning means the project folder could not be created.
var ErrProvisioning = errors.New("workspace provisioning failed")

// Steps are the five production steps in pipeline order.
type Steps struct {
	Theme    step.Step
	Research step.Step
	Script   step.Step
	Prompts  step.Step
	Images   step.Step
}

// Provisioner creates project folders.
type Provisioner interface {
	Provision(label, owner string) (string, error)
	DefaultDir(sessionID string) string
}

// Controller is the per-turn state machine. It holds no conversation state of
// its own; everything lives in the Conversation passed to HandleTurn.
type Controller struct {
	steps       Steps
	invoker     *step.Invoker
	gate        *Gate
	provisioner Provisioner
	logger      *slog.Logger
}

// NewController wires a controller.
func NewController(steps Steps, invoker *step.Invoker, gate *Gate, provisioner Provisioner, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if gate == nil {
		gate = NewGate(nil, logger)
	}
	return &Controller{
		steps:       steps,
		invoker:     invoker,
		gate:        gate,
		provisioner: provisioner,
		logger:      logger,
	}
}

// HandleTurn applies one human message to conv and returns the next
// conversation with the messages to send back, in order.
//
// If any step fails to produce output, or the project folder cannot be
// created, conv is returned unchanged and the messages end with exactly one
// error message.
func (c *Controller) HandleTurn(ctx context.Context, conv Conversation, message string) (Conversation, []Message) {
	t := &turn{
		c:      c,
		conv:   conv.Clone(),
		logger: c.logger.With("session_id", conv.ID, "stage", conv.State.Stage.String()),
	}

	err := t.dispatch(ctx, strings.TrimSpace(message))
	if err == nil {
		if verr := t.conv.State.Validate(); verr != nil {
			err = fmt.Errorf("inconsistent state after turn: %w", verr)
		}
	}
	if err != nil {
		t.logger.Error("turn aborted", "error", err)
		return conv, append(t.out, Message{Kind: KindError, Text: abortText(err)})
	}

	t.logger.Info("turn completed", "next_stage", t.conv.State.Stage.String())
	return t.conv, t.out
}

type turn struct {
	c      *Controller
	conv   Conversation
	out    []Message
	logger *slog.Logger
}

func (t *turn) say(kind MessageKind, format string, args ...any) {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	t.out = append(t.out, Message{Kind: kind, Text: text})
}

func (t *turn) run(ctx context.Context, s step.Step) (any, error) {
	return t.c.invoker.Invoke(ctx, s, t.conv.Shared, t.archiveDir())
}

func (t *turn) archiveDir() string {
	if t.conv.State.WorkspacePath != "" {
		return t.conv.State.WorkspacePath
	}
	if t.c.provisioner == nil {
		return ""
	}
	return t.c.provisioner.DefaultDir(t.conv.ID)
}

func (t *turn) dispatch(ctx context.Context, message string) error {
	state := &t.conv.State
	switch state.Stage {
	case StageTheme:
		if state.Theme == nil {
			return t.proposeTheme(ctx, message)
		}
		return t.themeCheckpoint(ctx, message)
	case StageResearch:
		return t.researchAndScript(ctx)
	case StageScript:
		if state.Script == "" {
			return t.proposeScript(ctx)
		}
		return t.scriptCheckpoint(ctx, message)
	case StageAssets:
		t.say(KindComplete, "This YouTube Short is already complete. Check your project folder: %s", state.WorkspacePath)
		return nil
	default:
		return fmt.Errorf("unknown stage %d", int(state.Stage))
	}
}

// proposeTheme generates a theme for the stored request, recording message
// as the request when one is given.
func (t *turn) proposeTheme(ctx context.Context, message string) error {
	if message != "" && t.conv.Shared.String(step.KeyUserRequest) == "" {
		t.conv.Shared[step.KeyUserRequest] = message
	}
	if t.conv.Shared.String(step.KeyUserRequest) == "" {
		t.say(KindCheckpoint, "What would you like your YouTube Short to be about?")
		return nil
	}

	t.say(KindStatus, "Let me analyze your request and propose a theme...")
	out, err := t.run(ctx, t.c.steps.Theme)
	if err != nil {
		return err
	}

	theme := step.ThemeFrom(out)
	t.conv.State.Theme = &Theme{Label: theme.Label, Intent: theme.Intent}
	t.presentTheme()
	return nil
}

func (t *turn) presentTheme() {
	theme := t.conv.State.Theme
	t.say(KindCheckpoint, "I propose this theme: **%s**\n\nIntent: %s\n\nDoes this look good to you? Type 'yes' to approve or provide feedback for changes.",
		theme.Label, theme.Intent)
}

func (t *turn) themeCheckpoint(ctx context.Context, message string) error {
	verdict, ok := t.c.gate.Evaluate(ctx, message)
	if !ok {
		t.presentTheme()
		return nil
	}

	if !verdict.Approved {
		t.logger.Info("theme rejected", "feedback", verdict.Feedback)
		t.say(KindStatus, "I'll revise the theme based on your feedback...")
		t.conv.Shared[step.KeyRejectedTheme] = map[string]any{
			"theme":       t.conv.State.Theme.Label,
			"user_intent": t.conv.State.Theme.Intent,
		}
		t.conv.Shared[step.KeyThemeFeedback] = verdict.Feedback
		delete(t.conv.Shared, step.KeyThemeIntent)
		t.conv.State.Theme = nil
		return t.proposeTheme(ctx, "")
	}

	state := &t.conv.State
	state.ThemeApproved = true
	state.Stage = StageResearch
	t.say(KindStatus, "Theme approved! Moving to research...")

	if t.c.provisioner == nil {
		return fmt.Errorf("%w: no provisioner configured", ErrProvisioning)
	}
	path, err := t.c.provisioner.Provision(state.Theme.Label, t.conv.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvisioning, err)
	}
	state.WorkspacePath = path
	t.conv.Shared[step.KeyAssetsPath] = path
	t.say(KindStatus, "Project folder created: %s", path)

	return t.researchAndScript(ctx)
}

func (t *turn) researchAndScript(ctx context.Context) error {
	t.say(KindStatus, "Researching your topic...")
	if _, err := t.run(ctx, t.c.steps.Research); err != nil {
		return err
	}

	t.say(KindStatus, "Research complete! Creating your script...")
	t.conv.State.Stage = StageScript
	return t.proposeScript(ctx)
}

func (t *turn) proposeScript(ctx context.Context) error {
	out, err := t.run(ctx, t.c.steps.Script)
	if err != nil {
		return err
	}

	script, _ := out.(string)
	t.conv.State.Script = strings.TrimSpace(script)
	t.presentScript()
	return nil
}

func (t *turn) presentScript() {
	t.say(KindCheckpoint, "Here's your script:\n\n**%s**\n\nDoes this script work for you? Type 'yes' to approve or provide feedback for changes.",
		t.conv.State.Script)
}

func (t *turn) scriptCheckpoint(ctx context.Context, message string) error {
	verdict, ok := t.c.gate.Evaluate(ctx, message)
	if !ok {
		t.presentScript()
		return nil
	}

	if !verdict.Approved {
		t.logger.Info("script rejected", "feedback", verdict.Feedback)
		t.say(KindStatus, "I'll revise the script based on your feedback...")
		t.conv.Shared[step.KeyRejectedScript] = t.conv.State.Script
		t.conv.Shared[step.KeyScriptFeedback] = verdict.Feedback
		delete(t.conv.Shared, step.KeyScript)
		t.conv.State.Script = ""
		t.say(KindStatus, "Creating your script based on the research...")
		return t.proposeScript(ctx)
	}

	state := &t.conv.State
	state.ScriptApproved = true
	t.say(KindStatus, "Script approved! Generating your YouTube Short...")

	t.say(KindStatus, "Creating visual prompts...")
	if _, err := t.run(ctx, t.c.steps.Prompts); err != nil {
		return err
	}

	t.say(KindStatus, "Generating images...")
	out, err := t.run(ctx, t.c.steps.Images)
	if err != nil {
		return err
	}
	t.reportScenes(out)

	state.Stage = StageAssets
	t.say(KindComplete, "YouTube Short creation complete! Check your project folder: %s", state.WorkspacePath)
	return nil
}

func (t *turn) reportScenes(out any) {
	results, ok := out.([]step.SceneResult)
	if !ok {
		return
	}

	failed := 0
	for _, r := range results {
		t.say(KindStatus, "Generating image for scene %d...", r.Scene)
		if r.Failed() {
			failed++
			t.say(KindWarning, "Scene %d could not be generated: %s", r.Scene, r.Error)
		}
	}
	if failed > 0 && failed == len(results) {
		t.say(KindWarning, "No scene images were generated.")
	}
}

func abortText(err error) string {
	var missing *step.MissingOutputError
	switch {
	case errors.As(err, &missing):
		return fmt.Sprintf("[%s] did not produce output. Aborting workflow.", missing.Step)
	case errors.Is(err, ErrProvisioning):
		return fmt.Sprintf("Could not create the project folder (%v). Aborting workflow.", err)
	default:
		return fmt.Sprintf("Something went wrong: %v. Aborting workflow.", err)
	}
}
