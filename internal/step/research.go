package step

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/geethika608/youtube-short-creator/internal/interpret"
	"github.com/geethika608/youtube-short-creator/internal/llm"
	"github.com/geethika608/youtube-short-creator/internal/research"
)

// ResearchStep writes a research brief for the approved theme.
type ResearchStep struct {
	LLM     llm.Generator
	Sources []research.Source
	Logger  *slog.Logger
}

// Name implements Step.
func (ResearchStep) Name() string { return "research" }

// OutputKey implements Step.
func (ResearchStep) OutputKey() string { return KeyResearchReport }

// Run implements Step. Source failures are logged and skipped.
func (r ResearchStep) Run(ctx context.Context, state SharedState) (any, error) {
	theme := ThemeFrom(state[KeyThemeIntent])
	if theme.Label == "" {
		return nil, fmt.Errorf("no theme to research")
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Theme: %s\nIntent: %s\n", theme.Label, theme.Intent)

	var findings []research.Finding
	for _, src := range r.Sources {
		found, err := src.Search(ctx, theme.Label)
		if err != nil {
			r.logger().Warn("research source failed", "source", src.Name(), "error", err)
			continue
		}
		findings = append(findings, found...)
	}
	if digest := research.Digest(findings); digest != "" {
		fmt.Fprintf(&prompt, "\nWhat people are discussing:\n%s\n", digest)
	}

	text, err := r.LLM.Generate(ctx, llm.Request{Step: r.Name(), System: researchInstruction, Prompt: prompt.String()})
	if err != nil {
		return nil, err
	}
	return interpret.StripFences(text), nil
}

func (r ResearchStep) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}
