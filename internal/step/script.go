package step

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/geethika608/youtube-short-creator/internal/interpret"
	"github.com/geethika608/youtube-short-creator/internal/llm"
)

// ScriptStep writes the narration from the theme and research.
type ScriptStep struct {
	LLM      llm.Generator
	MinWords int
	MaxWords int
	Logger   *slog.Logger
}

// Name implements Step.
func (ScriptStep) Name() string { return "script" }

// OutputKey implements Step.
func (ScriptStep) OutputKey() string { return KeyScript }

// Run implements Step. A script outside the word range is kept and logged.
func (s ScriptStep) Run(ctx context.Context, state SharedState) (any, error) {
	theme := ThemeFrom(state[KeyThemeIntent])
	report := state.String(KeyResearchReport)
	if theme.Label == "" || report == "" {
		return nil, fmt.Errorf("script needs an approved theme and research")
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Theme: %s\nIntent: %s\n\nResearch:\n%s\n", theme.Label, theme.Intent, report)
	if rejected := state.String(KeyRejectedScript); rejected != "" {
		fmt.Fprintf(&prompt, "\nThe previous draft was rejected:\n%s\n", rejected)
	}
	if feedback := state.String(KeyScriptFeedback); feedback != "" {
		fmt.Fprintf(&prompt, "\nFeedback to address: %s\n", feedback)
	}

	minWords, maxWords := s.bounds()
	text, err := s.LLM.Generate(ctx, llm.Request{
		Step:   s.Name(),
		System: fmt.Sprintf(scriptInstruction, minWords, maxWords),
		Prompt: prompt.String(),
	})
	if err != nil {
		return nil, err
	}

	script := interpret.StripFences(text)
	if n := WordCount(script); script != "" && (n < minWords || n > maxWords) {
		s.logger().Warn("script length outside target range", "words", n, "min", minWords, "max", maxWords)
	}
	return script, nil
}

func (s ScriptStep) bounds() (int, int) {
	minWords, maxWords := s.MinWords, s.MaxWords
	if minWords <= 0 {
		minWords = 150
	}
	if maxWords < minWords {
		maxWords = minWords + 50
	}
	return minWords, maxWords
}

func (s ScriptStep) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
