package step

import (
	"context"
	"fmt"
	"strings"

	"github.com/geethika608/youtube-short-creator/internal/interpret"
	"github.com/geethika608/youtube-short-creator/internal/llm"
)

// maxThemeWords bounds the theme label.
const maxThemeWords = 3

// ThemeStep proposes a theme and intent for the user's request.
type ThemeStep struct {
	LLM llm.Generator
}

// Name implements Step.
func (ThemeStep) Name() string { return "theme" }

// OutputKey implements Step.
func (ThemeStep) OutputKey() string { return KeyThemeIntent }

// Run implements Step. The output is a map with "theme" and "user_intent".
func (t ThemeStep) Run(ctx context.Context, state SharedState) (any, error) {
	request := state.String(KeyUserRequest)
	if request == "" {
		return nil, fmt.Errorf("no user request to build a theme from")
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Request: %s\n", request)
	if rejected := ThemeFrom(state[KeyRejectedTheme]); rejected.Label != "" {
		fmt.Fprintf(&prompt, "\nThe previous proposal was rejected:\ntheme: %s\nintent: %s\n", rejected.Label, rejected.Intent)
	}
	if feedback := state.String(KeyThemeFeedback); feedback != "" {
		fmt.Fprintf(&prompt, "\nFeedback to address: %s\n", feedback)
	}

	text, err := t.LLM.Generate(ctx, llm.Request{Step: t.Name(), System: themeInstruction, Prompt: prompt.String()})
	if err != nil {
		return nil, err
	}

	theme := ThemeFrom(text)
	if theme.Label == "" {
		return nil, nil
	}
	return map[string]any{"theme": theme.Label, "user_intent": theme.Intent}, nil
}

// Theme is the decoded theme_intent value.
type Theme struct {
	Label  string
	Intent string
}

// ThemeFrom decodes a theme from a generation result or a stored value. Text
// that is not JSON becomes the intent, and its first words the label. Labels
// are cut to maxThemeWords words.
func ThemeFrom(raw any) Theme {
	fields := interpret.Interpret(raw, "user_intent")
	if fields == nil {
		return Theme{}
	}

	label := strings.TrimSpace(fields.String("theme"))
	theme := Theme{
		Label:  label,
		Intent: strings.TrimSpace(fields.String("user_intent")),
	}
	if theme.Intent == "" {
		theme.Intent = label
	}
	switch {
	case theme.Label == "":
		theme.Label = firstWords(theme.Intent, maxThemeWords)
	case len(strings.Fields(theme.Label)) > maxThemeWords:
		theme.Label = firstWords(theme.Label, maxThemeWords)
	}
	return theme
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Trim(strings.Join(words, " "), ".,;:!?\"'")
}
