package step

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/geethika608/youtube-short-creator/internal/interpret"
	"github.com/geethika608/youtube-short-creator/internal/llm"
)

// PromptStep turns the approved script into image prompts, one per scene.
type PromptStep struct {
	LLM       llm.Generator
	MinScenes int
	MaxScenes int
	Logger    *slog.Logger
}

// Name implements Step.
func (PromptStep) Name() string { return "prompts" }

// OutputKey implements Step.
func (PromptStep) OutputKey() string { return KeyImagePrompts }

// Run implements Step. The output is a []string capped at MaxScenes.
func (p PromptStep) Run(ctx context.Context, state SharedState) (any, error) {
	script := state.String(KeyScript)
	if script == "" {
		return nil, fmt.Errorf("no script to build prompts from")
	}

	minScenes, maxScenes := p.MinScenes, p.MaxScenes
	if minScenes <= 0 {
		minScenes = 3
	}
	if maxScenes < minScenes {
		maxScenes = minScenes + 2
	}

	text, err := p.LLM.Generate(ctx, llm.Request{
		Step:   p.Name(),
		System: fmt.Sprintf(promptInstruction, minScenes, maxScenes),
		Prompt: "Script:\n" + script,
	})
	if err != nil {
		return nil, err
	}

	prompts := ParsePrompts(text)
	if len(prompts) > maxScenes {
		prompts = prompts[:maxScenes]
	}
	if len(prompts) > 0 && len(prompts) < minScenes {
		p.logger().Warn("fewer scenes than requested", "scenes", len(prompts), "min", minScenes)
	}
	if len(prompts) == 0 {
		return nil, nil
	}
	return prompts, nil
}

func (p PromptStep) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// ParsePrompts splits model output into prompts. It accepts a JSON array or
// one prompt per line, dropping numbering, bullets, "Scene N:" labels,
// headings and surrounding quotes.
func ParsePrompts(text string) []string {
	body := interpret.StripFences(text)
	if body == "" {
		return nil
	}

	var list []string
	if err := json.Unmarshal([]byte(body), &list); err == nil {
		return cleanPrompts(list)
	}

	return cleanPrompts(strings.Split(body, "\n"))
}

// PromptsFrom reads image prompts from a stored value: a list, newline
// separated text, or a map holding the list under "image_prompts".
func PromptsFrom(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		return cleanPrompts(t)
	case []any:
		lines := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				lines = append(lines, s)
			}
		}
		return cleanPrompts(lines)
	case string:
		return ParsePrompts(t)
	case map[string]any:
		return PromptsFrom(t[KeyImagePrompts])
	case interpret.Fields:
		return PromptsFrom(t[KeyImagePrompts])
	}
	return nil
}

func cleanPrompts(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if p := cleanPrompt(line); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func cleanPrompt(line string) string {
	s := strings.TrimSpace(line)
	if s == "" || strings.HasPrefix(s, "#") {
		return ""
	}

	s = strings.TrimLeft(s, "-*• \t")
	s = trimNumbering(s)
	s = trimSceneLabel(s)
	s = strings.Trim(s, "\"'“”`* \t")

	// Headings such as "Scenes:" or "Here are your prompts:".
	if strings.HasSuffix(s, ":") {
		return ""
	}
	return s
}

// trimNumbering drops "1.", "2)" or "3:" prefixes.
func trimNumbering(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i == len(s) {
		return s
	}
	switch s[i] {
	case '.', ')', ':', '-':
		return strings.TrimSpace(s[i+1:])
	}
	return s
}

// trimSceneLabel drops a "Scene 2:" prefix.
func trimSceneLabel(s string) string {
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "scene") {
		return s
	}
	idx := strings.IndexAny(s, ":-")
	if idx < 0 || idx > len("scene 100") {
		return s
	}
	if strings.TrimSpace(s[len("scene"):idx]) == "" {
		return s
	}
	for _, r := range strings.TrimSpace(s[len("scene"):idx]) {
		if r < '0' || r > '9' {
			return s
		}
	}
	return strings.TrimSpace(s[idx+1:])
}
