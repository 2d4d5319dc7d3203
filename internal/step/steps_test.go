package step

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geethika608/youtube-short-creator/internal/imagegen"
	"github.com/geethika608/youtube-short-creator/internal/llm"
	"github.com/geethika608/youtube-short-creator/internal/research"
)

// fakeLLM answers with reply and remembers the last request.
type fakeLLM struct {
	reply string
	err   error
	last  llm.Request
	calls int
}

func (f *fakeLLM) Generate(ctx context.Context, req llm.Request) (string, error) {
	f.last = req
	f.calls++
	return f.reply, f.err
}

func TestThemeStep(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		wantLabel  string
		wantIntent string
	}{
		{
			name:       "json",
			reply:      `{"theme":"Pasta Cooking","user_intent":"Quick pasta tips"}`,
			wantLabel:  "Pasta Cooking",
			wantIntent: "Quick pasta tips",
		},
		{
			name:       "fenced json",
			reply:      "```json\n{\"theme\":\"Pasta\",\"user_intent\":\"Beginner pasta\"}\n```",
			wantLabel:  "Pasta",
			wantIntent: "Beginner pasta",
		},
		{
			name:       "plain text degrades",
			reply:      "Pasta night made easy for students",
			wantLabel:  "Pasta night made",
			wantIntent: "Pasta night made easy for students",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeLLM{reply: tt.reply}
			out, err := ThemeStep{LLM: gen}.Run(context.Background(), SharedState{KeyUserRequest: "I want a video about cooking pasta"})
			require.NoError(t, err)

			m, ok := out.(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tt.wantLabel, m["theme"])
			assert.Equal(t, tt.wantIntent, m["user_intent"])

			assert.Equal(t, "theme", gen.last.Step)
			assert.Contains(t, gen.last.Prompt, "cooking pasta")
			assert.NotEmpty(t, gen.last.System)
		})
	}
}

func TestThemeStep_IncludesFeedback(t *testing.T) {
	gen := &fakeLLM{reply: `{"theme":"Pasta Hacks","user_intent":"x"}`}
	state := SharedState{
		KeyUserRequest:   "pasta",
		KeyRejectedTheme: map[string]any{"theme": "Pasta Cooking", "user_intent": "slow recipes"},
		KeyThemeFeedback: "make it about speed",
	}

	_, err := ThemeStep{LLM: gen}.Run(context.Background(), state)
	require.NoError(t, err)
	assert.Contains(t, gen.last.Prompt, "Pasta Cooking")
	assert.Contains(t, gen.last.Prompt, "make it about speed")
}

func TestThemeStep_NoOutput(t *testing.T) {
	out, err := ThemeStep{LLM: &fakeLLM{reply: "  "}}.Run(context.Background(), SharedState{KeyUserRequest: "pasta"})
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = ThemeStep{LLM: &fakeLLM{}}.Run(context.Background(), SharedState{})
	assert.Error(t, err)

	_, err = ThemeStep{LLM: &fakeLLM{err: errors.New("boom")}}.Run(context.Background(), SharedState{KeyUserRequest: "pasta"})
	assert.Error(t, err)
}

func TestThemeFrom(t *testing.T) {
	assert.Equal(t, Theme{}, ThemeFrom(nil))
	assert.Equal(t, Theme{Label: "Rain", Intent: "calm"}, ThemeFrom(map[string]any{"theme": "Rain", "user_intent": "calm"}))
	assert.Equal(t, Theme{Label: "Rain", Intent: "Rain"}, ThemeFrom(map[string]any{"theme": "Rain"}))
	assert.Equal(t, Theme{Label: "Quiet rainy mornings", Intent: "Quiet rainy mornings, at home."}, ThemeFrom("Quiet rainy mornings, at home."))
	assert.Equal(t,
		Theme{Label: "The Ultimate Guide", Intent: "weeknight dinners"},
		ThemeFrom(map[string]any{"theme": "The Ultimate Guide To Cooking Perfect Italian Pasta At Home", "user_intent": "weeknight dinners"}))
	assert.Equal(t,
		Theme{Label: "Pasta At Home", Intent: "Pasta At Home Tonight"},
		ThemeFrom(map[string]any{"theme": "Pasta At Home Tonight"}))
}

type fakeSource struct {
	findings []research.Finding
	err      error
}

func (f fakeSource) Name() string { return "fake" }

func (f fakeSource) Search(ctx context.Context, query string) ([]research.Finding, error) {
	return f.findings, f.err
}

func TestResearchStep(t *testing.T) {
	gen := &fakeLLM{reply: "```\nPasta is old.\n```"}
	step := ResearchStep{
		LLM: gen,
		Sources: []research.Source{
			fakeSource{err: errors.New("rate limited")},
			fakeSource{findings: []research.Finding{{Source: "r/Cooking", Title: "Salt your water"}}},
		},
		Logger: quietLogger(),
	}

	out, err := step.Run(context.Background(), SharedState{KeyThemeIntent: map[string]any{"theme": "Pasta", "user_intent": "tips"}})
	require.NoError(t, err)
	assert.Equal(t, "Pasta is old.", out)
	assert.Contains(t, gen.last.Prompt, "Theme: Pasta")
	assert.Contains(t, gen.last.Prompt, "Salt your water")
}

func TestResearchStep_NeedsTheme(t *testing.T) {
	_, err := ResearchStep{LLM: &fakeLLM{reply: "x"}}.Run(context.Background(), SharedState{})
	assert.Error(t, err)
}

func TestScriptStep(t *testing.T) {
	gen := &fakeLLM{reply: "```\nDid you know pasta is ancient?\n```"}
	state := SharedState{
		KeyThemeIntent:    map[string]any{"theme": "Pasta", "user_intent": "tips"},
		KeyResearchReport: "Pasta dates back centuries.",
		KeyRejectedScript: "An old long draft.",
		KeyScriptFeedback: "make it shorter",
	}

	out, err := ScriptStep{LLM: gen, MinWords: 150, MaxWords: 200, Logger: quietLogger()}.Run(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, "Did you know pasta is ancient?", out)
	assert.Contains(t, gen.last.System, "Between 150 and 200 words")
	assert.Contains(t, gen.last.Prompt, "Pasta dates back centuries.")
	assert.Contains(t, gen.last.Prompt, "An old long draft.")
	assert.Contains(t, gen.last.Prompt, "make it shorter")
}

func TestScriptStep_NeedsResearch(t *testing.T) {
	state := SharedState{KeyThemeIntent: map[string]any{"theme": "Pasta"}}
	_, err := ScriptStep{LLM: &fakeLLM{reply: "x"}}.Run(context.Background(), state)
	assert.Error(t, err)
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount("  "))
	assert.Equal(t, 4, WordCount("one two\nthree  four"))
}

func TestPromptStep(t *testing.T) {
	gen := &fakeLLM{reply: "Scenes:\n1. \"Steam rising from a pot\"\n2. Fresh basil, macro shot\n3) Plated pasta, top-down\n4. A timer\n5. A fork twirl\n6. Extra scene"}
	out, err := PromptStep{LLM: gen, MinScenes: 3, MaxScenes: 5}.Run(context.Background(), SharedState{KeyScript: "Boil. Toss. Eat."})
	require.NoError(t, err)

	prompts, ok := out.([]string)
	require.True(t, ok)
	assert.Equal(t, []string{
		"Steam rising from a pot",
		"Fresh basil, macro shot",
		"Plated pasta, top-down",
		"A timer",
		"A fork twirl",
	}, prompts)
	assert.Contains(t, gen.last.System, "3 to 5 visual scenes")
}

func TestPromptStep_Empty(t *testing.T) {
	out, err := PromptStep{LLM: &fakeLLM{reply: "Scenes:\n\n"}}.Run(context.Background(), SharedState{KeyScript: "x"})
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = PromptStep{LLM: &fakeLLM{reply: "x"}}.Run(context.Background(), SharedState{})
	assert.Error(t, err)
}

func TestParsePrompts(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "json array", in: `["a", " b ", ""]`, want: []string{"a", "b"}},
		{name: "fenced lines", in: "```\n- one\n* two\n```", want: []string{"one", "two"}},
		{name: "scene labels", in: "Scene 1: rain on glass\n**Scene 2:** umbrella", want: []string{"rain on glass", "umbrella"}},
		{name: "scenery is not a label", in: "Scenery at dusk - wide shot", want: []string{"Scenery at dusk - wide shot"}},
		{name: "headings dropped", in: "# Prompts\nHere are your prompts:\n“A quiet street”", want: []string{"A quiet street"}},
		{name: "empty", in: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePrompts(tt.in)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPromptsFrom(t *testing.T) {
	assert.Nil(t, PromptsFrom(nil))
	assert.Equal(t, []string{"a", "b"}, PromptsFrom([]string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, PromptsFrom([]any{"a", 3, "b"}))
	assert.Equal(t, []string{"a", "b"}, PromptsFrom("1. a\n2. b"))
	assert.Equal(t, []string{"a"}, PromptsFrom(map[string]any{KeyImagePrompts: []any{"a"}}))
	assert.Nil(t, PromptsFrom(42))
}

func TestImageStep_WritesScenes(t *testing.T) {
	assets := t.TempDir()
	gen := imagegen.GeneratorFunc(func(ctx context.Context, prompt string) ([][]byte, error) {
		if strings.Contains(prompt, "broken") {
			return nil, errors.New("safety filter")
		}
		return [][]byte{[]byte("jpeg-1:" + prompt), []byte("jpeg-2:" + prompt)}, nil
	})

	state := SharedState{
		KeyAssetsPath:   assets,
		KeyImagePrompts: []any{"steam", "broken scene", "basil"},
	}

	out, err := ImageStep{Images: gen, Logger: quietLogger()}.Run(context.Background(), state)
	require.NoError(t, err)

	results, ok := out.([]SceneResult)
	require.True(t, ok)
	require.Len(t, results, 3)

	assert.False(t, results[0].Failed())
	assert.Equal(t, []string{
		filepath.Join(assets, "scene_1", "images", "image_1.jpg"),
		filepath.Join(assets, "scene_1", "images", "image_2.jpg"),
	}, results[0].Images)

	assert.True(t, results[1].Failed(), "failed scene is reported")
	assert.Contains(t, results[1].Error, "safety filter")
	assert.Empty(t, results[1].Images)

	assert.False(t, results[2].Failed(), "later scenes still run")
	data, err := os.ReadFile(filepath.Join(assets, "scene_3", "images", "image_1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-1:basil", string(data))
}

func TestImageStep_NoImagesIsSceneFailure(t *testing.T) {
	gen := imagegen.GeneratorFunc(func(ctx context.Context, prompt string) ([][]byte, error) {
		return nil, nil
	})
	out, err := ImageStep{Images: gen, Logger: quietLogger()}.Run(context.Background(), SharedState{
		KeyAssetsPath:   t.TempDir(),
		KeyImagePrompts: []string{"a"},
	})
	require.NoError(t, err)
	results := out.([]SceneResult)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Error, imagegen.ErrNoImages.Error())
}

func TestImageStep_Preconditions(t *testing.T) {
	gen := imagegen.GeneratorFunc(func(ctx context.Context, prompt string) ([][]byte, error) { return nil, nil })

	_, err := ImageStep{Images: gen}.Run(context.Background(), SharedState{KeyImagePrompts: []string{"a"}})
	assert.Error(t, err, "needs a project folder")

	_, err = ImageStep{Images: gen}.Run(context.Background(), SharedState{KeyAssetsPath: t.TempDir()})
	assert.Error(t, err, "needs prompts")
}

func TestFeedbackExtractor(t *testing.T) {
	gen := &fakeLLM{reply: `{"user_input":"sure","approved":true}`}
	out, err := FeedbackExtractor{LLM: gen}.Extract(context.Background(), "sure")
	require.NoError(t, err)
	assert.Equal(t, `{"user_input":"sure","approved":true}`, out)
	assert.Equal(t, "feedback", gen.last.Step)
	assert.Contains(t, gen.last.Prompt, "sure")
}
