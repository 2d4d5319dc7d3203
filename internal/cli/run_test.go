package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/geethika608/youtube-short-creator/internal/config"
	"github.com/geethika608/youtube-short-creator/internal/llm"
)

// writeTestConfig creates an offline config: scripted text, placeholder images.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	script := llm.Script{Responses: map[string][]llm.ResponseTemplate{
		"theme":    {{Text: `{"theme": "Pasta Cooking", "user_intent": "Weeknight pasta in ten minutes"}`}},
		"research": {{Text: "Salt the water. Save a cup of pasta water."}},
		"script": {
			{Text: "Boil salted water. Cook the pasta. Save some water. Toss with sauce. Serve hot."},
			{Text: "Boil. Cook. Toss. Serve."},
		},
		"prompts": {{Text: "1. A pot of boiling water\n2. Pasta in a colander\n3. A plated bowl"}},
	}}
	data, err := json.Marshal(script)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "responses.json"), data, 0o600))

	cfg := config.GenerateDefault()
	cfg.LogLevel = "error"
	cfg.Text = config.TextConfig{Provider: config.TextScripted, ScriptPath: "responses.json", Temperature: 0.7}
	cfg.Image.Provider = config.ImagePlaceholder
	cfg.Image.Width = 90
	cfg.Image.Height = 160
	cfg.Script.MinWords = 1

	path := filepath.Join(dir, config.FileName)
	require.NoError(t, cfg.SaveToFile(path))
	return path
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// execute runs the root command with args and stdin, returning stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		for _, name := range []string{"config", "log-level", "session"} {
			resetFlag(rootCmd, name)
		}
		resetFlag(serveCmd, "addr")
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	err := rootCmd.Execute()
	for _, name := range []string{"config", "log-level", "session"} {
		resetFlag(rootCmd, name)
	}
	return out.String(), err
}

// sessionFrom extracts the ID from a "Session: <id>" line.
func sessionFrom(t *testing.T, output string) string {
	t.Helper()
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, "Session: ") {
			return strings.Fields(line)[1]
		}
	}
	t.Fatalf("no session line in output:\n%s", output)
	return ""
}

func TestRunCommandTurnByTurn(t *testing.T) {
	cfgPath := writeTestConfig(t)
	projects := filepath.Join(filepath.Dir(cfgPath), "projects")

	out, err := execute(t, "", "run", "--config", cfgPath, "I want a video about cooking pasta")
	require.NoError(t, err)
	require.Contains(t, out, "[working] Let me analyze your request and propose a theme...")
	require.Contains(t, out, "I propose this theme: **Pasta Cooking**")
	id := sessionFrom(t, out)
	require.True(t, strings.HasPrefix(id, "session-"), id)
	require.Contains(t, out, "(stage THEME)")

	out, err = execute(t, "", "run", "--config", cfgPath, "--session", id, "yes")
	require.NoError(t, err)
	require.Contains(t, out, "Project folder created: "+filepath.Join(projects, "pasta_cooking"))
	require.Contains(t, out, "Boil salted water.")
	require.Contains(t, out, "(stage SCRIPT)")

	// Each invocation replays the script from the start, so the revision
	// repeats the first draft here.
	out, err = execute(t, "", "run", "--config", cfgPath, "--session", id, "make", "it", "shorter")
	require.NoError(t, err)
	require.Contains(t, out, "[working] I'll revise the script based on your feedback...")
	require.Contains(t, out, "Here's your script:")

	out, err = execute(t, "", "run", "--config", cfgPath, "--session", id, "good")
	require.NoError(t, err)
	require.Contains(t, out, "[done] YouTube Short creation complete!")
	require.Contains(t, out, "(stage ASSETS)")

	for _, scene := range []string{"scene_1", "scene_2", "scene_3"} {
		require.FileExists(t, filepath.Join(projects, "pasta_cooking", scene, "images", "image_1.jpg"))
	}

	out, err = execute(t, "", "status", "--config", cfgPath, "--session", id)
	require.NoError(t, err)
	require.Contains(t, out, "Stage: ASSETS")
	require.Contains(t, out, "Turns: 4")
	require.Contains(t, out, "Theme: Pasta Cooking (approved)")
	require.Contains(t, out, filepath.Join("scene_1", "images", "image_1.jpg"))

	out, err = execute(t, "", "history", "--config", cfgPath, "--session", id)
	require.NoError(t, err)
	require.Contains(t, out, "[turn 1] you: I want a video about cooking pasta")
	require.Contains(t, out, "[turn 3] you: make it shorter")
	require.Contains(t, out, "[done] YouTube Short creation complete!")

	out, err = execute(t, "", "status", "--config", cfgPath)
	require.NoError(t, err)
	require.Contains(t, out, id)
}

func TestResumeInteractive(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := execute(t, "pasta please\nyes\ngood\nignored after completion\n", "resume", "--config", cfgPath, "--session", "session-chat")
	require.NoError(t, err)
	require.Contains(t, out, "Session: session-chat")
	require.Contains(t, out, openingQuestion)
	require.Contains(t, out, "Pasta Cooking")
	require.Contains(t, out, "[done] YouTube Short creation complete!")

	out, err = execute(t, "", "resume", "--config", cfgPath, "--session", "session-chat")
	require.NoError(t, err)
	require.Contains(t, out, "Stage: ASSETS")
	require.NotContains(t, out, openingQuestion)

	out, err = execute(t, "", "history", "--config", cfgPath, "--session", "session-chat")
	require.NoError(t, err)
	require.NotContains(t, out, "ignored after completion")
}

func TestResumeStopsAtEndOfInput(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := execute(t, "pasta", "resume", "--config", cfgPath, "--session", "session-eof")
	require.NoError(t, err)
	require.Contains(t, out, "I propose this theme")

	out, err = execute(t, "", "status", "--config", cfgPath, "--session", "session-eof")
	require.NoError(t, err)
	require.Contains(t, out, "Stage: THEME")
	require.Contains(t, out, "Theme: Pasta Cooking (awaiting approval)")
}

func TestHistoryRequiresSession(t *testing.T) {
	cfgPath := writeTestConfig(t)

	_, err := execute(t, "", "history", "--config", cfgPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "--session")
}

func TestStatusUnknownSession(t *testing.T) {
	cfgPath := writeTestConfig(t)

	_, err := execute(t, "", "status", "--config", cfgPath, "--session", "nope")
	require.Error(t, err)

	_, err = execute(t, "", "run", "--config", cfgPath, "--session", "../escape", "hi")
	require.Error(t, err)
}

func TestInvalidLogLevel(t *testing.T) {
	cfgPath := writeTestConfig(t)

	_, err := execute(t, "", "status", "--config", cfgPath, "--log-level", "loud")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported log level")
}

func TestLoadOrCreateConfigCreatesDefault(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, path, err := loadOrCreateConfig("", discardLogger())
	require.NoError(t, err)
	require.Equal(t, config.FileName, filepath.Base(path))
	require.FileExists(t, path)
	require.Equal(t, config.GenerateDefault(), cfg)

	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Chdir(nested)

	_, found, err := loadOrCreateConfig("", discardLogger())
	require.NoError(t, err)
	require.Equal(t, path, found)
}

func TestResolvePath(t *testing.T) {
	cfgPath := filepath.Join("/srv", "shorts", config.FileName)
	require.Equal(t, filepath.Join("/srv", "shorts", "projects"), resolvePath(cfgPath, "projects"))
	require.Equal(t, "/var/state", resolvePath(cfgPath, "/var/state"))
}

func TestPromptForReply(t *testing.T) {
	var output bytes.Buffer

	reader := bufio.NewReader(strings.NewReader("  make it shorter \n"))
	reply, err := promptForReply(reader, &output, true)
	require.NoError(t, err)
	require.Equal(t, "make it shorter", reply)
	require.Contains(t, output.String(), "you> ")

	output.Reset()
	reader = bufio.NewReader(strings.NewReader("\n"))
	reply, err = promptForReply(reader, &output, false)
	require.NoError(t, err)
	require.Empty(t, reply, "blank lines are sent as empty replies")
	require.Empty(t, output.String())

	reader = bufio.NewReader(strings.NewReader("yes"))
	reply, err = promptForReply(reader, &output, false)
	require.NoError(t, err)
	require.Equal(t, "yes", reply)

	_, err = promptForReply(reader, &output, false)
	require.ErrorIs(t, err, io.EOF)
}
