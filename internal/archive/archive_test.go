package archive

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sceneResult struct {
	Scene  int      `json:"scene"`
	Images []string `json:"images"`
}

func TestArchive_WritesByKind(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pasta")
	a := New(testLogger())

	shared := map[string]any{
		"theme_intent":    map[string]any{"theme": "Pasta", "user_intent": "weeknight dinner"},
		"research_report": "Pasta dates back centuries.",
		"image_prompts":   []string{"boiling water", "fresh basil"},
		"images_path":     []sceneResult{{Scene: 1, Images: []string{"scene_1/images/image_1.jpg"}}},
	}
	require.NoError(t, a.Archive(dir, shared))

	report, err := os.ReadFile(filepath.Join(dir, "research_report.md"))
	require.NoError(t, err)
	assert.Equal(t, "Pasta dates back centuries.", string(report))

	var theme map[string]string
	data, err := os.ReadFile(filepath.Join(dir, "theme_intent.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &theme))
	assert.Equal(t, "Pasta", theme["theme"])

	var prompts []string
	data, err = os.ReadFile(filepath.Join(dir, "image_prompts.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &prompts))
	assert.Len(t, prompts, 2)

	_, err = os.Stat(filepath.Join(dir, "images_path.json"))
	assert.NoError(t, err)
}

func TestArchive_SkipsUnsupportedValues(t *testing.T) {
	dir := t.TempDir()
	a := New(testLogger())

	shared := map[string]any{
		"script":   "A short script.",
		"count":    3,
		"flag":     true,
		"nothing":  nil,
		"callback": func() {},
		"bad_map":  map[string]any{"ch": make(chan int)},
		"../evil":  "escape attempt",
		"":         "no name",
	}
	require.NoError(t, a.Archive(dir, shared))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"script.md"}, names)

	_, err = os.Stat(filepath.Join(filepath.Dir(dir), "evil.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestArchive_OverwritesPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	a := New(testLogger())

	require.NoError(t, a.Archive(dir, map[string]any{"script": "draft one"}))
	require.NoError(t, a.Archive(dir, map[string]any{"script": "draft two"}))

	data, err := os.ReadFile(filepath.Join(dir, "script.md"))
	require.NoError(t, err)
	assert.Equal(t, "draft two", string(data))
}

func TestArchive_UncreatableDirectory(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := New(testLogger()).Archive(filepath.Join(blocker, "sub"), map[string]any{"script": "x"})
	assert.Error(t, err)
}

func TestNew_NilLogger(t *testing.T) {
	a := New(nil)
	require.NotNil(t, a.logger)
	assert.NoError(t, a.Archive(t.TempDir(), map[string]any{"script": "x"}))
}
