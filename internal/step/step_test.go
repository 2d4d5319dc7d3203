package step

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingArchiver struct {
	dirs      []string
	snapshots []map[string]any
	err       error
}

func (r *recordingArchiver) Archive(dir string, shared map[string]any) error {
	r.dirs = append(r.dirs, dir)
	snap := make(map[string]any, len(shared))
	for k, v := range shared {
		snap[k] = v
	}
	r.snapshots = append(r.snapshots, snap)
	return r.err
}

func constStep(name, key string, out any, err error) Func {
	return Func{StepName: name, Key: key, Fn: func(ctx context.Context, state SharedState) (any, error) {
		return out, err
	}}
}

func TestInvoker_StoresAndArchives(t *testing.T) {
	arch := &recordingArchiver{}
	inv := NewInvoker(arch, quietLogger())
	state := SharedState{KeyUserRequest: "pasta"}

	out, err := inv.Invoke(context.Background(), constStep("script", KeyScript, "Boil water.", nil), state, "/tmp/pasta")
	require.NoError(t, err)
	assert.Equal(t, "Boil water.", out)
	assert.Equal(t, "Boil water.", state[KeyScript])

	require.Len(t, arch.dirs, 1)
	assert.Equal(t, "/tmp/pasta", arch.dirs[0])
	assert.Equal(t, "Boil water.", arch.snapshots[0][KeyScript])
	assert.Equal(t, "pasta", arch.snapshots[0][KeyUserRequest])
}

func TestInvoker_MissingOutput(t *testing.T) {
	tests := []struct {
		name string
		out  any
		err  error
	}{
		{name: "nil", out: nil},
		{name: "blank string", out: "   "},
		{name: "empty map", out: map[string]any{}},
		{name: "empty slice", out: []string{}},
		{name: "step error", out: "ignored", err: errors.New("quota exceeded")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arch := &recordingArchiver{}
			inv := NewInvoker(arch, quietLogger())
			state := SharedState{KeyThemeIntent: "stale"}

			_, err := inv.Invoke(context.Background(), constStep("theme", KeyThemeIntent, tt.out, tt.err), state, "/tmp/x")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingOutput)
			assert.NotContains(t, state, KeyThemeIntent)
			assert.Empty(t, arch.dirs, "nothing archived on failure")
		})
	}
}

func TestInvoker_ArchiveFailureIsNotFatal(t *testing.T) {
	inv := NewInvoker(&recordingArchiver{err: errors.New("disk full")}, quietLogger())
	state := SharedState{}

	_, err := inv.Invoke(context.Background(), constStep("research", KeyResearchReport, "facts", nil), state, "/tmp/x")
	require.NoError(t, err)
	assert.Equal(t, "facts", state[KeyResearchReport])
}

func TestInvoker_NoArchiver(t *testing.T) {
	inv := NewInvoker(nil, nil)
	state := SharedState{}

	_, err := inv.Invoke(context.Background(), constStep("research", KeyResearchReport, "facts", nil), state, "")
	require.NoError(t, err)
}

func TestIsEmpty(t *testing.T) {
	var nilMap map[string]any
	var nilPtr *SceneResult

	assert.True(t, IsEmpty(nil))
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("\n"))
	assert.True(t, IsEmpty(nilMap))
	assert.True(t, IsEmpty([]any{}))
	assert.True(t, IsEmpty(nilPtr))

	assert.False(t, IsEmpty("x"))
	assert.False(t, IsEmpty(map[string]any{"theme": "Pasta"}))
	assert.False(t, IsEmpty([]SceneResult{{Scene: 1}}))
	assert.False(t, IsEmpty(0))
}

func TestSharedState(t *testing.T) {
	s := SharedState{KeyScript: "  text  ", "n": 3}
	assert.Equal(t, "text", s.String(KeyScript))
	assert.Equal(t, "", s.String("n"))
	assert.Equal(t, "", s.String("missing"))

	c := s.Clone()
	c[KeyScript] = "changed"
	assert.Equal(t, "  text  ", s[KeyScript])
}

func TestMissingOutputError(t *testing.T) {
	cause := errors.New("quota exceeded")
	inv := NewInvoker(nil, quietLogger())

	_, err := inv.Invoke(context.Background(), constStep("script", KeyScript, nil, cause), SharedState{}, "")

	var missing *MissingOutputError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "script", missing.Step)
	assert.ErrorIs(t, err, ErrMissingOutput)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "quota exceeded")
}
