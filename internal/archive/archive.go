// Package archive records the shared state of a conversation as files: one
// markdown file per text value and one JSON document per structured value.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"sort"

	"github.com/geethika608/youtube-short-creator/internal/fsutil"
)

// Archiver writes shared-state snapshots into a directory.
type Archiver struct {
	logger *slog.Logger
}

// New returns an Archiver. A nil logger uses slog.Default.
func New(logger *slog.Logger) *Archiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Archiver{logger: logger}
}

// Archive writes every entry of shared into dir as <key>.md (strings) or
// <key>.json (maps, slices and structs). Values of other kinds, values that
// fail to serialize, and keys that would escape dir are skipped and logged.
// Write failures do not stop the remaining entries; they are joined into the
// returned error.
func (a *Archiver) Archive(dir string, shared map[string]any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory %s: %w", dir, err)
	}

	keys := make([]string, 0, len(shared))
	for k := range shared {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		name, data, ok := a.encode(key, shared[key])
		if !ok {
			continue
		}

		path, err := fsutil.ResolveWorkspacePath(dir, name)
		if err != nil {
			a.logger.Warn("skipping output with unsafe key", "key", key, "error", err)
			continue
		}

		if err := fsutil.AtomicWrite(path, data, 0o644); err != nil {
			errs = append(errs, fmt.Errorf("archive %s: %w", key, err))
			continue
		}
		a.logger.Debug("archived output", "key", key, "path", path)
	}

	return errors.Join(errs...)
}

func (a *Archiver) encode(key string, value any) (string, []byte, bool) {
	if key == "" {
		a.logger.Warn("skipping output with empty key")
		return "", nil, false
	}

	if s, ok := value.(string); ok {
		return key + ".md", []byte(s), true
	}

	if !structured(value) {
		a.logger.Warn("skipping output of unsupported type", "key", key, "type", fmt.Sprintf("%T", value))
		return "", nil, false
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		a.logger.Warn("skipping output that cannot be serialized", "key", key, "error", err)
		return "", nil, false
	}
	return key + ".json", append(data, '\n'), true
}

// structured reports whether v is a map, slice, array or struct.
func structured(v any) bool {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return true
	}
	return false
}
