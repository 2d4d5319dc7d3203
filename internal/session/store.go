package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/geethika608/youtube-short-creator/internal/fsutil"
	"github.com/geethika608/youtube-short-creator/internal/workflow"
)

// ErrNotFound is returned when no conversation is stored under an ID.
var ErrNotFound = workflow.ErrNotFound

// ErrInvalidID rejects IDs that cannot be used as a file name.
var ErrInvalidID = errors.New("invalid session id")

const fileExt = ".json"

// FileStore keeps one JSON document per conversation under Dir.
type FileStore struct {
	Dir string
}

// NewFileStore returns a store rooted at dir, typically <state_dir>/sessions.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

// Path returns the file holding conversation id.
func (s *FileStore) Path(id string) string {
	return filepath.Join(s.Dir, id+fileExt)
}

// Load reads conversation id.
func (s *FileStore) Load(id string) (workflow.Conversation, error) {
	if err := ValidateID(id); err != nil {
		return workflow.Conversation{}, err
	}

	data, err := os.ReadFile(s.Path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return workflow.Conversation{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return workflow.Conversation{}, fmt.Errorf("failed to read session: %w", err)
	}

	var conv workflow.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return workflow.Conversation{}, fmt.Errorf("failed to unmarshal session %s: %w", id, err)
	}
	if conv.Shared == nil {
		conv.Shared = map[string]any{}
	}
	if err := conv.State.Validate(); err != nil {
		return workflow.Conversation{}, fmt.Errorf("session %s is inconsistent: %w", id, err)
	}
	return conv, nil
}

// Save writes conv atomically, readable only by the owner.
func (s *FileStore) Save(conv workflow.Conversation) error {
	if err := ValidateID(conv.ID); err != nil {
		return err
	}
	if err := fsutil.AtomicWriteJSON(s.Path(conv.ID), conv, 0o600); err != nil {
		return fmt.Errorf("failed to save session %s: %w", conv.ID, err)
	}
	return nil
}

// List returns stored session IDs in lexical order. A missing directory
// holds no sessions.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		id := strings.TrimSuffix(name, fileExt)
		if ValidateID(id) == nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ValidateID accepts non-empty IDs made of letters, digits, '-' and '_'.
func ValidateID(id string) error {
	if id == "" || len(id) > 128 {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
	}
	return nil
}
