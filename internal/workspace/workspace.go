// Package workspace creates the on-disk areas a conversation writes into:
// per-theme project folders under the projects root and the state directory
// holding persisted sessions and transcripts.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// DefaultProject is the project folder used before a theme is approved.
const DefaultProject = "default"

// Provisioner derives project folders from approved theme labels.
type Provisioner struct {
	Root string
}

// NewProvisioner returns a Provisioner rooted at root.
func NewProvisioner(root string) *Provisioner {
	return &Provisioner{Root: root}
}

// OwnerFile marks which conversation a project folder belongs to.
const OwnerFile = ".owner"

// maxClaimAttempts bounds the suffixes tried for one label.
const maxClaimAttempts = 1000

// Provision creates the project folder for label on behalf of owner and
// returns its absolute path. A folder already claimed by owner is reused; a
// folder claimed by another conversation is skipped in favor of the next free
// numbered variant (pasta, pasta_2, pasta_3, ...). The default folder is never
// handed out.
func (p *Provisioner) Provision(label, owner string) (string, error) {
	if owner == "" {
		return "", fmt.Errorf("project folder for %q needs an owner", label)
	}
	slug := Slugify(label)

	for n := 1; n <= maxClaimAttempts; n++ {
		name := slug
		if n > 1 {
			name = fmt.Sprintf("%s_%d", slug, n)
		}
		if name == DefaultProject {
			continue
		}
		path, err := filepath.Abs(filepath.Join(p.Root, name))
		if err != nil {
			return "", fmt.Errorf("failed to resolve project path for %q: %w", label, err)
		}

		claimed, err := claim(path, owner)
		if err != nil {
			return "", err
		}
		if claimed {
			return path, nil
		}
	}
	return "", fmt.Errorf("no free project folder for %q after %d attempts", label, maxClaimAttempts)
}

// claim creates path and records owner in it. It reports false when the
// folder belongs to someone else or is not a directory.
func claim(path, owner string) (bool, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		// A file squatting on the name only blocks this variant
		if info, statErr := os.Stat(path); statErr == nil && !info.IsDir() {
			return false, nil
		}
		return false, fmt.Errorf("failed to create project folder %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("failed to check project folder %s: %w", path, err)
	}
	if !info.IsDir() {
		return false, nil
	}

	marker := filepath.Join(path, OwnerFile)

	// O_EXCL makes the first writer the owner when two turns race
	f, err := os.OpenFile(marker, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err == nil {
		_, writeErr := f.WriteString(owner + "\n")
		closeErr := f.Close()
		if writeErr != nil {
			return false, fmt.Errorf("failed to write owner of %s: %w", path, writeErr)
		}
		if closeErr != nil {
			return false, fmt.Errorf("failed to write owner of %s: %w", path, closeErr)
		}
		return true, nil
	}
	if !errors.Is(err, fs.ErrExist) {
		return false, fmt.Errorf("failed to claim project folder %s: %w", path, err)
	}

	data, err := os.ReadFile(marker)
	if err != nil {
		return false, fmt.Errorf("failed to read owner of %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)) == owner, nil
}

// DefaultDir is where outputs land for sessionID before a project folder exists.
func (p *Provisioner) DefaultDir(sessionID string) string {
	return filepath.Join(p.Root, DefaultProject, sessionID)
}

// Slugify lowercases label and joins its words with underscores, dropping
// anything that is not a letter, digit, underscore or hyphen.
func Slugify(label string) string {
	words := strings.Fields(strings.ToLower(label))

	var b strings.Builder
	for i, w := range words {
		if i > 0 && b.Len() > 0 {
			b.WriteByte('_')
		}
		for _, r := range w {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
				b.WriteRune(r)
			}
		}
	}

	slug := strings.Trim(b.String(), "_-")
	if slug == "" {
		return "untitled"
	}
	return slug
}

// StateDirectories lists the subdirectories of the state directory.
func StateDirectories() []string {
	return []string{
		"sessions",    // sessions/<id>.json
		"transcripts", // transcripts/<id>.ndjson
	}
}

// InitializeState creates the state directory layout. Safe to call repeatedly.
func InitializeState(stateDir string) error {
	for _, dir := range StateDirectories() {
		path := filepath.Join(stateDir, dir)
		if err := os.MkdirAll(path, 0o700); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", path, err)
		}
	}
	return nil
}

// IsStateInitialized reports whether every state subdirectory exists.
func IsStateInitialized(stateDir string) (bool, error) {
	for _, dir := range StateDirectories() {
		path := filepath.Join(stateDir, dir)

		info, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to check directory %s: %w", path, err)
		}
		if !info.IsDir() {
			return false, nil
		}
	}
	return true, nil
}
