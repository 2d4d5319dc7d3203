// Package snapshot lists the files of a project folder with their sizes and
// content digests.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// File kinds.
const (
	KindImage  = "image"
	KindOutput = "output"
)

// FileInfo represents a single file in the project folder
type FileInfo struct {
	Path   string    `json:"path"`
	Kind   string    `json:"kind"`
	SHA256 string    `json:"sha256"`
	Size   int64     `json:"size"`
	Mtime  time.Time `json:"mtime"`
}

// Manifest represents a project folder at one point in time
type Manifest struct {
	SnapshotID string     `json:"snapshot_id"`
	Root       string     `json:"root"`
	Files      []FileInfo `json:"files"`
}

// Images returns the image entries in path order.
func (m *Manifest) Images() []FileInfo {
	var out []FileInfo
	for _, f := range m.Files {
		if f.Kind == KindImage {
			out = append(out, f)
		}
	}
	return out
}

// Capture walks root and records every non-hidden file. A missing root
// yields an empty manifest.
func Capture(root string) (*Manifest, error) {
	var files []FileInfo

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !d.Type().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path: %w", err)
		}
		relPath = filepath.ToSlash(relPath)

		info, err := d.Info()
		if err != nil {
			return err
		}
		hash, err := fileDigest(path)
		if err != nil {
			return fmt.Errorf("failed to compute checksum for %s: %w", relPath, err)
		}

		files = append(files, FileInfo{
			Path:   relPath,
			Kind:   kindOf(relPath),
			SHA256: hash,
			Size:   info.Size(),
			Mtime:  info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	// Sorted so the snapshot ID does not depend on walk order
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	manifest := &Manifest{Root: root, Files: files}
	id, err := computeSnapshotID(files)
	if err != nil {
		return nil, err
	}
	manifest.SnapshotID = id
	return manifest, nil
}

func kindOf(relPath string) string {
	switch strings.ToLower(filepath.Ext(relPath)) {
	case ".jpg", ".jpeg", ".png":
		return KindImage
	default:
		return KindOutput
	}
}

// computeSnapshotID hashes path, digest and size of every file
// Format: "snap-" + first 12 hex chars
func computeSnapshotID(files []FileInfo) (string, error) {
	type entry struct {
		Path   string `json:"path"`
		SHA256 string `json:"sha256"`
		Size   int64  `json:"size"`
	}
	entries := make([]entry, len(files))
	for i, f := range files {
		entries[i] = entry{Path: f.Path, SHA256: f.SHA256, Size: f.Size}
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}
	sum := sha256.Sum256(data)
	return "snap-" + hex.EncodeToString(sum[:])[:12], nil
}

// fileDigest streams path through SHA-256 and returns "sha256:<hex>".
func fileDigest(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return "sha256:" + hex.EncodeToString(hasher.Sum(nil)), nil
}
