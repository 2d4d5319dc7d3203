// Package research gathers background material for an approved theme from
// external sources.
package research

import (
	"context"
	"fmt"
	"strings"
)

// Finding is one piece of source material.
type Finding struct {
	Source string `json:"source"`
	Title  string `json:"title"`
	Body   string `json:"body,omitempty"`
	URL    string `json:"url,omitempty"`
	Score  int    `json:"score,omitempty"`
}

// Source searches one external corpus.
type Source interface {
	Name() string
	Search(ctx context.Context, query string) ([]Finding, error)
}

// maxBodyChars bounds how much of each finding is quoted into a prompt.
const maxBodyChars = 400

// Digest renders findings as a bulleted block for a generation prompt.
func Digest(findings []Finding) string {
	if len(findings) == 0 {
		return ""
	}

	var b strings.Builder
	for _, f := range findings {
		fmt.Fprintf(&b, "- [%s] %s", f.Source, strings.TrimSpace(f.Title))
		if f.Score != 0 {
			fmt.Fprintf(&b, " (score %d)", f.Score)
		}
		b.WriteByte('\n')
		if body := truncate(strings.TrimSpace(f.Body), maxBodyChars); body != "" {
			fmt.Fprintf(&b, "  %s\n", strings.ReplaceAll(body, "\n", " "))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
