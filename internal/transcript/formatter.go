package transcript

import (
	"fmt"
	"strings"

	"github.com/geethika608/youtube-short-creator/internal/eventlog"
	"github.com/geethika608/youtube-short-creator/internal/workflow"
)

// Formatter formats workflow messages and transcript entries for console output
type Formatter struct{}

// NewFormatter creates a new transcript formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// FormatMessage formats one reply of a turn for console display
func (f *Formatter) FormatMessage(msg workflow.Message) string {
	switch msg.Kind {
	case workflow.KindStatus:
		return fmt.Sprintf("[working] %s", msg.Text)
	case workflow.KindWarning:
		return fmt.Sprintf("[warning] %s", msg.Text)
	case workflow.KindError:
		return fmt.Sprintf("[error] %s", msg.Text)
	case workflow.KindComplete:
		return fmt.Sprintf("[done] %s", msg.Text)
	default:
		// Checkpoints are questions for the human and print as-is.
		return msg.Text
	}
}

// FormatEntry formats a stored transcript line for the history command
func (f *Formatter) FormatEntry(e eventlog.Entry) string {
	if e.Role == eventlog.RoleHuman {
		text := e.Text
		if strings.TrimSpace(text) == "" {
			text = "(empty)"
		}
		return fmt.Sprintf("[turn %d] you: %s", e.Turn, text)
	}
	return f.FormatMessage(workflow.Message{Kind: e.Kind, Text: e.Text})
}

// FormatState summarizes a conversation for the status command
func (f *Formatter) FormatState(conv workflow.Conversation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n", conv.ID)
	fmt.Fprintf(&b, "Stage: %s\n", conv.State.Stage)
	fmt.Fprintf(&b, "Turns: %d\n", conv.Turns)
	if theme := conv.State.Theme; theme != nil {
		fmt.Fprintf(&b, "Theme: %s (%s)\n", theme.Label, f.approval(conv.State.ThemeApproved))
	}
	if conv.State.Script != "" {
		fmt.Fprintf(&b, "Script: %d words (%s)\n", len(strings.Fields(conv.State.Script)), f.approval(conv.State.ScriptApproved))
	}
	if conv.State.WorkspacePath != "" {
		fmt.Fprintf(&b, "Project folder: %s\n", conv.State.WorkspacePath)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatFile formats a generated file with its size
func (f *Formatter) FormatFile(path string, size int64) string {
	return fmt.Sprintf("%s (%s)", path, f.formatSize(size))
}

func (f *Formatter) approval(approved bool) string {
	if approved {
		return "approved"
	}
	return "awaiting approval"
}

// formatSize formats a byte size in a human-readable format
func (f *Formatter) formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GiB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MiB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KiB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
