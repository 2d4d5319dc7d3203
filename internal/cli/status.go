package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/geethika608/youtube-short-creator/internal/snapshot"
	"github.com/geethika608/youtube-short-creator/internal/transcript"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a session's state, or list sessions",
	RunE:  runStatus,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print a session's transcript",
	RunE:  runHistory,
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	id, err := cmd.Flags().GetString("session")
	if err != nil {
		return err
	}
	if id == "" {
		ids, err := a.store.List()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Fprintln(out, "No sessions yet.")
			return nil
		}
		for _, id := range ids {
			fmt.Fprintln(out, id)
		}
		return nil
	}

	conv, err := a.store.Load(id)
	if err != nil {
		return err
	}

	formatter := transcript.NewFormatter()
	fmt.Fprintln(out, formatter.FormatState(conv))
	if conv.State.WorkspacePath != "" {
		return listImages(out, formatter, conv.State.WorkspacePath)
	}
	return nil
}

// listImages prints every generated image under dir with its size.
func listImages(w io.Writer, formatter *transcript.Formatter, dir string) error {
	manifest, err := snapshot.Capture(dir)
	if err != nil {
		return fmt.Errorf("failed to list images: %w", err)
	}

	images := manifest.Images()
	if len(images) == 0 {
		return nil
	}
	fmt.Fprintf(w, "Images (%s):\n", manifest.SnapshotID)
	for _, img := range images {
		fmt.Fprintf(w, "  %s\n", formatter.FormatFile(img.Path, img.Size))
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	id, err := sessionFlag(cmd, false)
	if err != nil {
		return err
	}

	entries, err := a.recorder.Entries(id)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No transcript for session %s.\n", id)
		return nil
	}

	formatter := transcript.NewFormatter()
	for _, e := range entries {
		fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatEntry(e))
	}
	return nil
}
