package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/geethika608/youtube-short-creator/internal/session"
	"github.com/geethika608/youtube-short-creator/internal/transcript"
	"github.com/geethika608/youtube-short-creator/internal/workflow"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Continue a session interactively",
	Long: `Continue a session from its saved state, reading one reply per line until the
Short is complete or input ends. Without --session a new session is started.`,
	RunE: runResume,
}

const openingQuestion = "What would you like your YouTube Short to be about?"

func runResume(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	id, err := sessionFlag(cmd, true)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	runner, err := a.runner(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	tty := false
	if f, ok := cmd.InOrStdin().(*os.File); ok {
		tty = isTerminalFile(f)
	}

	fmt.Fprintf(out, "Session: %s\n", id)
	conv, err := runner.Get(id)
	switch {
	case errors.Is(err, session.ErrNotFound):
		fmt.Fprintln(out, openingQuestion)
	case err != nil:
		return fmt.Errorf("failed to load session: %w", err)
	default:
		a.logger.Info("resuming session", "session_id", id, "stage", conv.State.Stage.String())
		fmt.Fprintln(out, transcript.NewFormatter().FormatState(conv))
		if conv.State.Stage == workflow.StageAssets {
			return nil
		}
		if conv.State.Theme == nil {
			fmt.Fprintln(out, openingQuestion)
		}
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	for {
		reply, err := promptForReply(reader, out, tty)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		conv, messages, err := runner.RunTurn(ctx, id, reply)
		printMessages(out, messages)
		if err != nil {
			return err
		}
		if conv.State.Stage == workflow.StageAssets {
			return nil
		}
	}
}

// promptForReply reads one line. io.EOF is returned only when no text was
// read at all.
func promptForReply(reader *bufio.Reader, w io.Writer, tty bool) (string, error) {
	if tty {
		fmt.Fprint(w, "you> ")
	}

	line, err := reader.ReadString('\n')
	if errors.Is(err, io.EOF) {
		if line == "" {
			if tty {
				fmt.Fprintln(w)
			}
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func isTerminalFile(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
