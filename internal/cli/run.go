package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/geethika608/youtube-short-creator/internal/transcript"
	"github.com/geethika608/youtube-short-creator/internal/workflow"
)

var timeNow = time.Now

var runCmd = &cobra.Command{
	Use:   "run [message]",
	Short: "Run one turn of a session",
	Long: `Send one message to a session and print the replies. Without --session a new
session is started and its ID is printed so the next reply can be sent with
'shorts run --session <id> <reply>'.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
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

	conv, messages, err := runner.RunTurn(ctx, id, strings.Join(args, " "))
	printMessages(cmd.OutOrStdout(), messages)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nSession: %s (stage %s)\n", conv.ID, conv.State.Stage)
	return nil
}

func printMessages(w io.Writer, messages []workflow.Message) {
	formatter := transcript.NewFormatter()
	for _, m := range messages {
		fmt.Fprintln(w, formatter.FormatMessage(m))
	}
}
