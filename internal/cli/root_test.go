package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestRootCommandIncludesSessionFlag(t *testing.T) {
	sessionFlag := lookupFlag(rootCmd, "session")
	require.NotNil(t, sessionFlag, "root command should expose the --session flag")
	require.Equal(t, "s", sessionFlag.Shorthand, "root session flag shorthand mismatch")

	for _, name := range []string{"run", "resume", "serve", "status", "history"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		require.Equal(t, name, cmd.Name())
	}
}

func TestRootCommandDelegatesToResume(t *testing.T) {
	originalRunE := resumeCmd.RunE
	t.Cleanup(func() {
		resumeCmd.RunE = originalRunE
		resetFlag(rootCmd, "session")
		rootCmd.SetArgs(nil)
	})

	called := false
	resumeCmd.RunE = func(cmd *cobra.Command, args []string) error {
		called = true
		id, err := cmd.Flags().GetString("session")
		require.NoError(t, err)
		require.Equal(t, "session-cli-test", id)
		return nil
	}

	rootCmd.SetArgs([]string{"--session", "session-cli-test"})
	err := rootCmd.Execute()
	require.NoError(t, err)
	require.True(t, called, "root command should delegate to resume command")
}

func resetFlag(cmd *cobra.Command, name string) {
	if flag := lookupFlag(cmd, name); flag != nil {
		_ = flag.Value.Set(flag.DefValue)
		flag.Changed = false
	}
}

func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag
	}
	return cmd.PersistentFlags().Lookup(name)
}
