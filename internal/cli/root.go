// Package cli implements the tasktimer command line using Cobra.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tasktimer",
		Short: "Task manager with time tracking",
		Long: `tasktimer serves a multi-user task API with per-task timers and
period summaries of tracked time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "TOML config file (environment variables still take precedence)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newUsersCmd())
	return root
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	root := newRootCmd()
	root.Version = version

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// run executes args against a fresh command tree, writing to out. Tests
// use it instead of Execute.
func run(out io.Writer, args ...string) error {
	root := newRootCmd()
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	return root.Execute()
}
