// Command glnodec compiles JSON serialized node graphs to GLSL or WGSL programs.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/soypat/glnode"
	"github.com/spf13/cobra"
)

func init() {
	runtime.LockOSThread() // OpenGL validation requires the context on the main thread.
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "glnodec:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:           "glnodec",
		Short:         "Compile shader node graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			glnode.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log build diagnostics")
	cmd.AddCommand(newCompileCmd(), newInspectCmd())
	return cmd
}
