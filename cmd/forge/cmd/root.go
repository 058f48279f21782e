package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "forge",
	Short: "Forge engine CLI",
	Long: `forge is the command-line front end for the forge-engine packages.

It exposes the source parser, three-way merge engine, logic flow simulator,
and renderer adapters as standalone subcommands, so each core package can be
exercised without embedding it in a host application.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExitCodeError lets a subcommand request a specific non-zero process exit
// code (distinct from the generic failure code 1), e.g. merge's
// "conflicts were found but the merge still produced output" case.
type ExitCodeError struct {
	Code int
	Err  error
}

func (e *ExitCodeError) Error() string { return e.Err.Error() }
func (e *ExitCodeError) Unwrap() error { return e.Err }

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}
