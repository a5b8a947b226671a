package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Execute runs the app-sdk CLI and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	err := root.ExecuteContext(context.Background())
	if err == nil {
		return 0
	}
	var exit *ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	printError(root.ErrOrStderr(), err.Error())
	return 1
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "app-sdk",
		Short: "Generate Spryker app code from OpenAPI and AsyncAPI files",
		Long: heredoc.Doc(`
			app-sdk reads the OpenAPI and AsyncAPI files of an app and runs spryk-run
			for every transfer, property and message handler they describe.

			Messages and errors are printed only with --verbose. The exit code is 0
			when no error was recorded and 1 otherwise.
		`),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
				color.NoColor = true
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Convert Cobra flag errors (like unknown flags) into friendly usage errors
	// that also show the command's help text.
	cmd.SetFlagErrorFunc(flagError)

	pf := cmd.PersistentFlags()
	pf.StringP("config", "c", "", "Config file path (YAML or JSON)")
	pf.BoolP("verbose", "v", false, "Print messages and errors")
	pf.String("project-root", "", "Project directory spryk-run works in (defaults to the working directory)")
	pf.String("log-level", "", "Log level for diagnostics on stderr (debug|info|warn|error)")
	pf.Bool("no-color", false, "Disable coloured output")

	for _, sub := range []*cobra.Command{newBuildCmd(), newValidateCmd(), newInitCmd()} {
		sub.SetFlagErrorFunc(flagError)
		cmd.AddCommand(sub)
	}

	return cmd
}

func flagError(c *cobra.Command, err error) error {
	return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
}
