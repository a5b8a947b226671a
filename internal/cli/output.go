package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/spryker-sdk/app-sdk/internal/response"
)

var (
	errorColor   = color.New(color.FgRed)
	successColor = color.New(color.FgGreen)
)

func printError(w io.Writer, text string) {
	_, _ = errorColor.Fprintln(w, text)
}

// report prints resp when verbose and turns recorded errors into exit code 1.
// Without verbose nothing is printed, whatever the outcome.
func report(w io.Writer, resp *response.Response, verbose bool) error {
	if !resp.HasErrors() {
		if verbose {
			for _, m := range resp.Messages {
				fmt.Fprintln(w, m.Text)
			}
		}
		return nil
	}
	if verbose {
		for _, e := range resp.Errors {
			printError(w, e.Text)
		}
	}
	return &ExitError{Code: 1}
}

func printSuccess(w io.Writer, format string, args ...any) {
	_, _ = successColor.Fprintf(w, format+"\n", args...)
}
