package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const defaultConfigFile = "app-sdk.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample app-sdk configuration file",
		Long:  "Scaffold a commented app-sdk configuration file that documents the available options and their defaults.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			cfg := &InitConfig{
				OutputPath: out,
				Force:      force,
			}
			return initRunner(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().String("out", defaultConfigFile, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, w io.Writer, cfg *InitConfig) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = defaultConfigFile
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force {
		if st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}

	content := strings.TrimSpace(sampleConfigYAML) + "\n"

	// Atomic write via temp + rename
	tmp := absPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", absPath, err))
	}
	printSuccess(w, "Wrote sample config to %s", absPath)
	return nil
}

// sampleConfigYAML documents every config key with its default.
const sampleConfigYAML = `# app-sdk configuration (YAML or JSON)
# All fields are optional. APP_SDK_* environment variables override them,
# command-line flags override both.

# Project directory spryk-run works in. Relative paths below resolve against it.
# projectRoot: .

# spryk-run executable. Bare names are looked up on PATH.
# sprykRun: vendor/bin/spryk-run

# Input of build from-openapi.
# openapiFile: resources/api/openapi.yml

# Input of build from-asyncapi.
# asyncapiFile: resources/api/asyncapi.yml

# Inputs of validate translation.
# translationFile: config/app/translation.json
# manifestPath: config/app/manifest
# configurationFile: config/app/configuration.json

# Organization code is generated for. Spryker generates into core.
# organization: App

# Application type of build from-openapi.
# applicationType: backend

# Log level for diagnostics on stderr (debug|info|warn|error).
# logLevel: warn

# Print messages and errors.
# verbose: false
`
