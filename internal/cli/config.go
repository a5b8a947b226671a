package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spryker-sdk/app-sdk/internal/config"
	"github.com/spryker-sdk/app-sdk/internal/logging"
)

// flagTargets maps flag names of a command to the config fields they
// override.
type flagTargets func(c *config.Config) map[string]*string

// loadConfig merges defaults, the --config file, the environment, and
// flags that were set explicitly, in that order, and resolves paths
// against the project root.
func loadConfig(cmd *cobra.Command, targets flagTargets) (*config.Config, error) {
	cfg := config.Default()
	flags := cmd.Flags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	if configPath = strings.TrimSpace(configPath); configPath != "" {
		if err := cfg.ApplyFile(configPath); err != nil {
			return nil, newUsageError(err.Error())
		}
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, newUsageError(err.Error())
	}

	common := map[string]*string{
		"project-root": &cfg.ProjectRoot,
		"log-level":    &cfg.LogLevel,
	}
	if err := applyStringFlags(flags, common); err != nil {
		return nil, err
	}
	if targets != nil {
		if err := applyStringFlags(flags, targets(&cfg)); err != nil {
			return nil, err
		}
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return nil, err
		}
		cfg.Verbose = value
	}

	if err := cfg.Resolve(); err != nil {
		return nil, newUsageError(err.Error())
	}
	return &cfg, nil
}

func applyStringFlags(flags *pflag.FlagSet, targets map[string]*string) error {
	for name, target := range targets {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*target = strings.TrimSpace(value)
	}
	return nil
}

// attachLogger builds the diagnostics logger for cmd and stores it on the
// command context.
func attachLogger(cmd *cobra.Command, cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.NewLogger(logging.Config{
		Component: strings.ReplaceAll(strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()+" "), " ", "."),
		Level:     cfg.LogLevel,
		Output:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, newUsageError(fmt.Sprintf("invalid --log-level %q: %v", cfg.LogLevel, err))
	}
	cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
	return logger, nil
}
