package cli

import (
	"context"
	"io"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/spryker-sdk/app-sdk/internal/config"
	"github.com/spryker-sdk/app-sdk/internal/logging"
	"github.com/spryker-sdk/app-sdk/internal/validate"
)

// TranslationValidateConfig captures the inputs of validate translation.
type TranslationValidateConfig struct {
	Config config.Config
}

// DocumentValidateConfig captures the inputs of validate openapi and
// validate asyncapi. File is the resolved document path.
type DocumentValidateConfig struct {
	Config config.Config
	File   string
}

var (
	translationValidateRunner = runTranslationValidate
	openAPIValidateRunner     = runOpenAPIValidate
	asyncAPIValidateRunner    = runAsyncAPIValidate
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the app's configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	for _, sub := range []*cobra.Command{newValidateTranslationCmd(), newValidateOpenAPICmd(), newValidateAsyncAPICmd()} {
		sub.SetFlagErrorFunc(flagError)
		cmd.AddCommand(sub)
	}
	return cmd
}

func newValidateTranslationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translation",
		Short: "Validate the translation file",
		Long: heredoc.Doc(`
			Validate the translation file against the app configuration. Every
			title, placeholder and option description of the configuration file
			needs a translation for every locale that has a manifest file.
		`),
		Example: heredoc.Doc(`
			app-sdk validate translation -v
			app-sdk validate translation -t config/app/translation.json -m config/app/manifest
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, func(c *config.Config) map[string]*string {
				return map[string]*string{
					"translation-file":   &c.TranslationFile,
					"manifest-path":      &c.ManifestPath,
					"configuration-file": &c.ConfigurationFile,
				}
			})
			if err != nil {
				return err
			}
			if _, err := attachLogger(cmd, cfg); err != nil {
				return err
			}
			return translationValidateRunner(cmd.Context(), cmd.OutOrStdout(), &TranslationValidateConfig{Config: *cfg})
		},
	}

	flags := cmd.Flags()
	flags.StringP("translation-file", "t", "", "Translation file (default "+config.DefaultTranslationFile+")")
	flags.StringP("manifest-path", "m", "", "Directory of the manifest files (default "+config.DefaultManifestPath+")")
	flags.String("configuration-file", "", "App configuration file (default "+config.DefaultConfigurationFile+")")

	return cmd
}

func newValidateOpenAPICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Validate the OpenAPI file",
		Long: heredoc.Doc(`
			Load the OpenAPI file the way build from-openapi does and report every
			problem that would stop a build.
		`),
		Example: heredoc.Doc(`
			app-sdk validate openapi -v
			app-sdk validate openapi -a resources/api/openapi.yml
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, func(c *config.Config) map[string]*string {
				return map[string]*string{"openapi-file": &c.OpenAPIFile}
			})
			if err != nil {
				return err
			}
			if cfg.OpenAPIFile == "" {
				return newUsageError("validate openapi: --openapi-file is required")
			}
			if _, err := attachLogger(cmd, cfg); err != nil {
				return err
			}
			return openAPIValidateRunner(cmd.Context(), cmd.OutOrStdout(), &DocumentValidateConfig{Config: *cfg, File: cfg.OpenAPIFile})
		},
	}
	cmd.Flags().StringP("openapi-file", "a", "", "OpenAPI file (default "+config.DefaultOpenAPIFile+")")
	return cmd
}

func newValidateAsyncAPICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "asyncapi",
		Short: "Validate the AsyncAPI file",
		Long: heredoc.Doc(`
			Load the AsyncAPI file the way build from-asyncapi does and report every
			problem that would stop a build.
		`),
		Example: heredoc.Doc(`
			app-sdk validate asyncapi -v
			app-sdk validate asyncapi -a resources/api/asyncapi.yml
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, func(c *config.Config) map[string]*string {
				return map[string]*string{"asyncapi-file": &c.AsyncAPIFile}
			})
			if err != nil {
				return err
			}
			if cfg.AsyncAPIFile == "" {
				return newUsageError("validate asyncapi: --asyncapi-file is required")
			}
			if _, err := attachLogger(cmd, cfg); err != nil {
				return err
			}
			return asyncAPIValidateRunner(cmd.Context(), cmd.OutOrStdout(), &DocumentValidateConfig{Config: *cfg, File: cfg.AsyncAPIFile})
		},
	}
	cmd.Flags().StringP("asyncapi-file", "a", "", "AsyncAPI file (default "+config.DefaultAsyncAPIFile+")")
	return cmd
}

func runOpenAPIValidate(ctx context.Context, w io.Writer, cfg *DocumentValidateConfig) error {
	resp := validate.New(logging.FromContext(ctx)).OpenAPI(ctx, cfg.File)
	return report(w, resp, cfg.Config.Verbose)
}

func runAsyncAPIValidate(ctx context.Context, w io.Writer, cfg *DocumentValidateConfig) error {
	resp := validate.New(logging.FromContext(ctx)).AsyncAPI(ctx, cfg.File)
	return report(w, resp, cfg.Config.Verbose)
}

func runTranslationValidate(ctx context.Context, w io.Writer, cfg *TranslationValidateConfig) error {
	resp := validate.New(logging.FromContext(ctx)).Translation(ctx, validate.TranslationRequest{
		TranslationFile:   cfg.Config.TranslationFile,
		ManifestPath:      cfg.Config.ManifestPath,
		ConfigurationFile: cfg.Config.ConfigurationFile,
	})
	return report(w, resp, cfg.Config.Verbose)
}
