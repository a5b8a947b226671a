package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spryker-sdk/app-sdk/internal/builder"
	"github.com/spryker-sdk/app-sdk/internal/config"
	"github.com/spryker-sdk/app-sdk/internal/logging"
	"github.com/spryker-sdk/app-sdk/internal/response"
	"github.com/spryker-sdk/app-sdk/internal/spec"
	"github.com/spryker-sdk/app-sdk/internal/spryk"
)

// OpenAPIBuildConfig captures all inputs of build from-openapi after merging
// defaults, config file values, environment, and CLI overrides.
type OpenAPIBuildConfig struct {
	Config      config.Config
	IncludeTags []string
	ExcludeTags []string
	Methods     []spec.HttpMethod
	DryRun      bool
}

// AsyncAPIBuildConfig captures all inputs of build from-asyncapi.
type AsyncAPIBuildConfig struct {
	Config config.Config
	DryRun bool
}

var (
	openAPIBuildRunner  = runOpenAPIBuild
	asyncAPIBuildRunner = runAsyncAPIBuild
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate code from the app's API files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	for _, sub := range []*cobra.Command{newBuildFromOpenAPICmd(), newBuildFromAsyncAPICmd()} {
		sub.SetFlagErrorFunc(flagError)
		cmd.AddCommand(sub)
	}
	return cmd
}

func newBuildFromOpenAPICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "from-openapi",
		Short: "Add transfer properties for every request and response schema of an OpenAPI file",
		Long: heredoc.Doc(`
			Add transfer properties for every request and response schema of an
			OpenAPI 3.x file. Each path is mapped to a module named after its first
			segment, e.g. /customers/{id} to CustomersApi.

			The organization Spryker generates into core, any other organization
			into the project.
		`),
		Example: heredoc.Doc(`
			app-sdk build from-openapi -v
			app-sdk build from-openapi --openapi-file resources/api/openapi.yml --organization Pyz
			app-sdk build from-openapi --include-tags private --dry-run
			app-sdk build from-openapi --methods post,patch
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveOpenAPIBuildConfig(cmd)
			if err != nil {
				return err
			}
			if _, err := attachLogger(cmd, &cfg.Config); err != nil {
				return err
			}
			return openAPIBuildRunner(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringP("openapi-file", "a", "", "OpenAPI file (default "+config.DefaultOpenAPIFile+")")
	flags.StringP("application-type", "t", "", "Application type (default "+config.DefaultApplicationType+")")
	flags.StringP("organization", "o", "", "Organization the code is generated for (default "+config.DefaultOrganization+")")
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
	flags.StringSlice("methods", nil, "Only include operations using these HTTP methods")
	flags.Bool("dry-run", false, "Print the planned spryk runs without executing them")

	return cmd
}

func newBuildFromAsyncAPICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "from-asyncapi",
		Short: "Add transfers and message handlers for every message of an AsyncAPI file",
		Long: heredoc.Doc(`
			Add transfers and message handlers for every message of an AsyncAPI 2.x
			file. Published messages get a transfer and a message handler plugin,
			subscribed messages a transfer. The operationId of a message names the
			module.
		`),
		Example: heredoc.Doc(`
			app-sdk build from-asyncapi -v
			app-sdk build from-asyncapi --asyncapi-file resources/api/asyncapi.yml --organization Pyz
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveAsyncAPIBuildConfig(cmd)
			if err != nil {
				return err
			}
			if _, err := attachLogger(cmd, &cfg.Config); err != nil {
				return err
			}
			return asyncAPIBuildRunner(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringP("asyncapi-file", "a", "", "AsyncAPI file (default "+config.DefaultAsyncAPIFile+")")
	flags.StringP("organization", "o", "", "Project namespace the code is generated into (default "+config.DefaultOrganization+")")
	flags.Bool("dry-run", false, "Print the planned spryk runs without executing them")

	return cmd
}

func resolveOpenAPIBuildConfig(cmd *cobra.Command) (*OpenAPIBuildConfig, error) {
	cfg, err := loadConfig(cmd, func(c *config.Config) map[string]*string {
		return map[string]*string{
			"openapi-file":     &c.OpenAPIFile,
			"application-type": &c.ApplicationType,
			"organization":     &c.Organization,
		}
	})
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	out := &OpenAPIBuildConfig{Config: *cfg}
	if out.IncludeTags, err = flags.GetStringSlice("include-tags"); err != nil {
		return nil, err
	}
	if out.ExcludeTags, err = flags.GetStringSlice("exclude-tags"); err != nil {
		return nil, err
	}
	if out.DryRun, err = flags.GetBool("dry-run"); err != nil {
		return nil, err
	}
	out.IncludeTags = sanitizeTags(out.IncludeTags)
	out.ExcludeTags = sanitizeTags(out.ExcludeTags)

	methods, err := flags.GetStringSlice("methods")
	if err != nil {
		return nil, err
	}
	for _, m := range sanitizeTags(methods) {
		method, ok := spec.ParseHttpMethod(m)
		if !ok {
			return nil, newUsageError(fmt.Sprintf("build from-openapi: unknown HTTP method %q", m))
		}
		out.Methods = append(out.Methods, method)
	}

	if overlap := intersect(out.IncludeTags, out.ExcludeTags); len(overlap) > 0 {
		return nil, newUsageError(fmt.Sprintf("build from-openapi: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}
	if out.Config.OpenAPIFile == "" {
		return nil, newUsageError("build from-openapi: --openapi-file is required")
	}
	return out, nil
}

func resolveAsyncAPIBuildConfig(cmd *cobra.Command) (*AsyncAPIBuildConfig, error) {
	cfg, err := loadConfig(cmd, func(c *config.Config) map[string]*string {
		return map[string]*string{
			"asyncapi-file": &c.AsyncAPIFile,
			"organization":  &c.Organization,
		}
	})
	if err != nil {
		return nil, err
	}
	out := &AsyncAPIBuildConfig{Config: *cfg}
	if out.DryRun, err = cmd.Flags().GetBool("dry-run"); err != nil {
		return nil, err
	}
	if out.Config.AsyncAPIFile == "" {
		return nil, newUsageError("build from-asyncapi: --asyncapi-file is required")
	}
	return out, nil
}

func runOpenAPIBuild(ctx context.Context, w io.Writer, cfg *OpenAPIBuildConfig) error {
	logger := logging.FromContext(ctx)
	runner, plan := newRunner(cfg.Config, cfg.DryRun, logger)

	resp := builder.NewOpenAPIBuilder(runner, logger).Build(ctx, builder.OpenAPIRequest{
		File:            cfg.Config.OpenAPIFile,
		Organization:    cfg.Config.Organization,
		ApplicationType: cfg.Config.ApplicationType,
		IncludeTags:     cfg.IncludeTags,
		ExcludeTags:     cfg.ExcludeTags,
		Methods:         cfg.Methods,
	})
	return finish(w, resp, plan, cfg.Config, logger)
}

func runAsyncAPIBuild(ctx context.Context, w io.Writer, cfg *AsyncAPIBuildConfig) error {
	logger := logging.FromContext(ctx)
	runner, plan := newRunner(cfg.Config, cfg.DryRun, logger)

	resp := builder.NewAsyncAPIBuilder(runner, logger).Build(ctx, builder.AsyncAPIRequest{
		File:         cfg.Config.AsyncAPIFile,
		Organization: cfg.Config.Organization,
	})
	return finish(w, resp, plan, cfg.Config, logger)
}

// newRunner returns the process runner, or a plan runner on dry runs.
func newRunner(cfg config.Config, dryRun bool, logger *zap.Logger) (spryk.Runner, *spryk.PlanRunner) {
	if dryRun {
		plan := &spryk.PlanRunner{}
		return plan, plan
	}
	return spryk.NewProcessRunner(cfg.ProjectRoot, cfg.SprykRun, logger), nil
}

func finish(w io.Writer, resp *response.Response, plan *spryk.PlanRunner, cfg config.Config, logger *zap.Logger) error {
	if plan != nil {
		plan.Render(w, cfg.SprykRun)
		// Nothing was added on a dry run.
		resp.Messages = nil
	}
	logger.Info("build finished",
		zap.Int("messages", len(resp.Messages)),
		zap.Int("errors", len(resp.Errors)),
	)
	return report(w, resp, cfg.Verbose)
}

func sanitizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}
