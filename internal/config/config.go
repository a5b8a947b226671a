// Package config holds the project configuration passed into builders and
// runners. Values are layered: defaults, then a config file, then
// APP_SDK_* environment variables. The CLI applies flags last.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "APP_SDK_"

const (
	DefaultSprykRun          = "vendor/bin/spryk-run"
	DefaultOpenAPIFile       = "resources/api/openapi.yml"
	DefaultAsyncAPIFile      = "resources/api/asyncapi.yml"
	DefaultTranslationFile   = "config/app/translation.json"
	DefaultManifestPath      = "config/app/manifest"
	DefaultConfigurationFile = "config/app/configuration.json"
	DefaultOrganization      = "App"
	DefaultApplicationType   = "backend"
	DefaultLogLevel          = "warn"
)

type Config struct {
	ProjectRoot       string `env:"PROJECT_ROOT"`
	SprykRun          string `env:"SPRYK_RUN"`
	OpenAPIFile       string `env:"OPENAPI_FILE"`
	AsyncAPIFile      string `env:"ASYNCAPI_FILE"`
	TranslationFile   string `env:"TRANSLATION_FILE"`
	ManifestPath      string `env:"MANIFEST_PATH"`
	ConfigurationFile string `env:"CONFIGURATION_FILE"`
	Organization      string `env:"ORGANIZATION"`
	ApplicationType   string `env:"APPLICATION_TYPE"`
	LogLevel          string `env:"LOG_LEVEL"`
	Verbose           bool   `env:"VERBOSE"`
}

// Default returns the configuration used when nothing else is set. The
// project root is the working directory.
func Default() Config {
	return Config{
		ProjectRoot:       ".",
		SprykRun:          DefaultSprykRun,
		OpenAPIFile:       DefaultOpenAPIFile,
		AsyncAPIFile:      DefaultAsyncAPIFile,
		TranslationFile:   DefaultTranslationFile,
		ManifestPath:      DefaultManifestPath,
		ConfigurationFile: DefaultConfigurationFile,
		Organization:      DefaultOrganization,
		ApplicationType:   DefaultApplicationType,
		LogLevel:          DefaultLogLevel,
	}
}

// FieldError reports a config file entry that could not be applied.
type FieldError struct {
	File  string
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("config file %q: field %q: %v", e.File, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// ApplyFile merges a YAML or JSON config file into c. Keys are matched
// case-insensitively with dashes and underscores ignored; unknown keys are
// rejected.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %q: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config file %q: %w", path, err)
	}

	for key, value := range raw {
		if normalizeKey(key) == "verbose" {
			b, err := valueAsBool(value)
			if err != nil {
				return &FieldError{File: path, Field: key, Err: err}
			}
			c.Verbose = b
			continue
		}
		target := c.stringField(normalizeKey(key))
		if target == nil {
			return &FieldError{File: path, Field: key, Err: fmt.Errorf("unknown field")}
		}
		str, err := valueAsString(value)
		if err != nil {
			return &FieldError{File: path, Field: key, Err: err}
		}
		*target = str
	}
	return nil
}

func (c *Config) stringField(key string) *string {
	switch key {
	case "projectroot":
		return &c.ProjectRoot
	case "sprykrun":
		return &c.SprykRun
	case "openapifile":
		return &c.OpenAPIFile
	case "asyncapifile":
		return &c.AsyncAPIFile
	case "translationfile":
		return &c.TranslationFile
	case "manifestpath":
		return &c.ManifestPath
	case "configurationfile":
		return &c.ConfigurationFile
	case "organization":
		return &c.Organization
	case "applicationtype":
		return &c.ApplicationType
	case "loglevel":
		return &c.LogLevel
	default:
		return nil
	}
}

// ApplyEnv overrides fields from APP_SDK_* variables. A nil environ reads
// the process environment.
func (c *Config) ApplyEnv(environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return nil
}

// Resolve makes ProjectRoot absolute and joins relative file locations onto
// it. Bare executable names are left for PATH lookup.
func (c *Config) Resolve() error {
	c.trim()
	if c.ProjectRoot == "" {
		c.ProjectRoot = "."
	}
	root, err := filepath.Abs(c.ProjectRoot)
	if err != nil {
		return fmt.Errorf("resolve project root: %w", err)
	}
	c.ProjectRoot = root

	for _, p := range []*string{&c.OpenAPIFile, &c.AsyncAPIFile, &c.TranslationFile, &c.ManifestPath, &c.ConfigurationFile} {
		*p = c.Path(*p)
	}
	if strings.ContainsRune(c.SprykRun, '/') || strings.ContainsRune(c.SprykRun, filepath.Separator) {
		c.SprykRun = c.Path(c.SprykRun)
	}
	return nil
}

// Path returns p relative to the project root unless it is absolute or empty.
func (c Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ProjectRoot, p)
}

func (c *Config) trim() {
	for _, p := range []*string{
		&c.ProjectRoot, &c.SprykRun, &c.OpenAPIFile, &c.AsyncAPIFile, &c.TranslationFile,
		&c.ManifestPath, &c.ConfigurationFile, &c.Organization, &c.ApplicationType, &c.LogLevel,
	} {
		*p = strings.TrimSpace(*p)
	}
	c.ApplicationType = strings.ToLower(c.ApplicationType)
	c.LogLevel = strings.ToLower(c.LogLevel)
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n", "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}
