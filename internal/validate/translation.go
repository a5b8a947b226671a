// Package validate checks the app configuration files shipped with an app.
package validate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/spryker-sdk/app-sdk/internal/response"
)

// TranslationRequest names the files a translation check reads.
type TranslationRequest struct {
	TranslationFile   string
	ManifestPath      string // directory of <locale>.json manifests
	ConfigurationFile string
}

type Validator struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{logger: logger}
}

// Translation verifies that every translatable key of the configuration
// file has a text for every locale with a manifest. All problems found are
// recorded as errors; the check does not stop at the first one. A cancelled
// context is recorded as an error and ends the check.
func (v *Validator) Translation(ctx context.Context, req TranslationRequest) *response.Response {
	resp := response.New()

	translations, ok := v.readTranslations(req.TranslationFile, resp)
	if !ok {
		return resp
	}
	locales, ok := v.readLocales(req.ManifestPath, resp)
	if !ok {
		return resp
	}
	keys, ok := v.readTranslatableKeys(req.ConfigurationFile, resp)
	if !ok {
		return resp
	}

	v.logger.Debug("validating translations",
		zap.String("file", req.TranslationFile),
		zap.Strings("locales", locales),
		zap.Int("keys", len(keys)),
	)

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			resp.AddErr(err)
			return resp
		}
		texts, found := translations[key]
		if !found {
			resp.AddError("Translation for the key \"%s\" is missing in \"%s\".", key, req.TranslationFile)
			continue
		}
		for _, locale := range locales {
			if _, found := texts[locale]; !found {
				resp.AddError("Translation for the key \"%s\" and locale \"%s\" is missing in \"%s\".", key, locale, req.TranslationFile)
			}
		}
	}

	if !resp.HasErrors() {
		resp.AddMessage("Translation file \"%s\" is valid.", req.TranslationFile)
	}
	return resp
}

func (v *Validator) readTranslations(path string, resp *response.Response) (map[string]map[string]string, bool) {
	doc, ok := readJSON(path, "Translation file", resp)
	if !ok {
		return nil, false
	}
	schema, err := translationSchemaOnce()
	if err != nil {
		resp.AddErr(err)
		return nil, false
	}
	if err := schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			resp.AddErr(err)
			return nil, false
		}
		for _, violation := range schemaViolations(verr) {
			resp.AddError("Translation file \"%s\" has an invalid structure at %s", path, violation)
		}
		return nil, false
	}

	out := make(map[string]map[string]string)
	for key, raw := range doc.(map[string]any) {
		texts := make(map[string]string)
		for locale, text := range raw.(map[string]any) {
			texts[locale] = text.(string)
		}
		out[key] = texts
	}
	return out, true
}

// readLocales returns the sorted locales of the <locale>.json manifests in dir.
func (v *Validator) readLocales(dir string, resp *response.Response) ([]string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			resp.AddError("Manifest path \"%s\" does not exist.", dir)
		} else {
			resp.AddError("Manifest path \"%s\" could not be read: %v", dir, err)
		}
		return nil, false
	}

	schema, err := manifestSchemaOnce()
	if err != nil {
		resp.AddErr(err)
		return nil, false
	}

	var locales []string
	valid := true
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		doc, ok := readJSON(path, "Manifest file", resp)
		if !ok {
			valid = false
			continue
		}
		if err := schema.Validate(doc); err != nil {
			resp.AddError("Manifest file \"%s\" must contain a JSON object.", path)
			valid = false
			continue
		}
		locales = append(locales, strings.TrimSuffix(e.Name(), ".json"))
	}
	if !valid {
		return nil, false
	}
	if len(locales) == 0 {
		resp.AddError("No manifest files found in \"%s\".", dir)
		return nil, false
	}
	sort.Strings(locales)
	return locales, true
}

func (v *Validator) readTranslatableKeys(path string, resp *response.Response) ([]string, bool) {
	doc, ok := readJSON(path, "Configuration file", resp)
	if !ok {
		return nil, false
	}
	root, isObject := doc.(map[string]any)
	if !isObject {
		resp.AddError("Configuration file \"%s\" must contain a JSON object.", path)
		return nil, false
	}
	return TranslatableKeys(root), true
}

// TranslatableKeys lists the texts of an app configuration that need a
// translation: property titles and placeholders, oneOf descriptions of
// properties and their items, and fieldset titles. Properties are visited
// by name; duplicates are reported once.
func TranslatableKeys(configuration map[string]any) []string {
	var keys []string
	seen := make(map[string]struct{})
	add := func(v any) {
		s, ok := v.(string)
		if !ok || s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		keys = append(keys, s)
	}
	addOneOf := func(node map[string]any) {
		options, _ := node["oneOf"].([]any)
		for _, o := range options {
			if opt, ok := o.(map[string]any); ok {
				add(opt["description"])
			}
		}
	}

	properties, _ := configuration["properties"].(map[string]any)
	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		prop, ok := properties[name].(map[string]any)
		if !ok {
			continue
		}
		add(prop["title"])
		add(prop["placeholder"])
		addOneOf(prop)
		if items, ok := prop["items"].(map[string]any); ok {
			addOneOf(items)
		}
	}

	fieldsets, _ := configuration["fieldsets"].([]any)
	for _, f := range fieldsets {
		if fs, ok := f.(map[string]any); ok {
			add(fs["title"])
		}
	}
	return keys
}

func readJSON(path, label string, resp *response.Response) (any, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			resp.AddError("%s \"%s\" does not exist.", label, path)
		} else {
			resp.AddError("%s \"%s\" could not be read: %v", label, path, err)
		}
		return nil, false
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		resp.AddError("%s \"%s\" contains invalid JSON: %s", label, path, jsonErrorText(err))
		return nil, false
	}
	return doc, true
}

func jsonErrorText(err error) string {
	var syntax *json.SyntaxError
	if errors.As(err, &syntax) {
		return fmt.Sprintf("%v (offset %d)", syntax, syntax.Offset)
	}
	return err.Error()
}
