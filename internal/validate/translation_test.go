package validate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spryker-sdk/app-sdk/internal/response"
)

const configurationJSON = `{
  "properties": {
    "clientId": {"type": "string", "title": "client_id_title", "placeholder": "client_id_placeholder"},
    "mode": {"type": "string", "oneOf": [{"const": "live", "description": "mode_live"}, {"const": "test", "description": "mode_test"}]},
    "methods": {"type": "array", "items": {"oneOf": [{"const": "card", "description": "method_card"}]}}
  },
  "fieldsets": [{"id": "credentials", "title": "fieldset_credentials", "fields": ["clientId"]}]
}`

type fixture struct {
	root string
	req  TranslationRequest
}

func newFixture(t *testing.T, translation string) fixture {
	t.Helper()
	root := t.TempDir()
	manifest := filepath.Join(root, "manifest")
	require.NoError(t, os.MkdirAll(manifest, 0o755))
	write := func(path, content string) {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write(filepath.Join(manifest, "en_US.json"), `{"name": "Payment"}`)
	write(filepath.Join(manifest, "de_DE.json"), `{"name": "Zahlung"}`)
	write(filepath.Join(manifest, "README.md"), "not a manifest")
	write(filepath.Join(root, "configuration.json"), configurationJSON)
	write(filepath.Join(root, "translation.json"), translation)
	return fixture{root: root, req: TranslationRequest{
		TranslationFile:   filepath.Join(root, "translation.json"),
		ManifestPath:      manifest,
		ConfigurationFile: filepath.Join(root, "configuration.json"),
	}}
}

func completeTranslation() string {
	var b strings.Builder
	b.WriteString("{")
	for i, key := range []string{"client_id_title", "client_id_placeholder", "mode_live", "mode_test", "method_card", "fieldset_credentials"} {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`"` + key + `": {"en_US": "x", "de_DE": "y"}`)
	}
	b.WriteString("}")
	return b.String()
}

func errorTexts(r *response.Response) []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Text)
	}
	return out
}

func TestTranslation_Valid(t *testing.T) {
	t.Parallel()
	f := newFixture(t, completeTranslation())
	resp := New(nil).Translation(context.Background(), f.req)
	require.False(t, resp.HasErrors(), "errors: %v", errorTexts(resp))
	require.Len(t, resp.Messages, 1)
	assert.Contains(t, resp.Messages[0].Text, "is valid")
}

func TestTranslation_CancelledContext(t *testing.T) {
	t.Parallel()
	f := newFixture(t, completeTranslation())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp := New(nil).Translation(ctx, f.req)
	assert.Equal(t, []string{context.Canceled.Error()}, errorTexts(resp))
	assert.Empty(t, resp.Messages)
}

func TestTranslation_MissingKeysAndLocales(t *testing.T) {
	t.Parallel()
	f := newFixture(t, `{
  "client_id_title": {"en_US": "Client ID"},
  "client_id_placeholder": {"en_US": "x", "de_DE": "y"},
  "mode_live": {"en_US": "x", "de_DE": "y"},
  "mode_test": {"en_US": "x", "de_DE": "y"},
  "fieldset_credentials": {"en_US": "x", "de_DE": "y"}
}`)
	resp := New(nil).Translation(context.Background(), f.req)
	errs := errorTexts(resp)
	require.Len(t, errs, 2, "errors: %v", errs)
	assert.Contains(t, errs[0], `"client_id_title" and locale "de_DE"`)
	assert.Contains(t, errs[1], `"method_card" is missing`)
}

func TestTranslation_InvalidStructure(t *testing.T) {
	t.Parallel()
	f := newFixture(t, `{"client_id_title": "not an object", "mode_live": {"en_US": 3}}`)
	resp := New(nil).Translation(context.Background(), f.req)
	errs := errorTexts(resp)
	require.Len(t, errs, 2, "errors: %v", errs)
	assert.Contains(t, errs[0], "/client_id_title")
	assert.Contains(t, errs[1], "/mode_live/en_US")
}

func TestTranslation_FileErrors(t *testing.T) {
	t.Parallel()

	f := newFixture(t, `{"broken": `)
	resp := New(nil).Translation(context.Background(), f.req)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Text, "contains invalid JSON")

	f = newFixture(t, completeTranslation())
	f.req.TranslationFile = filepath.Join(f.root, "missing.json")
	resp = New(nil).Translation(context.Background(), f.req)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Text, "does not exist")

	f = newFixture(t, completeTranslation())
	f.req.ManifestPath = filepath.Join(f.root, "nope")
	resp = New(nil).Translation(context.Background(), f.req)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Text, "Manifest path")

	f = newFixture(t, completeTranslation())
	require.NoError(t, os.WriteFile(filepath.Join(f.req.ManifestPath, "fr_FR.json"), []byte("[1"), 0o644))
	resp = New(nil).Translation(context.Background(), f.req)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Text, "fr_FR.json")

	f = newFixture(t, completeTranslation())
	require.NoError(t, os.WriteFile(f.req.ConfigurationFile, []byte(`[]`), 0o644))
	resp = New(nil).Translation(context.Background(), f.req)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Text, "must contain a JSON object")
}

func TestTranslation_EmptyManifestDirectory(t *testing.T) {
	t.Parallel()
	f := newFixture(t, completeTranslation())
	require.NoError(t, os.Remove(filepath.Join(f.req.ManifestPath, "en_US.json")))
	require.NoError(t, os.Remove(filepath.Join(f.req.ManifestPath, "de_DE.json")))
	resp := New(nil).Translation(context.Background(), f.req)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Text, "No manifest files")
}

func TestTranslatableKeys(t *testing.T) {
	t.Parallel()
	cfg := map[string]any{
		"properties": map[string]any{
			"b": map[string]any{"title": "shared"},
			"a": map[string]any{"title": "a_title", "placeholder": "shared"},
			"c": "not an object",
		},
		"fieldsets": []any{map[string]any{"title": "fs"}, "skip"},
	}
	assert.Equal(t, []string{"a_title", "shared", "fs"}, TranslatableKeys(cfg))
}
