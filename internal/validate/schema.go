package validate

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const translationSchemaURL = "mem://app-sdk/translation.schema.json"

// A translation file maps every translation key to its locale texts:
// {"key": {"en_US": "text", "de_DE": "Text"}}.
const translationSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "additionalProperties": {"type": "string"}
  }
}`

const manifestSchemaURL = "mem://app-sdk/manifest.schema.json"

const manifestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object"
}`

var (
	translationSchemaOnce = sync.OnceValues(func() (*jsonschema.Schema, error) {
		return compileSchema(translationSchemaURL, translationSchema)
	})
	manifestSchemaOnce = sync.OnceValues(func() (*jsonschema.Schema, error) {
		return compileSchema(manifestSchemaURL, manifestSchema)
	})
)

func compileSchema(url, definition string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, strings.NewReader(definition)); err != nil {
		return nil, fmt.Errorf("register schema %s: %w", url, err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", url, err)
	}
	return compiled, nil
}

// schemaViolations flattens a validation error into one line per leaf cause,
// ordered by instance location.
func schemaViolations(err *jsonschema.ValidationError) []string {
	var leaves []*jsonschema.ValidationError
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			leaves = append(leaves, e)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(err)

	out := make([]string, 0, len(leaves))
	for _, l := range leaves {
		loc := l.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		out = append(out, fmt.Sprintf("%s: %s", loc, l.Message))
	}
	sort.Strings(out)
	return out
}
