package spec

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// OpenAPIDocument is a loaded and validated OpenAPI 3.x document together
// with the positional index of its source.
type OpenAPIDocument struct {
	*openapi3.T
	File  string
	index *nodeIndex
}

// LoadOpenAPI reads, validates, and returns an OpenAPI v3 document from a
// local file. External $refs are resolved relative to the file.
func LoadOpenAPI(ctx context.Context, path string) (*OpenAPIDocument, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &SpecLoadError{Code: InputError, Message: "openapi file path is empty"}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &SpecLoadError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), File: path, Cause: err}
	}

	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, &SpecLoadError{Code: InputError, Message: fmt.Sprintf("read file: %v", err), File: abs, Cause: err}
	}

	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, yamlParseError(err, abs)
	}
	idx := newNodeIndex(&root)

	if err := checkOpenAPIVersion(idx, abs); err != nil {
		return nil, err
	}

	// Loading from the path lets relative external refs resolve.
	doc, err := newLoader().LoadFromFile(abs)
	if err != nil {
		return nil, mapValidateOrParseErr(err, abs, idx)
	}
	if err := doc.Validate(ctx); err != nil {
		if !canProceedDespiteValidation(err) {
			return nil, mapValidateOrParseErr(err, abs, idx)
		}
		// proceed in permissive mode
	}

	return &OpenAPIDocument{T: doc, File: abs, index: idx}, nil
}

func checkOpenAPIVersion(idx *nodeIndex, file string) error {
	n, ok := idx.nodes["#/openapi"]
	if !ok {
		if sw, ok := idx.nodes["#/swagger"]; ok {
			return &SpecLoadError{
				Code:    ValidationError,
				Message: fmt.Sprintf("swagger %s documents are not supported; convert the document to OpenAPI 3.x", sw.Value),
				File:    file, Line: sw.Line, Column: sw.Column, JSONPointer: "#/swagger",
			}
		}
		return &SpecLoadError{Code: ValidationError, Message: "missing 'openapi' version field (expected 'openapi: 3.x')", File: file, Line: 1}
	}
	if !strings.HasPrefix(strings.TrimSpace(n.Value), "3.") {
		return &SpecLoadError{
			Code:    ValidationError,
			Message: fmt.Sprintf("unsupported openapi version %q (expected 3.x)", n.Value),
			File:    file, Line: n.Line, Column: n.Column, JSONPointer: "#/openapi",
		}
	}
	return nil
}

func newLoader() *openapi3.Loader {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true
	loader.ReadFromURIFunc = func(l *openapi3.Loader, uri *url.URL) ([]byte, error) {
		switch strings.ToLower(uri.Scheme) {
		case "", "file":
			path := uri.Path
			if path == "" {
				path = uri.Opaque
			}
			return os.ReadFile(path)
		default:
			return nil, fmt.Errorf("unsupported ref scheme %q: only local files are allowed", uri.Scheme)
		}
	}
	return loader
}

func mapValidateOrParseErr(err error, file string, idx *nodeIndex) error {
	pointer := extractJSONPointer(err)
	code := ValidationError
	// Heuristics: some loader errors are parse errors.
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "parse") || strings.Contains(lower, "invalid character") || strings.Contains(lower, "unmarshal") {
		code = ParseError
	}
	se := &SpecLoadError{Code: code, Message: err.Error(), File: file, JSONPointer: pointer, Cause: err}
	if idx != nil && pointer != "" {
		se.Line, se.Column = idx.line(pointer)
	}
	return se
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'\"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	// Unwrap MultiError and take the first for brevity.
	var me openapi3.MultiError
	if errors.As(err, &me) && len(me) > 0 {
		return extractJSONPointer(me[0])
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
	}
	if m := jsonPtrRe.FindString(err.Error()); m != "" {
		return m
	}
	return ""
}

// canProceedDespiteValidation returns true for validation errors where a
// best-effort build can still proceed (e.g., unresolved $ref entries).
func canProceedDespiteValidation(err error) bool {
	if err == nil {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unresolved ref") || strings.Contains(s, "found unresolved ref")
}
