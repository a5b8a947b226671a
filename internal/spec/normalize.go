package spec

import (
	"context"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// BuildOption configures which operations BuildOperations returns.
type BuildOption func(*buildConfig)

type buildConfig struct {
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
	methods     map[HttpMethod]struct{}
}

// WithIncludeTags keeps only operations that have at least one of the given tags.
func WithIncludeTags(tags []string) BuildOption {
	return func(c *buildConfig) {
		if len(tags) == 0 {
			return
		}
		if c.includeTags == nil {
			c.includeTags = make(map[string]struct{}, len(tags))
		}
		for _, t := range tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			c.includeTags[t] = struct{}{}
		}
	}
}

// WithExcludeTags removes operations that have any of the given tags.
func WithExcludeTags(tags []string) BuildOption {
	return func(c *buildConfig) {
		if len(tags) == 0 {
			return
		}
		if c.excludeTags == nil {
			c.excludeTags = make(map[string]struct{}, len(tags))
		}
		for _, t := range tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			c.excludeTags[t] = struct{}{}
		}
	}
}

// WithMethods keeps only operations using one of the provided HTTP methods.
func WithMethods(methods []HttpMethod) BuildOption {
	return func(c *buildConfig) {
		if len(methods) == 0 {
			return
		}
		if c.methods == nil {
			c.methods = make(map[HttpMethod]struct{}, len(methods))
		}
		for _, m := range methods {
			c.methods[m] = struct{}{}
		}
	}
}

// BuildOperations walks the document's paths and operations in declaration
// order and converts request and response schemas into SchemaNode trees.
// A cancelled context stops the walk between paths.
func BuildOperations(ctx context.Context, doc *OpenAPIDocument, opts ...BuildOption) ([]Operation, error) {
	if doc == nil || doc.T == nil {
		return nil, fmt.Errorf("nil document")
	}

	cfg := &buildConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	idx := doc.index

	paths := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		paths = append(paths, p)
	}
	paths = idx.ordered("#/paths", paths)

	var ops []Operation
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := doc.Paths[p]
		if item == nil {
			continue
		}
		pathPtr := "#/paths/" + escapePointer(p)

		byMethod := make(map[string]*openapi3.Operation)
		methods := make([]string, 0, 8)
		for m, o := range item.Operations() {
			lm := strings.ToLower(m)
			byMethod[lm] = o
			methods = append(methods, lm)
		}
		methods = idx.ordered(pathPtr, methods)

		for _, m := range methods {
			o := byMethod[m]
			if o == nil {
				continue
			}
			method := HttpMethod(m)
			if len(cfg.methods) > 0 {
				if _, ok := cfg.methods[method]; !ok {
					continue
				}
			}

			tags := make([]string, 0, len(o.Tags))
			for _, t := range o.Tags {
				t = strings.TrimSpace(t)
				if t != "" {
					tags = append(tags, t)
				}
			}
			if !allowByTags(tags, cfg) {
				continue
			}

			opPtr := pathPtr + "/" + m
			conv := &schemaConverter{index: idx}
			op := Operation{
				Path:        p,
				Method:      method,
				OperationID: strings.TrimSpace(o.OperationID),
				Tags:        tags,
			}

			if o.RequestBody != nil && o.RequestBody.Value != nil {
				bodyPtr := opPtr + "/requestBody"
				if lp := localPointer(o.RequestBody.Ref); lp != "" {
					bodyPtr = lp
				}
				op.Requests = conv.content(o.RequestBody.Value.Content, bodyPtr)
			}

			codes := make([]string, 0, len(o.Responses))
			for code := range o.Responses {
				codes = append(codes, code)
			}
			codes = idx.ordered(opPtr+"/responses", codes)
			for _, code := range codes {
				rref := o.Responses[code]
				if rref == nil || rref.Value == nil {
					continue
				}
				respPtr := opPtr + "/responses/" + escapePointer(code)
				if lp := localPointer(rref.Ref); lp != "" {
					respPtr = lp
				}
				op.Responses = append(op.Responses, conv.content(rref.Value.Content, respPtr)...)
			}

			ops = append(ops, op)
		}
	}

	return ops, nil
}

func allowByTags(tags []string, cfg *buildConfig) bool {
	if len(cfg.includeTags) > 0 {
		ok := false
		for _, t := range tags {
			if _, yes := cfg.includeTags[t]; yes {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, t := range tags {
		if _, blocked := cfg.excludeTags[t]; blocked {
			return false
		}
	}
	return true
}

// schemaConverter turns kin-openapi schemas into SchemaNode trees. The
// pointer of every schema is tracked so properties keep declaration order.
type schemaConverter struct {
	index    *nodeIndex
	visiting map[string]bool
}

func (c *schemaConverter) content(content openapi3.Content, ownerPtr string) []*SchemaNode {
	if len(content) == 0 {
		return nil
	}
	mimes := make([]string, 0, len(content))
	for mime := range content {
		mimes = append(mimes, mime)
	}
	mimes = c.index.ordered(ownerPtr+"/content", mimes)

	out := make([]*SchemaNode, 0, len(mimes))
	for _, mime := range mimes {
		mt := content[mime]
		if mt == nil || mt.Schema == nil {
			continue
		}
		if n := c.schema(mt.Schema, ownerPtr+"/content/"+escapePointer(mime)+"/schema"); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (c *schemaConverter) schema(ref *openapi3.SchemaRef, ptr string) *SchemaNode {
	if ref == nil {
		return nil
	}
	if ref.Ref != "" {
		name := lastSegment(ref.Ref)
		if c.visiting[ref.Ref] || ref.Value == nil {
			return &SchemaNode{Kind: KindReference, Name: name}
		}
		if c.visiting == nil {
			c.visiting = make(map[string]bool)
		}
		c.visiting[ref.Ref] = true
		defer delete(c.visiting, ref.Ref)
		// Properties of schemas in other files have no known order.
		ptr = localPointer(ref.Ref)
		n := c.value(ref.Value, ptr)
		n.Name = name
		return n
	}
	if ref.Value == nil {
		return nil
	}
	n := c.value(ref.Value, ptr)
	n.Name = lastSegment(ptr)
	return n
}

func (c *schemaConverter) value(s *openapi3.Schema, ptr string) *SchemaNode {
	n := &SchemaNode{Type: strings.TrimSpace(s.Type)}

	if len(s.Properties) > 0 {
		names := make([]string, 0, len(s.Properties))
		for name := range s.Properties {
			names = append(names, name)
		}
		names = c.index.ordered(ptr+"/properties", names)
		for _, name := range names {
			child := c.schema(s.Properties[name], ptr+"/properties/"+escapePointer(name))
			if child == nil {
				continue
			}
			n.Properties = append(n.Properties, Property{Name: name, Schema: child})
		}
	}
	if s.Items != nil {
		n.Items = c.schema(s.Items, ptr+"/items")
	}

	n.Kind = kindOf(n.Type, len(n.Properties) > 0)
	if n.Kind != KindArray {
		n.Items = nil
	}
	return n
}
