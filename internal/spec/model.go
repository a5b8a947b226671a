package spec

import "strings"

// Kind tags the variant a SchemaNode holds.
type Kind int

const (
	KindScalar Kind = iota
	KindObject
	KindArray
	KindReference
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindReference:
		return "reference"
	default:
		return "scalar"
	}
}

// SchemaNode is one node of a document's type schema.
//
//   - KindObject: Properties in declaration order
//   - KindArray: Items (nil when the document omits items)
//   - KindScalar: Type holds the declared type name
//   - KindReference: a $ref that was not expanded (cyclic or unresolved)
//
// Name is the last segment of the node's position in the document, which is
// the component name for referenced schemas.
type SchemaNode struct {
	Kind       Kind
	Name       string
	Type       string
	Properties []Property
	Items      *SchemaNode
}

type Property struct {
	Name   string
	Schema *SchemaNode
}

// Property returns the named property or nil.
func (n *SchemaNode) Property(name string) *SchemaNode {
	if n == nil {
		return nil
	}
	for _, p := range n.Properties {
		if p.Name == name {
			return p.Schema
		}
	}
	return nil
}

// HasProperties reports whether the node is an object with at least one
// property.
func (n *SchemaNode) HasProperties() bool {
	return n != nil && len(n.Properties) > 0
}

func kindOf(typ string, hasProps bool) Kind {
	switch {
	case typ == "array":
		return KindArray
	case hasProps || typ == "object":
		return KindObject
	default:
		return KindScalar
	}
}

type HttpMethod string

const (
	GET     HttpMethod = "get"
	POST    HttpMethod = "post"
	PUT     HttpMethod = "put"
	DELETE  HttpMethod = "delete"
	PATCH   HttpMethod = "patch"
	HEAD    HttpMethod = "head"
	OPTIONS HttpMethod = "options"
	TRACE   HttpMethod = "trace"
)

var httpMethods = []HttpMethod{GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS, TRACE}

// ParseHttpMethod matches s case-insensitively against the known methods.
func ParseHttpMethod(s string) (HttpMethod, bool) {
	m := HttpMethod(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range httpMethods {
		if m == known {
			return m, true
		}
	}
	return "", false
}

// Operation is one path/method pair of an OpenAPI document with the schemas
// of its request bodies and responses.
type Operation struct {
	Path        string
	Method      HttpMethod
	OperationID string
	Tags        []string
	Requests    []*SchemaNode // one per request media type
	Responses   []*SchemaNode // one per response and media type
}

// AsyncAPIDocument is a loaded AsyncAPI 2.x document.
type AsyncAPIDocument struct {
	File     string
	Version  string
	Channels []Channel
}

type Channel struct {
	Name      string
	Publish   []Message
	Subscribe []Message
}

type Message struct {
	Name        string
	OperationID string
	Payload     *SchemaNode
	Line        int
}

// MessageCount returns the number of publish and subscribe messages.
func (d *AsyncAPIDocument) MessageCount() int {
	n := 0
	for _, c := range d.Channels {
		n += len(c.Publish) + len(c.Subscribe)
	}
	return n
}
