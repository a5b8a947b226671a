package builder

import (
	"strings"

	"github.com/spryker-sdk/app-sdk/internal/spec"
)

const arrayPrefix = "array[]:"

// PropertyMap is an insertion ordered property name to type mapping. Setting
// an existing name replaces its type in place.
type PropertyMap struct {
	names []string
	types map[string]string
}

func NewPropertyMap() *PropertyMap {
	return &PropertyMap{types: make(map[string]string)}
}

func (m *PropertyMap) Set(name, typ string) {
	if _, ok := m.types[name]; !ok {
		m.names = append(m.names, name)
	}
	m.types[name] = typ
}

func (m *PropertyMap) Get(name string) (string, bool) {
	t, ok := m.types[name]
	return t, ok
}

func (m *PropertyMap) Len() int { return len(m.names) }

func (m *PropertyMap) Names() []string {
	return append([]string(nil), m.names...)
}

// Pairs renders each entry as "name:type" in insertion order.
func (m *PropertyMap) Pairs() []string {
	out := make([]string, 0, len(m.names))
	for _, n := range m.names {
		out = append(out, n+":"+m.types[n])
	}
	return out
}

// String joins Pairs with commas, the format spryk-run expects for
// --propertyName.
func (m *PropertyMap) String() string {
	return strings.Join(m.Pairs(), ",")
}

// Object rebuilds an already flat object node named name from the map.
func (m *PropertyMap) Object(name string) *spec.SchemaNode {
	n := &spec.SchemaNode{Kind: spec.KindObject, Name: name, Type: "object"}
	for _, p := range m.names {
		n.Properties = append(n.Properties, spec.Property{
			Name:   p,
			Schema: &spec.SchemaNode{Kind: spec.KindScalar, Name: p, Type: m.types[p]},
		})
	}
	return n
}

// Flatten maps the properties of an object schema to type descriptors.
//
// When a property is itself an object with properties, the first such
// property is flattened instead and its siblings are dropped. Arrays
// become "array[]:<item type>", or "<Item>[]:<item>" keyed by the camelized
// parent name when the items are a named object. A root array flattens its
// items. A property that refers back to an enclosing schema takes the
// referenced schema name as its type.
func Flatten(node *spec.SchemaNode) *PropertyMap {
	out := NewPropertyMap()
	if node == nil {
		return out
	}
	if node.Kind == spec.KindArray {
		if node.Items == nil {
			return out
		}
		return Flatten(node.Items)
	}

	for _, p := range node.Properties {
		if p.Schema.HasProperties() {
			return Flatten(p.Schema)
		}
	}

	for _, p := range node.Properties {
		s := p.Schema
		switch s.Kind {
		case spec.KindReference:
			// Unexpanded $ref, usually a cycle back to an enclosing schema.
			out.Set(p.Name, s.Name)
			continue
		case spec.KindArray:
		default:
			out.Set(p.Name, s.Type)
			continue
		}
		items := s.Items
		switch {
		case items == nil:
			out.Set(p.Name, "array")
		case items.Property("type") != nil:
			out.Set(p.Name, arrayPrefix+items.Property("type").Type)
		case items.Kind == spec.KindScalar && items.Type != "":
			out.Set(p.Name, arrayPrefix+items.Type)
		default:
			out.Set(Camelize(node.Name), items.Name+"[]:"+Camelize(items.Name))
		}
	}
	return out
}
