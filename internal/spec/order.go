package spec

import (
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// nodeIndex maps JSON pointers of a yaml document to their nodes. It restores
// the declaration order that map based models lose and provides line
// numbers for error reporting.
type nodeIndex struct {
	nodes map[string]*yaml.Node
}

func newNodeIndex(doc *yaml.Node) *nodeIndex {
	idx := &nodeIndex{nodes: make(map[string]*yaml.Node)}
	root := doc
	if root != nil && root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root != nil {
		idx.walk("#", root)
	}
	return idx
}

func (idx *nodeIndex) walk(ptr string, n *yaml.Node) {
	idx.nodes[ptr] = n
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			idx.walk(ptr+"/"+escapePointer(n.Content[i].Value), n.Content[i+1])
		}
	case yaml.SequenceNode:
		for i, c := range n.Content {
			idx.walk(ptr+"/"+strconv.Itoa(i), c)
		}
	case yaml.AliasNode:
		if n.Alias != nil {
			idx.walk(ptr, n.Alias)
		}
	}
}

// keys returns the mapping keys at ptr in declaration order.
func (idx *nodeIndex) keys(ptr string) []string {
	if idx == nil {
		return nil
	}
	n, ok := idx.nodes[ptr]
	if !ok || n.Kind != yaml.MappingNode {
		return nil
	}
	out := make([]string, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out = append(out, n.Content[i].Value)
	}
	return out
}

// line returns the line and column of the node at ptr, or zeros.
func (idx *nodeIndex) line(ptr string) (int, int) {
	if idx == nil {
		return 0, 0
	}
	if n, ok := idx.nodes[ptr]; ok {
		return n.Line, n.Column
	}
	return 0, 0
}

// ordered sorts present by the declaration order recorded at ptr. Keys the
// index does not know follow in lexical order.
func (idx *nodeIndex) ordered(ptr string, present []string) []string {
	declared := idx.keys(ptr)
	want := make(map[string]struct{}, len(present))
	for _, k := range present {
		want[k] = struct{}{}
	}
	out := make([]string, 0, len(present))
	for _, k := range declared {
		if _, ok := want[k]; ok {
			out = append(out, k)
			delete(want, k)
		}
	}
	rest := make([]string, 0, len(want))
	for k := range want {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(out, rest...)
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")
var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

func escapePointer(s string) string { return pointerEscaper.Replace(s) }

func unescapePointer(s string) string { return pointerUnescaper.Replace(s) }

// lastSegment returns the unescaped final token of a JSON pointer or $ref.
func lastSegment(ptr string) string {
	if i := strings.LastIndex(ptr, "/"); i >= 0 {
		return unescapePointer(ptr[i+1:])
	}
	return unescapePointer(strings.TrimPrefix(ptr, "#"))
}

// localPointer returns the in-document pointer of a $ref, or "" for refs into
// other files.
func localPointer(ref string) string {
	if strings.HasPrefix(ref, "#") {
		return ref
	}
	return ""
}
