package spec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadAsyncAPI reads an AsyncAPI 2.x document and resolves the messages of
// every channel. Every message must carry an operationId, which names the
// module code is generated into.
func LoadAsyncAPI(path string) (*AsyncAPIDocument, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &SpecLoadError{Code: InputError, Message: "asyncapi file path is empty"}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &SpecLoadError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), File: path, Cause: err}
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, &SpecLoadError{Code: InputError, Message: fmt.Sprintf("read file: %v", err), File: abs, Cause: err}
	}
	return parseAsyncAPI(raw, abs)
}

func parseAsyncAPI(raw []byte, file string) (*AsyncAPIDocument, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, yamlParseError(err, file)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, &SpecLoadError{Code: ParseError, Message: "document root must be a mapping", File: file, Line: 1}
	}

	p := &asyncParser{file: file, root: doc.Content[0]}

	version := mappingValue(p.root, "asyncapi")
	if version == nil {
		return nil, &SpecLoadError{Code: ValidationError, Message: "missing 'asyncapi' version field (expected 'asyncapi: 2.x')", File: file, Line: 1}
	}
	if !strings.HasPrefix(strings.TrimSpace(version.Value), "2.") {
		return nil, p.errorAt(version, "#/asyncapi", fmt.Sprintf("unsupported asyncapi version %q (expected 2.x)", version.Value))
	}

	out := &AsyncAPIDocument{File: file, Version: strings.TrimSpace(version.Value)}

	channels := mappingValue(p.root, "channels")
	if channels == nil {
		return out, nil
	}
	if channels.Kind != yaml.MappingNode {
		return nil, p.errorAt(channels, "#/channels", "channels must be a mapping")
	}

	for i := 0; i+1 < len(channels.Content); i += 2 {
		name := channels.Content[i].Value
		ptr := "#/channels/" + escapePointer(name)
		node, ptr, err := p.deref(channels.Content[i+1], ptr)
		if err != nil {
			return nil, err
		}
		ch := Channel{Name: name}
		if ch.Publish, err = p.operationMessages(node, ptr, "publish", name); err != nil {
			return nil, err
		}
		if ch.Subscribe, err = p.operationMessages(node, ptr, "subscribe", name); err != nil {
			return nil, err
		}
		out.Channels = append(out.Channels, ch)
	}

	return out, nil
}

type asyncParser struct {
	file string
	root *yaml.Node
}

func (p *asyncParser) errorAt(n *yaml.Node, ptr, msg string) *SpecLoadError {
	se := &SpecLoadError{Code: ValidationError, Message: msg, File: p.file, JSONPointer: ptr}
	if n != nil {
		se.Line, se.Column = n.Line, n.Column
	}
	return se
}

func (p *asyncParser) operationMessages(channel *yaml.Node, channelPtr, kind, channelName string) ([]Message, error) {
	op := mappingValue(channel, kind)
	if op == nil {
		return nil, nil
	}
	opPtr := channelPtr + "/" + kind
	op, opPtr, err := p.deref(op, opPtr)
	if err != nil {
		return nil, err
	}
	msgNode := mappingValue(op, "message")
	if msgNode == nil {
		return nil, nil
	}
	msgPtr := opPtr + "/message"
	msgNode, msgPtr, err = p.deref(msgNode, msgPtr)
	if err != nil {
		return nil, err
	}

	type candidate struct {
		node *yaml.Node
		ptr  string
	}
	var candidates []candidate
	if oneOf := mappingValue(msgNode, "oneOf"); oneOf != nil {
		if oneOf.Kind != yaml.SequenceNode {
			return nil, p.errorAt(oneOf, msgPtr+"/oneOf", "message oneOf must be a list")
		}
		for i, c := range oneOf.Content {
			n, ptr, err := p.deref(c, fmt.Sprintf("%s/oneOf/%d", msgPtr, i))
			if err != nil {
				return nil, err
			}
			candidates = append(candidates, candidate{node: n, ptr: ptr})
		}
	} else {
		candidates = append(candidates, candidate{node: msgNode, ptr: msgPtr})
	}

	opID := scalarValue(op, "operationId")
	messages := make([]Message, 0, len(candidates))
	for _, c := range candidates {
		m, err := p.message(c.node, c.ptr, opID, channelName)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, nil
}

func (p *asyncParser) message(n *yaml.Node, ptr, fallbackOpID, channelName string) (Message, error) {
	name := scalarValue(n, "name")
	if name == "" {
		name = scalarValue(n, "messageId")
	}
	if name == "" && strings.HasPrefix(ptr, "#/components/messages/") {
		name = lastSegment(ptr)
	}
	if name == "" {
		return Message{}, p.errorAt(n, ptr, fmt.Sprintf("message in channel %q has no name", channelName))
	}

	opID := scalarValue(n, "operationId")
	if opID == "" {
		opID = fallbackOpID
	}
	if opID == "" {
		return Message{}, p.errorAt(n, ptr, fmt.Sprintf("message %q in channel %q has no operationId", name, channelName))
	}

	m := Message{Name: name, OperationID: opID, Line: n.Line}
	payload := mappingValue(n, "payload")
	if payload == nil {
		m.Payload = &SchemaNode{Kind: KindObject, Name: "payload"}
		return m, nil
	}
	node, err := p.schema(payload, ptr+"/payload", map[string]bool{})
	if err != nil {
		return Message{}, err
	}
	m.Payload = node
	return m, nil
}

func (p *asyncParser) schema(n *yaml.Node, ptr string, visiting map[string]bool) (*SchemaNode, error) {
	if ref := scalarValue(n, "$ref"); ref != "" {
		name := lastSegment(ref)
		if visiting[ref] {
			return &SchemaNode{Kind: KindReference, Name: name}, nil
		}
		target, targetPtr, err := p.deref(n, ptr)
		if err != nil {
			return nil, err
		}
		visiting[ref] = true
		defer delete(visiting, ref)
		node, err := p.schema(target, targetPtr, visiting)
		if err != nil {
			return nil, err
		}
		node.Name = name
		return node, nil
	}

	node := &SchemaNode{Name: lastSegment(ptr), Type: scalarValue(n, "type")}
	if props := mappingValue(n, "properties"); props != nil && props.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(props.Content); i += 2 {
			key := props.Content[i].Value
			child, err := p.schema(props.Content[i+1], ptr+"/properties/"+escapePointer(key), visiting)
			if err != nil {
				return nil, err
			}
			node.Properties = append(node.Properties, Property{Name: key, Schema: child})
		}
	}
	node.Kind = kindOf(node.Type, len(node.Properties) > 0)
	if node.Kind == KindArray {
		if items := mappingValue(n, "items"); items != nil {
			child, err := p.schema(items, ptr+"/items", visiting)
			if err != nil {
				return nil, err
			}
			node.Items = child
		}
	}
	return node, nil
}

// deref follows a local $ref on n, returning the target and its pointer. Nodes
// without $ref are returned unchanged.
func (p *asyncParser) deref(n *yaml.Node, ptr string) (*yaml.Node, string, error) {
	seen := map[string]bool{}
	for {
		ref := scalarValue(n, "$ref")
		if ref == "" {
			return n, ptr, nil
		}
		local := localPointer(ref)
		if local == "" {
			return nil, "", p.errorAt(n, ptr, fmt.Sprintf("external reference %q is not supported", ref))
		}
		if seen[local] {
			return nil, "", p.errorAt(n, ptr, fmt.Sprintf("reference cycle at %q", ref))
		}
		seen[local] = true
		target := resolvePointer(p.root, local)
		if target == nil {
			return nil, "", p.errorAt(n, ptr, fmt.Sprintf("unresolved reference %q", ref))
		}
		n, ptr = target, local
	}
}

func resolvePointer(root *yaml.Node, ptr string) *yaml.Node {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	cur := root
	if ptr == "" {
		return cur
	}
	for _, tok := range strings.Split(ptr, "/") {
		tok = unescapePointer(tok)
		switch cur.Kind {
		case yaml.MappingNode:
			cur = mappingValue(cur, tok)
		case yaml.SequenceNode:
			var i int
			if _, err := fmt.Sscanf(tok, "%d", &i); err != nil || i < 0 || i >= len(cur.Content) {
				return nil
			}
			cur = cur.Content[i]
		default:
			return nil
		}
		if cur == nil {
			return nil
		}
	}
	return cur
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil {
		return nil
	}
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			v := n.Content[i+1]
			if v.Kind == yaml.AliasNode && v.Alias != nil {
				return v.Alias
			}
			return v
		}
	}
	return nil
}

func scalarValue(n *yaml.Node, key string) string {
	v := mappingValue(n, key)
	if v == nil || v.Kind != yaml.ScalarNode {
		return ""
	}
	return strings.TrimSpace(v.Value)
}
