package spec

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const customerAsyncAPI = `asyncapi: 2.2.0
info:
  title: Customer events
  version: 0.1.0
channels:
  customer-events:
    publish:
      message:
        $ref: '#/components/messages/CustomerCreated'
    subscribe:
      message:
        oneOf:
          - $ref: '#/components/messages/CustomerCreated'
          - $ref: '#/components/messages/CustomerDeleted'
components:
  messages:
    CustomerCreated:
      name: CustomerCreated
      operationId: CustomerApi
      payload:
        $ref: '#/components/schemas/CustomerCreated'
    CustomerDeleted:
      operationId: CustomerApi
      payload:
        type: object
        properties:
          id:
            type: integer
          parent:
            $ref: '#/components/schemas/Node'
  schemas:
    CustomerCreated:
      type: object
      properties:
        email:
          type: string
        firstName:
          type: string
    Node:
      type: object
      properties:
        child:
          $ref: '#/components/schemas/Node'
`

func TestLoadAsyncAPI_Channels(t *testing.T) {
	t.Parallel()
	doc, err := LoadAsyncAPI(writeFile(t, "asyncapi.yml", customerAsyncAPI))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Version != "2.2.0" {
		t.Errorf("version: got %q", doc.Version)
	}
	if len(doc.Channels) != 1 {
		t.Fatalf("channels: got %d", len(doc.Channels))
	}
	ch := doc.Channels[0]
	if ch.Name != "customer-events" || len(ch.Publish) != 1 || len(ch.Subscribe) != 2 {
		t.Fatalf("channel: %+v", ch)
	}
	if doc.MessageCount() != 3 {
		t.Fatalf("message count: got %d", doc.MessageCount())
	}

	created := ch.Publish[0]
	if created.Name != "CustomerCreated" || created.OperationID != "CustomerApi" {
		t.Fatalf("created: %+v", created)
	}
	var props []string
	for _, p := range created.Payload.Properties {
		props = append(props, p.Name+":"+p.Schema.Type)
	}
	if diff := cmp.Diff([]string{"email:string", "firstName:string"}, props); diff != "" {
		t.Fatalf("payload (-want +got):\n%s", diff)
	}
	if created.Payload.Name != "CustomerCreated" {
		t.Errorf("payload name: got %q", created.Payload.Name)
	}

	deleted := ch.Subscribe[1]
	if deleted.Name != "CustomerDeleted" {
		t.Fatalf("name derived from component key: got %q", deleted.Name)
	}
	child := deleted.Payload.Property("parent").Property("child")
	if child == nil || child.Kind != KindReference || child.Name != "Node" {
		t.Fatalf("expected cyclic reference to Node, got %+v", child)
	}
}

func TestLoadAsyncAPI_MissingOperationID(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "asyncapi.yml", `asyncapi: 2.2.0
channels:
  orders:
    publish:
      message:
        name: OrderPlaced
        payload:
          type: object
`)
	_, err := LoadAsyncAPI(path)
	var se *SpecLoadError
	if !errors.As(err, &se) {
		t.Fatalf("expected SpecLoadError, got %T: %v", err, err)
	}
	if se.Code != ValidationError || se.Line != 6 {
		t.Fatalf("expected validation error at line 6, got %+v", se)
	}
	if se.File != path && filepath.Base(se.File) != filepath.Base(path) {
		t.Fatalf("file: got %q", se.File)
	}
}

func TestLoadAsyncAPI_OperationLevelOperationID(t *testing.T) {
	t.Parallel()
	doc, err := LoadAsyncAPI(writeFile(t, "asyncapi.yml", `asyncapi: 2.2.0
channels:
  orders:
    subscribe:
      operationId: SalesApi
      message:
        name: OrderPlaced
        payload:
          type: object
          properties:
            reference:
              type: string
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := doc.Channels[0].Subscribe[0].OperationID; got != "SalesApi" {
		t.Fatalf("operationId: got %q", got)
	}
}

func TestLoadAsyncAPI_RepeatedMessageNames(t *testing.T) {
	t.Parallel()
	doc, err := LoadAsyncAPI(writeFile(t, "asyncapi.yml", `asyncapi: 2.2.0
channels:
  a:
    publish:
      message:
        name: Same
        operationId: FooApi
  b:
    subscribe:
      message:
        name: Same
        operationId: BarApi
`))
	if err != nil {
		t.Fatalf("LoadAsyncAPI: %v", err)
	}
	if len(doc.Channels) != 2 {
		t.Fatalf("channels = %d, want 2", len(doc.Channels))
	}
	if got := doc.Channels[0].Publish[0].Name; got != "Same" {
		t.Fatalf("publish message = %q", got)
	}
	if got := doc.Channels[1].Subscribe[0].Name; got != "Same" {
		t.Fatalf("subscribe message = %q", got)
	}
}

func TestLoadAsyncAPI_SyntaxError(t *testing.T) {
	t.Parallel()
	_, err := LoadAsyncAPI(writeFile(t, "asyncapi.yml", "asyncapi: 2.2.0\nchannels:\n  a: {\n"))
	var se *SpecLoadError
	if !errors.As(err, &se) || se.Code != ParseError {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestLoadAsyncAPI_UnsupportedVersionAndRefs(t *testing.T) {
	t.Parallel()
	_, err := LoadAsyncAPI(writeFile(t, "asyncapi.yml", "asyncapi: 3.0.0\n"))
	var se *SpecLoadError
	if !errors.As(err, &se) || se.JSONPointer != "#/asyncapi" {
		t.Fatalf("expected version error, got %v", err)
	}

	_, err = LoadAsyncAPI(writeFile(t, "asyncapi.yml", `asyncapi: 2.2.0
channels:
  a:
    publish:
      message:
        $ref: 'other.yml#/components/messages/X'
`))
	if !errors.As(err, &se) || se.Code != ValidationError {
		t.Fatalf("expected external ref error, got %v", err)
	}
}

func TestLoadAsyncAPI_NoChannels(t *testing.T) {
	t.Parallel()
	doc, err := LoadAsyncAPI(writeFile(t, "asyncapi.yml", "asyncapi: 2.2.0\ninfo:\n  title: empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(doc.Channels) != 0 || doc.MessageCount() != 0 {
		t.Fatalf("expected empty document, got %+v", doc)
	}
}
