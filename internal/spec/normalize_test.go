package spec

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleSpec = `openapi: 3.0.0
info:
  title: Sample API
  version: "1.0.0"
paths:
  /pets:
    post:
      operationId: createPet
      tags: [write, animal]
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Pet'
      responses:
        "201":
          description: created
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Pet'
    get:
      operationId: listPets
      tags: [read, animal]
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: object
                properties:
                  total:
                    type: integer
                  items:
                    type: array
                    items:
                      $ref: '#/components/schemas/Pet'
  /admin:
    get:
      tags: [admin]
      responses:
        "200": { description: ok }
components:
  schemas:
    Pet:
      type: object
      required: [name, id]
      properties:
        name:
          type: string
        id:
          type: integer
          format: int64
        tags:
          type: array
          items:
            type: string
        owner:
          $ref: '#/components/schemas/Owner'
    Owner:
      type: object
      properties:
        zip:
          type: string
        city:
          type: string
`

func loadSample(t *testing.T) *OpenAPIDocument {
	t.Helper()
	doc, err := LoadOpenAPI(context.Background(), writeFile(t, "openapi.yml", sampleSpec))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return doc
}

func TestBuildOperations_DeclarationOrder(t *testing.T) {
	t.Parallel()
	ops, err := BuildOperations(context.Background(), loadSample(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var got []string
	for _, op := range ops {
		got = append(got, string(op.Method)+" "+op.Path)
	}
	want := []string{"post /pets", "get /pets", "get /admin"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("operations (-want +got):\n%s", diff)
	}
}

func TestBuildOperations_SchemaTree(t *testing.T) {
	t.Parallel()
	ops, err := BuildOperations(context.Background(), loadSample(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	post := ops[0]
	if post.OperationID != "createPet" {
		t.Fatalf("operationId: got %q", post.OperationID)
	}
	if len(post.Requests) != 1 || len(post.Responses) != 1 {
		t.Fatalf("expected one request and one response schema, got %d/%d", len(post.Requests), len(post.Responses))
	}

	pet := post.Requests[0]
	if pet.Name != "Pet" || pet.Kind != KindObject {
		t.Fatalf("pet: got name=%q kind=%v", pet.Name, pet.Kind)
	}
	var names []string
	for _, p := range pet.Properties {
		names = append(names, p.Name)
	}
	if diff := cmp.Diff([]string{"name", "id", "tags", "owner"}, names); diff != "" {
		t.Fatalf("property order (-want +got):\n%s", diff)
	}
	tags := pet.Property("tags")
	if tags.Kind != KindArray || tags.Items == nil || tags.Items.Type != "string" {
		t.Fatalf("tags: %+v", tags)
	}
	owner := pet.Property("owner")
	if owner.Name != "Owner" || !owner.HasProperties() {
		t.Fatalf("owner: %+v", owner)
	}
	if owner.Properties[0].Name != "zip" {
		t.Fatalf("owner property order: %+v", owner.Properties)
	}

	inline := ops[1].Responses[0]
	if inline.Name != "schema" {
		t.Fatalf("inline schema name: got %q", inline.Name)
	}
	if items := inline.Property("items"); items.Items == nil || items.Items.Name != "Pet" {
		t.Fatalf("inline items: %+v", items)
	}
}

func TestBuildOperations_TagFilters(t *testing.T) {
	t.Parallel()
	doc := loadSample(t)

	ops, err := BuildOperations(context.Background(), doc, WithIncludeTags([]string{"animal"}), WithExcludeTags([]string{"write"}))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(ops) != 1 || ops[0].OperationID != "listPets" {
		t.Fatalf("expected only listPets, got %+v", ops)
	}

	ops, err = BuildOperations(context.Background(), doc, WithMethods([]HttpMethod{POST}))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(ops) != 1 || ops[0].Method != POST {
		t.Fatalf("expected only POST, got %+v", ops)
	}
}

func TestBuildOperations_CancelledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ops, err := BuildOperations(ctx, loadSample(t))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ops != nil {
		t.Fatalf("expected no operations, got %d", len(ops))
	}
}

func TestParseHttpMethod(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]HttpMethod{"GET": GET, " post ": POST, "Patch": PATCH} {
		got, ok := ParseHttpMethod(in)
		if !ok || got != want {
			t.Errorf("ParseHttpMethod(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := ParseHttpMethod("fetch"); ok {
		t.Errorf("unknown method accepted")
	}
}

func TestBuildOperations_NilDocument(t *testing.T) {
	t.Parallel()
	if _, err := BuildOperations(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil document")
	}
}
