package builder

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spryker-sdk/app-sdk/internal/response"
	"github.com/spryker-sdk/app-sdk/internal/spec"
	"github.com/spryker-sdk/app-sdk/internal/spryk"
)

const (
	DefaultOrganization    = "App"
	DefaultApplicationType = "backend"
)

// ErrNoOpenAPIOperations is reported when a document yields no spryk runs.
const ErrNoOpenAPIOperations = "Something went wrong. Either no paths have been found or the operations do not have request or response schemas defined."

// OpenAPIRequest describes one build from an OpenAPI file.
type OpenAPIRequest struct {
	File            string
	Organization    string
	ApplicationType string
	IncludeTags     []string
	ExcludeTags     []string
	Methods         []spec.HttpMethod
}

// OpenAPIBuilder turns request and response schemas of an OpenAPI document
// into shared transfer properties.
type OpenAPIBuilder struct {
	runner spryk.Runner
	logger *zap.Logger
}

func NewOpenAPIBuilder(runner spryk.Runner, logger *zap.Logger) *OpenAPIBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAPIBuilder{runner: runner, logger: logger}
}

// Build loads the document, plans the spryk runs and executes them. Load
// errors, failed runs and an empty plan are recorded as response errors.
func (b *OpenAPIBuilder) Build(ctx context.Context, req OpenAPIRequest) *response.Response {
	resp := response.New()
	req = req.withDefaults()

	doc, err := spec.LoadOpenAPI(ctx, req.File)
	if err != nil {
		resp.AddErr(err)
		return resp
	}
	ops, err := spec.BuildOperations(ctx, doc,
		spec.WithIncludeTags(req.IncludeTags),
		spec.WithExcludeTags(req.ExcludeTags),
		spec.WithMethods(req.Methods),
	)
	if err != nil {
		resp.AddErr(fmt.Errorf("build operations: %w", err))
		return resp
	}

	b.logger.Debug("openapi loaded",
		zap.String("file", doc.File),
		zap.Int("operations", len(ops)),
		zap.String("application_type", req.ApplicationType),
	)

	plan := b.Plan(ops, req)
	if plan.Len() == 0 {
		for _, note := range plan.Notes {
			resp.AddMessage("%s", note)
		}
		resp.AddError(ErrNoOpenAPIOperations)
		return resp
	}
	execute(ctx, b.runner, b.logger, plan, resp)
	return resp
}

// Plan translates operations into spryk steps without running anything.
func (b *OpenAPIBuilder) Plan(ops []spec.Operation, req OpenAPIRequest) *Plan {
	req = req.withDefaults()
	mode := spryk.ModeFor(req.Organization)
	plan := newPlan()

	for _, op := range ops {
		module := ModuleName(op.Path)
		b.logger.Debug("planning operation",
			zap.String("method", string(op.Method)),
			zap.String("path", op.Path),
			zap.String("module", module),
			zap.String("controller", ControllerName(op.Path)),
		)
		b.planSchemas(plan, op, op.Requests, "Request", module, mode, req.Organization)
		b.planSchemas(plan, op, op.Responses, "Response", module, mode, req.Organization)
	}
	return plan
}

func (b *OpenAPIBuilder) planSchemas(plan *Plan, op spec.Operation, schemas []*spec.SchemaNode, suffix, module string, mode spryk.Mode, organization string) {
	for _, schema := range schemas {
		name := transferName(schema, op, suffix)
		props := Flatten(schema)
		if props.Len() == 0 {
			plan.Notes = append(plan.Notes, fmt.Sprintf("Skipped the \"%sTransfer\" transfer object of the module \"%s\": the schema defines no properties.", name, module))
			continue
		}
		d := spryk.CommandDescriptor{
			Action:       spryk.AddSharedTransferProperty,
			Mode:         mode,
			Organization: organization,
			Module:       module,
			Name:         name,
			PropertyName: props.String(),
			Verbose:      true,
		}
		msg := fmt.Sprintf("Added properties \"%s\" to the \"%sTransfer\" transfer object of the module \"%s\".", props.String(), name, module)
		plan.add(b.logger, d, msg)
	}
}

func inlineName(name string) bool {
	return name == "" || name == "schema" || name == "items"
}

// transferName is the component name of the schema. Inline schemas are
// named after the operation.
func transferName(n *spec.SchemaNode, op spec.Operation, suffix string) string {
	name := n.Name
	if inlineName(name) && n.Kind == spec.KindArray && n.Items != nil && !inlineName(n.Items.Name) {
		name = n.Items.Name
	}
	if !inlineName(name) {
		return name
	}
	base := op.OperationID
	if base == "" {
		base = string(op.Method) + "-" + strings.TrimSuffix(ControllerName(op.Path), "Controller")
	}
	return Classify(base) + suffix
}

func (r OpenAPIRequest) withDefaults() OpenAPIRequest {
	r.Organization = strings.TrimSpace(r.Organization)
	if r.Organization == "" {
		r.Organization = DefaultOrganization
	}
	r.ApplicationType = strings.ToLower(strings.TrimSpace(r.ApplicationType))
	if r.ApplicationType == "" {
		r.ApplicationType = DefaultApplicationType
	}
	return r
}
