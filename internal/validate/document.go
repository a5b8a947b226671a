package validate

import (
	"context"

	"go.uber.org/zap"

	"github.com/spryker-sdk/app-sdk/internal/response"
	"github.com/spryker-sdk/app-sdk/internal/spec"
)

// OpenAPI loads file the same way a build does and reports whether it can
// be used.
func (v *Validator) OpenAPI(ctx context.Context, file string) *response.Response {
	resp := response.New()
	doc, err := spec.LoadOpenAPI(ctx, file)
	if err != nil {
		resp.AddErr(err)
		return resp
	}
	v.logger.Debug("openapi loaded", zap.String("file", doc.File), zap.Int("paths", len(doc.Paths)))
	resp.AddMessage("OpenAPI file \"%s\" is valid.", file)
	return resp
}

// AsyncAPI loads file the same way a build does and reports whether it can
// be used.
func (v *Validator) AsyncAPI(ctx context.Context, file string) *response.Response {
	resp := response.New()
	if err := ctx.Err(); err != nil {
		resp.AddErr(err)
		return resp
	}
	doc, err := spec.LoadAsyncAPI(file)
	if err != nil {
		resp.AddErr(err)
		return resp
	}
	v.logger.Debug("asyncapi loaded", zap.String("file", doc.File), zap.Int("messages", doc.MessageCount()))
	resp.AddMessage("AsyncAPI file \"%s\" is valid.", file)
	return resp
}
