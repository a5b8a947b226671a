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
	messageAttributesProperty = "messageAttributes"
	messageAttributesTransfer = "MessageAttributes"
)

// ErrNoAsyncAPIMessages is reported when a document yields no spryk runs.
const ErrNoAsyncAPIMessages = "Something went wrong. Either not channels have been found or the channels do not have messages defined."

// AsyncAPIRequest describes one build from an AsyncAPI file.
type AsyncAPIRequest struct {
	File         string
	Organization string // project namespace
}

// AsyncAPIBuilder turns AsyncAPI messages into transfers and message
// handler plugins.
type AsyncAPIBuilder struct {
	runner spryk.Runner
	logger *zap.Logger
}

func NewAsyncAPIBuilder(runner spryk.Runner, logger *zap.Logger) *AsyncAPIBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AsyncAPIBuilder{runner: runner, logger: logger}
}

func (b *AsyncAPIBuilder) Build(ctx context.Context, req AsyncAPIRequest) *response.Response {
	resp := response.New()
	doc, err := spec.LoadAsyncAPI(req.File)
	if err != nil {
		resp.AddErr(err)
		return resp
	}
	b.logger.Debug("asyncapi loaded",
		zap.String("file", doc.File),
		zap.Int("channels", len(doc.Channels)),
		zap.Int("messages", doc.MessageCount()),
	)

	plan := b.Plan(doc, req.Organization)
	if plan.Len() == 0 {
		resp.AddError(ErrNoAsyncAPIMessages)
		return resp
	}
	execute(ctx, b.runner, b.logger, plan, resp)
	return resp
}

// Plan creates transfers and handlers for published messages first, then
// transfers for subscribed messages, channel by channel.
func (b *AsyncAPIBuilder) Plan(doc *spec.AsyncAPIDocument, organization string) *Plan {
	organization = strings.TrimSpace(organization)
	if organization == "" {
		organization = DefaultOrganization
	}
	plan := newPlan()
	for _, ch := range doc.Channels {
		for _, m := range ch.Publish {
			b.planTransfer(plan, m, organization)
			b.planHandler(plan, m, organization)
		}
	}
	for _, ch := range doc.Channels {
		for _, m := range ch.Subscribe {
			b.planTransfer(plan, m, organization)
		}
	}
	return plan
}

func (b *AsyncAPIBuilder) planTransfer(plan *Plan, m spec.Message, organization string) {
	module := m.OperationID
	props := Flatten(m.Payload)

	base := spryk.CommandDescriptor{
		Action:       spryk.AddSharedTransferProperty,
		Mode:         spryk.ModeProject,
		Organization: organization,
		Module:       module,
		Name:         m.Name,
	}
	for _, name := range props.Names() {
		typ, _ := props.Get(name)
		d := base
		d.PropertyName = name
		d.PropertyType = typ
		plan.add(b.logger, d, fmt.Sprintf("Added property \"%s\" with type \"%s\" to the \"%sTransfer\" transfer object of the module \"%s\".", name, typ, m.Name, module))
	}

	d := base
	d.PropertyName = messageAttributesProperty
	d.PropertyType = messageAttributesTransfer
	plan.add(b.logger, d, fmt.Sprintf("Added property \"%s\" with type \"%sTransfer\" to the \"%sTransfer\" transfer object of the module \"%s\".", messageAttributesProperty, messageAttributesTransfer, m.Name, module))

	def := spryk.CommandDescriptor{
		Action:       spryk.AddSharedTransferDefinition,
		Mode:         spryk.ModeProject,
		Organization: organization,
		Module:       module,
		Name:         messageAttributesTransfer,
	}
	plan.add(b.logger, def, fmt.Sprintf("Added transfer definition for \"%sTransfer\" to the module \"%s\".", messageAttributesTransfer, module))
}

func (b *AsyncAPIBuilder) planHandler(plan *Plan, m spec.Message, organization string) {
	d := spryk.CommandDescriptor{
		Action:       spryk.AddMessageBrokerHandlerPlugin,
		Mode:         spryk.ModeProject,
		Organization: organization,
		Module:       m.OperationID,
		MessageName:  m.Name,
	}
	plan.add(b.logger, d, fmt.Sprintf("Added MessageHandlerPlugin for the message \"%s\" to the module \"%s\".", m.Name, m.OperationID))
}
