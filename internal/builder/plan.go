package builder

import (
	"context"

	"go.uber.org/zap"

	"github.com/spryker-sdk/app-sdk/internal/response"
	"github.com/spryker-sdk/app-sdk/internal/spryk"
)

// Step is a planned descriptor with the message reported once it ran.
type Step struct {
	Descriptor spryk.CommandDescriptor
	Message    string
}

// Plan collects steps keyed by descriptor key. A later step with the same
// key replaces the earlier one but keeps its position.
type Plan struct {
	set      *spryk.Set
	messages map[string]string
	// Notes are informational lines produced while planning.
	Notes []string
	// Overwritten counts steps that replaced a different earlier step.
	Overwritten int
}

func newPlan() *Plan {
	return &Plan{set: spryk.NewSet(), messages: make(map[string]string)}
}

func (p *Plan) add(logger *zap.Logger, d spryk.CommandDescriptor, msg string) {
	key := d.Key()
	if prev, ok := p.set.Get(key); ok && prev != d {
		p.Overwritten++
		logger.Warn("spryk command overwritten by a later definition",
			zap.String("module", d.Module),
			zap.String("name", d.Name),
			zap.String("previous", prev.PropertyName),
			zap.String("current", d.PropertyName),
		)
	}
	p.set.Put(d)
	p.messages[key] = msg
}

func (p *Plan) Len() int { return p.set.Len() }

// Steps returns the planned steps in order.
func (p *Plan) Steps() []Step {
	ds := p.set.Descriptors()
	out := make([]Step, 0, len(ds))
	for _, d := range ds {
		out = append(out, Step{Descriptor: d, Message: p.messages[d.Key()]})
	}
	return out
}

// Descriptors returns the planned descriptors in order.
func (p *Plan) Descriptors() []spryk.CommandDescriptor {
	return p.set.Descriptors()
}

// execute runs every step in order. A failing step records its error and
// the remaining steps still run.
func execute(ctx context.Context, runner spryk.Runner, logger *zap.Logger, plan *Plan, resp *response.Response) {
	for _, note := range plan.Notes {
		resp.AddMessage("%s", note)
	}
	for _, step := range plan.Steps() {
		out, err := runner.Run(ctx, step.Descriptor)
		if err != nil {
			logger.Debug("spryk step failed", zap.String("spryk", string(step.Descriptor.Action)), zap.Error(err))
			resp.AddErr(err)
			continue
		}
		logger.Debug("spryk step done",
			zap.String("spryk", string(step.Descriptor.Action)),
			zap.String("module", step.Descriptor.Module),
			zap.Duration("took", out.Duration),
		)
		resp.AddMessage("%s", step.Message)
	}
}
