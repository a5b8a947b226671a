package spryk

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// PlanRunner records descriptors instead of executing them.
type PlanRunner struct {
	Planned []CommandDescriptor
}

func (p *PlanRunner) Run(ctx context.Context, d CommandDescriptor) (Output, error) {
	_ = ctx
	p.Planned = append(p.Planned, d)
	return Output{}, nil
}

// Render prints the recorded descriptors as a table.
func (p *PlanRunner) Render(w io.Writer, executable string) {
	fmt.Fprintf(w, "Planned spryk runs (%d):\n", len(p.Planned))
	if len(p.Planned) == 0 {
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Spryk", "Module", "Name", "Properties"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	for i, d := range p.Planned {
		name := d.Name
		if d.MessageName != "" {
			name = d.MessageName
		}
		props := d.PropertyName
		if d.PropertyType != "" {
			props = d.PropertyName + ":" + d.PropertyType
		}
		table.Append([]string{fmt.Sprint(i + 1), string(d.Action), d.Module, name, props})
	}
	table.Render()
	if executable != "" {
		fmt.Fprintf(w, "Executable: %s\n", strings.TrimSpace(executable))
	}
}
