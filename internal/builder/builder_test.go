package builder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spryker-sdk/app-sdk/internal/response"
	"github.com/spryker-sdk/app-sdk/internal/spryk"
)

// fakeRunner records descriptors and fails those whose action matches failOn.
type fakeRunner struct {
	ran    []spryk.CommandDescriptor
	failOn spryk.Action
}

func (f *fakeRunner) Run(ctx context.Context, d spryk.CommandDescriptor) (spryk.Output, error) {
	_ = ctx
	f.ran = append(f.ran, d)
	if f.failOn != "" && d.Action == f.failOn {
		return spryk.Output{}, &spryk.GenerationError{Descriptor: d, ExitCode: 2, Stderr: "boom"}
	}
	return spryk.Output{}, nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func texts(ms []response.Message) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Text)
	}
	return out
}
