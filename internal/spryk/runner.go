package spryk

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultExecutable is the spryk-run location relative to the project root.
const DefaultExecutable = "vendor/bin/spryk-run"

// Output is what a finished spryk-run invocation printed.
type Output struct {
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Runner executes a single descriptor.
type Runner interface {
	Run(ctx context.Context, d CommandDescriptor) (Output, error)
}

// GenerationError reports a spryk-run invocation that could not be started
// or exited unsuccessfully.
type GenerationError struct {
	Descriptor CommandDescriptor
	ExitCode   int // -1 when the process never ran
	Stdout     string
	Stderr     string
	Err        error
}

func (e *GenerationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "spryk %s for module %q failed", e.Descriptor.Action, e.Descriptor.Module)
	if e.ExitCode >= 0 {
		fmt.Fprintf(&b, " with exit code %d", e.ExitCode)
	} else if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		fmt.Fprintf(&b, ": %s", msg)
	}
	return b.String()
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ProcessRunner runs spryk-run as a subprocess inside the project root.
type ProcessRunner struct {
	ProjectRoot string
	Executable  string
	Logger      *zap.Logger
}

func NewProcessRunner(projectRoot, executable string, logger *zap.Logger) *ProcessRunner {
	if strings.TrimSpace(executable) == "" {
		executable = DefaultExecutable
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessRunner{ProjectRoot: projectRoot, Executable: executable, Logger: logger}
}

// Run blocks until the subprocess exits. Both output streams are drained
// into buffers and the process is always waited on.
func (r *ProcessRunner) Run(ctx context.Context, d CommandDescriptor) (Output, error) {
	exe := r.executablePath()
	args := d.Args()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Dir = r.ProjectRoot
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.Logger.Debug("running spryk",
		zap.String("executable", exe),
		zap.Strings("args", args),
		zap.String("dir", r.ProjectRoot),
	)

	start := time.Now()
	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String(), Duration: time.Since(start)}
	if err != nil {
		gerr := &GenerationError{Descriptor: d, ExitCode: -1, Stdout: out.Stdout, Stderr: out.Stderr, Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			gerr.ExitCode = exitErr.ExitCode()
		}
		r.Logger.Debug("spryk failed", zap.Int("exit_code", gerr.ExitCode), zap.Error(err))
		return out, gerr
	}

	r.Logger.Debug("spryk finished", zap.Duration("took", out.Duration))
	return out, nil
}

func (r *ProcessRunner) executablePath() string {
	exe := r.Executable
	if filepath.IsAbs(exe) || r.ProjectRoot == "" {
		return exe
	}
	// Bare names are looked up on PATH.
	if !strings.ContainsRune(exe, '/') && !strings.ContainsRune(exe, filepath.Separator) {
		return exe
	}
	return filepath.Join(r.ProjectRoot, exe)
}
