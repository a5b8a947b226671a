package e2e

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	cli "github.com/spryker-sdk/app-sdk/internal/cli"
)

const customerAsyncAPI = "" +
	"asyncapi: 2.2.0\n" +
	"info:\n" +
	"  title: Customer events\n" +
	"  version: 0.1.0\n" +
	"channels:\n" +
	"  customer:\n" +
	"    publish:\n" +
	"      message:\n" +
	"        name: CustomerCreated\n" +
	"        operationId: CustomerApi\n" +
	"        payload:\n" +
	"          type: object\n" +
	"          properties:\n" +
	"            email:\n" +
	"              type: string\n"

const appOpenAPI = "" +
	"openapi: 3.0.0\n" +
	"info:\n" +
	"  title: E2E Sample\n" +
	"  version: '1.0.0'\n" +
	"paths:\n" +
	"  /private/configure:\n" +
	"    post:\n" +
	"      operationId: configureApp\n" +
	"      requestBody:\n" +
	"        content:\n" +
	"          application/json:\n" +
	"            schema:\n" +
	"              type: object\n" +
	"              properties:\n" +
	"                data:\n" +
	"                  type: object\n" +
	"                  properties:\n" +
	"                    configuration:\n" +
	"                      type: string\n" +
	"      responses:\n" +
	"        '204':\n" +
	"          description: configured\n"

// fakeSprykRun logs every invocation as one line to spryk-run.log in the
// project root and exits with status.
const fakeSprykRun = "#!/bin/sh\n" +
	"echo \"$@\" >> spryk-run.log\n" +
	"if [ \"$1\" = \"$FAIL_ON\" ]; then echo \"cannot run $1\" >&2; exit 1; fi\n"

func newProject(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "vendor/bin/spryk-run"), fakeSprykRun, 0o755)
	writeFile(t, filepath.Join(dir, "resources/api/asyncapi.yml"), customerAsyncAPI, 0o600)
	writeFile(t, filepath.Join(dir, "resources/api/openapi.yml"), appOpenAPI, 0o600)
	return dir
}

func writeFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := cli.NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--no-color"}, args...))
	err := root.Execute()
	return out.String(), err
}

func sprykLog(t *testing.T, dir string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "spryk-run.log"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func digest(lines []string) string {
	h := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(h[:])
}

func TestE2E_FromAsyncAPI(t *testing.T) {
	dir := newProject(t)

	out, err := runCLI(t, "--project-root", dir, "build", "from-asyncapi", "-v")
	if err != nil {
		t.Fatalf("build: %v\n%s", err, out)
	}

	want := []string{
		"AddSharedTransferProperty --mode project --organization App --module CustomerApi --name CustomerCreated --propertyName email --propertyType string -n",
		"AddSharedTransferProperty --mode project --organization App --module CustomerApi --name CustomerCreated --propertyName messageAttributes --propertyType MessageAttributes -n",
		"AddSharedTransferDefinition --mode project --organization App --module CustomerApi --name MessageAttributes -n",
		"AddMessageBrokerHandlerPlugin --mode project --organization App --module CustomerApi --messageName CustomerCreated -n",
	}
	if diff := cmp.Diff(want, sprykLog(t, dir)); diff != "" {
		t.Fatalf("spryk-run invocations (-want +got):\n%s", diff)
	}
	if !strings.Contains(out, `Added MessageHandlerPlugin for the message "CustomerCreated" to the module "CustomerApi".`) {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestE2E_FromOpenAPI_CoreAndDeterministic(t *testing.T) {
	dir1 := newProject(t)
	dir2 := newProject(t)

	for _, dir := range []string{dir1, dir2} {
		if out, err := runCLI(t, "--project-root", dir, "build", "from-openapi", "-o", "Spryker"); err != nil {
			t.Fatalf("build: %v\n%s", err, out)
		} else if out != "" {
			t.Fatalf("expected no output without --verbose, got %q", out)
		}
	}

	log1, log2 := sprykLog(t, dir1), sprykLog(t, dir2)
	if digest(log1) != digest(log2) {
		t.Fatalf("invocations differ between runs\n%v\n%v", log1, log2)
	}
	want := []string{
		"AddSharedTransferProperty --mode core --organization Spryker --module PrivateApi --name ConfigureAppRequest --propertyName configuration:string -n -v",
	}
	if diff := cmp.Diff(want, log1); diff != "" {
		t.Fatalf("spryk-run invocations (-want +got):\n%s", diff)
	}
}

func TestE2E_FailingSprykRunContinues(t *testing.T) {
	dir := newProject(t)
	t.Setenv("FAIL_ON", "AddSharedTransferDefinition")

	out, err := runCLI(t, "--project-root", dir, "build", "from-asyncapi", "-v")
	var exit *cli.ExitError
	if !errors.As(err, &exit) || exit.Code != 1 {
		t.Fatalf("expected exit code 1, got %v\n%s", err, out)
	}
	if got := len(sprykLog(t, dir)); got != 4 {
		t.Fatalf("expected all 4 invocations, got %d", got)
	}
	if !strings.Contains(out, "cannot run AddSharedTransferDefinition") || !strings.Contains(out, "exit code 1") {
		t.Fatalf("expected generation error in output, got:\n%s", out)
	}
}

func TestE2E_DryRunDoesNotExecute(t *testing.T) {
	dir := newProject(t)
	out, err := runCLI(t, "--project-root", dir, "build", "from-asyncapi", "--dry-run")
	if err != nil {
		t.Fatalf("build: %v\n%s", err, out)
	}
	if log := sprykLog(t, dir); log != nil {
		t.Fatalf("dry run executed spryk-run: %v", log)
	}
	if !strings.Contains(out, "Planned spryk runs (4)") {
		t.Fatalf("unexpected plan output:\n%s", out)
	}
}
