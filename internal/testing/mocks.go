package testing

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/tgl-library/tglgen/internal/codegen/errs"
	"github.com/tgl-library/tglgen/internal/codegen/toolchain"
)

// ToolResponse is what a fake tool prints and how it exits.
type ToolResponse struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// FakeRunner is a toolchain.Runner that answers invocations from a script
// keyed by the joined command line and records every call it receives.
type FakeRunner struct {
	t         *testing.T
	mu        sync.Mutex
	responses map[string]ToolResponse
	calls     []toolchain.Invocation
	hook      func(inv toolchain.Invocation)
}

// CreateFakeRunner returns a FakeRunner. Unscripted invocations succeed with
// empty output.
func CreateFakeRunner(t *testing.T) *FakeRunner {
	return &FakeRunner{t: t, responses: make(map[string]ToolResponse)}
}

// Respond scripts the response for the command line tool+args.
func (f *FakeRunner) Respond(resp ToolResponse, tool string, args ...string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[commandLine(tool, args)] = resp
	return f
}

// OnRun installs a hook called before each scripted response is produced.
func (f *FakeRunner) OnRun(hook func(inv toolchain.Invocation)) *FakeRunner {
	f.hook = hook
	return f
}

func (f *FakeRunner) Run(_ context.Context, inv toolchain.Invocation) error {
	f.mu.Lock()
	f.calls = append(f.calls, inv)
	resp := f.responses[commandLine(inv.Tool, inv.Args)]
	hook := f.hook
	f.mu.Unlock()

	if hook != nil {
		hook(inv)
	}
	write(f.t, inv.Stdout, resp.Stdout)
	write(f.t, inv.Stderr, resp.Stderr)
	if resp.ExitCode != 0 {
		return &errs.ToolError{Tool: inv.Tool, Args: inv.Args, ExitCode: resp.ExitCode}
	}
	return nil
}

// Calls returns the command lines received so far, in call order.
func (f *FakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = commandLine(c.Tool, c.Args)
	}
	return out
}

func commandLine(tool string, args []string) string {
	return strings.TrimSpace(tool + " " + strings.Join(args, " "))
}

func write(t *testing.T, w io.Writer, s string) {
	if w == nil || s == "" {
		return
	}
	if _, err := io.WriteString(w, s); err != nil {
		t.Errorf("fake runner write: %v", err)
	}
}
