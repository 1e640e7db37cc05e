// Package toolchain runs the external schema compiler and code generator.
package toolchain

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"

	"github.com/tgl-library/tglgen/internal/codegen/errs"
	"github.com/tgl-library/tglgen/internal/log"
)

// Invocation describes one run of an external tool. Nil writers discard the
// corresponding stream.
type Invocation struct {
	Tool   string
	Args   []string
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

// Runner executes external tools. A non-zero exit is reported as
// *errs.ToolError.
type Runner interface {
	Run(ctx context.Context, inv Invocation) error
}

// ExecRunner runs tools as child processes and blocks until they exit.
type ExecRunner struct {
	Transcript log.Transcript
}

// NewExecRunner returns a Runner that records every invocation to transcript.
func NewExecRunner(transcript log.Transcript) *ExecRunner {
	if transcript == nil {
		transcript = log.NewTranscript(nil)
	}
	return &ExecRunner{Transcript: transcript}
}

func (r *ExecRunner) Run(ctx context.Context, inv Invocation) error {
	cmd := exec.CommandContext(ctx, inv.Tool, inv.Args...)
	cmd.Dir = inv.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	r.Transcript.Record(inv.Tool, inv.Args, "stdout", stdout.Bytes())
	r.Transcript.Record(inv.Tool, inv.Args, "stderr", stderr.Bytes())

	if inv.Stdout != nil {
		if _, err := inv.Stdout.Write(stdout.Bytes()); err != nil && runErr == nil {
			runErr = err
		}
	}
	if inv.Stderr != nil {
		if _, err := inv.Stderr.Write(stderr.Bytes()); err != nil && runErr == nil {
			runErr = err
		}
	}

	if runErr == nil {
		return nil
	}
	te := &errs.ToolError{Tool: inv.Tool, Args: inv.Args, ExitCode: 1, Err: runErr}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		te.Err = nil
		if code := exitErr.ExitCode(); code > 0 {
			te.ExitCode = code
		}
	}
	return te
}
