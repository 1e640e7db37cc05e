// Package errs holds the error taxonomy shared by every pipeline stage and the
// mapping from a propagated error to the process exit code.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Exit codes for conditions that do not originate from an external tool.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// ArgumentError reports a wrong invocation of the pipeline itself.
type ArgumentError struct {
	Detail string
}

func (e *ArgumentError) Error() string { return "invalid arguments: " + e.Detail }

// EnvironmentError reports a required directory or file that is absent.
type EnvironmentError struct {
	Path   string
	Detail string
}

func (e *EnvironmentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Detail, e.Path)
}

// IOError wraps a filesystem failure with the path and operation that failed.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// ToolError reports an external tool that exited non-zero. ExitCode is
// propagated as the exit code of the whole run.
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Err      error
}

func (e *ToolError) Error() string {
	cmd := strings.TrimSpace(e.Tool + " " + strings.Join(e.Args, " "))
	if e.Err != nil {
		return fmt.Sprintf("%s: exit code %d: %v", cmd, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("%s: exit code %d", cmd, e.ExitCode)
}

func (e *ToolError) Unwrap() error { return e.Err }

// DuplicateSymbolError reports two declarations that transform to the same
// constant name.
type DuplicateSymbolError struct {
	Symbol    string
	First     string
	Duplicate string
	Line      int
}

func (e *DuplicateSymbolError) Error() string {
	return fmt.Sprintf("line %d: %q and %q both map to CODE_%s", e.Line, e.First, e.Duplicate, e.Symbol)
}

// MalformedLineError describes a mapping line with too few tokens. It is never
// fatal; callers log it and continue.
type MalformedLineError struct {
	Line int
	Text string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("line %d: expected a type followed by at least one extension, got %q", e.Line, e.Text)
}

// ExitCode maps err to the process exit code. Tool failures keep their own
// code; everything else is 1.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var te *ToolError
	if errors.As(err, &te) && te.ExitCode != 0 {
		return te.ExitCode
	}
	return ExitFailure
}
