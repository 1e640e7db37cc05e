// Package artifacts drives the external code generator over a compiled schema,
// one invocation per generation kind and form.
package artifacts

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/tgl-library/tglgen/internal/codegen/errs"
	"github.com/tgl-library/tglgen/internal/codegen/toolchain"
)

// DefaultKinds are the generation kinds in the order they are produced.
var DefaultKinds = []string{"fetch-ds", "free-ds", "skip", "types"}

// Target is one generator invocation and the file it fills.
type Target struct {
	Kind   string
	Header bool
}

// Flag is the value passed to the generator's -g option.
func (t Target) Flag() string {
	if t.Header {
		return t.Kind + "-header"
	}
	return t.Kind
}

// FileName is the artifact name, auto-<kind>.h or auto-<kind>.cpp.
func (t Target) FileName() string {
	if t.Header {
		return "auto-" + t.Kind + ".h"
	}
	return "auto-" + t.Kind + ".cpp"
}

// Targets expands kinds into invocation order: each kind's header, then its
// source.
func Targets(kinds []string) []Target {
	out := make([]Target, 0, 2*len(kinds))
	for _, k := range kinds {
		out = append(out, Target{Kind: k, Header: true}, Target{Kind: k, Header: false})
	}
	return out
}

// Driver runs the generator for every target.
type Driver struct {
	Generator string
	// Compiled is the compiled schema path as passed to the generator.
	Compiled string
	// Dir is the working directory of the generator.
	Dir string
	// OutDir receives the artifacts.
	OutDir string
	Kinds  []string

	// Atomic stages every artifact and renames them only after all
	// invocations succeeded.
	Atomic bool
	// Parallel bounds concurrent invocations; values below 2 run sequentially.
	Parallel int

	Runner toolchain.Runner
	Logger *slog.Logger
}

// Run generates all artifacts and returns their paths in target order. The
// first failing target in kind order aborts the run; artifacts of earlier
// targets are left in place unless Atomic is set.
func (d *Driver) Run(ctx context.Context) ([]string, error) {
	targets := Targets(d.kinds())
	if d.Parallel > 1 {
		return d.runParallel(ctx, targets)
	}

	written := make([]string, 0, len(targets))
	var staged []staging
	for _, t := range targets {
		out, err := d.invoke(ctx, t)
		if err != nil {
			discard(staged)
			return written, err
		}
		if d.Atomic {
			s, err := d.stage(t, out)
			if err != nil {
				discard(staged)
				return written, err
			}
			staged = append(staged, s)
			continue
		}
		path, err := d.write(t, out)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if d.Atomic {
		return commit(staged)
	}
	return written, nil
}

func (d *Driver) runParallel(ctx context.Context, targets []Target) ([]string, error) {
	outputs := make([][]byte, len(targets))
	failures := make([]error, len(targets))

	var g errgroup.Group
	g.SetLimit(d.Parallel)
	for i, t := range targets {
		g.Go(func() error {
			outputs[i], failures[i] = d.invoke(ctx, t)
			return nil
		})
	}
	_ = g.Wait()

	// Only targets ahead of the first failure are written, matching what a
	// sequential run would leave behind.
	firstFailure := len(targets)
	var runErr error
	for i, err := range failures {
		if err != nil {
			firstFailure, runErr = i, err
			break
		}
	}

	if d.Atomic {
		if runErr != nil {
			return nil, runErr
		}
		var staged []staging
		for i, t := range targets {
			s, err := d.stage(t, outputs[i])
			if err != nil {
				discard(staged)
				return nil, err
			}
			staged = append(staged, s)
		}
		return commit(staged)
	}

	var written []string
	for i := 0; i < firstFailure; i++ {
		path, err := d.write(targets[i], outputs[i])
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, runErr
}

func (d *Driver) invoke(ctx context.Context, t Target) ([]byte, error) {
	var out bytes.Buffer
	d.logger().Debug("Running generator", "kind", t.Kind, "header", t.Header)
	err := d.Runner.Run(ctx, toolchain.Invocation{
		Tool:   d.Generator,
		Args:   []string{"-g", t.Flag(), d.Compiled},
		Dir:    d.Dir,
		Stdout: &out,
	})
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", t.FileName(), err)
	}
	return out.Bytes(), nil
}

func (d *Driver) write(t Target, data []byte) (string, error) {
	path := filepath.Join(d.OutDir, t.FileName())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &errs.IOError{Op: "write", Path: path, Err: err}
	}
	d.logger().Info("Generated artifact", "file", path, "bytes", len(data))
	return path, nil
}

type staging struct {
	tmp  string
	dest string
}

func (d *Driver) stage(t Target, data []byte) (staging, error) {
	dest := filepath.Join(d.OutDir, t.FileName())
	f, err := os.CreateTemp(d.OutDir, "."+t.FileName()+".*")
	if err != nil {
		return staging{}, &errs.IOError{Op: "create", Path: dest, Err: err}
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return staging{}, &errs.IOError{Op: "write", Path: dest, Err: err}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return staging{}, &errs.IOError{Op: "write", Path: dest, Err: err}
	}
	return staging{tmp: f.Name(), dest: dest}, nil
}

func commit(staged []staging) ([]string, error) {
	written := make([]string, 0, len(staged))
	for i, s := range staged {
		if err := os.Rename(s.tmp, s.dest); err != nil {
			discard(staged[i:])
			return written, &errs.IOError{Op: "rename", Path: s.dest, Err: err}
		}
		written = append(written, s.dest)
	}
	return written, nil
}

func discard(staged []staging) {
	for _, s := range staged {
		_ = os.Remove(s.tmp)
	}
}

func (d *Driver) kinds() []string {
	if len(d.Kinds) == 0 {
		return DefaultKinds
	}
	return d.Kinds
}

func (d *Driver) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}
