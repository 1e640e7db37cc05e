// Package pipeline orchestrates one schema generation run: fragment
// concatenation, opcode constants, schema compilation, generated artifacts
// and the mime lookup tables.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tgl-library/tglgen/internal/codegen/artifacts"
	"github.com/tgl-library/tglgen/internal/codegen/constants"
	"github.com/tgl-library/tglgen/internal/codegen/errs"
	"github.com/tgl-library/tglgen/internal/codegen/mimetable"
	"github.com/tgl-library/tglgen/internal/codegen/schema"
	"github.com/tgl-library/tglgen/internal/codegen/stamp"
	"github.com/tgl-library/tglgen/internal/codegen/toolchain"
	"github.com/tgl-library/tglgen/internal/host"
)

// Pipeline runs the stages for one Config.
type Pipeline struct {
	cfg    Config
	runner toolchain.Runner
	logger *slog.Logger
}

func New(cfg Config, runner toolchain.Runner, logger *slog.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, runner: runner, logger: logger}
}

// Result summarizes a finished run.
type Result struct {
	Constants int
	Artifacts []string
	Skipped   bool
}

// Run executes every stage in order and stops at the first error.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if err := p.checkEnvironment(); err != nil {
		return nil, err
	}

	tools, err := p.plannedTools()
	if err != nil {
		return nil, err
	}

	var digest string
	if p.cfg.Incremental {
		digest, err = p.digest(tools)
		if err != nil {
			return nil, err
		}
		upToDate, err := stamp.UpToDate(p.cfg.outPath(stamp.FileName), digest, p.cfg.Outputs())
		if err != nil {
			return nil, err
		}
		if upToDate {
			p.logger.Info("Generated sources are up to date", "dir", p.cfg.outPath(""))
			return &Result{Skipped: true}, nil
		}
	}

	// A stamp only survives a run that completes.
	if err := stamp.Remove(p.cfg.outPath(stamp.FileName)); err != nil {
		return nil, err
	}

	if !p.prebuilt() {
		if _, err := toolchain.Bootstrap(ctx, p.logger, p.runner, p.cfg.Platform, p.cfg.cc(), p.cfg.SourceDir, p.cfg.BuildDir); err != nil {
			return nil, fmt.Errorf("bootstrap tools: %w", err)
		}
	}

	fragments := p.cfg.fragments()
	p.logger.Info("Concatenating schema fragments", "count", len(fragments), "dest", p.cfg.outPath(SchemaFile))
	if err := schema.Concatenate(fragments, p.cfg.outPath(SchemaFile)); err != nil {
		return nil, fmt.Errorf("concatenate schema: %w", err)
	}

	compiler := &toolchain.Compiler{Path: tools.Compiler, Dir: p.cfg.BuildDir, Runner: p.runner}
	consts, err := p.compileSchema(ctx, compiler)
	if err != nil {
		return nil, err
	}

	driver := &artifacts.Driver{
		Generator: tools.Generator,
		Compiled:  p.cfg.autoPath(CompiledFile),
		Dir:       p.cfg.BuildDir,
		OutDir:    p.cfg.outPath(""),
		Kinds:     p.cfg.kinds(),
		Atomic:    p.cfg.Atomic,
		Parallel:  p.cfg.Parallel,
		Runner:    p.runner,
		Logger:    p.logger,
	}
	written, err := driver.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate artifacts: %w", err)
	}

	if err := p.generateMimeTables(); err != nil {
		return nil, fmt.Errorf("generate mime tables: %w", err)
	}

	if p.cfg.Incremental {
		if err := stamp.Write(p.cfg.outPath(stamp.FileName), digest); err != nil {
			return nil, err
		}
	}

	p.logger.Info("Generation complete", "constants", consts, "artifacts", len(written))
	return &Result{Constants: consts, Artifacts: written}, nil
}

func (p *Pipeline) checkEnvironment() error {
	for _, dir := range []struct{ path, what string }{
		{p.cfg.BuildDir, "build directory doesn't exist"},
		{p.cfg.SourceDir, "source directory doesn't exist"},
	} {
		fi, err := os.Stat(dir.path)
		if err != nil || !fi.IsDir() {
			return &errs.EnvironmentError{Path: dir.path, Detail: dir.what}
		}
	}
	if err := os.MkdirAll(p.cfg.outPath(""), 0o755); err != nil {
		return &errs.IOError{Op: "mkdir", Path: p.cfg.outPath(""), Err: err}
	}
	return nil
}

func (p *Pipeline) prebuilt() bool {
	return p.cfg.Compiler != "" && p.cfg.Generator != ""
}

// plannedTools resolves the tool locations without building anything.
// Prebuilt tools are made absolute because they run inside the build
// directory.
func (p *Pipeline) plannedTools() (toolchain.Tools, error) {
	if !p.prebuilt() {
		return toolchain.BootstrapTools(p.cfg.Platform), nil
	}
	var resolved []string
	for _, tool := range []string{p.cfg.Compiler, p.cfg.Generator} {
		abs, err := filepath.Abs(tool)
		if err != nil {
			return toolchain.Tools{}, &errs.EnvironmentError{Path: tool, Detail: "prebuilt tool unusable: " + err.Error()}
		}
		if err := host.CheckExecutable(abs); err != nil {
			return toolchain.Tools{}, &errs.EnvironmentError{Path: tool, Detail: "prebuilt tool unusable: " + err.Error()}
		}
		resolved = append(resolved, abs)
	}
	return toolchain.Tools{Compiler: resolved[0], Generator: resolved[1]}, nil
}

// compileSchema preprocesses the schema into the constants header and
// compiles it for the generator. With Parallel set both compiler runs are
// issued together; a preprocess failure still takes precedence.
func (p *Pipeline) compileSchema(ctx context.Context, compiler *toolchain.Compiler) (int, error) {
	schemaPath := p.cfg.autoPath(SchemaFile)
	compile := func() error {
		p.logger.Info("Compiling schema", "dest", p.cfg.outPath(CompiledFile))
		if err := compiler.Compile(ctx, schemaPath, p.cfg.autoPath(CompiledFile)); err != nil {
			return fmt.Errorf("compile schema: %w", err)
		}
		return nil
	}

	if p.cfg.Parallel < 2 {
		n, err := p.generateConstants(ctx, compiler)
		if err != nil {
			return 0, err
		}
		return n, compile()
	}

	var n int
	var constErr, compileErr error
	var g errgroup.Group
	g.Go(func() error {
		n, constErr = p.generateConstants(ctx, compiler)
		return nil
	})
	g.Go(func() error {
		compileErr = compile()
		return nil
	})
	_ = g.Wait()
	if constErr != nil {
		return 0, constErr
	}
	return n, compileErr
}

func (p *Pipeline) generateConstants(ctx context.Context, compiler *toolchain.Compiler) (int, error) {
	p.logger.Info("Preprocessing schema", "schema", p.cfg.outPath(SchemaFile))
	expanded, err := compiler.Preprocess(ctx, p.cfg.autoPath(SchemaFile))
	if err != nil {
		return 0, fmt.Errorf("preprocess schema: %w", err)
	}
	if err := os.WriteFile(p.cfg.outPath(PreprocessedFile), expanded, 0o644); err != nil {
		return 0, &errs.IOError{Op: "write", Path: p.cfg.outPath(PreprocessedFile), Err: err}
	}

	consts, err := constants.ExtractBytes(expanded)
	if err != nil {
		return 0, err
	}
	if p.cfg.AllowDuplicateSymbols {
		for _, d := range constants.Duplicates(consts) {
			p.logger.Warn("Duplicate constant symbol", "symbol", "CODE_"+d.Symbol, "decl", d.Decl, "line", d.Line)
		}
	} else if err := constants.CheckDuplicates(consts); err != nil {
		return 0, fmt.Errorf("extract constants: %w", err)
	}

	var buf bytes.Buffer
	if err := constants.WriteHeader(&buf, p.cfg.guard(), consts); err != nil {
		return 0, err
	}
	if err := os.WriteFile(p.cfg.outPath(ConstantsFile), buf.Bytes(), 0o644); err != nil {
		return 0, &errs.IOError{Op: "write", Path: p.cfg.outPath(ConstantsFile), Err: err}
	}
	p.logger.Info("Generated constants header", "file", p.cfg.outPath(ConstantsFile), "constants", len(consts))
	return len(consts), nil
}

func (p *Pipeline) generateMimeTables() error {
	input := p.cfg.mimeInput()
	if input == "" {
		p.logger.Debug("Mime table generation disabled")
		return nil
	}
	f, err := os.Open(input)
	if err != nil {
		return &errs.IOError{Op: "open", Path: input, Err: err}
	}
	defer f.Close()

	tables, err := mimetable.Load(p.logger, f)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := mimetable.WriteSource(&buf, p.cfg.MimeTypes, tables); err != nil {
		return err
	}
	dest := p.cfg.outPath(MimeDataFile)
	if err := os.WriteFile(dest, buf.Bytes(), 0o644); err != nil {
		return &errs.IOError{Op: "write", Path: dest, Err: err}
	}
	p.logger.Info("Generated mime tables", "file", dest,
		"types", len(tables.MimeToExtension), "extensions", len(tables.ExtensionToMime))
	return nil
}

func (p *Pipeline) digest(tools toolchain.Tools) (string, error) {
	var h stamp.Hasher
	for i, frag := range p.cfg.fragments() {
		h.AddFile("fragment."+strconv.Itoa(i), frag)
	}
	if input := p.cfg.mimeInput(); input != "" {
		h.AddFile("mime", input)
	}
	h.AddString("kinds", strings.Join(p.cfg.kinds(), ","))
	h.AddString("guard", p.cfg.guard())
	if p.prebuilt() {
		h.AddFile("compiler", tools.Compiler)
		h.AddFile("generator", tools.Generator)
	} else {
		h.AddString("cc", p.cfg.cc())
		h.AddString("platform", p.cfg.Platform.String())
		for i, src := range toolchain.BootstrapSources(p.cfg.SourceDir).All() {
			h.AddFile("bootstrap."+strconv.Itoa(i), src)
		}
	}
	h.AddString("duplicates", strconv.FormatBool(p.cfg.AllowDuplicateSymbols))
	return h.Sum()
}
