package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tgl-library/tglgen/internal/codegen/pipeline"
	"github.com/tgl-library/tglgen/internal/codegen/toolchain"
	"github.com/tgl-library/tglgen/internal/host"
	"github.com/tgl-library/tglgen/internal/log"
)

// Generate runs the whole schema pipeline for one build tree.
type Generate struct {
	SourceDir string `arg:"" name:"src-dir" help:"Library source root containing auto/*.tl, generate/ and tl-parser/"`
	BuildDir  string `arg:"" name:"build-dir" help:"Existing build directory; outputs go to <build-dir>/auto"`
	CC        string `arg:"" name:"cc" optional:"" help:"C compiler used to bootstrap the tools" default:"cc" env:"TGLGEN_CC"`

	Compiler  string `help:"Prebuilt schema compiler; skips bootstrapping when set with --generator" env:"TGLGEN_COMPILER"`
	Generator string `help:"Prebuilt code generator; skips bootstrapping when set with --compiler" env:"TGLGEN_GENERATOR"`

	Fragment  []string `help:"Schema fragment in concatenation order (repeatable). Defaults to the four auto/*.tl sources" sep:"none"`
	Kind      []string `help:"Generation kinds in order" default:"fetch-ds,free-ds,skip,types" env:"TGLGEN_KINDS"`
	MimeTypes string   `help:"Mime mapping file relative to src-dir; empty disables the mime tables" default:"mime.types" env:"TGLGEN_MIME_TYPES"`
	Guard     string   `help:"Include guard of the constants header" default:"__TGL_CONSTANTS_H__"`

	AllowDuplicateSymbols bool `help:"Emit colliding CODE_ symbols with a warning instead of failing" env:"TGLGEN_ALLOW_DUPLICATE_SYMBOLS"`
	Atomic                bool `help:"Publish generated artifacts only if every generator run succeeds" env:"TGLGEN_ATOMIC"`
	Parallel              int  `help:"Run up to N tool invocations concurrently (0 or 1 runs sequentially)" default:"0" env:"TGLGEN_PARALLEL"`
	Incremental           bool `help:"Skip the run when inputs match the last successful run" env:"TGLGEN_INCREMENTAL"`
}

// Run is called by Kong when the generate command is executed.
func (g *Generate) Run(logger *slog.Logger, transcript log.Transcript) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return g.Execute(ctx, logger, toolchain.NewExecRunner(transcript))
}

// Execute runs the pipeline with the given tool runner.
func (g *Generate) Execute(ctx context.Context, logger *slog.Logger, runner toolchain.Runner) error {
	platform := host.Current()
	logger.Info("Starting schema generation", "src", g.SourceDir, "build", g.BuildDir, "host", platform)

	res, err := pipeline.New(g.Config(platform), runner, logger).Run(ctx)
	if err != nil {
		return err
	}
	if res.Skipped {
		logger.Info("Nothing to do")
	}
	return nil
}

// Config translates the command line into a pipeline configuration.
func (g *Generate) Config(platform host.Platform) pipeline.Config {
	return pipeline.Config{
		SourceDir:             g.SourceDir,
		BuildDir:              g.BuildDir,
		CC:                    g.CC,
		Compiler:              g.Compiler,
		Generator:             g.Generator,
		Fragments:             g.Fragment,
		Kinds:                 g.Kind,
		MimeTypes:             g.MimeTypes,
		ConstantsGuard:        g.Guard,
		AllowDuplicateSymbols: g.AllowDuplicateSymbols,
		Atomic:                g.Atomic,
		Parallel:              g.Parallel,
		Incremental:           g.Incremental,
		Platform:              platform,
	}
}
