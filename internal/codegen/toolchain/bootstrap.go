package toolchain

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/tgl-library/tglgen/internal/host"
)

// Tools holds the locations of the compiler and generator executables.
type Tools struct {
	Compiler  string
	Generator string
}

// BootstrapTools returns where Bootstrap places the tools, relative to the
// build directory.
func BootstrapTools(platform host.Platform) Tools {
	return Tools{
		Compiler:  "." + string(filepath.Separator) + platform.ExecutableName("tl-parser"),
		Generator: "." + string(filepath.Separator) + platform.ExecutableName("generate"),
	}
}

// Sources lists the C files Bootstrap compiles into each tool.
type Sources struct {
	Compiler  []string
	Generator []string
}

// All returns every bootstrap source, generator first.
func (s Sources) All() []string {
	return append(append([]string{}, s.Generator...), s.Compiler...)
}

func BootstrapSources(srcDir string) Sources {
	return Sources{
		Compiler: []string{
			filepath.Join(srcDir, "tl-parser", "tl-parser.c"),
			filepath.Join(srcDir, "tl-parser", "tlc.c"),
		},
		Generator: []string{filepath.Join(srcDir, "generate", "generate.c")},
	}
}

// Bootstrap compiles the schema compiler and the code generator from srcDir
// with cc, placing both executables in buildDir.
func Bootstrap(ctx context.Context, logger *slog.Logger, runner Runner, platform host.Platform, cc, srcDir, buildDir string) (Tools, error) {
	tools := BootstrapTools(platform)
	sources := BootstrapSources(srcDir)

	steps := []struct {
		name string
		args []string
	}{
		{
			name: "generator",
			args: append(sources.Generator, "-o", platform.ExecutableName("generate")),
		},
		{
			name: "schema compiler",
			args: append(sources.Compiler, "-lz", "-o", platform.ExecutableName("tl-parser")),
		},
	}

	for _, step := range steps {
		logger.Info("Building tool", "tool", step.name, "cc", cc, "dir", buildDir)
		if err := runner.Run(ctx, Invocation{Tool: cc, Args: step.args, Dir: buildDir}); err != nil {
			return Tools{}, err
		}
	}
	return tools, nil
}
