package toolchain_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgl-library/tglgen/internal/codegen/errs"
	"github.com/tgl-library/tglgen/internal/codegen/toolchain"
	"github.com/tgl-library/tglgen/internal/host"
	htesting "github.com/tgl-library/tglgen/internal/testing"
)

func TestCompilerPreprocessReadsDiagnosticStream(t *testing.T) {
	runner := htesting.CreateFakeRunner(t).
		Respond(htesting.ToolResponse{Stdout: "ignored", Stderr: "msg#1 = Msg;\n"}, "./tl-parser", "-E", "auto/scheme.tl")
	c := &toolchain.Compiler{Path: "./tl-parser", Dir: "/build", Runner: runner}

	out, err := c.Preprocess(context.Background(), "auto/scheme.tl")
	require.NoError(t, err)
	assert.Equal(t, "msg#1 = Msg;\n", string(out))
}

func TestCompilerPreprocessFailure(t *testing.T) {
	runner := htesting.CreateFakeRunner(t).
		Respond(htesting.ToolResponse{Stderr: "partial#1\n", ExitCode: 4}, "./tl-parser", "-E", "auto/scheme.tl")
	c := &toolchain.Compiler{Path: "./tl-parser", Runner: runner}

	out, err := c.Preprocess(context.Background(), "auto/scheme.tl")
	assert.Nil(t, out, "truncated output must not be accepted")
	assert.Equal(t, 4, errs.ExitCode(err))
}

func TestCompilerCompileArguments(t *testing.T) {
	runner := htesting.CreateFakeRunner(t)
	c := &toolchain.Compiler{Path: "./tl-parser", Runner: runner}

	require.NoError(t, c.Compile(context.Background(), "auto/scheme.tl", "auto/scheme.tlo"))
	assert.Equal(t, []string{"./tl-parser -e auto/scheme.tlo auto/scheme.tl"}, runner.Calls())
}

func TestBootstrap(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := htesting.CreateFakeRunner(t)

	tools, err := toolchain.Bootstrap(context.Background(), logger, runner, host.Linux, "clang", "/src", "/build")
	require.NoError(t, err)
	assert.Equal(t, "./tl-parser", tools.Compiler)
	assert.Equal(t, "./generate", tools.Generator)
	assert.Equal(t, []string{
		"clang /src/generate/generate.c -o generate",
		"clang /src/tl-parser/tl-parser.c /src/tl-parser/tlc.c -lz -o tl-parser",
	}, runner.Calls())
}

func TestBootstrapStopsOnFailure(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := htesting.CreateFakeRunner(t).
		Respond(htesting.ToolResponse{ExitCode: 1}, "cc", "/src/generate/generate.c", "-o", "generate")

	_, err := toolchain.Bootstrap(context.Background(), logger, runner, host.Linux, "cc", "/src", "/build")
	var te *errs.ToolError
	require.ErrorAs(t, err, &te)
	assert.Len(t, runner.Calls(), 1)
}

func TestBootstrapSources(t *testing.T) {
	sources := toolchain.BootstrapSources("/src")
	assert.Equal(t, []string{
		"/src/generate/generate.c",
		"/src/tl-parser/tl-parser.c",
		"/src/tl-parser/tlc.c",
	}, sources.All())
}
