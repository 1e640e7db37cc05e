package artifacts_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgl-library/tglgen/internal/codegen/artifacts"
	"github.com/tgl-library/tglgen/internal/codegen/errs"
	htesting "github.com/tgl-library/tglgen/internal/testing"
)

var allFiles = []string{
	"auto-fetch-ds.h", "auto-fetch-ds.cpp",
	"auto-free-ds.h", "auto-free-ds.cpp",
	"auto-skip.h", "auto-skip.cpp",
	"auto-types.h", "auto-types.cpp",
}

func scriptedRunner(t *testing.T) *htesting.FakeRunner {
	r := htesting.CreateFakeRunner(t)
	for _, target := range artifacts.Targets(artifacts.DefaultKinds) {
		r.Respond(htesting.ToolResponse{Stdout: "/* " + target.Flag() + " */\n"}, "./generate", "-g", target.Flag(), "auto/scheme.tlo")
	}
	return r
}

func newDriver(runner *htesting.FakeRunner, outDir string) *artifacts.Driver {
	return &artifacts.Driver{
		Generator: "./generate",
		Compiled:  "auto/scheme.tlo",
		OutDir:    outDir,
		Runner:    runner,
	}
}

func existing(t *testing.T, dir string) []string {
	t.Helper()
	var out []string
	for _, name := range allFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			out = append(out, name)
		}
	}
	return out
}

func TestTargets(t *testing.T) {
	targets := artifacts.Targets([]string{"skip", "types"})
	require.Len(t, targets, 4)
	assert.Equal(t, "skip-header", targets[0].Flag())
	assert.Equal(t, "auto-skip.h", targets[0].FileName())
	assert.Equal(t, "skip", targets[1].Flag())
	assert.Equal(t, "auto-skip.cpp", targets[1].FileName())
	assert.Equal(t, "auto-types.h", targets[2].FileName())
}

func TestDriverSuccess(t *testing.T) {
	type testCase struct {
		name     string
		atomic   bool
		parallel int
	}

	testCases := []testCase{
		{name: "sequential"},
		{name: "atomic", atomic: true},
		{name: "parallel", parallel: 4},
		{name: "parallel atomic", parallel: 3, atomic: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			runner := scriptedRunner(t)
			d := newDriver(runner, dir)
			d.Atomic = tc.atomic
			d.Parallel = tc.parallel

			written, err := d.Run(context.Background())
			require.NoError(t, err)
			require.Len(t, written, 8)
			assert.Equal(t, allFiles, existing(t, dir))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 8, "no staging files left behind")

			data, err := os.ReadFile(filepath.Join(dir, "auto-skip.h"))
			require.NoError(t, err)
			assert.Equal(t, "/* skip-header */\n", string(data))
		})
	}
}

func TestDriverSequentialOrder(t *testing.T) {
	runner := scriptedRunner(t)
	_, err := newDriver(runner, t.TempDir()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"./generate -g fetch-ds-header auto/scheme.tlo",
		"./generate -g fetch-ds auto/scheme.tlo",
		"./generate -g free-ds-header auto/scheme.tlo",
		"./generate -g free-ds auto/scheme.tlo",
		"./generate -g skip-header auto/scheme.tlo",
		"./generate -g skip auto/scheme.tlo",
		"./generate -g types-header auto/scheme.tlo",
		"./generate -g types auto/scheme.tlo",
	}, runner.Calls())
}

func TestDriverFailFast(t *testing.T) {
	type testCase struct {
		name          string
		atomic        bool
		parallel      int
		expectedFiles []string
		expectedCalls int
	}

	testCases := []testCase{
		{name: "sequential", expectedFiles: allFiles[:2], expectedCalls: 3},
		{name: "atomic", atomic: true, expectedFiles: nil, expectedCalls: 3},
		{name: "parallel", parallel: 8, expectedFiles: allFiles[:2], expectedCalls: 8},
		{name: "parallel atomic", parallel: 8, atomic: true, expectedFiles: nil, expectedCalls: 8},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			runner := scriptedRunner(t).
				Respond(htesting.ToolResponse{Stdout: "half", ExitCode: 5}, "./generate", "-g", "free-ds-header", "auto/scheme.tlo")
			d := newDriver(runner, dir)
			d.Atomic = tc.atomic
			d.Parallel = tc.parallel

			_, err := d.Run(context.Background())

			var te *errs.ToolError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, 5, errs.ExitCode(err))
			assert.Equal(t, tc.expectedFiles, existing(t, dir))
			assert.Len(t, runner.Calls(), tc.expectedCalls)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, len(tc.expectedFiles))
		})
	}
}

func TestDriverParallelReportsFirstInKindOrder(t *testing.T) {
	dir := t.TempDir()
	runner := scriptedRunner(t).
		Respond(htesting.ToolResponse{ExitCode: 9}, "./generate", "-g", "types", "auto/scheme.tlo").
		Respond(htesting.ToolResponse{ExitCode: 3}, "./generate", "-g", "skip-header", "auto/scheme.tlo")
	d := newDriver(runner, dir)
	d.Parallel = 8

	_, err := d.Run(context.Background())
	assert.Equal(t, 3, errs.ExitCode(err))
	assert.Equal(t, allFiles[:4], existing(t, dir))
}
