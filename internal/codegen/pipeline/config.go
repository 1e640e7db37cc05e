package pipeline

import (
	"path/filepath"

	"github.com/tgl-library/tglgen/internal/codegen/artifacts"
	"github.com/tgl-library/tglgen/internal/codegen/constants"
	"github.com/tgl-library/tglgen/internal/codegen/schema"
	"github.com/tgl-library/tglgen/internal/host"
)

// Output names inside the auto directory.
const (
	SchemaFile       = "scheme.tl"
	PreprocessedFile = "scheme2.tl"
	CompiledFile     = "scheme.tlo"
	ConstantsFile    = "constants.h"
	MimeDataFile     = "tgl_mime_data.cpp"
)

// Config carries every setting of one pipeline run.
type Config struct {
	SourceDir string
	BuildDir  string
	// AutoDir is the output directory, relative to BuildDir.
	AutoDir string
	CC      string

	// Compiler and Generator name prebuilt tools. When both are set the
	// bootstrap step is skipped.
	Compiler  string
	Generator string

	// Fragments are the schema sources in concatenation order. Empty means
	// schema.DefaultFragments(SourceDir).
	Fragments []string
	Kinds     []string

	// MimeTypes is the mapping file, relative to SourceDir unless absolute.
	// Empty disables the mime table stage.
	MimeTypes string

	ConstantsGuard        string
	AllowDuplicateSymbols bool
	Atomic                bool
	Parallel              int
	Incremental           bool

	Platform host.Platform
}

func (c *Config) autoDir() string {
	if c.AutoDir == "" {
		return "auto"
	}
	return c.AutoDir
}

// autoPath is the path of name relative to BuildDir, as passed to tools.
func (c *Config) autoPath(name string) string {
	return filepath.Join(c.autoDir(), name)
}

// outPath is the absolute location of name in the output directory.
func (c *Config) outPath(name string) string {
	return filepath.Join(c.BuildDir, c.autoDir(), name)
}

func (c *Config) fragments() []string {
	if len(c.Fragments) == 0 {
		return schema.DefaultFragments(c.SourceDir)
	}
	return c.Fragments
}

func (c *Config) kinds() []string {
	if len(c.Kinds) == 0 {
		return artifacts.DefaultKinds
	}
	return c.Kinds
}

func (c *Config) mimeInput() string {
	if c.MimeTypes == "" || filepath.IsAbs(c.MimeTypes) {
		return c.MimeTypes
	}
	return filepath.Join(c.SourceDir, c.MimeTypes)
}

func (c *Config) cc() string {
	if c.CC == "" {
		return "cc"
	}
	return c.CC
}

func (c *Config) guard() string {
	if c.ConstantsGuard == "" {
		return constants.DefaultGuard
	}
	return c.ConstantsGuard
}

// Outputs lists every file a successful run produces.
func (c *Config) Outputs() []string {
	out := []string{c.outPath(SchemaFile), c.outPath(ConstantsFile), c.outPath(CompiledFile)}
	for _, t := range artifacts.Targets(c.kinds()) {
		out = append(out, c.outPath(t.FileName()))
	}
	if c.MimeTypes != "" {
		out = append(out, c.outPath(MimeDataFile))
	}
	return out
}
