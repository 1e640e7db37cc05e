package main

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/tgl-library/tglgen/internal/codegen/common"
	"github.com/tgl-library/tglgen/internal/codegen/errs"
	"github.com/tgl-library/tglgen/internal/config"
	"github.com/tgl-library/tglgen/internal/configpaths"
	"github.com/tgl-library/tglgen/internal/log"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
	"github.com/joho/godotenv"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// A .env beside the build tree may provide TGLGEN_* defaults.
	envErr := godotenv.Load()

	userCfg := findUserConfig(args)
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	version, err := common.GetVersion()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		return errs.ExitFailure
	}

	var cli config.CLI
	parser, err := kong.New(&cli,
		kong.Name("tglgen"),
		kong.Description("Schema-driven code generation for the tgl protocol library"),
		kong.Vars{"version": version},
		// Load configuration from JSON/YAML/TOML in priority order; flags/env override config values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to build command line: " + err.Error() + "\n")
		return errs.ExitFailure
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		var parseErr *kong.ParseError
		if errors.As(err, &parseErr) && parseErr.Context != nil {
			_ = parseErr.Context.PrintUsage(true)
		}
		parser.Errorf("%s", err)
		return errs.ExitCode(&errs.ArgumentError{Detail: err.Error()})
	}

	setup, console := log.SetupLogger, os.Stdout
	if cli.EmitsToStdout(ctx.Command()) {
		setup, console = log.SetupStderrLogger, os.Stderr
	}
	logger, closeFiles, err := setup(cli.Log.Level, cli.Log.File, log.Format(cli.Log.Format))
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		return errs.ExitFailure
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn("failed to load .env", "error", envErr)
	}

	transcript, closer := openTranscript(logger, console, cli.Log.ToolFile, cli.Log.Level)
	if closer != nil {
		closeFiles = append(closeFiles, closer)
	}

	ctx.Bind(logger)
	ctx.BindTo(transcript, (*log.Transcript)(nil))

	if err := ctx.Run(); err != nil {
		logger.Error("generation failed", "command", ctx.Command(), "error", err)
		return errs.ExitCode(err)
	}
	return errs.ExitOK
}

func openTranscript(logger *slog.Logger, console io.Writer, file, level string) (log.Transcript, io.Closer) {
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("failed to open tool transcript file", "file", file, "error", err)
			return log.NewTranscript(nil), nil
		}
		return log.NewTranscript(f), f
	}
	if level == "trace" {
		return log.NewTranscript(console), nil
	}
	return log.NewTranscript(nil), nil
}

func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	if v := os.Getenv("TGLGEN_CONFIG"); v != "" {
		return v
	}
	return ""
}
