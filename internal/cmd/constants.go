package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tgl-library/tglgen/internal/codegen/constants"
	"github.com/tgl-library/tglgen/internal/codegen/errs"
)

// Constants prints the opcode header for an already preprocessed schema.
type Constants struct {
	Input                 string `arg:"" name:"preprocessed" help:"Output of 'tl-parser -E'"`
	Output                string `help:"Destination file (defaults to stdout)" short:"o"`
	Guard                 string `help:"Include guard" default:"__TGL_CONSTANTS_H__"`
	AllowDuplicateSymbols bool   `help:"Emit colliding CODE_ symbols with a warning instead of failing"`
}

// Run is called by Kong when the constants command is executed.
func (c *Constants) Run(logger *slog.Logger) error {
	return c.Execute(logger, os.Stdout)
}

func (c *Constants) Execute(logger *slog.Logger, stdout io.Writer) error {
	in, err := os.Open(c.Input)
	if err != nil {
		return &errs.IOError{Op: "open", Path: c.Input, Err: err}
	}
	defer in.Close()

	consts, err := constants.Extract(in)
	if err != nil {
		return err
	}
	if c.AllowDuplicateSymbols {
		for _, d := range constants.Duplicates(consts) {
			logger.Warn("Duplicate constant symbol", "symbol", "CODE_"+d.Symbol, "decl", d.Decl, "line", d.Line)
		}
	} else if err := constants.CheckDuplicates(consts); err != nil {
		return fmt.Errorf("%s: %w", c.Input, err)
	}

	return writeOutput(c.Output, stdout, func(w io.Writer) error {
		return constants.WriteHeader(w, c.Guard, consts)
	})
}

// writeOutput renders into dest, or into stdout when dest is empty.
func writeOutput(dest string, stdout io.Writer, render func(io.Writer) error) error {
	if dest == "" {
		return render(stdout)
	}
	f, err := os.Create(dest)
	if err != nil {
		return &errs.IOError{Op: "create", Path: dest, Err: err}
	}
	if err := render(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return &errs.IOError{Op: "write", Path: dest, Err: err}
	}
	return nil
}
