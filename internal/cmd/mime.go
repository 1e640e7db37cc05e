package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/tgl-library/tglgen/internal/codegen/errs"
	"github.com/tgl-library/tglgen/internal/codegen/mimetable"
)

// Mime emits the media type lookup tables for a mapping file.
type Mime struct {
	Input  string `arg:"" name:"mapping" help:"Mapping file: '<type> <ext> [<ext>...]' per line"`
	Output string `help:"Destination file (defaults to stdout)" short:"o"`
}

// Run is called by Kong when the mime command is executed.
func (m *Mime) Run(logger *slog.Logger) error {
	return m.Execute(logger, os.Stdout)
}

func (m *Mime) Execute(logger *slog.Logger, stdout io.Writer) error {
	in, err := os.Open(m.Input)
	if err != nil {
		return &errs.IOError{Op: "open", Path: m.Input, Err: err}
	}
	defer in.Close()

	tables, err := mimetable.Load(logger, in)
	if err != nil {
		return err
	}
	logger.Debug("Loaded mime mapping", "types", len(tables.MimeToExtension), "extensions", len(tables.ExtensionToMime))

	return writeOutput(m.Output, stdout, func(w io.Writer) error {
		return mimetable.WriteSource(w, m.Input, tables)
	})
}
