// Package config declares the command line and configuration file surface.
package config

import (
	"strings"

	"github.com/alecthomas/kong"

	"github.com/tgl-library/tglgen/internal/cmd"
)

// Log holds the logging flags shared by every command.
type Log struct {
	Level    string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"TGLGEN_LOG_LEVEL"`
	File     string `help:"Also write logs to this file" env:"TGLGEN_LOG_FILE"`
	Format   string `help:"Console log format" enum:"auto,text,json" default:"auto" env:"TGLGEN_LOG_FORMAT"`
	ToolFile string `help:"Write a transcript of external tool invocations to this file" env:"TGLGEN_LOG_TOOL_FILE"`
}

// CLI is the root of the kong grammar.
type CLI struct {
	Config  string           `help:"Configuration file (json, yaml or toml)" env:"TGLGEN_CONFIG"`
	Version kong.VersionFlag `help:"Print the version and exit"`
	Log     Log              `embed:"" prefix:"log."`

	Generate  cmd.Generate      `cmd:"" help:"Run the full schema generation pipeline"`
	Constants cmd.Constants     `cmd:"" help:"Print the opcode constants header for a preprocessed schema"`
	Mime      cmd.Mime          `cmd:"" help:"Emit the mime type lookup tables for a mapping file"`
	ConfigCmd cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration file helpers"`
}

// EmitsToStdout reports whether command writes its generated output to stdout.
func (c *CLI) EmitsToStdout(command string) bool {
	name, _, _ := strings.Cut(command, " ")
	switch name {
	case "constants":
		return c.Constants.Output == ""
	case "mime":
		return c.Mime.Output == ""
	}
	return false
}
