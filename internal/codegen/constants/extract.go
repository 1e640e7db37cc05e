package constants

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/tgl-library/tglgen/internal/codegen/errs"
)

// Constant is one opcode define.
type Constant struct {
	Symbol string
	Hex    string
	Decl   string
	Line   int
}

// ParseLine extracts the declaration name and hex opcode from one line of
// preprocessed schema. ok is false for lines that carry no opcode.
func ParseLine(line string) (decl, hex string, ok bool) {
	line = strings.TrimSpace(line)
	decl, rest, found := strings.Cut(line, "#")
	if !found {
		return "", "", false
	}
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		rest = rest[:i]
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", "", false
	}
	return decl, fields[0], true
}

// Extract scans preprocessed schema text and returns its constants in input
// order. Duplicate symbols are kept.
func Extract(r io.Reader) ([]Constant, error) {
	var out []Constant
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		decl, hex, ok := ParseLine(sc.Text())
		if !ok {
			continue
		}
		out = append(out, Constant{Symbol: SymbolName(decl), Hex: hex, Decl: decl, Line: lineNo})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan preprocessed schema: %w", err)
	}
	return out, nil
}

// ExtractBytes is Extract over an in-memory schema.
func ExtractBytes(preprocessed []byte) ([]Constant, error) {
	return Extract(bytes.NewReader(preprocessed))
}

// CheckDuplicates returns a *errs.DuplicateSymbolError for the first constant
// whose symbol was already produced by an earlier line.
func CheckDuplicates(consts []Constant) error {
	seen := make(map[string]Constant, len(consts))
	for _, c := range consts {
		if first, dup := seen[c.Symbol]; dup {
			return &errs.DuplicateSymbolError{Symbol: c.Symbol, First: first.Decl, Duplicate: c.Decl, Line: c.Line}
		}
		seen[c.Symbol] = c
	}
	return nil
}

// Duplicates lists every constant whose symbol repeats an earlier one.
func Duplicates(consts []Constant) []Constant {
	seen := make(map[string]struct{}, len(consts))
	var dups []Constant
	for _, c := range consts {
		if _, dup := seen[c.Symbol]; dup {
			dups = append(dups, c)
			continue
		}
		seen[c.Symbol] = struct{}{}
	}
	return dups
}
