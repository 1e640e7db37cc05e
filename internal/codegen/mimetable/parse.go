// Package mimetable turns the flat media type mapping file into the static
// lookup tables compiled into the library.
package mimetable

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/tgl-library/tglgen/internal/codegen/errs"
)

// DefaultMimeType is returned for unknown extensions and filenames.
const DefaultMimeType = "application/octet-stream"

// Record is one mapping line after normalization.
type Record struct {
	MimeType   string
	Extensions []string
	Line       int
}

// Tables holds both lookup directions.
type Tables struct {
	// MimeToExtension maps a media type to the first extension of its last line.
	MimeToExtension map[string]string
	// ExtensionToMime maps every extension to the media type of the last line
	// that listed it.
	ExtensionToMime map[string]string
}

// Parse reads r and returns its records in file order together with the
// lines that were skipped for having fewer than two tokens.
func Parse(r io.Reader) ([]Record, []*errs.MalformedLineError, error) {
	var records []Record
	var malformed []*errs.MalformedLineError

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tokens := strings.Fields(strings.ToLower(line))
		if len(tokens) < 2 {
			malformed = append(malformed, &errs.MalformedLineError{Line: lineNo, Text: line})
			continue
		}
		records = append(records, Record{MimeType: tokens[0], Extensions: tokens[1:], Line: lineNo})
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("read mime mapping: %w", err)
	}
	return records, malformed, nil
}

// Build folds records into tables, later records overwriting earlier ones.
func Build(records []Record) *Tables {
	t := &Tables{
		MimeToExtension: make(map[string]string),
		ExtensionToMime: make(map[string]string),
	}
	for _, rec := range records {
		t.MimeToExtension[rec.MimeType] = rec.Extensions[0]
		for _, ext := range rec.Extensions {
			t.ExtensionToMime[ext] = rec.MimeType
		}
	}
	return t
}

// Load parses r, logs a warning for each malformed line and builds the tables.
func Load(logger *slog.Logger, r io.Reader) (*Tables, error) {
	records, malformed, err := Parse(r)
	if err != nil {
		return nil, err
	}
	for _, m := range malformed {
		logger.Warn("Skipping malformed mime mapping line", "line", m.Line, "text", m.Text)
	}
	return Build(records), nil
}

// ExtensionByMimeType returns the preferred extension of a media type, or "".
func (t *Tables) ExtensionByMimeType(mimeType string) string {
	return t.MimeToExtension[strings.ToLower(mimeType)]
}

// MimeTypeByExtension returns the media type of ext, or DefaultMimeType.
func (t *Tables) MimeTypeByExtension(ext string) string {
	if m, ok := t.ExtensionToMime[strings.ToLower(ext)]; ok {
		return m
	}
	return DefaultMimeType
}

// MimeTypeByFilename looks up the extension after the last dot of name.
func (t *Tables) MimeTypeByFilename(name string) string {
	ext := path.Ext(name)
	if len(ext) < 2 {
		return DefaultMimeType
	}
	return t.MimeTypeByExtension(ext[1:])
}

// Entry is a key/value pair of a table.
type Entry struct {
	Key   string
	Value string
}

// Sorted returns the entries of m in byte order of their keys. Keys are
// already lower case, so this matches the emitted case-insensitive comparator.
func Sorted(m map[string]string) []Entry {
	out := make([]Entry, 0, len(m))
	for k, v := range m {
		out = append(out, Entry{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
