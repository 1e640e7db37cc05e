package mimetable_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgl-library/tglgen/internal/codegen/mimetable"
)

const sample = `# media types
text/html htm html

TEXT/PLAIN TXT
bogus
image/jpeg jpeg jpg jpe
image/pjpeg jpg
text/html html shtml
`

func TestParse(t *testing.T) {
	records, malformed, err := mimetable.Parse(strings.NewReader(sample))
	require.NoError(t, err)

	require.Len(t, records, 5)
	assert.Equal(t, mimetable.Record{MimeType: "text/html", Extensions: []string{"htm", "html"}, Line: 2}, records[0])
	assert.Equal(t, mimetable.Record{MimeType: "text/plain", Extensions: []string{"txt"}, Line: 4}, records[1])

	require.Len(t, malformed, 1)
	assert.Equal(t, 5, malformed[0].Line)
	assert.Equal(t, "bogus", malformed[0].Text)
}

func TestBuildLastWriteWins(t *testing.T) {
	records, _, err := mimetable.Parse(strings.NewReader(sample))
	require.NoError(t, err)
	tables := mimetable.Build(records)

	assert.Equal(t, map[string]string{
		"text/html":   "html",
		"text/plain":  "txt",
		"image/jpeg":  "jpeg",
		"image/pjpeg": "jpg",
	}, tables.MimeToExtension)

	assert.Equal(t, map[string]string{
		"htm":   "text/html",
		"html":  "text/html",
		"shtml": "text/html",
		"txt":   "text/plain",
		"jpeg":  "image/jpeg",
		"jpg":   "image/pjpeg",
		"jpe":   "image/jpeg",
	}, tables.ExtensionToMime)
}

func TestSingleLine(t *testing.T) {
	tables, err := mimetable.Load(slog.New(slog.DiscardHandler), strings.NewReader("text/html htm html\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"text/html": "htm"}, tables.MimeToExtension)
	assert.Equal(t, map[string]string{"htm": "text/html", "html": "text/html"}, tables.ExtensionToMime)
}

func TestMalformedLineWarnsAndSkips(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	tables, err := mimetable.Load(logger, strings.NewReader("bogus\n"))
	require.NoError(t, err)
	assert.Empty(t, tables.MimeToExtension)
	assert.Empty(t, tables.ExtensionToMime)
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "bogus")
}

func TestCaseInsensitive(t *testing.T) {
	upper, err := mimetable.Load(slog.New(slog.DiscardHandler), strings.NewReader("TEXT/HTML HTM\n"))
	require.NoError(t, err)
	lower, err := mimetable.Load(slog.New(slog.DiscardHandler), strings.NewReader("text/html htm\n"))
	require.NoError(t, err)
	assert.Equal(t, lower, upper)
}

func TestLookups(t *testing.T) {
	records, _, err := mimetable.Parse(strings.NewReader(sample))
	require.NoError(t, err)
	tables := mimetable.Build(records)

	assert.Equal(t, "html", tables.ExtensionByMimeType("Text/HTML"))
	assert.Equal(t, "", tables.ExtensionByMimeType("video/unknown"))
	assert.Equal(t, "text/plain", tables.MimeTypeByExtension("TXT"))
	assert.Equal(t, mimetable.DefaultMimeType, tables.MimeTypeByExtension("zzz"))
	assert.Equal(t, "image/jpeg", tables.MimeTypeByFilename("photo.JPEG"))
	assert.Equal(t, mimetable.DefaultMimeType, tables.MimeTypeByFilename("README"))
	assert.Equal(t, mimetable.DefaultMimeType, tables.MimeTypeByFilename("trailing."))
}

func TestWriteSource(t *testing.T) {
	tables, err := mimetable.Load(slog.New(slog.DiscardHandler), strings.NewReader("text/html htm html\nimage/gif gif\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, mimetable.WriteSource(&buf, "mime.types", tables))
	out := buf.String()

	assert.Contains(t, out, "/* Auto-generated by tglgen from mime.types. Do not edit. */")
	assert.Contains(t, out, "s_mime_to_extension = {\n"+
		"    { \"image/gif\", \"gif\" },\n"+
		"    { \"text/html\", \"htm\" },\n"+
		"};\n")
	assert.Contains(t, out, "s_extension_to_mime = {\n"+
		"    { \"gif\", \"image/gif\" },\n"+
		"    { \"htm\", \"text/html\" },\n"+
		"    { \"html\", \"text/html\" },\n"+
		"};\n")
	assert.Equal(t, 2, strings.Count(out, "tgl_mime_less> s_"), "both tables share one comparator")
}

func TestWriteSourceEscapes(t *testing.T) {
	tables := mimetable.Build([]mimetable.Record{{MimeType: `a"b`, Extensions: []string{`c\d`}}})

	var buf bytes.Buffer
	require.NoError(t, mimetable.WriteSource(&buf, "x", tables))
	assert.Contains(t, buf.String(), `{ "a\"b", "c\\d" },`)
}

func TestSorted(t *testing.T) {
	got := mimetable.Sorted(map[string]string{"b": "2", "a": "1", "ab": "3"})
	assert.Equal(t, []mimetable.Entry{{Key: "a", Value: "1"}, {Key: "ab", Value: "3"}, {Key: "b", Value: "2"}}, got)
}
