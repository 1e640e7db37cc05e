package mimetable

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"
)

var sourceTmpl = template.Must(template.New("mime").Funcs(template.FuncMap{
	"cstr": cQuote,
}).Parse(`/* Auto-generated by tglgen from {{.Source}}. Do not edit. */

struct tgl_mime_less {
    bool operator()(const char* a, const char* b) const
    {
        for (; *a && *b; ++a, ++b) {
            int ca = std::tolower(static_cast<unsigned char>(*a));
            int cb = std::tolower(static_cast<unsigned char>(*b));
            if (ca != cb) {
                return ca < cb;
            }
        }
        return *a == 0 && *b != 0;
    }
};

static const std::map<const char*, const char*, tgl_mime_less> s_mime_to_extension = {
{{- range .MimeToExtension}}
    { {{cstr .Key}}, {{cstr .Value}} },
{{- end}}
};

static const std::map<const char*, const char*, tgl_mime_less> s_extension_to_mime = {
{{- range .ExtensionToMime}}
    { {{cstr .Key}}, {{cstr .Value}} },
{{- end}}
};
`))

// WriteSource renders t as a C++ fragment defining s_mime_to_extension and
// s_extension_to_mime. source names the mapping file in the banner.
func WriteSource(w io.Writer, source string, t *Tables) error {
	data := struct {
		Source          string
		MimeToExtension []Entry
		ExtensionToMime []Entry
	}{
		Source:          source,
		MimeToExtension: Sorted(t.MimeToExtension),
		ExtensionToMime: Sorted(t.ExtensionToMime),
	}

	var buf bytes.Buffer
	if err := sourceTmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("execute mime template: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// cQuote renders s as a C string literal.
func cQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&b, "\\%03o", c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
