package constants

import (
	"bytes"
	"fmt"
	"io"
	"text/template"
)

// DefaultGuard is the include guard of the generated constants header.
const DefaultGuard = "__TGL_CONSTANTS_H__"

var headerTmpl = template.Must(template.New("constants").Parse(`#ifndef {{.Guard}}
#define {{.Guard}}
{{range .Constants}}#define CODE_{{.Symbol}} 0x{{.Hex}}
{{end}}#endif
`))

// WriteHeader renders consts as a guarded header.
func WriteHeader(w io.Writer, guard string, consts []Constant) error {
	if guard == "" {
		guard = DefaultGuard
	}
	data := struct {
		Guard     string
		Constants []Constant
	}{Guard: guard, Constants: consts}

	var buf bytes.Buffer
	if err := headerTmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("execute constants template: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
