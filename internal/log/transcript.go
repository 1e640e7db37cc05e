package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Transcript records what external tools were run and what they produced.
type Transcript interface {
	Record(tool string, args []string, stream string, data []byte)
}

// transcript implements Transcript with thread-safe writes.
type transcript struct {
	w  io.Writer
	mu sync.Mutex
}

// NewTranscript creates a new Transcript. If writer is nil, returns a no-op transcript.
func NewTranscript(w io.Writer) Transcript {
	return &transcript{w: w}
}

// Record emits a header line with timestamp, command line and byte count,
// followed by the captured stream indented by one tab.
func (t *transcript) Record(tool string, args []string, stream string, data []byte) {
	if t.w == nil {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s: %d bytes\n",
		time.Now().Format("2006/01/02 15:04:05"),
		strings.TrimSpace(tool+" "+strings.Join(args, " ")),
		stream,
		len(data))
	body := strings.TrimSuffix(string(data), "\n")
	if body != "" {
		for _, line := range strings.Split(body, "\n") {
			b.WriteByte('\t')
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	t.mu.Lock()
	_, _ = io.WriteString(t.w, b.String())
	t.mu.Unlock()
}
