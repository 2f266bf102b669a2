// CLAUDE:SUMMARY Writes artifacts to an io.Writer (defaults to stdout), raw or as JSON-line envelopes.
package sink

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
)

// Stdout writes to an io.Writer (default os.Stdout). In raw mode only the
// artifact content is written; otherwise each artifact is one JSON line.
type Stdout struct {
	mu  sync.Mutex
	w   io.Writer
	raw bool
	enc *json.Encoder
}

// NewStdout creates a Stdout sink. If w is nil, os.Stdout is used.
func NewStdout(w io.Writer, raw bool) *Stdout {
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Stdout{w: w, raw: raw, enc: enc}
}

func (s *Stdout) Deliver(_ context.Context, a Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.raw {
		content := a.Content
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		_, err := io.WriteString(s.w, content)
		return err
	}
	return s.enc.Encode(envelope{Type: "export", Data: a})
}

func (s *Stdout) Close() error { return nil }
