package converter

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/hazyhaar/domforge/internal/sink"
)

// Sink is the output interface for finished exports.
type Sink = sink.Sink

// Artifact is one serialised export.
type Artifact = sink.Artifact

// NewStdoutSink writes to w. In raw mode only the content is written,
// otherwise one JSON line per artifact.
func NewStdoutSink(w io.Writer, raw bool) Sink {
	return sink.NewStdout(w, raw)
}

// NewFileSink writes each artifact under dir using its filename.
func NewFileSink(dir string) Sink {
	return sink.NewFile(dir)
}

// NewWebhookSink creates a webhook POST sink with retry.
func NewWebhookSink(url string, logger *slog.Logger) Sink {
	return sink.NewWebhook(url, sink.WithWebhookLogger(logger))
}

// NewClipboardSink copies the content to the system clipboard.
func NewClipboardSink() Sink {
	return sink.NewClipboard()
}

// NewCallbackSink delivers artifacts in-process, without serialisation.
func NewCallbackSink(fn func(ctx context.Context, a Artifact) error) Sink {
	return sink.NewCallback(fn)
}

// BuildSinks instantiates the configured sinks. A clipboard sink on a host
// without clipboard support is skipped with a warning.
func BuildSinks(cfgs []SinkConfig, w io.Writer, logger *slog.Logger) ([]Sink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var out []Sink
	for i, sc := range cfgs {
		switch sc.Type {
		case "stdout":
			out = append(out, NewStdoutSink(w, sc.Raw))
		case "file":
			out = append(out, NewFileSink(sc.Dir))
		case "webhook":
			out = append(out, NewWebhookSink(sc.URL, logger))
		case "clipboard":
			c := sink.NewClipboard()
			if !c.Available() {
				logger.Warn("converter: clipboard unavailable, sink skipped", "index", i)
				continue
			}
			out = append(out, c)
		default:
			return nil, fmt.Errorf("converter: sink %d: unknown type %q", i, sc.Type)
		}
	}
	return out, nil
}
