package sink

import (
	"context"
	"log/slog"
)

// Router fans an artifact out to every sink. One failing sink does not
// stop the others; failures are logged and the first one is returned.
type Router struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewRouter creates a fan-out router.
func NewRouter(logger *slog.Logger, sinks ...Sink) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{sinks: sinks, logger: logger}
}

// Add appends a sink.
func (r *Router) Add(s Sink) {
	r.sinks = append(r.sinks, s)
}

// Len returns the number of sinks.
func (r *Router) Len() int { return len(r.sinks) }

func (r *Router) Deliver(ctx context.Context, a Artifact) error {
	var firstErr error
	for _, s := range r.sinks {
		if err := s.Deliver(ctx, a); err != nil {
			r.logger.Warn("sink: deliver failed", "id", a.ID, "filename", a.Filename, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (r *Router) Close() error {
	var firstErr error
	for _, s := range r.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
