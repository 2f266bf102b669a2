// Package sink defines output backends for finished exports.
package sink

import (
	"context"
	"time"
)

// Artifact is one serialised export ready for delivery.
type Artifact struct {
	ID          string    `json:"id"`
	PageID      string    `json:"page_id,omitempty"`
	PageURL     string    `json:"page_url,omitempty"`
	Title       string    `json:"title"`
	Format      string    `json:"format"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Content     string    `json:"content"`
	Elements    int       `json:"elements"` // selected elements
	Nodes       int       `json:"nodes"`    // widget nodes produced
	CreatedAt   time.Time `json:"created_at"`
}

// Sink delivers artifacts to a backend (stdout, file, clipboard, webhook,
// in-process callback).
type Sink interface {
	Deliver(ctx context.Context, a Artifact) error
	Close() error
}

type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
