// CLAUDE:SUMMARY In-process callback sink delivering artifacts via a Go function call.
package sink

import "context"

// DeliverFunc receives each artifact.
type DeliverFunc func(ctx context.Context, a Artifact) error

// Callback hands artifacts to a function in the same process, with no
// serialisation. The API and MCP surfaces use it to collect results.
type Callback struct {
	fn DeliverFunc
}

// NewCallback creates a Callback sink. fn may be nil.
func NewCallback(fn DeliverFunc) *Callback {
	return &Callback{fn: fn}
}

func (c *Callback) Deliver(ctx context.Context, a Artifact) error {
	if c.fn != nil {
		return c.fn(ctx, a)
	}
	return nil
}

func (c *Callback) Close() error { return nil }
