// CLAUDE:SUMMARY Copies artifact content to the system clipboard.
package sink

import (
	"context"
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
)

// Clipboard puts the latest artifact on the system clipboard, the way the
// browser extension's copy button did. Later deliveries overwrite earlier.
type Clipboard struct {
	mu    sync.Mutex
	write func(string) error
}

// NewClipboard creates a Clipboard sink.
func NewClipboard() *Clipboard {
	return &Clipboard{write: clipboard.WriteAll}
}

// Available reports whether a clipboard utility was found on this host.
func (c *Clipboard) Available() bool {
	return !clipboard.Unsupported
}

func (c *Clipboard) Deliver(_ context.Context, a Artifact) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.write(a.Content); err != nil {
		return fmt.Errorf("clipboard sink: %w", err)
	}
	return nil
}

func (c *Clipboard) Close() error { return nil }
