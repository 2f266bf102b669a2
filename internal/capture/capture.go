// CLAUDE:SUMMARY Live capture: evaluates an embedded script in a browser tab that serialises selected elements with computed styles, then snapshots them.
// Package capture snapshots selected elements of a rendered page.
//
// The page does the walking: one script call returns every selected element
// with its computed styles, box and children as JSON. Nothing is read back
// from the live DOM afterwards.
package capture

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/hazyhaar/domforge/internal/browser"
	"github.com/hazyhaar/domforge/snapshot"
)

//go:embed capture.js
var captureJS string

// Options bounds a capture.
type Options struct {
	MaxDepth int
	MaxText  int
	MaxHTML  int
	Now      func() time.Time
}

// Result is a finished capture.
type Result struct {
	Title     string
	Viewport  snapshot.Viewport
	Snapshots []snapshot.ElementSnapshot
}

// Evaluator runs a script function in a page. *browser.Tab satisfies it.
type Evaluator interface {
	Eval(ctx context.Context, js string, args ...any) (string, error)
}

var _ Evaluator = (*browser.Tab)(nil)

// Capture snapshots every element matching selectors on the page behind ev.
func Capture(ctx context.Context, ev Evaluator, pageURL string, selectors []string, opts Options) (*Result, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 5
	}
	raw, err := ev.Eval(ctx, captureJS, selectors, snapshot.StyleProperties, opts.MaxDepth)
	if err != nil {
		return nil, fmt.Errorf("capture: eval: %w", err)
	}
	tree, err := ParseTree(raw)
	if err != nil {
		return nil, err
	}
	return Build(tree, pageURL, opts), nil
}

// Build turns a decoded tree into snapshots.
func Build(tree *Tree, pageURL string, opts Options) *Result {
	res := &Result{Title: tree.Title, Viewport: tree.Viewport}
	co := snapshot.CaptureOptions{
		MaxDepth: opts.MaxDepth,
		MaxText:  opts.MaxText,
		MaxHTML:  opts.MaxHTML,
		Viewport: tree.Viewport,
		PageURL:  pageURL,
		Now:      opts.Now,
	}
	for _, n := range tree.Elements {
		if n == nil {
			continue
		}
		res.Snapshots = append(res.Snapshots, snapshot.Capture(n, co))
	}
	return res
}
