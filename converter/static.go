package converter

import (
	"bytes"

	"github.com/hazyhaar/domforge/document"
	"github.com/hazyhaar/domforge/internal/htmldom"
	"github.com/hazyhaar/domforge/schema"
	"github.com/hazyhaar/domforge/snapshot"
)

// StaticCapture snapshots the elements of a static HTML document that match
// selectors. No selectors means the whole body. It also returns the
// document's <title>.
func (c *Converter) StaticCapture(rawHTML []byte, pageURL string, selectors []string) ([]snapshot.ElementSnapshot, string, error) {
	doc, err := htmldom.Parse(bytes.NewReader(rawHTML))
	if err != nil {
		return nil, "", err
	}
	els, err := htmldom.Select(doc, selectorsOrBody(selectors))
	if err != nil {
		return nil, "", err
	}

	opts := snapshot.CaptureOptions{
		MaxDepth: c.opts.MaxDepth,
		MaxText:  c.opts.MaxText,
		MaxHTML:  c.opts.MaxHTML,
		Viewport: c.opts.Viewport,
		PageURL:  pageURL,
		Now:      c.opts.Now,
	}
	snaps := make([]snapshot.ElementSnapshot, 0, len(els))
	for _, el := range els {
		snaps = append(snaps, snapshot.Capture(el, opts))
	}
	return snaps, htmldom.Title(doc), nil
}

// ConvertHTML converts the selected parts of a static HTML document. It
// returns ErrNoSelection when nothing matched.
func (c *Converter) ConvertHTML(rawHTML []byte, meta document.PageMeta, selectors []string) (schema.Document, error) {
	snaps, title, err := c.StaticCapture(rawHTML, meta.SourceURL, selectors)
	if err != nil {
		return schema.Document{}, err
	}
	if len(snaps) == 0 {
		return schema.Document{}, ErrNoSelection
	}
	if meta.Title == "" {
		meta.Title = title
	}
	return c.ProduceWidgetTree(snaps, meta)
}
