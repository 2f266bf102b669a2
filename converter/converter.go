// CLAUDE:SUMMARY Conversion façade: snapshots to validated Document (ProduceWidgetTree), Document to json/html/markdown (SerializeDocument), design reference export.
// Package converter turns selected page elements into a page-builder
// document.
//
// A Converter is the pure pipeline: snapshots in, validated Document out,
// then serialisation. A Service wraps it with page acquisition (HTTP or
// Chrome), sinks and export history.
//
// Usage:
//
//	conv := converter.New(converter.Config{Logger: logger})
//	doc, err := conv.ProduceWidgetTree(snaps, document.PageMeta{SourceURL: u})
//	out, err := conv.SerializeDocument(doc, "json")
package converter

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/domforge/classify"
	"github.com/hazyhaar/domforge/document"
	"github.com/hazyhaar/domforge/export"
	"github.com/hazyhaar/domforge/idgen"
	"github.com/hazyhaar/domforge/schema"
	"github.com/hazyhaar/domforge/snapshot"
	"github.com/hazyhaar/domforge/style"
	"github.com/hazyhaar/domforge/widget"
)

// ErrNoSelection is returned when no element matched any selector.
var ErrNoSelection = errors.New("converter: no element matched the selectors")

// Options bounds snapshots and mapping.
type Options struct {
	MaxDepth int               // default 5
	MaxText  int               // default 200
	MaxHTML  int               // default 500
	Viewport snapshot.Viewport // static captures only; default 1440x900
	Title    string            // default document title
	NewID    idgen.Generator   // widget ids; default idgen.Widget()
	Now      func() time.Time
	Logger   *slog.Logger
}

func (o *Options) defaults() {
	if o.MaxDepth <= 0 {
		o.MaxDepth = 5
	}
	if o.MaxText <= 0 {
		o.MaxText = 200
	}
	if o.MaxHTML <= 0 {
		o.MaxHTML = 500
	}
	if o.Viewport.Width <= 0 {
		o.Viewport.Width = 1440
	}
	if o.Viewport.Height <= 0 {
		o.Viewport.Height = 900
	}
	if o.NewID == nil {
		o.NewID = idgen.Widget()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Converter runs the element-to-document pipeline. It is safe for
// concurrent use: every call builds its own Mapper.
type Converter struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Converter.
func New(opts Options) *Converter {
	opts.defaults()
	return &Converter{opts: opts, logger: opts.Logger}
}

// ProduceWidgetTree maps every snapshot, wraps the nodes in the root
// container and validates the result. An empty selection gives a document
// whose root container has no elements.
func (c *Converter) ProduceWidgetTree(snaps []snapshot.ElementSnapshot, meta document.PageMeta) (schema.Document, error) {
	// The root container is one level of the bound.
	m := widget.New(
		widget.WithMaxDepth(max(c.opts.MaxDepth-1, 1)),
		widget.WithIDGenerator(c.opts.NewID),
		widget.WithFaultHandler(c.logFault),
	)
	nodes := make([]schema.WidgetNode, 0, len(snaps))
	for i := range snaps {
		nodes = append(nodes, m.Map(&snaps[i]))
	}

	if meta.Title == "" {
		meta.Title = c.opts.Title
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = c.opts.Now()
	}
	doc, err := document.Validate(document.Assemble(nodes, meta, c.opts.NewID))
	if err != nil {
		return schema.Document{}, fmt.Errorf("converter: validate: %w", err)
	}
	c.logger.Debug("converter: mapped elements", "elements", len(snaps), "nodes", countNodes(doc))
	return doc, nil
}

// SerializeDocument renders doc as json, html or markdown.
func (c *Converter) SerializeDocument(doc schema.Document, format string) (string, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return "", err
	}
	return export.Render(doc, f)
}

// DesignReference exports every snapshot with its role, layout, box and
// normalised style.
func (c *Converter) DesignReference(snaps []snapshot.ElementSnapshot, sourceURL string) ([]byte, error) {
	entries := make([]export.ReferenceEntry, len(snaps))
	for i := range snaps {
		s := &snaps[i]
		v := classify.Classify(s)
		st := style.Extract(s, s.Viewport.Width, s.PageURL)
		for _, f := range st.Faults {
			c.logger.Debug("converter: style fault", "tag", s.TagName, "section", f)
		}
		entries[i] = export.ReferenceEntry{
			ID:          s.ID,
			TagName:     s.TagName,
			Role:        string(v.Role),
			Layout:      string(v.Layout),
			WidgetType:  v.Hint.WireName(),
			BoundingBox: s.BoundingBox,
			Style:       st,
		}
	}
	return export.Reference(entries, sourceURL, c.opts.Now())
}

// Result is a serialised conversion.
type Result struct {
	Title       string `json:"title"`
	Format      string `json:"format"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
	Elements    int    `json:"elements"`
	Nodes       int    `json:"nodes"`
}

// Convert runs ProduceWidgetTree then SerializeDocument.
func (c *Converter) Convert(snaps []snapshot.ElementSnapshot, meta document.PageMeta, format string) (*Result, schema.Document, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, schema.Document{}, err
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = c.opts.Now()
	}
	doc, err := c.ProduceWidgetTree(snaps, meta)
	if err != nil {
		return nil, schema.Document{}, err
	}
	content, err := export.Render(doc, f)
	if err != nil {
		return nil, schema.Document{}, err
	}
	return &Result{
		Title:       doc.Title,
		Format:      string(f),
		Filename:    export.Filename(meta.SourceURL, f, meta.CreatedAt),
		ContentType: f.ContentType(),
		Content:     content,
		Elements:    len(snaps),
		Nodes:       countNodes(doc),
	}, doc, nil
}

// ValidateDocument normalises a document produced elsewhere and renders it
// in format. Decode failures and schema.ValidationError are returned as is.
func (c *Converter) ValidateDocument(raw []byte, format string) (*Result, schema.Document, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, schema.Document{}, err
	}
	doc, err := document.ValidateJSON(raw)
	if err != nil {
		return nil, schema.Document{}, err
	}
	content, err := export.Render(doc, f)
	if err != nil {
		return nil, schema.Document{}, err
	}
	return &Result{
		Title:       doc.Title,
		Format:      string(f),
		Filename:    export.Filename(doc.SourceURL, f, c.opts.Now()),
		ContentType: f.ContentType(),
		Content:     content,
		Elements:    len(doc.Content),
		Nodes:       countNodes(doc),
	}, doc, nil
}

func (c *Converter) logFault(f widget.Fault) {
	switch f.Stage {
	case "style":
		c.logger.Debug("converter: style fault", "tag", f.TagName, "error", f.Err)
	default:
		c.logger.Warn("converter: mapping fault, fallback substituted",
			"tag", f.TagName, "widget", f.WidgetType, "error", f.Err)
	}
}

func countNodes(doc schema.Document) int {
	n := 0
	for i := range doc.Content {
		n += doc.Content[i].Count()
	}
	return n
}
