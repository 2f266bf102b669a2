// CLAUDE:SUMMARY Wraps mapped nodes in the root container and normalises documents with a pure, idempotent validator.
// Package document assembles mapped nodes into an exportable Document and
// normalises documents coming from elsewhere (stored exports, API input).
package document

import (
	"time"

	"github.com/hazyhaar/domforge/cssunit"
	"github.com/hazyhaar/domforge/idgen"
	"github.com/hazyhaar/domforge/schema"
)

// PageMeta describes the page the nodes were captured from.
type PageMeta struct {
	Title     string
	SourceURL string
	CreatedAt time.Time
}

// RootSettings returns the settings of a fresh root container.
func RootSettings() schema.Settings {
	return schema.Settings{
		"flex_direction": "column",
		"content_width":  "boxed",
		"boxed_width":    cssunit.Unit{Value: 1200, Unit: cssunit.PX},
		"flex_gap": map[string]any{
			"unit": cssunit.PX, "size": 20, "column": "20", "row": "20", "isLinked": true,
		},
		"padding": map[string]any{
			"unit": cssunit.PX, "top": "20", "right": "20", "bottom": "20", "left": "20", "isLinked": true,
		},
		"_title": schema.DefaultTitle,
	}
}

// Assemble wraps nodes in a single root container. Zero nodes give a root
// with an empty elements array.
func Assemble(nodes []schema.WidgetNode, meta PageMeta, newID idgen.Generator) schema.Document {
	if newID == nil {
		newID = idgen.Widget()
	}
	children := make([]schema.WidgetNode, len(nodes))
	copy(children, nodes)
	for i := range children {
		children[i].IsInner = children[i].Kind == schema.KindContainer
	}
	title := meta.Title
	if title == "" {
		title = schema.DefaultTitle
	}
	var created int64
	if !meta.CreatedAt.IsZero() {
		created = meta.CreatedAt.UnixMilli()
	}
	return schema.Document{
		Version:      schema.Version,
		Title:        title,
		Type:         schema.DocumentType,
		PageSettings: []any{},
		Content:      []schema.WidgetNode{schema.NewContainer(newID(), RootSettings(), children, false)},
		SourceURL:    meta.SourceURL,
		CreatedAt:    created,
	}
}
