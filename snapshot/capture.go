package snapshot

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Element is the read-only DOM view a host page supplies. Implementations
// exist for a parsed static document and for the browser capture tree.
type Element interface {
	TagName() string
	Attributes() map[string]string
	ComputedStyle(prop string) string
	BoundingBox() BoundingBox
	Children() []Element
	Text() string
	InnerHTML() string
}

// StyleProperties is the set of computed properties copied into a snapshot.
var StyleProperties = []string{
	"font-family", "font-size", "font-weight", "font-style", "line-height",
	"letter-spacing", "text-align", "text-transform", "text-decoration", "color",
	"margin-top", "margin-right", "margin-bottom", "margin-left",
	"padding-top", "padding-right", "padding-bottom", "padding-left",
	"background-color", "background-image", "background-size",
	"background-position", "background-repeat",
	"border-top-width", "border-right-width", "border-bottom-width", "border-left-width",
	"border-top-style", "border-right-style", "border-bottom-style", "border-left-style",
	"border-top-color", "border-right-color", "border-bottom-color", "border-left-color",
	"border-top-left-radius", "border-top-right-radius",
	"border-bottom-right-radius", "border-bottom-left-radius",
	"display", "position", "cursor",
	"flex-direction", "flex-wrap", "justify-content", "align-items", "gap",
	"column-gap", "row-gap",
	"grid-template-columns", "grid-template-rows",
	"width", "height", "min-width", "max-width", "min-height", "max-height",
	"box-shadow", "opacity", "transform", "filter",
}

// CaptureOptions bounds a capture.
type CaptureOptions struct {
	MaxDepth int // default 5
	MaxText  int // default 200
	MaxHTML  int // default 500
	Viewport Viewport
	PageURL  string
	Now      func() time.Time
}

func (o *CaptureOptions) defaults() {
	if o.MaxDepth <= 0 {
		o.MaxDepth = 5
	}
	if o.MaxText <= 0 {
		o.MaxText = 200
	}
	if o.MaxHTML <= 0 {
		o.MaxHTML = 500
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Capture copies el into an ElementSnapshot. Children beyond MaxDepth
// levels are dropped, so no path in the result holds more than MaxDepth
// nodes.
func Capture(el Element, opts CaptureOptions) ElementSnapshot {
	opts.defaults()
	return capture(el, &opts, 0, opts.Now().UnixMilli())
}

func capture(el Element, opts *CaptureOptions, depth int, ts int64) ElementSnapshot {
	attrs := el.Attributes()
	copied := make(map[string]string, len(attrs))
	for k, v := range attrs {
		copied[k] = v
	}

	computed := make(map[string]string, len(StyleProperties))
	for _, p := range StyleProperties {
		if v := el.ComputedStyle(p); v != "" {
			computed[p] = v
		}
	}

	snap := ElementSnapshot{
		TagName:     strings.ToLower(el.TagName()),
		ID:          attrs["id"],
		Classes:     strings.Fields(attrs["class"]),
		TextContent: Truncate(CollapseSpace(el.Text()), opts.MaxText),
		InnerHTML:   Truncate(strings.TrimSpace(el.InnerHTML()), opts.MaxHTML),
		Attributes:  copied,
		BoundingBox: el.BoundingBox(),
		Computed:    computed,
		Depth:       depth,
		Viewport:    opts.Viewport,
		PageURL:     opts.PageURL,
		CapturedAt:  ts,
	}

	if depth+1 < opts.MaxDepth {
		for _, c := range el.Children() {
			snap.Children = append(snap.Children, capture(c, opts, depth+1, ts))
		}
	}
	return snap
}

// CollapseSpace trims s and folds internal whitespace runs to one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
