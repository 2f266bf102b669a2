// CLAUDE:SUMMARY Defines ElementSnapshot, the immutable capture of a selected DOM element and its computed styles.
// Package snapshot holds the point-in-time capture of selected elements.
//
// A snapshot is taken once, eagerly, with its computed styles copied in.
// Everything downstream (style extraction, classification, mapping) reads
// the snapshot only, so later page mutations never leak into an export.
package snapshot

import (
	"strings"
)

// BoundingBox is the element's layout rectangle in device pixels.
type BoundingBox struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
}

// Viewport is the window size at capture time.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ElementSnapshot is an immutable capture of one DOM element.
type ElementSnapshot struct {
	TagName     string            `json:"tag_name"`
	ID          string            `json:"id,omitempty"`
	Classes     []string          `json:"classes"`
	TextContent string            `json:"text_content"`
	InnerHTML   string            `json:"inner_html,omitempty"`
	Attributes  map[string]string `json:"attributes"`
	BoundingBox BoundingBox       `json:"bounding_box"`
	Computed    map[string]string `json:"computed"`
	Children    []ElementSnapshot `json:"children"`
	Depth       int               `json:"depth"`
	Viewport    Viewport          `json:"viewport"`
	PageURL     string            `json:"page_url,omitempty"`
	CapturedAt  int64             `json:"captured_at"` // epoch milliseconds
}

// Style returns the captured computed value of a CSS property, or "".
func (e *ElementSnapshot) Style(prop string) string {
	return e.Computed[prop]
}

// Attr returns an attribute value, or "".
func (e *ElementSnapshot) Attr(name string) string {
	return e.Attributes[name]
}

// HasClass reports whether any class contains sub (case-insensitive).
func (e *ElementSnapshot) HasClass(sub string) bool {
	sub = strings.ToLower(sub)
	for _, c := range e.Classes {
		if strings.Contains(strings.ToLower(c), sub) {
			return true
		}
	}
	return false
}

// Walk visits every descendant (not e itself) depth-first in document
// order. Returning false from fn stops the walk.
func (e *ElementSnapshot) Walk(fn func(*ElementSnapshot) bool) bool {
	for i := range e.Children {
		c := &e.Children[i]
		if !fn(c) || !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Find returns the first descendant matching pred, or nil.
func (e *ElementSnapshot) Find(pred func(*ElementSnapshot) bool) *ElementSnapshot {
	var found *ElementSnapshot
	e.Walk(func(c *ElementSnapshot) bool {
		if pred(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

// FindAll returns every descendant matching pred in document order.
func (e *ElementSnapshot) FindAll(pred func(*ElementSnapshot) bool) []*ElementSnapshot {
	var out []*ElementSnapshot
	e.Walk(func(c *ElementSnapshot) bool {
		if pred(c) {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Tag returns a predicate matching any of the given tag names.
func Tag(names ...string) func(*ElementSnapshot) bool {
	return func(e *ElementSnapshot) bool {
		for _, n := range names {
			if e.TagName == n {
				return true
			}
		}
		return false
	}
}

// MaxPath returns the number of nodes on the longest root-to-leaf path.
func (e *ElementSnapshot) MaxPath() int {
	best := 0
	for i := range e.Children {
		if d := e.Children[i].MaxPath(); d > best {
			best = d
		}
	}
	return best + 1
}
