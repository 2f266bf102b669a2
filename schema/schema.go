// CLAUDE:SUMMARY Output document model: WidgetNode tree, closed WidgetType enum, Settings, Document and ValidationError.
// Package schema defines the page-builder document produced by domforge.
package schema

import (
	"encoding/json"
	"fmt"
)

// Kind distinguishes layout nodes from leaf widgets.
type Kind string

const (
	KindContainer Kind = "container"
	KindWidget    Kind = "widget"
)

// WidgetType is the closed set of widget kinds the mapper can emit.
type WidgetType string

const (
	Heading     WidgetType = "heading"
	Text        WidgetType = "text"
	Image       WidgetType = "image"
	Button      WidgetType = "button"
	Icon        WidgetType = "icon"
	IconList    WidgetType = "icon-list"
	Navigation  WidgetType = "navigation"
	SocialIcons WidgetType = "social-icons"
	IconBox     WidgetType = "icon-box"
	Form        WidgetType = "form"
	Video       WidgetType = "video"
	HTML        WidgetType = "html"
	Container   WidgetType = "container"
)

// WidgetTypes lists every WidgetType in declaration order.
var WidgetTypes = []WidgetType{
	Heading, Text, Image, Button, Icon, IconList, Navigation,
	SocialIcons, IconBox, Form, Video, HTML, Container,
}

// wireNames maps internal types to the target schema's widget names where
// they differ.
var wireNames = map[WidgetType]string{
	Text:       "text-editor",
	Navigation: "nav-menu",
}

// WireName returns the name used in exported JSON.
func (t WidgetType) WireName() string {
	if n, ok := wireNames[t]; ok {
		return n
	}
	return string(t)
}

// ParseWireName maps an exported widget name back to its WidgetType.
func ParseWireName(name string) (WidgetType, bool) {
	for _, t := range WidgetTypes {
		if t.WireName() == name || string(t) == name {
			return t, true
		}
	}
	return "", false
}

// Settings holds schema setting keys. Values must be JSON-serialisable.
type Settings map[string]any

// WidgetOnlyKeys never appear on container nodes.
var WidgetOnlyKeys = map[string]bool{
	"editor": true, "title": true, "html": true, "text": true, "image": true,
	"link": true, "selected_icon": true, "icon_list": true,
	"social_icon_list": true, "form_fields": true, "menu_items": true,
	"title_text": true, "description_text": true, "youtube_url": true,
	"vimeo_url": true, "hosted_url": true, "video_type": true, "header_size": true,
	"button_text": true, "image_size": true, "caption": true,
}

// WidgetNode is one node of the output tree. Widgets never have children.
type WidgetNode struct {
	ID         string       `json:"id"`
	Kind       Kind         `json:"elType"`
	WidgetType WidgetType   `json:"widgetType,omitempty"`
	Settings   Settings     `json:"settings"`
	Children   []WidgetNode `json:"elements"`
	IsInner    bool         `json:"isInner"`
}

// NewWidget builds a childless widget node.
func NewWidget(id string, t WidgetType, settings Settings) WidgetNode {
	if settings == nil {
		settings = Settings{}
	}
	return WidgetNode{ID: id, Kind: KindWidget, WidgetType: t, Settings: settings, Children: []WidgetNode{}}
}

// NewContainer builds a container node.
func NewContainer(id string, settings Settings, children []WidgetNode, inner bool) WidgetNode {
	if settings == nil {
		settings = Settings{}
	}
	if children == nil {
		children = []WidgetNode{}
	}
	return WidgetNode{ID: id, Kind: KindContainer, Settings: settings, Children: children, IsInner: inner}
}

type wireNode struct {
	ID         string       `json:"id"`
	Kind       Kind         `json:"elType"`
	WidgetType string       `json:"widgetType,omitempty"`
	Settings   Settings     `json:"settings"`
	Children   []WidgetNode `json:"elements"`
	IsInner    bool         `json:"isInner"`
}

// MarshalJSON writes the node with the target schema's widget names.
func (n WidgetNode) MarshalJSON() ([]byte, error) {
	w := wireNode{ID: n.ID, Kind: n.Kind, Settings: n.Settings, Children: n.Children, IsInner: n.IsInner}
	if n.Kind == KindWidget {
		w.WidgetType = n.WidgetType.WireName()
	}
	if w.Settings == nil {
		w.Settings = Settings{}
	}
	if w.Children == nil {
		w.Children = []WidgetNode{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads a node, accepting wire or internal widget names.
func (n *WidgetNode) UnmarshalJSON(data []byte) error {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*n = WidgetNode{ID: w.ID, Kind: w.Kind, Settings: w.Settings, Children: w.Children, IsInner: w.IsInner}
	if w.WidgetType != "" {
		t, ok := ParseWireName(w.WidgetType)
		if !ok {
			return fmt.Errorf("schema: unknown widget type %q", w.WidgetType)
		}
		n.WidgetType = t
	}
	return nil
}

// Walk visits n and its descendants depth-first.
func (n *WidgetNode) Walk(fn func(*WidgetNode)) {
	fn(n)
	for i := range n.Children {
		n.Children[i].Walk(fn)
	}
}

// MaxPath returns the node count of the longest root-to-leaf path.
func (n *WidgetNode) MaxPath() int {
	best := 0
	for i := range n.Children {
		if d := n.Children[i].MaxPath(); d > best {
			best = d
		}
	}
	return best + 1
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *WidgetNode) Count() int {
	c := 0
	n.Walk(func(*WidgetNode) { c++ })
	return c
}

// Document format constants.
const (
	Version      = "0.4"
	DocumentType = "container"
	DefaultTitle = "Converted Content"
)

// Document is the exported artifact.
type Document struct {
	Version      string       `json:"version"`
	Title        string       `json:"title"`
	Type         string       `json:"type"`
	PageSettings []any        `json:"page_settings"`
	Content      []WidgetNode `json:"content"`

	SourceURL string `json:"-"`
	CreatedAt int64  `json:"-"` // epoch milliseconds
}

// ValidationError reports a document that cannot be normalised.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema: invalid %s: %s", e.Field, e.Reason)
}
