// CLAUDE:SUMMARY Maps element snapshots to schema WidgetNodes: enum dispatch to settings builders, fallback nodes, complex-row flattening, bounded recursion.
// Package widget turns classified element snapshots into schema nodes.
//
// Mapping never fails: a builder that errors or panics degrades its element
// to a fallback text widget and the rest of the tree is still built.
package widget

import (
	"fmt"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hazyhaar/domforge/classify"
	"github.com/hazyhaar/domforge/idgen"
	"github.com/hazyhaar/domforge/schema"
	"github.com/hazyhaar/domforge/snapshot"
	"github.com/hazyhaar/domforge/style"
)

// FallbackTitle labels nodes substituted for failed builders.
const FallbackTitle = "Fallback Element"

// Fault describes a locally recovered problem.
type Fault struct {
	Stage      string // "style" or "build"
	TagName    string
	WidgetType schema.WidgetType
	Err        error
}

// Mapper holds the per-call context of a conversion.
type Mapper struct {
	MaxDepth int
	NewID    idgen.Generator
	OnFault  func(Fault)
	policy   *bluemonday.Policy
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithMaxDepth bounds nesting of the produced tree. Default: 5.
func WithMaxDepth(n int) Option {
	return func(m *Mapper) { m.MaxDepth = n }
}

// WithIDGenerator sets the node id strategy. Default: idgen.Widget().
func WithIDGenerator(g idgen.Generator) Option {
	return func(m *Mapper) { m.NewID = g }
}

// WithFaultHandler receives every recovered fault.
func WithFaultHandler(fn func(Fault)) Option {
	return func(m *Mapper) { m.OnFault = fn }
}

// WithPolicy sets the HTML sanitizer for editor and html settings.
// Default: bluemonday.UGCPolicy().
func WithPolicy(p *bluemonday.Policy) Option {
	return func(m *Mapper) { m.policy = p }
}

// New creates a Mapper.
func New(opts ...Option) *Mapper {
	m := &Mapper{}
	for _, o := range opts {
		o(m)
	}
	if m.MaxDepth <= 0 {
		m.MaxDepth = 5
	}
	if m.NewID == nil {
		m.NewID = idgen.Widget()
	}
	if m.policy == nil {
		m.policy = bluemonday.UGCPolicy()
	}
	return m
}

// Map extracts el's style and maps it.
func (m *Mapper) Map(el *snapshot.ElementSnapshot) schema.WidgetNode {
	return m.mapAt(el, m.extract(el), 0)
}

// MapElement maps el with an already extracted style.
func (m *Mapper) MapElement(el *snapshot.ElementSnapshot, st style.Snapshot) schema.WidgetNode {
	return m.mapAt(el, st, 0)
}

func (m *Mapper) mapAt(el *snapshot.ElementSnapshot, st style.Snapshot, depth int) schema.WidgetNode {
	if el == nil {
		m.fault(Fault{Stage: "build", Err: fmt.Errorf("widget: nil element")})
		return m.fallback(nil)
	}
	v := classify.Classify(el)
	switch {
	case v.Complex:
		return m.row(el, st, depth)
	case v.Hint == schema.Container:
		return m.container(el, st, depth)
	default:
		return m.widget(el, st, v.Hint)
	}
}

// container recurses structurally, preserving nesting up to MaxDepth.
func (m *Mapper) container(el *snapshot.ElementSnapshot, st style.Snapshot, depth int) schema.WidgetNode {
	var children []schema.WidgetNode
	if depth+1 < m.MaxDepth {
		for i := range el.Children {
			c := &el.Children[i]
			children = append(children, m.mapAt(c, m.extract(c), depth+1))
		}
	}
	settings, err := m.settings(schema.Container, el, st)
	if err != nil {
		m.fault(Fault{Stage: "build", TagName: el.TagName, WidgetType: schema.Container, Err: err})
		settings = schema.Settings{"flex_direction": "column"}
	}
	return schema.NewContainer(m.NewID(), settings, children, depth > 0)
}

// row flattens a complex element: each direct child becomes one widget.
func (m *Mapper) row(el *snapshot.ElementSnapshot, st style.Snapshot, depth int) schema.WidgetNode {
	var children []schema.WidgetNode
	if depth+1 < m.MaxDepth {
		for i := range el.Children {
			c := &el.Children[i]
			t, ok := matchRowChild(c)
			if !ok {
				continue
			}
			children = append(children, m.widget(c, m.extract(c), t))
		}
	}
	settings := merge(schema.Settings{},
		commonSettings(el, st),
		spacingSettings(st.Spacing),
		backgroundSettings(st.Background),
		borderSettings(st.Border),
		effectsSettings(st.Effects),
		rowSettings(),
	)
	return schema.NewContainer(m.NewID(), stripWidgetKeys(settings), children, depth > 0)
}

// matchRowChild picks a widget for a direct child of a complex element.
// Priority: logo/image, button, navigation, social, contact info, heading,
// default text. Children matching nothing are dropped.
func matchRowChild(c *snapshot.ElementSnapshot) (schema.WidgetType, bool) {
	switch {
	case c.TagName == "img" || (c.Find(snapshot.Tag("img")) != nil && !classify.HasIconMarker(c)):
		return schema.Image, true
	case c.TagName == "button" || (classify.IsButton(c) && c.TextContent != ""):
		return schema.Button, true
	case classify.IsNavigation(c) || isLinkList(c):
		return schema.Navigation, true
	case classify.IsSocial(c):
		return schema.SocialIcons, true
	case classify.IsContactInfo(c):
		return schema.IconBox, true
	case classify.IsHeadingTag(c.TagName) || c.Attr("role") == "heading":
		return schema.Heading, true
	case c.TextContent != "":
		return schema.Text, true
	}
	return "", false
}

func isLinkList(c *snapshot.ElementSnapshot) bool {
	if c.TagName != "ul" && c.TagName != "ol" {
		return false
	}
	return len(c.FindAll(snapshot.Tag("a"))) >= 2
}

// widget builds a leaf node, degrading to the fallback on failure.
func (m *Mapper) widget(el *snapshot.ElementSnapshot, st style.Snapshot, t schema.WidgetType) schema.WidgetNode {
	settings, err := m.settings(t, el, st)
	if err != nil {
		m.fault(Fault{Stage: "build", TagName: el.TagName, WidgetType: t, Err: err})
		return m.fallback(el)
	}
	return schema.NewWidget(m.NewID(), t, settings)
}

// settings merges style-derived keys with the widget-specific builder
// output. Builder panics are converted to errors.
func (m *Mapper) settings(t schema.WidgetType, el *snapshot.ElementSnapshot, st style.Snapshot) (s schema.Settings, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, buildError(t, fmt.Errorf("panic: %v", r))
		}
	}()
	build, ok := builderFor(t)
	if !ok {
		return nil, buildError(t, fmt.Errorf("no builder"))
	}
	specific, err := build(input{el: el, st: st, m: m})
	if err != nil {
		return nil, buildError(t, err)
	}
	if t == schema.Container {
		s = merge(schema.Settings{},
			commonSettings(el, st),
			spacingSettings(st.Spacing),
			backgroundSettings(st.Background),
			borderSettings(st.Border),
			effectsSettings(st.Effects),
			specific,
		)
		return stripWidgetKeys(s), nil
	}
	return merge(schema.Settings{},
		commonSettings(el, st),
		typographySettings(st.Typography),
		spacingSettings(st.Spacing),
		backgroundSettings(st.Background),
		borderSettings(st.Border),
		effectsSettings(st.Effects),
		specific,
	), nil
}

// fallback is the text widget substituted for an element that could not
// be mapped.
func (m *Mapper) fallback(el *snapshot.ElementSnapshot) schema.WidgetNode {
	text := ""
	if el != nil {
		text = el.TextContent
	}
	return schema.NewWidget(m.NewID(), schema.Text, schema.Settings{
		"editor": text,
		"_title": FallbackTitle,
	})
}

func (m *Mapper) extract(el *snapshot.ElementSnapshot) style.Snapshot {
	st := style.Extract(el, el.Viewport.Width, el.PageURL)
	for _, f := range st.Faults {
		m.fault(Fault{Stage: "style", TagName: el.TagName, Err: fmt.Errorf("style: %s", f)})
	}
	return st
}

func (m *Mapper) fault(f Fault) {
	if m.OnFault != nil {
		m.OnFault(f)
	}
}

func (m *Mapper) sanitize(s string) string {
	if s == "" {
		return ""
	}
	return m.policy.Sanitize(s)
}
