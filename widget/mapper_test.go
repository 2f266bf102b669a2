package widget

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/domforge/cssunit"
	"github.com/hazyhaar/domforge/idgen"
	"github.com/hazyhaar/domforge/schema"
	"github.com/hazyhaar/domforge/snapshot"
	"github.com/hazyhaar/domforge/style"
)

func newTestMapper(t *testing.T, faults *[]Fault) *Mapper {
	t.Helper()
	opts := []Option{WithIDGenerator(idgen.Sequence("w"))}
	if faults != nil {
		opts = append(opts, WithFaultHandler(func(f Fault) { *faults = append(*faults, f) }))
	}
	return New(opts...)
}

func el(tag, text string, children ...snapshot.ElementSnapshot) snapshot.ElementSnapshot {
	return snapshot.ElementSnapshot{
		TagName:     tag,
		TextContent: text,
		Attributes:  map[string]string{},
		Computed:    map[string]string{},
		Children:    children,
		Viewport:    snapshot.Viewport{Width: 1280, Height: 800},
	}
}

func TestBuilderFor_CoversEveryWidgetType(t *testing.T) {
	for _, wt := range schema.WidgetTypes {
		_, ok := builderFor(wt)
		assert.True(t, ok, "no builder for %s", wt)
	}
	_, ok := builderFor(schema.WidgetType("carousel"))
	assert.False(t, ok)
}

func TestMap_HeadingScenario(t *testing.T) {
	h := el("h2", "Welcome")
	h.ID = "title"
	h.Classes = []string{"hero"}
	h.Computed["font-size"] = "32px"
	h.Computed["color"] = "rgb(20, 20, 20)"

	node := newTestMapper(t, nil).Map(&h)

	require.Equal(t, schema.KindWidget, node.Kind)
	assert.Equal(t, schema.Heading, node.WidgetType)
	assert.Equal(t, "Welcome", node.Settings["title"])
	assert.Equal(t, "h2", node.Settings["header_size"])
	assert.Equal(t, cssunit.Unit{Value: 32, Unit: cssunit.PX}, node.Settings["typography_font_size"])
	assert.Equal(t, "#141414", node.Settings["color"])
	assert.Equal(t, "title", node.Settings["_element_id"])
	assert.Equal(t, "hero", node.Settings["_css_classes"])
	assert.Empty(t, node.Children)

	raw, err := json.Marshal(node)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"typography_font_size":{"value":32,"unit":"px"}`)
	assert.Contains(t, string(raw), `"widgetType":"heading"`)
}

func TestMap_ComplexElementFlattens(t *testing.T) {
	div := el("div", "", el("h3", "Title"), el("p", "Some body copy"))
	div.Classes = []string{"container"}

	node := newTestMapper(t, nil).Map(&div)

	require.Equal(t, schema.KindContainer, node.Kind)
	require.Len(t, node.Children, 2)
	assert.Equal(t, schema.Heading, node.Children[0].WidgetType)
	assert.Equal(t, schema.Text, node.Children[1].WidgetType)
	assert.Equal(t, "row", node.Settings["flex_direction"])
	for _, c := range node.Children {
		assert.Equal(t, schema.KindWidget, c.Kind)
		assert.True(t, len(c.Children) == 0)
	}
}

func TestMap_RowDropsEmptyChildren(t *testing.T) {
	header := el("header", "", el("div", ""), el("h1", "Brand"), el("span", ""))
	node := newTestMapper(t, nil).Map(&header)

	require.Len(t, node.Children, 1)
	assert.Equal(t, schema.Heading, node.Children[0].WidgetType)
}

func TestMap_RowLinkListIsNavigation(t *testing.T) {
	ul := el("ul", "Home About", el("li", "Home", el("a", "Home")), el("li", "About", el("a", "About")))
	ul.Children[0].Children[0].Attributes["href"] = "/"
	ul.Children[1].Children[0].Attributes["href"] = "/about"
	header := el("header", "", el("h1", "Brand"), ul)
	header.PageURL = "https://example.com/"
	header.Children[1].PageURL = header.PageURL

	node := newTestMapper(t, nil).Map(&header)

	require.Len(t, node.Children, 2)
	nav := node.Children[1]
	assert.Equal(t, schema.Navigation, nav.WidgetType)
	items := nav.Settings["menu_items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "https://example.com/about", items[1].(map[string]any)["item_url"].(map[string]any)["url"])
}

func TestMap_TransparentBackgroundSuppressed(t *testing.T) {
	p := el("p", "Plain paragraph")
	p.Computed["background-color"] = "transparent"

	node := newTestMapper(t, nil).Map(&p)

	assert.NotContains(t, node.Settings, "background_color")
	assert.NotContains(t, node.Settings, "background_background")
}

func TestMap_OpaqueBackgroundEmitted(t *testing.T) {
	p := el("p", "Plain paragraph")
	p.Computed["background-color"] = "rgb(255, 0, 0)"

	node := newTestMapper(t, nil).Map(&p)

	assert.Equal(t, "#ff0000", node.Settings["background_color"])
	assert.Equal(t, "classic", node.Settings["background_background"])
}

func TestMap_FallbackOnBuilderError(t *testing.T) {
	var faults []Fault
	img := el("img", "")

	node := newTestMapper(t, &faults).Map(&img)

	assert.Equal(t, schema.Text, node.WidgetType)
	assert.Equal(t, FallbackTitle, node.Settings["_title"])
	require.Len(t, faults, 1)
	assert.Equal(t, "build", faults[0].Stage)
	assert.True(t, errors.Is(faults[0].Err, errNoSource))
}

func TestMap_FallbackKeepsText(t *testing.T) {
	nav := el("nav", "Menu")
	node := newTestMapper(t, nil).Map(&nav)

	assert.Equal(t, FallbackTitle, node.Settings["_title"])
	assert.Equal(t, "Menu", node.Settings["editor"])
}

func TestMap_NilElement(t *testing.T) {
	var faults []Fault
	node := newTestMapper(t, &faults).Map(nil)

	assert.Equal(t, schema.KindWidget, node.Kind)
	assert.Equal(t, FallbackTitle, node.Settings["_title"])
	assert.Len(t, faults, 1)
}

func TestMap_DegenerateSnapshots(t *testing.T) {
	cases := []snapshot.ElementSnapshot{
		{},
		{TagName: "div"},
		{TagName: "a"},
		{TagName: "video"},
		{TagName: "form"},
		{TagName: "i"},
		{TagName: "ul", Children: []snapshot.ElementSnapshot{{TagName: "li"}}},
		{TagName: "div", Computed: map[string]string{"display": "grid", "grid-template-columns": "1fr 1fr"}},
	}
	m := newTestMapper(t, nil)
	for i := range cases {
		node := m.Map(&cases[i])
		assert.NotEmpty(t, node.ID, "case %d", i)
		assert.NotNil(t, node.Settings, "case %d", i)
		_, err := json.Marshal(node)
		assert.NoError(t, err, "case %d", i)
	}
}

func TestMap_DepthBound(t *testing.T) {
	leaf := el("p", "deep text content here")
	for i := 0; i < 9; i++ {
		leaf = el("div", "", leaf, el("div", ""))
		leaf.Classes = nil
	}

	for _, depth := range []int{1, 2, 3, 5} {
		m := New(WithMaxDepth(depth), WithIDGenerator(idgen.Sequence("d")))
		node := m.Map(&leaf)
		assert.LessOrEqual(t, node.MaxPath(), depth, "max depth %d", depth)
	}
}

func TestMap_NestedContainersMarkedInner(t *testing.T) {
	inner := el("div", "", el("div", ""), el("div", ""))
	outer := el("div", "", inner, el("div", ""))

	node := New(WithIDGenerator(idgen.Sequence("n"))).Map(&outer)

	require.Equal(t, schema.KindContainer, node.Kind)
	assert.False(t, node.IsInner)
	require.NotEmpty(t, node.Children)
	assert.True(t, node.Children[0].IsInner)
}

func TestMap_WidgetContainerExclusive(t *testing.T) {
	section := el("section", "",
		el("h2", "About us"),
		el("p", "We build things."),
		el("div", "", el("div", ""), el("div", "")),
	)
	section.Computed["display"] = "flex"
	section.Computed["flex-direction"] = "column"

	node := newTestMapper(t, nil).Map(&section)

	node.Walk(func(n *schema.WidgetNode) {
		switch n.Kind {
		case schema.KindWidget:
			assert.Empty(t, n.Children, "widget %s has children", n.ID)
			assert.NotEmpty(t, n.WidgetType)
		case schema.KindContainer:
			assert.Empty(t, n.WidgetType)
			for k := range n.Settings {
				assert.False(t, schema.WidgetOnlyKeys[k], "container %s carries %s", n.ID, k)
			}
		default:
			t.Errorf("unexpected kind %q", n.Kind)
		}
	})
}

func TestMap_UniqueIDs(t *testing.T) {
	div := el("div", "", el("h3", "a"), el("p", "b"), el("button", "c"))
	div.Classes = []string{"wrapper"}

	node := New().Map(&div)

	seen := map[string]bool{}
	node.Walk(func(n *schema.WidgetNode) {
		assert.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true
	})
}

func TestMapElement_UsesGivenStyle(t *testing.T) {
	h := el("h1", "Hi")
	st := style.Extract(&h, 1280, "")
	st.Typography.FontSize = cssunit.Unit{Value: 48, Unit: cssunit.PX}

	node := newTestMapper(t, nil).MapElement(&h, st)

	assert.Equal(t, cssunit.Unit{Value: 48, Unit: cssunit.PX}, node.Settings["typography_font_size"])
}

func TestMap_ContainerSettings(t *testing.T) {
	div := el("div", "", el("div", ""), el("div", ""))
	div.Computed["display"] = "flex"
	div.Computed["flex-direction"] = "row"
	div.Computed["justify-content"] = "center"
	div.Computed["max-width"] = "960px"
	div.Computed["color"] = "rgb(0, 0, 0)"

	node := newTestMapper(t, nil).Map(&div)

	require.Equal(t, schema.KindContainer, node.Kind)
	assert.Equal(t, "row", node.Settings["flex_direction"])
	assert.Equal(t, "center", node.Settings["flex_justify_content"])
	assert.Equal(t, "boxed", node.Settings["content_width"])
	assert.NotContains(t, node.Settings, "typography_typography")
}

func TestBuildButton_Size(t *testing.T) {
	assert.Equal(t, "lg", buttonSize(20))
	assert.Equal(t, "md", buttonSize(16))
	assert.Equal(t, "sm", buttonSize(12))
}

func TestBuildButton_Link(t *testing.T) {
	a := el("button", "Buy", el("a", "Buy"))
	a.PageURL = "https://shop.example/items/"
	a.Children[0].Attributes["href"] = "checkout"
	a.Children[0].Attributes["target"] = "_blank"
	a.Computed["font-size"] = "18px"

	node := newTestMapper(t, nil).Map(&a)

	require.Equal(t, schema.Button, node.WidgetType)
	assert.Equal(t, "Buy", node.Settings["text"])
	assert.Equal(t, "lg", node.Settings["size"])
	link := node.Settings["link"].(map[string]any)
	assert.Equal(t, "https://shop.example/items/checkout", link["url"])
	assert.Equal(t, true, link["is_external"])
}

func TestBuildText_Sanitized(t *testing.T) {
	p := el("p", "Hello")
	p.InnerHTML = `Hello <script>alert(1)</script><b>world</b>`

	node := newTestMapper(t, nil).Map(&p)

	editor := node.Settings["editor"].(string)
	assert.NotContains(t, editor, "script")
	assert.Contains(t, editor, "<b>world</b>")
}

func TestBuildVideo_Providers(t *testing.T) {
	tests := []struct {
		src, kind, key string
	}{
		{"https://www.youtube.com/embed/abc", "youtube", "youtube_url"},
		{"https://player.vimeo.com/video/1", "vimeo", "vimeo_url"},
		{"/media/clip.mp4", "hosted", "hosted_url"},
	}
	for _, tt := range tests {
		v := el("iframe", "")
		v.Attributes["src"] = tt.src
		node := newTestMapper(t, nil).Map(&v)
		assert.Equal(t, schema.Video, node.WidgetType, tt.src)
		assert.Equal(t, tt.kind, node.Settings["video_type"], tt.src)
		assert.Contains(t, node.Settings, tt.key, tt.src)
	}
}

func TestBuildForm_Fields(t *testing.T) {
	name := el("input", "")
	name.Attributes["type"] = "text"
	name.Attributes["name"] = "name"
	name.Attributes["required"] = ""
	mail := el("input", "")
	mail.Attributes["type"] = "email"
	mail.Attributes["placeholder"] = "you@example.com"
	submit := el("input", "")
	submit.Attributes["type"] = "submit"
	submit.Attributes["value"] = "Subscribe"
	form := el("form", "", name, mail, submit)

	node := newTestMapper(t, nil).Map(&form)

	require.Equal(t, schema.Form, node.WidgetType)
	fields := node.Settings["form_fields"].([]any)
	require.Len(t, fields, 2)
	assert.Equal(t, "true", fields[0].(map[string]any)["required"])
	assert.Equal(t, "email", fields[1].(map[string]any)["field_type"])
	assert.Equal(t, "Subscribe", node.Settings["button_text"])
}

func TestBuildSocialIcons(t *testing.T) {
	fb := el("a", "")
	fb.Attributes["href"] = "https://facebook.com/acme"
	tw := el("a", "")
	tw.Attributes["href"] = "https://twitter.com/acme"
	div := el("div", "", fb, tw)
	div.Classes = []string{"social-links"}

	s, err := newTestMapper(t, nil).settings(schema.SocialIcons, &div, style.Snapshot{})
	require.NoError(t, err)
	items := s["social_icon_list"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "fab fa-facebook", items[0].(map[string]any)["social_icon"].(map[string]any)["value"])
}

func TestIconValue_Library(t *testing.T) {
	assert.Equal(t, "fa-brands", iconValue("fab fa-github")["library"])
	assert.Equal(t, "fa-regular", iconValue("far fa-envelope")["library"])
	assert.Equal(t, "fa-solid", iconValue("fas fa-phone")["library"])
}
