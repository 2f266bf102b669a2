package converter

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/domforge/document"
	"github.com/hazyhaar/domforge/export"
	"github.com/hazyhaar/domforge/idgen"
	"github.com/hazyhaar/domforge/schema"
	"github.com/hazyhaar/domforge/snapshot"
)

var fixedNow = time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)

func testConverter(t *testing.T) *Converter {
	t.Helper()
	return New(Options{
		NewID: idgen.Sequence("n"),
		Now:   func() time.Time { return fixedNow },
	})
}

const landing = `<!DOCTYPE html>
<html><head><title>Landing</title></head>
<body>
  <h1 style="font-size: 32px; color: rgb(51, 51, 51)">Welcome</h1>
  <p class="lead">Plain <b>text</b> here.</p>
  <a class="btn" href="/signup" style="padding: 10px 20px">Sign up</a>
</body></html>`

func heading() snapshot.ElementSnapshot {
	return snapshot.ElementSnapshot{
		TagName:     "h1",
		TextContent: "Welcome",
		Attributes:  map[string]string{},
		Computed:    map[string]string{"font-size": "32px", "color": "rgb(51, 51, 51)"},
		Viewport:    snapshot.Viewport{Width: 1440, Height: 900},
	}
}

func TestProduceWidgetTree_Heading(t *testing.T) {
	c := testConverter(t)
	doc, err := c.ProduceWidgetTree([]snapshot.ElementSnapshot{heading()}, document.PageMeta{SourceURL: "https://example.com"})
	require.NoError(t, err)

	assert.Equal(t, schema.Version, doc.Version)
	assert.Equal(t, schema.DefaultTitle, doc.Title)
	require.Len(t, doc.Content, 1)
	root := doc.Content[0]
	assert.Equal(t, schema.KindContainer, root.Kind)
	require.Len(t, root.Children, 1)

	h := root.Children[0]
	assert.Equal(t, schema.KindWidget, h.Kind)
	assert.Equal(t, schema.Heading, h.WidgetType)
	assert.Equal(t, "Welcome", h.Settings["title"])
	assert.Equal(t, "h1", h.Settings["header_size"])
	assert.Equal(t, fixedNow.UnixMilli(), doc.CreatedAt)
}

func TestProduceWidgetTree_Empty(t *testing.T) {
	c := testConverter(t)
	doc, err := c.ProduceWidgetTree(nil, document.PageMeta{})
	require.NoError(t, err)

	out, err := c.SerializeDocument(doc, "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"elements": []`)
}

func TestProduceWidgetTree_TitleFallback(t *testing.T) {
	c := New(Options{Title: "From config"})
	doc, err := c.ProduceWidgetTree([]snapshot.ElementSnapshot{heading()}, document.PageMeta{})
	require.NoError(t, err)
	assert.Equal(t, "From config", doc.Title)

	doc, err = c.ProduceWidgetTree([]snapshot.ElementSnapshot{heading()}, document.PageMeta{Title: "Explicit"})
	require.NoError(t, err)
	assert.Equal(t, "Explicit", doc.Title)
}

func TestProduceWidgetTree_Idempotent(t *testing.T) {
	c := testConverter(t)
	doc, err := c.ProduceWidgetTree([]snapshot.ElementSnapshot{heading()}, document.PageMeta{})
	require.NoError(t, err)

	again, err := document.Validate(doc)
	require.NoError(t, err)
	a, _ := export.JSON(doc)
	b, _ := export.JSON(again)
	assert.Equal(t, a, b)
}

func TestSerializeDocument_Formats(t *testing.T) {
	c := testConverter(t)
	doc, err := c.ProduceWidgetTree([]snapshot.ElementSnapshot{heading()}, document.PageMeta{Title: "T"})
	require.NoError(t, err)

	js, err := c.SerializeDocument(doc, "json")
	require.NoError(t, err)
	var back map[string]any
	require.NoError(t, json.Unmarshal([]byte(js), &back))
	assert.Equal(t, "container", back["type"])

	html, err := c.SerializeDocument(doc, "html")
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Welcome</h1>")

	md, err := c.SerializeDocument(doc, "md")
	require.NoError(t, err)
	assert.Contains(t, md, "# Welcome")

	_, err = c.SerializeDocument(doc, "pdf")
	assert.True(t, errors.Is(err, export.ErrUnknownFormat))
}

func TestConvert(t *testing.T) {
	c := testConverter(t)
	res, doc, err := c.Convert([]snapshot.ElementSnapshot{heading()}, document.PageMeta{SourceURL: "https://example.com/a"}, "html")
	require.NoError(t, err)
	assert.Equal(t, "html", res.Format)
	assert.Equal(t, "elementor_export_example.com_20240601_1230.html", res.Filename)
	assert.Equal(t, 1, res.Elements)
	assert.Equal(t, 2, res.Nodes)
	assert.Equal(t, doc.Title, res.Title)

	_, _, err = c.Convert(nil, document.PageMeta{}, "docx")
	assert.ErrorIs(t, err, export.ErrUnknownFormat)
}

func TestConvertHTML(t *testing.T) {
	c := testConverter(t)
	doc, err := c.ConvertHTML([]byte(landing), document.PageMeta{SourceURL: "https://example.com"}, []string{"h1", "p.lead", "a.btn"})
	require.NoError(t, err)
	assert.Equal(t, "Landing", doc.Title, "title comes from <title>")

	kids := doc.Content[0].Children
	require.Len(t, kids, 3)
	assert.Equal(t, schema.Heading, kids[0].WidgetType)
	assert.Equal(t, schema.Text, kids[1].WidgetType)
	assert.Equal(t, schema.Button, kids[2].WidgetType)
}

func TestConvertHTML_NoSelection(t *testing.T) {
	c := testConverter(t)
	_, err := c.ConvertHTML([]byte(landing), document.PageMeta{}, []string{".missing"})
	assert.ErrorIs(t, err, ErrNoSelection)

	_, err = c.ConvertHTML([]byte(landing), document.PageMeta{}, []string{"div["})
	assert.Error(t, err)
}

func TestStaticCapture_DefaultsToBody(t *testing.T) {
	c := testConverter(t)
	snaps, title, err := c.StaticCapture([]byte(landing), "https://example.com", nil)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "body", snaps[0].TagName)
	assert.Equal(t, "Landing", title)
	assert.Equal(t, 1440, snaps[0].Viewport.Width)
	assert.Equal(t, "https://example.com", snaps[0].PageURL)
}

func TestDesignReference(t *testing.T) {
	c := testConverter(t)
	snaps, _, err := c.StaticCapture([]byte(landing), "https://example.com", []string{"h1", "a.btn"})
	require.NoError(t, err)

	raw, err := c.DesignReference(snaps, "https://example.com")
	require.NoError(t, err)

	var ref struct {
		SourceURL string `json:"source_url"`
		Elements  []struct {
			TagName    string `json:"tag_name"`
			Role       string `json:"semantic_role"`
			WidgetType string `json:"widget_type"`
		} `json:"elements"`
		Summary struct {
			TotalElements int `json:"total_elements"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(raw, &ref))
	assert.Equal(t, "https://example.com", ref.SourceURL)
	require.Len(t, ref.Elements, 2)
	assert.Equal(t, "heading", ref.Elements[0].Role)
	assert.Equal(t, "heading", ref.Elements[0].WidgetType)
	assert.Equal(t, "a", ref.Elements[1].TagName)
	assert.Equal(t, 2, ref.Summary.TotalElements)
}

func nestedDivs(levels int) snapshot.ElementSnapshot {
	leaf := snapshot.ElementSnapshot{
		TagName: "p", TextContent: "deep", Attributes: map[string]string{}, Computed: map[string]string{},
	}
	for range levels {
		leaf = snapshot.ElementSnapshot{
			TagName:    "div",
			Attributes: map[string]string{},
			Computed:   map[string]string{"display": "flex", "flex-direction": "column"},
			Children:   []snapshot.ElementSnapshot{leaf},
		}
	}
	leaf.Viewport = snapshot.Viewport{Width: 1440, Height: 900}
	return leaf
}

func TestProduceWidgetTree_DepthBound(t *testing.T) {
	for _, maxDepth := range []int{2, 3, 5} {
		c := New(Options{MaxDepth: maxDepth, NewID: idgen.Sequence("d")})
		doc, err := c.ProduceWidgetTree([]snapshot.ElementSnapshot{nestedDivs(9)}, document.PageMeta{})
		require.NoError(t, err)
		require.Len(t, doc.Content, 1)
		got := doc.Content[0].MaxPath()
		assert.LessOrEqual(t, got, maxDepth, "max depth %d", maxDepth)
		assert.GreaterOrEqual(t, got, 2, "max depth %d", maxDepth)
	}
}

func TestConvertHTML_NonFiniteStyles(t *testing.T) {
	const html = `<html><body><p id="x" style="line-height: nan; opacity: inf">Hi</p></body></html>`
	c := testConverter(t)

	snaps, _, err := c.StaticCapture([]byte(html), "https://example.com", []string{"#x"})
	require.NoError(t, err)

	res, _, err := c.Convert(snaps, document.PageMeta{}, "json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(res.Content)))
	assert.NotContains(t, res.Content, "NaN")
	assert.NotContains(t, res.Content, "Inf")

	ref, err := c.DesignReference(snaps, "https://example.com")
	require.NoError(t, err)
	assert.True(t, json.Valid(ref))
}

func TestValidateDocument(t *testing.T) {
	c := testConverter(t)
	raw := `{"content":[{"elType":"widget","widgetType":"heading","settings":{"title":"Hi","link":null}}]}`

	res, doc, err := c.ValidateDocument([]byte(raw), "")
	require.NoError(t, err)
	assert.Equal(t, schema.DefaultTitle, res.Title)
	assert.Equal(t, "json", res.Format)
	assert.Equal(t, 1, res.Elements)
	assert.Equal(t, 1, res.Nodes)
	assert.Equal(t, "elementor_export_page_20240601_1230.json", res.Filename)
	require.Len(t, doc.Content, 1)
	assert.Equal(t, "node-0", doc.Content[0].ID)
	assert.NotContains(t, doc.Content[0].Settings, "link")

	again, _, err := c.ValidateDocument([]byte(res.Content), "json")
	require.NoError(t, err)
	assert.Equal(t, res.Content, again.Content)

	_, _, err = c.ValidateDocument([]byte(`{"title":"x"}`), "")
	var verr *schema.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, _, err = c.ValidateDocument([]byte(`{"content": [`), "")
	assert.Error(t, err)

	_, _, err = c.ValidateDocument([]byte(raw), "pdf")
	assert.ErrorIs(t, err, export.ErrUnknownFormat)
}
