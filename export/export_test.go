package export

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/domforge/schema"
	"github.com/hazyhaar/domforge/snapshot"
	"github.com/hazyhaar/domforge/style"
)

func sampleDoc() schema.Document {
	return schema.Document{
		Version:      schema.Version,
		Title:        "Landing",
		Type:         schema.DocumentType,
		PageSettings: []any{},
		Content: []schema.WidgetNode{
			schema.NewContainer("root", schema.Settings{"flex_direction": "column"}, []schema.WidgetNode{
				schema.NewWidget("h", schema.Heading, schema.Settings{"title": "Welcome", "header_size": "h2"}),
				schema.NewWidget("t", schema.Text, schema.Settings{"editor": "<p>Hello <script>alert(1)</script><b>there</b></p>"}),
				schema.NewWidget("b", schema.Button, schema.Settings{
					"text": "Go", "link": map[string]any{"url": "https://example.com/go?a=1&b=2", "is_external": false},
				}),
				schema.NewWidget("n", schema.Navigation, schema.Settings{"menu_items": []any{
					map[string]any{"item_text": "Home", "item_url": map[string]any{"url": "/"}},
				}}),
			}, false),
		},
	}
}

func TestJSON_Shape(t *testing.T) {
	out, err := JSON(sampleDoc())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "\n  \"version\": \"0.4\"") {
		t.Errorf("expected two-space indent, got:\n%s", out)
	}
	if !strings.Contains(out, "<b>there</b>") {
		t.Error("HTML must not be escaped")
	}
	if !strings.Contains(out, `"widgetType": "text-editor"`) {
		t.Error("text widget must use its wire name")
	}
	var back schema.Document
	if err := json.Unmarshal([]byte(out), &back); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if back.Content[0].Children[1].WidgetType != schema.Text {
		t.Errorf("round trip widget type = %q", back.Content[0].Children[1].WidgetType)
	}
}

func TestJSON_Stable(t *testing.T) {
	a, _ := JSON(sampleDoc())
	b, _ := JSON(sampleDoc())
	if a != b {
		t.Error("equal documents must serialise identically")
	}
}

func TestJSON_Unserialisable(t *testing.T) {
	doc := sampleDoc()
	doc.Content[0].Settings["bad"] = func() {}
	if _, err := JSON(doc); err == nil {
		t.Fatal("expected error for func value")
	}
}

func TestHTML_Sanitized(t *testing.T) {
	doc := sampleDoc()
	out := HTML(doc.Content, doc.Title)
	if strings.Contains(out, "<script") {
		t.Error("script survived sanitizing")
	}
	for _, want := range []string{"<title>Landing</title>", "<h2>Welcome</h2>", "<b>there</b>", `data-widget="nav-menu"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestHTML_EscapesAttributes(t *testing.T) {
	nodes := []schema.WidgetNode{
		schema.NewWidget("i", schema.Image, schema.Settings{"image": map[string]any{"url": "/a.png", "alt": `say "hi"`}}),
	}
	out := HTML(nodes, "")
	if strings.Contains(out, `alt="say "hi""`) {
		t.Errorf("unescaped attribute in:\n%s", out)
	}
	if !strings.Contains(out, "<title>"+schema.DefaultTitle+"</title>") {
		t.Error("empty title must fall back to the default")
	}
}

func TestMarkdown(t *testing.T) {
	doc := sampleDoc()
	out, err := Markdown(doc.Content, doc.Title)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"# Landing", "## Welcome", "**there**", "[Home](/)"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "alert") {
		t.Error("script content leaked into markdown")
	}
}

func TestRender(t *testing.T) {
	for _, f := range Formats {
		if _, err := Render(sampleDoc(), f); err != nil {
			t.Errorf("%s: %v", f, err)
		}
	}
	if _, err := Render(sampleDoc(), Format("pdf")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("pdf: got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{"", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"html", FormatHTML, false},
		{"md", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"reference", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.err || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
		if tt.err && !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("ParseFormat(%q): error %v is not ErrUnknownFormat", tt.in, err)
		}
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2024, 3, 5, 9, 7, 0, 0, time.UTC)
	tests := []struct {
		url  string
		f    Format
		want string
	}{
		{"https://www.example.com/about", FormatJSON, "elementor_export_www.example.com_20240305_0907.json"},
		{"http://localhost:8080/", FormatHTML, "elementor_export_localhost_20240305_0907.html"},
		{"", FormatMarkdown, "elementor_export_page_20240305_0907.md"},
	}
	for _, tt := range tests {
		if got := Filename(tt.url, tt.f, at); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}

	paris := time.FixedZone("CEST", 2*3600)
	if got := Filename("https://example.com", FormatJSON, at.In(paris)); got != "elementor_export_example.com_20240305_0907.json" {
		t.Errorf("non-UTC time must be rendered in UTC, got %q", got)
	}
}

func TestReference(t *testing.T) {
	entries := []ReferenceEntry{
		{TagName: "h1", Role: "heading", Layout: "block", WidgetType: "heading",
			BoundingBox: snapshot.BoundingBox{Width: 600, Height: 40},
			Style:       style.Snapshot{Breakpoint: style.Desktop}},
		{ID: "cta", TagName: "a", Role: "button", Layout: "flexbox", WidgetType: "button",
			Style: style.Snapshot{Breakpoint: style.Mobile, Effects: style.Effects{Opacity: 1, Transform: "scale(1.05)"}}},
	}
	raw, err := Reference(entries, "https://example.com", time.Unix(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		ExportedAt string `json:"exported_at"`
		Elements   []struct {
			Index int    `json:"index"`
			ID    string `json:"id"`
		} `json:"elements"`
		Summary struct {
			TotalElements int            `json:"total_elements"`
			LayoutTypes   map[string]int `json:"layout_types"`
			Breakpoints   []string       `json:"breakpoints"`
			HasAnimations bool           `json:"has_animations"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	if got.ExportedAt != "1970-01-01T00:00:00Z" {
		t.Errorf("exported_at = %q", got.ExportedAt)
	}
	if got.Elements[0].ID != "element-0" || got.Elements[1].ID != "cta" || got.Elements[1].Index != 1 {
		t.Errorf("elements = %+v", got.Elements)
	}
	if got.Summary.TotalElements != 2 || got.Summary.LayoutTypes["flexbox"] != 1 {
		t.Errorf("summary = %+v", got.Summary)
	}
	if len(got.Summary.Breakpoints) != 2 || got.Summary.Breakpoints[0] != "desktop" {
		t.Errorf("breakpoints = %v", got.Summary.Breakpoints)
	}
	if !got.Summary.HasAnimations {
		t.Error("transform should count as animation")
	}
	if entries[0].ID != "" {
		t.Error("Reference must not modify its input")
	}
}
