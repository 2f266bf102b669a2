package snapshot

import (
	"strings"
	"testing"
	"time"
)

// fakeElement is an in-memory Element for tests.
type fakeElement struct {
	tag      string
	attrs    map[string]string
	styles   map[string]string
	text     string
	children []Element
}

func (f *fakeElement) TagName() string                  { return f.tag }
func (f *fakeElement) Attributes() map[string]string    { return f.attrs }
func (f *fakeElement) ComputedStyle(prop string) string { return f.styles[prop] }
func (f *fakeElement) BoundingBox() BoundingBox         { return BoundingBox{Width: 100, Height: 20} }
func (f *fakeElement) Children() []Element              { return f.children }
func (f *fakeElement) Text() string                     { return f.text }
func (f *fakeElement) InnerHTML() string                { return f.text }

func chain(depth int) Element {
	root := &fakeElement{tag: "DIV"}
	cur := root
	for i := 1; i < depth; i++ {
		next := &fakeElement{tag: "div"}
		cur.children = []Element{next}
		cur = next
	}
	return root
}

func TestCaptureDepthBound(t *testing.T) {
	tests := []struct {
		nesting, maxDepth, want int
	}{
		{10, 5, 5},
		{3, 5, 3},
		{5, 5, 5},
		{8, 2, 2},
		{10, 0, 5}, // default
	}
	for _, tt := range tests {
		snap := Capture(chain(tt.nesting), CaptureOptions{MaxDepth: tt.maxDepth})
		if got := snap.MaxPath(); got != tt.want {
			t.Errorf("nesting=%d max=%d: MaxPath = %d, want %d", tt.nesting, tt.maxDepth, got, tt.want)
		}
	}
}

func TestCaptureFields(t *testing.T) {
	el := &fakeElement{
		tag:    "H2",
		attrs:  map[string]string{"id": "title", "class": "hero  big"},
		styles: map[string]string{"font-size": "32px", "color": "rgb(20, 20, 20)"},
		text:   "  Welcome \n  home ",
	}
	now := time.UnixMilli(1708700000000)
	snap := Capture(el, CaptureOptions{
		Viewport: Viewport{Width: 1440, Height: 900},
		PageURL:  "https://example.com/",
		Now:      func() time.Time { return now },
	})

	if snap.TagName != "h2" {
		t.Errorf("TagName = %q", snap.TagName)
	}
	if snap.ID != "title" {
		t.Errorf("ID = %q", snap.ID)
	}
	if len(snap.Classes) != 2 || snap.Classes[0] != "hero" || snap.Classes[1] != "big" {
		t.Errorf("Classes = %v", snap.Classes)
	}
	if snap.TextContent != "Welcome home" {
		t.Errorf("TextContent = %q", snap.TextContent)
	}
	if snap.Style("font-size") != "32px" {
		t.Errorf("font-size = %q", snap.Style("font-size"))
	}
	if _, ok := snap.Computed["margin-top"]; ok {
		t.Error("empty computed values should not be stored")
	}
	if snap.CapturedAt != 1708700000000 {
		t.Errorf("CapturedAt = %d", snap.CapturedAt)
	}
	if snap.Viewport.Width != 1440 {
		t.Errorf("Viewport = %+v", snap.Viewport)
	}
}

func TestCaptureIsolatedFromSource(t *testing.T) {
	attrs := map[string]string{"href": "/a"}
	el := &fakeElement{tag: "a", attrs: attrs}
	snap := Capture(el, CaptureOptions{})
	attrs["href"] = "/b"
	if snap.Attr("href") != "/a" {
		t.Errorf("snapshot changed after source mutation: %q", snap.Attr("href"))
	}
}

func TestTruncateText(t *testing.T) {
	el := &fakeElement{tag: "p", text: strings.Repeat("é", 300)}
	snap := Capture(el, CaptureOptions{})
	if n := len([]rune(snap.TextContent)); n != 200 {
		t.Errorf("text runes = %d, want 200", n)
	}
}

func TestFindAndHasClass(t *testing.T) {
	snap := ElementSnapshot{
		TagName: "div",
		Classes: []string{"Site-Header"},
		Children: []ElementSnapshot{
			{TagName: "span"},
			{TagName: "a", Children: []ElementSnapshot{{TagName: "img"}}},
		},
	}
	if !snap.HasClass("header") {
		t.Error("HasClass should be case-insensitive substring")
	}
	if img := snap.Find(Tag("img")); img == nil {
		t.Error("Find(img) = nil")
	}
	if got := len(snap.FindAll(Tag("span", "a"))); got != 2 {
		t.Errorf("FindAll = %d, want 2", got)
	}
}

func TestUnmarshalSnapshots(t *testing.T) {
	single := []byte(`{"tag_name":"h1","text_content":"Hi"}`)
	got, err := UnmarshalSnapshots(single)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].TagName != "h1" {
		t.Errorf("single: %+v", got)
	}

	data, err := MarshalSnapshots([]ElementSnapshot{{TagName: "p"}, {TagName: "img"}})
	if err != nil {
		t.Fatal(err)
	}
	got, err = UnmarshalSnapshots(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].TagName != "img" {
		t.Errorf("many: %+v", got)
	}

	if _, err := UnmarshalSnapshots([]byte(`nope`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
