package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestWidgetNodeWireNames(t *testing.T) {
	n := NewContainer("c1", nil, []WidgetNode{
		NewWidget("w1", Text, Settings{"editor": "hi"}),
		NewWidget("w2", Navigation, nil),
		NewWidget("w3", Heading, nil),
	}, false)

	data, err := json.Marshal(n)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{`"widgetType":"text-editor"`, `"widgetType":"nav-menu"`, `"widgetType":"heading"`, `"elType":"container"`, `"isInner":false`} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %s in %s", want, s)
		}
	}
	if strings.Count(s, `"widgetType"`) != 3 {
		t.Errorf("container must not carry widgetType: %s", s)
	}

	var back WidgetNode
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Children[0].WidgetType != Text || back.Children[1].WidgetType != Navigation {
		t.Errorf("round trip types: %q %q", back.Children[0].WidgetType, back.Children[1].WidgetType)
	}
}

func TestWidgetNodeEmptySlices(t *testing.T) {
	data, err := json.Marshal(WidgetNode{ID: "x", Kind: KindWidget, WidgetType: HTML})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"elements":[]`) || !strings.Contains(string(data), `"settings":{}`) {
		t.Errorf("nil slices/maps must serialise as empty: %s", data)
	}
}

func TestUnmarshalUnknownWidgetType(t *testing.T) {
	var n WidgetNode
	err := json.Unmarshal([]byte(`{"id":"a","elType":"widget","widgetType":"carousel"}`), &n)
	if err == nil {
		t.Fatal("expected error for unknown widget type")
	}
}

func TestWidgetTypesComplete(t *testing.T) {
	seen := map[WidgetType]bool{}
	for _, wt := range WidgetTypes {
		if seen[wt] {
			t.Errorf("duplicate %q", wt)
		}
		seen[wt] = true
		got, ok := ParseWireName(wt.WireName())
		if !ok || got != wt {
			t.Errorf("ParseWireName(%q) = %q, %v", wt.WireName(), got, ok)
		}
	}
	if len(WidgetTypes) != 13 {
		t.Errorf("len(WidgetTypes) = %d, want 13", len(WidgetTypes))
	}
}

func TestValidationErrorAs(t *testing.T) {
	var err error = &ValidationError{Field: "content", Reason: "not an array"}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "content" {
		t.Errorf("errors.As failed: %v", err)
	}
}

func TestMaxPathAndCount(t *testing.T) {
	n := NewContainer("a", nil, []WidgetNode{
		NewContainer("b", nil, []WidgetNode{NewWidget("c", Text, nil)}, true),
		NewWidget("d", Image, nil),
	}, false)
	if n.MaxPath() != 3 {
		t.Errorf("MaxPath = %d", n.MaxPath())
	}
	if n.Count() != 4 {
		t.Errorf("Count = %d", n.Count())
	}
}
