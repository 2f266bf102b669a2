package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/hazyhaar/domforge/schema"
)

// Validate returns a normalised copy of doc. The input is left untouched and
// Validate(Validate(d)) equals Validate(d). Nodes are never removed.
func Validate(doc schema.Document) (schema.Document, error) {
	if doc.Content == nil {
		return schema.Document{}, &schema.ValidationError{Field: "content", Reason: "missing"}
	}
	out := schema.Document{
		Version:      doc.Version,
		Title:        doc.Title,
		Type:         doc.Type,
		PageSettings: cleanSlice(doc.PageSettings),
		Content:      make([]schema.WidgetNode, len(doc.Content)),
		SourceURL:    doc.SourceURL,
		CreatedAt:    doc.CreatedAt,
	}
	if out.Version == "" {
		out.Version = schema.Version
	}
	if out.Type == "" {
		out.Type = schema.DocumentType
	}
	if out.Title == "" {
		out.Title = schema.DefaultTitle
	}
	for i, n := range doc.Content {
		out.Content[i] = node(n, strconv.Itoa(i))
	}
	return out, nil
}

// ValidateJSON decodes raw and validates it. A missing, null or non-array
// content is a ValidationError.
func ValidateJSON(raw []byte) (schema.Document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return schema.Document{}, fmt.Errorf("document: decode: %w", err)
	}
	content, ok := fields["content"]
	if !ok {
		return schema.Document{}, &schema.ValidationError{Field: "content", Reason: "missing"}
	}
	if c := bytes.TrimSpace(content); len(c) == 0 || c[0] != '[' {
		return schema.Document{}, &schema.ValidationError{Field: "content", Reason: "not an array"}
	}
	var doc schema.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return schema.Document{}, fmt.Errorf("document: decode: %w", err)
	}
	if doc.Content == nil {
		doc.Content = []schema.WidgetNode{}
	}
	return Validate(doc)
}

// node rebuilds n. path is the dotted index path used for missing ids.
func node(n schema.WidgetNode, path string) schema.WidgetNode {
	out := schema.WidgetNode{
		ID:         n.ID,
		Kind:       n.Kind,
		WidgetType: n.WidgetType,
		Settings:   schema.Settings(cleanMap(n.Settings)),
		Children:   make([]schema.WidgetNode, len(n.Children)),
		IsInner:    n.IsInner,
	}
	if out.ID == "" {
		out.ID = "node-" + path
	}
	for i, c := range n.Children {
		out.Children[i] = node(c, path+"."+strconv.Itoa(i))
	}
	switch {
	case len(out.Children) > 0:
		out.Kind = schema.KindContainer
	case out.Kind != schema.KindWidget && out.Kind != schema.KindContainer:
		if out.WidgetType != "" {
			out.Kind = schema.KindWidget
		} else {
			out.Kind = schema.KindContainer
		}
	}
	if out.Kind == schema.KindWidget && out.WidgetType == "" {
		out.Kind = schema.KindContainer
	}
	if out.Kind == schema.KindContainer {
		out.WidgetType = ""
		for k := range out.Settings {
			if schema.WidgetOnlyKeys[k] {
				delete(out.Settings, k)
			}
		}
	}
	return out
}

// cleanMap deep-copies m without nil values.
func cleanMap[M ~map[string]any](m M) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if isNil(v) {
			continue
		}
		out[k] = cleanValue(v)
	}
	return out
}

// cleanSlice deep-copies s without nil values. The result is never nil.
func cleanSlice(s []any) []any {
	out := make([]any, 0, len(s))
	for _, v := range s {
		if isNil(v) {
			continue
		}
		out = append(out, cleanValue(v))
	}
	return out
}

func cleanValue(v any) any {
	switch t := v.(type) {
	case schema.Settings:
		return schema.Settings(cleanMap(t))
	case map[string]any:
		return cleanMap(t)
	case []any:
		return cleanSlice(t)
	default:
		return v
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
