package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"

	"github.com/hazyhaar/domforge/schema"
)

// scaffoldPolicy keeps structural classes and data-id on top of UGC markup.
func scaffoldPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("data-id", "data-widget").OnElements("section", "div")
	return p
}

const scaffoldHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<style>
.e-con { display: flex; flex-direction: column; gap: 20px; }
.e-con.e-row { flex-direction: row; flex-wrap: wrap; justify-content: space-between; align-items: center; }
</style>
</head>
<body>
`

// HTML renders nodes as a static scaffold page. Widget bodies are
// sanitized, so the scaffold is safe to open from an untrusted export.
func HTML(nodes []schema.WidgetNode, title string) string {
	if title == "" {
		title = schema.DefaultTitle
	}
	var b strings.Builder
	fmt.Fprintf(&b, scaffoldHead, html.EscapeString(title))
	b.WriteString(scaffoldPolicy().Sanitize(body(nodes)))
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}

// Markdown renders nodes as Markdown through the HTML scaffold body.
func Markdown(nodes []schema.WidgetNode, title string) (string, error) {
	if title == "" {
		title = schema.DefaultTitle
	}
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	src := "<h1>" + html.EscapeString(title) + "</h1>\n" + scaffoldPolicy().Sanitize(body(nodes))
	md, err := conv.ConvertString(src)
	if err != nil {
		return "", fmt.Errorf("export: markdown: %w", err)
	}
	return strings.TrimSpace(md) + "\n", nil
}

func body(nodes []schema.WidgetNode) string {
	var b strings.Builder
	for i := range nodes {
		writeNode(&b, &nodes[i])
	}
	return b.String()
}

func writeNode(b *strings.Builder, n *schema.WidgetNode) {
	if n.Kind == schema.KindContainer {
		class := "e-con"
		if n.Settings["flex_direction"] == "row" {
			class += " e-row"
		}
		tag := "div"
		if !n.IsInner {
			tag = "section"
		}
		fmt.Fprintf(b, "<%s class=%s data-id=%s>\n", tag, attr(class), attr(n.ID))
		for i := range n.Children {
			writeNode(b, &n.Children[i])
		}
		fmt.Fprintf(b, "</%s>\n", tag)
		return
	}

	s := n.Settings
	fmt.Fprintf(b, "<div class=\"e-widget\" data-widget=%s>", attr(n.WidgetType.WireName()))
	switch n.WidgetType {
	case schema.Heading:
		size := str(s, "header_size")
		if !validHeading(size) {
			size = "h2"
		}
		fmt.Fprintf(b, "<%s>%s</%s>", size, html.EscapeString(str(s, "title")), size)
	case schema.Text:
		b.WriteString(str(s, "editor"))
	case schema.HTML:
		b.WriteString(str(s, "html"))
	case schema.Image:
		img := obj(s, "image")
		fmt.Fprintf(b, "<img src=%s alt=%s>", attr(str(img, "url")), attr(str(img, "alt")))
		if c := str(s, "caption"); c != "" {
			fmt.Fprintf(b, "<p>%s</p>", html.EscapeString(c))
		}
	case schema.Button:
		fmt.Fprintf(b, "<a class=\"button\" href=%s>%s</a>", attr(str(obj(s, "link"), "url")), html.EscapeString(str(s, "text")))
	case schema.Icon:
		fmt.Fprintf(b, "<i class=%s></i>", attr(str(obj(s, "selected_icon"), "value")))
	case schema.IconList:
		b.WriteString("<ul>")
		for _, it := range list(s, "icon_list") {
			b.WriteString("<li>")
			writeLink(b, str(obj(it, "link"), "url"), str(it, "text"))
			b.WriteString("</li>")
		}
		b.WriteString("</ul>")
	case schema.Navigation:
		b.WriteString("<nav><ul>")
		for _, it := range list(s, "menu_items") {
			b.WriteString("<li>")
			writeLink(b, str(obj(it, "item_url"), "url"), str(it, "item_text"))
			b.WriteString("</li>")
		}
		b.WriteString("</ul></nav>")
	case schema.SocialIcons:
		b.WriteString("<ul class=\"social\">")
		for _, it := range list(s, "social_icon_list") {
			name := strings.TrimPrefix(str(obj(it, "social_icon"), "value"), "fab fa-")
			b.WriteString("<li>")
			writeLink(b, str(obj(it, "link"), "url"), name)
			b.WriteString("</li>")
		}
		b.WriteString("</ul>")
	case schema.IconBox:
		fmt.Fprintf(b, "<h3>%s</h3>", html.EscapeString(str(s, "title_text")))
		if d := str(s, "description_text"); d != "" {
			fmt.Fprintf(b, "<p>%s</p>", html.EscapeString(d))
		}
	case schema.Form:
		b.WriteString("<ul class=\"form\">")
		for _, f := range list(s, "form_fields") {
			fmt.Fprintf(b, "<li>%s (%s)</li>",
				html.EscapeString(firstNonEmpty(str(f, "field_label"), str(f, "custom_id"))),
				html.EscapeString(str(f, "field_type")))
		}
		fmt.Fprintf(b, "</ul><p><strong>%s</strong></p>", html.EscapeString(str(s, "button_text")))
	case schema.Video:
		src := firstNonEmpty(str(s, "youtube_url"), str(s, "vimeo_url"), str(obj(s, "hosted_url"), "url"))
		writeLink(b, src, "Video")
	}
	b.WriteString("</div>\n")
}

func writeLink(b *strings.Builder, href, text string) {
	if href == "" {
		b.WriteString(html.EscapeString(text))
		return
	}
	fmt.Fprintf(b, "<a href=%s>%s</a>", attr(href), html.EscapeString(text))
}

func attr(v string) string {
	return `"` + html.EscapeString(v) + `"`
}

func validHeading(tag string) bool {
	return len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6'
}

// Settings are decoded JSON or mapper output; both shapes are read here.

func obj(v any, key string) map[string]any {
	m := asMap(v)
	if m == nil {
		return nil
	}
	return asMap(m[key])
}

func asMap(v any) map[string]any {
	switch t := v.(type) {
	case schema.Settings:
		return t
	case map[string]any:
		return t
	}
	return nil
}

func str(v any, key string) string {
	m := asMap(v)
	if m == nil {
		return ""
	}
	switch t := m[key].(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func list(v any, key string) []any {
	m := asMap(v)
	if m == nil {
		return nil
	}
	l, _ := m[key].([]any)
	return l
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
