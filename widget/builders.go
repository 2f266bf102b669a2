package widget

import (
	"errors"
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"

	"github.com/hazyhaar/domforge/classify"
	"github.com/hazyhaar/domforge/schema"
	"github.com/hazyhaar/domforge/snapshot"
	"github.com/hazyhaar/domforge/style"
)

// input is what every settings builder sees.
type input struct {
	el *snapshot.ElementSnapshot
	st style.Snapshot
	m  *Mapper
}

type builder func(in input) (schema.Settings, error)

// builderFor dispatches on the closed WidgetType set. Every value of
// schema.WidgetTypes has a case; the default only fires for values built
// outside the enum.
func builderFor(t schema.WidgetType) (builder, bool) {
	switch t {
	case schema.Heading:
		return buildHeading, true
	case schema.Text:
		return buildText, true
	case schema.Image:
		return buildImage, true
	case schema.Button:
		return buildButton, true
	case schema.Icon:
		return buildIcon, true
	case schema.IconList:
		return buildIconList, true
	case schema.Navigation:
		return buildNavigation, true
	case schema.SocialIcons:
		return buildSocialIcons, true
	case schema.IconBox:
		return buildIconBox, true
	case schema.Form:
		return buildForm, true
	case schema.Video:
		return buildVideo, true
	case schema.HTML:
		return buildHTML, true
	case schema.Container:
		return buildContainer, true
	default:
		return nil, false
	}
}

var (
	errNoSource = errors.New("no media source")
	errNoLinks  = errors.New("no links")
)

func buildHeading(in input) (schema.Settings, error) {
	size := "h2"
	if classify.IsHeadingTag(in.el.TagName) {
		size = in.el.TagName
	} else if h := in.el.Find(func(e *snapshot.ElementSnapshot) bool { return classify.IsHeadingTag(e.TagName) }); h != nil {
		size = h.TagName
	}
	s := schema.Settings{
		"title":       in.el.TextContent,
		"header_size": size,
	}
	if href, external := linkOf(in.el); href != "" {
		s["link"] = linkSetting(href, external, in.el.PageURL)
	}
	return s, nil
}

func buildText(in input) (schema.Settings, error) {
	body := in.m.sanitize(in.el.InnerHTML)
	if strings.TrimSpace(body) == "" {
		body = html.EscapeString(in.el.TextContent)
	}
	if in.el.TagName == "p" {
		body = "<p>" + body + "</p>"
	}
	return schema.Settings{"editor": body}, nil
}

func buildImage(in input) (schema.Settings, error) {
	img := in.el
	if img.TagName != "img" {
		img = in.el.Find(snapshot.Tag("img"))
	}
	if img == nil {
		return nil, errNoSource
	}
	src := firstNonEmpty(img.Attr("src"), img.Attr("data-src"), firstSrcset(img.Attr("srcset")))
	if src == "" {
		return nil, errNoSource
	}
	s := schema.Settings{
		"image":      map[string]any{"url": resolve(in.el.PageURL, src), "id": "", "alt": img.Attr("alt")},
		"image_size": "full",
	}
	if fc := in.el.Find(snapshot.Tag("figcaption")); fc != nil && fc.TextContent != "" {
		s["caption_source"] = "custom"
		s["caption"] = fc.TextContent
	}
	if href, external := linkOf(in.el); href != "" {
		s["link_to"] = "custom"
		s["link"] = linkSetting(href, external, in.el.PageURL)
	}
	return s, nil
}

func buildButton(in input) (schema.Settings, error) {
	text := in.el.TextContent
	if text == "" {
		text = firstNonEmpty(in.el.Attr("value"), in.el.Attr("aria-label"), "Click here")
	}
	s := schema.Settings{
		"text": text,
		"size": buttonSize(in.st.Typography.FontSize.Value),
	}
	if href, external := linkOf(in.el); href != "" {
		s["link"] = linkSetting(href, external, in.el.PageURL)
	}
	if icon := classify.IconClass(in.el); icon != "" {
		s["selected_icon"] = iconValue(icon)
	}
	if in.st.Typography.HasColor {
		s["button_text_color"] = in.st.Typography.Color
	}
	return s, nil
}

// buttonSize buckets a font size (px) into sm, md or lg.
func buttonSize(px float64) string {
	switch {
	case px >= 18:
		return "lg"
	case px >= 16:
		return "md"
	default:
		return "sm"
	}
}

func buildIcon(in input) (schema.Settings, error) {
	icon := classify.IconClass(in.el)
	if icon == "" {
		icon = "fas fa-star"
	}
	s := schema.Settings{"selected_icon": iconValue(icon)}
	if href, external := linkOf(in.el); href != "" {
		s["link"] = linkSetting(href, external, in.el.PageURL)
	}
	return s, nil
}

func buildIconList(in input) (schema.Settings, error) {
	var items []any
	for _, li := range in.el.FindAll(snapshot.Tag("li")) {
		if li.TextContent == "" {
			continue
		}
		item := map[string]any{
			"_id":           in.m.NewID(),
			"text":          li.TextContent,
			"selected_icon": iconValue(firstNonEmpty(classify.IconClass(li), "fas fa-check")),
		}
		if href, external := linkOf(li); href != "" {
			item["link"] = linkSetting(href, external, in.el.PageURL)
		}
		items = append(items, item)
	}
	if len(items) == 0 && in.el.TextContent != "" {
		items = append(items, map[string]any{
			"_id":           in.m.NewID(),
			"text":          in.el.TextContent,
			"selected_icon": iconValue("fas fa-check"),
		})
	}
	if items == nil {
		items = []any{}
	}
	return schema.Settings{"icon_list": items}, nil
}

func buildNavigation(in input) (schema.Settings, error) {
	var items []any
	for _, a := range anchors(in.el) {
		if a.TextContent == "" {
			continue
		}
		href, external := linkOf(a)
		items = append(items, map[string]any{
			"_id":       in.m.NewID(),
			"item_text": a.TextContent,
			"item_url":  linkSetting(href, external, in.el.PageURL),
		})
	}
	if len(items) == 0 {
		return nil, errNoLinks
	}
	layout := "horizontal"
	if f := in.st.Layout.Flex; f != nil && strings.HasPrefix(f.Direction, "column") {
		layout = "vertical"
	}
	s := schema.Settings{"menu_items": items, "layout": layout}
	if f := in.st.Layout.Flex; f != nil && f.JustifyContent != "" && f.JustifyContent != "normal" {
		s["align_items"] = f.JustifyContent
	}
	return s, nil
}

func buildSocialIcons(in input) (schema.Settings, error) {
	var items []any
	seen := map[string]bool{}
	add := func(platform, href string) {
		if platform == "" || seen[platform+href] {
			return
		}
		seen[platform+href] = true
		item := map[string]any{
			"_id":         in.m.NewID(),
			"social_icon": map[string]any{"value": "fab fa-" + platform, "library": "fa-brands"},
		}
		if href != "" {
			item["link"] = linkSetting(href, true, in.el.PageURL)
		}
		items = append(items, item)
	}
	for _, a := range anchors(in.el) {
		href := a.Attr("href")
		add(firstNonEmpty(classify.SocialPlatform(href), classify.SocialPlatform(classify.IconClass(a))), href)
	}
	if len(items) == 0 {
		for _, ic := range in.el.FindAll(classify.IsIcon) {
			add(classify.SocialPlatform(classify.IconClass(ic)), "")
		}
	}
	if len(items) == 0 {
		return nil, errNoLinks
	}
	shape := "rounded"
	if r := in.st.Border.Radius.TopLeft; r.Unit == "%" && r.Value >= 50 {
		shape = "circle"
	}
	return schema.Settings{"social_icon_list": items, "shape": shape}, nil
}

func buildIconBox(in input) (schema.Settings, error) {
	title, desc := in.el.TextContent, ""
	if h := in.el.Find(func(e *snapshot.ElementSnapshot) bool {
		return classify.IsHeadingTag(e.TagName) || e.TagName == "strong"
	}); h != nil && h.TextContent != "" {
		title = h.TextContent
		desc = strings.TrimSpace(strings.Replace(in.el.TextContent, h.TextContent, "", 1))
	}
	s := schema.Settings{
		"selected_icon": iconValue(contactIcon(in.el)),
		"title_text":    title,
	}
	if desc != "" {
		s["description_text"] = desc
	}
	if href, external := linkOf(in.el); href != "" {
		s["link"] = linkSetting(href, external, in.el.PageURL)
	}
	return s, nil
}

// contactIcon picks the icon class for an icon box.
func contactIcon(el *snapshot.ElementSnapshot) string {
	if icon := classify.IconClass(el); icon != "" {
		return icon
	}
	href, _ := linkOf(el)
	lt := strings.ToLower(el.TextContent)
	switch {
	case strings.HasPrefix(href, "tel:") || el.HasClass("phone") || strings.Contains(lt, "phone"):
		return "fas fa-phone"
	case strings.HasPrefix(href, "mailto:") || el.HasClass("email") || strings.Contains(lt, "@"):
		return "fas fa-envelope"
	case el.HasClass("address") || strings.Contains(lt, "address"):
		return "fas fa-map-marker-alt"
	}
	return "fas fa-star"
}

var fieldTypes = map[string]string{
	"text": "text", "email": "email", "tel": "tel", "number": "number",
	"url": "url", "password": "password", "date": "date", "checkbox": "checkbox",
	"radio": "radio", "file": "upload",
}

func buildForm(in input) (schema.Settings, error) {
	isField := snapshot.Tag("input", "textarea", "select")
	fields := in.el.FindAll(isField)
	if isField(in.el) {
		fields = append([]*snapshot.ElementSnapshot{in.el}, fields...)
	}
	var out []any
	buttonText := "Send"
	for i, f := range fields {
		typ := strings.ToLower(f.Attr("type"))
		switch {
		case f.TagName == "textarea":
			typ = "textarea"
		case f.TagName == "select":
			typ = "select"
		case typ == "submit" || typ == "button":
			buttonText = firstNonEmpty(f.Attr("value"), buttonText)
			continue
		case typ == "hidden":
			continue
		default:
			typ = firstNonEmpty(fieldTypes[typ], "text")
		}
		field := map[string]any{
			"_id":         in.m.NewID(),
			"custom_id":   firstNonEmpty(f.Attr("name"), f.ID, "field_"+strconv.Itoa(i+1)),
			"field_type":  typ,
			"field_label": firstNonEmpty(f.Attr("aria-label"), f.Attr("placeholder"), f.Attr("name")),
		}
		if p := f.Attr("placeholder"); p != "" {
			field["placeholder"] = p
		}
		if _, ok := f.Attributes["required"]; ok {
			field["required"] = "true"
		}
		out = append(out, field)
	}
	if b := in.el.Find(snapshot.Tag("button")); b != nil && b.TextContent != "" {
		buttonText = b.TextContent
	}
	if out == nil {
		out = []any{}
	}
	return schema.Settings{"form_fields": out, "button_text": buttonText}, nil
}

func buildVideo(in input) (schema.Settings, error) {
	src := in.el.Attr("src")
	if src == "" {
		if s := in.el.Find(snapshot.Tag("source", "iframe", "video")); s != nil {
			src = s.Attr("src")
		}
	}
	if src == "" {
		return nil, errNoSource
	}
	src = resolve(in.el.PageURL, src)
	ls := strings.ToLower(src)
	switch {
	case strings.Contains(ls, "youtube.com") || strings.Contains(ls, "youtu.be"):
		return schema.Settings{"video_type": "youtube", "youtube_url": src}, nil
	case strings.Contains(ls, "vimeo.com"):
		return schema.Settings{"video_type": "vimeo", "vimeo_url": src}, nil
	default:
		return schema.Settings{"video_type": "hosted", "hosted_url": map[string]any{"url": src, "id": ""}}, nil
	}
}

func buildHTML(in input) (schema.Settings, error) {
	body := in.m.sanitize(in.el.InnerHTML)
	if strings.TrimSpace(body) == "" {
		body = html.EscapeString(in.el.TextContent)
	}
	return schema.Settings{"html": body}, nil
}

func buildContainer(in input) (schema.Settings, error) {
	return containerSettings(in.st), nil
}

// linkSetting renders a URL setting.
func linkSetting(href string, external bool, base string) map[string]any {
	return map[string]any{
		"url":         resolve(base, href),
		"is_external": external,
		"nofollow":    false,
	}
}

// linkOf returns the href of el or of its first descendant anchor and
// whether it opens in a new window.
func linkOf(el *snapshot.ElementSnapshot) (string, bool) {
	a := el
	if a.Attr("href") == "" {
		a = el.Find(func(e *snapshot.ElementSnapshot) bool { return e.Attr("href") != "" })
	}
	if a == nil {
		return "", false
	}
	return a.Attr("href"), a.Attr("target") == "_blank"
}

func anchors(el *snapshot.ElementSnapshot) []*snapshot.ElementSnapshot {
	out := el.FindAll(snapshot.Tag("a"))
	if el.TagName == "a" {
		out = append([]*snapshot.ElementSnapshot{el}, out...)
	}
	return out
}

func iconValue(class string) map[string]any {
	library := "fa-solid"
	for _, tok := range strings.Fields(class) {
		switch tok {
		case "fab", "fa-brands":
			library = "fa-brands"
		case "far", "fa-regular":
			library = "fa-regular"
		}
	}
	return map[string]any{"value": class, "library": library}
}

func resolve(base, ref string) string {
	if base == "" || ref == "" || strings.HasPrefix(ref, "#") ||
		strings.HasPrefix(ref, "tel:") || strings.HasPrefix(ref, "mailto:") {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func firstSrcset(srcset string) string {
	first := strings.TrimSpace(strings.SplitN(srcset, ",", 2)[0])
	return strings.SplitN(first, " ", 2)[0]
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// buildError tags a builder failure with its widget type.
func buildError(t schema.WidgetType, err error) error {
	return fmt.Errorf("widget: build %s: %w", t, err)
}
