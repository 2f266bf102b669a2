package widget

import (
	"strconv"
	"strings"

	"github.com/hazyhaar/domforge/cssunit"
	"github.com/hazyhaar/domforge/schema"
	"github.com/hazyhaar/domforge/snapshot"
	"github.com/hazyhaar/domforge/style"
)

// merge copies every key of each source into dst; later sources win.
func merge(dst schema.Settings, srcs ...schema.Settings) schema.Settings {
	for _, s := range srcs {
		for k, v := range s {
			dst[k] = v
		}
	}
	return dst
}

// commonSettings carries identity and width keys shared by every node.
func commonSettings(el *snapshot.ElementSnapshot, st style.Snapshot) schema.Settings {
	s := schema.Settings{}
	if el.ID != "" {
		s["_element_id"] = el.ID
	}
	if len(el.Classes) > 0 {
		s["_css_classes"] = strings.Join(el.Classes, " ")
	}
	if w := st.Layout.Width; w.Unit == cssunit.Percent && w.Value > 0 && w.Value < 100 {
		s["_element_width"] = "initial"
		s["_element_custom_width"] = w
	}
	return s
}

func typographySettings(t style.Typography) schema.Settings {
	s := schema.Settings{}
	if t.FontFamily != "" {
		s["typography_font_family"] = t.FontFamily
	}
	if !t.FontSize.IsZero() {
		s["typography_font_size"] = t.FontSize
	}
	if t.FontWeight != 0 && t.FontWeight != 400 {
		s["typography_font_weight"] = strconv.Itoa(t.FontWeight)
	}
	if t.FontStyle != "" && t.FontStyle != "normal" {
		s["typography_font_style"] = t.FontStyle
	}
	if lh := t.LineHeight; !lh.IsZero() && !(lh.Unit == cssunit.Ratio && lh.Value == 1.5) {
		s["typography_line_height"] = lh
	}
	if !t.LetterSpacing.IsZero() {
		s["typography_letter_spacing"] = t.LetterSpacing
	}
	if t.TextTransform != "" && t.TextTransform != "none" {
		s["typography_text_transform"] = t.TextTransform
	}
	if t.TextDecoration != "" && t.TextDecoration != "none" {
		s["typography_text_decoration"] = t.TextDecoration
	}
	if len(s) > 0 {
		s["typography_typography"] = "custom"
	}
	if t.HasColor {
		s["color"] = t.Color
	}
	switch t.TextAlign {
	case "center", "right", "justify":
		s["align"] = t.TextAlign
	case "end":
		s["align"] = "right"
	}
	return s
}

func spacingSettings(sp style.Spacing) schema.Settings {
	s := schema.Settings{}
	if !sp.Margin.IsZero() {
		s["margin"] = dimensions(sp.Margin)
	}
	if !sp.Padding.IsZero() {
		s["padding"] = dimensions(sp.Padding)
	}
	return s
}

func backgroundSettings(bg style.Background) schema.Settings {
	s := schema.Settings{}
	switch {
	case bg.IsGradient && bg.Gradient != nil:
		s["background_background"] = "gradient"
		s["background_gradient_type"] = bg.Gradient.Type
		s["background_gradient_angle"] = cssunit.Unit{Value: bg.Gradient.Angle, Unit: "deg"}
		if len(bg.Gradient.Colors) > 0 {
			s["background_color"] = bg.Gradient.Colors[0]
		}
		if len(bg.Gradient.Colors) > 1 {
			s["background_color_b"] = bg.Gradient.Colors[len(bg.Gradient.Colors)-1]
		}
		return s
	case bg.ImageURL != "":
		s["background_background"] = "classic"
		s["background_image"] = map[string]any{"url": bg.ImageURL, "id": ""}
		if bg.Size != "" && bg.Size != "auto" {
			s["background_size"] = bg.Size
		}
		if bg.Position != "" && bg.Position != "0% 0%" {
			s["background_position"] = bg.Position
		}
		if bg.Repeat != "" && bg.Repeat != "repeat" {
			s["background_repeat"] = bg.Repeat
		}
	}
	if !bg.Transparent && bg.Color != "" {
		s["background_background"] = "classic"
		s["background_color"] = bg.Color
	}
	return s
}

func borderSettings(b style.Border) schema.Settings {
	s := schema.Settings{}
	if b.Visible() {
		s["border_border"] = b.Style.Top
		s["border_width"] = dimensions(b.Width)
		s["border_color"] = b.Color.Top
	}
	if !b.Radius.IsZero() {
		s["border_radius"] = dimensions(style.Edges{
			Top: b.Radius.TopLeft, Right: b.Radius.TopRight,
			Bottom: b.Radius.BottomRight, Left: b.Radius.BottomLeft,
		})
	}
	return s
}

func effectsSettings(e style.Effects) schema.Settings {
	s := schema.Settings{}
	if len(e.BoxShadow) > 0 {
		sh := e.BoxShadow[0]
		s["box_shadow_box_shadow_type"] = "yes"
		s["box_shadow_box_shadow"] = map[string]any{
			"horizontal": sh.OffsetX.Value,
			"vertical":   sh.OffsetY.Value,
			"blur":       sh.Blur.Value,
			"spread":     sh.Spread.Value,
			"color":      sh.Color,
		}
		if sh.Inset {
			s["box_shadow_box_shadow_position"] = "inset"
		}
	}
	if e.Opacity < 1 {
		s["_opacity"] = e.Opacity
	}
	return s
}

// dimensions renders four sides as the target schema's dimension object.
func dimensions(e style.Edges) map[string]any {
	unit := cssunit.PX
	for _, u := range []cssunit.Unit{e.Top, e.Right, e.Bottom, e.Left} {
		if !u.IsZero() {
			unit = u.Unit
			break
		}
	}
	return map[string]any{
		"unit":     unit,
		"top":      num(e.Top.Value),
		"right":    num(e.Right.Value),
		"bottom":   num(e.Bottom.Value),
		"left":     num(e.Left.Value),
		"isLinked": e.Top == e.Right && e.Right == e.Bottom && e.Bottom == e.Left,
	}
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// containerSettings maps layout into the container keys.
func containerSettings(st style.Snapshot) schema.Settings {
	s := schema.Settings{}
	if mw := st.Layout.MaxWidth; !mw.IsZero() && mw.Unit == cssunit.PX {
		s["content_width"] = "boxed"
		s["boxed_width"] = mw
	} else {
		s["content_width"] = "full"
	}
	if mh := st.Layout.MinHeight; !mh.IsZero() {
		s["min_height"] = mh
	}
	switch {
	case st.Layout.Grid != nil:
		g := st.Layout.Grid
		s["container_type"] = "grid"
		if g.Columns > 0 {
			s["grid_columns_grid"] = cssunit.Unit{Value: float64(g.Columns), Unit: "fr"}
		}
		if !g.Gap.IsZero() {
			s["grid_gaps"] = gap(g.Gap)
		}
	case st.Layout.Flex != nil:
		f := st.Layout.Flex
		s["flex_direction"] = f.Direction
		if f.JustifyContent != "" && f.JustifyContent != "normal" {
			s["flex_justify_content"] = f.JustifyContent
		}
		if f.AlignItems != "" && f.AlignItems != "normal" {
			s["flex_align_items"] = f.AlignItems
		}
		if f.Wrap != "" {
			s["flex_wrap"] = f.Wrap
		}
		if !f.Gap.IsZero() {
			s["flex_gap"] = gap(f.Gap)
		}
	default:
		s["flex_direction"] = "column"
	}
	return s
}

func gap(u cssunit.Unit) map[string]any {
	return map[string]any{
		"unit":     u.Unit,
		"size":     u.Value,
		"column":   num(u.Value),
		"row":      num(u.Value),
		"isLinked": true,
	}
}

// rowSettings are the fixed layout keys of a flattened complex element.
func rowSettings() schema.Settings {
	return schema.Settings{
		"content_width":        "full",
		"flex_direction":       "row",
		"flex_justify_content": "space-between",
		"flex_align_items":     "center",
		"flex_wrap":            "wrap",
	}
}

// stripWidgetKeys removes keys that only widgets may carry.
func stripWidgetKeys(s schema.Settings) schema.Settings {
	for k := range s {
		if schema.WidgetOnlyKeys[k] {
			delete(s, k)
		}
	}
	return s
}
