package style

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/hazyhaar/domforge/cssunit"
)

// ExtractTypography reads font and text properties.
func ExtractTypography(src Source) Typography {
	color := src.Style("color")
	return Typography{
		FontFamily:     firstFamily(src.Style("font-family")),
		FontSize:       cssunit.Parse(src.Style("font-size")),
		FontWeight:     cssunit.FontWeight(src.Style("font-weight")),
		FontStyle:      keyword(src.Style("font-style")),
		LineHeight:     cssunit.LineHeight(src.Style("line-height")),
		LetterSpacing:  cssunit.Parse(src.Style("letter-spacing")),
		TextAlign:      keyword(src.Style("text-align")),
		TextTransform:  keyword(src.Style("text-transform")),
		TextDecoration: firstToken(src.Style("text-decoration")),
		Color:          cssunit.RGBToHex(color),
		HasColor:       !cssunit.IsTransparent(color),
	}
}

// ExtractSpacing reads margin and padding.
func ExtractSpacing(src Source) Spacing {
	return Spacing{
		Margin:  edges(src, "margin-%s"),
		Padding: edges(src, "padding-%s"),
	}
}

// ExtractBackground reads background color, image and gradient.
func ExtractBackground(src Source, pageURL string) Background {
	raw := src.Style("background-color")
	bg := Background{
		Color:       cssunit.RGBToHex(raw),
		Transparent: cssunit.IsTransparent(raw),
		Size:        keyword(src.Style("background-size")),
		Position:    keyword(src.Style("background-position")),
		Repeat:      keyword(src.Style("background-repeat")),
	}
	img := strings.TrimSpace(src.Style("background-image"))
	if img == "" || img == "none" {
		return bg
	}
	if strings.Contains(img, "gradient(") {
		bg.IsGradient = true
		bg.Gradient = parseGradient(img)
		return bg
	}
	if m := urlRe.FindStringSubmatch(img); m != nil {
		bg.ImageURL = resolveURL(pageURL, m[1])
	}
	return bg
}

// ExtractBorder reads per-side width, style and color plus corner radii.
func ExtractBorder(src Source) Border {
	var b Border
	b.Width = edges(src, "border-%s-width")
	b.Style = EdgeStrings{
		Top:    keyword(src.Style("border-top-style")),
		Right:  keyword(src.Style("border-right-style")),
		Bottom: keyword(src.Style("border-bottom-style")),
		Left:   keyword(src.Style("border-left-style")),
	}
	b.Color = EdgeStrings{
		Top:    cssunit.RGBToHex(src.Style("border-top-color")),
		Right:  cssunit.RGBToHex(src.Style("border-right-color")),
		Bottom: cssunit.RGBToHex(src.Style("border-bottom-color")),
		Left:   cssunit.RGBToHex(src.Style("border-left-color")),
	}
	b.Radius = Corners{
		TopLeft:     cssunit.Parse(firstToken(src.Style("border-top-left-radius"))),
		TopRight:    cssunit.Parse(firstToken(src.Style("border-top-right-radius"))),
		BottomRight: cssunit.Parse(firstToken(src.Style("border-bottom-right-radius"))),
		BottomLeft:  cssunit.Parse(firstToken(src.Style("border-bottom-left-radius"))),
	}
	return b
}

// ExtractLayout reads display, positioning, flex/grid and box sizes.
func ExtractLayout(src Source) Layout {
	l := Layout{
		Display:   keyword(src.Style("display")),
		Position:  keyword(src.Style("position")),
		Cursor:    keyword(src.Style("cursor")),
		Width:     cssunit.Parse(src.Style("width")),
		Height:    cssunit.Parse(src.Style("height")),
		MinWidth:  cssunit.Parse(src.Style("min-width")),
		MaxWidth:  cssunit.Parse(src.Style("max-width")),
		MinHeight: cssunit.Parse(src.Style("min-height")),
		MaxHeight: cssunit.Parse(src.Style("max-height")),
	}
	if l.Display == "" {
		l.Display = "block"
	}
	if l.Position == "" {
		l.Position = "static"
	}
	gap := gapOf(src)
	switch l.Display {
	case "flex", "inline-flex":
		l.Flex = &Flex{
			Direction:      orDefault(keyword(src.Style("flex-direction")), "row"),
			Wrap:           orDefault(keyword(src.Style("flex-wrap")), "nowrap"),
			JustifyContent: keyword(src.Style("justify-content")),
			AlignItems:     keyword(src.Style("align-items")),
			Gap:            gap,
		}
	case "grid", "inline-grid":
		cols := strings.TrimSpace(src.Style("grid-template-columns"))
		l.Grid = &Grid{
			TemplateColumns: cols,
			TemplateRows:    strings.TrimSpace(src.Style("grid-template-rows")),
			Columns:         countTracks(cols),
			Gap:             gap,
		}
	}
	return l
}

// ExtractEffects reads shadows, opacity, transform and filter.
func ExtractEffects(src Source) Effects {
	e := Effects{Opacity: 1}
	if raw := strings.TrimSpace(src.Style("opacity")); raw != "" {
		if f, ok := cssunit.Float(raw); ok {
			e.Opacity = min(max(f, 0), 1)
		}
	}
	if t := keyword(src.Style("transform")); t != "none" {
		e.Transform = strings.TrimSpace(src.Style("transform"))
	}
	if f := keyword(src.Style("filter")); f != "none" {
		e.Filter = strings.TrimSpace(src.Style("filter"))
	}
	e.BoxShadow = ParseBoxShadow(src.Style("box-shadow"))
	return e
}

// ParseBoxShadow parses a computed box-shadow list. "none" yields nil.
func ParseBoxShadow(raw string) []Shadow {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "none" {
		return nil
	}
	var out []Shadow
	for _, part := range splitTopLevel(raw, ',') {
		var sh Shadow
		var lengths []cssunit.Unit
		for _, tok := range splitTopLevel(part, ' ') {
			switch {
			case tok == "inset":
				sh.Inset = true
			case isLengthToken(tok):
				lengths = append(lengths, cssunit.Parse(tok))
			default:
				sh.Color = cssunit.RGBToHex(tok)
			}
		}
		if len(lengths) < 2 {
			continue
		}
		sh.OffsetX, sh.OffsetY = lengths[0], lengths[1]
		if len(lengths) > 2 {
			sh.Blur = lengths[2]
		}
		if len(lengths) > 3 {
			sh.Spread = lengths[3]
		}
		if sh.Color == "" {
			sh.Color = cssunit.Black
		}
		out = append(out, sh)
	}
	return out
}

var (
	urlRe      = regexp.MustCompile(`url\(\s*["']?([^"')]+)["']?\s*\)`)
	angleRe    = regexp.MustCompile(`(-?[\d.]+)deg`)
	gradTypeRe = regexp.MustCompile(`(linear|radial|conic)-gradient`)
	colorTokRe = regexp.MustCompile(`rgba?\([^)]*\)|#[0-9a-fA-F]{3,8}\b`)
)

func parseGradient(raw string) *Gradient {
	g := &Gradient{Type: "linear", Angle: 180}
	if m := gradTypeRe.FindStringSubmatch(raw); m != nil {
		g.Type = m[1]
	}
	switch {
	case angleRe.MatchString(raw):
		if f, ok := cssunit.Float(angleRe.FindStringSubmatch(raw)[1]); ok {
			g.Angle = f
		}
	case strings.Contains(raw, "to right"):
		g.Angle = 90
	case strings.Contains(raw, "to left"):
		g.Angle = 270
	case strings.Contains(raw, "to top"):
		g.Angle = 0
	}
	for _, c := range colorTokRe.FindAllString(raw, -1) {
		g.Colors = append(g.Colors, cssunit.RGBToHex(c))
	}
	return g
}

func resolveURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if base == "" {
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

func edges(src Source, pattern string) Edges {
	get := func(side string) cssunit.Unit {
		return cssunit.Parse(src.Style(strings.Replace(pattern, "%s", side, 1)))
	}
	return Edges{Top: get("top"), Right: get("right"), Bottom: get("bottom"), Left: get("left")}
}

func gapOf(src Source) cssunit.Unit {
	if g := cssunit.Parse(firstToken(src.Style("gap"))); !g.IsZero() {
		return g
	}
	return cssunit.Parse(src.Style("column-gap"))
}

// countTracks counts grid columns in "200px 200px", "repeat(3, 1fr)" or
// "1fr minmax(0, 2fr)" forms.
func countTracks(cols string) int {
	if cols == "" || cols == "none" {
		return 0
	}
	n := 0
	for _, tok := range splitTopLevel(cols, ' ') {
		if strings.HasPrefix(tok, "repeat(") {
			inner := strings.TrimSuffix(strings.TrimPrefix(tok, "repeat("), ")")
			count := strings.TrimSpace(strings.SplitN(inner, ",", 2)[0])
			if k, err := strconv.Atoi(count); err == nil {
				n += k
				continue
			}
		}
		if strings.HasPrefix(tok, "[") {
			continue // line name
		}
		n++
	}
	return n
}

// splitTopLevel splits s on sep, ignoring separators inside parentheses.
func splitTopLevel(s string, sep rune) []string {
	var out []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				if p := strings.TrimSpace(s[start:i]); p != "" {
					out = append(out, p)
				}
				start = i + 1
			}
		}
	}
	if p := strings.TrimSpace(s[start:]); p != "" {
		out = append(out, p)
	}
	return out
}

func isLengthToken(tok string) bool {
	if tok == "" {
		return false
	}
	c := tok[0]
	return c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9')
}

func firstFamily(raw string) string {
	first := strings.SplitN(raw, ",", 2)[0]
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(first), `"'`))
}

func firstToken(raw string) string {
	f := strings.Fields(raw)
	if len(f) == 0 {
		return ""
	}
	return strings.ToLower(f[0])
}

func keyword(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
