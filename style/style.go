// CLAUDE:SUMMARY Builds a normalised StyleSnapshot (typography, spacing, background, border, layout, effects) from computed styles.
// Package style turns an element's computed style into a normalised record.
//
// Each sub-extractor is independent and fail-soft: a panic inside one is
// recovered, its section falls back to zero defaults, the section name is
// recorded in Snapshot.Faults and the others still run.
package style

import (
	"fmt"

	"github.com/hazyhaar/domforge/cssunit"
)

// Source is a computed-style lookup by CSS property name.
type Source interface {
	Style(prop string) string
}

// Breakpoint is a responsive width class.
type Breakpoint string

const (
	Mobile  Breakpoint = "mobile"
	Tablet  Breakpoint = "tablet"
	Desktop Breakpoint = "desktop"
)

// BreakpointFor classifies a viewport width. Unknown (0) is desktop.
func BreakpointFor(width int) Breakpoint {
	switch {
	case width <= 0:
		return Desktop
	case width <= 768:
		return Mobile
	case width <= 1024:
		return Tablet
	default:
		return Desktop
	}
}

// Snapshot is the normalised style of one element.
type Snapshot struct {
	Typography Typography `json:"typography"`
	Spacing    Spacing    `json:"spacing"`
	Background Background `json:"background"`
	Border     Border     `json:"border"`
	Layout     Layout     `json:"layout"`
	Effects    Effects    `json:"effects"`
	Breakpoint Breakpoint `json:"breakpoint"`

	// Faults lists sub-extractors that fell back to defaults.
	Faults []string `json:"-"`
}

type Typography struct {
	FontFamily     string       `json:"font_family"`
	FontSize       cssunit.Unit `json:"font_size"`
	FontWeight     int          `json:"font_weight"`
	FontStyle      string       `json:"font_style"`
	LineHeight     cssunit.Unit `json:"line_height"`
	LetterSpacing  cssunit.Unit `json:"letter_spacing"`
	TextAlign      string       `json:"text_align"`
	TextTransform  string       `json:"text_transform"`
	TextDecoration string       `json:"text_decoration"`
	Color          string       `json:"color"`
	HasColor       bool         `json:"-"`
}

// Edges holds one Unit per box side.
type Edges struct {
	Top    cssunit.Unit `json:"top"`
	Right  cssunit.Unit `json:"right"`
	Bottom cssunit.Unit `json:"bottom"`
	Left   cssunit.Unit `json:"left"`
}

// IsZero reports whether every side is 0.
func (e Edges) IsZero() bool {
	return e.Top.IsZero() && e.Right.IsZero() && e.Bottom.IsZero() && e.Left.IsZero()
}

// EdgeStrings holds one keyword or color per box side.
type EdgeStrings struct {
	Top    string `json:"top"`
	Right  string `json:"right"`
	Bottom string `json:"bottom"`
	Left   string `json:"left"`
}

type Corners struct {
	TopLeft     cssunit.Unit `json:"top_left"`
	TopRight    cssunit.Unit `json:"top_right"`
	BottomRight cssunit.Unit `json:"bottom_right"`
	BottomLeft  cssunit.Unit `json:"bottom_left"`
}

func (c Corners) IsZero() bool {
	return c.TopLeft.IsZero() && c.TopRight.IsZero() && c.BottomRight.IsZero() && c.BottomLeft.IsZero()
}

type Spacing struct {
	Margin  Edges `json:"margin"`
	Padding Edges `json:"padding"`
}

// Gradient is a parsed CSS gradient.
type Gradient struct {
	Type   string   `json:"type"` // linear | radial | conic
	Angle  float64  `json:"angle"`
	Colors []string `json:"colors"`
}

type Background struct {
	Color       string    `json:"color"`
	Transparent bool      `json:"transparent"`
	ImageURL    string    `json:"image_url,omitempty"`
	IsGradient  bool      `json:"is_gradient"`
	Gradient    *Gradient `json:"gradient,omitempty"`
	Size        string    `json:"size"`
	Position    string    `json:"position"`
	Repeat      string    `json:"repeat"`
}

type Border struct {
	Width  Edges       `json:"width"`
	Style  EdgeStrings `json:"style"`
	Color  EdgeStrings `json:"color"`
	Radius Corners     `json:"radius"`
}

// Visible reports whether any side paints a border.
func (b Border) Visible() bool {
	sides := []struct {
		w cssunit.Unit
		s string
	}{
		{b.Width.Top, b.Style.Top}, {b.Width.Right, b.Style.Right},
		{b.Width.Bottom, b.Style.Bottom}, {b.Width.Left, b.Style.Left},
	}
	for _, s := range sides {
		if !s.w.IsZero() && s.s != "" && s.s != "none" && s.s != "hidden" {
			return true
		}
	}
	return false
}

type Flex struct {
	Direction      string       `json:"direction"`
	Wrap           string       `json:"wrap"`
	JustifyContent string       `json:"justify_content"`
	AlignItems     string       `json:"align_items"`
	Gap            cssunit.Unit `json:"gap"`
}

type Grid struct {
	TemplateColumns string       `json:"template_columns"`
	TemplateRows    string       `json:"template_rows"`
	Columns         int          `json:"columns"`
	Gap             cssunit.Unit `json:"gap"`
}

type Layout struct {
	Display   string       `json:"display"`
	Position  string       `json:"position"`
	Cursor    string       `json:"cursor,omitempty"`
	Flex      *Flex        `json:"flex,omitempty"`
	Grid      *Grid        `json:"grid,omitempty"`
	Width     cssunit.Unit `json:"width"`
	Height    cssunit.Unit `json:"height"`
	MinWidth  cssunit.Unit `json:"min_width"`
	MaxWidth  cssunit.Unit `json:"max_width"`
	MinHeight cssunit.Unit `json:"min_height"`
	MaxHeight cssunit.Unit `json:"max_height"`
}

type Shadow struct {
	OffsetX cssunit.Unit `json:"offset_x"`
	OffsetY cssunit.Unit `json:"offset_y"`
	Blur    cssunit.Unit `json:"blur"`
	Spread  cssunit.Unit `json:"spread"`
	Color   string       `json:"color"`
	Inset   bool         `json:"inset"`
}

type Effects struct {
	BoxShadow []Shadow `json:"box_shadow,omitempty"`
	Opacity   float64  `json:"opacity"`
	Transform string   `json:"transform,omitempty"`
	Filter    string   `json:"filter,omitempty"`
}

// Extract runs every sub-extractor against src. pageURL resolves relative
// background images.
func Extract(src Source, viewportWidth int, pageURL string) Snapshot {
	s := Snapshot{Effects: Effects{Opacity: 1}}
	run := func(name string, fn func()) {
		defer func() {
			if r := recover(); r != nil {
				s.Faults = append(s.Faults, fmt.Sprintf("%s: %v", name, r))
			}
		}()
		fn()
	}
	run("typography", func() { s.Typography = ExtractTypography(src) })
	run("spacing", func() { s.Spacing = ExtractSpacing(src) })
	run("background", func() { s.Background = ExtractBackground(src, pageURL) })
	run("border", func() { s.Border = ExtractBorder(src) })
	run("layout", func() { s.Layout = ExtractLayout(src) })
	run("effects", func() { s.Effects = ExtractEffects(src) })
	s.Breakpoint = BreakpointFor(viewportWidth)
	return s
}
