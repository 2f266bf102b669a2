// CLAUDE:SUMMARY Parses CSS length strings into {value, unit} pairs and normalises colors to lowercase #rrggbb.
// Package cssunit normalises computed CSS values. Every function is total:
// unreadable input falls back to a harmless default instead of failing.
package cssunit

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Recognised units.
const (
	PX      = "px"
	EM      = "em"
	REM     = "rem"
	Percent = "%"
	PT      = "pt"
	VH      = "vh"
	VW      = "vw"
	Ratio   = "ratio"
)

// Unit is a normalised numeric CSS value.
type Unit struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Zero is the conventional value for empty, auto and none.
var Zero = Unit{Value: 0, Unit: PX}

// IsZero reports whether the value is 0, whatever its unit.
func (u Unit) IsZero() bool { return u.Value == 0 }

func (u Unit) String() string {
	if u.Unit == Ratio {
		return strconv.FormatFloat(u.Value, 'f', -1, 64)
	}
	return strconv.FormatFloat(u.Value, 'f', -1, 64) + u.Unit
}

var lengthRe = regexp.MustCompile(`^([-+]?(?:\d+\.?\d*|\.\d+))([a-z%]*)$`)

var knownUnits = map[string]bool{PX: true, EM: true, REM: true, Percent: true, PT: true, VH: true, VW: true}

// Parse converts a CSS length such as "12px", "1.5em" or "50%" into a Unit.
// Empty strings, keywords and unknown suffixes yield Zero; bare numbers are px.
func Parse(raw string) Unit {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "", "auto", "none", "normal", "initial", "inherit":
		return Zero
	}
	m := lengthRe.FindStringSubmatch(s)
	if m == nil {
		return Zero
	}
	v, ok := Float(m[1])
	if !ok {
		return Zero
	}
	unit := m[2]
	if unit == "" {
		unit = PX
	}
	if !knownUnits[unit] {
		return Zero
	}
	return Unit{Value: v, Unit: unit}
}

// LineHeight parses a line-height value. "normal" maps to a 1.5 ratio and a
// unitless number is a ratio of the font size.
func LineHeight(raw string) Unit {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "normal" {
		return Unit{Value: 1.5, Unit: Ratio}
	}
	if v, ok := Float(s); ok {
		return Unit{Value: v, Unit: Ratio}
	}
	return Parse(s)
}

// Float parses a plain number. NaN, infinities and out-of-range values are
// rejected so they never reach a serialised document.
func Float(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FontWeight converts a font-weight keyword or number to its numeric weight.
func FontWeight(raw string) int {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "bold":
		return 700
	case "bolder":
		return 800
	case "lighter":
		return 300
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return 400
}

// Black is returned for any color that cannot be read.
const Black = "#000000"

var namedColors = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"green":   "#008000",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"orange":  "#ffa500",
	"purple":  "#800080",
	"gray":    "#808080",
	"grey":    "#808080",
	"silver":  "#c0c0c0",
	"navy":    "#000080",
	"teal":    "#008080",
	"maroon":  "#800000",
	"olive":   "#808000",
	"lime":    "#00ff00",
	"aqua":    "#00ffff",
	"fuchsia": "#ff00ff",
}

var rgbRe = regexp.MustCompile(`^rgba?\(\s*([\d.]+)\s*[, ]\s*([\d.]+)\s*[, ]\s*([\d.]+)\s*(?:[,/]\s*([\d.]+%?)\s*)?\)$`)

// RGBToHex converts rgb(), rgba(), hex or named colors to lowercase
// "#rrggbb". Transparent and unreadable colors become Black.
func RGBToHex(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(s, "#") {
		return expandHex(s)
	}
	if hex, ok := namedColors[s]; ok {
		return hex
	}
	m := rgbRe.FindStringSubmatch(s)
	if m == nil {
		return Black
	}
	var out [3]int
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(m[i+1], 64)
		if err != nil {
			return Black
		}
		out[i] = clampByte(f)
	}
	return fmt.Sprintf("#%02x%02x%02x", out[0], out[1], out[2])
}

// IsTransparent reports whether a computed color paints nothing.
func IsTransparent(raw string) bool {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" || s == "transparent" {
		return true
	}
	m := rgbRe.FindStringSubmatch(s)
	if m == nil || m[4] == "" {
		return false
	}
	a := strings.TrimSuffix(m[4], "%")
	f, err := strconv.ParseFloat(a, 64)
	return err == nil && f == 0
}

func expandHex(s string) string {
	h := strings.TrimPrefix(s, "#")
	for _, c := range h {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return Black
		}
	}
	switch len(h) {
	case 3, 4:
		return "#" + string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	case 6, 8:
		return "#" + h[:6]
	}
	return Black
}

func clampByte(f float64) int {
	if f < 0 {
		return 0
	}
	if f > 255 {
		return 255
	}
	return int(f + 0.5)
}
