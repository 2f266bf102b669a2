// CLAUDE:SUMMARY Approximate computed styles for static nodes: user-agent defaults, CSS inheritance, inline style attribute with shorthand expansion.
package htmldom

import (
	"strings"

	"golang.org/x/net/html"
)

// inheritedProps are the properties a child takes from its parent.
var inheritedProps = []string{
	"color", "font-family", "font-size", "font-style", "font-weight",
	"letter-spacing", "line-height", "text-align", "text-transform", "cursor",
}

var blockTag = map[string]bool{
	"html": true, "body": true, "div": true, "section": true, "article": true,
	"aside": true, "header": true, "footer": true, "main": true, "nav": true,
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "form": true, "figure": true, "figcaption": true,
	"blockquote": true, "pre": true, "address": true, "fieldset": true,
	"hr": true, "dl": true, "dt": true, "dd": true, "table": true,
}

var headingSize = map[string]string{
	"h1": "32px", "h2": "24px", "h3": "18.72px",
	"h4": "16px", "h5": "13.28px", "h6": "10.72px",
}

var headingMargin = map[string]string{
	"h1": "21.44px", "h2": "19.92px", "h3": "18.72px",
	"h4": "21.28px", "h5": "22.18px", "h6": "24.97px",
}

func rootStyle() map[string]string {
	return map[string]string{
		"color":          "rgb(0, 0, 0)",
		"font-family":    "Times New Roman",
		"font-size":      "16px",
		"font-style":     "normal",
		"font-weight":    "400",
		"letter-spacing": "normal",
		"line-height":    "normal",
		"text-align":     "start",
		"text-transform": "none",
		"cursor":         "auto",
	}
}

func inheritFrom(parent map[string]string) map[string]string {
	out := make(map[string]string, len(inheritedProps))
	for _, p := range inheritedProps {
		if v, ok := parent[p]; ok {
			out[p] = v
		}
	}
	return out
}

// resolve computes n's style from the inherited set, the user-agent sheet
// and the inline style attribute, in that order.
func resolve(n *html.Node, inherited map[string]string) map[string]string {
	s := make(map[string]string, len(inherited)+16)
	for k, v := range inherited {
		s[k] = v
	}
	s["background-color"] = "rgba(0, 0, 0, 0)"
	s["background-image"] = "none"
	s["opacity"] = "1"
	s["position"] = "static"
	s["transform"] = "none"
	s["box-shadow"] = "none"
	s["text-decoration"] = "none"
	if blockTag[n.Data] {
		s["display"] = "block"
	} else {
		s["display"] = "inline"
	}

	userAgent(n, s)
	for k, v := range ParseInline(getAttr(n, "style")) {
		s[k] = v
	}
	return s
}

func userAgent(n *html.Node, s map[string]string) {
	switch tag := n.Data; tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		s["font-size"] = headingSize[tag]
		s["font-weight"] = "700"
		s["margin-top"], s["margin-bottom"] = headingMargin[tag], headingMargin[tag]
	case "p", "ul", "ol", "blockquote":
		s["margin-top"], s["margin-bottom"] = "16px", "16px"
	case "body":
		for _, side := range sides {
			s["margin-"+side] = "8px"
		}
	case "b", "strong", "th":
		s["font-weight"] = "700"
	case "em", "i":
		s["font-style"] = "italic"
	case "a":
		if hasAttr(n, "href") {
			s["color"] = "rgb(0, 0, 238)"
			s["text-decoration"] = "underline"
			s["cursor"] = "pointer"
		}
	case "button":
		s["display"] = "inline-block"
		s["font-size"] = "13.3333px"
		s["text-align"] = "center"
		s["background-color"] = "rgb(239, 239, 239)"
		for _, side := range sides {
			s["padding-"+side] = "6px"
			s["border-"+side+"-width"] = "2px"
			s["border-"+side+"-style"] = "outset"
			s["border-"+side+"-color"] = "rgb(118, 118, 118)"
		}
	case "li":
		s["display"] = "list-item"
	case "img", "video", "iframe", "input", "select", "textarea":
		s["display"] = "inline-block"
	case "table":
		s["display"] = "table"
	}
	if tag := n.Data; tag == "ul" || tag == "ol" {
		s["padding-left"] = "40px"
	}
}

var sides = []string{"top", "right", "bottom", "left"}

// ParseInline parses a style attribute into longhand properties. Box
// shorthands (margin, padding, border, border-radius, gap, background) are
// expanded.
func ParseInline(attr string) map[string]string {
	out := map[string]string{}
	for _, decl := range strings.Split(attr, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "!important"))
		if k == "" || v == "" {
			continue
		}
		expand(out, k, v)
	}
	return out
}

func expand(out map[string]string, k, v string) {
	switch k {
	case "margin", "padding":
		for i, val := range boxValues(v) {
			out[k+"-"+sides[i]] = val
		}
	case "border-width", "border-style", "border-color":
		part := strings.TrimPrefix(k, "border-")
		for i, val := range boxValues(v) {
			out["border-"+sides[i]+"-"+part] = val
		}
	case "border":
		w, st, c := splitBorder(v)
		for _, side := range sides {
			out["border-"+side+"-width"] = w
			out["border-"+side+"-style"] = st
			out["border-"+side+"-color"] = c
		}
	case "border-radius":
		corners := []string{"top-left", "top-right", "bottom-right", "bottom-left"}
		for i, val := range boxValues(v) {
			out["border-"+corners[i]+"-radius"] = val
		}
	case "gap":
		f := strings.Fields(v)
		out["gap"] = v
		out["row-gap"] = f[0]
		out["column-gap"] = f[len(f)-1]
	case "background":
		if strings.Contains(v, "url(") || strings.Contains(v, "gradient(") {
			out["background-image"] = v
		} else {
			out["background-color"] = v
		}
	default:
		out[k] = v
	}
}

// boxValues expands the 1-4 value CSS box syntax to top, right, bottom, left.
func boxValues(v string) [4]string {
	f := strings.Fields(v)
	switch len(f) {
	case 1:
		return [4]string{f[0], f[0], f[0], f[0]}
	case 2:
		return [4]string{f[0], f[1], f[0], f[1]}
	case 3:
		return [4]string{f[0], f[1], f[2], f[1]}
	default:
		return [4]string{f[0], f[1], f[2], f[3]}
	}
}

var borderStyles = map[string]bool{
	"none": true, "hidden": true, "solid": true, "dashed": true, "dotted": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

// splitBorder splits "1px solid #ccc" in any order.
func splitBorder(v string) (width, style, color string) {
	width, style, color = "medium", "none", "currentcolor"
	for _, tok := range strings.Fields(v) {
		switch {
		case borderStyles[tok]:
			style = tok
		case tok == "0" || strings.IndexAny(tok[:1], "0123456789.") == 0 || tok == "thin" || tok == "medium" || tok == "thick":
			width = tok
		default:
			color = tok
		}
	}
	return width, style, color
}
