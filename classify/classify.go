// CLAUDE:SUMMARY Ordered heuristic cascade that infers semantic role, layout type and widget hint for an element snapshot.
// Package classify decides what an element snapshot represents.
//
// Priority: tag > complexity > content heuristics > fallback. The cascade
// always terminates, so every element gets a verdict, and it depends only on
// the snapshot, so the same element always classifies the same way.
package classify

import (
	"strings"

	"github.com/hazyhaar/domforge/schema"
	"github.com/hazyhaar/domforge/snapshot"
)

// Role is the inferred semantic role of an element.
type Role string

const (
	RoleHeading     Role = "heading"
	RoleText        Role = "text"
	RoleImage       Role = "image"
	RoleLogo        Role = "logo"
	RoleVideo       Role = "video"
	RoleList        Role = "list"
	RoleButton      Role = "button"
	RoleNavigation  Role = "navigation"
	RoleSocialIcons Role = "social-icons"
	RoleIconBox     Role = "icon-box"
	RoleIcon        Role = "icon"
	RoleForm        Role = "form"
	RoleContainer   Role = "container"
	RoleGeneric     Role = "generic"
)

// LayoutType is the element's layout model.
type LayoutType string

const (
	LayoutFlexbox  LayoutType = "flexbox"
	LayoutGrid     LayoutType = "grid"
	LayoutAbsolute LayoutType = "absolute"
	LayoutRelative LayoutType = "relative"
	LayoutBlock    LayoutType = "block"
)

// Verdict is the classifier output.
type Verdict struct {
	Role    Role              `json:"role"`
	Layout  LayoutType        `json:"layout_type"`
	Hint    schema.WidgetType `json:"widget_hint"`
	Complex bool              `json:"complex"`
}

var roleHints = map[Role]schema.WidgetType{
	RoleHeading:     schema.Heading,
	RoleText:        schema.Text,
	RoleImage:       schema.Image,
	RoleLogo:        schema.Image,
	RoleVideo:       schema.Video,
	RoleList:        schema.IconList,
	RoleButton:      schema.Button,
	RoleNavigation:  schema.Navigation,
	RoleSocialIcons: schema.SocialIcons,
	RoleIconBox:     schema.IconBox,
	RoleIcon:        schema.Icon,
	RoleForm:        schema.Form,
	RoleContainer:   schema.Container,
	RoleGeneric:     schema.HTML,
}

// Classify runs the cascade on el.
func Classify(el *snapshot.ElementSnapshot) Verdict {
	v := Verdict{Layout: Layout(el), Role: RoleGeneric}
	if el != nil {
		if r, ok := classifyByTag(el); ok {
			v.Role = r
		} else if IsComplex(el) {
			v.Role = RoleContainer
			v.Complex = true
		} else {
			v.Role = classifyByContent(el)
		}
	}
	v.Hint = roleHints[v.Role]
	return v
}

var tagRoles = map[string]Role{
	"h1": RoleHeading, "h2": RoleHeading, "h3": RoleHeading,
	"h4": RoleHeading, "h5": RoleHeading, "h6": RoleHeading,
	"p": RoleText, "span": RoleText,
	"img":   RoleImage,
	"video": RoleVideo, "iframe": RoleVideo,
	"ul": RoleList, "ol": RoleList,
	"button": RoleButton,
	"nav":    RoleNavigation,
	"form":   RoleForm, "input": RoleForm, "textarea": RoleForm, "select": RoleForm,
	"svg": RoleIcon, "i": RoleIcon,
}

func classifyByTag(el *snapshot.ElementSnapshot) (Role, bool) {
	r, ok := tagRoles[el.TagName]
	if ok && r == RoleImage && isLogo(el) {
		return RoleLogo, true
	}
	return r, ok
}

var containerKeywords = []string{"header", "nav", "menu", "container", "wrapper", "section"}

var landmarkTags = map[string]bool{
	"header": true, "footer": true, "section": true,
	"main": true, "article": true, "aside": true,
}

// IsComplex reports whether el should be expanded child by child: either
// its children are heterogeneous (at least two, spanning two tags) or it
// carries a container class or landmark tag and has something inside.
func IsComplex(el *snapshot.ElementSnapshot) bool {
	if len(el.Children) >= 2 {
		tags := map[string]bool{}
		for _, c := range el.Children {
			tags[c.TagName] = true
		}
		if len(tags) >= 2 {
			return true
		}
	}
	if len(el.Children) == 0 {
		return false
	}
	if landmarkTags[el.TagName] {
		return true
	}
	for _, c := range el.Classes {
		lc := strings.ToLower(c)
		if strings.HasPrefix(lc, "elementor-") {
			return true
		}
		for _, kw := range containerKeywords {
			if strings.Contains(lc, kw) {
				return true
			}
		}
	}
	return false
}

func classifyByContent(el *snapshot.ElementSnapshot) Role {
	switch {
	case el.Find(snapshot.Tag("img")) != nil && !HasIconMarker(el):
		if isLogo(el) {
			return RoleLogo
		}
		return RoleImage
	case IsSocial(el):
		return RoleSocialIcons
	case IsNavigation(el):
		return RoleNavigation
	case IsButton(el):
		return RoleButton
	case HasIconMarker(el) && el.TextContent != "":
		return RoleIconBox
	case isHeadingWrapper(el):
		return RoleHeading
	case len(el.TextContent) > 20 || el.TagName == "p":
		return RoleText
	case len(el.Children) > 1:
		return RoleContainer
	default:
		return RoleGeneric
	}
}

// Layout derives the layout type from display and position.
func Layout(el *snapshot.ElementSnapshot) LayoutType {
	if el == nil {
		return LayoutBlock
	}
	switch strings.TrimSpace(el.Style("display")) {
	case "flex", "inline-flex":
		return LayoutFlexbox
	case "grid", "inline-grid":
		return LayoutGrid
	}
	switch strings.TrimSpace(el.Style("position")) {
	case "absolute", "fixed":
		return LayoutAbsolute
	case "relative":
		return LayoutRelative
	}
	return LayoutBlock
}
