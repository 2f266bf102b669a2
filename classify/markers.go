package classify

import (
	"strings"

	"github.com/hazyhaar/domforge/snapshot"
)

// Social platforms recognised in class names and link targets, in the
// order they are reported.
var socialPlatforms = []struct {
	name  string
	hosts []string
}{
	{"facebook", []string{"facebook.com", "fb.com"}},
	{"instagram", []string{"instagram.com"}},
	{"twitter", []string{"twitter.com", "//x.com"}},
	{"linkedin", []string{"linkedin.com"}},
	{"youtube", []string{"youtube.com", "youtu.be"}},
	{"tiktok", []string{"tiktok.com"}},
	{"pinterest", []string{"pinterest.com"}},
	{"github", []string{"github.com"}},
}

// SocialPlatform returns the platform name for a link target or class, or "".
func SocialPlatform(s string) string {
	ls := strings.ToLower(s)
	for _, p := range socialPlatforms {
		for _, h := range p.hosts {
			if strings.Contains(ls, h) {
				return p.name
			}
		}
	}
	for _, p := range socialPlatforms {
		if strings.Contains(ls, p.name) {
			return p.name
		}
	}
	return ""
}

// IsSocial reports a social class on el or a social link on el or inside it.
func IsSocial(el *snapshot.ElementSnapshot) bool {
	if el.HasClass("social") {
		return true
	}
	isSocialLink := func(e *snapshot.ElementSnapshot) bool {
		href := e.Attr("href")
		return href != "" && SocialPlatform(href) != ""
	}
	return isSocialLink(el) || el.Find(isSocialLink) != nil
}

// IsNavigation reports a nav element or a menu/navbar class on el or inside it.
func IsNavigation(el *snapshot.ElementSnapshot) bool {
	isNav := func(e *snapshot.ElementSnapshot) bool {
		return e.TagName == "nav" || e.HasClass("menu") || e.HasClass("navbar") || hasClassToken(e, "nav")
	}
	return isNav(el) || el.Find(isNav) != nil
}

// IsButton reports a pointer cursor or a btn/button class.
func IsButton(el *snapshot.ElementSnapshot) bool {
	return strings.TrimSpace(el.Style("cursor")) == "pointer" || el.HasClass("btn") || el.HasClass("button")
}

var faTokens = map[string]bool{"fa": true, "fas": true, "far": true, "fab": true, "fal": true, "fad": true}

// isIconClass matches Font Awesome style tokens and any class containing "icon".
func isIconClass(c string) bool {
	lc := strings.ToLower(c)
	return faTokens[lc] || strings.HasPrefix(lc, "fa-") || strings.Contains(lc, "icon")
}

// IsIcon reports whether el itself is an icon marker.
func IsIcon(el *snapshot.ElementSnapshot) bool {
	if el.TagName == "i" || el.TagName == "svg" {
		return true
	}
	for _, c := range el.Classes {
		if isIconClass(c) {
			return true
		}
	}
	return false
}

// HasIconMarker reports an icon on el or among its descendants.
func HasIconMarker(el *snapshot.ElementSnapshot) bool {
	return IsIcon(el) || el.Find(IsIcon) != nil
}

// IconClass returns the class string of the first icon marker, or "".
func IconClass(el *snapshot.ElementSnapshot) string {
	icon := el
	if !IsIcon(el) {
		icon = el.Find(IsIcon)
	}
	if icon == nil {
		return ""
	}
	var parts []string
	for _, c := range icon.Classes {
		if isIconClass(c) {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}

// IsContactInfo reports phone/email markers: tel: or mailto: links, contact
// classes, or contact words in the text.
func IsContactInfo(el *snapshot.ElementSnapshot) bool {
	isContactLink := func(e *snapshot.ElementSnapshot) bool {
		href := strings.ToLower(e.Attr("href"))
		return strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "mailto:")
	}
	if isContactLink(el) || el.Find(isContactLink) != nil {
		return true
	}
	if el.HasClass("phone") || el.HasClass("email") || el.HasClass("contact") {
		return true
	}
	lt := strings.ToLower(el.TextContent)
	return strings.Contains(lt, "contact") || (strings.Contains(lt, "@") && strings.Contains(lt, "."))
}

var headingTags = map[string]bool{"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true}

// IsHeadingTag reports h1..h6.
func IsHeadingTag(tag string) bool { return headingTags[tag] }

func isHeadingWrapper(el *snapshot.ElementSnapshot) bool {
	if el.Attr("role") == "heading" {
		return true
	}
	return len(el.Children) == 1 && headingTags[el.Children[0].TagName]
}

func isLogo(el *snapshot.ElementSnapshot) bool {
	if el.HasClass("logo") || strings.Contains(strings.ToLower(el.ID), "logo") ||
		strings.Contains(strings.ToLower(el.Attr("alt")), "logo") {
		return true
	}
	img := el.Find(snapshot.Tag("img"))
	return img != nil && (img.HasClass("logo") || strings.Contains(strings.ToLower(img.Attr("alt")), "logo"))
}

func hasClassToken(el *snapshot.ElementSnapshot, tok string) bool {
	for _, c := range el.Classes {
		lc := strings.ToLower(c)
		if lc == tok || strings.HasPrefix(lc, tok+"-") || strings.HasSuffix(lc, "-"+tok) {
			return true
		}
	}
	return false
}
