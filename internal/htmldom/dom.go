// CLAUDE:SUMMARY Static DOM adapter: parses HTML with x/net/html and exposes nodes as snapshot.Element with user-agent default styles plus inline styles.
// Package htmldom adapts a statically fetched HTML document to the
// snapshot.Element view, so pages that render without JavaScript can be
// converted without a browser.
//
// There is no layout engine: bounding boxes are zero and computed styles are
// user-agent defaults, inherited properties and the inline style attribute.
package htmldom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/hazyhaar/domforge/snapshot"
)

// Parse parses an HTML document.
func Parse(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("htmldom: parse: %w", err)
	}
	return doc, nil
}

// ParseString parses an HTML document held in s.
func ParseString(s string) (*html.Node, error) {
	return Parse(strings.NewReader(s))
}

// Title returns the trimmed text of the document's <title>, or "".
func Title(doc *html.Node) string {
	for _, n := range findAllByTag(doc, "title") {
		if t := snapshot.CollapseSpace(collectText(n)); t != "" {
			return t
		}
	}
	return ""
}

// Element wraps an element node. It implements snapshot.Element.
type Element struct {
	node     *html.Node
	computed map[string]string
}

var _ snapshot.Element = (*Element)(nil)

// Wrap returns the Element view of n, resolving inherited styles from its
// ancestors.
func Wrap(n *html.Node) *Element {
	var chain []*html.Node
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			chain = append(chain, p)
		}
	}
	inherited := rootStyle()
	for i := len(chain) - 1; i >= 0; i-- {
		inherited = inheritFrom(resolve(chain[i], inherited))
	}
	return &Element{node: n, computed: resolve(n, inherited)}
}

// Node returns the wrapped node.
func (e *Element) Node() *html.Node { return e.node }

func (e *Element) TagName() string { return e.node.Data }

func (e *Element) Attributes() map[string]string {
	out := make(map[string]string, len(e.node.Attr))
	for _, a := range e.node.Attr {
		out[a.Key] = a.Val
	}
	return out
}

func (e *Element) ComputedStyle(prop string) string { return e.computed[prop] }

// BoundingBox is always zero: a static document has no layout.
func (e *Element) BoundingBox() snapshot.BoundingBox { return snapshot.BoundingBox{} }

func (e *Element) Children() []snapshot.Element {
	inherited := inheritFrom(e.computed)
	var out []snapshot.Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || skipTag[c.Data] {
			continue
		}
		out = append(out, &Element{node: c, computed: resolve(c, inherited)})
	}
	return out
}

func (e *Element) Text() string { return collectText(e.node) }

func (e *Element) InnerHTML() string {
	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return buf.String()
		}
	}
	return buf.String()
}

// skipTag lists elements that never render content.
var skipTag = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"head": true, "meta": true, "link": true, "title": true,
}

// collectText concatenates descendant text, skipping non-rendered elements.
func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
		case html.ElementNode:
			if skipTag[n.Data] {
				return
			}
			if blockTag[n.Data] || n.Data == "br" {
				sb.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func findAllByTag(root *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}
