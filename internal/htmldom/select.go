// CLAUDE:SUMMARY CSS selection over x/net/html trees via cascadia: full selector groups, pseudo-classes, attribute operators and sibling combinators.
package htmldom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// ErrEmptySelector is returned for a blank selector.
var ErrEmptySelector = errors.New("htmldom: empty selector")

// Compile parses a selector group such as "header, main > .hero".
func Compile(selector string) (cascadia.SelectorGroup, error) {
	if strings.TrimSpace(selector) == "" {
		return nil, ErrEmptySelector
	}
	sel, err := cascadia.ParseGroup(selector)
	if err != nil {
		return nil, fmt.Errorf("htmldom: selector %q: %w", selector, err)
	}
	return sel, nil
}

// QuerySelectorAll returns the element nodes matching selector in document
// order, each once, with the same semantics as the browser's
// document.querySelectorAll.
func QuerySelectorAll(doc *html.Node, selector string) ([]*html.Node, error) {
	sel, err := Compile(selector)
	if err != nil {
		return nil, err
	}
	return cascadia.QueryAll(doc, sel), nil
}

// Select resolves each selector and wraps the matches. An element matched
// by several selectors is returned once, at its first position.
func Select(doc *html.Node, selectors []string) ([]*Element, error) {
	seen := map[*html.Node]bool{}
	var out []*Element
	for _, sel := range selectors {
		nodes, err := QuerySelectorAll(doc, sel)
		if err != nil {
			return nil, err
		}
		for _, n := range nodes {
			if seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, Wrap(n))
		}
	}
	return out, nil
}
