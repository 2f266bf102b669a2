package fetcher

import (
	"bytes"
	"io"
	"unicode"

	"golang.org/x/net/html"
)

var spaIndicators = [][]byte{
	[]byte(`<div id="root"></div>`),
	[]byte(`<div id="app"></div>`),
	[]byte(`<div id="__next"></div>`),
	[]byte(`<noscript>you need to enable javascript`),
	[]byte(`<noscript>enable javascript`),
}

// IsSufficient reports whether a static body carries enough visible text
// to be converted without running its scripts. SPA shells and pages that
// are mostly markup fail.
func IsSufficient(body []byte) bool {
	if len(body) < 256 {
		return false
	}

	text, markup := textMarkupRatio(body)
	total := text + markup
	if total == 0 || text < 200 {
		return false
	}
	if float64(text)/float64(total) < 0.10 {
		return false
	}

	lower := bytes.ToLower(body)
	for _, ind := range spaIndicators {
		if bytes.Contains(lower, ind) {
			return false
		}
	}
	return true
}

// textMarkupRatio counts non-space text bytes against everything else.
// Script and style bodies count as markup.
func textMarkupRatio(body []byte) (text, markup int) {
	z := html.NewTokenizer(bytes.NewReader(body))
	skip := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				markup += len(z.Raw())
			}
			return text, markup
		}
		raw := z.Raw()
		switch tt {
		case html.StartTagToken:
			if name, _ := z.TagName(); isRawText(name) {
				skip++
			}
			markup += len(raw)
		case html.EndTagToken:
			if name, _ := z.TagName(); isRawText(name) && skip > 0 {
				skip--
			}
			markup += len(raw)
		case html.TextToken:
			if skip > 0 {
				markup += len(raw)
				continue
			}
			for _, r := range string(raw) {
				if !unicode.IsSpace(r) {
					text++
				}
			}
		default:
			markup += len(raw)
		}
	}
}

func isRawText(name []byte) bool {
	return string(name) == "script" || string(name) == "style"
}
