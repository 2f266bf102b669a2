// CLAUDE:SUMMARY Serialises Documents to JSON, an HTML scaffold, Markdown, and a design-reference JSON; builds export filenames.
// Package export turns documents into strings. Nothing here touches the
// filesystem; sinks decide where the output goes.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hazyhaar/domforge/schema"
)

// Format is an output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatHTML, FormatMarkdown}

// ErrUnknownFormat is returned for a format outside Formats.
var ErrUnknownFormat = errors.New("export: unknown format")

// ParseFormat accepts a format name, case-insensitively. "md" is an alias
// for markdown and "" means json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "html":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Ext returns the file extension for f.
func (f Format) Ext() string {
	switch f {
	case FormatHTML:
		return "html"
	case FormatMarkdown:
		return "md"
	default:
		return "json"
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "application/json"
	}
}

// JSON serialises doc with two-space indentation. Map keys come out sorted,
// so equal documents give equal strings.
func JSON(doc schema.Document) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("export: json: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Render serialises doc in format f.
func Render(doc schema.Document, f Format) (string, error) {
	switch f {
	case FormatJSON:
		return JSON(doc)
	case FormatHTML:
		return HTML(doc.Content, doc.Title), nil
	case FormatMarkdown:
		return Markdown(doc.Content, doc.Title)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Filename returns elementor_export_<host>_<YYYYMMDD_HHMM>.<ext> with the
// time in UTC. The host falls back to "page" when pageURL has none.
func Filename(pageURL string, f Format, t time.Time) string {
	host := "page"
	if u, err := url.Parse(pageURL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	host = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		}
		return '_'
	}, host)
	return fmt.Sprintf("elementor_export_%s_%s.%s", host, t.UTC().Format("20060102_1504"), f.Ext())
}
