package converter

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/domforge/document"
	"github.com/hazyhaar/domforge/export"
	"github.com/hazyhaar/domforge/kit"
	"github.com/hazyhaar/domforge/snapshot"
)

// RegisterMCP registers the conversion tools on an MCP server.
func (c *Converter) RegisterMCP(srv *mcp.Server) {
	c.registerConvertHTMLTool(srv)
	c.registerConvertSnapshotsTool(srv)
	c.registerFormatsTool(srv)
	c.registerValidateTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

var (
	formatProp   = map[string]any{"type": "string", "description": "Output format: json (default), html or markdown"}
	titleProp    = map[string]any{"type": "string", "description": "Document title"}
	pageURLProp  = map[string]any{"type": "string", "description": "URL the content comes from, used to resolve relative links"}
	selectorProp = map[string]any{
		"type": "array", "items": map[string]any{"type": "string"},
		"description": "CSS selectors of the elements to convert (default: body)",
	}
)

// --- convert html ---

type convertHTMLReq struct {
	HTML      string   `json:"html"`
	Selectors []string `json:"selectors"`
	PageURL   string   `json:"page_url"`
	Title     string   `json:"title"`
	Format    string   `json:"format"`
}

func (c *Converter) registerConvertHTMLTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "domforge_convert_html",
		Description: "Convert the selected elements of an HTML document into a page-builder document (json, html or markdown).",
		InputSchema: inputSchema(map[string]any{
			"html":      map[string]any{"type": "string", "description": "Full HTML document"},
			"selectors": selectorProp,
			"page_url":  pageURLProp,
			"title":     titleProp,
			"format":    formatProp,
		}, []string{"html"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*convertHTMLReq)
		snaps, title, err := c.StaticCapture([]byte(r.HTML), r.PageURL, r.Selectors)
		if err != nil {
			return nil, err
		}
		if len(snaps) == 0 {
			return nil, ErrNoSelection
		}
		meta := document.PageMeta{Title: r.Title, SourceURL: r.PageURL}
		if meta.Title == "" {
			meta.Title = title
		}
		res, _, err := c.Convert(snaps, meta, r.Format)
		return res, err
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r convertHTMLReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, kit.Logging(c.logger, tool.Name)(endpoint), decode)
}

// --- convert snapshots ---

type convertSnapshotsReq struct {
	Snapshots []snapshot.ElementSnapshot `json:"snapshots"`
	PageURL   string                     `json:"page_url"`
	Title     string                     `json:"title"`
	Format    string                     `json:"format"`
}

func (c *Converter) registerConvertSnapshotsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "domforge_convert_snapshots",
		Description: "Convert captured element snapshots (tag, attributes, computed styles, children) into a page-builder document.",
		InputSchema: inputSchema(map[string]any{
			"snapshots": map[string]any{"type": "array", "items": map[string]any{"type": "object"}, "description": "Element snapshots"},
			"page_url":  pageURLProp,
			"title":     titleProp,
			"format":    formatProp,
		}, []string{"snapshots"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*convertSnapshotsReq)
		res, _, err := c.Convert(r.Snapshots, document.PageMeta{Title: r.Title, SourceURL: r.PageURL}, r.Format)
		return res, err
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r convertSnapshotsReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, kit.Logging(c.logger, tool.Name)(endpoint), decode)
}

// --- validate ---

type validateReq struct {
	Document json.RawMessage `json:"document"`
	Format   string          `json:"format"`
}

func (c *Converter) registerValidateTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "domforge_validate",
		Description: "Normalise a page-builder document: fill missing ids and defaults, drop null settings, then render it.",
		InputSchema: inputSchema(map[string]any{
			"document": map[string]any{"type": "object", "description": "Document with a content array"},
			"format":   formatProp,
		}, []string{"document"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*validateReq)
		res, _, err := c.ValidateDocument(r.Document, r.Format)
		return res, err
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r validateReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, kit.Logging(c.logger, tool.Name)(endpoint), decode)
}

// --- formats ---

func (c *Converter) registerFormatsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "domforge_formats",
		Description: "List the supported output formats.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(_ context.Context, _ any) (any, error) {
		formats := make([]string, len(export.Formats))
		for i, f := range export.Formats {
			formats[i] = string(f)
		}
		return map[string]any{"formats": formats}, nil
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- grab ---

type grabReq struct {
	URL          string   `json:"url"`
	Selectors    []string `json:"selectors"`
	StealthLevel string   `json:"stealth_level"`
	Title        string   `json:"title"`
	Format       string   `json:"format"`
}

// RegisterMCP registers the conversion tools plus domforge_grab, which
// fetches a live page.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.conv.RegisterMCP(srv)

	tool := &mcp.Tool{
		Name:        "domforge_grab",
		Description: "Load a web page (HTTP first, Chrome when needed), convert the selected elements and record the export.",
		InputSchema: inputSchema(map[string]any{
			"url":           map[string]any{"type": "string", "description": "Page URL"},
			"selectors":     selectorProp,
			"stealth_level": map[string]any{"type": "string", "description": "auto (default), 0 = HTTP, 1 = headless, 2 = headful"},
			"title":         titleProp,
			"format":        formatProp,
		}, []string{"url"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*grabReq)
		exp, err := s.Grab(ctx, PageConfig{
			ID: "mcp", URL: r.URL, Selectors: r.Selectors,
			StealthLevel: r.StealthLevel, Title: r.Title, Format: r.Format,
		})
		if err != nil {
			return nil, err
		}
		return exp, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r grabReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, kit.Logging(s.logger, tool.Name)(endpoint), decode)
}
