package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`
pages:
  - url: https://example.com
    selectors: ["header", ".hero"]
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Capture.MaxDepth != 5 || cfg.Capture.MaxText != 200 || cfg.Capture.MaxHTML != 500 {
		t.Errorf("capture defaults: %+v", cfg.Capture)
	}
	if cfg.Capture.Viewport.Width != 1440 || cfg.Capture.Viewport.Height != 900 {
		t.Errorf("viewport defaults: %+v", cfg.Capture.Viewport)
	}
	if cfg.Browser.RecycleInterval != 4*time.Hour {
		t.Errorf("recycle interval = %v", cfg.Browser.RecycleInterval)
	}
	p := cfg.Pages[0]
	if p.ID != "page-1" || p.StealthLevel != "auto" || p.Format != "json" {
		t.Errorf("page defaults: %+v", p)
	}
	if len(cfg.Sinks) != 1 || cfg.Sinks[0].Type != "stdout" {
		t.Errorf("sinks = %+v", cfg.Sinks)
	}
}

func TestParse_Full(t *testing.T) {
	cfg, err := Parse([]byte(`
browser:
  stealth: headful
  recycle_interval: 30m
  resource_blocking: [images, fonts]
capture:
  max_depth: 3
  viewport: {width: 375, height: 812}
export:
  format: markdown
  title: Landing
pages:
  - id: home
    url: https://example.com
    selectors: ["main"]
    stealth_level: "1"
sinks:
  - type: file
    dir: /tmp/out
  - type: webhook
    url: https://hooks.example.com/x
store:
  path: /tmp/domforge.db
  keep: 50
server:
  addr: 127.0.0.1:9000
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Browser.Stealth != "headful" || cfg.Browser.RecycleInterval != 30*time.Minute {
		t.Errorf("browser: %+v", cfg.Browser)
	}
	if cfg.Capture.MaxDepth != 3 || cfg.Capture.Viewport.Width != 375 {
		t.Errorf("capture: %+v", cfg.Capture)
	}
	if cfg.Pages[0].Format != "markdown" || cfg.Pages[0].Title != "Landing" {
		t.Errorf("page inherits export settings: %+v", cfg.Pages[0])
	}
	if len(cfg.Sinks) != 2 || cfg.Store.Path != "/tmp/domforge.db" || cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Store.Keep != 50 {
		t.Errorf("store keep = %d", cfg.Store.Keep)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name, yaml, want string
	}{
		{"no url", "pages: [{selectors: [a]}]", "missing url"},
		{"blank selector", "pages: [{url: 'https://x', selectors: ['h1', ' ']}]", "empty selector"},
		{"bad level", "pages: [{url: 'https://x', selectors: [a], stealth_level: '9'}]", "stealth_level"},
		{"bad sink", "sinks: [{type: nats}]", "unknown type"},
		{"file sink", "sinks: [{type: file}]", "needs dir"},
		{"webhook sink", "sinks: [{type: webhook}]", "needs url"},
		{"negative keep", "store: {keep: -1}", "keep"},
		{"yaml", "pages: [", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("got %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestParse_PageWithoutSelectors(t *testing.T) {
	cfg, err := Parse([]byte("pages: [{url: 'https://x'}]"))
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Pages[0].Selectors) != 0 {
		t.Errorf("selectors = %v", cfg.Pages[0].Selectors)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domforge.yaml")
	if err := os.WriteFile(path, []byte("export: {format: html}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Export.Format != "html" {
		t.Errorf("format = %q", cfg.Export.Format)
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
