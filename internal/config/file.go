// CLAUDE:SUMMARY Defines domforge config structs and parses YAML configuration files with defaults.
// Package config holds the service configuration, read from YAML files.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Browser BrowserConfig `yaml:"browser"`
	Capture CaptureConfig `yaml:"capture"`
	Export  ExportConfig  `yaml:"export"`
	Pages   []PageConfig  `yaml:"pages"`
	Sinks   []SinkConfig  `yaml:"sinks"`
	Store   StoreConfig   `yaml:"store"`
	Server  ServerConfig  `yaml:"server"`
}

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig struct {
	Remote           string        `yaml:"remote"`
	MemoryLimit      int64         `yaml:"memory_limit"`
	RecycleInterval  time.Duration `yaml:"recycle_interval"`
	ResourceBlocking []string      `yaml:"resource_blocking"`
	Stealth          string        `yaml:"stealth"` // headless | headful
	XvfbDisplay      string        `yaml:"xvfb_display"`
}

// CaptureConfig bounds what a snapshot records.
type CaptureConfig struct {
	MaxDepth int            `yaml:"max_depth"`
	MaxText  int            `yaml:"max_text"`
	MaxHTML  int            `yaml:"max_html"`
	Viewport ViewportConfig `yaml:"viewport"`
}

// ViewportConfig is the capture window size.
type ViewportConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// ExportConfig sets the output format and document title.
type ExportConfig struct {
	Format string `yaml:"format"` // json | html | markdown
	Title  string `yaml:"title"`
}

// PageConfig defines a page to convert.
type PageConfig struct {
	ID           string   `yaml:"id"`
	URL          string   `yaml:"url"`
	Selectors    []string `yaml:"selectors"` // empty: body
	StealthLevel string   `yaml:"stealth_level"` // 0 | 1 | 2 | auto
	Title        string   `yaml:"title"`
	Format       string   `yaml:"format"`
}

// SinkConfig defines an output backend.
type SinkConfig struct {
	Type string `yaml:"type"` // stdout | file | clipboard | webhook
	URL  string `yaml:"url"`  // webhook
	Dir  string `yaml:"dir"`  // file
	Raw  bool   `yaml:"raw"`  // stdout: content only, no JSON envelope
}

// StoreConfig locates the export history database. Empty disables it.
type StoreConfig struct {
	Path string `yaml:"path"`
	Keep int    `yaml:"keep"` // newest exports kept after a run; 0 keeps all
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	TokenHash string `yaml:"token_hash"` // bcrypt hash of the bearer token
	RateLimit int    `yaml:"rate_limit"` // conversions per client per minute, 0 = unlimited
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.ApplyDefaults()
	return &cfg
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Browser.MemoryLimit <= 0 {
		c.Browser.MemoryLimit = 1 << 30
	}
	if c.Browser.RecycleInterval <= 0 {
		c.Browser.RecycleInterval = 4 * time.Hour
	}
	if c.Browser.XvfbDisplay == "" {
		c.Browser.XvfbDisplay = ":99"
	}
	if c.Browser.Stealth == "" {
		c.Browser.Stealth = "headless"
	}
	if c.Capture.MaxDepth <= 0 {
		c.Capture.MaxDepth = 5
	}
	if c.Capture.MaxText <= 0 {
		c.Capture.MaxText = 200
	}
	if c.Capture.MaxHTML <= 0 {
		c.Capture.MaxHTML = 500
	}
	if c.Capture.Viewport.Width <= 0 {
		c.Capture.Viewport.Width = 1440
	}
	if c.Capture.Viewport.Height <= 0 {
		c.Capture.Viewport.Height = 900
	}
	if c.Export.Format == "" {
		c.Export.Format = "json"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8420"
	}
	for i := range c.Pages {
		p := &c.Pages[i]
		if p.StealthLevel == "" {
			p.StealthLevel = "auto"
		}
		if p.ID == "" {
			p.ID = fmt.Sprintf("page-%d", i+1)
		}
		if p.Format == "" {
			p.Format = c.Export.Format
		}
		if p.Title == "" {
			p.Title = c.Export.Title
		}
	}
	if len(c.Sinks) == 0 {
		c.Sinks = []SinkConfig{{Type: "stdout"}}
	}
}

// Validate rejects configurations that cannot run.
func (c *Config) Validate() error {
	for _, p := range c.Pages {
		if p.URL == "" {
			return fmt.Errorf("config: page %s: missing url", p.ID)
		}
		for _, sel := range p.Selectors {
			if strings.TrimSpace(sel) == "" {
				return fmt.Errorf("config: page %s: empty selector", p.ID)
			}
		}
		switch p.StealthLevel {
		case "auto", "0", "1", "2":
		default:
			return fmt.Errorf("config: page %s: bad stealth_level %q", p.ID, p.StealthLevel)
		}
	}
	for i, s := range c.Sinks {
		switch s.Type {
		case "stdout", "clipboard":
		case "file":
			if s.Dir == "" {
				return fmt.Errorf("config: sink %d: file sink needs dir", i)
			}
		case "webhook":
			if s.URL == "" {
				return fmt.Errorf("config: sink %d: webhook sink needs url", i)
			}
		default:
			return fmt.Errorf("config: sink %d: unknown type %q", i, s.Type)
		}
	}
	if c.Store.Keep < 0 {
		return fmt.Errorf("config: store: keep must not be negative")
	}
	return nil
}
