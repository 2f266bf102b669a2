package converter

import (
	"github.com/hazyhaar/domforge/internal/config"
)

// Config is the top-level domforge configuration. Re-exported from internal.
type Config = config.Config

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig = config.BrowserConfig

// CaptureConfig bounds snapshots.
type CaptureConfig = config.CaptureConfig

// PageConfig defines a page to convert.
type PageConfig = config.PageConfig

// SinkConfig defines an output backend.
type SinkConfig = config.SinkConfig

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	return config.LoadFile(path)
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	return config.Default()
}

// OptionsFromConfig derives converter Options from the capture and export
// sections.
func OptionsFromConfig(cfg *Config) Options {
	return Options{
		MaxDepth: cfg.Capture.MaxDepth,
		MaxText:  cfg.Capture.MaxText,
		MaxHTML:  cfg.Capture.MaxHTML,
		Viewport: snapshotViewport(cfg.Capture.Viewport),
		Title:    cfg.Export.Title,
	}
}
