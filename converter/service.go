// CLAUDE:SUMMARY Service orchestrator: resolves stealth level, acquires pages via HTTP or Chrome, converts, fans out to sinks and records history.
package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/hazyhaar/domforge/document"
	"github.com/hazyhaar/domforge/idgen"
	"github.com/hazyhaar/domforge/internal/browser"
	"github.com/hazyhaar/domforge/internal/capture"
	"github.com/hazyhaar/domforge/internal/config"
	"github.com/hazyhaar/domforge/internal/fetcher"
	"github.com/hazyhaar/domforge/internal/sink"
	"github.com/hazyhaar/domforge/internal/store"
	"github.com/hazyhaar/domforge/schema"
	"github.com/hazyhaar/domforge/snapshot"
)

// Service acquires pages, converts the selected elements and emits the
// exports. Create one per domforge instance.
type Service struct {
	cfg     *config.Config
	conv    *Converter
	mgr     *browser.Manager
	browser browser.Config
	mu      sync.Mutex
	headful *browser.Manager // started on demand for stealth_level 2 pages
	fetch   *fetcher.Fetcher
	sinkR   *sink.Router
	store   *store.Store
	logger  *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithStore records every export in st.
func WithStore(st *store.Store) ServiceOption {
	return func(s *Service) { s.store = st }
}

// WithSinks adds output sinks.
func WithSinks(sinks ...Sink) ServiceOption {
	return func(s *Service) {
		for _, sk := range sinks {
			s.sinkR.Add(sk)
		}
	}
}

// WithHTTPClient sets the client used for static fetches.
func WithHTTPClient(c *http.Client) ServiceOption {
	return func(s *Service) {
		s.fetch = fetcher.New(fetcher.WithClient(c), fetcher.WithLogger(s.logger))
	}
}

// WithConverter replaces the Converter derived from cfg.
func WithConverter(c *Converter) ServiceOption {
	return func(s *Service) { s.conv = c }
}

// NewService creates a Service from configuration. Chrome is only started
// when a page needs it.
func NewService(cfg *Config, logger *slog.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	stealthLevel := browser.LevelHeadless
	if cfg.Browser.Stealth == "headful" {
		stealthLevel = browser.LevelHeadful
	}

	bcfg := browser.Config{
		RemoteURL:        cfg.Browser.Remote,
		MemoryLimit:      cfg.Browser.MemoryLimit,
		RecycleInterval:  cfg.Browser.RecycleInterval,
		ResourceBlocking: cfg.Browser.ResourceBlocking,
		Stealth:          stealthLevel,
		XvfbDisplay:      cfg.Browser.XvfbDisplay,
		Logger:           logger,
	}

	convOpts := OptionsFromConfig(cfg)
	convOpts.Logger = logger

	s := &Service{
		cfg:     cfg,
		conv:    New(convOpts),
		mgr:     browser.NewManager(bcfg),
		browser: bcfg,
		fetch:   fetcher.New(fetcher.WithLogger(logger)),
		sinkR:   sink.NewRouter(logger),
		logger:  logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Converter returns the pipeline used by the service.
func (s *Service) Converter() *Converter { return s.conv }

// Store returns the export history, or nil.
func (s *Service) Store() *store.Store { return s.store }

// Export is the outcome of one page conversion.
type Export struct {
	Artifact Artifact        `json:"artifact"`
	Document schema.Document `json:"-"`
	Via      string          `json:"via"` // http | headless | headful
}

// Grab converts one page and delivers the export to every sink.
func (s *Service) Grab(ctx context.Context, page PageConfig) (*Export, error) {
	if page.URL == "" {
		return nil, fmt.Errorf("converter: page %s: missing url", page.ID)
	}
	snaps, title, level, err := s.acquire(ctx, page)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, fmt.Errorf("%w: %s %v", ErrNoSelection, page.URL, page.Selectors)
	}

	meta := document.PageMeta{Title: page.Title, SourceURL: page.URL, CreatedAt: s.conv.opts.Now()}
	if meta.Title == "" {
		meta.Title = title
	}
	res, doc, err := s.conv.Convert(snaps, meta, page.Format)
	if err != nil {
		return nil, err
	}

	a := sink.Artifact{
		ID:          idgen.New(),
		PageID:      page.ID,
		PageURL:     page.URL,
		Title:       res.Title,
		Format:      res.Format,
		Filename:    res.Filename,
		ContentType: res.ContentType,
		Content:     res.Content,
		Elements:    res.Elements,
		Nodes:       res.Nodes,
		CreatedAt:   meta.CreatedAt,
	}
	if err := s.sinkR.Deliver(ctx, a); err != nil {
		s.logger.Error("converter: deliver failed", "url", page.URL, "error", err)
	}
	if s.store != nil {
		if err := s.store.Deliver(ctx, a); err != nil {
			s.logger.Error("converter: record export failed", "id", a.ID, "error", err)
		}
	}

	s.logger.Info("converter: page converted",
		"url", page.URL, "id", page.ID, "via", level, "elements", a.Elements, "nodes", a.Nodes)
	return &Export{Artifact: a, Document: doc, Via: level.String()}, nil
}

// Run converts every configured page, plus the active pages of the store.
// One failing page does not stop the others. The export history is then
// trimmed to store.keep entries.
func (s *Service) Run(ctx context.Context) error {
	pages := append([]PageConfig(nil), s.cfg.Pages...)
	if s.store != nil {
		stored, err := s.store.ListPages(ctx, true)
		if err != nil {
			return fmt.Errorf("converter: load pages: %w", err)
		}
		for _, p := range stored {
			pages = append(pages, PageFromStore(p, s.cfg.Export.Format))
		}
	}

	var errs []error
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := s.Grab(ctx, p); err != nil {
			s.logger.Error("converter: failed to convert page", "url", p.URL, "id", p.ID, "error", err)
			errs = append(errs, err)
		}
	}
	if s.store != nil && s.cfg.Store.Keep > 0 {
		removed, err := s.store.PruneExports(ctx, s.cfg.Store.Keep)
		if err != nil {
			errs = append(errs, fmt.Errorf("converter: prune exports: %w", err))
		} else if removed > 0 {
			s.logger.Info("converter: pruned export history", "removed", removed, "keep", s.cfg.Store.Keep)
		}
	}
	return errors.Join(errs...)
}

// Close shuts down sinks and Chrome. The store is owned by the caller.
func (s *Service) Close() error {
	err := s.sinkR.Close()
	if cerr := s.mgr.Close(); err == nil {
		err = cerr
	}
	s.mu.Lock()
	headful := s.headful
	s.mu.Unlock()
	if headful != nil {
		if cerr := headful.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// managerFor returns the Chrome manager able to serve level. A headless
// browser configuration gets a second, headful manager for level 2 pages.
func (s *Service) managerFor(level browser.StealthLevel) *browser.Manager {
	if level != browser.LevelHeadful || s.mgr.Stealth() == browser.LevelHeadful {
		return s.mgr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.headful == nil {
		cfg := s.browser
		cfg.Stealth = browser.LevelHeadful
		s.headful = browser.NewManager(cfg)
		s.logger.Info("converter: headful browser requested by page")
	}
	return s.headful
}

// PageFromStore converts a registry row to a PageConfig.
func PageFromStore(p *store.Page, defaultFormat string) PageConfig {
	format := p.Format
	if format == "" {
		format = defaultFormat
	}
	return PageConfig{
		ID:           p.ID,
		URL:          p.URL,
		Selectors:    p.Selectors,
		StealthLevel: p.StealthLevel,
		Title:        p.Title,
		Format:       format,
	}
}

// acquire snapshots the page, statically when possible.
func (s *Service) acquire(ctx context.Context, page PageConfig) ([]snapshot.ElementSnapshot, string, browser.StealthLevel, error) {
	level, fetched := s.resolveStealthLevel(ctx, page)

	if level == browser.LevelHTTP {
		if fetched == nil {
			res, err := s.fetch.Fetch(ctx, page.URL)
			if err != nil {
				return nil, "", level, err
			}
			fetched = res
		}
		snaps, title, err := s.conv.StaticCapture(fetched.HTML, page.URL, page.Selectors)
		if err != nil {
			return nil, "", level, err
		}
		if len(snaps) > 0 || page.StealthLevel == "0" {
			return snaps, title, level, nil
		}
		s.logger.Info("converter: selectors unmatched in static HTML, escalating to headless",
			"url", page.URL)
		level = browser.LevelHeadless
	}

	snaps, title, err := s.captureLive(ctx, page, level)
	return snaps, title, level, err
}

func (s *Service) captureLive(ctx context.Context, page PageConfig, level browser.StealthLevel) ([]snapshot.ElementSnapshot, string, error) {
	vp := browser.Viewport{Width: s.cfg.Capture.Viewport.Width, Height: s.cfg.Capture.Viewport.Height}
	tab, err := browser.OpenTab(ctx, s.managerFor(level), page.URL, page.ID, level, vp)
	if err != nil {
		return nil, "", fmt.Errorf("converter: open tab: %w", err)
	}
	defer tab.Close()

	res, err := capture.Capture(ctx, tab, page.URL, selectorsOrBody(page.Selectors), capture.Options{
		MaxDepth: s.conv.opts.MaxDepth,
		MaxText:  s.conv.opts.MaxText,
		MaxHTML:  s.conv.opts.MaxHTML,
		Now:      s.conv.opts.Now,
	})
	if err != nil {
		return nil, "", err
	}
	return res.Snapshots, res.Title, nil
}

// resolveStealthLevel determines how to acquire a page. In auto mode the
// HTTP result is returned so it is not fetched twice.
func (s *Service) resolveStealthLevel(ctx context.Context, page PageConfig) (browser.StealthLevel, *fetcher.Result) {
	switch page.StealthLevel {
	case "0":
		return browser.LevelHTTP, nil
	case "1":
		return browser.LevelHeadless, nil
	case "2":
		return browser.LevelHeadful, nil
	case "auto", "":
		res, err := s.fetch.Fetch(ctx, page.URL)
		if err != nil {
			s.logger.Warn("converter: auto-detect fetch failed, escalating to headless",
				"url", page.URL, "error", err)
			return browser.LevelHeadless, nil
		}
		if res.Sufficient {
			return browser.LevelHTTP, res
		}
		s.logger.Info("converter: content insufficient via HTTP, escalating to headless",
			"url", page.URL)
		return browser.LevelHeadless, nil
	default:
		return browser.LevelHeadless, nil
	}
}

// selectorsOrBody applies the shared default: no selectors means the body.
func selectorsOrBody(selectors []string) []string {
	if len(selectors) == 0 {
		return []string{"body"}
	}
	return selectors
}

func snapshotViewport(v config.ViewportConfig) snapshot.Viewport {
	return snapshot.Viewport{Width: v.Width, Height: v.Height}
}
