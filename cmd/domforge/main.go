// CLAUDE:SUMMARY CLI entry point for domforge: offline HTML or snapshot conversion, document validation, single-page grabs, config runs, HTTP API and MCP stdio modes.
// Command domforge converts selected page elements into an Elementor document.
//
// Usage:
//
//	domforge -html page.html -selector header -selector main   # offline conversion
//	domforge -snapshots capture.json -reference                # convert saved snapshots
//	domforge -validate export.json -format markdown            # normalise a document
//	domforge -url https://example.com -selector .hero          # grab one page
//	domforge -config domforge.yaml                             # convert configured pages
//	domforge -config domforge.yaml -serve                      # HTTP API
//	domforge -mcp                                              # MCP over stdio
//	domforge -hash-token s3cret                                # bcrypt hash for server.token_hash
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/domforge/converter"
	"github.com/hazyhaar/domforge/document"
	"github.com/hazyhaar/domforge/internal/api"
	"github.com/hazyhaar/domforge/internal/store"
	"github.com/hazyhaar/domforge/snapshot"
)

var version = "dev"

// selectorList collects repeated -selector flags.
type selectorList []string

func (s *selectorList) String() string { return strings.Join(*s, " | ") }

func (s *selectorList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return errors.New("empty selector")
	}
	*s = append(*s, v)
	return nil
}

type options struct {
	configPath string
	htmlPath   string
	snapsPath  string
	validate   string
	pageURL    string
	selectors  selectorList
	format     string
	title      string
	stealth    string
	out        string
	dbPath     string
	addr       string
	reference  bool
	serve      bool
	mcp        bool
	hashToken  string
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "path to domforge.yaml config file")
	flag.StringVar(&o.htmlPath, "html", "", "convert a saved HTML file offline (- for stdin)")
	flag.StringVar(&o.snapsPath, "snapshots", "", "convert element snapshots saved as JSON (- for stdin)")
	flag.StringVar(&o.validate, "validate", "", "normalise a document JSON file and render it (- for stdin)")
	flag.StringVar(&o.pageURL, "url", "", "grab a single URL")
	flag.Var(&o.selectors, "selector", "CSS selector of an element to convert (repeatable)")
	flag.StringVar(&o.format, "format", "", "output format: json, html, markdown")
	flag.StringVar(&o.title, "title", "", "document title")
	flag.StringVar(&o.stealth, "stealth", "auto", "acquisition for -url: 0, 1, 2 or auto")
	flag.StringVar(&o.out, "out", "", "write the result to this file instead of stdout")
	flag.StringVar(&o.dbPath, "db", "", "export history database (overrides store.path)")
	flag.StringVar(&o.addr, "addr", "", "HTTP listen address (overrides server.addr)")
	flag.BoolVar(&o.reference, "reference", false, "emit the design reference instead of a document")
	flag.BoolVar(&o.serve, "serve", false, "serve the HTTP API")
	flag.BoolVar(&o.mcp, "mcp", false, "serve MCP tools over stdio")
	flag.StringVar(&o.hashToken, "hash-token", "", "print the bcrypt hash of a bearer token and exit")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(*logLevel)}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, o); err != nil {
		logger.Error("domforge: fatal", "error", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func run(ctx context.Context, logger *slog.Logger, o options) error {
	if o.hashToken != "" {
		h, err := api.HashToken(o.hashToken)
		if err != nil {
			return err
		}
		fmt.Println(h)
		return nil
	}

	cfg := converter.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = converter.LoadConfigFile(o.configPath); err != nil {
			return err
		}
	}
	if o.format != "" {
		cfg.Export.Format = o.format
	}
	if o.title != "" {
		cfg.Export.Title = o.title
	}

	switch {
	case o.htmlPath != "":
		return runHTML(logger, cfg, o)
	case o.snapsPath != "":
		return runSnapshots(logger, cfg, o)
	case o.validate != "":
		return runValidate(logger, cfg, o)
	}

	var svcOpts []converter.ServiceOption
	dbPath := cfg.Store.Path
	if o.dbPath != "" {
		dbPath = o.dbPath
	}
	if dbPath != "" {
		st, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer st.Close()
		svcOpts = append(svcOpts, converter.WithStore(st))
	}

	switch {
	case o.pageURL != "":
		return runSingle(ctx, logger, cfg, o, svcOpts)
	case o.serve:
		return runServe(ctx, logger, cfg, o, svcOpts)
	case o.mcp:
		return runMCP(ctx, logger, cfg, svcOpts)
	case o.configPath != "":
		return runConfig(ctx, logger, cfg, svcOpts)
	}

	fmt.Fprintln(os.Stderr, "usage: domforge -html <file> [-selector <sel>] | -snapshots <file> | -validate <file> | -url <url> [-selector <sel>] | -config <file> [-serve] | -mcp")
	flag.PrintDefaults()
	return errors.New("nothing to do")
}

// runHTML converts a saved document without network or browser.
func runHTML(logger *slog.Logger, cfg *converter.Config, o options) error {
	raw, err := readInput(o.htmlPath)
	if err != nil {
		return fmt.Errorf("read html: %w", err)
	}
	conv := newConverter(logger, cfg)
	snaps, title, err := conv.StaticCapture(raw, o.pageURL, o.selectors)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return converter.ErrNoSelection
	}
	return emit(logger, conv, cfg, o, snaps, title)
}

// runSnapshots converts snapshots captured elsewhere, one object or an array.
func runSnapshots(logger *slog.Logger, cfg *converter.Config, o options) error {
	raw, err := readInput(o.snapsPath)
	if err != nil {
		return fmt.Errorf("read snapshots: %w", err)
	}
	snaps, err := snapshot.UnmarshalSnapshots(raw)
	if err != nil {
		return err
	}
	if o.pageURL == "" && len(snaps) > 0 {
		o.pageURL = snaps[0].PageURL
	}
	return emit(logger, newConverter(logger, cfg), cfg, o, snaps, "")
}

// runValidate normalises a document file and renders it in the export format.
func runValidate(logger *slog.Logger, cfg *converter.Config, o options) error {
	raw, err := readInput(o.validate)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	res, _, err := newConverter(logger, cfg).ValidateDocument(raw, cfg.Export.Format)
	if err != nil {
		return err
	}
	logger.Info("domforge: validated", "elements", res.Elements, "nodes", res.Nodes)
	return writeOut(o.out, res.Content)
}

func newConverter(logger *slog.Logger, cfg *converter.Config) *converter.Converter {
	opts := converter.OptionsFromConfig(cfg)
	opts.Logger = logger
	return converter.New(opts)
}

// emit writes either the design reference or the converted document.
func emit(logger *slog.Logger, conv *converter.Converter, cfg *converter.Config, o options, snaps []snapshot.ElementSnapshot, title string) error {
	if o.reference {
		out, err := conv.DesignReference(snaps, o.pageURL)
		if err != nil {
			return err
		}
		return writeOut(o.out, string(out))
	}
	meta := document.PageMeta{Title: cfg.Export.Title, SourceURL: o.pageURL}
	if meta.Title == "" {
		meta.Title = title
	}
	res, _, err := conv.Convert(snaps, meta, cfg.Export.Format)
	if err != nil {
		return err
	}
	logger.Info("domforge: converted", "elements", res.Elements, "nodes", res.Nodes, "filename", res.Filename)
	return writeOut(o.out, res.Content)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// runSingle grabs one URL and writes the document.
func runSingle(ctx context.Context, logger *slog.Logger, cfg *converter.Config, o options, svcOpts []converter.ServiceOption) error {
	svc := converter.NewService(cfg, logger, svcOpts...)
	defer svc.Close()

	exp, err := svc.Grab(ctx, converter.PageConfig{
		ID:           "cli",
		URL:          o.pageURL,
		Selectors:    o.selectors,
		StealthLevel: o.stealth,
		Title:        cfg.Export.Title,
		Format:       cfg.Export.Format,
	})
	if err != nil {
		return err
	}
	logger.Info("domforge: grabbed", "url", o.pageURL, "via", exp.Via, "filename", exp.Artifact.Filename)
	return writeOut(o.out, exp.Artifact.Content)
}

// runConfig converts every configured page once and delivers to the sinks.
func runConfig(ctx context.Context, logger *slog.Logger, cfg *converter.Config, svcOpts []converter.ServiceOption) error {
	sinks, err := converter.BuildSinks(cfg.Sinks, os.Stdout, logger)
	if err != nil {
		return err
	}
	svc := converter.NewService(cfg, logger, append(svcOpts, converter.WithSinks(sinks...))...)
	defer svc.Close()
	return svc.Run(ctx)
}

func runServe(ctx context.Context, logger *slog.Logger, cfg *converter.Config, o options, svcOpts []converter.ServiceOption) error {
	sinks, err := converter.BuildSinks(cfg.Sinks, os.Stdout, logger)
	if err != nil {
		return err
	}
	svc := converter.NewService(cfg, logger, append(svcOpts, converter.WithSinks(sinks...))...)
	defer svc.Close()

	addr := cfg.Server.Addr
	if o.addr != "" {
		addr = o.addr
	}
	if cfg.Server.TokenHash == "" {
		logger.Warn("domforge: API authentication disabled, set server.token_hash")
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.New(svc, cfg.Server.TokenHash, logger, api.WithRateLimit(cfg.Server.RateLimit, time.Minute)).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("domforge: listening", "addr", addr, "version", version)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("domforge: shutting down")
	return srv.Shutdown(shutdownCtx)
}

func runMCP(ctx context.Context, logger *slog.Logger, cfg *converter.Config, svcOpts []converter.ServiceOption) error {
	svc := converter.NewService(cfg, logger, svcOpts...)
	defer svc.Close()

	srv := mcp.NewServer(&mcp.Implementation{Name: "domforge", Version: version}, nil)
	svc.RegisterMCP(srv)
	logger.Info("domforge: mcp on stdio")
	return srv.Run(ctx, &mcp.StdioTransport{})
}

func writeOut(path, content string) error {
	if path == "" {
		_, err := io.WriteString(os.Stdout, content)
		if err == nil && !strings.HasSuffix(content, "\n") {
			_, err = io.WriteString(os.Stdout, "\n")
		}
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
