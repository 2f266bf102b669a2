// CLAUDE:SUMMARY Lazily launched Chrome for live captures: shared handle, idle-aware recycling by age or JS heap, Xvfb for headful mode.
// Package browser owns the Chrome process used for live captures.
//
// Chrome is launched on first use, shared by every capture, and recycled when
// it gets too old or too heavy. A recycle waits for open tabs to close so a
// capture is never cut off mid-evaluation.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// StealthLevel selects how a page is acquired.
type StealthLevel int

const (
	LevelHTTP     StealthLevel = 0 // static fetch, no browser
	LevelHeadless StealthLevel = 1 // headless Chrome with stealth scripts
	LevelHeadful  StealthLevel = 2 // headful Chrome on Xvfb
)

func (l StealthLevel) String() string {
	switch l {
	case LevelHTTP:
		return "http"
	case LevelHeadless:
		return "headless"
	case LevelHeadful:
		return "headful"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ErrClosed is returned once Close has been called.
var ErrClosed = errors.New("browser: manager is closed")

// Config configures the Manager.
type Config struct {
	// RemoteURL is the DevTools WebSocket of an external Chrome. Empty
	// launches a local one.
	RemoteURL string

	// MemoryLimit in bytes of JS heap before recycling. Default: 1GB.
	MemoryLimit int64

	// RecycleInterval is the maximum Chrome lifetime. Default: 4h.
	RecycleInterval time.Duration

	// ResourceBlocking lists resource types to block: images, fonts, media.
	// Stylesheets are never blocked since captures read computed styles.
	ResourceBlocking []string

	// Stealth is the launch mode. LevelHTTP is treated as LevelHeadless.
	Stealth StealthLevel

	// XvfbDisplay for headful mode. Default: ":99".
	XvfbDisplay string

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.MemoryLimit <= 0 {
		c.MemoryLimit = 1 << 30
	}
	if c.RecycleInterval <= 0 {
		c.RecycleInterval = 4 * time.Hour
	}
	if c.XvfbDisplay == "" {
		c.XvfbDisplay = ":99"
	}
	if c.Stealth == LevelHTTP {
		c.Stealth = LevelHeadless
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Manager hands out the shared Chrome handle.
type Manager struct {
	cfg     Config
	mu      sync.Mutex
	idle    *sync.Cond
	browser *rod.Browser
	lnch    *launcher.Launcher
	xvfb    *exec.Cmd
	startAt time.Time
	tabs    int
	stale   bool
	closed  bool
	stop    context.CancelFunc
}

// NewManager creates a Manager. Chrome starts on the first Acquire.
func NewManager(cfg Config) *Manager {
	cfg.defaults()
	m := &Manager{cfg: cfg}
	m.idle = sync.NewCond(&m.mu)
	return m
}

// Acquire returns the running browser, launching it if needed, and counts
// one open tab against it. Every successful Acquire needs a Release. While a
// recycle is pending it waits for open tabs to close, until ctx is done or
// the manager is closed.
func (m *Manager) Acquire(ctx context.Context) (*rod.Browser, error) {
	stop := context.AfterFunc(ctx, func() {
		m.mu.Lock()
		m.idle.Broadcast()
		m.mu.Unlock()
	})
	defer stop()

	m.mu.Lock()
	defer m.mu.Unlock()

	for {
		if m.closed {
			return nil, ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !m.stale || m.tabs == 0 {
			break
		}
		m.idle.Wait()
	}
	if m.stale {
		m.recycleLocked()
	}
	if m.browser == nil {
		b, err := m.launch()
		if err != nil {
			return nil, err
		}
		m.browser = b
		m.startAt = time.Now()
		mctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		m.stop = cancel
		go m.monitorLoop(mctx, b)
	}
	m.tabs++
	return m.browser, nil
}

// Release returns a tab slot taken by Acquire.
func (m *Manager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tabs > 0 {
		m.tabs--
	}
	if m.tabs == 0 {
		m.idle.Broadcast()
	}
}

// Stealth returns the launch mode.
func (m *Manager) Stealth() StealthLevel { return m.cfg.Stealth }

// Running reports whether Chrome is currently up.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.browser != nil
}

// Recycle marks Chrome for restart. It happens on the next Acquire once
// no tab is open.
func (m *Manager) Recycle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.browser != nil {
		m.stale = true
	}
}

// Close shuts down Chrome and Xvfb.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.cleanup()
	m.idle.Broadcast()
	return nil
}

func (m *Manager) launch() (*rod.Browser, error) {
	log := m.cfg.Logger

	if m.cfg.Stealth == LevelHeadful && m.cfg.RemoteURL == "" {
		if err := m.startXvfb(); err != nil {
			return nil, fmt.Errorf("browser: xvfb: %w", err)
		}
	}

	wsURL := m.cfg.RemoteURL
	if wsURL != "" {
		log.Info("browser: connecting to remote", "url", wsURL)
	} else {
		l := launcher.New()
		if m.cfg.Stealth == LevelHeadful {
			l = l.Headless(false).Env("DISPLAY", m.cfg.XvfbDisplay)
		} else {
			l = l.Headless(true)
		}
		l = l.Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			m.stopXvfb()
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		m.lnch = l
		log.Info("browser: launched local chrome", "url", wsURL, "stealth", m.cfg.Stealth)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		m.cleanup()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	if err := b.IgnoreCertErrors(true); err != nil {
		log.Warn("browser: ignore cert errors failed", "error", err)
	}
	return b, nil
}

func (m *Manager) recycleLocked() {
	m.cfg.Logger.Info("browser: recycling", "uptime", time.Since(m.startAt))
	m.cleanup()
	m.stale = false
}

func (m *Manager) cleanup() {
	if m.stop != nil {
		m.stop()
		m.stop = nil
	}
	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			m.cfg.Logger.Debug("browser: close", "error", err)
		}
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
	m.stopXvfb()
}

// monitorLoop marks b stale when it outlives RecycleInterval or its heap
// passes MemoryLimit.
func (m *Manager) monitorLoop(ctx context.Context, b *rod.Browser) {
	log := m.cfg.Logger
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		m.mu.Lock()
		current, startAt := m.browser == b, m.startAt
		m.mu.Unlock()
		if !current {
			return
		}

		if time.Since(startAt) > m.cfg.RecycleInterval {
			log.Info("browser: recycle interval reached")
			m.Recycle()
			return
		}

		used, err := jsHeapUsage(b)
		if err != nil {
			log.Debug("browser: heap check failed", "error", err)
			continue
		}
		if used > m.cfg.MemoryLimit {
			log.Info("browser: memory limit exceeded", "used", used, "limit", m.cfg.MemoryLimit)
			m.Recycle()
			return
		}
	}
}

// jsHeapUsage reads performance.memory from the first open page.
func jsHeapUsage(b *rod.Browser) (int64, error) {
	pages, err := b.Pages()
	if err != nil || len(pages) == 0 {
		return 0, fmt.Errorf("browser: no pages for heap check")
	}
	res, err := pages[0].Eval(`() => performance.memory ? performance.memory.usedJSHeapSize : 0`)
	if err != nil {
		return 0, err
	}
	return int64(res.Value.Int()), nil
}
