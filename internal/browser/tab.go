package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Viewport is the emulated window size of a capture tab.
type Viewport struct {
	Width  int
	Height int
}

// Tab is one navigated page, sized and ready for evaluation.
type Tab struct {
	Page     *rod.Page
	PageURL  string
	PageID   string
	Stealth  StealthLevel
	Viewport Viewport
	manager  *Manager
}

// OpenTab opens pageURL in a new tab at the given viewport. Stealth scripts
// are injected from LevelHeadless up. The caller must Close the tab.
func OpenTab(ctx context.Context, mgr *Manager, pageURL, pageID string, level StealthLevel, vp Viewport) (*Tab, error) {
	b, err := mgr.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	var page *rod.Page
	if level >= LevelHeadless {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		mgr.Release()
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}
	tab := &Tab{Page: page, PageURL: pageURL, PageID: pageID, Stealth: level, Viewport: vp, manager: mgr}

	if vp.Width > 0 && vp.Height > 0 {
		if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width: vp.Width, Height: vp.Height, DeviceScaleFactor: 1,
		}); err != nil {
			mgr.cfg.Logger.Warn("browser: set viewport failed", "error", err)
		}
	}

	if len(mgr.cfg.ResourceBlocking) > 0 {
		if err := applyResourceBlocking(page, mgr.cfg.ResourceBlocking); err != nil {
			mgr.cfg.Logger.Warn("browser: resource blocking failed", "error", err)
		}
	}

	navCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		tab.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		mgr.cfg.Logger.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}
	return tab, nil
}

// Eval runs a JS function in the page and returns its string result.
func (t *Tab) Eval(ctx context.Context, js string, args ...any) (string, error) {
	res, err := t.Page.Context(ctx).Eval(js, args...)
	if err != nil {
		return "", fmt.Errorf("browser: eval: %w", err)
	}
	return res.Value.Str(), nil
}

// Close closes the page and releases its slot on the manager.
func (t *Tab) Close() error {
	if t.Page == nil {
		return nil
	}
	err := t.Page.Close()
	t.Page = nil
	t.manager.Release()
	return err
}
