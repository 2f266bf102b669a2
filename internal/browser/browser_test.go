package browser

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBlockSet(t *testing.T) {
	set := blockSet([]string{"Images", "fonts", "stylesheets", "media", ""})
	for _, k := range []string{"image", "font", "media"} {
		if !set[k] {
			t.Errorf("expected %s blocked", k)
		}
	}
	if set["stylesheet"] {
		t.Error("stylesheets must never be blocked")
	}
	if len(set) != 3 {
		t.Errorf("unexpected set %v", set)
	}
}

func TestResourceKind(t *testing.T) {
	tests := map[string]string{
		"Image": "image", "images": "image", "Font": "font",
		"Stylesheet": "stylesheet", "XHR": "xhr",
	}
	for in, want := range tests {
		if got := resourceKind(in); got != want {
			t.Errorf("resourceKind(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStealthLevelString(t *testing.T) {
	if LevelHTTP.String() != "http" || LevelHeadless.String() != "headless" || LevelHeadful.String() != "headful" {
		t.Error("unexpected level names")
	}
}

func TestManager_Defaults(t *testing.T) {
	m := NewManager(Config{})
	if m.cfg.Stealth != LevelHeadless {
		t.Errorf("stealth = %v", m.cfg.Stealth)
	}
	if m.cfg.MemoryLimit != 1<<30 || m.cfg.XvfbDisplay != ":99" {
		t.Errorf("defaults not applied: %+v", m.cfg)
	}
	if m.Running() {
		t.Error("chrome must not start before the first Acquire")
	}
}

func TestManager_AcquireAfterClose(t *testing.T) {
	m := NewManager(Config{})
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Acquire(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("got %v, want ErrClosed", err)
	}
}

func TestManager_ReleaseNeverNegative(t *testing.T) {
	m := NewManager(Config{})
	m.Release()
	m.Release()
	if m.tabs != 0 {
		t.Errorf("tabs = %d", m.tabs)
	}
}

// pendingRecycle puts m in the state where Acquire must wait: a recycle is
// due and one tab is still open.
func pendingRecycle(m *Manager) {
	m.mu.Lock()
	m.stale = true
	m.tabs = 1
	m.mu.Unlock()
}

func acquireAsync(m *Manager, ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		_, err := m.Acquire(ctx)
		done <- err
	}()
	return done
}

func TestManager_CloseWakesWaiter(t *testing.T) {
	m := NewManager(Config{})
	pendingRecycle(m)
	done := acquireAsync(m, context.Background())

	select {
	case err := <-done:
		t.Fatalf("Acquire returned early: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	m.Close()
	select {
	case err := <-done:
		if !errors.Is(err, ErrClosed) {
			t.Fatalf("got %v, want ErrClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Acquire still waiting after Close")
	}

	m.Release()
	if m.Running() {
		t.Error("a closed manager must not launch chrome")
	}
}

func TestManager_CancelWakesWaiter(t *testing.T) {
	m := NewManager(Config{})
	pendingRecycle(m)
	ctx, cancel := context.WithCancel(context.Background())
	done := acquireAsync(m, ctx)

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("got %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Acquire ignored cancellation")
	}
	if m.tabs != 1 {
		t.Errorf("cancelled Acquire must not take a slot, tabs = %d", m.tabs)
	}
}

func TestManager_Stealth(t *testing.T) {
	if NewManager(Config{Stealth: LevelHeadful}).Stealth() != LevelHeadful {
		t.Error("headful mode lost")
	}
	if NewManager(Config{Stealth: LevelHTTP}).Stealth() != LevelHeadless {
		t.Error("http mode must launch headless")
	}
}
