package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/hazyhaar/domforge/dbopen"
	"github.com/hazyhaar/domforge/internal/sink"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db := dbopen.OpenMemory(t)
	if _, err := db.Exec(Schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return &Store{DB: db}
}

func TestExportCRUD(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	e := &Export{
		ID: "exp-1", PageURL: "https://example.com", Title: "Home", Format: "json",
		Filename: "elementor_export_example.com_20240101_1200.json",
		Content:  `{"version":"0.4"}`, Elements: 2, Nodes: 5,
	}
	if err := s.InsertExport(ctx, e); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if e.CreatedAt == 0 {
		t.Error("created_at not set")
	}

	got, err := s.GetExport(ctx, "exp-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Content != e.Content || got.Nodes != 5 || got.Title != "Home" {
		t.Fatalf("got %+v", got)
	}

	missing, err := s.GetExport(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("missing: %+v, %v", missing, err)
	}

	if err := s.DeleteExport(ctx, "exp-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := s.GetExport(ctx, "exp-1"); got != nil {
		t.Error("export still present after delete")
	}
}

func TestListExports(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		url := "https://a.example"
		if i%2 == 0 {
			url = "https://b.example"
		}
		if err := s.InsertExport(ctx, &Export{
			ID: fmt.Sprintf("exp-%d", i), PageURL: url, Format: "json",
			Filename: "f.json", Content: "{}", CreatedAt: int64(i * 1000),
		}); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.ListExports(ctx, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 || all[0].ID != "exp-4" {
		t.Fatalf("all = %d, first = %s", len(all), all[0].ID)
	}
	if all[0].Content != "" {
		t.Error("list must not carry content")
	}

	b, err := s.ListExports(ctx, "https://b.example", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 1 || b[0].ID != "exp-4" {
		t.Fatalf("filtered = %+v", b)
	}

	removed, err := s.PruneExports(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Errorf("removed = %d", removed)
	}
	if left, _ := s.ListExports(ctx, "", 0); len(left) != 2 || left[1].ID != "exp-3" {
		t.Errorf("left = %d", len(left))
	}
}

func TestDeliver(t *testing.T) {
	s := testStore(t)
	var _ sink.Sink = s

	a := sink.Artifact{
		ID: "exp-9", PageURL: "https://example.com", Format: "html",
		Filename: "x.html", Content: "<html></html>", CreatedAt: time.UnixMilli(1234),
	}
	if err := s.Deliver(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetExport(context.Background(), "exp-9")
	if err != nil || got == nil {
		t.Fatalf("get: %+v, %v", got, err)
	}
	if got.CreatedAt != 1234 || got.Format != "html" {
		t.Errorf("got %+v", got)
	}
}

func TestPageCRUD(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p := &Page{ID: "home", URL: "https://example.com", Selectors: []string{"header", ".hero"}}
	if err := s.UpsertPage(ctx, p); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetPage(ctx, "home")
	if err != nil || got == nil {
		t.Fatalf("get: %+v, %v", got, err)
	}
	if got.StealthLevel != "auto" || got.Format != "json" || len(got.Selectors) != 2 {
		t.Errorf("defaults: %+v", got)
	}

	p.Selectors = []string{"main"}
	if err := s.UpsertPage(ctx, p); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.GetPage(ctx, "home"); len(got.Selectors) != 1 || got.Selectors[0] != "main" {
		t.Errorf("upsert did not replace selectors: %+v", got)
	}

	if err := s.UpsertPage(ctx, &Page{ID: "blog", URL: "https://example.com/blog", Selectors: []string{"article"}}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetPageStatus(ctx, "blog", "paused"); err != nil {
		t.Fatal(err)
	}
	active, err := s.ListPages(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 || active[0].ID != "home" {
		t.Errorf("active = %+v", active)
	}
	all, _ := s.ListPages(ctx, false)
	if len(all) != 2 {
		t.Errorf("all = %d", len(all))
	}

	if err := s.DeletePage(ctx, "home"); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.GetPage(ctx, "home"); got != nil {
		t.Error("page still present")
	}
}

func TestOpen_File(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "sub", "domforge.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, err := s.ListExports(context.Background(), "", 10); err != nil {
		t.Fatal(err)
	}
}
