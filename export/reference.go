package export

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/hazyhaar/domforge/snapshot"
	"github.com/hazyhaar/domforge/style"
)

// ReferenceEntry describes one selected element in a design reference.
type ReferenceEntry struct {
	Index       int                  `json:"index"`
	ID          string               `json:"id"`
	TagName     string               `json:"tag_name"`
	Role        string               `json:"semantic_role"`
	Layout      string               `json:"layout_type"`
	WidgetType  string               `json:"widget_type"`
	BoundingBox snapshot.BoundingBox `json:"dimensions"`
	Style       style.Snapshot       `json:"styles"`
}

// ReferenceSummary aggregates the entries.
type ReferenceSummary struct {
	TotalElements int                `json:"total_elements"`
	LayoutTypes   map[string]int     `json:"layout_types"`
	Breakpoints   []style.Breakpoint `json:"breakpoints"`
	HasAnimations bool               `json:"has_animations"`
}

type reference struct {
	ExportedAt string           `json:"exported_at"`
	SourceURL  string           `json:"source_url,omitempty"`
	Elements   []ReferenceEntry `json:"elements"`
	Summary    ReferenceSummary `json:"summary"`
}

// Reference builds the design-reference JSON: every element with its role,
// layout, box and full style snapshot, plus a summary.
func Reference(entries []ReferenceEntry, sourceURL string, at time.Time) ([]byte, error) {
	ref := reference{
		ExportedAt: at.UTC().Format(time.RFC3339),
		SourceURL:  sourceURL,
		Elements:   make([]ReferenceEntry, len(entries)),
		Summary:    ReferenceSummary{TotalElements: len(entries), LayoutTypes: map[string]int{}, Breakpoints: []style.Breakpoint{}},
	}
	seen := map[style.Breakpoint]bool{}
	for i, e := range entries {
		e.Index = i
		if e.ID == "" {
			e.ID = fmt.Sprintf("element-%d", i)
		}
		ref.Elements[i] = e
		ref.Summary.LayoutTypes[e.Layout]++
		if bp := e.Style.Breakpoint; bp != "" && !seen[bp] {
			seen[bp] = true
			ref.Summary.Breakpoints = append(ref.Summary.Breakpoints, bp)
		}
		if t := e.Style.Effects.Transform; t != "" && t != "none" {
			ref.Summary.HasAnimations = true
		}
	}
	sort.Slice(ref.Summary.Breakpoints, func(i, j int) bool {
		return ref.Summary.Breakpoints[i] < ref.Summary.Breakpoints[j]
	})
	out, err := json.MarshalIndent(ref, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: reference: %w", err)
	}
	return out, nil
}
