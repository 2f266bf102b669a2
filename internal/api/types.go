package api

import (
	"github.com/hazyhaar/domforge/converter"
	"github.com/hazyhaar/domforge/document"
	"github.com/hazyhaar/domforge/snapshot"
)

type convertRequest struct {
	Snapshots []snapshot.ElementSnapshot `json:"snapshots"`
	PageURL   string                     `json:"page_url"`
	Title     string                     `json:"title"`
	Format    string                     `json:"format"`
}

func (r convertRequest) meta() document.PageMeta {
	return document.PageMeta{Title: r.Title, SourceURL: r.PageURL}
}

type convertHTMLRequest struct {
	HTML      string   `json:"html"`
	Selectors []string `json:"selectors"`
	PageURL   string   `json:"page_url"`
	Title     string   `json:"title"`
	Format    string   `json:"format"`
}

func (r convertHTMLRequest) meta() document.PageMeta {
	return document.PageMeta{Title: r.Title, SourceURL: r.PageURL}
}

type grabRequest struct {
	ID           string   `json:"id"`
	URL          string   `json:"url"`
	Selectors    []string `json:"selectors"`
	StealthLevel string   `json:"stealth_level"`
	Title        string   `json:"title"`
	Format       string   `json:"format"`
}

func (r grabRequest) page() converter.PageConfig {
	id := r.ID
	if id == "" {
		id = "api"
	}
	return converter.PageConfig{
		ID: id, URL: r.URL, Selectors: r.Selectors,
		StealthLevel: r.StealthLevel, Title: r.Title, Format: r.Format,
	}
}
