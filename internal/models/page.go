package models

// PageContent holds the structured content extracted from a single web page
type PageContent struct {
	URL             string              `json:"url"`
	Title           string              `json:"title"`
	MetaDescription string              `json:"meta_description"`
	Headings        map[string][]string `json:"headings"` // keyed "h1".."h6", only non-empty levels present
	Paragraphs      []string            `json:"paragraphs"`
	Links           []PageLink          `json:"links"`
	Images          []PageImage         `json:"images"`
	AllText         string              `json:"all_text"`
}

// PageLink is a single anchor found on the page
type PageLink struct {
	Text     string `json:"text"`
	Href     string `json:"href"`     // Resolved to an absolute URL
	External bool   `json:"external"` // True when the registrable domain differs from the page's
}

// PageImage is a single image found on the page
type PageImage struct {
	Src string `json:"src"` // Resolved to an absolute URL
	Alt string `json:"alt"`
}
