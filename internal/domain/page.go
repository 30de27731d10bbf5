package domain

import "time"

// PageStatusPublished marks a page visible to readers and to related-content ranking
const PageStatusPublished = "publish"

// ProductReference is a dataset-supplied product slot on a gift page
type ProductReference struct {
	ASIN     string `json:"asin"`
	Label    string `json:"label"`
	Notes    string `json:"notes"`
	URL      string `json:"url"`
	ImageURL string `json:"image_url"`
}

// FAQItem is a question/answer pair shown on a gift page
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Page is a gift idea page as stored by the content host
type Page struct {
	ID              int64              `json:"id"`
	Slug            string             `json:"slug"`
	Title           string             `json:"title"`
	Intro           string             `json:"intro"`
	Status          string             `json:"status"`
	SectionHeadings []string           `json:"section_headings"`
	FAQ             []FAQItem          `json:"faq"`
	TopPicksCount   int                `json:"top_picks_count"`
	TopPicks        []ProductReference `json:"top_picks"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// PageSummary is the minimal page data needed for navigation links
type PageSummary struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Permalink string `json:"permalink"`
}

// ProductView is a top pick after enrichment has been merged in
type ProductView struct {
	ASIN     string           `json:"asin"`
	Label    string           `json:"label"`
	Notes    string           `json:"notes"`
	URL      string           `json:"url"`
	ImageURL string           `json:"image_url"`
	Source   EnrichmentSource `json:"source"`
}

// TermLink is an "explore more" navigation entry
type TermLink struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// PageView is the data a template needs to render one gift page
type PageView struct {
	ID            int64         `json:"id"`
	Slug          string        `json:"slug"`
	Title         string        `json:"title"`
	Permalink     string        `json:"permalink"`
	Intro         string        `json:"intro"`
	Sections      []string      `json:"sections"`
	FAQ           []FAQItem     `json:"faq"`
	FAQSchema     string        `json:"faq_schema,omitempty"`
	TermLinks     []TermLink    `json:"term_links"`
	TopPicksCount int           `json:"top_picks_count"`
	TopPicks      []ProductView `json:"top_picks"`
	Related       []PageSummary `json:"related"`
}

// SyncReport summarizes one dataset import run
type SyncReport struct {
	Created            int      `json:"created"`
	Updated            int      `json:"updated"`
	Skipped            int      `json:"skipped"`
	Errors             []string `json:"errors"`
	Validated          int      `json:"validated"`
	ValidationFailures int      `json:"validation_failures"`
	PageIDs            []int64  `json:"page_ids"`
}
