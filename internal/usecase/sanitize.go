package usecase

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/gifthub/engine/internal/domain"
)

// sanitizeText reduces a value to a single line of plain text: markup and
// script bodies are dropped, entities decoded, control characters removed,
// whitespace collapsed.
func sanitizeText(s string) string {
	if s == "" {
		return ""
	}

	text := s
	if strings.ContainsAny(s, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			doc.Find("script, style").Remove()
			text = doc.Text()
		}
	}

	text = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, text)

	return strings.Join(strings.Fields(text), " ")
}

// sanitizeMultiline is sanitizeText applied per line, keeping line breaks
func sanitizeMultiline(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := lines[:0]
	for _, line := range lines {
		out = append(out, sanitizeText(line))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// sanitizeURL returns an escaped absolute http(s) URL or "" when the input is not one
func sanitizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.IndexFunc(raw, unicode.IsControl) >= 0 {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	if u.Host == "" || u.User != nil {
		return ""
	}
	return u.String()
}

func sanitizeEnrichment(e domain.Enrichment) domain.Enrichment {
	return domain.Enrichment{
		Title:    sanitizeText(e.Title),
		ImageURL: sanitizeURL(e.ImageURL),
		URL:      sanitizeURL(e.URL),
	}
}

// isAllowedCustomImageURL rejects storefront-hosted images, which may only be
// shown when they come from the catalog API itself
func isAllowedCustomImageURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return !strings.Contains(host, "amazon.") && !strings.Contains(host, "amzn.")
}
