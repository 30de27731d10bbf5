package paapi

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/gifthub/engine/internal/domain"
)

// detailPathPattern recognizes the product segment of a storefront detail URL.
// Marketplaces with other URL schemes fall back to the response path as-is.
var detailPathPattern = regexp.MustCompile(`(?i)/dp/[A-Z0-9]{10}`)

// MapToEnrichment converts a GetItems response item to enrichment data.
// It fails with ErrItemNotFound when the item carries no title, image or detail URL.
func MapToEnrichment(item *responseItem, market Marketplace, identifier string) (*domain.Enrichment, error) {
	if item == nil {
		return nil, domain.ErrItemNotFound
	}

	title := strings.TrimSpace(item.ItemInfo.Title.DisplayValue)
	imageURL := strings.TrimSpace(item.Images.Primary.Large.URL)
	detailURL := strings.TrimSpace(item.DetailPageURL)

	if title == "" && imageURL == "" && detailURL == "" {
		return nil, domain.ErrItemNotFound
	}

	return &domain.Enrichment{
		Title:    title,
		ImageURL: imageURL,
		URL:      CanonicalizeURL(detailURL, market.DetailHost, identifier),
	}, nil
}

// CanonicalizeURL rewrites a detail page URL to https://<detailHost>/dp/<ID>/,
// dropping tracking query strings. Paths without a recognizable /dp/ segment
// are kept; an unparseable or empty URL yields the constructed default.
func CanonicalizeURL(detailURL, detailHost, identifier string) string {
	path := "/dp/" + url.PathEscape(domain.NormalizeIdentifier(identifier)) + "/"

	if detailURL != "" {
		if parsed, err := url.Parse(detailURL); err == nil && parsed.Path != "" {
			if match := detailPathPattern.FindString(parsed.Path); match != "" {
				path = "/dp/" + strings.ToUpper(match[len("/dp/"):]) + "/"
			} else {
				path = strings.TrimRight(parsed.Path, "/") + "/"
			}
		}
	}

	u := url.URL{Scheme: "https", Host: detailHost, Path: path}
	return u.String()
}
