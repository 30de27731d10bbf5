package domain

import (
	"net/url"
	"regexp"
	"strings"
)

// DefaultAffiliateDomain is used when no storefront domain is configured
const DefaultAffiliateDomain = "amazon.com"

var schemePrefixRegex = regexp.MustCompile(`^https?://`)

// AffiliateSettings hold the storefront defaults used when a top pick has no URL
type AffiliateSettings struct {
	Domain       string
	AssociateTag string
}

// SanitizeDomain lowercases a storefront domain and strips scheme and slashes
func SanitizeDomain(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = schemePrefixRegex.ReplaceAllString(value, "")
	value = strings.Trim(value, "/")
	if value == "" {
		return DefaultAffiliateDomain
	}
	return value
}

// BuildDefaultProductURL returns the storefront detail page for an identifier,
// tagged with the associate tag when one is set. "#" means no usable identifier.
func (s AffiliateSettings) BuildDefaultProductURL(id string) string {
	id = NormalizeIdentifier(id)
	if id == "" {
		return "#"
	}

	u := url.URL{
		Scheme: "https",
		Host:   SanitizeDomain(s.Domain),
		Path:   "/dp/" + id + "/",
	}
	if tag := strings.TrimSpace(s.AssociateTag); tag != "" {
		u.RawQuery = url.Values{"tag": {tag}}.Encode()
	}
	return u.String()
}
