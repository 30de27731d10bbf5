package paapi

import "strings"

// Marketplace describes one regional storefront of the Product Advertising API
type Marketplace struct {
	Code        string
	Host        string
	Endpoint    string
	Marketplace string
	Region      string
	DetailHost  string
}

// DefaultMarketplace is used for empty or unknown marketplace codes
const DefaultMarketplace = "US"

var marketplaces = map[string]Marketplace{
	"US": {
		Code:        "US",
		Host:        "webservices.amazon.com",
		Endpoint:    "https://webservices.amazon.com/paapi5/getitems",
		Marketplace: "www.amazon.com",
		Region:      "us-east-1",
		DetailHost:  "www.amazon.com",
	},
	"UK": {
		Code:        "UK",
		Host:        "webservices.amazon.co.uk",
		Endpoint:    "https://webservices.amazon.co.uk/paapi5/getitems",
		Marketplace: "www.amazon.co.uk",
		Region:      "eu-west-1",
		DetailHost:  "www.amazon.co.uk",
	},
	"DE": {
		Code:        "DE",
		Host:        "webservices.amazon.de",
		Endpoint:    "https://webservices.amazon.de/paapi5/getitems",
		Marketplace: "www.amazon.de",
		Region:      "eu-west-1",
		DetailHost:  "www.amazon.de",
	},
}

// LookupMarketplace resolves a marketplace code, falling back to US
func LookupMarketplace(code string) Marketplace {
	if m, ok := marketplaces[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return m
	}
	return marketplaces[DefaultMarketplace]
}
