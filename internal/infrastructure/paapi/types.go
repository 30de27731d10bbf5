package paapi

// getItemsRequest is the GetItems operation payload
type getItemsRequest struct {
	ItemIDs     []string `json:"ItemIds"`
	Resources   []string `json:"Resources"`
	PartnerTag  string   `json:"PartnerTag"`
	PartnerType string   `json:"PartnerType"`
	Marketplace string   `json:"Marketplace"`
}

// requestedResources are the only item fields the enrichment uses
var requestedResources = []string{
	"Images.Primary.Large",
	"ItemInfo.Title",
	"DetailPageURL",
}

// getItemsResponse is the subset of the GetItems response that is read
type getItemsResponse struct {
	ItemsResult struct {
		Items []responseItem `json:"Items"`
	} `json:"ItemsResult"`
	Errors []responseError `json:"Errors,omitempty"`
}

type responseItem struct {
	ASIN          string `json:"ASIN"`
	DetailPageURL string `json:"DetailPageURL"`
	ItemInfo      struct {
		Title struct {
			DisplayValue string `json:"DisplayValue"`
		} `json:"Title"`
	} `json:"ItemInfo"`
	Images struct {
		Primary struct {
			Large struct {
				URL string `json:"URL"`
			} `json:"Large"`
		} `json:"Primary"`
	} `json:"Images"`
}

type responseError struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}
