package domain

// Recognized taxonomies, in the order terms are displayed and invalidations apply
const (
	TaxonomyAudience = "audience"
	TaxonomyOccasion = "occasion"
	TaxonomyBudget   = "budget"
	TaxonomyInterest = "interest"
)

// Taxonomies lists every recognized taxonomy
var Taxonomies = []string{TaxonomyAudience, TaxonomyOccasion, TaxonomyBudget, TaxonomyInterest}

// TaxonomyWeight is the importance of a shared term in one taxonomy when ranking related pages
type TaxonomyWeight struct {
	Taxonomy string
	Weight   int
}

// DefaultTaxonomyWeights are applied in this order when scoring related pages
var DefaultTaxonomyWeights = []TaxonomyWeight{
	{Taxonomy: TaxonomyInterest, Weight: 100},
	{Taxonomy: TaxonomyOccasion, Weight: 40},
	{Taxonomy: TaxonomyAudience, Weight: 20},
	{Taxonomy: TaxonomyBudget, Weight: 10},
}

// IsRecognizedTaxonomy reports whether a taxonomy takes part in scoring and invalidation
func IsRecognizedTaxonomy(taxonomy string) bool {
	for _, t := range Taxonomies {
		if t == taxonomy {
			return true
		}
	}
	return false
}

// Term is one classification value in a taxonomy
type Term struct {
	ID       int64  `json:"id"`
	Taxonomy string `json:"taxonomy"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
}
