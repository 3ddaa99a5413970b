package scrapsae

import (
	"context"
	"time"
)

// LearnedPatterns holds per-site URL shapes inferred from classified
// example URLs. Templates use "*" for path segments that vary between
// examples. Patterns are updated incrementally as pages are classified
// and consumed at run start to seed traversal entry points.
type LearnedPatterns struct {
	SiteID string `json:"siteId"`

	ProductTemplate     string `json:"productTemplate,omitempty"`
	ListingTemplate     string `json:"listingTemplate,omitempty"`
	SubcategoryTemplate string `json:"subcategoryTemplate,omitempty"`

	ProductExamples     []string `json:"productExamples,omitempty"`
	ListingExamples     []string `json:"listingExamples,omitempty"`
	SubcategoryExamples []string `json:"subcategoryExamples,omitempty"`

	// NavigationHint is a textual description of the path that reaches
	// product listings (e.g. "home > products > series").
	NavigationHint string `json:"navigationHint,omitempty"`

	Confidence float64   `json:"confidence"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PatternService persists learned URL patterns.
type PatternService interface {
	// FindPatternsBySite retrieves the learned patterns for a site.
	// Returns ENOTFOUND if the site has no patterns yet.
	FindPatternsBySite(ctx context.Context, siteID string) (*LearnedPatterns, error)

	// SavePatterns stores the site's patterns, replacing any prior value.
	SavePatterns(ctx context.Context, patterns *LearnedPatterns) error
}
