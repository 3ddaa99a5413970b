package scrapsae

import (
	"context"
	"regexp"
	"time"
)

// Semantic selector field names used in SiteSelectors chains, metrics and
// configuration suggestions.
const (
	FieldTitle       = "title"
	FieldPrice       = "price"
	FieldSKU         = "sku"
	FieldImage       = "image"
	FieldDescription = "description"
	FieldNextPage    = "next_page"
	FieldProductItem = "product_item"
	FieldProductLink = "product_link"
	FieldVariantRow  = "variant_row"
	FieldBreadcrumb  = "breadcrumb"
	FieldRelatedLink = "related_link"
	FieldNavigation  = "navigation"
)

// Selector modes.
const (
	// ModeFamilies marks sites whose product pages are family pages with
	// a variant table; each row yields a separate record.
	ModeFamilies = "families"
)

// SiteSelectors holds the CSS selectors used to extract semantic fields
// from a site's pages. Each field has one primary selector; previously
// working selectors are retained in Fallbacks and tried in order after
// the primary. Navigation is an ordered list of category-link candidates
// where the first selector yielding any matches wins.
type SiteSelectors struct {
	Title       string `json:"title"`
	Price       string `json:"price"`
	SKU         string `json:"sku"`
	Image       string `json:"image"`
	Description string `json:"description"`
	NextPage    string `json:"nextPage"`
	ProductItem string `json:"productItem"`
	ProductLink string `json:"productLink"`
	VariantRow  string `json:"variantRow"`
	Breadcrumb  string `json:"breadcrumb"`
	RelatedLink string `json:"relatedLink"`

	// Navigation holds ordered candidates for category/child links.
	Navigation []string `json:"navigation"`

	// Fallbacks maps a field name to previously working selectors,
	// most recently demoted first.
	Fallbacks map[string][]string `json:"fallbacks,omitempty"`

	// Mode is a free-form extraction mode flag (e.g. "families").
	Mode string `json:"mode,omitempty"`
}

// Primary returns the primary selector for a field, or "" if the field
// is unknown or unset.
func (s *SiteSelectors) Primary(field string) string {
	switch field {
	case FieldTitle:
		return s.Title
	case FieldPrice:
		return s.Price
	case FieldSKU:
		return s.SKU
	case FieldImage:
		return s.Image
	case FieldDescription:
		return s.Description
	case FieldNextPage:
		return s.NextPage
	case FieldProductItem:
		return s.ProductItem
	case FieldProductLink:
		return s.ProductLink
	case FieldVariantRow:
		return s.VariantRow
	case FieldBreadcrumb:
		return s.Breadcrumb
	case FieldRelatedLink:
		return s.RelatedLink
	}
	return ""
}

// setPrimary overwrites the primary selector for a field.
// Returns false if the field is unknown.
func (s *SiteSelectors) setPrimary(field, selector string) bool {
	switch field {
	case FieldTitle:
		s.Title = selector
	case FieldPrice:
		s.Price = selector
	case FieldSKU:
		s.SKU = selector
	case FieldImage:
		s.Image = selector
	case FieldDescription:
		s.Description = selector
	case FieldNextPage:
		s.NextPage = selector
	case FieldProductItem:
		s.ProductItem = selector
	case FieldProductLink:
		s.ProductLink = selector
	case FieldVariantRow:
		s.VariantRow = selector
	case FieldBreadcrumb:
		s.Breadcrumb = selector
	case FieldRelatedLink:
		s.RelatedLink = selector
	default:
		return false
	}
	return true
}

// Chain returns the ordered selector chain for a field: the primary
// selector followed by its fallbacks. Empty selectors are skipped and
// duplicates removed while preserving order.
func (s *SiteSelectors) Chain(field string) []string {
	var chain []string
	seen := make(map[string]bool)
	add := func(sel string) {
		if sel == "" || seen[sel] {
			return
		}
		seen[sel] = true
		chain = append(chain, sel)
	}
	add(s.Primary(field))
	for _, sel := range s.Fallbacks[field] {
		add(sel)
	}
	return chain
}

// Promote replaces the primary selector for a field, demoting the current
// primary to the front of the field's fallback list. The prior value is
// never discarded. Returns EINVALID for unknown fields.
func (s *SiteSelectors) Promote(field, selector string) error {
	if selector == "" {
		return Errorf(EINVALID, "selector required")
	}
	old := s.Primary(field)
	if !s.setPrimary(field, selector) {
		return Errorf(EINVALID, "unknown selector field %q", field)
	}
	if old != "" && old != selector {
		if s.Fallbacks == nil {
			s.Fallbacks = make(map[string][]string)
		}
		s.Fallbacks[field] = append([]string{old}, s.Fallbacks[field]...)
	}
	return nil
}

// StrategyDefinition configures one extraction strategy for a site.
// Strategies are tried in ascending Priority order.
type StrategyDefinition struct {
	Name     string `json:"name"`
	Priority int    `json:"priority"`
	Enabled  bool   `json:"enabled"`
}

// SiteProfile describes a target site: where it lives, how to extract
// from it, and the bounds the run must respect. Profiles are mutated only
// by the configuration updater and administrative edits; runs read them
// at start.
type SiteProfile struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	BaseURL        string               `json:"baseUrl"`
	LoginRequired  bool                 `json:"loginRequired"`
	CredentialsRef string               `json:"credentialsRef,omitempty"`
	Strategies     []StrategyDefinition `json:"strategies"`
	Selectors      SiteSelectors        `json:"selectors"`

	// MaxProducts caps extraction for a single run; 0 means no cap.
	MaxProducts int `json:"maxProducts"`

	// NavigationTimeout bounds a single page navigation.
	NavigationTimeout time.Duration `json:"navigationTimeout"`

	// StepDelay is the pause between discrete traversal steps.
	StepDelay time.Duration `json:"stepDelay"`

	// SitemapExcludes holds regular expressions; sitemap URLs matching
	// any of them are never used as traversal entry points (carts,
	// accounts, blogs).
	SitemapExcludes []string `json:"sitemapExcludes,omitempty"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate returns an error if the profile contains invalid fields.
func (p *SiteProfile) Validate() error {
	if p.Name == "" {
		return Errorf(EINVALID, "site name required")
	}
	if p.BaseURL == "" {
		return Errorf(EINVALID, "site base URL required")
	}
	for _, def := range p.Strategies {
		if def.Name == "" {
			return Errorf(EINVALID, "strategy name required")
		}
	}
	for _, pattern := range p.SitemapExcludes {
		if _, err := regexp.Compile(pattern); err != nil {
			return Errorf(EINVALID, "invalid sitemap exclude pattern %q", pattern)
		}
	}
	return nil
}

// SitemapFilter compiles the profile's exclude patterns into a URL
// filter for sitemap discovery. Returns nil when no patterns are set.
// Patterns that fail to compile are skipped; Validate rejects them up
// front.
func (p *SiteProfile) SitemapFilter() *URLFilter {
	var excludes []*regexp.Regexp
	for _, pattern := range p.SitemapExcludes {
		if re, err := regexp.Compile(pattern); err == nil {
			excludes = append(excludes, re)
		}
	}
	if len(excludes) == 0 {
		return nil
	}
	return &URLFilter{Exclude: excludes}
}

// SiteService represents a service for managing site profiles.
type SiteService interface {
	// CreateSite creates a new site profile.
	CreateSite(ctx context.Context, site *SiteProfile) error

	// FindSiteByID retrieves a site by ID.
	// Returns ENOTFOUND if the site does not exist.
	FindSiteByID(ctx context.Context, id string) (*SiteProfile, error)

	// FindSites retrieves sites matching the filter.
	FindSites(ctx context.Context, filter SiteFilter) ([]*SiteProfile, error)

	// UpdateSite updates an existing site profile.
	// Returns ENOTFOUND if the site does not exist.
	UpdateSite(ctx context.Context, id string, upd SiteUpdate) (*SiteProfile, error)

	// DeleteSite permanently removes a site profile.
	// Returns ENOTFOUND if the site does not exist.
	DeleteSite(ctx context.Context, id string) error
}

// SiteFilter represents a filter for FindSites.
type SiteFilter struct {
	ID     *string `json:"id"`
	Name   *string `json:"name"`
	Active *bool   `json:"active"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// SiteUpdate represents fields that can be updated on a site profile.
type SiteUpdate struct {
	Name              *string               `json:"name"`
	BaseURL           *string               `json:"baseUrl"`
	Strategies        *[]StrategyDefinition `json:"strategies"`
	Selectors         *SiteSelectors        `json:"selectors"`
	MaxProducts       *int                  `json:"maxProducts"`
	NavigationTimeout *time.Duration        `json:"navigationTimeout"`
	StepDelay         *time.Duration        `json:"stepDelay"`
	SitemapExcludes   *[]string             `json:"sitemapExcludes"`
	Active            *bool                 `json:"active"`
}
