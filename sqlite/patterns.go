package sqlite

import (
	"context"
	"database/sql"
	"time"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

// Compile-time interface verification.
var _ scrapsae.PatternService = (*PatternService)(nil)

// PatternService implements scrapsae.PatternService using SQLite. Each
// site has at most one patterns row, replaced wholesale on save.
type PatternService struct {
	db *DB
}

// NewPatternService creates a new PatternService.
func NewPatternService(db *DB) *PatternService {
	return &PatternService{db: db}
}

// FindPatternsBySite retrieves the learned patterns for a site.
func (s *PatternService) FindPatternsBySite(ctx context.Context, siteID string) (*scrapsae.LearnedPatterns, error) {
	var patterns scrapsae.LearnedPatterns
	var productExamples, listingExamples, subcategoryExamples, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT site_id, product_template, listing_template, subcategory_template,
			product_examples, listing_examples, subcategory_examples,
			navigation_hint, confidence, updated_at
		FROM learned_patterns
		WHERE site_id = ?
	`, siteID).Scan(&patterns.SiteID, &patterns.ProductTemplate, &patterns.ListingTemplate,
		&patterns.SubcategoryTemplate, &productExamples, &listingExamples, &subcategoryExamples,
		&patterns.NavigationHint, &patterns.Confidence, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, scrapsae.Errorf(scrapsae.ENOTFOUND, "patterns not found")
	}
	if err != nil {
		return nil, err
	}

	if err := unmarshalColumn(productExamples, &patterns.ProductExamples, "product_examples"); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(listingExamples, &patterns.ListingExamples, "listing_examples"); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(subcategoryExamples, &patterns.SubcategoryExamples, "subcategory_examples"); err != nil {
		return nil, err
	}

	if patterns.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	return &patterns, nil
}

// SavePatterns stores the site's patterns, replacing any prior value.
func (s *PatternService) SavePatterns(ctx context.Context, patterns *scrapsae.LearnedPatterns) error {
	if patterns.SiteID == "" {
		return scrapsae.Errorf(scrapsae.EINVALID, "patterns site ID required")
	}

	patterns.UpdatedAt = time.Now().UTC()

	productExamples, err := marshalColumn(patterns.ProductExamples, "product_examples")
	if err != nil {
		return err
	}
	listingExamples, err := marshalColumn(patterns.ListingExamples, "listing_examples")
	if err != nil {
		return err
	}
	subcategoryExamples, err := marshalColumn(patterns.SubcategoryExamples, "subcategory_examples")
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO learned_patterns (site_id, product_template, listing_template,
			subcategory_template, product_examples, listing_examples, subcategory_examples,
			navigation_hint, confidence, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, patterns.SiteID, patterns.ProductTemplate, patterns.ListingTemplate,
		patterns.SubcategoryTemplate, productExamples, listingExamples, subcategoryExamples,
		patterns.NavigationHint, patterns.Confidence, patterns.UpdatedAt.Format(time.RFC3339))

	return err
}
