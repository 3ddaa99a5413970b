package scrapsae

import (
	"context"
	"time"
)

// Product is a structured record extracted from a product page or a
// variant row of a family page. Records are immutable once emitted.
type Product struct {
	ID          string    `json:"id"`
	SiteID      string    `json:"siteId"`
	ExecutionID string    `json:"executionId"`
	SKU         string    `json:"sku,omitempty"`
	Title       string    `json:"title"`
	Price       string    `json:"price,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Description string    `json:"description,omitempty"` // Markdown
	SourceURL   string    `json:"sourceUrl"`

	// ParentKey links a variant record to its family page identity.
	ParentKey string `json:"parentKey,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// NormalizationKey returns the key products are deduplicated and upserted
// by: the SKU if present, otherwise the source URL.
func (p *Product) NormalizationKey() string {
	if p.SKU != "" {
		return p.SKU
	}
	return p.SourceURL
}

// Validate returns an error if the product contains invalid fields.
func (p *Product) Validate() error {
	if p.SiteID == "" {
		return Errorf(EINVALID, "product site ID required")
	}
	if p.NormalizationKey() == "" {
		return Errorf(EINVALID, "product SKU or source URL required")
	}
	return nil
}

// StagingSink persists extracted products. Upsert is idempotent by
// (site ID, normalization key).
type StagingSink interface {
	// Upsert stores the product, returning its ID and whether a new
	// record was created (false means an existing record was updated).
	Upsert(ctx context.Context, product *Product) (id string, created bool, err error)
}

// SyncLogSink records operation outcomes for downstream sync tooling.
type SyncLogSink interface {
	Log(ctx context.Context, operation, status, message string, duration time.Duration) error
}

// RunResult summarizes a completed run for orchestration callers.
type RunResult struct {
	ProductsFound   int           `json:"productsFound"`
	ProductsCreated int           `json:"productsCreated"`
	ProductsUpdated int           `json:"productsUpdated"`
	ProductsSkipped int           `json:"productsSkipped"`
	Duration        time.Duration `json:"duration"`
}
