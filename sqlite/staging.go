package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

// Compile-time interface verification.
var (
	_ scrapsae.StagingSink = (*StagingSink)(nil)
	_ scrapsae.SyncLogSink = (*SyncLogSink)(nil)
)

// StagingSink implements scrapsae.StagingSink using SQLite. Products are
// upserted by (site ID, normalization key) so repeated runs refresh
// existing records instead of duplicating them.
type StagingSink struct {
	db *DB
}

// NewStagingSink creates a new StagingSink.
func NewStagingSink(db *DB) *StagingSink {
	return &StagingSink{db: db}
}

// Upsert stores the product, returning its ID and whether a new record
// was created.
func (s *StagingSink) Upsert(ctx context.Context, product *scrapsae.Product) (string, bool, error) {
	if err := product.Validate(); err != nil {
		return "", false, err
	}

	key := product.NormalizationKey()
	now := time.Now().UTC()

	var existingID string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM staging_products WHERE site_id = ? AND norm_key = ?
	`, product.SiteID, key).Scan(&existingID)

	if err == sql.ErrNoRows {
		product.ID = uuid.New().String()
		product.CreatedAt = now

		_, err := s.db.ExecContext(ctx, `
			INSERT INTO staging_products (id, site_id, execution_id, norm_key, sku, title, price,
				image_url, description, source_url, parent_key, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, product.ID, product.SiteID, product.ExecutionID, key, product.SKU, product.Title,
			product.Price, product.ImageURL, product.Description, product.SourceURL,
			product.ParentKey, now.Format(time.RFC3339), now.Format(time.RFC3339))
		if err != nil {
			return "", false, err
		}
		return product.ID, true, nil
	}
	if err != nil {
		return "", false, err
	}

	product.ID = existingID

	_, err = s.db.ExecContext(ctx, `
		UPDATE staging_products
		SET execution_id = ?, sku = ?, title = ?, price = ?, image_url = ?, description = ?,
			source_url = ?, parent_key = ?, updated_at = ?
		WHERE id = ?
	`, product.ExecutionID, product.SKU, product.Title, product.Price, product.ImageURL,
		product.Description, product.SourceURL, product.ParentKey, now.Format(time.RFC3339),
		existingID)
	if err != nil {
		return "", false, err
	}
	return existingID, false, nil
}

// FindProductsBySite retrieves staged products for a site in insertion
// order, for export tooling.
func (s *StagingSink) FindProductsBySite(ctx context.Context, siteID string, limit int) ([]*scrapsae.Product, error) {
	query := `
		SELECT id, site_id, execution_id, sku, title, price, image_url, description,
			source_url, parent_key, created_at
		FROM staging_products
		WHERE site_id = ?
		ORDER BY rowid`
	args := []any{siteID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*scrapsae.Product
	for rows.Next() {
		var product scrapsae.Product
		var createdAt string

		if err := rows.Scan(&product.ID, &product.SiteID, &product.ExecutionID, &product.SKU,
			&product.Title, &product.Price, &product.ImageURL, &product.Description,
			&product.SourceURL, &product.ParentKey, &createdAt); err != nil {
			return nil, err
		}

		if product.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}

		products = append(products, &product)
	}

	return products, rows.Err()
}

// SyncLogSink implements scrapsae.SyncLogSink using SQLite.
type SyncLogSink struct {
	db *DB
}

// NewSyncLogSink creates a new SyncLogSink.
func NewSyncLogSink(db *DB) *SyncLogSink {
	return &SyncLogSink{db: db}
}

// Log appends one operation outcome to the sync log.
func (s *SyncLogSink) Log(ctx context.Context, operation, status, message string, duration time.Duration) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_log (operation, status, message, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, operation, status, message, duration.Milliseconds(), time.Now().UTC().Format(time.RFC3339))
	return err
}
