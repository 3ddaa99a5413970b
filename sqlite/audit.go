package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"
	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

// Compile-time interface verification.
var _ scrapsae.AuditService = (*AuditService)(nil)

// AuditService implements scrapsae.AuditService using SQLite. The audit
// log is append-only; entries are never updated or deleted.
type AuditService struct {
	db *DB
}

// NewAuditService creates a new AuditService.
func NewAuditService(db *DB) *AuditService {
	return &AuditService{db: db}
}

// AppendChange appends an audit entry.
func (s *AuditService) AppendChange(ctx context.Context, change *scrapsae.ConfigurationChange) error {
	if change.SiteID == "" {
		return scrapsae.Errorf(scrapsae.EINVALID, "change site ID required")
	}
	if change.Property == "" {
		return scrapsae.Errorf(scrapsae.EINVALID, "change property required")
	}

	if change.ID == "" {
		change.ID = uuid.New().String()
	}
	if change.CreatedAt.IsZero() {
		change.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO config_changes (id, site_id, property, old_value, new_value, source, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, change.ID, change.SiteID, change.Property, change.OldValue, change.NewValue,
		change.Source, change.Reason, change.CreatedAt.Format(time.RFC3339))

	return err
}

// FindChangesBySite retrieves audit entries for a site, newest first.
func (s *AuditService) FindChangesBySite(ctx context.Context, siteID string, limit int) ([]*scrapsae.ConfigurationChange, error) {
	query := `
		SELECT id, site_id, property, old_value, new_value, source, reason, created_at
		FROM config_changes
		WHERE site_id = ?
		ORDER BY created_at DESC, rowid DESC`
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

	var changes []*scrapsae.ConfigurationChange
	for rows.Next() {
		var change scrapsae.ConfigurationChange
		var createdAt string

		if err := rows.Scan(&change.ID, &change.SiteID, &change.Property, &change.OldValue,
			&change.NewValue, &change.Source, &change.Reason, &createdAt); err != nil {
			return nil, err
		}

		if change.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}

		changes = append(changes, &change)
	}

	return changes, rows.Err()
}
