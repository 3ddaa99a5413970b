package sqlite

import (
	"context"
	"database/sql"
	"time"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

// Compile-time interface verification.
var _ scrapsae.MetricsService = (*MetricsService)(nil)

// MetricsService implements scrapsae.MetricsService using SQLite.
type MetricsService struct {
	db *DB
}

// NewMetricsService creates a new MetricsService.
func NewMetricsService(db *DB) *MetricsService {
	return &MetricsService{db: db}
}

// SaveMetrics stores a finished run's metrics snapshot. Saving the same
// execution ID again replaces the prior snapshot.
func (s *MetricsService) SaveMetrics(ctx context.Context, m *scrapsae.ExecutionMetrics) error {
	if m.ExecutionID == "" {
		return scrapsae.Errorf(scrapsae.EINVALID, "execution ID required")
	}

	selectors, err := marshalColumn(m.Selectors, "selectors")
	if err != nil {
		return err
	}

	endedAt := ""
	if !m.EndedAt.IsZero() {
		endedAt = m.EndedAt.Format(time.RFC3339)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO execution_metrics (execution_id, site_id, started_at, ended_at,
			pages_visited, products_found, products_skipped, products_with_sku, products_with_price,
			timeouts, navigation_errors, avg_page_load_ms, selectors, requires_manual)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ExecutionID, m.SiteID, m.StartedAt.Format(time.RFC3339), endedAt,
		m.PagesVisited, m.ProductsFound, m.ProductsSkipped, m.ProductsWithSKU, m.ProductsWithPrice,
		m.Timeouts, m.NavigationErrors, m.AvgPageLoad.Milliseconds(), selectors,
		m.RequiresManualIntervention)

	return err
}

const metricsColumns = `execution_id, site_id, started_at, ended_at, pages_visited, products_found,
	products_skipped, products_with_sku, products_with_price, timeouts, navigation_errors,
	avg_page_load_ms, selectors, requires_manual`

func scanMetrics(scan func(dest ...any) error) (*scrapsae.ExecutionMetrics, error) {
	var m scrapsae.ExecutionMetrics
	var startedAt, endedAt, selectors string
	var avgPageLoadMS int64

	err := scan(&m.ExecutionID, &m.SiteID, &startedAt, &endedAt, &m.PagesVisited, &m.ProductsFound,
		&m.ProductsSkipped, &m.ProductsWithSKU, &m.ProductsWithPrice, &m.Timeouts,
		&m.NavigationErrors, &avgPageLoadMS, &selectors, &m.RequiresManualIntervention)
	if err != nil {
		return nil, err
	}

	if err := unmarshalColumn(selectors, &m.Selectors, "selectors"); err != nil {
		return nil, err
	}
	m.AvgPageLoad = time.Duration(avgPageLoadMS) * time.Millisecond

	if m.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
		return nil, err
	}
	if m.EndedAt, err = parseOptionalRFC3339(endedAt, "ended_at"); err != nil {
		return nil, err
	}

	return &m, nil
}

// FindMetricsByExecution retrieves a snapshot by execution ID.
func (s *MetricsService) FindMetricsByExecution(ctx context.Context, executionID string) (*scrapsae.ExecutionMetrics, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+metricsColumns+" FROM execution_metrics WHERE execution_id = ?", executionID)
	m, err := scanMetrics(row.Scan)
	if err == sql.ErrNoRows {
		return nil, scrapsae.Errorf(scrapsae.ENOTFOUND, "metrics not found")
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// FindMetricsBySite retrieves snapshots for a site, newest first.
func (s *MetricsService) FindMetricsBySite(ctx context.Context, siteID string, limit int) ([]*scrapsae.ExecutionMetrics, error) {
	query := "SELECT " + metricsColumns + " FROM execution_metrics WHERE site_id = ? ORDER BY started_at DESC"
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

	var snapshots []*scrapsae.ExecutionMetrics
	for rows.Next() {
		m, err := scanMetrics(rows.Scan)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, m)
	}

	return snapshots, rows.Err()
}
