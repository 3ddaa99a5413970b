package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

// Compile-time interface verification.
var _ scrapsae.SiteService = (*SiteService)(nil)

// SiteService implements scrapsae.SiteService using SQLite.
type SiteService struct {
	db *DB
}

// NewSiteService creates a new SiteService.
func NewSiteService(db *DB) *SiteService {
	return &SiteService{db: db}
}

// CreateSite creates a new site profile.
func (s *SiteService) CreateSite(ctx context.Context, site *scrapsae.SiteProfile) error {
	if err := site.Validate(); err != nil {
		return err
	}

	site.ID = uuid.New().String()
	now := time.Now().UTC()
	site.CreatedAt = now
	site.UpdatedAt = now

	strategies, err := marshalColumn(site.Strategies, "strategies")
	if err != nil {
		return err
	}
	selectors, err := marshalColumn(&site.Selectors, "selectors")
	if err != nil {
		return err
	}
	excludes, err := marshalColumn(site.SitemapExcludes, "sitemap_excludes")
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sites (id, name, base_url, login_required, credentials_ref, strategies, selectors,
			max_products, navigation_timeout_ms, step_delay_ms, sitemap_excludes, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, site.ID, site.Name, site.BaseURL, site.LoginRequired, site.CredentialsRef, strategies, selectors,
		site.MaxProducts, site.NavigationTimeout.Milliseconds(), site.StepDelay.Milliseconds(),
		excludes, site.Active, site.CreatedAt.Format(time.RFC3339), site.UpdatedAt.Format(time.RFC3339))

	return err
}

const siteColumns = `id, name, base_url, login_required, credentials_ref, strategies, selectors,
	max_products, navigation_timeout_ms, step_delay_ms, sitemap_excludes, active, created_at, updated_at`

// scanSite scans one site row. The scanner argument works for both
// sql.Row and sql.Rows.
func scanSite(scan func(dest ...any) error) (*scrapsae.SiteProfile, error) {
	var site scrapsae.SiteProfile
	var strategies, selectors, excludes, createdAt, updatedAt string
	var navigationTimeoutMS, stepDelayMS int64

	err := scan(&site.ID, &site.Name, &site.BaseURL, &site.LoginRequired, &site.CredentialsRef,
		&strategies, &selectors, &site.MaxProducts, &navigationTimeoutMS, &stepDelayMS,
		&excludes, &site.Active, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if err := unmarshalColumn(strategies, &site.Strategies, "strategies"); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(selectors, &site.Selectors, "selectors"); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(excludes, &site.SitemapExcludes, "sitemap_excludes"); err != nil {
		return nil, err
	}

	site.NavigationTimeout = time.Duration(navigationTimeoutMS) * time.Millisecond
	site.StepDelay = time.Duration(stepDelayMS) * time.Millisecond

	if site.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if site.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	return &site, nil
}

// FindSiteByID retrieves a site by ID.
func (s *SiteService) FindSiteByID(ctx context.Context, id string) (*scrapsae.SiteProfile, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+siteColumns+" FROM sites WHERE id = ?", id)
	site, err := scanSite(row.Scan)
	if err == sql.ErrNoRows {
		return nil, scrapsae.Errorf(scrapsae.ENOTFOUND, "site not found")
	}
	if err != nil {
		return nil, err
	}
	return site, nil
}

// FindSites retrieves sites matching the filter.
func (s *SiteService) FindSites(ctx context.Context, filter scrapsae.SiteFilter) ([]*scrapsae.SiteProfile, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + siteColumns + " FROM sites WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Name != nil {
		query.WriteString(" AND name = ?")
		args = append(args, *filter.Name)
	}
	if filter.Active != nil {
		query.WriteString(" AND active = ?")
		args = append(args, *filter.Active)
	}

	query.WriteString(" ORDER BY created_at DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []*scrapsae.SiteProfile
	for rows.Next() {
		site, err := scanSite(rows.Scan)
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}

	return sites, rows.Err()
}

// UpdateSite updates an existing site profile.
func (s *SiteService) UpdateSite(ctx context.Context, id string, upd scrapsae.SiteUpdate) (*scrapsae.SiteProfile, error) {
	site, err := s.FindSiteByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		site.Name = *upd.Name
	}
	if upd.BaseURL != nil {
		site.BaseURL = *upd.BaseURL
	}
	if upd.Strategies != nil {
		site.Strategies = *upd.Strategies
	}
	if upd.Selectors != nil {
		site.Selectors = *upd.Selectors
	}
	if upd.MaxProducts != nil {
		site.MaxProducts = *upd.MaxProducts
	}
	if upd.NavigationTimeout != nil {
		site.NavigationTimeout = *upd.NavigationTimeout
	}
	if upd.StepDelay != nil {
		site.StepDelay = *upd.StepDelay
	}
	if upd.SitemapExcludes != nil {
		site.SitemapExcludes = *upd.SitemapExcludes
	}
	if upd.Active != nil {
		site.Active = *upd.Active
	}

	if err := site.Validate(); err != nil {
		return nil, err
	}

	site.UpdatedAt = time.Now().UTC()

	strategies, err := marshalColumn(site.Strategies, "strategies")
	if err != nil {
		return nil, err
	}
	selectors, err := marshalColumn(&site.Selectors, "selectors")
	if err != nil {
		return nil, err
	}
	excludes, err := marshalColumn(site.SitemapExcludes, "sitemap_excludes")
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE sites
		SET name = ?, base_url = ?, strategies = ?, selectors = ?, max_products = ?,
			navigation_timeout_ms = ?, step_delay_ms = ?, sitemap_excludes = ?, active = ?, updated_at = ?
		WHERE id = ?
	`, site.Name, site.BaseURL, strategies, selectors, site.MaxProducts,
		site.NavigationTimeout.Milliseconds(), site.StepDelay.Milliseconds(), excludes, site.Active,
		site.UpdatedAt.Format(time.RFC3339), id)

	if err != nil {
		return nil, err
	}

	return site, nil
}

// DeleteSite permanently removes a site profile.
func (s *SiteService) DeleteSite(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sites WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return scrapsae.Errorf(scrapsae.ENOTFOUND, "site not found")
	}

	return nil
}
