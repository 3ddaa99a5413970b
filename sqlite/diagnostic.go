package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"
	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

// Compile-time interface verification.
var _ scrapsae.DiagnosticSink = (*DiagnosticSink)(nil)

// DiagnosticSink implements scrapsae.DiagnosticSink using SQLite.
// Packages are write-once.
type DiagnosticSink struct {
	db *DB
}

// NewDiagnosticSink creates a new DiagnosticSink.
func NewDiagnosticSink(db *DB) *DiagnosticSink {
	return &DiagnosticSink{db: db}
}

// SaveDiagnostic stores a package.
func (s *DiagnosticSink) SaveDiagnostic(ctx context.Context, pkg *scrapsae.DiagnosticPackage) error {
	if pkg.ExecutionID == "" {
		return scrapsae.Errorf(scrapsae.EINVALID, "diagnostic execution ID required")
	}

	if pkg.ID == "" {
		pkg.ID = uuid.New().String()
	}
	if pkg.CreatedAt.IsZero() {
		pkg.CreatedAt = time.Now().UTC()
	}

	attempts, err := marshalColumn(pkg.Attempts, "attempts")
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO diagnostics (id, execution_id, page_url, failure_type, html,
			screenshot, screenshot_ref, attempts, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, pkg.ID, pkg.ExecutionID, pkg.PageURL, string(pkg.FailureType), pkg.HTML,
		pkg.Screenshot, pkg.ScreenshotRef, attempts, pkg.CreatedAt.Format(time.RFC3339))

	return err
}

// FindDiagnosticsByExecution retrieves packages for an execution, oldest
// first.
func (s *DiagnosticSink) FindDiagnosticsByExecution(ctx context.Context, executionID string) ([]*scrapsae.DiagnosticPackage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, execution_id, page_url, failure_type, html, screenshot, screenshot_ref,
			attempts, created_at
		FROM diagnostics
		WHERE execution_id = ?
		ORDER BY rowid
	`, executionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var packages []*scrapsae.DiagnosticPackage
	for rows.Next() {
		var pkg scrapsae.DiagnosticPackage
		var failureType, attempts, createdAt string

		if err := rows.Scan(&pkg.ID, &pkg.ExecutionID, &pkg.PageURL, &failureType, &pkg.HTML,
			&pkg.Screenshot, &pkg.ScreenshotRef, &attempts, &createdAt); err != nil {
			return nil, err
		}

		pkg.FailureType = scrapsae.FailureType(failureType)
		if err := unmarshalColumn(attempts, &pkg.Attempts, "attempts"); err != nil {
			return nil, err
		}
		if pkg.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}

		packages = append(packages, &pkg)
	}

	return packages, rows.Err()
}
