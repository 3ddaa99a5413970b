package mock

import (
	"context"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

var _ scrapsae.DiagnosticSink = (*DiagnosticSink)(nil)

// DiagnosticSink is a mock implementation of scrapsae.DiagnosticSink.
type DiagnosticSink struct {
	SaveDiagnosticFn            func(ctx context.Context, pkg *scrapsae.DiagnosticPackage) error
	FindDiagnosticsByExecutionFn func(ctx context.Context, executionID string) ([]*scrapsae.DiagnosticPackage, error)
}

func (s *DiagnosticSink) SaveDiagnostic(ctx context.Context, pkg *scrapsae.DiagnosticPackage) error {
	return s.SaveDiagnosticFn(ctx, pkg)
}

func (s *DiagnosticSink) FindDiagnosticsByExecution(ctx context.Context, executionID string) ([]*scrapsae.DiagnosticPackage, error) {
	return s.FindDiagnosticsByExecutionFn(ctx, executionID)
}
