package mock

import (
	"context"
	"time"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

var _ scrapsae.StagingSink = (*StagingSink)(nil)

// StagingSink is a mock implementation of scrapsae.StagingSink.
type StagingSink struct {
	UpsertFn func(ctx context.Context, product *scrapsae.Product) (string, bool, error)
}

func (s *StagingSink) Upsert(ctx context.Context, product *scrapsae.Product) (string, bool, error) {
	return s.UpsertFn(ctx, product)
}

var _ scrapsae.SyncLogSink = (*SyncLogSink)(nil)

// SyncLogSink is a mock implementation of scrapsae.SyncLogSink.
type SyncLogSink struct {
	LogFn func(ctx context.Context, operation, status, message string, duration time.Duration) error
}

func (s *SyncLogSink) Log(ctx context.Context, operation, status, message string, duration time.Duration) error {
	return s.LogFn(ctx, operation, status, message, duration)
}
