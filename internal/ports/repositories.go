package ports

import (
	"context"
	"time"

	"github.com/seu-repo/ev-station-core/internal/domain"
)

// RecordRepository persists post-session receipts. Save must be idempotent by
// record ID: replaying the same record is a no-op.
type RecordRepository interface {
	Save(ctx context.Context, record *domain.ChargingRecord) error
	FindByUserID(ctx context.Context, userID string) ([]domain.ChargingRecord, error)
}

// PileRepository mirrors pile state into the persistent store. The in-memory
// scheduler state stays authoritative; last-writer-wins is acceptable here.
type PileRepository interface {
	Save(ctx context.Context, pile *domain.ChargingPile) error
	UpdateCounters(ctx context.Context, pileNumber string, counters domain.PileCounters) error
	UpdateStatus(ctx context.Context, pileNumber string, status domain.PileStatus, startedAt *time.Time) error
}
