// Package circuitbreaker shields the tick engine's flush from a dead
// persistent store: once the store keeps failing, calls short-circuit instead
// of eating the flush timeout on every tick.
package circuitbreaker

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/seu-repo/ev-station-core/internal/domain"
	"github.com/seu-repo/ev-station-core/internal/ports"
)

func newBreaker(name string, log *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// RecordRepository wraps a ports.RecordRepository with a circuit breaker.
type RecordRepository struct {
	inner ports.RecordRepository
	cb    *gobreaker.CircuitBreaker
}

func WrapRecordRepository(inner ports.RecordRepository, log *zap.Logger) ports.RecordRepository {
	return &RecordRepository{
		inner: inner,
		cb:    newBreaker("records", log),
	}
}

func (r *RecordRepository) Save(ctx context.Context, record *domain.ChargingRecord) error {
	_, err := r.cb.Execute(func() (interface{}, error) {
		return nil, r.inner.Save(ctx, record)
	})
	return err
}

func (r *RecordRepository) FindByUserID(ctx context.Context, userID string) ([]domain.ChargingRecord, error) {
	out, err := r.cb.Execute(func() (interface{}, error) {
		return r.inner.FindByUserID(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	records, _ := out.([]domain.ChargingRecord)
	return records, nil
}

// PileRepository wraps a ports.PileRepository with a circuit breaker.
type PileRepository struct {
	inner ports.PileRepository
	cb    *gobreaker.CircuitBreaker
}

func WrapPileRepository(inner ports.PileRepository, log *zap.Logger) ports.PileRepository {
	return &PileRepository{
		inner: inner,
		cb:    newBreaker("piles", log),
	}
}

func (r *PileRepository) Save(ctx context.Context, pile *domain.ChargingPile) error {
	_, err := r.cb.Execute(func() (interface{}, error) {
		return nil, r.inner.Save(ctx, pile)
	})
	return err
}

func (r *PileRepository) UpdateCounters(ctx context.Context, pileNumber string, counters domain.PileCounters) error {
	_, err := r.cb.Execute(func() (interface{}, error) {
		return nil, r.inner.UpdateCounters(ctx, pileNumber, counters)
	})
	return err
}

func (r *PileRepository) UpdateStatus(ctx context.Context, pileNumber string, status domain.PileStatus, startedAt *time.Time) error {
	_, err := r.cb.Execute(func() (interface{}, error) {
		return nil, r.inner.UpdateStatus(ctx, pileNumber, status, startedAt)
	})
	return err
}
