package mocks

import (
	"context"
	"time"

	"github.com/seu-repo/ev-station-core/internal/domain"
)

// MockRecordRepository is a mock implementation of RecordRepository
type MockRecordRepository struct {
	SaveFunc         func(ctx context.Context, record *domain.ChargingRecord) error
	FindByUserIDFunc func(ctx context.Context, userID string) ([]domain.ChargingRecord, error)

	Saved []domain.ChargingRecord
}

func (m *MockRecordRepository) Save(ctx context.Context, record *domain.ChargingRecord) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, record)
	}
	m.Saved = append(m.Saved, *record)
	return nil
}

func (m *MockRecordRepository) FindByUserID(ctx context.Context, userID string) ([]domain.ChargingRecord, error) {
	if m.FindByUserIDFunc != nil {
		return m.FindByUserIDFunc(ctx, userID)
	}
	var out []domain.ChargingRecord
	for _, rec := range m.Saved {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// MockPileRepository is a mock implementation of PileRepository
type MockPileRepository struct {
	SaveFunc           func(ctx context.Context, pile *domain.ChargingPile) error
	UpdateCountersFunc func(ctx context.Context, pileNumber string, counters domain.PileCounters) error
	UpdateStatusFunc   func(ctx context.Context, pileNumber string, status domain.PileStatus, startedAt *time.Time) error

	SavedPiles     []domain.ChargingPile
	CounterUpdates map[string]domain.PileCounters
	StatusUpdates  map[string][]domain.PileStatus
}

func NewMockPileRepository() *MockPileRepository {
	return &MockPileRepository{
		CounterUpdates: make(map[string]domain.PileCounters),
		StatusUpdates:  make(map[string][]domain.PileStatus),
	}
}

func (m *MockPileRepository) Save(ctx context.Context, pile *domain.ChargingPile) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, pile)
	}
	m.SavedPiles = append(m.SavedPiles, *pile)
	return nil
}

func (m *MockPileRepository) UpdateCounters(ctx context.Context, pileNumber string, counters domain.PileCounters) error {
	if m.UpdateCountersFunc != nil {
		return m.UpdateCountersFunc(ctx, pileNumber, counters)
	}
	m.CounterUpdates[pileNumber] = counters
	return nil
}

func (m *MockPileRepository) UpdateStatus(ctx context.Context, pileNumber string, status domain.PileStatus, startedAt *time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, pileNumber, status, startedAt)
	}
	m.StatusUpdates[pileNumber] = append(m.StatusUpdates[pileNumber], status)
	return nil
}
