// Package memory provides in-memory implementations of the persistence
// ports, used by the load simulator and by tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/seu-repo/ev-station-core/internal/domain"
	"github.com/seu-repo/ev-station-core/internal/ports"
)

type RecordRepository struct {
	mu      sync.RWMutex
	records map[string]domain.ChargingRecord
}

func NewRecordRepository() *RecordRepository {
	return &RecordRepository{records: make(map[string]domain.ChargingRecord)}
}

// Save stores the record; replays of the same ID are no-ops.
func (r *RecordRepository) Save(_ context.Context, record *domain.ChargingRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[record.ID]; ok {
		return nil
	}
	r.records[record.ID] = *record
	return nil
}

func (r *RecordRepository) FindByUserID(_ context.Context, userID string) ([]domain.ChargingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.ChargingRecord
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// All returns every stored record. Handy for assertions and the simulator's
// final report.
func (r *RecordRepository) All() []domain.ChargingRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ChargingRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	return out
}

type PileRepository struct {
	mu    sync.RWMutex
	piles map[string]domain.ChargingPile
}

func NewPileRepository() *PileRepository {
	return &PileRepository{piles: make(map[string]domain.ChargingPile)}
}

func (r *PileRepository) Save(_ context.Context, pile *domain.ChargingPile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.piles[pile.Number] = *pile
	return nil
}

func (r *PileRepository) UpdateCounters(_ context.Context, pileNumber string, counters domain.PileCounters) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	pile, ok := r.piles[pileNumber]
	if !ok {
		return domain.ErrNotFound
	}
	pile.Counters = counters
	pile.UpdatedAt = time.Now().UTC()
	r.piles[pileNumber] = pile
	return nil
}

func (r *PileRepository) UpdateStatus(_ context.Context, pileNumber string, status domain.PileStatus, startedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	pile, ok := r.piles[pileNumber]
	if !ok {
		return domain.ErrNotFound
	}
	pile.Status = status
	if startedAt != nil {
		pile.StartedAt = startedAt
	}
	pile.UpdatedAt = time.Now().UTC()
	r.piles[pileNumber] = pile
	return nil
}

// Get returns the stored copy of a pile.
func (r *PileRepository) Get(pileNumber string) (domain.ChargingPile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pile, ok := r.piles[pileNumber]
	return pile, ok
}

var (
	_ ports.RecordRepository = (*RecordRepository)(nil)
	_ ports.PileRepository   = (*PileRepository)(nil)
)
