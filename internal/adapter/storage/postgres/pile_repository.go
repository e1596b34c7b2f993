package postgres

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/ev-station-core/internal/domain"
	"github.com/seu-repo/ev-station-core/internal/ports"
)

type PileRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewPileRepository(db *gorm.DB, log *zap.Logger) ports.PileRepository {
	return &PileRepository{
		db:  db,
		log: log,
	}
}

func (r *PileRepository) Save(ctx context.Context, pile *domain.ChargingPile) error {
	return r.db.WithContext(ctx).Save(pile).Error
}

// UpdateCounters overwrites the cumulative statistics of a pile.
// Last-writer-wins; the scheduler's in-memory counters are authoritative.
func (r *PileRepository) UpdateCounters(ctx context.Context, pileNumber string, counters domain.PileCounters) error {
	return r.db.WithContext(ctx).
		Model(&domain.ChargingPile{}).
		Where("number = ?", pileNumber).
		Updates(map[string]interface{}{
			"total_sessions":        counters.Sessions,
			"total_charge_hours":    counters.ChargeHours,
			"total_energy_k_wh":     counters.EnergyKWh,
			"total_electricity_fee": counters.ElectricityFee,
			"total_service_fee":     counters.ServiceFee,
			"updated_at":            time.Now().UTC(),
		}).Error
}

func (r *PileRepository) UpdateStatus(ctx context.Context, pileNumber string, status domain.PileStatus, startedAt *time.Time) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if startedAt != nil {
		updates["started_at"] = *startedAt
	}
	return r.db.WithContext(ctx).
		Model(&domain.ChargingPile{}).
		Where("number = ?", pileNumber).
		Updates(updates).Error
}
