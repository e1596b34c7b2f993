package postgres

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/seu-repo/ev-station-core/internal/domain"
	"github.com/seu-repo/ev-station-core/internal/ports"
)

type RecordRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewRecordRepository(db *gorm.DB, log *zap.Logger) ports.RecordRepository {
	return &RecordRepository{
		db:  db,
		log: log,
	}
}

// Save inserts the record. Replays of the same record ID are no-ops, which
// makes the tick engine's emission idempotent.
func (r *RecordRepository) Save(ctx context.Context, record *domain.ChargingRecord) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(record).Error
}

func (r *RecordRepository) FindByUserID(ctx context.Context, userID string) ([]domain.ChargingRecord, error) {
	var records []domain.ChargingRecord
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&records).Error
	return records, err
}
