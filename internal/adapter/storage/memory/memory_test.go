package memory

import (
	"context"
	"testing"
	"time"

	"github.com/seu-repo/ev-station-core/internal/domain"
)

func TestRecordRepositorySaveIsIdempotent(t *testing.T) {
	// Arrange
	repo := NewRecordRepository()
	record := &domain.ChargingRecord{ID: "rec-1", UserID: "u1", TotalFee: 54.0}

	// Act: the tick engine may retry a flush after a partial failure.
	if err := repo.Save(context.Background(), record); err != nil {
		t.Fatal(err)
	}
	replay := *record
	replay.TotalFee = 999
	if err := repo.Save(context.Background(), &replay); err != nil {
		t.Fatal(err)
	}

	// Assert: first write wins, no duplicate.
	all := repo.All()
	if len(all) != 1 {
		t.Fatalf("records = %d, want 1", len(all))
	}
	if all[0].TotalFee != 54.0 {
		t.Errorf("replay overwrote the stored record")
	}
}

func TestRecordRepositoryFindByUserID(t *testing.T) {
	repo := NewRecordRepository()
	ctx := context.Background()
	repo.Save(ctx, &domain.ChargingRecord{ID: "a", UserID: "u1"})
	repo.Save(ctx, &domain.ChargingRecord{ID: "b", UserID: "u2"})
	repo.Save(ctx, &domain.ChargingRecord{ID: "c", UserID: "u1"})

	got, err := repo.FindByUserID(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("records for u1 = %d, want 2", len(got))
	}

	got, err = repo.FindByUserID(ctx, "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("unknown user should have no records")
	}
}

func TestPileRepositoryUpdates(t *testing.T) {
	repo := NewPileRepository()
	ctx := context.Background()
	repo.Save(ctx, &domain.ChargingPile{Number: "F1", Mode: domain.ChargingModeFast, Status: domain.PileStatusAvailable})

	counters := domain.PileCounters{Sessions: 3, EnergyKWh: 90, ChargeHours: 3}
	if err := repo.UpdateCounters(ctx, "F1", counters); err != nil {
		t.Fatal(err)
	}
	startedAt := time.Now().UTC()
	if err := repo.UpdateStatus(ctx, "F1", domain.PileStatusCharging, &startedAt); err != nil {
		t.Fatal(err)
	}

	pile, ok := repo.Get("F1")
	if !ok {
		t.Fatal("pile missing")
	}
	if pile.Counters != counters {
		t.Errorf("counters = %+v, want %+v", pile.Counters, counters)
	}
	if pile.Status != domain.PileStatusCharging || pile.StartedAt == nil {
		t.Errorf("status update not applied")
	}

	if err := repo.UpdateCounters(ctx, "F9", counters); err != domain.ErrNotFound {
		t.Errorf("unknown pile counters: got %v, want ErrNotFound", err)
	}
	if err := repo.UpdateStatus(ctx, "F9", domain.PileStatusFault, nil); err != domain.ErrNotFound {
		t.Errorf("unknown pile status: got %v, want ErrNotFound", err)
	}
}
