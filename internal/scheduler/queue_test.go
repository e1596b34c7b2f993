package scheduler

import (
	"testing"
	"time"

	"github.com/seu-repo/ev-station-core/internal/domain"
)

func TestPileSlotCompletionTime(t *testing.T) {
	// Arrange: a fast pile half way through a 30 kWh session with another
	// 30 kWh queued behind it.
	clock := newManualClock(simTime(11, 0))
	slot := &pileSlot{
		pile:      &domain.ChargingPile{Number: "F1", Mode: domain.ChargingModeFast, Status: domain.PileStatusCharging},
		current:   &domain.ChargingRequest{AmountKWh: 30},
		startedAt: simTime(10, 30),
		queue:     []*domain.ChargingRequest{{AmountKWh: 30}},
	}
	req := &domain.ChargingRequest{AmountKWh: 30}

	// Act
	got := slot.completionTime(req, clock, 30.0)

	// Assert: (15 remaining + 30 queued + 30 requested) / 30 kW = 2.5h
	if got != 2.5 {
		t.Errorf("completionTime = %v, want 2.5", got)
	}
}

func TestPileSlotRemainingAmountClampsAtZero(t *testing.T) {
	// Session overran its amount between ticks; remaining must not go
	// negative or it would skew dispatch estimates.
	clock := newManualClock(simTime(13, 0))
	slot := &pileSlot{
		current:   &domain.ChargingRequest{AmountKWh: 30},
		startedAt: simTime(11, 0),
	}

	if got := slot.remainingAmount(clock, 30.0); got != 0 {
		t.Errorf("remainingAmount = %v, want 0", got)
	}
}

func TestPileSlotProgress(t *testing.T) {
	clock := newManualClock(simTime(11, 30))
	slot := &pileSlot{
		current:   &domain.ChargingRequest{AmountKWh: 30},
		startedAt: simTime(11, 0),
	}

	pct := slot.progress(clock, 30.0)
	if pct == nil || *pct != 50.0 {
		t.Fatalf("progress = %v, want 50", pct)
	}

	clock.Advance(2 * time.Hour)
	pct = slot.progress(clock, 30.0)
	if pct == nil || *pct != 100.0 {
		t.Errorf("overrun progress = %v, want capped at 100", pct)
	}

	slot.clear()
	if got := slot.progress(clock, 30.0); got != nil {
		t.Errorf("idle progress = %v, want nil", got)
	}
}

func TestWaitingAreaCapacity(t *testing.T) {
	// Arrange
	clock := newManualClock(simTime(11, 0))
	s, _, _ := newTestScheduler(t, clock)

	// Act: fill the waiting area without any dispatch running.
	for i := 0; i < 6; i++ {
		if _, err := s.Submit("user-a", domain.ChargingModeFast, 10); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	_, err := s.Submit("user-b", domain.ChargingModeSlow, 10)

	// Assert
	if err != domain.ErrWaitingAreaFull {
		t.Errorf("7th submit: got %v, want ErrWaitingAreaFull", err)
	}
}

func TestPileQueueCapacity(t *testing.T) {
	// Arrange: one fast pile in service so all fast traffic lands on it.
	clock := newManualClock(simTime(11, 0))
	s, _, _ := newTestScheduler(t, clock)
	mustNoErr(t, s.ShutdownPile("F2"))

	r1 := mustSubmit(t, s, "u1", domain.ChargingModeFast, 30)
	r2 := mustSubmit(t, s, "u2", domain.ChargingModeFast, 30)
	r3 := mustSubmit(t, s, "u3", domain.ChargingModeFast, 30)

	// Act: the first pass fills F1's pending queue to its bound of two.
	s.tick()

	// Assert
	snap := s.Snapshot()
	f1 := pileByNumber(t, snap, "F1")
	if len(f1.Queue) != 2 {
		t.Fatalf("F1 queue length = %d, want 2", len(f1.Queue))
	}
	if f1.Queue[0].ID != r1.ID || f1.Queue[1].ID != r2.ID {
		t.Errorf("F1 queue order broken: got %s,%s", f1.Queue[0].QueueNumber, f1.Queue[1].QueueNumber)
	}
	if snap.FastWaitingCount != 1 || snap.FastWaiting[0].ID != r3.ID {
		t.Errorf("third request should still be waiting")
	}

	// The next pass promotes the head, freeing one pending seat.
	s.tick()
	snap = s.Snapshot()
	f1 = pileByNumber(t, snap, "F1")
	if f1.CurrentRequest == nil || f1.CurrentRequest.ID != r1.ID {
		t.Fatalf("F1 should be charging the first request")
	}
	if len(f1.Queue) != 2 || f1.Queue[1].ID != r3.ID {
		t.Errorf("vacated seat should admit the waiting request")
	}
}
