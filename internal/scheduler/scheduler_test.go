package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seu-repo/ev-station-core/internal/domain"
	"github.com/seu-repo/ev-station-core/internal/mocks"
)

// newTestScheduler builds a scheduler with the default station layout (two
// fast piles, three slow) and dispatch enabled, without starting the tick
// goroutine. Tests drive s.tick() by hand against the manual clock.
func newTestScheduler(t *testing.T, clock Clock) (*Scheduler, *mocks.MockRecordRepository, *mocks.MockPileRepository) {
	t.Helper()

	records := &mocks.MockRecordRepository{}
	piles := mocks.NewMockPileRepository()
	s := New(DefaultConfig(), clock, records, piles, mocks.NewMockMessageQueue(), zap.NewNop())

	s.mu.Lock()
	s.initPilesLocked()
	s.dispatchEnabled = true
	s.mu.Unlock()
	return s, records, piles
}

func mustSubmit(t *testing.T, s *Scheduler, userID string, mode domain.ChargingMode, amount float64) *domain.ChargingRequest {
	t.Helper()
	req, err := s.Submit(userID, mode, amount)
	if err != nil {
		t.Fatalf("submit for %s: %v", userID, err)
	}
	return req
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func pileByNumber(t *testing.T, snap StationSnapshot, number string) PileSnapshot {
	t.Helper()
	for _, p := range snap.Piles {
		if p.Number == number {
			return p
		}
	}
	t.Fatalf("pile %s missing from snapshot", number)
	return PileSnapshot{}
}

func TestSubmitValidation(t *testing.T) {
	s, _, _ := newTestScheduler(t, newManualClock(simTime(11, 0)))

	if _, err := s.Submit("u", domain.ChargingMode("turbo"), 10); err != domain.ErrInvalidMode {
		t.Errorf("bad mode: got %v, want ErrInvalidMode", err)
	}
	if _, err := s.Submit("u", domain.ChargingModeFast, 0); err != domain.ErrInvalidAmount {
		t.Errorf("zero amount: got %v, want ErrInvalidAmount", err)
	}
	if _, err := s.Submit("u", domain.ChargingModeFast, -3); err != domain.ErrInvalidAmount {
		t.Errorf("negative amount: got %v, want ErrInvalidAmount", err)
	}
}

func TestSubmitAssignsModeNumbers(t *testing.T) {
	s, _, _ := newTestScheduler(t, newManualClock(simTime(11, 0)))

	fast := mustSubmit(t, s, "u1", domain.ChargingModeFast, 30)
	slow := mustSubmit(t, s, "u2", domain.ChargingModeSlow, 7)
	fast2 := mustSubmit(t, s, "u3", domain.ChargingModeFast, 15)

	if fast.QueueNumber != "F1" || slow.QueueNumber != "T1" || fast2.QueueNumber != "F2" {
		t.Errorf("queue numbers = %s, %s, %s; want F1, T1, F2",
			fast.QueueNumber, slow.QueueNumber, fast2.QueueNumber)
	}
	if fast.Status != domain.RequestStatusWaiting {
		t.Errorf("fresh request status = %s, want waiting", fast.Status)
	}
}

func TestChargingSessionCompletes(t *testing.T) {
	// Arrange: one fast vehicle, 30 kWh, admitted at simulated 11:00.
	clock := newManualClock(simTime(11, 0))
	s, records, piles := newTestScheduler(t, clock)
	mq := s.mq.(*mocks.MockMessageQueue)

	req := mustSubmit(t, s, "user-1", domain.ChargingModeFast, 30)

	// Act: first tick dispatches into a pile queue, second promotes it to
	// charging, then one simulated hour at 30 kW delivers the full amount.
	s.tick()
	s.tick()

	snap := s.Snapshot()
	f1 := pileByNumber(t, snap, "F1")
	if f1.CurrentRequest == nil || f1.CurrentRequest.ID != req.ID {
		t.Fatalf("request should be charging on F1")
	}

	clock.Advance(time.Hour)
	s.tick()

	// Assert: exactly one priced record, peak-hour fees, pile back in service.
	require.Len(t, records.Saved, 1)
	record := records.Saved[0]
	require.Equal(t, "user-1", record.UserID)
	require.Equal(t, "F1", record.PileNumber)
	require.InDelta(t, 30.0, record.AmountKWh, 0.001)
	require.InDelta(t, 1.0, record.ChargeHours, 0.001)
	require.InDelta(t, 30.0, record.ElectricityFee, 0.001)
	require.InDelta(t, 24.0, record.ServiceFee, 0.001)
	require.InDelta(t, 54.0, record.TotalFee, 0.001)

	snap = s.Snapshot()
	f1 = pileByNumber(t, snap, "F1")
	if f1.Status != domain.PileStatusAvailable || f1.CurrentRequest != nil {
		t.Errorf("pile after completion: status=%s current=%v", f1.Status, f1.CurrentRequest)
	}
	require.EqualValues(t, 1, f1.Counters.Sessions)
	require.InDelta(t, 30.0, f1.Counters.EnergyKWh, 0.001)
	require.InDelta(t, 1.0, f1.Counters.ChargeHours, 0.001)

	if got := piles.CounterUpdates["F1"]; got.Sessions != 1 {
		t.Errorf("persisted counters sessions = %d, want 1", got.Sessions)
	}
	if msgs := mq.GetPublishedMessages("charging.completed"); len(msgs) != 1 {
		t.Errorf("completed events = %d, want 1", len(msgs))
	}

	// A further tick must not double-complete.
	s.tick()
	require.Len(t, records.Saved, 1)
}

func TestCancelWaitingRequest(t *testing.T) {
	s, records, _ := newTestScheduler(t, newManualClock(simTime(11, 0)))
	req := mustSubmit(t, s, "u1", domain.ChargingModeFast, 30)

	mustNoErr(t, s.Cancel(req.ID))

	if req.Status != domain.RequestStatusCancelled {
		t.Errorf("status = %s, want cancelled", req.Status)
	}
	if snap := s.Snapshot(); snap.FastWaitingCount != 0 {
		t.Errorf("waiting count = %d, want 0", snap.FastWaitingCount)
	}
	if len(records.Saved) != 0 {
		t.Errorf("cancelled request must not produce a record")
	}

	// Cancelling again finds nothing.
	if err := s.Cancel(req.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second cancel: got %v, want ErrNotFound", err)
	}
}

func TestCancelChargingPromotesNext(t *testing.T) {
	// Arrange: F2 out of service so both requests stack on F1.
	clock := newManualClock(simTime(11, 0))
	s, records, _ := newTestScheduler(t, clock)
	mustNoErr(t, s.ShutdownPile("F2"))

	r1 := mustSubmit(t, s, "u1", domain.ChargingModeFast, 30)
	r2 := mustSubmit(t, s, "u2", domain.ChargingModeFast, 30)
	s.tick()
	s.tick()
	clock.Advance(30 * time.Minute)

	// Act: abort the session in flight.
	mustNoErr(t, s.Cancel(r1.ID))

	// Assert: no receipt for the aborted session, next vehicle starts
	// immediately on the same pile.
	if len(records.Saved) != 0 {
		t.Fatalf("aborted session must not be billed")
	}
	if r1.Status != domain.RequestStatusCancelled {
		t.Errorf("r1 status = %s, want cancelled", r1.Status)
	}
	snap := s.Snapshot()
	f1 := pileByNumber(t, snap, "F1")
	if f1.CurrentRequest == nil || f1.CurrentRequest.ID != r2.ID {
		t.Fatalf("next queued vehicle should be charging")
	}
	if f1.Status != domain.PileStatusCharging {
		t.Errorf("pile status = %s, want charging", f1.Status)
	}
}

func TestCancelChargingWithEmptyQueueFreesPile(t *testing.T) {
	clock := newManualClock(simTime(11, 0))
	s, _, _ := newTestScheduler(t, clock)
	req := mustSubmit(t, s, "u1", domain.ChargingModeSlow, 7)
	s.tick()
	s.tick()

	mustNoErr(t, s.Cancel(req.ID))

	snap := s.Snapshot()
	t1 := pileByNumber(t, snap, "T1")
	if t1.Status != domain.PileStatusAvailable || !t1.IsIdle {
		t.Errorf("pile after cancel: status=%s idle=%v", t1.Status, t1.IsIdle)
	}
}

func TestCancelByUser(t *testing.T) {
	clock := newManualClock(simTime(11, 0))
	s, _, _ := newTestScheduler(t, clock)
	mustSubmit(t, s, "u1", domain.ChargingModeFast, 30)
	mustSubmit(t, s, "u1", domain.ChargingModeSlow, 7)
	other := mustSubmit(t, s, "u2", domain.ChargingModeFast, 15)

	mustNoErr(t, s.CancelByUser("u1"))

	snap := s.Snapshot()
	if snap.FastWaitingCount != 1 || snap.FastWaiting[0].ID != other.ID {
		t.Errorf("only u2's request should remain")
	}
	if snap.SlowWaitingCount != 0 {
		t.Errorf("u1's slow request should be gone")
	}

	if err := s.CancelByUser("nobody"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown user: got %v, want ErrNotFound", err)
	}
}

func TestUpdateAmountRules(t *testing.T) {
	clock := newManualClock(simTime(11, 0))
	s, _, _ := newTestScheduler(t, clock)
	queued := mustSubmit(t, s, "u1", domain.ChargingModeFast, 30)
	charging := mustSubmit(t, s, "u2", domain.ChargingModeSlow, 7)

	// One pass dispatches both into pile queues without starting them.
	s.tick()
	if err := s.UpdateAmount(queued.ID, 45); err != nil {
		t.Fatalf("update queued amount: %v", err)
	}
	if queued.AmountKWh != 45 {
		t.Errorf("amount = %v, want 45", queued.AmountKWh)
	}

	// The next pass promotes them; a session in flight is immutable.
	s.tick()
	if err := s.UpdateAmount(charging.ID, 10); !errors.Is(err, domain.ErrCannotModify) {
		t.Errorf("charging request: got %v, want ErrCannotModify", err)
	}
	if err := s.UpdateAmount("missing", 10); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown request: got %v, want ErrNotFound", err)
	}
	if err := s.UpdateAmount(queued.ID, -1); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("bad amount: got %v, want ErrInvalidAmount", err)
	}
}

func TestUpdateModeReissuesNumberAtTail(t *testing.T) {
	clock := newManualClock(simTime(11, 0))
	s, _, _ := newTestScheduler(t, clock)
	first := mustSubmit(t, s, "u1", domain.ChargingModeFast, 30)
	second := mustSubmit(t, s, "u2", domain.ChargingModeFast, 15)

	// Act: switch the first request to slow.
	mustNoErr(t, s.UpdateMode(first.ID, domain.ChargingModeSlow))

	// Assert: new mode, fresh slow-series number, tail position.
	if first.Mode != domain.ChargingModeSlow || first.QueueNumber != "T1" {
		t.Errorf("mode=%s number=%s, want slow/T1", first.Mode, first.QueueNumber)
	}
	snap := s.Snapshot()
	if snap.FastWaitingCount != 1 || snap.FastWaiting[0].ID != second.ID {
		t.Errorf("remaining fast head should be the second request")
	}
	if snap.SlowWaitingCount != 1 {
		t.Errorf("switched request should wait in the slow series")
	}
}

func TestUpdateModeWhileChargingRefused(t *testing.T) {
	clock := newManualClock(simTime(11, 0))
	s, _, _ := newTestScheduler(t, clock)
	req := mustSubmit(t, s, "u1", domain.ChargingModeFast, 30)
	s.tick()
	s.tick()

	if err := s.UpdateMode(req.ID, domain.ChargingModeSlow); !errors.Is(err, domain.ErrCannotModify) {
		t.Errorf("got %v, want ErrCannotModify", err)
	}
}

func TestStartStopLifecycle(t *testing.T) {
	records := &mocks.MockRecordRepository{}
	piles := mocks.NewMockPileRepository()
	cfg := DefaultConfig()
	cfg.TickInterval = 5 * time.Millisecond
	s := New(cfg, newManualClock(simTime(9, 0)), records, piles, nil, zap.NewNop())

	mustNoErr(t, s.Start())
	if err := s.Start(); !errors.Is(err, domain.ErrAlreadyRunning) {
		t.Errorf("double start: got %v, want ErrAlreadyRunning", err)
	}

	// The station layout is materialized and persisted on first start.
	if len(piles.SavedPiles) != 5 {
		t.Errorf("persisted piles = %d, want 5", len(piles.SavedPiles))
	}

	mustNoErr(t, s.Stop())
	if err := s.Stop(); !errors.Is(err, domain.ErrNotRunning) {
		t.Errorf("double stop: got %v, want ErrNotRunning", err)
	}

	// Restartable.
	mustNoErr(t, s.Start())
	mustNoErr(t, s.Stop())
}

func TestPileShutdownAndStart(t *testing.T) {
	clock := newManualClock(simTime(11, 0))
	s, _, piles := newTestScheduler(t, clock)

	mustNoErr(t, s.ShutdownPile("T3"))
	if got := pileByNumber(t, s.Snapshot(), "T3").Status; got != domain.PileStatusShutdown {
		t.Fatalf("status = %s, want shutdown", got)
	}
	if err := s.ShutdownPile("T3"); !errors.Is(err, domain.ErrPileUnavailable) {
		t.Errorf("double shutdown: got %v, want ErrPileUnavailable", err)
	}

	mustNoErr(t, s.StartPile("T3"))
	if got := pileByNumber(t, s.Snapshot(), "T3").Status; got != domain.PileStatusAvailable {
		t.Fatalf("status = %s, want available", got)
	}
	if err := s.StartPile("T3"); !errors.Is(err, domain.ErrPileUnavailable) {
		t.Errorf("starting an in-service pile: got %v, want ErrPileUnavailable", err)
	}

	if err := s.ShutdownPile("F9"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown pile: got %v, want ErrNotFound", err)
	}

	// Status transitions reach persistence.
	if got := piles.StatusUpdates["T3"]; len(got) != 2 {
		t.Errorf("persisted status updates = %d, want 2", len(got))
	}
}

func TestShutdownRefusedWhileCharging(t *testing.T) {
	clock := newManualClock(simTime(11, 0))
	s, _, _ := newTestScheduler(t, clock)
	mustSubmit(t, s, "u1", domain.ChargingModeFast, 30)
	s.tick()
	s.tick()

	if err := s.ShutdownPile("F1"); !errors.Is(err, domain.ErrPileUnavailable) {
		t.Errorf("got %v, want ErrPileUnavailable", err)
	}
}

func TestSnapshotOrdering(t *testing.T) {
	clock := newManualClock(simTime(11, 0))
	s, _, _ := newTestScheduler(t, clock)

	snap := s.Snapshot()

	want := []string{"F1", "F2", "T1", "T2", "T3"}
	if len(snap.Piles) != len(want) {
		t.Fatalf("piles = %d, want %d", len(snap.Piles), len(want))
	}
	for i, p := range snap.Piles {
		if p.Number != want[i] {
			t.Errorf("pile %d = %s, want %s", i, p.Number, want[i])
		}
		if !p.IsIdle || p.Status != domain.PileStatusAvailable {
			t.Errorf("fresh pile %s should be idle and available", p.Number)
		}
	}
	if !snap.CurrentTime.Equal(simTime(11, 0)) {
		t.Errorf("snapshot time = %v, want simulated 11:00", snap.CurrentTime)
	}
}
