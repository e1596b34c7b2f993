package scheduler

import (
	"sort"
	"strconv"
	"time"

	"github.com/seu-repo/ev-station-core/internal/domain"
)

// pileSlot is the per-pile queue structure: at most one request charging,
// plus a bounded FIFO of requests assigned but not yet started.
type pileSlot struct {
	pile      *domain.ChargingPile
	queue     []*domain.ChargingRequest
	current   *domain.ChargingRequest
	startedAt time.Time
}

func (ps *pileSlot) isIdle() bool {
	return ps.current == nil && len(ps.queue) == 0
}

// queuedAmount is the total energy already committed to the pending queue.
func (ps *pileSlot) queuedAmount() float64 {
	var sum float64
	for _, r := range ps.queue {
		sum += r.AmountKWh
	}
	return sum
}

// remainingAmount is the energy the current session still has to deliver,
// given the pile power and elapsed simulated hours.
func (ps *pileSlot) remainingAmount(clock Clock, power float64) float64 {
	if ps.current == nil {
		return 0
	}
	remaining := ps.current.AmountKWh - clock.HoursSince(ps.startedAt)*power
	if remaining < 0 {
		return 0
	}
	return remaining
}

// completionTime estimates the simulated hours until a hypothetically
// assigned request would finish at this pile.
func (ps *pileSlot) completionTime(req *domain.ChargingRequest, clock Clock, power float64) float64 {
	return (ps.remainingAmount(clock, power) + ps.queuedAmount() + req.AmountKWh) / power
}

// progress returns the current session's completion percentage, capped at 100.
func (ps *pileSlot) progress(clock Clock, power float64) *float64 {
	if ps.current == nil {
		return nil
	}
	pct := clock.HoursSince(ps.startedAt) * power / ps.current.AmountKWh * 100.0
	if pct > 100 {
		pct = 100
	}
	return &pct
}

func (ps *pileSlot) clear() {
	ps.current = nil
	ps.startedAt = time.Time{}
}

// power returns the charging power for a mode.
func (s *Scheduler) power(mode domain.ChargingMode) float64 {
	if mode == domain.ChargingModeFast {
		return s.cfg.FastPowerKWh
	}
	return s.cfg.SlowPowerKWh
}

// sortedNumbers lists pile numbers in ascending station order (F1 < F2 < F10).
// Callers must hold the model lock.
func (s *Scheduler) sortedNumbers() []string {
	numbers := make([]string, 0, len(s.slots))
	for number := range s.slots {
		numbers = append(numbers, number)
	}
	sort.Slice(numbers, func(i, j int) bool {
		return queueNumberLess(numbers[i], numbers[j])
	})
	return numbers
}

// queueNumberLess orders identifiers like F2 < F10 by prefix then numeric part.
func queueNumberLess(a, b string) bool {
	if len(a) == 0 || len(b) == 0 {
		return a < b
	}
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	na, errA := strconv.Atoi(a[1:])
	nb, errB := strconv.Atoi(b[1:])
	if errA != nil || errB != nil {
		return a < b
	}
	return na < nb
}

// admitLocked appends a request to the waiting area.
func (s *Scheduler) admitLocked(req *domain.ChargingRequest) error {
	if len(s.waiting) >= s.cfg.WaitingAreaCapacity {
		return domain.ErrWaitingAreaFull
	}
	s.waiting = append(s.waiting, req)
	return nil
}

// removeFromWaitingLocked removes and returns the request with the given id,
// or nil if it is not in the waiting area.
func (s *Scheduler) removeFromWaitingLocked(id string) *domain.ChargingRequest {
	for i, r := range s.waiting {
		if r.ID == id {
			s.waiting = append(s.waiting[:i], s.waiting[i+1:]...)
			return r
		}
	}
	return nil
}

// promoteNextLocked pops the head of the slot queue into the charging
// position and marks the pile Charging. Records the resulting status change
// in eff for persistence after the lock is released.
func (s *Scheduler) promoteNextLocked(slot *pileSlot, eff *effects) *domain.ChargingRequest {
	if slot.current != nil || len(slot.queue) == 0 {
		return nil
	}
	next := slot.queue[0]
	slot.queue = slot.queue[1:]

	now := s.clock.Now()
	next.Status = domain.RequestStatusCharging
	next.UpdatedAt = time.Now().UTC()
	slot.current = next
	slot.startedAt = now
	slot.pile.Status = domain.PileStatusCharging
	startedAt := now
	slot.pile.StartedAt = &startedAt

	eff.status(slot.pile.Number, domain.PileStatusCharging, &startedAt)
	eff.event("charging.started", chargingEvent{
		RequestID:   next.ID,
		UserID:      next.UserID,
		PileNumber:  slot.pile.Number,
		QueueNumber: next.QueueNumber,
		AmountKWh:   next.AmountKWh,
	})
	return next
}

// promoteIdleLocked starts the next queued request on every available pile.
func (s *Scheduler) promoteIdleLocked(eff *effects) {
	for _, number := range s.sortedNumbers() {
		slot := s.slots[number]
		if slot.pile.Status == domain.PileStatusAvailable && slot.current == nil && len(slot.queue) > 0 {
			s.promoteNextLocked(slot, eff)
		}
	}
}

// assignToPileLocked pushes a request onto the slot's pending queue.
func (s *Scheduler) assignToPileLocked(slot *pileSlot, req *domain.ChargingRequest) error {
	if len(slot.queue) >= s.cfg.PileQueueCapacity {
		return domain.ErrPileQueueFull
	}
	slot.queue = append(slot.queue, req)
	return nil
}
