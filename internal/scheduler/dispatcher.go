package scheduler

import (
	"sort"

	"go.uber.org/zap"

	"github.com/seu-repo/ev-station-core/internal/domain"
)

// bestSlotFor picks the pile at which the request would finish soonest.
// Eligible piles match the request's mode, are Available or Charging, and
// still have room in their pending queue. Ties break on ascending pile
// number. Returns nil when no pile qualifies.
func (s *Scheduler) bestSlotFor(req *domain.ChargingRequest) *pileSlot {
	power := s.power(req.Mode)

	var best *pileSlot
	var bestTime float64
	for _, number := range s.sortedNumbers() {
		slot := s.slots[number]
		if slot.pile.Mode != req.Mode {
			continue
		}
		if slot.pile.Status != domain.PileStatusAvailable && slot.pile.Status != domain.PileStatusCharging {
			continue
		}
		if len(slot.queue) >= s.cfg.PileQueueCapacity {
			continue
		}
		t := slot.completionTime(req, s.clock, power)
		if best == nil || t < bestTime {
			best = slot
			bestTime = t
		}
	}
	return best
}

// dispatchLocked drains the waiting area into pile queues by the
// minimum-completion-time rule. Strictly FIFO: the pass stops at the first
// request that cannot be placed, even if later requests could be.
func (s *Scheduler) dispatchLocked() {
	for len(s.waiting) > 0 {
		req := s.waiting[0]
		slot := s.bestSlotFor(req)
		if slot == nil {
			return
		}
		s.waiting = s.waiting[1:]
		slot.queue = append(slot.queue, req)
		s.log.Debug("Dispatched request to pile",
			zap.String("request_id", req.ID),
			zap.String("queue_number", req.QueueNumber),
			zap.String("pile", slot.pile.Number),
		)
	}
}

// reportFaultLocked marks the pile faulted and re-homes its current and
// queued requests onto other piles of the same mode, keeping their original
// queue-number order. Requests that find no room return to the head of the
// waiting area.
func (s *Scheduler) reportFaultLocked(slot *pileSlot, eff *effects) {
	s.dispatchEnabled = false
	defer func() { s.dispatchEnabled = true }()

	slot.pile.Status = domain.PileStatusFault
	eff.status(slot.pile.Number, domain.PileStatusFault, nil)
	eff.event("pile.fault", pileEvent{PileNumber: slot.pile.Number})

	var displaced []*domain.ChargingRequest
	if slot.current != nil {
		slot.current.Status = domain.RequestStatusWaiting
		displaced = append(displaced, slot.current)
	}
	displaced = append(displaced, slot.queue...)
	slot.clear()
	slot.queue = nil

	s.redistributeLocked(displaced, eff)
}

// repairLocked restores a faulted pile and reshuffles every queued request of
// the same mode (current sessions stay put) across all of that mode's piles,
// the freshly repaired one included.
func (s *Scheduler) repairLocked(slot *pileSlot, eff *effects) {
	s.dispatchEnabled = false
	defer func() { s.dispatchEnabled = true }()

	slot.pile.Status = domain.PileStatusAvailable
	eff.status(slot.pile.Number, domain.PileStatusAvailable, nil)
	eff.event("pile.repaired", pileEvent{PileNumber: slot.pile.Number})

	var displaced []*domain.ChargingRequest
	for _, other := range s.slots {
		if other.pile.Mode != slot.pile.Mode {
			continue
		}
		displaced = append(displaced, other.queue...)
		other.queue = nil
	}

	s.redistributeLocked(displaced, eff)
}

// redistributeLocked re-inserts displaced requests in queue-number order by
// the min-completion-time rule, promotes whatever landed on idle piles, and
// prepends the remainder to the waiting area in their relative order.
func (s *Scheduler) redistributeLocked(displaced []*domain.ChargingRequest, eff *effects) {
	sort.SliceStable(displaced, func(i, j int) bool {
		return queueNumberLess(displaced[i].QueueNumber, displaced[j].QueueNumber)
	})

	var leftover []*domain.ChargingRequest
	for _, req := range displaced {
		if slot := s.bestSlotFor(req); slot != nil {
			slot.queue = append(slot.queue, req)
		} else {
			leftover = append(leftover, req)
		}
	}
	if len(leftover) > 0 {
		s.waiting = append(leftover, s.waiting...)
		s.log.Warn("Displaced requests returned to waiting area", zap.Int("count", len(leftover)))
	}

	s.promoteIdleLocked(eff)
}
