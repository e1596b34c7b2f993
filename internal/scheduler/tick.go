package scheduler

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/ev-station-core/internal/domain"
	"github.com/seu-repo/ev-station-core/internal/observability/telemetry"
)

const flushTimeout = 5 * time.Second

// chargingEvent is the payload published on charging.* subjects.
type chargingEvent struct {
	RequestID   string  `json:"request_id"`
	UserID      string  `json:"user_id"`
	PileNumber  string  `json:"pile_number"`
	QueueNumber string  `json:"queue_number"`
	AmountKWh   float64 `json:"amount_kwh"`
}

type pileEvent struct {
	PileNumber string `json:"pile_number"`
}

type statusUpdate struct {
	pileNumber string
	status     domain.PileStatus
	startedAt  *time.Time
}

type counterUpdate struct {
	pileNumber string
	counters   domain.PileCounters
}

type queuedEvent struct {
	subject string
	payload interface{}
}

// effects accumulates everything a mutation produced under the model lock.
// Persistence calls, queue publishes and metric updates happen from flush,
// strictly after the lock is released, so slow collaborators never stall a
// tick.
type effects struct {
	records  []*domain.ChargingRecord
	counters []counterUpdate
	statuses []statusUpdate
	events   []queuedEvent

	activeSessions int
	fastWaiting    int
	slowWaiting    int
	gauges         bool
}

func (e *effects) status(pileNumber string, status domain.PileStatus, startedAt *time.Time) {
	e.statuses = append(e.statuses, statusUpdate{pileNumber: pileNumber, status: status, startedAt: startedAt})
}

func (e *effects) event(subject string, payload interface{}) {
	e.events = append(e.events, queuedEvent{subject: subject, payload: payload})
}

func (e *effects) empty() bool {
	return len(e.records) == 0 && len(e.counters) == 0 && len(e.statuses) == 0 &&
		len(e.events) == 0 && !e.gauges
}

// run is the periodic driver. A single goroutine executes ticks, so at most
// one tick runs at a time; the ticker drops intervals the previous tick
// overran.
func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick advances charging progress, finalizes completed sessions, starts the
// next queued vehicles, and runs a dispatch pass.
func (s *Scheduler) tick() {
	started := time.Now()
	eff := &effects{}

	s.mu.Lock()
	s.completeFinishedLocked(eff)
	s.promoteIdleLocked(eff)
	if s.dispatchEnabled {
		s.dispatchLocked()
	}
	s.collectGaugesLocked(eff)
	s.mu.Unlock()

	s.flush(eff)
	telemetry.TickDuration.Observe(time.Since(started).Seconds())
}

// completeFinishedLocked detects sessions that reached their requested
// amount, prices them and records the resulting receipt and counter updates.
func (s *Scheduler) completeFinishedLocked(eff *effects) {
	for _, number := range s.sortedNumbers() {
		slot := s.slots[number]
		if slot.pile.Status != domain.PileStatusCharging || slot.current == nil {
			continue
		}

		power := s.power(slot.pile.Mode)
		hours := s.clock.HoursSince(slot.startedAt)
		if hours*power < slot.current.AmountKWh {
			continue
		}

		completed := slot.current
		start := slot.startedAt
		end := s.clock.Now()

		completed.Status = domain.RequestStatusCompleted
		completed.UpdatedAt = time.Now().UTC()
		slot.clear()
		slot.pile.Status = domain.PileStatusAvailable
		slot.pile.StartedAt = nil

		record, err := s.calc.Calculate(completed.UserID, slot.pile.Number, completed.Mode, completed.AmountKWh, start, end)
		if err != nil {
			// Should be impossible for a session that just ran; keep the
			// in-memory transitions and skip the receipt.
			s.log.Error("Fee calculation failed for completed session",
				zap.String("request_id", completed.ID), zap.Error(err))
			eff.status(slot.pile.Number, domain.PileStatusAvailable, nil)
			continue
		}

		slot.pile.Counters.Add(record.ChargeHours, record.AmountKWh, record.ElectricityFee, record.ServiceFee)

		eff.records = append(eff.records, record)
		eff.counters = append(eff.counters, counterUpdate{pileNumber: slot.pile.Number, counters: slot.pile.Counters})
		eff.status(slot.pile.Number, domain.PileStatusAvailable, nil)
		eff.event("charging.completed", record)

		s.log.Info("Charging session completed",
			zap.String("request_id", completed.ID),
			zap.String("user_id", completed.UserID),
			zap.String("pile", slot.pile.Number),
			zap.Float64("amount_kwh", record.AmountKWh),
			zap.Float64("total_fee", record.TotalFee),
		)
	}
}

func (s *Scheduler) collectGaugesLocked(eff *effects) {
	for _, slot := range s.slots {
		if slot.current != nil {
			eff.activeSessions++
		}
	}
	for _, r := range s.waiting {
		if r.Mode == domain.ChargingModeFast {
			eff.fastWaiting++
		} else {
			eff.slowWaiting++
		}
	}
	eff.gauges = true
}

// flush applies collected side effects outside the model lock. Persistence
// failures are logged and swallowed; the in-memory state is authoritative.
func (s *Scheduler) flush(eff *effects) {
	if eff.empty() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	for _, record := range eff.records {
		if err := s.records.Save(ctx, record); err != nil {
			telemetry.PersistenceErrors.Inc()
			s.log.Warn("Failed to save charging record",
				zap.String("record_id", record.ID), zap.Error(err))
		}
		telemetry.EnergyDeliveredTotal.Add(record.AmountKWh)
		telemetry.SessionsCompletedTotal.WithLabelValues(string(record.Mode)).Inc()
	}
	for _, cu := range eff.counters {
		if err := s.piles.UpdateCounters(ctx, cu.pileNumber, cu.counters); err != nil {
			telemetry.PersistenceErrors.Inc()
			s.log.Warn("Failed to update pile counters",
				zap.String("pile", cu.pileNumber), zap.Error(err))
		}
	}
	for _, su := range eff.statuses {
		if err := s.piles.UpdateStatus(ctx, su.pileNumber, su.status, su.startedAt); err != nil {
			telemetry.PersistenceErrors.Inc()
			s.log.Warn("Failed to update pile status",
				zap.String("pile", su.pileNumber), zap.Error(err))
		}
	}

	if s.mq != nil {
		for _, ev := range eff.events {
			data, err := json.Marshal(ev.payload)
			if err != nil {
				continue
			}
			if err := s.mq.Publish(ev.subject, data); err != nil {
				s.log.Warn("Failed to publish event", zap.String("subject", ev.subject), zap.Error(err))
			}
		}
	}

	if eff.gauges {
		telemetry.ActiveChargingSessions.Set(float64(eff.activeSessions))
		telemetry.WaitingVehicles.WithLabelValues(string(domain.ChargingModeFast)).Set(float64(eff.fastWaiting))
		telemetry.WaitingVehicles.WithLabelValues(string(domain.ChargingModeSlow)).Set(float64(eff.slowWaiting))
	}
}
