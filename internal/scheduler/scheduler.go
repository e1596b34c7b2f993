// Package scheduler implements the control core of the charging station:
// the bounded waiting area, per-pile queues, minimum-completion-time
// dispatch, the accelerated-clock tick engine, and the request/pile state
// machines. All mutable state lives behind one exclusive lock; persistence
// and event publishing happen outside it on collected side effects.
package scheduler

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/ev-station-core/internal/adapter/queue"
	"github.com/seu-repo/ev-station-core/internal/billing"
	"github.com/seu-repo/ev-station-core/internal/domain"
	"github.com/seu-repo/ev-station-core/internal/ports"
)

type Scheduler struct {
	cfg     Config
	clock   Clock
	numbers *NumberGenerator
	calc    *billing.Calculator
	records ports.RecordRepository
	piles   ports.PileRepository
	mq      queue.MessageQueue
	log     *zap.Logger

	mu              sync.RWMutex
	waiting         []*domain.ChargingRequest
	slots           map[string]*pileSlot
	dispatchEnabled bool
	running         bool
	cancel          context.CancelFunc
	done            chan struct{}
}

// New builds a scheduler. clock may be nil, in which case a SimClock with the
// configured acceleration is used. mq may be nil to disable event publishing.
func New(cfg Config, clock Clock, records ports.RecordRepository, piles ports.PileRepository, mq queue.MessageQueue, log *zap.Logger) *Scheduler {
	cfg = cfg.withDefaults()
	if clock == nil {
		clock = NewSimClock(cfg.Acceleration)
	}
	return &Scheduler{
		cfg:     cfg,
		clock:   clock,
		numbers: NewNumberGenerator(),
		calc:    billing.NewCalculator(cfg.Tariff),
		records: records,
		piles:   piles,
		mq:      mq,
		log:     log,
		slots:   make(map[string]*pileSlot),
	}
}

// Start initializes the station layout if empty, enables dispatch and spawns
// the tick engine.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return domain.ErrAlreadyRunning
	}

	var created []*domain.ChargingPile
	if len(s.slots) == 0 {
		created = s.initPilesLocked()
	}
	s.dispatchEnabled = true
	s.running = true
	s.done = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	for _, pile := range created {
		if err := s.piles.Save(context.Background(), pile); err != nil {
			s.log.Warn("Failed to persist pile", zap.String("pile", pile.Number), zap.Error(err))
		}
	}

	go s.run(ctx)
	s.log.Info("Scheduler started",
		zap.Duration("tick_interval", s.cfg.TickInterval),
		zap.Float64("acceleration", s.cfg.Acceleration),
		zap.Int("piles", len(s.slots)),
	)
	return nil
}

// Stop disables dispatch and terminates the tick engine at the next tick
// boundary.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return domain.ErrNotRunning
	}
	s.running = false
	s.dispatchEnabled = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
	s.log.Info("Scheduler stopped")
	return nil
}

func (s *Scheduler) initPilesLocked() []*domain.ChargingPile {
	var created []*domain.ChargingPile
	add := func(number string, mode domain.ChargingMode) {
		now := time.Now().UTC()
		pile := &domain.ChargingPile{
			ID:        uuid.New().String(),
			Number:    number,
			Mode:      mode,
			Status:    domain.PileStatusAvailable,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.slots[number] = &pileSlot{pile: pile}
		created = append(created, pile)
	}
	for i := 1; i <= s.cfg.FastPiles; i++ {
		add(domain.ChargingModeFast.Prefix()+strconv.Itoa(i), domain.ChargingModeFast)
	}
	for i := 1; i <= s.cfg.SlowPiles; i++ {
		add(domain.ChargingModeSlow.Prefix()+strconv.Itoa(i), domain.ChargingModeSlow)
	}
	return created
}

// Submit allocates a queue number and admits the request to the waiting area.
func (s *Scheduler) Submit(userID string, mode domain.ChargingMode, amountKWh float64) (*domain.ChargingRequest, error) {
	if !mode.Valid() {
		return nil, domain.ErrInvalidMode
	}
	if amountKWh <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	now := time.Now().UTC()
	req := &domain.ChargingRequest{
		ID:          uuid.New().String(),
		UserID:      userID,
		Mode:        mode,
		AmountKWh:   amountKWh,
		QueueNumber: s.numbers.Next(mode),
		Status:      domain.RequestStatusWaiting,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	err := s.admitLocked(req)
	waiting := len(s.waiting)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.log.Info("Request admitted to waiting area",
		zap.String("request_id", req.ID),
		zap.String("queue_number", req.QueueNumber),
		zap.Int("waiting", waiting),
	)
	return req, nil
}

// Cancel removes a request wherever it currently lives. A charging request is
// aborted without producing a record and the next queued vehicle is promoted
// before Cancel returns.
func (s *Scheduler) Cancel(requestID string) error {
	eff := &effects{}

	s.mu.Lock()
	err := s.cancelLocked(requestID, eff)
	s.mu.Unlock()

	s.flush(eff)
	return err
}

func (s *Scheduler) cancelLocked(requestID string, eff *effects) error {
	if req := s.removeFromWaitingLocked(requestID); req != nil {
		req.Status = domain.RequestStatusCancelled
		req.UpdatedAt = time.Now().UTC()
		return nil
	}

	for _, number := range s.sortedNumbers() {
		slot := s.slots[number]

		for i, r := range slot.queue {
			if r.ID != requestID {
				continue
			}
			slot.queue = append(slot.queue[:i], slot.queue[i+1:]...)
			r.Status = domain.RequestStatusCancelled
			r.UpdatedAt = time.Now().UTC()
			return nil
		}

		if slot.current != nil && slot.current.ID == requestID {
			slot.current.Status = domain.RequestStatusCancelled
			slot.current.UpdatedAt = time.Now().UTC()
			slot.clear()
			if len(slot.queue) > 0 {
				// Pile stays Charging with the next vehicle.
				s.promoteNextLocked(slot, eff)
			} else {
				slot.pile.Status = domain.PileStatusAvailable
				slot.pile.StartedAt = nil
				eff.status(slot.pile.Number, domain.PileStatusAvailable, nil)
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

// CancelByUser cancels every active request of a user across the waiting
// area, pile queues and current sessions. Returns ErrNotFound if the user has
// none.
func (s *Scheduler) CancelByUser(userID string) error {
	eff := &effects{}

	s.mu.Lock()
	var ids []string
	for _, r := range s.waiting {
		if r.UserID == userID {
			ids = append(ids, r.ID)
		}
	}
	for _, slot := range s.slots {
		for _, r := range slot.queue {
			if r.UserID == userID {
				ids = append(ids, r.ID)
			}
		}
		if slot.current != nil && slot.current.UserID == userID {
			ids = append(ids, slot.current.ID)
		}
	}
	for _, id := range ids {
		if err := s.cancelLocked(id, eff); err != nil {
			s.log.Error("Cancel by user skipped a request", zap.String("request_id", id), zap.Error(err))
		}
	}
	s.mu.Unlock()

	s.flush(eff)
	if len(ids) == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateAmount changes the requested energy of a request that has not started
// charging yet.
func (s *Scheduler) UpdateAmount(requestID string, amountKWh float64) error {
	if amountKWh <= 0 {
		return domain.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req := s.findWaitingOrQueuedLocked(requestID); req != nil {
		req.AmountKWh = amountKWh
		req.UpdatedAt = time.Now().UTC()
		return nil
	}
	if s.findChargingLocked(requestID) != nil {
		return domain.ErrCannotModify
	}
	return domain.ErrNotFound
}

// UpdateMode switches a not-yet-charging request to the other mode. The
// request leaves its place, gets a fresh queue number and rejoins the waiting
// area at the tail.
func (s *Scheduler) UpdateMode(requestID string, mode domain.ChargingMode) error {
	if !mode.Valid() {
		return domain.ErrInvalidMode
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	req := s.findWaitingOrQueuedLocked(requestID)
	if req == nil {
		if s.findChargingLocked(requestID) != nil {
			return domain.ErrCannotModify
		}
		return domain.ErrNotFound
	}

	// Re-admission must not overflow. A request coming from the waiting area
	// frees its own slot, so only queued requests can hit the bound.
	inWaiting := false
	for _, r := range s.waiting {
		if r.ID == requestID {
			inWaiting = true
			break
		}
	}
	if !inWaiting && len(s.waiting) >= s.cfg.WaitingAreaCapacity {
		return domain.ErrWaitingAreaFull
	}

	s.detachLocked(requestID)
	req.Mode = mode
	req.QueueNumber = s.numbers.Next(mode)
	req.Status = domain.RequestStatusWaiting
	req.UpdatedAt = time.Now().UTC()
	s.waiting = append(s.waiting, req)
	return nil
}

// StartPile brings a shut-down pile back into service.
func (s *Scheduler) StartPile(pileNumber string) error {
	eff := &effects{}

	s.mu.Lock()
	slot, ok := s.slots[pileNumber]
	if !ok {
		s.mu.Unlock()
		return domain.ErrNotFound
	}
	if slot.pile.Status != domain.PileStatusShutdown {
		s.mu.Unlock()
		return domain.ErrPileUnavailable
	}
	slot.pile.Status = domain.PileStatusAvailable
	eff.status(pileNumber, domain.PileStatusAvailable, nil)
	s.mu.Unlock()

	s.flush(eff)
	return nil
}

// ShutdownPile takes an available pile out of service. A pile with an active
// session must be drained first.
func (s *Scheduler) ShutdownPile(pileNumber string) error {
	eff := &effects{}

	s.mu.Lock()
	slot, ok := s.slots[pileNumber]
	if !ok {
		s.mu.Unlock()
		return domain.ErrNotFound
	}
	if slot.current != nil || slot.pile.Status != domain.PileStatusAvailable {
		s.mu.Unlock()
		return domain.ErrPileUnavailable
	}
	slot.pile.Status = domain.PileStatusShutdown
	eff.status(pileNumber, domain.PileStatusShutdown, nil)
	s.mu.Unlock()

	s.flush(eff)
	return nil
}

// ReportFault marks a pile faulted and re-dispatches its load.
func (s *Scheduler) ReportFault(pileNumber string) error {
	eff := &effects{}

	s.mu.Lock()
	slot, ok := s.slots[pileNumber]
	if !ok {
		s.mu.Unlock()
		return domain.ErrNotFound
	}
	s.reportFaultLocked(slot, eff)
	s.mu.Unlock()

	s.flush(eff)
	s.log.Warn("Pile fault reported", zap.String("pile", pileNumber))
	return nil
}

// Repair returns a faulted pile to service and reshuffles the mode's queued
// requests across all its piles.
func (s *Scheduler) Repair(pileNumber string) error {
	eff := &effects{}

	s.mu.Lock()
	slot, ok := s.slots[pileNumber]
	if !ok {
		s.mu.Unlock()
		return domain.ErrNotFound
	}
	if slot.pile.Status != domain.PileStatusFault {
		s.mu.Unlock()
		return domain.ErrPileUnavailable
	}
	s.repairLocked(slot, eff)
	s.mu.Unlock()

	s.flush(eff)
	s.log.Info("Pile repaired", zap.String("pile", pileNumber))
	return nil
}

func (s *Scheduler) findWaitingOrQueuedLocked(requestID string) *domain.ChargingRequest {
	for _, r := range s.waiting {
		if r.ID == requestID {
			return r
		}
	}
	for _, slot := range s.slots {
		for _, r := range slot.queue {
			if r.ID == requestID {
				return r
			}
		}
	}
	return nil
}

func (s *Scheduler) findChargingLocked(requestID string) *domain.ChargingRequest {
	for _, slot := range s.slots {
		if slot.current != nil && slot.current.ID == requestID {
			return slot.current
		}
	}
	return nil
}

// detachLocked removes a request from the waiting area or whatever pile queue
// holds it, without touching its status.
func (s *Scheduler) detachLocked(requestID string) {
	for i, r := range s.waiting {
		if r.ID == requestID {
			s.waiting = append(s.waiting[:i], s.waiting[i+1:]...)
			return
		}
	}
	for _, slot := range s.slots {
		for i, r := range slot.queue {
			if r.ID == requestID {
				slot.queue = append(slot.queue[:i], slot.queue[i+1:]...)
				return
			}
		}
	}
}

