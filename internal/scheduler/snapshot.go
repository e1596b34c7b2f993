package scheduler

import (
	"time"

	"github.com/seu-repo/ev-station-core/internal/domain"
)

// RequestView is the read-only projection of a request exposed in snapshots.
type RequestView struct {
	ID          string               `json:"id"`
	UserID      string               `json:"user_id"`
	Mode        domain.ChargingMode  `json:"mode"`
	AmountKWh   float64              `json:"amount_kwh"`
	QueueNumber string               `json:"queue_number"`
	Status      domain.RequestStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
}

// PileSnapshot is the read-only view of one pile and its queue.
type PileSnapshot struct {
	Number           string              `json:"number"`
	Mode             domain.ChargingMode `json:"mode"`
	Status           domain.PileStatus   `json:"status"`
	IsIdle           bool                `json:"is_idle"`
	CurrentRequest   *RequestView        `json:"current_request,omitempty"`
	ChargingProgress *float64            `json:"charging_progress,omitempty"`
	Queue            []RequestView       `json:"queue"`
	Counters         domain.PileCounters `json:"counters"`
}

// StationSnapshot is the immutable station-wide view served to the control
// surface.
type StationSnapshot struct {
	CurrentTime      time.Time      `json:"current_time"`
	FastWaitingCount int            `json:"fast_waiting_count"`
	SlowWaitingCount int            `json:"slow_waiting_count"`
	FastWaiting      []RequestView  `json:"fast_waiting"`
	SlowWaiting      []RequestView  `json:"slow_waiting"`
	Piles            []PileSnapshot `json:"piles"`
}

func viewOf(r *domain.ChargingRequest) RequestView {
	return RequestView{
		ID:          r.ID,
		UserID:      r.UserID,
		Mode:        r.Mode,
		AmountKWh:   r.AmountKWh,
		QueueNumber: r.QueueNumber,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
	}
}

// Snapshot copies the current station state under a shared read lock.
func (s *Scheduler) Snapshot() StationSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := StationSnapshot{
		CurrentTime: s.clock.Now(),
		Piles:       make([]PileSnapshot, 0, len(s.slots)),
	}

	for _, r := range s.waiting {
		if r.Mode == domain.ChargingModeFast {
			snap.FastWaiting = append(snap.FastWaiting, viewOf(r))
		} else {
			snap.SlowWaiting = append(snap.SlowWaiting, viewOf(r))
		}
	}
	snap.FastWaitingCount = len(snap.FastWaiting)
	snap.SlowWaitingCount = len(snap.SlowWaiting)

	for _, number := range s.sortedNumbers() {
		slot := s.slots[number]
		ps := PileSnapshot{
			Number:   slot.pile.Number,
			Mode:     slot.pile.Mode,
			Status:   slot.pile.Status,
			IsIdle:   slot.isIdle(),
			Queue:    make([]RequestView, 0, len(slot.queue)),
			Counters: slot.pile.Counters,
		}
		if slot.current != nil {
			view := viewOf(slot.current)
			ps.CurrentRequest = &view
			ps.ChargingProgress = slot.progress(s.clock, s.power(slot.pile.Mode))
		}
		for _, r := range slot.queue {
			ps.Queue = append(ps.Queue, viewOf(r))
		}
		snap.Piles = append(snap.Piles, ps)
	}
	return snap
}
