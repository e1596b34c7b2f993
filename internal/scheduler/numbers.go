package scheduler

import (
	"fmt"
	"sync/atomic"

	"github.com/seu-repo/ev-station-core/internal/domain"
)

// NumberGenerator hands out monotonic queue numbers per charging mode:
// F1, F2, ... for fast and T1, T2, ... for slow. Lock-free.
type NumberGenerator struct {
	fast atomic.Int64
	slow atomic.Int64
}

func NewNumberGenerator() *NumberGenerator {
	return &NumberGenerator{}
}

// Next allocates the next queue number for the mode.
func (g *NumberGenerator) Next(mode domain.ChargingMode) string {
	var n int64
	if mode == domain.ChargingModeFast {
		n = g.fast.Add(1)
	} else {
		n = g.slow.Add(1)
	}
	return fmt.Sprintf("%s%d", mode.Prefix(), n)
}

// Reset rewinds one mode's counter so the next number is <prefix>1.
// Intended for tests.
func (g *NumberGenerator) Reset(mode domain.ChargingMode) {
	if mode == domain.ChargingModeFast {
		g.fast.Store(0)
	} else {
		g.slow.Store(0)
	}
}

// ResetAll rewinds both counters.
func (g *NumberGenerator) ResetAll() {
	g.fast.Store(0)
	g.slow.Store(0)
}
