package scheduler

import (
	"time"

	"github.com/seu-repo/ev-station-core/internal/billing"
)

// Config tunes the scheduling core. Zero values are replaced by the defaults
// from DefaultConfig when the Scheduler is constructed.
type Config struct {
	// Acceleration is the simulated-clock speedup over wall time.
	Acceleration float64
	// TickInterval is the real-time cadence of the progress/dispatch cycle.
	TickInterval time.Duration

	WaitingAreaCapacity int
	PileQueueCapacity   int

	// Charging power per mode, in kWh per simulated hour.
	FastPowerKWh float64
	SlowPowerKWh float64

	Tariff billing.Tariff

	// Initial station layout when Start finds no piles registered.
	FastPiles int
	SlowPiles int
}

func DefaultConfig() Config {
	return Config{
		Acceleration:        30.0,
		TickInterval:        100 * time.Millisecond,
		WaitingAreaCapacity: 6,
		PileQueueCapacity:   2,
		FastPowerKWh:        30.0,
		SlowPowerKWh:        7.0,
		Tariff:              billing.DefaultTariff(),
		FastPiles:           2,
		SlowPiles:           3,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Acceleration <= 0 {
		c.Acceleration = def.Acceleration
	}
	if c.TickInterval <= 0 {
		c.TickInterval = def.TickInterval
	}
	if c.WaitingAreaCapacity <= 0 {
		c.WaitingAreaCapacity = def.WaitingAreaCapacity
	}
	if c.PileQueueCapacity <= 0 {
		c.PileQueueCapacity = def.PileQueueCapacity
	}
	if c.FastPowerKWh <= 0 {
		c.FastPowerKWh = def.FastPowerKWh
	}
	if c.SlowPowerKWh <= 0 {
		c.SlowPowerKWh = def.SlowPowerKWh
	}
	if c.Tariff == (billing.Tariff{}) {
		c.Tariff = def.Tariff
	}
	if c.FastPiles <= 0 && c.SlowPiles <= 0 {
		c.FastPiles = def.FastPiles
		c.SlowPiles = def.SlowPiles
	}
	return c
}
