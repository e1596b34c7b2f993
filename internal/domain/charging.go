package domain

import (
	"time"
)

type ChargingMode string

const (
	ChargingModeFast ChargingMode = "Fast"
	ChargingModeSlow ChargingMode = "Slow"
)

// Valid reports whether the mode is one of the two supported modes.
func (m ChargingMode) Valid() bool {
	return m == ChargingModeFast || m == ChargingModeSlow
}

// Prefix returns the queue-number prefix for the mode ("F" for fast, "T" for slow).
func (m ChargingMode) Prefix() string {
	if m == ChargingModeFast {
		return "F"
	}
	return "T"
}

type RequestStatus string

const (
	RequestStatusWaiting   RequestStatus = "Waiting"
	RequestStatusCharging  RequestStatus = "Charging"
	RequestStatusCompleted RequestStatus = "Completed"
	RequestStatusCancelled RequestStatus = "Cancelled"
)

type PileStatus string

const (
	PileStatusAvailable PileStatus = "Available"
	PileStatusCharging  PileStatus = "Charging"
	PileStatusFault     PileStatus = "Fault"
	PileStatusShutdown  PileStatus = "Shutdown"
)

// ChargingRequest is a user's intent to charge a given amount in a given mode.
type ChargingRequest struct {
	ID          string        `json:"id" gorm:"primaryKey"`
	UserID      string        `json:"user_id" gorm:"index"`
	Mode        ChargingMode  `json:"mode"`
	AmountKWh   float64       `json:"amount_kwh"`
	QueueNumber string        `json:"queue_number"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// PileCounters are the cumulative per-pile statistics. All fields are
// monotonic non-decreasing over the life of a pile.
type PileCounters struct {
	Sessions       int64   `json:"sessions"`
	ChargeHours    float64 `json:"charge_hours"`
	EnergyKWh      float64 `json:"energy_kwh"`
	ElectricityFee float64 `json:"electricity_fee"`
	ServiceFee     float64 `json:"service_fee"`
}

// Add folds one completed session into the counters.
func (c *PileCounters) Add(hours, kwh, electricityFee, serviceFee float64) {
	c.Sessions++
	c.ChargeHours += hours
	c.EnergyKWh += kwh
	c.ElectricityFee += electricityFee
	c.ServiceFee += serviceFee
}

// ChargingPile is a physical charger.
type ChargingPile struct {
	ID        string       `json:"id" gorm:"primaryKey"`
	Number    string       `json:"number" gorm:"uniqueIndex"`
	Mode      ChargingMode `json:"mode"`
	Status    PileStatus   `json:"status"`
	Counters  PileCounters `json:"counters" gorm:"embedded;embeddedPrefix:total_"`
	StartedAt *time.Time   `json:"started_at,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ChargingRecord is the immutable receipt produced once per completed session.
type ChargingRecord struct {
	ID             string       `json:"id" gorm:"primaryKey"`
	UserID         string       `json:"user_id" gorm:"index"`
	PileNumber     string       `json:"pile_number"`
	Mode           ChargingMode `json:"mode"`
	AmountKWh      float64      `json:"amount_kwh"`
	ChargeHours    float64      `json:"charge_hours"`
	ElectricityFee float64      `json:"electricity_fee"`
	ServiceFee     float64      `json:"service_fee"`
	TotalFee       float64      `json:"total_fee"`
	StartTime      time.Time    `json:"start_time"`
	EndTime        time.Time    `json:"end_time"`
	CreatedAt      time.Time    `json:"created_at"`
}
