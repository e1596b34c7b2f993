package billing

import "time"

// TimeSlot classifies a simulated instant into one of the three tariff bands.
type TimeSlot string

const (
	SlotPeak   TimeSlot = "Peak"   // 10:00-14:59, 18:00-20:59
	SlotFlat   TimeSlot = "Flat"   // 7:00-9:59, 15:00-17:59, 21:00-22:59
	SlotValley TimeSlot = "Valley" // 23:00-6:59
)

// SlotAt returns the tariff band the given instant falls into. Only the
// hour-of-day matters; intervals crossing midnight are handled by classifying
// each minute independently.
func SlotAt(t time.Time) TimeSlot {
	switch hour := t.Hour(); {
	case hour >= 10 && hour <= 14, hour >= 18 && hour <= 20:
		return SlotPeak
	case hour >= 7 && hour <= 9, hour >= 15 && hour <= 17, hour >= 21 && hour <= 22:
		return SlotFlat
	default:
		return SlotValley
	}
}

// Tariff holds the per-kWh electricity rates per band plus the flat service rate.
type Tariff struct {
	PeakRate    float64 `json:"peak_rate"`
	FlatRate    float64 `json:"flat_rate"`
	ValleyRate  float64 `json:"valley_rate"`
	ServiceRate float64 `json:"service_rate"`
}

// DefaultTariff returns the station's standard time-of-use schedule (¥/kWh).
func DefaultTariff() Tariff {
	return Tariff{
		PeakRate:    1.0,
		FlatRate:    0.7,
		ValleyRate:  0.4,
		ServiceRate: 0.8,
	}
}

// Rate returns the electricity rate of a band.
func (t Tariff) Rate(slot TimeSlot) float64 {
	switch slot {
	case SlotPeak:
		return t.PeakRate
	case SlotFlat:
		return t.FlatRate
	default:
		return t.ValleyRate
	}
}
