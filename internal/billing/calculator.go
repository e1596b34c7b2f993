package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/seu-repo/ev-station-core/internal/domain"
)

// Calculator prices a charging interval against a time-of-use tariff.
// Calculate is a pure function: no clock reads, no side effects.
type Calculator struct {
	tariff Tariff
}

func NewCalculator(tariff Tariff) *Calculator {
	return &Calculator{tariff: tariff}
}

// Calculate produces the priced record for a completed session.
//
// The interval [start, end) is walked in one-minute steps; each minute is
// billed at the rate of the band its start falls into, and the requested
// energy is allocated uniformly across all minutes. The service fee is flat
// over the full amount.
func (c *Calculator) Calculate(userID, pileNumber string, mode domain.ChargingMode, amountKWh float64, start, end time.Time) (*domain.ChargingRecord, error) {
	if amountKWh <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if !end.After(start) {
		return nil, domain.ErrInvalidInterval
	}

	totalMinutes := end.Sub(start).Minutes()
	perMinute := amountKWh / totalMinutes

	var electricityFee float64
	for cursor := start; cursor.Before(end); cursor = cursor.Add(time.Minute) {
		step := time.Minute
		if remaining := end.Sub(cursor); remaining < step {
			step = remaining
		}
		minuteEnergy := perMinute * (step.Minutes())
		electricityFee += minuteEnergy * c.tariff.Rate(SlotAt(cursor))
	}

	serviceFee := amountKWh * c.tariff.ServiceRate

	return &domain.ChargingRecord{
		ID:             uuid.New().String(),
		UserID:         userID,
		PileNumber:     pileNumber,
		Mode:           mode,
		AmountKWh:      amountKWh,
		ChargeHours:    totalMinutes / 60.0,
		ElectricityFee: electricityFee,
		ServiceFee:     serviceFee,
		TotalFee:       electricityFee + serviceFee,
		StartTime:      start,
		EndTime:        end,
		CreatedAt:      time.Now().UTC(),
	}, nil
}
