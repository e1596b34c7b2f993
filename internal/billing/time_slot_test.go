package billing

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 1, hour, minute, 0, 0, time.UTC)
}

func TestSlotAt(t *testing.T) {
	cases := []struct {
		name string
		time time.Time
		want TimeSlot
	}{
		{"morning peak start", at(10, 0), SlotPeak},
		{"midday peak", at(14, 59), SlotPeak},
		{"evening peak", at(19, 30), SlotPeak},
		{"peak upper bound", at(20, 59), SlotPeak},
		{"early flat", at(7, 0), SlotFlat},
		{"afternoon flat", at(16, 30), SlotFlat},
		{"late flat", at(22, 59), SlotFlat},
		{"valley start", at(23, 0), SlotValley},
		{"small hours", at(5, 0), SlotValley},
		{"valley end", at(6, 59), SlotValley},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SlotAt(tc.time); got != tc.want {
				t.Errorf("SlotAt(%s) = %s, want %s", tc.time.Format("15:04"), got, tc.want)
			}
		})
	}
}

func TestTariffRate(t *testing.T) {
	tariff := DefaultTariff()

	if got := tariff.Rate(SlotPeak); got != 1.0 {
		t.Errorf("peak rate = %v, want 1.0", got)
	}
	if got := tariff.Rate(SlotFlat); got != 0.7 {
		t.Errorf("flat rate = %v, want 0.7", got)
	}
	if got := tariff.Rate(SlotValley); got != 0.4 {
		t.Errorf("valley rate = %v, want 0.4", got)
	}
}
