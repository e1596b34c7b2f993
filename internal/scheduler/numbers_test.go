package scheduler

import (
	"testing"

	"github.com/seu-repo/ev-station-core/internal/domain"
)

func TestNumberGeneratorSequence(t *testing.T) {
	gen := NewNumberGenerator()

	got := []string{
		gen.Next(domain.ChargingModeFast),
		gen.Next(domain.ChargingModeFast),
		gen.Next(domain.ChargingModeSlow),
		gen.Next(domain.ChargingModeFast),
		gen.Next(domain.ChargingModeSlow),
	}
	want := []string{"F1", "F2", "T1", "F3", "T2"}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("number %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestNumberGeneratorReset(t *testing.T) {
	gen := NewNumberGenerator()
	gen.Next(domain.ChargingModeFast)
	gen.Next(domain.ChargingModeSlow)

	gen.Reset(domain.ChargingModeFast)

	if got := gen.Next(domain.ChargingModeFast); got != "F1" {
		t.Errorf("after Reset(fast): %s, want F1", got)
	}
	if got := gen.Next(domain.ChargingModeSlow); got != "T2" {
		t.Errorf("slow counter should be untouched: %s, want T2", got)
	}

	gen.ResetAll()
	if got := gen.Next(domain.ChargingModeSlow); got != "T1" {
		t.Errorf("after ResetAll: %s, want T1", got)
	}
}

func TestQueueNumberLess(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"F1", "F2", true},
		{"F2", "F10", true},
		{"F10", "F2", false},
		{"F9", "T1", true},
		{"T1", "F9", false},
		{"T3", "T3", false},
	}
	for _, tc := range cases {
		if got := queueNumberLess(tc.a, tc.b); got != tc.want {
			t.Errorf("queueNumberLess(%s, %s) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
