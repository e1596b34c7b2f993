package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Business metrics
	ActiveChargingSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "station_active_charging_sessions",
		Help: "Number of charging sessions currently in progress",
	})

	WaitingVehicles = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "station_waiting_vehicles",
		Help: "Vehicles in the waiting area per charging mode",
	}, []string{"mode"})

	EnergyDeliveredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "station_energy_delivered_kwh_total",
		Help: "Total energy delivered in kWh",
	})

	SessionsCompletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "station_sessions_completed_total",
		Help: "Completed charging sessions per mode",
	}, []string{"mode"})

	// Infrastructure metrics
	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "station_tick_duration_seconds",
		Help:    "Wall time of one scheduler tick including side-effect flush",
		Buckets: prometheus.DefBuckets,
	})

	PersistenceErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "station_persistence_errors_total",
		Help: "Failed persistence calls (logged and dropped)",
	})
)
