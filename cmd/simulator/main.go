// Command simulator drives the scheduling core with randomized vehicle
// traffic against in-memory persistence, printing the station snapshot as it
// evolves. Useful for eyeballing dispatch behavior at high acceleration.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/ev-station-core/internal/adapter/storage/memory"
	"github.com/seu-repo/ev-station-core/internal/domain"
	"github.com/seu-repo/ev-station-core/internal/scheduler"
)

func main() {
	var (
		duration     = flag.Duration("duration", 2*time.Minute, "how long to run")
		acceleration = flag.Float64("acceleration", 120.0, "simulated clock speedup")
		arrivalEvery = flag.Duration("arrival", 3*time.Second, "mean real time between vehicle arrivals")
		faultChance  = flag.Float64("fault-chance", 0.02, "per-arrival probability of a random pile fault")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	records := memory.NewRecordRepository()
	piles := memory.NewPileRepository()

	cfg := scheduler.DefaultConfig()
	cfg.Acceleration = *acceleration

	sched := scheduler.New(cfg, nil, records, piles, nil, logger)
	if err := sched.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	deadline := time.After(*duration)
	arrivals := time.NewTicker(*arrivalEvery)
	defer arrivals.Stop()
	report := time.NewTicker(10 * time.Second)
	defer report.Stop()

	faulted := ""
	user := 0

loop:
	for {
		select {
		case <-stop:
			break loop
		case <-deadline:
			break loop
		case <-arrivals.C:
			user++
			mode := domain.ChargingModeSlow
			amount := 7 + rand.Float64()*14
			if rand.Intn(2) == 0 {
				mode = domain.ChargingModeFast
				amount = 15 + rand.Float64()*45
			}
			req, err := sched.Submit(fmt.Sprintf("user-%03d", user), mode, amount)
			if err != nil {
				logger.Info("Vehicle turned away", zap.Error(err))
				continue
			}
			logger.Info("Vehicle arrived",
				zap.String("queue_number", req.QueueNumber),
				zap.Float64("amount_kwh", req.AmountKWh),
			)

			switch {
			case faulted == "" && rand.Float64() < *faultChance:
				faulted = pickPile(sched)
				if faulted != "" {
					logger.Warn("Injecting pile fault", zap.String("pile", faulted))
					sched.ReportFault(faulted)
				}
			case faulted != "" && rand.Float64() < 0.2:
				logger.Info("Repairing pile", zap.String("pile", faulted))
				sched.Repair(faulted)
				faulted = ""
			}
		case <-report.C:
			printSnapshot(sched.Snapshot())
		}
	}

	if err := sched.Stop(); err != nil {
		logger.Error("Stop failed", zap.Error(err))
	}

	all := records.All()
	var energy, fees float64
	for _, r := range all {
		energy += r.AmountKWh
		fees += r.TotalFee
	}
	fmt.Printf("\n=== simulation done: %d sessions, %.1f kWh delivered, %.2f total fees ===\n",
		len(all), energy, fees)
}

func pickPile(sched *scheduler.Scheduler) string {
	snap := sched.Snapshot()
	var candidates []string
	for _, p := range snap.Piles {
		if p.Status == domain.PileStatusAvailable || p.Status == domain.PileStatusCharging {
			candidates = append(candidates, p.Number)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	return candidates[rand.Intn(len(candidates))]
}

func printSnapshot(snap scheduler.StationSnapshot) {
	fmt.Printf("\n--- %s | waiting fast=%d slow=%d ---\n",
		snap.CurrentTime.Format("15:04:05"), snap.FastWaitingCount, snap.SlowWaitingCount)
	for _, p := range snap.Piles {
		line := fmt.Sprintf("%-3s %-9s", p.Number, p.Status)
		if p.CurrentRequest != nil {
			progress := 0.0
			if p.ChargingProgress != nil {
				progress = *p.ChargingProgress
			}
			line += fmt.Sprintf(" %s %.0f%% (%0.1f kWh)", p.CurrentRequest.QueueNumber, progress, p.CurrentRequest.AmountKWh)
		}
		if len(p.Queue) > 0 {
			line += " queue:"
			for _, q := range p.Queue {
				line += " " + q.QueueNumber
			}
		}
		fmt.Println(line)
	}
}
