package service

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Reaper is the timer-driven sweep keeping durable orders consistent
// with lapsed reservation windows. Lease-store entries expire on their
// own TTL; the reaper only flips the PENDING orders left behind.
type Reaper struct {
	orders    *OrderCoordinator
	leaseTTL  time.Duration
	interval  time.Duration
	scheduler gocron.Scheduler
}

func NewReaper(orders *OrderCoordinator, leaseTTL, interval time.Duration) *Reaper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Reaper{orders: orders, leaseTTL: leaseTTL, interval: interval}
}

// Start schedules the sweep and runs it in the background until Stop.
func (r *Reaper) Start() error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = s.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(r.Sweep),
	)
	if err != nil {
		return err
	}

	r.scheduler = s
	s.Start()
	log.Printf("[CRON] expiry reaper started, interval %s, lease TTL %s", r.interval, r.leaseTTL)
	return nil
}

// Stop shuts the scheduler down, waiting for a running sweep to finish.
func (r *Reaper) Stop() {
	if r.scheduler == nil {
		return
	}
	if err := r.scheduler.Shutdown(); err != nil {
		log.Printf("[CRON] expiry reaper shutdown failed: %v", err)
	}
}

// Sweep expires every PENDING order whose reservation window has
// lapsed. Exported so operators can trigger a run out of schedule.
func (r *Reaper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	expired, err := r.orders.ExpireStaleOrders(ctx, r.leaseTTL)
	if err != nil {
		log.Printf("[CRON] expiry sweep failed: %v", err)
		return
	}
	if expired > 0 {
		log.Printf("[CRON] expiry sweep flipped %d stale orders", expired)
	}
}
