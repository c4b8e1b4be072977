package cleanup

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Evictor drops entries idle since before cutoff and reports how many went.
type Evictor interface {
	Evict(cutoff time.Time) int
}

// EvictorFunc adapts a function to Evictor.
type EvictorFunc func(cutoff time.Time) int

func (f EvictorFunc) Evict(cutoff time.Time) int {
	return f(cutoff)
}

// Target is one thing the worker sweeps: anything untouched for MaxIdle goes.
type Target struct {
	Name    string
	MaxIdle time.Duration
	Evictor Evictor
}

type Worker struct {
	interval  time.Duration
	targets   []Target
	scheduler gocron.Scheduler
	now       func() time.Time
}

func NewWorker(interval time.Duration, targets ...Target) *Worker {
	return &Worker{
		interval: interval,
		targets:  targets,
		now:      time.Now,
	}
}

// Start schedules the sweep every interval. Stop must be called to release the
// scheduler.
func (w *Worker) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(func() { w.RunOnce() }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		sched.Shutdown()
		return err
	}

	sched.Start()
	w.scheduler = sched
	log.Printf("[CLEANUP] Background worker started (every %s)", w.interval)
	return nil
}

func (w *Worker) Stop() {
	if w.scheduler == nil {
		return
	}
	if err := w.scheduler.Shutdown(); err != nil {
		log.Printf("[CLEANUP] Error stopping scheduler: %v", err)
	}
}

// RunOnce sweeps every target and returns the total number evicted.
func (w *Worker) RunOnce() int {
	now := w.now()
	total := 0
	for _, t := range w.targets {
		removed := t.Evictor.Evict(now.Add(-t.MaxIdle))
		if removed > 0 {
			log.Printf("[CLEANUP] Removed %d idle %s", removed, t.Name)
		}
		total += removed
	}
	return total
}
