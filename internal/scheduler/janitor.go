package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

const defaultSweepInterval = 10 * time.Minute

// Purger drops expired cache entries and reports how many were removed
type Purger interface {
	PurgeExpired() int
}

// Janitor periodically sweeps expired entries out of an in-process cache.
// Readers already ignore expired entries; sweeping only reclaims memory.
type Janitor struct {
	scheduler *gocron.Scheduler
	purger    Purger
	interval  time.Duration
}

// NewJanitor creates a Janitor that sweeps purger every interval
func NewJanitor(purger Purger, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Janitor{
		scheduler: gocron.NewScheduler(time.UTC),
		purger:    purger,
		interval:  interval,
	}
}

// Start schedules the sweep and starts the underlying scheduler. The first sweep runs immediately.
func (j *Janitor) Start() error {
	_, err := j.scheduler.Every(j.interval).SingletonMode().Do(j.sweep)
	if err != nil {
		return err
	}

	j.scheduler.StartAsync()
	log.Printf("[Scheduler] cache sweep every %v", j.interval)
	return nil
}

// Stop stops the scheduler and cancels any future sweeps
func (j *Janitor) Stop() {
	if j.scheduler != nil {
		j.scheduler.Stop()
	}
}

func (j *Janitor) sweep() {
	if removed := j.purger.PurgeExpired(); removed > 0 {
		log.Printf("[Scheduler] purged %d expired cache entries", removed)
	}
}
