package scheduler

import (
	"fmt"

	"github.com/jasonlvhit/gocron"
	log "github.com/sirupsen/logrus"
)

// Scheduler runs the bot's recurring jobs: voice XP ticks, temp channel
// cleanup and scrim start notifications.
type Scheduler struct {
	inner *gocron.Scheduler
	stop  chan bool
}

// New creates an empty scheduler
func New() *Scheduler {
	return &Scheduler{inner: gocron.NewScheduler()}
}

// EveryMinute registers a job that runs once per minute
func (s *Scheduler) EveryMinute(name string, job func()) error {
	return s.register(name, job, func(fn interface{}) error {
		return s.inner.Every(1).Minute().Do(fn)
	})
}

// EverySeconds registers a job that runs on a fixed second interval
func (s *Scheduler) EverySeconds(name string, seconds uint64, job func()) error {
	return s.register(name, job, func(fn interface{}) error {
		return s.inner.Every(seconds).Seconds().Do(fn)
	})
}

func (s *Scheduler) register(name string, job func(), schedule func(interface{}) error) error {
	wrapped := func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(log.Fields{
					"job":   name,
					"panic": r,
				}).Error("Scheduled job panicked")
			}
		}()
		job()
	}
	if err := schedule(wrapped); err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}
	log.WithField("job", name).Debug("Scheduled recurring job")
	return nil
}

// Start begins running jobs in the background
func (s *Scheduler) Start() {
	s.stop = s.inner.Start()
	log.Info("Scheduler started")
}

// Stop halts the scheduler. Jobs already running finish normally.
func (s *Scheduler) Stop() {
	if s.stop != nil {
		s.stop <- true
		s.stop = nil
	}
	s.inner.Clear()
}
