package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Process is a unit of work run by a Scheduler.
type Process interface {
	// Name returns the name of the process
	Name() string

	// Execute runs the process once
	Execute(ctx context.Context) error
}

// Scheduler runs a process on a cron schedule. A run is skipped while the
// previous one is still executing.
type Scheduler struct {
	name     string
	cron     *cron.Cron
	entryID  cron.EntryID
	schedule string
	process  Process
	log      *zerolog.Logger
	mu       sync.Mutex
	running  atomic.Bool
	inflight sync.WaitGroup

	// registered is set once Run has added the cron entry.
	registered bool
}

// NewScheduler creates a scheduler for process using a standard cron expression or
// descriptor such as "@every 30s".
func NewScheduler(schedule string, process Process, log *zerolog.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("failed to parse schedule %q: %w", schedule, err)
	}
	return &Scheduler{
		name:     process.Name(),
		cron:     cron.New(),
		schedule: schedule,
		process:  process,
		log:      log,
	}, nil
}

// Run starts the scheduler and blocks until ctx is cancelled. The process runs once immediately.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	id, err := s.cron.AddFunc(s.schedule, func() { s.launchProcess(ctx) })
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to schedule %s: %w", s.name, err)
	}
	s.entryID = id
	s.registered = true
	schedule := s.schedule
	s.mu.Unlock()

	s.log.Info().
		Str("Process", s.name).
		Str("schedule", schedule).
		Msg("Starting scheduler")

	s.launchProcess(ctx)
	s.cron.Start()

	<-ctx.Done()
	s.log.Info().
		Str("Process", s.name).
		Msg("Scheduler received cancellation signal. Exiting...")
	s.Stop()
	return nil
}

// Stop stops scheduling and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.inflight.Wait()
}

// ResetSchedule replaces the cron expression of a running scheduler.
func (s *Scheduler) ResetSchedule(ctx context.Context, schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.registered {
		// Run registers the entry with the current schedule.
		if _, err := cron.ParseStandard(schedule); err != nil {
			return fmt.Errorf("failed to parse schedule %q: %w", schedule, err)
		}
		s.schedule = schedule
		return nil
	}

	id, err := s.cron.AddFunc(schedule, func() { s.launchProcess(ctx) })
	if err != nil {
		return fmt.Errorf("failed to parse schedule %q: %w", schedule, err)
	}
	s.cron.Remove(s.entryID)
	s.entryID = id
	s.schedule = schedule

	s.log.Info().
		Str("Process", s.name).
		Str("schedule", schedule).
		Msg("Scheduler schedule reset")
	return nil
}

// Schedule returns the current cron expression.
func (s *Scheduler) Schedule() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedule
}

// Name returns the name of the scheduler
func (s *Scheduler) Name() string {
	return s.name
}

func (s *Scheduler) launchProcess(ctx context.Context) {
	s.inflight.Add(1)
	defer s.inflight.Done()

	if !s.running.CompareAndSwap(false, true) {
		s.log.Debug().
			Str("Process", s.name).
			Msg("Process already executing")
		return
	}
	defer s.running.Store(false)
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().
				Str("Process", s.name).
				Interface("panic", r).
				Msg("Process panicked")
		}
	}()

	if err := s.process.Execute(ctx); err != nil {
		s.log.Warn().
			Str("Process", s.name).
			Err(err).
			Msg("Error occurred while executing process.")
	}
}
