package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	// HoursPerDay is used for scheduling calculations.
	HoursPerDay = 24

	// defaultWeeklyGracePeriod is 6 days - prevents duplicate runs within same week.
	defaultWeeklyGracePeriod = 6 * HoursPerDay * time.Hour

	// defaultDailyGracePeriod is 23 hours - prevents duplicate runs within same day.
	defaultDailyGracePeriod = 23 * time.Hour
)

// ScheduledTask represents a task that runs at a fixed wall-clock time,
// either daily or weekly.
type ScheduledTask struct {
	// Name identifies the task for logging.
	Name string

	// Weekly selects weekly cadence; otherwise the task runs daily.
	Weekly bool

	// Day is the day of the week to run, weekly tasks only (default: Sunday).
	Day time.Weekday

	// Hour is the hour of the day to run (0-23, default: 0).
	Hour int

	// GracePeriod prevents duplicate runs within this duration.
	// Task won't run if less than this duration has passed since last run.
	GracePeriod time.Duration

	// Run executes the task.
	Run func(ctx context.Context, logger *zerolog.Logger) error

	// lastRun tracks when the task last executed successfully.
	lastRun time.Time
}

// Scheduler manages a collection of wall-clock scheduled tasks.
// Call CheckAndRun from a polling loop; due checks are cheap.
type Scheduler struct {
	tasks  []*ScheduledTask
	logger *zerolog.Logger
	now    func() time.Time
}

// NewScheduler creates a new scheduler.
func NewScheduler(logger *zerolog.Logger) *Scheduler {
	return &Scheduler{
		tasks:  make([]*ScheduledTask, 0),
		logger: logger,
		now:    time.Now,
	}
}

// AddTask adds a task to the scheduler.
func (s *Scheduler) AddTask(task *ScheduledTask) {
	if task.GracePeriod == 0 {
		if task.Weekly {
			task.GracePeriod = defaultWeeklyGracePeriod
		} else {
			task.GracePeriod = defaultDailyGracePeriod
		}
	}

	s.tasks = append(s.tasks, task)
}

// CheckAndRun checks all tasks and runs any that are due.
func (s *Scheduler) CheckAndRun(ctx context.Context) {
	for _, task := range s.tasks {
		s.checkAndRunTask(ctx, task)
	}
}

func (s *Scheduler) checkAndRunTask(ctx context.Context, task *ScheduledTask) {
	now := s.now().UTC()

	due := ShouldRunDaily(now, task.Hour, task.lastRun, task.GracePeriod)
	if task.Weekly {
		due = ShouldRunWeekly(now, task.Day, task.Hour, task.lastRun, task.GracePeriod)
	}

	if !due {
		return
	}

	logger := s.logger.With().Str(logFieldTask, task.Name).Logger()
	logger.Info().Msgf("starting scheduled %s", task.Name)

	if err := task.Run(ctx, &logger); err != nil {
		logger.Error().Err(err).Msgf("failed to run scheduled %s", task.Name)
	} else {
		task.lastRun = now
	}
}

// SetLastRun sets the last run time for a task (e.g., from persisted state).
func (s *Scheduler) SetLastRun(taskName string, lastRun time.Time) {
	for _, task := range s.tasks {
		if task.Name == taskName {
			task.lastRun = lastRun
			return
		}
	}
}

// GetLastRun returns the last run time for a task.
func (s *Scheduler) GetLastRun(taskName string) (time.Time, bool) {
	for _, task := range s.tasks {
		if task.Name == taskName {
			return task.lastRun, true
		}
	}

	return time.Time{}, false
}

// ShouldRunWeekly reports whether a weekly task scheduled for the given day
// and hour is due at now, given when it last ran.
func ShouldRunWeekly(
	now time.Time,
	day time.Weekday,
	hour int,
	lastRun time.Time,
	gracePeriod time.Duration,
) bool {
	if now.Weekday() != day {
		return false
	}

	if now.Hour() != hour {
		return false
	}

	if gracePeriod == 0 {
		gracePeriod = defaultWeeklyGracePeriod
	}

	if !lastRun.IsZero() && now.Sub(lastRun) <= gracePeriod {
		return false
	}

	return true
}

// ShouldRunDaily reports whether a daily task scheduled for the given hour
// is due at now, given when it last ran.
func ShouldRunDaily(now time.Time, hour int, lastRun time.Time, gracePeriod time.Duration) bool {
	if now.Hour() != hour {
		return false
	}

	if gracePeriod == 0 {
		gracePeriod = defaultDailyGracePeriod
	}

	if !lastRun.IsZero() && now.Sub(lastRun) <= gracePeriod {
		return false
	}

	return true
}
