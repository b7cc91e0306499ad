package worker

import (
	"testing"
	"time"
)

func TestShouldRunWeekly(t *testing.T) {
	// Sunday at midnight (00:00)
	sundayMidnight := time.Date(2024, 1, 7, 0, 30, 0, 0, time.UTC) // Sunday

	tests := []struct {
		name        string
		now         time.Time
		day         time.Weekday
		hour        int
		lastRun     time.Time
		gracePeriod time.Duration
		want        bool
	}{
		{
			name:        "sunday midnight, never run",
			now:         sundayMidnight,
			day:         time.Sunday,
			hour:        0,
			lastRun:     time.Time{},
			gracePeriod: defaultWeeklyGracePeriod,
			want:        true,
		},
		{
			name:        "sunday midnight, run 7 days ago",
			now:         sundayMidnight,
			day:         time.Sunday,
			hour:        0,
			lastRun:     sundayMidnight.Add(-7 * 24 * time.Hour),
			gracePeriod: defaultWeeklyGracePeriod,
			want:        true,
		},
		{
			name:        "sunday midnight, run 3 days ago (within grace)",
			now:         sundayMidnight,
			day:         time.Sunday,
			hour:        0,
			lastRun:     sundayMidnight.Add(-3 * 24 * time.Hour),
			gracePeriod: defaultWeeklyGracePeriod,
			want:        false,
		},
		{
			name:        "wrong day (Monday)",
			now:         sundayMidnight.Add(24 * time.Hour), // Monday
			day:         time.Sunday,
			hour:        0,
			lastRun:     time.Time{},
			gracePeriod: defaultWeeklyGracePeriod,
			want:        false,
		},
		{
			name:        "wrong hour",
			now:         time.Date(2024, 1, 7, 15, 30, 0, 0, time.UTC), // Sunday 15:00
			day:         time.Sunday,
			hour:        0,
			lastRun:     time.Time{},
			gracePeriod: defaultWeeklyGracePeriod,
			want:        false,
		},
		{
			name:        "different day and hour config",
			now:         time.Date(2024, 1, 10, 3, 0, 0, 0, time.UTC), // Wednesday 03:00
			day:         time.Wednesday,
			hour:        3,
			lastRun:     time.Time{},
			gracePeriod: defaultWeeklyGracePeriod,
			want:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldRunWeekly(tt.now, tt.day, tt.hour, tt.lastRun, tt.gracePeriod)
			if got != tt.want {
				t.Errorf("ShouldRunWeekly() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldRunDaily(t *testing.T) {
	eightAM := time.Date(2024, 3, 12, 8, 5, 0, 0, time.UTC)

	tests := []struct {
		name        string
		now         time.Time
		hour        int
		lastRun     time.Time
		gracePeriod time.Duration
		want        bool
	}{
		{
			name:        "due hour, never run",
			now:         eightAM,
			hour:        8,
			lastRun:     time.Time{},
			gracePeriod: defaultDailyGracePeriod,
			want:        true,
		},
		{
			name:        "due hour, ran yesterday",
			now:         eightAM,
			hour:        8,
			lastRun:     eightAM.Add(-24 * time.Hour),
			gracePeriod: defaultDailyGracePeriod,
			want:        true,
		},
		{
			name:        "due hour, ran earlier same hour",
			now:         eightAM.Add(30 * time.Minute),
			hour:        8,
			lastRun:     eightAM,
			gracePeriod: defaultDailyGracePeriod,
			want:        false,
		},
		{
			name:        "wrong hour",
			now:         eightAM.Add(2 * time.Hour),
			hour:        8,
			lastRun:     time.Time{},
			gracePeriod: defaultDailyGracePeriod,
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldRunDaily(tt.now, tt.hour, tt.lastRun, tt.gracePeriod)
			if got != tt.want {
				t.Errorf("ShouldRunDaily() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSchedulerGracePeriodDefaults(t *testing.T) {
	logger := nopLogger()
	s := NewScheduler(logger)

	daily := &ScheduledTask{Name: "daily", Hour: 8}
	weekly := &ScheduledTask{Name: "weekly", Weekly: true, Day: time.Monday, Hour: 8}

	s.AddTask(daily)
	s.AddTask(weekly)

	if daily.GracePeriod != defaultDailyGracePeriod {
		t.Errorf("daily grace = %v, want %v", daily.GracePeriod, defaultDailyGracePeriod)
	}

	if weekly.GracePeriod != defaultWeeklyGracePeriod {
		t.Errorf("weekly grace = %v, want %v", weekly.GracePeriod, defaultWeeklyGracePeriod)
	}
}
