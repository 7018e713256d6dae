package storage

import "time"

type Settings struct {
	WaterIntervalMin    int
	StandupIntervalMin  int
	SnoozeMin           int
	AutoRestartGraceMin int
	DesktopNotify       bool
	QuietHours          string
	WaterGoal           int
	StandupGoal         int
	UpdatedAt           time.Time
}

type TimerSnapshot struct {
	Kind       string
	State      string
	Interval   time.Duration
	NextFireAt *time.Time
	Remaining  time.Duration
	FiredAt    *time.Time
	UpdatedAt  time.Time
}

type ActivityEntry struct {
	ID         string
	Kind       string
	OccurredAt time.Time
}

type DayTotal struct {
	Date    string
	Water   int
	Standup int
}
