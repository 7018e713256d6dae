package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidInterval = errors.New("model: reminder interval must be positive")
	ErrInvalidSnooze   = errors.New("model: snooze duration must be positive")
	ErrInvalidGrace    = errors.New("model: auto-restart grace must not be negative")
	ErrInvalidGoal     = errors.New("model: daily goal must not be negative")
)

// Settings is the persisted user configuration for both reminder kinds.
type Settings struct {
	WaterIntervalMin    int
	StandupIntervalMin  int
	SnoozeMin           int
	AutoRestartGraceMin int // 0 disables auto-restart of unacknowledged reminders
	DesktopNotify       bool
	QuietHours          string // e.g. "22-07"; empty disables
	WaterGoal           int    // glasses per day
	StandupGoal         int    // breaks per day
}

func DefaultSettings() Settings {
	return Settings{
		WaterIntervalMin:    45,
		StandupIntervalMin:  60,
		SnoozeMin:           5,
		AutoRestartGraceMin: 10,
		DesktopNotify:       true,
		QuietHours:          "",
		WaterGoal:           8,
		StandupGoal:         6,
	}
}

func (s Settings) Validate() error {
	if s.WaterIntervalMin <= 0 {
		return fmt.Errorf("%w: water %d min", ErrInvalidInterval, s.WaterIntervalMin)
	}
	if s.StandupIntervalMin <= 0 {
		return fmt.Errorf("%w: standup %d min", ErrInvalidInterval, s.StandupIntervalMin)
	}
	if s.SnoozeMin <= 0 {
		return fmt.Errorf("%w: %d min", ErrInvalidSnooze, s.SnoozeMin)
	}
	if s.AutoRestartGraceMin < 0 {
		return fmt.Errorf("%w: %d min", ErrInvalidGrace, s.AutoRestartGraceMin)
	}
	if s.WaterGoal < 0 || s.StandupGoal < 0 {
		return ErrInvalidGoal
	}
	return nil
}

func (s Settings) Interval(k Kind) time.Duration {
	switch k {
	case KindStandup:
		return time.Duration(s.StandupIntervalMin) * time.Minute
	default:
		return time.Duration(s.WaterIntervalMin) * time.Minute
	}
}

func (s Settings) Goal(k Kind) int {
	if k == KindStandup {
		return s.StandupGoal
	}
	return s.WaterGoal
}

// Snooze is the snooze duration for a kind, capped at the kind's full
// interval so snoozing never pushes a reminder past a fresh cycle.
func (s Settings) Snooze(k Kind) time.Duration {
	d := time.Duration(s.SnoozeMin) * time.Minute
	if iv := s.Interval(k); d > iv {
		return iv
	}
	return d
}

func (s Settings) AutoRestartGrace() time.Duration {
	return time.Duration(s.AutoRestartGraceMin) * time.Minute
}
