package model

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultSettingsAreValid(t *testing.T) {
	if err := DefaultSettings().Validate(); err != nil {
		t.Fatalf("default settings invalid: %v", err)
	}
}

func TestSettingsValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Settings)
		want   error
	}{
		{"zero water interval", func(s *Settings) { s.WaterIntervalMin = 0 }, ErrInvalidInterval},
		{"negative standup interval", func(s *Settings) { s.StandupIntervalMin = -5 }, ErrInvalidInterval},
		{"zero snooze", func(s *Settings) { s.SnoozeMin = 0 }, ErrInvalidSnooze},
		{"negative grace", func(s *Settings) { s.AutoRestartGraceMin = -1 }, ErrInvalidGrace},
		{"negative goal", func(s *Settings) { s.WaterGoal = -1 }, ErrInvalidGoal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := DefaultSettings()
			tc.mutate(&s)
			if err := s.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestSettingsIntervalPerKind(t *testing.T) {
	s := DefaultSettings()
	s.WaterIntervalMin = 30
	s.StandupIntervalMin = 90
	if got := s.Interval(KindWater); got != 30*time.Minute {
		t.Fatalf("unexpected water interval: %s", got)
	}
	if got := s.Interval(KindStandup); got != 90*time.Minute {
		t.Fatalf("unexpected standup interval: %s", got)
	}
}

func TestSnoozeCappedAtInterval(t *testing.T) {
	s := DefaultSettings()
	s.WaterIntervalMin = 3
	s.SnoozeMin = 5
	if got := s.Snooze(KindWater); got != 3*time.Minute {
		t.Fatalf("expected snooze capped at interval, got %s", got)
	}
	if got := s.Snooze(KindStandup); got != 5*time.Minute {
		t.Fatalf("expected full snooze, got %s", got)
	}
}
