// Package timer implements the per-reminder countdown lifecycle. A timer is
// idle, running, paused, or triggered; every transition takes an explicit
// wall-clock instant so callers (and tests) control time.
package timer

import (
	"errors"
	"fmt"
	"time"

	"wellnessd/internal/model"
)

type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateTriggered State = "triggered"
)

func (s State) IsValid() bool {
	switch s {
	case StateIdle, StateRunning, StatePaused, StateTriggered:
		return true
	default:
		return false
	}
}

var (
	ErrInvalidInterval = errors.New("timer: interval must be positive")
	ErrInvalidSnooze   = errors.New("timer: snooze duration must be positive")
	ErrNotIdle         = errors.New("timer: already started")
	ErrNotRunning      = errors.New("timer: not running")
	ErrNotPaused       = errors.New("timer: not paused")
	ErrNotTriggered    = errors.New("timer: not triggered")
)

// Timer tracks one reminder countdown. Invariant: while running,
// Remaining(now) == max(0, nextFireAt - now); while paused or triggered the
// remaining time is frozen at the instant of the transition.
type Timer struct {
	kind       model.Kind
	state      State
	interval   time.Duration
	nextFireAt time.Time
	remaining  time.Duration
	firedAt    time.Time
}

func New(kind model.Kind, interval time.Duration) (*Timer, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidKind, kind)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}
	return &Timer{
		kind:      kind,
		state:     StateIdle,
		interval:  interval,
		remaining: interval,
	}, nil
}

func (t *Timer) Kind() model.Kind        { return t.kind }
func (t *Timer) State() State            { return t.state }
func (t *Timer) Interval() time.Duration { return t.interval }

// NextFireAt is only meaningful while running.
func (t *Timer) NextFireAt() time.Time { return t.nextFireAt }

func (t *Timer) Remaining(now time.Time) time.Duration {
	switch t.state {
	case StateRunning:
		rem := t.nextFireAt.Sub(now)
		if rem < 0 {
			return 0
		}
		return rem
	case StateTriggered:
		return 0
	default:
		return t.remaining
	}
}

// Progress reports the elapsed fraction of the current cycle in [0, 1].
func (t *Timer) Progress(now time.Time) float64 {
	if t.interval <= 0 {
		return 0
	}
	p := 1 - float64(t.Remaining(now))/float64(t.interval)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func (t *Timer) Start(now time.Time) error {
	if t.state != StateIdle {
		return fmt.Errorf("%w (%s/%s)", ErrNotIdle, t.kind, t.state)
	}
	t.state = StateRunning
	t.nextFireAt = now.Add(t.interval)
	t.remaining = 0
	return nil
}

func (t *Timer) Pause(now time.Time) error {
	if t.state != StateRunning {
		return fmt.Errorf("%w (%s/%s)", ErrNotRunning, t.kind, t.state)
	}
	t.remaining = t.Remaining(now)
	t.state = StatePaused
	t.nextFireAt = time.Time{}
	return nil
}

func (t *Timer) Resume(now time.Time) error {
	if t.state != StatePaused {
		return fmt.Errorf("%w (%s/%s)", ErrNotPaused, t.kind, t.state)
	}
	t.state = StateRunning
	t.nextFireAt = now.Add(t.remaining)
	t.remaining = 0
	return nil
}

// Fire moves a running timer to triggered. It does not check whether the
// deadline has passed; the scheduler only emits due events and a restore with
// a stale deadline fires directly.
func (t *Timer) Fire(now time.Time) error {
	if t.state != StateRunning {
		return fmt.Errorf("%w (%s/%s)", ErrNotRunning, t.kind, t.state)
	}
	t.state = StateTriggered
	t.firedAt = now
	t.nextFireAt = time.Time{}
	t.remaining = 0
	return nil
}

func (t *Timer) Acknowledge(now time.Time) error {
	if t.state != StateTriggered {
		return fmt.Errorf("%w (%s/%s)", ErrNotTriggered, t.kind, t.state)
	}
	t.state = StateRunning
	t.nextFireAt = now.Add(t.interval)
	t.firedAt = time.Time{}
	t.remaining = 0
	return nil
}

func (t *Timer) Snooze(now time.Time, d time.Duration) error {
	if t.state != StateTriggered {
		return fmt.Errorf("%w (%s/%s)", ErrNotTriggered, t.kind, t.state)
	}
	if d <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSnooze, d)
	}
	t.state = StateRunning
	t.nextFireAt = now.Add(d)
	t.firedAt = time.Time{}
	t.remaining = 0
	return nil
}

func (t *Timer) Stop() {
	t.state = StateIdle
	t.nextFireAt = time.Time{}
	t.firedAt = time.Time{}
	t.remaining = t.interval
}

// TriggeredFor is how long the timer has sat unacknowledged; zero unless
// triggered. The app layer uses it for the auto-restart grace.
func (t *Timer) TriggeredFor(now time.Time) time.Duration {
	if t.state != StateTriggered || t.firedAt.IsZero() {
		return 0
	}
	d := now.Sub(t.firedAt)
	if d < 0 {
		return 0
	}
	return d
}

// SetInterval changes the interval mid-cycle. A running or paused timer keeps
// its elapsed fraction: remaining time rescales proportionally to the new
// interval. Idle timers pick up the new full interval on the next start.
func (t *Timer) SetInterval(now time.Time, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}
	old := t.interval
	switch t.state {
	case StateRunning:
		rem := rescale(t.Remaining(now), old, interval)
		t.nextFireAt = now.Add(rem)
	case StatePaused:
		t.remaining = rescale(t.remaining, old, interval)
	case StateIdle:
		t.remaining = interval
	}
	t.interval = interval
	return nil
}

func rescale(remaining, oldInterval, newInterval time.Duration) time.Duration {
	if oldInterval <= 0 {
		return newInterval
	}
	scaled := time.Duration(float64(remaining) * float64(newInterval) / float64(oldInterval))
	if scaled > newInterval {
		return newInterval
	}
	if scaled < 0 {
		return 0
	}
	return scaled
}
