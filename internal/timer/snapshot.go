package timer

import (
	"fmt"
	"time"

	"wellnessd/internal/model"
)

// Snapshot is the persistable shape of a timer. A restored running snapshot
// whose deadline already passed lands in triggered, so a restart shows the
// missed reminder instead of silently rescheduling it.
type Snapshot struct {
	Kind       model.Kind
	State      State
	Interval   time.Duration
	NextFireAt time.Time // zero unless running
	Remaining  time.Duration
	FiredAt    time.Time // zero unless triggered
}

func (t *Timer) Snapshot() Snapshot {
	return Snapshot{
		Kind:       t.kind,
		State:      t.state,
		Interval:   t.interval,
		NextFireAt: t.nextFireAt,
		Remaining:  t.remaining,
		FiredAt:    t.firedAt,
	}
}

func Restore(snap Snapshot, now time.Time) (*Timer, error) {
	t, err := New(snap.Kind, snap.Interval)
	if err != nil {
		return nil, err
	}
	if !snap.State.IsValid() {
		return nil, fmt.Errorf("timer: invalid snapshot state %q", snap.State)
	}
	t.state = snap.State
	switch snap.State {
	case StateRunning:
		if snap.NextFireAt.IsZero() {
			return nil, fmt.Errorf("timer: running snapshot for %s has no deadline", snap.Kind)
		}
		t.nextFireAt = snap.NextFireAt
		t.remaining = 0
		if !snap.NextFireAt.After(now) {
			t.state = StateTriggered
			t.firedAt = snap.NextFireAt
			t.nextFireAt = time.Time{}
		}
	case StatePaused:
		rem := snap.Remaining
		if rem < 0 {
			rem = 0
		}
		if rem > snap.Interval {
			rem = snap.Interval
		}
		t.remaining = rem
	case StateTriggered:
		t.remaining = 0
		t.firedAt = snap.FiredAt
		if t.firedAt.IsZero() {
			t.firedAt = now
		}
	case StateIdle:
		t.remaining = snap.Interval
	}
	return t, nil
}
