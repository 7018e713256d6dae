package update

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"wellnessd/internal/model"
	"wellnessd/internal/notify"
	"wellnessd/internal/scheduler"
	"wellnessd/internal/storage"
	"wellnessd/internal/timer"
)

func (m Model) handleDashboardKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	kind := m.selectedKind()
	t := m.Timers[kind]
	if t == nil {
		return m, nil
	}
	now := m.now()

	switch msg.String() {
	case "tab", "j", "down":
		m.Selected = (m.Selected + 1) % len(model.Kinds())
		return m, nil
	case "shift+tab", "k", "up":
		m.Selected = (m.Selected - 1 + len(model.Kinds())) % len(model.Kinds())
		return m, nil
	case " ":
		return m.toggleTimer(t, now), nil
	case "enter", "a":
		return m.acknowledgeTimer(t, now)
	case "z":
		return m.snoozeTimer(t, now), nil
	case "x":
		m.invalidateFire(kind)
		t.Stop()
		m.persistTimer(t)
		m.clearBannerFor(kind)
		m.Status = StatusBar{Text: fmt.Sprintf("%s reminder stopped", kind)}
		return m, nil
	case "l":
		return m.logActivity(kind, now)
	}
	return m, nil
}

func (m Model) toggleTimer(t *timer.Timer, now time.Time) Model {
	kind := t.Kind()
	switch t.State() {
	case timer.StateIdle:
		if err := t.Start(now); err != nil {
			return m.withError(err)
		}
		m.scheduleFire(t)
		m.Status = StatusBar{Text: fmt.Sprintf("%s reminder started", kind)}
	case timer.StateRunning:
		m.invalidateFire(kind)
		if err := t.Pause(now); err != nil {
			return m.withError(err)
		}
		m.Status = StatusBar{Text: fmt.Sprintf("%s reminder paused", kind)}
	case timer.StatePaused:
		if err := t.Resume(now); err != nil {
			return m.withError(err)
		}
		m.scheduleFire(t)
		m.Status = StatusBar{Text: fmt.Sprintf("%s reminder resumed", kind)}
	case timer.StateTriggered:
		m.Status = StatusBar{Text: fmt.Sprintf("%s is due; acknowledge or snooze it", kind)}
		return m
	}
	m.persistTimer(t)
	return m
}

// acknowledgeTimer confirms a fired reminder: the activity counts toward the
// daily goal and the countdown restarts at a full interval.
func (m Model) acknowledgeTimer(t *timer.Timer, now time.Time) (Model, tea.Cmd) {
	kind := t.Kind()
	if t.State() != timer.StateTriggered {
		return m, nil
	}
	if err := t.Acknowledge(now); err != nil {
		return m.withError(err), nil
	}
	m.scheduleFire(t)
	m.persistTimer(t)
	m.clearBannerFor(kind)
	next := m.recordActivity(kind, now)
	next.Status = StatusBar{Text: fmt.Sprintf("%s acknowledged", kind)}
	return next, nil
}

func (m Model) snoozeTimer(t *timer.Timer, now time.Time) Model {
	kind := t.Kind()
	if t.State() != timer.StateTriggered {
		return m
	}
	d := m.Settings.Snooze(kind)
	if err := t.Snooze(now, d); err != nil {
		return m.withError(err)
	}
	m.scheduleFire(t)
	m.persistTimer(t)
	m.clearBannerFor(kind)
	m.Status = StatusBar{Text: fmt.Sprintf("%s snoozed for %s", kind, d)}
	return m
}

// logActivity records a drink or a stand-up the user took without waiting
// for the reminder to fire.
func (m Model) logActivity(kind model.Kind, now time.Time) (Model, tea.Cmd) {
	next := m.recordActivity(kind, now)
	next.Status = StatusBar{Text: fmt.Sprintf("%s logged (%d/%d today)", kind, next.TodayCounts[kind], next.Settings.Goal(kind))}
	return next, nil
}

func (m Model) recordActivity(kind model.Kind, now time.Time) Model {
	entry := model.ActivityEntry{ID: uuid.NewString(), Kind: kind, At: now}
	if err := entry.Validate(); err != nil {
		return m.withError(err)
	}
	if m.store != nil {
		err := m.store.RecordActivity(context.Background(), storage.ActivityEntry{
			ID:         entry.ID,
			Kind:       string(entry.Kind),
			OccurredAt: entry.At,
		})
		if err != nil {
			return m.withError(fmt.Errorf("record activity: %w", err))
		}
	}
	m.TodayCounts[kind]++
	m.logger.Info().Str("kind", string(kind)).Int("today", m.TodayCounts[kind]).Msg("activity recorded")
	return m
}

func (m *Model) onFire(ev scheduler.FireEvent) {
	if ev.Seq != m.Seq[ev.Kind] {
		// superseded by a pause, snooze, or reschedule
		return
	}
	t := m.Timers[ev.Kind]
	if t == nil || t.State() != timer.StateRunning {
		return
	}
	now := m.now()
	if err := t.Fire(now); err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return
	}
	m.persistTimer(t)
	m.Banner = ev.Kind.Label()
	m.Status = StatusBar{Text: fmt.Sprintf("%s reminder due", ev.Kind)}
	m.logger.Info().Str("kind", string(ev.Kind)).Time("at", ev.At).Msg("reminder fired")
	m.sendDesktop(ev.Kind, now)
}

func (m *Model) sendDesktop(kind model.Kind, now time.Time) {
	if !m.desktopEnabled || !m.Settings.DesktopNotify {
		return
	}
	if m.quiet.Contains(now) {
		m.logger.Debug().Str("kind", string(kind)).Msg("desktop notification muted by quiet hours")
		return
	}
	n := notify.Notification{Title: "wellnessd", Body: kind.Label()}
	if err := m.notifier.Send(n); err != nil {
		m.logger.Warn().Err(err).Msg("desktop notification failed")
	}
}

// applyAutoRestart resets reminders that sat triggered past the grace window.
// An auto-restart does not count toward the daily goal.
func (m *Model) applyAutoRestart(now time.Time) {
	grace := m.Settings.AutoRestartGrace()
	if grace <= 0 {
		return
	}
	for _, kind := range model.Kinds() {
		t := m.Timers[kind]
		if t == nil || t.State() != timer.StateTriggered {
			continue
		}
		if t.TriggeredFor(now) < grace {
			continue
		}
		if err := t.Acknowledge(now); err != nil {
			continue
		}
		m.scheduleFire(t)
		m.persistTimer(t)
		m.clearBannerFor(kind)
		m.Status = StatusBar{Text: fmt.Sprintf("%s reminder auto-restarted", kind)}
		m.logger.Info().Str("kind", string(kind)).Msg("reminder auto-restarted after grace")
	}
}

func (m *Model) scheduleFire(t *timer.Timer) {
	if t == nil || t.State() != timer.StateRunning {
		return
	}
	kind := t.Kind()
	m.Seq[kind]++
	if m.Scheduler == nil {
		return
	}
	ev := scheduler.FireEvent{Kind: kind, Seq: m.Seq[kind], At: t.NextFireAt()}
	if err := m.Scheduler.Schedule(ev); err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: fmt.Sprintf("schedule %s: %v", kind, err), IsError: true}
	}
}

func (m *Model) invalidateFire(kind model.Kind) {
	m.Seq[kind]++
}

func (m *Model) persistTimer(t *timer.Timer) {
	if m.store == nil || t == nil {
		return
	}
	snap := t.Snapshot()
	row := storage.TimerSnapshot{
		Kind:      string(snap.Kind),
		State:     string(snap.State),
		Interval:  snap.Interval,
		Remaining: snap.Remaining,
		UpdatedAt: m.now(),
	}
	if !snap.NextFireAt.IsZero() {
		at := snap.NextFireAt
		row.NextFireAt = &at
	}
	if !snap.FiredAt.IsZero() {
		at := snap.FiredAt
		row.FiredAt = &at
	}
	if err := m.store.SaveTimer(context.Background(), row); err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: fmt.Sprintf("persist timer: %v", err), IsError: true}
	}
}

func (m *Model) clearBannerFor(kind model.Kind) {
	if m.Banner == kind.Label() {
		m.Banner = ""
	}
}

func (m Model) withError(err error) Model {
	m.LastError = err
	m.Status = StatusBar{Text: err.Error(), IsError: true}
	return m
}
