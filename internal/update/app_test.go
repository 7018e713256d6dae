package update

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"wellnessd/internal/model"
	"wellnessd/internal/notify"
	"wellnessd/internal/scheduler"
	"wellnessd/internal/storage"
	"wellnessd/internal/timer"
)

var testStart = time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	settings   []storage.Settings
	timers     map[string]storage.TimerSnapshot
	activities []storage.ActivityEntry
	totals     []storage.DayTotal
}

func newFakeStore() *fakeStore {
	return &fakeStore{timers: make(map[string]storage.TimerSnapshot)}
}

func (f *fakeStore) SaveSettings(_ context.Context, in storage.Settings) error {
	f.settings = append(f.settings, in)
	return nil
}

func (f *fakeStore) SaveTimer(_ context.Context, in storage.TimerSnapshot) error {
	f.timers[in.Kind] = in
	return nil
}

func (f *fakeStore) RecordActivity(_ context.Context, in storage.ActivityEntry) error {
	f.activities = append(f.activities, in)
	return nil
}

func (f *fakeStore) CountActivityOn(_ context.Context, kind string, _ time.Time) (int, error) {
	count := 0
	for _, a := range f.activities {
		if a.Kind == kind {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) ListDayTotals(_ context.Context, _ time.Time) ([]storage.DayTotal, error) {
	return f.totals, nil
}

type fakeNotifier struct {
	sent []notify.Notification
}

func (f *fakeNotifier) Send(n notify.Notification) error {
	f.sent = append(f.sent, n)
	return nil
}

type testEnv struct {
	store    *fakeStore
	notifier *fakeNotifier
	now      *time.Time
}

func newTestModel(t *testing.T, mutate func(*model.Settings)) (Model, *testEnv) {
	t.Helper()
	settings := model.DefaultSettings()
	if mutate != nil {
		mutate(&settings)
	}
	env := &testEnv{store: newFakeStore(), notifier: &fakeNotifier{}}
	current := testStart
	env.now = &current
	m := NewModel(Deps{
		Store:          env.store,
		Notifier:       env.notifier,
		Logger:         zerolog.Nop(),
		Settings:       settings,
		DesktopEnabled: true,
		Now:            func() time.Time { return *env.now },
	})
	return m, env
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("unexpected model type %T", updated)
	}
	return next
}

func TestNewModelDefaults(t *testing.T) {
	m, _ := newTestModel(t, nil)
	if m.CurrentView != ViewDashboard {
		t.Fatalf("expected dashboard view, got %q", m.CurrentView)
	}
	if m.Keys.Quit != "q" {
		t.Fatalf("expected quit key q, got %q", m.Keys.Quit)
	}
	for _, kind := range model.Kinds() {
		tm := m.Timers[kind]
		if tm == nil {
			t.Fatalf("missing timer for %s", kind)
		}
		if tm.State() != timer.StateIdle {
			t.Fatalf("expected %s idle, got %s", kind, tm.State())
		}
	}
}

func TestKeySwitchesView(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = applyMsg(t, m, keyMsg("2"))
	if m.CurrentView != ViewSettings {
		t.Fatalf("expected settings view, got %q", m.CurrentView)
	}
	m = applyMsg(t, m, keyMsg("esc"))
	if m.CurrentView != ViewDashboard {
		t.Fatalf("expected dashboard after esc, got %q", m.CurrentView)
	}

	updated, cmd := m.Update(keyMsg("3"))
	m = updated.(Model)
	if m.CurrentView != ViewStats {
		t.Fatalf("expected stats view, got %q", m.CurrentView)
	}
	if cmd == nil {
		t.Fatal("expected stats refresh command")
	}
}

func TestQuitKey(t *testing.T) {
	m, _ := newTestModel(t, nil)
	updated, cmd := m.Update(keyMsg("q"))
	next := updated.(Model)
	if !next.Quitting {
		t.Fatal("expected quitting flag")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestSpaceTogglesTimerLifecycle(t *testing.T) {
	m, env := newTestModel(t, nil)

	m = applyMsg(t, m, keyMsg(" "))
	water := m.Timers[model.KindWater]
	if water.State() != timer.StateRunning {
		t.Fatalf("expected running after space, got %s", water.State())
	}
	if snap, ok := env.store.timers["water"]; !ok || snap.State != "running" {
		t.Fatalf("expected running snapshot persisted, got %#v", env.store.timers)
	}

	*env.now = testStart.Add(10 * time.Minute)
	m = applyMsg(t, m, keyMsg(" "))
	if water.State() != timer.StatePaused {
		t.Fatalf("expected paused, got %s", water.State())
	}

	*env.now = testStart.Add(20 * time.Minute)
	m = applyMsg(t, m, keyMsg(" "))
	if water.State() != timer.StateRunning {
		t.Fatalf("expected resumed, got %s", water.State())
	}
	// 45m interval, 10m elapsed before pause
	want := testStart.Add(20 * time.Minute).Add(35 * time.Minute)
	if got := water.NextFireAt(); !got.Equal(want) {
		t.Fatalf("unexpected deadline after resume: %s", got)
	}
	if snap := env.store.timers["water"]; snap.State != "running" {
		t.Fatalf("expected running snapshot after resume, got %q", snap.State)
	}
}

func TestFireMsgTriggersAndNotifies(t *testing.T) {
	m, env := newTestModel(t, nil)
	m = applyMsg(t, m, keyMsg(" "))

	ev := scheduler.FireEvent{Kind: model.KindWater, Seq: m.Seq[model.KindWater], At: testStart.Add(45 * time.Minute)}
	*env.now = testStart.Add(45 * time.Minute)
	m = applyMsg(t, m, FireMsg{Event: ev})

	if got := m.Timers[model.KindWater].State(); got != timer.StateTriggered {
		t.Fatalf("expected triggered, got %s", got)
	}
	if m.Banner == "" {
		t.Fatal("expected banner for due reminder")
	}
	if len(env.notifier.sent) != 1 {
		t.Fatalf("expected one desktop notification, got %d", len(env.notifier.sent))
	}
}

func TestStaleFireEventIgnored(t *testing.T) {
	m, env := newTestModel(t, nil)
	m = applyMsg(t, m, keyMsg(" "))

	stale := scheduler.FireEvent{Kind: model.KindWater, Seq: m.Seq[model.KindWater] + 7, At: testStart}
	m = applyMsg(t, m, FireMsg{Event: stale})
	if got := m.Timers[model.KindWater].State(); got != timer.StateRunning {
		t.Fatalf("expected stale event ignored, got %s", got)
	}
	if len(env.notifier.sent) != 0 {
		t.Fatal("expected no notification for stale event")
	}
}

func TestAcknowledgeRecordsActivity(t *testing.T) {
	m, env := newTestModel(t, nil)
	m = applyMsg(t, m, keyMsg(" "))
	*env.now = testStart.Add(45 * time.Minute)
	m = applyMsg(t, m, FireMsg{Event: scheduler.FireEvent{Kind: model.KindWater, Seq: m.Seq[model.KindWater], At: *env.now}})

	m = applyMsg(t, m, keyMsg("enter"))
	water := m.Timers[model.KindWater]
	if water.State() != timer.StateRunning {
		t.Fatalf("expected running after ack, got %s", water.State())
	}
	if len(env.store.activities) != 1 || env.store.activities[0].Kind != "water" {
		t.Fatalf("expected one water activity, got %#v", env.store.activities)
	}
	if m.TodayCounts[model.KindWater] != 1 {
		t.Fatalf("expected today count 1, got %d", m.TodayCounts[model.KindWater])
	}
	if m.Banner != "" {
		t.Fatal("expected banner cleared after ack")
	}
}

func TestSnoozeReschedulesShortDelay(t *testing.T) {
	m, env := newTestModel(t, nil)
	m = applyMsg(t, m, keyMsg(" "))
	fireAt := testStart.Add(45 * time.Minute)
	*env.now = fireAt
	m = applyMsg(t, m, FireMsg{Event: scheduler.FireEvent{Kind: model.KindWater, Seq: m.Seq[model.KindWater], At: fireAt}})

	m = applyMsg(t, m, keyMsg("z"))
	water := m.Timers[model.KindWater]
	if water.State() != timer.StateRunning {
		t.Fatalf("expected running after snooze, got %s", water.State())
	}
	if got := water.NextFireAt(); !got.Equal(fireAt.Add(5 * time.Minute)) {
		t.Fatalf("unexpected snooze deadline: %s", got)
	}
	if len(env.store.activities) != 0 {
		t.Fatal("snooze must not record activity")
	}
}

func TestAutoRestartAfterGrace(t *testing.T) {
	m, env := newTestModel(t, func(s *model.Settings) { s.AutoRestartGraceMin = 2 })
	m = applyMsg(t, m, keyMsg(" "))
	fireAt := testStart.Add(45 * time.Minute)
	*env.now = fireAt
	m = applyMsg(t, m, FireMsg{Event: scheduler.FireEvent{Kind: model.KindWater, Seq: m.Seq[model.KindWater], At: fireAt}})

	*env.now = fireAt.Add(time.Minute)
	m = applyMsg(t, m, TickMsg{})
	if got := m.Timers[model.KindWater].State(); got != timer.StateTriggered {
		t.Fatalf("expected still triggered inside grace, got %s", got)
	}

	*env.now = fireAt.Add(3 * time.Minute)
	m = applyMsg(t, m, TickMsg{})
	if got := m.Timers[model.KindWater].State(); got != timer.StateRunning {
		t.Fatalf("expected auto-restarted, got %s", got)
	}
	if len(env.store.activities) != 0 {
		t.Fatal("auto-restart must not count toward the goal")
	}
}

func TestQuietHoursSuppressDesktopNotification(t *testing.T) {
	m, env := newTestModel(t, func(s *model.Settings) { s.QuietHours = "0-23" })
	m = applyMsg(t, m, keyMsg(" "))
	*env.now = testStart.Add(45 * time.Minute)
	m = applyMsg(t, m, FireMsg{Event: scheduler.FireEvent{Kind: model.KindWater, Seq: m.Seq[model.KindWater], At: *env.now}})

	if got := m.Timers[model.KindWater].State(); got != timer.StateTriggered {
		t.Fatalf("expected triggered, got %s", got)
	}
	if m.Banner == "" {
		t.Fatal("banner must still show during quiet hours")
	}
	if len(env.notifier.sent) != 0 {
		t.Fatal("expected desktop notification suppressed")
	}
}

func TestQuietHoursGateOnUserWallClock(t *testing.T) {
	east := time.FixedZone("UTC+10", 10*60*60)
	night := time.Date(2026, 2, 9, 23, 0, 0, 0, east) // 13:00 UTC

	m, env := newTestModel(t, func(s *model.Settings) { s.QuietHours = "22-07" })
	m = applyMsg(t, m, keyMsg(" "))
	*env.now = night
	m = applyMsg(t, m, FireMsg{Event: scheduler.FireEvent{Kind: model.KindWater, Seq: m.Seq[model.KindWater], At: night}})
	if len(env.notifier.sent) != 0 {
		t.Fatal("expected 23:00 on the user's clock muted despite the UTC hour")
	}

	// the same absolute instant handed out as UTC reads as 13:00 and fires
	m2, env2 := newTestModel(t, func(s *model.Settings) { s.QuietHours = "22-07" })
	m2 = applyMsg(t, m2, keyMsg(" "))
	*env2.now = night.UTC()
	m2 = applyMsg(t, m2, FireMsg{Event: scheduler.FireEvent{Kind: model.KindWater, Seq: m2.Seq[model.KindWater], At: night.UTC()}})
	if len(env2.notifier.sent) != 1 {
		t.Fatalf("expected a daytime notification, got %d", len(env2.notifier.sent))
	}
}

func TestManualLogIncrementsCounter(t *testing.T) {
	m, env := newTestModel(t, nil)
	m = applyMsg(t, m, keyMsg("tab")) // select standup
	m = applyMsg(t, m, keyMsg("l"))
	if m.TodayCounts[model.KindStandup] != 1 {
		t.Fatalf("expected standup count 1, got %d", m.TodayCounts[model.KindStandup])
	}
	if len(env.store.activities) != 1 || env.store.activities[0].Kind != "standup" {
		t.Fatalf("unexpected activities: %#v", env.store.activities)
	}
}

func TestSettingsSaveRescalesRunningTimer(t *testing.T) {
	m, env := newTestModel(t, nil)
	m = applyMsg(t, m, keyMsg(" ")) // water running, 45m

	*env.now = testStart.Add(15 * time.Minute) // 30m of 45m remain
	m = applyMsg(t, m, keyMsg("2"))
	m.settingsForm.inputs[fieldWaterInterval].SetValue("15")
	m = applyMsg(t, m, keyMsg("enter"))

	if m.CurrentView != ViewDashboard {
		t.Fatalf("expected return to dashboard, got %q (err %q)", m.CurrentView, m.settingsForm.err)
	}
	if m.Settings.WaterIntervalMin != 15 {
		t.Fatalf("expected interval saved, got %d", m.Settings.WaterIntervalMin)
	}
	// 2/3 of the cycle remained, so 10m of the 15m interval remains
	water := m.Timers[model.KindWater]
	if got := water.Remaining(*env.now); got != 10*time.Minute {
		t.Fatalf("expected rescaled 10m, got %s", got)
	}
	if len(env.store.settings) != 1 {
		t.Fatalf("expected settings persisted once, got %d", len(env.store.settings))
	}
}

func TestSettingsRejectInvalidInput(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = applyMsg(t, m, keyMsg("2"))
	m.settingsForm.inputs[fieldWaterInterval].SetValue("zero")
	m = applyMsg(t, m, keyMsg("enter"))
	if m.CurrentView != ViewSettings {
		t.Fatal("expected to stay in settings on bad input")
	}
	if m.settingsForm.err == "" {
		t.Fatal("expected form error")
	}
}

func TestDayTotalsFeedStatsAndStreak(t *testing.T) {
	m, env := newTestModel(t, func(s *model.Settings) {
		s.WaterGoal = 2
		s.StandupGoal = 1
	})
	env.store.totals = []storage.DayTotal{
		{Date: "2026-02-09", Water: 3, Standup: 2},
		{Date: "2026-02-08", Water: 2, Standup: 1},
		{Date: "2026-02-07", Water: 0, Standup: 5},
	}
	m = applyMsg(t, m, SetDayTotalsMsg{Totals: env.store.totals})
	if m.statsEmpty {
		t.Fatal("expected stats populated")
	}
	if m.statsStreak != 2 {
		t.Fatalf("expected streak of 2, got %d", m.statsStreak)
	}
}

func TestGoalStreakSkipsUnmetToday(t *testing.T) {
	settings := model.DefaultSettings()
	settings.WaterGoal = 2
	settings.StandupGoal = 1
	totals := []storage.DayTotal{
		{Date: "2026-02-09", Water: 0, Standup: 0},
		{Date: "2026-02-08", Water: 2, Standup: 1},
		{Date: "2026-02-07", Water: 4, Standup: 2},
	}
	if got := goalStreak(totals, settings, testStart); got != 2 {
		t.Fatalf("expected in-progress today not to break streak, got %d", got)
	}
}

func TestGoalStreakEndsOnDayWithoutActivity(t *testing.T) {
	settings := model.DefaultSettings()
	settings.WaterGoal = 0
	settings.StandupGoal = 0
	totals := []storage.DayTotal{
		{Date: "2026-02-09", Water: 1, Standup: 0},
		// no rows at all for 2026-02-08
		{Date: "2026-02-07", Water: 4, Standup: 2},
	}
	if got := goalStreak(totals, settings, testStart); got != 1 {
		t.Fatalf("expected absent day to end the streak even with zero goals, got %d", got)
	}
}
