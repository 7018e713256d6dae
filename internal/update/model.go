package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/rs/zerolog"

	"wellnessd/internal/model"
	"wellnessd/internal/notify"
	"wellnessd/internal/scheduler"
	"wellnessd/internal/storage"
	"wellnessd/internal/timer"
)

type View string

const (
	ViewDashboard View = "Dashboard"
	ViewSettings  View = "Settings"
	ViewStats     View = "Stats"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Dashboard string
	Settings  string
	Stats     string
	Help      string
	Quit      string
}

// Store is the slice of the storage repository the UI needs.
type Store interface {
	SaveSettings(ctx context.Context, in storage.Settings) error
	SaveTimer(ctx context.Context, in storage.TimerSnapshot) error
	RecordActivity(ctx context.Context, in storage.ActivityEntry) error
	CountActivityOn(ctx context.Context, kind string, day time.Time) (int, error)
	ListDayTotals(ctx context.Context, since time.Time) ([]storage.DayTotal, error)
}

type Model struct {
	CurrentView View
	Settings    model.Settings
	Timers      map[model.Kind]*timer.Timer
	Selected    int // index into model.Kinds()
	TodayCounts map[model.Kind]int
	Seq         map[model.Kind]uint64
	Scheduler   *scheduler.Engine
	Banner      string
	Status      StatusBar
	Keys        GlobalKeyMap
	HelpVisible bool
	Quitting    bool
	LastError   error

	store          Store
	notifier       notify.Notifier
	quiet          notify.QuietHours
	desktopEnabled bool
	logger         zerolog.Logger
	now            func() time.Time
	lastDay        string

	settingsForm settingsForm
	statsTable   table.Model
	statsStreak  int
	statsEmpty   bool
	countdownBar progress.Model
}

type settingsForm struct {
	inputs  []textinput.Model
	focused int
	err     string
}

type Deps struct {
	Store          Store
	Scheduler      *scheduler.Engine
	Notifier       notify.Notifier
	Logger         zerolog.Logger
	Settings       model.Settings
	Timers         []*timer.Timer
	DesktopEnabled bool
	Now            func() time.Time
}

type TickMsg struct{}

type FireMsg struct {
	Event scheduler.FireEvent
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type SetTodayCountsMsg struct {
	Counts map[model.Kind]int
	Day    string
}

type SetDayTotalsMsg struct {
	Totals []storage.DayTotal
}

func NewModel(deps Deps) Model {
	settings := deps.Settings
	if err := settings.Validate(); err != nil {
		settings = model.DefaultSettings()
	}

	// the clock stays in local time: quiet hours gate on the user's wall
	// clock, while dayKey and storage normalize to UTC themselves
	nowFn := deps.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.Noop{}
	}

	m := Model{
		CurrentView: ViewDashboard,
		Settings:    settings,
		Timers:      make(map[model.Kind]*timer.Timer),
		TodayCounts: make(map[model.Kind]int),
		Seq:         make(map[model.Kind]uint64),
		Scheduler:   deps.Scheduler,
		Keys: GlobalKeyMap{
			Dashboard: "1",
			Settings:  "2",
			Stats:     "3",
			Help:      "?",
			Quit:      "q",
		},
		store:          deps.Store,
		notifier:       notifier,
		desktopEnabled: deps.DesktopEnabled,
		logger:         deps.Logger,
		now:            nowFn,
	}
	m.lastDay = dayKey(m.now())

	quiet, err := notify.ParseQuietHours(settings.QuietHours)
	if err == nil {
		m.quiet = quiet
	}

	for _, t := range deps.Timers {
		m.Timers[t.Kind()] = t
	}
	for _, kind := range model.Kinds() {
		if _, ok := m.Timers[kind]; ok {
			continue
		}
		t, newErr := timer.New(kind, settings.Interval(kind))
		if newErr != nil {
			continue
		}
		m.Timers[kind] = t
	}
	// restored running timers need their deadlines back on the engine
	for _, kind := range model.Kinds() {
		m.scheduleFire(m.Timers[kind])
	}

	m.countdownBar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(24), progress.WithoutPercentage())
	m.statsTable = table.New(
		table.WithColumns([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Water", Width: 7},
			{Title: "Standups", Width: 9},
		}),
		table.WithHeight(8),
	)
	m.initSettingsForm()
	return m
}

func (m Model) selectedKind() model.Kind {
	kinds := model.Kinds()
	if m.Selected < 0 || m.Selected >= len(kinds) {
		return kinds[0]
	}
	return kinds[m.Selected]
}

// dayKey buckets counters by UTC calendar day, matching how the activity
// log aggregates; history does not shift when the machine's zone changes.
func dayKey(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}
