package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"wellnessd/internal/model"
	"wellnessd/internal/scheduler"
	"wellnessd/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(), refreshTodayCountsCmd(m.store, m.now())}
	if m.Scheduler != nil {
		cmds = append(cmds, waitForFireCmd(m.Scheduler.C()))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		keyStr := typed.String()
		if keyStr == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}

		// settings inputs own every other key while that view is active
		if m.CurrentView == ViewSettings {
			return m.handleSettingsKey(typed)
		}

		switch keyStr {
		case m.Keys.Dashboard:
			m.CurrentView = ViewDashboard
			return m, nil
		case m.Keys.Settings:
			m.CurrentView = ViewSettings
			m.resetSettingsForm()
			return m, nil
		case m.Keys.Stats:
			m.CurrentView = ViewStats
			return m, refreshStatsCmd(m.store, m.now())
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}

		switch m.CurrentView {
		case ViewDashboard:
			return m.handleDashboardKey(typed)
		case ViewStats:
			return m.handleStatsKey(typed)
		}

	case TickMsg:
		now := m.now()
		m.applyAutoRestart(now)
		if day := dayKey(now); day != m.lastDay {
			m.lastDay = day
			return m, tea.Batch(tickCmd(), refreshTodayCountsCmd(m.store, now))
		}
		return m, tickCmd()

	case FireMsg:
		m.onFire(typed.Event)
		if m.Scheduler != nil {
			return m, waitForFireCmd(m.Scheduler.C())
		}
		return m, nil

	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil

	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil

	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.logger.Error().Err(typed.Err).Msg("app error")
		}
		return m, nil

	case SetTodayCountsMsg:
		if typed.Counts != nil {
			m.TodayCounts = typed.Counts
		}
		if typed.Day != "" {
			m.lastDay = typed.Day
		}
		return m, nil

	case SetDayTotalsMsg:
		m.applyDayTotals(typed.Totals)
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	now := m.now()

	body := ""
	if m.HelpVisible {
		body = m.renderHelpView()
	} else {
		switch m.CurrentView {
		case ViewDashboard:
			body = m.renderDashboardView(now)
		case ViewSettings:
			body = m.renderSettingsView()
		case ViewStats:
			body = m.renderStatsView()
		}
	}

	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("wellnessd | view: %s", m.CurrentView),
		Body:       body,
		Banner:     m.Banner,
		StatusLine: status,
		Footer: fmt.Sprintf("keys: %s dashboard | %s settings | %s stats | %s help | %s quit",
			m.Keys.Dashboard, m.Keys.Settings, m.Keys.Stats, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) renderDashboardView(now time.Time) string {
	data := views.DashboardData{}
	for i, kind := range model.Kinds() {
		t := m.Timers[kind]
		if t == nil {
			continue
		}
		data.Timers = append(data.Timers, views.TimerPanelData{
			Label:        kind.Label(),
			State:        string(t.State()),
			Countdown:    formatDuration(t.Remaining(now)),
			ProgressView: m.countdownBar.ViewAs(t.Progress(now)),
			TodayCount:   m.TodayCounts[kind],
			Goal:         m.Settings.Goal(kind),
			Selected:     i == m.Selected,
		})
	}
	return views.RenderDashboard(data)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return TickMsg{} })
}

func waitForFireCmd(ch <-chan scheduler.FireEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return FireMsg{Event: ev}
	}
}
