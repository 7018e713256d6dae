package update

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"wellnessd/internal/model"
	"wellnessd/internal/storage"
	"wellnessd/internal/views"
)

const statsWindowDays = 14

func refreshStatsCmd(store Store, now time.Time) tea.Cmd {
	return func() tea.Msg {
		if store == nil {
			return SetDayTotalsMsg{}
		}
		since := now.AddDate(0, 0, -statsWindowDays)
		totals, err := store.ListDayTotals(context.Background(), since)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return SetDayTotalsMsg{Totals: totals}
	}
}

func refreshTodayCountsCmd(store Store, now time.Time) tea.Cmd {
	return func() tea.Msg {
		counts := make(map[model.Kind]int)
		if store != nil {
			for _, kind := range model.Kinds() {
				n, err := store.CountActivityOn(context.Background(), string(kind), now)
				if err != nil {
					return AppErrorMsg{Err: err}
				}
				counts[kind] = n
			}
		}
		return SetTodayCountsMsg{Counts: counts, Day: dayKey(now)}
	}
}

func (m *Model) applyDayTotals(totals []storage.DayTotal) {
	sortTotalsDesc(totals)
	rows := make([]table.Row, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, table.Row{t.Date, strconv.Itoa(t.Water), strconv.Itoa(t.Standup)})
	}
	m.statsTable.SetRows(rows)
	m.statsEmpty = len(totals) == 0
	m.statsStreak = goalStreak(totals, m.Settings, m.now())
}

// goalStreak counts consecutive days, ending today or yesterday, on which
// both daily goals were met. A day with no recorded activity counts as unmet
// and ends the streak.
func goalStreak(totals []storage.DayTotal, settings model.Settings, now time.Time) int {
	byDate := make(map[string]storage.DayTotal, len(totals))
	for _, t := range totals {
		byDate[t.Date] = t
	}

	met := func(day string) bool {
		t, ok := byDate[day]
		if !ok {
			return false
		}
		return t.Water >= settings.WaterGoal && t.Standup >= settings.StandupGoal
	}

	start := now.UTC()
	// today may still be in progress; an unmet today starts counting from
	// yesterday instead of breaking the streak
	if !met(dayKey(start)) {
		start = start.AddDate(0, 0, -1)
	}

	streak := 0
	for d := start; met(dayKey(d)); d = d.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

func (m Model) handleStatsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.statsTable, cmd = m.statsTable.Update(msg)
	return m, cmd
}

func (m Model) renderStatsView() string {
	return views.RenderStats(views.StatsData{
		TableView: m.statsTable.View(),
		Streak:    m.statsStreak,
		Empty:     m.statsEmpty,
	})
}

func sortTotalsDesc(totals []storage.DayTotal) {
	sort.Slice(totals, func(i, j int) bool { return totals[i].Date > totals[j].Date })
}
