package views

import (
	"fmt"
	"strings"
)

type TimerPanelData struct {
	Label        string
	State        string
	Countdown    string
	ProgressView string
	TodayCount   int
	Goal         int
	Selected     bool
}

type DashboardData struct {
	Timers []TimerPanelData
}

func RenderDashboard(data DashboardData) string {
	sections := make([]string, 0, len(data.Timers))
	for _, t := range data.Timers {
		cursor := "  "
		if t.Selected {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%s  [%s]", cursor, t.Label, t.State)
		if t.State == "triggered" {
			line = cursor + triggerStyle.Render(fmt.Sprintf("%s  !! due now", t.Label))
		}
		body := []string{
			line,
			fmt.Sprintf("  next in %s  %s", t.Countdown, t.ProgressView),
			fmt.Sprintf("  today: %d/%d", t.TodayCount, t.Goal),
		}
		sections = append(sections, strings.Join(body, "\n"))
	}
	return strings.Join(sections, "\n\n")
}

type SettingsFieldData struct {
	Label   string
	Input   string
	Focused bool
}

type SettingsData struct {
	Fields []SettingsFieldData
	Err    string
}

func RenderSettings(data SettingsData) string {
	lines := make([]string, 0, len(data.Fields)+2)
	for _, f := range data.Fields {
		marker := "  "
		if f.Focused {
			marker = "> "
		}
		lines = append(lines, fmt.Sprintf("%s%-22s %s", marker, f.Label, f.Input))
	}
	if data.Err != "" {
		lines = append(lines, "", errorStyle.Render("error: "+data.Err))
	} else {
		lines = append(lines, "", dimStyle.Render("tab: next field | enter: save | esc: discard"))
	}
	return strings.Join(lines, "\n")
}

type StatsData struct {
	TableView string
	Streak    int
	Empty     bool
}

func RenderStats(data StatsData) string {
	if data.Empty {
		return dimStyle.Render("no activity recorded yet")
	}
	out := data.TableView
	if data.Streak > 0 {
		out += "\n\n" + fmt.Sprintf("goal streak: %d day(s)", data.Streak)
	}
	return out
}

func RenderHelp(md string) string {
	return RenderMarkdown(md)
}
