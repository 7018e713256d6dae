package update

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"wellnessd/internal/model"
	"wellnessd/internal/notify"
	"wellnessd/internal/storage"
	"wellnessd/internal/views"
)

const (
	fieldWaterInterval = iota
	fieldStandupInterval
	fieldSnooze
	fieldGrace
	fieldWaterGoal
	fieldStandupGoal
	fieldQuietHours
	fieldDesktopNotify
	fieldCount
)

var settingsLabels = [fieldCount]string{
	"Water interval (min)",
	"Standup interval (min)",
	"Snooze (min)",
	"Auto-restart grace (min)",
	"Water goal (per day)",
	"Standup goal (per day)",
	"Quiet hours (HH-HH)",
	"Desktop notify (on/off)",
}

func (m *Model) initSettingsForm() {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].CharLimit = 16
		inputs[i].Width = 12
	}
	m.settingsForm = settingsForm{inputs: inputs}
	m.resetSettingsForm()
}

func (m *Model) resetSettingsForm() {
	s := m.Settings
	f := &m.settingsForm
	f.inputs[fieldWaterInterval].SetValue(strconv.Itoa(s.WaterIntervalMin))
	f.inputs[fieldStandupInterval].SetValue(strconv.Itoa(s.StandupIntervalMin))
	f.inputs[fieldSnooze].SetValue(strconv.Itoa(s.SnoozeMin))
	f.inputs[fieldGrace].SetValue(strconv.Itoa(s.AutoRestartGraceMin))
	f.inputs[fieldWaterGoal].SetValue(strconv.Itoa(s.WaterGoal))
	f.inputs[fieldStandupGoal].SetValue(strconv.Itoa(s.StandupGoal))
	f.inputs[fieldQuietHours].SetValue(s.QuietHours)
	f.inputs[fieldDesktopNotify].SetValue(onOff(s.DesktopNotify))
	f.err = ""
	f.setFocus(0)
}

func (f *settingsForm) setFocus(i int) {
	f.focused = i
	for j := range f.inputs {
		if j == i {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	f := &m.settingsForm
	switch msg.String() {
	case "tab", "down":
		f.setFocus((f.focused + 1) % len(f.inputs))
		return m, nil
	case "shift+tab", "up":
		f.setFocus((f.focused - 1 + len(f.inputs)) % len(f.inputs))
		return m, nil
	case "esc":
		m.resetSettingsForm()
		m.CurrentView = ViewDashboard
		m.Status = StatusBar{Text: "settings discarded"}
		return m, nil
	case "enter":
		return m.saveSettingsForm(), nil
	}
	var cmd tea.Cmd
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	return m, cmd
}

func (m Model) saveSettingsForm() Model {
	parsed, err := m.parseSettingsForm()
	if err != nil {
		m.settingsForm.err = err.Error()
		return m
	}
	quiet, err := notify.ParseQuietHours(parsed.QuietHours)
	if err != nil {
		m.settingsForm.err = err.Error()
		return m
	}

	now := m.now()
	m.Settings = parsed
	m.quiet = quiet
	m.settingsForm.err = ""

	// interval edits reach live timers: elapsed fraction is preserved
	for _, kind := range model.Kinds() {
		t := m.Timers[kind]
		if t == nil || t.Interval() == parsed.Interval(kind) {
			continue
		}
		m.invalidateFire(kind)
		if setErr := t.SetInterval(now, parsed.Interval(kind)); setErr != nil {
			return m.withError(setErr)
		}
		m.scheduleFire(t)
		m.persistTimer(t)
	}

	if m.store != nil {
		row := storage.Settings{
			WaterIntervalMin:    parsed.WaterIntervalMin,
			StandupIntervalMin:  parsed.StandupIntervalMin,
			SnoozeMin:           parsed.SnoozeMin,
			AutoRestartGraceMin: parsed.AutoRestartGraceMin,
			DesktopNotify:       parsed.DesktopNotify,
			QuietHours:          parsed.QuietHours,
			WaterGoal:           parsed.WaterGoal,
			StandupGoal:         parsed.StandupGoal,
			UpdatedAt:           now,
		}
		if saveErr := m.store.SaveSettings(context.Background(), row); saveErr != nil {
			return m.withError(fmt.Errorf("persist settings: %w", saveErr))
		}
	}

	m.CurrentView = ViewDashboard
	m.Status = StatusBar{Text: "settings saved"}
	m.logger.Info().Int("water_min", parsed.WaterIntervalMin).Int("standup_min", parsed.StandupIntervalMin).Msg("settings updated")
	return m
}

func (m Model) parseSettingsForm() (model.Settings, error) {
	f := m.settingsForm
	out := m.Settings

	ints := map[int]*int{
		fieldWaterInterval:   &out.WaterIntervalMin,
		fieldStandupInterval: &out.StandupIntervalMin,
		fieldSnooze:          &out.SnoozeMin,
		fieldGrace:           &out.AutoRestartGraceMin,
		fieldWaterGoal:       &out.WaterGoal,
		fieldStandupGoal:     &out.StandupGoal,
	}
	for idx, dst := range ints {
		raw := strings.TrimSpace(f.inputs[idx].Value())
		v, err := strconv.Atoi(raw)
		if err != nil {
			return model.Settings{}, fmt.Errorf("%s: not a number: %q", settingsLabels[idx], raw)
		}
		*dst = v
	}
	out.QuietHours = strings.TrimSpace(f.inputs[fieldQuietHours].Value())

	switch strings.ToLower(strings.TrimSpace(f.inputs[fieldDesktopNotify].Value())) {
	case "on", "yes", "true", "1":
		out.DesktopNotify = true
	case "off", "no", "false", "0", "":
		out.DesktopNotify = false
	default:
		return model.Settings{}, fmt.Errorf("%s: expected on or off", settingsLabels[fieldDesktopNotify])
	}

	if err := out.Validate(); err != nil {
		return model.Settings{}, err
	}
	return out, nil
}

func (m Model) renderSettingsView() string {
	data := views.SettingsData{Err: m.settingsForm.err}
	for i, input := range m.settingsForm.inputs {
		data.Fields = append(data.Fields, views.SettingsFieldData{
			Label:   settingsLabels[i],
			Input:   input.View(),
			Focused: i == m.settingsForm.focused,
		})
	}
	return views.RenderSettings(data)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
