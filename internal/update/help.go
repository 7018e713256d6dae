package update

import "wellnessd/internal/views"

const helpMarkdown = `# wellnessd

Periodic water and stand-up reminders for people who forget both.

## Views

- **1** dashboard
- **2** settings
- **3** stats
- **?** toggle this help
- **q** quit

## Dashboard

- **tab / up / down** select reminder
- **space** start, pause, or resume the selected reminder
- **enter / a** acknowledge a due reminder (counts toward the daily goal)
- **z** snooze a due reminder
- **x** stop the selected reminder
- **l** log a drink or stand-up without a reminder

## Settings

- **tab** next field, **enter** save, **esc** discard

Intervals changed while a reminder is running keep their elapsed
fraction. Reminders left unacknowledged auto-restart after the grace
period without counting toward the goal.
`

func (m Model) renderHelpView() string {
	return views.RenderHelp(helpMarkdown)
}
