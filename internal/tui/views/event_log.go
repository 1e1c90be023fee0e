package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/agrilink/mcubus/internal/tui/model"
	"github.com/agrilink/mcubus/internal/tui/ui"
)

// EventLog lists control changes and alerts, newest last.
type EventLog struct {
	*tview.TextView
	theme  *ui.Theme
	paused bool
}

// NewEventLog creates a new event log view.
func NewEventLog(theme *ui.Theme) *EventLog {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true).SetTitle(" Control / Alerts ")
	tv.SetBorderColor(theme.BorderColor)
	tv.SetTitleColor(theme.TitleColor)

	return &EventLog{TextView: tv, theme: theme}
}

// TogglePause freezes or resumes rendering and reports the new state.
func (el *EventLog) TogglePause() bool {
	el.paused = !el.paused
	if el.paused {
		el.SetTitle(" Control / Alerts (paused) ")
	} else {
		el.SetTitle(" Control / Alerts ")
	}
	return el.paused
}

// Update refreshes the log with new entries.
func (el *EventLog) Update(entries []model.LogEntry) {
	if el.paused {
		return
	}
	el.Clear()
	for _, e := range entries {
		_, _ = fmt.Fprintln(el, el.format(e))
	}
	el.ScrollToEnd()
}

func (el *EventLog) format(e model.LogEntry) string {
	color := el.theme.ControlColor
	label := "CTRL"
	if e.Kind == "alert" {
		color = el.theme.Severity(e.Severity)
		label = "ALRT"
	}
	return fmt.Sprintf("[::d]%s[-:-:-] %s%s[-] [::b]%s[-:-:-] %s",
		e.Time.Format("15:04:05"),
		ui.Tag(color), label,
		sanitizeForTerminal(e.ModuleID),
		sanitizeForTerminal(e.Text),
	)
}
