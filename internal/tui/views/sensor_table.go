package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"github.com/agrilink/mcubus/internal/tui/model"
	"github.com/agrilink/mcubus/internal/tui/ui"
)

// StaleAfter greys out modules that have been silent this long.
const StaleAfter = 30 * time.Second

var sensorColumns = []string{"Module", "Temp °C", "Humidity %", "Soil %", "Light lx", "Water %", "pH", "Events", "Last Seen"}

// SensorTable shows the latest reading of every module (K9s-inspired table).
type SensorTable struct {
	*tview.Table
	theme *ui.Theme
	now   func() time.Time
}

// NewSensorTable creates a new sensor table.
func NewSensorTable(theme *ui.Theme) *SensorTable {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 1).
		SetBorders(false)
	table.SetBorder(true).SetTitle(" Sensors ")
	table.SetBorderColor(theme.BorderColor)
	table.SetTitleColor(theme.TitleColor)

	return &SensorTable{Table: table, theme: theme, now: time.Now}
}

// Update refreshes the table with new module states.
func (st *SensorTable) Update(mods []model.ModuleState) {
	st.Clear()
	for col, name := range sensorColumns {
		st.SetCell(0, col, tview.NewTableCell(" "+name).
			SetSelectable(false).
			SetTextColor(st.theme.TableHeaderFg).
			SetExpansion(1))
	}

	now := st.now()
	for i, m := range mods {
		row := i + 1
		color := st.theme.FgColor
		if now.Sub(m.LastSeen) > StaleAfter {
			color = st.theme.StaleColor
		}
		cells := []string{sanitizeForTerminal(m.ModuleID), "-", "-", "-", "-", "-", "-", fmt.Sprint(m.Events), formatAge(now, m.LastSeen)}
		if s := m.Sensor; s != nil {
			cells[1] = fmt.Sprintf("%.1f", s.Temperature)
			cells[2] = fmt.Sprintf("%.1f", s.Humidity)
			cells[3] = fmt.Sprintf("%.1f", s.SoilMoisture)
			cells[4] = fmt.Sprintf("%.0f", s.LightLevel)
			cells[5] = fmt.Sprintf("%.1f", s.WaterLevel)
			cells[6] = fmt.Sprintf("%.2f", s.PhValue)
		}
		for col, text := range cells {
			st.SetCell(row, col, tview.NewTableCell(" "+text).SetTextColor(color).SetExpansion(1))
		}
	}
	st.SetTitle(fmt.Sprintf(" Sensors [%d] ", len(mods)))
}

func formatAge(now, t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t).Round(time.Second)
	if d < time.Second {
		return "now"
	}
	return d.String() + " ago"
}
