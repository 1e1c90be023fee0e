package views

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rivo/tview"

	"github.com/agrilink/mcubus/internal/tui/ui"
	mcubusv1 "github.com/agrilink/mcubus/proto/mcubus/v1"
)

// ModuleList shows the modules registered with the daemon.
type ModuleList struct {
	*tview.Table
	theme *ui.Theme
}

// NewModuleList creates a new module registry table.
func NewModuleList(theme *ui.Theme) *ModuleList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0).
		SetBorders(false)
	table.SetBorder(true).SetTitle(" Modules ")
	table.SetBorderColor(theme.BorderColor)
	table.SetTitleColor(theme.TitleColor)

	return &ModuleList{Table: table, theme: theme}
}

// Update refreshes the table with new registrations.
func (ml *ModuleList) Update(mods []*mcubusv1.ModuleInfo) {
	ml.Clear()
	for col, name := range []string{"Module", "Type", "Peer", "Registered", "Metadata"} {
		ml.SetCell(0, col, tview.NewTableCell(" "+name).SetSelectable(false).SetTextColor(ml.theme.TableHeaderFg))
	}

	for i, m := range mods {
		row := i + 1
		registered := ""
		if m.RegisteredAt != nil {
			registered = m.RegisteredAt.AsTime().Local().Format("2006-01-02 15:04:05")
		}
		ml.SetCell(row, 0, tview.NewTableCell(" "+sanitizeForTerminal(m.ModuleId)).SetExpansion(1))
		ml.SetCell(row, 1, tview.NewTableCell(" "+sanitizeForTerminal(m.ModuleType)).SetExpansion(1))
		ml.SetCell(row, 2, tview.NewTableCell(" "+sanitizeForTerminal(m.Peer)).SetExpansion(1))
		ml.SetCell(row, 3, tview.NewTableCell(" "+registered))
		ml.SetCell(row, 4, tview.NewTableCell(" "+sanitizeForTerminal(formatMetadata(m.Metadata))).SetExpansion(2))
	}
	ml.SetTitle(fmt.Sprintf(" Modules [%d] ", len(mods)))
}

func formatMetadata(md map[string]string) string {
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+md[k])
	}
	return strings.Join(parts, " ")
}
