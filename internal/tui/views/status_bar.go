package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/rivo/tview"

	"github.com/agrilink/mcubus/internal/tui/model"
	"github.com/agrilink/mcubus/internal/tui/ui"
)

// StatusBar displays the daemon address, stream state and key hints.
type StatusBar struct {
	*tview.TextView
	theme      *ui.Theme
	addr       string
	connected  bool
	events     int
	hints      []string
	flash      string
	flashLevel model.FlashLevel
}

// NewStatusBar creates a new status bar.
func NewStatusBar(theme *ui.Theme) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv, theme: theme}
}

// SetAddr updates the daemon address display.
func (sb *StatusBar) SetAddr(addr string) {
	sb.addr = addr
	sb.render()
}

// SetStream updates the connection indicator and event counter.
func (sb *StatusBar) SetStream(connected bool, events int) {
	sb.connected = connected
	sb.events = events
	sb.render()
}

// SetHints sets the key hints shown on the right.
func (sb *StatusBar) SetHints(hints []string) {
	sb.hints = hints
	sb.render()
}

// SetFlash sets a temporary message.
func (sb *StatusBar) SetFlash(msg string, level model.FlashLevel) {
	sb.flash = msg
	sb.flashLevel = level
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()
	_, _ = fmt.Fprint(sb, sb.line(time.Now()))
}

func (sb *StatusBar) line(now time.Time) string {
	conn := "[red]disconnected[-]"
	if sb.connected {
		conn = "[green]streaming[-]"
	}

	line := fmt.Sprintf(" [::b]%s[-:-:-] | %s | %s%d events[-] | %s",
		sanitizeForTerminal(sb.addr), conn, ui.Tag(sb.theme.CounterColor), sb.events, now.Format("15:04"))
	if len(sb.hints) > 0 {
		line += " | " + strings.Join(sb.hints, " ")
	}
	if sb.flash != "" {
		color := sb.theme.FlashInfoColor
		switch sb.flashLevel {
		case model.FlashWarn:
			color = sb.theme.FlashWarnColor
		case model.FlashErr:
			color = sb.theme.FlashErrColor
		}
		line += fmt.Sprintf(" | %s%s[-]", ui.Tag(color), sanitizeForTerminal(sb.flash))
	}
	return line
}
