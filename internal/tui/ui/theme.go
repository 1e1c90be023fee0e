package ui

import "github.com/gdamore/tcell/v2"

// Theme holds color constants for the TUI.
type Theme struct {
	BgColor          tcell.Color
	FgColor          tcell.Color
	BorderColor      tcell.Color
	TableHeaderFg    tcell.Color
	TitleColor       tcell.Color
	CounterColor     tcell.Color
	FlashInfoColor   tcell.Color
	FlashWarnColor   tcell.Color
	FlashErrColor    tcell.Color
	ControlColor     tcell.Color
	StaleColor       tcell.Color
	SeverityInfo     tcell.Color
	SeverityWarning  tcell.Color
	SeverityCritical tcell.Color
}

// DefaultTheme returns a k9s-inspired dark theme.
func DefaultTheme() *Theme {
	return &Theme{
		BgColor:          tcell.ColorBlack,
		FgColor:          tcell.ColorCadetBlue,
		BorderColor:      tcell.ColorDodgerBlue,
		TableHeaderFg:    tcell.ColorWhite,
		TitleColor:       tcell.ColorFuchsia,
		CounterColor:     tcell.ColorPapayaWhip,
		FlashInfoColor:   tcell.ColorNavajoWhite,
		FlashWarnColor:   tcell.ColorOrange,
		FlashErrColor:    tcell.ColorOrangeRed,
		ControlColor:     tcell.ColorAqua,
		StaleColor:       tcell.ColorGray,
		SeverityInfo:     tcell.ColorLightGreen,
		SeverityWarning:  tcell.ColorOrange,
		SeverityCritical: tcell.ColorRed,
	}
}

// Severity maps an alert severity to its color.
func (t *Theme) Severity(s string) tcell.Color {
	switch s {
	case "critical", "error":
		return t.SeverityCritical
	case "warning", "warn":
		return t.SeverityWarning
	default:
		return t.SeverityInfo
	}
}

// Tag renders c as a tview color tag.
func Tag(c tcell.Color) string {
	return "[" + c.String() + "]"
}
