// Package tui is a terminal dashboard for the event bus: the latest sensor
// reading per module, a control/alert log and the module registry.
package tui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/agrilink/mcubus/internal/tui/client"
	"github.com/agrilink/mcubus/internal/tui/keys"
	"github.com/agrilink/mcubus/internal/tui/model"
	"github.com/agrilink/mcubus/internal/tui/ui"
	"github.com/agrilink/mcubus/internal/tui/views"
	mcubusv1 "github.com/agrilink/mcubus/proto/mcubus/v1"
)

const (
	pageDashboard = "dashboard"
	pageModules   = "modules"

	reconnectDelay = 2 * time.Second
)

// App is the main TUI application shell.
type App struct {
	app       *tview.Application
	pages     *tview.Pages
	vm        *model.ViewModel
	registry  *keys.Registry
	statusBar *views.StatusBar
	sensors   *views.SensorTable
	eventLog  *views.EventLog
	modules   *views.ModuleList
	filter    *mcubusv1.SubscribeRequest
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewApp creates the TUI application. filter narrows the event stream; nil
// subscribes to everything.
func NewApp(c *client.Client, filter *mcubusv1.SubscribeRequest) *App {
	ctx, cancel := context.WithCancel(context.Background())
	if filter == nil {
		filter = &mcubusv1.SubscribeRequest{}
	}
	theme := ui.DefaultTheme()

	a := &App{
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		vm:        model.NewViewModel(c),
		registry:  keys.NewRegistry(),
		statusBar: views.NewStatusBar(theme),
		sensors:   views.NewSensorTable(theme),
		eventLog:  views.NewEventLog(theme),
		modules:   views.NewModuleList(theme),
		filter:    filter,
		ctx:       ctx,
		cancel:    cancel,
	}

	a.statusBar.SetAddr(c.Addr)
	a.setupBindings()
	a.setupLayout()
	a.statusBar.SetHints(a.registry.Hints(pageDashboard))

	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal("quit", &keys.Action{
		Rune: 'q', Key: tcell.KeyRune,
		Description: "q:quit", Visible: true,
		Handler: a.Stop,
	})
	a.registry.AddGlobal("modules", &keys.Action{
		Rune: 'm', Key: tcell.KeyRune,
		Description: "m:modules", Visible: true,
		Handler: a.showModules,
	})
	a.registry.AddGlobal("dashboard", &keys.Action{
		Rune: 'd', Key: tcell.KeyRune,
		Description: "d:dashboard", Visible: true,
		Handler: a.showDashboard,
	})
	a.registry.AddView(pageDashboard, "clear", &keys.Action{
		Rune: 'c', Key: tcell.KeyRune,
		Description: "c:clear", Visible: true,
		Handler: a.vm.ClearLog,
	})
	a.registry.AddView(pageDashboard, "pause", &keys.Action{
		Rune: 'p', Key: tcell.KeyRune,
		Description: "p:pause", Visible: true,
		Handler: func() {
			if a.eventLog.TogglePause() {
				a.vm.Flash.Set("Log paused", model.FlashInfo, 3*time.Second)
			}
		},
	})
	a.registry.AddView(pageModules, "refresh", &keys.Action{
		Rune: 'r', Key: tcell.KeyRune,
		Description: "r:refresh", Visible: true,
		Handler: func() { go a.loadModules() },
	})
}

func (a *App) setupLayout() {
	dashboard := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.sensors, 0, 1, true).
		AddItem(a.eventLog, 0, 1, false)

	a.pages.AddPage(pageDashboard, dashboard, true, true)
	a.pages.AddPage(pageModules, a.modules, true, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(root, true)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		currentPage, _ := a.pages.GetFrontPage()

		if event.Key() == tcell.KeyEscape && currentPage != pageDashboard {
			a.showDashboard()
			return nil
		}

		if a.registry.HandleEvent(currentPage, event) {
			return nil
		}
		return event
	})
}

func (a *App) showDashboard() {
	a.pages.SwitchToPage(pageDashboard)
	a.app.SetFocus(a.sensors)
	a.statusBar.SetHints(a.registry.Hints(pageDashboard))
}

func (a *App) showModules() {
	a.pages.SwitchToPage(pageModules)
	a.app.SetFocus(a.modules)
	a.statusBar.SetHints(a.registry.Hints(pageModules))
	go a.loadModules()
}

func (a *App) loadModules() {
	ctx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	if err := a.vm.LoadModules(ctx); err != nil {
		a.vm.Flash.Set("Load modules failed: "+err.Error(), model.FlashErr, 5*time.Second)
	}
}

// Run starts the TUI application.
func (a *App) Run() error {
	go a.watchLoop()
	go a.renderLoop()
	return a.app.Run()
}

// watchLoop keeps one event stream open, reconnecting after the daemon goes
// away.
func (a *App) watchLoop() {
	for a.ctx.Err() == nil {
		err := a.vm.Watch(a.ctx, a.filter)
		if a.ctx.Err() != nil {
			return
		}
		msg := "Stream closed by daemon, reconnecting"
		if err != nil {
			msg = "Stream error: " + err.Error()
		}
		a.vm.Flash.Set(msg, model.FlashWarn, reconnectDelay+time.Second)

		select {
		case <-time.After(reconnectDelay):
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *App) renderLoop() {
	// The ticker keeps the clock and the last-seen ages moving between events.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-a.vm.RefreshCh():
		case <-ticker.C:
		case <-a.ctx.Done():
			return
		}
		a.app.QueueUpdateDraw(a.render)
	}
}

func (a *App) render() {
	a.sensors.Update(a.vm.GetModules())
	a.eventLog.Update(a.vm.GetLog())
	if page, _ := a.pages.GetFrontPage(); page == pageModules {
		a.modules.Update(a.vm.GetRegistered())
	}
	a.statusBar.SetStream(a.vm.Connected(), a.vm.EventCount())
	a.statusBar.SetFlash(a.vm.Flash.Get())
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
