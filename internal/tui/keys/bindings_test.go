package keys

import (
	"slices"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestHandleEventPrefersView(t *testing.T) {
	r := NewRegistry()
	var got string
	r.AddGlobal("clear", &Action{Key: tcell.KeyRune, Rune: 'c', Handler: func() { got = "global" }})
	r.AddView("dashboard", "clear", &Action{Key: tcell.KeyRune, Rune: 'c', Handler: func() { got = "view" }})

	ev := tcell.NewEventKey(tcell.KeyRune, 'c', tcell.ModNone)
	if !r.HandleEvent("dashboard", ev) || got != "view" {
		t.Errorf("dashboard: handled by %q, want view", got)
	}
	if !r.HandleEvent("modules", ev) || got != "global" {
		t.Errorf("modules: handled by %q, want global", got)
	}
	if r.HandleEvent("modules", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)) {
		t.Error("unbound key should not be handled")
	}
}

func TestHintsSortedAndVisibleOnly(t *testing.T) {
	r := NewRegistry()
	r.AddGlobal("quit", &Action{Description: "q:quit", Visible: true})
	r.AddGlobal("hidden", &Action{Description: "h:hidden"})
	r.AddView("dashboard", "clear", &Action{Description: "c:clear", Visible: true})

	want := []string{"c:clear", "q:quit"}
	if got := r.Hints("dashboard"); !slices.Equal(got, want) {
		t.Errorf("Hints = %v, want %v", got, want)
	}
}
