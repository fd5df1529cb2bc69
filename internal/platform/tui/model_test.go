package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/flapline/internal/config"
	"github.com/vovakirdan/flapline/internal/core"
	"github.com/vovakirdan/flapline/internal/sim"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestModel(t *testing.T) (Model, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	engine := sim.New(config.DefaultFlapConfig())
	m := NewModel(engine, nil, core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60})
	m.now = clock.now
	m.started = clock.t
	return m, clock
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm
}

var space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}

func TestModelFlapStartsRun(t *testing.T) {
	m, clock := newTestModel(t)

	clock.advance(100 * time.Millisecond)
	m = update(t, m, TickMsg(clock.t))
	if m.engine.Phase() != sim.NotStarted || m.engine.Frame() != 0 {
		t.Fatalf("engine moved without input: %s frame %d", m.engine.Phase(), m.engine.Frame())
	}

	m = update(t, m, space)
	clock.advance(50 * time.Millisecond)
	m = update(t, m, TickMsg(clock.t))
	if m.engine.Phase() != sim.Started {
		t.Fatalf("phase = %s, want started", m.engine.Phase())
	}
}

func TestModelRestartLockout(t *testing.T) {
	m, clock := newTestModel(t)
	m = update(t, m, space)

	for i := 0; i < 200 && !m.engine.Terminal(); i++ {
		clock.advance(50 * time.Millisecond)
		m = update(t, m, TickMsg(clock.t))
	}
	if m.engine.Phase() != sim.Crashed {
		t.Fatalf("phase = %s, want crashed", m.engine.Phase())
	}
	first := m.engine.RunID()

	m = update(t, m, space)
	if m.engine.Phase() != sim.Crashed {
		t.Fatal("flap restarted inside the lockout window")
	}
	if m.canRestart() {
		t.Error("canRestart during lockout")
	}

	clock.advance(m.lockout)
	if !m.canRestart() {
		t.Fatal("canRestart after lockout = false")
	}
	m = update(t, m, space)
	if m.engine.Phase() != sim.NotStarted || m.engine.Pending() != 1 {
		t.Fatalf("after restart: %s, pending %d", m.engine.Phase(), m.engine.Pending())
	}

	clock.advance(50 * time.Millisecond)
	m = update(t, m, TickMsg(clock.t))
	if m.engine.Phase() != sim.Started || m.engine.RunID() == first {
		t.Errorf("second run not started: %s %q", m.engine.Phase(), m.engine.RunID())
	}
}

func TestModelResetAbandonsRun(t *testing.T) {
	m, clock := newTestModel(t)
	m = update(t, m, space)
	for i := 0; i < 2; i++ {
		clock.advance(50 * time.Millisecond)
		m = update(t, m, TickMsg(clock.t))
	}
	if m.engine.Phase() != sim.Started {
		t.Fatalf("phase = %s, want started", m.engine.Phase())
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.engine.Phase() != sim.NotStarted || m.engine.Pending() != 0 {
		t.Errorf("after reset: %s, pending %d", m.engine.Phase(), m.engine.Pending())
	}
}

func TestModelQuit(t *testing.T) {
	m, _ := newTestModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("quit returned no command")
	}
	if v := next.(Model).View(); v != "" {
		t.Errorf("View after quit = %q", v)
	}
}

func TestModelViewAndResize(t *testing.T) {
	m, _ := newTestModel(t)
	if v := m.View(); !strings.Contains(v, "FLAPLINE") {
		t.Errorf("idle view missing title:\n%s", v)
	}

	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	if m.screen.Width() != 100 || m.screen.Height() != 30 {
		t.Errorf("screen = %dx%d", m.screen.Width(), m.screen.Height())
	}
}

func TestKeyMapper(t *testing.T) {
	km := NewKeyMapper()
	tests := []struct {
		msg  tea.KeyMsg
		want core.Action
	}{
		{space, core.ActionFlap},
		{tea.KeyMsg{Type: tea.KeyUp}, core.ActionFlap},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'w'}}, core.ActionFlap},
		{tea.KeyMsg{Type: tea.KeyEsc}, core.ActionReset},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit},
		{tea.KeyMsg{Type: tea.KeyCtrlS}, core.ActionShot},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}, core.ActionNone},
	}
	for _, tt := range tests {
		if got := km.MapKey(tt.msg); got != tt.want {
			t.Errorf("MapKey(%q) = %s, want %s", tt.msg.String(), got, tt.want)
		}
	}
}
