package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/flapline/internal/core"
	"github.com/vovakirdan/flapline/internal/sim"
	"github.com/vovakirdan/flapline/internal/storage"
)

// Model is the Bubble Tea model driving one engine.
type Model struct {
	engine    *sim.Engine
	screen    *core.Screen
	store     *storage.Store
	config    core.RuntimeConfig
	keyMapper *KeyMapper
	lockout   time.Duration
	channel   string

	now      func() time.Time
	started  time.Time
	endedAt  time.Time
	terminal bool
	best     int
	quitting bool
}

// NewModel creates a model for engine. store may be nil.
func NewModel(engine *sim.Engine, store *storage.Store, cfg core.RuntimeConfig) Model {
	session := engine.Config().Session
	m := Model{
		engine:    engine,
		screen:    core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		store:     store,
		config:    cfg,
		keyMapper: NewKeyMapper(),
		lockout:   session.RestartLockout,
		channel:   session.Channel,
		now:       time.Now,
	}
	m.started = m.now()
	if store != nil {
		if high, err := store.HighScore(m.channel); err == nil {
			m.best = high
		}
	}
	return m
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		m.advance()
		return m, tickCmd(m.config.TickRate)
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKey(msg) {
	case core.ActionQuit:
		m.quitting = true
		return m, tea.Quit
	case core.ActionFlap:
		m.flap()
	case core.ActionReset:
		m.engine.Abandon()
		m.terminal = false
	case core.ActionShot:
		m.saveScreenshot()
	}
	return m, nil
}

// flap queues a flap. After a finished run it first restarts the engine,
// but only once the lockout has passed.
func (m *Model) flap() {
	if m.engine.Terminal() {
		if !m.canRestart() {
			return
		}
		m.engine.Restart()
		m.terminal = false
	}
	m.engine.EnqueueFlap()
}

func (m Model) canRestart() bool {
	return m.engine.Terminal() && m.now().Sub(m.endedAt) >= m.lockout
}

// advance feeds elapsed wall time into the engine and notes run endings.
func (m *Model) advance() {
	elapsed := m.now().Sub(m.started)
	snap := m.engine.Advance(float64(elapsed)/float64(time.Millisecond), false)

	if snap.Phase.Terminal() && !m.terminal {
		m.terminal = true
		m.endedAt = m.now()
		m.best = max(m.best, snap.Score)
	}
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	DrawWorld(m.screen, m.engine, m.best, m.canRestart())

	dir := filepath.Join(os.Getenv("HOME"), ".flapline", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.channel, timestamp))

	//nolint:errcheck // Best-effort save, the run continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	DrawWorld(m.screen, m.engine, m.best, m.canRestart())
	return RenderScreen(m.screen)
}

// Run starts the Bubble Tea program for engine.
func Run(engine *sim.Engine, store *storage.Store, cfg core.RuntimeConfig) error {
	p := tea.NewProgram(
		NewModel(engine, store, cfg),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
