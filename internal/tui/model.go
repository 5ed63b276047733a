// Package tui provides the BubbleTea-based terminal host for the popup manager.
package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/popstack/internal/config"
	"github.com/jmylchreest/popstack/internal/manager"
	"github.com/jmylchreest/popstack/internal/model"
	"github.com/jmylchreest/popstack/internal/overlay"
	"github.com/jmylchreest/popstack/internal/popup"
)

// maxLogEntries caps the event log shown under the stack.
const maxLogEntries = 8

// orderStep is how far the raise key moves the canvas sorting order.
const orderStep = 10

// Model is the main TUI model. It owns a manager and drives popup
// transitions from a frame tick, so every manager call happens inside Update.
type Model struct {
	// Configuration
	cfg    *config.Config
	logger *slog.Logger

	// Popup machinery
	manager  *manager.Manager
	registry *popup.Registry
	frames   *popup.Frames
	kinds    []popup.Kind
	dialogs  map[string]*popup.Dialog // By popup ID, for rendering bodies
	events   <-chan manager.Event
	fading   bool

	// Components
	help help.Model
	keys KeyMap

	// State
	log      []manager.Event
	width    int
	height   int
	ready    bool
	showHelp bool
	now      func() time.Time

	// Status message
	statusMsg string
	statusErr bool
}

// New creates a TUI model with its own manager.
func New(cfg *config.Config, logger *slog.Logger) (Model, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := Model{
		cfg:      cfg,
		logger:   logger,
		manager:  manager.New(cfg, logger),
		frames:   popup.NewFrames(),
		dialogs:  make(map[string]*popup.Dialog),
		help:     help.New(),
		keys:     DefaultKeyMap(),
		showHelp: cfg.TUI.ShowHelp,
		now:      time.Now,
	}
	if err := m.buildRegistry(cfg); err != nil {
		m.manager.Shutdown()
		return Model{}, err
	}
	m.events = m.manager.Subscribe()
	return m, nil
}

// buildRegistry registers a dialog kind per configured template, each
// animated on the model's frame clock.
func (m *Model) buildRegistry(cfg *config.Config) error {
	frames := m.frames
	reg := popup.NewRegistry()
	err := reg.RegisterTemplates(cfg.Templates(), func(t popup.Template) popup.Transition {
		return frames.Transition(t.Open, t.Close)
	})
	if err != nil {
		return err
	}
	m.registry = reg
	m.kinds = reg.Kinds()
	return nil
}

// Close releases the manager and its event subscriptions.
func (m Model) Close() {
	m.manager.Shutdown()
}

// Manager returns the manager driven by the model.
func (m Model) Manager() *manager.Manager {
	return m.manager
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.tick(),
		m.waitForEvent,
	)
}

// frameMsg advances popup transitions by one frame.
type frameMsg time.Time

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.cfg.TUI.FrameInterval.Duration(), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// eventMsg carries one manager event into Update.
type eventMsg manager.Event

// waitForEvent waits for the next manager event.
func (m Model) waitForEvent() tea.Msg {
	if m.events == nil {
		return nil
	}
	ev, ok := <-m.events
	if !ok {
		return nil
	}
	return eventMsg(ev)
}

// ConfigMsg delivers a reloaded configuration to a running program.
type ConfigMsg struct {
	Config *config.Config
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case frameMsg:
		m.frames.Advance(m.cfg.TUI.FrameInterval.Duration())
		return m, m.tick()

	case eventMsg:
		return m.handleEvent(manager.Event(msg))

	case ConfigMsg:
		return m.applyConfig(msg.Config)

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}

	return m, nil
}

func (m Model) handleEvent(ev manager.Event) (tea.Model, tea.Cmd) {
	m.log = append(m.log, ev)
	if len(m.log) > maxLogEntries {
		m.log = m.log[len(m.log)-maxLogEntries:]
	}

	switch ev.Type {
	case manager.EventOverlayClicked:
		// Clicking the backdrop dismisses the popup above it
		m.manager.Close(ev.Popup)
	case manager.EventClose:
		if ev.Popup != nil {
			delete(m.dialogs, ev.Popup.ID())
		}
	case manager.EventAllClosed:
		// Popups requested after the event was published are live again
		live := make(map[string]struct{})
		for _, p := range m.manager.Stacked() {
			live[p.ID()] = struct{}{}
		}
		for _, p := range m.manager.Queued() {
			live[p.ID()] = struct{}{}
		}
		for id := range m.dialogs {
			if _, ok := live[id]; !ok {
				delete(m.dialogs, id)
			}
		}
	}

	return m, m.waitForEvent
}

func (m Model) applyConfig(cfg *config.Config) (tea.Model, tea.Cmd) {
	if cfg == nil {
		return m, nil
	}
	if err := m.buildRegistry(cfg); err != nil {
		m.logger.Warn("reloaded config rejected", "error", err)
		return m, status("Config rejected: "+err.Error(), true)
	}
	m.cfg = cfg
	m.manager.UpdateConfig(cfg)
	return m, status("Config reloaded", false)
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Request):
		return m.request(int(msg.String()[0] - '1'))

	case key.Matches(msg, m.keys.Promote):
		queued := m.manager.Queued()
		if len(queued) == 0 {
			return m, status("Queue is empty", false)
		}
		if err := m.manager.Open(queued[0]); err != nil {
			return m, status(err.Error(), true)
		}
		return m, nil

	case key.Matches(msg, m.keys.Back):
		m.manager.SequenceHidePopup()
		return m, nil

	case key.Matches(msg, m.keys.Force):
		stacked := m.manager.Stacked()
		if len(stacked) == 0 {
			return m, status("Nothing to close", false)
		}
		m.manager.ForceClose(stacked[len(stacked)-1])
		return m, nil

	case key.Matches(msg, m.keys.CloseAll):
		m.manager.CloseAll()
		return m, nil

	case key.Matches(msg, m.keys.Click):
		m.manager.OnClickOverlay()
		return m, nil

	case key.Matches(msg, m.keys.ToggleMode):
		next := *m.cfg
		if m.manager.Overlay().Mode() == overlay.ModeDefault {
			next.Overlay.Mode = overlay.ModeCustom.String()
		} else {
			next.Overlay.Mode = overlay.ModeDefault.String()
		}
		m.cfg = &next
		m.manager.UpdateConfig(m.cfg)
		return m, nil

	case key.Matches(msg, m.keys.ToggleFade):
		m.fading = !m.fading
		if m.fading {
			m.manager.EnableFadeBackground()
		} else {
			m.manager.DisableFadeBackground()
		}
		return m, nil

	case key.Matches(msg, m.keys.RaiseOrder):
		m.manager.SetSortingOrder(m.manager.SortingOrder() + orderStep)
		return m, nil

	case key.Matches(msg, m.keys.ResetOrder):
		m.manager.ResetOrder()
		return m, nil
	}

	return m, nil
}

// request creates a popup of the idx-th kind and hands it to the manager.
func (m Model) request(idx int) (tea.Model, tea.Cmd) {
	if idx < 0 || idx >= len(m.kinds) {
		return m, status(fmt.Sprintf("No popup kind bound to %d", idx+1), true)
	}

	p, err := m.registry.Create(m.kinds[idx], m.manager)
	if err != nil {
		return m, status(err.Error(), true)
	}
	if d, ok := p.(*popup.Dialog); ok {
		m.dialogs[p.ID()] = d
	}
	if err := m.manager.Request(p); err != nil {
		delete(m.dialogs, p.ID())
		return m, status(err.Error(), true)
	}
	if m.manager.State(p) == popup.StateQueued {
		return m, status(fmt.Sprintf("Queued %s (%d waiting)", m.kinds[idx], m.manager.QueueLen()), false)
	}
	return m, nil
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	topBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1)

	layeredBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("8")).
			Foreground(lipgloss.Color("7")).
			Padding(0, 1)

	transitionBoxStyle = layeredBoxStyle.
				BorderStyle(lipgloss.HiddenBorder()).
				Italic(true)

	overlayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	snap := m.manager.Snapshot()

	var b strings.Builder
	b.WriteString(headerStyle.Render("popstack"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("depth=%d queue=%d sorting_order=%d overlay=%s",
		snap.Depth(), len(snap.Queue), snap.SortingOrder, snap.Overlay.Mode)))
	b.WriteString("\n\n")

	b.WriteString(m.viewStack(snap))
	b.WriteString(m.viewQueue(snap))
	b.WriteString(m.viewLog())

	b.WriteString("\n")
	switch {
	case m.statusMsg != "" && m.statusErr:
		b.WriteString(errorStyle.Render(m.statusMsg))
	case m.statusMsg != "":
		b.WriteString(statusStyle.Render(m.statusMsg))
	case m.showHelp:
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

// viewStack draws popups top first with the overlay band in its sibling slot.
func (m Model) viewStack(snap model.Snapshot) string {
	if snap.Depth() == 0 {
		line := "no popups"
		if snap.Overlay.Visible {
			line += "  " + overlayStyle.Render("░ overlay ░")
		}
		return dimStyle.Render(line) + "\n"
	}

	var b strings.Builder
	now := m.now()
	for i := len(snap.Stack) - 1; i >= 0; i-- {
		v := snap.Stack[i]
		b.WriteString(lipgloss.NewStyle().MarginLeft(2 * i).Render(m.renderPopup(v, now)))
		b.WriteString("\n")

		if snap.Overlay.Visible && snap.Overlay.SiblingIndex == v.SiblingIndex-1 {
			band := strings.Repeat("░", 12)
			b.WriteString(overlayStyle.Render(fmt.Sprintf("%s overlay [%d] %s", band, snap.Overlay.SiblingIndex, band)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderPopup(v model.PopupView, now time.Time) string {
	title := fmt.Sprintf("[%d] %s", v.SiblingIndex, v.Name())
	meta := dimStyle.Render(fmt.Sprintf("%s · %s · %s", v.Kind, v.State, v.Age(now)))

	content := title + "\n" + meta
	if d, ok := m.dialogs[v.ID]; ok && d.Body() != "" {
		content += "\n" + d.Body()
	}

	switch v.State {
	case popup.StateTop.String():
		return topBoxStyle.Render(content)
	case popup.StateLayered.String():
		return layeredBoxStyle.Render(content)
	default:
		return transitionBoxStyle.Render(content)
	}
}

func (m Model) viewQueue(snap model.Snapshot) string {
	if len(snap.Queue) == 0 {
		return ""
	}
	return "\n" + dimStyle.Render("queued: ") + strings.Join(model.Names(snap.Queue), ", ") + "\n"
}

func (m Model) viewLog() string {
	if len(m.log) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n")
	for i := len(m.log) - 1; i >= 0; i-- {
		ev := m.log[i]
		b.WriteString(dimStyle.Render(fmt.Sprintf("%-14s", humanize.Time(ev.Time))))
		b.WriteString(" ")
		b.WriteString(ev.String())
		b.WriteString("\n")
	}
	return b.String()
}
