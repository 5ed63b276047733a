// Package manager orchestrates popups: it owns the popup stack, the pending
// queue and the shared overlay, and publishes lifecycle events.
package manager

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/popstack/internal/config"
	"github.com/jmylchreest/popstack/internal/model"
	"github.com/jmylchreest/popstack/internal/overlay"
	"github.com/jmylchreest/popstack/internal/popup"
	"github.com/jmylchreest/popstack/internal/queue"
	"github.com/jmylchreest/popstack/internal/stack"
)

// Request errors.
var (
	ErrNotInitialized = errors.New("popup manager is not initialized")
	ErrNilPopup       = errors.New("popup is nil")
	ErrAlreadyActive  = errors.New("popup is already active")
)

// tracked holds the manager's bookkeeping for one popup.
type tracked struct {
	state popup.State
	since time.Time
}

// Manager arbitrates which popup is on top, keeps the overlay directly
// beneath it, and queues popups requested while the screen is busy.
//
// Manager is driven from a single goroutine. Popups may call back into it
// synchronously from their hooks. Subscriptions may be taken and drained
// from any goroutine.
type Manager struct {
	logger *slog.Logger
	now    func() time.Time

	stack   *stack.Stack
	queue   *queue.Queue
	overlay *overlay.Controller

	popups  map[string]*tracked // Keyed by popup ID, stack and queue only
	current popup.Popup
	showing bool

	sortingOrder        int
	defaultSortingOrder int

	subMu       sync.Mutex
	subscribers []chan Event
	eventBuffer int
	closed      bool
}

// New creates a popup manager.
func New(cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	buffer := cfg.Events.Buffer
	if buffer < 1 {
		buffer = config.DefaultEventBuffer
	}

	return &Manager{
		logger:              logger,
		now:                 time.Now,
		stack:               stack.New(cfg.Stack.SiblingBase),
		queue:               queue.New(),
		overlay:             overlay.NewController(cfg.OverlayMode(), logger),
		popups:              make(map[string]*tracked),
		sortingOrder:        cfg.Canvas.SortingOrder,
		defaultSortingOrder: cfg.Canvas.SortingOrder,
		eventBuffer:         buffer,
	}
}

// SetClock replaces the time source used for event and snapshot timestamps.
func (m *Manager) SetClock(now func() time.Time) {
	if now != nil {
		m.now = now
	}
}

// Request opens p, or queues it if another popup is showing.
// Queued popups are hidden and activated in request order once the stack
// empties. Requesting a popup that is already queued is a no-op.
func (m *Manager) Request(p popup.Popup) error {
	if m == nil {
		return ErrNotInitialized
	}
	if p == nil {
		return ErrNilPopup
	}
	if m.stack.Contains(p) {
		return ErrAlreadyActive
	}
	if m.queue.Contains(p) {
		m.logger.Debug("popup already queued", "popup_id", p.ID(), "kind", p.Kind())
		return nil
	}

	if !m.busy() {
		m.activate(p)
		return nil
	}

	m.queue.Enqueue(p)
	m.popups[p.ID()] = &tracked{state: popup.StateQueued, since: m.now()}
	if v, ok := p.(popup.Visibility); ok {
		v.SetVisible(false)
	}
	m.logger.Debug("popup queued", "popup_id", p.ID(), "kind", p.Kind(), "queue_size", m.queue.Len())
	return nil
}

// Open activates p immediately, layering it on top of any popup already
// showing. A queued popup is taken out of the queue first.
func (m *Manager) Open(p popup.Popup) error {
	if m == nil {
		return ErrNotInitialized
	}
	if p == nil {
		return ErrNilPopup
	}
	if m.stack.Contains(p) {
		return ErrAlreadyActive
	}

	if m.queue.Remove(p) {
		if v, ok := p.(popup.Visibility); ok {
			v.SetVisible(true)
		}
	}
	m.activate(p)
	return nil
}

// busy reports whether a new request must wait in the queue. Only a popup
// that has finished opening makes the screen busy; requests made while the
// first popup is still animating in are layered on top of it.
func (m *Manager) busy() bool {
	return m.showing
}

// activate pushes p and starts its open transition.
func (m *Manager) activate(p popup.Popup) {
	sibling := m.stack.Push(p)
	m.popups[p.ID()] = &tracked{state: popup.StateActivating, since: m.now()}

	// Keep a visible overlay directly under the new top while it animates in
	if m.overlay.Visible() {
		m.overlay.SetActive(sibling, false)
	}

	m.logger.Debug("popup activating",
		"popup_id", p.ID(),
		"kind", p.Kind(),
		"sibling_index", sibling,
		"depth", m.stack.Len(),
	)
	p.Activate()
}

// OnOpened is called by a popup once its open transition has finished.
// Callbacks for popups that are not activating are ignored.
func (m *Manager) OnOpened(p popup.Popup) {
	if p == nil {
		return
	}
	t, ok := m.popups[p.ID()]
	if !ok || t.state != popup.StateActivating {
		m.logger.Warn("ignoring open callback", "popup_id", p.ID(), "state", m.State(p).String())
		return
	}

	m.showing = true
	m.overlay.SetActive(m.stack.TopSibling(), true)

	// A newer popup was layered on top while this one animated in
	if !m.stack.IsTop(p) {
		t.state = popup.StateLayered
		m.logger.Debug("popup opened below newer popup", "popup_id", p.ID(), "kind", p.Kind())
		m.publish(EventOpen, p)
		return
	}

	if prev := m.current; prev != nil && prev.ID() != p.ID() {
		if pt, ok := m.popups[prev.ID()]; ok && pt.state == popup.StateTop {
			pt.state = popup.StateLayered
		}
	}
	m.current = p
	t.state = popup.StateTop

	m.logger.Debug("popup opened", "popup_id", p.ID(), "kind", p.Kind(), "depth", m.stack.Len())
	p.OnBecameTop()
	m.publish(EventOpen, p)
}

// OnClosed is called by a popup once its close transition has finished.
// Callbacks for popups not on the stack are ignored.
func (m *Manager) OnClosed(p popup.Popup) {
	if p == nil {
		return
	}
	if !m.stack.Contains(p) {
		m.logger.Warn("ignoring close callback for popup not on stack", "popup_id", p.ID())
		return
	}
	m.finishClose(p)
}

// Close starts the animated close of p, which need not be the top.
// Returns false if p is not on the stack or is already closing.
func (m *Manager) Close(p popup.Popup) bool {
	if p == nil || !m.stack.Contains(p) {
		return false
	}
	t := m.popups[p.ID()]
	if t.state == popup.StateClosing {
		return false
	}

	t.state = popup.StateClosing
	m.logger.Debug("popup closing", "popup_id", p.ID(), "kind", p.Kind())
	p.Hide()
	return true
}

// ForceClose hides p synchronously without a transition and removes it
// from the stack as if its close callback had fired.
// Returns false if p is not on the stack.
func (m *Manager) ForceClose(p popup.Popup) bool {
	if p == nil || !m.stack.Contains(p) {
		return false
	}

	m.popups[p.ID()].state = popup.StateClosing
	p.ForceHide()
	// ForceHide may have re-entered through OnClosed
	if m.stack.Contains(p) {
		m.finishClose(p)
	}
	return true
}

// finishClose removes p from the stack, promotes the new top, and services
// the queue once the stack is empty.
func (m *Manager) finishClose(p popup.Popup) {
	wasTop, _ := m.stack.Remove(p)
	delete(m.popups, p.ID())
	if m.current != nil && m.current.ID() == p.ID() {
		m.current = nil
	}

	m.overlay.SetActive(m.stack.TopSibling(), false)

	var promoted popup.Popup
	if top := m.stack.Top(); wasTop && top != nil {
		if t := m.popups[top.ID()]; t.state == popup.StateLayered {
			t.state = popup.StateTop
			m.current = top
			promoted = top
		}
	}

	m.logger.Debug("popup closed",
		"popup_id", p.ID(),
		"kind", p.Kind(),
		"depth", m.stack.Len(),
		"queue_size", m.queue.Len(),
	)

	if promoted != nil {
		promoted.OnBecameTop()
	}
	m.publish(EventClose, p)

	if m.stack.Len() > 0 {
		return
	}

	if next, ok := m.queue.Dequeue(); ok {
		// Showing stays set so requests made meanwhile keep queueing
		m.logger.Debug("servicing queue", "popup_id", next.ID(), "queue_size", m.queue.Len())
		if v, ok := next.(popup.Visibility); ok {
			v.SetVisible(true)
		}
		m.activate(next)
		return
	}

	m.showing = false
	m.logger.Debug("all popups closed")
	m.publish(EventAllClosed, nil)
}

// CancelQueued removes a popup that has not been activated yet.
// Returns false if p was not queued.
func (m *Manager) CancelQueued(p popup.Popup) bool {
	if !m.queue.Remove(p) {
		return false
	}
	delete(m.popups, p.ID())
	m.logger.Debug("queued popup cancelled", "popup_id", p.ID(), "queue_size", m.queue.Len())
	return true
}

// CloseAll force-hides every popup top to bottom, releases every tracked
// popup, empties the queue, restores the sorting order and hides the
// overlay. No open or close events are raised; all-closed is raised once
// if anything was closed.
func (m *Manager) CloseAll() {
	closed := m.stack.Len() + m.queue.Len()

	for {
		p, ok := m.stack.Pop()
		if !ok {
			break
		}
		delete(m.popups, p.ID())
		p.ForceHide()
		release(p)
	}
	for _, p := range m.queue.Drain() {
		delete(m.popups, p.ID())
		release(p)
	}

	m.stack.Reset()
	m.current = nil
	m.showing = false
	m.sortingOrder = m.defaultSortingOrder
	m.overlay.Reset()

	if closed == 0 {
		return
	}
	m.logger.Debug("closed all popups", "count", closed)
	m.publish(EventAllClosed, nil)
}

func release(p popup.Popup) {
	if r, ok := p.(popup.Releaser); ok {
		r.Release()
	}
}

// SequenceHidePopup closes the most recently opened popup that is not
// already closing, for back-button handling. With nothing open it forces
// the overlay hidden and clears the showing flag.
// Returns whether the stack is still non-empty.
func (m *Manager) SequenceHidePopup() bool {
	if m.stack.Len() == 0 {
		m.overlay.HideFade()
		m.showing = false
		return false
	}

	var target popup.Popup
	for _, p := range m.stack.Popups() {
		if m.popups[p.ID()].state != popup.StateClosing {
			target = p
		}
	}
	if target != nil {
		m.Close(target)
	}
	return m.stack.Len() > 0
}

// OnClickOverlay raises overlay-clicked with the top popup.
// Whether the click closes it is left to subscribers.
func (m *Manager) OnClickOverlay() {
	top := m.stack.Top()
	if top == nil {
		m.logger.Debug("overlay clicked with no popup")
		return
	}
	m.publish(EventOverlayClicked, top)
}

// SetSortingOrder changes the canvas sorting order.
func (m *Manager) SetSortingOrder(order int) {
	m.sortingOrder = order
}

// ResetOrder restores the configured sorting order.
func (m *Manager) ResetOrder() {
	m.sortingOrder = m.defaultSortingOrder
}

// SortingOrder returns the canvas sorting order.
func (m *Manager) SortingOrder() int {
	return m.sortingOrder
}

// EnableFadeBackground forces the overlay visible until the next stack change.
func (m *Manager) EnableFadeBackground() {
	m.overlay.EnableFadeBackground()
}

// DisableFadeBackground forces the overlay hidden until the next stack change.
func (m *Manager) DisableFadeBackground() {
	m.overlay.DisableFadeBackground()
}

// HasPopup reports whether the manager considers the screen busy with a
// popup. It turns true when the first popup finishes opening.
func (m *Manager) HasPopup() bool {
	return m.showing
}

// Current returns the interactive top popup, or nil.
func (m *Manager) Current() popup.Popup {
	return m.current
}

// TopPopupIndex returns the stack depth plus one.
func (m *Manager) TopPopupIndex() int {
	return m.stack.Len() + 1
}

// Depth returns the number of popups on the stack.
func (m *Manager) Depth() int {
	return m.stack.Len()
}

// QueueLen returns the number of queued popups.
func (m *Manager) QueueLen() int {
	return m.queue.Len()
}

// State returns the lifecycle state of p.
func (m *Manager) State(p popup.Popup) popup.State {
	if p == nil {
		return popup.StateInactive
	}
	if t, ok := m.popups[p.ID()]; ok {
		return t.state
	}
	return popup.StateInactive
}

// SiblingIndex returns the sibling index of a stacked popup.
func (m *Manager) SiblingIndex(p popup.Popup) (int, bool) {
	return m.stack.SiblingIndex(p)
}

// Overlay returns the overlay controller. Callers must not mutate it.
func (m *Manager) Overlay() *overlay.Controller {
	return m.overlay
}

// Stacked returns the stacked popups, bottom first.
func (m *Manager) Stacked() []popup.Popup {
	return m.stack.Popups()
}

// Queued returns the queued popups, next first.
func (m *Manager) Queued() []popup.Popup {
	var ps []popup.Popup
	m.queue.Each(func(p popup.Popup) {
		ps = append(ps, p)
	})
	return ps
}

// UpdateConfig applies a reloaded configuration. The overlay follows the
// new mode at once; the sorting baseline and sibling base apply from the
// next reset.
func (m *Manager) UpdateConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}

	m.overlay.SetMode(cfg.OverlayMode())
	if m.showing && m.stack.Len() > 0 {
		m.overlay.SetActive(m.stack.TopSibling(), true)
	}

	m.defaultSortingOrder = cfg.Canvas.SortingOrder
	m.stack.SetBase(cfg.Stack.SiblingBase)

	m.subMu.Lock()
	if cfg.Events.Buffer > 0 {
		m.eventBuffer = cfg.Events.Buffer
	}
	m.subMu.Unlock()

	m.logger.Info("configuration applied",
		"overlay_mode", cfg.OverlayMode().String(),
		"sorting_order", cfg.Canvas.SortingOrder,
	)
}

// titled is implemented by popups with a display title.
type titled interface {
	Title() string
}

// Snapshot returns a point-in-time view of the stack, queue and overlay.
func (m *Manager) Snapshot() model.Snapshot {
	snap := model.Snapshot{
		Stack: make([]model.PopupView, 0, m.stack.Len()),
		Queue: make([]model.PopupView, 0, m.queue.Len()),
		Overlay: model.OverlayView{
			Visible:      m.overlay.Visible(),
			SiblingIndex: m.overlay.SiblingIndex(),
			Mode:         m.overlay.Mode().String(),
			Forced:       m.overlay.Forced(),
		},
		HasPopup:      m.showing,
		SortingOrder:  m.sortingOrder,
		TopPopupIndex: m.TopPopupIndex(),
		TakenAt:       m.now(),
	}

	m.stack.Each(func(p popup.Popup, sibling int) {
		snap.Stack = append(snap.Stack, m.view(p, sibling))
	})
	m.queue.Each(func(p popup.Popup) {
		snap.Queue = append(snap.Queue, m.view(p, -1))
	})
	if m.current != nil {
		snap.Current = m.current.ID()
	}
	return snap
}

func (m *Manager) view(p popup.Popup, sibling int) model.PopupView {
	v := model.PopupView{
		ID:           p.ID(),
		Kind:         string(p.Kind()),
		State:        m.State(p).String(),
		SiblingIndex: sibling,
	}
	if t, ok := m.popups[p.ID()]; ok {
		v.Since = t.since
	}
	if l, ok := p.(titled); ok {
		v.Label = l.Title()
	}
	return v
}
