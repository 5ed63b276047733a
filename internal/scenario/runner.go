package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmylchreest/popstack/internal/config"
	"github.com/jmylchreest/popstack/internal/manager"
	"github.com/jmylchreest/popstack/internal/model"
	"github.com/jmylchreest/popstack/internal/popup"
)

// Runner executes scripts, each against a fresh manager.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewRunner creates a runner using cfg for popup kinds and manager settings.
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Runner{cfg: cfg, logger: logger}
}

// tracedPopup records the hooks the manager invokes on a dialog.
type tracedPopup struct {
	*popup.Dialog
	name    string
	session *session
}

func (p *tracedPopup) Activate() {
	p.session.activations = append(p.session.activations, p.name)
	p.Dialog.Activate()
}

func (p *tracedPopup) ForceHide() {
	p.session.forceHidden = append(p.session.forceHidden, p.name)
	p.Dialog.ForceHide()
}

// session is the state of one script run.
type session struct {
	m       *manager.Manager
	events  <-chan manager.Event
	popups  map[string]*tracedPopup // By script name
	names   map[string]string       // Popup ID to script name
	ordered []*tracedPopup          // Declaration order

	activations []string
	forceHidden []string
	pending     []string // Events since the previous expect
	result      string   // Result of the previous step
}

// Run executes script and returns the trace. On failure the trace covers
// the steps run so far and the error is an *ExpectError, an invariant
// violation, or ctx's error.
func (r *Runner) Run(ctx context.Context, script *Script) (*model.Trace, error) {
	cfg, err := r.scriptConfig(script)
	if err != nil {
		return nil, err
	}

	m := manager.New(cfg, r.logger.With("scenario", script.Name))
	defer m.Shutdown()

	s := &session{
		m:      m,
		events: m.Subscribe(),
		popups: make(map[string]*tracedPopup, len(script.Popups)),
		names:  make(map[string]string, len(script.Popups)),
	}
	if err := s.createPopups(cfg, script.Popups); err != nil {
		return nil, err
	}

	trace := &model.Trace{Name: script.Name}
	for i, step := range script.Steps {
		if err := ctx.Err(); err != nil {
			return trace, err
		}

		entry, err := s.exec(i+1, step)
		trace.Entries = append(trace.Entries, entry)
		if err != nil {
			trace.Final = s.snapshot()
			return trace, err
		}
	}

	trace.Final = s.snapshot()
	return trace, nil
}

// scriptConfig applies the script's overrides to a copy of the runner config.
func (r *Runner) scriptConfig(script *Script) (*config.Config, error) {
	cfg := *r.cfg
	if script.Overlay != "" {
		cfg.Overlay.Mode = script.Overlay
	}
	if script.SortingOrder != nil {
		cfg.Canvas.SortingOrder = *script.SortingOrder
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", script.Name, err)
	}
	return &cfg, nil
}

func (s *session) createPopups(cfg *config.Config, decls []PopupDecl) error {
	manual := popup.NewRegistry()
	if err := manual.RegisterTemplates(cfg.Templates(), func(popup.Template) popup.Transition {
		return &popup.Manual{}
	}); err != nil {
		return err
	}
	instant := popup.NewRegistry()
	if err := instant.RegisterTemplates(cfg.Templates(), nil); err != nil {
		return err
	}

	for _, decl := range decls {
		kind := popup.Kind(decl.Kind)
		if kind == "" && len(cfg.Kinds) > 0 {
			kind = popup.Kind(cfg.Kinds[0].Name)
		}

		reg := manual
		if decl.Transition == TransitionInstant {
			reg = instant
		}

		p, err := reg.Create(kind, s.m)
		if err != nil {
			return fmt.Errorf("popup %q: %w", decl.Name, err)
		}
		d, ok := p.(*popup.Dialog)
		if !ok {
			return fmt.Errorf("popup %q: kind %q does not build dialogs", decl.Name, kind)
		}

		tp := &tracedPopup{Dialog: d, name: decl.Name, session: s}
		s.popups[decl.Name] = tp
		s.names[d.ID()] = decl.Name
		s.ordered = append(s.ordered, tp)
	}
	return nil
}

// exec runs one step and records it.
func (s *session) exec(n int, step Step) (model.TraceEntry, error) {
	p := s.popups[step.Popup]
	result := ""

	switch step.Action {
	case ActionRequest:
		result = errResult(s.m.Request(p))
	case ActionOpen:
		result = errResult(s.m.Open(p))
	case ActionFinish:
		result = strconv.FormatBool(finish(p))
	case ActionOpened:
		s.m.OnOpened(p)
	case ActionClosed:
		s.m.OnClosed(p)
	case ActionClose:
		result = strconv.FormatBool(s.m.Close(p))
	case ActionForceClose:
		result = strconv.FormatBool(s.m.ForceClose(p))
	case ActionCancel:
		result = strconv.FormatBool(s.m.CancelQueued(p))
	case ActionBack:
		result = strconv.FormatBool(s.m.SequenceHidePopup())
	case ActionCloseAll:
		s.m.CloseAll()
	case ActionClickOverlay:
		s.m.OnClickOverlay()
	case ActionSortingOrder:
		s.m.SetSortingOrder(step.Value)
	case ActionResetOrder:
		s.m.ResetOrder()
	case ActionFadeOn:
		s.m.EnableFadeBackground()
	case ActionFadeOff:
		s.m.DisableFadeBackground()
	case ActionSettle:
		result = strconv.Itoa(s.settle())
	case ActionExpect:
	}

	events := s.drainEvents()
	s.pending = append(s.pending, events...)

	snap := s.m.Snapshot()
	entry := model.TraceEntry{
		Step:     n,
		Action:   string(step.Action),
		Target:   step.Popup,
		Events:   events,
		Stack:    s.labels(snap.Stack),
		Queue:    s.labels(snap.Queue),
		Current:  s.names[snap.Current],
		HasPopup: snap.HasPopup,
		Overlay:  snap.Overlay.Visible,
		Result:   result,
	}
	if step.Action == ActionSortingOrder {
		entry.Target = strconv.Itoa(step.Value)
	}

	if err := snap.Validate(); err != nil {
		return entry, fmt.Errorf("step %d (line %d) %s: %w", n, step.Line, step, err)
	}

	if step.Action == ActionExpect {
		if err := s.check(n, step, snap); err != nil {
			return entry, err
		}
		s.pending = nil
		s.activations = nil
		s.forceHidden = nil
		return entry, nil
	}

	s.result = result
	return entry, nil
}

// check compares the expectation against the manager.
func (s *session) check(n int, step Step, snap model.Snapshot) error {
	o := observed{
		stack:        s.labels(snap.Stack),
		queue:        s.labels(snap.Queue),
		current:      s.names[snap.Current],
		hasPopup:     snap.HasPopup,
		overlay:      snap.Overlay.Visible,
		overlayIndex: snap.Overlay.SiblingIndex,
		siblings:     make(map[string]int, len(snap.Stack)),
		sortingOrder: snap.SortingOrder,
		result:       s.result,
		events:       s.pending,
		topCount:     make(map[string]int, len(s.ordered)),
		states:       make(map[string]string, len(s.ordered)),
		activations:  s.activations,
		forceHidden:  s.forceHidden,
	}
	for _, v := range snap.Stack {
		o.siblings[s.names[v.ID]] = v.SiblingIndex
	}
	for _, p := range s.ordered {
		o.topCount[p.name] = p.TopCount()
		o.states[p.name] = s.m.State(p).String()
	}

	if field, want, got, ok := step.Expect.check(o); !ok {
		return &ExpectError{Step: n, Line: step.Line, Field: field, Want: want, Got: got}
	}
	return nil
}

// settle finishes running transitions until none are left and returns how
// many completed.
func (s *session) settle() int {
	finished := 0
	for progressed := true; progressed; {
		progressed = false
		for _, p := range s.ordered {
			if finish(p) {
				finished++
				progressed = true
			}
		}
	}
	return finished
}

func finish(p *tracedPopup) bool {
	m, ok := p.Transition().(*popup.Manual)
	return ok && m.Finish()
}

func (s *session) drainEvents() []string {
	var out []string
	for {
		select {
		case ev, ok := <-s.events:
			if !ok {
				return out
			}
			out = append(out, s.eventName(ev))
		default:
			return out
		}
	}
}

func (s *session) eventName(ev manager.Event) string {
	if ev.Popup == nil {
		return ev.Type.String()
	}
	return ev.Type.String() + ":" + s.name(ev.Popup.ID())
}

func (s *session) name(id string) string {
	if name, ok := s.names[id]; ok {
		return name
	}
	return popup.ShortID(id)
}

func (s *session) labels(views []model.PopupView) []string {
	out := make([]string, len(views))
	for i, v := range views {
		out[i] = s.name(v.ID)
	}
	return out
}

// snapshot returns the manager snapshot labelled with script names.
func (s *session) snapshot() model.Snapshot {
	snap := s.m.Snapshot()
	for i := range snap.Stack {
		snap.Stack[i].Label = s.name(snap.Stack[i].ID)
	}
	for i := range snap.Queue {
		snap.Queue[i].Label = s.name(snap.Queue[i].ID)
	}
	return snap
}

func errResult(err error) string {
	if err != nil {
		return err.Error()
	}
	return "ok"
}
