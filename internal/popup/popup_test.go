package popup

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHost struct {
	opened []string
	closed []string
}

func (h *recordingHost) OnOpened(p Popup) { h.opened = append(h.opened, p.ID()) }
func (h *recordingHost) OnClosed(p Popup) { h.closed = append(h.closed, p.ID()) }

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateInactive, "inactive"},
		{StateQueued, "queued"},
		{StateActivating, "activating"},
		{StateTop, "top"},
		{StateLayered, "layered"},
		{StateClosing, "closing"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.String())
		})
	}
}

func TestState_OnStack(t *testing.T) {
	assert.False(t, StateInactive.OnStack())
	assert.False(t, StateQueued.OnStack())
	assert.True(t, StateActivating.OnStack())
	assert.True(t, StateTop.OnStack())
	assert.True(t, StateLayered.OnStack())
	assert.True(t, StateClosing.OnStack())

	assert.True(t, StateTop.Open())
	assert.True(t, StateLayered.Open())
	assert.False(t, StateClosing.Open())
}

func TestOnce(t *testing.T) {
	calls := 0
	fn := Once(func() { calls++ })
	fn()
	fn()
	fn()
	assert.Equal(t, 1, calls)
}

func TestManual(t *testing.T) {
	m := &Manual{}
	assert.False(t, m.Pending())
	assert.False(t, m.Finish())

	done := 0
	m.In(func() { done++ })
	assert.True(t, m.Pending())
	assert.True(t, m.Finish())
	assert.False(t, m.Pending())
	assert.Equal(t, 1, done)
	assert.False(t, m.Finish())
}

func TestFrames_AdvanceOrder(t *testing.T) {
	f := NewFrames()
	var fired []string

	f.Schedule(30*time.Millisecond, func() { fired = append(fired, "slow") })
	f.Schedule(10*time.Millisecond, func() { fired = append(fired, "fast") })
	f.Schedule(10*time.Millisecond, func() { fired = append(fired, "fast-2") })
	assert.Equal(t, 3, f.Pending())

	assert.Equal(t, 0, f.Advance(5*time.Millisecond))
	assert.Equal(t, 2, f.Advance(5*time.Millisecond))
	assert.Equal(t, []string{"fast", "fast-2"}, fired)

	assert.Equal(t, 1, f.Advance(time.Second))
	assert.Equal(t, []string{"fast", "fast-2", "slow"}, fired)
	assert.Equal(t, 0, f.Pending())
	assert.Equal(t, 1010*time.Millisecond, f.Elapsed())
}

func TestFrames_ZeroDurationChains(t *testing.T) {
	f := NewFrames()
	var fired []string

	f.Schedule(0, func() {
		fired = append(fired, "first")
		f.Schedule(0, func() { fired = append(fired, "chained") })
	})

	assert.Equal(t, 2, f.Advance(0))
	assert.Equal(t, []string{"first", "chained"}, fired)
}

func TestDialog_Lifecycle(t *testing.T) {
	host := &recordingHost{}
	manual := &Manual{}
	d := NewDialog("dlg-1", Template{Kind: "settings", Title: "Settings"}, host, manual)

	assert.Equal(t, "dlg-1", d.ID())
	assert.Equal(t, Kind("settings"), d.Kind())
	assert.Equal(t, "Settings", d.Title())
	assert.Equal(t, -1, d.SiblingIndex())
	assert.False(t, d.Visible())

	d.Activate()
	assert.True(t, d.Visible())
	assert.Empty(t, host.opened)
	require.True(t, manual.Finish())
	assert.Equal(t, []string{"dlg-1"}, host.opened)

	d.Hide()
	assert.True(t, d.Closing())
	// Second hide while closing is ignored
	d.Hide()
	require.True(t, manual.Finish())
	assert.False(t, manual.Pending())
	assert.Equal(t, []string{"dlg-1"}, host.closed)
	assert.False(t, d.Visible())

	// Hiding a hidden dialog does nothing
	d.Hide()
	assert.False(t, manual.Pending())
}

func TestDialog_ForceHideSkipsHost(t *testing.T) {
	host := &recordingHost{}
	d := NewDialog("dlg-2", Template{Kind: "shop"}, host, nil)

	d.Activate()
	assert.Equal(t, []string{"dlg-2"}, host.opened)

	d.ForceHide()
	assert.False(t, d.Visible())
	assert.Empty(t, host.closed)

	d.Release()
	assert.True(t, d.Released())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	tmpl := Template{Kind: "settings", Title: "Settings"}
	require.NoError(t, r.Register(tmpl.Kind, DialogFactory(tmpl, nil)))

	err := r.Register(tmpl.Kind, DialogFactory(tmpl, nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateKind))

	var regErr *RegistryError
	require.True(t, errors.As(err, &regErr))
	assert.Equal(t, Kind("settings"), regErr.Kind)

	p, err := r.Create("settings", &recordingHost{})
	require.NoError(t, err)
	assert.Equal(t, Kind("settings"), p.Kind())
	assert.Len(t, p.ID(), 26)

	other, err := r.Create("settings", &recordingHost{})
	require.NoError(t, err)
	assert.NotEqual(t, p.ID(), other.ID())

	_, err = r.Create("missing", &recordingHost{})
	assert.True(t, errors.Is(err, ErrUnknownKind))

	assert.True(t, r.Has("settings"))
	assert.False(t, r.Has("missing"))
}

func TestRegistry_RegisterTemplatesKeepsOrder(t *testing.T) {
	r := NewRegistry()
	frames := NewFrames()
	templates := []Template{
		{Kind: "reward", Open: 10 * time.Millisecond},
		{Kind: "settings"},
		{Kind: "shop"},
	}

	err := r.RegisterTemplates(templates, func(tmpl Template) Transition {
		return frames.Transition(tmpl.Open, tmpl.Close)
	})
	require.NoError(t, err)
	assert.Equal(t, []Kind{"reward", "settings", "shop"}, r.Kinds())

	host := &recordingHost{}
	p, err := r.Create("reward", host)
	require.NoError(t, err)
	p.Activate()
	assert.Empty(t, host.opened)
	frames.Advance(10 * time.Millisecond)
	assert.Equal(t, []string{p.ID()}, host.opened)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", ShortID("abc"))
	assert.Equal(t, "9G5FAV", ShortID("01ARZ3NDEKTSV4RRFFQ69G5FAV"))
}
