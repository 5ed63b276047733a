package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"", ModeDefault, false},
		{"default", ModeDefault, false},
		{"custom", ModeCustom, false},
		{"fancy", ModeDefault, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "default", ModeDefault.String())
	assert.Equal(t, "custom", ModeCustom.String())
	assert.Equal(t, "unknown", Mode(7).String())
}

func TestController_ActiveAnchorsBelowTop(t *testing.T) {
	c := NewController(ModeDefault, nil)
	assert.False(t, c.Visible())
	assert.Equal(t, -1, c.SiblingIndex())

	c.SetActive(1, true)
	assert.True(t, c.Visible())
	assert.Equal(t, 0, c.SiblingIndex())

	c.SetActive(3, true)
	assert.True(t, c.Visible())
	assert.Equal(t, 2, c.SiblingIndex())
}

func TestController_InactiveReanchorsOrHides(t *testing.T) {
	c := NewController(ModeDefault, nil)
	c.SetActive(1, true)
	c.SetActive(3, true)

	// Top closed, popup at 1 remains
	c.SetActive(1, false)
	assert.True(t, c.Visible())
	assert.Equal(t, 0, c.SiblingIndex())

	// Last popup closed
	c.SetActive(-1, false)
	assert.False(t, c.Visible())
	assert.Equal(t, -1, c.SiblingIndex())
}

func TestController_CustomModeStaysHidden(t *testing.T) {
	c := NewController(ModeCustom, nil)
	c.SetActive(5, true)
	assert.False(t, c.Visible())
	assert.Equal(t, 4, c.SiblingIndex())
}

func TestController_FadeIsIdempotent(t *testing.T) {
	c := NewController(ModeDefault, nil)
	c.ShowFade()
	c.ShowFade()
	assert.True(t, c.Visible())
	c.HideFade()
	c.HideFade()
	assert.False(t, c.Visible())
}

func TestController_ForcedVisibility(t *testing.T) {
	c := NewController(ModeDefault, nil)

	c.EnableFadeBackground()
	assert.True(t, c.Visible())
	assert.True(t, c.Forced())

	c.DisableFadeBackground()
	assert.False(t, c.Visible())

	// A stack change takes control back
	c.SetActive(1, true)
	assert.True(t, c.Visible())
	assert.False(t, c.Forced())
}

func TestController_InactiveRestoresAfterForcedHide(t *testing.T) {
	c := NewController(ModeDefault, nil)
	c.SetActive(3, true)
	c.DisableFadeBackground()
	require.False(t, c.Visible())

	// Top closed while the overlay was forced off; popup at 1 remains
	c.SetActive(1, false)
	assert.True(t, c.Visible())
	assert.False(t, c.Forced())
	assert.Equal(t, 0, c.SiblingIndex())

	custom := NewController(ModeCustom, nil)
	custom.SetActive(3, true)
	custom.EnableFadeBackground()
	require.True(t, custom.Visible())

	custom.SetActive(1, false)
	assert.False(t, custom.Visible())
	assert.Equal(t, 0, custom.SiblingIndex())
}

func TestController_SetModeAndReset(t *testing.T) {
	c := NewController(ModeDefault, nil)
	c.SetActive(3, true)

	c.SetMode(ModeCustom)
	assert.Equal(t, ModeCustom, c.Mode())
	c.SetActive(3, true)
	assert.False(t, c.Visible())

	c.Reset()
	assert.Equal(t, -1, c.SiblingIndex())
	assert.False(t, c.Visible())
}
