package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/popstack/internal/overlay"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "default", cfg.Overlay.Mode)
	assert.Equal(t, 100, cfg.Canvas.SortingOrder)
	assert.Equal(t, 1, cfg.Stack.SiblingBase)
	assert.Equal(t, 64, cfg.Events.Buffer)
	assert.Equal(t, 16*time.Millisecond, cfg.TUI.FrameInterval.Duration())
	assert.True(t, cfg.TUI.ShowHelp)
	assert.NotEmpty(t, cfg.Kinds)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Canvas.SortingOrder, cfg.Canvas.SortingOrder)
	assert.Len(t, cfg.Kinds, len(DefaultKinds()))
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[overlay]
mode = "custom"

[canvas]
sorting_order = 250

[stack]
sibling_base = 3

[events]
buffer = 8

[tui]
frame_interval = "33ms"
show_help = false

[[kinds]]
name = "quest"
title = "New Quest"
body = "Defeat the slime king."
open = "400ms"
close = "250ms"

[[kinds]]
name = "toast"
open = "0s"
close = "0s"
`
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, overlay.ModeCustom, cfg.OverlayMode())
	assert.Equal(t, 250, cfg.Canvas.SortingOrder)
	assert.Equal(t, 3, cfg.Stack.SiblingBase)
	assert.Equal(t, 8, cfg.Events.Buffer)
	assert.Equal(t, 33*time.Millisecond, cfg.TUI.FrameInterval.Duration())
	assert.False(t, cfg.TUI.ShowHelp)

	require.Len(t, cfg.Kinds, 2)
	assert.Equal(t, "quest", cfg.Kinds[0].Name)
	assert.Equal(t, 400, cfg.Kinds[0].Open.Milliseconds())

	templates := cfg.Templates()
	require.Len(t, templates, 2)
	assert.Equal(t, "New Quest", templates[0].Title)
	assert.Equal(t, 250*time.Millisecond, templates[0].Close)
	assert.Equal(t, "toast", templates[1].Title, "title falls back to the kind name")
}

func TestLoadConfig_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[canvas]
sorting_order = 5
`
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// Changed field
	assert.Equal(t, 5, cfg.Canvas.SortingOrder)

	// Unchanged fields should have defaults
	assert.Equal(t, overlay.ModeDefault, cfg.OverlayMode())
	assert.Equal(t, 64, cfg.Events.Buffer)
	assert.Len(t, cfg.Kinds, len(DefaultKinds()))
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	err := os.WriteFile(path, []byte(`this is not valid toml [`), 0644)
	require.NoError(t, err)

	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad overlay mode", func(c *Config) { c.Overlay.Mode = "sparkly" }},
		{"zero sibling base", func(c *Config) { c.Stack.SiblingBase = 0 }},
		{"zero event buffer", func(c *Config) { c.Events.Buffer = 0 }},
		{"zero frame interval", func(c *Config) { c.TUI.FrameInterval = 0 }},
		{"empty kind name", func(c *Config) { c.Kinds = append(c.Kinds, KindConfig{}) }},
		{"duplicate kind", func(c *Config) { c.Kinds = append(c.Kinds, c.Kinds[0]) }},
		{"negative duration", func(c *Config) { c.Kinds[0].Open = Duration(-time.Second) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_Save(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "config.toml")

	cfg := DefaultConfig()
	cfg.Overlay.Mode = "custom"
	cfg.Canvas.SortingOrder = 42

	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", loaded.Overlay.Mode)
	assert.Equal(t, 42, loaded.Canvas.SortingOrder)
	assert.Equal(t, cfg.Kinds, loaded.Kinds)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"200ms", 200 * time.Millisecond, false},
		{"1s", time.Second, false},
		{"150", 150 * time.Millisecond, false},
		{"0", 0, false},
		{" 80ms ", 80 * time.Millisecond, false},
		{"", 0, false},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration())
		})
	}

	text, err := Duration(1500 * time.Millisecond).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1.5s", string(text))
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/popstack/config.toml", ConfigPath())
}

func TestConfigPathDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	assert.Contains(t, ConfigPath(), filepath.Join(".config", "popstack", "config.toml"))
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, DefaultConfig().Save(path))

	var (
		mu     sync.Mutex
		loaded *Config
	)
	w, err := NewWatcher(path, func(cfg *Config) {
		mu.Lock()
		loaded = cfg
		mu.Unlock()
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, path, w.Path())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Keep rewriting until the watcher has registered and picked one up
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("[canvas]\nsorting_order = 7\n"), 0644)
		mu.Lock()
		defer mu.Unlock()
		return loaded != nil && loaded.Canvas.SortingOrder == 7
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
