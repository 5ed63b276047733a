package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/popstack/internal/model"
)

func testSnapshot() model.Snapshot {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return model.Snapshot{
		Stack: []model.PopupView{
			{ID: "01HZX0000000000000000AAAAA", Label: "Settings", Kind: "settings", State: "layered", SiblingIndex: 1, Since: now.Add(-2 * time.Minute)},
			{ID: "01HZX0000000000000000BBBBB", Label: "Shop", Kind: "shop", State: "top", SiblingIndex: 3, Since: now.Add(-10 * time.Second)},
		},
		Queue: []model.PopupView{
			{ID: "01HZX0000000000000000CCCCC", Label: "Daily Reward", Kind: "reward", State: "queued", SiblingIndex: -1, Since: now.Add(-5 * time.Second)},
		},
		Current:       "01HZX0000000000000000BBBBB",
		Overlay:       model.OverlayView{Visible: true, SiblingIndex: 2, Mode: "default"},
		HasPopup:      true,
		SortingOrder:  100,
		TopPopupIndex: 3,
		TakenAt:       now,
	}
}

func testTrace() *model.Trace {
	return &model.Trace{
		Name: "queue while busy",
		Entries: []model.TraceEntry{
			{Step: 1, Action: "request", Target: "A", Stack: []string{"A"}, Queue: []string{}},
			{Step: 2, Action: "opened", Target: "A", Events: []string{"open:A"}, Stack: []string{"A"}, Queue: []string{}, HasPopup: true, Overlay: true},
			{Step: 3, Action: "back", Result: "true", Stack: []string{"A"}, Queue: []string{}, HasPopup: true, Overlay: true},
		},
		Final: testSnapshot(),
	}
}

func TestPlainFormatter_FormatSnapshot(t *testing.T) {
	var buf bytes.Buffer
	err := NewPlainFormatter(DefaultFormatterOptions()).FormatSnapshot(&buf, testSnapshot())
	require.NoError(t, err)

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7)

	assert.Equal(t, "stack (2):", lines[0])
	// Top first, marked as current
	assert.Equal(t, "  * [3] Shop <shop> top (10 seconds ago)", lines[1])
	assert.Equal(t, "    [1] Settings <settings> layered (2 minutes ago)", lines[2])
	assert.Equal(t, "queue (1):", lines[3])
	assert.Equal(t, "    Daily Reward <reward> queued (5 seconds ago)", lines[4])
	assert.Equal(t, "overlay: visible sibling=2 mode=default", lines[5])
	assert.Equal(t, "has_popup=true sorting_order=100 top_popup_index=3", lines[6])
}

func TestPlainFormatter_CustomTemplate(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultFormatterOptions()
	opts.Template = "{{.Popup.Kind | upper}}:{{truncate .Popup.Label 5}}:{{.Current}}"

	err := NewPlainFormatter(opts).FormatSnapshot(&buf, testSnapshot())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "  SHOP:Shop:true\n")
	assert.Contains(t, buf.String(), "  REWARD:Da...:false\n")
}

func TestPlainFormatter_FormatTrace(t *testing.T) {
	var buf bytes.Buffer
	err := NewPlainFormatter(DefaultFormatterOptions()).FormatTrace(&buf, testTrace())
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "scenario: queue while busy\n"))
	assert.Contains(t, out, "  2. opened A\n")
	assert.Contains(t, out, "stack=[A] queue=[] overlay=on has_popup=true events=[open:A]")
	assert.Contains(t, out, "  3. back -> true\n")
	assert.Contains(t, out, "final:\nstack (2):")
}

func TestLineFormatter_FormatSnapshot(t *testing.T) {
	var buf bytes.Buffer
	err := NewLineFormatter(DefaultFormatterOptions()).FormatSnapshot(&buf, testSnapshot())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "3 | 10 seconds ago | shop | Shop | top", lines[0])
	assert.Equal(t, "-1 | 5 seconds ago | reward | Daily Reward | queued", lines[2])
}

func TestLineFormatter_NoIndexNoAge(t *testing.T) {
	var buf bytes.Buffer
	opts := FormatterOptions{Separator: ","}
	err := NewLineFormatter(opts).FormatTrace(&buf, testTrace())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "shop,Shop,top", lines[0])
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(DefaultFormatterOptions())
	require.NoError(t, f.FormatSnapshot(&buf, testSnapshot()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, true, decoded["has_popup"])
	assert.Len(t, decoded["stack"], 2)
	assert.Equal(t, "01HZX0000000000000000BBBBB", decoded["current"])

	buf.Reset()
	require.NoError(t, f.FormatTrace(&buf, testTrace()))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "queue while busy", decoded["name"])
	assert.Len(t, decoded["entries"], 3)
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewYAMLFormatter(DefaultFormatterOptions())
	require.NoError(t, f.FormatTrace(&buf, testTrace()))

	var decoded struct {
		Name    string `yaml:"name"`
		Entries []struct {
			Action string   `yaml:"action"`
			Events []string `yaml:"events"`
		} `yaml:"entries"`
		Final struct {
			TopPopupIndex int `yaml:"top_popup_index"`
		} `yaml:"final"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "queue while busy", decoded.Name)
	require.Len(t, decoded.Entries, 3)
	assert.Equal(t, []string{"open:A"}, decoded.Entries[1].Events)
	assert.Equal(t, 3, decoded.Final.TopPopupIndex)
}

func TestIDsFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewIDsFormatter().FormatSnapshot(&buf, testSnapshot()))

	assert.Equal(t,
		"01HZX0000000000000000BBBBB\n01HZX0000000000000000AAAAA\n01HZX0000000000000000CCCCC\n",
		buf.String())
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format   FormatType
		expected string
	}{
		{FormatPlain, "*output.PlainFormatter"},
		{FormatLine, "*output.LineFormatter"},
		{FormatJSON, "*output.JSONFormatter"},
		{FormatYAML, "*output.YAMLFormatter"},
		{FormatIDs, "*output.IDsFormatter"},
		{"unknown", "*output.PlainFormatter"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			f := NewFormatter(tt.format, DefaultFormatterOptions())
			assert.Equal(t, tt.expected, typeName(f))
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatPlain, f)

	f, err = ParseFormat("yaml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("dmenu")
	assert.Error(t, err)
}

func typeName(v any) string {
	switch v.(type) {
	case *PlainFormatter:
		return "*output.PlainFormatter"
	case *LineFormatter:
		return "*output.LineFormatter"
	case *JSONFormatter:
		return "*output.JSONFormatter"
	case *YAMLFormatter:
		return "*output.YAMLFormatter"
	case *IDsFormatter:
		return "*output.IDsFormatter"
	default:
		return "unknown"
	}
}
