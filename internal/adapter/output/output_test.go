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

	"github.com/jmylchreest/eventlog/internal/simulate"
)

func testResult() *simulate.Result {
	claimed := true
	return &simulate.Result{
		Name: "peek",
		Steps: []simulate.StepResult{
			{Step: 1, Action: simulate.ActionEvent, State: "collapsed", Recent: []string{"a", "b"}, History: 2},
			{Step: 2, Action: simulate.ActionTap, Elapsed: 2 * time.Second, State: "expanded", Recent: []string{"a", "b"}, History: 2, Claimed: &claimed},
		},
		Hides: 0,
	}
}

func TestPlainFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	err := NewPlainFormatter(DefaultFormatterOptions()).Format(&buf, testResult())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "# peek", lines[0])
	assert.Contains(t, lines[1], "collapsed")
	assert.Contains(t, lines[1], "recent=[a, b]")
	assert.Contains(t, lines[2], "2s")
	assert.Contains(t, lines[2], "claimed=true")
	assert.Equal(t, "hides: 0", lines[3])
}

func TestPlainFormatter_CustomTemplate(t *testing.T) {
	var buf bytes.Buffer
	opts := FormatterOptions{Template: "{{.Step}} {{upper .State}} {{join .Recent \"|\"}}"}
	err := NewPlainFormatter(opts).Format(&buf, testResult())
	require.NoError(t, err)

	assert.Equal(t, "1 COLLAPSED a|b\n2 EXPANDED a|b\n", buf.String())
}

func TestPlainFormatter_FinalOnly(t *testing.T) {
	var buf bytes.Buffer
	err := NewPlainFormatter(FormatterOptions{FinalOnly: true}).Format(&buf, testResult())
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "collapsed")
	assert.Contains(t, buf.String(), "expanded")
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	err := NewJSONFormatter(DefaultFormatterOptions()).Format(&buf, testResult())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "peek", decoded["name"])
	steps, ok := decoded["steps"].([]any)
	require.True(t, ok)
	assert.Len(t, steps, 2)
}

func TestYAMLFormatter_FinalOnly(t *testing.T) {
	var buf bytes.Buffer
	err := NewYAMLFormatter(FormatterOptions{FinalOnly: true}).Format(&buf, testResult())
	require.NoError(t, err)

	var decoded struct {
		Steps []struct {
			State   string `yaml:"state"`
			Claimed bool   `yaml:"claimed"`
		} `yaml:"steps"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Steps, 1)
	assert.Equal(t, "expanded", decoded.Steps[0].State)
	assert.True(t, decoded.Steps[0].Claimed)
}

func TestParseFormat(t *testing.T) {
	for _, f := range ValidFormats() {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	_, err := ParseFormat("dmenu")
	assert.Error(t, err)
}

func TestNewFormatter(t *testing.T) {
	opts := DefaultFormatterOptions()

	assert.IsType(t, &PlainFormatter{}, NewFormatter(FormatPlain, opts))
	assert.IsType(t, &JSONFormatter{}, NewFormatter(FormatJSON, opts))
	assert.IsType(t, &YAMLFormatter{}, NewFormatter(FormatYAML, opts))
	assert.IsType(t, &PlainFormatter{}, NewFormatter("unknown", opts))
}
