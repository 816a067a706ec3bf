package validator

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gnzdotmx/climateflow/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPrompter struct {
	answer bool
	calls  int
}

func (p *countingPrompter) Confirm(ctx context.Context, question string) (bool, error) {
	p.calls++
	return p.answer, nil
}

func nassInput() config.ManualInputConfig {
	return config.ManualInputConfig{
		Name:          "NASS data",
		Kind:          config.ManualFile,
		Path:          "data/raw/nass.csv",
		Description:   "NASS data must be downloaded manually",
		Documentation: "docs/NASS_DOWNLOAD_INSTRUCTIONS.md",
		Link:          "https://quickstats.nass.usda.gov/",
	}
}

func TestManualGate_NoWarningsNeverPrompts(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "data", "raw"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "data", "raw", "nass.csv"), bytes.Repeat([]byte("a"), 2048), 0644))

	p := &countingPrompter{}
	gate := NewManualGate(root, []config.ManualInputConfig{nassInput()}, p)

	ok, diags, err := gate.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, p.calls)
	assert.Equal(t, "NASS data found (2.0 KB)", diags[0].Message)
}

func TestManualGate_WarningsAskOnce(t *testing.T) {
	for _, answer := range []bool{true, false} {
		p := &countingPrompter{answer: answer}
		gate := NewManualGate(t.TempDir(), []config.ManualInputConfig{nassInput()}, p)

		ok, diags, err := gate.Check(context.Background())
		require.NoError(t, err)
		assert.Equal(t, answer, ok)
		assert.Equal(t, 1, p.calls)

		require.Len(t, diags, 1)
		assert.Equal(t, StatusWarn, diags[0].Status)
		assert.Equal(t, "NASS data must be downloaded manually", diags[0].Message)
		assert.Equal(t, []string{
			"File: data/raw/nass.csv",
			"Instructions: docs/NASS_DOWNLOAD_INSTRUCTIONS.md",
			"Direct link: https://quickstats.nass.usda.gov/",
		}, diags[0].Details)
	}
}

func TestManualGate_NilPrompterDeclines(t *testing.T) {
	gate := NewManualGate(t.TempDir(), []config.ManualInputConfig{nassInput()}, nil)
	ok, _, err := gate.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManualInputCheck_ReminderOnlyWhenPresent(t *testing.T) {
	root := t.TempDir()
	in := config.ManualInputConfig{
		Name:     "GSOM acquisition notebook",
		Kind:     config.ManualFile,
		Path:     "01.ipynb",
		Reminder: "Ensure NOAA API token is set",
	}

	d := ManualInputCheck(root, in).Run(context.Background())
	assert.Equal(t, StatusWarn, d.Status)
	assert.Empty(t, d.Notes)

	require.NoError(t, os.WriteFile(filepath.Join(root, "01.ipynb"), []byte("{}"), 0644))
	d = ManualInputCheck(root, in).Run(context.Background())
	assert.Equal(t, StatusPass, d.Status)
	assert.Equal(t, []string{"Ensure NOAA API token is set"}, d.Notes)
}

func TestManualInputCheck_EnvNeverLeaksValue(t *testing.T) {
	in := config.ManualInputConfig{Name: "token", Kind: config.ManualEnv, EnvVar: "CLIMATEFLOW_TEST_TOKEN"}

	t.Setenv("CLIMATEFLOW_TEST_TOKEN", "")
	d := ManualInputCheck("", in).Run(context.Background())
	assert.Equal(t, StatusWarn, d.Status)

	t.Setenv("CLIMATEFLOW_TEST_TOKEN", "s3cret")
	d = ManualInputCheck("", in).Run(context.Background())
	assert.Equal(t, StatusPass, d.Status)
	assert.NotContains(t, d.Message, "s3cret")
}

func TestStdinPrompter(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"  YES  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			p := NewStdinPrompter(strings.NewReader(tt.input), &out)

			got, err := p.Confirm(context.Background(), "Continue anyway? (y/N): ")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Continue anyway?")
		})
	}
}

func TestStdinPrompter_Cancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := NewStdinPrompter(r, io.Discard).Confirm(ctx, "?")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, got)
}
