package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gnzdotmx/climateflow/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Len(t, cfg.Steps, 6)
	assert.Equal(t, []int{1, 3, 4, 5, 6, 7}, []int{
		cfg.Steps[0].Number, cfg.Steps[1].Number, cfg.Steps[2].Number,
		cfg.Steps[3].Number, cfg.Steps[4].Number, cfg.Steps[5].Number,
	})
	assert.Len(t, cfg.ExpectedOutputs(), 6)
	assert.Equal(t, 15*time.Minute, cfg.Timeouts.Step)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
title: Test pipeline
interpreter: /usr/bin/python3
timeouts:
  step: 2m
steps:
  - name: first
    target: nb/a.ipynb
    outputs:
      - path: out/a.csv
        description: A
  - name: second
    kind: script
    target: scripts/b.py
    timeout: 30s
manual_inputs:
  - name: NOAA token
    kind: env
    env_var: NOAA_TOKEN
    description: NOAA API token
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Test pipeline", cfg.Title)
	assert.Equal(t, "/usr/bin/python3", cfg.Interpreter)
	assert.Equal(t, 2*time.Minute, cfg.Timeouts.Step)
	// untouched scalars keep their defaults
	assert.Equal(t, 600*time.Second, cfg.Timeouts.Cell)
	assert.Equal(t, 500, cfg.ExcerptBytes)

	require.Len(t, cfg.Steps, 2)
	assert.Equal(t, 1, cfg.Steps[0].Number)
	assert.Equal(t, KindNotebook, cfg.Steps[0].Kind)
	assert.Equal(t, 2, cfg.Steps[1].Number)
	assert.Equal(t, KindScript, cfg.Steps[1].Kind)
	assert.Equal(t, 30*time.Second, cfg.StepTimeout(cfg.Steps[1]))
	assert.Equal(t, 2*time.Minute, cfg.StepTimeout(cfg.Steps[0]))
	require.Len(t, cfg.ManualInputs, 1)
	assert.Equal(t, ManualEnv, cfg.ManualInputs[0].Kind)
	assert.Equal(t, "NOAA_TOKEN", cfg.ManualInputs[0].EnvVar)

	// list settings absent from the file fall back to defaults
	assert.Equal(t, Default().Packages, cfg.Packages)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("CLIMATEFLOW_TIMEOUTS_STEP", "42s")
	t.Setenv("CLIMATEFLOW_INTERPRETER", "python3.12")

	cfg, err := Load(writeConfig(t, "title: env\n"))
	require.NoError(t, err)

	assert.Equal(t, 42*time.Second, cfg.Timeouts.Step)
	assert.Equal(t, "python3.12", cfg.Interpreter)
	assert.Len(t, cfg.Steps, 6)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{
			name:   "duplicate step name",
			mutate: func(c *Config) { c.Steps[1].Name = c.Steps[0].Name },
			field:  "steps[1]",
		},
		{
			name:   "non increasing numbers",
			mutate: func(c *Config) { c.Steps[2].Number = 3 },
			field:  "steps[2]",
		},
		{
			name:   "absolute target",
			mutate: func(c *Config) { c.Steps[0].Target = "/tmp/x.ipynb" },
			field:  "steps[0].target",
		},
		{
			name:   "notebook with wrong extension",
			mutate: func(c *Config) { c.Steps[0].Target = "Notebooks/run.py" },
			field:  "steps[0].target",
		},
		{
			name:   "unknown kind",
			mutate: func(c *Config) { c.Steps[0].Kind = "docker" },
			field:  "steps[0]",
		},
		{
			name:   "output escaping root",
			mutate: func(c *Config) { c.Steps[0].Outputs[0].Path = "../elsewhere.csv" },
			field:  "steps[0].outputs[0]",
		},
		{
			name:   "zero check timeout",
			mutate: func(c *Config) { c.Timeouts.Check = 0 },
			field:  "timeouts.check",
		},
		{
			name:   "env manual input without variable",
			mutate: func(c *Config) { c.ManualInputs = []ManualInputConfig{{Name: "token", Kind: ManualEnv}} },
			field:  "manual_inputs[0].env_var",
		},
		{
			name:   "no steps",
			mutate: func(c *Config) { c.Steps = nil },
			field:  "steps",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var verr *utils.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestStepIndex(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 0, cfg.StepIndex("gsom-acquisition"))
	assert.Equal(t, 1, cfg.StepIndex("3"))
	assert.Equal(t, 5, cfg.StepIndex("Notebooks/06_Integration_Analysis.ipynb"))
	assert.Equal(t, -1, cfg.StepIndex("2"))
}
