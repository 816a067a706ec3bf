package cmd

import (
	"testing"

	"github.com/gnzdotmx/climateflow/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunner_RunLogOnlyForRuns(t *testing.T) {
	cfg := config.Default()
	cfg.Root = t.TempDir()

	runner, closeLog, err := newRunner(cfg, nil, false)
	require.NoError(t, err)
	require.NotNil(t, runner)
	closeLog()
	assert.NoDirExists(t, logDir(cfg))

	_, closeLog, err = newRunner(cfg, nil, true)
	require.NoError(t, err)
	closeLog()
	assert.DirExists(t, logDir(cfg))
}
