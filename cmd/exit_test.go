package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/gnzdotmx/climateflow/internal/workflow"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	interrupted := &workflow.StepError{
		Number: 3,
		Name:   "merge",
		Target: "Notebooks/03_merge.ipynb",
		Kind:   workflow.FailureInterrupted,
		Reason: "interrupted after 2.0 seconds",
	}

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  string
		notOut   string
	}{
		{name: "success", err: nil, wantCode: 0},
		{name: "interrupted step", err: interrupted, wantCode: 1, wantOut: "Workflow interrupted by user", notOut: "Error:"},
		{name: "cancelled context", err: context.Canceled, wantCode: 1, wantOut: "Workflow interrupted by user", notOut: "Error:"},
		{name: "generic failure", err: errors.New("config broken"), wantCode: 1, wantOut: "Error: config broken", notOut: "interrupted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Equal(t, tt.wantCode, ExitCode(&out, tt.err))
			if tt.wantOut == "" {
				assert.Empty(t, out.String())
				return
			}
			assert.Contains(t, out.String(), tt.wantOut)
			assert.NotContains(t, out.String(), tt.notOut)
		})
	}
}
