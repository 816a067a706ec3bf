package cmd

import (
	"fmt"
	"testing"
	"time"

	"github.com/gnzdotmx/climateflow/internal/workflow"
	"github.com/stretchr/testify/assert"
)

func stateFiles(now time.Time, ages ...int) []workflow.StateFile {
	var files []workflow.StateFile
	for i, days := range ages {
		files = append(files, workflow.StateFile{
			Path:      fmt.Sprintf("run-%d.state.yaml", i),
			StartedAt: now.AddDate(0, 0, -days),
		})
	}
	return files
}

func paths(files []workflow.StateFile) []string {
	var out []string
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}

func TestSelectStateFiles(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name      string
		ages      []int
		keep      int
		olderThan int
		want      []string
	}{
		{
			name: "keep latest",
			ages: []int{10, 5, 1},
			keep: 1,
			want: []string{"run-0.state.yaml", "run-1.state.yaml"},
		},
		{
			name: "keep more than present",
			ages: []int{10, 5},
			keep: 5,
		},
		{
			name:      "older than",
			ages:      []int{30, 8, 2},
			olderThan: 7,
			want:      []string{"run-0.state.yaml", "run-1.state.yaml"},
		},
		{
			name:      "newest survives age rule",
			ages:      []int{40, 30},
			olderThan: 7,
			want:      []string{"run-0.state.yaml"},
		},
		{
			name:      "rules combine without duplicates",
			ages:      []int{30, 20, 10, 1},
			keep:      2,
			olderThan: 25,
			want:      []string{"run-0.state.yaml", "run-1.state.yaml"},
		},
		{
			name: "no files",
			keep: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectStateFiles(stateFiles(now, tt.ages...), tt.keep, tt.olderThan, now)
			assert.Equal(t, tt.want, paths(got))
		})
	}
}
