package workflow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gnzdotmx/climateflow/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel string, size int) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, make([]byte, size), 0644))
}

func TestArtifactsOverlap(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"data/cleaned/nass_clean.csv", "data/cleaned/nass_clean.csv", true},
		{"data/cleaned/nass_clean.csv", "./data/cleaned/nass_clean.csv", true},
		{"data/raw/USC00118740_GSOM_*.csv", "data/raw/USC00118740_GSOM_1902-08-01_to_2025-10-31.csv", true},
		{"data/raw/USC00118740_GSOM_1902.csv", "data/raw/*.csv", true},
		{"data/raw/*.csv", "data/raw/nested/x.csv", false},
		{"data/**/*.csv", "data/raw/nested/x.csv", true},
		{"data/processed/a.csv", "data/processed/b.csv", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ArtifactsOverlap(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}

func TestResolveArtifact(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "data/raw/USC00118740_GSOM_1902-08-01_to_2025-10-31.csv", 10)
	writeFile(t, root, "data/raw/USC00118740_GSOM_old.csv", 10)
	writeFile(t, root, "data/raw/nass_qs_1902_to_2025.csv", 10)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "data", "raw", "USC00118740_GSOM_dir.csv"), 0755))

	files, err := ResolveArtifact(root, "data/raw/USC00118740_GSOM_*.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"data/raw/USC00118740_GSOM_1902-08-01_to_2025-10-31.csv",
		"data/raw/USC00118740_GSOM_old.csv",
	}, files)

	files, err = ResolveArtifact(root, "data/raw/nass_qs_1902_to_2025.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"data/raw/nass_qs_1902_to_2025.csv"}, files)

	files, err = ResolveArtifact(root, "data/cleaned/*.csv")
	require.NoError(t, err)
	assert.Empty(t, files)

	files, err = ResolveArtifact(root, "data/raw")
	require.NoError(t, err)
	assert.Empty(t, files, "a directory is not an artifact")
}

func TestVerifyOutputs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "data/raw/USC00118740_GSOM_a.csv", 1024)
	writeFile(t, root, "data/raw/USC00118740_GSOM_b.csv", 1024)
	writeFile(t, root, "data/cleaned/nass_clean.csv", 300)

	expected := []config.Artifact{
		{Path: "data/raw/USC00118740_GSOM_*.csv", Description: "NOAA climate data"},
		{Path: "data/cleaned/nass_clean.csv", Description: "Cleaned corn data"},
		{Path: "data/cleaned/integrated_climate_corn.csv", Description: "Final integrated dataset"},
	}

	statuses, ok := VerifyOutputs(root, expected)
	assert.False(t, ok)
	require.Len(t, statuses, 3)

	assert.True(t, statuses[0].Present)
	assert.Len(t, statuses[0].Files, 2)
	assert.Equal(t, int64(2048), statuses[0].Size)

	assert.True(t, statuses[1].Present)
	assert.Equal(t, int64(300), statuses[1].Size)

	assert.False(t, statuses[2].Present)
	assert.Equal(t, "Final integrated dataset", statuses[2].Artifact.Description)

	writeFile(t, root, "data/cleaned/integrated_climate_corn.csv", 1)
	_, ok = VerifyOutputs(root, expected)
	assert.True(t, ok)
}

func TestVerifyOutputs_Empty(t *testing.T) {
	statuses, ok := VerifyOutputs(t.TempDir(), nil)
	assert.True(t, ok)
	assert.Empty(t, statuses)
}
