package mod

import (
	"testing"
	"time"

	"github.com/gnzdotmx/climateflow/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModule struct {
	name, noun string
	tools      []validator.ExternalTool
}

func (f fakeModule) Name() string { return f.name }
func (f fakeModule) Noun() string { return f.noun }
func (f fakeModule) Args(target string, _ Params) []string { return []string{target} }
func (f fakeModule) Tools(string) []validator.ExternalTool { return f.tools }

func TestModuleRegistry(t *testing.T) {
	r := NewModuleRegistry()

	require.NoError(t, r.Register(fakeModule{name: "r", noun: "R script"}))
	assert.EqualError(t, r.Register(fakeModule{name: "r", noun: "R script"}), "module r is already registered")
	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(fakeModule{noun: "x"}))
	assert.Error(t, r.Register(fakeModule{name: "x"}))

	m, err := r.Get("r")
	require.NoError(t, err)
	assert.Equal(t, "R script", m.Noun())

	_, err = r.Get("docker")
	assert.EqualError(t, err, `unsupported step kind "docker"`)
	_, err = r.Get("")
	assert.Error(t, err)

	assert.Equal(t, []string{"r"}, r.Names())
}

func TestDefaultRegistry(t *testing.T) {
	assert.Equal(t, []string{"notebook", "script"}, Default().Names())
	assert.Same(t, Default(), Default())
}

func TestNotebookArgs(t *testing.T) {
	args := Notebook{}.Args("notebooks/03_merge.ipynb", Params{CellTimeout: 10 * time.Minute})
	assert.Equal(t, []string{
		"-m", "nbconvert", "--to", "notebook", "--execute", "--inplace",
		"--ExecutePreprocessor.timeout=600", "notebooks/03_merge.ipynb",
	}, args)
}

func TestScriptArgs(t *testing.T) {
	assert.Equal(t, []string{"scripts/fetch.py"}, Script{}.Args("scripts/fetch.py", Params{}))
	assert.Empty(t, Script{}.Tools("python3"))
}

func TestRegistryTools(t *testing.T) {
	r := Default()

	tools := r.Tools("python3", []string{"notebook", "script", "notebook", "unknown"})
	require.Len(t, tools, 2)
	assert.Equal(t, "Jupyter", tools[0].Name)
	assert.Equal(t, "python3", tools[0].Command)
	assert.Equal(t, []string{"-m", "jupyter", "--version"}, tools[0].VersionArgs)
	assert.Equal(t, "nbconvert", tools[1].Name)

	assert.Empty(t, r.Tools("python3", []string{"script"}))
}
