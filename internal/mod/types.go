package mod

import (
	"fmt"

	"github.com/gnzdotmx/climateflow/internal/config"
	"github.com/gnzdotmx/climateflow/internal/validator"
)

// Notebook executes a Jupyter notebook in place through nbconvert
type Notebook struct{}

func (Notebook) Name() string { return config.KindNotebook }
func (Notebook) Noun() string { return "Notebook" }

// Args builds the nbconvert invocation. The notebook is overwritten with its
// executed version.
func (Notebook) Args(target string, params Params) []string {
	return []string{
		"-m", "nbconvert",
		"--to", "notebook",
		"--execute",
		"--inplace",
		fmt.Sprintf("--ExecutePreprocessor.timeout=%d", int(params.CellTimeout.Seconds())),
		target,
	}
}

func (Notebook) Tools(interpreter string) []validator.ExternalTool {
	return []validator.ExternalTool{
		{
			Name:        "Jupyter",
			Command:     interpreter,
			VersionArgs: []string{"-m", "jupyter", "--version"},
			InstallHint: "Install with: pip install jupyter",
		},
		{
			Name:        "nbconvert",
			Command:     interpreter,
			VersionArgs: []string{"-m", "nbconvert", "--help"},
			InstallHint: "Install with: pip install nbconvert",
		},
	}
}

// Script runs a plain interpreter script
type Script struct{}

func (Script) Name() string { return config.KindScript }
func (Script) Noun() string { return "Script" }

func (Script) Args(target string, _ Params) []string {
	return []string{target}
}

func (Script) Tools(string) []validator.ExternalTool { return nil }
