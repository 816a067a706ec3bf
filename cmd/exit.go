package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gnzdotmx/climateflow/internal/utils"
	"github.com/gnzdotmx/climateflow/internal/workflow"
)

// ExitCode reports the outcome of Execute on w and returns the process exit
// code. An operator interrupt gets its own message but the same code as any
// other failure.
func ExitCode(w io.Writer, err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, workflow.ErrOperatorInterrupted), errors.Is(err, context.Canceled):
		fmt.Fprintln(w, "\n\n"+utils.Warning("Workflow interrupted by user"))
	default:
		fmt.Fprintln(w, utils.Error("Error: "+err.Error()))
	}
	return 1
}
