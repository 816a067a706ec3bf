package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/gnzdotmx/climateflow/cmd"
	"github.com/gnzdotmx/climateflow/internal/utils"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env file: %v\n", err)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}

// run executes the CLI and maps the outcome to an exit code
func run(ctx context.Context) (code int) {
	defer func() {
		if r := recover(); r != nil {
			utils.LogError("Unexpected error: %v", r)
			fmt.Fprintf(os.Stderr, "%s\n", debug.Stack())
			code = 1
		}
	}()

	return cmd.ExitCode(os.Stderr, cmd.Execute(ctx))
}
