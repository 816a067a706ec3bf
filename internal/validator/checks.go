package validator

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gnzdotmx/climateflow/internal/command"
	"github.com/gnzdotmx/climateflow/internal/utils"
)

// missingPackagesScript prints the names of the argv packages that cannot be imported
const missingPackagesScript = `import importlib.util, sys
print(" ".join(p for p in sys.argv[1:] if importlib.util.find_spec(p) is None))`

var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

// ExternalTool is a command-line tool probed by running it with VersionArgs
type ExternalTool struct {
	Name        string
	Command     string
	VersionArgs []string
	// Validate inspects the combined output; nil accepts any successful run
	Validate    func(output string) bool
	InstallHint string
}

// ToolCheck verifies a tool is on PATH and answers its version/help probe
// within timeout
func ToolCheck(exec command.Executor, tool ExternalTool, timeout time.Duration) Check {
	return Check{
		Name: tool.Name,
		Run: func(ctx context.Context) Diagnostic {
			if _, err := exec.LookPath(tool.Command); err != nil {
				d := Fail(tool.Name, "%s not found in PATH", tool.Command)
				if tool.InstallHint != "" {
					d.Details = []string{tool.InstallHint}
				}
				return d
			}

			res, err := exec.Run(ctx, command.Request{Name: tool.Command, Args: tool.VersionArgs, Timeout: timeout})
			if err != nil {
				return Fail(tool.Name, "%s probe interrupted: %v", tool.Name, err)
			}
			switch {
			case res.TimedOut:
				return Fail(tool.Name, "%s did not respond within %s", tool.Name, timeout)
			case res.StartErr != nil:
				return Fail(tool.Name, "%s could not be started: %v", tool.Name, res.StartErr)
			case res.ExitCode != 0:
				d := Fail(tool.Name, "%s command failed (exit status %d)", tool.Name, res.ExitCode)
				if tool.InstallHint != "" {
					d.Details = []string{tool.InstallHint}
				}
				return d
			}
			if tool.Validate != nil && !tool.Validate(res.Stdout+res.Stderr) {
				return Fail(tool.Name, "unexpected output from %s", tool.Name)
			}
			return Pass(tool.Name, "%s works", tool.Name)
		},
	}
}

// RuntimeVersionCheck verifies the interpreter reports at least min (e.g. "3.8")
func RuntimeVersionCheck(exec command.Executor, interpreter, min string, timeout time.Duration) Check {
	const name = "runtime version"
	return Check{
		Name: name,
		Run: func(ctx context.Context) Diagnostic {
			want, err := ParseVersion(min)
			if err != nil {
				return Fail(name, "invalid minimum version %q: %v", min, err)
			}
			if _, err := exec.LookPath(interpreter); err != nil {
				return Fail(name, "%s not found in PATH", interpreter)
			}

			res, err := exec.Run(ctx, command.Request{Name: interpreter, Args: []string{"--version"}, Timeout: timeout})
			if err != nil {
				return Fail(name, "version probe interrupted: %v", err)
			}
			if !res.Success() {
				return Fail(name, "%s --version failed", interpreter)
			}

			// Older interpreters print the version on stderr
			out := strings.TrimSpace(res.Stdout + " " + res.Stderr)
			got, err := ParseVersion(out)
			if err != nil {
				return Fail(name, "cannot read version from %q", out)
			}
			if got.Less(want) {
				return Fail(name, "%s+ required. You have %s", want, got)
			}
			return Pass(name, "Python version: %s", got)
		},
	}
}

// PackagesCheck verifies every package is importable by the interpreter
func PackagesCheck(exec command.Executor, interpreter string, packages []string, requirementsFile string, timeout time.Duration) Check {
	const name = "packages"
	return Check{
		Name: name,
		Run: func(ctx context.Context) Diagnostic {
			if len(packages) == 0 {
				return Pass(name, "No packages required")
			}
			args := append([]string{"-c", missingPackagesScript}, packages...)
			res, err := exec.Run(ctx, command.Request{Name: interpreter, Args: args, Timeout: timeout})
			if err != nil {
				return Fail(name, "package probe interrupted: %v", err)
			}
			if !res.Success() {
				return Fail(name, "could not query installed packages with %s", interpreter)
			}

			missing := strings.Fields(res.Stdout)
			if len(missing) > 0 {
				d := Fail(name, "Missing packages: %s", strings.Join(missing, ", "))
				if requirementsFile != "" {
					d.Details = []string{fmt.Sprintf("Install with: pip install -r %s", requirementsFile)}
				}
				return d
			}
			return Pass(name, "All required packages installed")
		},
	}
}

// FileLayoutCheck verifies required directories and files exist under root
func FileLayoutCheck(root string, dirs, files []string) Check {
	const name = "file structure"
	return Check{
		Name: name,
		Run: func(ctx context.Context) Diagnostic {
			var missing []string
			for _, d := range dirs {
				if !utils.DirExists(filepath.Join(root, d)) {
					missing = append(missing, d)
				}
			}
			for _, f := range files {
				if !utils.FileExists(filepath.Join(root, f)) {
					missing = append(missing, f)
				}
			}
			if len(missing) > 0 {
				d := Fail(name, "Missing files/directories:")
				for _, m := range missing {
					d.Details = append(d.Details, "- "+m)
				}
				return d
			}
			return Pass(name, "All required files present")
		},
	}
}

// Version is a dotted major.minor.patch version
type Version struct {
	Major, Minor, Patch int
}

// ParseVersion extracts the first dotted version number found in s
func ParseVersion(s string) (Version, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("no version number in %q", s)
	}
	var v Version
	v.Major, _ = strconv.Atoi(m[1])
	v.Minor, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		v.Patch, _ = strconv.Atoi(m[3])
	}
	return v, nil
}

// Less reports whether v sorts before o
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
