package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// LogLevel represents the level of logging verbosity
type LogLevel int

const (
	// LevelQuiet suppresses all output except errors
	LevelQuiet LogLevel = iota
	// LevelNormal shows standard pipeline progress
	LevelNormal
	// LevelVerbose shows detailed information about each step
	LevelVerbose
	// LevelDebug shows all debugging information
	LevelDebug
)

// HeaderWidth is the width of the rule printed around section headers
const HeaderWidth = 70

// LogLevelFromString converts a string level name to LogLevel
func LogLevelFromString(level string) LogLevel {
	switch strings.ToLower(level) {
	case "quiet", "q":
		return LevelQuiet
	case "normal", "n":
		return LevelNormal
	case "verbose", "v":
		return LevelVerbose
	case "debug", "d":
		return LevelDebug
	default:
		return LevelNormal
	}
}

// Console writes leveled, colored messages for the operator.
// It is safe for concurrent use.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	err   io.Writer
	level LogLevel
}

// NewConsole creates a console writing progress to out and errors to errOut
func NewConsole(out, errOut io.Writer, level LogLevel) *Console {
	return &Console{out: out, err: errOut, level: level}
}

// DiscardConsole returns a console that drops everything
func DiscardConsole() *Console {
	return NewConsole(io.Discard, io.Discard, LevelQuiet)
}

// Level returns the console verbosity
func (c *Console) Level() LogLevel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.level
}

// SetLevel changes the console verbosity
func (c *Console) SetLevel(level LogLevel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.level = level
}

// Out returns the writer used for regular output
func (c *Console) Out() io.Writer {
	return c.out
}

func (c *Console) write(w io.Writer, min LogLevel, line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.level < min {
		return
	}
	_, _ = fmt.Fprintln(w, line)
}

// Error logs an error message (always shown)
func (c *Console) Error(format string, args ...interface{}) {
	c.write(c.err, LevelQuiet, Error("Error: "+fmt.Sprintf(format, args...)))
}

// Info logs an informational message at Normal+ level
func (c *Console) Info(format string, args ...interface{}) {
	c.write(c.out, LevelNormal, Info(fmt.Sprintf(format, args...)))
}

// Plain logs an uncolored message at Normal+ level
func (c *Console) Plain(format string, args ...interface{}) {
	c.write(c.out, LevelNormal, fmt.Sprintf(format, args...))
}

// Success logs a success message at Normal+ level
func (c *Console) Success(format string, args ...interface{}) {
	c.write(c.out, LevelNormal, Success("Success: "+fmt.Sprintf(format, args...)))
}

// Warning logs a warning message at Normal+ level
func (c *Console) Warning(format string, args ...interface{}) {
	c.write(c.out, LevelNormal, Warning("Warning: "+fmt.Sprintf(format, args...)))
}

// Verbose logs a message at Verbose+ level
func (c *Console) Verbose(format string, args ...interface{}) {
	c.write(c.out, LevelVerbose, "\t"+Info(fmt.Sprintf(format, args...)))
}

// Debug logs a debug message at Debug level
func (c *Console) Debug(format string, args ...interface{}) {
	c.write(c.out, LevelDebug, "\t"+Debug(fmt.Sprintf(format, args...)))
}

// Header prints a section title between two rules
func (c *Console) Header(title string) {
	rule := BoldText(strings.Repeat("=", headerWidth(c.out)), BlueColor)
	c.write(c.out, LevelNormal, "\n"+rule+"\n"+BoldText(title, BlueColor)+"\n"+rule+"\n")
}

// Step prints the banner for a numbered pipeline step
func (c *Console) Step(number int, description string) {
	c.write(c.out, LevelNormal, BoldText(fmt.Sprintf("[Step %d]", number), GreenColor)+" "+description)
}

// headerWidth clips the rule to the terminal width when writing to a terminal
func headerWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return HeaderWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 || width >= HeaderWidth {
		return HeaderWidth
	}
	return width
}

// std is the process-wide console used by the command layer
var std = NewConsole(os.Stdout, os.Stderr, LevelNormal)

// Std returns the process-wide console
func Std() *Console {
	return std
}

// SetLogLevel sets the process-wide logging level
func SetLogLevel(level LogLevel) {
	std.SetLevel(level)
}

// LogError logs an error message (always shown)
func LogError(format string, args ...interface{}) {
	std.Error(format, args...)
}

// LogInfo logs an informational message at Normal+ level
func LogInfo(format string, args ...interface{}) {
	std.Info(format, args...)
}

// LogSuccess logs a success message at Normal+ level
func LogSuccess(format string, args ...interface{}) {
	std.Success(format, args...)
}

// LogVerbose logs a message at Verbose+ level
func LogVerbose(format string, args ...interface{}) {
	std.Verbose(format, args...)
}

// LogDebug logs a debug message at Debug level
func LogDebug(format string, args ...interface{}) {
	std.Debug(format, args...)
}

// LogWarning logs a warning message at Normal+ level
func LogWarning(format string, args ...interface{}) {
	std.Warning(format, args...)
}
