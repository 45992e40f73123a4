// Package logger is litdb's process-wide log. Debug, Info and Section lines
// appear only with --verbose. Warnings and errors always reach stderr,
// since skipped identifiers and failed API calls must stay visible.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

var labels = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

var styles = [...]lipgloss.Style{
	lipgloss.NewStyle().Faint(true),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
	lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B")),
	lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
}

var (
	mu      sync.Mutex
	verbose bool
	color   = isTerminal(os.Stderr)
	output  io.Writer = os.Stderr
)

// SetVerbose turns Debug, Info and Section output on or off.
func SetVerbose(v bool) {
	mu.Lock()
	verbose = v
	mu.Unlock()
}

// IsVerbose reports whether verbose output is on.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetOutput redirects the log. Labels are coloured only when w is a
// terminal and NO_COLOR is unset.
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	color = isTerminal(w)
	mu.Unlock()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func logf(l level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if l < levelWarn && !verbose {
		return
	}
	label := "[" + labels[l] + "]"
	if color {
		label = styles[l].Render(label)
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(output, label, strings.TrimRight(msg, "\n"))
}

func Debug(format string, args ...any) { logf(levelDebug, format, args...) }
func Info(format string, args ...any)  { logf(levelInfo, format, args...) }
func Warn(format string, args ...any)  { logf(levelWarn, format, args...) }
func Error(format string, args ...any) { logf(levelError, format, args...) }

// Section starts a named block of verbose output.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if !verbose {
		return
	}
	header := "== " + name + " =="
	if color {
		header = lipgloss.NewStyle().Bold(true).Render(header)
	}
	fmt.Fprintln(output)
	fmt.Fprintln(output, header)
}
