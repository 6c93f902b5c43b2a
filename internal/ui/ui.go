// Package ui holds terminal styling and the process logger for the CLI.
package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// Logger is the CLI logger. Init replaces it; the default writes to stderr.
var Logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// Init sets up color detection and the logger. Call this once at CLI startup.
func Init(noColor bool) {
	noColor = noColor || os.Getenv("NO_COLOR") != ""

	// Pre-set dark background to prevent termenv OSC query
	lipgloss.SetHasDarkBackground(true)
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	Logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
	})
	log.SetDefault(Logger)
}

func Header(s string) string { return headerStyle.Render(s) }
func Dim(s string) string    { return dimStyle.Render(s) }
func Green(s string) string  { return successStyle.Render(s) }
func Yellow(s string) string { return warningStyle.Render(s) }

// Label renders a label name in its own #RRGGBB color
func Label(name, color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(name)
}

// Check renders a completion box
func Check(done bool) string {
	if done {
		return Green("[x]")
	}
	return "[ ]"
}

// Pad right-pads s to width visible cells, ignoring escape sequences
func Pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
