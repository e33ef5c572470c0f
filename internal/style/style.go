// Package style holds the terminal styles shared by the commands
package style

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// colours (see https://www.ditig.com/publications/256-colors-cheat-sheet)
const (
	Red    = lipgloss.Color("1")
	Green  = lipgloss.Color("2")
	Olive  = lipgloss.Color("3")
	Grey   = lipgloss.Color("8")
	Silver = lipgloss.Color("7")
)

var (
	Success = lipgloss.NewStyle().Foreground(Green)
	Failure = lipgloss.NewStyle().Foreground(Red)
	Warning = lipgloss.NewStyle().Foreground(Olive)
	Muted   = lipgloss.NewStyle().Foreground(Grey)
	Bold    = lipgloss.NewStyle().Bold(true)
)

var (
	colorOnce    sync.Once
	colorEnabled = true
)

// ColorEnabled returns false when the NO_COLOR environment variable is present
// See https://no-color.org for the convention
func ColorEnabled() bool {
	colorOnce.Do(func() {
		if _, disabled := os.LookupEnv("NO_COLOR"); disabled {
			colorEnabled = false
			return
		}

		if term := os.Getenv("TERM"); term == "dumb" {
			colorEnabled = false
			return
		}

		if !(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())) {
			colorEnabled = false
		}
	})
	return colorEnabled
}

// Render applies the style only when color output is appropriate
func Render(s lipgloss.Style, text string) string {
	if !ColorEnabled() {
		return text
	}
	return s.Render(text)
}
