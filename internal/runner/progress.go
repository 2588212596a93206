// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package runner

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/chriscod3/pdf-to-audio-converter/pkg/types"
)

// Progress observes job completions. Step is called once per finished job,
// success or failure; implementations must be safe for concurrent use and
// must not influence control flow.
type Progress interface {
	Step(completed, total int, result types.ConversionResult)
}

// NopProgress discards progress updates. Used in tests and by callers that
// do their own reporting.
type NopProgress struct{}

func (NopProgress) Step(int, int, types.ConversionResult) {}

// Theme holds the color scheme for console progress lines.
type Theme struct {
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

// ConsoleProgress prints one status line per completed job.
type ConsoleProgress struct {
	mu    sync.Mutex
	out   io.Writer
	theme Theme

	okStyle   lipgloss.Style
	failStyle lipgloss.Style
	hintStyle lipgloss.Style
}

// NewConsoleProgress creates a reporter writing to out.
func NewConsoleProgress(out io.Writer) *ConsoleProgress {
	t := defaultTheme
	return &ConsoleProgress{
		out:       out,
		theme:     t,
		okStyle:   lipgloss.NewStyle().Foreground(t.Success),
		failStyle: lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		hintStyle: lipgloss.NewStyle().Foreground(t.Hint),
	}
}

// Step writes the per-file status line with a [completed/total] counter.
func (p *ConsoleProgress) Step(completed, total int, result types.ConversionResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	base := filepath.Base(result.Job.SourcePath)
	counter := p.hintStyle.Render(fmt.Sprintf("[%d/%d]", completed, total))

	if result.Status == types.JobSucceeded {
		fmt.Fprintf(p.out, "%s %s %s\n", counter, p.okStyle.Render("converted:"), base)
		return
	}
	fmt.Fprintf(p.out, "%s %s %s (%s)\n", counter, p.failStyle.Render("failed:"), base, result.ErrorDetail())
}
