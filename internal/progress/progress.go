package progress

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/go-scripts/imagegrab/internal/types"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// ProgressTracker prints the human-readable report of a run. Interactive
// trackers also draw a spinner during the page fetch and a progress bar
// under the per-resource lines.
type ProgressTracker struct {
	out         io.Writer
	interactive bool
	bar         progress.Model
	spin        *spinner.Spinner
	total       int
	processed   int
	mu          sync.Mutex
}

// New creates a tracker writing to out
func New(out io.Writer, interactive bool) *ProgressTracker {
	return &ProgressTracker{
		out:         out,
		interactive: interactive,
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
	}
}

// StartPage indicates that the page itself is being fetched
func (p *ProgressTracker) StartPage(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.interactive {
		fmt.Fprintf(p.out, "Fetching page: %s\n", url)
		return
	}
	p.spin = spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(p.out))
	p.spin.Suffix = " Fetching page: " + url
	p.spin.Start()
}

// FinishPage stops the page spinner
func (p *ProgressTracker) FinishPage() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.spin != nil {
		p.spin.Stop()
		p.spin = nil
	}
}

// SetTotal records the number of discovered locators
func (p *ProgressTracker) SetTotal(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	fmt.Fprintf(p.out, "Discovered image URLs: %d\n", total)
}

// Record prints the outcome of one resource
func (p *ProgressTracker) Record(r types.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processed++
	if p.interactive {
		fmt.Fprint(p.out, "\r\033[K")
	}

	prefix := fmt.Sprintf("[%d/%d]", p.processed, p.total)
	switch r.Outcome {
	case types.OutcomeSaved:
		fmt.Fprintf(p.out, "%s %s %s -> %s\n", prefix, okStyle.Render("[OK]"), r.Locator, r.Path)
	case types.OutcomeDuplicate:
		fmt.Fprintf(p.out, "%s %s %s (duplicate content)\n", prefix, warnStyle.Render("[SKIP]"), r.Locator)
	default:
		fmt.Fprintf(p.out, "%s %s %s: %s\n", prefix, errorStyle.Render("[FAIL]"), r.Locator, r.Reason)
	}

	if p.interactive && p.total > 0 {
		fmt.Fprintf(p.out, "%s %d/%d", p.bar.ViewAs(p.fraction()), p.processed, p.total)
	}
}

func (p *ProgressTracker) fraction() float64 {
	if p.total == 0 {
		return 0
	}
	return float64(p.processed) / float64(p.total)
}

// Summary prints the final report
func (p *ProgressTracker) Summary(s *types.Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.interactive {
		fmt.Fprint(p.out, "\r\033[K")
	}

	dest := s.Destination
	if abs, err := filepath.Abs(dest); err == nil {
		dest = abs
	}

	fmt.Fprintf(p.out, "\n%s\n", titleStyle.Render("===== Result ====="))
	fmt.Fprintf(p.out, "Destination: %s\n", dest)
	fmt.Fprintf(p.out, "Saved: %d, Skipped: %d (duplicates: %d, failed: %d)\n",
		s.Saved, s.Skipped(), s.Duplicates, s.Failed)
}
