// Package tui renders live progress for local review runs: a spinner while
// the repository is scanned and indexed, then a progress bar as the analysis
// roles work through the changed files.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/driftaldev/redline/internal/core"
	"github.com/driftaldev/redline/internal/pipeline"
)

// ReviewFunc runs a review and reports per-file progress through the
// callback.
type ReviewFunc func(progress pipeline.ProgressFunc) (*core.ReviewResults, error)

// Run drives a review under a live progress display and returns its results
// once the program exits.
func Run(review ReviewFunc) (*core.ReviewResults, error) {
	p := tea.NewProgram(newModel())

	var (
		results *core.ReviewResults
		err     error
	)
	go func() {
		results, err = review(func(completed, total int, step string) {
			p.Send(progressMsg{completed: completed, total: total, step: step})
		})
		p.Send(doneMsg{err: err})
	}()

	if _, runErr := p.Run(); runErr != nil {
		return nil, runErr
	}
	if err != nil {
		return nil, err
	}
	return results, nil
}
