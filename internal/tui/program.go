package tui

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/b23bb1023/Manhwa-agent/internal/dashboard"
	"github.com/b23bb1023/Manhwa-agent/internal/readinglist"
	"github.com/b23bb1023/Manhwa-agent/internal/reconcile"
)

// ProgramRenderer forwards refreshes started outside the program, such as
// a file change, into the running program.
type ProgramRenderer struct {
	program *tea.Program
}

func (r ProgramRenderer) Render(cards []reconcile.Card) {
	r.program.Send(cardsMsg{cards: cards})
}

// Run blocks until the user quits or ctx is cancelled. When watchPath is
// set the view reloads whenever that file changes.
func Run(ctx context.Context, controller *dashboard.Controller, watchPath string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(New(runCtx, controller), tea.WithAltScreen(), tea.WithContext(runCtx))
	controller.SetRenderer(ProgramRenderer{program: program})
	defer controller.SetRenderer(nil)

	if watchPath != "" {
		go func() {
			err := readinglist.Watch(runCtx, watchPath, logger, func() {
				controller.Refresh(runCtx)
			})
			if err != nil {
				logger.Warn("reading list watch stopped", "path", watchPath, "error", err)
			}
		}()
	}

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
