package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Makepad-fr/fxlist/internal/currencylist"
	"github.com/Makepad-fr/fxlist/internal/orchestrator"
)

// Options wires the interactive list to its collaborators.
type Options struct {
	Store        *currencylist.Store
	Orchestrator *orchestrator.Orchestrator
	Interval     time.Duration
	Logger       *zap.SugaredLogger
}

// Run starts the Bubble Tea program and the periodic refresh. It returns
// once the user quits or ctx is done; the refresh loop stops with it.
func Run(ctx context.Context, opt Options) error {
	logger := opt.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := New(opt.Store, func() {
		if _, err := opt.Orchestrator.Refresh(ctx); err != nil {
			logger.Debugw("manual refresh abandoned", "error", err)
		}
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	binding := opt.Orchestrator.Attach(func(res orchestrator.Result) {
		p.Send(resultMsg{res: res})
	})
	defer binding.Detach()

	go opt.Orchestrator.Run(ctx, opt.Interval)

	logger.Infow("interactive list started", "interval", opt.Interval)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}
	logger.Infow("interactive list stopped", "error", err)
	return err
}
