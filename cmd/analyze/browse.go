package main

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/pkg/marketdata"
	"github.com/urfave/cli/v3"
)

func browseAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// the terminal belongs to the UI, so nothing is logged
	log := logger.NewNopLogger()

	open := func(source marketdata.SourceType) (Browser, func(), error) {
		selected := cfg
		selected.SourceConfig.Type = source

		a, err := buildApp(selected, log, io.Discard)
		if err != nil {
			return nil, nil, err
		}

		return a.analyzer, a.close, nil
	}

	program := tea.NewProgram(
		NewBrowseModel(open, int(cmd.Int("limit"))),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	final, err := program.Run()
	if model, ok := final.(BrowseModel); ok {
		model.shutdown()
	}

	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}

	return err
}
