package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"surgelint/internal/driver"
	"surgelint/internal/ui"
)

type lintOutcome struct {
	result driver.Outcome
	err    error
}

func runLintWithUI(ctx context.Context, title string, files []string, opts driver.Options) (driver.Outcome, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan lintOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.Run(ctx, files, opts)
		outcomeCh <- lintOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// дочитываем события, если UI вышел раньше
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
