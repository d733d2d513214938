package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hazadus/hitback-cards/internal/logger"
	"github.com/hazadus/hitback-cards/internal/player"
	"github.com/hazadus/hitback-cards/internal/tui"
)

// createTUICommand создает команду tui с привязкой к экземпляру приложения
func (app *Application) createTUICommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch TUI (Terminal User Interface)",
		Long:  `Launch interactive terminal user interface for browsing the deck, syncing tracks and previewing songs.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.launchTUI(ctx)
		},
	}
}

func (app *Application) launchTUI(ctx context.Context) error {
	if err := app.Generator.Initialize(ctx); err != nil {
		return err
	}

	// Логи в stderr ломают экран TUI, оставляем только ошибки
	app.Logger.SetLevel(logger.ErrorLevel)

	return tui.NewApp(app.Generator, app.Config.AudioDir, player.DefaultPreview).Run(ctx)
}
