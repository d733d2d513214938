package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/hazadus/hitback-cards/internal/config"
)

// createRootCommand создает корневую команду с настроенными подкомандами
func (app *Application) createRootCommand(ctx context.Context) *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:   "hitback",
		Short: "HITBACK card deck generator",
		Long: `Generate the HITBACK card deck with QR codes, sync the track catalog
from the backend and browse everything in the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			return app.configure(cfg, os.Stderr)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", config.DefaultConfigPath, "path to the config file")
	pf.StringVar(&flags.envFile, "env-file", config.DefaultEnvFile, "path to the .env file")
	pf.StringVar(&flags.env, "env", "", "backend environment (local, dev, prod)")
	pf.StringVar(&flags.mode, "mode", "", "track source mode (static, dynamic, hybrid)")
	pf.StringVar(&flags.deckFile, "deck", "", "YAML file with deck rules")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	// Добавляем команды, передавая в них экземпляр приложения и контекст
	rootCmd.AddCommand(app.createDeckCommand(ctx))
	rootCmd.AddCommand(app.createTracksCommand(ctx))
	rootCmd.AddCommand(app.createSyncCommand(ctx))
	rootCmd.AddCommand(app.createEnvsCommand(ctx))
	rootCmd.AddCommand(app.createDownloadCommand(ctx))
	rootCmd.AddCommand(app.createPublishCommand(ctx))
	rootCmd.AddCommand(app.createScanCommand(ctx))
	rootCmd.AddCommand(app.createPlayCommand(ctx))
	rootCmd.AddCommand(app.createCatalogCommand())
	rootCmd.AddCommand(app.createTUICommand(ctx))

	return rootCmd
}
