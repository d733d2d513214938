package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazadus/hitback-cards/internal/backend"
	"github.com/hazadus/hitback-cards/internal/retry"
)

// createEnvsCommand создает команду envs с привязкой к экземпляру приложения
func (app *Application) createEnvsCommand(ctx context.Context) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "envs",
		Short: "List backend environments",
		Long:  `List configured backend environments and mark the active one. With --check every environment is probed once.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.listEnvironments(ctx, check)
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "probe the tracks endpoint of every environment")

	return cmd
}

func (app *Application) listEnvironments(ctx context.Context, check bool) error {
	active := app.Generator.Snapshot().Environment.Key

	for _, env := range app.Generator.Environments() {
		marker := " "
		if env.Key == active {
			marker = "●"
		}
		fmt.Printf("%s %s %-6s %-12s %s\n", marker, env.Icon, env.Key, env.Name, env.URL)

		if check {
			fmt.Printf("     %s\n", app.probe(ctx, env.URL))
		}
	}
	return nil
}

// probe одна попытка загрузить каталог, без повторов
func (app *Application) probe(ctx context.Context, baseURL string) string {
	client := backend.NewClient(backend.Options{
		BaseURL:    baseURL,
		TracksPath: app.Config.TracksPath,
		Policy: retry.Policy{
			MaxAttempts: 1,
			Timeout:     app.Config.Retry.Timeout,
		},
		Logger: app.Logger,
	})

	start := time.Now()
	tracks, err := client.FetchTracks(ctx)
	if err != nil {
		return fmt.Sprintf("❌ %v", err)
	}
	return fmt.Sprintf("✅ треков: %d за %s", len(tracks), time.Since(start).Round(time.Millisecond))
}
