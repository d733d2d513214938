package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hazadus/hitback-cards/internal/catalog"
	"github.com/hazadus/hitback-cards/internal/generator"
)

// Сколько новых треков выводить после синхронизации
const newTracksShown = 10

// createSyncCommand создает команду sync с привязкой к экземпляру приложения
func (app *Application) createSyncCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Sync the track catalog from the backend",
		Long:  `Fetch the track catalog from the backend, report new tracks and regenerate the deck.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.syncTracks(ctx)
		},
	}
}

func (app *Application) syncTracks(ctx context.Context) error {
	// Новые треки считаются относительно локального каталога
	if err := app.Generator.LoadLocal(ctx); err != nil {
		return fmt.Errorf("ошибка загрузки локального каталога: %w", err)
	}

	env := app.Generator.Snapshot().Environment
	fmt.Printf("🔄 Синхронизация с %s %s (%s)\n", env.Icon, env.Name, app.Backend.TracksURL())

	var result generator.SyncResult
	err := app.withSpinner(ctx, "Синхронизация...", func(ctx context.Context) error {
		var err error
		result, err = app.Generator.Sync(ctx)
		return err
	})
	if err != nil {
		fmt.Println("❌ Не удалось синхронизировать каталог")
		fmt.Println("💡 Повторите попытку позже или используйте '--mode static'")
		return err
	}

	snapshot := app.Generator.Snapshot()
	fmt.Printf("✅ Синхронизация завершена %s\n", humanize.Time(result.At))
	fmt.Printf("   Треков: %d, карт: %d\n", len(result.Updated), len(snapshot.Cards))

	printNewTracks(result.Added)
	return nil
}

func printNewTracks(added []catalog.Track) {
	if len(added) == 0 {
		fmt.Println("   Новых треков нет")
		return
	}

	fmt.Printf("🎉 Найдено новых треков: %d\n", len(added))
	head, rest := catalog.Head(added, newTracksShown)
	for _, t := range head {
		fmt.Printf("   • %s - %s\n", t.Artist, t.Title)
	}
	if rest > 0 {
		fmt.Printf("   … и еще %d\n", rest)
	}
}
