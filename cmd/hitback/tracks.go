package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazadus/hitback-cards/internal/utils"
)

// createTracksCommand создает команду tracks с привязкой к экземпляру приложения
func (app *Application) createTracksCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "tracks",
		Short: "List tracks of the catalog",
		Long:  `Load tracks for the current mode and print the catalog.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.listTracks(ctx)
		},
	}
}

func (app *Application) listTracks(ctx context.Context) error {
	if err := app.Generator.Initialize(ctx); err != nil {
		return err
	}
	snapshot := app.Generator.Snapshot()

	if snapshot.SourceErr != nil {
		fmt.Printf("⚠️  Бэкенд недоступен: %v\n", snapshot.SourceErr)
	}

	if len(snapshot.Tracks) == 0 {
		fmt.Println("📚 Каталог пуст")
		return nil
	}

	fmt.Printf("📚 Найдено треков: %d (источник: %s)\n\n", len(snapshot.Tracks), snapshot.Source)

	fmt.Printf("%-5s %-28s %-32s %-12s %-8s\n",
		"ID", "Исполнитель", "Название", "Жанр", "Декада")
	fmt.Println(strings.Repeat("-", 90))

	for _, t := range snapshot.Tracks {
		fmt.Printf("%-5s %-28s %-32s %-12s %-8s\n",
			t.ID,
			utils.TruncateString(t.Artist, 26),
			utils.TruncateString(t.Title, 30),
			t.Genre,
			t.Decade)
	}

	fmt.Println()
	fmt.Println("💡 Используйте 'hitback play [ID]' для прослушивания трека")
	return nil
}
