package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hazadus/hitback-cards/internal/config"
	"github.com/hazadus/hitback-cards/internal/deck"
	"github.com/hazadus/hitback-cards/internal/publisher"
)

// Таймаут выгрузки всей колоды
const exportTimeout = 10 * time.Minute

// createDownloadCommand создает команду download с привязкой к экземпляру приложения
func (app *Application) createDownloadCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "download [dir]",
		Short: "Download QR images of all cards",
		Long:  `Download the QR image of every card to a directory (the configured download_dir by default).`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dir := app.Config.DownloadDir
			if len(args) == 1 {
				var err error
				if dir, err = config.ExpandHome(args[0]); err != nil {
					return err
				}
			}

			downloadCtx, cancel := context.WithTimeout(ctx, exportTimeout)
			defer cancel()
			return app.downloadCards(downloadCtx, dir)
		},
	}
}

func (app *Application) downloadCards(ctx context.Context, dir string) error {
	// Оценки пула считаются по реальному каталогу
	if err := app.Generator.Initialize(ctx); err != nil {
		return err
	}

	cards := app.Generator.Snapshot().Cards

	fmt.Printf("📥 Скачиваем QR коды карт:\n")
	fmt.Printf("   Карт: %d\n", len(cards))
	fmt.Printf("   Каталог: %s\n", dir)
	fmt.Println()

	service := publisher.NewService(nil, nil, app.Logger)
	start := time.Now()

	summary, err := service.SaveToDir(ctx, cards, dir, printProgress)
	fmt.Println()
	if err != nil {
		return fmt.Errorf("ошибка скачивания колоды: %w", err)
	}

	fmt.Printf("✅ Сохранено карт: %d (%s) за %s\n",
		len(summary.Results), humanize.Bytes(uint64(summary.Bytes)), time.Since(start).Round(time.Millisecond))
	return nil
}

// printProgress выводит прогресс выгрузки в одну строку
func printProgress(done, total int, card deck.Card) {
	percentage := float64(done) / float64(total) * 100
	fmt.Printf("\r📊 Прогресс: %.1f%% | Карта %d/%d | %s",
		percentage, done, total, deck.ImageFileName(card))
}
