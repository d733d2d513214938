package main

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hazadus/hitback-cards/internal/publisher"
	"github.com/hazadus/hitback-cards/internal/s3"
)

// Префикс ключей опубликованных колод
const decksPrefix = "decks"

// createPublishCommand создает команду publish с привязкой к экземпляру приложения
func (app *Application) createPublishCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Publish QR images of all cards to S3",
		Long:  `Upload the QR image of every card and a deck.json manifest to S3 under decks/<fingerprint>.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if !app.Config.HasS3() {
				return errors.New("S3 не настроен: задайте aws_bucket_name и aws_region")
			}

			storage, err := s3.NewUploader(&s3.Config{
				Region:     app.Config.AwsRegion,
				AccessKey:  app.Config.AwsAccessKey,
				SecretKey:  app.Config.AwsSecretKey,
				Endpoint:   app.Config.AwsEndpoint,
				BucketName: app.Config.AwsBucketName,
			})
			if err != nil {
				return fmt.Errorf("ошибка создания S3 uploader: %w", err)
			}

			publishCtx, cancel := context.WithTimeout(ctx, exportTimeout)
			defer cancel()
			return app.publishCards(publishCtx, storage)
		},
	}
}

func (app *Application) publishCards(ctx context.Context, storage publisher.Storage) error {
	// Оценки пула считаются по реальному каталогу
	if err := app.Generator.Initialize(ctx); err != nil {
		return err
	}

	snapshot := app.Generator.Snapshot()
	prefix := path.Join(decksPrefix, snapshot.DeckFingerprint)

	fmt.Printf("📤 Публикуем колоду в S3:\n")
	fmt.Printf("   Карт: %d\n", len(snapshot.Cards))
	fmt.Printf("   Бакет: %s\n", app.Config.AwsBucketName)
	fmt.Printf("   Префикс: %s\n", prefix)
	fmt.Println()

	service := publisher.NewService(nil, storage, app.Logger)
	summary, err := service.Publish(ctx, snapshot.Cards, prefix, printProgress)
	fmt.Println()
	if err != nil {
		return fmt.Errorf("ошибка публикации колоды: %w", err)
	}

	fmt.Printf("✅ Опубликовано карт: %d (%s)\n", len(summary.Results), humanize.Bytes(uint64(summary.Bytes)))
	fmt.Printf("   Манифест: %s\n", summary.ManifestURL)
	return nil
}
