package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hazadus/hitback-cards/internal/deck"
)

// createScanCommand создает команду scan с привязкой к экземпляру приложения
func (app *Application) createScanCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [card number | payload]",
		Short: "Send a card payload to the backend scan endpoint",
		Long:  `Validate a card payload (or the payload of a card by its number) and send it to the backend the way a player's phone does.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			payload, err := app.resolvePayload(args[0])
			if err != nil {
				return err
			}
			return app.scanPayload(ctx, payload)
		},
	}
}

// resolvePayload принимает номер карты или payload и возвращает проверенный payload
func (app *Application) resolvePayload(arg string) (string, error) {
	if number, err := strconv.Atoi(arg); err == nil {
		for _, card := range app.Generator.Snapshot().Cards {
			if card.Number == number {
				return card.QRPayload, nil
			}
		}
		return "", fmt.Errorf("карта с номером %d не найдена", number)
	}

	if _, err := deck.ParsePayload(arg); err != nil {
		return "", fmt.Errorf("некорректный payload: %w", err)
	}
	return arg, nil
}

func (app *Application) scanPayload(ctx context.Context, payload string) error {
	fmt.Printf("📷 Сканируем: %s\n", payload)

	result, err := app.Backend.Scan(ctx, payload)
	if err != nil {
		return fmt.Errorf("ошибка сканирования: %w", err)
	}

	fmt.Printf("✅ Ответ бэкенда (%s):\n", result.URL)
	fmt.Printf("   Трек: %s - %s\n", result.Track.Artist, result.Track.Title)
	if result.Question.Question != "" {
		fmt.Printf("   Вопрос (%s): %s\n", result.Question.Type, result.Question.Question)
	}
	if result.Filters.Genre != "" || result.Filters.Decade != "" {
		fmt.Printf("   Фильтры: жанр %s, декада %s\n", result.Filters.Genre, result.Filters.Decade)
	}
	return nil
}
