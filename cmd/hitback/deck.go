package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazadus/hitback-cards/internal/deck"
)

// createDeckCommand создает команду deck с привязкой к экземпляру приложения
func (app *Application) createDeckCommand(ctx context.Context) *cobra.Command {
	var payloads bool

	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Show the generated card deck",
		Long:  `Load tracks for the current mode and print every card of the deck with its QR payload and pool estimate.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.showDeck(ctx, payloads)
		},
	}
	cmd.Flags().BoolVar(&payloads, "payloads", false, "print only QR payloads, one per line")

	return cmd
}

func (app *Application) showDeck(ctx context.Context, payloadsOnly bool) error {
	if err := app.Generator.Initialize(ctx); err != nil {
		return err
	}
	snapshot := app.Generator.Snapshot()

	if payloadsOnly {
		for _, card := range snapshot.Cards {
			fmt.Println(card.QRPayload)
		}
		return nil
	}

	fmt.Printf("🃏 Колода: %d карт, треков в каталоге: %d (%s)\n",
		len(snapshot.Cards), len(snapshot.Tracks), snapshot.Source)
	fmt.Printf("   Окружение: %s %s\n", snapshot.Environment.Icon, snapshot.Environment.Name)
	fmt.Printf("   Отпечаток: %s\n\n", snapshot.DeckFingerprint)

	fmt.Printf("%-4s %-11s %-10s %-12s %-8s %-6s\n",
		"№", "Тип", "Сложность", "Жанр", "Декада", "Пул")
	fmt.Println(strings.Repeat("-", 60))

	for _, card := range snapshot.Cards {
		fmt.Printf("%02d   %s %-8s %-10s %-12s %-8s ~%d\n",
			card.Number,
			deck.Icon(card.Type),
			card.Type,
			deck.DifficultyDots(card.Difficulty),
			card.Genre,
			card.Decade,
			card.EstimatedPool)
	}

	if snapshot.SourceErr != nil {
		fmt.Printf("\n⚠️  Бэкенд недоступен, используется резервный каталог: %v\n", snapshot.SourceErr)
	}

	fmt.Println()
	fmt.Println("💡 Используйте 'hitback download' для сохранения QR кодов")
	return nil
}
