package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazadus/hitback-cards/internal/catalog"
	"github.com/hazadus/hitback-cards/internal/player"
	"github.com/hazadus/hitback-cards/internal/utils"
)

// createPlayCommand создает команду play с привязкой к экземпляру приложения
func (app *Application) createPlayCommand(ctx context.Context) *cobra.Command {
	var seconds int

	cmd := &cobra.Command{
		Use:   "play [track id]",
		Short: "Play a preview of a track by its ID",
		Long:  `Play the first seconds of a track from the catalog. The audio file is looked up in audio_dir.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if seconds < 0 {
				return fmt.Errorf("длительность не может быть отрицательной: %d", seconds)
			}
			return app.playByID(ctx, args[0], time.Duration(seconds)*time.Second)
		},
	}
	cmd.Flags().IntVar(&seconds, "seconds", int(player.DefaultPreview.Seconds()), "preview length in seconds, 0 plays the whole track")

	return cmd
}

// enableRawMode включает режим raw для терминала (без буферизации и echo)
func enableRawMode() {
	cmd := exec.Command("stty", "-echo", "-icanon")
	cmd.Stdin = os.Stdin
	_ = cmd.Run() // Без stty управление с клавиатуры просто недоступно
}

// disableRawMode восстанавливает нормальный режим терминала
func disableRawMode() {
	cmd := exec.Command("stty", "echo", "icanon")
	cmd.Stdin = os.Stdin
	_ = cmd.Run()
}

// readSingleChar читает одиночный символ без ожидания Enter
func readSingleChar() (byte, error) {
	buffer := make([]byte, 1)
	_, err := os.Stdin.Read(buffer)
	return buffer[0], err
}

// findTrack ищет трек по ID в каталоге текущего режима
func (app *Application) findTrack(ctx context.Context, id string) (*catalog.Track, string, error) {
	if err := app.Generator.Initialize(ctx); err != nil {
		return nil, "", err
	}

	track, err := catalog.FindByID(app.Generator.Snapshot().Tracks, id)
	if err != nil {
		return nil, "", err
	}

	source, err := player.ResolveSource(*track, app.Config.AudioDir)
	if err != nil {
		return nil, "", err
	}
	return track, source, nil
}

func (app *Application) playByID(ctx context.Context, id string, limit time.Duration) error {
	track, source, err := app.findTrack(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("🎵 Сейчас играет:\n")
	fmt.Printf("   ID: %s\n", track.ID)
	fmt.Printf("   Исполнитель: %s\n", track.Artist)
	fmt.Printf("   Название: %s\n", track.Title)
	fmt.Printf("   Жанр: %s, %s\n", track.Genre, track.Decade)
	if limit > 0 {
		fmt.Printf("   Фрагмент: %s\n", utils.FormatDurationFromSeconds(int(limit.Seconds())))
	}
	fmt.Println()

	p := player.NewPlayer()
	defer p.Close()

	if err := p.Play(track, source, limit); err != nil {
		return fmt.Errorf("ошибка запуска воспроизведения: %w", err)
	}

	fmt.Printf("🎮 Управление:\n")
	fmt.Printf("   [Пробел] - пауза/воспроизведение\n")
	fmt.Printf("   [Ctrl+C] - остановить и выйти\n")
	fmt.Println()

	enableRawMode()
	defer disableRawMode()

	go func() {
		for {
			char, err := readSingleChar()
			if err != nil {
				return
			}
			if char == ' ' || char == '\n' || char == '\r' {
				p.Pause()
			}
		}
	}()

	for {
		select {
		case status := <-p.Progress():
			displayProgress(status)
		case <-p.Done():
			fmt.Println("\n✅ Воспроизведение завершено")
			return nil
		case <-ctx.Done():
			fmt.Println("\n⏹️  Воспроизведение остановлено")
			p.Stop()
			return nil
		}
	}
}

// displayProgress отображает прогресс воспроизведения
func displayProgress(status player.Status) {
	icon := "▶️"
	text := player.StatusText(status.StuckCount)
	if !status.IsPlaying {
		icon = "⏸️"
		text = "На паузе"
	} else if status.StuckCount > 3 {
		icon = "⚠️"
	}

	fmt.Printf("\r\033[K%s  %s / %s | %s",
		icon,
		utils.FormatDuration(status.Current),
		utils.FormatDuration(status.Total),
		text)
}
