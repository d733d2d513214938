// Package tui содержит компоненты для текстового пользовательского интерфейса
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/hitback-cards/internal/tui/app"
)

// App представляет основное TUI приложение
type App struct {
	controller   app.Controller
	audioDir     string
	previewLimit time.Duration
}

// NewApp создает новый экземпляр TUI приложения
func NewApp(controller app.Controller, audioDir string, previewLimit time.Duration) *App {
	return &App{
		controller:   controller,
		audioDir:     audioDir,
		previewLimit: previewLimit,
	}
}

// Run запускает TUI приложение
func (tuiApp *App) Run(ctx context.Context) error {
	model := app.NewMainModel(ctx, tuiApp.controller, tuiApp.audioDir, tuiApp.previewLimit)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := p.Run()

	// Закрываем плеер после завершения программы
	model.Close()

	return err
}
