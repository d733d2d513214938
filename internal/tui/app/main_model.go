// Package app содержит основную логику TUI приложения
package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/hitback-cards/internal/generator"
	"github.com/hazadus/hitback-cards/internal/player"
	"github.com/hazadus/hitback-cards/internal/track"
	"github.com/hazadus/hitback-cards/internal/tui/carddetail"
	"github.com/hazadus/hitback-cards/internal/tui/cardlist"
	tuiPlayer "github.com/hazadus/hitback-cards/internal/tui/player"
	"github.com/hazadus/hitback-cards/internal/tui/tracklist"
)

// ScreenType определяет тип текущего экрана
type ScreenType int

// Константы для типов экранов
const (
	// CardlistScreen - экран колоды
	CardlistScreen ScreenType = iota
	// CardScreen - экран одной карты
	CardScreen
	// TracklistScreen - экран списка треков
	TracklistScreen
	// PlayerScreen - экран предпрослушивания
	PlayerScreen
)

// Controller операции над состоянием, которые вызывает интерфейс
type Controller interface {
	Snapshot() generator.Snapshot
	Sync(ctx context.Context) (generator.SyncResult, error)
	SetMode(ctx context.Context, mode track.Mode) error
	SetEnvironment(key string) error
	NextEnvironment() string
}

// SyncFinishedMsg результат фоновой синхронизации
type SyncFinishedMsg struct {
	Result generator.SyncResult
	Err    error
}

// StateChangedMsg результат смены режима или окружения
type StateChangedMsg struct {
	Err error
}

// MainModel представляет главную модель TUI
type MainModel struct {
	ctx            context.Context
	controller     Controller
	audioDir       string
	previewLimit   time.Duration
	currentScreen  ScreenType
	cardlistModel  *cardlist.Model
	cardModel      *carddetail.Model
	tracklistModel *tracklist.Model
	playerModel    *tuiPlayer.Model
	globalPlayer   *player.Player // Глобальный плеер для переиспользования
	width, height  int
}

// NewMainModel создает новую главную модель
func NewMainModel(ctx context.Context, controller Controller, audioDir string, previewLimit time.Duration) *MainModel {
	snapshot := controller.Snapshot()

	return &MainModel{
		ctx:            ctx,
		controller:     controller,
		audioDir:       audioDir,
		previewLimit:   previewLimit,
		currentScreen:  CardlistScreen,
		cardlistModel:  cardlist.NewModel(snapshot),
		tracklistModel: tracklist.NewModel(snapshot.Tracks),
		globalPlayer:   player.NewPlayer(),
	}
}

// Init инициализирует модель
func (m *MainModel) Init() tea.Cmd {
	return m.cardlistModel.Init()
}

// Update обрабатывает сообщения
func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Глобальные горячие клавиши
		if msg.String() == "ctrl+c" {
			m.globalPlayer.Stop()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		// Размер нужен всем экранам, а не только активному
		m.cardlistModel.Update(msg)
		m.tracklistModel.Update(msg)
		if m.cardModel != nil {
			m.cardModel.Update(msg)
		}
		if m.playerModel != nil {
			m.playerModel.Update(msg)
		}
		return m, nil

	case spinner.TickMsg:
		// Спиннер колоды крутится, даже если открыт другой экран
		var cmd tea.Cmd
		m.cardlistModel, cmd = m.cardlistModel.Update(msg)
		return m, cmd

	case cardlist.CardSelectedMsg:
		m.currentScreen = CardScreen
		m.cardModel = carddetail.NewModel(msg.Card)
		m.cardModel.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		return m, m.cardModel.Init()

	case carddetail.GoBackMsg:
		m.currentScreen = CardlistScreen
		m.cardModel = nil
		return m, nil

	case cardlist.ShowTracksMsg:
		m.currentScreen = TracklistScreen
		return m, nil

	case tracklist.GoBackMsg:
		m.currentScreen = CardlistScreen
		return m, nil

	case tracklist.TrackSelectedMsg:
		m.currentScreen = PlayerScreen
		m.playerModel = tuiPlayer.NewModelWithPlayer(msg.Track, m.audioDir, m.previewLimit, m.globalPlayer)
		return m, m.playerModel.Init()

	case tuiPlayer.GoBackMsg:
		m.currentScreen = TracklistScreen
		m.playerModel = nil
		return m, nil

	case cardlist.SyncRequestedMsg:
		return m, tea.Batch(m.cardlistModel.StartBusy("Синхронизация..."), m.syncCmd())

	case cardlist.NextModeMsg:
		mode := m.controller.Snapshot().Mode.Next()
		return m, tea.Batch(m.cardlistModel.StartBusy("Переключение режима: "+mode.Label()), m.setModeCmd(mode))

	case cardlist.NextEnvironmentMsg:
		key := m.controller.NextEnvironment()
		return m, tea.Batch(m.cardlistModel.StartBusy("Переключение окружения..."), m.setEnvironmentCmd(key))

	case SyncFinishedMsg:
		m.cardlistModel.StopBusy(msg.Err)
		m.refresh()
		if msg.Err == nil {
			m.cardlistModel.ShowNewTracks(len(msg.Result.Updated), msg.Result.Added)
		}
		return m, nil

	case StateChangedMsg:
		m.cardlistModel.StopBusy(msg.Err)
		m.refresh()
		return m, nil
	}

	// Передаем сообщение активной модели
	var cmd tea.Cmd
	switch m.currentScreen {
	case CardlistScreen:
		m.cardlistModel, cmd = m.cardlistModel.Update(msg)

	case CardScreen:
		if m.cardModel != nil {
			m.cardModel, cmd = m.cardModel.Update(msg)
		}

	case TracklistScreen:
		m.tracklistModel, cmd = m.tracklistModel.Update(msg)

	case PlayerScreen:
		if m.playerModel != nil {
			updatedModel, playerCmd := m.playerModel.Update(msg)
			if playerModel, ok := updatedModel.(*tuiPlayer.Model); ok {
				m.playerModel = playerModel
			}
			cmd = playerCmd
		}
	}

	return m, cmd
}

// View отображает интерфейс
func (m *MainModel) View() string {
	switch m.currentScreen {
	case CardlistScreen:
		return m.cardlistModel.View()

	case CardScreen:
		if m.cardModel != nil {
			return m.cardModel.View()
		}
		return "Ошибка: модель карты не инициализирована"

	case TracklistScreen:
		return m.tracklistModel.View()

	case PlayerScreen:
		if m.playerModel != nil {
			return m.playerModel.View()
		}
		return "Ошибка: модель плеера не инициализирована"

	default:
		return "Неизвестный экран"
	}
}

// Close закрывает ресурсы главной модели
func (m *MainModel) Close() {
	if m.globalPlayer != nil {
		m.globalPlayer.Close()
	}
}

// refresh подтягивает свежее состояние в экраны
func (m *MainModel) refresh() {
	snapshot := m.controller.Snapshot()
	m.cardlistModel.SetSnapshot(snapshot)
	m.tracklistModel.SetTracks(snapshot.Tracks)
}

func (m *MainModel) syncCmd() tea.Cmd {
	ctx, controller := m.ctx, m.controller
	return func() tea.Msg {
		result, err := controller.Sync(ctx)
		return SyncFinishedMsg{Result: result, Err: err}
	}
}

func (m *MainModel) setModeCmd(mode track.Mode) tea.Cmd {
	ctx, controller := m.ctx, m.controller
	return func() tea.Msg {
		return StateChangedMsg{Err: controller.SetMode(ctx, mode)}
	}
}

func (m *MainModel) setEnvironmentCmd(key string) tea.Cmd {
	controller := m.controller
	return func() tea.Msg {
		return StateChangedMsg{Err: controller.SetEnvironment(key)}
	}
}
