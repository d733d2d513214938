// Package cardlist содержит модель экрана колоды карт для TUI
package cardlist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/hazadus/hitback-cards/internal/catalog"
	"github.com/hazadus/hitback-cards/internal/deck"
	"github.com/hazadus/hitback-cards/internal/generator"
)

// Сколько новых треков показывать после синхронизации
const newTracksShown = 10

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	helpStyle         = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
	statusStyle       = lipgloss.NewStyle().PaddingLeft(4).Foreground(lipgloss.Color("#888888"))
	noticeStyle       = lipgloss.NewStyle().PaddingLeft(4).Foreground(lipgloss.Color("#22c55e"))
	errorStyle        = lipgloss.NewStyle().PaddingLeft(4).Foreground(lipgloss.Color("#ff0000")).Bold(true)
	quitTextStyle     = lipgloss.NewStyle().Margin(1, 0, 2, 4)
)

// CardSelectedMsg отправляется при выборе карты
type CardSelectedMsg struct {
	Card deck.Card
}

// ShowTracksMsg запрос на показ каталога треков
type ShowTracksMsg struct{}

// SyncRequestedMsg запрос на синхронизацию с бэкендом
type SyncRequestedMsg struct{}

// NextModeMsg запрос на переключение режима
type NextModeMsg struct{}

// NextEnvironmentMsg запрос на переключение окружения
type NextEnvironmentMsg struct{}

// cardItem реализует интерфейс list.Item для карты
type cardItem struct {
	card deck.Card
}

func (i cardItem) FilterValue() string {
	return fmt.Sprintf("%s %s %s %s", i.card.Type, i.card.Difficulty, i.card.Genre, i.card.Decade)
}

// cardItemDelegate реализует отображение элементов списка
type cardItemDelegate struct{}

func (d cardItemDelegate) Height() int                             { return 1 }
func (d cardItemDelegate) Spacing() int                            { return 0 }
func (d cardItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d cardItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(cardItem)
	if !ok {
		return
	}

	// Номер | Тип | Сложность | Жанр | Десятилетие | Оценка пула
	typeText := lipgloss.NewStyle().Foreground(lipgloss.Color(deck.Color(i.card.Type))).
		Render(fmt.Sprintf("%-9s", i.card.Type))
	str := fmt.Sprintf("%02d %s %s %-3s %-10s %-6s ~%d",
		i.card.Number,
		deck.Icon(i.card.Type),
		typeText,
		deck.DifficultyDots(i.card.Difficulty),
		i.card.Genre,
		i.card.Decade,
		i.card.EstimatedPool)

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

// Model представляет модель экрана колоды
type Model struct {
	list     list.Model
	spinner  spinner.Model
	snapshot generator.Snapshot
	busy     string // описание выполняющейся операции, пусто если свободно
	notice   []string
	err      error
	quitting bool
}

// NewModel создает новую модель колоды
func NewModel(snapshot generator.Snapshot) *Model {
	l := list.New(nil, cardItemDelegate{}, 0, 0)
	l.Title = "Колода HITBACK"
	l.SetShowStatusBar(false)
	l.SetShowTitle(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := &Model{list: l, spinner: s}
	m.SetSnapshot(snapshot)
	return m
}

// SetSnapshot обновляет данные модели без пересоздания
func (m *Model) SetSnapshot(snapshot generator.Snapshot) {
	m.snapshot = snapshot

	items := make([]list.Item, len(snapshot.Cards))
	for i, c := range snapshot.Cards {
		items[i] = cardItem{card: c}
	}
	m.list.SetItems(items)
}

// StartBusy отмечает начало фоновой операции и запускает спиннер
func (m *Model) StartBusy(label string) tea.Cmd {
	m.busy = label
	m.err = nil
	return m.spinner.Tick
}

// StopBusy отмечает завершение фоновой операции
func (m *Model) StopBusy(err error) {
	m.busy = ""
	m.err = err
}

// Busy выполняется ли фоновая операция
func (m *Model) Busy() bool {
	return m.busy != ""
}

// ShowNewTracks выводит уведомление о новых треках после синхронизации
func (m *Model) ShowNewTracks(total int, added []catalog.Track) {
	if len(added) == 0 {
		m.notice = []string{fmt.Sprintf("✅ Синхронизация завершена, треков: %d, новых нет", total)}
		return
	}

	head, rest := catalog.Head(added, newTracksShown)
	notice := []string{fmt.Sprintf("🎉 Найдено новых треков: %d", len(added))}
	for _, t := range head {
		notice = append(notice, fmt.Sprintf("  • %s - %s", t.Artist, t.Title))
	}
	if rest > 0 {
		notice = append(notice, fmt.Sprintf("  … и еще %d", rest))
	}
	m.notice = notice
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 8) // Оставляем место для статуса и справки
		return m, nil

	case spinner.TickMsg:
		if !m.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		// Во время фильтрации клавиши принадлежат полю ввода
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			if item, ok := m.list.SelectedItem().(cardItem); ok {
				return m, func() tea.Msg {
					return CardSelectedMsg{Card: item.card}
				}
			}
			return m, nil

		case "t":
			return m, func() tea.Msg { return ShowTracksMsg{} }

		case "s":
			// Пока операция выполняется, повторный запуск недоступен
			if m.Busy() {
				return m, nil
			}
			m.notice = nil
			return m, func() tea.Msg { return SyncRequestedMsg{} }

		case "m":
			if m.Busy() {
				return m, nil
			}
			return m, func() tea.Msg { return NextModeMsg{} }

		case "e":
			if m.Busy() {
				return m, nil
			}
			return m, func() tea.Msg { return NextEnvironmentMsg{} }
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View отображает модель
func (m *Model) View() string {
	if m.quitting {
		return quitTextStyle.Render("До свидания!")
	}

	parts := []string{m.list.View(), statusStyle.Render(m.statusLine())}

	switch {
	case m.Busy():
		parts = append(parts, statusStyle.Render(m.spinner.View()+" "+m.busy))
	case m.err != nil:
		parts = append(parts, errorStyle.Render("❌ "+m.err.Error()),
			statusStyle.Render("Нажмите s для повтора или m для перехода в статический режим"))
	case len(m.notice) > 0:
		parts = append(parts, noticeStyle.Render(strings.Join(m.notice, "\n")))
	}

	parts = append(parts, helpStyle.Render("Enter: карта • t: треки • s: синхронизация • m: режим • e: окружение • q: выход"))
	return strings.Join(parts, "\n")
}

// statusLine строка состояния: окружение, режим, количество карт и треков
func (m *Model) statusLine() string {
	s := m.snapshot

	lastSync := "никогда"
	if !s.LastSync.IsZero() {
		lastSync = humanize.Time(s.LastSync)
	}

	line := fmt.Sprintf("%s %s • %s • карт: %d • треков: %d (%s) • синхронизация: %s",
		s.Environment.Icon, s.Environment.Name, s.Mode.Label(),
		len(s.Cards), len(s.Tracks), s.Source, lastSync)

	if s.SourceErr != nil {
		line += " • ⚠️ бэкенд недоступен"
	}
	return line
}
