// Package tracklist содержит модель экрана списка треков для TUI
package tracklist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/hitback-cards/internal/catalog"
	"github.com/hazadus/hitback-cards/internal/utils"
)

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	helpStyle         = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
)

// TrackSelectedMsg отправляется при выборе трека для предпрослушивания
type TrackSelectedMsg struct {
	Track catalog.Track
}

// GoBackMsg отправляется для возврата к колоде
type GoBackMsg struct{}

// trackItem реализует интерфейс list.Item для трека
type trackItem struct {
	track catalog.Track
}

func (i trackItem) FilterValue() string {
	return fmt.Sprintf("%s %s %s %s", i.track.Artist, i.track.Title, i.track.Genre, i.track.Decade)
}

// trackItemDelegate реализует отображение элементов списка
type trackItemDelegate struct{}

func (d trackItemDelegate) Height() int                             { return 1 }
func (d trackItemDelegate) Spacing() int                            { return 0 }
func (d trackItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d trackItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(trackItem)
	if !ok {
		return
	}

	audio := " "
	if i.track.AudioFile != "" {
		audio = "♪"
	}

	// ID | Исполнитель | Название | Жанр | Десятилетие
	str := fmt.Sprintf("%-5s %s %-24s %-40s %-10s %s",
		utils.TruncateString(i.track.ID, 5),
		audio,
		utils.TruncateString(i.track.Artist, 24),
		utils.TruncateString(i.track.Title, 40),
		i.track.Genre,
		i.track.Decade)

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

// Model представляет модель экрана списка треков
type Model struct {
	list list.Model
}

// NewModel создает новую модель списка треков
func NewModel(tracks []catalog.Track) *Model {
	l := list.New(nil, trackItemDelegate{}, 0, 0)
	l.Title = "Треки"
	l.SetShowStatusBar(false)
	l.SetShowTitle(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle

	m := &Model{list: l}
	m.SetTracks(tracks)
	return m
}

// SetTracks обновляет данные модели без пересоздания
func (m *Model) SetTracks(tracks []catalog.Track) {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{track: t}
	}
	m.list.SetItems(items)
	m.list.Title = fmt.Sprintf("Треки (%d)", len(tracks))
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
		m.list.SetHeight(msg.Height - 4) // Оставляем место для заголовка и справки
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "esc", "q":
			return m, func() tea.Msg { return GoBackMsg{} }

		case "enter":
			if item, ok := m.list.SelectedItem().(trackItem); ok {
				return m, func() tea.Msg {
					return TrackSelectedMsg{Track: item.track}
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View отображает модель
func (m *Model) View() string {
	extraHelp := helpStyle.Render("Enter: прослушать • esc: назад к колоде")
	return m.list.View() + "\n" + extraHelp
}
