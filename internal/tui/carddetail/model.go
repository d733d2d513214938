// Package carddetail содержит экран подробностей карты для TUI
package carddetail

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/hitback-cards/internal/deck"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Width(14)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e2e8f0"))

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)
)

// GoBackMsg отправляется для возврата к колоде
type GoBackMsg struct{}

// Model экран одной карты
type Model struct {
	card  deck.Card
	width int
}

// NewModel создает экран карты
func NewModel(card deck.Card) *Model {
	return &Model{card: card}
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "backspace":
			return m, func() tea.Msg { return GoBackMsg{} }
		}
	}
	return m, nil
}

// View отображает модель
func (m *Model) View() string {
	c := m.card
	color := lipgloss.Color(deck.Color(c.Type))

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ffffff")).
		Background(color).
		Padding(0, 2).
		Render(fmt.Sprintf("%s Карта #%02d: %s", deck.Icon(c.Type), c.Number, c.Type))

	rows := [][2]string{
		{"Сложность", fmt.Sprintf("%s %s", deck.DifficultyDots(c.Difficulty), c.Difficulty)},
		{"Жанр", c.Genre},
		{"Десятилетие", c.Decade},
		{"Пул песен", fmt.Sprintf("~%d", c.EstimatedPool)},
		{"Payload", c.QRPayload},
		{"Изображение", c.QRImageURL},
		{"Сканирование", c.ScanURL},
		{"Файл", deck.ImageFileName(c)},
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		value := row[1]
		if value == "" {
			value = "нет"
		}
		if m.width > 20 {
			value = lipgloss.NewStyle().MaxWidth(m.width - 16).Render(value)
		}
		lines = append(lines, labelStyle.Render(row[0])+valueStyle.Render(value))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))

	return fmt.Sprintf("%s\n\n%s\n%s",
		header,
		box,
		controlsStyle.Render("q/esc: назад к колоде"),
	)
}
