// Package player содержит экран раунда "угадай песню" для TUI
package player

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/hitback-cards/internal/catalog"
	"github.com/hazadus/hitback-cards/internal/player"
	"github.com/hazadus/hitback-cards/internal/utils"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#7c3aed")).
			Padding(0, 2)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0f172a")).
			Background(lipgloss.Color("#facc15")).
			Padding(0, 1)

	answerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7c3aed")).
			Padding(0, 2)

	hiddenStyle = answerStyle.
			Foreground(lipgloss.Color("#666666"))

	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0000")).Bold(true)
)

// GoBackMsg отправляется для возврата к списку треков
type GoBackMsg struct{}

// ProgressMsg позиция фрагмента от плеера
type ProgressMsg struct {
	Status player.Status
}

// PlaybackFinishedMsg фрагмент доигран до конца
type PlaybackFinishedMsg struct{}

// PlaybackErrorMsg не удалось открыть или проиграть фрагмент
type PlaybackErrorMsg struct {
	Error error
}

// round фаза раунда
type round int

const (
	listening round = iota
	finished        // фрагмент закончился, можно переслушать
)

// Model экран раунда: звучит фрагмент, ответ скрыт до раскрытия
type Model struct {
	track    catalog.Track
	source   string
	limit    time.Duration
	player   *player.Player
	bar      progress.Model
	status   player.Status
	round    round
	revealed bool
	paused   bool
	err      error
	width    int
	height   int
}

// NewModelWithPlayer создает экран раунда с общим плеером.
// Если у трека нет аудио, Init сразу вернет PlaybackErrorMsg.
func NewModelWithPlayer(track catalog.Track, audioDir string, limit time.Duration, shared *player.Player) *Model {
	bar := progress.New(progress.WithSolidFill("#7c3aed"), progress.WithoutPercentage())
	bar.Width = 40

	m := &Model{
		track:  track,
		limit:  limit,
		player: shared,
		bar:    bar,
	}
	m.source, m.err = player.ResolveSource(track, audioDir)
	return m
}

// Init запускает фрагмент
func (m *Model) Init() tea.Cmd {
	if m.err != nil {
		err := m.err
		return func() tea.Msg { return PlaybackErrorMsg{Error: err} }
	}
	return m.start()
}

// Update обрабатывает клавиши и события плеера
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.bar.Width = max(10, min(60, msg.Width-10))

	case tea.KeyMsg:
		return m, m.handleKey(msg.String())

	case ProgressMsg:
		m.status = msg.Status
		m.paused = !msg.Status.IsPlaying
		var percent float64
		if msg.Status.Total > 0 {
			percent = float64(msg.Status.Current) / float64(msg.Status.Total)
		}
		return m, tea.Batch(m.bar.SetPercent(percent), m.listen())

	case PlaybackFinishedMsg:
		// Время вышло, ответ показывается сам
		m.round = finished
		m.revealed = true
		m.paused = false
		return m, m.bar.SetPercent(1)

	case PlaybackErrorMsg:
		m.err = msg.Error
		m.round = finished

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleKey(key string) tea.Cmd {
	switch key {
	case "q", "esc":
		m.player.Stop()
		return func() tea.Msg { return GoBackMsg{} }

	case " ":
		if m.round == listening && m.err == nil {
			m.player.Pause()
			m.paused = !m.paused
		}

	case "enter":
		m.revealed = true

	case "r":
		// Переслушать можно только после окончания фрагмента,
		// иначе на плеер будут подписаны два слушателя
		if m.round == finished && m.err == nil {
			m.round = listening
			m.status = player.Status{}
			return tea.Batch(m.bar.SetPercent(0), m.start())
		}
	}
	return nil
}

// View отображает экран раунда
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("🎵 Угадай песню"))
	b.WriteString("\n\n")
	b.WriteString(m.hints())
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("❌ " + m.err.Error()))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("q/esc: назад к списку"))
		return b.String()
	}

	b.WriteString(m.answer())
	b.WriteString("\n\n")
	b.WriteString(m.bar.View())
	b.WriteString("\n")
	b.WriteString(m.timeLine())
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render(m.help()))
	return b.String()
}

// hints жанр и десятилетие видны сразу, это подсказки для игроков
func (m *Model) hints() string {
	var parts []string
	for _, hint := range []string{m.track.Genre, m.track.Decade} {
		if hint != "" {
			parts = append(parts, hintStyle.Render(hint))
		}
	}
	if len(parts) == 0 {
		return dimStyle.Render("без подсказок")
	}
	return strings.Join(parts, " ")
}

func (m *Model) answer() string {
	if !m.revealed {
		return hiddenStyle.Render("🎤 ???\n🎵 ???")
	}
	text := fmt.Sprintf("🎤 %s\n🎵 %s", m.track.Artist, m.track.Title)
	if m.track.Year > 0 {
		text += fmt.Sprintf(" (%d)", m.track.Year)
	}
	return answerStyle.Render(text)
}

func (m *Model) timeLine() string {
	if m.round == finished {
		return "⏰ Время вышло"
	}

	icon := "▶️"
	if m.paused {
		icon = "⏸️"
	}
	left := max(m.status.Total-m.status.Current, 0)
	return fmt.Sprintf("%s %s • осталось %s", icon, formatStatus(!m.paused, m.status.StuckCount), utils.FormatDuration(left))
}

func (m *Model) help() string {
	if m.round == finished {
		return "r: переслушать • q/esc: следующий трек"
	}
	return "Enter: показать ответ • пробел: пауза • q/esc: назад"
}

func (m *Model) start() tea.Cmd {
	track, source, limit := m.track, m.source, m.limit
	play := func() tea.Msg {
		if err := m.player.Play(&track, source, limit); err != nil {
			return PlaybackErrorMsg{Error: err}
		}
		return nil
	}
	return tea.Batch(play, m.listen())
}

// listen ждет следующей позиции или конца фрагмента
func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case status, ok := <-m.player.Progress():
			if !ok {
				return PlaybackFinishedMsg{}
			}
			return ProgressMsg{Status: status}
		case <-m.player.Done():
			return PlaybackFinishedMsg{}
		}
	}
}

func formatStatus(isPlaying bool, stuckCount int) string {
	if isPlaying {
		return player.StatusText(stuckCount)
	}
	return "Пауза"
}
