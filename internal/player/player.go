// Package player содержит предпрослушивание треков каталога
package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"

	"github.com/hazadus/hitback-cards/internal/catalog"
	"github.com/hazadus/hitback-cards/internal/streaming"
)

// DefaultPreview длительность предпрослушивания по умолчанию, как в игре
const DefaultPreview = 30 * time.Second

// Status представляет текущий статус плеера
type Status struct {
	Current    time.Duration // Текущая позиция
	Total      time.Duration // Длительность фрагмента
	IsPlaying  bool
	StuckCount int // Сколько проверок подряд позиция не менялась
}

// Player управляет воспроизведением треков
type Player struct {
	progressChan chan Status
	doneChan     chan bool

	ctx           context.Context
	cancel        context.CancelFunc
	mutex         sync.RWMutex
	isInitialized bool
	isPaused      bool
	currentTrack  *catalog.Track

	streamer beep.StreamSeekCloser
	ctrl     *beep.Ctrl
	source   io.Closer
}

// NewPlayer создает новый экземпляр плеера
func NewPlayer() *Player {
	ctx, cancel := context.WithCancel(context.Background())
	return &Player{
		progressChan: make(chan Status, 1),
		doneChan:     make(chan bool, 1),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Progress возвращает канал для получения обновлений прогресса
func (p *Player) Progress() <-chan Status {
	return p.progressChan
}

// Done возвращает канал, в который приходит сигнал о завершении фрагмента
func (p *Player) Done() <-chan bool {
	return p.doneChan
}

// ResolveSource возвращает источник аудио трека: абсолютный URL или путь к
// файлу в audioDir. audioDir тоже может быть URL.
func ResolveSource(track catalog.Track, audioDir string) (string, error) {
	file := strings.TrimSpace(track.AudioFile)
	if file == "" {
		return "", fmt.Errorf("у трека %s нет аудио файла", track.ID)
	}
	if isURL(file) || filepath.IsAbs(file) {
		return file, nil
	}
	if isURL(audioDir) {
		return strings.TrimRight(audioDir, "/") + "/" + url.PathEscape(file), nil
	}
	return filepath.Join(audioDir, file), nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Play начинает воспроизведение трека из source. Если limit больше нуля,
// воспроизводятся только первые limit секунд.
func (p *Player) Play(track *catalog.Track, source string, limit time.Duration) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	// Останавливаем текущее воспроизведение, если есть
	p.stopInternal()

	reader, err := p.open(source)
	if err != nil {
		return err
	}

	streamer, format, err := mp3.Decode(reader)
	if err != nil {
		reader.Close()
		return fmt.Errorf("ошибка декодирования MP3: %w", err)
	}

	// Инициализируем speaker (только один раз)
	if !p.isInitialized {
		err = speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/5))
		if err != nil {
			streamer.Close()
			reader.Close()
			return fmt.Errorf("ошибка инициализации динамиков: %w", err)
		}
		p.isInitialized = true
	}

	p.currentTrack = track
	p.streamer = streamer
	p.source = reader

	var playback beep.Streamer = streamer
	total := format.SampleRate.D(streamer.Len())
	if limit > 0 {
		playback = beep.Take(format.SampleRate.N(limit), streamer)
		if total <= 0 || limit < total {
			total = limit
		}
	}

	p.ctrl = &beep.Ctrl{Streamer: playback}
	p.isPaused = false

	speaker.Play(beep.Seq(p.ctrl, beep.Callback(func() {
		select {
		case p.doneChan <- true:
		default:
		}
	})))

	go p.monitorProgress(format, streamer, total)

	return nil
}

// open открывает источник: URL читается потоком, иначе локальный файл
func (p *Player) open(source string) (io.ReadCloser, error) {
	if source == "" {
		return nil, errors.New("не указан источник аудио")
	}

	if isURL(source) {
		const bufferSize = 256 * 1024 // 256KB буфер
		reader, err := streaming.NewReader(p.ctx, source, bufferSize)
		if err != nil {
			return nil, fmt.Errorf("ошибка создания потокового ридера: %w", err)
		}
		return reader, nil
	}

	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	return file, nil
}

// Pause приостанавливает или возобновляет воспроизведение
func (p *Player) Pause() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.ctrl != nil {
		speaker.Lock()
		p.isPaused = !p.isPaused
		p.ctrl.Paused = p.isPaused
		speaker.Unlock()
	}
}

// Stop останавливает воспроизведение
func (p *Player) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.stopInternal()
}

// stopInternal внутренний метод остановки (должен вызываться под мьютексом)
func (p *Player) stopInternal() {
	if p.ctrl != nil {
		speaker.Clear()
		p.ctrl = nil
	}

	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}

	if p.source != nil {
		p.source.Close()
		p.source = nil
	}

	p.currentTrack = nil
	p.isPaused = false
}

// Close закрывает плеер и освобождает ресурсы
func (p *Player) Close() error {
	p.cancel()
	p.Stop()
	close(p.progressChan)
	close(p.doneChan)
	return nil
}

// IsPlaying возвращает true, если трек воспроизводится
func (p *Player) IsPlaying() bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.ctrl != nil && !p.isPaused
}

// CurrentTrack возвращает информацию о текущем треке
func (p *Player) CurrentTrack() *catalog.Track {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.currentTrack
}

// monitorProgress раз в секунду отправляет позицию воспроизведения
func (p *Player) monitorProgress(format beep.Format, streamer beep.StreamSeekCloser, total time.Duration) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	lastPosition := time.Duration(-1)
	stuckCount := 0

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.mutex.RLock()
			if p.streamer != streamer || p.ctrl == nil {
				p.mutex.RUnlock()
				return
			}

			speaker.Lock()
			current := format.SampleRate.D(streamer.Position())
			paused := p.isPaused
			speaker.Unlock()
			p.mutex.RUnlock()

			if !paused && current == lastPosition {
				stuckCount++
			} else {
				stuckCount = 0
			}
			lastPosition = current

			if total > 0 && current > total {
				current = total
			}

			select {
			case p.progressChan <- Status{Current: current, Total: total, IsPlaying: !paused, StuckCount: stuckCount}:
			default:
				// Если канал заблокирован, пропускаем обновление
			}
		}
	}
}

// StatusText текстовое описание состояния потока
func StatusText(stuckCount int) string {
	switch {
	case stuckCount == 0:
		return "Воспроизведение"
	case stuckCount <= 3:
		return "Буферизация..."
	case stuckCount <= 5:
		return "Медленная загрузка"
	default:
		return "Возможная проблема с соединением"
	}
}
