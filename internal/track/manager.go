// Package track содержит выбор источника каталога треков
package track

import (
	"context"
	"fmt"
	"strings"

	"github.com/hazadus/hitback-cards/internal/catalog"
	"github.com/hazadus/hitback-cards/internal/logger"
)

// Mode режим получения треков
type Mode string

const (
	// ModeStatic только встроенный каталог, без сетевых запросов
	ModeStatic Mode = "static"
	// ModeDynamic только бэкенд, ошибки возвращаются вызывающему
	ModeDynamic Mode = "dynamic"
	// ModeHybrid бэкенд с откатом на встроенный каталог
	ModeHybrid Mode = "hybrid"
)

// DefaultMode режим по умолчанию
const DefaultMode = ModeHybrid

// Modes все режимы в порядке переключения
var Modes = []Mode{ModeStatic, ModeDynamic, ModeHybrid}

// ParseMode разбирает название режима без учета регистра
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeStatic:
		return ModeStatic, nil
	case ModeDynamic:
		return ModeDynamic, nil
	case ModeHybrid, "":
		return ModeHybrid, nil
	default:
		return "", fmt.Errorf("неизвестный режим %q: ожидается static, dynamic или hybrid", s)
	}
}

// Next следующий режим по кругу
func (m Mode) Next() Mode {
	for i, mode := range Modes {
		if mode == m {
			return Modes[(i+1)%len(Modes)]
		}
	}
	return DefaultMode
}

// Label название режима для интерфейса
func (m Mode) Label() string {
	switch m {
	case ModeStatic:
		return "📦 Статический"
	case ModeDynamic:
		return "🌐 Динамический"
	case ModeHybrid:
		return "🔄 Гибридный"
	default:
		return string(m)
	}
}

// Source откуда получены треки
type Source string

const (
	SourceStatic   Source = "static"
	SourceBackend  Source = "backend"
	SourceFallback Source = "fallback"
)

// Fetcher загружает каталог с бэкенда
type Fetcher interface {
	FetchTracks(ctx context.Context) ([]catalog.Track, error)
}

// Result результат загрузки каталога.
// Err заполнен, если гибридный режим откатился на встроенный каталог.
type Result struct {
	Tracks []catalog.Track
	Source Source
	Err    error
}

// Manager выбирает источник треков в зависимости от режима
type Manager struct {
	fetcher  Fetcher
	fallback func() []catalog.Track
	log      *logger.Logger
}

// NewManager создает новый экземпляр Manager. Если fallback не задан,
// используется встроенный каталог.
func NewManager(fetcher Fetcher, fallback func() []catalog.Track, log *logger.Logger) *Manager {
	if fallback == nil {
		fallback = catalog.StaticTracks
	}
	return &Manager{
		fetcher:  fetcher,
		fallback: fallback,
		log:      log,
	}
}

// Load загружает треки в соответствии с режимом
func (m *Manager) Load(ctx context.Context, mode Mode) (Result, error) {
	switch mode {
	case ModeStatic:
		return Result{Tracks: m.fallback(), Source: SourceStatic}, nil

	case ModeDynamic:
		tracks, err := m.fetch(ctx)
		if err != nil {
			return Result{}, err
		}
		return Result{Tracks: tracks, Source: SourceBackend}, nil

	case ModeHybrid:
		tracks, err := m.fetch(ctx)
		if err != nil {
			m.log.Warnf("бэкенд недоступен, используется встроенный каталог: %v", err)
			return Result{Tracks: m.fallback(), Source: SourceFallback, Err: err}, nil
		}
		return Result{Tracks: tracks, Source: SourceBackend}, nil

	default:
		return Result{}, fmt.Errorf("неизвестный режим %q", mode)
	}
}

func (m *Manager) fetch(ctx context.Context) ([]catalog.Track, error) {
	if m.fetcher == nil {
		return nil, fmt.Errorf("источник треков с бэкенда не настроен")
	}
	return m.fetcher.FetchTracks(ctx)
}
