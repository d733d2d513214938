// Package generator связывает каталог треков, колоду и синхронизацию с бэкендом
// в одно состояние приложения
package generator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/hazadus/hitback-cards/internal/catalog"
	"github.com/hazadus/hitback-cards/internal/deck"
	"github.com/hazadus/hitback-cards/internal/logger"
	"github.com/hazadus/hitback-cards/internal/track"
)

// ErrSyncInProgress синхронизация уже выполняется
var ErrSyncInProgress = errors.New("синхронизация уже выполняется")

// Environment окружение бэкенда
type Environment struct {
	Key  string
	Name string
	URL  string
	Icon string
}

// Backend загружает каталог и позволяет сменить адрес
type Backend interface {
	track.Fetcher
	SetBaseURL(baseURL string)
}

// Snapshot неизменяемое состояние приложения для отображения
type Snapshot struct {
	Tracks          []catalog.Track
	Cards           []deck.Card
	Specs           []deck.CardSpec
	LastSync        time.Time
	LastSyncID      string
	NewTracksFound  []catalog.Track
	Mode            track.Mode
	Environment     Environment
	Source          track.Source
	SourceErr       error
	DeckFingerprint string
}

// SyncResult итог синхронизации
type SyncResult struct {
	ID      string
	At      time.Time
	Updated []catalog.Track
	Added   []catalog.Track
}

// Options параметры генератора
type Options struct {
	Backend      Backend
	Fallback     func() []catalog.Track
	Environments []Environment
	Environment  string
	Mode         track.Mode
	Specs        []deck.CardSpec
	Images       deck.ImageURLer
	Logger       *logger.Logger
	Now          func() time.Time
}

// Generator владеет состоянием приложения. Изменения выполняются по одному
// под мьютексом, читатели получают состояние через атомарный указатель и
// никогда не видят треки от одного состояния и карты от другого.
type Generator struct {
	mu      sync.Mutex
	syncing atomic.Bool
	state   atomic.Pointer[Snapshot]

	backend      Backend
	tracks       *track.Manager
	environments []Environment
	images       deck.ImageURLer
	log          *logger.Logger
	now          func() time.Time
}

// New создает генератор с пустым каталогом и колодой по правилам из opts
func New(opts Options) (*Generator, error) {
	if len(opts.Environments) == 0 {
		return nil, errors.New("не задано ни одного окружения")
	}
	if opts.Specs == nil {
		opts.Specs = deck.DefaultSpecs()
	}
	if opts.Mode == "" {
		opts.Mode = track.DefaultMode
	}
	if _, err := track.ParseMode(string(opts.Mode)); err != nil {
		return nil, err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	g := &Generator{
		backend:      opts.Backend,
		environments: slices.Clone(opts.Environments),
		images:       opts.Images,
		log:          opts.Logger,
		now:          opts.Now,
	}

	g.tracks = track.NewManager(opts.Backend, opts.Fallback, opts.Logger)

	env := g.environments[0]
	if opts.Environment != "" {
		found, err := g.findEnvironment(opts.Environment)
		if err != nil {
			return nil, err
		}
		env = found
	}
	if g.backend != nil {
		g.backend.SetBaseURL(env.URL)
	}

	next := &Snapshot{
		Mode:        opts.Mode,
		Environment: env,
		Specs:       slices.Clone(opts.Specs),
	}
	if err := g.rebuild(next); err != nil {
		return nil, err
	}
	g.state.Store(next)

	return g, nil
}

// Snapshot возвращает копию текущего состояния
func (g *Generator) Snapshot() Snapshot {
	s := *g.state.Load()
	s.Tracks = slices.Clone(s.Tracks)
	s.Cards = slices.Clone(s.Cards)
	s.Specs = slices.Clone(s.Specs)
	s.NewTracksFound = slices.Clone(s.NewTracksFound)
	return s
}

// Environments список окружений в порядке конфигурации
func (g *Generator) Environments() []Environment {
	return slices.Clone(g.environments)
}

// Syncing сообщает, выполняется ли сейчас синхронизация
func (g *Generator) Syncing() bool {
	return g.syncing.Load()
}

// Initialize загружает треки для текущего режима и строит колоду
func (g *Generator) Initialize(ctx context.Context) error {
	if err := g.LoadTracks(ctx); err != nil {
		return fmt.Errorf("ошибка инициализации: %w", err)
	}
	return nil
}

// LoadTracks перезагружает каталог по текущему режиму и пересобирает колоду.
// В динамическом режиме ошибка бэкенда возвращается, состояние не меняется.
func (g *Generator) LoadTracks(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	mode := g.state.Load().Mode
	return g.loadLocked(ctx, mode, mode)
}

// LoadLocal заполняет каталог локальными треками без запроса к бэкенду.
// Режим не меняется. Новые треки при следующей синхронизации считаются
// относительно этого каталога.
func (g *Generator) LoadLocal(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.loadLocked(ctx, track.ModeStatic, g.state.Load().Mode)
}

// loadLocked загружает треки источником режима from и сохраняет режим mode
func (g *Generator) loadLocked(ctx context.Context, from, mode track.Mode) error {
	result, err := g.tracks.Load(ctx, from)
	if err != nil {
		return err
	}

	next := g.copyState()
	next.Mode = mode
	next.Tracks = result.Tracks
	next.Source = result.Source
	next.SourceErr = result.Err
	if err := g.rebuild(next); err != nil {
		return err
	}

	g.state.Store(next)
	g.log.Infof("загружено треков: %d (режим %s, источник %s), карт: %d", len(next.Tracks), mode, result.Source, len(next.Cards))
	return nil
}

// Sync загружает свежий каталог с бэкенда, находит новые треки по ID и
// заменяет каталог целиком. Одновременно может выполняться только одна
// синхронизация, повторный вызов возвращает ErrSyncInProgress.
// При ошибке состояние не меняется.
func (g *Generator) Sync(ctx context.Context) (SyncResult, error) {
	if !g.syncing.CompareAndSwap(false, true) {
		return SyncResult{}, ErrSyncInProgress
	}
	defer g.syncing.Store(false)

	if g.backend == nil {
		return SyncResult{}, errors.New("бэкенд не настроен")
	}

	syncID := uuid.NewString()
	g.log.Infof("синхронизация %s начата", syncID)

	fetched, err := g.backend.FetchTracks(ctx)
	if err != nil {
		g.log.Errorf("синхронизация %s не удалась: %v", syncID, err)
		return SyncResult{}, fmt.Errorf("ошибка синхронизации: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	next := g.copyState()
	added := catalog.NewTracks(next.Tracks, fetched)

	next.Tracks = fetched
	next.NewTracksFound = added
	next.LastSync = g.now()
	next.LastSyncID = syncID
	next.Source = track.SourceBackend
	next.SourceErr = nil
	if err := g.rebuild(next); err != nil {
		return SyncResult{}, err
	}

	g.state.Store(next)
	g.log.Infof("синхронизация %s завершена: треков %d, новых %d", syncID, len(fetched), len(added))

	return SyncResult{
		ID:      syncID,
		At:      next.LastSync,
		Updated: slices.Clone(fetched),
		Added:   slices.Clone(added),
	}, nil
}

// SetMode переключает режим и перезагружает каталог
func (g *Generator) SetMode(ctx context.Context, mode track.Mode) error {
	mode, err := track.ParseMode(string(mode))
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.log.Infof("режим изменен на %s", mode)
	return g.loadLocked(ctx, mode, mode)
}

// SetEnvironment меняет адрес бэкенда для следующих запросов и пересобирает
// колоду, так как ссылки сканирования зависят от адреса
func (g *Generator) SetEnvironment(key string) error {
	env, err := g.findEnvironment(key)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	next := g.copyState()
	next.Environment = env
	if err := g.rebuild(next); err != nil {
		return err
	}

	if g.backend != nil {
		g.backend.SetBaseURL(env.URL)
	}
	g.state.Store(next)
	g.log.Infof("окружение изменено на %s (%s)", env.Name, env.URL)
	return nil
}

// NextEnvironment ключ окружения, следующего за текущим
func (g *Generator) NextEnvironment() string {
	current := g.state.Load().Environment.Key
	for i, env := range g.environments {
		if env.Key == current {
			return g.environments[(i+1)%len(g.environments)].Key
		}
	}
	return g.environments[0].Key
}

// SetDeck заменяет правила колоды и пересобирает карты
func (g *Generator) SetDeck(specs []deck.CardSpec) error {
	if err := deck.ValidateSpecs(specs); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	next := g.copyState()
	next.Specs = slices.Clone(specs)
	if err := g.rebuild(next); err != nil {
		return err
	}

	g.state.Store(next)
	return nil
}

// copyState копия текущего состояния для подготовки следующего
func (g *Generator) copyState() *Snapshot {
	next := *g.state.Load()
	return &next
}

// rebuild полностью пересобирает карты и отпечаток колоды
func (g *Generator) rebuild(s *Snapshot) error {
	cards, err := deck.Build(s.Specs, deck.BuildOptions{
		Images:      g.images,
		ScanBaseURL: s.Environment.URL,
		TrackCount:  len(s.Tracks),
	})
	if err != nil {
		return fmt.Errorf("ошибка генерации колоды: %w", err)
	}

	fingerprint, err := deck.Fingerprint(s.Specs)
	if err != nil {
		return err
	}

	s.Cards = cards
	s.DeckFingerprint = fingerprint
	return nil
}

func (g *Generator) findEnvironment(key string) (Environment, error) {
	for _, env := range g.environments {
		if env.Key == key {
			return env, nil
		}
	}
	return Environment{}, fmt.Errorf("неизвестное окружение %q", key)
}
