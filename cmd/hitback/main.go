package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/huh/spinner"

	"github.com/hazadus/hitback-cards/internal/backend"
	"github.com/hazadus/hitback-cards/internal/catalog"
	"github.com/hazadus/hitback-cards/internal/config"
	"github.com/hazadus/hitback-cards/internal/deck"
	"github.com/hazadus/hitback-cards/internal/generator"
	"github.com/hazadus/hitback-cards/internal/logger"
	"github.com/hazadus/hitback-cards/internal/qr"
	"github.com/hazadus/hitback-cards/internal/retry"
	"github.com/hazadus/hitback-cards/internal/track"
)

// Application содержит общее состояние для всех команд
type Application struct {
	Config    *config.Config
	Generator *generator.Generator
	Backend   *backend.Client
	Logger    *logger.Logger

	// Interactive включает спиннеры, в тестах выключено
	Interactive bool
}

// globalFlags значения общих флагов командной строки
type globalFlags struct {
	configPath string
	envFile    string
	env        string
	mode       string
	deckFile   string
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &Application{Interactive: true}
	if err := app.createRootCommand(ctx).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Ошибка: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig собирает конфигурацию из файла, .env, переменных окружения и флагов
func loadConfig(flags globalFlags) (*config.Config, error) {
	if err := config.LoadEnvFile(flags.envFile); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	cfg.ApplyEnv(os.Getenv)

	// Флаги важнее переменных окружения
	if flags.env != "" {
		cfg.Environment = flags.env
	}
	if flags.mode != "" {
		cfg.Mode = flags.mode
	}
	if flags.deckFile != "" {
		if cfg.DeckFile, err = config.ExpandHome(flags.deckFile); err != nil {
			return nil, err
		}
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("некорректная конфигурация: %w", err)
	}
	return cfg, nil
}

// configure создает логгер, клиент бэкенда и генератор по конфигурации
func (app *Application) configure(cfg *config.Config, logOut io.Writer) error {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log := logger.New(logOut, level)

	specs := deck.DefaultSpecs()
	if cfg.DeckFile != "" {
		if specs, err = deck.LoadSpecs(cfg.DeckFile); err != nil {
			return err
		}
		log.Infof("правила колоды загружены из %s", cfg.DeckFile)
	}

	client := backend.NewClient(backend.Options{
		TracksPath: cfg.TracksPath,
		Policy: retry.Policy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			Timeout:     cfg.Retry.Timeout,
			Backoff:     retry.Linear(cfg.Retry.Backoff),
		},
		Logger: log,
	})

	mode, err := track.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}

	gen, err := generator.New(generator.Options{
		Backend:      client,
		Fallback:     fallbackTracks(cfg.CatalogFile, log),
		Environments: environments(cfg),
		Environment:  cfg.Environment,
		Mode:         mode,
		Specs:        specs,
		Images:       qr.NewBuilder(cfg.QR),
		Logger:       log,
	})
	if err != nil {
		return fmt.Errorf("ошибка создания генератора: %w", err)
	}

	app.Config = cfg
	app.Logger = log
	app.Backend = client
	app.Generator = gen
	return nil
}

// environments окружения из конфигурации в порядке переключения
func environments(cfg *config.Config) []generator.Environment {
	keys := cfg.EnvironmentKeys()
	envs := make([]generator.Environment, 0, len(keys))
	for _, key := range keys {
		env := cfg.Environments[key]
		envs = append(envs, generator.Environment{
			Key:  key,
			Name: env.Name,
			URL:  env.URL,
			Icon: env.Icon,
		})
	}
	return envs
}

// fallbackTracks резервный каталог: файл из конфигурации или встроенный список
func fallbackTracks(catalogFile string, log *logger.Logger) func() []catalog.Track {
	if catalogFile == "" {
		return catalog.StaticTracks
	}
	return func() []catalog.Track {
		tracks, err := catalog.LoadFile(catalogFile)
		if err != nil {
			log.Warnf("не удалось загрузить каталог %s, используется встроенный: %v", catalogFile, err)
			return catalog.StaticTracks()
		}
		return tracks
	}
}

// withSpinner выполняет действие, показывая спиннер в интерактивном режиме
func (app *Application) withSpinner(ctx context.Context, title string, action func(ctx context.Context) error) error {
	if !app.Interactive {
		return action(ctx)
	}
	return spinner.New().Title(title).Context(ctx).ActionWithErr(action).Run()
}
