// Package config содержит функции для загрузки конфигурации приложения
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hazadus/hitback-cards/internal/logger"
	"github.com/hazadus/hitback-cards/internal/qr"
	"github.com/hazadus/hitback-cards/internal/track"
)

// DefaultConfigPath путь к файлу конфигурации по умолчанию
const DefaultConfigPath = "~/.hitback"

// DefaultEnvFile файл с переменными окружения, читается из текущего каталога
const DefaultEnvFile = ".env"

// Окружения из коробки, в порядке переключения
var defaultEnvironmentOrder = []string{"local", "dev", "prod"}

// EnvironmentConfig окружение бэкенда
type EnvironmentConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	Icon string `yaml:"icon"`
}

// RetryConfig параметры повторов при загрузке каталога
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Timeout     time.Duration `yaml:"timeout"`
	Backoff     time.Duration `yaml:"backoff"`
}

// Config структура для хранения конфигурации приложения
type Config struct {
	Environment  string                       `yaml:"environment"`
	Mode         string                       `yaml:"mode"`
	Environments map[string]EnvironmentConfig `yaml:"environments"`
	TracksPath   string                       `yaml:"tracks_path"`

	DeckFile    string `yaml:"deck_file,omitempty"`
	CatalogFile string `yaml:"catalog_file,omitempty"`
	AudioDir    string `yaml:"audio_dir,omitempty"`
	DownloadDir string `yaml:"download_dir"`

	Retry RetryConfig `yaml:"retry"`
	QR    qr.Options  `yaml:"qr"`

	AwsBucketName string `yaml:"aws_bucket_name,omitempty"`
	AwsAccessKey  string `yaml:"aws_access_key,omitempty"`
	AwsSecretKey  string `yaml:"aws_secret_key,omitempty"`
	AwsRegion     string `yaml:"aws_region,omitempty"`
	AwsEndpoint   string `yaml:"aws_endpoint,omitempty"`

	LogLevel string `yaml:"log_level"`
}

// Default конфигурация по умолчанию: окружение dev, гибридный режим
func Default() *Config {
	return &Config{
		Environment: "dev",
		Mode:        string(track.DefaultMode),
		Environments: map[string]EnvironmentConfig{
			"local": {Name: "LOCAL", URL: "http://localhost:3000", Icon: "🏠"},
			"dev":   {Name: "DEVELOPMENT", URL: "http://192.168.1.10:3000", Icon: "🔧"},
			"prod":  {Name: "PRODUCTION", URL: "https://api.hitback.com", Icon: "🚀"},
		},
		TracksPath:  "/api/tracks",
		DownloadDir: "~/Downloads/hitback",
		Retry: RetryConfig{
			MaxAttempts: 3,
			Timeout:     10 * time.Second,
			Backoff:     time.Second,
		},
		QR:       qr.DefaultOptions(),
		LogLevel: "info",
	}
}

// LoadConfig загружает конфигурацию приложения из указанного файла.
// Если файла нет, используется конфигурация по умолчанию.
func LoadConfig(filePath string) (*Config, error) {
	path, err := ExpandHome(filePath)
	if err != nil {
		return nil, err
	}

	config := Default()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("ошибка чтения конфигурации %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("ошибка разбора конфигурации %s: %w", path, err)
		}
	}

	config.applyDefaults()
	if err := config.expandPaths(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadEnvFile загружает переменные из .env файла, если он существует.
// Уже заданные переменные окружения не перезаписываются.
func LoadEnvFile(filePath string) error {
	if _, err := os.Stat(filePath); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(filePath); err != nil {
		return fmt.Errorf("ошибка загрузки %s: %w", filePath, err)
	}
	return nil
}

// ApplyEnv переопределяет значения переменными HITBACK_*
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}

	overrides := []struct {
		key    string
		target *string
	}{
		{"HITBACK_ENV", &c.Environment},
		{"HITBACK_MODE", &c.Mode},
		{"HITBACK_AWS_BUCKET", &c.AwsBucketName},
		{"HITBACK_AWS_ACCESS_KEY", &c.AwsAccessKey},
		{"HITBACK_AWS_SECRET_KEY", &c.AwsSecretKey},
		{"HITBACK_AWS_REGION", &c.AwsRegion},
		{"HITBACK_AWS_ENDPOINT", &c.AwsEndpoint},
		{"HITBACK_LOG_LEVEL", &c.LogLevel},
	}
	for _, o := range overrides {
		if value := strings.TrimSpace(getenv(o.key)); value != "" {
			*o.target = value
		}
	}

	// Адрес бэкенда меняется только у активного окружения
	if url := strings.TrimSpace(getenv("HITBACK_BACKEND_URL")); url != "" {
		env := c.Environments[c.Environment]
		env.URL = url
		if env.Name == "" {
			env.Name = strings.ToUpper(c.Environment)
		}
		c.Environments[c.Environment] = env
	}
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	if _, err := track.ParseMode(c.Mode); err != nil {
		return err
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	env, ok := c.Environments[c.Environment]
	if !ok {
		return fmt.Errorf("окружение %q не описано в конфигурации, доступны: %s",
			c.Environment, strings.Join(c.EnvironmentKeys(), ", "))
	}
	if strings.TrimSpace(env.URL) == "" {
		return fmt.Errorf("у окружения %q не задан url", c.Environment)
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts должен быть не меньше 1, получено %d", c.Retry.MaxAttempts)
	}
	if c.Retry.Timeout <= 0 {
		return fmt.Errorf("retry.timeout должен быть положительным, получено %s", c.Retry.Timeout)
	}
	if c.Retry.Backoff < 0 {
		return fmt.Errorf("retry.backoff не может быть отрицательным, получено %s", c.Retry.Backoff)
	}
	return nil
}

// EnvironmentKeys ключи окружений: сначала встроенные, затем остальные по алфавиту
func (c *Config) EnvironmentKeys() []string {
	keys := make([]string, 0, len(c.Environments))
	seen := make(map[string]bool, len(c.Environments))

	for _, key := range defaultEnvironmentOrder {
		if _, ok := c.Environments[key]; ok {
			keys = append(keys, key)
			seen[key] = true
		}
	}

	var rest []string
	for key := range c.Environments {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)

	return append(keys, rest...)
}

// HasS3 заданы ли параметры S3 хранилища
func (c *Config) HasS3() bool {
	return c.AwsBucketName != "" && c.AwsRegion != ""
}

func (c *Config) applyDefaults() {
	defaults := Default()

	if c.Environment == "" {
		c.Environment = defaults.Environment
	}
	if c.Mode == "" {
		c.Mode = defaults.Mode
	}
	if c.Environments == nil {
		c.Environments = defaults.Environments
	}
	if c.TracksPath == "" {
		c.TracksPath = defaults.TracksPath
	}
	if c.DownloadDir == "" {
		c.DownloadDir = defaults.DownloadDir
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = defaults.Retry.MaxAttempts
	}
	if c.Retry.Timeout == 0 {
		c.Retry.Timeout = defaults.Retry.Timeout
	}
	c.QR = c.QR.WithDefaults()
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.DeckFile, &c.CatalogFile, &c.AudioDir, &c.DownloadDir} {
		expanded, err := ExpandHome(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

// ExpandHome раскрывает тильду в начале пути
func ExpandHome(filePath string) (string, error) {
	if !strings.HasPrefix(filePath, "~") {
		return filePath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return strings.Replace(filePath, "~", home, 1), nil
}
