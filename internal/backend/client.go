// Package backend содержит клиент бэкенда HITBACK: загрузку каталога треков
// с повторами и проверку скан-эндпоинта
package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hazadus/hitback-cards/internal/catalog"
	"github.com/hazadus/hitback-cards/internal/logger"
	"github.com/hazadus/hitback-cards/internal/retry"
)

// Значения по умолчанию для загрузки каталога
const (
	DefaultTracksPath  = "/api/tracks"
	DefaultMaxAttempts = 3
	DefaultTimeout     = 10 * time.Second
	DefaultBackoff     = time.Second
)

// Максимальный размер тела ответа, который читает клиент
const maxBodySize = 16 << 20

// DefaultPolicy политика повторов по умолчанию: 3 попытки, 10 секунд на
// попытку, пауза attempt * 1s
func DefaultPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: DefaultMaxAttempts,
		Timeout:     DefaultTimeout,
		Backoff:     retry.Linear(DefaultBackoff),
	}
}

// Options параметры клиента
type Options struct {
	BaseURL    string
	TracksPath string
	HTTPClient *http.Client
	Policy     retry.Policy
	Logger     *logger.Logger
}

// Client клиент бэкенда
type Client struct {
	mu         sync.RWMutex
	baseURL    string
	tracksPath string
	httpClient *http.Client
	policy     retry.Policy
	log        *logger.Logger
}

// NewClient создает клиент бэкенда. Незаданные параметры берутся по умолчанию.
func NewClient(opts Options) *Client {
	if opts.TracksPath == "" {
		opts.TracksPath = DefaultTracksPath
	}
	if !strings.HasPrefix(opts.TracksPath, "/") {
		opts.TracksPath = "/" + opts.TracksPath
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Policy.MaxAttempts == 0 && opts.Policy.Timeout == 0 && opts.Policy.Backoff == nil {
		opts.Policy = DefaultPolicy()
	}
	opts.Policy.Retryable = IsRetryable

	return &Client{
		baseURL:    trimBase(opts.BaseURL),
		tracksPath: opts.TracksPath,
		httpClient: opts.HTTPClient,
		policy:     opts.Policy,
		log:        opts.Logger,
	}
}

// SetBaseURL меняет адрес бэкенда для последующих запросов
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = trimBase(baseURL)
}

// BaseURL текущий адрес бэкенда
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// TracksURL полный адрес каталога треков
func (c *Client) TracksURL() string {
	return c.BaseURL() + c.tracksPath
}

// FetchTracks загружает каталог треков с повторами. Адрес фиксируется в начале
// загрузки, смена окружения во время запроса на него не влияет.
func (c *Client) FetchTracks(ctx context.Context) ([]catalog.Track, error) {
	endpoint := c.TracksURL()
	if c.BaseURL() == "" {
		return nil, &NetworkError{URL: endpoint, Err: errors.New("не задан адрес бэкенда")}
	}

	policy := c.policy
	policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		c.log.Warnf("попытка %d/%d загрузки %s не удалась: %v; повтор через %s",
			attempt, policy.MaxAttempts, endpoint, err, delay)
	}

	body, err := retry.Do(ctx, policy, func(attemptCtx context.Context, attempt int) ([]byte, error) {
		c.log.Debugf("загрузка каталога %s, попытка %d/%d", endpoint, attempt, policy.MaxAttempts)
		return c.get(ctx, attemptCtx, endpoint)
	})
	if err != nil {
		c.log.Errorf("не удалось загрузить каталог %s: %v", endpoint, err)
		return nil, err
	}

	tracks, err := Normalize(body)
	if err != nil {
		c.log.Errorf("ответ %s не распознан: %v", endpoint, err)
		return nil, err
	}

	c.log.Infof("загружено треков: %d из %s", len(tracks), endpoint)
	return tracks, nil
}

// get выполняет одну попытку GET и читает тело целиком
func (c *Client) get(parent, ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &NetworkError{URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classify(parent, ctx, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &HTTPStatusError{URL: endpoint, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, c.classify(parent, ctx, endpoint, err)
	}
	return body, nil
}

// classify превращает ошибку транспорта в TimeoutError или NetworkError.
// Отмена внешнего контекста возвращается как есть и не повторяется.
func (c *Client) classify(parent, ctx context.Context, endpoint string, err error) error {
	if parentErr := parent.Err(); parentErr != nil {
		return parentErr
	}

	var urlErr *url.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &urlErr) && urlErr.Timeout()) {
		return &TimeoutError{URL: endpoint, Timeout: c.policy.Timeout, Err: err}
	}
	return &NetworkError{URL: endpoint, Err: err}
}

func trimBase(baseURL string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/")
}
