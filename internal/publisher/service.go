// Package publisher выгружает изображения QR кодов карт в каталог или в S3
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hazadus/hitback-cards/internal/deck"
	"github.com/hazadus/hitback-cards/internal/logger"
	"github.com/hazadus/hitback-cards/internal/streaming"
)

// ManifestName имя файла с описанием опубликованной колоды
const ManifestName = "deck.json"

// Storage хранилище опубликованных изображений
type Storage interface {
	UploadFile(ctx context.Context, reader io.Reader, key, contentType string) (string, error)
}

// ProgressFunc вызывается после обработки каждой карты
type ProgressFunc func(done, total int, card deck.Card)

// Result итог обработки одной карты
type Result struct {
	Card  deck.Card
	Path  string // путь к файлу при сохранении в каталог
	URL   string // адрес объекта при публикации
	Bytes int64
}

// Summary итог выгрузки всей колоды
type Summary struct {
	Results     []Result
	Bytes       int64
	ManifestURL string
}

// Service управляет выгрузкой изображений карт
type Service struct {
	httpClient *http.Client
	storage    Storage
	log        *logger.Logger
}

// NewService создает новый сервис выгрузки. storage может быть nil,
// если нужна только запись в каталог.
func NewService(httpClient *http.Client, storage Storage, log *logger.Logger) *Service {
	if httpClient == nil {
		httpClient = streaming.NewClient()
	}
	return &Service{
		httpClient: httpClient,
		storage:    storage,
		log:        log,
	}
}

// SaveToDir последовательно скачивает изображения карт и сохраняет их в dir
// под именами HITBACK_Card_NN.png
func (s *Service) SaveToDir(ctx context.Context, cards []deck.Card, dir string, progress ProgressFunc) (*Summary, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога %s: %w", dir, err)
	}

	summary := &Summary{}
	for i, card := range cards {
		filePath := filepath.Join(dir, deck.ImageFileName(card))

		written, err := s.saveCard(ctx, card, filePath)
		if err != nil {
			return summary, err
		}

		summary.Results = append(summary.Results, Result{Card: card, Path: filePath, Bytes: written})
		summary.Bytes += written
		s.log.Debugf("карта %d сохранена в %s", card.Number, filePath)

		if progress != nil {
			progress(i+1, len(cards), card)
		}
	}

	return summary, nil
}

func (s *Service) saveCard(ctx context.Context, card deck.Card, filePath string) (int64, error) {
	reader, err := s.open(ctx, card)
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	file, err := os.Create(filePath)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания файла %s: %w", filePath, err)
	}

	counter := &ProgressReader{Reader: reader, Size: reader.ContentLength()}
	if _, err := io.Copy(file, counter); err != nil {
		file.Close()
		return 0, fmt.Errorf("ошибка записи карты %d: %w", card.Number, err)
	}
	if err := file.Close(); err != nil {
		return 0, fmt.Errorf("ошибка записи карты %d: %w", card.Number, err)
	}

	return counter.BytesRead(), nil
}

// Publish последовательно скачивает изображения карт и загружает их в
// хранилище под ключами {prefix}/HITBACK_Card_NN.png. В конце рядом
// кладется deck.json со ссылками на опубликованные изображения.
func (s *Service) Publish(ctx context.Context, cards []deck.Card, prefix string, progress ProgressFunc) (*Summary, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("хранилище для публикации не настроено")
	}
	prefix = strings.Trim(prefix, "/")

	summary := &Summary{}
	published := make([]deck.Card, 0, len(cards))

	for i, card := range cards {
		key := path.Join(prefix, deck.ImageFileName(card))

		url, written, err := s.publishCard(ctx, card, key)
		if err != nil {
			return summary, err
		}

		summary.Results = append(summary.Results, Result{Card: card, URL: url, Bytes: written})
		summary.Bytes += written
		s.log.Debugf("карта %d опубликована: %s", card.Number, url)

		card.QRImageURL = url
		published = append(published, card)

		if progress != nil {
			progress(i+1, len(cards), card)
		}
	}

	manifest, err := json.MarshalIndent(published, "", "  ")
	if err != nil {
		return summary, fmt.Errorf("ошибка сериализации %s: %w", ManifestName, err)
	}
	manifestURL, err := s.storage.UploadFile(ctx, bytes.NewReader(manifest), path.Join(prefix, ManifestName), "application/json")
	if err != nil {
		return summary, fmt.Errorf("ошибка публикации %s: %w", ManifestName, err)
	}
	summary.ManifestURL = manifestURL

	return summary, nil
}

func (s *Service) publishCard(ctx context.Context, card deck.Card, key string) (string, int64, error) {
	reader, err := s.open(ctx, card)
	if err != nil {
		return "", 0, err
	}
	defer reader.Close()

	contentType := reader.ContentType()
	if contentType == "" {
		contentType = "image/png"
	}

	counter := &ProgressReader{Reader: reader, Size: reader.ContentLength()}
	url, err := s.storage.UploadFile(ctx, counter, key, contentType)
	if err != nil {
		return "", 0, fmt.Errorf("ошибка публикации карты %d: %w", card.Number, err)
	}

	return url, counter.BytesRead(), nil
}

func (s *Service) open(ctx context.Context, card deck.Card) (*streaming.Reader, error) {
	reader, err := streaming.NewReaderWithClient(ctx, s.httpClient, card.QRImageURL, streaming.DefaultBufferSize)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки изображения карты %d: %w", card.Number, err)
	}
	return reader, nil
}

// ProgressReader структура для отслеживания прогресса чтения
type ProgressReader struct {
	io.Reader
	Size       int64
	OnProgress func(int64)
	bytesRead  int64
}

func (pr *ProgressReader) Read(p []byte) (n int, err error) {
	n, err = pr.Reader.Read(p)
	pr.bytesRead += int64(n)
	if pr.OnProgress != nil {
		pr.OnProgress(pr.bytesRead)
	}
	return n, err
}

// BytesRead сколько байт прочитано
func (pr *ProgressReader) BytesRead() int64 {
	return pr.bytesRead
}
