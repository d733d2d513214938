// Package metadata извлекает метаданные из аудио файлов и собирает из них каталог треков
package metadata

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"github.com/hazadus/hitback-cards/internal/catalog"
)

// TrackMetadata хранит метаданные трека
type TrackMetadata struct {
	Artist string
	Title  string
	Album  string
	Genre  string
	Year   int
}

// Extractor извлекает метаданные из аудио файлов
type Extractor struct{}

// NewExtractor создает новый экстрактор метаданных
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractFromReader извлекает метаданные из io.Reader
func (e *Extractor) ExtractFromReader(reader io.ReadSeeker, source string) TrackMetadata {
	// Сбрасываем reader в начало
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return e.getDefaultMetadata(source)
	}

	metadata, err := tag.ReadFrom(reader)
	if err != nil {
		return e.getDefaultMetadata(source)
	}

	result := TrackMetadata{
		Artist: metadata.Artist(),
		Title:  metadata.Title(),
		Album:  metadata.Album(),
		Genre:  normalizeGenre(metadata.Genre()),
		Year:   metadata.Year(),
	}

	// Теги есть, но без названия: берем недостающее из имени файла
	if result.Title == "" || result.Artist == "" {
		fallback := e.getDefaultMetadata(source)
		if result.Title == "" {
			result.Title = fallback.Title
		}
		if result.Artist == "" {
			result.Artist = fallback.Artist
		}
	}
	return result
}

// ExtractFromFile извлекает метаданные из файла
func (e *Extractor) ExtractFromFile(filePath string) TrackMetadata {
	file, err := os.Open(filePath)
	if err != nil {
		return e.getDefaultMetadata(filePath)
	}
	defer file.Close()

	return e.ExtractFromReader(file, filePath)
}

// ScanDir собирает каталог из всех .mp3 файлов каталога dir в порядке имен.
// ID треков нумеруются с 001, AudioFile содержит имя файла.
func (e *Extractor) ScanDir(dir string) ([]catalog.Track, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения каталога %s: %w", dir, err)
	}

	tracks := make([]catalog.Track, 0)
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".mp3") {
			continue
		}

		meta := e.ExtractFromFile(filepath.Join(dir, entry.Name()))
		tracks = append(tracks, catalog.Normalize(catalog.Track{
			ID:        fmt.Sprintf("%03d", len(tracks)+1),
			Title:     meta.Title,
			Artist:    meta.Artist,
			Genre:     meta.Genre,
			Album:     meta.Album,
			Year:      meta.Year,
			AudioFile: entry.Name(),
		}))
	}

	return tracks, nil
}

// getDefaultMetadata возвращает метаданные по умолчанию на основе имени файла
func (e *Extractor) getDefaultMetadata(source string) TrackMetadata {
	fileName := filepath.Base(source)
	nameWithoutExt := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	// Пытаемся разобрать имя файла в формате "Artist - Title"
	parts := strings.Split(nameWithoutExt, " - ")
	if len(parts) >= 2 {
		return TrackMetadata{
			Artist: strings.TrimSpace(parts[0]),
			Title:  strings.TrimSpace(strings.Join(parts[1:], " - ")),
		}
	}

	return TrackMetadata{
		Artist: catalog.DefaultArtist,
		Title:  nameWithoutExt,
	}
}

// normalizeGenre приводит жанр из тегов к виду фильтра: "Hip Hop" → "HIP_HOP"
func normalizeGenre(genre string) string {
	fields := strings.FieldsFunc(strings.ToUpper(genre), func(r rune) bool {
		return r == ' ' || r == '-' || r == '/' || r == ':' || r == '_'
	})
	return strings.Join(fields, "_")
}
