// Package catalog содержит модель трека и статический каталог песен
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Значения по умолчанию для необязательных полей трека
const (
	DefaultTitle      = "Unknown Title"
	DefaultArtist     = "Unknown Artist"
	DefaultGenre      = "ANY"
	DefaultDecade     = "ANY"
	DefaultDifficulty = "MEDIUM"
)

//go:embed static_tracks.yaml
var staticTracksYAML []byte

// Track описывает песню из каталога. ID уникален в пределах каталога.
type Track struct {
	ID         string `json:"id" yaml:"id"`
	Title      string `json:"title" yaml:"title"`
	Artist     string `json:"artist" yaml:"artist"`
	Genre      string `json:"genre,omitempty" yaml:"genre,omitempty"`
	Decade     string `json:"decade,omitempty" yaml:"decade,omitempty"`
	Difficulty string `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	Album      string `json:"album,omitempty" yaml:"album,omitempty"`
	Year       int    `json:"year,omitempty" yaml:"year,omitempty"`
	AudioFile  string `json:"audioFile,omitempty" yaml:"audio_file,omitempty"`
}

// File структура YAML файла каталога
type File struct {
	Tracks []Track `yaml:"tracks"`
}

// StaticTracks возвращает встроенный резервный список треков.
// Каждый вызов возвращает новую копию.
func StaticTracks() []Track {
	var f File
	if err := yaml.Unmarshal(staticTracksYAML, &f); err != nil {
		// Встроенный файл проверяется тестами
		panic(fmt.Sprintf("некорректный встроенный каталог: %v", err))
	}
	return normalizeAll(f.Tracks)
}

// LoadFile загружает каталог из YAML файла
func LoadFile(filePath string) ([]Track, error) {
	path, err := expandHome(filePath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла каталога: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("ошибка разбора каталога: %w", err)
	}

	for i, t := range f.Tracks {
		if strings.TrimSpace(t.ID) == "" {
			return nil, fmt.Errorf("у трека #%d в каталоге %s отсутствует id", i+1, filePath)
		}
	}

	return normalizeAll(f.Tracks), nil
}

// WriteFile сохраняет треки в YAML файл каталога
func WriteFile(filePath string, tracks []Track) error {
	path, err := expandHome(filePath)
	if err != nil {
		return err
	}

	data, err := Marshal(tracks)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("ошибка записи файла каталога: %w", err)
	}
	return nil
}

// Marshal сериализует треки в формат файла каталога
func Marshal(tracks []Track) ([]byte, error) {
	data, err := yaml.Marshal(File{Tracks: tracks})
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации каталога: %w", err)
	}
	return data, nil
}

// Normalize подставляет значения по умолчанию для отсутствующих полей
func Normalize(t Track) Track {
	t.ID = strings.TrimSpace(t.ID)
	if strings.TrimSpace(t.Title) == "" {
		t.Title = DefaultTitle
	}
	if strings.TrimSpace(t.Artist) == "" {
		t.Artist = DefaultArtist
	}
	if t.Genre == "" {
		t.Genre = DefaultGenre
	}
	if t.Decade == "" {
		t.Decade = DecadeOf(t.Year)
	}
	if t.Difficulty == "" {
		t.Difficulty = DefaultDifficulty
	}
	return t
}

// DecadeOf возвращает десятилетие в формате "1980s" или ANY для неизвестного года
func DecadeOf(year int) string {
	if year <= 0 {
		return DefaultDecade
	}
	return fmt.Sprintf("%ds", year/10*10)
}

// NewTracks возвращает треки из fetched, чьих ID нет в previous.
// Порядок fetched сохраняется; изменения содержимого существующих ID не учитываются.
func NewTracks(previous, fetched []Track) []Track {
	known := make(map[string]struct{}, len(previous))
	for _, t := range previous {
		known[t.ID] = struct{}{}
	}

	added := make([]Track, 0)
	for _, t := range fetched {
		if _, ok := known[t.ID]; !ok {
			added = append(added, t)
		}
	}
	return added
}

// Head первые n треков и количество оставшихся
func Head(tracks []Track, n int) ([]Track, int) {
	if n < 0 {
		n = 0
	}
	if len(tracks) <= n {
		return tracks, 0
	}
	return tracks[:n], len(tracks) - n
}

// FindByID ищет трек по ID
func FindByID(tracks []Track, id string) (*Track, error) {
	for i := range tracks {
		if tracks[i].ID == id {
			return &tracks[i], nil
		}
	}
	return nil, fmt.Errorf("трека с ID %s не найдено", id)
}

func normalizeAll(tracks []Track) []Track {
	result := make([]Track, len(tracks))
	for i, t := range tracks {
		result[i] = Normalize(t)
	}
	return result
}

func expandHome(filePath string) (string, error) {
	if !strings.HasPrefix(filePath, "~") {
		return filePath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return strings.Replace(filePath, "~", home, 1), nil
}
