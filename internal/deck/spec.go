// Package deck описывает колоду физических карт и генерацию QR payload для них
package deck

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CardType тип вопроса на карте
type CardType string

// Типы карт
const (
	TypeSong      CardType = "SONG"
	TypeArtist    CardType = "ARTIST"
	TypeDecade    CardType = "DECADE"
	TypeLyrics    CardType = "LYRICS"
	TypeChallenge CardType = "CHALLENGE"
)

// Difficulty сложность карты
type Difficulty string

// Уровни сложности
const (
	Easy   Difficulty = "EASY"
	Medium Difficulty = "MEDIUM"
	Hard   Difficulty = "HARD"
)

// Any означает отсутствие ограничения по жанру или десятилетию
const Any = "ANY"

// CardTypes все типы карт в порядке отображения
var CardTypes = []CardType{TypeSong, TypeArtist, TypeDecade, TypeLyrics, TypeChallenge}

// Difficulties все уровни сложности
var Difficulties = []Difficulty{Easy, Medium, Hard}

// Valid проверяет, что тип карты известен
func (t CardType) Valid() bool {
	for _, known := range CardTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Valid проверяет, что уровень сложности известен
func (d Difficulty) Valid() bool {
	for _, known := range Difficulties {
		if d == known {
			return true
		}
	}
	return false
}

// CardSpec правило: сколько карт данной комбинации напечатать
type CardSpec struct {
	Type       CardType   `yaml:"type"`
	Difficulty Difficulty `yaml:"difficulty"`
	Genre      string     `yaml:"genre"`
	Decade     string     `yaml:"decade"`
	Count      int        `yaml:"count"`
}

// Validate проверяет правило колоды
func (s CardSpec) Validate() error {
	if !s.Type.Valid() {
		return fmt.Errorf("неизвестный тип карты: %q", s.Type)
	}
	if !s.Difficulty.Valid() {
		return fmt.Errorf("неизвестная сложность: %q", s.Difficulty)
	}
	if s.Count < 0 {
		return fmt.Errorf("отрицательное количество карт: %d", s.Count)
	}
	if err := validateToken("genre", s.Genre); err != nil {
		return err
	}
	return validateToken("decade", s.Decade)
}

// validateToken не пропускает значения, которые сломают позиционный разбор payload
func validateToken(field, value string) error {
	if value == "" {
		return fmt.Errorf("пустое значение %s, используйте %s", field, Any)
	}
	if strings.ContainsAny(value, " \t\r\n:") {
		return fmt.Errorf("значение %s содержит пробел или двоеточие: %q", field, value)
	}
	return nil
}

// ValidateSpecs проверяет все правила колоды
func ValidateSpecs(specs []CardSpec) error {
	for i, s := range specs {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("правило #%d: %w", i+1, err)
		}
	}
	return nil
}

// TotalCount возвращает число карт, которое даст колода
func TotalCount(specs []CardSpec) int {
	total := 0
	for _, s := range specs {
		total += s.Count
	}
	return total
}

// DefaultSpecs возвращает стандартную колоду из 60 карт
func DefaultSpecs() []CardSpec {
	return []CardSpec{
		// SONG EASY (15)
		{Type: TypeSong, Difficulty: Easy, Genre: Any, Decade: Any, Count: 5},
		{Type: TypeSong, Difficulty: Easy, Genre: "ROCK", Decade: Any, Count: 3},
		{Type: TypeSong, Difficulty: Easy, Genre: "POP", Decade: Any, Count: 3},
		{Type: TypeSong, Difficulty: Easy, Genre: Any, Decade: "1980s", Count: 2},
		{Type: TypeSong, Difficulty: Easy, Genre: Any, Decade: "2010s", Count: 2},

		// SONG MEDIUM (12)
		{Type: TypeSong, Difficulty: Medium, Genre: Any, Decade: Any, Count: 4},
		{Type: TypeSong, Difficulty: Medium, Genre: "ROCK", Decade: Any, Count: 3},
		{Type: TypeSong, Difficulty: Medium, Genre: "REGGAETON", Decade: Any, Count: 3},
		{Type: TypeSong, Difficulty: Medium, Genre: Any, Decade: "1990s", Count: 2},

		// SONG HARD (8)
		{Type: TypeSong, Difficulty: Hard, Genre: Any, Decade: Any, Count: 3},
		{Type: TypeSong, Difficulty: Hard, Genre: "ROCK", Decade: Any, Count: 2},
		{Type: TypeSong, Difficulty: Hard, Genre: "ELECTRONIC", Decade: Any, Count: 2},
		{Type: TypeSong, Difficulty: Hard, Genre: Any, Decade: "1970s", Count: 1},

		// ARTIST (10)
		{Type: TypeArtist, Difficulty: Easy, Genre: Any, Decade: Any, Count: 3},
		{Type: TypeArtist, Difficulty: Medium, Genre: "ROCK", Decade: Any, Count: 3},
		{Type: TypeArtist, Difficulty: Hard, Genre: Any, Decade: Any, Count: 2},
		{Type: TypeArtist, Difficulty: Hard, Genre: "REGGAETON", Decade: Any, Count: 2},

		// DECADE (8)
		{Type: TypeDecade, Difficulty: Easy, Genre: Any, Decade: Any, Count: 2},
		{Type: TypeDecade, Difficulty: Medium, Genre: Any, Decade: Any, Count: 3},
		{Type: TypeDecade, Difficulty: Hard, Genre: Any, Decade: Any, Count: 3},

		// LYRICS (5)
		{Type: TypeLyrics, Difficulty: Medium, Genre: Any, Decade: Any, Count: 2},
		{Type: TypeLyrics, Difficulty: Hard, Genre: Any, Decade: Any, Count: 3},

		// CHALLENGE (2)
		{Type: TypeChallenge, Difficulty: Medium, Genre: Any, Decade: Any, Count: 2},
	}
}

// specFile структура YAML файла с описанием колоды
type specFile struct {
	Cards []CardSpec `yaml:"cards"`
}

// LoadSpecs загружает описание колоды из YAML файла
func LoadSpecs(filePath string) ([]CardSpec, error) {
	if strings.HasPrefix(filePath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		filePath = strings.Replace(filePath, "~", home, 1)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла колоды: %w", err)
	}

	var f specFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("ошибка разбора файла колоды: %w", err)
	}

	// Пустые жанр и десятилетие означают отсутствие ограничения
	for i := range f.Cards {
		if f.Cards[i].Genre == "" {
			f.Cards[i].Genre = Any
		}
		if f.Cards[i].Decade == "" {
			f.Cards[i].Decade = Any
		}
	}

	if err := ValidateSpecs(f.Cards); err != nil {
		return nil, err
	}
	return f.Cards, nil
}
