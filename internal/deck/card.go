package deck

import (
	"fmt"
	"math"

	"github.com/hazadus/hitback-cards/internal/qr"
	"github.com/mitchellh/hashstructure/v2"
)

// DefaultPoolBase размер пула, если каталог еще не загружен
const DefaultPoolBase = 300

// Каждый фильтр оставляет 70% пула
const (
	poolKeepRatio = 0.7
	minPoolSize   = 5
)

// Card одна физическая карта колоды
type Card struct {
	Number        int        `json:"number" yaml:"number"`
	Type          CardType   `json:"type" yaml:"type"`
	Difficulty    Difficulty `json:"difficulty" yaml:"difficulty"`
	Genre         string     `json:"genre" yaml:"genre"`
	Decade        string     `json:"decade" yaml:"decade"`
	QRPayload     string     `json:"qrPayload" yaml:"qr_payload"`
	QRImageURL    string     `json:"qrImageUrl" yaml:"qr_image_url"`
	ScanURL       string     `json:"scanUrl,omitempty" yaml:"scan_url,omitempty"`
	EstimatedPool int        `json:"estimatedPool" yaml:"estimated_pool"`
}

// ImageURLer строит ссылку на изображение QR кода по payload
type ImageURLer interface {
	ImageURL(payload string) string
}

// BuildOptions параметры генерации колоды
type BuildOptions struct {
	Images      ImageURLer
	ScanBaseURL string // если пусто, ScanURL не заполняется
	TrackCount  int
}

// Build разворачивает правила в упорядоченный список карт.
// Номера идут от 1 до N без пропусков в порядке правил; одинаковые
// правила всегда дают одинаковые карты.
func Build(specs []CardSpec, opts BuildOptions) ([]Card, error) {
	if err := ValidateSpecs(specs); err != nil {
		return nil, err
	}
	if opts.Images == nil {
		opts.Images = qr.NewBuilder(qr.DefaultOptions())
	}

	cards := make([]Card, 0, TotalCount(specs))
	number := 1

	for _, spec := range specs {
		payload := Payload(spec)
		imageURL := opts.Images.ImageURL(payload)

		var scanURL string
		if opts.ScanBaseURL != "" {
			scanURL = qr.ScanURL(opts.ScanBaseURL, payload)
		}

		for i := 0; i < spec.Count; i++ {
			card := Card{
				Number:     number,
				Type:       spec.Type,
				Difficulty: spec.Difficulty,
				Genre:      spec.Genre,
				Decade:     spec.Decade,
				QRPayload:  payload,
				QRImageURL: imageURL,
				ScanURL:    scanURL,
			}
			card.EstimatedPool = EstimatePoolSize(card, opts.TrackCount)
			cards = append(cards, card)
			number++
		}
	}

	return cards, nil
}

// EstimatePoolSize приблизительно оценивает, из скольких песен бэкенд
// будет выбирать для карты. Каждый фильтр, отличный от ANY, уменьшает пул на 30%.
func EstimatePoolSize(card Card, trackCount int) int {
	base := trackCount
	if base <= 0 {
		base = DefaultPoolBase
	}

	filters := 0
	if string(card.Difficulty) != Any {
		filters++
	}
	if card.Genre != Any {
		filters++
	}
	if card.Decade != Any {
		filters++
	}

	// Округление вниз в float64: 300 при двух фильтрах дает 146
	keep := 1.0
	for i := 0; i < filters; i++ {
		keep *= poolKeepRatio
	}
	return max(int(math.Floor(float64(base)*keep)), minPoolSize)
}

// Fingerprint возвращает стабильный отпечаток набора правил колоды
func Fingerprint(specs []CardSpec) (string, error) {
	hash, err := hashstructure.Hash(specs, hashstructure.FormatV2, nil)
	if err != nil {
		return "", fmt.Errorf("ошибка вычисления отпечатка колоды: %w", err)
	}
	return fmt.Sprintf("%016x", hash), nil
}

// ImageFileName имя файла изображения карты
func ImageFileName(card Card) string {
	return fmt.Sprintf("HITBACK_Card_%02d.png", card.Number)
}

var cardIcons = map[CardType]string{
	TypeSong:      "🎵",
	TypeArtist:    "🎤",
	TypeDecade:    "📅",
	TypeLyrics:    "📝",
	TypeChallenge: "🔥",
}

var cardColors = map[CardType]string{
	TypeSong:      "#3b82f6",
	TypeArtist:    "#ec4899",
	TypeDecade:    "#8b5cf6",
	TypeLyrics:    "#f59e0b",
	TypeChallenge: "#ef4444",
}

// Icon иконка типа карты
func Icon(t CardType) string {
	if icon, ok := cardIcons[t]; ok {
		return icon
	}
	return "❔"
}

// Color цвет типа карты
func Color(t CardType) string {
	if c, ok := cardColors[t]; ok {
		return c
	}
	return "#64748b"
}

// DifficultyDots наглядное обозначение сложности
func DifficultyDots(d Difficulty) string {
	switch d {
	case Easy:
		return "●"
	case Medium:
		return "●●"
	case Hard:
		return "●●●"
	default:
		return "○"
	}
}
