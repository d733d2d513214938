// Package qr формирует ссылки на внешний сервис генерации QR изображений
package qr

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultAPIBase адрес сервиса генерации QR кодов
const DefaultAPIBase = "https://api.qrserver.com/v1/create-qr-code/"

// ScanPath путь эндпоинта сканирования карты на бэкенде
const ScanPath = "/api/qr/scan/"

// Options параметры изображения QR кода
type Options struct {
	BaseURL string `yaml:"api_base"`
	Size    string `yaml:"size"`
	Format  string `yaml:"format"`
	Margin  *int   `yaml:"margin"` // nil означает значение по умолчанию, 0 допустим
	QZone   *int   `yaml:"qzone"`
	Color   string `yaml:"color"`
	BgColor string `yaml:"bgcolor"`
}

// DefaultOptions возвращает параметры, с которыми печатаются карты
func DefaultOptions() Options {
	return Options{
		BaseURL: DefaultAPIBase,
		Size:    "300x300",
		Format:  "png",
		Margin:  Int(20),
		QZone:   Int(1),
		Color:   "0f172a",
		BgColor: "ffffff",
	}
}

// WithDefaults заполняет пустые поля значениями по умолчанию
func (o Options) WithDefaults() Options {
	def := DefaultOptions()
	if o.BaseURL == "" {
		o.BaseURL = def.BaseURL
	}
	if o.Size == "" {
		o.Size = def.Size
	}
	if o.Format == "" {
		o.Format = def.Format
	}
	if o.Margin == nil {
		o.Margin = def.Margin
	}
	if o.QZone == nil {
		o.QZone = def.QZone
	}
	if o.Color == "" {
		o.Color = def.Color
	}
	if o.BgColor == "" {
		o.BgColor = def.BgColor
	}
	return o
}

// Int возвращает указатель на v для полей Margin и QZone
func Int(v int) *int {
	return &v
}

// Builder строит URL изображений QR кодов
type Builder struct {
	opts Options
}

// NewBuilder создает построитель с заданными параметрами
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts.WithDefaults()}
}

// Options возвращает параметры построителя
func (b *Builder) Options() Options {
	return b.opts
}

// ImageURL возвращает ссылку на изображение для payload.
// Доступность сервиса не проверяется: изображение загружается лениво.
func (b *Builder) ImageURL(payload string) string {
	params := url.Values{}
	params.Set("size", b.opts.Size)
	params.Set("data", payload)
	params.Set("format", b.opts.Format)
	params.Set("margin", strconv.Itoa(*b.opts.Margin))
	params.Set("qzone", strconv.Itoa(*b.opts.QZone))
	params.Set("color", b.opts.Color)
	params.Set("bgcolor", b.opts.BgColor)

	return b.opts.BaseURL + "?" + params.Encode()
}

// ScanURL возвращает адрес эндпоинта сканирования карты на бэкенде
func ScanURL(baseURL, payload string) string {
	return strings.TrimRight(baseURL, "/") + ScanPath + EncodeComponent(payload)
}

// EncodeComponent кодирует строку так же, как encodeURIComponent в браузере
func EncodeComponent(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")

	// encodeURIComponent не экранирует эти символы
	for _, r := range []string{"!", "'", "(", ")", "*"} {
		escaped = strings.ReplaceAll(escaped, url.QueryEscape(r), r)
	}
	return escaped
}
