package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/hazadus/hitback-cards/internal/catalog"
)

// errNoMatch формат не подошел, пробуем следующий
var errNoMatch = fmt.Errorf("формат не подходит")

// shapeDecoder пытается извлечь массив треков из ответа одного формата
type shapeDecoder struct {
	name   string
	decode func(raw json.RawMessage) (json.RawMessage, error)
}

// Форматы ответа в порядке приоритета, побеждает первый подошедший
var shapeDecoders = []shapeDecoder{
	{name: "array", decode: decodeBareArray},
	{name: "envelope", decode: decodeEnvelope},
	{name: "tracks", decode: decodeTracksObject},
}

// Normalize приводит тело ответа бэкенда к списку треков. Поддерживаются:
// массив треков; {success, data:[...]}; {success, data:{tracks:[...]}};
// {tracks:[...]}. Все остальное приводит к FormatError.
func Normalize(body []byte) ([]catalog.Track, error) {
	raw := json.RawMessage(bytes.TrimSpace(body))
	if !json.Valid(raw) {
		return nil, &FormatError{Reason: "тело ответа не является JSON"}
	}

	for _, decoder := range shapeDecoders {
		items, err := decoder.decode(raw)
		if err == errNoMatch {
			continue
		}
		if err != nil {
			return nil, err
		}
		return decodeTracks(items)
	}

	return nil, &FormatError{Reason: "ожидался массив треков, {success, data} или {tracks}"}
}

func decodeBareArray(raw json.RawMessage) (json.RawMessage, error) {
	if !isArray(raw) {
		return nil, errNoMatch
	}
	return raw, nil
}

func decodeEnvelope(raw json.RawMessage) (json.RawMessage, error) {
	var envelope struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if !isObject(raw) || json.Unmarshal(raw, &envelope) != nil {
		return nil, errNoMatch
	}
	if envelope.Success == nil || !*envelope.Success || len(envelope.Data) == 0 {
		return nil, errNoMatch
	}

	if isArray(envelope.Data) {
		return envelope.Data, nil
	}
	return decodeTracksObject(envelope.Data)
}

func decodeTracksObject(raw json.RawMessage) (json.RawMessage, error) {
	var wrapper struct {
		Tracks json.RawMessage `json:"tracks"`
	}
	if !isObject(raw) || json.Unmarshal(raw, &wrapper) != nil {
		return nil, errNoMatch
	}
	if !isArray(wrapper.Tracks) {
		return nil, errNoMatch
	}
	return wrapper.Tracks, nil
}

// wireTrack трек в том виде, в котором его присылает бэкенд
type wireTrack struct {
	ID         flexString `json:"id"`
	Title      string     `json:"title"`
	Artist     string     `json:"artist"`
	Genre      string     `json:"genre"`
	Decade     string     `json:"decade"`
	Difficulty string     `json:"difficulty"`
	Album      string     `json:"album"`
	Year       flexInt    `json:"year"`
	AudioFile  string     `json:"audioFile"`
}

func decodeTracks(items json.RawMessage) ([]catalog.Track, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(items, &elements); err != nil {
		return nil, &FormatError{Reason: "ошибка разбора массива треков", Err: err}
	}

	tracks := make([]catalog.Track, 0, len(elements))
	for i, element := range elements {
		if !isObject(element) {
			return nil, &FormatError{Reason: fmt.Sprintf("элемент #%d не является объектом", i+1)}
		}

		var wt wireTrack
		if err := json.Unmarshal(element, &wt); err != nil {
			return nil, &FormatError{Reason: fmt.Sprintf("ошибка разбора трека #%d", i+1), Err: err}
		}
		if strings.TrimSpace(string(wt.ID)) == "" {
			return nil, &FormatError{Reason: fmt.Sprintf("у трека #%d отсутствует id", i+1)}
		}

		tracks = append(tracks, catalog.Normalize(catalog.Track{
			ID:         string(wt.ID),
			Title:      wt.Title,
			Artist:     wt.Artist,
			Genre:      wt.Genre,
			Decade:     wt.Decade,
			Difficulty: wt.Difficulty,
			Album:      wt.Album,
			Year:       int(wt.Year),
			AudioFile:  wt.AudioFile,
		}))
	}
	return tracks, nil
}

func isArray(raw json.RawMessage) bool {
	return len(raw) > 0 && raw[0] == '['
}

func isObject(raw json.RawMessage) bool {
	return len(raw) > 0 && raw[0] == '{'
}

// flexString принимает строку или число
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("ожидалась строка или число: %s", data)
	}
	*s = flexString(num.String())
	return nil
}

// flexInt принимает число или строку с числом
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	raw := strings.Trim(string(data), `"`)
	if raw == "" {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("ожидалось целое число: %s", data)
	}
	*n = flexInt(value)
	return nil
}
