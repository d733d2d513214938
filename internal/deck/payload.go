package deck

import (
	"fmt"
	"strings"
)

// PayloadPrefix префикс всех payload карт
const PayloadPrefix = "HITBACK"

// Ключи payload в фиксированном порядке: сканер разбирает их позиционно
var payloadKeys = []string{"TYPE", "DIFF", "GENRE", "DECADE"}

// Query разобранный payload карты
type Query struct {
	Type       CardType
	Difficulty Difficulty
	Genre      string
	Decade     string
}

// Payload возвращает строку для QR кода карты:
// HITBACK_TYPE:<type>_DIFF:<difficulty>_GENRE:<genre>_DECADE:<decade>.
// ANY передается как есть.
func Payload(spec CardSpec) string {
	return fmt.Sprintf("%s_TYPE:%s_DIFF:%s_GENRE:%s_DECADE:%s",
		PayloadPrefix, spec.Type, spec.Difficulty, spec.Genre, spec.Decade)
}

// ParsePayload разбирает payload так же, как это делает сканер на бэкенде
func ParsePayload(payload string) (Query, error) {
	rest, ok := strings.CutPrefix(payload, PayloadPrefix)
	if !ok {
		return Query{}, fmt.Errorf("payload должен начинаться с %s: %q", PayloadPrefix, payload)
	}

	values := make([]string, len(payloadKeys))
	for i, key := range payloadKeys {
		marker := "_" + key + ":"
		after, found := strings.CutPrefix(rest, marker)
		if !found {
			return Query{}, fmt.Errorf("в payload отсутствует ключ %s на позиции %d: %q", key, i+1, payload)
		}

		// Значение тянется до следующего ключа или до конца строки
		if i+1 < len(payloadKeys) {
			next := "_" + payloadKeys[i+1] + ":"
			idx := strings.Index(after, next)
			if idx < 0 {
				return Query{}, fmt.Errorf("в payload отсутствует ключ %s: %q", payloadKeys[i+1], payload)
			}
			values[i], rest = after[:idx], after[idx:]
		} else {
			values[i], rest = after, ""
		}

		if values[i] == "" {
			return Query{}, fmt.Errorf("пустое значение ключа %s: %q", key, payload)
		}
	}

	q := Query{
		Type:       CardType(values[0]),
		Difficulty: Difficulty(values[1]),
		Genre:      values[2],
		Decade:     values[3],
	}
	if !q.Type.Valid() {
		return Query{}, fmt.Errorf("неизвестный тип карты: %q", q.Type)
	}
	if !q.Difficulty.Valid() {
		return Query{}, fmt.Errorf("неизвестная сложность: %q", q.Difficulty)
	}
	return q, nil
}
