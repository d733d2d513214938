package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hazadus/hitback-cards/internal/qr"
)

// ScanResult ответ скан-эндпоинта: выбранный трек и вопрос к нему
type ScanResult struct {
	Payload  string
	URL      string
	Track    ScanTrack
	Question ScanQuestion
	Filters  ScanFilters
}

// ScanTrack трек, выбранный бэкендом
type ScanTrack struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// ScanQuestion вопрос, который задает карта
type ScanQuestion struct {
	Type     string `json:"type"`
	Question string `json:"question"`
}

// ScanFilters фильтры, которые бэкенд применил при выборе
type ScanFilters struct {
	Genre  string `json:"genre"`
	Decade string `json:"decade"`
}

type scanResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Track    ScanTrack    `json:"track"`
		Question ScanQuestion `json:"question"`
		Scan     struct {
			Filters ScanFilters `json:"filters"`
		} `json:"scan"`
	} `json:"data"`
}

// Scan отправляет payload карты на скан-эндпоинт бэкенда, как это делает
// телефон игрока. Выполняется одна попытка с таймаутом политики.
func (c *Client) Scan(ctx context.Context, payload string) (*ScanResult, error) {
	endpoint := qr.ScanURL(c.BaseURL(), payload)
	if c.BaseURL() == "" {
		return nil, &NetworkError{URL: endpoint, Err: errors.New("не задан адрес бэкенда")}
	}

	attemptCtx := ctx
	if c.policy.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.policy.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, &NetworkError{URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	c.log.Debugf("проверка скана %s", endpoint)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classify(ctx, attemptCtx, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPStatusError{URL: endpoint, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, c.classify(ctx, attemptCtx, endpoint, err)
	}

	var decoded scanResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &FormatError{Reason: "ошибка разбора ответа скана", Err: err}
	}
	if !decoded.Success {
		reason := "бэкенд вернул success=false"
		if decoded.Error != "" {
			reason = fmt.Sprintf("%s: %s", reason, decoded.Error)
		}
		return nil, &FormatError{Reason: reason}
	}

	return &ScanResult{
		Payload:  payload,
		URL:      endpoint,
		Track:    decoded.Data.Track,
		Question: decoded.Data.Question,
		Filters:  decoded.Data.Scan.Filters,
	}, nil
}
