// Package streaming содержит буферизованное чтение HTTP ответов порциями:
// изображений QR кодов и аудио для предпрослушивания
package streaming

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// DefaultBufferSize размер буфера по умолчанию
const DefaultBufferSize = 64 * 1024

// Reader представляет буферизованный поток для чтения данных порциями
type Reader struct {
	reader *bufio.Reader
	resp   *http.Response
}

// NewClient создает HTTP клиент без общего таймаута для длительного потокового
// чтения. Таймауты заданы только на установку соединения и заголовки.
func NewClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
			IdleConnTimeout:       300 * time.Second, // 5 минут
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   2,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// NewReader создает новый потоковый ридер
func NewReader(ctx context.Context, url string, bufferSize int) (*Reader, error) {
	return NewReaderWithClient(ctx, NewClient(), url, bufferSize)
}

// NewReaderWithClient создает потоковый ридер с указанным HTTP клиентом
func NewReaderWithClient(ctx context.Context, client *http.Client, url string, bufferSize int) (*Reader, error) {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Accept-Encoding", "identity") // Отключаем сжатие для потока
	req.Header.Set("Range", "bytes=0-")
	req.Header.Set("User-Agent", "hitback-cards/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, fmt.Errorf("ошибка HTTP: %s", resp.Status)
	}

	return &Reader{
		reader: bufio.NewReaderSize(resp.Body, bufferSize),
		resp:   resp,
	}, nil
}

// Read реализует интерфейс io.Reader для потокового чтения
func (sr *Reader) Read(p []byte) (n int, err error) {
	return sr.reader.Read(p)
}

// Close закрывает соединение
func (sr *Reader) Close() error {
	return sr.resp.Body.Close()
}

// ContentType тип содержимого из заголовков ответа
func (sr *Reader) ContentType() string {
	return sr.resp.Header.Get("Content-Type")
}

// ContentLength размер содержимого, -1 если неизвестен
func (sr *Reader) ContentLength() int64 {
	return sr.resp.ContentLength
}
