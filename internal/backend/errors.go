package backend

import (
	"errors"
	"fmt"
	"time"
)

// NetworkError ошибка соединения или транспорта
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("ошибка сети при запросе %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// TimeoutError попытка не уложилась в таймаут
type TimeoutError struct {
	URL     string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("превышено время ожидания %s для %s", e.Timeout, e.URL)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// HTTPStatusError бэкенд ответил статусом вне диапазона 2xx
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %s: %s", e.Status, e.URL)
}

// FormatError тело ответа не подходит ни под один известный формат
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("неверный формат ответа бэкенда: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("неверный формат ответа бэкенда: %s", e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }

// IsRetryable сообщает, имеет ли смысл повторять запрос после ошибки.
// Повтор FormatError вернет то же самое тело, поэтому она не повторяется.
func IsRetryable(err error) bool {
	var (
		netErr     *NetworkError
		timeoutErr *TimeoutError
		statusErr  *HTTPStatusError
	)
	return errors.As(err, &netErr) || errors.As(err, &timeoutErr) || errors.As(err, &statusErr)
}
