// Package client содержит клиентов внешних сервисов: распознавание
// рецептов, анализ питательности, консолидация списка покупок и
// отправка во внешний менеджер рецептов. Все вызовы ограничены
// таймаутом — это единственные точки с неограниченной задержкой.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// UpstreamError — ошибка внешнего сервиса. Тело ответа сохраняется
// дословно и доводится до вызывающего.
type UpstreamError struct {
	Service string
	Status  int
	Body    []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream status %d: %s", e.Service, e.Status, string(e.Body))
}

// doJSON выполняет JSON-вызов с таймаутом и возвращает сырое тело
// ответа. Не-2xx ответ превращается в UpstreamError с дословным телом.
func doJSON(ctx context.Context, httpc *http.Client, timeout time.Duration, service, method, url string, headers map[string]string, in, out any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", service, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", service, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Service: service, Status: resp.StatusCode, Body: data}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return nil, fmt.Errorf("%s: decode response: %w", service, err)
		}
	}
	return data, nil
}
