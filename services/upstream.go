package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"socialgw/config"
)

// UpstreamError - не-2xx ответ бэкенда; статус и message транслируются клиенту как есть
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %d: %s", e.Status, e.Message)
}

// NetworkError - сетевой сбой или обрыв до получения ответа.
// Клиенту уходит 500 с общим сообщением, детали остаются в логах.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

const genericUpstreamMessage = "unexpected backend response"

// UpstreamClient - HTTP-клиент до удаленного бэкенда. Единственная точка выхода
// наружу: навешивает bearer-токен, нормализует ошибки в {message}.
type UpstreamClient struct {
	baseURL string
	http    *http.Client
}

func NewUpstreamClient(baseURL string, timeout time.Duration) *UpstreamClient {
	return &UpstreamClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: timeout,
			},
		},
	}
}

// NewUpstreamClientFromConfig собирает клиент из загруженного AppConfig
func NewUpstreamClientFromConfig() *UpstreamClient {
	if config.AppConfig == nil {
		return NewUpstreamClient("http://localhost:4000", 10*time.Second)
	}
	return NewUpstreamClient(
		config.AppConfig.Backend.BaseURL,
		time.Duration(config.AppConfig.Backend.TimeoutSeconds)*time.Second,
	)
}

// DoJSON выполняет запрос с JSON-телом (body может быть nil) и возвращает
// сырое тело успешного ответа. Повторных попыток нет: сбой отдается сразу.
func (u *UpstreamClient) DoJSON(ctx context.Context, method, path, token string, body any) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.baseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return u.execute(req)
}

// DoMultipart пересылает multipart-тело (создание поста) без перекодирования
func (u *UpstreamClient) DoMultipart(ctx context.Context, path, token, contentType string, body io.Reader) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+path, body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return u.execute(req)
}

func (u *UpstreamClient) execute(req *http.Request) ([]byte, int, error) {
	resp, err := u.http.Do(req)
	if err != nil {
		return nil, 0, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &UpstreamError{
			Status:  resp.StatusCode,
			Message: extractMessage(raw),
		}
	}

	return raw, resp.StatusCode, nil
}

// extractMessage достает message из JSON-тела ошибки бэкенда.
// Если тело не JSON - берем сырой текст, если пусто - общее сообщение.
func extractMessage(raw []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	if text := strings.TrimSpace(string(raw)); text != "" && len(text) <= 256 {
		return text
	}
	return genericUpstreamMessage
}
