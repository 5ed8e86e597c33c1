package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iudanet/communitysync/internal/models"
)

//go:generate moq -out client_mock.go . ClientAPI

// ClientAPI описывает REST операции над коллекциями сервера
type ClientAPI interface {
	List(ctx context.Context, collection string) ([]*models.Record, error)
	Create(ctx context.Context, collection string, body map[string]any) (*models.Record, error)
	Update(ctx context.Context, collection, id string, body map[string]any) (*models.Record, error)
	Delete(ctx context.Context, collection, id string) error
}

var _ ClientAPI = (*Client)(nil)

// ErrEmptyResponse сервер ответил 2xx без тела там, где ожидалась запись
var ErrEmptyResponse = errors.New("empty response body")

// StatusError не-2xx ответ сервера
type StatusError struct {
	Body       string
	StatusCode int
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Body)
}

// FetchError ошибка получения списка коллекции.
// Вызывающий код трактует ее как пустой результат.
type FetchError struct {
	Err        error
	Collection string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Collection, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// listEnvelope формат списка {collection, count, data}
type listEnvelope struct {
	Collection string           `json:"collection"`
	Data       []map[string]any `json:"data"`
	Count      int              `json:"count"`
}

// Stats сводка по серверу для команды status
type Stats struct {
	Users       int `json:"users"`
	Collections int `json:"collections"`
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	now        func() time.Time
	baseURL    string
	token      string
}

// Option настраивает Client
type Option func(*Client)

// WithToken устанавливает bearer токен для всех запросов
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient подменяет http.Client (тесты, кастомный транспорт)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient создает новый API клиент
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List получает все записи коллекции.
// Сервер отдает либо голый массив, либо обертку {collection, count, data}.
func (c *Client) List(ctx context.Context, collection string) ([]*models.Record, error) {
	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodGet, collectionPath(collection), nil, &raw); err != nil {
		return nil, &FetchError{Collection: collection, Err: err}
	}

	items, err := decodeList(raw)
	if err != nil {
		return nil, &FetchError{Collection: collection, Err: err}
	}

	records := make([]*models.Record, 0, len(items))
	for _, fields := range items {
		if fields == nil {
			continue
		}
		records = append(records, models.NewRecord(collection, fields))
	}
	return records, nil
}

// Create создает запись, проставляя createdAt, и возвращает запись в том виде, как ее сохранил сервер
func (c *Client) Create(ctx context.Context, collection string, body map[string]any) (*models.Record, error) {
	payload := copyBody(body)
	payload[models.FieldCreatedAt] = c.now().UTC().Format(time.RFC3339Nano)

	var fields map[string]any
	if err := c.doRequest(ctx, http.MethodPost, collectionPath(collection), payload, &fields); err != nil {
		return nil, fmt.Errorf("create %s: %w", collection, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("create %s: %w", collection, ErrEmptyResponse)
	}
	return models.NewRecord(collection, fields), nil
}

// Update обновляет запись через PUT с updatedAt.
// Не все бэкенды поддерживают PUT, поэтому при неудаче запись создается заново с тем же id.
func (c *Client) Update(ctx context.Context, collection, id string, body map[string]any) (*models.Record, error) {
	payload := copyBody(body)
	payload[models.FieldUpdatedAt] = c.now().UTC().Format(time.RFC3339Nano)

	var fields map[string]any
	err := c.doRequest(ctx, http.MethodPut, recordPath(collection, id), payload, &fields)
	if err == nil {
		// 204 без тела: считаем, что сервер сохранил то, что отправили
		if fields == nil {
			fields = payload
			fields[models.FieldID] = id
		}
		return models.NewRecord(collection, fields), nil
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("update %s/%s: %w", collection, id, ctx.Err())
	}

	// Fallback: upsert через создание записи с тем же id
	fallback := copyBody(body)
	fallback[models.FieldID] = id
	record, createErr := c.Create(ctx, collection, fallback)
	if createErr != nil {
		return nil, fmt.Errorf("update %s/%s: %w", collection, id, errors.Join(err, createErr))
	}
	return record, nil
}

// Delete удаляет запись
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, recordPath(collection, id), nil, nil); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// Stats возвращает количество пользователей и коллекций на сервере
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	users, err := c.List(ctx, models.CollectionUsers)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodGet, "/api/collections", nil, &raw); err != nil {
		return nil, fmt.Errorf("get collections: %w", err)
	}
	collections, err := countList(raw)
	if err != nil {
		return nil, fmt.Errorf("get collections: %w", err)
	}

	return &Stats{Users: len(users), Collections: collections}, nil
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	endpoint := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	// Декодируем успешный ответ
	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func decodeList(raw json.RawMessage) ([]map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var items []map[string]any
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to decode list: %w", err)
		}
		return items, nil
	}

	var envelope listEnvelope
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode list envelope: %w", err)
	}
	return envelope.Data, nil
}

// countList считает элементы списка произвольного вида: массив, data или count
func countList(raw json.RawMessage) (int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0, nil
	}

	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return 0, err
		}
		return len(items), nil
	}

	var envelope struct {
		Data  []json.RawMessage `json:"data"`
		Count int               `json:"count"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return 0, err
	}
	if envelope.Data != nil {
		return len(envelope.Data), nil
	}
	return envelope.Count, nil
}

func collectionPath(collection string) string {
	return "/api/" + url.PathEscape(collection)
}

func recordPath(collection, id string) string {
	return collectionPath(collection) + "/" + url.PathEscape(id)
}

func copyBody(body map[string]any) map[string]any {
	out := make(map[string]any, len(body)+1)
	for k, v := range body {
		out[k] = v
	}
	return out
}
