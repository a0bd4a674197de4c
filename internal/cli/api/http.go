package api

import (
	"FieldScribe/internal/cli/repo"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// CookieName — имя auth-cookie сервера.
const CookieName = "auth_token"

// Error — ответ сервера с ошибкой.
type Error struct {
	Status  int
	Message string
	Field   string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Field)
	}
	return e.Message
}

// Client ходит в HTTP API сервера. Токен берётся из Tokens на каждый запрос.
type Client struct {
	BaseURL string
	Tokens  repo.TokenStore
	HTTP    *http.Client
}

func NewClient(baseURL string, tokens repo.TokenStore) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), Tokens: tokens, HTTP: http.DefaultClient}
}

// Do выполняет запрос и читает тело целиком. Ответ 4xx/5xx превращается в *Error.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.Tokens != nil {
		if token, err := c.Tokens.Load(); err == nil {
			req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		}
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return resp, data, decodeError(resp.StatusCode, data)
	}
	return resp, data, nil
}

// JSON отправляет payload (может быть nil) и разбирает ответ в out (может быть nil).
func (c *Client) JSON(ctx context.Context, method, path string, payload, out any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	resp, data, err := c.Do(ctx, method, path, body, "application/json")
	if err != nil {
		return resp, err
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp, fmt.Errorf("decode: %w", err)
		}
	}
	return resp, nil
}

// PostMultipart отправляет форму с полями и, если filePath не пуст, файлом в поле file.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, filePath string, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	if filePath != "" {
		f, err := os.Open(filePath)
		if err != nil {
			return err
		}
		defer f.Close()
		part, err := mw.CreateFormFile("file", filepath.Base(filePath))
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, f); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}
	_, data, err := c.Do(ctx, http.MethodPost, path, &buf, mw.FormDataContentType())
	if err != nil {
		return err
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode: %w", err)
		}
	}
	return nil
}

// PersistAuthFromResponse извлекает auth cookie из ответа и сохраняет его.
func PersistAuthFromResponse(resp *http.Response, store repo.TokenStore) error {
	for _, c := range resp.Cookies() {
		if c.Name == CookieName && c.Value != "" {
			return store.Save(c.Value)
		}
	}
	return errors.New("no auth cookie in response")
}

func decodeError(status int, data []byte) error {
	var body struct {
		Error string `json:"error"`
		Field string `json:"field"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(data))
		if body.Error == "" {
			body.Error = http.StatusText(status)
		}
	}
	return &Error{Status: status, Message: body.Error, Field: body.Field}
}

// IsStatus сообщает, что сервер ответил указанным кодом.
func IsStatus(err error, status int) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == status
}
