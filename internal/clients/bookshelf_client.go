// internal/clients/bookshelf_client.go
package clients

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"bookshelf/internal/bookshelf"
	"bookshelf/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// APIError is returned when the server answers with a fail or error envelope.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Status, e.StatusCode, e.Message)
}

// BookshelfClient talks to the book API over HTTP.
type BookshelfClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewBookshelfClient(baseURL string) *BookshelfClient {
	return &BookshelfClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func (c *BookshelfClient) WithHTTPClient(hc *http.Client) *BookshelfClient {
	c.httpClient = hc
	return c
}

func (c *BookshelfClient) AddBook(ctx context.Context, in bookshelf.BookInput) (string, error) {
	var data struct {
		BookID string `json:"bookId"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/books", in, &data); err != nil {
		return "", err
	}
	return data.BookID, nil
}

func (c *BookshelfClient) ListBooks(ctx context.Context, query url.Values) ([]bookshelf.Summary, error) {
	path := "/books"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var data struct {
		Books []bookshelf.Summary `json:"books"`
	}
	if _, err := c.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	return data.Books, nil
}

func (c *BookshelfClient) GetBook(ctx context.Context, id string) (*bookshelf.Book, error) {
	var data struct {
		Book bookshelf.Book `json:"book"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/books/"+url.PathEscape(id), nil, &data); err != nil {
		return nil, err
	}
	return &data.Book, nil
}

// UpdateBook returns the server's confirmation message.
func (c *BookshelfClient) UpdateBook(ctx context.Context, id string, in bookshelf.BookInput) (string, error) {
	return c.do(ctx, http.MethodPut, "/books/"+url.PathEscape(id), in, nil)
}

// DeleteBook returns the server's confirmation message.
func (c *BookshelfClient) DeleteBook(ctx context.Context, id string) (string, error) {
	return c.do(ctx, http.MethodDelete, "/books/"+url.PathEscape(id), nil, nil)
}

// do sends the request and decodes the envelope's data into out when out is non-nil.
func (c *BookshelfClient) do(ctx context.Context, method, path string, body, out interface{}) (string, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return "", err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return "", err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logger.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(logger.HeaderRequestID, id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var env struct {
		Status  string              `json:"status"`
		Message string              `json:"message"`
		Data    jsoniter.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("unexpected response (status %d): %w", resp.StatusCode, err)
	}

	if env.Status != bookshelf.StatusSuccess {
		return "", &APIError{StatusCode: resp.StatusCode, Status: env.Status, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", err
		}
	}
	return env.Message, nil
}
