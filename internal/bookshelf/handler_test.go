package bookshelf

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/pkg/eventstore"
)

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		BookID string             `json:"bookId"`
		Book   *Book              `json:"book"`
		Books  []Summary          `json:"books"`
		Events []eventstore.Event `json:"events"`
	} `json:"data"`
}

func newTestRouter(t *testing.T, svc Service) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	NewHandler(svc).Routes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

const bookJSON = `{"name":"Buku A","year":2010,"author":"John Doe","summary":"Lorem ipsum","publisher":"Dicoding Indonesia","pageCount":100,"readPage":100,"reading":false}`

func TestHandleAddBook(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := newTestRouter(t, svc)

	rec, env := do(t, h, http.MethodPost, "/books", bookJSON)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, StatusSuccess, env.Status)
	assert.Equal(t, "Buku berhasil ditambahkan", env.Message)
	require.Len(t, env.Data.BookID, idLength)

	rec, env = do(t, h, http.MethodGet, "/books/"+env.Data.BookID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Data.Book)
	assert.Equal(t, "Buku A", env.Data.Book.Name)
	assert.True(t, env.Data.Book.Finished)
	assert.Equal(t, 100, env.Data.Book.ReadPage)
}

func TestHandleAddBookFullRecordFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := newTestRouter(t, svc)

	_, created := do(t, h, http.MethodPost, "/books", bookJSON)
	rec, _ := do(t, h, http.MethodGet, "/books/"+created.Data.BookID, "")

	var raw struct {
		Data struct {
			Book map[string]interface{} `json:"book"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	book := raw.Data.Book
	for _, field := range []string{"id", "name", "year", "author", "summary", "publisher", "pageCount", "readPage", "finished", "reading", "insertedAt", "updatedAt"} {
		assert.Contains(t, book, field)
	}
	assert.Len(t, book, 12)
}

func TestHandleAddBookFailures(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{
			name:    "missing name",
			body:    `{"year":2010,"pageCount":100,"readPage":10}`,
			wantMsg: "Gagal menambahkan buku. Mohon isi nama buku",
		},
		{
			name:    "readPage above pageCount",
			body:    `{"name":"B","pageCount":100,"readPage":150}`,
			wantMsg: "Gagal menambahkan buku. readPage tidak boleh lebih besar dari pageCount",
		},
		{
			name:    "malformed body",
			body:    `{"name":`,
			wantMsg: "Gagal menambahkan buku. Payload tidak valid",
		},
		{
			name:    "wrong field type",
			body:    `{"name":"B","pageCount":"many"}`,
			wantMsg: "Gagal menambahkan buku. Payload tidak valid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newTestService(t)
			h := newTestRouter(t, svc)

			rec, env := do(t, h, http.MethodPost, "/books", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, StatusFail, env.Status)
			assert.Equal(t, tt.wantMsg, env.Message)
			assert.Zero(t, store.Len())
		})
	}
}

type failingService struct {
	Service
	err error
}

func (f failingService) AddBook(context.Context, BookInput) (*Book, error) { return nil, f.err }
func (f failingService) ListBooks(context.Context, Filter) ([]Summary, error) {
	return nil, f.err
}

func TestHandleInternalErrors(t *testing.T) {
	h := newTestRouter(t, failingService{err: ErrVerificationFailed})

	rec, env := do(t, h, http.MethodPost, "/books", bookJSON)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, StatusError, env.Status)
	assert.Equal(t, "Buku gagal ditambahkan", env.Message)

	h = newTestRouter(t, failingService{err: errors.New("boom")})
	rec, env = do(t, h, http.MethodGet, "/books", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, StatusError, env.Status)
}

func TestHandleListBooks(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := newTestRouter(t, svc)

	rec, env := do(t, h, http.MethodGet, "/books", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"books":[]`)

	do(t, h, http.MethodPost, "/books", bookJSON)
	do(t, h, http.MethodPost, "/books", strings.Replace(bookJSON, `"Buku A"`, `"Novel Dicoding"`, 1))
	do(t, h, http.MethodPost, "/books", strings.Replace(strings.Replace(bookJSON, `"Buku A"`, `"Other"`, 1), `"readPage":100`, `"readPage":5`, 1))

	tests := []struct {
		query string
		want  []string
	}{
		{query: "", want: []string{"Buku A", "Novel Dicoding", "Other"}},
		{query: "?name=dicoding", want: []string{"Novel Dicoding"}},
		{query: "?finished=1", want: []string{"Buku A", "Novel Dicoding"}},
		{query: "?finished=0", want: []string{"Other"}},
		{query: "?reading=1", want: []string{}},
		{query: "?reading=abc", want: []string{"Buku A", "Novel Dicoding", "Other"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec, env = do(t, h, http.MethodGet, "/books"+tt.query, "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, StatusSuccess, env.Status)

			names := make([]string, 0, len(env.Data.Books))
			for _, b := range env.Data.Books {
				names = append(names, b.Name)
				assert.Equal(t, "Dicoding Indonesia", b.Publisher)
				assert.NotEmpty(t, b.ID)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestHandleGetBookNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := newTestRouter(t, svc)

	rec, env := do(t, h, http.MethodGet, "/books/xxxxx", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, StatusFail, env.Status)
	assert.Equal(t, "Buku tidak ditemukan", env.Message)
}

func TestHandleUpdateBook(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := newTestRouter(t, svc)

	_, created := do(t, h, http.MethodPost, "/books", bookJSON)
	id := created.Data.BookID
	_, before := do(t, h, http.MethodGet, "/books/"+id, "")

	updateJSON := `{"name":"Buku A Revisi","year":2011,"author":"Jane Doe","summary":"Updated","publisher":"Dicoding","pageCount":200,"readPage":26,"reading":true}`
	rec, env := do(t, h, http.MethodPut, "/books/"+id, updateJSON)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusSuccess, env.Status)
	assert.Equal(t, "Buku berhasil diperbarui", env.Message)

	_, after := do(t, h, http.MethodGet, "/books/"+id, "")
	require.NotNil(t, after.Data.Book)
	assert.Equal(t, "Buku A Revisi", after.Data.Book.Name)
	assert.Equal(t, 200, after.Data.Book.PageCount)
	assert.False(t, after.Data.Book.Finished)
	assert.True(t, after.Data.Book.Reading)
	assert.Equal(t, before.Data.Book.InsertedAt, after.Data.Book.InsertedAt)
	assert.NotEqual(t, before.Data.Book.UpdatedAt, after.Data.Book.UpdatedAt)
}

func TestHandleUpdateBookFailures(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := newTestRouter(t, svc)
	_, created := do(t, h, http.MethodPost, "/books", bookJSON)
	id := created.Data.BookID

	tests := []struct {
		name     string
		id       string
		body     string
		wantCode int
		wantMsg  string
	}{
		{
			name:     "missing name",
			id:       id,
			body:     `{"pageCount":10,"readPage":1}`,
			wantCode: http.StatusBadRequest,
			wantMsg:  "Gagal memperbarui buku. Mohon isi nama buku",
		},
		{
			name:     "readPage above pageCount",
			id:       id,
			body:     `{"name":"X","pageCount":10,"readPage":11}`,
			wantCode: http.StatusBadRequest,
			wantMsg:  "Gagal memperbarui buku. readPage tidak boleh lebih besar dari pageCount",
		},
		{
			name:     "validation precedes lookup",
			id:       "xxxxx",
			body:     `{"pageCount":10,"readPage":1}`,
			wantCode: http.StatusBadRequest,
			wantMsg:  "Gagal memperbarui buku. Mohon isi nama buku",
		},
		{
			name:     "unknown id",
			id:       "xxxxx",
			body:     `{"name":"X","pageCount":10,"readPage":1}`,
			wantCode: http.StatusNotFound,
			wantMsg:  "Gagal memperbarui buku. Id tidak ditemukan",
		},
		{
			name:     "malformed body",
			id:       id,
			body:     `not json`,
			wantCode: http.StatusBadRequest,
			wantMsg:  "Gagal memperbarui buku. Payload tidak valid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, h, http.MethodPut, "/books/"+tt.id, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, StatusFail, env.Status)
			assert.Equal(t, tt.wantMsg, env.Message)
		})
	}

	_, env := do(t, h, http.MethodGet, "/books/"+id, "")
	assert.Equal(t, "Buku A", env.Data.Book.Name, "failed updates must not mutate")
}

func TestHandleDeleteBook(t *testing.T) {
	svc, store, _ := newTestService(t)
	h := newTestRouter(t, svc)
	_, created := do(t, h, http.MethodPost, "/books", bookJSON)

	rec, env := do(t, h, http.MethodDelete, "/books/xxxxx", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, StatusFail, env.Status)
	assert.Equal(t, "Buku gagal dihapus. Id tidak ditemukan", env.Message)
	assert.Equal(t, 1, store.Len())

	rec, env = do(t, h, http.MethodDelete, "/books/"+created.Data.BookID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusSuccess, env.Status)
	assert.Equal(t, "Buku berhasil dihapus", env.Message)
	assert.Zero(t, store.Len())

	rec, _ = do(t, h, http.MethodGet, "/books/"+created.Data.BookID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleBookHistory(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := newTestRouter(t, svc)
	_, created := do(t, h, http.MethodPost, "/books", bookJSON)
	id := created.Data.BookID
	do(t, h, http.MethodDelete, "/books/"+id, "")

	rec, env := do(t, h, http.MethodGet, "/books/"+id+"/history", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.Data.Events, 2)
	assert.Equal(t, EventBookAdded, env.Data.Events[0].EventType)
	assert.Equal(t, EventBookDeleted, env.Data.Events[1].EventType)

	rec, env = do(t, h, http.MethodGet, "/books/xxxxx/history", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Buku tidak ditemukan", env.Message)
}
