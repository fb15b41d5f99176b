// internal/bookshelf/handler.go
package bookshelf

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	msgAddPrefix    = "Gagal menambahkan buku. "
	msgUpdatePrefix = "Gagal memperbarui buku. "

	msgNameRequired    = "Mohon isi nama buku"
	msgReadPageTooHigh = "readPage tidak boleh lebih besar dari pageCount"
	msgInvalidPayload  = "Payload tidak valid"

	msgAdded         = "Buku berhasil ditambahkan"
	msgAddFailed     = "Buku gagal ditambahkan"
	msgUpdated       = "Buku berhasil diperbarui"
	msgUpdateMissing = "Gagal memperbarui buku. Id tidak ditemukan"
	msgDeleted       = "Buku berhasil dihapus"
	msgDeleteMissing = "Buku gagal dihapus. Id tidak ditemukan"
	msgNotFound      = "Buku tidak ditemukan"
	msgInternal      = "Terjadi kesalahan pada server"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes registers the book endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/books", func(r chi.Router) {
		r.Post("/", h.handleAddBook)
		r.Get("/", h.handleListBooks)
		r.Get("/{bookId}", h.handleGetBook)
		r.Put("/{bookId}", h.handleUpdateBook)
		r.Delete("/{bookId}", h.handleDeleteBook)
		r.Get("/{bookId}/history", h.handleBookHistory)
	})
}

func (h *Handler) handleAddBook(w http.ResponseWriter, r *http.Request) {
	var req BookInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Fail(w, r, http.StatusBadRequest, msgAddPrefix+msgInvalidPayload)
		return
	}

	book, err := h.service.AddBook(r.Context(), req)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			Fail(w, r, http.StatusBadRequest, msgAddPrefix+msg)
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to add book")
		Respond(w, r, http.StatusInternalServerError, Response{Status: StatusError, Message: msgAddFailed})
		return
	}

	Respond(w, r, http.StatusCreated, Response{
		Status:  StatusSuccess,
		Message: msgAdded,
		Data:    map[string]string{"bookId": book.ID},
	})
}

func (h *Handler) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListBooks(r.Context(), FilterFromQuery(r.URL.Query()))
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	Respond(w, r, http.StatusOK, Response{
		Status: StatusSuccess,
		Data:   map[string][]Summary{"books": books},
	})
}

func (h *Handler) handleGetBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.service.GetBook(r.Context(), chi.URLParam(r, "bookId"))
	if errors.Is(err, ErrBookNotFound) {
		Fail(w, r, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	Respond(w, r, http.StatusOK, Response{
		Status: StatusSuccess,
		Data:   map[string]*Book{"book": book},
	})
}

func (h *Handler) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	var req BookInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Fail(w, r, http.StatusBadRequest, msgUpdatePrefix+msgInvalidPayload)
		return
	}

	_, err := h.service.UpdateBook(r.Context(), chi.URLParam(r, "bookId"), req)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			Fail(w, r, http.StatusBadRequest, msgUpdatePrefix+msg)
			return
		}
		if errors.Is(err, ErrBookNotFound) {
			Fail(w, r, http.StatusNotFound, msgUpdateMissing)
			return
		}
		h.internalError(w, r, err)
		return
	}

	Respond(w, r, http.StatusOK, Response{Status: StatusSuccess, Message: msgUpdated})
}

func (h *Handler) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteBook(r.Context(), chi.URLParam(r, "bookId"))
	if errors.Is(err, ErrBookNotFound) {
		Fail(w, r, http.StatusNotFound, msgDeleteMissing)
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	Respond(w, r, http.StatusOK, Response{Status: StatusSuccess, Message: msgDeleted})
}

func (h *Handler) handleBookHistory(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.BookHistory(r.Context(), chi.URLParam(r, "bookId"))
	if errors.Is(err, ErrBookNotFound) {
		Fail(w, r, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	Respond(w, r, http.StatusOK, Response{
		Status: StatusSuccess,
		Data:   map[string]interface{}{"events": events},
	})
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	Respond(w, r, http.StatusInternalServerError, Response{Status: StatusError, Message: msgInternal})
}

func validationMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrNameRequired):
		return msgNameRequired, true
	case errors.Is(err, ErrReadPageExceedsPageCount):
		return msgReadPageTooHigh, true
	default:
		return "", false
	}
}
