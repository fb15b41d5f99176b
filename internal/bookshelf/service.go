// internal/bookshelf/service.go
package bookshelf

import (
	"context"

	"bookshelf/pkg/eventstore"
)

// Service defines the interface for the bookshelf service.
type Service interface {
	AddBook(ctx context.Context, in BookInput) (*Book, error)
	ListBooks(ctx context.Context, filter Filter) ([]Summary, error)
	GetBook(ctx context.Context, id string) (*Book, error)
	UpdateBook(ctx context.Context, id string, in BookInput) (*Book, error)
	DeleteBook(ctx context.Context, id string) error
	BookHistory(ctx context.Context, id string) ([]eventstore.Event, error)
}
