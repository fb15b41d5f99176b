// internal/bookshelf/implementation.go
package bookshelf

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"bookshelf/internal/logger"
	"bookshelf/pkg/eventstore"
)

const idLength = 16

// service implements the Service interface.
type service struct {
	store      *Store
	eventStore *eventstore.EventStore

	// mu serializes mutations so the event journal and the store move together.
	mu sync.Mutex

	now   func() time.Time
	newID func() (string, error)

	tracer    trace.Tracer
	mutations metric.Int64Counter
	stored    metric.Int64UpDownCounter
}

// Option customizes a service.
type Option func(*service)

// WithClock overrides the source of timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithIDGenerator overrides the book id generator.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(s *service) { s.newID = newID }
}

// NewService creates a new bookshelf service instance.
func NewService(store *Store, es *eventstore.EventStore, opts ...Option) Service {
	s := &service{
		store:      store,
		eventStore: es,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      func() (string, error) { return gonanoid.New(idLength) },
		tracer:     otel.Tracer("bookshelf/internal/bookshelf"),
	}
	for _, opt := range opts {
		opt(s)
	}

	meter := otel.Meter("bookshelf/internal/bookshelf")
	var err error
	if s.mutations, err = meter.Int64Counter("bookshelf.books.mutations",
		metric.WithDescription("Successful book mutations by operation")); err != nil {
		otel.Handle(err)
		s.mutations = noop.Int64Counter{}
	}
	if s.stored, err = meter.Int64UpDownCounter("bookshelf.books.stored",
		metric.WithDescription("Books currently on the shelf")); err != nil {
		otel.Handle(err)
		s.stored = noop.Int64UpDownCounter{}
	}

	return s
}

// AddBook validates the input and appends a new book to the shelf.
func (s *service) AddBook(ctx context.Context, in BookInput) (book *Book, err error) {
	ctx, span := s.tracer.Start(ctx, "bookshelf.add")
	defer func() { endSpan(span, err) }()

	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.uniqueID(ctx)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("book.id", id))

	now := s.now()
	added := Book{ID: id, InsertedAt: now, Version: 1}
	in.apply(&added, now)

	if err := s.record(ctx, id, 0, EventBookAdded, BookAddedEvent{Book: added}); err != nil {
		return nil, err
	}
	s.store.Append(added)

	stored, ok := s.store.Get(id)
	if !ok {
		return nil, ErrVerificationFailed
	}

	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "add")))
	s.stored.Add(ctx, 1)
	zerolog.Ctx(ctx).Debug().Str("book_id", id).Str("name", stored.Name).Msg("book added")

	return &stored, nil
}

// uniqueID draws ids until one has never been used, deleted books included.
func (s *service) uniqueID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 3; attempt++ {
		id, err := s.newID()
		if err != nil {
			return "", fmt.Errorf("failed to generate book id: %w", err)
		}
		version, err := s.eventStore.GetCurrentVersion(ctx, id)
		if err != nil {
			return "", err
		}
		if _, taken := s.store.Get(id); !taken && version == 0 {
			return id, nil
		}
	}
	return "", errors.New("failed to generate a unique book id")
}

// ListBooks returns the summaries of the books matching filter, in insertion order.
func (s *service) ListBooks(ctx context.Context, filter Filter) ([]Summary, error) {
	_, span := s.tracer.Start(ctx, "bookshelf.list")
	defer span.End()

	books := s.store.Select(filter.Match)
	summaries := make([]Summary, 0, len(books))
	for i := range books {
		summaries = append(summaries, books[i].summary())
	}

	span.SetAttributes(attribute.Int("books.listed", len(summaries)))
	return summaries, nil
}

// GetBook retrieves a book by its ID.
func (s *service) GetBook(ctx context.Context, id string) (*Book, error) {
	_, span := s.tracer.Start(ctx, "bookshelf.get",
		trace.WithAttributes(attribute.String("book.id", id)),
	)
	defer span.End()

	book, ok := s.store.Get(id)
	if !ok {
		return nil, ErrBookNotFound
	}
	return &book, nil
}

// UpdateBook replaces the mutable fields of a book. Validation runs before the lookup.
func (s *service) UpdateBook(ctx context.Context, id string, in BookInput) (book *Book, err error) {
	ctx, span := s.tracer.Start(ctx, "bookshelf.update",
		trace.WithAttributes(attribute.String("book.id", id)),
	)
	defer func() { endSpan(span, err) }()

	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.store.Get(id)
	if !ok {
		return nil, ErrBookNotFound
	}

	updated := current
	in.apply(&updated, s.now())
	updated.Version = current.Version + 1

	eventData := BookUpdatedEvent{
		ID:        id,
		Name:      updated.Name,
		Year:      updated.Year,
		Author:    updated.Author,
		Summary:   updated.Summary,
		Publisher: updated.Publisher,
		PageCount: updated.PageCount,
		ReadPage:  updated.ReadPage,
		Finished:  updated.Finished,
		Reading:   updated.Reading,
		UpdatedAt: updated.UpdatedAt,
	}
	if err := s.record(ctx, id, current.Version, EventBookUpdated, eventData); err != nil {
		return nil, err
	}
	if !s.store.Replace(updated) {
		return nil, ErrBookNotFound
	}

	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "update")))
	zerolog.Ctx(ctx).Debug().Str("book_id", id).Int("version", updated.Version).Msg("book updated")

	return &updated, nil
}

// DeleteBook removes a book from the shelf.
func (s *service) DeleteBook(ctx context.Context, id string) (err error) {
	ctx, span := s.tracer.Start(ctx, "bookshelf.delete",
		trace.WithAttributes(attribute.String("book.id", id)),
	)
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.store.Get(id)
	if !ok {
		return ErrBookNotFound
	}

	if err := s.record(ctx, id, current.Version, EventBookDeleted, BookDeletedEvent{ID: id}); err != nil {
		return err
	}
	if !s.store.Remove(id) {
		return ErrBookNotFound
	}

	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "delete")))
	s.stored.Add(ctx, -1)
	zerolog.Ctx(ctx).Debug().Str("book_id", id).Msg("book deleted")

	return nil
}

// BookHistory returns the recorded events of a book, oldest first.
func (s *service) BookHistory(ctx context.Context, id string) ([]eventstore.Event, error) {
	events, err := s.eventStore.LoadEvents(ctx, id, 0, 0)
	if errors.Is(err, eventstore.ErrAggregateNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load book events: %w", err)
	}
	return events, nil
}

// record appends one event for the book, expecting the stream at expectedVersion.
func (s *service) record(ctx context.Context, id string, expectedVersion int, eventType string, data interface{}) error {
	jsonData, err := jsoniter.ConfigFastest.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	event := eventstore.Event{
		EventType: eventType,
		EventData: jsonData,
	}
	if requestID := logger.RequestIDFromContext(ctx); requestID != "" {
		event.Metadata = map[string]interface{}{"request_id": requestID}
	}

	if err := s.eventStore.AppendEvents(ctx, id, aggregateType, expectedVersion, []eventstore.Event{event}); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// endSpan closes span, flagging it only for errors that are not the caller's fault.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		if !errors.Is(err, ErrValidation) && !errors.Is(err, ErrBookNotFound) {
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
}
