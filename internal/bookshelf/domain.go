// internal/bookshelf/domain.go
package bookshelf

import (
	"strings"
	"time"
)

// Book is a single record on the shelf.
type Book struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Year       int       `json:"year"`
	Author     string    `json:"author"`
	Summary    string    `json:"summary"`
	Publisher  string    `json:"publisher"`
	PageCount  int       `json:"pageCount"`
	ReadPage   int       `json:"readPage"`
	Finished   bool      `json:"finished"`
	Reading    bool      `json:"reading"`
	InsertedAt time.Time `json:"insertedAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Version counts the events recorded for the book.
	Version int `json:"-"`
}

// Summary is the projection returned when listing books.
type Summary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Publisher string `json:"publisher"`
}

func (b *Book) summary() Summary {
	return Summary{ID: b.ID, Name: b.Name, Publisher: b.Publisher}
}

// BookInput carries the client-supplied fields of a create or update request.
// Name is a pointer so that an absent name can be told apart from other values.
type BookInput struct {
	Name      *string `json:"name"`
	Year      int     `json:"year"`
	Author    string  `json:"author"`
	Summary   string  `json:"summary"`
	Publisher string  `json:"publisher"`
	PageCount int     `json:"pageCount"`
	ReadPage  int     `json:"readPage"`
	Reading   bool    `json:"reading"`
}

// Validate checks the input against the book invariants.
func (in BookInput) Validate() error {
	if in.Name == nil || *in.Name == "" {
		return ErrNameRequired
	}
	if in.ReadPage > in.PageCount {
		return ErrReadPageExceedsPageCount
	}
	return nil
}

// apply copies the mutable fields onto b and recomputes the derived ones.
func (in BookInput) apply(b *Book, now time.Time) {
	b.Name = *in.Name
	b.Year = in.Year
	b.Author = in.Author
	b.Summary = in.Summary
	b.Publisher = in.Publisher
	b.PageCount = in.PageCount
	b.ReadPage = in.ReadPage
	b.Reading = in.Reading
	b.Finished = in.ReadPage == in.PageCount
	b.UpdatedAt = now
}

// Filter narrows the listed books. Nil fields match everything.
type Filter struct {
	Name     *string
	Reading  *bool
	Finished *bool
}

// Match reports whether b satisfies every set field of the filter.
func (f Filter) Match(b *Book) bool {
	if f.Name != nil && !strings.Contains(strings.ToLower(b.Name), strings.ToLower(*f.Name)) {
		return false
	}
	if f.Reading != nil && b.Reading != *f.Reading {
		return false
	}
	if f.Finished != nil && b.Finished != *f.Finished {
		return false
	}
	return true
}

const (
	aggregateType = "book"

	EventBookAdded   = "BookAdded"
	EventBookUpdated = "BookUpdated"
	EventBookDeleted = "BookDeleted"
)

// BookAddedEvent is recorded when a new book is shelved.
type BookAddedEvent struct {
	Book Book `json:"book"`
}

// BookUpdatedEvent is recorded when the mutable fields of a book change.
type BookUpdatedEvent struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Year      int       `json:"year"`
	Author    string    `json:"author"`
	Summary   string    `json:"summary"`
	Publisher string    `json:"publisher"`
	PageCount int       `json:"pageCount"`
	ReadPage  int       `json:"readPage"`
	Finished  bool      `json:"finished"`
	Reading   bool      `json:"reading"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookDeletedEvent is recorded when a book is removed.
type BookDeletedEvent struct {
	ID string `json:"id"`
}
