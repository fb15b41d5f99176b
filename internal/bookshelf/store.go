package bookshelf

import "sync"

// Store is the ordered in-memory collection of books. Books come back by value, so
// callers never share memory with the stored records.
type Store struct {
	mu    sync.RWMutex
	books []Book
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Append adds b at the end of the collection.
func (s *Store) Append(b Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books = append(s.books, b)
}

// Get returns the book with the given id.
func (s *Store) Get(id string) (Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.books[i], true
	}
	return Book{}, false
}

// Select returns, in insertion order, the books accepted by match.
func (s *Store) Select(match func(*Book) bool) []Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	selected := make([]Book, 0, len(s.books))
	for i := range s.books {
		if match(&s.books[i]) {
			selected = append(selected, s.books[i])
		}
	}
	return selected
}

// Replace overwrites the stored book sharing b's id, keeping its position.
func (s *Store) Replace(b Book) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(b.ID)
	if i < 0 {
		return false
	}
	s.books[i] = b
	return true
}

// Remove deletes the book with the given id, preserving the order of the rest.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.books = append(s.books[:i], s.books[i+1:]...)
	return true
}

// Len returns the number of stored books.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}

func (s *Store) indexOf(id string) int {
	for i := range s.books {
		if s.books[i].ID == id {
			return i
		}
	}
	return -1
}
