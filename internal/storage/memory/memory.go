// Package memory implements an in-memory store for development and testing.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/OeunSochetra/storefront-api/internal/models"
	"github.com/OeunSochetra/storefront-api/internal/storage"
)

// Ensure Store satisfies the storage interfaces at compile time.
var _ storage.Store = (*Store)(nil)

// Store keeps all records in process memory. Uniqueness checks happen under
// a single mutex, so concurrent inserts of the same username have exactly
// one winner, like a unique index would guarantee.
type Store struct {
	mu       sync.Mutex
	users    map[string]models.User
	products map[string]models.Product
	books    map[string]models.Book
	seq      map[string]int64
	nextSeq  int64
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:    make(map[string]models.User),
		products: make(map[string]models.Product),
		books:    make(map[string]models.Book),
		seq:      make(map[string]int64),
	}
}

// --- UserStore ---

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return models.User{}, &storage.DuplicateError{Field: "username"}
		}
		if existing.Email == user.Email {
			return models.User{}, &storage.DuplicateError{Field: "email"}
		}
	}

	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Store) FindUserByID(ctx context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, upd storage.UserUpdate) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}

	for otherID, other := range s.users {
		if otherID == id {
			continue
		}
		if upd.Username != nil && other.Username == *upd.Username {
			return models.User{}, &storage.DuplicateError{Field: "username"}
		}
		if upd.Email != nil && other.Email == *upd.Email {
			return models.User{}, &storage.DuplicateError{Field: "email"}
		}
	}

	if upd.Username != nil {
		user.Username = *upd.Username
	}
	if upd.Email != nil {
		user.Email = *upd.Email
	}
	if upd.Image != nil {
		user.Image = *upd.Image
	}
	user.UpdatedAt = time.Now().UTC()
	s.users[id] = user
	return user, nil
}

// DeleteUser removes a user record. The HTTP surface has no delete
// operation; this exists so tests can exercise the valid-token,
// deleted-subject path.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// --- ProductStore ---

func (s *Store) CreateProduct(ctx context.Context, product models.Product) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	product.ID = uuid.NewString()
	product.CreatedAt = now
	product.UpdatedAt = now
	s.products[product.ID] = product
	s.nextSeq++
	s.seq[product.ID] = s.nextSeq
	return product, nil
}

func (s *Store) ListProducts(ctx context.Context, filter storage.ListFilter) ([]models.Product, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Product
	for _, product := range s.products {
		if matchesSearch(product.Name, filter.Search) {
			matched = append(matched, product)
		}
	}
	// Newest first, mirroring the SQL store's created_at DESC ordering.
	sort.Slice(matched, func(i, j int) bool { return s.seq[matched[i].ID] > s.seq[matched[j].ID] })

	total := len(matched)
	return pageOf(matched, filter), total, nil
}

func (s *Store) FindProductByID(ctx context.Context, id string) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[id]
	if !ok {
		return models.Product{}, storage.ErrNotFound
	}
	return product, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id string, product models.Product) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[id]
	if !ok {
		return models.Product{}, storage.ErrNotFound
	}

	existing.Name = product.Name
	existing.Price = product.Price
	existing.Description = product.Description
	existing.Stock = product.Stock
	existing.UpdatedAt = time.Now().UTC()
	s.products[id] = existing
	return existing, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.products, id)
	delete(s.seq, id)
	return nil
}

// --- BookStore ---

func (s *Store) CreateBook(ctx context.Context, book models.Book) (models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	book.ID = uuid.NewString()
	book.CreatedAt = now
	book.UpdatedAt = now
	s.books[book.ID] = book
	s.nextSeq++
	s.seq[book.ID] = s.nextSeq
	return book, nil
}

func (s *Store) ListBooks(ctx context.Context, filter storage.ListFilter) ([]models.Book, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Book
	for _, book := range s.books {
		if matchesSearch(book.Title, filter.Search) {
			matched = append(matched, book)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return s.seq[matched[i].ID] > s.seq[matched[j].ID] })

	total := len(matched)
	return pageOf(matched, filter), total, nil
}

func (s *Store) TopBooks(ctx context.Context, limit int) ([]models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	books := make([]models.Book, 0, len(s.books))
	for _, book := range s.books {
		books = append(books, book)
	}
	sort.SliceStable(books, func(i, j int) bool {
		if books[i].RatingStar != books[j].RatingStar {
			return books[i].RatingStar > books[j].RatingStar
		}
		return books[i].RatingCount > books[j].RatingCount
	})

	if len(books) > limit {
		books = books[:limit]
	}
	return books, nil
}

func (s *Store) FindBookByID(ctx context.Context, id string) (models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok {
		return models.Book{}, storage.ErrNotFound
	}
	return book, nil
}

// --- helpers ---

func matchesSearch(name, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(search))
}

func pageOf[T any](records []T, filter storage.ListFilter) []T {
	start := filter.Offset()
	if start < 0 || start >= len(records) {
		return []T{}
	}
	end := start + filter.PageSize
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}
