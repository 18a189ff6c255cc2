package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/OeunSochetra/storefront-api/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// DuplicateError reports which unique field collided on insert or update.
// It matches ErrAlreadyExists under errors.Is.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// UserUpdate carries partial profile changes; nil fields are left untouched.
// The password hash is deliberately absent: profile updates never rehash.
type UserUpdate struct {
	Username *string
	Email    *string
	Image    *string
}

// ListFilter selects a page of catalog records, optionally narrowed by a
// case-insensitive match on the record's display name.
type ListFilter struct {
	Page     int
	PageSize int
	Search   string
}

// Offset returns the number of records to skip for the requested page.
func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// UserStore captures credential persistence. Username and email are unique;
// CreateUser and UpdateUser report collisions with a DuplicateError, and the
// store enforces uniqueness atomically so concurrent inserts of the same
// username yield exactly one winner.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByUsername(ctx context.Context, username string) (models.User, error)
	FindUserByID(ctx context.Context, id string) (models.User, error)
	UpdateUser(ctx context.Context, id string, upd UserUpdate) (models.User, error)
}

// ProductStore captures product catalog persistence.
type ProductStore interface {
	CreateProduct(ctx context.Context, product models.Product) (models.Product, error)
	ListProducts(ctx context.Context, filter ListFilter) ([]models.Product, int, error)
	FindProductByID(ctx context.Context, id string) (models.Product, error)
	UpdateProduct(ctx context.Context, id string, product models.Product) (models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// BookStore captures book catalog persistence.
type BookStore interface {
	CreateBook(ctx context.Context, book models.Book) (models.Book, error)
	ListBooks(ctx context.Context, filter ListFilter) ([]models.Book, int, error)
	TopBooks(ctx context.Context, limit int) ([]models.Book, error)
	FindBookByID(ctx context.Context, id string) (models.Book, error)
}

// Store aggregates all persistence used by the server.
type Store interface {
	UserStore
	ProductStore
	BookStore
}
