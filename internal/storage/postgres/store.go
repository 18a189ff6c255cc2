package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OeunSochetra/storefront-api/internal/models"
	"github.com/OeunSochetra/storefront-api/internal/storage"
)

// Ensure Store satisfies the storage interfaces at compile time.
var _ storage.Store = (*Store)(nil)

// uniqueViolation is the Postgres error code for unique-constraint conflicts.
const uniqueViolation = "23505"

// Store provides Postgres-backed persistence for users, products, and books.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects a pool and runs the embedded migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	if err := runMigrations(ctx, databaseURL); err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// --- UserStore ---

const userColumns = "id, username, email, image, password_hash, created_at, updated_at"

// CreateUser inserts a new user row. The unique indexes on username and
// email arbitrate concurrent inserts; a violation reports the losing field.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
	INSERT INTO users (id, username, email, image, password_hash)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING ` + userColumns + `;`

	row := s.pool.QueryRow(ctx, query, uuid.NewString(), user.Username, user.Email, user.Image, user.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		if dup := duplicateField(err); dup != nil {
			return models.User{}, dup
		}
		return models.User{}, err
	}
	return created, nil
}

// FindUserByUsername fetches a user by username.
func (s *Store) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1;`
	return scanUser(s.pool.QueryRow(ctx, query, username))
}

// FindUserByID fetches a user by ID.
func (s *Store) FindUserByID(ctx context.Context, id string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1;`
	return scanUser(s.pool.QueryRow(ctx, query, id))
}

// UpdateUser applies the non-nil profile fields and bumps updated_at. The
// password hash column is never part of this statement.
func (s *Store) UpdateUser(ctx context.Context, id string, upd storage.UserUpdate) (models.User, error) {
	const query = `
	UPDATE users
	SET username = COALESCE($2, username),
	    email = COALESCE($3, email),
	    image = COALESCE($4, image),
	    updated_at = NOW()
	WHERE id = $1
	RETURNING ` + userColumns + `;`

	row := s.pool.QueryRow(ctx, query, id, upd.Username, upd.Email, upd.Image)
	updated, err := scanUser(row)
	if err != nil {
		if dup := duplicateField(err); dup != nil {
			return models.User{}, dup
		}
		return models.User{}, err
	}
	return updated, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Image, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}

// duplicateField maps a unique violation to the colliding column.
func duplicateField(err error) *storage.DuplicateError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "email") {
		return &storage.DuplicateError{Field: "email"}
	}
	return &storage.DuplicateError{Field: "username"}
}

// --- ProductStore ---

const productColumns = "id, name, price, description, stock, created_at, updated_at"

// CreateProduct inserts a new product row.
func (s *Store) CreateProduct(ctx context.Context, product models.Product) (models.Product, error) {
	const query = `
	INSERT INTO products (id, name, price, description, stock)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING ` + productColumns + `;`

	row := s.pool.QueryRow(ctx, query, uuid.NewString(), product.Name, product.Price, product.Description, product.Stock)
	return scanProduct(row)
}

// ListProducts returns one page of products plus the total match count.
func (s *Store) ListProducts(ctx context.Context, filter storage.ListFilter) ([]models.Product, int, error) {
	const countQuery = `
	SELECT COUNT(*) FROM products
	WHERE ($1 = '' OR name ILIKE '%' || $1 || '%');`

	var total int
	if err := s.pool.QueryRow(ctx, countQuery, filter.Search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	const query = `
	SELECT ` + productColumns + ` FROM products
	WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
	ORDER BY created_at DESC, id
	LIMIT $2 OFFSET $3;`

	rows, err := s.pool.Query(ctx, query, filter.Search, filter.PageSize, filter.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, product)
	}
	return products, total, rows.Err()
}

// FindProductByID fetches a product by ID.
func (s *Store) FindProductByID(ctx context.Context, id string) (models.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id = $1;`
	return scanProduct(s.pool.QueryRow(ctx, query, id))
}

// UpdateProduct replaces the mutable product fields.
func (s *Store) UpdateProduct(ctx context.Context, id string, product models.Product) (models.Product, error) {
	const query = `
	UPDATE products
	SET name = $2, price = $3, description = $4, stock = $5, updated_at = NOW()
	WHERE id = $1
	RETURNING ` + productColumns + `;`

	row := s.pool.QueryRow(ctx, query, id, product.Name, product.Price, product.Description, product.Stock)
	return scanProduct(row)
}

// DeleteProduct removes a product row.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (models.Product, error) {
	var product models.Product
	err := row.Scan(&product.ID, &product.Name, &product.Price, &product.Description, &product.Stock, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Product{}, storage.ErrNotFound
		}
		return models.Product{}, fmt.Errorf("scan product: %w", err)
	}
	return product, nil
}

// --- BookStore ---

const bookColumns = "id, image, title, author, description, original_price, discount_price, stock, rating_star, rating_count, created_at, updated_at"

// CreateBook inserts a new book row.
func (s *Store) CreateBook(ctx context.Context, book models.Book) (models.Book, error) {
	const query = `
	INSERT INTO books (id, image, title, author, description, original_price, discount_price, stock, rating_star, rating_count)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING ` + bookColumns + `;`

	row := s.pool.QueryRow(ctx, query, uuid.NewString(), book.Image, book.Title, book.Author, book.Description,
		book.OriginalPrice, book.DiscountPrice, book.Stock, book.RatingStar, book.RatingCount)
	return scanBook(row)
}

// ListBooks returns one page of books plus the total match count.
func (s *Store) ListBooks(ctx context.Context, filter storage.ListFilter) ([]models.Book, int, error) {
	const countQuery = `
	SELECT COUNT(*) FROM books
	WHERE ($1 = '' OR title ILIKE '%' || $1 || '%');`

	var total int
	if err := s.pool.QueryRow(ctx, countQuery, filter.Search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	const query = `
	SELECT ` + bookColumns + ` FROM books
	WHERE ($1 = '' OR title ILIKE '%' || $1 || '%')
	ORDER BY created_at DESC, id
	LIMIT $2 OFFSET $3;`

	rows, err := s.pool.Query(ctx, query, filter.Search, filter.PageSize, filter.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := []models.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		books = append(books, book)
	}
	return books, total, rows.Err()
}

// TopBooks returns the highest rated books, ties broken by rating count.
func (s *Store) TopBooks(ctx context.Context, limit int) ([]models.Book, error) {
	const query = `
	SELECT ` + bookColumns + ` FROM books
	ORDER BY rating_star DESC, rating_count DESC
	LIMIT $1;`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("top books: %w", err)
	}
	defer rows.Close()

	books := []models.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// FindBookByID fetches a book by ID.
func (s *Store) FindBookByID(ctx context.Context, id string) (models.Book, error) {
	const query = `SELECT ` + bookColumns + ` FROM books WHERE id = $1;`
	return scanBook(s.pool.QueryRow(ctx, query, id))
}

func scanBook(row pgx.Row) (models.Book, error) {
	var book models.Book
	err := row.Scan(&book.ID, &book.Image, &book.Title, &book.Author, &book.Description,
		&book.OriginalPrice, &book.DiscountPrice, &book.Stock, &book.RatingStar, &book.RatingCount,
		&book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Book{}, storage.ErrNotFound
		}
		return models.Book{}, fmt.Errorf("scan book: %w", err)
	}
	return book, nil
}
