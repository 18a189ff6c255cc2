package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/OeunSochetra/storefront-api/internal/http/respond"
	"github.com/OeunSochetra/storefront-api/internal/models"
	"github.com/OeunSochetra/storefront-api/internal/models/dto"
	"github.com/OeunSochetra/storefront-api/internal/storage"
)

// topBooksLimit caps the /api/books/top listing.
const topBooksLimit = 3

// BookHandler owns the book catalog endpoints.
type BookHandler struct {
	store  storage.BookStore
	logger *slog.Logger
}

// NewBookHandler constructs the handler.
func NewBookHandler(store storage.BookStore, logger *slog.Logger) *BookHandler {
	return &BookHandler{store: store, logger: logger}
}

// Register attaches book routes to the mux.
func (h *BookHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/books", h.handleCreate)
	mux.HandleFunc("GET /api/books", h.handleList)
	mux.HandleFunc("GET /api/books/top", h.handleTop)
	mux.HandleFunc("GET /api/books/{id}", h.handleGet)
}

func (h *BookHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	if req.Title == "" || req.Author == "" {
		respond.Error(w, http.StatusBadRequest, "title and author are required")
		return
	}

	created, err := h.store.CreateBook(r.Context(), models.Book{
		Image:         req.Image,
		Title:         req.Title,
		Author:        req.Author,
		Description:   req.Description,
		OriginalPrice: req.OriginalPrice,
		DiscountPrice: req.DiscountPrice,
		Stock:         req.Stock,
		RatingStar:    req.RatingStar,
		RatingCount:   req.RatingCount,
	})
	if err != nil {
		h.logger.Error("create book failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to create book")
		return
	}

	respond.Success(w, http.StatusCreated, created)
}

func (h *BookHandler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := listFilter(r)
	books, total, err := h.store.ListBooks(r.Context(), filter)
	if err != nil {
		h.logger.Error("list books failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch books")
		return
	}

	respond.JSON(w, http.StatusOK, "success", books, pageMeta(filter, total))
}

func (h *BookHandler) handleTop(w http.ResponseWriter, r *http.Request) {
	books, err := h.store.TopBooks(r.Context(), topBooksLimit)
	if err != nil {
		h.logger.Error("top books failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch top books")
		return
	}
	respond.Success(w, http.StatusOK, books)
}

func (h *BookHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	book, err := h.store.FindBookByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "book not found")
			return
		}
		h.logger.Error("fetch book failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch book")
		return
	}
	respond.Success(w, http.StatusOK, book)
}
