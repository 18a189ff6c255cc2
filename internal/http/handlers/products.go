package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/OeunSochetra/storefront-api/internal/http/respond"
	"github.com/OeunSochetra/storefront-api/internal/models"
	"github.com/OeunSochetra/storefront-api/internal/models/dto"
	"github.com/OeunSochetra/storefront-api/internal/storage"
)

// ProductHandler owns the product catalog CRUD endpoints.
type ProductHandler struct {
	store  storage.ProductStore
	logger *slog.Logger
}

// NewProductHandler constructs the handler.
func NewProductHandler(store storage.ProductStore, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{store: store, logger: logger}
}

// Register attaches product routes to the mux.
func (h *ProductHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/products", h.handleCreate)
	mux.HandleFunc("GET /api/products", h.handleList)
	mux.HandleFunc("GET /api/products/{id}", h.handleGet)
	mux.HandleFunc("PUT /api/products/{id}", h.handleUpdate)
	mux.HandleFunc("DELETE /api/products/{id}", h.handleDelete)
}

func (h *ProductHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeProduct(w, r)
	if !ok {
		return
	}

	created, err := h.store.CreateProduct(r.Context(), models.Product{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Stock:       req.Stock,
	})
	if err != nil {
		h.logger.Error("create product failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	respond.Success(w, http.StatusCreated, created)
}

func (h *ProductHandler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := listFilter(r)
	products, total, err := h.store.ListProducts(r.Context(), filter)
	if err != nil {
		h.logger.Error("list products failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch products")
		return
	}

	respond.JSON(w, http.StatusOK, "success", products, pageMeta(filter, total))
}

func (h *ProductHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	product, err := h.store.FindProductByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondStoreError(w, err, "fetch")
		return
	}
	respond.Success(w, http.StatusOK, product)
}

func (h *ProductHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeProduct(w, r)
	if !ok {
		return
	}

	updated, err := h.store.UpdateProduct(r.Context(), r.PathValue("id"), models.Product{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Stock:       req.Stock,
	})
	if err != nil {
		h.respondStoreError(w, err, "update")
		return
	}
	respond.Success(w, http.StatusOK, updated)
}

func (h *ProductHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		h.respondStoreError(w, err, "delete")
		return
	}
	respond.Success(w, http.StatusOK, nil)
}

func (h *ProductHandler) respondStoreError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, storage.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "product not found")
		return
	}
	h.logger.Error(op+" product failed", "error", err)
	respond.Error(w, http.StatusInternalServerError, "failed to "+op+" product")
}

func decodeProduct(w http.ResponseWriter, r *http.Request) (dto.ProductRequest, bool) {
	var req dto.ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return req, false
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Description == "" {
		respond.Error(w, http.StatusBadRequest, "name and description are required")
		return req, false
	}
	if req.Price < 0 || req.Stock < 0 {
		respond.Error(w, http.StatusBadRequest, "price and stock cannot be negative")
		return req, false
	}
	return req, true
}

// listFilter reads page/limit/search query parameters, falling back to the
// first page of ten on anything unparseable.
func listFilter(r *http.Request) storage.ListFilter {
	return storage.ListFilter{
		Page:     intQuery(r, "page", 1),
		PageSize: intQuery(r, "limit", 10),
		Search:   strings.TrimSpace(r.URL.Query().Get("search")),
	}
}

func intQuery(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func pageMeta(filter storage.ListFilter, total int) dto.ListMeta {
	totalPages := (total + filter.PageSize - 1) / filter.PageSize
	return dto.ListMeta{
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}
}
