package transport

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"greenmarket/internal/domain"
	"greenmarket/internal/middleware"
	"greenmarket/internal/repository"
	"greenmarket/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// timeFormat is the timestamp layout used in responses.
const timeFormat = time.RFC3339

// CreateProductRequest represents the product creation payload. The
// price arrives as a decimal amount plus ISO-4217 currency code.
type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description" validate:"max=1000"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Currency    string  `json:"currency" validate:"required,len=3"`
	CategoryID  string  `json:"category_id" validate:"required,uuid"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

// UpdateProductRequest represents the product details update payload
type UpdateProductRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1000"`
}

// UpdatePriceRequest represents the price update payload
type UpdatePriceRequest struct {
	Price    float64 `json:"price" validate:"required,gt=0"`
	Currency string  `json:"currency" validate:"required,len=3"`
}

// StockRequest represents a stock mutation payload
type StockRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// SetStockRequest represents an absolute stock update payload
type SetStockRequest struct {
	Stock int `json:"stock" validate:"gte=0"`
}

// ChangeCategoryRequest represents the category move payload
type ChangeCategoryRequest struct {
	CategoryID string `json:"category_id" validate:"required,uuid"`
}

// ProductResponse represents product data
type ProductResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	CategoryID  string  `json:"category_id"`
	Stock       int     `json:"stock"`
	IsActive    bool    `json:"is_active"`
	IsAvailable bool    `json:"is_available"`
	OwnerID     string  `json:"owner_id"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// ProductListResponse represents one page of products
type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

func toProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID().String(),
		Name:        p.Name(),
		Description: p.Description(),
		Price:       p.Price().Float(),
		Currency:    p.Price().Currency(),
		CategoryID:  p.CategoryID().String(),
		Stock:       p.Stock().Value(),
		IsActive:    p.IsActive(),
		IsAvailable: p.IsAvailable(),
		OwnerID:     p.OwnerID().String(),
		CreatedAt:   p.CreatedAt().Format(timeFormat),
		UpdatedAt:   p.UpdatedAt().Format(timeFormat),
	}
}

func toProductListResponse(page service.ProductPage) ProductListResponse {
	products := make([]ProductResponse, 0, len(page.Products))
	for _, p := range page.Products {
		products = append(products, toProductResponse(p))
	}
	return ProductListResponse{
		Products: products,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}
}

// ProductHandler handles HTTP requests for catalog operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		// Public routes
		r.Get("/", h.List)
		r.Get("/search", h.Search)
		r.Get("/{id}", h.Get)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Put("/{id}/price", h.UpdatePrice)
			r.Put("/{id}/category", h.ChangeCategory)
			r.Put("/{id}/stock", h.SetStock)
			r.Post("/{id}/stock/increase", h.IncreaseStock)
			r.Post("/{id}/stock/decrease", h.DecreaseStock)
			r.Post("/{id}/activate", h.Activate)
			r.Post("/{id}/deactivate", h.Deactivate)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	price, err := domain.MoneyFromFloat(req.Price, req.Currency)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	stock, err := domain.NewStockQuantity(req.Stock)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	product, err := h.productService.Create(r.Context(), service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		CategoryID:  categoryID,
		Stock:       stock,
	}, actor)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, toProductResponse(product))
}

// Get handles retrieving a single product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}

// List handles the paginated product listing with optional category
// filter and sorting
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var categoryID *uuid.UUID
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
			return
		}
		categoryID = &id
	}

	page, pageSize := queryPagination(r)
	sortBy := r.URL.Query().Get("sort_by")
	sortOrder := repository.SortOrder(r.URL.Query().Get("sort_order"))

	result, err := h.productService.List(r.Context(), categoryID, page, pageSize, sortBy, sortOrder)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductListResponse(result))
}

// Search handles product search by name or description
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	page, pageSize := queryPagination(r)

	result, err := h.productService.Search(r.Context(), r.URL.Query().Get("q"), page, pageSize)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductListResponse(result))
}

// Update handles renaming a product and replacing its description
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.productService.UpdateDetails(r.Context(), id, req.Name, req.Description, actor)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}

// UpdatePrice handles setting a new product price
func (h *ProductHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	actor, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdatePriceRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	price, err := domain.MoneyFromFloat(req.Price, req.Currency)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	product, err := h.productService.UpdatePrice(r.Context(), id, price, actor)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}

// ChangeCategory handles moving a product to another category
func (h *ProductHandler) ChangeCategory(w http.ResponseWriter, r *http.Request) {
	actor, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req ChangeCategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	product, err := h.productService.ChangeCategory(r.Context(), id, categoryID, actor)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}

// SetStock handles replacing the stock level outright
func (h *ProductHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	actor, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req SetStockRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stock, err := domain.NewStockQuantity(req.Stock)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	product, err := h.productService.SetStock(r.Context(), id, stock, actor)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}

// IncreaseStock handles adding units to the stock
func (h *ProductHandler) IncreaseStock(w http.ResponseWriter, r *http.Request) {
	h.adjustStock(w, r, h.productService.IncreaseStock)
}

// DecreaseStock handles removing units from the stock
func (h *ProductHandler) DecreaseStock(w http.ResponseWriter, r *http.Request) {
	h.adjustStock(w, r, h.productService.DecreaseStock)
}

func (h *ProductHandler) adjustStock(w http.ResponseWriter, r *http.Request,
	adjust func(ctx context.Context, id uuid.UUID, delta int, actor uuid.UUID) (domain.Product, error)) {

	actor, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req StockRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := adjust(r.Context(), id, req.Quantity, actor)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}

// Activate handles putting a product back on sale
func (h *ProductHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.toggleActive(w, r, h.productService.Activate)
}

// Deactivate handles withdrawing a product from sale
func (h *ProductHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.toggleActive(w, r, h.productService.Deactivate)
}

func (h *ProductHandler) toggleActive(w http.ResponseWriter, r *http.Request,
	toggle func(ctx context.Context, id, actor uuid.UUID) (domain.Product, error)) {

	actor, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	product, err := toggle(r.Context(), id, actor)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}

// Delete handles removing a product
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathID parses a UUID path parameter, reporting 400 on failure
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func queryPagination(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	return page, pageSize
}
