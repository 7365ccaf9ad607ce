package transport

import (
	"net/http"

	"greenmarket/internal/domain"
	"greenmarket/internal/middleware"
	"greenmarket/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateCategoryRequest represents the category creation payload
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
	ParentID    string `json:"parent_id" validate:"omitempty,uuid"`
}

// RenameCategoryRequest represents the category rename payload
type RenameCategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// UpdateCategoryDescriptionRequest represents the description update
// payload
type UpdateCategoryDescriptionRequest struct {
	Description string `json:"description" validate:"max=1000"`
}

// ChangeParentRequest represents the re-parenting payload. A null or
// absent parent_id makes the category a root.
type ChangeParentRequest struct {
	ParentID string `json:"parent_id" validate:"omitempty,uuid"`
}

// CategoryResponse represents category data
type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	ParentID    string `json:"parent_id,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// CategoryTreeNode represents a category with its nested children
type CategoryTreeNode struct {
	CategoryResponse
	Children []CategoryTreeNode `json:"children"`
}

func toCategoryResponse(c domain.Category) CategoryResponse {
	resp := CategoryResponse{
		ID:          c.ID().String(),
		Name:        c.Name(),
		Slug:        c.Slug(),
		Description: c.Description(),
		CreatedAt:   c.CreatedAt().Format(timeFormat),
		UpdatedAt:   c.UpdatedAt().Format(timeFormat),
	}
	if parent := c.ParentID(); parent != nil {
		resp.ParentID = parent.String()
	}
	return resp
}

func toCategoryResponses(categories []domain.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	return out
}

func toCategoryTree(nodes []*domain.CategoryNode) []CategoryTreeNode {
	out := make([]CategoryTreeNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, CategoryTreeNode{
			CategoryResponse: toCategoryResponse(n.Category),
			Children:         toCategoryTree(n.Children),
		})
	}
	return out
}

// CategoryHandler handles HTTP requests for category operations
type CategoryHandler struct {
	categoryService service.CategoryService
	logger          *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// RegisterRoutes registers all category routes. Reads are public;
// mutations require an authenticated admin.
func (h *CategoryHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/categories", func(r chi.Router) {
		// Public routes
		r.Get("/", h.List)
		r.Get("/tree", h.Tree)
		r.Get("/roots", h.ListRoots)
		r.Get("/slug/{slug}", h.GetBySlug)
		r.Get("/{id}", h.Get)
		r.Get("/{id}/children", h.ListChildren)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}/name", h.Rename)
			r.Put("/{id}/description", h.UpdateDescription)
			r.Put("/{id}/parent", h.ChangeParent)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// Create handles category creation
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req CreateCategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	parentID, ok := optionalID(w, req.ParentID, "parent ID")
	if !ok {
		return
	}

	category, err := h.categoryService.Create(r.Context(), req.Name, req.Description, parentID, actor)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, toCategoryResponse(category))
}

// Get handles retrieving a single category
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	category, err := h.categoryService.Get(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCategoryResponse(category))
}

// GetBySlug handles retrieving a category by its slug
func (h *CategoryHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	category, err := h.categoryService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCategoryResponse(category))
}

// List handles retrieving all categories as a flat list
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCategoryResponses(categories))
}

// ListRoots handles retrieving all top-level categories
func (h *CategoryHandler) ListRoots(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.ListRoots(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCategoryResponses(categories))
}

// ListChildren handles retrieving the direct children of a category
func (h *CategoryHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	categories, err := h.categoryService.ListChildren(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCategoryResponses(categories))
}

// Tree handles retrieving the full category hierarchy
func (h *CategoryHandler) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.categoryService.Tree(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCategoryTree(tree))
}

// Rename handles renaming a category; the slug is re-derived
func (h *CategoryHandler) Rename(w http.ResponseWriter, r *http.Request) {
	actor, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req RenameCategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.categoryService.Rename(r.Context(), id, req.Name, actor)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCategoryResponse(category))
}

// UpdateDescription handles replacing a category description
func (h *CategoryHandler) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	actor, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateCategoryDescriptionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.categoryService.UpdateDescription(r.Context(), id, req.Description, actor)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCategoryResponse(category))
}

// ChangeParent handles moving a category in the hierarchy
func (h *CategoryHandler) ChangeParent(w http.ResponseWriter, r *http.Request) {
	actor, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req ChangeParentRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	parentID, ok := optionalID(w, req.ParentID, "parent ID")
	if !ok {
		return
	}

	category, err := h.categoryService.ChangeParent(r.Context(), id, parentID, actor)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCategoryResponse(category))
}

// Delete handles removing an empty, childless category
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.categoryService.Delete(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// optionalID parses an optional UUID field, reporting 400 on malformed
// input and nil on absence
func optionalID(w http.ResponseWriter, raw, name string) (*uuid.UUID, bool) {
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid "+name)
		return nil, false
	}
	return &id, true
}
