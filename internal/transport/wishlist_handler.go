package transport

import (
	"net/http"

	"greenmarket/internal/domain"
	"greenmarket/internal/middleware"
	"greenmarket/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateWishlistRequest represents the wishlist creation payload
type CreateWishlistRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	IsPublic    bool   `json:"is_public"`
	IsDefault   bool   `json:"is_default"`
}

// UpdateWishlistRequest represents the full wishlist update payload.
// Sending is_default false on the current default unflags it and
// leaves the user with no default wishlist.
type UpdateWishlistRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	IsPublic    bool   `json:"is_public"`
	IsDefault   bool   `json:"is_default"`
}

// RenameWishlistRequest represents the wishlist rename payload
type RenameWishlistRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// UpdateWishlistDescriptionRequest represents the description update
// payload
type UpdateWishlistDescriptionRequest struct {
	Description string `json:"description" validate:"max=500"`
}

// WishlistVisibilityRequest represents the visibility toggle payload
type WishlistVisibilityRequest struct {
	IsPublic bool `json:"is_public"`
}

// WishlistItemRequest represents the add-item payload
type WishlistItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// WishlistItemResponse represents one product on a wishlist
type WishlistItemResponse struct {
	ProductID string `json:"product_id"`
	AddedAt   string `json:"added_at"`
}

// WishlistResponse represents wishlist data
type WishlistResponse struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	IsPublic    bool                   `json:"is_public"`
	IsDefault   bool                   `json:"is_default"`
	Items       []WishlistItemResponse `json:"items"`
	CreatedAt   string                 `json:"created_at"`
	UpdatedAt   string                 `json:"updated_at"`
}

func toWishlistResponse(w domain.Wishlist) WishlistResponse {
	items := make([]WishlistItemResponse, 0, w.ItemCount())
	for _, item := range w.Items() {
		items = append(items, WishlistItemResponse{
			ProductID: item.ProductID().String(),
			AddedAt:   item.AddedAt().Format(timeFormat),
		})
	}
	return WishlistResponse{
		ID:          w.ID().String(),
		Name:        w.Name(),
		Description: w.Description(),
		IsPublic:    w.IsPublic(),
		IsDefault:   w.IsDefault(),
		Items:       items,
		CreatedAt:   w.CreatedAt().Format(timeFormat),
		UpdatedAt:   w.UpdatedAt().Format(timeFormat),
	}
}

// WishlistHandler handles HTTP requests for wishlist operations
type WishlistHandler struct {
	wishlistService service.WishlistService
	logger          *zap.Logger
}

// NewWishlistHandler creates a new WishlistHandler
func NewWishlistHandler(wishlistService service.WishlistService, logger *zap.Logger) *WishlistHandler {
	return &WishlistHandler{
		wishlistService: wishlistService,
		logger:          logger,
	}
}

// RegisterRoutes registers all wishlist routes; everything requires
// authentication. Public wishlists of other users are readable through
// GET by ID.
func (h *WishlistHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/wishlists", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/default", h.GetDefault)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Put("/{id}/name", h.Rename)
		r.Put("/{id}/description", h.UpdateDescription)
		r.Put("/{id}/visibility", h.SetVisibility)
		r.Put("/{id}/default", h.SetDefault)
		r.Post("/{id}/items", h.AddItem)
		r.Delete("/{id}/items/{productID}", h.RemoveItem)
		r.Delete("/{id}", h.Delete)
	})
}

// Create handles wishlist creation
func (h *WishlistHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req CreateWishlistRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wishlist, err := h.wishlistService.Create(r.Context(), userID, req.Name, req.Description,
		req.IsPublic, req.IsDefault)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, toWishlistResponse(wishlist))
}

// Get handles retrieving a wishlist with its items
func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	wishlist, err := h.wishlistService.Get(r.Context(), id, userID)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toWishlistResponse(wishlist))
}

// List handles retrieving all of the user's wishlists
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}

	wishlists, err := h.wishlistService.List(r.Context(), userID)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	out := make([]WishlistResponse, 0, len(wishlists))
	for _, wl := range wishlists {
		out = append(out, toWishlistResponse(wl))
	}

	middleware.RespondWithJSON(w, http.StatusOK, out)
}

// GetDefault handles retrieving the user's default wishlist
func (h *WishlistHandler) GetDefault(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}

	wishlist, err := h.wishlistService.GetDefault(r.Context(), userID)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toWishlistResponse(wishlist))
}

// Update handles replacing every editable wishlist field at once
func (h *WishlistHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateWishlistRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wishlist, err := h.wishlistService.Update(r.Context(), id, userID, req.Name, req.Description,
		req.IsPublic, req.IsDefault)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toWishlistResponse(wishlist))
}

// Rename handles renaming a wishlist
func (h *WishlistHandler) Rename(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req RenameWishlistRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wishlist, err := h.wishlistService.Rename(r.Context(), id, userID, req.Name)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toWishlistResponse(wishlist))
}

// UpdateDescription handles replacing a wishlist description
func (h *WishlistHandler) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateWishlistDescriptionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wishlist, err := h.wishlistService.UpdateDescription(r.Context(), id, userID, req.Description)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toWishlistResponse(wishlist))
}

// SetVisibility handles flagging a wishlist public or private
func (h *WishlistHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req WishlistVisibilityRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wishlist, err := h.wishlistService.SetVisibility(r.Context(), id, userID, req.IsPublic)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toWishlistResponse(wishlist))
}

// SetDefault handles flagging a wishlist as the user's default
func (h *WishlistHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	wishlist, err := h.wishlistService.SetDefault(r.Context(), id, userID)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toWishlistResponse(wishlist))
}

// AddItem handles putting a product on a wishlist
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req WishlistItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, ok := optionalID(w, req.ProductID, "product ID")
	if !ok {
		return
	}
	if productID == nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	wishlist, err := h.wishlistService.AddItem(r.Context(), id, userID, *productID)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toWishlistResponse(wishlist))
}

// RemoveItem handles taking a product off a wishlist
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	wishlist, err := h.wishlistService.RemoveItem(r.Context(), id, userID, productID)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toWishlistResponse(wishlist))
}

// Delete handles removing a wishlist and its items
func (h *WishlistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.wishlistService.Delete(r.Context(), id, userID); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
