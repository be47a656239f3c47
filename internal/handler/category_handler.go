package handler

import (
	"net/http"

	"go-portal-app/internal/middleware"
	"go-portal-app/internal/service"
)

// CategoryHandler holds the dependencies for the public, read-only
// category handlers. Category mutations live on the dashboard routes.
type CategoryHandler struct {
	categories *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// listHandler serves all categories for the public filter dropdown.
func (h *CategoryHandler) listHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		return middleware.FromDomain(err)
	}
	if err := respondJSON(w, http.StatusOK, map[string]interface{}{"categories": categories}); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to write response", Code: http.StatusInternalServerError}
	}
	return nil
}

// detailsHandler serves a single category.
func (h *CategoryHandler) detailsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := idParam(r)
	if appErr != nil {
		return appErr
	}
	category, err := h.categories.Get(r.Context(), id)
	if err != nil {
		return middleware.FromDomain(err)
	}
	if err := respondJSON(w, http.StatusOK, category); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to write response", Code: http.StatusInternalServerError}
	}
	return nil
}
