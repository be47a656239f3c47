package handler

import (
	"net/http"

	"go-portal-app/internal/logger"
	"go-portal-app/internal/middleware"
	"go-portal-app/internal/service"

	"github.com/go-chi/chi/v5"
)

// AdminHandler holds the dependencies for the dashboard handlers. The
// routes it serves are role-gated by the authorizer; the services enforce
// the same roles again so the rules hold even off the HTTP path.
type AdminHandler struct {
	dashboard  *service.DashboardService
	articles   *service.ArticleService
	categories *service.CategoryService
	users      *service.UserService
	log        logger.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(dashboard *service.DashboardService, articles *service.ArticleService,
	categories *service.CategoryService, users *service.UserService, log logger.Logger) *AdminHandler {
	return &AdminHandler{
		dashboard:  dashboard,
		articles:   articles,
		categories: categories,
		users:      users,
		log:        log,
	}
}

// categoryRequest is the JSON body for category create and edit.
type categoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// userUpdateRequest is the JSON body for the user edit flow: the mutable
// profile field plus the full desired role set.
type userUpdateRequest struct {
	FullName *string  `json:"full_name"`
	Roles    []string `json:"roles"`
}

// overviewHandler serves the dashboard statistics.
func (h *AdminHandler) overviewHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	stats, err := h.dashboard.Overview(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		return middleware.FromDomain(err)
	}
	if err := respondJSON(w, http.StatusOK, stats); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to write response", Code: http.StatusInternalServerError}
	}
	return nil
}

// articlesHandler serves the dashboard article listing with an optional
// search term across all authors.
func (h *AdminHandler) articlesHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	articles, err := h.dashboard.SearchArticles(r.Context(),
		middleware.GetPrincipal(r.Context()), r.URL.Query().Get("search"))
	if err != nil {
		return middleware.FromDomain(err)
	}
	if err := respondJSON(w, http.StatusOK, map[string]interface{}{"articles": articles}); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to write response", Code: http.StatusInternalServerError}
	}
	return nil
}

// deleteArticleHandler removes any article regardless of its author. The
// ownership check is deliberately skipped here: this path is gated by
// dashboard role instead.
func (h *AdminHandler) deleteArticleHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := idParam(r)
	if appErr != nil {
		return appErr
	}
	principal := middleware.GetPrincipal(r.Context())
	if err := h.articles.Delete(r.Context(), principal, id, false); err != nil {
		return middleware.FromDomain(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// categoriesHandler serves the dashboard category listing with article counts.
func (h *AdminHandler) categoriesHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	categories, err := h.dashboard.Categories(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		return middleware.FromDomain(err)
	}
	if err := respondJSON(w, http.StatusOK, map[string]interface{}{"categories": categories}); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to write response", Code: http.StatusInternalServerError}
	}
	return nil
}

// createCategoryHandler adds a new category.
func (h *AdminHandler) createCategoryHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		return &middleware.AppError{Error: err, Message: "invalid request body", Code: http.StatusBadRequest}
	}
	category, err := h.categories.Create(r.Context(), middleware.GetPrincipal(r.Context()), req.Name, req.Description)
	if err != nil {
		return middleware.FromDomain(err)
	}
	if err := respondJSON(w, http.StatusCreated, category); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to write response", Code: http.StatusInternalServerError}
	}
	return nil
}

// editCategoryHandler updates a category.
func (h *AdminHandler) editCategoryHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := idParam(r)
	if appErr != nil {
		return appErr
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		return &middleware.AppError{Error: err, Message: "invalid request body", Code: http.StatusBadRequest}
	}
	category, err := h.categories.Edit(r.Context(), middleware.GetPrincipal(r.Context()), id, req.Name, req.Description)
	if err != nil {
		return middleware.FromDomain(err)
	}
	if err := respondJSON(w, http.StatusOK, category); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to write response", Code: http.StatusInternalServerError}
	}
	return nil
}

// deleteCategoryHandler removes a category; referencing articles survive
// with a nullified category.
func (h *AdminHandler) deleteCategoryHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := idParam(r)
	if appErr != nil {
		return appErr
	}
	if err := h.categories.Delete(r.Context(), middleware.GetPrincipal(r.Context()), id); err != nil {
		return middleware.FromDomain(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// usersHandler serves all user accounts with their role sets, newest
// registration first.
func (h *AdminHandler) usersHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	users, err := h.users.ListUsers(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		return middleware.FromDomain(err)
	}
	if err := respondJSON(w, http.StatusOK, map[string]interface{}{"users": users}); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to write response", Code: http.StatusInternalServerError}
	}
	return nil
}

// getUserHandler serves a single account together with every defined role,
// which is what the edit form needs to render its checkboxes.
func (h *AdminHandler) getUserHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	principal := middleware.GetPrincipal(r.Context())
	user, err := h.users.GetUser(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		return middleware.FromDomain(err)
	}
	allRoles, err := h.users.ListRoles(r.Context(), principal)
	if err != nil {
		return middleware.FromDomain(err)
	}
	body := map[string]interface{}{
		"user":      user,
		"all_roles": allRoles,
	}
	if err := respondJSON(w, http.StatusOK, body); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to write response", Code: http.StatusInternalServerError}
	}
	return nil
}

// editUserHandler updates a user's profile and reconciles its role set.
func (h *AdminHandler) editUserHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var req userUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		return &middleware.AppError{Error: err, Message: "invalid request body", Code: http.StatusBadRequest}
	}
	principal := middleware.GetPrincipal(r.Context())
	if err := h.users.EditUser(r.Context(), principal, chi.URLParam(r, "id"), req.FullName, req.Roles); err != nil {
		return middleware.FromDomain(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// deleteUserHandler removes an account; authored articles survive with a
// nullified author.
func (h *AdminHandler) deleteUserHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	principal := middleware.GetPrincipal(r.Context())
	if err := h.users.DeleteUser(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		return middleware.FromDomain(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
