package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"go-portal-app/internal/data"
	"go-portal-app/internal/logger"
	"go-portal-app/internal/middleware"
	"go-portal-app/internal/service"

	"github.com/go-chi/chi/v5"
)

// maxUploadSize bounds the multipart form memory for image uploads (10 MiB).
const maxUploadSize = 10 << 20

// ArticleHandler holds the dependencies for the public article handlers.
type ArticleHandler struct {
	articles *service.ArticleService
	log      logger.Logger
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(articles *service.ArticleService, log logger.Logger) *ArticleHandler {
	return &ArticleHandler{articles: articles, log: log}
}

// idParam parses the {id} URL parameter. A non-numeric id is treated the
// same as a missing row.
func idParam(r *http.Request) (int64, *middleware.AppError) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &middleware.AppError{Error: err, Message: "not found", Code: http.StatusNotFound}
	}
	return id, nil
}

// parseArticleForm extracts the article fields and the optional image from
// a multipart (or urlencoded) form submission.
func parseArticleForm(r *http.Request) (service.ArticleInput, *service.ImageUpload, error) {
	var input service.ArticleInput

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			return input, nil, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return input, nil, err
		}
	}

	input.Title = r.FormValue("title")
	input.Content = r.FormValue("content")
	if raw := r.FormValue("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return input, nil, err
		}
		input.CategoryID = &id
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return input, nil, nil
		}
		return input, nil, err
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		return input, nil, err
	}
	image := &service.ImageUpload{
		Data: payload,
		Ext:  filepath.Ext(header.Filename),
	}
	return input, image, nil
}

// listHandler serves the public article listing with optional search term
// and category filter.
func (h *ArticleHandler) listHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	filter := data.ArticleFilter{Search: r.URL.Query().Get("search")}
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return &middleware.AppError{Error: err, Message: "invalid category_id", Code: http.StatusBadRequest}
		}
		filter.CategoryID = &id
	}

	articles, err := h.articles.List(r.Context(), filter)
	if err != nil {
		return middleware.FromDomain(err)
	}
	if err := respondJSON(w, http.StatusOK, map[string]interface{}{"articles": articles}); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to write response", Code: http.StatusInternalServerError}
	}
	return nil
}

// detailsHandler serves a single article with its content rendered to
// sanitized HTML.
func (h *ArticleHandler) detailsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := idParam(r)
	if appErr != nil {
		return appErr
	}
	article, err := h.articles.Get(r.Context(), id)
	if err != nil {
		return middleware.FromDomain(err)
	}
	if err := respondJSON(w, http.StatusOK, article); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to write response", Code: http.StatusInternalServerError}
	}
	return nil
}

// createHandler publishes a new article owned by the signed-in principal.
func (h *ArticleHandler) createHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	input, image, err := parseArticleForm(r)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "invalid form submission", Code: http.StatusBadRequest}
	}

	principal := middleware.GetPrincipal(r.Context())
	article, err := h.articles.Create(r.Context(), principal, input, image)
	if err != nil {
		return middleware.FromDomain(err)
	}
	if err := respondJSON(w, http.StatusCreated, article); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to write response", Code: http.StatusInternalServerError}
	}
	return nil
}

// editHandler updates an article on the ownership-checked path.
func (h *ArticleHandler) editHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := idParam(r)
	if appErr != nil {
		return appErr
	}
	input, image, err := parseArticleForm(r)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "invalid form submission", Code: http.StatusBadRequest}
	}

	principal := middleware.GetPrincipal(r.Context())
	article, err := h.articles.Edit(r.Context(), principal, id, input, image)
	if err != nil {
		return middleware.FromDomain(err)
	}
	if err := respondJSON(w, http.StatusOK, article); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to write response", Code: http.StatusInternalServerError}
	}
	return nil
}

// deleteHandler removes an article on the ownership-checked path.
func (h *ArticleHandler) deleteHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := idParam(r)
	if appErr != nil {
		return appErr
	}
	principal := middleware.GetPrincipal(r.Context())
	if err := h.articles.Delete(r.Context(), principal, id, true); err != nil {
		return middleware.FromDomain(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
