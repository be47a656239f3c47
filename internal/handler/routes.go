package handler

import (
	"net/http"

	"go-portal-app/internal/assets"
	appmw "go-portal-app/internal/middleware"
	"go-portal-app/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates and configures the chi router. Session loading wraps
// everything; the casbin authorizer gates all content and dashboard
// routes; the error middleware turns AppHandler results into JSON errors.
func NewRouter(articles *ArticleHandler, categories *CategoryHandler, admin *AdminHandler,
	authHandler *AuthHandler, authz func(http.Handler) http.Handler,
	errorMw func(appmw.AppHandler) http.Handler, sm session.Manager, uploadsDir string) *chi.Mux {

	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(sm.LoadAndSave)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/articles", http.StatusFound)
	})

	// Stored article images are served directly from the upload root. The
	// URL segment matches the prefix of persisted image paths regardless of
	// how the upload directory is named on disk.
	r.Handle("/"+assets.PublicPrefix+"/*",
		http.StripPrefix("/"+assets.PublicPrefix+"/", http.FileServer(http.Dir(uploadsDir))))

	// Authentication routes
	r.Get("/auth/login", authHandler.handleLogin)
	r.Get("/auth/callback", authHandler.handleCallback)
	r.Post("/auth/logout", authHandler.handleLogout)

	// Content and dashboard routes
	r.Group(func(r chi.Router) {
		r.Use(authz)

		r.Method(http.MethodGet, "/articles", errorMw(articles.listHandler))
		r.Method(http.MethodPost, "/articles", errorMw(articles.createHandler))
		r.Method(http.MethodGet, "/articles/{id}", errorMw(articles.detailsHandler))
		r.Method(http.MethodPut, "/articles/{id}", errorMw(articles.editHandler))
		r.Method(http.MethodDelete, "/articles/{id}", errorMw(articles.deleteHandler))

		r.Method(http.MethodGet, "/categories", errorMw(categories.listHandler))
		r.Method(http.MethodGet, "/categories/{id}", errorMw(categories.detailsHandler))

		r.Method(http.MethodGet, "/admin", errorMw(admin.overviewHandler))
		r.Method(http.MethodGet, "/admin/articles", errorMw(admin.articlesHandler))
		r.Method(http.MethodDelete, "/admin/articles/{id}", errorMw(admin.deleteArticleHandler))
		r.Method(http.MethodGet, "/admin/categories", errorMw(admin.categoriesHandler))
		r.Method(http.MethodPost, "/admin/categories", errorMw(admin.createCategoryHandler))
		r.Method(http.MethodPut, "/admin/categories/{id}", errorMw(admin.editCategoryHandler))
		r.Method(http.MethodDelete, "/admin/categories/{id}", errorMw(admin.deleteCategoryHandler))
		r.Method(http.MethodGet, "/admin/users", errorMw(admin.usersHandler))
		r.Method(http.MethodGet, "/admin/users/{id}", errorMw(admin.getUserHandler))
		r.Method(http.MethodPut, "/admin/users/{id}", errorMw(admin.editUserHandler))
		r.Method(http.MethodDelete, "/admin/users/{id}", errorMw(admin.deleteUserHandler))
	})

	return r
}
