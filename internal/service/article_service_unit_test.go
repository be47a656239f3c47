//go:build unit

package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"go-portal-app/internal/apperror"
	"go-portal-app/internal/auth"
	"go-portal-app/internal/config"
	"go-portal-app/internal/data"
	"go-portal-app/internal/logger"
)

// newTestLogger returns a logger that swallows all output.
func newTestLogger() logger.Logger {
	return logger.New(config.LogConfig{Level: "error", Format: "json"}, io.Discard)
}

// mockArticleRepository is a mock implementation of the ArticleRepository interface.
type mockArticleRepository struct {
	errToReturn      error
	articleToReturn  *data.Article
	articlesToReturn []*data.Article

	createCalled  int
	getByIDCalled int
	listCalled    int
	updateCalled  int
	deleteCalled  int

	lastArticlePassed *data.Article
	lastFilterPassed  data.ArticleFilter
}

var _ ArticleRepository = (*mockArticleRepository)(nil)

func (m *mockArticleRepository) Create(ctx context.Context, article *data.Article) error {
	m.createCalled++
	m.lastArticlePassed = article
	if m.errToReturn != nil {
		return m.errToReturn
	}
	article.ID = 1
	return nil
}

func (m *mockArticleRepository) GetByID(ctx context.Context, id int64) (*data.Article, error) {
	m.getByIDCalled++
	if m.errToReturn != nil {
		return nil, m.errToReturn
	}
	if m.articleToReturn != nil && m.articleToReturn.ID == id {
		return m.articleToReturn, nil
	}
	return nil, nil
}

func (m *mockArticleRepository) List(ctx context.Context, filter data.ArticleFilter) ([]*data.Article, error) {
	m.listCalled++
	m.lastFilterPassed = filter
	return m.articlesToReturn, m.errToReturn
}

func (m *mockArticleRepository) Update(ctx context.Context, article *data.Article) error {
	m.updateCalled++
	m.lastArticlePassed = article
	return m.errToReturn
}

func (m *mockArticleRepository) Delete(ctx context.Context, id int64) error {
	m.deleteCalled++
	return m.errToReturn
}

// mockCategoryReader is a mock implementation of the CategoryReader interface.
type mockCategoryReader struct {
	categoryToReturn *data.Category
	errToReturn      error
	getByIDCalled    int
}

var _ CategoryReader = (*mockCategoryReader)(nil)

func (m *mockCategoryReader) GetByID(ctx context.Context, id int64) (*data.Category, error) {
	m.getByIDCalled++
	if m.errToReturn != nil {
		return nil, m.errToReturn
	}
	if m.categoryToReturn != nil && m.categoryToReturn.ID == id {
		return m.categoryToReturn, nil
	}
	return nil, nil
}

// mockAssetStore is a mock implementation of the AssetStore interface.
type mockAssetStore struct {
	saveErr    error
	deleteErr  error
	replaceErr error

	saveCalled    int
	deleteCalled  int
	replaceCalled int

	lastDeleted string
	lastOldRel  string
}

var _ AssetStore = (*mockAssetStore)(nil)

func (m *mockAssetStore) Save(data []byte, originalExt string) (string, error) {
	m.saveCalled++
	if m.saveErr != nil {
		return "", m.saveErr
	}
	return "uploads/generated" + originalExt, nil
}

func (m *mockAssetStore) Delete(rel string) error {
	m.deleteCalled++
	m.lastDeleted = rel
	return m.deleteErr
}

func (m *mockAssetStore) Replace(oldRel string, data []byte, originalExt string) (string, error) {
	m.replaceCalled++
	m.lastOldRel = oldRel
	if m.replaceErr != nil {
		return "", m.replaceErr
	}
	return "uploads/replaced" + originalExt, nil
}

func newArticleTestService() (*ArticleService, *mockArticleRepository, *mockCategoryReader, *mockAssetStore) {
	articles := &mockArticleRepository{}
	categories := &mockCategoryReader{}
	assets := &mockAssetStore{}
	svc := NewArticleService(articles, categories, assets, newTestLogger())
	return svc, articles, categories, assets
}

func TestArticleService_Create(t *testing.T) {
	ctx := context.Background()
	author := auth.Principal{ID: "auth0|author", Roles: []string{auth.RoleUser}}

	t.Run("stamps author and publication time", func(t *testing.T) {
		svc, articles, _, _ := newArticleTestService()

		created, err := svc.Create(ctx, author, ArticleInput{Title: "Hello", Content: "World"}, nil)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if created.AuthorID == nil || *created.AuthorID != author.ID {
			t.Errorf("expected author %q, got %v", author.ID, created.AuthorID)
		}
		if created.PublishedAt.IsZero() {
			t.Error("expected publication time to be stamped")
		}
		if articles.createCalled != 1 {
			t.Errorf("expected Create to be called once, got %d", articles.createCalled)
		}
	})

	t.Run("rejects anonymous", func(t *testing.T) {
		svc, articles, _, _ := newArticleTestService()

		_, err := svc.Create(ctx, auth.Anonymous(), ArticleInput{Title: "T", Content: "C"}, nil)
		if !errors.Is(err, apperror.ErrForbidden) {
			t.Errorf("expected forbidden, got %v", err)
		}
		if articles.createCalled != 0 {
			t.Error("repository must not be touched for anonymous requests")
		}
	})

	t.Run("validation blocks all side effects", func(t *testing.T) {
		svc, articles, _, assets := newArticleTestService()

		_, err := svc.Create(ctx, author, ArticleInput{Title: "  ", Content: "C"},
			&ImageUpload{Data: []byte("img"), Ext: ".png"})
		if !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
		if assets.saveCalled != 0 {
			t.Error("no asset may be stored for a rejected request")
		}
		if articles.createCalled != 0 {
			t.Error("no row may be created for a rejected request")
		}
	})

	t.Run("unknown category is a validation error", func(t *testing.T) {
		svc, _, _, _ := newArticleTestService()

		categoryID := int64(42)
		_, err := svc.Create(ctx, author, ArticleInput{Title: "T", Content: "C", CategoryID: &categoryID}, nil)
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) || appErr.Field != "category_id" {
			t.Errorf("expected category_id validation error, got %v", err)
		}
	})

	t.Run("title length is counted in characters", func(t *testing.T) {
		svc, articles, _, _ := newArticleTestService()

		// Cyrillic runes are two bytes each; a byte count would reject this.
		title := strings.Repeat("я", MaxTitleLength)
		if _, err := svc.Create(ctx, author, ArticleInput{Title: title, Content: "C"}, nil); err != nil {
			t.Errorf("expected %d-character title to pass, got %v", MaxTitleLength, err)
		}
		if articles.createCalled != 1 {
			t.Error("expected the article to be created")
		}

		_, err := svc.Create(ctx, author, ArticleInput{Title: title + "я", Content: "C"}, nil)
		if !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("expected validation error at %d characters, got %v", MaxTitleLength+1, err)
		}
	})

	t.Run("failed image store aborts the workflow", func(t *testing.T) {
		svc, articles, _, assets := newArticleTestService()
		assets.saveErr = errors.New("disk full")

		_, err := svc.Create(ctx, author, ArticleInput{Title: "T", Content: "C"},
			&ImageUpload{Data: []byte("img"), Ext: ".png"})
		if err == nil {
			t.Fatal("expected error from failed image store")
		}
		if articles.createCalled != 0 {
			t.Error("no row may reference an image that was not stored")
		}
	})

	t.Run("image path is persisted when upload succeeds", func(t *testing.T) {
		svc, articles, _, assets := newArticleTestService()

		created, err := svc.Create(ctx, author, ArticleInput{Title: "T", Content: "C"},
			&ImageUpload{Data: []byte("img"), Ext: ".png"})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if assets.saveCalled != 1 {
			t.Errorf("expected one asset save, got %d", assets.saveCalled)
		}
		if created.ImagePath == nil || *created.ImagePath != "uploads/generated.png" {
			t.Errorf("expected stored image path, got %v", created.ImagePath)
		}
		if articles.lastArticlePassed.ImagePath == nil {
			t.Error("expected image path on the persisted article")
		}
	})
}

func TestArticleService_Edit(t *testing.T) {
	ctx := context.Background()
	owner := "auth0|owner"
	ownerPrincipal := auth.Principal{ID: owner, Roles: []string{auth.RoleUser}}

	existingPath := "uploads/old.png"
	existing := func() *data.Article {
		return &data.Article{
			ID:        7,
			Title:     "Old",
			Content:   "Old content",
			AuthorID:  &owner,
			ImagePath: &existingPath,
		}
	}

	t.Run("missing article reports not found before ownership", func(t *testing.T) {
		svc, articles, _, _ := newArticleTestService()
		articles.articleToReturn = nil

		// A stranger hitting a missing id must see 404, never 403.
		_, err := svc.Edit(ctx, auth.Principal{ID: "auth0|stranger"}, 99, ArticleInput{Title: "T", Content: "C"}, nil)
		if !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		svc, articles, _, _ := newArticleTestService()
		articles.articleToReturn = existing()

		_, err := svc.Edit(ctx, auth.Principal{ID: "auth0|other", Roles: []string{auth.RoleAdmin}}, 7,
			ArticleInput{Title: "T", Content: "C"}, nil)
		if !errors.Is(err, apperror.ErrForbidden) {
			t.Errorf("expected forbidden, got %v", err)
		}
		if articles.updateCalled != 0 {
			t.Error("update must not run for a non-owner")
		}
	})

	t.Run("carries over author and publication time", func(t *testing.T) {
		svc, articles, _, _ := newArticleTestService()
		art := existing()
		articles.articleToReturn = art

		updated, err := svc.Edit(ctx, ownerPrincipal, 7, ArticleInput{Title: "New", Content: "New content"}, nil)
		if err != nil {
			t.Fatalf("Edit failed: %v", err)
		}
		if updated.AuthorID == nil || *updated.AuthorID != owner {
			t.Errorf("expected author to be carried over, got %v", updated.AuthorID)
		}
		if !updated.PublishedAt.Equal(art.PublishedAt) {
			t.Error("expected publication time to be carried over")
		}
	})

	t.Run("without new image the stored path is kept", func(t *testing.T) {
		svc, articles, _, assets := newArticleTestService()
		articles.articleToReturn = existing()

		updated, err := svc.Edit(ctx, ownerPrincipal, 7, ArticleInput{Title: "New", Content: "C"}, nil)
		if err != nil {
			t.Fatalf("Edit failed: %v", err)
		}
		if assets.replaceCalled != 0 {
			t.Error("no asset operation expected without a new image")
		}
		if updated.ImagePath == nil || *updated.ImagePath != existingPath {
			t.Errorf("expected image path %q to be kept, got %v", existingPath, updated.ImagePath)
		}
	})

	t.Run("new image replaces the old one", func(t *testing.T) {
		svc, articles, _, assets := newArticleTestService()
		articles.articleToReturn = existing()

		updated, err := svc.Edit(ctx, ownerPrincipal, 7, ArticleInput{Title: "New", Content: "C"},
			&ImageUpload{Data: []byte("img"), Ext: ".gif"})
		if err != nil {
			t.Fatalf("Edit failed: %v", err)
		}
		if assets.replaceCalled != 1 {
			t.Errorf("expected one Replace call, got %d", assets.replaceCalled)
		}
		if assets.lastOldRel != existingPath {
			t.Errorf("expected old path %q to be replaced, got %q", existingPath, assets.lastOldRel)
		}
		if updated.ImagePath == nil || *updated.ImagePath != "uploads/replaced.gif" {
			t.Errorf("expected new image path, got %v", updated.ImagePath)
		}
	})
}

func TestArticleService_Delete(t *testing.T) {
	ctx := context.Background()
	owner := "auth0|owner"
	imagePath := "uploads/pic.png"

	t.Run("owner delete removes image then row", func(t *testing.T) {
		svc, articles, _, assets := newArticleTestService()
		articles.articleToReturn = &data.Article{ID: 3, AuthorID: &owner, ImagePath: &imagePath}

		err := svc.Delete(ctx, auth.Principal{ID: owner}, 3, true)
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if assets.lastDeleted != imagePath {
			t.Errorf("expected image %q to be deleted, got %q", imagePath, assets.lastDeleted)
		}
		if articles.deleteCalled != 1 {
			t.Errorf("expected one row delete, got %d", articles.deleteCalled)
		}
	})

	t.Run("failed image cleanup does not block the row delete", func(t *testing.T) {
		svc, articles, _, assets := newArticleTestService()
		articles.articleToReturn = &data.Article{ID: 3, AuthorID: &owner, ImagePath: &imagePath}
		assets.deleteErr = errors.New("locked file")

		if err := svc.Delete(ctx, auth.Principal{ID: owner}, 3, true); err != nil {
			t.Fatalf("expected best-effort cleanup, got %v", err)
		}
		if articles.deleteCalled != 1 {
			t.Error("row delete must still run after a failed file delete")
		}
	})

	t.Run("dashboard path skips ownership but needs the role", func(t *testing.T) {
		svc, articles, _, _ := newArticleTestService()
		articles.articleToReturn = &data.Article{ID: 3, AuthorID: &owner}

		editor := auth.Principal{ID: "auth0|editor", Roles: []string{auth.RoleEditor}}
		if err := svc.Delete(ctx, editor, 3, false); err != nil {
			t.Fatalf("expected dashboard delete to succeed, got %v", err)
		}

		plain := auth.Principal{ID: "auth0|plain", Roles: []string{auth.RoleUser}}
		if err := svc.Delete(ctx, plain, 3, false); !errors.Is(err, apperror.ErrForbidden) {
			t.Errorf("expected forbidden for plain user on dashboard path, got %v", err)
		}
	})

	t.Run("ownership path rejects editors who are not the author", func(t *testing.T) {
		svc, articles, _, _ := newArticleTestService()
		articles.articleToReturn = &data.Article{ID: 3, AuthorID: &owner}

		editor := auth.Principal{ID: "auth0|editor", Roles: []string{auth.RoleEditor}}
		if err := svc.Delete(ctx, editor, 3, true); !errors.Is(err, apperror.ErrForbidden) {
			t.Errorf("expected forbidden on public path, got %v", err)
		}
	})

	t.Run("missing article is not found regardless of caller", func(t *testing.T) {
		svc, _, _, _ := newArticleTestService()

		err := svc.Delete(ctx, auth.Anonymous(), 99, true)
		if !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})
}

func TestArticleService_Get_RendersSanitizedHTML(t *testing.T) {
	svc, articles, _, _ := newArticleTestService()
	articles.articleToReturn = &data.Article{
		ID:      1,
		Title:   "T",
		Content: "# Heading\n\n<script>alert(1)</script>",
	}

	article, err := svc.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	html := string(article.HTMLContent)
	if html == "" {
		t.Fatal("expected rendered HTML content")
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("expected script tags to be stripped, got %q", html)
	}
	if !strings.Contains(html, "<h1") {
		t.Errorf("expected markdown heading to be rendered, got %q", html)
	}
}
