package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"go-portal-app/internal/apperror"
	"go-portal-app/internal/auth"
	"go-portal-app/internal/data"
	"go-portal-app/internal/logger"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Validation limits for article fields.
const (
	MaxTitleLength = 200
)

// ArticleRepository defines the interface for database operations on articles.
type ArticleRepository interface {
	Create(ctx context.Context, article *data.Article) error
	GetByID(ctx context.Context, id int64) (*data.Article, error)
	List(ctx context.Context, filter data.ArticleFilter) ([]*data.Article, error)
	Update(ctx context.Context, article *data.Article) error
	Delete(ctx context.Context, id int64) error
}

// CategoryReader is the slice of the category repository the article
// workflow needs to validate an incoming category reference.
type CategoryReader interface {
	GetByID(ctx context.Context, id int64) (*data.Category, error)
}

// AssetStore defines the interface for the image blob storage.
type AssetStore interface {
	Save(data []byte, originalExt string) (string, error)
	Delete(rel string) error
	Replace(oldRel string, data []byte, originalExt string) (string, error)
}

// ArticleInput carries the user-editable fields of an article. Author and
// publication timestamp are never part of it: those are stamped by the
// workflow, which closes the door on form-tampered authorship.
type ArticleInput struct {
	Title      string
	Content    string
	CategoryID *int64
}

// ImageUpload is an optional image payload accompanying a create or edit.
type ImageUpload struct {
	Data []byte
	Ext  string
}

// ArticleService orchestrates the article workflows: validation, asset
// lifecycle, ownership checks and persistence, in that order.
type ArticleService struct {
	articles   ArticleRepository
	categories CategoryReader
	assets     AssetStore
	sanitizer  *bluemonday.Policy
	markdown   goldmark.Markdown
	log        logger.Logger
}

// NewArticleService creates a new ArticleService with the given dependencies.
func NewArticleService(articles ArticleRepository, categories CategoryReader, assets AssetStore, log logger.Logger) *ArticleService {
	return &ArticleService{
		articles:   articles,
		categories: categories,
		assets:     assets,
		// UGCPolicy allows basic formatting while stripping dangerous HTML
		// from user-generated content.
		sanitizer: bluemonday.UGCPolicy(),
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		log:       log,
	}
}

// validateInput enforces the article field rules. It runs before any side
// effect so a rejected request leaves no stored asset and no row behind.
func (s *ArticleService) validateInput(ctx context.Context, input *ArticleInput) error {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if utf8.RuneCountInString(input.Title) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if strings.TrimSpace(input.Content) == "" {
		return apperror.ValidationFailed("content", "content is required")
	}
	if input.CategoryID != nil {
		category, err := s.categories.GetByID(ctx, *input.CategoryID)
		if err != nil {
			return fmt.Errorf("checking category: %w", err)
		}
		if category == nil {
			return apperror.ValidationFailed("category_id", "category does not exist")
		}
	}
	return nil
}

// Create validates the input, stores the optional image, stamps authorship
// and publication time, and persists the article. A failed asset write
// aborts the workflow: no row may ever reference a file that was not
// confirmed stored.
func (s *ArticleService) Create(ctx context.Context, principal auth.Principal, input ArticleInput, image *ImageUpload) (*data.Article, error) {
	if !principal.IsAuthenticated() {
		return nil, apperror.Forbidden("sign in to publish articles")
	}
	if err := s.validateInput(ctx, &input); err != nil {
		return nil, err
	}

	var imagePath *string
	if image != nil && len(image.Data) > 0 {
		rel, err := s.assets.Save(image.Data, image.Ext)
		if err != nil {
			return nil, fmt.Errorf("storing article image: %w", err)
		}
		imagePath = &rel
	}

	authorID := principal.ID
	article := &data.Article{
		Title:       input.Title,
		Content:     input.Content,
		CategoryID:  input.CategoryID,
		ImagePath:   imagePath,
		AuthorID:    &authorID,
		PublishedAt: time.Now().UTC(),
	}

	if err := s.articles.Create(ctx, article); err != nil {
		s.log.Error(err, "failed to create article")
		return nil, fmt.Errorf("creating article: %w", err)
	}
	return article, nil
}

// Edit updates an existing article on the ownership-checked path. The
// order is fixed: load (404 wins over 403), ownership, validation, asset
// replacement, persistence. Author and publication timestamp are always
// carried over from the stored record, never from the payload.
func (s *ArticleService) Edit(ctx context.Context, principal auth.Principal, id int64, input ArticleInput, image *ImageUpload) (*data.Article, error) {
	existing, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading article: %w", err)
	}
	if existing == nil {
		return nil, apperror.NotFound("article", id)
	}
	if !auth.CanMutateArticle(principal, existing) {
		return nil, apperror.Forbidden("only the author may modify this article")
	}
	if err := s.validateInput(ctx, &input); err != nil {
		return nil, err
	}

	imagePath := existing.ImagePath
	if image != nil && len(image.Data) > 0 {
		var old string
		if existing.ImagePath != nil {
			old = *existing.ImagePath
		}
		rel, err := s.assets.Replace(old, image.Data, image.Ext)
		if err != nil {
			return nil, fmt.Errorf("replacing article image: %w", err)
		}
		imagePath = &rel
	}

	updated := &data.Article{
		ID:          existing.ID,
		Title:       input.Title,
		Content:     input.Content,
		CategoryID:  input.CategoryID,
		ImagePath:   imagePath,
		AuthorID:    existing.AuthorID,
		PublishedAt: existing.PublishedAt,
	}
	if err := s.articles.Update(ctx, updated); err != nil {
		s.log.Error(err, "failed to update article")
		return nil, fmt.Errorf("updating article: %w", err)
	}
	return updated, nil
}

// Delete removes an article. The public path enforces ownership; the
// dashboard path passes enforceOwnership=false and is gated by dashboard
// role instead — that asymmetry is intentional. Asset removal is best
// effort: a dangling file is recoverable, a dangling row is not, so a
// failed file delete is logged and the row still goes.
func (s *ArticleService) Delete(ctx context.Context, principal auth.Principal, id int64, enforceOwnership bool) error {
	existing, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("loading article: %w", err)
	}
	if existing == nil {
		return apperror.NotFound("article", id)
	}
	if enforceOwnership {
		if !auth.CanMutateArticle(principal, existing) {
			return apperror.Forbidden("only the author may delete this article")
		}
	} else if !auth.CanAccessDashboard(principal) {
		return apperror.Forbidden("dashboard role required")
	}

	if existing.ImagePath != nil {
		if err := s.assets.Delete(*existing.ImagePath); err != nil {
			s.log.Error(err, fmt.Sprintf("best-effort image cleanup failed for article %d", id))
		}
	}

	if err := s.articles.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting article: %w", err)
	}
	return nil
}

// List retrieves articles matching the filter, newest first.
func (s *ArticleService) List(ctx context.Context, filter data.ArticleFilter) ([]*data.Article, error) {
	articles, err := s.articles.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	return articles, nil
}

// Get retrieves a single article and renders its content to sanitized HTML
// for the read path.
func (s *ArticleService) Get(ctx context.Context, id int64) (*data.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading article: %w", err)
	}
	if article == nil {
		return nil, apperror.NotFound("article", id)
	}

	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(article.Content), &buf); err != nil {
		return nil, fmt.Errorf("rendering article content: %w", err)
	}
	article.HTMLContent = template.HTML(s.sanitizer.SanitizeBytes(buf.Bytes()))
	return article, nil
}
