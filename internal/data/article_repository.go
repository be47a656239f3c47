package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// ArticleFilter holds the optional criteria for a filtered article listing.
// A zero-value filter matches everything. Search is substring containment
// against title or content; both predicates combine conjunctively.
type ArticleFilter struct {
	Search     string
	CategoryID *int64
	Limit      int // 0 means no limit
}

// ArticleRepository is a concrete implementation over sqlx.
type ArticleRepository struct {
	db *sqlx.DB
}

// NewArticleRepository creates a new ArticleRepository.
func NewArticleRepository(db *sqlx.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// articleColumns is the shared select list. Category name and author name
// come from LEFT JOINs so articles with nullified foreign keys still load.
const articleColumns = `a.id, a.title, a.content, a.published_at, a.image_path, a.category_id, a.author_id,
	c.name AS category_name, u.full_name AS author_name`

const articleFrom = ` FROM articles a
	LEFT JOIN categories c ON c.id = a.category_id
	LEFT JOIN users u ON u.id = a.author_id`

// Create inserts a new article and fills in the generated ID.
func (r *ArticleRepository) Create(ctx context.Context, article *Article) error {
	query := `INSERT INTO articles (title, content, published_at, image_path, category_id, author_id)
		VALUES (:title, :content, :published_at, :image_path, :category_id, :author_id)`
	res, err := r.db.NamedExecContext(ctx, query, article)
	if err != nil {
		return fmt.Errorf("failed to execute create article query: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted article id: %w", err)
	}
	article.ID = id
	return nil
}

// GetByID retrieves a single article by its ID. A missing row is reported
// as (nil, nil); the service layer decides whether that is a NotFound.
func (r *ArticleRepository) GetByID(ctx context.Context, id int64) (*Article, error) {
	var article Article
	query := `SELECT ` + articleColumns + articleFrom + ` WHERE a.id = ?`
	if err := r.db.GetContext(ctx, &article, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get article by id: %w", err)
	}
	return &article, nil
}

// List retrieves articles matching the filter, newest first.
// Predicates are appended to a conjunction pipeline so each criterion can
// apply independently or combined without duplicated query text.
func (r *ArticleRepository) List(ctx context.Context, filter ArticleFilter) ([]*Article, error) {
	query := `SELECT ` + articleColumns + articleFrom
	var conds []string
	var args []interface{}

	if s := strings.TrimSpace(filter.Search); s != "" {
		conds = append(conds, `(a.title LIKE ? OR a.content LIKE ?)`)
		pattern := "%" + s + "%"
		args = append(args, pattern, pattern)
	}
	if filter.CategoryID != nil {
		conds = append(conds, `a.category_id = ?`)
		args = append(args, *filter.CategoryID)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY a.published_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	var articles []*Article
	if err := r.db.SelectContext(ctx, &articles, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return articles, nil
}

// Update persists title, content, image path and category of an existing
// article. The author and publication timestamp columns are deliberately
// absent from the statement: they are immutable after creation.
func (r *ArticleRepository) Update(ctx context.Context, article *Article) error {
	query := `UPDATE articles SET title = :title, content = :content, image_path = :image_path, category_id = :category_id
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, article)
	if err != nil {
		return fmt.Errorf("failed to update article: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no article found to update with id %d", article.ID)
	}
	return nil
}

// Delete removes an article row by its ID.
func (r *ArticleRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no article found to delete with id %d", id)
	}
	return nil
}

// Count returns the total number of articles.
func (r *ArticleRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM articles`); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}
