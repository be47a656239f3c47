package data

import (
	"html/template"
	"time"
)

// Article represents a single published article in the database.
// AuthorID and PublishedAt are stamped at creation and never taken from
// user input again; CategoryID and AuthorID are nullable foreign keys that
// survive deletion of their targets (SetNull policy).
type Article struct {
	ID           int64         `db:"id" json:"id"`
	Title        string        `db:"title" json:"title"`
	Content      string        `db:"content" json:"content"`
	HTMLContent  template.HTML `db:"-" json:"html_content,omitempty"`
	PublishedAt  time.Time     `db:"published_at" json:"published_at"`
	ImagePath    *string       `db:"image_path" json:"image_path"`
	CategoryID   *int64        `db:"category_id" json:"category_id"`
	AuthorID     *string       `db:"author_id" json:"author_id"`
	CategoryName *string       `db:"category_name" json:"category_name,omitempty"`
	AuthorName   *string       `db:"author_name" json:"author_name,omitempty"`
}

// Category groups articles. Deleting a category never deletes its
// articles. ArticleCount is only populated by the dashboard listing.
type Category struct {
	ID           int64   `db:"id" json:"id"`
	Name         string  `db:"name" json:"name"`
	Description  *string `db:"description" json:"description"`
	ArticleCount int64   `db:"article_count" json:"article_count,omitempty"`
}

// User is a registered account. The ID is the opaque subject issued by the
// identity provider.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	FullName     *string   `db:"full_name" json:"full_name"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
	Roles        []string  `db:"-" json:"roles,omitempty"`
}

// Role is a named permission group users can be members of.
type Role struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
