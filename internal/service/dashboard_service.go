package service

import (
	"context"
	"fmt"
	"time"

	"go-portal-app/internal/apperror"
	"go-portal-app/internal/auth"
	"go-portal-app/internal/cache"
	"go-portal-app/internal/data"
	"go-portal-app/internal/logger"
)

const (
	statsCacheKey = "dashboard:stats"
	statsCacheTTL = time.Minute
	recentLimit   = 5
)

// Counter is implemented by every repository that can report its row count.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// Stats is the dashboard overview aggregation.
type Stats struct {
	TotalArticles   int64           `json:"total_articles"`
	TotalCategories int64           `json:"total_categories"`
	TotalUsers      int64           `json:"total_users"`
	RecentArticles  []*data.Article `json:"recent_articles"`
}

// DashboardService aggregates portal-wide numbers for the admin landing
// page and serves the dashboard's article and category listings.
type DashboardService struct {
	articles      ArticleRepository
	articleCount  Counter
	categories    CategoryRepository
	categoryCount Counter
	userCount     Counter
	cache         *cache.Cache
	log           logger.Logger
}

// NewDashboardService creates a new DashboardService. The three Counter
// arguments are the article, category and user repositories; they are
// passed separately so tests can stub counting without a full repository.
func NewDashboardService(articles ArticleRepository, categories CategoryRepository,
	articleCount, categoryCount, userCount Counter, c *cache.Cache, log logger.Logger) *DashboardService {
	return &DashboardService{
		articles:      articles,
		articleCount:  articleCount,
		categories:    categories,
		categoryCount: categoryCount,
		userCount:     userCount,
		cache:         c,
		log:           log,
	}
}

// Overview returns the dashboard statistics, cached for a minute. A cache
// failure only costs the recomputation, never the request.
func (s *DashboardService) Overview(ctx context.Context, principal auth.Principal) (*Stats, error) {
	if !auth.CanAccessDashboard(principal) {
		return nil, apperror.Forbidden("dashboard role required")
	}

	if s.cache != nil {
		var cached Stats
		hit, err := s.cache.GetJSON(statsCacheKey, &cached)
		if err != nil {
			s.log.Warn(fmt.Sprintf("dashboard stats cache read failed: %v", err))
		} else if hit {
			return &cached, nil
		}
	}

	stats := &Stats{}
	var err error
	if stats.TotalArticles, err = s.articleCount.Count(ctx); err != nil {
		return nil, fmt.Errorf("counting articles: %w", err)
	}
	if stats.TotalCategories, err = s.categoryCount.Count(ctx); err != nil {
		return nil, fmt.Errorf("counting categories: %w", err)
	}
	if stats.TotalUsers, err = s.userCount.Count(ctx); err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}
	if stats.RecentArticles, err = s.articles.List(ctx, data.ArticleFilter{Limit: recentLimit}); err != nil {
		return nil, fmt.Errorf("loading recent articles: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(statsCacheKey, stats, statsCacheTTL); err != nil {
			s.log.Warn(fmt.Sprintf("dashboard stats cache write failed: %v", err))
		}
	}
	return stats, nil
}

// SearchArticles is the dashboard's article listing: a free-text search
// across every author's articles, role-gated rather than ownership-gated.
func (s *DashboardService) SearchArticles(ctx context.Context, principal auth.Principal, search string) ([]*data.Article, error) {
	if !auth.CanAccessDashboard(principal) {
		return nil, apperror.Forbidden("dashboard role required")
	}
	articles, err := s.articles.List(ctx, data.ArticleFilter{Search: search})
	if err != nil {
		return nil, fmt.Errorf("searching articles: %w", err)
	}
	return articles, nil
}

// Categories is the dashboard's category listing with per-category article
// counts.
func (s *DashboardService) Categories(ctx context.Context, principal auth.Principal) ([]*data.Category, error) {
	if !auth.CanAccessDashboard(principal) {
		return nil, apperror.Forbidden("dashboard role required")
	}
	categories, err := s.categories.ListWithCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}
