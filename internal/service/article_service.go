package service

import (
	"context"
	"fmt"
	"time"

	"github.com/engagingnewsproject/article-experiment-api/internal/bridge"
	"github.com/engagingnewsproject/article-experiment-api/internal/forest"
	"github.com/engagingnewsproject/article-experiment-api/internal/models"
	"github.com/engagingnewsproject/article-experiment-api/internal/repository"
	"github.com/engagingnewsproject/article-experiment-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// articleService is the concrete implementation of ArticleService
type articleService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newArticleService creates a new ArticleService
func newArticleService(repos *repository.Repositories, log zerolog.Logger) *articleService {
	return &articleService{
		repos: repos,
		log:   log.With().Str("service", "article").Logger(),
	}
}

// Create authors a new article
func (s *articleService) Create(ctx context.Context, req *models.ArticleRequest) (*models.Article, error) {
	if errs := validation.ValidateArticle(req); len(errs) > 0 {
		return nil, fmt.Errorf("invalid article: %s", validation.Errors(errs))
	}

	taken, err := s.repos.Article.SlugExists(ctx, req.Slug, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}
	if taken {
		return nil, models.ErrSlugTaken
	}

	article := &models.Article{
		ID:              uuid.New().String(),
		Slug:            req.Slug,
		Title:           req.Title,
		Content:         req.Content,
		Author:          req.Author,
		PubDate:         req.PubDate,
		SiteName:        req.SiteName,
		Annotations:     req.Annotations,
		CommentsDisplay: req.CommentsDisplay,
		DefaultComments: []forest.Comment{},
		CreatedAt:       time.Now(),
	}
	if article.Annotations == nil {
		article.Annotations = []models.Annotation{}
	}

	if err := s.repos.Article.Create(ctx, article); err != nil {
		return nil, fmt.Errorf("failed to create article: %w", err)
	}

	s.log.Info().Str("article_id", article.ID).Str("slug", article.Slug).Msg("Article created")
	return article, nil
}

// Update rewrites an existing article
func (s *articleService) Update(ctx context.Context, id string, req *models.ArticleRequest) (*models.Article, error) {
	if errs := validation.ValidateArticle(req); len(errs) > 0 {
		return nil, fmt.Errorf("invalid article: %s", validation.Errors(errs))
	}

	existing, err := s.repos.Article.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, models.ErrNotFound
	}

	taken, err := s.repos.Article.SlugExists(ctx, req.Slug, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}
	if taken {
		return nil, models.ErrSlugTaken
	}

	existing.Slug = req.Slug
	existing.Title = req.Title
	existing.Content = req.Content
	existing.Author = req.Author
	existing.PubDate = req.PubDate
	existing.SiteName = req.SiteName
	existing.Annotations = req.Annotations
	existing.CommentsDisplay = req.CommentsDisplay
	if existing.Annotations == nil {
		existing.Annotations = []models.Annotation{}
	}

	if err := s.repos.Article.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update article: %w", err)
	}

	s.log.Info().Str("article_id", id).Msg("Article updated")
	return existing, nil
}

// Delete removes an article and its comment document
func (s *articleService) Delete(ctx context.Context, id string) error {
	if err := s.repos.Article.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.repos.Comment.DeleteForest(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("article_id", id).Msg("Failed to delete comment document")
	}
	s.log.Info().Str("article_id", id).Msg("Article deleted")
	return nil
}

// Get retrieves an article by ID
func (s *articleService) Get(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.repos.Article.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, models.ErrNotFound
	}
	return article, nil
}

// List returns all articles
func (s *articleService) List(ctx context.Context) ([]*models.Article, error) {
	return s.repos.Article.List(ctx)
}

// Render builds the public article view: the article plus its merged
// comment forest (admin-seeded default comments and participant comments,
// re-sorted newest first). When comments_display is off the forest is
// withheld entirely.
func (s *articleService) Render(ctx context.Context, slug string) (*models.ArticleView, error) {
	article, err := s.repos.Article.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, models.ErrNotFound
	}

	view := &models.ArticleView{
		Article:  *article,
		Comments: []forest.Comment{},
		// The article page has no survey context of its own; it must ask
		// the embedding page for it on load
		Emit: bridge.RequestQualtricsData(),
	}
	if !article.CommentsDisplay {
		return view, nil
	}

	participant, err := s.repos.Comment.GetForest(ctx, article.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comment forest: %w", err)
	}

	merged := make([]forest.Comment, 0, len(participant)+len(article.DefaultComments))
	merged = append(merged, participant...)
	merged = append(merged, article.DefaultComments...)
	view.Comments = forest.SortByNewest(merged)
	return view, nil
}
