package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/engagingnewsproject/article-experiment-api/internal/database"
	"github.com/engagingnewsproject/article-experiment-api/internal/forest"
	"github.com/engagingnewsproject/article-experiment-api/internal/models"
)

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

const articleColumns = `id, slug, title, content, author, pub_date, site_name, annotations, comments_display, default_comments, created_at, updated_at`

// Create inserts a new article
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	annotations, err := json.Marshal(article.Annotations)
	if err != nil {
		return fmt.Errorf("failed to marshal annotations: %w", err)
	}
	defaults, err := json.Marshal(article.DefaultComments)
	if err != nil {
		return fmt.Errorf("failed to marshal default comments: %w", err)
	}

	query := `
		INSERT INTO articles (id, slug, title, content, author, pub_date, site_name, annotations, comments_display, default_comments, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = r.db.ExecContext(ctx, query,
		article.ID, article.Slug, article.Title, article.Content,
		article.Author, article.PubDate, article.SiteName,
		annotations, article.CommentsDisplay, defaults,
		article.CreatedAt, time.Now(),
	)
	return err
}

// Update rewrites an article's editable fields
func (r *articleRepo) Update(ctx context.Context, article *models.Article) error {
	annotations, err := json.Marshal(article.Annotations)
	if err != nil {
		return fmt.Errorf("failed to marshal annotations: %w", err)
	}

	query := `
		UPDATE articles
		SET slug = $2, title = $3, content = $4, author = $5, pub_date = $6,
		    site_name = $7, annotations = $8, comments_display = $9, updated_at = $10
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		article.ID, article.Slug, article.Title, article.Content,
		article.Author, article.PubDate, article.SiteName,
		annotations, article.CommentsDisplay, time.Now(),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete removes an article; its comment document goes with it via FK cascade
func (r *articleRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// GetByID retrieves an article by ID
func (r *articleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	return scanArticle(row)
}

// GetBySlug retrieves an article by its public slug
func (r *articleRepo) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE slug = $1`, slug)
	return scanArticle(row)
}

// List returns all articles, newest first
func (r *articleRepo) List(ctx context.Context) ([]*models.Article, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+articleColumns+` FROM articles ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*models.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

// SlugExists checks if a slug is taken by another article
func (r *articleRepo) SlugExists(ctx context.Context, slug string, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM articles WHERE slug = $1 AND id <> $2)`,
		slug, excludeID,
	).Scan(&exists)
	return exists, err
}

// SetDefaultComments replaces an article's seeded comment forest
func (r *articleRepo) SetDefaultComments(ctx context.Context, articleID string, comments []forest.Comment) error {
	if comments == nil {
		comments = []forest.Comment{}
	}
	data, err := json.Marshal(comments)
	if err != nil {
		return fmt.Errorf("failed to marshal default comments: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE articles SET default_comments = $2, updated_at = $3 WHERE id = $1`,
		articleID, data, time.Now(),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Count returns the total number of articles
func (r *articleRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count)
	return count, err
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*models.Article, error) {
	var article models.Article
	var annotations, defaults []byte

	err := row.Scan(
		&article.ID, &article.Slug, &article.Title, &article.Content,
		&article.Author, &article.PubDate, &article.SiteName,
		&annotations, &article.CommentsDisplay, &defaults,
		&article.CreatedAt, &article.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(annotations, &article.Annotations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal annotations: %w", err)
	}
	if err := json.Unmarshal(defaults, &article.DefaultComments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal default comments: %w", err)
	}
	return &article, nil
}
