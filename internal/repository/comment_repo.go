package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/engagingnewsproject/article-experiment-api/internal/database"
	"github.com/engagingnewsproject/article-experiment-api/internal/forest"
)

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

// GetForest loads an article's participant comment forest. An article with
// no comment document yet gets an empty forest, not an error.
func (r *commentRepo) GetForest(ctx context.Context, articleID string) ([]forest.Comment, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT forest FROM article_comments WHERE article_id = $1`, articleID,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return []forest.Comment{}, nil
	}
	if err != nil {
		return nil, err
	}

	var f []forest.Comment
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal comment forest: %w", err)
	}
	return f, nil
}

// SaveForest upserts an article's participant comment forest document
func (r *commentRepo) SaveForest(ctx context.Context, articleID string, f []forest.Comment) error {
	if f == nil {
		f = []forest.Comment{}
	}
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal comment forest: %w", err)
	}

	query := `
		INSERT INTO article_comments (article_id, forest, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (article_id) DO UPDATE SET forest = $2, updated_at = $3
	`
	_, err = r.db.ExecContext(ctx, query, articleID, data, time.Now())
	return err
}

// DeleteForest drops an article's participant comment document
func (r *commentRepo) DeleteForest(ctx context.Context, articleID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM article_comments WHERE article_id = $1`, articleID)
	return err
}
