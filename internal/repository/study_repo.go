package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/engagingnewsproject/article-experiment-api/internal/database"
	"github.com/engagingnewsproject/article-experiment-api/internal/models"
)

// studyRepo is the concrete implementation of StudyRepository
type studyRepo struct {
	db *database.DB
}

// NewStudyRepo creates a new study repository
func NewStudyRepo(db *database.DB) StudyRepository {
	return &studyRepo{db: db}
}

const studyColumns = `id, name, description, qualtrics_survey_id, article_ids, condition_config, active, created_at, updated_at`

// Create inserts a new study
func (r *studyRepo) Create(ctx context.Context, study *models.Study) error {
	articleIDs, err := json.Marshal(study.ArticleIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal article ids: %w", err)
	}
	config := study.ConditionConfig
	if len(config) == 0 {
		config = json.RawMessage(`{}`)
	}

	query := `
		INSERT INTO studies (id, name, description, qualtrics_survey_id, article_ids, condition_config, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, query,
		study.ID, study.Name, study.Description, study.QualtricsSurveyID,
		articleIDs, []byte(config), study.Active, study.CreatedAt, time.Now(),
	)
	return err
}

// Update rewrites a study's editable fields
func (r *studyRepo) Update(ctx context.Context, study *models.Study) error {
	articleIDs, err := json.Marshal(study.ArticleIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal article ids: %w", err)
	}
	config := study.ConditionConfig
	if len(config) == 0 {
		config = json.RawMessage(`{}`)
	}

	query := `
		UPDATE studies
		SET name = $2, description = $3, qualtrics_survey_id = $4,
		    article_ids = $5, condition_config = $6, active = $7, updated_at = $8
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		study.ID, study.Name, study.Description, study.QualtricsSurveyID,
		articleIDs, []byte(config), study.Active, time.Now(),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete removes a study
func (r *studyRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM studies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// GetByID retrieves a study by ID
func (r *studyRepo) GetByID(ctx context.Context, id string) (*models.Study, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+studyColumns+` FROM studies WHERE id = $1`, id)
	return scanStudy(row)
}

// List returns all studies, newest first
func (r *studyRepo) List(ctx context.Context) ([]*models.Study, error) {
	return r.query(ctx, `SELECT `+studyColumns+` FROM studies ORDER BY created_at DESC`)
}

// GetActive returns studies currently accepting participants
func (r *studyRepo) GetActive(ctx context.Context) ([]*models.Study, error) {
	return r.query(ctx, `SELECT `+studyColumns+` FROM studies WHERE active ORDER BY created_at DESC`)
}

// Count returns the total number of studies
func (r *studyRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM studies`).Scan(&count)
	return count, err
}

func (r *studyRepo) query(ctx context.Context, query string) ([]*models.Study, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var studies []*models.Study
	for rows.Next() {
		study, err := scanStudy(rows)
		if err != nil {
			return nil, err
		}
		studies = append(studies, study)
	}
	return studies, rows.Err()
}

func scanStudy(row rowScanner) (*models.Study, error) {
	var study models.Study
	var articleIDs, config []byte

	err := row.Scan(
		&study.ID, &study.Name, &study.Description, &study.QualtricsSurveyID,
		&articleIDs, &config, &study.Active, &study.CreatedAt, &study.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(articleIDs, &study.ArticleIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal article ids: %w", err)
	}
	study.ConditionConfig = json.RawMessage(config)
	return &study, nil
}
