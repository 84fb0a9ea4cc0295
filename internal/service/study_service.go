package service

import (
	"context"
	"fmt"
	"time"

	"github.com/engagingnewsproject/article-experiment-api/internal/models"
	"github.com/engagingnewsproject/article-experiment-api/internal/repository"
	"github.com/engagingnewsproject/article-experiment-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// studyService is the concrete implementation of StudyService
type studyService struct {
	repo repository.StudyRepository
	log  zerolog.Logger
}

// newStudyService creates a new StudyService
func newStudyService(repo repository.StudyRepository, log zerolog.Logger) *studyService {
	return &studyService{
		repo: repo,
		log:  log.With().Str("service", "study").Logger(),
	}
}

// Create authors a new study
func (s *studyService) Create(ctx context.Context, req *models.StudyRequest) (*models.Study, error) {
	if errs := validation.ValidateStudy(req); len(errs) > 0 {
		return nil, fmt.Errorf("invalid study: %s", validation.Errors(errs))
	}

	study := &models.Study{
		ID:                uuid.New().String(),
		Name:              req.Name,
		Description:       req.Description,
		QualtricsSurveyID: req.QualtricsSurveyID,
		ArticleIDs:        req.ArticleIDs,
		ConditionConfig:   req.ConditionConfig,
		Active:            req.Active,
		CreatedAt:         time.Now(),
	}
	if study.ArticleIDs == nil {
		study.ArticleIDs = []string{}
	}

	if err := s.repo.Create(ctx, study); err != nil {
		return nil, fmt.Errorf("failed to create study: %w", err)
	}

	s.log.Info().Str("study_id", study.ID).Str("name", study.Name).Msg("Study created")
	return study, nil
}

// Update rewrites an existing study
func (s *studyService) Update(ctx context.Context, id string, req *models.StudyRequest) (*models.Study, error) {
	if errs := validation.ValidateStudy(req); len(errs) > 0 {
		return nil, fmt.Errorf("invalid study: %s", validation.Errors(errs))
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, models.ErrNotFound
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.QualtricsSurveyID = req.QualtricsSurveyID
	existing.ArticleIDs = req.ArticleIDs
	existing.ConditionConfig = req.ConditionConfig
	existing.Active = req.Active
	if existing.ArticleIDs == nil {
		existing.ArticleIDs = []string{}
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update study: %w", err)
	}

	s.log.Info().Str("study_id", id).Msg("Study updated")
	return existing, nil
}

// Delete removes a study
func (s *studyService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("study_id", id).Msg("Study deleted")
	return nil
}

// Get retrieves a study by ID
func (s *studyService) Get(ctx context.Context, id string) (*models.Study, error) {
	study, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if study == nil {
		return nil, models.ErrNotFound
	}
	return study, nil
}

// List returns all studies
func (s *studyService) List(ctx context.Context) ([]*models.Study, error) {
	return s.repo.List(ctx)
}

// ListActive returns studies currently accepting participants
func (s *studyService) ListActive(ctx context.Context) ([]*models.Study, error) {
	return s.repo.GetActive(ctx)
}
