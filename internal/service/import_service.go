package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/engagingnewsproject/article-experiment-api/internal/forest"
	"github.com/engagingnewsproject/article-experiment-api/internal/models"
	"github.com/engagingnewsproject/article-experiment-api/internal/repository"
	"github.com/engagingnewsproject/article-experiment-api/internal/validation"
	"github.com/rs/zerolog"
)

// importService is the concrete implementation of ImportService
type importService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newImportService creates a new ImportService
func newImportService(repos *repository.Repositories, log zerolog.Logger) *importService {
	return &importService{
		repos: repos,
		log:   log.With().Str("service", "import").Logger(),
	}
}

// ImportDefaultComments parses a default-comment CSV and replaces the
// article's seeded forest with the result. A malformed file (unreadable
// CSV, missing required columns) aborts the import with nothing written.
// Soft data issues inside rows (missing content, bad dates, excess depth,
// dangling parents) are normalized or dropped by the forest builder and
// never surface as errors.
func (s *importService) ImportDefaultComments(ctx context.Context, articleID string, file io.Reader) ([]forest.Comment, error) {
	article, err := s.repos.Article.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, models.ErrNotFound
	}

	rows, err := parseCommentCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrImportFailed, err)
	}

	built := forest.Build(rows, time.Now())

	if err := s.repos.Article.SetDefaultComments(ctx, articleID, built); err != nil {
		return nil, fmt.Errorf("failed to store default comments: %w", err)
	}

	s.log.Info().
		Str("article_id", articleID).
		Int("rows", len(rows)).
		Int("imported", forest.Count(built)).
		Msg("Default comments imported")
	return built, nil
}

// ClearDefaultComments removes an article's seeded forest
func (s *importService) ClearDefaultComments(ctx context.Context, articleID string) error {
	if err := s.repos.Article.SetDefaultComments(ctx, articleID, nil); err != nil {
		return err
	}
	s.log.Info().Str("article_id", articleID).Msg("Default comments cleared")
	return nil
}

// parseCommentCSV reads a default-comment CSV into flat rows. The header
// must carry id, parent_id, user_id, written_at and a comment or content
// column; ranks_up/ranks_down are optional.
func parseCommentCSV(file io.Reader) ([]forest.Row, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // ragged rows are a data issue, not a format error

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	headerMap := make(map[string]int)
	for i, h := range header {
		headerMap[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if err := validation.ValidateCSVHeader(headerMap); err != nil {
		return nil, err
	}

	field := func(record []string, name string) string {
		idx, ok := headerMap[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	var rows []forest.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		content := field(record, "comment")
		if content == "" {
			content = field(record, "content")
		}

		rows = append(rows, forest.Row{
			ID:        field(record, "id"),
			ParentID:  field(record, "parent_id"),
			Name:      field(record, "user_id"),
			Content:   content,
			WrittenAt: field(record, "written_at"),
			RanksUp:   field(record, "ranks_up"),
			RanksDown: field(record, "ranks_down"),
		})
	}
	return rows, nil
}
