package repository

import (
	"context"

	"github.com/engagingnewsproject/article-experiment-api/internal/database"
	"github.com/engagingnewsproject/article-experiment-api/internal/forest"
	"github.com/engagingnewsproject/article-experiment-api/internal/models"
)

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Article, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	List(ctx context.Context) ([]*models.Article, error)
	SlugExists(ctx context.Context, slug string, excludeID string) (bool, error)
	SetDefaultComments(ctx context.Context, articleID string, comments []forest.Comment) error
	Count(ctx context.Context) (int, error)
}

// CommentRepository stores each article's participant comment forest as a
// single document row, mirroring the nested shape the original kept in its
// document store
type CommentRepository interface {
	GetForest(ctx context.Context, articleID string) ([]forest.Comment, error)
	SaveForest(ctx context.Context, articleID string, f []forest.Comment) error
	DeleteForest(ctx context.Context, articleID string) error
}

// StudyRepository defines the interface for study data operations
type StudyRepository interface {
	Create(ctx context.Context, study *models.Study) error
	Update(ctx context.Context, study *models.Study) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Study, error)
	List(ctx context.Context) ([]*models.Study, error)
	GetActive(ctx context.Context) ([]*models.Study, error)
	Count(ctx context.Context) (int, error)
}

// EventRepository defines the interface for interaction event logging
type EventRepository interface {
	Append(ctx context.Context, event *models.InteractionEvent) error
	Count(ctx context.Context) (int, error)
	CountByType(ctx context.Context) (map[string]int, error)
	Stream(ctx context.Context, studyID string, callback func(*models.InteractionEvent) error) error
	StreamByResponse(ctx context.Context, responseID string, callback func(*models.InteractionEvent) error) error
}

// AdminRepository defines the interface for admin account operations
type AdminRepository interface {
	Create(ctx context.Context, user *models.AdminUser) error
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	Count(ctx context.Context) (int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Article ArticleRepository
	Comment CommentRepository
	Study   StudyRepository
	Event   EventRepository
	Admin   AdminRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Article: NewArticleRepo(db),
		Comment: NewCommentRepo(db),
		Study:   NewStudyRepo(db),
		Event:   NewEventRepo(db),
		Admin:   NewAdminRepo(db),
	}
}
