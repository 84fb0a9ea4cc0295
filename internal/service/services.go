package service

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/engagingnewsproject/article-experiment-api/internal/config"
	"github.com/engagingnewsproject/article-experiment-api/internal/forest"
	"github.com/engagingnewsproject/article-experiment-api/internal/models"
	"github.com/engagingnewsproject/article-experiment-api/internal/repository"
	"github.com/rs/zerolog"
)

// ArticleService defines article authoring and rendering operations
type ArticleService interface {
	Create(ctx context.Context, req *models.ArticleRequest) (*models.Article, error)
	Update(ctx context.Context, id string, req *models.ArticleRequest) (*models.Article, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.Article, error)
	List(ctx context.Context) ([]*models.Article, error)
	Render(ctx context.Context, slug string) (*models.ArticleView, error)
}

// CommentService defines visitor comment operations over an article's
// participant forest
type CommentService interface {
	PostComment(ctx context.Context, articleID, name, content string) (*CommentResult, error)
	PostReply(ctx context.Context, articleID, parentID, name, content string) (*CommentResult, error)
	Vote(ctx context.Context, articleID, commentID string, kind forest.VoteKind) (*CommentResult, error)
	Remove(ctx context.Context, articleID, commentID string) error
}

// ImportService defines default-comment CSV import operations
type ImportService interface {
	ImportDefaultComments(ctx context.Context, articleID string, file io.Reader) ([]forest.Comment, error)
	ClearDefaultComments(ctx context.Context, articleID string) error
}

// ExportService defines interaction data export operations
type ExportService interface {
	StreamEvents(ctx context.Context, w http.ResponseWriter, studyID, responseID, format string) error
	MergeQualtrics(ctx context.Context, w http.ResponseWriter, responsesCSV io.Reader) error
	GetCounts(ctx context.Context) (map[string]int, error)
}

// EventService defines the interaction logging pipeline
type EventService interface {
	Log(ctx context.Context, req *models.EventRequest) (*models.InteractionEvent, error)
	LogPageViewOnce(ctx context.Context, req *models.EventRequest) (*models.InteractionEvent, bool, error)
}

// AuthService defines the admin session gate
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Validate(ctx context.Context, token string) (*SessionClaims, error)
	Logout(ctx context.Context, token string) error
	EnsureSeedAdmin(ctx context.Context) error
}

// StudyService defines study authoring operations
type StudyService interface {
	Create(ctx context.Context, req *models.StudyRequest) (*models.Study, error)
	Update(ctx context.Context, id string, req *models.StudyRequest) (*models.Study, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.Study, error)
	List(ctx context.Context) ([]*models.Study, error)
	ListActive(ctx context.Context) ([]*models.Study, error)
}

// TokenStore tracks revoked session tokens until they expire
type TokenStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Services holds all service interfaces
type Services struct {
	Article ArticleService
	Comment CommentService
	Import  ImportService
	Export  ExportService
	Event   EventService
	Auth    AuthService
	Study   StudyService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, tokens TokenStore, cfg *config.Config, log zerolog.Logger) *Services {
	eventSvc := newEventService(repos.Event, log)

	return &Services{
		Article: newArticleService(repos, log),
		Comment: newCommentService(repos, eventSvc, log),
		Import:  newImportService(repos, log),
		Export:  newExportService(repos, log),
		Event:   eventSvc,
		Auth:    newAuthService(repos.Admin, tokens, &cfg.Auth, log),
		Study:   newStudyService(repos.Study, log),
	}
}
