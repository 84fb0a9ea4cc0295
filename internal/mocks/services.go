package mocks

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/engagingnewsproject/article-experiment-api/internal/bridge"
	"github.com/engagingnewsproject/article-experiment-api/internal/forest"
	"github.com/engagingnewsproject/article-experiment-api/internal/models"
	"github.com/engagingnewsproject/article-experiment-api/internal/service"
)

// MockArticleService is a mock implementation of ArticleService
type MockArticleService struct {
	Articles  map[string]*models.Article
	Views     map[string]*models.ArticleView // keyed by slug
	CreateErr error
}

var _ service.ArticleService = (*MockArticleService)(nil)

func NewMockArticleService() *MockArticleService {
	return &MockArticleService{
		Articles: make(map[string]*models.Article),
		Views:    make(map[string]*models.ArticleView),
	}
}

func (m *MockArticleService) Create(ctx context.Context, req *models.ArticleRequest) (*models.Article, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	article := &models.Article{
		ID:              "test-article-id",
		Slug:            req.Slug,
		Title:           req.Title,
		Content:         req.Content,
		CommentsDisplay: req.CommentsDisplay,
		CreatedAt:       time.Now(),
	}
	m.Articles[article.ID] = article
	return article, nil
}

func (m *MockArticleService) Update(ctx context.Context, id string, req *models.ArticleRequest) (*models.Article, error) {
	article, ok := m.Articles[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	article.Slug = req.Slug
	article.Title = req.Title
	article.Content = req.Content
	return article, nil
}

func (m *MockArticleService) Delete(ctx context.Context, id string) error {
	if _, ok := m.Articles[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.Articles, id)
	return nil
}

func (m *MockArticleService) Get(ctx context.Context, id string) (*models.Article, error) {
	article, ok := m.Articles[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return article, nil
}

func (m *MockArticleService) List(ctx context.Context) ([]*models.Article, error) {
	var articles []*models.Article
	for _, article := range m.Articles {
		articles = append(articles, article)
	}
	return articles, nil
}

func (m *MockArticleService) Render(ctx context.Context, slug string) (*models.ArticleView, error) {
	view, ok := m.Views[slug]
	if !ok {
		return nil, models.ErrNotFound
	}
	return view, nil
}

// MockCommentService is a mock implementation of CommentService
type MockCommentService struct {
	Results map[string]*service.CommentResult // keyed by article ID
	Err     error
	Removed []string
}

var _ service.CommentService = (*MockCommentService)(nil)

func NewMockCommentService() *MockCommentService {
	return &MockCommentService{Results: make(map[string]*service.CommentResult)}
}

func (m *MockCommentService) result(articleID, interaction string) (*service.CommentResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if r, ok := m.Results[articleID]; ok {
		return r, nil
	}
	return &service.CommentResult{
		Forest: []forest.Comment{},
		Emit:   bridge.Interaction(interaction),
	}, nil
}

func (m *MockCommentService) PostComment(ctx context.Context, articleID, name, content string) (*service.CommentResult, error) {
	return m.result(articleID, "comment")
}

func (m *MockCommentService) PostReply(ctx context.Context, articleID, parentID, name, content string) (*service.CommentResult, error) {
	return m.result(articleID, "reply")
}

func (m *MockCommentService) Vote(ctx context.Context, articleID, commentID string, kind forest.VoteKind) (*service.CommentResult, error) {
	return m.result(articleID, "vote")
}

func (m *MockCommentService) Remove(ctx context.Context, articleID, commentID string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Removed = append(m.Removed, commentID)
	return nil
}

// MockImportService is a mock implementation of ImportService
type MockImportService struct {
	ImportFunc func(ctx context.Context, articleID string, file io.Reader) ([]forest.Comment, error)
	Imported   []string
	Cleared    []string
}

var _ service.ImportService = (*MockImportService)(nil)

func NewMockImportService() *MockImportService {
	return &MockImportService{}
}

func (m *MockImportService) ImportDefaultComments(ctx context.Context, articleID string, file io.Reader) ([]forest.Comment, error) {
	if m.ImportFunc != nil {
		return m.ImportFunc(ctx, articleID, file)
	}
	m.Imported = append(m.Imported, articleID)
	return []forest.Comment{}, nil
}

func (m *MockImportService) ClearDefaultComments(ctx context.Context, articleID string) error {
	m.Cleared = append(m.Cleared, articleID)
	return nil
}

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	Counts map[string]int
	Events []*models.InteractionEvent
}

var _ service.ExportService = (*MockExportService)(nil)

func NewMockExportService() *MockExportService {
	return &MockExportService{Counts: make(map[string]int)}
}

func (m *MockExportService) StreamEvents(ctx context.Context, w http.ResponseWriter, studyID, responseID, format string) error {
	if format == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		writer := csv.NewWriter(w)
		writer.Write([]string{"id", "event_type"})
		for _, event := range m.Events {
			writer.Write([]string{event.ID, string(event.EventType)})
		}
		writer.Flush()
		return nil
	}
	for _, event := range m.Events {
		data, _ := json.Marshal(event)
		w.Write(data)
		w.Write([]byte("\n"))
	}
	return nil
}

func (m *MockExportService) MergeQualtrics(ctx context.Context, w http.ResponseWriter, responsesCSV io.Reader) error {
	w.Header().Set("Content-Type", "text/csv")
	w.Write([]byte("_match_status\n"))
	return nil
}

func (m *MockExportService) GetCounts(ctx context.Context) (map[string]int, error) {
	return m.Counts, nil
}

// MockEventService is a mock implementation of EventService
type MockEventService struct {
	Logged []*models.InteractionEvent
	Err    error
}

var _ service.EventService = (*MockEventService)(nil)

func NewMockEventService() *MockEventService {
	return &MockEventService{Logged: make([]*models.InteractionEvent, 0)}
}

func (m *MockEventService) Log(ctx context.Context, req *models.EventRequest) (*models.InteractionEvent, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	event := &models.InteractionEvent{
		ID:         "test-event-id",
		StudyID:    req.StudyID,
		ArticleID:  req.ArticleID,
		ResponseID: req.ResponseID,
		EventType:  req.EventType,
		Payload:    req.Payload,
		CreatedAt:  time.Now(),
	}
	m.Logged = append(m.Logged, event)
	return event, nil
}

func (m *MockEventService) LogPageViewOnce(ctx context.Context, req *models.EventRequest) (*models.InteractionEvent, bool, error) {
	req.EventType = models.EventPageView
	event, err := m.Log(ctx, req)
	if err != nil {
		return nil, false, err
	}
	return event, true, nil
}

// MockAuthService is a mock implementation of AuthService
type MockAuthService struct {
	ValidTokens map[string]*service.SessionClaims
	LoginFunc   func(ctx context.Context, email, password string) (*models.LoginResponse, error)
	LoggedOut   []string
}

var _ service.AuthService = (*MockAuthService)(nil)

func NewMockAuthService() *MockAuthService {
	return &MockAuthService{ValidTokens: make(map[string]*service.SessionClaims)}
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, models.ErrInvalidCredentials
}

func (m *MockAuthService) Validate(ctx context.Context, token string) (*service.SessionClaims, error) {
	claims, ok := m.ValidTokens[token]
	if !ok {
		return nil, models.ErrInvalidCredentials
	}
	return claims, nil
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	if _, ok := m.ValidTokens[token]; !ok {
		return models.ErrInvalidCredentials
	}
	delete(m.ValidTokens, token)
	m.LoggedOut = append(m.LoggedOut, token)
	return nil
}

func (m *MockAuthService) EnsureSeedAdmin(ctx context.Context) error {
	return nil
}

// MockStudyService is a mock implementation of StudyService
type MockStudyService struct {
	Studies map[string]*models.Study
}

var _ service.StudyService = (*MockStudyService)(nil)

func NewMockStudyService() *MockStudyService {
	return &MockStudyService{Studies: make(map[string]*models.Study)}
}

func (m *MockStudyService) Create(ctx context.Context, req *models.StudyRequest) (*models.Study, error) {
	study := &models.Study{ID: "test-study-id", Name: req.Name, Active: req.Active, CreatedAt: time.Now()}
	m.Studies[study.ID] = study
	return study, nil
}

func (m *MockStudyService) Update(ctx context.Context, id string, req *models.StudyRequest) (*models.Study, error) {
	study, ok := m.Studies[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	study.Name = req.Name
	study.Active = req.Active
	return study, nil
}

func (m *MockStudyService) Delete(ctx context.Context, id string) error {
	if _, ok := m.Studies[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.Studies, id)
	return nil
}

func (m *MockStudyService) Get(ctx context.Context, id string) (*models.Study, error) {
	study, ok := m.Studies[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return study, nil
}

func (m *MockStudyService) List(ctx context.Context) ([]*models.Study, error) {
	var studies []*models.Study
	for _, study := range m.Studies {
		studies = append(studies, study)
	}
	return studies, nil
}

func (m *MockStudyService) ListActive(ctx context.Context) ([]*models.Study, error) {
	var studies []*models.Study
	for _, study := range m.Studies {
		if study.Active {
			studies = append(studies, study)
		}
	}
	return studies, nil
}
