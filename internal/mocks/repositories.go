package mocks

import (
	"context"
	"sort"
	"time"

	"github.com/engagingnewsproject/article-experiment-api/internal/forest"
	"github.com/engagingnewsproject/article-experiment-api/internal/models"
	"github.com/engagingnewsproject/article-experiment-api/internal/repository"
	"github.com/engagingnewsproject/article-experiment-api/internal/service"
)

// MockArticleRepo is an in-memory implementation of ArticleRepository
type MockArticleRepo struct {
	Articles map[string]*models.Article
	Err      error // when set, every method fails with it
}

var _ repository.ArticleRepository = (*MockArticleRepo)(nil)

func NewMockArticleRepo() *MockArticleRepo {
	return &MockArticleRepo{Articles: make(map[string]*models.Article)}
}

func (m *MockArticleRepo) Create(ctx context.Context, article *models.Article) error {
	if m.Err != nil {
		return m.Err
	}
	copied := *article
	m.Articles[article.ID] = &copied
	return nil
}

func (m *MockArticleRepo) Update(ctx context.Context, article *models.Article) error {
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Articles[article.ID]; !ok {
		return models.ErrNotFound
	}
	copied := *article
	m.Articles[article.ID] = &copied
	return nil
}

func (m *MockArticleRepo) Delete(ctx context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Articles[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.Articles, id)
	return nil
}

func (m *MockArticleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	article, ok := m.Articles[id]
	if !ok {
		return nil, nil
	}
	copied := *article
	return &copied, nil
}

func (m *MockArticleRepo) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, article := range m.Articles {
		if article.Slug == slug {
			copied := *article
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockArticleRepo) List(ctx context.Context) ([]*models.Article, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var articles []*models.Article
	for _, article := range m.Articles {
		copied := *article
		articles = append(articles, &copied)
	}
	sort.Slice(articles, func(i, j int) bool {
		return articles[i].CreatedAt.After(articles[j].CreatedAt)
	})
	return articles, nil
}

func (m *MockArticleRepo) SlugExists(ctx context.Context, slug string, excludeID string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	for _, article := range m.Articles {
		if article.Slug == slug && article.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockArticleRepo) SetDefaultComments(ctx context.Context, articleID string, comments []forest.Comment) error {
	if m.Err != nil {
		return m.Err
	}
	article, ok := m.Articles[articleID]
	if !ok {
		return models.ErrNotFound
	}
	if comments == nil {
		comments = []forest.Comment{}
	}
	article.DefaultComments = comments
	return nil
}

func (m *MockArticleRepo) Count(ctx context.Context) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return len(m.Articles), nil
}

// MockCommentRepo is an in-memory implementation of CommentRepository
type MockCommentRepo struct {
	Forests map[string][]forest.Comment
	GetErr  error
	SaveErr error
}

var _ repository.CommentRepository = (*MockCommentRepo)(nil)

func NewMockCommentRepo() *MockCommentRepo {
	return &MockCommentRepo{Forests: make(map[string][]forest.Comment)}
}

func (m *MockCommentRepo) GetForest(ctx context.Context, articleID string) ([]forest.Comment, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	f, ok := m.Forests[articleID]
	if !ok {
		return []forest.Comment{}, nil
	}
	return f, nil
}

func (m *MockCommentRepo) SaveForest(ctx context.Context, articleID string, f []forest.Comment) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Forests[articleID] = f
	return nil
}

func (m *MockCommentRepo) DeleteForest(ctx context.Context, articleID string) error {
	delete(m.Forests, articleID)
	return nil
}

// MockStudyRepo is an in-memory implementation of StudyRepository
type MockStudyRepo struct {
	Studies map[string]*models.Study
	Err     error
}

var _ repository.StudyRepository = (*MockStudyRepo)(nil)

func NewMockStudyRepo() *MockStudyRepo {
	return &MockStudyRepo{Studies: make(map[string]*models.Study)}
}

func (m *MockStudyRepo) Create(ctx context.Context, study *models.Study) error {
	if m.Err != nil {
		return m.Err
	}
	copied := *study
	m.Studies[study.ID] = &copied
	return nil
}

func (m *MockStudyRepo) Update(ctx context.Context, study *models.Study) error {
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Studies[study.ID]; !ok {
		return models.ErrNotFound
	}
	copied := *study
	m.Studies[study.ID] = &copied
	return nil
}

func (m *MockStudyRepo) Delete(ctx context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Studies[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.Studies, id)
	return nil
}

func (m *MockStudyRepo) GetByID(ctx context.Context, id string) (*models.Study, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	study, ok := m.Studies[id]
	if !ok {
		return nil, nil
	}
	copied := *study
	return &copied, nil
}

func (m *MockStudyRepo) List(ctx context.Context) ([]*models.Study, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var studies []*models.Study
	for _, study := range m.Studies {
		copied := *study
		studies = append(studies, &copied)
	}
	return studies, nil
}

func (m *MockStudyRepo) GetActive(ctx context.Context) ([]*models.Study, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var studies []*models.Study
	for _, study := range m.Studies {
		if study.Active {
			copied := *study
			studies = append(studies, &copied)
		}
	}
	return studies, nil
}

func (m *MockStudyRepo) Count(ctx context.Context) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return len(m.Studies), nil
}

// MockEventRepo is an in-memory implementation of EventRepository
type MockEventRepo struct {
	Events    []*models.InteractionEvent
	AppendErr error
}

var _ repository.EventRepository = (*MockEventRepo)(nil)

func NewMockEventRepo() *MockEventRepo {
	return &MockEventRepo{Events: make([]*models.InteractionEvent, 0)}
}

func (m *MockEventRepo) Append(ctx context.Context, event *models.InteractionEvent) error {
	if m.AppendErr != nil {
		return m.AppendErr
	}
	copied := *event
	m.Events = append(m.Events, &copied)
	return nil
}

func (m *MockEventRepo) Count(ctx context.Context) (int, error) {
	return len(m.Events), nil
}

func (m *MockEventRepo) CountByType(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, event := range m.Events {
		counts[string(event.EventType)]++
	}
	return counts, nil
}

func (m *MockEventRepo) Stream(ctx context.Context, studyID string, callback func(*models.InteractionEvent) error) error {
	for _, event := range m.Events {
		if studyID != "" && event.StudyID != studyID {
			continue
		}
		if err := callback(event); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockEventRepo) StreamByResponse(ctx context.Context, responseID string, callback func(*models.InteractionEvent) error) error {
	for _, event := range m.Events {
		if event.ResponseID != responseID {
			continue
		}
		if err := callback(event); err != nil {
			return err
		}
	}
	return nil
}

// MockAdminRepo is an in-memory implementation of AdminRepository
type MockAdminRepo struct {
	Users map[string]*models.AdminUser // keyed by email
	Err   error
}

var _ repository.AdminRepository = (*MockAdminRepo)(nil)

func NewMockAdminRepo() *MockAdminRepo {
	return &MockAdminRepo{Users: make(map[string]*models.AdminUser)}
}

func (m *MockAdminRepo) Create(ctx context.Context, user *models.AdminUser) error {
	if m.Err != nil {
		return m.Err
	}
	copied := *user
	m.Users[user.Email] = &copied
	return nil
}

func (m *MockAdminRepo) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	user, ok := m.Users[email]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (m *MockAdminRepo) Count(ctx context.Context) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return len(m.Users), nil
}

// MockTokenStore is an in-memory implementation of the session revocation
// store
type MockTokenStore struct {
	Revoked map[string]time.Time
	Err     error
}

var _ service.TokenStore = (*MockTokenStore)(nil)

func NewMockTokenStore() *MockTokenStore {
	return &MockTokenStore{Revoked: make(map[string]time.Time)}
}

func (m *MockTokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if m.Err != nil {
		return m.Err
	}
	m.Revoked[jti] = time.Now().Add(ttl)
	return nil
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	expiry, ok := m.Revoked[jti]
	return ok && expiry.After(time.Now()), nil
}
