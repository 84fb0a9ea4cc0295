package service_test

import (
	"time"

	"github.com/engagingnewsproject/article-experiment-api/internal/config"
	"github.com/engagingnewsproject/article-experiment-api/internal/mocks"
	"github.com/engagingnewsproject/article-experiment-api/internal/repository"
	"github.com/engagingnewsproject/article-experiment-api/internal/service"
	"github.com/rs/zerolog"
)

type testRepos struct {
	article *mocks.MockArticleRepo
	comment *mocks.MockCommentRepo
	study   *mocks.MockStudyRepo
	event   *mocks.MockEventRepo
	admin   *mocks.MockAdminRepo
	tokens  *mocks.MockTokenStore
}

func newTestServices(cfg *config.Config) (*service.Services, *testRepos) {
	r := &testRepos{
		article: mocks.NewMockArticleRepo(),
		comment: mocks.NewMockCommentRepo(),
		study:   mocks.NewMockStudyRepo(),
		event:   mocks.NewMockEventRepo(),
		admin:   mocks.NewMockAdminRepo(),
		tokens:  mocks.NewMockTokenStore(),
	}

	repos := &repository.Repositories{
		Article: r.article,
		Comment: r.comment,
		Study:   r.study,
		Event:   r.event,
		Admin:   r.admin,
	}

	if cfg == nil {
		cfg = testConfig()
	}

	return service.NewServices(repos, r.tokens, cfg, zerolog.Nop()), r
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret: "test-secret",
			TokenTTL:  time.Hour,
		},
		Import: config.ImportConfig{MaxUploadSize: 10 * 1024 * 1024},
	}
}
