package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/engagingnewsproject/article-experiment-api/internal/api"
	"github.com/engagingnewsproject/article-experiment-api/internal/config"
	"github.com/engagingnewsproject/article-experiment-api/internal/forest"
	"github.com/engagingnewsproject/article-experiment-api/internal/mocks"
	"github.com/engagingnewsproject/article-experiment-api/internal/models"
	"github.com/engagingnewsproject/article-experiment-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type testMocks struct {
	article *mocks.MockArticleService
	comment *mocks.MockCommentService
	imports *mocks.MockImportService
	export  *mocks.MockExportService
	event   *mocks.MockEventService
	auth    *mocks.MockAuthService
	study   *mocks.MockStudyService
}

func setupTestRouter() (*gin.Engine, *testMocks) {
	gin.SetMode(gin.TestMode)

	m := &testMocks{
		article: mocks.NewMockArticleService(),
		comment: mocks.NewMockCommentService(),
		imports: mocks.NewMockImportService(),
		export:  mocks.NewMockExportService(),
		event:   mocks.NewMockEventService(),
		auth:    mocks.NewMockAuthService(),
		study:   mocks.NewMockStudyService(),
	}

	services := &service.Services{
		Article: m.article,
		Comment: m.comment,
		Import:  m.imports,
		Export:  m.export,
		Event:   m.event,
		Auth:    m.auth,
		Study:   m.study,
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "8080"},
		Import: config.ImportConfig{MaxUploadSize: 10 * 1024 * 1024},
	}

	log := zerolog.Nop()
	router := api.NewRouter(services, cfg, log)

	return router, m
}

// adminSession registers a valid token on the mock auth service and
// returns the Authorization header value for it
func adminSession(m *testMocks) string {
	m.auth.ValidTokens["test-token"] = &service.SessionClaims{
		UserID: "admin-1",
		Email:  "researcher@example.edu",
	}
	return "Bearer test-token"
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := setupTestRouter()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)

	if response["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", response["status"])
	}
	if response["service"] != "article-experiment-api" {
		t.Errorf("Expected service name, got %v", response["service"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, m := setupTestRouter()
	m.export.Counts["articles"] = 12
	m.export.Counts["studies"] = 3
	m.export.Counts["events"] = 4500

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)

	db := response["database"].(map[string]interface{})
	if db["events"].(float64) != 4500 {
		t.Errorf("Expected 4500 events, got %v", db["events"])
	}
}

func TestRenderArticle(t *testing.T) {
	router, m := setupTestRouter()

	now := time.Now()
	m.article.Views["dog-parks"] = &models.ArticleView{
		Article: models.Article{
			ID:              "article-1",
			Slug:            "dog-parks",
			Title:           "City Council Debates New Dog Park",
			CommentsDisplay: true,
		},
		Comments: []forest.Comment{
			forest.New("default_0", "Sam", "First!", now),
		},
	}

	req := httptest.NewRequest("GET", "/v1/render/dog-parks", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var view models.ArticleView
	json.Unmarshal(w.Body.Bytes(), &view)

	if view.Slug != "dog-parks" {
		t.Errorf("Expected slug 'dog-parks', got '%s'", view.Slug)
	}
	if len(view.Comments) != 1 {
		t.Errorf("Expected 1 comment, got %d", len(view.Comments))
	}
}

func TestRenderArticle_NotFound(t *testing.T) {
	router, _ := setupTestRouter()

	req := httptest.NewRequest("GET", "/v1/render/nonexistent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestPostComment(t *testing.T) {
	router, _ := setupTestRouter()

	body := `{"name":"Alex","content":"Interesting take."}`
	req := httptest.NewRequest("POST", "/v1/articles/article-1/comments", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d. Body: %s", w.Code, w.Body.String())
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)

	emit := response["emit"].(map[string]interface{})
	if emit["type"] != "ARTICLE_INTERACTION" {
		t.Errorf("Expected ARTICLE_INTERACTION emit, got %v", emit["type"])
	}
	if emit["interactionType"] != "comment" {
		t.Errorf("Expected interactionType 'comment', got %v", emit["interactionType"])
	}
}

func TestPostReply(t *testing.T) {
	router, _ := setupTestRouter()

	body := `{"name":"","content":"Replying here."}`
	req := httptest.NewRequest("POST", "/v1/articles/article-1/comments/default_0/replies", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d. Body: %s", w.Code, w.Body.String())
	}
}

func TestVote_InvalidDirection(t *testing.T) {
	router, _ := setupTestRouter()

	body := `{"direction":"sideways"}`
	req := httptest.NewRequest("POST", "/v1/articles/article-1/comments/default_0/vote", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("direction must be up or down")) {
		t.Errorf("Expected direction error, got: %s", w.Body.String())
	}
}

func TestVote(t *testing.T) {
	router, _ := setupTestRouter()

	body := `{"direction":"up"}`
	req := httptest.NewRequest("POST", "/v1/articles/article-1/comments/default_0/vote", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
}

func TestLogEvent(t *testing.T) {
	router, m := setupTestRouter()

	body := `{"article_id":"article-1","response_id":"R_abc123","event_type":"click","payload":{"target":"related-link"}}`
	req := httptest.NewRequest("POST", "/v1/events", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d. Body: %s", w.Code, w.Body.String())
	}
	if len(m.event.Logged) != 1 {
		t.Fatalf("Expected 1 logged event, got %d", len(m.event.Logged))
	}
	if m.event.Logged[0].EventType != models.EventClick {
		t.Errorf("Expected click event, got %s", m.event.Logged[0].EventType)
	}
}

func TestBridge_ButtonClick(t *testing.T) {
	router, m := setupTestRouter()

	body := `{"article_id":"article-1","message":{"type":"ARTICLE_BUTTON_CLICK","buttonType":"share"}}`
	req := httptest.NewRequest("POST", "/v1/bridge", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d. Body: %s", w.Code, w.Body.String())
	}
	if len(m.event.Logged) != 1 || m.event.Logged[0].EventType != models.EventClick {
		t.Errorf("Expected a click event, got %+v", m.event.Logged)
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	emit := response["emit"].(map[string]interface{})
	if emit["type"] != "ARTICLE_BUTTON_CLICK" || emit["buttonType"] != "share" {
		t.Errorf("Expected button click echoed for forwarding, got %v", emit)
	}
}

func TestBridge_LegacyEnvelope(t *testing.T) {
	router, m := setupTestRouter()

	body := `{"article_id":"article-1","message":{"qualtricsResponseId":"R_legacy"}}`
	req := httptest.NewRequest("POST", "/v1/bridge", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	if len(m.event.Logged) != 1 || m.event.Logged[0].ResponseID != "R_legacy" {
		t.Errorf("Expected page view for R_legacy, got %+v", m.event.Logged)
	}
	if m.event.Logged[0].EventType != models.EventPageView {
		t.Errorf("Expected page_view event, got %s", m.event.Logged[0].EventType)
	}
}

func TestBridge_UnknownShape(t *testing.T) {
	router, _ := setupTestRouter()

	body := `{"article_id":"article-1","message":{"foo":"bar"}}`
	req := httptest.NewRequest("POST", "/v1/bridge", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestLogin(t *testing.T) {
	router, m := setupTestRouter()

	m.auth.LoginFunc = func(_ context.Context, email, password string) (*models.LoginResponse, error) {
		if email == "researcher@example.edu" && password == "secret" {
			return &models.LoginResponse{Token: "issued-token", ExpiresAt: time.Now().Add(12 * time.Hour)}, nil
		}
		return nil, models.ErrInvalidCredentials
	}

	body := `{"email":"researcher@example.edu","password":"secret"}`
	req := httptest.NewRequest("POST", "/v1/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	var response models.LoginResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	if response.Token != "issued-token" {
		t.Errorf("Expected issued token, got '%s'", response.Token)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	router, _ := setupTestRouter()

	body := `{"email":"nobody@example.edu","password":"wrong"}`
	req := httptest.NewRequest("POST", "/v1/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestAdminRoutes_RequireAuth(t *testing.T) {
	router, _ := setupTestRouter()

	tests := []struct {
		method string
		url    string
	}{
		{"GET", "/v1/admin/articles"},
		{"POST", "/v1/admin/articles"},
		{"GET", "/v1/admin/studies"},
		{"GET", "/v1/admin/exports?resource=events"},
		{"DELETE", "/v1/admin/articles/article-1/comments/c1"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.url, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected status 401, got %d", tt.method, tt.url, w.Code)
		}
	}
}

func TestAdminRoutes_InvalidToken(t *testing.T) {
	router, _ := setupTestRouter()

	req := httptest.NewRequest("GET", "/v1/admin/articles", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestCreateArticle(t *testing.T) {
	router, m := setupTestRouter()
	token := adminSession(m)

	body := `{"slug":"dog-parks","title":"City Council Debates New Dog Park","content":"Full text.","comments_display":true}`
	req := httptest.NewRequest("POST", "/v1/admin/articles", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d. Body: %s", w.Code, w.Body.String())
	}

	var article models.Article
	json.Unmarshal(w.Body.Bytes(), &article)
	if article.Slug != "dog-parks" {
		t.Errorf("Expected slug 'dog-parks', got '%s'", article.Slug)
	}
}

func TestDeleteComment_Admin(t *testing.T) {
	router, m := setupTestRouter()
	token := adminSession(m)

	req := httptest.NewRequest("DELETE", "/v1/admin/articles/article-1/comments/default_0", nil)
	req.Header.Set("Authorization", token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	if len(m.comment.Removed) != 1 || m.comment.Removed[0] != "default_0" {
		t.Errorf("Expected removal of default_0, got %v", m.comment.Removed)
	}
}

func TestImportDefaultComments(t *testing.T) {
	router, m := setupTestRouter()
	token := adminSession(m)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", "seed.csv")
	part.Write([]byte("id,parent_id,user_id,written_at,comment\n1,,Sam,2 hours ago,First!\n"))
	writer.Close()

	req := httptest.NewRequest("POST", "/v1/admin/articles/article-1/default-comments", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	if len(m.imports.Imported) != 1 || m.imports.Imported[0] != "article-1" {
		t.Errorf("Expected import for article-1, got %v", m.imports.Imported)
	}
}

func TestImportDefaultComments_MissingFile(t *testing.T) {
	router, m := setupTestRouter()
	token := adminSession(m)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.Close()

	req := httptest.NewRequest("POST", "/v1/admin/articles/article-1/default-comments", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestClearDefaultComments(t *testing.T) {
	router, m := setupTestRouter()
	token := adminSession(m)

	req := httptest.NewRequest("DELETE", "/v1/admin/articles/article-1/default-comments", nil)
	req.Header.Set("Authorization", token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if len(m.imports.Cleared) != 1 {
		t.Errorf("Expected 1 clear call, got %d", len(m.imports.Cleared))
	}
}

func TestExportStream_ValidationErrors(t *testing.T) {
	router, m := setupTestRouter()
	token := adminSession(m)

	tests := []struct {
		name           string
		url            string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "invalid resource",
			url:            "/v1/admin/exports?resource=articles",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "only events can be exported",
		},
		{
			name:           "invalid format",
			url:            "/v1/admin/exports?resource=events&format=xml",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "format must be csv or ndjson",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.url, nil)
			req.Header.Set("Authorization", token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if !bytes.Contains(w.Body.Bytes(), []byte(tt.expectedError)) {
				t.Errorf("Expected error '%s' in response, got: %s", tt.expectedError, w.Body.String())
			}
		})
	}
}

func TestExportStream_CSV(t *testing.T) {
	router, m := setupTestRouter()
	token := adminSession(m)

	m.export.Events = []*models.InteractionEvent{
		{ID: "evt-1", EventType: models.EventClick},
	}

	req := httptest.NewRequest("GET", "/v1/admin/exports?resource=events&format=csv", nil)
	req.Header.Set("Authorization", token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("evt-1")) {
		t.Errorf("Expected event row in CSV, got: %s", w.Body.String())
	}
}

func TestMergeQualtrics(t *testing.T) {
	router, m := setupTestRouter()
	token := adminSession(m)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", "responses.csv")
	part.Write([]byte("ResponseId,Q1\nResponse ID,Question 1\n{\"ImportId\":\"_recordId\"},x\nR_abc123,5\n"))
	writer.Close()

	req := httptest.NewRequest("POST", "/v1/admin/exports/qualtrics-merge", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("_match_status")) {
		t.Errorf("Expected merged CSV with _match_status column, got: %s", w.Body.String())
	}
}

func TestStudyCRUD(t *testing.T) {
	router, m := setupTestRouter()
	token := adminSession(m)

	body := `{"name":"Misinformation Study Fall 2026","active":true}`
	req := httptest.NewRequest("POST", "/v1/admin/studies", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d. Body: %s", w.Code, w.Body.String())
	}

	var study models.Study
	json.Unmarshal(w.Body.Bytes(), &study)

	req = httptest.NewRequest("GET", "/v1/admin/studies/"+study.ID, nil)
	req.Header.Set("Authorization", token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	req = httptest.NewRequest("DELETE", "/v1/admin/studies/"+study.ID, nil)
	req.Header.Set("Authorization", token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestCORSHeaders(t *testing.T) {
	router, _ := setupTestRouter()

	req := httptest.NewRequest("OPTIONS", "/v1/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204 for OPTIONS, got %d", w.Code)
	}

	allowOrigin := w.Header().Get("Access-Control-Allow-Origin")
	if allowOrigin != "*" {
		t.Errorf("Expected Access-Control-Allow-Origin '*', got '%s'", allowOrigin)
	}
}
