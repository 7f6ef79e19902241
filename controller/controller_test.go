package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"prcontacts-backend/middelware"
	"prcontacts-backend/models"
	"prcontacts-backend/repository"
	"prcontacts-backend/services"
	"prcontacts-backend/utils"
	"prcontacts-backend/utils/logger"
	"prcontacts-backend/worker"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type staticStatus struct{ status worker.Status }

func (s staticStatus) Status() worker.Status { return s.status }

type envelope struct {
	Status  string           `json:"status"`
	Code    int              `json:"code"`
	Message string           `json:"message"`
	Data    json.RawMessage  `json:"data"`
	Error   *models.APIError `json:"error"`
}

// ControllerTestSuite drives the full router against a SQLite store
type ControllerTestSuite struct {
	suite.Suite
	config *models.Config
	repo   *repository.Repository
	router *gin.Engine
	token  string
}

func (suite *ControllerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.config = &models.Config{
		AppName:         "PR Contacts Backend",
		AppVersion:      "test",
		BasePath:        "/api",
		JWTSecret:       "test-secret",
		JWTExpiresIn:    time.Hour,
		StorageDriver:   models.StorageDriverSQLite,
		DefaultPageSize: 10,
		DefaultRoles:    []string{"user"},
		CORSOrigins:     []string{"*"},
	}
	suite.buildRouter()
	suite.token = suite.registerAndLogin("jane@example.com", "password123")
}

func (suite *ControllerTestSuite) buildRouter() {
	log := logger.NewNopLogger()
	store, err := repository.NewSQLiteStore(filepath.Join(suite.T().TempDir(), "api.db"), log)
	require.NoError(suite.T(), err)
	suite.T().Cleanup(func() { store.Close() })

	suite.repo = repository.NewSQLiteRepository(store)
	jwtManager := middelware.NewJWTManager(suite.config, log, suite.repo.GetUserRepository())
	svc := services.NewService(suite.repo, jwtManager, log, suite.config)
	status := staticStatus{worker.Status{Running: true, Schedule: "@every 15m"}}
	suite.router = NewController(suite.config, log, svc, jwtManager, status).NewRouter()
}

func (suite *ControllerTestSuite) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(suite.T(), err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(suite.T(), err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *ControllerTestSuite) decode(w *httptest.ResponseRecorder, data interface{}) envelope {
	var env envelope
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	assert.Equal(suite.T(), w.Code, env.Code)
	if data != nil {
		require.NoError(suite.T(), json.Unmarshal(env.Data, data))
	}
	return env
}

func (suite *ControllerTestSuite) registerAndLogin(email, password string) string {
	w := suite.do(http.MethodPost, "/api/auth/register", models.RegisterUser{
		Email: email, Password: password, Name: "Test User",
	}, "")
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
	return suite.login(email, password)
}

func (suite *ControllerTestSuite) login(email, password string) string {
	w := suite.do(http.MethodPost, "/api/auth/login", models.LoginRequest{Email: email, Password: password}, "")
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())
	var resp models.LoginResponse
	suite.decode(w, &resp)
	return resp.AccessToken
}

func (suite *ControllerTestSuite) createContact(in models.ContactInput) models.Contact {
	w := suite.do(http.MethodPost, "/api/contacts", in, suite.token)
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
	var c models.Contact
	suite.decode(w, &c)
	return c
}

func (suite *ControllerTestSuite) TestHealth() {
	w := suite.do(http.MethodGet, "/api/health", nil, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var data map[string]interface{}
	env := suite.decode(w, &data)
	assert.Equal(suite.T(), "success", env.Status)
	assert.Equal(suite.T(), "healthy", data["status"])
	assert.Equal(suite.T(), "sqlite", data["storage"])
	assert.Equal(suite.T(), true, data["worker"].(map[string]interface{})["running"])
}

func (suite *ControllerTestSuite) TestAuthRequired() {
	w := suite.do(http.MethodGet, "/api/contacts", nil, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	env := suite.decode(w, nil)
	assert.Equal(suite.T(), "AuthenticationError", env.Error.Type)

	w = suite.do(http.MethodGet, "/api/contacts", nil, "not-a-jwt")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *ControllerTestSuite) TestRegisterAndLogin() {
	w := suite.do(http.MethodPost, "/api/auth/register", models.RegisterUser{
		Email: "JANE@example.com", Password: "password123", Name: "Dup",
	}, "")
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
	assert.Equal(suite.T(), "ConflictError", suite.decode(w, nil).Error.Type)

	w = suite.do(http.MethodPost, "/api/auth/register", map[string]string{"email": "bad"}, "")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodPost, "/api/auth/login", models.LoginRequest{
		Email: "jane@example.com", Password: "wrong-password",
	}, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)

	w = suite.do(http.MethodGet, "/api/auth/profile", nil, suite.token)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	var user models.User
	suite.decode(w, &user)
	assert.Equal(suite.T(), "jane@example.com", user.Email)
	assert.NotContains(suite.T(), w.Body.String(), "password")
}

func (suite *ControllerTestSuite) TestValidateToken() {
	w := suite.do(http.MethodPost, "/api/auth/validate", map[string]string{"token": suite.token}, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	var data map[string]interface{}
	suite.decode(w, &data)
	assert.Equal(suite.T(), true, data["valid"])

	w = suite.do(http.MethodPost, "/api/auth/validate", map[string]string{"token": "garbage"}, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *ControllerTestSuite) TestLoginRateLimited() {
	suite.config.AuthRatePerMinute = 1
	suite.config.AuthRateBurst = 2
	suite.buildRouter()

	creds := models.LoginRequest{Email: "nobody@example.com", Password: "password123"}
	for i := 0; i < 2; i++ {
		w := suite.do(http.MethodPost, "/api/auth/login", creds, "")
		assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	}

	w := suite.do(http.MethodPost, "/api/auth/login", creds, "")
	assert.Equal(suite.T(), http.StatusTooManyRequests, w.Code)
	assert.Equal(suite.T(), "RateLimitError", suite.decode(w, nil).Error.Type)
	assert.NotEmpty(suite.T(), w.Header().Get("Retry-After"))

	// validate is not throttled
	w = suite.do(http.MethodPost, "/api/auth/validate", map[string]string{"token": "garbage"}, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *ControllerTestSuite) TestLogoutRevokesToken() {
	w := suite.do(http.MethodPost, "/api/auth/logout", nil, suite.token)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.do(http.MethodGet, "/api/contacts", nil, suite.token)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *ControllerTestSuite) TestContactLifecycle() {
	created := suite.createContact(models.ContactInput{
		Name:         "Jane Doe",
		Organization: "Daily Planet",
		Email:        "not-an-email",
		Tags:         []string{"press"},
		ContactPerson: &models.ContactPerson{
			Name: "Sam", Relationship: "assistant",
		},
	})
	assert.NotEmpty(suite.T(), created.ID)
	assert.False(suite.T(), created.CreatedAt.IsZero())
	assert.Equal(suite.T(), "not-an-email", created.Email)

	w := suite.do(http.MethodGet, "/api/contacts/"+created.ID, nil, suite.token)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	var got models.Contact
	suite.decode(w, &got)
	assert.Equal(suite.T(), created.Name, got.Name)
	assert.Equal(suite.T(), "Sam", got.ContactPerson.Name)

	w = suite.do(http.MethodPatch, "/api/contacts/"+created.ID, map[string]interface{}{
		"position": "Editor",
		"tags":     []string{"press", "tv"},
	}, suite.token)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	var updated models.Contact
	suite.decode(w, &updated)
	assert.Equal(suite.T(), "Editor", updated.Position)
	assert.Equal(suite.T(), "Daily Planet", updated.Organization)
	assert.Equal(suite.T(), []string{"press", "tv"}, updated.Tags)

	w = suite.do(http.MethodDelete, "/api/contacts/"+created.ID, nil, suite.token)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.do(http.MethodDelete, "/api/contacts/"+created.ID, nil, suite.token)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Equal(suite.T(), "NotFoundError", suite.decode(w, nil).Error.Type)

	w = suite.do(http.MethodGet, "/api/contacts/"+created.ID, nil, suite.token)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w = suite.do(http.MethodPatch, "/api/contacts/"+created.ID, map[string]string{"name": "X"}, suite.token)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *ControllerTestSuite) TestCreateValidation() {
	w := suite.do(http.MethodPost, "/api/contacts", models.ContactInput{Notes: "no name"}, suite.token)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	env := suite.decode(w, nil)
	assert.Equal(suite.T(), "ValidationError", env.Error.Type)
	assert.Equal(suite.T(), "name", env.Error.Field)

	w = suite.do(http.MethodPatch, "/api/contacts/whatever", nil, suite.token)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *ControllerTestSuite) TestListPagination() {
	for i := 0; i < 15; i++ {
		suite.createContact(models.ContactInput{Name: fmt.Sprintf("Person %02d", i)})
	}

	w := suite.do(http.MethodGet, "/api/contacts?page=2&limit=10", nil, suite.token)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	var page models.ContactPage
	suite.decode(w, &page)
	assert.Len(suite.T(), page.Docs, 5)
	assert.Equal(suite.T(), 15, page.TotalDocs)
	assert.Equal(suite.T(), 2, page.TotalPages)
	assert.True(suite.T(), page.HasPrevPage)
	assert.False(suite.T(), page.HasNextPage)
	assert.Nil(suite.T(), page.NextPage)
	require.NotNil(suite.T(), page.PrevPage)
	assert.Equal(suite.T(), 1, *page.PrevPage)
	assert.Equal(suite.T(), 11, page.PagingCounter)

	w = suite.do(http.MethodGet, "/api/contacts", nil, suite.token)
	suite.decode(w, &page)
	assert.Equal(suite.T(), 10, page.Limit)
	assert.Equal(suite.T(), "Person 14", page.Docs[0].Name)

	w = suite.do(http.MethodGet, "/api/contacts?page=5", nil, suite.token)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	suite.decode(w, &page)
	assert.Empty(suite.T(), page.Docs)
	assert.Contains(suite.T(), w.Body.String(), `"docs":[]`)

	w = suite.do(http.MethodGet, "/api/contacts?sort=name&limit=3", nil, suite.token)
	suite.decode(w, &page)
	assert.Equal(suite.T(), "Person 00", page.Docs[0].Name)
}

func (suite *ControllerTestSuite) TestListRejectsBadParams() {
	for _, query := range []string{"limit=0", "limit=-1", "page=0", "page=abc", "limit=ten", "sort=email"} {
		w := suite.do(http.MethodGet, "/api/contacts?"+query, nil, suite.token)
		assert.Equal(suite.T(), http.StatusBadRequest, w.Code, query)
		assert.Equal(suite.T(), "ValidationError", suite.decode(w, nil).Error.Type, query)
	}
}

func (suite *ControllerTestSuite) TestListFilters() {
	suite.createContact(models.ContactInput{Name: "Alpha", Organization: "Acme Corp", Tags: []string{"tech"}})
	suite.createContact(models.ContactInput{Name: "Beta", Organization: "Acme", Tags: []string{"press"}})
	suite.createContact(models.ContactInput{Name: "Gamma", Organization: "Other", Notes: "met at ACME gala"})

	names := func(query string) []string {
		w := suite.do(http.MethodGet, "/api/contacts?"+query, nil, suite.token)
		require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())
		var page models.ContactPage
		suite.decode(w, &page)
		var out []string
		for _, c := range page.Docs {
			out = append(out, c.Name)
		}
		return out
	}

	assert.ElementsMatch(suite.T(), []string{"Alpha", "Beta"}, names("tags=press,tech"))
	assert.ElementsMatch(suite.T(), []string{"Beta"}, names("organization=Acme"))
	assert.ElementsMatch(suite.T(), []string{"Alpha", "Beta", "Gamma"}, names("search=acme"))
	assert.ElementsMatch(suite.T(), []string{"Alpha"}, names("search=acme&tags=tech"))
	assert.ElementsMatch(suite.T(), []string{"Alpha", "Gamma"}, names("search=alpha%20gala"))
	assert.Empty(suite.T(), names("organization=Acme&tags=tech"))
}

func (suite *ControllerTestSuite) TestFacetsAndExport() {
	suite.createContact(models.ContactInput{Name: "Alpha Person", Organization: "BBC", Tags: []string{"tv", "press"}})
	suite.createContact(models.ContactInput{Name: "Beta", Organization: "CNN", Tags: []string{"tv"}})

	var tags, orgs []string
	suite.decode(suite.do(http.MethodGet, "/api/contacts/tags", nil, suite.token), &tags)
	suite.decode(suite.do(http.MethodGet, "/api/contacts/organizations", nil, suite.token), &orgs)
	assert.Equal(suite.T(), []string{"press", "tv"}, tags)
	assert.Equal(suite.T(), []string{"BBC", "CNN"}, orgs)

	var exported []models.Contact
	w := suite.do(http.MethodGet, "/api/contacts/export", nil, suite.token)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	suite.decode(w, &exported)
	require.Len(suite.T(), exported, 2)
	assert.Equal(suite.T(), "Beta", exported[0].Name)

	w = suite.do(http.MethodGet, "/api/contacts/export?format=vcard", nil, suite.token)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.True(suite.T(), strings.HasPrefix(w.Header().Get("Content-Type"), "text/vcard"))
	assert.Equal(suite.T(), 2, strings.Count(w.Body.String(), "BEGIN:VCARD"))
	assert.Contains(suite.T(), w.Body.String(), "FN:Alpha Person")

	w = suite.do(http.MethodGet, "/api/contacts/export?format=xml", nil, suite.token)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *ControllerTestSuite) TestWriteRolesEnforced() {
	suite.config.RequireEditorForWrites = true
	suite.buildRouter()
	userToken := suite.registerAndLogin("viewer@example.com", "password123")

	hash, err := utils.HashPassword("password123")
	require.NoError(suite.T(), err)
	_, err = suite.repo.GetUserRepository().CreateUser(context.Background(), &models.User{
		Email: "editor@example.com", Name: "Ed", PasswordHash: hash,
		Roles: []models.UserRole{models.UserRoleEditor},
	})
	require.NoError(suite.T(), err)
	editorToken := suite.login("editor@example.com", "password123")

	w := suite.do(http.MethodPost, "/api/contacts", models.ContactInput{Name: "X"}, userToken)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
	assert.Equal(suite.T(), "AuthorizationError", suite.decode(w, nil).Error.Type)

	w = suite.do(http.MethodPost, "/api/contacts", models.ContactInput{Name: "X"}, editorToken)
	require.Equal(suite.T(), http.StatusCreated, w.Code)
	var c models.Contact
	suite.decode(w, &c)

	w = suite.do(http.MethodDelete, "/api/contacts/"+c.ID, nil, editorToken)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	w = suite.do(http.MethodGet, "/api/contacts/"+c.ID, nil, userToken)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *ControllerTestSuite) TestSwagger() {
	w := suite.do(http.MethodGet, "/swagger/doc.json", nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	var doc map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(suite.T(), "/api", doc["basePath"])
	assert.Contains(suite.T(), doc["paths"], "/contacts")

	w = suite.do(http.MethodGet, "/swagger", nil, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), `data-auth-url="/api/auth/login"`)
}

func TestControllerTestSuite(t *testing.T) {
	suite.Run(t, new(ControllerTestSuite))
}

func TestServeShutsDownOnCancel(t *testing.T) {
	cfg := &models.Config{AppHost: "127.0.0.1", AppPort: "0"}
	c := &Controller{config: cfg, logger: logger.NewNopLogger()}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Serve(ctx, http.NotFoundHandler()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
