package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/levpat/marketplace-blog/internal/authz"
	"github.com/levpat/marketplace-blog/internal/config"
	"github.com/levpat/marketplace-blog/internal/constants"
	"github.com/levpat/marketplace-blog/internal/models"
	"github.com/levpat/marketplace-blog/internal/provider"
	"github.com/levpat/marketplace-blog/internal/repository"
	"github.com/levpat/marketplace-blog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memoryStorage struct {
	objects map[string][]byte
}

func (m *memoryStorage) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.objects[key] = data
	return "http://minio.test/blog/" + key, nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryStorage) KeyFromURL(raw string) (string, bool) {
	key := strings.TrimPrefix(raw, "http://minio.test/blog/")
	return key, key != raw
}

type routerFixture struct {
	engine    *gin.Engine
	container *provider.Container
}

func setupRouterTest(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.Migrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		JWT:    config.JWTConfig{SecretKey: "router-test-secret-0123456789abcdef", ExpireMinutes: 20},
		Upload: config.UploadConfig{MaxSize: 1 << 20},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8},
		},
	}

	authzService, err := authz.NewService(db)
	require.NoError(t, err)
	require.NoError(t, authzService.BootstrapBuiltinRoles())

	c := &provider.Container{
		Config:       cfg,
		UserRepo:     repository.NewUserRepository(db),
		PostRepo:     repository.NewPostRepository(db),
		CategoryRepo: repository.NewCategoryRepository(db),
		AuthzService: authzService,
	}
	uploads := service.NewUploadService(&cfg.Upload, &memoryStorage{objects: map[string][]byte{}})
	c.AuthService = service.NewAuthService(cfg, c.UserRepo)
	c.UserService = service.NewUserService(cfg, c.UserRepo, nil)
	c.UploadService = uploads
	c.PostService = service.NewPostService(c.PostRepo, c.CategoryRepo, uploads)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.LoginLogService = service.NewUserLoginLogService(repository.NewUserLoginLogRepository(db))
	c.AuditService = service.NewAuthzAuditService(repository.NewAuthzAuditLogRepository(db))

	return &routerFixture{engine: SetupRouter(cfg, c), container: c}
}

func (f *routerFixture) do(t *testing.T, req *http.Request, token string) *httptest.ResponseRecorder {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func (f *routerFixture) doJSON(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return f.do(t, req, token)
}

func (f *routerFixture) doForm(t *testing.T, method, path string, fields map[string][]string, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, values := range fields {
		for _, value := range values {
			require.NoError(t, writer.WriteField(name, value))
		}
	}
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return f.do(t, req, token)
}

func (f *routerFixture) register(t *testing.T, username string) {
	t.Helper()
	w := f.doJSON(t, http.MethodPost, "/users/", gin.H{
		"first_name": "Test",
		"last_name":  "User",
		"username":   username,
		"email":      username + "@example.com",
		"password":   "testpassword",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func (f *routerFixture) login(t *testing.T, username string) string {
	t.Helper()
	w := f.doJSON(t, http.MethodPost, "/auth/login", gin.H{"username": username, "password": "testpassword"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		StatusCode int    `json:"status_code"`
		Detail     string `json:"detail"`
		Token      string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Wellcome Test!", resp.Detail)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func detailOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp.Detail
}

func TestRouterPostLifecycle(t *testing.T) {
	f := setupRouterTest(t)
	f.register(t, "testuser")
	token := f.login(t, "testuser")

	w := f.do(t, httptest.NewRequest(http.MethodGet, "/posts/?categories=Test+category", nil), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Need authorization", detailOf(t, w))

	w = f.doJSON(t, http.MethodPost, "/categories/create", gin.H{"title": "Test category"}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Category created", detailOf(t, w))

	w = f.doJSON(t, http.MethodPost, "/categories/create", gin.H{"title": "Test category"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Category with same title is already exist", detailOf(t, w))

	fields := map[string][]string{
		"title":      {"Test post"},
		"text":       {"Test text"},
		"categories": {"Test category"},
	}
	w = f.doForm(t, http.MethodPost, "/posts/", fields, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Detail string        `json:"detail"`
		Data   []models.Post `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Post created", created.Detail)
	require.Len(t, created.Data, 1)
	postID := created.Data[0].ID

	w = f.doForm(t, http.MethodPost, "/posts/", fields, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Post with same title is already exist", detailOf(t, w))

	w = f.doForm(t, http.MethodPost, "/posts/", map[string][]string{
		"title":      {"Another post"},
		"text":       {"Another text"},
		"categories": {"Missing category"},
	}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Some categories not found", detailOf(t, w))

	w = f.do(t, httptest.NewRequest(http.MethodGet, "/posts/?categories=Test+category", nil), token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var listed struct {
		Data []models.Post `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Data, 1)
	assert.Equal(t, "Test post", listed.Data[0].Title)

	w = f.do(t, httptest.NewRequest(http.MethodGet, "/posts/", nil), token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.doForm(t, http.MethodPut, "/posts/", map[string][]string{
		"post_id":    {postID},
		"title":      {"Updated post"},
		"text":       {"Updated text"},
		"categories": {"Test category"},
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Post updated", detailOf(t, w))

	w = f.do(t, httptest.NewRequest(http.MethodDelete, "/posts/?post_id="+url.QueryEscape(postID), nil), token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Post delete", detailOf(t, w))

	w = f.do(t, httptest.NewRequest(http.MethodDelete, "/posts/?post_id="+url.QueryEscape(postID), nil), token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Post not found", detailOf(t, w))

	w = f.do(t, httptest.NewRequest(http.MethodGet, "/admin/posts/archived", nil), token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouterRegisterAndLoginErrors(t *testing.T) {
	f := setupRouterTest(t)
	f.register(t, "testuser")

	w := f.doJSON(t, http.MethodPost, "/users/", gin.H{
		"first_name": "Test",
		"username":   "otheruser",
		"email":      "testuser@example.com",
		"password":   "testpassword",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "This email has been registered", detailOf(t, w))

	w = f.doJSON(t, http.MethodPost, "/users/", gin.H{
		"first_name": "Test",
		"username":   "testuser",
		"email":      "fresh@example.com",
		"password":   "testpassword",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "This username is taken", detailOf(t, w))

	w = f.doJSON(t, http.MethodPost, "/auth/login", gin.H{"username": "testuser", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid authentication credentials", detailOf(t, w))
}

func TestRouterLogoutRevokesToken(t *testing.T) {
	f := setupRouterTest(t)
	f.register(t, "testuser")
	token := f.login(t, "testuser")

	w := f.do(t, httptest.NewRequest(http.MethodGet, "/users/me", nil), token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.AddCookie(&http.Cookie{Name: constants.AccessTokenCookie, Value: token})
	w = f.do(t, req, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, httptest.NewRequest(http.MethodPost, "/auth/logout", nil), token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, httptest.NewRequest(http.MethodGet, "/users/me", nil), token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token revoked", detailOf(t, w))
}

func TestRouterAdminRoutes(t *testing.T) {
	f := setupRouterTest(t)
	f.register(t, "adminuser")
	user, err := f.container.UserRepo.GetByUsername("adminuser")
	require.NoError(t, err)
	user.Role = constants.RoleAdmin
	require.NoError(t, f.container.UserRepo.Update(user))
	token := f.login(t, "adminuser")

	w := f.do(t, httptest.NewRequest(http.MethodGet, "/admin/posts/archived", nil), token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, httptest.NewRequest(http.MethodGet, "/admin/authz/roles", nil), token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var roles struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &roles))
	assert.Equal(t, []string{"role:admin", "role:user"}, roles.Data)

	w = f.doJSON(t, http.MethodPost, "/admin/authz/roles", gin.H{"role": "editor"}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.doJSON(t, http.MethodPost, "/admin/authz/policies", gin.H{"role": "editor", "object": "/posts/", "action": "GET"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, httptest.NewRequest(http.MethodGet, "/admin/authz/roles/editor/policies", nil), token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"/posts/"`)

	w = f.do(t, httptest.NewRequest(http.MethodDelete, "/admin/authz/roles/user", nil), token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, httptest.NewRequest(http.MethodGet, "/admin/authz/audit-logs?action=policy_grant", nil), token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"operator_username":"adminuser"`)

	w = f.do(t, httptest.NewRequest(http.MethodGet, "/admin/authz/permissions/catalog", nil), token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"GET:/posts/"`)
	assert.NotContains(t, w.Body.String(), `"POST:/auth/login"`)
}

func TestDerivePermissionModule(t *testing.T) {
	assert.Equal(t, "posts", derivePermissionModule("/posts/"))
	assert.Equal(t, "admin.authz", derivePermissionModule("/admin/authz/roles/:role"))
	assert.Equal(t, "system", derivePermissionModule("/"))
}

func TestRouterAdminUserManagement(t *testing.T) {
	f := setupRouterTest(t)
	f.register(t, "adminuser")
	f.register(t, "member")
	admin, err := f.container.UserRepo.GetByUsername("adminuser")
	require.NoError(t, err)
	admin.Role = constants.RoleAdmin
	require.NoError(t, f.container.UserRepo.Update(admin))
	member, err := f.container.UserRepo.GetByUsername("member")
	require.NoError(t, err)

	adminToken := f.login(t, "adminuser")
	memberToken := f.login(t, "member")

	w := f.doJSON(t, http.MethodPost, "/auth/login", gin.H{"username": "member", "password": "nope-nope"}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, httptest.NewRequest(http.MethodGet, "/users/me/login-logs", nil), memberToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var mine struct {
		Data       []models.UserLoginLog `json:"data"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	assert.EqualValues(t, 1, mine.Pagination.Total)

	w = f.do(t, httptest.NewRequest(http.MethodGet, "/admin/login-logs?status=failed", nil), adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"fail_reason":"invalid_credentials"`)

	w = f.do(t, httptest.NewRequest(http.MethodGet, "/admin/users?keyword=mem", nil), adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"username":"member"`)
	assert.NotContains(t, w.Body.String(), `"username":"adminuser"`)

	path := fmt.Sprintf("/admin/users/%d/status", member.ID)
	w = f.doJSON(t, http.MethodPut, path, gin.H{"is_active": false}, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, httptest.NewRequest(http.MethodGet, "/users/me", nil), memberToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.doJSON(t, http.MethodPost, "/auth/login", gin.H{"username": "member", "password": "testpassword"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.doJSON(t, http.MethodPut, fmt.Sprintf("/admin/users/%d/status", admin.ID), gin.H{"is_active": false}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.doJSON(t, http.MethodPut, fmt.Sprintf("/admin/users/%d/role", member.ID), gin.H{"role": "ghost"}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Role does not exist", detailOf(t, w))

	w = f.doJSON(t, http.MethodPut, fmt.Sprintf("/admin/users/%d/role", member.ID), gin.H{"role": "admin"}, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	reloaded, err := f.container.UserRepo.GetByID(member.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.RoleAdmin, reloaded.Role)

	w = f.doJSON(t, http.MethodPut, "/admin/users/abc/status", gin.H{"is_active": true}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.doJSON(t, http.MethodPut, "/admin/users/9999/status", gin.H{"is_active": true}, adminToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
