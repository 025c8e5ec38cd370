package routers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haierkeys/fast-note-share-service/internal/app"
	"github.com/haierkeys/fast-note-share-service/internal/dao"
	pkgapp "github.com/haierkeys/fast-note-share-service/pkg/app"
	"github.com/haierkeys/fast-note-share-service/pkg/code"
	"github.com/haierkeys/fast-note-share-service/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithConfig(t, "rate-limit:\n  auth: 1000\n  share: 1000\n")
}

func newTestServerWithConfig(t *testing.T, yaml string) *testServer {
	t.Helper()

	cfg, err := app.ParseConfig([]byte(yaml))
	require.NoError(t, err)

	db, err := dao.NewDBEngineWithConfig(dao.DatabaseConfig{Type: "sqlite", Path: ":memory:"}, zap.NewNop())
	require.NoError(t, err)

	a, err := app.NewApp(cfg, zap.NewNop(), db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	uni, err := validator.Setup()
	require.NoError(t, err)

	return &testServer{t: t, engine: NewRouter(a, uni)}
}

func (s *testServer) do(method, path, token string, body any) (int, pkgapp.Res) {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var res pkgapp.Res
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	return w.Code, res
}

// register 注册用户并返回登录 Token
func (s *testServer) register(name string) string {
	s.t.Helper()
	status, res := s.do(http.MethodPost, "/api/user/register", "", map[string]string{
		"email":           name + "@example.com",
		"username":        name,
		"password":        "secret123",
		"confirmPassword": "secret123",
	})
	require.Equal(s.t, http.StatusOK, status, res)
	data := res.Data.(map[string]any)
	return data["token"].(string)
}

func dataMap(t *testing.T, res pkgapp.Res) map[string]any {
	t.Helper()
	m, ok := res.Data.(map[string]any)
	require.True(t, ok, "data is %T", res.Data)
	return m
}

func TestShareLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.register("alice")

	status, res := s.do(http.MethodPost, "/api/notes", token, map[string]any{
		"title":      "Hello",
		"content":    "print(1)",
		"language":   "en",
		"isPublic":   true,
		"customSlug": "hello-py",
	})
	require.Equal(t, http.StatusOK, status, res)
	assert.Equal(t, code.SuccessCreate.Code(), res.Code)
	note := dataMap(t, res)
	shareToken, ok := note["shareToken"].(string)
	require.True(t, ok)
	assert.Len(t, shareToken, 32)
	assert.Equal(t, "hello-py", note["customSlug"])

	// 公开访问无需登录
	status, res = s.do(http.MethodGet, "/api/notes/share/"+shareToken, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Hello", dataMap(t, res)["title"])

	status, res = s.do(http.MethodGet, "/api/notes/slug/hello-py", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, note["id"], dataMap(t, res)["id"])

	// 设为私有后两种地址都失效，shareToken 为 null
	status, res = s.do(http.MethodPut, "/api/notes", token, map[string]any{
		"id":       note["id"],
		"title":    "Hello",
		"content":  "print(2)",
		"language": "en",
		"isPublic": false,
	})
	require.Equal(t, http.StatusOK, status, res)
	updated := dataMap(t, res)
	assert.Nil(t, updated["shareToken"])
	assert.Nil(t, updated["customSlug"])

	status, res = s.do(http.MethodGet, "/api/notes/share/"+shareToken, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, code.ErrorShareNotFound.Code(), res.Code)

	status, _ = s.do(http.MethodGet, "/api/notes/slug/hello-py", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestNoteErrorStatuses(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice")
	bob := s.register("bob")

	status, _ := s.do(http.MethodPost, "/api/notes", alice, map[string]any{
		"title": "A", "language": "en", "isPublic": true, "customSlug": "taken",
	})
	require.Equal(t, http.StatusOK, status)

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		body     any
		wantHTTP int
		wantCode int
	}{
		{"missing token", http.MethodPost, "/api/notes", "", map[string]any{"title": "x", "language": "en"}, http.StatusUnauthorized, code.ErrorNotUserAuthToken.Code()},
		{"bad token", http.MethodPost, "/api/notes", "garbage", map[string]any{"title": "x", "language": "en"}, http.StatusUnauthorized, code.ErrorInvalidUserAuthToken.Code()},
		{"missing title", http.MethodPost, "/api/notes", bob, map[string]any{"language": "en"}, http.StatusBadRequest, code.ErrorInvalidParams.Code()},
		{"bad language", http.MethodPost, "/api/notes", bob, map[string]any{"title": "x", "language": "fr"}, http.StatusBadRequest, code.ErrorNoteLanguageInvalid.Code()},
		{"bad slug", http.MethodPost, "/api/notes", bob, map[string]any{"title": "x", "language": "en", "isPublic": true, "customSlug": "has space"}, http.StatusBadRequest, code.ErrorNoteSlugInvalid.Code()},
		{"slug conflict", http.MethodPost, "/api/notes", bob, map[string]any{"title": "x", "language": "en", "isPublic": true, "customSlug": "taken"}, http.StatusConflict, code.ErrorNoteSlugConflict.Code()},
		{"update unknown", http.MethodPut, "/api/notes", bob, map[string]any{"id": "does-not-exist", "title": "x", "language": "en"}, http.StatusNotFound, code.ErrorNoteNotFound.Code()},
		{"unknown share", http.MethodGet, "/api/notes/share/nope", "", nil, http.StatusNotFound, code.ErrorShareNotFound.Code()},
		{"unknown route", http.MethodGet, "/api/nowhere", "", nil, http.StatusNotFound, code.ErrorNotFoundAPI.Code()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, res := s.do(tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.wantHTTP, status, res)
			assert.Equal(t, tt.wantCode, res.Code)
			assert.False(t, res.Status)
		})
	}
}

func TestNotesAreOwnerScoped(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice")
	bob := s.register("bob")

	_, res := s.do(http.MethodPost, "/api/notes", alice, map[string]any{"title": "secret", "language": "en"})
	id := dataMap(t, res)["id"].(string)

	status, _ := s.do(http.MethodGet, "/api/note?id="+id, bob, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, res = s.do(http.MethodGet, "/api/notes", alice, nil)
	require.Equal(t, http.StatusOK, status)
	pager := dataMap(t, res)["pager"].(map[string]any)
	assert.EqualValues(t, 1, pager["totalRows"])

	status, _ = s.do(http.MethodDelete, "/api/note?id="+id, alice, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(http.MethodGet, "/api/note?id="+id, alice, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUserEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.register("carol")

	status, res := s.do(http.MethodPost, "/api/user/login", "", map[string]string{"credentials": "carol@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, status, res)
	assert.NotEmpty(t, dataMap(t, res)["token"])

	status, _ = s.do(http.MethodPost, "/api/user/login", "", map[string]string{"credentials": "carol", "password": "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, res = s.do(http.MethodGet, "/api/user/info", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "carol", dataMap(t, res)["username"])

	// 未知邮箱同样返回成功，不泄露账号是否存在
	status, res = s.do(http.MethodPost, "/api/user/password/forgot", "", map[string]string{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, code.SuccessPasswordReset.Code(), res.Code)

	status, _ = s.do(http.MethodPost, "/api/user/register", "", map[string]string{
		"email": "carol@example.com", "username": "carol2", "password": "secret123", "confirmPassword": "secret123",
	})
	assert.Equal(t, http.StatusConflict, status)
}

func TestPostEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.register("dave")

	for _, p := range []map[string]any{
		{"title": "Go tips", "slug": "go-tips", "language": "en", "tags": []string{"go", "tips"}, "isPublished": true},
		{"title": "Go more", "slug": "go-more", "language": "en", "tags": []string{"go"}, "isPublished": true},
		{"title": "Draft", "slug": "draft", "language": "en", "tags": []string{"go"}, "isPublished": false},
	} {
		status, res := s.do(http.MethodPost, "/api/posts", token, p)
		require.Equal(t, http.StatusOK, status, res)
	}

	status, res := s.do(http.MethodGet, "/api/posts?language=en", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, dataMap(t, res)["pager"].(map[string]any)["totalRows"])

	status, _ = s.do(http.MethodGet, "/api/post/draft", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(http.MethodGet, "/api/post/draft", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, res = s.do(http.MethodGet, "/api/post/go-tips/related", "", nil)
	require.Equal(t, http.StatusOK, status)
	related, ok := res.Data.([]any)
	require.True(t, ok)
	require.Len(t, related, 1)
	assert.Equal(t, "go-more", related[0].(map[string]any)["slug"])
}

func TestHealthAndVersion(t *testing.T) {
	s := newTestServer(t)

	status, res := s.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, res.Status)

	status, res = s.do(http.MethodGet, "/api/version", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, app.Version, dataMap(t, res)["version"])
}

func TestRateLimitOnAuthRoutes(t *testing.T) {
	s := newTestServerWithConfig(t, "rate-limit:\n  auth: 2\n  share: 1000\n")

	body := map[string]string{"credentials": "nobody", "password": "whatever"}
	for i := 0; i < 2; i++ {
		status, _ := s.do(http.MethodPost, "/api/user/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, status)
	}

	status, res := s.do(http.MethodPost, "/api/user/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, code.ErrorTooManyRequests.Code(), res.Code)

	// 其他前缀不受影响
	status, _ = s.do(http.MethodGet, "/api/notes/share/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPrivateRouter(t *testing.T) {
	r := NewPrivateRouterWithLogger("release", zap.NewNop())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/vars", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "memstats")

	// release 模式不暴露 pprof
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
