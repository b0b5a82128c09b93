package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cozysnippet/api/internal/auth"
	"github.com/cozysnippet/api/internal/config"
	"github.com/cozysnippet/api/internal/metrics"
	"github.com/cozysnippet/api/internal/model"
	"github.com/cozysnippet/api/internal/openapi"
	"github.com/cozysnippet/api/internal/ratelimit"
	"github.com/cozysnippet/api/internal/repository"
	"github.com/cozysnippet/api/internal/response"
	"github.com/cozysnippet/api/internal/service"
	"github.com/cozysnippet/api/internal/testutil"
)

const (
	testAPIKey      = "cz_TestKey0123456789abcdefghijklmnopq"
	testAdminSecret = "admin_TestSecret0123456789"
)

type testEnv struct {
	handler  http.Handler
	recorder *metrics.InMemoryRecorder
	doc      *openapi.Document
}

type envOptions struct {
	limit       int
	apiKeys     []string
	adminSecret string
	maxBody     int64
}

func defaultEnvOptions() envOptions {
	return envOptions{
		limit:       1000,
		apiKeys:     []string{testAPIKey},
		adminSecret: testAdminSecret,
	}
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	cfg := &config.Config{
		AppEnv:             "test",
		AppVersion:         "9.9.9",
		CORSAllowedOrigins: "*",
		MaxRequestBodySize: opts.maxBody,
	}
	logger := testutil.DiscardLogger()
	recorder := metrics.NewInMemory()
	keyring := auth.NewKeyring(opts.apiKeys, opts.adminSecret)

	limiter := ratelimit.New(ratelimit.Config{Limit: opts.limit, Window: time.Minute})
	t.Cleanup(limiter.Stop)

	doc, err := openapi.Load(context.Background(), cfg.AppVersion)
	require.NoError(t, err)

	users := service.NewUserService(repository.New(), recorder)

	return &testEnv{
		handler: NewRouter(RouterDeps{
			Config:    cfg,
			Logger:    logger,
			Keyring:   keyring,
			Users:     users,
			Keys:      service.NewKeyService(keyring, recorder),
			Metrics:   recorder,
			Snapshots: recorder,
			Limiter:   limiter,
			Doc:       doc,
		}),
		recorder: recorder,
		doc:      doc,
	}
}

// envelope mirrors response.Envelope with Data left raw for re-decoding.
type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorBody `json:"error"`
	Message string              `json:"message"`
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func apiKey() map[string]string {
	return map[string]string{"X-API-Key": testAPIKey}
}

func adminSecret() map[string]string {
	return map[string]string{"X-Admin-Secret": testAdminSecret}
}

func TestRouter_UserLifecycle(t *testing.T) {
	env := newTestEnv(t, defaultEnvOptions())
	body := `{"name":"John Doe","email":"john@example.com","age":25}`

	rec := env.do(t, http.MethodPost, "/api/v1/users", body, apiKey())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var john model.User
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &john))
	assert.True(t, service.IsUserID(john.ID))

	rec = env.do(t, http.MethodPost, "/api/v1/users", body, apiKey())
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, response.CodeConflict, decodeEnvelope(t, rec).Error.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/users/seed", `{"count":5}`, apiKey())
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Seeded 5 users successfully", decodeEnvelope(t, rec).Message)

	rec = env.do(t, http.MethodGet, "/api/v1/users", "", apiKey())
	require.Equal(t, http.StatusOK, rec.Code)
	var users []model.User
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &users))
	require.Len(t, users, 6)
	assert.Equal(t, john, users[0])

	rec = env.do(t, http.MethodPut, "/api/v1/users/"+john.ID, `{"age":26}`, apiKey())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/users/"+john.ID, "", apiKey())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/users/"+john.ID, "", apiKey())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, response.CodeUserNotFound, decodeEnvelope(t, rec).Error.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/users/123", "", apiKey())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, response.CodeInvalidUserID, decodeEnvelope(t, rec).Error.Code)

	snap := env.recorder.Snapshot()
	assert.Equal(t, uint64(1), snap.UsersCreated)
	assert.Equal(t, uint64(5), snap.UsersSeeded)
	assert.Equal(t, uint64(1), snap.UsersUpdated)
	assert.Equal(t, uint64(1), snap.UsersDeleted)
}

func TestRouter_APIKeyAuth(t *testing.T) {
	env := newTestEnv(t, defaultEnvOptions())

	tests := []struct {
		name       string
		headers    map[string]string
		wantStatus int
		wantCode   string
	}{
		{"missing", nil, http.StatusUnauthorized, response.CodeMissingAPIKey},
		{"invalid header", map[string]string{"X-API-Key": "cz_wrong"}, http.StatusUnauthorized, response.CodeInvalidAPIKey},
		{"invalid bearer", map[string]string{"Authorization": "Bearer cz_wrong"}, http.StatusUnauthorized, response.CodeInvalidAPIKey},
		{"admin secret is not an api key", adminSecret(), http.StatusUnauthorized, response.CodeMissingAPIKey},
		{"valid header", apiKey(), http.StatusOK, ""},
		{"valid bearer", map[string]string{"Authorization": "bearer " + testAPIKey}, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/v1/users", "", tt.headers)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeEnvelope(t, rec).Error.Code)
			}
		})
	}

	snap := env.recorder.Snapshot()
	assert.Equal(t, uint64(4), snap.AuthFailuresAPI)
}

func TestRouter_AuthNotConfigured(t *testing.T) {
	opts := defaultEnvOptions()
	opts.apiKeys = nil
	opts.adminSecret = ""
	env := newTestEnv(t, opts)

	rec := env.do(t, http.MethodGet, "/api/v1/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "missing credential is reported first")

	rec = env.do(t, http.MethodGet, "/api/v1/users", "", apiKey())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, response.CodeAuthConfig, decodeEnvelope(t, rec).Error.Code)

	rec = env.do(t, http.MethodGet, "/admin/health", "", adminSecret())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, response.CodeAdminConfig, decodeEnvelope(t, rec).Error.Code)
}

func TestRouter_Admin(t *testing.T) {
	env := newTestEnv(t, defaultEnvOptions())

	rec := env.do(t, http.MethodPost, "/admin/keys/generate", `{"count":2}`, apiKey())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, response.CodeMissingAdmin, decodeEnvelope(t, rec).Error.Code)

	rec = env.do(t, http.MethodPost, "/admin/keys/generate", `{"count":2}`,
		map[string]string{"Authorization": "Bearer " + testAPIKey})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, response.CodeInvalidAdmin, decodeEnvelope(t, rec).Error.Code)

	rec = env.do(t, http.MethodPost, "/admin/keys/generate", `{"count":2}`, adminSecret())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var generated struct {
		Keys  []string `json:"keys"`
		Count int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &generated))
	assert.Equal(t, 2, generated.Count)

	// Generated keys are not installed until the operator configures them.
	rec = env.do(t, http.MethodGet, "/api/v1/users", "", map[string]string{"X-API-Key": generated.Keys[0]})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/admin/keys/info", "", adminSecret())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), testAPIKey)
	assert.Contains(t, rec.Body.String(), auth.MaskKey(testAPIKey))

	rec = env.do(t, http.MethodGet, "/admin/health", "", adminSecret())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/admin/metrics", "", adminSecret())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cozysnippet_api_keys_generated_total 2\n")
	assert.Contains(t, rec.Body.String(), `cozysnippet_auth_failures_total{realm="admin"} 2`)
}

func TestRouter_PublicRoutes(t *testing.T) {
	env := newTestEnv(t, defaultEnvOptions())

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "9.9.9", health.Version)

	rec = env.do(t, http.MethodGet, "/doc", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"openapi":"3.0.3"`)

	rec = env.do(t, http.MethodGet, "/doc.yaml", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/ui", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "https://unpkg.com")
}

func TestRouter_Headers(t *testing.T) {
	env := newTestEnv(t, defaultEnvOptions())

	rec := env.do(t, http.MethodGet, "/health", "", map[string]string{"X-Request-ID": "req-123"})

	h := rec.Header()
	assert.Equal(t, "req-123", h.Get("X-Request-ID"))
	assert.Equal(t, "CozySnippet-API", h.Get("Server"))
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Equal(t, "max-age=31536000; includeSubDomains", h.Get("Strict-Transport-Security"))
	assert.Equal(t, "1000", h.Get("X-RateLimit-Limit"))
	assert.Equal(t, "999", h.Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, h.Get("X-RateLimit-Reset"))
}

func TestRouter_CORSPreflight(t *testing.T) {
	env := newTestEnv(t, defaultEnvOptions())

	rec := env.do(t, http.MethodOptions, "/api/v1/users", "", map[string]string{
		"Origin":                        "https://app.example.com",
		"Access-Control-Request-Method": "POST",
	})

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-API-Key")
}

func TestRouter_Fallbacks(t *testing.T) {
	env := newTestEnv(t, defaultEnvOptions())

	rec := env.do(t, http.MethodGet, "/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, response.CodeRouteNotFound, decodeEnvelope(t, rec).Error.Code)

	rec = env.do(t, http.MethodPatch, "/health", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, response.CodeMethodNotAllowed, decodeEnvelope(t, rec).Error.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/nothing-here", "", apiKey())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, response.CodeRouteNotFound, decodeEnvelope(t, rec).Error.Code)

	rec = env.do(t, http.MethodPatch, "/api/v1/users", "", apiKey())
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, response.CodeMethodNotAllowed, decodeEnvelope(t, rec).Error.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	opts := defaultEnvOptions()
	opts.limit = 3
	env := newTestEnv(t, opts)

	for i := 0; i < 3; i++ {
		rec := env.do(t, http.MethodGet, "/health", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	// Limiting runs before authentication.
	rec := env.do(t, http.MethodGet, "/api/v1/users", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, response.CodeRateLimited, decodeEnvelope(t, rec).Error.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	// Other clients are unaffected.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "198.51.100.7:4000"
	other := httptest.NewRecorder()
	env.handler.ServeHTTP(other, req)
	assert.Equal(t, http.StatusOK, other.Code)

	assert.Equal(t, uint64(1), env.recorder.Snapshot().RateLimitRejected)
}

func TestRouter_RateLimitCountsPreflightAndOversizeBodies(t *testing.T) {
	opts := defaultEnvOptions()
	opts.limit = 2
	opts.maxBody = 64
	env := newTestEnv(t, opts)

	preflight := map[string]string{
		"Origin":                        "https://app.example.com",
		"Access-Control-Request-Method": "POST",
	}
	rec := env.do(t, http.MethodOptions, "/api/v1/users", "", preflight)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))

	body := `{"name":"` + strings.Repeat("a", 128) + `","email":"a@example.com","age":30}`
	rec = env.do(t, http.MethodPost, "/api/v1/users", body, apiKey())
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = env.do(t, http.MethodOptions, "/api/v1/users", "", preflight)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, response.CodeRateLimited, decodeEnvelope(t, rec).Error.Code)
}

func TestRouter_BodyTooLarge(t *testing.T) {
	opts := defaultEnvOptions()
	opts.maxBody = 64
	env := newTestEnv(t, opts)

	body := `{"name":"` + strings.Repeat("a", 128) + `","email":"a@example.com","age":30}`
	rec := env.do(t, http.MethodPost, "/api/v1/users", body, apiKey())

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, response.CodePayloadTooLarge, decodeEnvelope(t, rec).Error.Code)
}
