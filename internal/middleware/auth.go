package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/cozysnippet/api/internal/auth"
	"github.com/cozysnippet/api/internal/metrics"
	"github.com/cozysnippet/api/internal/model"
	"github.com/cozysnippet/api/internal/response"
)

// Credential headers.
const (
	APIKeyHeader      = "X-API-Key"
	AdminSecretHeader = "X-Admin-Secret"
)

// AuthConfig holds configuration for the credential gates.
type AuthConfig struct {
	Logger  *slog.Logger
	Keyring *auth.Keyring
	Metrics metrics.Recorder
}

// gate describes one credential realm.
type gate struct {
	realm  string
	header string
	kind   model.PrincipalKind

	configured func() bool
	valid      func(string) bool

	missing      *response.Error
	unconfigured *response.Error
	invalid      *response.Error
}

// APIKeyAuth returns a middleware that requires a configured API key in
// X-API-Key or an Authorization bearer token.
func APIKeyAuth(cfg AuthConfig) func(http.Handler) http.Handler {
	return cfg.middleware(gate{
		realm:      metrics.RealmAPI,
		header:     APIKeyHeader,
		kind:       model.PrincipalAPIKey,
		configured: cfg.Keyring.HasAPIKeys,
		valid:      cfg.Keyring.ValidAPIKey,
		missing: response.New(response.CodeMissingAPIKey,
			"API key is required. Provide it in X-API-Key header or Authorization header as Bearer token.", nil),
		unconfigured: response.New(response.CodeAuthConfig,
			"Authentication not properly configured", nil),
		invalid: response.New(response.CodeInvalidAPIKey,
			"Invalid API key provided", nil),
	})
}

// AdminAuth returns a middleware that requires the admin secret in
// X-Admin-Secret or an Authorization bearer token.
func AdminAuth(cfg AuthConfig) func(http.Handler) http.Handler {
	return cfg.middleware(gate{
		realm:      metrics.RealmAdmin,
		header:     AdminSecretHeader,
		kind:       model.PrincipalAdmin,
		configured: cfg.Keyring.HasAdminSecret,
		valid:      cfg.Keyring.ValidAdminSecret,
		missing: response.New(response.CodeMissingAdmin,
			"Admin secret is required. Provide it in X-Admin-Secret header or Authorization header.", nil),
		unconfigured: response.New(response.CodeAdminConfig,
			"Admin authentication not properly configured", nil),
		invalid: response.New(response.CodeInvalidAdmin,
			"Invalid admin secret provided", nil),
	})
}

func (cfg AuthConfig) middleware(g gate) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fail := func(level slog.Level, reason string, err *response.Error) {
				recorder.IncAuthFailure(g.realm)
				cfg.Logger.Log(r.Context(), level, "authentication failed",
					slog.String("realm", g.realm),
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				response.Fail(w, err)
			}

			credential := extractCredential(r, g.header)
			if credential == "" {
				fail(slog.LevelWarn, "missing_credential", g.missing)
				return
			}

			if !g.configured() {
				fail(slog.LevelError, "not_configured", g.unconfigured)
				return
			}

			if !g.valid(credential) {
				fail(slog.LevelWarn, "invalid_credential", g.invalid)
				return
			}

			principal := &model.Principal{Kind: g.kind, KeyPrefix: auth.MaskKey(credential)}
			cfg.Logger.Debug("authentication successful",
				slog.String("realm", g.realm),
				slog.String("key_prefix", principal.KeyPrefix),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractCredential reads the credential from the realm header first,
// then from an "Authorization: Bearer <token>" header.
func extractCredential(r *http.Request, header string) string {
	if v := strings.TrimSpace(r.Header.Get(header)); v != "" {
		return v
	}

	authHeader := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(authHeader) > len(prefix) && strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return strings.TrimSpace(authHeader[len(prefix):])
	}
	return ""
}
