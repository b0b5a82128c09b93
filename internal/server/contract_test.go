package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/stretchr/testify/require"

	"github.com/cozysnippet/api/internal/model"
)

// TestResponsesMatchDocument validates real responses against the
// published OpenAPI document.
func TestResponsesMatchDocument(t *testing.T) {
	env := newTestEnv(t, defaultEnvOptions())

	router, err := gorillamux.NewRouter(env.doc.Spec())
	require.NoError(t, err)

	rec := env.do(t, http.MethodPost, "/api/v1/users", `{"name":"Ada Lovelace","email":"ada@example.com","age":36}`, apiKey())
	require.Equal(t, http.StatusCreated, rec.Code)
	var ada model.User
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &ada))

	cases := []struct {
		name    string
		method  string
		path    string
		body    string
		headers map[string]string
		status  int
	}{
		{"health", http.MethodGet, "/health", "", nil, http.StatusOK},
		{"list users", http.MethodGet, "/api/v1/users", "", apiKey(), http.StatusOK},
		{"get user", http.MethodGet, "/api/v1/users/" + ada.ID, "", apiKey(), http.StatusOK},
		{"create invalid", http.MethodPost, "/api/v1/users", `{"name":"A"}`, apiKey(), http.StatusBadRequest},
		{"create conflict", http.MethodPost, "/api/v1/users", `{"name":"Ada","email":"ada@example.com","age":40}`, apiKey(), http.StatusConflict},
		{"seed", http.MethodPost, "/api/v1/users/seed", `{"count":2}`, apiKey(), http.StatusCreated},
		{"update", http.MethodPut, "/api/v1/users/" + ada.ID, `{"age":37}`, apiKey(), http.StatusOK},
		{"unauthorized", http.MethodGet, "/api/v1/users", "", nil, http.StatusUnauthorized},
		{"generate keys", http.MethodPost, "/admin/keys/generate", `{"count":2}`, adminSecret(), http.StatusOK},
		{"keys info", http.MethodGet, "/admin/keys/info", "", adminSecret(), http.StatusOK},
		{"admin health", http.MethodGet, "/admin/health", "", adminSecret(), http.StatusOK},
		{"delete", http.MethodDelete, "/api/v1/users/" + ada.ID, "", apiKey(), http.StatusOK},
		{"get deleted", http.MethodGet, "/api/v1/users/" + ada.ID, "", apiKey(), http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, tc.method, tc.path, tc.body, tc.headers)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())

			var body io.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			}
			req := httptest.NewRequest(tc.method, tc.path, body)

			route, pathParams, err := router.FindRoute(req)
			require.NoError(t, err, "route not documented")

			err = openapi3filter.ValidateResponse(context.Background(), &openapi3filter.ResponseValidationInput{
				RequestValidationInput: &openapi3filter.RequestValidationInput{
					Request:    req,
					PathParams: pathParams,
					Route:      route,
				},
				Status: rec.Code,
				Header: rec.Header(),
				Body:   io.NopCloser(bytes.NewReader(rec.Body.Bytes())),
			})
			require.NoError(t, err, "response does not match document: %s", rec.Body.String())
		})
	}
}
