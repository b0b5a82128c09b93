// Package openapi builds and serves the OpenAPI 3 description of the API.
//
// The document is rendered from an embedded template so the documented
// bounds always match the ones the validator enforces.
package openapi

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"text/template"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/cozysnippet/api/internal/auth"
	"github.com/cozysnippet/api/internal/service"
)

// DefaultVersion is used when no application version is configured.
const DefaultVersion = "1.0.0"

// uiPolicy replaces the default CSP on the Swagger UI page, which loads
// its assets from unpkg.
const uiPolicy = "default-src 'none'; " +
	"script-src 'unsafe-inline' https://unpkg.com; " +
	"style-src 'unsafe-inline' https://unpkg.com; " +
	"img-src 'self' data: https://unpkg.com; " +
	"connect-src 'self'; " +
	"frame-ancestors 'none'"

//go:embed openapi.yaml.tmpl
var rawTemplate string

var docTemplate = template.Must(template.New("openapi").Parse(rawTemplate))

var uiPage = []byte(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>CozySnippet API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function () {
      window.ui = SwaggerUIBundle({ url: "/doc", dom_id: "#swagger-ui" });
    };
  </script>
</body>
</html>
`)

type templateParams struct {
	Version     string
	NameMinLen  int
	NameMaxLen  int
	AgeMin      int
	AgeMax      int
	SeedMin     int
	SeedMax     int
	SeedDefault int
	KeyDefault  int
	MaxKeys     int
}

// Document is a validated OpenAPI document with its serialized forms.
type Document struct {
	spec     *openapi3.T
	jsonBody []byte
	yamlBody []byte
}

// Load renders and validates the API document for the given version.
func Load(ctx context.Context, version string) (*Document, error) {
	if version == "" {
		version = DefaultVersion
	}

	var buf bytes.Buffer
	err := docTemplate.Execute(&buf, templateParams{
		Version:     version,
		NameMinLen:  service.NameMinLen,
		NameMaxLen:  service.NameMaxLen,
		AgeMin:      service.AgeMin,
		AgeMax:      service.AgeMax,
		SeedMin:     service.SeedMinCount,
		SeedMax:     service.SeedMaxCount,
		SeedDefault: service.DefaultSeedCount,
		KeyDefault:  service.DefaultKeyCount,
		MaxKeys:     auth.MaxKeysPerRequest,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render openapi document: %w", err)
	}

	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromData(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}
	if err := spec.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}

	jsonBody, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode openapi document: %w", err)
	}

	return &Document{
		spec:     spec,
		jsonBody: jsonBody,
		yamlBody: buf.Bytes(),
	}, nil
}

// Spec returns the parsed document.
func (d *Document) Spec() *openapi3.T {
	return d.spec
}

// JSON serves the document as JSON.
//
// GET /doc
func (d *Document) JSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(d.jsonBody)
}

// YAML serves the document as YAML.
//
// GET /doc.yaml
func (d *Document) YAML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(d.yamlBody)
}

// UI serves a Swagger UI page pointed at /doc.
//
// GET /ui
func (d *Document) UI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", uiPolicy)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(uiPage)
}
