// Package apidoc serves the OpenAPI description of the prediction API.
package apidoc

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
)

//go:embed openapi.yaml
var rawSpec []byte

// Path is where the document is served.
const Path = "/api/openapi.json"

// Document is a loaded and validated OpenAPI description.
type Document struct {
	spec *openapi3.T
	json []byte
}

// Load parses and validates the embedded document.
func Load(ctx context.Context) (*Document, error) {
	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("apidoc: load document: %w", err)
	}
	if err := spec.Validate(ctx); err != nil {
		return nil, fmt.Errorf("apidoc: validate: %w", err)
	}
	b, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("apidoc: encode: %w", err)
	}
	return &Document{spec: spec, json: b}, nil
}

// Spec returns the parsed document.
func (d *Document) Spec() *openapi3.T { return d.spec }

// RegisterRoutes serves the document as JSON.
func (d *Document) RegisterRoutes(e *echo.Echo) {
	e.GET(Path, func(c echo.Context) error {
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, d.json)
	})
}
