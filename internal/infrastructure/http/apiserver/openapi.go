package apiserver

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPISpec []byte

// OpenAPIHandler serves the API description
type OpenAPIHandler struct {
	logger   *zap.Logger
	specJSON []byte
}

// NewOpenAPIHandler parses the embedded description once
func NewOpenAPIHandler(logger *zap.Logger) (*OpenAPIHandler, error) {
	var doc interface{}
	if err := yaml.Unmarshal(openAPISpec, &doc); err != nil {
		return nil, fmt.Errorf("parse openapi.yaml: %w", err)
	}
	specJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode openapi.yaml as json: %w", err)
	}

	return &OpenAPIHandler{logger: logger, specJSON: specJSON}, nil
}

// ServeOpenAPISpec serves the OpenAPI specification in YAML format
func (h *OpenAPIHandler) ServeOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-yaml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(openAPISpec); err != nil {
		h.logger.Debug("Failed to write openapi spec", zap.Error(err))
	}
}

// ServeOpenAPIJSON serves the OpenAPI specification in JSON format
func (h *OpenAPIHandler) ServeOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(h.specJSON); err != nil {
		h.logger.Debug("Failed to write openapi spec", zap.Error(err))
	}
}
