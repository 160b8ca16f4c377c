// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/alchemorsel/patisserie/internal/domain/pastry"
	"github.com/alchemorsel/patisserie/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/patisserie/internal/ports/inbound"
	"github.com/alchemorsel/patisserie/pkg/errors"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// APIHandlers handles REST API requests
type APIHandlers struct {
	recipeService   inbound.RecipeService
	analysisService inbound.AnalysisService
	logger          *zap.Logger
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(
	recipeService inbound.RecipeService,
	analysisService inbound.AnalysisService,
	logger *zap.Logger,
) *APIHandlers {
	return &APIHandlers{
		recipeService:   recipeService,
		analysisService: analysisService,
		logger:          logger.Named("api"),
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ListIngredients handles GET /api/v1/ingredients
func (h *APIHandlers) ListIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.analysisService.ListIngredients(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: ingredients})
}

// ListCategories handles GET /api/v1/categories
func (h *APIHandlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.analysisService.ListCategories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: categories})
}

// ListRecipes handles GET /api/v1/recipes
func (h *APIHandlers) ListRecipes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := inbound.ListRecipesQuery{
		CategoryID: q.Get("category"),
		Status:     pastry.RecipeStatus(q.Get("status")),
		Query:      q.Get("q"),
	}

	var err error
	if query.Page, err = intParam(q.Get("page")); err != nil {
		h.writeError(w, r, errors.NewBadRequestError("page must be an integer"))
		return
	}
	if query.PageSize, err = intParam(q.Get("page_size")); err != nil {
		h.writeError(w, r, errors.NewBadRequestError("page_size must be an integer"))
		return
	}

	list, err := h.recipeService.ListRecipes(r.Context(), query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: list})
}

// CreateRecipe handles POST /api/v1/recipes
func (h *APIHandlers) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	var cmd inbound.RecipeCommand
	if !h.decode(w, r, &cmd) {
		return
	}

	recipe, err := h.recipeService.CreateRecipe(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data:    recipe,
		Message: "Recipe created successfully",
	})
}

// GetRecipe handles GET /api/v1/recipes/{id}
func (h *APIHandlers) GetRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.recipeService.GetRecipe(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: recipe})
}

// UpdateRecipe handles PUT /api/v1/recipes/{id}
func (h *APIHandlers) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	var cmd inbound.UpdateRecipeCommand
	if !h.decode(w, r, &cmd) {
		return
	}
	cmd.RecipeID = chi.URLParam(r, "id")

	recipe, err := h.recipeService.UpdateRecipe(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    recipe,
		Message: "Recipe updated successfully",
	})
}

// DeleteRecipe handles DELETE /api/v1/recipes/{id}
func (h *APIHandlers) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	if err := h.recipeService.DeleteRecipe(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Recipe deleted successfully"})
}

// DuplicateRecipe handles POST /api/v1/recipes/{id}/duplicate
func (h *APIHandlers) DuplicateRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.recipeService.DuplicateRecipe(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data:    recipe,
		Message: "Recipe duplicated successfully",
	})
}

// ScaleRecipe handles POST /api/v1/recipes/{id}/scale
func (h *APIHandlers) ScaleRecipe(w http.ResponseWriter, r *http.Request) {
	var cmd inbound.ScaleRecipeCommand
	if !h.decode(w, r, &cmd) {
		return
	}
	cmd.RecipeID = chi.URLParam(r, "id")

	recipe, err := h.recipeService.ScaleRecipe(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: recipe})
}

// AnalyzeRecipe handles GET /api/v1/recipes/{id}/analysis
func (h *APIHandlers) AnalyzeRecipe(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.analysisService.AnalyzeRecipe(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: analysis})
}

// AnalyzeDraft handles POST /api/v1/analysis
func (h *APIHandlers) AnalyzeDraft(w http.ResponseWriter, r *http.Request) {
	var cmd inbound.RecipeCommand
	if !h.decode(w, r, &cmd) {
		return
	}

	analysis, err := h.analysisService.AnalyzeDraft(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: analysis})
}

// ExportCSV handles GET /api/v1/recipes/{id}/export.csv
func (h *APIHandlers) ExportCSV(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sheet, err := h.analysisService.ExportCSV(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(sheet); err != nil {
		h.logger.Warn("Failed to write CSV response", zap.Error(err))
	}
}

// PublishCSV handles POST /api/v1/recipes/{id}/export
func (h *APIHandlers) PublishCSV(w http.ResponseWriter, r *http.Request) {
	location, err := h.analysisService.PublishCSV(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]string{"location": location},
		Message: "Analysis sheet published",
	})
}

// decode reads a JSON body into v, answering 400 on failure
func (h *APIHandlers) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		h.writeError(w, r, errors.NewBadRequestError("Invalid JSON body").WithCause(err))
		return false
	}
	return true
}

// writeJSON writes a JSON response
func (h *APIHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// writeError maps err to an AppError response
func (h *APIHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.Wrap(err, "An unexpected error occurred")
	}

	fields := []zap.Field{
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("code", string(appErr.Code)),
		zap.Error(err),
	}
	if appErr.StatusCode() >= http.StatusInternalServerError {
		h.logger.Error("Request failed", fields...)
	} else {
		h.logger.Debug("Request rejected", fields...)
	}

	message := appErr.Message
	if appErr.Details != "" {
		message = message + ": " + appErr.Details
	}
	response := APIResponse{
		Success: false,
		Error:   string(appErr.Code),
		Message: message,
	}
	if details, ok := appErr.Metadata["validation_errors"]; ok {
		response.Data = details
	}
	h.writeJSON(w, appErr.StatusCode(), response)
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
