// Package analysis implements the composition analysis use cases: grading
// stored and draft recipes, exporting analysis sheets and listing the
// lookup tables.
package analysis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math"
	"time"

	"github.com/alchemorsel/patisserie/internal/domain/composition"
	"github.com/alchemorsel/patisserie/internal/domain/pastry"
	"github.com/alchemorsel/patisserie/internal/domain/validation"
	"github.com/alchemorsel/patisserie/internal/ports/inbound"
	"github.com/alchemorsel/patisserie/internal/ports/outbound"
	"github.com/alchemorsel/patisserie/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// Analysis kinds reported to the recorder
const (
	KindRecipe = "recipe"
	KindDraft  = "draft"
)

// Export targets reported to the recorder
const (
	TargetCSV = "csv"
	TargetS3  = "s3"
)

// Cache outcomes reported to the recorder
const (
	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheError = "error"
)

const csvContentType = "text/csv; charset=utf-8"

// Tables exposes the current lookup snapshots
type Tables interface {
	Ingredients() *pastry.IngredientTable
	Categories() *pastry.CategoryTable
}

// SheetWriter renders an analysis as a spreadsheet
type SheetWriter interface {
	Bytes(analysis composition.Analysis) ([]byte, error)
}

// Recorder receives analysis metrics
type Recorder interface {
	AnalysisComputed(kind string, duration time.Duration)
	MetricGraded(metric, level string)
	CacheOperation(result string)
	Export(target string, err error)
}

// Config tunes the service
type Config struct {
	NearTolerancePct float64
	CacheTTL         time.Duration
}

// Dependencies groups the collaborators of the service. Cache, Storage,
// Recorder and Tracer are optional.
type Dependencies struct {
	Recipes  outbound.RecipeRepository
	Tables   Tables
	Cache    outbound.CacheRepository
	Storage  outbound.StorageService
	Sheets   SheetWriter
	Recorder Recorder
	Tracer   trace.Tracer
	Logger   *zap.Logger
	Config   Config
}

// Service implements inbound.AnalysisService
type Service struct {
	recipes   outbound.RecipeRepository
	tables    Tables
	cache     outbound.CacheRepository
	storage   outbound.StorageService
	sheets    SheetWriter
	recorder  Recorder
	tracer    trace.Tracer
	validator *validation.Validator
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewService creates the analysis service
func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	recorder := deps.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	tracer := deps.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	tolerance := deps.Config.NearTolerancePct
	if tolerance <= 0 {
		tolerance = validation.NearTolerancePct
	}

	return &Service{
		recipes:   deps.Recipes,
		tables:    deps.Tables,
		cache:     deps.Cache,
		storage:   deps.Storage,
		sheets:    deps.Sheets,
		recorder:  recorder,
		tracer:    tracer,
		validator: validation.NewValidator(validation.WithTolerance(tolerance)),
		cacheTTL:  deps.Config.CacheTTL,
		logger:    logger.Named("analysis-service"),
	}
}

// AnalyzeRecipe analyzes a stored recipe. Results are memoized per recipe
// version and lookup table versions.
func (s *Service) AnalyzeRecipe(ctx context.Context, recipeID string) (*inbound.AnalysisDTO, error) {
	ctx, span := s.tracer.Start(ctx, "AnalysisService.AnalyzeRecipe",
		trace.WithAttributes(attribute.String("recipe.id", recipeID)))
	defer span.End()

	recipe, err := s.findRecipe(ctx, recipeID)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return s.analyzeStored(ctx, recipe), nil
}

// AnalyzeDraft analyzes an unsaved recipe. Suspicious input is reported as
// warnings rather than rejected.
func (s *Service) AnalyzeDraft(ctx context.Context, cmd inbound.RecipeCommand) (*inbound.AnalysisDTO, error) {
	_, span := s.tracer.Start(ctx, "AnalysisService.AnalyzeDraft",
		trace.WithAttributes(attribute.Int("recipe.items", len(cmd.Items))))
	defer span.End()

	recipe := pastry.NewRecipe(cmd.Name)
	recipe.CategoryID = cmd.CategoryID
	for _, item := range cmd.Items {
		recipe.Items = append(recipe.Items, pastry.RecipeItem{
			IngredientID: item.IngredientID,
			QuantityG:    item.QuantityG,
		})
	}

	dto := s.compute(KindDraft, recipe, s.tables.Ingredients(), s.tables.Categories())
	span.SetAttributes(attribute.Int("analysis.warnings", len(dto.Warnings)))
	return dto, nil
}

// ExportCSV renders the analysis of a stored recipe as a CSV sheet
func (s *Service) ExportCSV(ctx context.Context, recipeID string) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "AnalysisService.ExportCSV",
		trace.WithAttributes(attribute.String("recipe.id", recipeID)))
	defer span.End()

	recipe, err := s.findRecipe(ctx, recipeID)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	sheet, err := s.sheet(ctx, recipe)
	s.recorder.Export(TargetCSV, err)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return sheet, nil
}

// PublishCSV uploads the CSV sheet of a stored recipe and returns its location
func (s *Service) PublishCSV(ctx context.Context, recipeID string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "AnalysisService.PublishCSV",
		trace.WithAttributes(attribute.String("recipe.id", recipeID)))
	defer span.End()

	if s.storage == nil {
		return "", errors.NewAppError(errors.CodeServiceUnavailable, "CSV publishing is disabled", "")
	}

	recipe, err := s.findRecipe(ctx, recipeID)
	if err != nil {
		recordSpanError(span, err)
		return "", err
	}

	sheet, err := s.sheet(ctx, recipe)
	if err != nil {
		recordSpanError(span, err)
		return "", err
	}

	key := fmt.Sprintf("%s/v%d.csv", recipe.ID, recipe.Version)
	location, err := s.storage.Upload(ctx, key, sheet, csvContentType)
	s.recorder.Export(TargetS3, err)
	if err != nil {
		recordSpanError(span, err)
		return "", errors.NewStorageError("publish csv", err)
	}

	s.logger.Info("Analysis sheet published",
		zap.String("recipe_id", recipe.ID),
		zap.String("location", location),
	)
	return location, nil
}

// ListIngredients returns the current ingredient profiles
func (s *Service) ListIngredients(ctx context.Context) ([]pastry.IngredientProfile, error) {
	return s.tables.Ingredients().All(), nil
}

// ListCategories returns the current recipe categories
func (s *Service) ListCategories(ctx context.Context) ([]pastry.RecipeCategory, error) {
	return s.tables.Categories().All(), nil
}

// CacheKey identifies a memoized analysis. Tables are identified by content
// fingerprint so that keys stay valid in a cache shared across processes.
func CacheKey(recipeID string, recipeVersion int64, ingredients, categories string) string {
	return fmt.Sprintf("analysis:%s:%d:%s:%s", recipeID, recipeVersion, ingredients, categories)
}

func (s *Service) analyzeStored(ctx context.Context, recipe *pastry.Recipe) *inbound.AnalysisDTO {
	ingredients := s.tables.Ingredients()
	categories := s.tables.Categories()
	key := CacheKey(recipe.ID, recipe.Version, ingredients.Fingerprint(), categories.Fingerprint())

	if dto, ok := s.cached(ctx, key); ok {
		trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("analysis.cached", true))
		return dto
	}

	dto := s.compute(KindRecipe, recipe, ingredients, categories)
	dto.RecipeID = recipe.ID
	s.store(ctx, key, dto)
	return dto
}

func (s *Service) compute(
	kind string,
	recipe *pastry.Recipe,
	ingredients *pastry.IngredientTable,
	categories *pastry.CategoryTable,
) *inbound.AnalysisDTO {
	start := time.Now()

	analysis := composition.NewCalculator(ingredients).Calculate(recipe)
	category := categories.Category(recipe.CategoryID)
	result := s.validator.Validate(analysis.Totals, category)

	for _, m := range result.Metrics {
		s.recorder.MetricGraded(m.Key, m.Level.String())
	}
	s.recorder.AnalysisComputed(kind, time.Since(start))

	return &inbound.AnalysisDTO{
		RecipeName:   recipe.Name,
		CategoryID:   recipe.CategoryID,
		Breakdowns:   analysis.Breakdowns,
		Totals:       analysis.Totals,
		Validation:   result,
		IsValid:      result.IsValid(),
		HasWarnings:  result.HasWarnings(),
		HasErrors:    result.HasErrors(),
		Warnings:     inputWarnings(recipe, ingredients, category),
		IngredientsV: ingredients.Version(),
		CategoriesV:  categories.Version(),
	}
}

func (s *Service) cached(ctx context.Context, key string) (*inbound.AnalysisDTO, bool) {
	if s.cache == nil {
		return nil, false
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if stderrors.Is(err, outbound.ErrCacheMiss) {
			s.recorder.CacheOperation(cacheMiss)
		} else {
			s.recorder.CacheOperation(cacheError)
			s.logger.Warn("Analysis cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var dto inbound.AnalysisDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		s.recorder.CacheOperation(cacheError)
		s.logger.Warn("Discarding corrupt cached analysis", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	s.recorder.CacheOperation(cacheHit)
	return &dto, true
}

func (s *Service) store(ctx context.Context, key string, dto *inbound.AnalysisDTO) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(dto)
	if err != nil {
		s.logger.Warn("Failed to encode analysis", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn("Analysis cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) sheet(ctx context.Context, recipe *pastry.Recipe) ([]byte, error) {
	dto := s.analyzeStored(ctx, recipe)
	data, err := s.sheets.Bytes(composition.Analysis{
		Breakdowns: dto.Breakdowns,
		Totals:     dto.Totals,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to render analysis sheet")
	}
	return data, nil
}

func (s *Service) findRecipe(ctx context.Context, recipeID string) (*pastry.Recipe, error) {
	recipe, err := s.recipes.FindByID(ctx, recipeID)
	if err != nil {
		if stderrors.Is(err, pastry.ErrRecipeNotFound) {
			return nil, errors.NewRecipeNotFoundError(recipeID)
		}
		return nil, errors.NewDatabaseError("find recipe", err)
	}
	return recipe, nil
}

// inputWarnings lists input the calculator tolerated silently
func inputWarnings(recipe *pastry.Recipe, ingredients pastry.IngredientLookup, category *pastry.RecipeCategory) []inbound.InputWarning {
	var warnings []inbound.InputWarning
	seen := make(map[string]bool)

	for _, item := range recipe.Items {
		if item.QuantityG <= 0 {
			warnings = append(warnings, inbound.InputWarning{
				Code:         inbound.WarningNonPositiveQty,
				IngredientID: item.IngredientID,
				Message:      fmt.Sprintf("quantity %.1f g is not positive", item.QuantityG),
			})
		}

		if seen[item.IngredientID] {
			continue
		}
		seen[item.IngredientID] = true

		profile, ok := ingredients.Ingredient(item.IngredientID)
		if !ok {
			warnings = append(warnings, inbound.InputWarning{
				Code:         inbound.WarningUnknownIngredient,
				IngredientID: item.IngredientID,
				Message:      "ingredient is not in the table and was skipped",
			})
			continue
		}
		if sum := profile.ComponentSum(); math.Abs(sum-100) >= pastry.ComponentSumTolerance {
			warnings = append(warnings, inbound.InputWarning{
				Code:         inbound.WarningProfileSum,
				IngredientID: item.IngredientID,
				Message:      fmt.Sprintf("components of %s add up to %.1f%%", profile.Name, sum),
			})
		}
	}

	if recipe.CategoryID != "" && category == nil {
		warnings = append(warnings, inbound.InputWarning{
			Code:    inbound.WarningUnknownCategory,
			Message: fmt.Sprintf("category %q is unknown, nothing was graded", recipe.CategoryID),
		})
	}
	return warnings
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

type nopRecorder struct{}

func (nopRecorder) AnalysisComputed(string, time.Duration) {}
func (nopRecorder) MetricGraded(string, string)            {}
func (nopRecorder) CacheOperation(string)                  {}
func (nopRecorder) Export(string, error)                   {}

var _ inbound.AnalysisService = (*Service)(nil)
