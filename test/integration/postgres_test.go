//go:build integration
// +build integration

// Package integration runs the services against a real PostgreSQL database.
// Set PATISSERIE_DATABASE_DRIVER=postgres and the PATISSERIE_DATABASE_*
// connection variables to enable it.
package integration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alchemorsel/patisserie/internal/application/analysis"
	"github.com/alchemorsel/patisserie/internal/application/catalog"
	"github.com/alchemorsel/patisserie/internal/application/recipe"
	"github.com/alchemorsel/patisserie/internal/domain/validation"
	"github.com/alchemorsel/patisserie/internal/infrastructure/config"
	gormRepo "github.com/alchemorsel/patisserie/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/patisserie/internal/infrastructure/persistence/jsonfile"
	"github.com/alchemorsel/patisserie/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/patisserie/internal/infrastructure/persistence/postgres"
	"github.com/alchemorsel/patisserie/internal/ports/inbound"
	"github.com/alchemorsel/patisserie/internal/ports/outbound"
	apperrors "github.com/alchemorsel/patisserie/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

// PostgresIntegrationTestSuite exercises recipes and analyses on PostgreSQL
type PostgresIntegrationTestSuite struct {
	suite.Suite
	ctx      context.Context
	db       *gorm.DB
	repo     outbound.RecipeRepository
	catalog  *catalog.Catalog
	recipes  *recipe.RecipeService
	analyses *analysis.Service
}

// SetupSuite connects to the database and loads the built-in catalog
func (suite *PostgresIntegrationTestSuite) SetupSuite() {
	suite.ctx = context.Background()

	cfg, err := config.Load("")
	require.NoError(suite.T(), err)
	if cfg.Database.Driver != "postgres" {
		suite.T().Skip("PATISSERIE_DATABASE_DRIVER is not postgres")
	}
	cfg.Database.AutoMigrate = true

	logger := zaptest.NewLogger(suite.T())
	suite.db, err = postgres.Connect(cfg, logger)
	require.NoError(suite.T(), err, "Failed to connect to PostgreSQL")

	suite.repo = gormRepo.NewRecipeRepository(suite.db)
	suite.catalog = catalog.New(
		gormRepo.NewIngredientRepository(suite.db),
		gormRepo.NewCategoryRepository(suite.db),
		nil,
		logger,
	)
	require.NoError(suite.T(), suite.catalog.Bootstrap(suite.ctx, jsonfile.Source{}, true))

	suite.recipes = recipe.NewRecipeService(suite.repo, suite.catalog, nil, logger)
	suite.analyses = analysis.NewService(analysis.Dependencies{
		Recipes: suite.repo,
		Tables:  suite.catalog,
		Cache:   memory.NewCacheRepository(0),
		Logger:  logger,
	})
}

// TearDownSuite closes the connection
func (suite *PostgresIntegrationTestSuite) TearDownSuite() {
	if suite.db == nil {
		return
	}
	if sqlDB, err := suite.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// SetupTest starts every test without recipes
func (suite *PostgresIntegrationTestSuite) SetupTest() {
	require.NoError(suite.T(), suite.db.Exec("DELETE FROM recipes").Error)
}

func (suite *PostgresIntegrationTestSuite) ganacheCommand() inbound.RecipeCommand {
	stored, err := jsonfile.LoadRecipe(filepath.Join("..", "..", "data", "recipes", "ganache_negra_65.json"))
	require.NoError(suite.T(), err)

	cmd := inbound.RecipeCommand{Name: stored.Name, CategoryID: stored.CategoryID, Status: stored.Status}
	for _, item := range stored.Items {
		cmd.Items = append(cmd.Items, inbound.RecipeItemCommand{IngredientID: item.IngredientID, QuantityG: item.QuantityG})
	}
	return cmd
}

func (suite *PostgresIntegrationTestSuite) TestRecipeLifecycle() {
	suite.Run("Create_ShouldPreserveItemOrder", func() {
		// Arrange
		cmd := suite.ganacheCommand()

		// Act
		created, err := suite.recipes.CreateRecipe(suite.ctx, cmd)

		// Assert
		require.NoError(suite.T(), err)
		found, err := suite.recipes.GetRecipe(suite.ctx, created.ID)
		require.NoError(suite.T(), err)
		require.Len(suite.T(), found.Items, len(cmd.Items))
		for i, item := range cmd.Items {
			assert.Equal(suite.T(), item.IngredientID, found.Items[i].IngredientID)
		}
		assert.Equal(suite.T(), int64(1), found.Version)
	})

	suite.Run("StaleUpdate_ShouldConflict", func() {
		// Arrange
		created, err := suite.recipes.CreateRecipe(suite.ctx, suite.ganacheCommand())
		require.NoError(suite.T(), err)
		_, err = suite.recipes.ScaleRecipe(suite.ctx, inbound.ScaleRecipeCommand{RecipeID: created.ID, TargetWeightG: 2026})
		require.NoError(suite.T(), err)

		// Act
		_, err = suite.recipes.UpdateRecipe(suite.ctx, inbound.UpdateRecipeCommand{
			RecipeID:      created.ID,
			Version:       created.Version,
			RecipeCommand: suite.ganacheCommand(),
		})

		// Assert
		assert.True(suite.T(), apperrors.Is(err, apperrors.CodeVersionConflict))
	})

	suite.Run("Search_ShouldBeCaseInsensitive", func() {
		// Arrange
		_, err := suite.recipes.CreateRecipe(suite.ctx, suite.ganacheCommand())
		require.NoError(suite.T(), err)

		// Act
		list, err := suite.recipes.ListRecipes(suite.ctx, inbound.ListRecipesQuery{Query: "GANACHE"})

		// Assert
		require.NoError(suite.T(), err)
		assert.GreaterOrEqual(suite.T(), list.Total, 1)
	})
}

func (suite *PostgresIntegrationTestSuite) TestAnalyzeStoredRecipe() {
	// Arrange
	created, err := suite.recipes.CreateRecipe(suite.ctx, suite.ganacheCommand())
	require.NoError(suite.T(), err)

	// Act
	dto, err := suite.analyses.AnalyzeRecipe(suite.ctx, created.ID)

	// Assert
	require.NoError(suite.T(), err)
	assert.InDelta(suite.T(), 1013.0, dto.Totals.TotalWeightG, 1e-9)
	fat, ok := dto.Validation.Metric(validation.MetricFat)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), validation.LevelRed, fat.Level)
}

func TestPostgresIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationTestSuite))
}
