package recipe_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alchemorsel/patisserie/internal/application/recipe"
	"github.com/alchemorsel/patisserie/internal/domain/pastry"
	"github.com/alchemorsel/patisserie/internal/ports/inbound"
	"github.com/alchemorsel/patisserie/internal/ports/outbound"
	apperrors "github.com/alchemorsel/patisserie/pkg/errors"
	"github.com/alchemorsel/patisserie/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type staticCategories struct {
	table *pastry.CategoryTable
}

func (s staticCategories) Categories() *pastry.CategoryTable { return s.table }

// RecipeServiceTestSuite defines the test suite for the recipe service
type RecipeServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	repo    *testutils.MockRecipeRepository
	service *recipe.RecipeService
}

func (suite *RecipeServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.repo = new(testutils.MockRecipeRepository)
	categories := staticCategories{table: pastry.NewCategoryTable(1, []pastry.RecipeCategory{
		testutils.GanacheMolded, testutils.IceCream,
	})}
	suite.service = recipe.NewRecipeService(suite.repo, categories, nil, zap.NewNop())
}

func (suite *RecipeServiceTestSuite) TearDownTest() {
	suite.repo.AssertExpectations(suite.T())
}

func ganacheCommand() inbound.RecipeCommand {
	return inbound.RecipeCommand{
		Name:       "Ganache negra 65%",
		CategoryID: testutils.GanacheMolded.ID,
		Author:     "Marta",
		Items: []inbound.RecipeItemCommand{
			{IngredientID: testutils.Cream35.ID, QuantityG: 305},
			{IngredientID: testutils.DarkChoc65.ID, QuantityG: 420},
		},
	}
}

func (suite *RecipeServiceTestSuite) TestCreateRecipe_Success() {
	// Arrange
	suite.repo.On("Create", suite.ctx, mock.AnythingOfType("*pastry.Recipe")).Return(nil).Once()

	// Act
	r, err := suite.service.CreateRecipe(suite.ctx, ganacheCommand())

	// Assert
	require.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), r.ID)
	assert.Equal(suite.T(), "Ganache negra 65%", r.Name)
	assert.Equal(suite.T(), pastry.RecipeStatusDraft, r.Status)
	assert.Equal(suite.T(), 725.0, r.TotalWeightG())
	assert.Equal(suite.T(), "Marta", r.Author)
}

func (suite *RecipeServiceTestSuite) TestCreateRecipe_DuplicateIngredients_ShouldCollapse() {
	// Arrange
	cmd := ganacheCommand()
	cmd.Items = append(cmd.Items, inbound.RecipeItemCommand{IngredientID: testutils.Cream35.ID, QuantityG: 100})
	suite.repo.On("Create", suite.ctx, mock.Anything).Return(nil).Once()

	// Act
	r, err := suite.service.CreateRecipe(suite.ctx, cmd)

	// Assert
	require.NoError(suite.T(), err)
	require.Len(suite.T(), r.Items, 2)
	assert.Equal(suite.T(), 100.0, r.Items[0].QuantityG)
}

func (suite *RecipeServiceTestSuite) TestCreateRecipe_InvalidInput() {
	suite.Run("MissingName_ShouldFailValidation", func() {
		cmd := ganacheCommand()
		cmd.Name = ""

		_, err := suite.service.CreateRecipe(suite.ctx, cmd)

		assert.True(suite.T(), apperrors.Is(err, apperrors.CodeValidationFailed))
	})

	suite.Run("NonPositiveQuantity_ShouldFailValidation", func() {
		cmd := ganacheCommand()
		cmd.Items[0].QuantityG = 0

		_, err := suite.service.CreateRecipe(suite.ctx, cmd)

		assert.True(suite.T(), apperrors.Is(err, apperrors.CodeValidationFailed))
	})

	suite.Run("UnknownStatus_ShouldFailValidation", func() {
		cmd := ganacheCommand()
		cmd.Status = "Publicada"

		_, err := suite.service.CreateRecipe(suite.ctx, cmd)

		assert.True(suite.T(), apperrors.Is(err, apperrors.CodeValidationFailed))
	})

	suite.Run("UnknownCategory_ShouldBeNotFound", func() {
		cmd := ganacheCommand()
		cmd.CategoryID = "croissant"

		_, err := suite.service.CreateRecipe(suite.ctx, cmd)

		assert.True(suite.T(), apperrors.Is(err, apperrors.CodeCategoryNotFound))
	})

	suite.repo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *RecipeServiceTestSuite) TestCreateRecipe_RepositoryFailure_ShouldBeDatabaseError() {
	// Arrange
	suite.repo.On("Create", suite.ctx, mock.Anything).Return(errors.New("disk full")).Once()

	// Act
	_, err := suite.service.CreateRecipe(suite.ctx, ganacheCommand())

	// Assert
	assert.True(suite.T(), apperrors.Is(err, apperrors.CodeDatabaseError))
}

func (suite *RecipeServiceTestSuite) TestUpdateRecipe_Success() {
	// Arrange
	stored := testutils.GanacheRecipe()
	stored.Version = 3
	suite.repo.On("FindByID", suite.ctx, stored.ID).Return(stored, nil).Once()
	suite.repo.On("UpdateWithVersion", suite.ctx, stored, int64(3)).
		Run(func(args mock.Arguments) { args.Get(1).(*pastry.Recipe).Version++ }).
		Return(nil).Once()

	cmd := inbound.UpdateRecipeCommand{RecipeID: stored.ID, Version: 3, RecipeCommand: ganacheCommand()}
	cmd.Status = pastry.RecipeStatusConfirmed

	// Act
	r, err := suite.service.UpdateRecipe(suite.ctx, cmd)

	// Assert
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(4), r.Version)
	assert.Equal(suite.T(), pastry.RecipeStatusConfirmed, r.Status)
	assert.Len(suite.T(), r.Items, 2)
}

func (suite *RecipeServiceTestSuite) TestUpdateRecipe_ZeroVersion_ShouldUseStoredVersion() {
	// Arrange
	stored := testutils.GanacheRecipe()
	stored.Version = 7
	suite.repo.On("FindByID", suite.ctx, stored.ID).Return(stored, nil).Once()
	suite.repo.On("UpdateWithVersion", suite.ctx, stored, int64(7)).Return(nil).Once()

	// Act
	_, err := suite.service.UpdateRecipe(suite.ctx, inbound.UpdateRecipeCommand{
		RecipeID: stored.ID, RecipeCommand: ganacheCommand(),
	})

	// Assert
	require.NoError(suite.T(), err)
}

func (suite *RecipeServiceTestSuite) TestUpdateRecipe_StaleVersion_ShouldConflict() {
	suite.Run("DetectedBeforeWrite", func() {
		stored := testutils.GanacheRecipe()
		stored.Version = 5
		suite.repo.On("FindByID", suite.ctx, stored.ID).Return(stored, nil).Once()

		_, err := suite.service.UpdateRecipe(suite.ctx, inbound.UpdateRecipeCommand{
			RecipeID: stored.ID, Version: 4, RecipeCommand: ganacheCommand(),
		})

		assert.True(suite.T(), apperrors.Is(err, apperrors.CodeVersionConflict))
	})

	suite.Run("DetectedByRepository", func() {
		stored := testutils.GanacheRecipe()
		stored.Version = 2
		suite.repo.On("FindByID", suite.ctx, stored.ID).Return(stored, nil).Once()
		suite.repo.On("UpdateWithVersion", suite.ctx, stored, int64(2)).Return(pastry.ErrVersionConflict).Once()

		_, err := suite.service.UpdateRecipe(suite.ctx, inbound.UpdateRecipeCommand{
			RecipeID: stored.ID, Version: 2, RecipeCommand: ganacheCommand(),
		})

		assert.True(suite.T(), apperrors.Is(err, apperrors.CodeVersionConflict))
	})
}

func (suite *RecipeServiceTestSuite) TestGetRecipe_NotFound() {
	// Arrange
	suite.repo.On("FindByID", suite.ctx, "missing").Return(nil, pastry.ErrRecipeNotFound).Once()

	// Act
	_, err := suite.service.GetRecipe(suite.ctx, "missing")

	// Assert
	assert.True(suite.T(), apperrors.Is(err, apperrors.CodeRecipeNotFound))
}

func (suite *RecipeServiceTestSuite) TestDeleteRecipe() {
	suite.Run("Success", func() {
		suite.repo.On("Delete", suite.ctx, "r1").Return(nil).Once()

		assert.NoError(suite.T(), suite.service.DeleteRecipe(suite.ctx, "r1"))
	})

	suite.Run("NotFound", func() {
		suite.repo.On("Delete", suite.ctx, "r2").Return(pastry.ErrRecipeNotFound).Once()

		err := suite.service.DeleteRecipe(suite.ctx, "r2")

		assert.True(suite.T(), apperrors.Is(err, apperrors.CodeRecipeNotFound))
	})
}

func (suite *RecipeServiceTestSuite) TestDuplicateRecipe_ShouldCreateDraftCopy() {
	// Arrange
	stored := testutils.GanacheRecipe()
	stored.Status = pastry.RecipeStatusConfirmed
	suite.repo.On("FindByID", suite.ctx, stored.ID).Return(stored, nil).Once()
	suite.repo.On("Create", suite.ctx, mock.MatchedBy(func(r *pastry.Recipe) bool {
		return r.ID != stored.ID
	})).Return(nil).Once()

	// Act
	dup, err := suite.service.DuplicateRecipe(suite.ctx, stored.ID)

	// Assert
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), pastry.RecipeStatusDraft, dup.Status)
	assert.Equal(suite.T(), stored.TotalWeightG(), dup.TotalWeightG())
	assert.Contains(suite.T(), dup.Name, stored.Name)
}

func (suite *RecipeServiceTestSuite) TestScaleRecipe() {
	suite.Run("Success_ShouldHitTargetWeight", func() {
		stored := testutils.GanacheRecipe()
		suite.repo.On("FindByID", suite.ctx, stored.ID).Return(stored, nil).Once()
		suite.repo.On("UpdateWithVersion", suite.ctx, stored, stored.Version).Return(nil).Once()

		r, err := suite.service.ScaleRecipe(suite.ctx, inbound.ScaleRecipeCommand{RecipeID: stored.ID, TargetWeightG: 2026})

		require.NoError(suite.T(), err)
		assert.InDelta(suite.T(), 2026.0, r.TotalWeightG(), 0.5)
		assert.InDelta(suite.T(), 610.0, r.Items[0].QuantityG, 0.05)
	})

	suite.Run("EmptyRecipe_ShouldFailValidation", func() {
		empty := testutils.NewRecipeBuilder().Build()
		suite.repo.On("FindByID", suite.ctx, empty.ID).Return(empty, nil).Once()

		_, err := suite.service.ScaleRecipe(suite.ctx, inbound.ScaleRecipeCommand{RecipeID: empty.ID, TargetWeightG: 500})

		assert.True(suite.T(), apperrors.Is(err, apperrors.CodeValidationFailed))
		assert.ErrorIs(suite.T(), err, pastry.ErrEmptyRecipe)
	})

	suite.Run("NonPositiveTarget_ShouldFailValidation", func() {
		_, err := suite.service.ScaleRecipe(suite.ctx, inbound.ScaleRecipeCommand{RecipeID: "r1", TargetWeightG: 0})

		assert.True(suite.T(), apperrors.Is(err, apperrors.CodeValidationFailed))
	})
}

func (suite *RecipeServiceTestSuite) TestListRecipes_Paging() {
	suite.Run("Defaults", func() {
		suite.repo.On("List", suite.ctx, outbound.ListCriteria{Offset: 0, Limit: recipe.DefaultPageSize}).
			Return(nil, 0, nil).Once()

		list, err := suite.service.ListRecipes(suite.ctx, inbound.ListRecipesQuery{})

		require.NoError(suite.T(), err)
		assert.NotNil(suite.T(), list.Recipes)
		assert.Equal(suite.T(), 1, list.Page)
		assert.Equal(suite.T(), recipe.DefaultPageSize, list.PageSize)
	})

	suite.Run("ClampedAndFiltered", func() {
		r := testutils.GanacheRecipe()
		suite.repo.On("List", suite.ctx, outbound.ListCriteria{
			CategoryID: "ice_cream", Query: "vainilla", Offset: 200, Limit: recipe.MaxPageSize,
		}).Return([]*pastry.Recipe{r}, 201, nil).Once()

		list, err := suite.service.ListRecipes(suite.ctx, inbound.ListRecipesQuery{
			CategoryID: "ice_cream", Query: "vainilla", Page: 3, PageSize: 1000,
		})

		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), 201, list.Total)
		assert.Equal(suite.T(), recipe.MaxPageSize, list.PageSize)
		assert.Len(suite.T(), list.Recipes, 1)
	})
}

func TestRecipeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RecipeServiceTestSuite))
}
