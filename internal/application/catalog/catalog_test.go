package catalog_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alchemorsel/patisserie/internal/application/catalog"
	"github.com/alchemorsel/patisserie/internal/domain/pastry"
	gormrepo "github.com/alchemorsel/patisserie/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/patisserie/internal/infrastructure/persistence/jsonfile"
	"github.com/alchemorsel/patisserie/test/testutils"
	"github.com/alchemorsel/patisserie/test/testutils/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []string
	errs   int
}

func (o *recordingObserver) CatalogReloaded(table string, version int64, entries int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, table)
	if err != nil {
		o.errs++
	}
}

// CatalogTestSuite exercises the catalog against mocked repositories
type CatalogTestSuite struct {
	suite.Suite
	ctx         context.Context
	ingredients *testutils.MockIngredientRepository
	categories  *testutils.MockCategoryRepository
	observer    *recordingObserver
	catalog     *catalog.Catalog
}

func (suite *CatalogTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.ingredients = new(testutils.MockIngredientRepository)
	suite.categories = new(testutils.MockCategoryRepository)
	suite.observer = &recordingObserver{}
	suite.catalog = catalog.New(suite.ingredients, suite.categories, suite.observer, zap.NewNop())
}

func (suite *CatalogTestSuite) TestEmptyCatalog() {
	assert.Equal(suite.T(), int64(0), suite.catalog.Ingredients().Version())
	assert.Equal(suite.T(), 0, suite.catalog.Ingredients().Len())
	assert.Nil(suite.T(), suite.catalog.Categories().Category("ice_cream"))
}

func (suite *CatalogTestSuite) TestReplace_ShouldBumpVersion() {
	// Act
	v1 := suite.catalog.ReplaceIngredients(testutils.GanacheIngredients())
	old := suite.catalog.Ingredients()
	v2 := suite.catalog.ReplaceIngredients(testutils.GanacheIngredients()[:1])

	// Assert
	assert.Equal(suite.T(), int64(1), v1)
	assert.Equal(suite.T(), int64(2), v2)
	assert.Equal(suite.T(), 6, old.Len(), "earlier snapshots are immutable")
	assert.Equal(suite.T(), 1, suite.catalog.Ingredients().Len())
	assert.Equal(suite.T(), []string{catalog.TableIngredients, catalog.TableIngredients}, suite.observer.events)
}

func (suite *CatalogTestSuite) TestBootstrap_EmptyRepositories_ShouldSeed() {
	// Arrange
	suite.ingredients.On("Count", mock.Anything).Return(int64(0), nil)
	suite.ingredients.On("Upsert", mock.Anything, mock.MatchedBy(func(p []pastry.IngredientProfile) bool {
		return len(p) >= 40
	})).Return(nil).Once()
	suite.categories.On("Count", mock.Anything).Return(int64(0), nil)
	suite.categories.On("Upsert", mock.Anything, mock.Anything).Return(nil).Once()
	suite.ingredients.On("FindAll", mock.Anything).Return(testutils.GanacheIngredients(), nil)
	suite.categories.On("FindAll", mock.Anything).Return([]pastry.RecipeCategory{testutils.GanacheMolded}, nil)

	// Act
	err := suite.catalog.Bootstrap(suite.ctx, jsonfile.Source{}, true)

	// Assert
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 6, suite.catalog.Ingredients().Len())
	assert.NotNil(suite.T(), suite.catalog.Categories().Category("ganache_molded"))
	suite.ingredients.AssertExpectations(suite.T())
	suite.categories.AssertExpectations(suite.T())
}

func (suite *CatalogTestSuite) TestBootstrap_PopulatedRepositories_ShouldNotSeed() {
	suite.ingredients.On("Count", mock.Anything).Return(int64(6), nil)
	suite.categories.On("Count", mock.Anything).Return(int64(1), nil)
	suite.ingredients.On("FindAll", mock.Anything).Return(testutils.GanacheIngredients(), nil)
	suite.categories.On("FindAll", mock.Anything).Return([]pastry.RecipeCategory{}, nil)

	err := suite.catalog.Bootstrap(suite.ctx, jsonfile.Source{}, true)

	require.NoError(suite.T(), err)
	suite.ingredients.AssertNotCalled(suite.T(), "Upsert", mock.Anything, mock.Anything)
	suite.categories.AssertNotCalled(suite.T(), "Upsert", mock.Anything, mock.Anything)
}

func (suite *CatalogTestSuite) TestBootstrap_SeedDisabled_ShouldOnlyRefresh() {
	suite.ingredients.On("FindAll", mock.Anything).Return([]pastry.IngredientProfile{}, nil)
	suite.categories.On("FindAll", mock.Anything).Return([]pastry.RecipeCategory{}, nil)

	require.NoError(suite.T(), suite.catalog.Bootstrap(suite.ctx, jsonfile.Source{}, false))

	suite.ingredients.AssertNotCalled(suite.T(), "Count", mock.Anything)
	assert.Equal(suite.T(), int64(1), suite.catalog.Categories().Version())
}

func (suite *CatalogTestSuite) TestRefresh_Failure_ShouldKeepSnapshot() {
	// Arrange
	suite.catalog.ReplaceIngredients(testutils.GanacheIngredients())
	suite.ingredients.On("FindAll", mock.Anything).Return(nil, errors.New("db down"))

	// Act
	err := suite.catalog.Refresh(suite.ctx)

	// Assert
	require.Error(suite.T(), err)
	assert.Equal(suite.T(), int64(1), suite.catalog.Ingredients().Version())
	assert.Equal(suite.T(), 1, suite.observer.errs)
}

func (suite *CatalogTestSuite) TestImportIngredients() {
	profiles := testutils.GanacheIngredients()
	suite.ingredients.On("ReplaceAll", mock.Anything, profiles).Return(nil).Once()
	suite.ingredients.On("FindAll", mock.Anything).Return(profiles, nil)

	version, err := suite.catalog.ImportIngredients(suite.ctx, profiles)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), version)
	assert.Equal(suite.T(), 6, suite.catalog.Ingredients().Len())
	suite.ingredients.AssertNotCalled(suite.T(), "Upsert", mock.Anything, mock.Anything)
}

func (suite *CatalogTestSuite) TestImport_Empty_ShouldBeRejected() {
	suite.catalog.ReplaceIngredients(testutils.GanacheIngredients())

	_, err := suite.catalog.ImportIngredients(suite.ctx, nil)
	assert.ErrorIs(suite.T(), err, catalog.ErrEmptyImport)

	_, err = suite.catalog.ImportCategories(suite.ctx, []pastry.RecipeCategory{})
	assert.ErrorIs(suite.T(), err, catalog.ErrEmptyImport)

	assert.Equal(suite.T(), 6, suite.catalog.Ingredients().Len())
	suite.ingredients.AssertNotCalled(suite.T(), "ReplaceAll", mock.Anything, mock.Anything)
	assert.Equal(suite.T(), 2, suite.observer.errs)
}

func TestCatalogTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogTestSuite))
}

func TestBootstrap_WithDatabase(t *testing.T) {
	// Arrange
	db := dbtest.SetupTestDatabase(t)
	c := catalog.New(gormrepo.NewIngredientRepository(db), gormrepo.NewCategoryRepository(db), nil, zap.NewNop())

	// Act
	require.NoError(t, c.Bootstrap(context.Background(), jsonfile.Source{}, true))

	// Assert
	assert.GreaterOrEqual(t, c.Ingredients().Len(), 40)
	cream, ok := c.Ingredients().Ingredient("cream_35")
	require.True(t, ok)
	assert.Equal(t, testutils.Cream35, cream)
	assert.NotNil(t, c.Categories().Category("ice_cream"))

	// A second bootstrap leaves the stored tables alone and bumps versions
	require.NoError(t, c.Bootstrap(context.Background(), jsonfile.Source{}, true))
	assert.Equal(t, int64(2), c.Ingredients().Version())
}

func TestImport_WithDatabase_ShouldDropRemovedEntries(t *testing.T) {
	// Arrange
	ctx := context.Background()
	db := dbtest.SetupTestDatabase(t)
	c := catalog.New(gormrepo.NewIngredientRepository(db), gormrepo.NewCategoryRepository(db), nil, zap.NewNop())

	all := testutils.GanacheIngredients()
	_, err := c.ImportIngredients(ctx, all)
	require.NoError(t, err)
	_, err = c.ImportCategories(ctx, []pastry.RecipeCategory{testutils.GanacheMolded, testutils.IceCream})
	require.NoError(t, err)

	var withoutCream []pastry.IngredientProfile
	for _, p := range all {
		if p.ID != testutils.Cream35.ID {
			withoutCream = append(withoutCream, p)
		}
	}

	// Act
	_, err = c.ImportIngredients(ctx, withoutCream)
	require.NoError(t, err)
	_, err = c.ImportCategories(ctx, []pastry.RecipeCategory{testutils.GanacheMolded})
	require.NoError(t, err)

	// Assert
	_, ok := c.Ingredients().Ingredient(testutils.Cream35.ID)
	assert.False(t, ok)
	assert.Equal(t, len(all)-1, c.Ingredients().Len())
	assert.Nil(t, c.Categories().Category(testutils.IceCream.ID))
	assert.Equal(t, 1, c.Categories().Len())

	// A fresh catalog over the same database sees the same tables
	fresh := catalog.New(gormrepo.NewIngredientRepository(db), gormrepo.NewCategoryRepository(db), nil, zap.NewNop())
	require.NoError(t, fresh.Refresh(ctx))
	assert.Equal(t, c.Ingredients().Fingerprint(), fresh.Ingredients().Fingerprint())
	assert.Equal(t, c.Categories().Fingerprint(), fresh.Categories().Fingerprint())
}

func TestConcurrentReadsDuringReplace(t *testing.T) {
	c := catalog.New(nil, nil, nil, zap.NewNop())
	c.ReplaceIngredients(testutils.GanacheIngredients())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, ok := c.Ingredients().Ingredient("cream_35")
			assert.True(t, ok)
		}()
		go func() {
			defer wg.Done()
			c.ReplaceIngredients(testutils.GanacheIngredients())
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(9), c.Ingredients().Version())
}
