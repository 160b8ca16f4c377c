package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/alchemorsel/patisserie/internal/application/analysis"
	"github.com/alchemorsel/patisserie/internal/domain/pastry"
	"github.com/alchemorsel/patisserie/internal/infrastructure/config"
	"github.com/alchemorsel/patisserie/internal/infrastructure/persistence/jsonfile"
	"github.com/alchemorsel/patisserie/internal/ports/inbound"
	"github.com/alchemorsel/patisserie/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Output formats accepted by analyze
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// cli holds the flags and collaborators shared by every command
type cli struct {
	configPath      string
	logLevel        string
	ingredientsPath string
	categoriesPath  string
	recipePath      string
	output          string
	outPath         string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "patisserie",
		Short: "Analyse pastry recipe compositions",
		Long: `patisserie computes the sugar, fat, dry matter and liquid balance of a
recipe and grades it against the ideal ranges of its category.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (defaults to ./config.yaml when present)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level for diagnostics on stderr")
	root.PersistentFlags().StringVar(&c.ingredientsPath, "ingredients", "", "ingredient table JSON (defaults to data.ingredients_path)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyse a recipe file and grade it against its category",
		RunE:  c.runAnalyze,
	}
	analyzeCmd.Flags().StringVar(&c.categoriesPath, "categories", "", "category table JSON (defaults to data.categories_path)")
	analyzeCmd.Flags().StringVar(&c.recipePath, "recipe", "", "recipe JSON file, or a recipe name in data.recipes_dir")
	analyzeCmd.Flags().StringVarP(&c.output, "output", "o", outputTable, "output format: table, json or yaml")
	_ = analyzeCmd.MarkFlagRequired("recipe")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the analysis of a recipe file as a CSV sheet",
		RunE:  c.runExport,
	}
	exportCmd.Flags().StringVar(&c.recipePath, "recipe", "", "recipe JSON file, or a recipe name in data.recipes_dir")
	exportCmd.Flags().StringVar(&c.outPath, "out", "", "CSV file to write (stdout when empty)")
	_ = exportCmd.MarkFlagRequired("recipe")

	checkCmd := &cobra.Command{
		Use:   "check-ingredients",
		Short: "List ingredient profiles whose components do not add up to 100%",
		RunE:  c.runCheckIngredients,
	}

	root.AddCommand(analyzeCmd, exportCmd, checkCmd)
	return root
}

func (c *cli) setup() error {
	log, err := logger.New(logger.Config{
		Level:       c.logLevel,
		Format:      "console",
		OutputPaths: []string{"stderr"},
		Service:     "patisserie-cli",
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	c.logger = log

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// staticTables serves tables read once from disk
type staticTables struct {
	ingredients *pastry.IngredientTable
	categories  *pastry.CategoryTable
}

func (t staticTables) Ingredients() *pastry.IngredientTable { return t.ingredients }

func (t staticTables) Categories() *pastry.CategoryTable { return t.categories }

// loadTables reads the ingredient and category tables. Explicit paths must
// exist; configured defaults fall back to the built-in tables.
func (c *cli) loadTables(ctx context.Context) (staticTables, error) {
	source := jsonfile.Source{
		IngredientsPath: c.cfg.Data.IngredientsPath,
		CategoriesPath:  c.cfg.Data.CategoriesPath,
	}

	var profiles []pastry.IngredientProfile
	if c.ingredientsPath != "" {
		indexed, err := jsonfile.LoadIngredients(c.ingredientsPath)
		if err != nil {
			return staticTables{}, err
		}
		for _, p := range indexed {
			profiles = append(profiles, p)
		}
	} else {
		loaded, err := source.LoadIngredients(ctx)
		if err != nil {
			return staticTables{}, err
		}
		profiles = loaded
	}

	var categories []pastry.RecipeCategory
	if c.categoriesPath != "" {
		indexed, err := jsonfile.LoadCategories(c.categoriesPath)
		if err != nil {
			return staticTables{}, err
		}
		for _, cat := range indexed {
			categories = append(categories, cat)
		}
	} else {
		loaded, err := source.LoadCategories(ctx)
		if err != nil {
			return staticTables{}, err
		}
		categories = loaded
	}

	c.logger.Debug("Loaded tables",
		zap.Int("ingredients", len(profiles)),
		zap.Int("categories", len(categories)),
	)

	return staticTables{
		ingredients: pastry.NewIngredientTable(1, profiles),
		categories:  pastry.NewCategoryTable(1, categories),
	}, nil
}

// analyzeRecipeFile runs the recipe file through the analysis service
func (c *cli) analyzeRecipeFile(ctx context.Context) (*inbound.AnalysisDTO, error) {
	tables, err := c.loadTables(ctx)
	if err != nil {
		return nil, err
	}

	recipe, err := jsonfile.LoadRecipe(c.resolveRecipePath())
	if err != nil {
		return nil, err
	}

	cmd := inbound.RecipeCommand{
		Name:       recipe.Name,
		CategoryID: recipe.CategoryID,
		Status:     recipe.Status,
		Items:      make([]inbound.RecipeItemCommand, 0, len(recipe.Items)),
	}
	for _, item := range recipe.Items {
		cmd.Items = append(cmd.Items, inbound.RecipeItemCommand{
			IngredientID: item.IngredientID,
			QuantityG:    item.QuantityG,
		})
	}

	service := analysis.NewService(analysis.Dependencies{
		Tables: tables,
		Logger: c.logger,
		Config: analysis.Config{NearTolerancePct: c.cfg.Analysis.NearTolerancePct},
	})

	dto, err := service.AnalyzeDraft(ctx, cmd)
	if err != nil {
		return nil, err
	}
	for _, w := range dto.Warnings {
		c.logger.Warn("Recipe input warning",
			zap.String("code", w.Code),
			zap.String("ingredient_id", w.IngredientID),
			zap.String("message", w.Message),
		)
	}
	return dto, nil
}

// resolveRecipePath returns --recipe as given when it exists, else looks it
// up by name in data.recipes_dir
func (c *cli) resolveRecipePath() string {
	if _, err := os.Stat(c.recipePath); err == nil || c.cfg.Data.RecipesDir == "" {
		return c.recipePath
	}
	for _, candidate := range []string{c.recipePath, c.recipePath + ".json"} {
		path := filepath.Join(c.cfg.Data.RecipesDir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return c.recipePath
}

func (c *cli) runAnalyze(cmd *cobra.Command, args []string) error {
	switch c.output {
	case outputTable, outputJSON, outputYAML:
	default:
		return fmt.Errorf("unknown output format %q", c.output)
	}

	dto, err := c.analyzeRecipeFile(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch c.output {
	case outputJSON:
		return writeJSON(out, dto)
	case outputYAML:
		return writeYAML(out, dto)
	default:
		return writeTable(out, dto)
	}
}

func (c *cli) runExport(cmd *cobra.Command, args []string) error {
	dto, err := c.analyzeRecipeFile(cmd.Context())
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if c.outPath != "" {
		f, err := os.Create(c.outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", c.outPath, err)
		}
		defer f.Close()
		out = f
	}

	if err := writeCSV(out, dto); err != nil {
		return err
	}

	if c.outPath != "" {
		c.logger.Info("Exported analysis", zap.String("recipe", dto.RecipeName), zap.String("path", c.outPath))
	}
	return nil
}

func (c *cli) runCheckIngredients(cmd *cobra.Command, args []string) error {
	tables, err := c.loadTables(cmd.Context())
	if err != nil {
		return err
	}

	var failing []pastry.IngredientProfile
	for _, p := range tables.ingredients.All() {
		if !p.IsValid() {
			failing = append(failing, p)
		}
	}
	sort.Slice(failing, func(i, j int) bool { return failing[i].ID < failing[j].ID })

	out := cmd.OutOrStdout()
	if len(failing) == 0 {
		fmt.Fprintf(out, "All %d ingredient profiles add up to 100%%\n", tables.ingredients.Len())
		return nil
	}

	for _, p := range failing {
		fmt.Fprintf(out, "%-24s %-32s components sum to %.2f%%\n", p.ID, p.Name, p.ComponentSum())
	}
	return fmt.Errorf("%d of %d ingredient profiles do not add up to 100%%", len(failing), tables.ingredients.Len())
}
