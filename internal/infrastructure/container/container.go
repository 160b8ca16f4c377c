// Package container wires the application together with Uber FX
package container

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alchemorsel/patisserie/internal/application/analysis"
	"github.com/alchemorsel/patisserie/internal/application/catalog"
	"github.com/alchemorsel/patisserie/internal/application/recipe"
	"github.com/alchemorsel/patisserie/internal/infrastructure/config"
	"github.com/alchemorsel/patisserie/internal/infrastructure/export"
	"github.com/alchemorsel/patisserie/internal/infrastructure/hotreload"
	"github.com/alchemorsel/patisserie/internal/infrastructure/http/apiserver"
	"github.com/alchemorsel/patisserie/internal/infrastructure/monitoring"
	gormRepo "github.com/alchemorsel/patisserie/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/patisserie/internal/infrastructure/persistence/jsonfile"
	"github.com/alchemorsel/patisserie/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/patisserie/internal/infrastructure/persistence/postgres"
	redisRepo "github.com/alchemorsel/patisserie/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/patisserie/internal/infrastructure/persistence/sqlite"
	"github.com/alchemorsel/patisserie/internal/ports/inbound"
	"github.com/alchemorsel/patisserie/internal/ports/outbound"
	"github.com/alchemorsel/patisserie/pkg/healthcheck"
	"github.com/alchemorsel/patisserie/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConfigPathEnv names the environment variable holding the config file path
const ConfigPathEnv = "PATISSERIE_CONFIG"

// Module provides all dependency injection modules
var Module = fx.Options(
	ConfigModule,
	CoreModule,
)

// CoreModule is everything except configuration loading, for callers that
// supply their own *config.Config
var CoreModule = fx.Options(
	// Infrastructure modules
	LoggerModule,
	DatabaseModule,
	CacheModule,
	MonitoringModule,
	ExportModule,

	// Repository modules
	RepositoryModule,
	CatalogModule,

	// Service modules
	ServiceModule,

	// HTTP modules
	HealthModule,
	HTTPModule,

	WatcherModule,

	// Lifecycle hooks
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load(os.Getenv(ConfigPathEnv))
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
			Service:     cfg.App.Name,
		})
	},
)

// DatabaseModule provides the GORM connection for the configured driver
var DatabaseModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
		var (
			db  *gorm.DB
			err error
		)
		switch cfg.Database.Driver {
		case "postgres":
			db, err = postgres.Connect(cfg, log)
		default:
			db, err = sqlite.Open(cfg.Database.Path, log, cfg.Database.LogLevel, cfg.Database.AutoMigrate)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to open %s database: %w", cfg.Database.Driver, err)
		}

		log.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return nil
				}
				if err := sqlDB.Close(); err != nil {
					log.Error("Failed to close database connection", zap.Error(err))
				}
				return nil
			},
		})

		return db, nil
	},
)

// CacheModule provides the analysis cache. Redis is used when enabled and
// reachable; otherwise analyses are memoized in process. The Redis client
// is nil when Redis is not in use.
var CacheModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (outbound.CacheRepository, redis.UniversalClient) {
		if cfg.Redis.Enabled {
			client, err := redisRepo.NewClient(context.Background(), &cfg.Redis, log)
			if err == nil {
				lc.Append(fx.Hook{
					OnStop: func(ctx context.Context) error {
						return client.Close()
					},
				})
				return redisRepo.NewCacheRepository(client, cfg.Redis.KeyPrefix, log), client
			}
			log.Warn("Redis unavailable, falling back to in-memory cache", zap.Error(err))
		}

		cache := memory.NewCacheRepository(time.Minute)
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				cache.Close()
				return nil
			},
		})
		log.Info("Using in-memory analysis cache")
		return cache, nil
	},
)

// MonitoringModule provides metrics and tracing
var MonitoringModule = fx.Provide(
	monitoring.NewMetricsCollector,
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		provider, err := monitoring.NewTracingProvider(context.Background(), monitoring.TracingConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			Endpoint:       cfg.Monitoring.TracingEndpoint,
			SamplingRate:   cfg.Monitoring.SamplingRate,
			Enabled:        cfg.Monitoring.EnableTracing,
		}, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: provider.Shutdown})
		return provider, nil
	},
	func(provider *monitoring.TracingProvider) trace.Tracer {
		return provider.Tracer()
	},
)

// ExportModule provides the CSV writer and, when enabled, the S3 publisher.
// The storage service is nil when publishing is disabled.
var ExportModule = fx.Provide(
	export.NewCSVExporter,
	func(cfg *config.Config, log *zap.Logger) (outbound.StorageService, error) {
		if !cfg.Export.Enabled {
			return nil, nil
		}
		publisher, err := export.NewS3Publisher(cfg.Export, log)
		if err != nil {
			return nil, err
		}
		return publisher, nil
	},
)

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	gormRepo.NewIngredientRepository,
	gormRepo.NewCategoryRepository,
	gormRepo.NewRecipeRepository,
)

// CatalogModule provides the versioned ingredient and category tables
var CatalogModule = fx.Provide(
	func(
		ingredients outbound.IngredientRepository,
		categories outbound.CategoryRepository,
		metrics *monitoring.MetricsCollector,
		log *zap.Logger,
	) *catalog.Catalog {
		return catalog.New(ingredients, categories, metrics, log)
	},
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	func(repo outbound.RecipeRepository, tables *catalog.Catalog, log *zap.Logger) inbound.RecipeService {
		return recipe.NewRecipeService(repo, tables, validator.New(), log)
	},
	NewAnalysisService,
)

// AnalysisParams are the collaborators of the analysis service
type AnalysisParams struct {
	fx.In

	Config  *config.Config
	Recipes outbound.RecipeRepository
	Catalog *catalog.Catalog
	Cache   outbound.CacheRepository
	Storage outbound.StorageService
	Sheets  *export.CSVExporter
	Metrics *monitoring.MetricsCollector
	Tracer  trace.Tracer
	Logger  *zap.Logger
}

// NewAnalysisService builds the analysis service from the container
func NewAnalysisService(p AnalysisParams) inbound.AnalysisService {
	return analysis.NewService(analysis.Dependencies{
		Recipes:  p.Recipes,
		Tables:   p.Catalog,
		Cache:    p.Cache,
		Storage:  p.Storage,
		Sheets:   p.Sheets,
		Recorder: p.Metrics,
		Tracer:   p.Tracer,
		Logger:   p.Logger,
		Config: analysis.Config{
			NearTolerancePct: p.Config.Analysis.NearTolerancePct,
			CacheTTL:         p.Config.Analysis.CacheTTL,
		},
	})
}

// HealthModule provides the health checker
var HealthModule = fx.Provide(NewHealthCheck)

// NewHealthCheck registers a check for every backing dependency
func NewHealthCheck(
	cfg *config.Config,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	tables *catalog.Catalog,
	log *zap.Logger,
) (*healthcheck.HealthCheck, error) {
	health := healthcheck.New(cfg.App.Version, log)

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	health.Register("database", healthcheck.NewDatabaseChecker(sqlDB))

	if redisClient != nil {
		health.Register("redis", healthcheck.NewRedisChecker(redisClient))
	}

	health.Register("catalog", healthcheck.NewCustomChecker("catalog", func(ctx context.Context) (healthcheck.Status, string, interface{}) {
		ingredients := tables.Ingredients()
		categories := tables.Categories()
		details := map[string]interface{}{
			"ingredients":         ingredients.Len(),
			"ingredients_version": ingredients.Version(),
			"categories":          len(categories.All()),
			"categories_version":  categories.Version(),
		}
		if ingredients.Len() == 0 {
			return healthcheck.StatusDegraded, "Ingredient table is empty", details
		}
		return healthcheck.StatusHealthy, "Catalog loaded", details
	}))

	return health, nil
}

// HTTPModule provides the API server
var HTTPModule = fx.Provide(
	func(
		cfg *config.Config,
		log *zap.Logger,
		recipes inbound.RecipeService,
		analyses inbound.AnalysisService,
		health *healthcheck.HealthCheck,
		metrics *monitoring.MetricsCollector,
		tracer trace.Tracer,
	) (*apiserver.Server, error) {
		return apiserver.NewServer(cfg, log, recipes, analyses, health, metrics, tracer)
	},
)

// WatcherModule reloads the data files into the catalog when they change
var WatcherModule = fx.Invoke(RegisterWatcher)

// RegisterWatcher starts the data file watcher when data.watch is set
func RegisterWatcher(lc fx.Lifecycle, cfg *config.Config, tables *catalog.Catalog, log *zap.Logger) error {
	if !cfg.Data.Watch {
		return nil
	}

	watcher, err := hotreload.NewFileWatcher(cfg.Data.WatchDebounce, log)
	if err != nil {
		return err
	}

	ingredients, err := hotreload.NewIngredientsWatcher(cfg.Data.IngredientsPath, tables, log)
	if err != nil {
		return err
	}
	categories, err := hotreload.NewCategoriesWatcher(cfg.Data.CategoriesPath, tables, log)
	if err != nil {
		return err
	}
	watcher.RegisterHandler(ingredients)
	watcher.RegisterHandler(categories)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			for _, path := range []string{ingredients.Path(), categories.Path()} {
				if err := watcher.WatchFile(path); err != nil {
					// Missing data directories only disable reloading
					log.Warn("Data file will not be reloaded", zap.String("path", path), zap.Error(err))
				}
			}
			watcher.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return watcher.Stop()
		},
	})
	return nil
}

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(RegisterLifecycleHooks)

// RegisterLifecycleHooks loads the catalog and runs the HTTP server
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	tables *catalog.Catalog,
	server *apiserver.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting Patisserie application",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			source := jsonfile.Source{
				IngredientsPath: cfg.Data.IngredientsPath,
				CategoriesPath:  cfg.Data.CategoriesPath,
			}
			if err := tables.Bootstrap(ctx, source, cfg.Database.Seed); err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}

			go func() {
				if err := server.Start(); err != nil {
					log.Error("HTTP server stopped", zap.Error(err))
					_ = shutdowner.Shutdown()
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down Patisserie application")

			if err := server.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			_ = log.Sync()
			return nil
		},
	})
}
