package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"statbench/adapters/excel"
	"statbench/adapters/guardian"
	"statbench/adapters/postgres"
	"statbench/app"
	"statbench/internal"
	"statbench/internal/config"
	"statbench/internal/dataset"
	"statbench/internal/migration"
	"statbench/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Optional collaborators; nil when not configured
	Runs    ports.RunRepository
	Checker ports.AssumptionChecker

	Datasets  *app.DatasetStore
	Workbench *app.WorkbenchService

	logger *internal.Logger
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return &Container{
		Config: cfg,
		logger: internal.DefaultLogger.With("component", "container"),
	}, nil
}

// Init opens the run history store when a database URL is configured, then
// wires the dataset store and the workbench
func (c *Container) Init(ctx context.Context) error {
	if c.Config.Database.URL != "" {
		if err := c.initDatabase(ctx); err != nil {
			return err
		}
	} else {
		c.logger.Info("no database configured, run history disabled")
	}

	if c.Config.Guardian.URL != "" {
		c.Checker = guardian.NewClient(c.Config.Guardian.URL, c.Config.Guardian.Timeout)
		c.logger.Info("assumption checker enabled at %s", c.Config.Guardian.URL)
	}

	var storage dataset.FileStorage
	if c.Config.Storage.UploadDir != "" {
		storageConfig := dataset.DefaultStorageConfig()
		storageConfig.BasePath = c.Config.Storage.UploadDir
		storageConfig.MaxFileSize = c.Config.Server.MaxUploadBytes
		storage = dataset.NewLocalFileStorage(storageConfig)
	}
	c.Datasets = app.NewDatasetStore(storage, excel.ReadFrom)

	e := c.Config.Engine
	c.Workbench = app.NewWorkbenchService(c.Datasets, c.Runs, c.Checker, app.EngineDefaults{
		Alpha:            e.DefaultAlpha,
		NumericThreshold: e.NumericThreshold,
		MaxCategories:    e.MaxCategories,
		TestSize:         e.DefaultTestSize,
		LearningRate:     e.DefaultLearningRate,
		Iterations:       e.DefaultIterations,
	})
	return nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	db, err := postgres.Open(ctx, c.Config.Database.Driver, c.Config.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open run history store: %w", err)
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return fmt.Errorf("database migration failed: %w", err)
	}
	c.DB = db
	c.Runs = postgres.NewRunRepository(db)
	c.logger.Info("run history stored in %s database", c.Config.Database.Driver)
	return nil
}

// Shutdown releases the database connection
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
