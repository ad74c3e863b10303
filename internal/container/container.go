// Package container wires configuration into the services shared by the
// server and the command line tools.
package container

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	"geoverify/adapters/excel"
	"geoverify/adapters/llm"
	"geoverify/adapters/llm/heuristic"
	"geoverify/adapters/sqlstore"
	"geoverify/app"
	"geoverify/internal"
	"geoverify/internal/adjudication"
	"geoverify/internal/compliance"
	"geoverify/internal/config"
	"geoverify/internal/critique"
	"geoverify/internal/domainparams"
	"geoverify/internal/evidence"
	"geoverify/internal/plausibility"
	"geoverify/internal/session"
	"geoverify/internal/snr"
	"geoverify/internal/usage"
	"geoverify/ports"
)

// defaultSQLiteFile is used when the sqlite store has no DATABASE_URL
const defaultSQLiteFile = "geoverify.db"

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB          *sqlx.DB
	SessionRepo ports.CritiqueSessionRepository
	UsageRepo   ports.LLMUsageRepository

	// Engines
	SNR         *snr.Engine
	Params      *domainparams.Validator
	Analyzer    *plausibility.Analyzer
	Compliance  *compliance.Engine
	Adjudicator *adjudication.Adjudicator

	// Services
	Critiques *critique.Service
	Claims    *app.ClaimValidationService
	Datasets  ports.DatasetLoader
	Usage     *usage.Service

	// Critic is the LLM critic when an API key is configured, otherwise the
	// offline heuristic critic
	Critic ports.Critic
}

// New builds every component from cfg. Callers must Shutdown the container.
func New(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NopLogger()
	}

	c := &Container{Config: cfg, Logger: logger}

	if err := c.initStore(ctx); err != nil {
		return nil, err
	}
	if err := c.initEngines(); err != nil {
		c.Shutdown(ctx)
		return nil, err
	}
	if err := c.initServices(); err != nil {
		c.Shutdown(ctx)
		return nil, err
	}
	return c, nil
}

func (c *Container) initStore(ctx context.Context) error {
	store := c.Config.Store
	switch store.Driver {
	case "memory":
		c.SessionRepo = critique.NewMemoryStore()
		c.UsageRepo = usage.NewMemoryRepository()
	case "file":
		repo, err := session.NewLocalFileStore(store.Path)
		if err != nil {
			return err
		}
		c.SessionRepo = repo
		c.UsageRepo = usage.NewMemoryRepository()
	case sqlstore.DriverPostgres, sqlstore.DriverSQLite:
		dsn := store.DatabaseURL
		if dsn == "" && store.Driver == sqlstore.DriverSQLite {
			dsn = filepath.Join(store.Path, defaultSQLiteFile)
		}
		db, err := sqlstore.Open(ctx, store.Driver, dsn)
		if err != nil {
			return err
		}
		c.DB = db
		c.SessionRepo = sqlstore.NewCritiqueSessionRepository(db)
		c.UsageRepo = sqlstore.NewLLMUsageRepository(db)
	default:
		return fmt.Errorf("unsupported store driver %q", store.Driver)
	}

	c.Logger.Info("critique sessions stored in %s backend", store.Driver)
	return nil
}

func (c *Container) initEngines() error {
	v := c.Config.Validation

	overrides, err := domainparams.LoadOverridesFile(v.RangeTablesFile)
	if err != nil {
		return err
	}
	params, err := domainparams.NewValidator(overrides)
	if err != nil {
		return err
	}

	c.Params = params
	c.SNR = snr.NewEngine(snr.Options{SampleRate: v.SampleRate, HistoryLimit: v.HistoryLimit, Logger: c.Logger})
	c.Analyzer = plausibility.NewAnalyzer(c.Logger, v.HistoryLimit)
	c.Compliance = compliance.NewEngine(params, c.Logger, v.HistoryLimit)
	c.Adjudicator = adjudication.NewAdjudicator(c.Logger)
	return nil
}

func (c *Container) initServices() error {
	v := c.Config.Validation

	method, err := snr.ParseMethod(v.SNRMethod)
	if err != nil {
		return err
	}

	c.Critiques = critique.NewService(c.SessionRepo, v.MaxIterations, c.Logger)
	c.Claims = app.NewClaimValidationService(app.ClaimValidationDeps{
		Builder:     evidence.NewBuilder(c.SNR, c.Logger),
		Analyzer:    c.Analyzer,
		Compliance:  c.Compliance,
		Adjudicator: c.Adjudicator,
		Critiques:   c.Critiques,
		Method:      method,
		Concurrency: v.BatchConcurrency,
		Logger:      c.Logger,
	})
	c.Datasets = excel.NewLoader(excel.DefaultConfig(), c.Logger)
	c.Usage = usage.NewService(c.UsageRepo, c.Logger)

	fallback := heuristic.NewCritic()
	c.Critic = fallback
	if critic := c.Config.Critic; critic.Enabled() {
		adapter, err := llm.NewCriticAdapter(llm.Config{
			Model:               critic.Model,
			APIKey:              critic.APIKey,
			BaseURL:             critic.BaseURL,
			Temperature:         critic.Temperature,
			MaxTokens:           critic.MaxTokens,
			Timeout:             critic.Timeout,
			FallbackToHeuristic: true,
		}, fallback, c.Logger)
		if err != nil {
			return err
		}
		adapter.SetUsageRecorder(c.Usage)
		c.Critic = adapter
		c.Logger.Info("LLM critic enabled (%s)", critic.Model)
	}
	return nil
}

// Shutdown flushes pending usage records and releases the database
// connection, if any
func (c *Container) Shutdown(ctx context.Context) error {
	if c.Usage != nil {
		c.Usage.Wait()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
