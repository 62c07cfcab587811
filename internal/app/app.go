package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/tangpeiwen/clipsync/internal/api"
	"github.com/tangpeiwen/clipsync/internal/compose"
	"github.com/tangpeiwen/clipsync/internal/config"
	"github.com/tangpeiwen/clipsync/internal/extract"
	"github.com/tangpeiwen/clipsync/internal/images"
	"github.com/tangpeiwen/clipsync/internal/infrastructure/cloudinary"
	"github.com/tangpeiwen/clipsync/internal/infrastructure/firecrawl"
	"github.com/tangpeiwen/clipsync/internal/infrastructure/instagram"
	"github.com/tangpeiwen/clipsync/internal/infrastructure/notion"
	"github.com/tangpeiwen/clipsync/internal/infrastructure/storage"
	"github.com/tangpeiwen/clipsync/internal/logging"
	"github.com/tangpeiwen/clipsync/internal/ports"
	"github.com/tangpeiwen/clipsync/internal/usecase"
)

// Application wires configuration to collaborator clients, the pipeline,
// and the HTTP server. Every client is constructed exactly once here and
// passed by reference; nothing downstream reaches for globals.
type Application struct {
	cfg    config.Config
	store  *notion.Client
	server *api.Server
	db     *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store := notion.NewClient(cfg.Notion)

	var host ports.ImageHost
	if cfg.Cloudinary.CloudName != "" && cfg.Cloudinary.APIKey != "" {
		host = cloudinary.NewUploader(cfg.Cloudinary)
	}

	var scraper ports.WebScraper
	if cfg.Firecrawl.APIKey != "" {
		scraper = firecrawl.NewClient(cfg.Firecrawl)
	}

	var gateway ports.MediaGateway
	if cfg.Instagram.SessionFile != "" {
		gateway = instagram.NewClient(cfg.Instagram)
	}

	registry := extract.NewRegistry()
	registry.Register(extract.NewXHSStrategy(nil, baseLogger.With("component", "extract.xhs")))
	registry.Register(extract.NewWeiboStrategy(nil))
	registry.Register(extract.NewJikeStrategy(nil))
	registry.Register(extract.NewInstagramStrategy(gateway))
	registry.Register(extract.NewWebStrategy(scraper, nil, baseLogger.With("component", "extract.web")))

	extractor := extract.NewService(registry, baseLogger.With("component", "extract"))
	resolver := images.NewResolver(host, nil, baseLogger.With("component", "images"))
	composer := compose.NewComposer(store, baseLogger.With("component", "compose"))

	var db *sql.DB
	var history ports.PublishLog
	if cfg.Database.DSN != "" {
		opened, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			baseLogger.Warn("publish history disabled", "error", err)
		} else {
			db = opened
			history = storage.NewPostgresRepository(db)
		}
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Store:     store,
		Extractor: extractor,
		Resolver:  resolver,
		Composer:  composer,
		History:   history,
		Logger:    baseLogger.With("component", "pipeline"),
	})

	server := api.NewServer(api.ServerDeps{
		Addr:            cfg.Server.Addr,
		Processor:       pipeline,
		History:         history,
		DefaultDatabase: cfg.Notion.DatabaseID,
		Checks:          healthChecks(cfg, db),
		Logger:          baseLogger.With("component", "api"),
	})

	return &Application{cfg: cfg, store: store, server: server, db: db}
}

// Run serves HTTP until the context is canceled.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()
	return a.server.Run(ctx)
}

// VerifyDatabase checks one Notion database against the required property
// shape, defaulting to the configured database.
func (a *Application) VerifyDatabase(ctx context.Context, databaseID string) error {
	if databaseID == "" {
		databaseID = a.cfg.Notion.DatabaseID
	}
	if databaseID == "" {
		return fmt.Errorf("no database id configured")
	}
	return compose.VerifySchema(ctx, a.store, databaseID)
}

func (a *Application) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

func healthChecks(cfg config.Config, db *sql.DB) map[string]api.HealthChecker {
	checks := map[string]api.HealthChecker{
		"notion": func() api.CheckResult {
			if cfg.Notion.APIKey == "" {
				return api.CheckResult{Status: "unhealthy", Message: "NOTION_API_KEY is not set"}
			}
			return api.CheckResult{Status: "healthy"}
		},
	}

	if db != nil {
		checks["database"] = func() api.CheckResult {
			if err := db.Ping(); err != nil {
				return api.CheckResult{Status: "degraded", Message: err.Error()}
			}
			return api.CheckResult{Status: "healthy"}
		}
	}

	return checks
}
