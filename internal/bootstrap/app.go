package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"casedesk/internal/cases"
	"casedesk/internal/drafts"
	"casedesk/internal/shared/config"
	"casedesk/internal/shared/server"
	"casedesk/internal/shared/storage/db"
	"casedesk/internal/upstream"
)

// App holds shared dependencies.
type App struct {
	Config       config.Config
	Router       *gin.Engine
	DB           *sql.DB
	Upstream     cases.UpstreamAPI
	DraftsRepo   drafts.DraftsRepo
	CaseService  *cases.Service
	DraftService *drafts.Service
	CaseHandler  *cases.Handler
	DraftHandler *drafts.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	client, err := buildUpstream(cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Upstream: client,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:       app.Config,
		CaseHandler:  app.CaseHandler,
		DraftHandler: app.DraftHandler,
	})

	return app, nil
}

func buildUpstream(cfg config.Config) (cases.UpstreamAPI, error) {
	if strings.TrimSpace(cfg.UpstreamBaseURL) == "" {
		return nil, fmt.Errorf("UPSTREAM_BASE_URL is required")
	}
	return upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory draft store")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory draft store: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildServices(app *App) {
	if app.DB != nil {
		app.DraftsRepo = &drafts.PGRepo{DB: app.DB}
	} else {
		app.DraftsRepo = drafts.NewMemoryRepo()
	}

	app.CaseService = &cases.Service{Upstream: app.Upstream}
	app.DraftService = drafts.NewService(app.DraftsRepo, app.CaseService)
	app.CaseHandler = cases.NewHandler(app.CaseService)
	app.DraftHandler = drafts.NewHandler(app.DraftService)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
