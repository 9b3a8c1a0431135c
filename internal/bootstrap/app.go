package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"jobmatch-backend/internal/embedding"
	"jobmatch-backend/internal/extract"
	"jobmatch-backend/internal/resumes"
	"jobmatch-backend/internal/services/health"
	"jobmatch-backend/internal/shared/auth"
	"jobmatch-backend/internal/shared/config"
	"jobmatch-backend/internal/shared/server"
	"jobmatch-backend/internal/shared/server/middleware"
	"jobmatch-backend/internal/shared/storage/db"
	"jobmatch-backend/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	DB             *sql.DB
	Validator      *auth.JWTValidator
	Encoder        *embedding.Encoder
	ResumesRepo    resumes.Repo
	ResumesService *resumes.Service
	ResumesHandler *resumes.Handler
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	validator, err := auth.NewJWTValidator(cfg.JWTSecret, cfg.JWTAudience)
	if err != nil {
		closeDB(sqlDB)
		return nil, fmt.Errorf("auth validator: %w", err)
	}

	encoder, err := embedding.NewOpenAIEncoder(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel)
	if err != nil {
		closeDB(sqlDB)
		return nil, fmt.Errorf("embedding encoder: %w", err)
	}

	var repo resumes.Repo
	if sqlDB != nil {
		repo = &resumes.PGRepo{DB: sqlDB}
	} else {
		repo = resumes.NewMemoryRepo()
	}
	svc := resumes.NewService(repo, extract.PDF{}, encoder)
	handler := resumes.NewHandler(svc)

	app := &App{
		Config:         cfg,
		DB:             sqlDB,
		Validator:      validator,
		Encoder:        encoder,
		ResumesRepo:    repo,
		ResumesService: svc,
		ResumesHandler: handler,
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:        cfg,
		Validator:     validator,
		ResumeHandler: handler,
		Health:        health.NewService(sqlDB),
		RateLimiter:   middleware.NewRateLimiter(nil),
	})

	return app, nil
}

// Close releases the database pool, if any.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_store", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_store", map[string]any{"reason": "connect failed", "error": err})
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

func closeDB(sqlDB *sql.DB) {
	if sqlDB != nil {
		_ = sqlDB.Close()
	}
}
