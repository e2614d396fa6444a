package bootstrap

import (
	"context"
	"database/sql"
	"log"

	"github.com/gin-gonic/gin"

	"docquery-backend/internal/documents"
	"docquery-backend/internal/llm"
	"docquery-backend/internal/llm/groq"
	"docquery-backend/internal/llm/ollama"
	"docquery-backend/internal/services/health"
	"docquery-backend/internal/shared/config"
	"docquery-backend/internal/shared/server"
	"docquery-backend/internal/shared/storage/db"
	"docquery-backend/internal/users"
)

// App holds the wired application dependencies.
type App struct {
	Config config.Config
	DB     *sql.DB
	Router *gin.Engine

	LLM              llm.Client
	UsersRepo        users.Repo
	UsersService     *users.Service
	DocumentsRepo    documents.Repo
	DocumentsService *documents.Service
}

// Build wires repositories, services, handlers and the router. When no
// database is reachable the app falls back to in-memory stores; production
// should always run against Postgres.
func Build(ctx context.Context, cfg config.Config) *App {
	sqlDB := connect(ctx, cfg)

	var usersRepo users.Repo
	var docsRepo documents.Repo
	if sqlDB != nil {
		usersRepo = &users.PGRepo{DB: sqlDB}
		docsRepo = &documents.PGRepo{DB: sqlDB}
	} else {
		usersRepo = users.NewMemoryRepo()
		docsRepo = documents.NewMemoryRepo()
	}

	client := buildLLM(cfg)

	usersSvc := users.NewService(usersRepo)
	usersSvc.OnDelete(docsRepo.DeleteAllForUser)
	docsSvc := &documents.Service{
		Repo:           docsRepo,
		LLM:            client,
		CleanupEnabled: cfg.CleanupEnabled,
	}

	router := server.NewRouter(cfg, server.Deps{
		Health:    health.NewService(sqlDB),
		Users:     users.NewHandler(usersSvc, cfg.TokenTTL),
		Documents: &documents.Handler{Svc: docsSvc},
		Resolver:  usersSvc,
	})

	return &App{
		Config:           cfg,
		DB:               sqlDB,
		Router:           router,
		LLM:              client,
		UsersRepo:        usersRepo,
		UsersService:     usersSvc,
		DocumentsRepo:    docsRepo,
		DocumentsService: docsSvc,
	}
}

// Close releases held resources.
func (a *App) Close() {
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func connect(ctx context.Context, cfg config.Config) *sql.DB {
	if cfg.DatabaseURL == "" {
		return nil
	}

	conn, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		log.Printf("failed to connect database, falling back to memory: %v", err)
		return nil
	}
	if err := db.RunMigrations(ctx, conn); err != nil {
		log.Printf("failed to run migrations, falling back to memory: %v", err)
		conn.Close()
		return nil
	}
	return conn
}

func buildLLM(cfg config.Config) llm.Client {
	switch cfg.LLMProvider {
	case "groq":
		return groq.NewClient(cfg.GroqAPIKey, cfg.GroqEndpoint, cfg.LLMModel, cfg.ChatTimeout)
	default:
		return ollama.NewClient(cfg.OllamaBaseURL, cfg.LLMModel, cfg.GenerateTimeout)
	}
}
