// @title           Legal Case Management API
// @version         1.0
// @description     API for legal case management: clients report cases, lawyers accept and progress them, and both parties comment on case progress.
// @contact.name    Aldo Rifki Putra
// @contact.email   aldoetobex@gmail.com
// @BasePath        /api
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     Format: Bearer <token>
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	fiberSwagger "github.com/gofiber/swagger"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	// Docs
	_ "github.com/aldoetobex/legal-case-backend/docs"
	"github.com/aldoetobex/legal-case-backend/internal/auth"
	"github.com/aldoetobex/legal-case-backend/internal/cases"
	"github.com/aldoetobex/legal-case-backend/internal/classifier"
	"github.com/aldoetobex/legal-case-backend/internal/config"
	"github.com/aldoetobex/legal-case-backend/internal/storage"
	"github.com/aldoetobex/legal-case-backend/internal/users"
	"github.com/aldoetobex/legal-case-backend/pkg/database"
	"github.com/aldoetobex/legal-case-backend/pkg/logger"
	"github.com/aldoetobex/legal-case-backend/pkg/models"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env, cfg.LogLevel)

	if cfg.MigrateOnStart {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		log.Info().Msg("migrations applied")
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	revoked, closeRevoked, err := revocationStore(cfg, db)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.RevocationBackend).Msg("revocation store unavailable")
	}
	defer closeRevoked()

	disk, err := storage.NewDisk(cfg.UploadsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("uploads directory unavailable")
	}

	accounts := users.NewAccounts(users.NewGormRepository(db), bcrypt.DefaultCost)
	tokens := auth.NewAuthority(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL, revoked)
	gemini := classifier.NewGemini(classifier.Config{
		APIKey:   cfg.GeminiAPIKey,
		Model:    cfg.GeminiModel,
		Endpoint: cfg.GeminiEndpoint,
		Timeout:  cfg.ClassifierTimeout,
		RPS:      cfg.ClassifierRPS,
	}, log.With().Str("component", "classifier").Logger())
	if cfg.GeminiAPIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set; every case without a category is filed as " + classifier.Default)
	}

	svc := cases.NewService(cases.NewGormStore(db), accounts, gemini, log.With().Str("component", "cases").Logger())

	app := fiber.New(fiber.Config{
		ErrorHandler: auth.NewErrorHandler(log),
		BodyLimit:    cfg.MaxUploadBytes,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.Middleware(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })
	app.Get("/swagger/*", fiberSwagger.HandlerDefault)

	api := app.Group("/api")
	requireAuth := auth.RequireAuth(tokens, accounts)

	// Auth
	authH := auth.NewHandler(accounts, tokens, log.With().Str("component", "auth").Logger())
	api.Post("/auth/signup", authH.Signup)
	api.Post("/auth/login", authH.Login)
	api.Post("/auth/refresh", authH.Refresh)
	api.Post("/auth/logout", authH.Logout)
	api.Get("/auth/me", requireAuth, authH.Me)
	api.Put("/auth/me", requireAuth, authH.UpdateMe)

	// Cases
	caseH := cases.NewHandler(svc, disk, log.With().Str("component", "cases").Logger())
	api.Post("/cases/report", requireAuth, caseH.Report)
	api.Get("/cases/client/cases", requireAuth, auth.RequireRole(models.RoleClient), caseH.ClientCases)
	api.Get("/cases/case/:id", requireAuth, caseH.GetCase)
	api.Post("/cases/add-comment/:id", requireAuth, caseH.AddComment)

	// Lawyer
	lawyer := api.Group("/lawyer", requireAuth, auth.RequireRole(models.RoleLawyer))
	lawyer.Get("/profile", authH.LawyerProfile)
	lawyer.Get("/cases/available-cases", caseH.AvailableCases)
	lawyer.Get("/cases/assigned-cases", caseH.AssignedCases)
	lawyer.Post("/cases/accept-case/:id", caseH.AcceptCase)
	lawyer.Post("/cases/update-case-status/:id", caseH.UpdateCaseStatus)

	// Documents (path-confined, no auth)
	api.Get("/documents/download", caseH.Download)

	// Only in dev mode
	if cfg.IsDev() {
		api.Post("/test/classify", classifier.Probe(gemini))
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

// revocationStore picks the revoked-token backend. The returned func releases it.
func revocationStore(cfg config.Config, db *gorm.DB) (auth.RevocationStore, func(), error) {
	if cfg.RevocationBackend != "redis" {
		return auth.NewGormRevocationStore(db), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	return auth.NewRedisRevocationStore(rdb), func() { _ = rdb.Close() }, nil
}
