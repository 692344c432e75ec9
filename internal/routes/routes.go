package routes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/atlas-pay/atlas_pay/internal/auth"
	"github.com/atlas-pay/atlas_pay/internal/config"
	"github.com/atlas-pay/atlas_pay/internal/ledger"
	"github.com/atlas-pay/atlas_pay/internal/middleware"
	"github.com/atlas-pay/atlas_pay/internal/notification"
	"github.com/atlas-pay/atlas_pay/internal/storage"
	"github.com/atlas-pay/atlas_pay/internal/user"
	"github.com/atlas-pay/atlas_pay/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. Without a
// database the storage backend falls back to in-memory, which only makes
// sense in development.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	var backend storage.Backend
	if d.DB != nil {
		backend = storage.NewPostgres(d.DB, d.Cfg.LockTimeout)
	} else {
		backend = storage.NewMemory(d.Cfg.LockTimeout)
	}

	var userRepo user.Repository
	if d.DB != nil {
		userRepo = user.NewPostgresRepository(d.DB)
	} else {
		userRepo = user.NewMemoryRepository()
	}

	userSvc := user.NewService(userRepo, d.Logger)
	if err := seedAdmin(userSvc, d.Cfg, d.Logger); err != nil {
		return err
	}
	walletSvc := wallet.NewService(backend.WalletStore(), d.Logger)
	notifier := notification.NewLoggerNotifier(d.Logger)
	engine := ledger.NewEngine(backend, notifier, d.Logger)

	authSvc := auth.NewService(d.Cfg)
	authHandler := auth.NewHandler(userSvc, authSvc)
	userHandler := user.NewHandler(userSvc)
	walletHandler := wallet.NewHandler(walletSvc)
	ledgerHandler := ledger.NewHandler(engine)

	api := app.Group("/api/v1")

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)
	api.Post("/users", userHandler.Create) // self-registration

	// Protected routes
	protected := api.Group("", middleware.JWTAuth(d.Cfg.JWTSecret))
	RegisterUserRoutes(protected, userHandler)
	RegisterWalletRoutes(protected, walletHandler)
	RegisterTransactionRoutes(protected, ledgerHandler)

	return nil
}

// seedAdmin provisions the bootstrap admin account when ADMIN_EMAIL and
// ADMIN_PASSWORD are configured, so the admin-only endpoints are reachable
// on a fresh deployment. An already-registered admin email is left alone.
func seedAdmin(users *user.Service, cfg config.Config, logger *slog.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	_, err := users.Create(context.Background(), user.CreateInput{
		Name:     "Administrator",
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Role:     user.RoleAdmin,
		Actor:    "system",
	})
	if errors.Is(err, user.ErrEmailTaken) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	logger.Info("bootstrap admin created", slog.String("email", cfg.AdminEmail))
	return nil
}
