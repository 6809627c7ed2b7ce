package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/storefront-api/internal/category"
	"github.com/wichananm65/storefront-api/internal/config"
	"github.com/wichananm65/storefront-api/internal/database"
	"github.com/wichananm65/storefront-api/internal/database/migrations"
	"github.com/wichananm65/storefront-api/internal/favorite"
	"github.com/wichananm65/storefront-api/internal/httpx"
	"github.com/wichananm65/storefront-api/internal/logger"
	"github.com/wichananm65/storefront-api/internal/metrics"
	"github.com/wichananm65/storefront-api/internal/order"
	"github.com/wichananm65/storefront-api/internal/product"
	"github.com/wichananm65/storefront-api/internal/storage"
	"github.com/wichananm65/storefront-api/internal/user"
	"github.com/wichananm65/storefront-api/internal/validation"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is empty, tokens are signed with an empty key")
	}

	db := mustOpenDB(cfg, log)
	defer db.Close()

	httpx.RegisterFormDecoders()
	files := storage.NewOS(cfg.PublicDir, cfg.PublicBaseURL)
	m := metrics.New()
	v := validation.New()
	presenter := product.Presenter{BaseURL: cfg.PublicBaseURL}

	app := fiber.New(fiber.Config{
		ErrorHandler: httpx.ErrorHandler(log),
		BodyLimit:    10 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		Output: log.Writer(),
	}))
	setupCORS(app, cfg.CORSOrigins)
	app.Use(m.Middleware())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := db.PingContext(c.UserContext()); err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "database unavailable")
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", m.Handler())
	app.Static("/assets", filepath.Join(cfg.PublicDir, "assets"))
	app.Static("/storage", filepath.Join(cfg.PublicDir, "storage"))

	userService := user.NewService(user.NewPostgresRepository(db))
	userHandler := user.NewHandler(userService, v, log, cfg.JWTSecret, cfg.JWTTTL)

	categoryRepo := category.NewPostgresRepository(db)
	categoryService := category.NewService(categoryRepo, files, log)
	categoryHandler := category.NewHandler(categoryService, v, log, cfg.DefaultPerPage)

	productService := product.NewService(product.NewPostgresRepository(db), categoryRepo, files, presenter, log)
	productHandler := product.NewHandler(productService, categoryService, v, log, cfg.DefaultPerPage)

	favoriteService := favorite.NewService(favorite.NewPostgresRepository(db), presenter, log)
	favoriteHandler := favorite.NewHandler(favoriteService, productService, userService, v, log, cfg.DefaultPerPage)

	orderService := order.NewService(order.NewPostgresRepository(db), presenter, m, log)
	orderHandler := order.NewHandler(orderService, productService, v, log, cfg.DefaultPerPage)

	api := app.Group("/api/v1")
	userHandler.RegisterPublicRoutes(api)

	api.Use(user.Middleware(cfg.JWTSecret))
	userHandler.RegisterProtectedRoutes(api)
	categoryHandler.RegisterProtectedRoutes(api)
	productHandler.RegisterProtectedRoutes(api)
	favoriteHandler.RegisterProtectedRoutes(api)
	orderHandler.RegisterProtectedRoutes(api)

	go func() {
		log.WithField("addr", cfg.Addr).Info("starting server")
		if err := app.Listen(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("failed to start web server")
		}
	}()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	<-exit

	log.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		log.WithError(err).Error("failed to shutdown web server")
	}
}

func setupCORS(app *fiber.App, origins string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func mustOpenDB(cfg config.Config, log logrus.FieldLogger) *sqlx.DB {
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	if cfg.MigrateOnStart {
		if err := migrations.Up(cfg.DatabaseURL); err != nil {
			log.WithError(err).Fatal("failed to migrate database")
		}
	}

	db, err := database.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	return db
}
