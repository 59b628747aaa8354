// @title Cookbook API
// @version 1.0
// @description Recipes, nutrition diary, fridge and data-platform endpoints.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/auth"
	"github.com/user/cookbook-go/background"
	"github.com/user/cookbook-go/cache"
	"github.com/user/cookbook-go/comments"
	"github.com/user/cookbook-go/config"
	"github.com/user/cookbook-go/dataplatform"
	"github.com/user/cookbook-go/days"
	"github.com/user/cookbook-go/db"
	_ "github.com/user/cookbook-go/docs" // registers the OpenAPI document
	"github.com/user/cookbook-go/events"
	"github.com/user/cookbook-go/foods"
	"github.com/user/cookbook-go/fridge"
	"github.com/user/cookbook-go/goals"
	"github.com/user/cookbook-go/guest"
	"github.com/user/cookbook-go/httpjson"
	"github.com/user/cookbook-go/logging"
	"github.com/user/cookbook-go/middleware"
	"github.com/user/cookbook-go/recipes"
	"github.com/user/cookbook-go/storage"
	"github.com/user/cookbook-go/users"
)

const (
	requestTimeout    = 60 * time.Second
	sseHeartbeat      = 25 * time.Second
	subscriberBuffer  = 16
	shutdownTimeout   = 30 * time.Second
	readHeaderTimeout = 10 * time.Second
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: error loading .env file: %v", err)
	}

	app := &cli.App{
		Name:  "cookbook",
		Usage: "cooking and nutrition tracker API",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: serveCommand,
			},
			{
				Name:  "migrate",
				Usage: "manage the database schema",
				Subcommands: []*cli.Command{
					{Name: "up", Usage: "apply all pending migrations", Action: migrateUpCommand},
					{
						Name:   "down",
						Usage:  "roll back migrations",
						Flags:  []cli.Flag{&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"}},
						Action: migrateDownCommand,
					},
					{Name: "version", Usage: "print the current schema version", Action: migrateVersionCommand},
				},
			},
			{
				Name:  "import-dataset",
				Usage: "import a CSV file into the data platform, one document per row",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dataset", Required: true, Usage: "dataset name"},
					&cli.StringFlag{Name: "file", Required: true, Usage: "CSV file whose header row holds the keys"},
				},
				Action: importDatasetCommand,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// bootstrap loads configuration and builds the root logger.
func bootstrap() (*config.AppConfig, *logging.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func migrateUpCommand(c *cli.Context) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()
	if err := db.RunMigrations(cfg.DBPools.ImportPool, cfg.Server.MigrationsPath); err != nil {
		return err
	}
	logger.Info(c.Context, "migrations applied")
	return nil
}

func migrateDownCommand(c *cli.Context) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()
	steps := c.Int("steps")
	if err := db.RollbackMigrations(cfg.DBPools.ImportPool, cfg.Server.MigrationsPath, steps); err != nil {
		return err
	}
	logger.Info(c.Context, "migrations rolled back", zap.Int("steps", steps))
	return nil
}

func migrateVersionCommand(c *cli.Context) error {
	cfg, _, err := bootstrap()
	if err != nil {
		return err
	}
	version, dirty, err := db.MigrationVersion(cfg.DBPools.ImportPool, cfg.Server.MigrationsPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "version %d (dirty: %t)\n", version, dirty)
	return nil
}

func importDatasetCommand(c *cli.Context) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	f, err := os.Open(c.String("file"))
	if err != nil {
		return fmt.Errorf("open dataset file: %w", err)
	}
	defer f.Close()

	pool, err := db.NewPool(c.Context, cfg.DBPools.ImportPool)
	if err != nil {
		return err
	}
	defer pool.Close()

	n, err := dataplatform.ImportCSV(c.Context, pool, c.String("dataset"), f)
	if err != nil {
		return err
	}
	logger.Info(c.Context, "dataset imported", zap.String("dataset", c.String("dataset")), zap.Int("documents", n))
	return nil
}

func serveCommand(c *cli.Context) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appPool, importPool, err := db.NewDBPools(ctx, cfg.DBPools)
	if err != nil {
		return err
	}
	defer appPool.Close()
	defer importPool.Close()

	if err := db.EnableExtensions(ctx, importPool); err != nil {
		return err
	}
	if cfg.Server.AutoMigrate {
		if err := db.RunMigrations(cfg.DBPools.ImportPool, cfg.Server.MigrationsPath); err != nil {
			return err
		}
		logger.Info(ctx, "migrations applied")
	}

	resultCache, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer resultCache.Close()

	// a nil *S3Store must not end up inside the interface, or uploads would not report 503
	var images storage.ImageStore
	s3Store, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	if s3Store != nil {
		images = s3Store
	} else {
		logger.Info(ctx, "S3_BUCKET not set, recipe image uploads disabled")
	}

	broadcaster := events.NewBroadcaster(subscriberBuffer)
	defer broadcaster.Close()
	stream := events.NewStream(broadcaster, sseHeartbeat)

	// Services
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenDuration, cfg.Auth.RefreshTokenDuration)
	authService := auth.NewAuthService(appPool, tokens)
	authn := auth.NewAuthenticator(tokens, authService, cfg.Auth.SessionCookieName)
	cookies := auth.CookieSettings{SessionName: cfg.Auth.SessionCookieName, Secure: cfg.Auth.CookieSecure}
	providers := auth.NewProviders(cfg.Auth, cfg.Server.BaseURL)

	platform := dataplatform.NewService(dataplatform.NewPgStore(appPool), resultCache)

	// Handlers
	authHandlers := auth.NewHandlers(authService, providers, tokens, cookies, cfg.Server.FrontendURL)
	userHandlers := users.NewUserHandlers(users.NewUserService(appPool), cookies)
	foodHandlers := foods.NewHandlers(foods.NewFoodService(appPool))
	recipeHandlers := recipes.NewHandlers(recipes.NewRecipeService(appPool, images, broadcaster), stream)
	commentHandlers := comments.NewCommentHandler(comments.NewCommentService(appPool, broadcaster))
	dayHandlers := days.NewHandlers(days.NewDayService(appPool))
	goalHandlers := goals.NewHandlers(goals.NewGoalService(appPool))
	fridgeHandlers := fridge.NewHandlers(fridge.NewFridgeService(appPool))
	guestHandlers := guest.NewHandlers(guest.NewGuestService(appPool), cfg.Auth.CookieSecure)
	platformHandlers := dataplatform.NewHandlers(platform)

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	metrics := middleware.NewMetrics("cookbook")
	metrics.Registry().MustRegister(broadcaster.Collectors()...)
	metrics.Registry().MustRegister(platform.Collectors()...)

	scheduler, err := background.NewScheduler(logger, background.Jobs{
		Sessions: authService,
		Expiring: func(ctx context.Context, within int) ([]fridge.UserExpiring, error) {
			return fridge.ExpiringCounts(ctx, appPool, within)
		},
		Limiter: limiter,
	})
	if err != nil {
		return err
	}
	metrics.Registry().MustRegister(scheduler.Collectors()...)
	scheduler.Start()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(limiter.Handler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpjson.WriteError(w, r, apperror.NewNotFoundError("route not found", nil))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpjson.WriteJSON(w, http.StatusMethodNotAllowed, apperror.ErrorResponse{Error: "method not allowed"})
	})

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Handle("/metrics", metrics.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := appPool.Ping(pingCtx); err != nil {
			httpjson.WriteError(w, r, apperror.NewUnavailableError("database unreachable", err))
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// recipe event streams stay open indefinitely, so they are mounted outside the request timeout
	r.Route("/api/cooking/recipes", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(requestTimeout))
			recipeHandlers.RegisterRoutes(r, authn)
			commentHandlers.RegisterRecipeRoutes(r, authn)
		})
		recipeHandlers.RegisterStreamRoutes(r, authn)
	})

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(requestTimeout))
		r.Route("/api/auth", func(r chi.Router) { authHandlers.RegisterRoutes(r, authn) })
		r.Route("/api/users", func(r chi.Router) { userHandlers.RegisterRoutes(r, authn) })
		r.Route("/api/cooking/foods", func(r chi.Router) { foodHandlers.RegisterRoutes(r, authn) })
		r.Route("/api/cooking/comments", func(r chi.Router) { commentHandlers.RegisterRoutes(r, authn) })
		r.Route("/api/cooking/days", func(r chi.Router) { dayHandlers.RegisterRoutes(r, authn) })
		r.Route("/api/cooking/goals", func(r chi.Router) { goalHandlers.RegisterRoutes(r, authn) })
		r.Route("/api/cooking/analysis", func(r chi.Router) { goalHandlers.RegisterAnalysisRoutes(r, authn) })
		r.Route("/api/cooking/fridge", func(r chi.Router) { fridgeHandlers.RegisterRoutes(r, authn) })
		r.Route("/api/cooking/alternatives", func(r chi.Router) { fridgeHandlers.RegisterAlternativeRoutes(r, authn) })
		r.Route("/api/cooking/guest", func(r chi.Router) { guestHandlers.RegisterRoutes(r, authn) })
		r.Route("/api/data-platform", platformHandlers.RegisterRoutes)
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	// no WriteTimeout: it would cut event streams; chi's Timeout bounds every other route
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// closing the broadcaster ends open event streams so Shutdown does not wait on them
	broadcaster.Close()
	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Warn(shutdownCtx, "background jobs did not stop in time", zap.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info(shutdownCtx, "server stopped gracefully")
	return nil
}
