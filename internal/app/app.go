package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"taskManager/internal/config"
	"taskManager/internal/handlers"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	"taskManager/internal/migrations"
	"taskManager/internal/repository"
	"taskManager/internal/repository/inmemory"
	"taskManager/internal/repository/postgres"
	"taskManager/internal/repository/sqlstore"
	"taskManager/internal/service"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const serviceName = "task-manager"

type App struct {
	config     *config.Config
	server     *http.Server
	repository service.Repository
	service    *service.Service
	shutdowns  []func() error
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func() error, 0),
	}
}

// Init builds the logger, the store and the HTTP server.
func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() error {
		logger.Info("App: flushing logs")
		logger.Sync()
		return nil
	})

	repo, err := a.openRepository(ctx)
	if err != nil {
		return err
	}
	a.repository = repo

	a.service = service.NewService(repo,
		service.WithStrictAssignment(a.config.Tasks.StrictAssignment),
		service.WithClearCompletedAtOnReopen(a.config.Tasks.ClearCompletedAtOnReopen),
	)

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.Handler(),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}
	return nil
}

func (a *App) openRepository(ctx context.Context) (service.Repository, error) {
	repoType := a.config.RepositoryType()
	dsn := a.config.Database.URL

	if a.config.Database.AutoMigrate && repoType != repository.TypeInMemory {
		if err := migrations.Up(repoType, dsn); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}

	switch repoType {
	case repository.TypePostgres:
		store, err := postgres.New(ctx, dsn, postgres.PoolSettings{
			MaxConns:    a.config.Database.MaxConnections,
			MinConns:    a.config.Database.MinConnections,
			IdleTimeout: a.config.Database.IdleTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.shutdowns = append(a.shutdowns, func() error {
			store.Close()
			return nil
		})
		return store, nil

	case repository.TypeSQLite, repository.TypeMySQL:
		store, err := sqlstore.Open(ctx, repoType, dsn)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", repoType, err)
		}
		a.shutdowns = append(a.shutdowns, store.Close)
		return store, nil

	case repository.TypeInMemory:
		logger.Info("App: using in-memory repository")
		return inmemory.New(), nil
	}
	return nil, fmt.Errorf("unknown repository type %q", repoType)
}

// Handler is the full middleware chain around the router.
func (a *App) Handler() http.Handler {
	h := handlers.NewHandler(a.service)

	middlewares := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.Logging,
		chimw.Recoverer,
	}
	if origins := a.config.HTTP.CORSAllowedOrigins; len(origins) > 0 {
		middlewares = append(middlewares, cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIdHeader},
			ExposedHeaders: []string{middleware.RequestIdHeader},
			MaxAge:         300,
		}))
	}
	middlewares = append(middlewares, middleware.RateLimit(a.config.HTTP.RateLimit))

	router := handlers.NewRouter(h, middlewares...)
	return otelhttp.NewHandler(router, serviceName)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("App: server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("App: shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()
		return a.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown stops the server and releases everything Init acquired, last acquired first.
func (a *App) Shutdown(ctx context.Context) error {
	var err error
	if a.server != nil {
		if serr := a.server.Shutdown(ctx); serr != nil {
			err = multierr.Append(err, fmt.Errorf("server shutdown: %w", serr))
		}
	}
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.shutdowns[i]())
	}
	a.shutdowns = nil
	return err
}
