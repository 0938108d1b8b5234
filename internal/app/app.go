package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crm/internal/auth"
	"github.com/vladislavdragonenkov/crm/internal/domain"
	gql "github.com/vladislavdragonenkov/crm/internal/graphql"
	healthcheck "github.com/vladislavdragonenkov/crm/internal/health"
	"github.com/vladislavdragonenkov/crm/internal/service/accounts"
	"github.com/vladislavdragonenkov/crm/internal/service/catalog"
	"github.com/vladislavdragonenkov/crm/internal/service/customers"
	"github.com/vladislavdragonenkov/crm/internal/service/orders"
	"github.com/vladislavdragonenkov/crm/internal/service/reports"
	"github.com/vladislavdragonenkov/crm/internal/storage/memory"
	"github.com/vladislavdragonenkov/crm/internal/storage/mongo"
	"github.com/vladislavdragonenkov/crm/internal/version"
)

// repositories — собранный слой хранилища вместе с проверкой доступности
// и функцией закрытия подключения.
type repositories struct {
	users     domain.UserRepository
	products  domain.ProductRepository
	customers domain.CustomerRepository
	orders    domain.OrderRepository
	reports   domain.ReportsRepository
	check     healthcheck.CheckFunc
	close     func(ctx context.Context) error
}

// initStorage выбирает бэкенд хранилища: MongoDB, когда задан URI, иначе
// in-memory для разработки и тестов.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (*repositories, error) {
	if cfg.MongoURI == "" {
		logger.Info("mongo URI is not set, using in-memory storage")
		users := memory.NewUserRepository()
		custs := memory.NewCustomerRepository()
		ords := memory.NewOrderRepository()
		return &repositories{
			users:     users,
			products:  memory.NewProductRepository(),
			customers: custs,
			orders:    ords,
			reports:   memory.NewReports(ords, custs, users),
			check:     func(context.Context) error { return nil },
			close:     func(context.Context) error { return nil },
		}, nil
	}

	store, err := mongo.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = store.Close(ctx)
		return nil, err
	}
	logger.WithField("database", cfg.MongoDatabase).Info("mongo storage initialized")

	return &repositories{
		users:     mongo.NewUserRepository(store),
		products:  mongo.NewProductRepository(store),
		customers: mongo.NewCustomerRepository(store),
		orders:    mongo.NewOrderRepository(store),
		reports:   mongo.NewReports(store),
		check:     store.Ping,
		close:     store.Close,
	}, nil
}

// Run собирает приложение и обслуживает запросы до отмены контекста.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	repos, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := repos.close(closeCtx); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	resolver := gql.NewResolver(
		accounts.NewService(repos.users, tokens, logger.WithField("layer", "accounts")),
		catalog.NewService(repos.products, logger.WithField("layer", "catalog")),
		customers.NewService(repos.customers, logger.WithField("layer", "customers")),
		orders.NewWorkflow(repos.orders, repos.customers, repos.products, logger.WithField("layer", "orders")),
		reports.NewService(repos.reports, logger.WithField("layer", "reports")),
		repos.customers,
		logger.WithField("layer", "graphql"),
	)

	schema, err := gql.NewSchema(resolver)
	if err != nil {
		return err
	}
	apiHandler := gql.NewHandler(schema, logger.WithField("layer", "graphql"))

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(cfg.RequestTimeout))
	router.Group(func(r chi.Router) {
		r.Use(gql.AuthMiddleware(tokens, logger.WithField("layer", "auth")))
		r.Post("/graphql", apiHandler.ServeHTTP)
	})

	healthHandler := healthcheck.NewHandler(version.Version())
	healthHandler.Register("storage", repos.check)

	metricsSrv := startMetricsServer(ctx, cfg, logger, healthHandler)

	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("GraphQL API слушает %s/graphql", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(apiSrv, cfg.ShutdownTimeout, logger)
		shutdownHTTP(metricsSrv, cfg.ShutdownTimeout, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, cfg.ShutdownTimeout, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает служебный HTTP: метрики Prometheus и health checks.
func startMetricsServer(ctx context.Context, cfg Config, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := chi.NewRouter()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Method(http.MethodGet, "/healthz", healthHandler)
	mux.Get("/livez", healthcheck.LivenessHandler)
	mux.Get("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", cfg.MetricsAddr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", cfg.MetricsAddr, cfg.MetricsAddr, cfg.MetricsAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, cfg.ShutdownTimeout, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, timeout time.Duration, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
