// Package app wires the product service components together.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/productapi/internal/config"
	"github.com/abgdnv/productapi/internal/service"
	"github.com/abgdnv/productapi/internal/store"
	"github.com/abgdnv/productapi/internal/transport/rest"
	"github.com/abgdnv/productapi/pkg/bootstrap"
	"github.com/abgdnv/productapi/pkg/messaging"
	pnats "github.com/abgdnv/productapi/pkg/nats"
	"github.com/abgdnv/productapi/pkg/server"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type Dependencies struct {
	ProductService service.ProductService
	Store          store.ProductStore
	Logger         *slog.Logger
}

// SetupStore opens the configured product store, applies migrations when asked to, wraps it in a
// circuit breaker when enabled and seeds it. The returned func releases the underlying resources.
func SetupStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.ProductStore, func(), error) {
	var (
		productStore store.ProductStore
		closer       = func() {}
	)
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		if cfg.Database.Migrate {
			if err := store.Migrate(cfg.Database.URL); err != nil {
				return nil, nil, err
			}
			logger.Info("Database migrations applied")
		}
		dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Successfully connected to the database!")
		productStore = store.NewPgStore(dbPool)
		closer = dbPool.Close
	case config.DriverMemory:
		productStore = store.NewMemory()
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}

	if cfg.Resilience.CircuitBreaker.Enabled {
		productStore = store.NewBreaker(productStore, cfg.Resilience.CircuitBreaker, logger.With("component", "store-breaker"))
	}

	if cfg.Store.Seed.Enabled {
		n, err := store.Seed(ctx, productStore, cfg.Store.Seed.Count, gofakeit.New(cfg.Store.Seed.Random))
		if err != nil {
			closer()
			return nil, nil, err
		}
		logger.Info("Product store seeded", "count", n)
	}
	return productStore, closer, nil
}

// SetupPublisher connects to NATS JetStream and makes sure the product stream exists.
// With NATS disabled, events are discarded.
// The connection is closed on every failure after it was opened.
func SetupPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ messaging.Publisher, _ func(), err error) {
	if !cfg.NATS.Enabled {
		logger.Info("NATS is disabled, product events will not be published")
		return messaging.NoopPublisher{}, func() {}, nil
	}
	nc, err := pnats.NewClient(cfg.NATS.Url, cfg.NATS.Timeout)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if err != nil {
			nc.Close()
		}
	}()

	js, err := pnats.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	if _, err = pnats.EnsureStream(ctx, js, cfg.NATS.Stream, messaging.ProductsSubjects); err != nil {
		return nil, nil, err
	}
	logger.Info("Successfully connected to NATS", "stream", cfg.NATS.Stream)
	closer := func() {
		if err := nc.Drain(); err != nil {
			logger.Warn("Failed to drain NATS connection", "error", err)
		}
	}
	return pnats.NewNatsPublisher(js, cfg.NATS.Stream), closer, nil
}

func SetupDependencies(productStore store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		ProductService: service.NewService(productStore, publisher, logger),
		Store:          productStore,
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the router and routes of the product API.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the product service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Store, deps.Logger)
	productHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures the HTTP server, instrumented with OpenTelemetry when tracing is enabled.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	handler := SetupHttpHandler(deps)
	if cfg.Telemetry.Enabled {
		handler = otelhttp.NewHandler(handler, "product-http")
	}

	return server.NewHTTPServer(cfg.HTTPServer, handler)
}

// SetupGrpcServer initializes the gRPC server exposing the standard health service.
func SetupGrpcServer(cfg *config.Config) (*grpc.Server, *health.Server) {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return server.NewGRPCServer(cfg.GRPC.ReflectionEnabled, server.HealthRegistration(hs)), hs
}

// SetupMetricsServer serves the Prometheus exposition of handler on the metrics address.
func SetupMetricsServer(cfg *config.Config, handler http.Handler) *http.Server {
	return server.NewMetricsServer(cfg.Metrics.Addr, cfg.HTTPServer.Timeout.ReadHeader, handler)
}
