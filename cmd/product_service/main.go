// Package main runs the product REST API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "net/http/pprof"

	"github.com/abgdnv/productapi/internal/app"
	"github.com/abgdnv/productapi/internal/config"
	"github.com/abgdnv/productapi/pkg/bootstrap"
	"github.com/abgdnv/productapi/pkg/config/configloader"
	"github.com/abgdnv/productapi/pkg/telemetry"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

const (
	serviceName      = "product"
	telemetryService = "product-service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run loads the configuration, wires the product store and starts the HTTP, gRPC, metrics and pprof servers.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.EffectiveLevel())
	slog.SetDefault(logger)

	if cfg.Telemetry.Enabled {
		tp, err := telemetry.NewTracerProvider(ctx, telemetryService, cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("failed to create tracer provider: %w", err)
		}
		defer shutdownWithTimeout(logger, "tracer provider", cfg.Shutdown.Timeout, tp.Shutdown)
	}

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		mp, err := telemetry.NewMeterProvider(telemetryService)
		if err != nil {
			return fmt.Errorf("failed to create meter provider: %w", err)
		}
		defer shutdownWithTimeout(logger, "meter provider", cfg.Shutdown.Timeout, mp.Shutdown)
		metricsHandler = mp.Handler()
	}

	productStore, closeStore, err := app.SetupStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to set up product store: %w", err)
	}
	defer closeStore()

	publisher, closePublisher, err := app.SetupPublisher(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to set up event publisher: %w", err)
	}
	defer closePublisher()

	deps := app.SetupDependencies(productStore, publisher, logger)
	httpServer := app.SetupHttpServer(deps, cfg)

	g, gCtx := errgroup.WithContext(ctx)

	serveHTTP(g, gCtx, logger, "HTTP", httpServer, cfg.Shutdown.Timeout)

	if cfg.GRPC.Enabled {
		grpcServer, hs := app.SetupGrpcServer(cfg)
		serveGRPC(g, gCtx, logger, cfg, grpcServer, hs)
	}

	if cfg.Metrics.Enabled {
		serveHTTP(g, gCtx, logger, "metrics", app.SetupMetricsServer(cfg, metricsHandler), cfg.Shutdown.Timeout)
	}

	if cfg.PProf.Enabled {
		// http.DefaultServeMux carries the pprof handlers
		pprofServer := &http.Server{Addr: cfg.PProf.Addr, ReadHeaderTimeout: cfg.HTTPServer.Timeout.ReadHeader}
		serveHTTP(g, gCtx, logger, "pprof", pprofServer, cfg.Shutdown.Timeout)
	} else {
		logger.Info("Pprof server is disabled")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// serveHTTP runs srv until the group context is cancelled, then shuts it down gracefully.
func serveHTTP(g *errgroup.Group, gCtx context.Context, logger *slog.Logger, name string, srv *http.Server, timeout time.Duration) {
	g.Go(func() error {
		logger.Info(name+" server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server failed: %w", name, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down " + name + " server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

func serveGRPC(g *errgroup.Group, gCtx context.Context, logger *slog.Logger, cfg *config.Config, grpcServer *grpc.Server, hs *health.Server) {
	g.Go(func() error {
		grpcAddr := ":" + cfg.GRPC.Port
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on gRPC port: %w", err)
		}
		logger.Info("gRPC server listening", slog.String("addr", grpcAddr))
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down gRPC server...")
		hs.Shutdown()
		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
			logger.Info("gRPC server stopped gracefully.")
			return nil
		case <-time.After(cfg.Shutdown.Timeout):
			logger.Warn("gRPC server graceful stop timed out. Forcing stop.")
			grpcServer.Stop()
			return fmt.Errorf("grpc server graceful stop timed out")
		}
	})
}

func shutdownWithTimeout(logger *slog.Logger, name string, timeout time.Duration, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Warn("Failed to shut down "+name, "error", err)
	}
}
