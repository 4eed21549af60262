package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpcapi "event-ingress-service/internal/api/grpc"
	"event-ingress-service/internal/app"
	"event-ingress-service/internal/config"
	httpapi "event-ingress-service/internal/http"
	"event-ingress-service/internal/observability"
	"event-ingress-service/internal/observability/metrics"
)

func main() {
	cfg := config.Load()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to create application: %v", err)
	}
	if err := application.Start(); err != nil {
		log.Fatalf("failed to start application: %v", err)
	}
	defer application.Shutdown()

	// Observability endpoints (metrics, health, schema inspection)
	obs := observability.NewServer(cfg.Observability.MetricsAddr, application.Registry)
	obs.Start()

	// HTTP ingress API
	httpServer := &http.Server{
		Addr:         ":" + cfg.Service.HTTPPort,
		Handler:      httpapi.NewRouter(application),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		application.Logger.Info().Str("addr", httpServer.Addr).Msg("HTTP ingress API started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http serve failed: %v", err)
		}
	}()

	// gRPC server: health, reflection and the validation interceptor.
	// Upstream services register their handlers against this server and
	// bind request models per method.
	lis, err := net.Listen("tcp", ":"+cfg.Service.GRPCPort)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	methods := grpcapi.NewMethodRegistry()
	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			observability.UnaryServerInterceptor(metrics.DefaultMetrics),
			grpcapi.UnaryValidationInterceptor(application.Pipe, methods),
		),
	)

	// Register gRPC health check service
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	// Enable gRPC reflection for debugging tools like grpcurl
	reflection.Register(server)

	go func() {
		application.Logger.Info().Str("port", cfg.Service.GRPCPort).Msg("gRPC server started")
		if err := server.Serve(lis); err != nil {
			log.Fatalf("grpc serve failed: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	application.Logger.Info().Msg("Shutting down servers")
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	server.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		application.Logger.Error().Err(err).Msg("HTTP shutdown error")
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		application.Logger.Error().Err(err).Msg("Observability shutdown error")
	}
}
