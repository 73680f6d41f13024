// Command user-interaction runs the materialized-path reply store, the
// like/view interaction layer, and the read-through composite cache.
package main

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"github.com/nimbusfeed/socialmesh/internal/platform/config"
	"github.com/nimbusfeed/socialmesh/internal/platform/logging"
	"github.com/nimbusfeed/socialmesh/internal/platform/mq"
	"github.com/nimbusfeed/socialmesh/internal/platform/tracing"
	"github.com/nimbusfeed/socialmesh/internal/userinteraction/events"
	"github.com/nimbusfeed/socialmesh/internal/userinteraction/grpcserver"
	"github.com/nimbusfeed/socialmesh/internal/userinteraction/httpapi"
	"github.com/nimbusfeed/socialmesh/internal/userinteraction/interactions"
	"github.com/nimbusfeed/socialmesh/internal/userinteraction/replystore"
	"github.com/nimbusfeed/socialmesh/internal/userinteraction/service"
)

// cacheTTL is the configured interval hash-cache fields carry; not
// exposed as a named secret, so a fixed sensible default stands in for
// both deployment modes.
const cacheTTL = 5 * time.Minute

func main() {
	log := logging.New()
	entry := logging.Service(log, "user-interaction")

	mesh, err := config.Load(config.NewEnvSecretProvider())
	if err != nil {
		entry.WithError(err).Fatal("loading configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, tracing.ConfigFromEnv("user-interaction", mesh.TelemetryCollector))
	if err != nil {
		entry.WithError(err).Fatal("initializing tracing")
	}

	replyStore, err := replystore.Open(ctx, mesh.DatabaseURI)
	if err != nil {
		entry.WithError(err).Fatal("opening reply store")
	}
	if err := replyStore.EnsureSchema(ctx); err != nil {
		entry.WithError(err).Fatal("ensuring reply schema")
	}

	cache, err := interactions.New(mesh.CacheURI, cacheTTL)
	if err != nil {
		entry.WithError(err).Fatal("connecting to cache")
	}

	broker, err := mq.Dial(mesh.BrokerURI, entry)
	if err != nil {
		entry.WithError(err).Fatal("connecting to broker")
	}
	if err := broker.DeclareExchange(mq.UserExchange); err != nil {
		entry.WithError(err).Fatal("declaring user exchange")
	}

	svc := service.New(replyStore, cache, service.NewBrokerPublisher(broker), entry)

	if err := events.Register(ctx, broker, svc, entry); err != nil {
		entry.WithError(err).Fatal("registering event consumers")
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	grpcserver.NewServer(svc).Register(grpcServer)
	grpcListener, err := net.Listen("tcp", ":9002")
	if err != nil {
		entry.WithError(err).Fatal("listening for gRPC")
	}
	go func() {
		if err := grpcServer.Serve(grpcListener); err != nil {
			entry.WithError(err).Error("grpc server stopped")
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(tracing.EchoMiddleware("user-interaction"))
	httpapi.NewHandlers(svc).Register(e.Group("/api"))
	go func() {
		if err := e.Start(":8082"); err != nil && err != http.ErrServerClosed {
			entry.WithError(err).Error("http server stopped")
		}
	}()

	entry.Info("user-interaction service started")
	<-ctx.Done()
	entry.Info("user-interaction service shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	grpcServer.GracefulStop()
	_ = e.Shutdown(shutdownCtx)
	_ = broker.Close()
	_ = cache.Close()
	replyStore.Close()
	_ = shutdownTracing(shutdownCtx)
}
