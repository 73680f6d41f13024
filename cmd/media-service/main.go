// Command media-service runs the authoritative post/media store: a gRPC
// read surface for the aggregator, an HTTP write surface for direct
// clients, and message-bus consumers that keep its user-existence cache
// current.
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

	"github.com/nimbusfeed/socialmesh/internal/media/events"
	"github.com/nimbusfeed/socialmesh/internal/media/grpcserver"
	"github.com/nimbusfeed/socialmesh/internal/media/httpapi"
	"github.com/nimbusfeed/socialmesh/internal/media/service"
	"github.com/nimbusfeed/socialmesh/internal/media/store"
	"github.com/nimbusfeed/socialmesh/internal/platform/config"
	"github.com/nimbusfeed/socialmesh/internal/platform/logging"
	"github.com/nimbusfeed/socialmesh/internal/platform/mq"
	"github.com/nimbusfeed/socialmesh/internal/platform/objectstore"
	"github.com/nimbusfeed/socialmesh/internal/platform/tracing"
)

func main() {
	log := logging.New()
	entry := logging.Service(log, "media-service")

	mesh, err := config.Load(config.NewEnvSecretProvider())
	if err != nil {
		entry.WithError(err).Fatal("loading configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, tracing.ConfigFromEnv("media-service", mesh.TelemetryCollector))
	if err != nil {
		entry.WithError(err).Fatal("initializing tracing")
	}

	docStore, err := store.Open(ctx, mesh.DatabaseURI)
	if err != nil {
		entry.WithError(err).Fatal("opening document store")
	}

	objects, err := objectstore.New(ctx, objectstore.Options{
		Endpoint: mesh.ObjectStoreEndpoint,
		Bucket:   mesh.ObjectStoreBucket,
		URLTTL:   time.Duration(mesh.ObjectStoreURLTTL) * time.Second,
	})
	if err != nil {
		entry.WithError(err).Fatal("configuring object store")
	}

	broker, err := mq.Dial(mesh.BrokerURI, entry)
	if err != nil {
		entry.WithError(err).Fatal("connecting to broker")
	}
	if err := broker.DeclareExchange(mq.PostExchange); err != nil {
		entry.WithError(err).Fatal("declaring post exchange")
	}

	svc := service.New(docStore, objects, service.NewBrokerPublisher(broker), entry, time.Duration(mesh.ObjectStoreURLTTL)*time.Second)

	if err := events.Register(ctx, broker, svc, entry); err != nil {
		entry.WithError(err).Fatal("registering event consumers")
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	grpcserver.NewServer(svc).Register(grpcServer)
	grpcListener, err := net.Listen("tcp", ":9001")
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
	e.Use(tracing.EchoMiddleware("media-service"))
	httpapi.NewHandlers(svc).Register(e.Group("/api"))
	go func() {
		if err := e.Start(":8081"); err != nil && err != http.ErrServerClosed {
			entry.WithError(err).Error("http server stopped")
		}
	}()

	entry.Info("media-service started")
	<-ctx.Done()
	entry.Info("media-service shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	grpcServer.GracefulStop()
	_ = e.Shutdown(shutdownCtx)
	_ = broker.Close()
	_ = docStore.Close()
	_ = shutdownTracing(shutdownCtx)
}
