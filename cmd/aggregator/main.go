// Command aggregator runs the read-side fan-out gateway that composes
// responses from the post, reply, user-profile, social-graph, and
// feed-ranker collaborators.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nimbusfeed/socialmesh/internal/aggregator/clients"
	"github.com/nimbusfeed/socialmesh/internal/aggregator/composer"
	"github.com/nimbusfeed/socialmesh/internal/aggregator/httpapi"
	"github.com/nimbusfeed/socialmesh/internal/platform/config"
	"github.com/nimbusfeed/socialmesh/internal/platform/jwtauth"
	"github.com/nimbusfeed/socialmesh/internal/platform/logging"
	"github.com/nimbusfeed/socialmesh/internal/platform/tracing"
)

func main() {
	log := logging.New()
	entry := logging.Service(log, "aggregator")

	mesh, err := config.Load(config.NewEnvSecretProvider())
	if err != nil {
		entry.WithError(err).Fatal("loading configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, tracing.ConfigFromEnv("aggregator", mesh.TelemetryCollector))
	if err != nil {
		entry.WithError(err).Fatal("initializing tracing")
	}

	downstream, err := clients.Dial(ctx, clients.Addrs{
		PostServiceAddr:  mesh.PostServiceAddr,
		ReplyServiceAddr: mesh.ReplyServiceAddr,
		UserProfileAddr:  mesh.UserProfileAddr,
		RelationshipAddr: mesh.RelationshipAddr,
		FeedServiceAddr:  mesh.FeedServiceAddr,
	})
	if err != nil {
		entry.WithError(err).Fatal("dialing downstream collaborators")
	}

	engine := composer.New(downstream)
	auth := jwtauth.NewService(mesh.JWTSigningKey, mesh.JWTIssuer, mesh.JWTAudience)

	e := echo.New()
	e.HideBanner = true
	e.Use(tracing.EchoMiddleware("aggregator"))
	e.Use(auth.EchoMiddleware())
	httpapi.NewHandlers(engine).Register(e.Group("/api"))

	go func() {
		if err := e.Start(":8080"); err != nil && err != http.ErrServerClosed {
			entry.WithError(err).Error("http server stopped")
		}
	}()

	entry.Info("aggregator service started")
	<-ctx.Done()
	entry.Info("aggregator service shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = e.Shutdown(shutdownCtx)
	_ = downstream.Close()
	_ = shutdownTracing(shutdownCtx)
}
