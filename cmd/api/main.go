package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calc-service/internal/auth"
	"calc-service/internal/calculator"
	"calc-service/internal/observability"
	"calc-service/internal/server"
	"calc-service/internal/session"
	"calc-service/internal/store"
)

func main() {

	ctx := context.Background()

	if err := loadDotEnv(); err != nil {
		panic(err)
	}

	// Logger
	err := observability.InitLogger()
	if err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	// OTLP log bridge, only when a collector endpoint is configured.
	if otlpConfigured() {
		logShutdown, err := observability.InitLogging(ctx)
		if err != nil {
			panic(err)
		}
		defer logShutdown(ctx)
	}

	// Tracing
	traceShutdown, err := observability.InitTracing(ctx)
	if err != nil {
		panic(err)
	}
	defer traceShutdown(ctx)

	// Metrics
	metricShutdown, err := initMetrics(ctx)
	if err != nil {
		panic(err)
	}
	defer metricShutdown(ctx)

	// Stores and sessions
	users := store.NewUserStore(usersPath())
	history := store.NewHistoryStore(historyPath())

	sessions := session.NewManager(history)
	defer sessions.Close()

	// Router
	router := server.NewRouter(server.Deps{
		Auth:       auth.NewHandlers(auth.NewManager(users), sessions),
		Calculator: calculator.NewHandlers(history),
		Sessions:   sessions,
	})

	srv := &http.Server{
		Addr:    listenAddr(),
		Handler: router,
	}

	go func() {
		observability.Logger.Info("server started")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	waitForShutdown(srv)
}

func waitForShutdown(srv *http.Server) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv.Shutdown(ctx)
}
