// Package server initializes and runs the linekeeper server. It wires the
// storage backend, the secret engine, the coordinator and the HTTP
// endpoint, and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/linekeeper/linekeeper/internal/enclave"
	"github.com/linekeeper/linekeeper/internal/logging"
	"github.com/linekeeper/linekeeper/internal/server/config"
	"github.com/linekeeper/linekeeper/internal/server/events"
	"github.com/linekeeper/linekeeper/internal/server/repositories/repomanager"
	"github.com/linekeeper/linekeeper/internal/server/rest"
	"github.com/linekeeper/linekeeper/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	rm     repomanager.RepositoryManager
	server *rest.Server
}

func NewApp(c *config.Config) (*App, error) {
	zl, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}
	logger := logging.NewZapLogger(zl)

	rm, err := newRepositoryManager(c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	svc := services.NewLineService(rm, enclave.NewLocal(), events.NewLogEmitter(logger), logger)
	srv := rest.NewServer(c.EndpointAddr, svc, []byte(c.SecretKey), c.TokenValidityDuration, logger)

	return &App{config: c, logger: logger, rm: rm, server: srv}, nil
}

func newRepositoryManager(c *config.Config) (repomanager.RepositoryManager, error) {
	switch c.StorageDriver {
	case "memory":
		return repomanager.NewInMemoryRepositoryManager(), nil
	case "postgres":
		return repomanager.NewPostgresRepositoryManager(c.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", c.StorageDriver)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	if err := app.rm.RunMigrations(ctx); err != nil {
		app.logger.Error(ctx, fmt.Sprintf("migrations error: %v", err))
		return
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.rm.Close(); err != nil {
		app.logger.Error(ctx, fmt.Sprintf("storage close error: %v", err))
	}
}
