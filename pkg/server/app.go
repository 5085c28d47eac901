package server

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"PUM/internal/usecase"
	pkgch "PUM/pkg/clickhouse"
	"PUM/pkg/config"
	xhttp "PUM/pkg/http"
	pkgkafka "PUM/pkg/kafka"
	applogger "PUM/pkg/logger"
	pkgqueue "PUM/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	collector   *usecase.PointCollector
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient    *pkgch.Client
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	queue       *pkgqueue.RedisQueue
	log         *applogger.Logger
	PointProc   *usecase.PointProcessor
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	collector *usecase.PointCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		collector: collector,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// SetQueue allows DI to inject the assessment queue consumer.
func (a *App) SetQueue(q *pkgqueue.RedisQueue) { a.queue = q }

// SetLogger allows DI to inject the application logger.
func (a *App) SetLogger(l *applogger.Logger) { a.log = l }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.log
	if l == nil {
		l, _ = applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	}

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start collector
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			l.Error("collector error", applogger.Error(err))
		}
	}()
	l.Info("collector started", applogger.Strings("tokens", a.cfg.Feed.Tokens))

	// Start consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start assessment queue workers if configured
	if a.queue != nil {
		if err := a.queue.Start(); err != nil {
			l.Error("assessment queue start error", applogger.Error(err))
		} else {
			l.Info("assessment queue started", applogger.Int("workers", a.cfg.Redis.Queue.Workers))
		}
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.log
	if l == nil {
		var err error
		l, err = applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
		if err != nil {
			log.Printf("failed to create logger: %v", err)
			return err
		}
	}
	l.Info("shutting down...")

	// Stop collector (pipeline + stream)
	if err := a.collector.Shutdown(ctx); err != nil {
		l.Warn("collector stop error", applogger.Error(err))
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Stop assessment queue workers
	if a.queue != nil {
		if err := a.queue.Stop(shutdownCtx); err != nil {
			l.Warn("assessment queue stop error", applogger.Error(err))
		}
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	// Close point processor resources (publisher/storage)
	if a.PointProc != nil {
		a.PointProc.Close()
	}

	l.Info("shutdown complete")
	return nil
}
