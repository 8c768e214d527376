package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/timvw/draft-patrol/internal/auditlog"
	"github.com/timvw/draft-patrol/internal/config"
	"github.com/timvw/draft-patrol/internal/events"
	"github.com/timvw/draft-patrol/internal/monitor"
	telem "github.com/timvw/draft-patrol/internal/otel"
	"github.com/timvw/draft-patrol/internal/store"
	"github.com/timvw/draft-patrol/internal/token"
)

var flagEventSocket string

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the monitoring loop until stopped",
	Long: `Start the monitoring agent: listen for save events from the drafting
process, evaluate each saved record with the secondary model, append the
verdicts to the audit log, and merge structured results back into the
document store.

Events arrive on a Unix datagram socket; the drafting process sends one
JSON datagram per save. The loop drains events one at a time and sleeps
briefly when the queue is empty.

Configuration is loaded from .draft-patrol.yaml or environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMonitor(cmd)
	},
}

func init() {
	monitorCmd.Flags().StringVar(&flagEventSocket, "event-socket", "",
		"Unix datagram socket path for save events")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration: defaults -> config file -> env vars -> flags.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	applyFlags(cfg)

	logger := buildLogger(cfg.LogLevel)
	defer logger.Sync()

	if cfg.ConfigFile != "" {
		logger.Info("loaded config file", zap.String("path", cfg.ConfigFile))
	}

	// Wire build version into OTEL service metadata
	telem.Version = Version

	// Initialize OTEL (no-op if no endpoint configured)
	tel, err := telem.Init(ctx, telem.OTELConfig{
		Endpoint: cfg.OTELEndpoint,
		Headers:  cfg.OTELHeaders,
	})
	if err != nil {
		logger.Warn("otel init failed", zap.Error(err))
	}
	if tel != nil {
		defer tel.Shutdown(ctx)
	}
	var metrics *telem.Metrics
	if tel != nil {
		metrics = tel.Metrics
	}

	// Document store: Postgres when a DSN is configured, in-memory otherwise.
	var docs store.DocumentStore
	if cfg.PostgresDSN != "" {
		pg, err := store.NewPostgres(cfg.PostgresDSN, logger)
		if err != nil {
			return fmt.Errorf("document store: %w", err)
		}
		defer pg.Close()
		if err := pg.Migrate(ctx); err != nil {
			return fmt.Errorf("document store migrate: %w", err)
		}
		docs = pg
	} else {
		logger.Warn("no postgres_dsn configured, using in-memory document store")
		docs = store.NewMemory()
	}

	audit, err := auditlog.New(cfg.EvaluationsDir)
	if err != nil {
		return fmt.Errorf("audit log: %w", err)
	}

	gw, err := getGateway(cfg)
	if err != nil {
		return err
	}

	socketPath := flagEventSocket
	if socketPath == "" {
		socketPath = cfg.EventSocket
	}
	if socketPath == "" {
		socketPath = events.DefaultSocketPath()
	}

	queue := events.NewQueue(0)
	collector := events.NewCollector(queue, socketPath, logger)
	if err := collector.Start(ctx); err != nil {
		return fmt.Errorf("event collector: %w", err)
	}
	logger.Info("event collector listening", zap.String("socket", collector.SocketPath()))

	ev := &monitor.Evaluator{
		Store:      docs,
		Gateway:    gw,
		Audit:      audit,
		Collection: cfg.Collection,
		Models: monitor.ModelSet{
			Primary:          cfg.Model,
			PrimaryException: cfg.ModelException,
			Fallback:         cfg.ModelFallback,
		},
		Counter: token.NewCounter(gw.Provider()),
		Logger:  logger,
		Metrics: metrics,
		Cache:   monitor.NewEvalCache(cfg.CacheTTLDuration),
	}

	loop := &monitor.Loop{
		Queue:       queue,
		Evaluator:   ev,
		Logger:      logger,
		PollBackoff: cfg.PollBackoffDuration,
	}

	// A signal requests a cooperative stop. The shared context is only
	// cancelled after Run returns (the deferred cancel), so an in-flight
	// evaluation and its model call always complete.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigs
		logger.Info("shutting down", zap.String("signal", s.String()))
		loop.Stop()
	}()

	logger.Info("monitoring loop started",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.String("collection", cfg.Collection))

	loop.Run(ctx)
	return nil
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}
