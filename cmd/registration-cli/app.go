// cmd/registration-cli/app.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"registration-pipeline/internal/common/config"
	apperrors "registration-pipeline/internal/common/errors"
	"registration-pipeline/internal/common/kvstore"
	"registration-pipeline/internal/common/logger"
	"registration-pipeline/internal/common/observability"
	"registration-pipeline/internal/form/durability"
	"registration-pipeline/internal/form/presenter"
	"registration-pipeline/internal/form/remote"
	"registration-pipeline/internal/form/submission"
	"registration-pipeline/internal/form/validation"
	"registration-pipeline/pkg/registry"
)

const (
	storeConnectRetries = 5
	storeConnectDelay   = time.Second
)

// app holds the wired components of one CLI invocation.
type app struct {
	cfg       *config.Config
	zapLog    *zap.Logger
	log       logger.Logger
	kv        kvstore.Store
	store     *durability.Store
	registry  *registry.FormRegistry
	engine    *validation.Engine
	presenter *presenter.Presenter
	sender    remote.Sender
	obs       *observability.Observability
	metrics   *http.Server
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func effectiveLogLevel(cfg *config.Config) string {
	switch {
	case verbose:
		return "debug"
	case logLevel != "":
		return logLevel
	default:
		return cfg.Logging.Level
	}
}

// newApp connects the store and builds the pipeline from cfg.
func newApp(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) (*app, error) {
	a := &app{
		cfg:    cfg,
		zapLog: zapLog,
		log:    logger.NewZapAdapter(zapLog),
	}

	reg, err := registry.LoadRegistry(cfg.Form.FieldsPath)
	if err != nil {
		return nil, err
	}
	engine, err := reg.Engine()
	if err != nil {
		return nil, err
	}
	a.registry = reg
	a.engine = engine
	a.presenter = presenter.New(engine)

	err = retryWithBackoff(func() error {
		var err error
		a.kv, err = kvstore.Open(ctx, cfg.Store)
		return err
	}, storeConnectRetries, storeConnectDelay, zapLog, cfg.Store.Backend+" store connection")
	if err != nil {
		return nil, err
	}

	a.store = durability.NewStore(a.kv, &durability.Config{
		Key:     cfg.Store.Key,
		Timeout: 5 * time.Second,
	}, a.log)
	a.sender = remote.NewHTTPSender(remote.LoadConfig(cfg.Remote), a.log)

	if cfg.Metrics.Enabled {
		obs, err := observability.New(cfg.App.Name)
		if err != nil {
			zapLog.Warn("observability disabled", zap.Error(err))
		}
		a.obs = obs
		a.startMetricsServer()
	}

	zapLog.Debug("pipeline ready",
		zap.String("backend", cfg.Store.Backend),
		zap.String("remoteMode", cfg.Remote.Mode),
		zap.Int("fields", len(reg.Fields)),
	)
	return a, nil
}

func (a *app) controller(view submission.View) *submission.Controller {
	return submission.NewController(
		a.engine,
		a.presenter,
		a.store,
		a.sender,
		view,
		submission.Options{SourceURL: a.cfg.Form.SourceURL},
		a.log,
	).WithObservability(a.obs)
}

func (a *app) startMetricsServer() {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	a.metrics = &http.Server{Addr: a.cfg.Metrics.Address, Handler: mux}
	go func() {
		a.zapLog.Info("Metrics server listening", zap.String("address", a.cfg.Metrics.Address))
		if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.zapLog.Error("Metrics server failed", zap.Error(err))
		}
	}()
}

// checkPersisted fails when records are only held in memory. The process
// exits after one command, so anything still pending would be lost.
func (a *app) checkPersisted(out io.Writer) error {
	n := a.store.Pending()
	if n == 0 {
		return nil
	}
	a.log.Error("submission not persisted, local store unavailable", map[string]interface{}{
		"pending": n,
		"backend": a.cfg.Store.Backend,
		"key":     a.cfg.Store.Key,
	})
	fmt.Fprintf(out, "Warning: %d registration(s) could not be saved locally.\n", n)
	return apperrors.NewStorageWriteError(a.cfg.Store.Key, fmt.Errorf("%d record(s) held in memory only", n))
}

func (a *app) Close() {
	if n := a.store.Pending(); n > 0 {
		a.log.Error("discarding records held in memory", map[string]interface{}{"pending": n})
	}
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.metrics.Shutdown(ctx)
	}
	a.obs.Shutdown()
	if c, ok := a.kv.(kvstore.Closer); ok {
		if err := c.Close(); err != nil {
			a.zapLog.Error("Error closing store", zap.Error(err))
		}
	}
	_ = a.zapLog.Sync()
}

// bootstrap loads config and builds the app for a command.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	zapLog := logger.New(effectiveLogLevel(cfg), cfg.Logging.Format)
	a, err := newApp(ctx, cfg, zapLog)
	if err != nil {
		_ = zapLog.Sync()
		return nil, err
	}
	return a, nil
}
