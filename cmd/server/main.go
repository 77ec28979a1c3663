package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/civix/backend/internal/classify"
	"github.com/civix/backend/internal/config"
	"github.com/civix/backend/internal/db"
	"github.com/civix/backend/internal/engine"
	httpapi "github.com/civix/backend/internal/http"
	"github.com/civix/backend/internal/metrics"
	"github.com/civix/backend/internal/notify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "civix-backend").Logger()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	var classifier classify.Classifier
	if cfg.LLMBaseURL == "" {
		classifier = classify.KeywordClassifier{}
		logger.Info().Msg("using keyword classifier")
	} else {
		classifier = classify.WithFallback{
			Primary: classify.LLMClassifier{
				BaseURL: cfg.LLMBaseURL,
				Model:   cfg.LLMModel,
				APIKey:  cfg.LLMAPIKey,
				Timeout: cfg.LLMTimeout,
			},
			Logger: logger,
		}
		logger.Info().Str("model", cfg.LLMModel).Msg("using external classifier with keyword fallback")
	}

	inbox := notify.NewInbox(cfg.InboxCapacity)
	emitter := &notify.Emitter{Inbox: inbox}

	registry := prometheus.NewRegistry()
	eng := &engine.Engine{
		Classifier:       classifier,
		Roster:           store,
		Emitter:          emitter,
		Metrics:          metrics.New(registry),
		Logger:           logger,
		AuditAssignments: cfg.AuditAssignments,
	}

	retention := time.Duration(cfg.RetentionDays) * 24 * time.Hour
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 3 * * *", func() {
		removed := inbox.Sweep(retention)
		logger.Info().Int("removed", removed).Msg("notification retention sweep")
	}); err != nil {
		logger.Fatal().Err(err).Msg("failed to schedule retention sweep")
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := httpapi.Router(cfg, store, eng, inbox, emitter, registry, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
