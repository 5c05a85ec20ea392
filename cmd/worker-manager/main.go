// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"insurance-advisor/internal/assist"
	"insurance-advisor/internal/common/camunda"
	"insurance-advisor/internal/common/config"
	"insurance-advisor/internal/common/database"
	"insurance-advisor/internal/common/logger"
	"insurance-advisor/internal/common/observability"
	"insurance-advisor/internal/profile"
	"insurance-advisor/internal/questionnaire"
	"insurance-advisor/internal/quotes"
	"insurance-advisor/internal/scoring"
	"insurance-advisor/internal/storage"

	// Questionnaire Workers (5)
	as "insurance-advisor/internal/workers/questionnaire/abandon-session"
	gb "insurance-advisor/internal/workers/questionnaire/go-back"
	ss "insurance-advisor/internal/workers/questionnaire/start-session"
	sga "insurance-advisor/internal/workers/questionnaire/suggest-answer"
	sa "insurance-advisor/internal/workers/questionnaire/submit-answer"

	// Quote Workers (1)
	gq "insurance-advisor/internal/workers/quotes/get-quotes"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("otel metrics disabled", zap.Error(err))
	}
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	zeebe, err := camunda.Connect(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: cfg.Camunda.Plaintext,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	})
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully")

	// --- Session store ---
	var sessions questionnaire.SessionStore
	var redis *database.RedisClient
	switch cfg.Questionnaire.Store {
	case "memory":
		sessions = storage.NewMemorySessionStore()
		zapLog.Warn("Using in-memory session store; sessions are lost on restart")
	default:
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		sessions = storage.NewRedisSessionStore(redis.Client, time.Duration(cfg.Questionnaire.SessionTTL)*time.Second)
		zapLog.Info("Redis connected successfully")
	}

	// --- Result store ---
	var results storage.ResultStore
	var pg *database.PostgresClient
	switch cfg.Quotes.ResultStore {
	case "memory":
		results = storage.NewMemoryResultStore()
		zapLog.Warn("Using in-memory result store")
	default:
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		if err := pg.Migrate(ctx); err != nil {
			zapLog.Fatal("postgres migration failed", zap.Error(err))
		}
		results = storage.NewPostgresResultStore(pg.DB)
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Domain services ---
	specs := quotes.DefaultProviders()
	if cfg.Quotes.RateBookPath != "" {
		specs, err = quotes.LoadRateBook(cfg.Quotes.RateBookPath)
		if err != nil {
			zapLog.Fatal("rate book load failed", zap.String("path", cfg.Quotes.RateBookPath), zap.Error(err))
		}
	}
	zapLog.Info("Quote providers loaded", zap.Int("providers", len(specs)))

	engine := questionnaire.NewEngine(questionnaire.DefaultCatalog(), sessions, log.WithFields(map[string]interface{}{"component": "questionnaire"}))
	aggregator := quotes.NewAggregator(quotes.NewProviders(specs), log.WithFields(map[string]interface{}{"component": "quotes"}),
		quotes.WithDefaultTimeout(config.GetDuration(cfg.Quotes.ProviderTimeout)),
		quotes.WithRecorder(obs),
	)
	scorer := scoring.NewEngine(scoring.AnchorsFromConfig(cfg.Scoring), log)

	var primarySuggester assist.Suggester
	if cfg.APIs.OpenAI.Enabled && cfg.APIs.OpenAI.APIKey != "" {
		primarySuggester = assist.NewOpenAISuggester(assist.OpenAIConfig{
			APIKey:  cfg.APIs.OpenAI.APIKey,
			BaseURL: cfg.APIs.OpenAI.BaseURL,
			Model:   cfg.APIs.OpenAI.Model,
			Timeout: config.GetDuration(cfg.APIs.OpenAI.Timeout),
		}, log)
	}
	suggester := assist.NewResilientSuggester(primarySuggester, assist.NewKeywordSuggester(), log)

	var primaryNarrator assist.Narrator
	if cfg.APIs.GenAI.Enabled && cfg.APIs.GenAI.BaseURL != "" {
		primaryNarrator = assist.NewGenAINarrator(assist.GenAIConfig{
			BaseURL:    cfg.APIs.GenAI.BaseURL,
			APIKey:     cfg.APIs.GenAI.APIKey,
			Timeout:    config.GetDuration(cfg.APIs.GenAI.Timeout),
			MaxRetries: cfg.APIs.GenAI.MaxRetries,
		}, log)
	}
	narrator := assist.NewResilientNarrator(primaryNarrator, assist.NewTemplateNarrator(), log)

	zapLog.Info("Assist services initialized",
		zap.Bool("openai", primarySuggester != nil),
		zap.Bool("genai", primaryNarrator != nil),
	)

	// --- Workers ---
	registry := camunda.NewRegistry(zeebe.Zeebe(), zapLog).WithRecorder(obs)

	wc := func(taskType string) config.WorkerConfig { return config.GetWorkerConfig(cfg, taskType) }

	registry.Start(ss.TaskType, wc(ss.TaskType), ss.NewHandler(ss.LoadConfig(wc(ss.TaskType)), engine, log))
	registry.Start(sa.TaskType, wc(sa.TaskType), sa.NewHandler(sa.LoadConfig(wc(sa.TaskType)), engine, log))
	registry.Start(gb.TaskType, wc(gb.TaskType), gb.NewHandler(gb.LoadConfig(wc(gb.TaskType)), engine, log))
	registry.Start(as.TaskType, wc(as.TaskType), as.NewHandler(as.LoadConfig(wc(as.TaskType)), engine, log))
	registry.Start(sga.TaskType, wc(sga.TaskType), sga.NewHandler(sga.LoadConfig(wc(sga.TaskType)), engine, suggester, log))
	registry.Start(gq.TaskType, wc(gq.TaskType), gq.NewHandler(gq.LoadConfig(wc(gq.TaskType)), gq.ServiceDependencies{
		Sessions:  engine,
		Converter: profile.NewConverter(nil),
		Quotes:    aggregator,
		Scorer:    scorer,
		Narrator:  narrator,
		Results:   results,
	}, log))

	zapLog.Info("Workers registered", zap.Int("count", registry.Count()))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{"zeebe": "ok"}
		status := http.StatusOK
		if err := zeebe.HealthCheck(checkCtx); err != nil {
			checks["zeebe"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if redis != nil {
			checks["redis"] = "ok"
			if err := redis.Ping(checkCtx); err != nil {
				checks["redis"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}
		if pg != nil {
			checks["postgres"] = "ok"
			if err := pg.Ping(checkCtx); err != nil {
				checks["postgres"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}

		label := "ready"
		if status != http.StatusOK {
			label = "not_ready"
		}
		writeStatus(w, status, label, checks)
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	registry.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, status string, checks map[string]string) {
	body := map[string]interface{}{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if checks != nil {
		body["checks"] = checks
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
