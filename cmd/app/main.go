package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"vani-service/internal/bot"
	"vani-service/internal/config"
	adminCommand "vani-service/internal/http-server/handlers/admin/command"
	scheduleGet "vani-service/internal/http-server/handlers/schedule/get"
	scheduleQuery "vani-service/internal/http-server/handlers/schedule/query"
	scheduleReplace "vani-service/internal/http-server/handlers/schedule/replace"
	scheduleStatus "vani-service/internal/http-server/handlers/schedule/status"
	webhookReceive "vani-service/internal/http-server/handlers/webhook/receive"
	webhookVerify "vani-service/internal/http-server/handlers/webhook/verify"
	"vani-service/internal/lock"
	"vani-service/internal/matching"
	svc "vani-service/internal/service"
	"vani-service/internal/speech"
	"vani-service/internal/storage/postgres"
	"vani-service/internal/whatsapp"
	slogpretty "vani-service/pkg/handlers/slogPretty"
	mwlogger "vani-service/pkg/middleware/mwLogger"
	"vani-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting receptionist service", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	locker, err := lock.NewRedisLock(redisClient)
	if err != nil {
		log.Error("Failed to init redis lock", sl.Err(err))
		os.Exit(1)
	}

	service := svc.NewService(storage, locker, matching.Config{
		QueryThreshold:    cfg.Matching.QueryThreshold,
		MutationThreshold: cfg.Matching.MutationThreshold,
	})

	ctx := context.Background()

	llm, err := bot.NewGeminiClient(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
	if err != nil {
		log.Error("Failed to init LLM client", sl.Err(err))
		os.Exit(1)
	}

	history := bot.NewHistoryStore(redisClient, cfg.Matching.HistoryWindow)
	engine := bot.NewEngine(llm, service, history, log)

	waClient := whatsapp.NewClient(cfg.WhatsApp.Token, cfg.WhatsApp.PhoneNumberID, cfg.WhatsApp.GraphVersion)

	var transcriber speech.Transcriber
	var synthesizer speech.Synthesizer

	if cfg.Speech.Enabled {
		gt, err := speech.NewGoogleTranscriber(ctx, cfg.Speech.CredentialsFile)
		if err != nil {
			log.Error("Failed to init transcriber", sl.Err(err))
			os.Exit(1)
		}
		transcriber = gt

		gs, err := speech.NewGoogleSynthesizer(ctx, cfg.Speech.APIKey, cfg.Speech.WorkDir)
		if err != nil {
			log.Error("Failed to init synthesizer", sl.Err(err))
			os.Exit(1)
		}
		synthesizer = gs

		log.Info("Voice support enabled")
	} else {
		log.Info("Voice support disabled, audio messages get a text fallback")
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS)

	// Admin schedule grid
	router.Get("/schedule", scheduleGet.New(log, service))
	router.Put("/schedule", scheduleReplace.New(log, service))

	// Direct query and status endpoints
	router.Post("/schedule/query", scheduleQuery.New(log, service))
	router.Post("/schedule/status", scheduleStatus.New(log, service))

	// Natural-language admin commands
	router.Post("/admin/command", adminCommand.New(log, engine))

	// WhatsApp webhook
	router.Get("/webhook", webhookVerify.New(log, cfg.WhatsApp.VerifyToken))
	router.Post("/webhook", webhookReceive.New(log, engine, waClient, transcriber, synthesizer))

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	if err := llm.Close(); err != nil {
		log.Error("Failed to close LLM client", sl.Err(err))
	}

	if transcriber != nil {
		if err := transcriber.Close(); err != nil {
			log.Error("Failed to close transcriber", sl.Err(err))
		}
	}

	if err := storage.Close(); err != nil {
		log.Error("Failed to close storage", sl.Err(err))
	} else {
		log.Info("Storage closed")
	}

	if err := locker.Close(); err != nil {
		log.Error("Failed to close locker", sl.Err(err))
	} else {
		log.Info("Locker closed")
	}

	log.Info("Shutdown finished, server stopped")

}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
