package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/examprep/internal/api"
	"github.com/vytor/examprep/internal/config"
	"github.com/vytor/examprep/internal/db"
	"github.com/vytor/examprep/internal/flashcard"
	"github.com/vytor/examprep/internal/logger"
	"github.com/vytor/examprep/internal/repository/sqlite"
	"github.com/vytor/examprep/internal/services"
	"github.com/vytor/examprep/internal/study"
	"github.com/vytor/examprep/internal/worker"
)

// writeSlack is how long the connection write deadline outlasts the request
// timeout, so the timeout response itself still reaches the client.
const writeSlack = 5 * time.Second

// writeTimeout derives http.Server.WriteTimeout from the request timeout.
// Without a request timeout there is no write deadline either.
func writeTimeout(requestTimeout time.Duration) time.Duration {
	if requestTimeout <= 0 {
		return 0
	}
	return requestTimeout + writeSlack
}

func runServe(cfg config.Config) error {
	log := logger.Default()

	log.Info("===========================================")
	log.Info("ExamPrep Server Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("new_cards_per_session=%d", cfg.NewCardsPerSession)
	log.Debug("max_cards_per_session=%d", cfg.MaxCardsPerSession)
	log.Debug("review_worker_count=%d", cfg.ReviewWorkerCount)
	log.Debug("review_queue_size=%d", cfg.ReviewQueueSize)
	log.Debug("request_timeout_seconds=%d", cfg.RequestTimeoutSeconds)
	log.Debug("rate_limit_rps=%d", cfg.RateLimitRPS)
	log.Debug("rate_limit_burst=%d", cfg.RateLimitBurst)
	log.Debug("session_idle_minutes=%d", cfg.SessionIdleMinutes)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		return err
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	cards := sqlite.NewCardRepository(database.DB)
	decks := sqlite.NewDeckRepository(database.DB)
	reviews := sqlite.NewReviewRepository(database.DB)

	reviewPool := worker.NewPool("review", cfg.ReviewWorkerCount, cfg.ReviewQueueSize)

	srv := &api.Server{
		DB:          database,
		DeckService: services.NewDeckService(decks, cards, reviews),
		StudyService: services.NewStudyService(
			cards, decks, reviews,
			flashcard.NewScheduler(nil),
			study.Limits{NewCards: cfg.NewCardsPerSession, MaxCards: cfg.MaxCardsPerSession},
			services.WithReviewPool(reviewPool),
			services.WithIdleTimeout(time.Duration(cfg.SessionIdleMinutes)*time.Minute),
		),
		RequestTimeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
	}
	if cfg.RateLimitRPS > 0 {
		srv.RateLimiter = api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reviewPool.Start(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout(srv.RequestTimeout),
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case sig := <-stop:
		log.Info("received signal %v, initiating graceful shutdown", sig)
	case err := <-serveErr:
		log.Error("HTTP server error: %v", err)
		reviewPool.Stop()
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Grades are in; drain the history writes before the database closes.
	log.Debug("stopping review pool")
	reviewPool.Stop()

	log.Info("===========================================")
	log.Info("ExamPrep Server Stopped")
	log.Info("===========================================")
	return nil
}
