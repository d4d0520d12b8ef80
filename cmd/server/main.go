package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"llamachat/internal/ai"
	"llamachat/internal/auth"
	"llamachat/internal/chat"
	"llamachat/internal/config"
	"llamachat/internal/db"
	"llamachat/internal/httpapi"
	"llamachat/internal/httpapi/handlers"
	"llamachat/internal/logger"
	"llamachat/internal/stats"
	"llamachat/internal/store/redisstore"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Error("database connect failed", "error", err)
		os.Exit(1)
	}

	var sessionCache auth.SessionCache
	if cfg.RedisAddr != "" {
		store := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer store.Close()
		sessionCache = store
		log.Info("session cache enabled", "addr", cfg.RedisAddr)
	}

	provider := ai.NewOllamaClient(cfg.OllamaBaseURL, cfg.OllamaModel,
		time.Duration(cfg.AITimeoutSeconds)*time.Second)

	authSvc := auth.NewService(gdb, sessionCache,
		time.Duration(cfg.SessionTTLHours)*time.Hour, log)
	statsSvc := stats.NewService(provider)
	statsRepo := stats.NewRepo(gdb)
	chatSvc := chat.NewService(chat.NewRepo(gdb), statsSvc, log)

	h := handlers.New(log, authSvc, chatSvc, statsSvc, statsRepo)
	router := httpapi.NewRouter(h)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server listening", "addr", cfg.Addr, "model", cfg.OllamaModel)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}
